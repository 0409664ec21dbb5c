// Copyright 2017-2026 Lei Ni (nilei81@gmail.com) and other contributors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// ringbench compares the flash write volume of the eager and the batched
// ring info persistence strategies.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/lni/ringbench"
	"github.com/lni/ringbench/config"
	"github.com/lni/ringbench/internal/settings"
	"github.com/lni/ringbench/internal/vfs"
	"github.com/lni/ringbench/logger"
)

type options struct {
	dataDir     string
	csvFile     string
	metricsFile string
	logLevel    string
}

// parseArgs parses the optional [strategy] [duration_seconds] [worker_count]
// positional arguments into a validated Config.
func parseArgs(args []string, dataDir string) (config.Config, error) {
	cfg := config.NewConfig(config.Batched)
	if len(dataDir) > 0 {
		cfg.DataDir = dataDir
	}
	if len(args) > 3 {
		return config.Config{}, errors.Newf("too many arguments, got %d", len(args))
	}
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || (v != int(config.Eager) && v != int(config.Batched)) {
			return config.Config{}, errors.Wrapf(config.ErrInvalidStrategy,
				"strategy %q", args[0])
		}
		cfg.Strategy = config.Strategy(v)
	}
	if len(args) > 1 {
		v, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil || v == 0 {
			return config.Config{}, errors.Wrapf(config.ErrInvalidDuration,
				"duration %q", args[1])
		}
		cfg.Duration = time.Duration(v) * time.Second
	}
	if len(args) > 2 {
		v, err := strconv.ParseUint(args[2], 10, 64)
		if err != nil {
			return config.Config{}, errors.Wrapf(config.ErrInvalidWorkerCount,
				"worker count %q", args[2])
		}
		cfg.WorkerCount = v
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func printBanner(w io.Writer, b *ringbench.Bench) {
	cfg := b.Config()
	fmt.Fprintf(w, "=== eMMC Write Test ===\n")
	fmt.Fprintf(w, "Run: %s\n", b.RunID())
	fmt.Fprintf(w, "Mode: %d (%s)\n", cfg.Strategy, cfg.Strategy)
	fmt.Fprintf(w, "Records: %d (%d bytes each)\n", cfg.RecordCount, cfg.RecordSize)
	fmt.Fprintf(w, "Workers: %d (each handles ~%d records)\n",
		cfg.WorkerCount, cfg.RecordCount/cfg.WorkerCount)
	fmt.Fprintf(w, "Data dir: %s\n", cfg.DataDir)
	fmt.Fprintf(w, "Ring info size: %d KB\n", cfg.BlobSize/1024)
	if cfg.Strategy == config.Batched {
		fmt.Fprintf(w, "Flush interval: %s\n", cfg.FlushInterval)
	}
	fmt.Fprintf(w, "Test duration: %d seconds\n", int64(cfg.Duration.Seconds()))
	if du, err := b.DiskUsage(); err == nil {
		fmt.Fprintf(w, "Free space: %d MB\n", du.AvailBytes/(1024*1024))
	}
	fmt.Fprintf(w, "==================================\n\n")
}

func writeMetrics(fp string, b *ringbench.Bench) (err error) {
	f, err := vfs.DefaultFS.Create(fp)
	if err != nil {
		return errors.WithStack(err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = errors.WithStack(cerr)
		}
	}()
	b.Metrics().WritePrometheus(f)
	return nil
}

func run(cmd *cobra.Command, args []string, opts *options) error {
	cfg, err := parseArgs(args, opts.dataDir)
	if err != nil {
		_ = cmd.Usage()
		return err
	}
	level, err := logger.ParseLevel(opts.logLevel)
	if err != nil {
		_ = cmd.Usage()
		return err
	}
	logger.SetLevel(level)
	var csvOut io.Writer
	if len(opts.csvFile) > 0 {
		f, err := vfs.DefaultFS.Create(opts.csvFile)
		if err != nil {
			return errors.Wrapf(err, "failed to create %s", opts.csvFile)
		}
		defer f.Close()
		csvOut = f
	}
	b, err := ringbench.NewBench(cfg, vfs.DefaultFS, csvOut)
	if err != nil {
		return err
	}
	printBanner(cmd.OutOrStdout(), b)
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()
	fmt.Fprintf(cmd.OutOrStdout(),
		"Test running... Press Ctrl+C to stop, or wait %d seconds.\n\n",
		int64(cfg.Duration.Seconds()))
	summary, err := b.Run(ctx)
	if err != nil {
		return err
	}
	summary.Print(cmd.OutOrStdout())
	if len(opts.metricsFile) > 0 {
		if err := writeMetrics(opts.metricsFile, b); err != nil {
			return errors.Wrapf(err, "failed to write %s", opts.metricsFile)
		}
	}
	return nil
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "ringbench [strategy] [duration_seconds] [worker_count]",
		Short: "Measure flash write volume of ring info persistence strategies",
		Long: fmt.Sprintf(`ringbench keeps rewriting %d small record files from concurrent
workers and persists a %d KB ring info blob using one of two strategies.

  strategy:         0 (eager, persist after every record write),
                    1 (batched, persist once per flush window, default)
  duration_seconds: test duration in seconds (default: %d)
  worker_count:     number of write workers, 1 to %d (default: %d)`,
			settings.Hard.RecordCount, settings.Hard.BlobSize/1024,
			settings.Soft.DefaultDurationSecond,
			settings.Hard.RecordCount, settings.Soft.DefaultWorkerCount),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, opts)
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.Flags().StringVar(&opts.dataDir, "data-dir",
		settings.DefaultDataDir, "directory holding record files and ring info")
	cmd.Flags().StringVar(&opts.csvFile, "csv", "",
		"write per window statistics to this CSV file")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "",
		"write Prometheus metrics of the run to this file on exit")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "info",
		"log level, one of critical, error, warning, info and debug")
	return cmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
