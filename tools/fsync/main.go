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

// fsync measures the latency of durable record and ring info writes on the
// volume that is going to host a ringbench run.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/lni/goutils/syncutil"
	"github.com/spf13/cobra"

	"github.com/lni/ringbench/internal/blob"
	"github.com/lni/ringbench/internal/counters"
	"github.com/lni/ringbench/internal/record"
	"github.com/lni/ringbench/internal/settings"
	"github.com/lni/ringbench/internal/vfs"
	"github.com/lni/ringbench/logger"
)

const (
	// BATCH is the default number of record writes per job
	BATCH = 1000
	// BUCKETS is the default number of parallel write jobs
	BUCKETS = 16
	// BLOBBATCH is the default number of ring info persists
	BLOBBATCH = 50

	dataDirectoryName = "fsync-data-safe-to-delete"
)

var (
	plog = logger.GetLogger("fsync")
)

type options struct {
	dataDir   string
	count     uint64
	blobCount uint64
	jobs      uint64
	parallel  bool
	keep      bool
}

// latency is the set of samples collected for one kind of write.
type latency struct {
	samples []time.Duration
}

func (l *latency) add(d time.Duration) {
	l.samples = append(l.samples, d)
}

func (l *latency) merge(o *latency) {
	if o != nil {
		l.samples = append(l.samples, o.samples...)
	}
}

func (l *latency) len() int {
	return len(l.samples)
}

func (l *latency) mean() time.Duration {
	if len(l.samples) == 0 {
		return 0
	}
	var total time.Duration
	for _, v := range l.samples {
		total += v
	}
	return total / time.Duration(len(l.samples))
}

// percentile returns the p-th percentile, p in [0, 1]. Samples get sorted.
func (l *latency) percentile(p float64) time.Duration {
	if len(l.samples) == 0 {
		return 0
	}
	sort.Slice(l.samples, func(i, j int) bool {
		return l.samples[i] < l.samples[j]
	})
	return l.samples[int(float64(len(l.samples)-1)*p)]
}

type report struct {
	records  latency
	blobs    latency
	snapshot counters.Snapshot
	elapsed  time.Duration
}

// eagerRate is the estimated number of record updates per second a single
// worker can sustain when every update also persists the ring info.
func (r *report) eagerRate() float64 {
	d := r.records.mean() + r.blobs.mean()
	if d == 0 {
		return 0
	}
	return float64(time.Second) / float64(d)
}

func (r *report) print(w io.Writer) {
	line := func(name string, size uint64, l *latency) {
		fmt.Fprintf(w, "%s (%d bytes): %d writes, avg %s, p50 %s, p99 %s, max %s\n",
			name, size, l.len(), l.mean(), l.percentile(0.5),
			l.percentile(0.99), l.percentile(1))
	}
	fmt.Fprintf(w, "=== Durable Write Latency ===\n")
	line("record", settings.RecordSize, &r.records)
	line("ring info", settings.Hard.BlobSize, &r.blobs)
	if r.snapshot.RecordFailures+r.snapshot.BlobFailures > 0 {
		fmt.Fprintf(w, "Failed: %d record writes, %d ring info writes\n",
			r.snapshot.RecordFailures, r.snapshot.BlobFailures)
	}
	fmt.Fprintf(w, "Eager updates per worker: %.1f/s\n", r.eagerRate())
	fmt.Fprintf(w, "Elapsed: %s\n", r.elapsed)
}

func writeRecords(ctx context.Context, store *record.Store,
	c *counters.Counters, id uint64, count uint64) (*latency, error) {
	l := &latency{}
	buf := make([]byte, store.Size())
	for seq := uint64(0); seq < count; seq++ {
		if ctx.Err() != nil {
			return l, nil
		}
		record.FormatPayload(buf, time.Now(), seq)
		st := time.Now()
		if err := store.Write(id, buf); err != nil {
			c.RecordFailed()
			return l, errors.Wrapf(err, "failed to write %s", store.Path(id))
		}
		l.add(time.Since(st))
		c.RecordWritten()
	}
	return l, nil
}

func persistBlobs(ctx context.Context,
	w *blob.Writer, count uint64) (*latency, error) {
	l := &latency{}
	for i := uint64(0); i < count; i++ {
		if ctx.Err() != nil {
			return l, nil
		}
		st := time.Now()
		if err := w.Persist(); err != nil {
			return l, err
		}
		l.add(time.Since(st))
	}
	return l, nil
}

func calibrate(ctx context.Context,
	opts options, fs vfs.IFS) (*report, error) {
	if opts.count == 0 || opts.jobs == 0 {
		return nil, errors.New("count and jobs must be positive")
	}
	jobs := uint64(1)
	if opts.parallel {
		jobs = opts.jobs
	}
	store := record.NewStore(opts.dataDir, settings.RecordSize, fs)
	if err := store.Bootstrap(ctx, jobs); err != nil {
		return nil, err
	}
	if !opts.keep {
		defer func() {
			if err := fs.RemoveAll(opts.dataDir); err != nil {
				plog.Warningf("failed to remove %s, %v", opts.dataDir, err)
			}
		}()
	}
	m := counters.NewMetrics(uuid.New().String(), "calibration",
		settings.RecordSize, settings.Hard.BlobSize)
	c := counters.New(m)
	r := &report{}
	start := time.Now()
	results := make([]*latency, jobs)
	errs := make([]error, jobs)
	stopper := syncutil.NewStopper()
	for i := uint64(0); i < jobs; i++ {
		id := i
		stopper.RunWorker(func() {
			results[id], errs[id] = writeRecords(ctx, store, c, id, opts.count)
		})
	}
	stopper.Wait()
	for i := range results {
		if errs[i] != nil {
			return nil, errs[i]
		}
		r.records.merge(results[i])
	}
	fp := fs.PathJoin(opts.dataDir, settings.BlobFilename)
	w := blob.NewWriter(fp, settings.Hard.BlobSize,
		byte(settings.Hard.BlobFiller), c, m, fs)
	bl, err := persistBlobs(ctx, w, opts.blobCount)
	if err != nil {
		return nil, err
	}
	r.blobs.merge(bl)
	r.elapsed = time.Since(start)
	r.snapshot = c.Snapshot()
	return r, nil
}

func newRootCommand() *cobra.Command {
	opts := options{}
	cmd := &cobra.Command{
		Use:   "fsync",
		Short: "Measure durable write latency of records and ring info",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(),
				os.Interrupt, syscall.SIGTERM)
			defer stop()
			r, err := calibrate(ctx, opts, vfs.DefaultFS)
			if err != nil {
				return err
			}
			r.print(cmd.OutOrStdout())
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.Flags().StringVar(&opts.dataDir, "data-dir", dataDirectoryName,
		"directory used for the test files")
	cmd.Flags().Uint64Var(&opts.count, "count", BATCH,
		"number of record writes per job")
	cmd.Flags().Uint64Var(&opts.blobCount, "blob-count", BLOBBATCH,
		"number of ring info persists")
	cmd.Flags().Uint64Var(&opts.jobs, "jobs", BUCKETS,
		"number of parallel record write jobs")
	cmd.Flags().BoolVar(&opts.parallel, "parallel", false,
		"whether to use parallel record writes")
	cmd.Flags().BoolVar(&opts.keep, "keep", false,
		"keep the test files after the run")
	return cmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
