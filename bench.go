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

/*
Package ringbench measures the write amplification caused by persisting a
frequently updated ring info blob that accompanies many small record files.

Two persistence strategies are compared. The eager strategy re-persists the
full blob after every single record update, the batched strategy persists it
at most once per flush window. A Bench runs a pool of workers rewriting
records, an optional flush controller and a statistics reporter for the
configured duration, then reports the total bytes written.

A typical run looks like -

	cfg := config.NewConfig(config.Batched)
	b, err := ringbench.NewBench(cfg, vfs.DefaultFS, nil)
	if err != nil {
		panic(err)
	}
	summary, err := b.Run(ctx)
*/
package ringbench

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/lni/goutils/syncutil"

	"github.com/lni/ringbench/config"
	"github.com/lni/ringbench/internal/blob"
	"github.com/lni/ringbench/internal/counters"
	"github.com/lni/ringbench/internal/iostat"
	"github.com/lni/ringbench/internal/record"
	"github.com/lni/ringbench/internal/settings"
	"github.com/lni/ringbench/internal/vfs"
	"github.com/lni/ringbench/logger"
)

var (
	plog = logger.GetLogger("ringbench")
)

var (
	// ErrAlreadyRun indicates that Run has already been called on the Bench.
	ErrAlreadyRun = errors.New("bench already run")
)

// Bench is a single benchmark run. It owns the shared counters and hands
// them to every task it starts.
type Bench struct {
	cfg      config.Config
	fs       vfs.IFS
	runID    string
	counters *counters.Counters
	metrics  *counters.Metrics
	records  *record.Store
	blob     *blob.Writer
	csvOut   io.Writer
	mu       sync.Mutex
	started  bool
}

// NewBench creates a Bench for the specified config. All files are accessed
// through fs. When csvOut is not nil, one CSV row is written to it for each
// statistics window.
func NewBench(cfg config.Config, fs vfs.IFS, csvOut io.Writer) (*Bench, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	runID := uuid.New().String()
	m := counters.NewMetrics(runID,
		cfg.Strategy.String(), cfg.RecordSize, cfg.BlobSize)
	c := counters.New(m)
	fp := fs.PathJoin(cfg.DataDir, settings.BlobFilename)
	b := &Bench{
		cfg:      cfg,
		fs:       fs,
		runID:    runID,
		counters: c,
		metrics:  m,
		records:  record.NewStore(cfg.DataDir, cfg.RecordSize, fs),
		blob: blob.NewWriter(fp, cfg.BlobSize,
			byte(settings.Hard.BlobFiller), c, m, fs),
		csvOut: csvOut,
	}
	return b, nil
}

// RunID returns the unique identifier of the run.
func (b *Bench) RunID() string {
	return b.runID
}

// Config returns the config of the run.
func (b *Bench) Config() config.Config {
	return b.cfg
}

// Metrics returns the metrics of the run.
func (b *Bench) Metrics() *counters.Metrics {
	return b.metrics
}

// DiskUsage returns the disk usage of the volume holding the data directory.
func (b *Bench) DiskUsage() (vfs.DiskUsage, error) {
	return b.fs.GetDiskUsage(b.cfg.DataDir)
}

// prepare creates all record files and persists the initial ring info blob.
// Any failure here is fatal to the run, so is ctx being canceled.
func (b *Bench) prepare(ctx context.Context) error {
	if err := b.records.Bootstrap(ctx, b.cfg.RecordCount); err != nil {
		return errors.Wrap(err, "failed to create record files")
	}
	if err := b.blob.Persist(); err != nil {
		return errors.Wrap(err, "failed to create the initial ring info")
	}
	return nil
}

// Run prepares the data directory, then runs the workload until the
// configured duration elapses or ctx is canceled. Run only returns after
// every worker and background task has stopped. Errors are only returned
// for failures that happen before the workload starts, including ctx being
// canceled while the records are still being created.
func (b *Bench) Run(ctx context.Context) (Summary, error) {
	b.mu.Lock()
	if b.started {
		b.mu.Unlock()
		return Summary{}, ErrAlreadyRun
	}
	b.started = true
	b.mu.Unlock()
	if err := b.prepare(ctx); err != nil {
		return Summary{}, err
	}
	usage, usageOK := iostat.Read()
	stopper := syncutil.NewStopper()
	ranges := b.cfg.Ranges()
	plog.Infof("starting %d workers, strategy %s", len(ranges), b.cfg.Strategy)
	for i, r := range ranges {
		w := newWorker(uint64(i), r, b.cfg.Strategy,
			b.cfg.SweepPause, b.records, b.blob, b.counters)
		stopper.RunWorker(func() {
			w.run(stopper.ShouldStop())
		})
	}
	var fc *flushController
	if b.cfg.Strategy == config.Batched {
		fc = newFlushController(b.cfg.FlushInterval, b.blob, b.counters)
		stopper.RunWorker(func() {
			fc.run(stopper.ShouldStop())
		})
	}
	sr := newStatsReporter(b.cfg.StatsInterval, b.counters,
		b.cfg.RecordSize, b.cfg.BlobSize, b.csvOut)
	start := time.Now()
	sr.start(start)
	stopper.RunWorker(func() {
		sr.run(stopper.ShouldStop())
	})
	timer := time.NewTimer(b.cfg.Duration)
	defer timer.Stop()
	select {
	case <-timer.C:
		plog.Infof("test duration %s elapsed", b.cfg.Duration)
	case <-ctx.Done():
		plog.Infof("stop requested, %v", ctx.Err())
	}
	plog.Infof("stopping all workers")
	stopper.Stop()
	elapsed := time.Since(start)
	summary := newSummary(b.runID, b.cfg, elapsed, b.counters.Snapshot())
	summary.Windows = sr.windows
	if fc != nil {
		summary.FlushWindows = fc.evaluated
	}
	if usageOK {
		if after, ok := iostat.Read(); ok {
			summary.IOUsage = after.Sub(usage)
			summary.IOUsageAvailable = true
		}
	}
	return summary, nil
}
