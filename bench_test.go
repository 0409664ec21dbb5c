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

package ringbench

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lni/goutils/leaktest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lni/ringbench/config"
	"github.com/lni/ringbench/internal/record"
	"github.com/lni/ringbench/internal/vfs"
)

const (
	testDataDir  = "/ringbench-test-data/data"
	testBlobSize = 4096
)

func getTestConfig(strategy config.Strategy) config.Config {
	cfg := config.NewConfig(strategy)
	cfg.DataDir = testDataDir
	cfg.RecordCount = 50
	cfg.WorkerCount = 5
	cfg.BlobSize = testBlobSize
	cfg.Duration = 200 * time.Millisecond
	cfg.FlushInterval = time.Hour
	cfg.StatsInterval = time.Hour
	cfg.SweepPause = time.Millisecond
	return cfg
}

func newTestBench(t *testing.T, cfg config.Config, fs vfs.IFS) *Bench {
	b, err := NewBench(cfg, fs, nil)
	require.NoError(t, err)
	return b
}

func TestNewBenchRejectsInvalidConfig(t *testing.T) {
	cfg := getTestConfig(config.Eager)
	cfg.WorkerCount = cfg.RecordCount + 1
	_, err := NewBench(cfg, vfs.GetTestFS(), nil)
	require.True(t, errors.Is(err, config.ErrInvalidWorkerCount))
}

func TestEagerSweepPersistsAfterEveryRecordWrite(t *testing.T) {
	cfg := getTestConfig(config.Eager)
	cfg.RecordCount = 5
	cfg.WorkerCount = 1
	b := newTestBench(t, cfg, vfs.GetTestFS())
	require.NoError(t, b.prepare(context.Background()))
	w := newWorker(0, cfg.Ranges()[0], cfg.Strategy,
		cfg.SweepPause, b.records, b.blob, b.counters)
	require.True(t, w.sweep(make(chan struct{})))
	ss := b.counters.Snapshot()
	require.Equal(t, uint64(5), ss.RecordWrites)
	// one persist per record write plus the initial persist
	require.Equal(t, ss.RecordWrites+1, ss.BlobWrites)
	require.Equal(t, uint64(5), w.seq)
}

func TestBatchedSweepDoesNotPersist(t *testing.T) {
	cfg := getTestConfig(config.Batched)
	cfg.RecordCount = 5
	cfg.WorkerCount = 1
	b := newTestBench(t, cfg, vfs.GetTestFS())
	require.NoError(t, b.prepare(context.Background()))
	w := newWorker(0, cfg.Ranges()[0], cfg.Strategy,
		cfg.SweepPause, b.records, b.blob, b.counters)
	require.True(t, w.sweep(make(chan struct{})))
	ss := b.counters.Snapshot()
	require.Equal(t, uint64(5), ss.RecordWrites)
	require.Equal(t, uint64(1), ss.BlobWrites)
	require.Equal(t, uint64(5), b.counters.Touched())
}

func TestFailedRecordWriteIsSkippedAndNotCounted(t *testing.T) {
	cfg := getTestConfig(config.Eager)
	cfg.RecordCount = 5
	cfg.WorkerCount = 1
	mfs := vfs.GetTestFS()
	b := newTestBench(t, cfg, mfs)
	require.NoError(t, b.prepare(context.Background()))
	// the first record file can not be opened for write
	efs := vfs.Wrap(mfs, vfs.OnIndex(0, vfs.OpWrite))
	store := record.NewStore(cfg.DataDir, cfg.RecordSize, efs)
	w := newWorker(0, cfg.Ranges()[0], cfg.Strategy,
		cfg.SweepPause, store, b.blob, b.counters)
	require.True(t, w.sweep(make(chan struct{})))
	ss := b.counters.Snapshot()
	require.Equal(t, uint64(4), ss.RecordWrites)
	require.Equal(t, uint64(1), ss.RecordFailures)
	require.Equal(t, uint64(5), ss.BlobWrites)
	// the next sweep is unaffected
	require.True(t, w.sweep(make(chan struct{})))
	require.Equal(t, uint64(9), b.counters.Snapshot().RecordWrites)
}

func TestSweepObservesStopSignal(t *testing.T) {
	cfg := getTestConfig(config.Eager)
	b := newTestBench(t, cfg, vfs.GetTestFS())
	require.NoError(t, b.prepare(context.Background()))
	w := newWorker(0, cfg.Ranges()[0], cfg.Strategy,
		cfg.SweepPause, b.records, b.blob, b.counters)
	stopC := make(chan struct{})
	close(stopC)
	require.False(t, w.sweep(stopC))
	require.Equal(t, uint64(0), b.counters.Snapshot().RecordWrites)
}

func TestWorkerRunReturnsAfterStop(t *testing.T) {
	defer leaktest.AfterTest(t)()
	cfg := getTestConfig(config.Batched)
	cfg.SweepPause = 0
	b := newTestBench(t, cfg, vfs.GetTestFS())
	require.NoError(t, b.prepare(context.Background()))
	w := newWorker(0, cfg.Ranges()[0], cfg.Strategy,
		cfg.SweepPause, b.records, b.blob, b.counters)
	stopC := make(chan struct{})
	doneC := make(chan struct{})
	go func() {
		w.run(stopC)
		close(doneC)
	}()
	time.Sleep(20 * time.Millisecond)
	close(stopC)
	select {
	case <-doneC:
	case <-time.After(5 * time.Second):
		t.Fatalf("worker did not stop")
	}
	require.True(t, b.counters.Snapshot().RecordWrites > 0)
}

func TestFlushControllerSkipsIdleWindow(t *testing.T) {
	cfg := getTestConfig(config.Batched)
	b := newTestBench(t, cfg, vfs.GetTestFS())
	require.NoError(t, b.prepare(context.Background()))
	fc := newFlushController(cfg.FlushInterval, b.blob, b.counters)
	require.False(t, fc.evaluate(time.Second))
	require.Equal(t, uint64(1), b.counters.Snapshot().BlobWrites)
	require.Equal(t, uint64(1), fc.evaluated)
	require.Equal(t, uint64(0), fc.flushed)
}

func TestFlushControllerPersistsTouchedWindow(t *testing.T) {
	cfg := getTestConfig(config.Batched)
	b := newTestBench(t, cfg, vfs.GetTestFS())
	require.NoError(t, b.prepare(context.Background()))
	fc := newFlushController(cfg.FlushInterval, b.blob, b.counters)
	for i := 0; i < 3; i++ {
		b.counters.RecordWritten()
	}
	require.True(t, fc.evaluate(30*time.Second))
	require.Equal(t, uint64(0), b.counters.Touched())
	require.Equal(t, uint64(2), b.counters.Snapshot().BlobWrites)
	// nothing touched since the last evaluation
	require.False(t, fc.evaluate(60*time.Second))
	require.Equal(t, uint64(2), b.counters.Snapshot().BlobWrites)
}

func TestFlushControllerResetsTouchedWhenPersistFails(t *testing.T) {
	cfg := getTestConfig(config.Batched)
	mfs := vfs.GetTestFS()
	b := newTestBench(t, cfg, mfs)
	require.NoError(t, b.prepare(context.Background()))
	efs := vfs.Wrap(mfs, vfs.OnIndex(0, vfs.OpSync))
	eb := newTestBench(t, cfg, efs)
	fc := newFlushController(cfg.FlushInterval, eb.blob, eb.counters)
	eb.counters.RecordWritten()
	require.False(t, fc.evaluate(time.Second))
	require.Equal(t, uint64(0), eb.counters.Touched())
	ss := eb.counters.Snapshot()
	require.Equal(t, uint64(0), ss.BlobWrites)
	require.Equal(t, uint64(1), ss.BlobFailures)
}

func TestStatsReporterWindows(t *testing.T) {
	cfg := getTestConfig(config.Eager)
	b := newTestBench(t, cfg, vfs.GetTestFS())
	out := &bytes.Buffer{}
	sr := newStatsReporter(time.Second, b.counters, 64, 2048, out)
	start := time.Now()
	sr.start(start)
	for i := 0; i < 16; i++ {
		b.counters.RecordWritten()
	}
	b.counters.BlobWritten()
	w := sr.tick(start.Add(10 * time.Second))
	require.Equal(t, 10*time.Second, w.Elapsed)
	require.Equal(t, uint64(16), w.Delta.RecordWrites)
	require.Equal(t, uint64(1), w.Delta.BlobWrites)
	require.Equal(t, uint64(1024), w.RecordBytes)
	require.Equal(t, uint64(2048), w.BlobBytes)
	require.Equal(t, uint64(3072), w.Bytes())
	require.Equal(t, uint64(3072), w.TotalBytes)
	w = sr.tick(start.Add(20 * time.Second))
	require.Equal(t, uint64(0), w.Bytes())
	require.Equal(t, uint64(3072), w.TotalBytes)
	require.Len(t, sr.windows, 2)

	rows, err := csv.NewReader(out).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, CSVHeader, rows[0])
	require.Equal(t,
		[]string{"10", "16", "1", "1.00", "2.00", "3.00", "0.0029", "3.00"}, rows[1])
	require.Equal(t,
		[]string{"20", "0", "0", "0.00", "0.00", "0.00", "0.0000", "3.00"}, rows[2])
}

func TestBatchedRunPersistsOncePerTouchedWindow(t *testing.T) {
	defer leaktest.AfterTest(t)()
	cfg := getTestConfig(config.Batched)
	cfg.Duration = 450 * time.Millisecond
	cfg.FlushInterval = 300 * time.Millisecond
	cfg.StatsInterval = 100 * time.Millisecond
	out := &bytes.Buffer{}
	b, err := NewBench(cfg, vfs.GetTestFS(), out)
	require.NoError(t, err)
	summary, err := b.Run(context.Background())
	require.NoError(t, err)
	require.True(t, summary.RecordWrites > 0)
	require.Equal(t, uint64(1), summary.FlushWindows)
	// initial persist plus the single touched window
	require.Equal(t, uint64(2), summary.BlobWrites)
	require.Equal(t,
		cfg.TotalBytes(summary.RecordWrites, summary.BlobWrites),
		summary.TotalBytes())
	require.Equal(t, summary.TotalBytes(), b.Metrics().BytesWritten())
	require.True(t, len(summary.Windows) >= 2)
	require.True(t, strings.HasPrefix(out.String(), "Elapsed_Sec,"))
}

func TestEagerRunBlobWritesMatchRecordWrites(t *testing.T) {
	defer leaktest.AfterTest(t)()
	cfg := getTestConfig(config.Eager)
	cfg.Duration = 100 * time.Millisecond
	b := newTestBench(t, cfg, vfs.GetTestFS())
	summary, err := b.Run(context.Background())
	require.NoError(t, err)
	require.True(t, summary.RecordWrites > 0)
	require.Equal(t, summary.RecordWrites+1, summary.BlobWrites)
	require.Equal(t, uint64(0), summary.FlushWindows)
	require.Equal(t,
		summary.RecordWrites*cfg.RecordSize+summary.BlobWrites*cfg.BlobSize,
		summary.TotalBytes())
}

func TestRunStopsWhenContextIsCanceled(t *testing.T) {
	defer leaktest.AfterTest(t)()
	cfg := getTestConfig(config.Batched)
	cfg.Duration = time.Hour
	b := newTestBench(t, cfg, vfs.GetTestFS())
	ctx, cancel := context.WithCancel(context.Background())
	canceledC := make(chan time.Time, 1)
	go func() {
		time.Sleep(100 * time.Millisecond)
		canceledC <- time.Now()
		cancel()
	}()
	summary, err := b.Run(ctx)
	stopLatency := time.Since(<-canceledC)
	require.NoError(t, err)
	// workers observe the stop signal before their next record or while
	// pausing, the only in-flight work is a single record write
	require.True(t, stopLatency < 10*cfg.SweepPause+100*time.Millisecond,
		"stop took %s", stopLatency)
	require.True(t, summary.RecordWrites > 0)
	require.Equal(t, uint64(1), summary.BlobWrites)
}

func TestEagerRunStopsWithinOnePersist(t *testing.T) {
	defer leaktest.AfterTest(t)()
	cfg := getTestConfig(config.Eager)
	cfg.Duration = time.Hour
	b := newTestBench(t, cfg, vfs.GetTestFS())
	ctx, cancel := context.WithCancel(context.Background())
	canceledC := make(chan time.Time, 1)
	go func() {
		time.Sleep(100 * time.Millisecond)
		canceledC <- time.Now()
		cancel()
	}()
	summary, err := b.Run(ctx)
	stopLatency := time.Since(<-canceledC)
	require.NoError(t, err)
	require.True(t, stopLatency < 10*cfg.SweepPause+100*time.Millisecond,
		"stop took %s", stopLatency)
	require.Equal(t, summary.RecordWrites+1, summary.BlobWrites)
}

func TestRunIsAbortedWhenCanceledDuringSetup(t *testing.T) {
	defer leaktest.AfterTest(t)()
	cfg := getTestConfig(config.Batched)
	b := newTestBench(t, cfg, vfs.GetTestFS())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := b.Run(ctx)
	require.True(t, errors.Is(err, context.Canceled))
	ss := b.counters.Snapshot()
	require.Equal(t, uint64(0), ss.RecordWrites)
	require.Equal(t, uint64(0), ss.BlobWrites)
}

func TestRunCanOnlyBeCalledOnce(t *testing.T) {
	defer leaktest.AfterTest(t)()
	cfg := getTestConfig(config.Batched)
	cfg.Duration = 10 * time.Millisecond
	b := newTestBench(t, cfg, vfs.GetTestFS())
	_, err := b.Run(context.Background())
	require.NoError(t, err)
	_, err = b.Run(context.Background())
	require.True(t, errors.Is(err, ErrAlreadyRun))
}

func TestRunFailsWhenSetupFails(t *testing.T) {
	defer leaktest.AfterTest(t)()
	cfg := getTestConfig(config.Batched)
	fs := vfs.Wrap(vfs.GetTestFS(), vfs.OnIndex(3, vfs.OpWrite))
	b := newTestBench(t, cfg, fs)
	_, err := b.Run(context.Background())
	require.Error(t, err)
	require.True(t, errors.Is(err, vfs.ErrInjected))
	require.Equal(t, uint64(0), b.counters.Snapshot().RecordWrites)
}

func TestSummaryPrint(t *testing.T) {
	s := Summary{
		RunID:          "run",
		Strategy:       config.Eager,
		Elapsed:        time.Second,
		RecordWrites:   3,
		BlobWrites:     4,
		RecordFailures: 1,
		RecordBytes:    3 * 64,
		BlobBytes:      4 * 440 * 1024,
	}
	require.Equal(t, uint64(3*64+4*440*1024), s.TotalBytes())
	buf := &bytes.Buffer{}
	s.Print(buf)
	out := buf.String()
	assert.Contains(t, out, "Total record writes: 3")
	assert.Contains(t, out, "Total ring info writes: 4 (1.72 MB)")
	assert.Contains(t, out, "Total write amount: 1.72 MB")
	assert.Contains(t, out, "Failed attempts: 1 record writes, 0 ring info writes")
	assert.NotContains(t, out, "Kernel output")
}
