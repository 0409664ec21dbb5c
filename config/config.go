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
Package config contains the configuration of a single benchmark run.

A Config is immutable once the run starts. It names the ring info persistence
strategy under test, the number of workers, the number of records and how
long the run lasts. Partition assigns each worker a contiguous range of
record ids.
*/
package config

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lni/ringbench/internal/settings"
	"github.com/lni/ringbench/logger"
)

var (
	plog = logger.GetLogger("config")
)

var (
	// ErrInvalidStrategy indicates that the strategy is neither Eager nor
	// Batched.
	ErrInvalidStrategy = errors.New("invalid strategy, it must be 0 or 1")
	// ErrInvalidWorkerCount indicates that the worker count is out of range.
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	// ErrInvalidDuration indicates that the test duration is not positive.
	ErrInvalidDuration = errors.New("invalid test duration")
)

// Strategy is the ring info persistence strategy under test.
type Strategy int

const (
	// Eager re-persists the ring info blob after every record update.
	Eager Strategy = iota
	// Batched persists the ring info blob at most once per flush interval and
	// only when records changed in that interval.
	Batched
)

// String returns a human readable name of the strategy.
func (s Strategy) String() string {
	switch s {
	case Eager:
		return "eager"
	case Batched:
		return "batched"
	}
	return "unknown"
}

// Config is the configuration of a benchmark run.
type Config struct {
	// Strategy is the ring info persistence strategy.
	Strategy Strategy
	// Duration is how long workers keep updating records.
	Duration time.Duration
	// WorkerCount is the number of concurrent record writers.
	WorkerCount uint64
	// RecordCount is the number of record files.
	RecordCount uint64
	// RecordSize is the size in bytes of each record file.
	RecordSize uint64
	// BlobSize is the size in bytes of the ring info blob.
	BlobSize uint64
	// DataDir is the directory holding record files and the ring info blob.
	DataDir string
	// FlushInterval is the flush window of the Batched strategy.
	FlushInterval time.Duration
	// StatsInterval is the period of the statistics reporter.
	StatsInterval time.Duration
	// SweepPause is how long a worker pauses between two sweeps.
	SweepPause time.Duration
}

// NewConfig returns a Config using the default settings for the specified
// strategy.
func NewConfig(strategy Strategy) Config {
	return Config{
		Strategy:      strategy,
		Duration:      time.Duration(settings.Soft.DefaultDurationSecond) * time.Second,
		WorkerCount:   settings.Soft.DefaultWorkerCount,
		RecordCount:   settings.Hard.RecordCount,
		RecordSize:    settings.RecordSize,
		BlobSize:      settings.Hard.BlobSize,
		DataDir:       settings.DefaultDataDir,
		FlushInterval: time.Duration(settings.Soft.FlushIntervalSecond) * time.Second,
		StatsInterval: time.Duration(settings.Soft.StatsIntervalSecond) * time.Second,
		SweepPause:    time.Duration(settings.Soft.SweepPauseMillisecond) * time.Millisecond,
	}
}

// Validate validates the Config instance and return an error when any member
// field is considered as invalid.
func (c *Config) Validate() error {
	if c.Strategy != Eager && c.Strategy != Batched {
		return ErrInvalidStrategy
	}
	if c.RecordCount == 0 {
		return errors.New("RecordCount must be > 0")
	}
	if c.WorkerCount < 1 || c.WorkerCount > c.RecordCount {
		return errors.Wrapf(ErrInvalidWorkerCount,
			"worker count must be between 1 and %d", c.RecordCount)
	}
	if c.Duration <= 0 {
		return ErrInvalidDuration
	}
	if c.RecordSize == 0 {
		return errors.New("RecordSize must be > 0")
	}
	if c.BlobSize == 0 {
		return errors.New("BlobSize must be > 0")
	}
	if len(c.DataDir) == 0 {
		return errors.New("DataDir is empty")
	}
	if c.FlushInterval <= 0 {
		return errors.New("FlushInterval must be > 0")
	}
	if c.StatsInterval <= 0 {
		return errors.New("StatsInterval must be > 0")
	}
	if c.SweepPause < 0 {
		return errors.New("SweepPause must be >= 0")
	}
	if c.Strategy == Batched && c.Duration < c.FlushInterval {
		plog.Warningf("test duration %s is shorter than the flush interval %s",
			c.Duration, c.FlushInterval)
	}
	return nil
}

// Range is a contiguous range of record ids, [Start, End).
type Range struct {
	Start uint64
	End   uint64
}

// Len returns the number of record ids in the range.
func (r Range) Len() uint64 {
	return r.End - r.Start
}

// Partition splits [0, recordCount) into workerCount contiguous ranges. When
// recordCount is not a multiple of workerCount, each of the first
// recordCount%workerCount ranges gets one extra record.
func Partition(recordCount uint64, workerCount uint64) []Range {
	if workerCount == 0 || workerCount > recordCount {
		panic("invalid worker count")
	}
	per := recordCount / workerCount
	remainder := recordCount % workerCount
	ranges := make([]Range, 0, workerCount)
	start := uint64(0)
	for i := uint64(0); i < workerCount; i++ {
		n := per
		if i < remainder {
			n++
		}
		ranges = append(ranges, Range{Start: start, End: start + n})
		start += n
	}
	return ranges
}

// Ranges returns the record ranges owned by the configured workers.
func (c *Config) Ranges() []Range {
	return Partition(c.RecordCount, c.WorkerCount)
}

// TotalBytes returns the number of bytes written by the specified number of
// record writes and blob writes.
func (c *Config) TotalBytes(recordWrites uint64, blobWrites uint64) uint64 {
	return recordWrites*c.RecordSize + blobWrites*c.BlobSize
}
