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
	"fmt"
	"io"
	"time"

	"github.com/lni/ringbench/config"
	"github.com/lni/ringbench/internal/counters"
	"github.com/lni/ringbench/internal/iostat"
)

func toMB(v uint64) float64 {
	return float64(v) / (1024 * 1024)
}

// Summary is the final result of a run. It only reflects successful
// operations, failed attempts are reported separately.
type Summary struct {
	RunID    string
	Strategy config.Strategy
	Elapsed  time.Duration
	// RecordWrites is the number of successful record writes.
	RecordWrites uint64
	// BlobWrites is the number of successful ring info persists, including
	// the initial one.
	BlobWrites     uint64
	RecordFailures uint64
	BlobFailures   uint64
	RecordBytes    uint64
	BlobBytes      uint64
	// FlushWindows is the number of flush windows evaluated by the batched
	// strategy.
	FlushWindows uint64
	// IOUsage is the kernel side output accounting of the run, it is only
	// valid when IOUsageAvailable is true.
	IOUsage          iostat.Usage
	IOUsageAvailable bool
	// Windows are the statistics windows reported during the run.
	Windows []Window
}

func newSummary(runID string, cfg config.Config, elapsed time.Duration,
	ss counters.Snapshot) Summary {
	return Summary{
		RunID:          runID,
		Strategy:       cfg.Strategy,
		Elapsed:        elapsed,
		RecordWrites:   ss.RecordWrites,
		BlobWrites:     ss.BlobWrites,
		RecordFailures: ss.RecordFailures,
		BlobFailures:   ss.BlobFailures,
		RecordBytes:    ss.RecordWrites * cfg.RecordSize,
		BlobBytes:      ss.BlobWrites * cfg.BlobSize,
	}
}

// TotalBytes returns the total number of bytes written by record writes and
// ring info persists.
func (s Summary) TotalBytes() uint64 {
	return s.RecordBytes + s.BlobBytes
}

// Print writes the human readable summary to w.
func (s Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "\n=== Test Results ===\n")
	fmt.Fprintf(w, "Run: %s (%s, %s)\n",
		s.RunID, s.Strategy, s.Elapsed.Truncate(time.Millisecond))
	fmt.Fprintf(w, "Total record writes: %d (%.2f MB)\n",
		s.RecordWrites, toMB(s.RecordBytes))
	fmt.Fprintf(w, "Total ring info writes: %d (%.2f MB)\n",
		s.BlobWrites, toMB(s.BlobBytes))
	fmt.Fprintf(w, "Total write amount: %.2f MB\n", toMB(s.TotalBytes()))
	if s.RecordFailures > 0 || s.BlobFailures > 0 {
		fmt.Fprintf(w, "Failed attempts: %d record writes, %d ring info writes\n",
			s.RecordFailures, s.BlobFailures)
	}
	if s.IOUsageAvailable {
		fmt.Fprintf(w, "Kernel output: %d blocks (%.2f MB)\n",
			s.IOUsage.OutBlocks, toMB(s.IOUsage.OutBytes()))
	}
	fmt.Fprintf(w, "====================\n")
}
