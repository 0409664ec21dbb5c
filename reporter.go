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
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/lni/ringbench/internal/counters"
)

// CSVHeader is the header row of the per window CSV report.
var CSVHeader = []string{
	"Elapsed_Sec",
	"Record_Writes",
	"Blob_Writes",
	"Record_KB",
	"Blob_KB",
	"Diff_KB",
	"Diff_MB",
	"Total_KB",
}

// Window is the write volume observed during one statistics period.
type Window struct {
	// Elapsed is the time since the reporter started.
	Elapsed time.Duration
	// Delta is the counter increase since the previous window.
	Delta counters.Snapshot
	// Total is the counter value at the end of the window.
	Total       counters.Snapshot
	RecordBytes uint64
	BlobBytes   uint64
	// TotalBytes is the number of bytes written since the start of the run.
	TotalBytes uint64
}

// Bytes returns the number of bytes written during the window.
func (w Window) Bytes() uint64 {
	return w.RecordBytes + w.BlobBytes
}

func (w Window) csvRow() []string {
	const kb = 1024.0
	return []string{
		strconv.FormatInt(int64(w.Elapsed.Seconds()), 10),
		strconv.FormatUint(w.Delta.RecordWrites, 10),
		strconv.FormatUint(w.Delta.BlobWrites, 10),
		strconv.FormatFloat(float64(w.RecordBytes)/kb, 'f', 2, 64),
		strconv.FormatFloat(float64(w.BlobBytes)/kb, 'f', 2, 64),
		strconv.FormatFloat(float64(w.Bytes())/kb, 'f', 2, 64),
		strconv.FormatFloat(float64(w.Bytes())/(kb*kb), 'f', 4, 64),
		strconv.FormatFloat(float64(w.TotalBytes)/kb, 'f', 2, 64),
	}
}

// statsReporter periodically samples the counters and reports the write
// volume of each period.
type statsReporter struct {
	interval   time.Duration
	counters   *counters.Counters
	recordSize uint64
	blobSize   uint64
	started    time.Time
	prev       counters.Snapshot
	csv        *csv.Writer
	windows    []Window
}

func newStatsReporter(interval time.Duration, c *counters.Counters,
	recordSize uint64, blobSize uint64, out io.Writer) *statsReporter {
	r := &statsReporter{
		interval:   interval,
		counters:   c,
		recordSize: recordSize,
		blobSize:   blobSize,
		started:    time.Now(),
	}
	if out != nil {
		r.csv = csv.NewWriter(out)
		r.writeCSV(CSVHeader)
	}
	return r
}

// start sets the baseline of the first window.
func (r *statsReporter) start(now time.Time) {
	r.started = now
	r.prev = r.counters.Snapshot()
}

func (r *statsReporter) run(stopC <-chan struct{}) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stopC:
			return
		case now := <-ticker.C:
			r.tick(now)
		}
	}
}

func (r *statsReporter) tick(now time.Time) Window {
	ss := r.counters.Snapshot()
	w := r.window(now.Sub(r.started), ss)
	r.prev = ss
	r.windows = append(r.windows, w)
	plog.Infof("[%d sec] records: %d writes (%d KB), ring info: %d writes (%d KB), "+
		"window: %d KB, total: %.2f MB",
		int64(w.Elapsed.Seconds()),
		w.Delta.RecordWrites, w.RecordBytes/1024,
		w.Delta.BlobWrites, w.BlobBytes/1024,
		w.Bytes()/1024, toMB(w.TotalBytes))
	if w.Delta.RecordFailures > 0 || w.Delta.BlobFailures > 0 {
		plog.Warningf("[%d sec] failed attempts, records: %d, ring info: %d",
			int64(w.Elapsed.Seconds()),
			w.Delta.RecordFailures, w.Delta.BlobFailures)
	}
	r.writeCSV(w.csvRow())
	return w
}

func (r *statsReporter) window(elapsed time.Duration,
	ss counters.Snapshot) Window {
	delta := ss.Sub(r.prev)
	return Window{
		Elapsed:     elapsed,
		Delta:       delta,
		Total:       ss,
		RecordBytes: delta.RecordWrites * r.recordSize,
		BlobBytes:   delta.BlobWrites * r.blobSize,
		TotalBytes:  ss.RecordWrites*r.recordSize + ss.BlobWrites*r.blobSize,
	}
}

func (r *statsReporter) writeCSV(row []string) {
	if r.csv == nil {
		return
	}
	if err := r.csv.Write(row); err != nil {
		plog.Errorf("failed to write csv report, %v", err)
		return
	}
	r.csv.Flush()
	if err := r.csv.Error(); err != nil {
		plog.Errorf("failed to flush csv report, %v", err)
	}
}
