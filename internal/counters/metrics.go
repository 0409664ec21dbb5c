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

package counters

import (
	"fmt"
	"io"
	"time"

	"github.com/VictoriaMetrics/metrics"
)

// Metrics exposes the counters of a run in Prometheus format. The mutex
// guarded Counters remain the source of truth, Metrics is a mirror.
type Metrics struct {
	set            *metrics.Set
	recordWrites   *metrics.Counter
	blobWrites     *metrics.Counter
	recordFailures *metrics.Counter
	blobFailures   *metrics.Counter
	bytesWritten   *metrics.Counter
	persistLatency *metrics.Histogram
	recordSize     uint64
	blobSize       uint64
}

// NewMetrics creates the metrics of a run identified by runID.
func NewMetrics(runID string, strategy string,
	recordSize uint64, blobSize uint64) *Metrics {
	set := metrics.NewSet()
	label := fmt.Sprintf(`{run="%s",strategy="%s"}`, runID, strategy)
	name := func(n string) string {
		return fmt.Sprintf("ringbench_%s%s", n, label)
	}
	return &Metrics{
		set:            set,
		recordWrites:   set.NewCounter(name("record_writes_total")),
		blobWrites:     set.NewCounter(name("blob_writes_total")),
		recordFailures: set.NewCounter(name("record_write_failures_total")),
		blobFailures:   set.NewCounter(name("blob_write_failures_total")),
		bytesWritten:   set.NewCounter(name("bytes_written_total")),
		persistLatency: set.NewHistogram(name("blob_persist_seconds")),
		recordSize:     recordSize,
		blobSize:       blobSize,
	}
}

// ObservePersist records the latency of a single ring info persist.
func (m *Metrics) ObservePersist(d time.Duration) {
	if m == nil {
		return
	}
	m.persistLatency.Update(d.Seconds())
}

// WritePrometheus writes all run metrics in Prometheus text format to w.
func (m *Metrics) WritePrometheus(w io.Writer) {
	if m == nil {
		return
	}
	m.set.WritePrometheus(w)
}

// BytesWritten returns the mirrored total bytes written.
func (m *Metrics) BytesWritten() uint64 {
	if m == nil {
		return 0
	}
	return m.bytesWritten.Get()
}

func (m *Metrics) recordWritten() {
	if m == nil {
		return
	}
	m.recordWrites.Inc()
	m.bytesWritten.Add(int(m.recordSize))
}

func (m *Metrics) recordFailed() {
	if m == nil {
		return
	}
	m.recordFailures.Inc()
}

func (m *Metrics) blobWritten() {
	if m == nil {
		return
	}
	m.blobWrites.Inc()
	m.bytesWritten.Add(int(m.blobSize))
}

func (m *Metrics) blobFailed() {
	if m == nil {
		return
	}
	m.blobFailures.Inc()
}
