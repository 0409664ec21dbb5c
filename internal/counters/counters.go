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
Package counters implements the write counters shared by record workers, the
flush controller and the statistics reporter.

All counters are guarded by a single mutex so paired counters are always
updated and read together. The mutex is never held across I/O.
*/
package counters

import (
	"sync"
)

// Snapshot is a point in time copy of the monotonic counters.
type Snapshot struct {
	RecordWrites   uint64
	BlobWrites     uint64
	RecordFailures uint64
	BlobFailures   uint64
}

// Sub returns the delta between s and an earlier snapshot prev.
func (s Snapshot) Sub(prev Snapshot) Snapshot {
	return Snapshot{
		RecordWrites:   s.RecordWrites - prev.RecordWrites,
		BlobWrites:     s.BlobWrites - prev.BlobWrites,
		RecordFailures: s.RecordFailures - prev.RecordFailures,
		BlobFailures:   s.BlobFailures - prev.BlobFailures,
	}
}

// Counters is the shared write accounting of a single run.
type Counters struct {
	mu             sync.Mutex
	recordWrites   uint64
	blobWrites     uint64
	recordFailures uint64
	blobFailures   uint64
	// records touched since the last flush evaluation
	touched uint64
	metrics *Metrics
}

// New creates a Counters instance. When m is not nil, every update is
// mirrored into m.
func New(m *Metrics) *Counters {
	return &Counters{metrics: m}
}

// RecordWritten records a successful record write. Both the records-written
// counter and the touched counter are incremented in the same critical
// section.
func (c *Counters) RecordWritten() {
	c.mu.Lock()
	c.recordWrites++
	c.touched++
	c.mu.Unlock()
	c.metrics.recordWritten()
}

// RecordFailed records a failed record write attempt.
func (c *Counters) RecordFailed() {
	c.mu.Lock()
	c.recordFailures++
	c.mu.Unlock()
	c.metrics.recordFailed()
}

// BlobWritten records a successful ring info persist.
func (c *Counters) BlobWritten() {
	c.mu.Lock()
	c.blobWrites++
	c.mu.Unlock()
	c.metrics.blobWritten()
}

// BlobFailed records a failed ring info persist attempt.
func (c *Counters) BlobFailed() {
	c.mu.Lock()
	c.blobFailures++
	c.mu.Unlock()
	c.metrics.blobFailed()
}

// TakeTouched returns the number of records touched since the previous call
// and resets it to zero.
func (c *Counters) TakeTouched() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.touched
	c.touched = 0
	return v
}

// Touched returns the number of records touched since the last TakeTouched
// call without resetting it.
func (c *Counters) Touched() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.touched
}

// Snapshot returns a consistent copy of the monotonic counters.
func (c *Counters) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		RecordWrites:   c.recordWrites,
		BlobWrites:     c.blobWrites,
		RecordFailures: c.recordFailures,
		BlobFailures:   c.blobFailures,
	}
}
