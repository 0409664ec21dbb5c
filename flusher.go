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
	"time"

	"github.com/lni/ringbench/internal/blob"
	"github.com/lni/ringbench/internal/counters"
)

// flushController persists the ring info blob once per flush window when
// records were touched in that window. It is only used by the batched
// strategy.
type flushController struct {
	interval time.Duration
	blob     *blob.Writer
	counters *counters.Counters
	started  time.Time
	// number of windows evaluated and number of windows that persisted
	evaluated uint64
	flushed   uint64
}

func newFlushController(interval time.Duration,
	bw *blob.Writer, c *counters.Counters) *flushController {
	return &flushController{
		interval: interval,
		blob:     bw,
		counters: c,
	}
}

// run waits one full interval before each evaluation. The next window starts
// after the evaluation completes, so a slow persist delays it.
func (f *flushController) run(stopC <-chan struct{}) {
	f.started = time.Now()
	timer := time.NewTimer(f.interval)
	defer timer.Stop()
	for {
		select {
		case <-stopC:
			return
		case <-timer.C:
			f.evaluate(time.Since(f.started))
			timer.Reset(f.interval)
		}
	}
}

// evaluate resets the touched counter and persists the blob when at least
// one record was touched. It returns whether the blob was persisted.
func (f *flushController) evaluate(elapsed time.Duration) bool {
	f.evaluated++
	touched := f.counters.TakeTouched()
	if touched == 0 {
		plog.Debugf("[%d sec] idle flush window, nothing to persist",
			int64(elapsed.Seconds()))
		return false
	}
	if err := f.blob.Persist(); err != nil {
		// already logged and counted as a failed persist
		return false
	}
	f.flushed++
	plog.Infof("[%d sec] flushed: %d records updated, ring info written",
		int64(elapsed.Seconds()), touched)
	return true
}
