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

	"github.com/lni/ringbench/config"
	"github.com/lni/ringbench/internal/blob"
	"github.com/lni/ringbench/internal/counters"
	"github.com/lni/ringbench/internal/record"
)

// worker repeatedly rewrites every record in the range it owns. No other
// worker ever touches records in that range.
type worker struct {
	workerID uint64
	owned    config.Range
	strategy config.Strategy
	pause    time.Duration
	records  *record.Store
	blob     *blob.Writer
	counters *counters.Counters
	seq      uint64
	buf      []byte
}

func newWorker(workerID uint64, owned config.Range, strategy config.Strategy,
	pause time.Duration, records *record.Store, bw *blob.Writer,
	c *counters.Counters) *worker {
	return &worker{
		workerID: workerID,
		owned:    owned,
		strategy: strategy,
		pause:    pause,
		records:  records,
		blob:     bw,
		counters: c,
		buf:      make([]byte, records.Size()),
	}
}

func (w *worker) run(stopC <-chan struct{}) {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		if !w.sweep(stopC) {
			return
		}
		if w.pause == 0 {
			select {
			case <-stopC:
				return
			default:
			}
			continue
		}
		if timer == nil {
			timer = time.NewTimer(w.pause)
		} else {
			timer.Reset(w.pause)
		}
		select {
		case <-stopC:
			return
		case <-timer.C:
		}
	}
}

// sweep updates every owned record once. It returns false when the stop
// signal was observed before the sweep completed.
func (w *worker) sweep(stopC <-chan struct{}) bool {
	for id := w.owned.Start; id < w.owned.End; id++ {
		select {
		case <-stopC:
			return false
		default:
		}
		w.update(id)
	}
	return true
}

func (w *worker) update(id uint64) {
	record.FormatPayload(w.buf, time.Now(), w.seq)
	w.seq++
	if err := w.records.Write(id, w.buf); err != nil {
		w.counters.RecordFailed()
		plog.Warningf("worker %d failed to write %s, %v",
			w.workerID, w.records.Path(id), err)
		return
	}
	w.counters.RecordWritten()
	if w.strategy == config.Eager {
		// failures are logged and counted by the blob writer
		_ = w.blob.Persist()
	}
}
