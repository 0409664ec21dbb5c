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
Package blob implements the durable writer of the ring info blob.

Every Persist call writes the full blob, there is no partial or incremental
update. Concurrent Persist calls are not serialized, they race on the same
file and the last writer wins.
*/
package blob

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lni/ringbench/internal/counters"
	"github.com/lni/ringbench/internal/fileutil"
	"github.com/lni/ringbench/internal/vfs"
	"github.com/lni/ringbench/logger"
)

var (
	plog = logger.GetLogger("blob")
)

// Writer persists the ring info blob.
type Writer struct {
	fs       vfs.IFS
	fp       string
	size     uint64
	filler   byte
	counters *counters.Counters
	metrics  *counters.Metrics
	pool     sync.Pool
}

// NewWriter creates a Writer that persists a size bytes blob filled with
// filler to fp. Successful and failed persists are accounted in c.
func NewWriter(fp string, size uint64, filler byte,
	c *counters.Counters, m *counters.Metrics, fs vfs.IFS) *Writer {
	if size == 0 {
		panic("zero blob size")
	}
	w := &Writer{
		fs:       fs,
		fp:       fp,
		size:     size,
		filler:   filler,
		counters: c,
		metrics:  m,
	}
	w.pool.New = func() interface{} {
		buf := make([]byte, size)
		return &buf
	}
	return w
}

// Path returns the location of the blob.
func (w *Writer) Path() string {
	return w.fp
}

// Size returns the size of the blob in bytes.
func (w *Writer) Size() uint64 {
	return w.size
}

// Persist truncates the blob file, writes the full blob and syncs it. The
// blob write counter is only incremented on success. A failure is logged,
// counted as a failed attempt and returned, it is never retried.
func (w *Writer) Persist() error {
	start := time.Now()
	bufp := w.getBuffer()
	defer w.pool.Put(bufp)
	if err := fileutil.CreateAndSync(w.fp, *bufp, w.fs); err != nil {
		w.counters.BlobFailed()
		plog.Errorf("failed to persist %s, %v", w.fp, err)
		return errors.Wrapf(err, "failed to persist %s", w.fp)
	}
	w.metrics.ObservePersist(time.Since(start))
	w.counters.BlobWritten()
	return nil
}

// getBuffer returns a pooled buffer filled with the filler byte. The content
// is refilled on every call so the cost of a persist does not depend on the
// caller or on the history of the buffer.
func (w *Writer) getBuffer() *[]byte {
	bufp := w.pool.Get().(*[]byte)
	buf := *bufp
	for i := range buf {
		buf[i] = w.filler
	}
	return bufp
}
