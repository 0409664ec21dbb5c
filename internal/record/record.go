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
Package record manages the fixed size record files rewritten by workers.

Each record is a file named after its zero padded id, e.g. 00042.dat. Records
are created zero filled once and then overwritten in place, they are never
truncated or deleted during a run.
*/
package record

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lni/ringbench/internal/fileutil"
	"github.com/lni/ringbench/internal/settings"
	"github.com/lni/ringbench/internal/vfs"
	"github.com/lni/ringbench/logger"
)

var (
	plog = logger.GetLogger("record")
)

// Filename returns the filename of the record identified by id.
func Filename(id uint64) string {
	return fmt.Sprintf("%05d.dat", id)
}

// Store is the set of record files kept in a single directory.
type Store struct {
	fs   vfs.IFS
	dir  string
	size uint64
}

// NewStore creates a Store for records of the specified size kept in dir.
func NewStore(dir string, size uint64, fs vfs.IFS) *Store {
	if size == 0 {
		panic("zero record size")
	}
	return &Store{fs: fs, dir: dir, size: size}
}

// Size returns the size in bytes of each record.
func (s *Store) Size() uint64 {
	return s.size
}

// Path returns the full path of the record identified by id.
func (s *Store) Path(id uint64) string {
	return s.fs.PathJoin(s.dir, Filename(id))
}

// Bootstrap creates the data directory and count zero filled records,
// overwriting any existing record with the same id. ctx is checked before
// each record is created.
func (s *Store) Bootstrap(ctx context.Context, count uint64) error {
	if err := fileutil.MkdirAll(s.dir, s.fs); err != nil {
		return errors.Wrapf(err, "failed to create %s", s.dir)
	}
	plog.Infof("creating %d record files in %s", count, s.dir)
	step := settings.Soft.BootstrapProgressStep
	zero := make([]byte, s.size)
	for id := uint64(0); id < count; id++ {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "created %d of %d record files", id, count)
		}
		if err := fileutil.CreateAndSync(s.Path(id), zero, s.fs); err != nil {
			return errors.Wrapf(err, "failed to create %s", s.Path(id))
		}
		if step > 0 && (id+1)%step == 0 {
			plog.Infof("created %d record files", id+1)
		}
	}
	return fileutil.SyncDir(s.dir, s.fs)
}

// Write overwrites the full content of the record identified by id in place
// with payload and makes it durable. payload must be exactly Size() bytes.
// A failed Write never changes the size of the record.
func (s *Store) Write(id uint64, payload []byte) error {
	if uint64(len(payload)) != s.size {
		plog.Panicf("payload size %d, want %d", len(payload), s.size)
	}
	return fileutil.OverwriteAndSync(s.Path(id), payload, s.fs)
}

// FormatPayload formats the "seconds.nanoseconds:seq" record content into
// buf. The content is truncated to len(buf) and the rest of buf is zero
// filled.
func FormatPayload(buf []byte, now time.Time, seq uint64) []byte {
	v := make([]byte, 0, 48)
	v = strconv.AppendInt(v, now.Unix(), 10)
	v = append(v, '.')
	ns := strconv.AppendInt(nil, int64(now.Nanosecond()), 10)
	for i := len(ns); i < 9; i++ {
		v = append(v, '0')
	}
	v = append(v, ns...)
	v = append(v, ':')
	v = strconv.AppendUint(v, seq, 10)
	n := copy(buf, v)
	for i := n; i < len(buf); i++ {
		buf[i] = 0
	}
	return buf
}
