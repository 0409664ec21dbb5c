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

package fileutil

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/oserror"

	"github.com/lni/ringbench/internal/vfs"
)

const (
	// DefaultDirFileMode is the default file mode for directories.
	DefaultDirFileMode = 0750
)

func ws(err error) error {
	return errors.WithStack(err)
}

// Exist returns whether the specified filesystem entry exists.
func Exist(name string, fs vfs.IFS) (bool, error) {
	if len(name) == 0 {
		return false, nil
	}
	_, err := fs.Stat(name)
	if err != nil {
		if oserror.IsNotExist(err) {
			return false, nil
		}
		return false, ws(err)
	}
	return true, nil
}

// DirExist returns whether the specified filesystem entry exists and is a
// directory.
func DirExist(name string, fs vfs.IFS) (bool, error) {
	if len(name) == 0 {
		return false, nil
	}
	fi, err := fs.Stat(name)
	if err != nil {
		if oserror.IsNotExist(err) {
			return false, nil
		}
		return false, ws(err)
	}
	return fi.IsDir(), nil
}

// MkdirAll creates the specified dir along with any necessary parents. The
// parent of every directory created is synced.
func MkdirAll(dir string, fs vfs.IFS) error {
	// the root and the working directory always exist
	if isTopDir(dir, fs) {
		return nil
	}
	exist, err := Exist(dir, fs)
	if err != nil {
		return err
	}
	if exist {
		return nil
	}
	parent := fs.PathDir(dir)
	if err := MkdirAll(parent, fs); err != nil {
		return err
	}
	if err := fs.MkdirAll(dir, DefaultDirFileMode); err != nil {
		return ws(err)
	}
	return SyncDir(parent, fs)
}

func isTopDir(dir string, fs vfs.IFS) bool {
	return len(dir) == 0 || fs.PathDir(dir) == dir
}

// SyncDir calls fsync on the specified directory.
func SyncDir(dir string, fs vfs.IFS) (err error) {
	if dir == "." {
		return nil
	}
	f, err := fs.OpenDir(dir)
	if err != nil {
		return ws(err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = ws(cerr)
		}
	}()
	return ws(f.Sync())
}

// CreateAndSync creates or truncates the file at fp, writes the full content
// of data into it and makes the content durable before closing the file.
// Nothing is retried, a failed step is returned as is.
func CreateAndSync(fp string, data []byte, fs vfs.IFS) (err error) {
	f, err := fs.Create(fp)
	if err != nil {
		return ws(err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = ws(cerr)
		}
	}()
	n, err := f.Write(data)
	if err != nil {
		return ws(err)
	}
	if n != len(data) {
		return ws(io.ErrShortWrite)
	}
	return ws(f.Sync())
}

// OverwriteAndSync writes data at offset 0 of the existing file fp without
// truncating it, then makes the content durable before closing the file.
// The file keeps its size when data is not longer than its content. fp must
// already exist.
func OverwriteAndSync(fp string, data []byte, fs vfs.IFS) (err error) {
	// renaming to itself is a no-op, the file is opened O_RDWR without O_TRUNC
	f, err := fs.ReuseForWrite(fp, fp)
	if err != nil {
		return ws(err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = ws(cerr)
		}
	}()
	n, err := f.WriteAt(data, 0)
	if err != nil {
		return ws(err)
	}
	if n != len(data) {
		return ws(io.ErrShortWrite)
	}
	return ws(f.Sync())
}

// FileSize returns the size in bytes of the file at fp.
func FileSize(fp string, fs vfs.IFS) (int64, error) {
	fi, err := fs.Stat(fp)
	if err != nil {
		return 0, ws(err)
	}
	if fi.IsDir() {
		return 0, errors.Newf("%s is a directory", fp)
	}
	return fi.Size(), nil
}
