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

package vfs

import (
	gvfs "github.com/lni/vfs"
)

// ErrInjected is the error returned by a wrapped fs when an injection fires.
var ErrInjected = gvfs.ErrInjected

// Op is the type of fs operation an injection is bound to.
type Op = gvfs.Op

var (
	// OpWrite matches file writes, including Create.
	OpWrite = gvfs.OpWrite
	// OpSync matches fsync calls.
	OpSync = gvfs.OpSync
)

// OnIndex returns an injector that fails the (index+1)-th matching op.
func OnIndex(index int32, op Op) *gvfs.InjectIndex {
	return gvfs.OnIndex(index, op)
}

// Wrap returns fs with errors injected by inj.
func Wrap(fs IFS, inj gvfs.Injector) IFS {
	return gvfs.Wrap(fs, inj)
}
