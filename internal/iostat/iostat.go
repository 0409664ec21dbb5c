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
Package iostat reports the block I/O the kernel accounted to this process.

The numbers are a cross check of the bytes counted by the benchmark itself,
they include filesystem metadata and journal writes caused by the workload.
*/
package iostat

const (
	// BlockSize is the unit of the kernel block I/O counters.
	BlockSize = 512
)

// Usage is the block I/O accounted to the process.
type Usage struct {
	InBlocks  int64
	OutBlocks int64
}

// OutBytes returns the output volume in bytes.
func (u Usage) OutBytes() uint64 {
	if u.OutBlocks < 0 {
		return 0
	}
	return uint64(u.OutBlocks) * BlockSize
}

// Sub returns the usage accumulated since prev.
func (u Usage) Sub(prev Usage) Usage {
	return Usage{
		InBlocks:  u.InBlocks - prev.InBlocks,
		OutBlocks: u.OutBlocks - prev.OutBlocks,
	}
}

// Read returns the block I/O of the current process. The returned bool is
// false when the platform does not provide such accounting.
func Read() (Usage, bool) {
	return read()
}
