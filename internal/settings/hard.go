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
Package settings is used for managing internal parameters of the benchmark
that are not exposed on the command line.
*/
package settings

import (
	"github.com/lni/ringbench/logger"
)

var (
	plog = logger.GetLogger("settings")
)

const (
	// RecordSize is the size in bytes of each record file.
	RecordSize uint64 = 64
	// RecordPerBlobEntry is the per record metadata footprint inside the ring
	// info blob.
	RecordPerBlobEntry uint64 = 88
	// DefaultDataDir is the default location of record files and ring info.
	DefaultDataDir = "/opt/emmc_test/data"
	// BlobFilename is the filename of the ring info blob.
	BlobFilename = "ring_info"
)

//
// This file contains hard configuration values that describe the workload
// being measured. Changing them changes what is measured and makes results
// incomparable with earlier runs.
//
// We do have a mechanism to overwrite the default values for the hard struct.
// Place a json file named ringbench-hard-settings.json in the current working
// directory, all fields in the json file will be applied to overwrite the
// default setting values. e.g. for a json file with the following content -
//
// {
//   "RecordCount": 10000,
// }
//
// hard.RecordCount will be set to 10000
//

// Hard is the hard settings that define the measured workload.
var Hard = getHardSettings()

type hard struct {
	// RecordCount is the number of record files created at bootstrap.
	RecordCount uint64
	// BlobSize is the size in bytes of the ring info blob, one
	// RecordPerBlobEntry sized slot for each of the default 5000 records.
	BlobSize uint64
	// BlobFiller is the byte value used to fill the ring info blob.
	BlobFiller uint64
}

func getHardSettings() hard {
	org := getDefaultHardSettings()
	overwriteHardSettings(&org)
	return org
}

func getDefaultHardSettings() hard {
	return hard{
		RecordCount: 5000,
		BlobSize:    440 * 1024,
		BlobFiller:  0xAB,
	}
}
