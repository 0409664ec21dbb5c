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

package settings

//
// Tuning the parameters here changes the pacing of the benchmark, it does
// not change what a single record write or ring info persist costs.
//
// To tune these parameters, place a json file named
// ringbench-soft-settings.json in the current working directory, all fields
// in the json file will be applied to overwrite the default setting values.
// e.g. for a json file with the following content -
//
// {
//   "FlushIntervalSecond": 60,
//   "StatsIntervalSecond": 5
// }
//
// soft.FlushIntervalSecond will be 60,
// soft.StatsIntervalSecond will be 5
//

// Soft is the soft settings that can be changed between runs.
var Soft = getSoftSettings()

type soft struct {
	// FlushIntervalSecond is the flush window length of the batched strategy.
	FlushIntervalSecond uint64
	// StatsIntervalSecond is the period of the statistics reporter.
	StatsIntervalSecond uint64
	// SweepPauseMillisecond is how long a worker pauses between two sweeps of
	// its record range.
	SweepPauseMillisecond uint64
	// BootstrapProgressStep controls how often record creation progress is
	// logged.
	BootstrapProgressStep uint64
	// DefaultDurationSecond is the test duration used when none is specified.
	DefaultDurationSecond uint64
	// DefaultWorkerCount is the number of workers used when none is
	// specified.
	DefaultWorkerCount uint64
}

func getSoftSettings() soft {
	org := getDefaultSoftSettings()
	overwriteSoftSettings(&org)
	return org
}

func getDefaultSoftSettings() soft {
	return soft{
		FlushIntervalSecond:   30,
		StatsIntervalSecond:   10,
		SweepPauseMillisecond: 1,
		BootstrapProgressStep: 1000,
		DefaultDurationSecond: 300,
		DefaultWorkerCount:    100,
	}
}
