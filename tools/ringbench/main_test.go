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

package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lni/ringbench/config"
)

func TestParseArgsDefaults(t *testing.T) {
	cfg, err := parseArgs(nil, "")
	require.NoError(t, err)
	assert.Equal(t, config.Batched, cfg.Strategy)
	assert.Equal(t, 300*time.Second, cfg.Duration)
	assert.Equal(t, uint64(100), cfg.WorkerCount)
	assert.Equal(t, "/opt/emmc_test/data", cfg.DataDir)
}

func TestParseArgs(t *testing.T) {
	cfg, err := parseArgs([]string{"0", "35", "1"}, "/tmp/ringbench")
	require.NoError(t, err)
	assert.Equal(t, config.Eager, cfg.Strategy)
	assert.Equal(t, 35*time.Second, cfg.Duration)
	assert.Equal(t, uint64(1), cfg.WorkerCount)
	assert.Equal(t, "/tmp/ringbench", cfg.DataDir)
}

func TestParseArgsRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		args []string
		err  error
	}{
		{[]string{"2"}, config.ErrInvalidStrategy},
		{[]string{"-1"}, config.ErrInvalidStrategy},
		{[]string{"eager"}, config.ErrInvalidStrategy},
		{[]string{"1", "0"}, config.ErrInvalidDuration},
		{[]string{"1", "-5"}, config.ErrInvalidDuration},
		{[]string{"1", "10", "0"}, config.ErrInvalidWorkerCount},
		{[]string{"1", "10", "5001"}, config.ErrInvalidWorkerCount},
		{[]string{"1", "10", "many"}, config.ErrInvalidWorkerCount},
	}
	for idx, tt := range tests {
		_, err := parseArgs(tt.args, "")
		assert.True(t, errors.Is(err, tt.err), "test %d, got %v", idx, err)
	}
	_, err := parseArgs([]string{"1", "10", "10", "10"}, "")
	assert.Error(t, err)
}

func TestInvalidArgsPrintUsage(t *testing.T) {
	cmd := newRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"7"})
	err := cmd.Execute()
	require.True(t, errors.Is(err, config.ErrInvalidStrategy))
	assert.Contains(t, out.String(), "Usage:")
}

func TestInvalidLogLevelIsRejected(t *testing.T) {
	cmd := newRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"--log-level", "loud", "1", "1", "1"})
	require.Error(t, cmd.Execute())
}
