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
Package logger manages loggers used in ringbench.
*/
package logger

import (
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
)

// LogLevel is the log level defined in ringbench.
type LogLevel int

const (
	// CRITICAL is the CRITICAL log level
	CRITICAL LogLevel = iota - 1
	// ERROR is the ERROR log level
	ERROR
	// WARNING is the WARNING log level
	WARNING
	// INFO is the INFO log level
	INFO
	// DEBUG is the DEBUG log level
	DEBUG
)

// Factory is the factory method for creating logger used for the
// specified package.
type Factory func(pkgName string) ILogger

// ILogger is the interface implemented by loggers that can be used by
// ringbench.
type ILogger interface {
	SetLevel(LogLevel)
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Panicf(format string, args ...interface{})
}

// ParseLevel returns the LogLevel named by s, e.g. "warning" or "DEBUG".
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToUpper(s) {
	case "CRITICAL":
		return CRITICAL, nil
	case "ERROR":
		return ERROR, nil
	case "WARNING", "WARN":
		return WARNING, nil
	case "INFO":
		return INFO, nil
	case "DEBUG":
		return DEBUG, nil
	}
	return INFO, errors.Newf("unknown log level %q", s)
}

// SetLoggerFactory sets the factory function used to create ILogger instances.
func SetLoggerFactory(f Factory) {
	_loggers.mu.Lock()
	defer _loggers.mu.Unlock()
	if _loggers.loggerFactory != nil {
		panic("setting the logger factory again")
	}
	_loggers.loggerFactory = f
}

// GetLogger returns the logger for the specified package name. The most common
// use case for the returned logger is to set its log verbosity level.
func GetLogger(pkgName string) ILogger {
	_loggers.mu.Lock()
	defer _loggers.mu.Unlock()
	l, ok := _loggers.loggers[pkgName]
	if !ok {
		l = &benchLogger{pkgName: pkgName}
		_loggers.loggers[pkgName] = l
	}
	return l
}

// SetLevel sets the log level of every logger obtained so far.
func SetLevel(level LogLevel) {
	_loggers.mu.Lock()
	loggers := make([]*benchLogger, 0, len(_loggers.loggers))
	for _, l := range _loggers.loggers {
		loggers = append(loggers, l)
	}
	_loggers.mu.Unlock()
	for _, l := range loggers {
		l.SetLevel(level)
	}
}

type benchLogger struct {
	mu      sync.Mutex
	logger  ILogger
	pkgName string
}

func (d *benchLogger) createILogger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.logger == nil {
		d.logger = _loggers.createILogger(d.pkgName)
	}
}

func (d *benchLogger) SetLevel(l LogLevel) {
	d.createILogger()
	d.logger.SetLevel(l)
}

func (d *benchLogger) Debugf(format string, args ...interface{}) {
	d.createILogger()
	d.logger.Debugf(format, args...)
}

func (d *benchLogger) Infof(format string, args ...interface{}) {
	d.createILogger()
	d.logger.Infof(format, args...)
}

func (d *benchLogger) Warningf(format string, args ...interface{}) {
	d.createILogger()
	d.logger.Warningf(format, args...)
}

func (d *benchLogger) Errorf(format string, args ...interface{}) {
	d.createILogger()
	d.logger.Errorf(format, args...)
}

func (d *benchLogger) Panicf(format string, args ...interface{}) {
	d.createILogger()
	d.logger.Panicf(format, args...)
}

type sysLoggers struct {
	mu            sync.Mutex
	loggers       map[string]*benchLogger
	loggerFactory Factory
}

func (l *sysLoggers) createILogger(pkgName string) ILogger {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.loggerFactory == nil {
		return createDefaultILogger(pkgName)
	}
	return l.loggerFactory(pkgName)
}

var _loggers = createSysLoggers()

func createSysLoggers() *sysLoggers {
	s := &sysLoggers{
		loggers: make(map[string]*benchLogger),
	}
	return s
}

func createDefaultILogger(pkgName string) ILogger {
	return CreateCapnsLog(pkgName)
}
