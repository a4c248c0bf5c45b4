// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package clog provides the pluggable level logger used across the
// association, xDLMS, and data-link layers.
package clog

import (
	"log"
	"os"
	"sync/atomic"
)

// LogProvider is the interface a concrete logging backend must implement.
// Trace carries APDU/frame hex dumps; the other four follow RFC5424.
type LogProvider interface {
	Critical(format string, v ...interface{})
	Error(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Debug(format string, v ...interface{})
	Trace(format string, v ...interface{})
}

// Clog wraps a LogProvider with an atomic on/off switch so callers can
// enable tracing without reconstructing the client.
type Clog struct {
	provider LogProvider
	has      uint32
}

// NewLogger creates a new log with the specified prefix, backed by the
// standard library logger.
func NewLogger(prefix string) Clog {
	return Clog{
		defaultLogger{
			log.New(os.Stdout, prefix, log.LstdFlags),
		},
		0,
	}
}

// LogMode enables or disables log output.
func (sf *Clog) LogMode(enable bool) {
	if enable {
		atomic.StoreUint32(&sf.has, 1)
	} else {
		atomic.StoreUint32(&sf.has, 0)
	}
}

// SetLogProvider installs a custom provider.
func (sf *Clog) SetLogProvider(p LogProvider) {
	if p != nil {
		sf.provider = p
	}
}

// Critical logs a CRITICAL level message.
func (sf Clog) Critical(format string, v ...interface{}) {
	if atomic.LoadUint32(&sf.has) == 1 {
		sf.provider.Critical(format, v...)
	}
}

// Error logs an ERROR level message.
func (sf Clog) Error(format string, v ...interface{}) {
	if atomic.LoadUint32(&sf.has) == 1 {
		sf.provider.Error(format, v...)
	}
}

// Warn logs a WARN level message.
func (sf Clog) Warn(format string, v ...interface{}) {
	if atomic.LoadUint32(&sf.has) == 1 {
		sf.provider.Warn(format, v...)
	}
}

// Debug logs a DEBUG level message.
func (sf Clog) Debug(format string, v ...interface{}) {
	if atomic.LoadUint32(&sf.has) == 1 {
		sf.provider.Debug(format, v...)
	}
}

// Trace logs a TRACE level message, typically raw APDU/frame bytes.
func (sf Clog) Trace(format string, v ...interface{}) {
	if atomic.LoadUint32(&sf.has) == 1 {
		sf.provider.Trace(format, v...)
	}
}

// default log
type defaultLogger struct {
	*log.Logger
}

var _ LogProvider = (*defaultLogger)(nil)

func (sf defaultLogger) Critical(format string, v ...interface{}) {
	sf.Printf("[C]: "+format, v...)
}

func (sf defaultLogger) Error(format string, v ...interface{}) {
	sf.Printf("[E]: "+format, v...)
}

func (sf defaultLogger) Warn(format string, v ...interface{}) {
	sf.Printf("[W]: "+format, v...)
}

func (sf defaultLogger) Debug(format string, v ...interface{}) {
	sf.Printf("[D]: "+format, v...)
}

func (sf defaultLogger) Trace(format string, v ...interface{}) {
	sf.Printf("[T]: "+format, v...)
}
