// Copyright 2017 Alejandro Sirgo Rica
//
// This file is part of Modbus_exporter.
//
//     Modbus_exporter is free software: you can redistribute it and/or modify
//     it under the terms of the GNU General Public License as published by
//     the Free Software Foundation, either version 3 of the License, or
//     (at your option) any later version.
//
//     Modbus_exporter is distributed in the hope that it will be useful,
//     but WITHOUT ANY WARRANTY; without even the implied warranty of
//     MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
//     GNU General Public License for more details.
//
//     You should have received a copy of the GNU General Public License
//     along with Modbus_exporter.  If not, see <http://www.gnu.org/licenses/>.

// Package glog keeps a flapping serial line from flooding the log with the
// same error on every scrape.
package glog

import (
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// ErrorLogger logs errors at error level, dropping an error if the same
// message was seen less than window ago. A steadily repeating error is
// therefore logged once, and again after it stayed away for a window.
type ErrorLogger struct {
	logger log.Logger
	window time.Duration
	now    func() time.Time

	mu        sync.Mutex
	trackLogs map[string]time.Time
}

// New returns an ErrorLogger writing to logger.
func New(logger log.Logger, window time.Duration) *ErrorLogger {
	return &ErrorLogger{
		logger:    logger,
		window:    window,
		now:       time.Now,
		trackLogs: make(map[string]time.Time),
	}
}

// Error logs err with msg unless it was logged within the window. It reports
// whether the error was written.
func (l *ErrorLogger) Error(msg string, err error) bool {
	key := msg + ": " + err.Error()
	now := l.now()

	l.mu.Lock()
	t, ok := l.trackLogs[key]
	l.trackLogs[key] = now
	l.mu.Unlock()

	// logs the error if it has not been logged yet or
	// if it did not happen within the window.
	if ok && now.Sub(t) < l.window {
		return false
	}
	level.Error(l.logger).Log("msg", msg, "err", err)
	return true
}
