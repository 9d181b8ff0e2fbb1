// LED Widgets
// Copyright (c) 2025 The LED Widgets Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of LED Widgets.
//
// LED Widgets is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// LED Widgets is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with LED Widgets.  If not, see <http://www.gnu.org/licenses/>.

//go:build deadlock

// Package syncutil wraps the sync mutexes so development builds can swap in
// a deadlock detector with -tags=deadlock.
package syncutil

import (
	"os"
	"time"

	deadlock "github.com/sasha-s/go-deadlock"
)

// DeadlockEnabled reports whether lock tracking is compiled in.
const DeadlockEnabled = true

// TimeoutEnv overrides how long a lock may be held before it is reported.
const TimeoutEnv = "LEDWIDGETS_DEADLOCK_TIMEOUT"

func init() {
	deadlock.Opts.DeadlockTimeout = 15 * time.Second
	if d, err := time.ParseDuration(os.Getenv(TimeoutEnv)); err == nil && d > 0 {
		deadlock.Opts.DeadlockTimeout = d
	}
}

type Mutex struct {
	deadlock.Mutex
}

type RWMutex struct {
	deadlock.RWMutex
}
