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

// Package ping measures round-trip latency with the operating system's ping
// utility.
package ping

import (
	"context"
	"math"
	"regexp"
	"runtime"
	"strconv"
	"time"

	"github.com/ledwidgets/ledwidgets/pkg/helpers/command"
	"github.com/ledwidgets/ledwidgets/pkg/history"
	"github.com/rs/zerolog/log"
)

// DefaultTimeout is how long a single echo request may take.
const DefaultTimeout = 900 * time.Millisecond

// Pinger measures latency to a host. A failed or timed out measurement is
// reported as a missing sample, never as an error.
type Pinger interface {
	Ping(ctx context.Context, host string) history.Sample
}

// The separator after "time" is required so the "time 0ms" loss summary on
// Linux never matches.
var (
	windowsTimeRe = regexp.MustCompile(`time[=<]\s*([0-9]+)ms`)
	unixTimeRe    = regexp.MustCompile(`time[=<]\s*([0-9]+(?:\.[0-9]+)?)\s*ms`)
)

// SystemPinger shells out to ping for a single echo request.
type SystemPinger struct {
	exec    command.Executor
	goos    string
	timeout time.Duration
}

// NewSystemPinger creates a pinger for the current OS. A nil executor uses
// the real one and a non-positive timeout uses DefaultTimeout.
func NewSystemPinger(exec command.Executor, timeout time.Duration) *SystemPinger {
	if exec == nil {
		exec = &command.RealExecutor{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &SystemPinger{exec: exec, goos: runtime.GOOS, timeout: timeout}
}

// Args returns the ping command line for goos.
func Args(goos, host string, timeout time.Duration) []string {
	if goos == "windows" {
		return []string{"-n", "1", "-w", strconv.FormatInt(timeout.Milliseconds(), 10), host}
	}
	return []string{"-c", "1", host}
}

// Ping sends one echo request. The command gets the ping timeout plus one
// second before it is killed.
func (p *SystemPinger) Ping(ctx context.Context, host string) history.Sample {
	ctx, cancel := context.WithTimeout(ctx, p.timeout+time.Second)
	defer cancel()

	// ping exits non-zero on loss, so the output is parsed regardless
	out, err := p.exec.Output(ctx, "ping", Args(p.goos, host, p.timeout)...)
	ms, ok := ParseOutput(p.goos, string(out))
	if !ok {
		log.Debug().Err(err).Msgf("no reply from %s", host)
		return history.Missing()
	}
	return history.Latency(ms)
}

// ParseOutput extracts the round-trip time from ping output, rounded to whole
// milliseconds.
func ParseOutput(goos, out string) (float64, bool) {
	re := unixTimeRe
	if goos == "windows" {
		re = windowsTimeRe
	}
	m := re.FindStringSubmatch(out)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return math.RoundToEven(v), true
}
