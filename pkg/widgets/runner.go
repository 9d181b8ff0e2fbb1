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

// Package widgets implements the polling loops that feed the display.
package widgets

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Widget produces one frame per tick.
type Widget interface {
	Name() string
	Interval() time.Duration
	Tick(ctx context.Context) error
}

// Setupper is implemented by widgets that need one-off work, such as asset
// uploads, before the first tick.
type Setupper interface {
	Setup(ctx context.Context) error
}

// Runner drives a widget at its interval.
type Runner struct {
	clock clockwork.Clock
}

// NewRunner creates a runner. A nil clock uses the real one.
func NewRunner(clock clockwork.Clock) *Runner {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Runner{clock: clock}
}

// Run calls Setup once and then Tick every interval, measured from the start
// of each tick, until ctx is cancelled. Setup and tick failures are logged
// and never stop the loop.
func (r *Runner) Run(ctx context.Context, w Widget) error {
	name := w.Name()
	log.Info().Msgf("starting %s widget (interval %s)", name, w.Interval())

	if s, ok := w.(Setupper); ok {
		if err := s.Setup(ctx); err != nil {
			log.Warn().Err(err).Msgf("%s widget setup failed", name)
		}
	}

	for {
		if ctx.Err() != nil {
			log.Info().Msgf("stopping %s widget", name)
			return nil
		}

		start := r.clock.Now()
		if err := w.Tick(ctx); err != nil && ctx.Err() == nil {
			log.Warn().Err(err).Msgf("%s widget tick failed", name)
		}

		wait := max(w.Interval()-r.clock.Since(start), 0)
		select {
		case <-ctx.Done():
			log.Info().Msgf("stopping %s widget", name)
			return nil
		case <-r.clock.After(wait):
		}
	}
}
