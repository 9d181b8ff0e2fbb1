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

package widgets

import (
	"context"
	"image/color"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/ledwidgets/ledwidgets/pkg/device"
	"github.com/ledwidgets/ledwidgets/pkg/helpers"
	"github.com/rs/zerolog/log"
)

// Clock widget defaults.
const (
	ClockAppID      = "my_app"
	ClockDateLayout = "02.01.2006"
	ClockTimeLayout = "15:04:05"
	ClockOffsetX    = 3
	clockTimeY      = 6
)

// ClockOptions configures a ClockWidget.
type ClockOptions struct {
	Location  *time.Location
	AppID     string
	DateColor color.RGBA
	TimeColor color.RGBA
	Interval  time.Duration
	OffsetX   int
	Timeout   int
}

// DefaultClockOptions returns the stock clock layout in local time.
func DefaultClockOptions() ClockOptions {
	return ClockOptions{
		Location:  time.Local,
		AppID:     ClockAppID,
		DateColor: color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		TimeColor: color.RGBA{R: 0xaa, G: 0xff, A: 0xff},
		Interval:  time.Second,
		OffsetX:   ClockOffsetX,
		Timeout:   2,
	}
}

// ClockWidget draws the date above the time, both centred.
type ClockWidget struct {
	display  device.Display
	clock    clockwork.Clock
	opts     ClockOptions
	warnedAt time.Time
}

// NewClockWidget creates a clock widget. A nil clock uses the real one.
func NewClockWidget(display device.Display, clock clockwork.Clock, opts ClockOptions) *ClockWidget {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &ClockWidget{display: display, clock: clock, opts: opts}
}

func (*ClockWidget) Name() string {
	return "clock"
}

func (w *ClockWidget) Interval() time.Duration {
	return w.opts.Interval
}

// Tick draws the current date and time.
func (w *ClockWidget) Tick(ctx context.Context) error {
	now := w.clock.Now().In(w.opts.Location)
	if !helpers.IsClockReliable(now) && now.Sub(w.warnedAt) > time.Hour {
		log.Warn().Time("now", now).Msg("system clock looks unset, showing it anyway")
		w.warnedAt = now
	}
	return w.display.Draw(ctx, w.Payload(now))
}

// Payload builds the draw request for now.
func (w *ClockWidget) Payload(now time.Time) device.Payload {
	date := now.Format(ClockDateLayout)
	clock := now.Format(ClockTimeLayout)
	return device.Payload{
		AppID: w.opts.AppID,
		Elements: []device.Element{
			device.Text(device.TextOptions{
				ID:      "date",
				Text:    date,
				Font:    device.FontSmall,
				Color:   w.opts.DateColor,
				Timeout: w.opts.Timeout,
				X:       device.FontSmall.CenterX(date, device.Width) + w.opts.OffsetX,
				Width:   device.Width,
			}),
			device.Text(device.TextOptions{
				ID:      "time",
				Text:    clock,
				Font:    device.FontBig,
				Color:   w.opts.TimeColor,
				Timeout: w.opts.Timeout,
				X:       device.FontBig.CenterX(clock, device.Width) + w.opts.OffsetX,
				Y:       clockTimeY,
				Width:   device.Width,
			}),
		},
	}
}
