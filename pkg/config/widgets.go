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

package config

import (
	"fmt"
	"image/color"
	"time"

	"github.com/ledwidgets/ledwidgets/pkg/device"
	"github.com/ledwidgets/ledwidgets/pkg/render"
)

// RenderConfig builds the graph configuration. A zero max scale uses the
// encoding's default.
func (p Ping) RenderConfig() (render.Config, error) {
	enc, err := render.ParseEncoding(p.Encoding)
	if err != nil {
		return render.Config{}, err
	}
	cfg := render.DefaultConfig(enc)
	if p.MaxScale > 0 {
		cfg.MaxScale = p.MaxScale
	}
	cfg.Bands.LowMax = p.LowMax
	cfg.Bands.MidMax = p.MidMax
	if cfg.Accent, err = Color(p.Accent, cfg.Accent); err != nil {
		return render.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return render.Config{}, fmt.Errorf("invalid ping graph: %w", err)
	}
	return cfg, nil
}

func (p Ping) IntervalDuration() time.Duration {
	return ParseDuration(p.Interval, time.Second)
}

func (p Ping) TimeoutDuration() time.Duration {
	return ParseDuration(p.Timeout, 900*time.Millisecond)
}

func (c Clock) IntervalDuration() time.Duration {
	return ParseDuration(c.Interval, time.Second)
}

// Location resolves the configured timezone, falling back to local time.
func (c Clock) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid clock timezone: %w", err)
	}
	return loc, nil
}

func (w Weather) IntervalDuration() time.Duration {
	return ParseDuration(w.Interval, 3*time.Second)
}

func (d Device) TimeoutDuration() time.Duration {
	return ParseDuration(d.Timeout, 5*time.Second)
}

// Color parses a configured hex colour, returning fallback when unset.
func Color(s string, fallback color.RGBA) (color.RGBA, error) {
	if s == "" {
		return fallback, nil
	}
	c, err := device.ParseHexColor(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("colour %q: %w", s, err)
	}
	return c, nil
}
