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

package render

import (
	"image"
	"image/color"
	"math"

	"github.com/ledwidgets/ledwidgets/pkg/history"
)

// Rasterizer renders history frames with a fixed, validated Config.
type Rasterizer struct {
	cfg Config
}

// New validates cfg and returns a Rasterizer bound to it.
//
//nolint:gocritic // config struct copied for immutability
func New(cfg Config) (*Rasterizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Rasterizer{cfg: cfg}, nil
}

// Config returns a copy of the rasterizer configuration.
func (r *Rasterizer) Config() Config {
	return r.cfg
}

// Render draws samples into a new frame. See the package-level Render.
func (r *Rasterizer) Render(samples []history.Sample) *image.RGBA {
	return Render(r.cfg, samples)
}

// Render draws samples, oldest at x=0, into a new cfg.Width x cfg.Height
// frame filled with cfg.Background. It has no failure modes: out of range
// latencies are clamped to [0, cfg.MaxScale] and, when there are more samples
// than columns, only the newest cfg.Width are drawn. The same inputs always
// produce an identical frame.
//
//nolint:gocritic // config struct copied for immutability
func Render(cfg Config, samples []history.Sample) *image.RGBA {
	w, h := max(cfg.Width, 0), max(cfg.Height, 0)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	fill(img, cfg.Background)

	if w == 0 || h == 0 || !(cfg.MaxScale > 0) {
		return img
	}
	if len(samples) > w {
		samples = samples[len(samples)-w:]
	}

	switch cfg.Encoding {
	case EncodingBar:
		drawBars(img, &cfg, samples)
	default:
		drawLine(img, &cfg, samples)
	}
	return img
}

func fill(img *image.RGBA, c color.RGBA) {
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
}

func clamp(v, maxScale float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > maxScale:
		return maxScale
	default:
		return v
	}
}

// LineRow maps a latency to the row plotted by the line encoding: 0 at the
// top for maxScale and above, height-1 at the bottom for zero.
func LineRow(v, maxScale float64, height int) int {
	v = clamp(v, maxScale)
	return int(math.RoundToEven((1 - v/maxScale) * float64(height-1)))
}

// BarHeight maps a latency to the number of lit pixels in a bar column.
func BarHeight(v, maxScale float64, height int) int {
	v = clamp(v, maxScale)
	return int(math.RoundToEven(v / maxScale * float64(height-1)))
}

func drawLine(img *image.RGBA, cfg *Config, samples []history.Sample) {
	var prevX, prevY int
	connected := false
	for x, s := range samples {
		v, ok := s.Value()
		if !ok {
			// a gap breaks the line
			connected = false
			continue
		}
		y := LineRow(v, cfg.MaxScale, cfg.Height)
		img.SetRGBA(x, y, cfg.Accent)
		if connected {
			bresenham(img, prevX, prevY, x, y, cfg.Accent)
		}
		prevX, prevY, connected = x, y, true
	}
}

func drawBars(img *image.RGBA, cfg *Config, samples []history.Sample) {
	for x, s := range samples {
		v, ok := s.Value()
		if !ok {
			continue
		}
		v = clamp(v, cfg.MaxScale)
		c := cfg.Bands.Color(v)
		for y := cfg.Height - BarHeight(v, cfg.MaxScale, cfg.Height); y < cfg.Height; y++ {
			img.SetRGBA(x, y, c)
		}
	}
}

// bresenham plots the integer line from (x0, y0) to (x1, y1), both endpoints
// included.
func bresenham(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		img.SetRGBA(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
