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

// Package render rasterizes latency history into small RGBA frames for the
// LED matrix.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strings"
)

// Encoding selects how samples are mapped to pixels.
type Encoding int

const (
	// EncodingLine plots one accent pixel per sample and joins adjacent
	// samples with a straight line.
	EncodingLine Encoding = iota
	// EncodingBar draws a bottom-anchored bar per sample, coloured by band.
	EncodingBar
)

func (e Encoding) String() string {
	switch e {
	case EncodingLine:
		return "line"
	case EncodingBar:
		return "bar"
	default:
		return "unknown"
	}
}

// ParseEncoding converts a config or flag value into an Encoding.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "line", "":
		return EncodingLine, nil
	case "bar":
		return EncodingBar, nil
	default:
		return 0, fmt.Errorf("unknown encoding: %q", s)
	}
}

// Bands splits the latency range into three colour bands for the bar
// encoding. A value v is Low when v <= LowMax, Mid when v <= MidMax and High
// otherwise.
type Bands struct {
	LowMax    float64
	MidMax    float64
	LowColor  color.RGBA
	MidColor  color.RGBA
	HighColor color.RGBA
}

// Color returns the band colour for an already clamped value.
func (b Bands) Color(v float64) color.RGBA {
	switch {
	case v <= b.LowMax:
		return b.LowColor
	case v <= b.MidMax:
		return b.MidColor
	default:
		return b.HighColor
	}
}

var (
	Black  = color.RGBA{A: 0xff}
	Green  = color.RGBA{G: 0xff, A: 0xff}
	Yellow = color.RGBA{R: 0xff, G: 0xff, A: 0xff}
	Red    = color.RGBA{R: 0xff, A: 0xff}
	// Lime is the line graph accent.
	Lime = color.RGBA{R: 0xaa, G: 0xff, A: 0xff}
)

// DefaultBands are 0-20 ms green, 21-50 ms yellow and anything slower red.
var DefaultBands = Bands{
	LowMax:    20,
	MidMax:    50,
	LowColor:  Green,
	MidColor:  Yellow,
	HighColor: Red,
}

// Default graph geometry: the full matrix width under a 5px text row.
const (
	DefaultWidth        = 72
	DefaultHeight       = 11
	DefaultLineMaxScale = 300
	DefaultBarMaxScale  = 100
)

// Config holds everything a Rasterizer needs.
type Config struct {
	Bands      Bands
	Width      int
	Height     int
	MaxScale   float64
	Encoding   Encoding
	Accent     color.RGBA
	Background color.RGBA
}

// DefaultMaxScale returns the latency mapped to the top row for an encoding.
func DefaultMaxScale(e Encoding) float64 {
	if e == EncodingBar {
		return DefaultBarMaxScale
	}
	return DefaultLineMaxScale
}

// DefaultConfig returns the stock geometry and palette for an encoding.
func DefaultConfig(e Encoding) Config {
	return Config{
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		MaxScale:   DefaultMaxScale(e),
		Encoding:   e,
		Accent:     Lime,
		Background: Black,
		Bands:      DefaultBands,
	}
}

var (
	ErrInvalidSize  = errors.New("frame width and height must be positive")
	ErrInvalidScale = errors.New("max scale must be positive")
	ErrInvalidBands = errors.New("band thresholds must be ordered")
)

// Validate checks the invariants the rasterizer relies on.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, c.Width, c.Height)
	}
	if !(c.MaxScale > 0) || math.IsInf(c.MaxScale, 1) {
		return fmt.Errorf("%w: %v", ErrInvalidScale, c.MaxScale)
	}
	if c.Bands.LowMax > c.Bands.MidMax {
		return fmt.Errorf("%w: low %v > mid %v", ErrInvalidBands, c.Bands.LowMax, c.Bands.MidMax)
	}
	switch c.Encoding {
	case EncodingLine, EncodingBar:
	default:
		return fmt.Errorf("unknown encoding: %d", c.Encoding)
	}
	return nil
}
