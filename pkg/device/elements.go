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

// Package device talks to the LED matrix display over its local HTTP API.
//
// The display exposes two endpoints: /api/display/draw takes a JSON payload
// of text and image elements for an app, and /api/assets/upload stores a
// file (usually a PNG) that image elements can then reference by name.
package device

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Display geometry.
const (
	Width  = 72
	Height = 16
)

// Element types.
const (
	TypeText  = "text"
	TypeImage = "image"
)

// Font is one of the display's built-in bitmap fonts.
type Font string

const (
	FontSmall  Font = "small"
	FontMedium Font = "medium"
	FontBig    Font = "big"
)

// Metrics are the approximate glyph dimensions of a font in pixels.
type Metrics struct {
	Advance int
	Height  int
}

var fontMetrics = map[Font]Metrics{
	FontSmall:  {Advance: 4, Height: 5},
	FontMedium: {Advance: 5, Height: 7},
	FontBig:    {Advance: 7, Height: 10},
}

// Metrics returns the glyph dimensions of f, falling back to the small font.
func (f Font) Metrics() Metrics {
	if m, ok := fontMetrics[f]; ok {
		return m
	}
	return fontMetrics[FontSmall]
}

// TextWidth estimates the rendered width of s in pixels.
func (f Font) TextWidth(s string) int {
	return utf8.RuneCountInString(s) * f.Metrics().Advance
}

// CenterX returns the x offset that centres s on a line of the given width.
func (f Font) CenterX(s string, width int) int {
	return (width - f.TextWidth(s)) / 2
}

// Element is a single drawable item in a draw payload. Text fields are
// ignored for images and vice versa.
type Element struct {
	ScrollRate *int   `json:"scroll_rate,omitempty" validate:"omitempty,gte=0"`
	ID         string `json:"id" validate:"required"`
	Type       string `json:"type" validate:"required,oneof=text image"`
	Text       string `json:"text,omitempty"`
	Path       string `json:"path,omitempty" validate:"required_if=Type image"`
	Font       Font   `json:"font,omitempty" validate:"omitempty,oneof=small medium big"`
	Color      string `json:"color,omitempty" validate:"omitempty,rgbacolor"`
	Timeout    int    `json:"timeout" validate:"gte=0"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	Width      int    `json:"width,omitempty" validate:"gte=0"`
}

// TextOptions describes a text element.
type TextOptions struct {
	ID         string
	Text       string
	Font       Font
	Color      color.RGBA
	Timeout    int
	X          int
	Y          int
	Width      int
	ScrollRate int
}

// Text builds a text element. A zero width spans the whole display.
//
//nolint:gocritic // options struct copied for immutability
func Text(opts TextOptions) Element {
	width := opts.Width
	if width == 0 {
		width = Width
	}
	font := opts.Font
	if font == "" {
		font = FontSmall
	}
	rate := opts.ScrollRate
	return Element{
		ID:         opts.ID,
		Type:       TypeText,
		Text:       opts.Text,
		X:          opts.X,
		Y:          opts.Y,
		Font:       font,
		Color:      HexColor(opts.Color),
		Width:      width,
		ScrollRate: &rate,
		Timeout:    opts.Timeout,
	}
}

// Image builds an image element that shows a previously uploaded asset.
func Image(id, path string, x, y, timeout int) Element {
	return Element{
		ID:      id,
		Type:    TypeImage,
		Path:    path,
		X:       x,
		Y:       y,
		Timeout: timeout,
	}
}

// Payload is the body of a draw request.
type Payload struct {
	AppID    string    `json:"app_id" validate:"required"`
	Elements []Element `json:"elements" validate:"required,min=1,dive"`
}

// HexColor formats c as #RRGGBBAA.
func HexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

var ErrInvalidColor = errors.New("invalid color")

// ParseHexColor parses #RRGGBB or #RRGGBBAA. Colours without alpha are
// opaque.
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	if len(hex) == 6 {
		hex += "FF"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return color.RGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}
