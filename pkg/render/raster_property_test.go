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
	"bytes"
	"testing"

	"github.com/ledwidgets/ledwidgets/pkg/history"
	"pgregory.net/rapid"
)

func drawConfig(t *rapid.T) Config {
	e := rapid.SampledFrom([]Encoding{EncodingLine, EncodingBar}).Draw(t, "encoding")
	cfg := DefaultConfig(e)
	cfg.Width = rapid.IntRange(1, 96).Draw(t, "width")
	cfg.Height = rapid.IntRange(1, 32).Draw(t, "height")
	cfg.MaxScale = rapid.Float64Range(1, 1000).Draw(t, "maxScale")
	return cfg
}

func drawSamples(t *rapid.T, n int) []history.Sample {
	raw := rapid.SliceOfN(rapid.Float64Range(-50, 2000), 0, n).Draw(t, "values")
	gaps := rapid.SliceOfN(rapid.Bool(), len(raw), len(raw)).Draw(t, "gaps")
	out := make([]history.Sample, len(raw))
	for i, v := range raw {
		if gaps[i] {
			out[i] = history.Missing()
			continue
		}
		out[i] = history.Latency(v)
	}
	return out
}

// TestPropertyRenderSize verifies every frame is exactly width x height.
func TestPropertyRenderSize(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		cfg := drawConfig(t)
		img := Render(cfg, drawSamples(t, cfg.Width))

		if img.Bounds().Dx() != cfg.Width || img.Bounds().Dy() != cfg.Height {
			t.Fatalf("expected %dx%d, got %v", cfg.Width, cfg.Height, img.Bounds())
		}
		if len(img.Pix) != cfg.Width*cfg.Height*4 {
			t.Fatalf("unexpected pixel buffer length %d", len(img.Pix))
		}
	})
}

// TestPropertyRenderIdempotent verifies identical inputs give identical bytes.
func TestPropertyRenderIdempotent(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		cfg := drawConfig(t)
		in := drawSamples(t, cfg.Width)

		a := Render(cfg, in)
		b := Render(cfg, in)
		if !bytes.Equal(a.Pix, b.Pix) {
			t.Fatal("render is not deterministic")
		}
	})
}

// TestPropertyRenderClamp verifies values above max render like max itself.
func TestPropertyRenderClamp(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		cfg := drawConfig(t)
		over := cfg.MaxScale + rapid.Float64Range(0.001, 10000).Draw(t, "excess")
		x := rapid.IntRange(0, cfg.Width-1).Draw(t, "x")

		clamped := make([]history.Sample, cfg.Width)
		atMax := make([]history.Sample, cfg.Width)
		for i := range clamped {
			clamped[i] = history.Missing()
			atMax[i] = history.Missing()
		}
		clamped[x] = history.Latency(over)
		atMax[x] = history.Latency(cfg.MaxScale)

		if !bytes.Equal(Render(cfg, clamped).Pix, Render(cfg, atMax).Pix) {
			t.Fatalf("value %v rendered differently from max %v", over, cfg.MaxScale)
		}
	})
}

// TestPropertyLineGapBreaksConnection verifies a missing sample leaves its
// column empty, so the neighbours are not joined.
func TestPropertyLineGapBreaksConnection(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		cfg := drawConfig(t)
		cfg.Encoding = EncodingLine
		cfg.Width = 3
		left := rapid.Float64Range(0, cfg.MaxScale).Draw(t, "left")
		right := rapid.Float64Range(0, cfg.MaxScale).Draw(t, "right")

		img := Render(cfg, []history.Sample{
			history.Latency(left), history.Missing(), history.Latency(right),
		})
		if rows := litRows(img, 1, cfg.Background); len(rows) != 0 {
			t.Fatalf("gap column has lit rows %v", rows)
		}
	})
}
