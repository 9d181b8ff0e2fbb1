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
	"fmt"
	"image"
	"image/color"
	"image/png"

	"golang.org/x/image/draw"
)

// Bitmap rasterizes ASCII art into a transparent frame. Each string is one
// row; '#' lights a pixel with on and any other character is left clear. The
// frame is as wide as the longest row.
func Bitmap(rows []string, on color.RGBA) *image.RGBA {
	w := 0
	for _, row := range rows {
		w = max(w, len(row))
	}
	img := image.NewRGBA(image.Rect(0, 0, w, len(rows)))
	for y, row := range rows {
		for x, n := 0, len(row); x < n; x++ {
			if row[x] == '#' {
				img.SetRGBA(x, y, on)
			}
		}
	}
	return img
}

// Fit scales src to exactly w x h with nearest-neighbour sampling so icon
// edges stay crisp on the matrix. Images already at the target size are
// copied unchanged.
func Fit(src image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if src.Bounds().Dx() == w && src.Bounds().Dy() == h {
		draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
		return dst
	}
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// EncodePNG encodes a frame for upload to the device.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeImage decodes a PNG asset.
func DecodeImage(data []byte) (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode png: %w", err)
	}
	return img, nil
}
