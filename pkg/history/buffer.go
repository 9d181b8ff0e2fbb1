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

// Package history keeps a fixed-length record of recent latency samples, one
// slot per display column.
package history

import (
	"math"
	"strconv"
)

// DefaultCapacity is the width of the LED matrix in pixels.
const DefaultCapacity = 72

// Sample is a single latency measurement in milliseconds, or the absence of
// one when the measurement timed out or failed.
type Sample struct {
	ms    float64
	valid bool
}

// Latency returns a sample holding the given round-trip time. NaN is treated
// as no data.
func Latency(ms float64) Sample {
	if math.IsNaN(ms) {
		return Missing()
	}
	return Sample{ms: ms, valid: true}
}

// Missing returns the "no data" marker.
func Missing() Sample {
	return Sample{}
}

// Value returns the latency and whether the sample carries data.
func (s Sample) Value() (float64, bool) {
	return s.ms, s.valid
}

// Valid reports whether the sample carries a latency.
func (s Sample) Valid() bool {
	return s.valid
}

// String formats the sample the way it is shown on the display.
func (s Sample) String() string {
	if !s.valid {
		return "--"
	}
	return strconv.FormatFloat(s.ms, 'f', -1, 64) + " ms"
}

// Buffer is a fixed-capacity ring of samples. When full, pushing a new sample
// evicts the oldest one. It is not safe for concurrent use; it has exactly one
// producer, the polling loop.
type Buffer struct {
	data  []Sample
	head  int // next write position
	count int
}

// New creates an empty buffer. A non-positive capacity falls back to
// DefaultCapacity.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{data: make([]Sample, capacity)}
}

// Push appends a sample, evicting the oldest one if the buffer is full.
func (b *Buffer) Push(s Sample) {
	b.data[b.head] = s
	b.head = (b.head + 1) % len(b.data)
	if b.count < len(b.data) {
		b.count++
	}
}

// Fill pads the buffer with s until it is at capacity. Existing samples keep
// their order and stay newest.
func (b *Buffer) Fill(s Sample) {
	existing := b.Samples()
	b.head = 0
	b.count = 0
	for i, n := 0, len(b.data)-len(existing); i < n; i++ {
		b.Push(s)
	}
	for _, e := range existing {
		b.Push(e)
	}
}

// Samples returns a copy of the buffered samples, oldest first.
func (b *Buffer) Samples() []Sample {
	out := make([]Sample, b.count)
	start := (b.head - b.count + len(b.data)) % len(b.data)
	for i, n := 0, b.count; i < n; i++ {
		out[i] = b.data[(start+i)%len(b.data)]
	}
	return out
}

// Latest returns the most recently pushed sample.
func (b *Buffer) Latest() (Sample, bool) {
	if b.count == 0 {
		return Sample{}, false
	}
	return b.data[(b.head-1+len(b.data))%len(b.data)], true
}

// Len returns the number of buffered samples.
func (b *Buffer) Len() int {
	return b.count
}

// Cap returns the buffer capacity.
func (b *Buffer) Cap() int {
	return len(b.data)
}
