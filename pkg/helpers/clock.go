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

package helpers

import "time"

// MinReliableYear is the earliest year considered valid for the system clock.
// Boards without an RTC boot at the epoch until NTP syncs.
const MinReliableYear = 2024

// IsClockReliable reports whether t looks like it came from a set clock.
func IsClockReliable(t time.Time) bool {
	return t.Year() >= MinReliableYear
}
