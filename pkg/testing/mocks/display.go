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

package mocks

import (
	"context"
	"time"

	"github.com/ledwidgets/ledwidgets/pkg/device"
	"github.com/ledwidgets/ledwidgets/pkg/history"
	"github.com/stretchr/testify/mock"
)

// MockDisplay is a testify mock for device.Display.
type MockDisplay struct {
	mock.Mock
}

// Draw mocks sending a payload to the display.
func (m *MockDisplay) Draw(ctx context.Context, p device.Payload) error {
	args := m.Called(ctx, p)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return args.Error(0)
}

// UploadAsset mocks storing an asset on the display.
func (m *MockDisplay) UploadAsset(ctx context.Context, appID, file string, data []byte) error {
	args := m.Called(ctx, appID, file, data)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return args.Error(0)
}

// MockPinger is a testify mock for ping.Pinger.
type MockPinger struct {
	mock.Mock
}

// Ping mocks a single latency measurement.
func (m *MockPinger) Ping(ctx context.Context, host string) history.Sample {
	args := m.Called(ctx, host)
	if s, ok := args.Get(0).(history.Sample); ok {
		return s
	}
	return history.Missing()
}

// MockSamplePublisher is a testify mock for the ping sample publisher.
type MockSamplePublisher struct {
	mock.Mock
}

// Publish records a published sample.
func (m *MockSamplePublisher) Publish(host string, s history.Sample, at time.Time) {
	m.Called(host, s, at)
}
