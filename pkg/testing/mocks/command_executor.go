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

	"github.com/stretchr/testify/mock"
)

// MockCommandExecutor is a testify mock for command.Executor.
// It allows testing code that executes system commands without actually running them.
type MockCommandExecutor struct {
	mock.Mock
}

// Run mocks the execution of a system command.
func (m *MockCommandExecutor) Run(ctx context.Context, name string, args ...string) error {
	called := m.Called(ctx, name, args)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return called.Error(0)
}

// Output mocks running a command and capturing its stdout.
//
// Example:
//
//	mockCmd := &MockCommandExecutor{}
//	mockCmd.On("Output", mock.Anything, "ping", []string{"-c", "1", "host"}).
//		Return([]byte("time=12 ms"), nil)
func (m *MockCommandExecutor) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	called := m.Called(ctx, name, args)
	out, _ := called.Get(0).([]byte)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return out, called.Error(1)
}
