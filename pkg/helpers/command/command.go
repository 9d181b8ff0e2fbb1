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

// Package command provides an abstraction over exec.Command for testability.
package command

import (
	"context"
	"os/exec"
)

// Executor runs system commands. Tests substitute a mock so no real process
// is started.
type Executor interface {
	// Run executes a command and waits for it to complete.
	Run(ctx context.Context, name string, args ...string) error

	// Output runs a command and returns its standard output. The output is
	// returned even when the command exits with a non-zero status.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// RealExecutor uses exec.CommandContext.
type RealExecutor struct{}

// Run executes a system command using exec.CommandContext.
//
//nolint:wrapcheck // Wrapping exec errors loses important context
func (*RealExecutor) Run(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// Output runs a command and returns its standard output.
//
//nolint:wrapcheck // Wrapping exec errors loses important context
func (*RealExecutor) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}
