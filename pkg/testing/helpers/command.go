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

import (
	"github.com/ledwidgets/ledwidgets/pkg/testing/mocks"
	"github.com/stretchr/testify/mock"
)

// NewMockCommandExecutor creates a MockCommandExecutor whose Output returns
// out for any command. Override with On() after clearing ExpectedCalls when
// the exact command line matters.
//
//	cmd := helpers.NewMockCommandExecutor("time=12.3 ms")
func NewMockCommandExecutor(out string) *mocks.MockCommandExecutor {
	cmd := &mocks.MockCommandExecutor{}
	cmd.On("Run", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(nil).Maybe()
	cmd.On("Output", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return([]byte(out), nil).Maybe()
	return cmd
}
