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

package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

var AppVersion = "DEVELOPMENT"

const (
	AppName  = "ledwidgets"
	LogFile  = "ledwidgets.log"
	CfgFile  = "config.toml"
	AuthFile = "auth.toml"
)

// ConfigDir is the default directory holding config.toml and auth.toml.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// LogDir is the default directory for the rotating log file.
func LogDir() string {
	return filepath.Join(xdg.StateHome, AppName)
}
