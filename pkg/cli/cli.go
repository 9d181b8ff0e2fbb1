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

package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/ledwidgets/ledwidgets/pkg/config"
	"github.com/ledwidgets/ledwidgets/pkg/helpers"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrModeNotSupported is returned when -mode is given for the clock widget.
var ErrModeNotSupported = errors.New("widget has no modes")

type Flags struct {
	fs        *flag.FlagSet
	Widget    *string
	Server    *string
	Device    *string
	Mode      *string
	ConfigDir *string
	Version   *bool
	Daemon    *bool
	Debug     *bool
}

// SetupFlags defines the widget flags on fs, or on the global flag set when
// fs is nil.
func SetupFlags(fs *flag.FlagSet) *Flags {
	if fs == nil {
		fs = flag.CommandLine
	}

	f := &Flags{
		fs: fs,
		Widget: fs.String(
			"widget",
			"",
			"widget to run: ping, clock or weather (default from config)",
		),
		Server:    new(string),
		Device:    new(string),
		Mode:      fs.String("mode", "", "ping graph encoding (line, bar) or weather layout (icon, text)"),
		ConfigDir: fs.String("config-dir", config.ConfigDir(), "directory holding config.toml"),
		Version:   fs.Bool("version", false, "print version and exit"),
		Daemon:    fs.Bool("daemon", false, "log JSON to stderr instead of the human-readable console format"),
		Debug:     fs.Bool("debug", false, "enable debug logging"),
	}

	fs.StringVar(f.Server, "server", "", "host to ping; selects the ping widget")
	fs.StringVar(f.Server, "s", "", "shorthand for -server")
	fs.StringVar(f.Device, "device", "", "LED display address (default from config)")
	fs.StringVar(f.Device, "d", "", "shorthand for -device")

	return f
}

func (f *Flags) isFlagPassed(names ...string) bool {
	found := false
	f.fs.Visit(func(fl *flag.Flag) {
		for _, name := range names {
			if fl.Name == name {
				found = true
			}
		}
	})
	return found
}

// Pre parses args and handles flags that need no setup. It returns true
// when the program should exit.
func (f *Flags) Pre(args []string, out io.Writer) (bool, error) {
	if err := f.fs.Parse(args); err != nil {
		return true, fmt.Errorf("failed to parse flags: %w", err)
	}

	if *f.Version {
		_, _ = fmt.Fprintf(out, "LED Widgets v%s\n", config.AppVersion)
		return true, nil
	}
	return false, nil
}

// ConsoleTimeFormat matches the per-tick "15:04:05 | ping=12 ms" lines.
const ConsoleTimeFormat = "15:04:05"

// LogWriters returns the writers that log alongside the rotating file. The
// console gets readable lines by default and raw JSON in daemon mode, for
// service managers that collect stderr.
func (f *Flags) LogWriters(out io.Writer) []io.Writer {
	if *f.Daemon {
		return []io.Writer{out}
	}
	return []io.Writer{zerolog.ConsoleWriter{Out: out, TimeFormat: ConsoleTimeFormat}}
}

// Apply overrides config values with the flags that were passed.
func (f *Flags) Apply(cfg *config.Instance) error {
	if f.isFlagPassed("widget") {
		cfg.SetWidget(*f.Widget)
	} else if f.isFlagPassed("server", "s") {
		cfg.SetWidget(config.WidgetPing)
	}

	if f.isFlagPassed("server", "s") {
		cfg.SetPingHost(*f.Server)
	}
	if f.isFlagPassed("device", "d") {
		cfg.SetDeviceAddress(*f.Device)
	}
	if *f.Debug {
		cfg.SetDebugLogging(true)
	}

	switch cfg.Widget() {
	case config.WidgetPing:
		if f.isFlagPassed("mode") {
			cfg.SetPingEncoding(*f.Mode)
		}
		if cfg.Ping().Host == "" {
			return errors.New("ping widget needs a host: pass -server or set ping.host")
		}
	case config.WidgetWeather:
		if f.isFlagPassed("mode") {
			cfg.SetWeatherMode(*f.Mode)
		}
	case config.WidgetClock:
		if f.isFlagPassed("mode") {
			return fmt.Errorf("%w: %s", ErrModeNotSupported, config.WidgetClock)
		}
	default:
		return fmt.Errorf("unknown widget: %s", cfg.Widget())
	}

	return nil
}

// Setup creates the directories, starts logging and loads the config.
//
//nolint:gocritic // config struct copied for immutability
func Setup(
	configDir string,
	logDir string,
	defaultConfig config.Values,
	writers []io.Writer,
) (*config.Instance, error) {
	err := helpers.EnsureDirectories(configDir, logDir)
	if err != nil {
		return nil, fmt.Errorf("error creating directories: %w", err)
	}

	err = helpers.InitLogging(logDir, writers)
	if err != nil {
		return nil, fmt.Errorf("error initializing logging: %w", err)
	}

	cfg, err := config.NewConfig(configDir, defaultConfig)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	if cfg.DebugLogging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	log.Info().Msgf("LED Widgets v%s, config %s", config.AppVersion, cfg.Path())
	return cfg, nil
}
