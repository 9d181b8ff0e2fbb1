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

package main

import (
	"fmt"
	"os"

	"github.com/ledwidgets/ledwidgets/pkg/cli"
	"github.com/ledwidgets/ledwidgets/pkg/config"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := cli.SetupFlags(nil)

	exit, err := flags.Pre(os.Args[1:], os.Stdout)
	if err != nil {
		return err
	} else if exit {
		return nil
	}

	cfg, err := cli.Setup(*flags.ConfigDir, config.LogDir(), config.BaseDefaults, flags.LogWriters(os.Stderr))
	if err != nil {
		return err
	}

	if err := flags.Apply(cfg); err != nil {
		log.Error().Err(err).Msg("invalid flags")
		return err
	}

	log.Info().Msgf("driving %s widget on %s", cfg.Widget(), cfg.Device().Address)
	return cli.RunApp(cfg, cli.Deps{})
}
