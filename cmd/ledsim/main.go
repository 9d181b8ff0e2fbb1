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
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ledwidgets/ledwidgets/pkg/simulator"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "127.0.0.1:7000", "address to serve the simulated display on")
	assetDir := flag.String("assets", "", "directory to store uploaded assets (default in memory)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	var fs afero.Fs
	if *assetDir != "" {
		if err := os.MkdirAll(*assetDir, 0o750); err != nil {
			return fmt.Errorf("failed to create asset dir: %w", err)
		}
		fs = afero.NewBasePathFs(afero.NewOsFs(), *assetDir)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	//nolint:wrapcheck // already wrapped by the simulator
	return simulator.New(fs).ListenAndServe(ctx, *addr)
}
