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
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/ledwidgets/ledwidgets/pkg/config"
	"github.com/ledwidgets/ledwidgets/pkg/device"
	"github.com/ledwidgets/ledwidgets/pkg/ping"
	"github.com/ledwidgets/ledwidgets/pkg/publishers"
	"github.com/ledwidgets/ledwidgets/pkg/render"
	"github.com/ledwidgets/ledwidgets/pkg/shared/httpclient"
	"github.com/ledwidgets/ledwidgets/pkg/weather"
	"github.com/ledwidgets/ledwidgets/pkg/widgets"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// Deps are the outside-world pieces a widget is built from. Zero values use
// the real implementations.
type Deps struct {
	Clock       clockwork.Clock
	Pinger      ping.Pinger
	Fs          afero.Fs
	HTTPOptions []httpclient.Option
}

func (d *Deps) defaults() {
	if d.Clock == nil {
		d.Clock = clockwork.NewRealClock()
	}
	if d.Fs == nil {
		d.Fs = afero.NewOsFs()
	}
}

func httpOptions(cfg *config.Instance, target string, base []httpclient.Option) []httpclient.Option {
	opts := append([]httpclient.Option(nil), base...)
	if cred := cfg.Auth(target); cred != nil {
		log.Debug().Msgf("using credentials for %s", target)
		opts = append(opts, httpclient.WithCredentials(cred.Username, cred.Password, cred.Bearer))
	}
	return opts
}

// NewDisplay creates the device client from config.
func NewDisplay(cfg *config.Instance, deps Deps) *device.Client {
	d := cfg.Device()
	return device.NewClient(d.Address, device.ClientOptions{
		Timeout:           d.TimeoutDuration(),
		RequestsPerSecond: d.RequestsPerSecond,
		HTTPOptions:       httpOptions(cfg, device.BaseURL(d.Address), deps.HTTPOptions),
	})
}

// BuildWidget creates the configured widget. The returned stop function
// releases anything the widget started and must always be called.
func BuildWidget(cfg *config.Instance, deps Deps) (widgets.Widget, func(), error) {
	deps.defaults()
	noop := func() {}
	display := NewDisplay(cfg, deps)

	switch cfg.Widget() {
	case config.WidgetPing:
		return buildPing(cfg, deps, display)
	case config.WidgetClock:
		w, err := buildClock(cfg, deps, display)
		return w, noop, err
	case config.WidgetWeather:
		w, err := buildWeather(cfg, deps, display)
		return w, noop, err
	default:
		return nil, noop, fmt.Errorf("unknown widget: %s", cfg.Widget())
	}
}

func buildPing(cfg *config.Instance, deps Deps, display device.Display) (widgets.Widget, func(), error) {
	noop := func() {}
	p := cfg.Ping()

	rcfg, err := p.RenderConfig()
	if err != nil {
		return nil, noop, err
	}
	raster, err := render.New(rcfg)
	if err != nil {
		return nil, noop, fmt.Errorf("failed to create rasterizer: %w", err)
	}

	opts := widgets.DefaultPingOptions(p.Host)
	opts.Interval = p.IntervalDuration()
	if opts.TextColor, err = config.Color(p.TextColor, opts.TextColor); err != nil {
		return nil, noop, err
	}

	pinger := deps.Pinger
	if pinger == nil {
		pinger = ping.NewSystemPinger(nil, p.TimeoutDuration())
	}

	var publisher widgets.SamplePublisher
	stop := noop
	if m := cfg.MQTT(); m.Broker != "" {
		pub := publishers.NewMQTTPublisher(m.Broker, m.Topic, m.QueueSize)
		if cred := cfg.Auth(publishers.BrokerURL(m.Broker)); cred != nil {
			pub.SetCredentials(cred.Username, cred.Password)
		}
		if err := pub.Start(); err != nil {
			log.Warn().Err(err).Msg("mqtt publisher disabled")
		} else {
			publisher = pub
			stop = pub.Stop
		}
	}

	log.Info().Msgf("pinging %s, %s graph scaled to %v ms", p.Host, rcfg.Encoding, rcfg.MaxScale)
	return widgets.NewPingWidget(display, pinger, raster, publisher, deps.Clock, opts), stop, nil
}

func buildClock(cfg *config.Instance, deps Deps, display device.Display) (widgets.Widget, error) {
	c := cfg.Clock()
	opts := widgets.DefaultClockOptions()
	opts.Interval = c.IntervalDuration()
	opts.OffsetX = c.OffsetX

	var err error
	if opts.Location, err = c.Location(); err != nil {
		return nil, err
	}
	if opts.DateColor, err = config.Color(c.DateColor, opts.DateColor); err != nil {
		return nil, err
	}
	if opts.TimeColor, err = config.Color(c.TimeColor, opts.TimeColor); err != nil {
		return nil, err
	}
	return widgets.NewClockWidget(display, deps.Clock, opts), nil
}

func buildWeather(cfg *config.Instance, deps Deps, display device.Display) (widgets.Widget, error) {
	w := cfg.Weather()
	opts := widgets.DefaultWeatherOptions()
	opts.Mode = w.Mode
	opts.Cities = w.Cities
	opts.Interval = w.IntervalDuration()

	if w.Mode == widgets.WeatherModeIcon && w.IconDir != "" {
		icons, err := weather.LoadIcons(deps.Fs, w.IconDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load icons: %w", err)
		}
		opts.Icons = icons
	}

	apiURL := w.APIURL
	if apiURL == "" {
		apiURL = weather.DefaultAPIURL
	}
	source := weather.NewClient(apiURL, w.Timezone, 0, httpOptions(cfg, apiURL, deps.HTTPOptions)...)
	ww, err := widgets.NewWeatherWidget(display, source, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create weather widget: %w", err)
	}
	return ww, nil
}

// RunApp builds the configured widget and runs it until SIGINT or SIGTERM.
func RunApp(cfg *config.Instance, deps Deps) (returnErr error) {
	defer func() {
		if r := recover(); r != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %v\n", r)
			log.Error().Msgf("panic recovered: %v", r)
			returnErr = fmt.Errorf("panic: %v", r)
		}
	}()

	ctx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	return Run(ctx, cfg, deps)
}

// Run builds the configured widget and runs it until ctx is done.
func Run(ctx context.Context, cfg *config.Instance, deps Deps) error {
	deps.defaults()

	w, stop, err := BuildWidget(cfg, deps)
	defer stop()
	if err != nil {
		return fmt.Errorf("error building %s widget: %w", cfg.Widget(), err)
	}

	return widgets.NewRunner(deps.Clock).Run(ctx, w)
}
