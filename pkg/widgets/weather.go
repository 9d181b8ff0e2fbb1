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

package widgets

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"time"

	"github.com/ledwidgets/ledwidgets/pkg/device"
	"github.com/ledwidgets/ledwidgets/pkg/weather"
	"github.com/rs/zerolog/log"
)

// Weather widget defaults.
const (
	WeatherAppID = "weather_app"
	// WeatherModeIcon draws an icon, the city and the temperature.
	WeatherModeIcon = "icon"
	// WeatherModeText draws a single scrolling line.
	WeatherModeText = "text"
	weatherTextX    = weather.IconSize + 2
)

// ErrNoCities is returned when a weather widget has nothing to show.
var ErrNoCities = errors.New("no cities configured")

// WeatherSource returns the current conditions for a city.
type WeatherSource interface {
	Current(ctx context.Context, city weather.City) (weather.Current, error)
}

// WeatherOptions configures a WeatherWidget.
type WeatherOptions struct {
	// Icons are uploaded once in icon mode. Nil uses the built-in set.
	Icons      weather.Icons
	AppID      string
	Mode       string
	Cities     []weather.City
	Interval   time.Duration
	CityColor  color.RGBA
	TempColor  color.RGBA
	TextColor  color.RGBA
	Timeout    int
	ScrollRate int
}

// DefaultWeatherOptions returns the stock icon layout for the default cities.
func DefaultWeatherOptions() WeatherOptions {
	return WeatherOptions{
		AppID:      WeatherAppID,
		Mode:       WeatherModeIcon,
		Cities:     weather.DefaultCities(),
		Interval:   3 * time.Second,
		CityColor:  color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		TempColor:  color.RGBA{R: 0xff, G: 0xff, A: 0xff},
		TextColor:  color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		Timeout:    6,
		ScrollRate: 60,
	}
}

// WeatherWidget shows one city per tick, cycling through the configured
// cities.
type WeatherWidget struct {
	display    device.Display
	source     WeatherSource
	opts       WeatherOptions
	next       int
	iconsReady bool
}

// NewWeatherWidget creates a weather widget.
func NewWeatherWidget(display device.Display, source WeatherSource, opts WeatherOptions) (*WeatherWidget, error) {
	if len(opts.Cities) == 0 {
		return nil, ErrNoCities
	}
	switch opts.Mode {
	case "":
		opts.Mode = WeatherModeIcon
	case WeatherModeIcon, WeatherModeText:
	default:
		return nil, fmt.Errorf("unknown weather mode: %s", opts.Mode)
	}
	if opts.Mode == WeatherModeIcon && opts.Icons == nil {
		icons, err := weather.BuiltinIcons()
		if err != nil {
			return nil, err
		}
		opts.Icons = icons
	}
	return &WeatherWidget{display: display, source: source, opts: opts}, nil
}

func (*WeatherWidget) Name() string {
	return "weather"
}

func (w *WeatherWidget) Interval() time.Duration {
	return w.opts.Interval
}

// Setup uploads the icons in icon mode.
func (w *WeatherWidget) Setup(ctx context.Context) error {
	if w.opts.Mode != WeatherModeIcon {
		return nil
	}
	for _, name := range w.opts.Icons.Names() {
		if err := w.display.UploadAsset(ctx, w.opts.AppID, name, w.opts.Icons[name]); err != nil {
			return fmt.Errorf("failed to upload icon %s: %w", name, err)
		}
		log.Debug().Msgf("uploaded icon %s", name)
	}
	w.iconsReady = true
	return nil
}

// Tick shows the next city. A failed fetch still advances the rotation.
func (w *WeatherWidget) Tick(ctx context.Context) error {
	if w.opts.Mode == WeatherModeIcon && !w.iconsReady {
		if err := w.Setup(ctx); err != nil {
			log.Warn().Err(err).Msg("icons not uploaded, retrying next tick")
		}
	}

	city := w.opts.Cities[w.next]
	w.next = (w.next + 1) % len(w.opts.Cities)

	cur, err := w.source.Current(ctx, city)
	if err != nil {
		return err
	}

	if err := w.display.Draw(ctx, w.Payload(city, cur)); err != nil {
		return err
	}
	log.Info().Msgf("%s | %s, code %d", city.Name, weather.FormatTemperature(cur.Temperature), cur.WeatherCode)
	return nil
}

// Payload builds the draw request for a city.
func (w *WeatherWidget) Payload(city weather.City, cur weather.Current) device.Payload {
	if w.opts.Mode == WeatherModeText {
		return device.Payload{
			AppID: w.opts.AppID,
			Elements: []device.Element{
				device.Text(device.TextOptions{
					ID: "0",
					Text: fmt.Sprintf("%s: %s, Wind: %s",
						city.Name, weather.FormatTemperature(cur.Temperature), weather.FormatWind(cur.WindSpeed)),
					Font:       device.FontMedium,
					Color:      w.opts.TextColor,
					Timeout:    w.opts.Timeout,
					X:          1,
					Y:          3,
					Width:      device.Width,
					ScrollRate: w.opts.ScrollRate,
				}),
			},
		}
	}

	textWidth := device.Width - weatherTextX
	return device.Payload{
		AppID: w.opts.AppID,
		Elements: []device.Element{
			device.Image("0", weather.IconFile(weather.IconForCode(cur.WeatherCode)), 0, 0, w.opts.Timeout),
			device.Text(device.TextOptions{
				ID:         "1",
				Text:       city.Name,
				Font:       device.FontSmall,
				Color:      w.opts.CityColor,
				Timeout:    w.opts.Timeout,
				X:          weatherTextX,
				Width:      textWidth,
				ScrollRate: w.opts.ScrollRate,
			}),
			device.Text(device.TextOptions{
				ID:         "2",
				Text:       weather.FormatTemperature(cur.Temperature),
				Font:       device.FontBig,
				Color:      w.opts.TempColor,
				Timeout:    w.opts.Timeout,
				X:          weatherTextX,
				Y:          6,
				Width:      textWidth,
				ScrollRate: w.opts.ScrollRate,
			}),
		},
	}
}
