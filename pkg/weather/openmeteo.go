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

// Package weather fetches current conditions from open-meteo and provides
// the icons shown next to them.
package weather

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ledwidgets/ledwidgets/pkg/shared/httpclient"
)

const (
	// DefaultAPIURL is the open-meteo API root.
	DefaultAPIURL = "https://api.open-meteo.com"
	// DefaultTimezone is sent with every request.
	DefaultTimezone = "Europe/London"
	forecastPath    = "/v1/forecast"
)

// City is a named location.
type City struct {
	Name string  `toml:"name" validate:"required"`
	Lat  float64 `toml:"lat" validate:"gte=-90,lte=90"`
	Lon  float64 `toml:"lon" validate:"gte=-180,lte=180"`
}

// DefaultCities returns the rotation used when none are configured.
func DefaultCities() []City {
	return []City{
		{Name: "Dubai", Lat: 25.276987, Lon: 55.296249},
		{Name: "London", Lat: 51.5074, Lon: -0.1278},
		{Name: "New York", Lat: 40.7128, Lon: -74.0060},
	}
}

// Current holds the current conditions for a city.
type Current struct {
	Time        string  `json:"time"`
	Temperature float64 `json:"temperature"`
	WindSpeed   float64 `json:"windspeed"`
	WeatherCode int     `json:"weathercode"`
}

type forecastResponse struct {
	CurrentWeather *Current `json:"current_weather"`
}

// Client talks to the open-meteo forecast API.
type Client struct {
	http     *httpclient.Client
	baseURL  string
	timezone string
}

// NewClient creates a client. Empty values use DefaultAPIURL and
// DefaultTimezone; a non-positive timeout uses the httpclient default.
func NewClient(apiURL, timezone string, timeout time.Duration, opts ...httpclient.Option) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if timezone == "" {
		timezone = DefaultTimezone
	}
	return &Client{
		http:     httpclient.NewClient(timeout, opts...),
		baseURL:  strings.TrimRight(apiURL, "/"),
		timezone: timezone,
	}
}

// ForecastURL builds the request URL for a city.
func (c *Client) ForecastURL(city City) string {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(city.Lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(city.Lon, 'f', -1, 64))
	q.Set("current_weather", "true")
	q.Set("temperature_unit", "celsius")
	q.Set("windspeed_unit", "kmh")
	q.Set("precipitation_unit", "mm")
	q.Set("timezone", c.timezone)
	return c.baseURL + forecastPath + "?" + q.Encode()
}

// Current fetches the current conditions for city.
func (c *Client) Current(ctx context.Context, city City) (Current, error) {
	var resp forecastResponse
	if err := c.http.GetJSON(ctx, c.ForecastURL(city), &resp); err != nil {
		return Current{}, fmt.Errorf("weather for %s: %w", city.Name, err)
	}
	if resp.CurrentWeather == nil {
		return Current{}, fmt.Errorf("weather for %s: %w", city.Name, ErrNoCurrentWeather)
	}
	return *resp.CurrentWeather, nil
}

// FormatTemperature renders a temperature as shown on the display, e.g.
// "21.4°C".
func FormatTemperature(celsius float64) string {
	return strconv.FormatFloat(celsius, 'f', 1, 64) + "°C"
}

// FormatWind renders a wind speed, e.g. "12.5 km/h".
func FormatWind(kmh float64) string {
	return strconv.FormatFloat(kmh, 'f', 1, 64) + " km/h"
}
