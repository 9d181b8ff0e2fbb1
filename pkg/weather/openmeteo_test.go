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

package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/ledwidgets/ledwidgets/pkg/shared/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const londonResponse = `{
  "latitude": 51.5,
  "longitude": -0.12,
  "timezone": "Europe/London",
  "current_weather": {
    "time": "2025-01-02T12:00",
    "temperature": 7.3,
    "windspeed": 14.8,
    "winddirection": 250,
    "weathercode": 61,
    "is_day": 1
  }
}`

func TestClientCurrent(t *testing.T) {
	t.Parallel()

	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/forecast", r.URL.Path)
		got = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(londonResponse))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL+"/", "", time.Second)
	cur, err := c.Current(context.Background(), City{Name: "London", Lat: 51.5074, Lon: -0.1278})
	require.NoError(t, err)

	assert.InDelta(t, 7.3, cur.Temperature, 1e-9)
	assert.InDelta(t, 14.8, cur.WindSpeed, 1e-9)
	assert.Equal(t, 61, cur.WeatherCode)
	assert.Equal(t, "2025-01-02T12:00", cur.Time)

	assert.Equal(t, "51.5074", got.Get("latitude"))
	assert.Equal(t, "-0.1278", got.Get("longitude"))
	assert.Equal(t, "true", got.Get("current_weather"))
	assert.Equal(t, "celsius", got.Get("temperature_unit"))
	assert.Equal(t, "kmh", got.Get("windspeed_unit"))
	assert.Equal(t, "mm", got.Get("precipitation_unit"))
	assert.Equal(t, DefaultTimezone, got.Get("timezone"))
}

func TestClientCurrentErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		check  func(t *testing.T, err error)
		name   string
		body   string
		status int
	}{
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   "boom",
			check: func(t *testing.T, err error) {
				var statusErr *httpclient.StatusError
				require.ErrorAs(t, err, &statusErr)
				assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
			},
		},
		{
			name:   "no current weather",
			status: http.StatusOK,
			body:   `{"latitude": 1}`,
			check: func(t *testing.T, err error) {
				require.ErrorIs(t, err, ErrNoCurrentWeather)
			},
		},
		{
			name:   "bad json",
			status: http.StatusOK,
			body:   `{"current_weather":`,
			check: func(t *testing.T, err error) {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "Dubai")
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			t.Cleanup(srv.Close)

			c := NewClient(srv.URL, "UTC", time.Second)
			_, err := c.Current(context.Background(), DefaultCities()[0])
			tt.check(t, err)
		})
	}
}

func TestForecastURLDefaults(t *testing.T) {
	t.Parallel()

	c := NewClient("", "", 0)
	u, err := url.Parse(c.ForecastURL(City{Name: "Dubai", Lat: 25.276987, Lon: 55.296249}))
	require.NoError(t, err)
	assert.Equal(t, "api.open-meteo.com", u.Host)
	assert.Equal(t, "25.276987", u.Query().Get("latitude"))
	assert.Equal(t, "55.296249", u.Query().Get("longitude"))
}

func TestFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "21.4°C", FormatTemperature(21.4))
	assert.Equal(t, "-3.0°C", FormatTemperature(-3))
	assert.Equal(t, "12.5 km/h", FormatWind(12.5))
}

func TestDefaultCities(t *testing.T) {
	t.Parallel()

	cities := DefaultCities()
	require.Len(t, cities, 3)
	assert.Equal(t, "Dubai", cities[0].Name)
	assert.Equal(t, "London", cities[1].Name)
	assert.Equal(t, "New York", cities[2].Name)
}
