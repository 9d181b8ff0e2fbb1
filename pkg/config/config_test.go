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
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ledwidgets/ledwidgets/pkg/render"
	"github.com/ledwidgets/ledwidgets/pkg/validation"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, CfgFile), []byte(data), 0o600))
	return dir
}

func TestNewConfigWritesDefaults(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested")
	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, CfgFile))
	assert.Equal(t, filepath.Join(dir, CfgFile), cfg.Path())
	assert.Equal(t, WidgetPing, cfg.Widget())
	assert.Equal(t, DefaultDeviceAddress, cfg.Device().Address)
	assert.Equal(t, "bar", cfg.Ping().Encoding)
	assert.Len(t, cfg.Weather().Cities, 3)

	reloaded, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)
	assert.Equal(t, cfg.Weather(), reloaded.Weather())
	assert.Equal(t, cfg.Ping(), reloaded.Ping())
}

func TestLoadOverlaysDefaults(t *testing.T) {
	t.Parallel()

	dir := writeConfig(t, `
config_schema = 1
widget = "weather"

[device]
address = "display.local"

[ping]
encoding = "line"

[weather]
mode = "text"

[[weather.cities]]
name = "Oslo"
lat = 59.91
lon = 10.75
`)

	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)

	assert.Equal(t, WidgetWeather, cfg.Widget())
	assert.Equal(t, "display.local", cfg.Device().Address)
	assert.Equal(t, "5s", cfg.Device().Timeout)

	p := cfg.Ping()
	assert.Equal(t, "line", p.Encoding)
	assert.Equal(t, "1s", p.Interval)
	assert.InDelta(t, 20.0, p.LowMax, 0)

	w := cfg.Weather()
	assert.Equal(t, "text", w.Mode)
	require.Len(t, w.Cities, 1)
	assert.Equal(t, "Oslo", w.Cities[0].Name)
	assert.Equal(t, "3s", w.Interval)
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		data      string
		wantErrIs error
	}{
		{name: "schema mismatch", data: "config_schema = 2\n", wantErrIs: ErrSchemaMismatch},
		{name: "bad toml", data: "config_schema = \n"},
		{name: "unknown widget", data: "config_schema = 1\nwidget = \"radar\"\n"},
		{name: "bad encoding", data: "config_schema = 1\n[ping]\nencoding = \"pie\"\n"},
		{name: "bad duration", data: "config_schema = 1\n[ping]\ninterval = \"soon\"\n"},
		{name: "bad colour", data: "config_schema = 1\n[ping]\naccent = \"green\"\n"},
		{name: "bands out of order", data: "config_schema = 1\n[ping]\nlow_max = 60\nmid_max = 50\n"},
		{name: "no cities", data: "config_schema = 1\n[weather]\ncities = []\n"},
		{name: "bad latitude", data: "config_schema = 1\n[[weather.cities]]\nname = \"X\"\nlat = 91.0\n"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewConfig(writeConfig(t, tt.data), BaseDefaults)
			require.Error(t, err)
			if tt.wantErrIs != nil {
				require.ErrorIs(t, err, tt.wantErrIs)
			}
		})
	}
}

func TestLoadValidationErrorDetails(t *testing.T) {
	t.Parallel()

	_, err := NewConfig(writeConfig(t, "config_schema = 1\n[device]\naddress = \"\"\n"), BaseDefaults)
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	require.NotEmpty(t, verr.Fields)
}

func TestLoadAuthFile(t *testing.T) {
	t.Parallel()

	dir := writeConfig(t, "config_schema = 1\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, AuthFile), []byte(`
["http://10.0.4.20"]
username = "admin"
password = "secret"
`), 0o600))

	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)

	entry := cfg.Auth("http://10.0.4.20/api/display/draw")
	require.NotNil(t, entry)
	assert.Equal(t, "admin", entry.Username)
	assert.Nil(t, cfg.Auth("http://elsewhere"))
}

func TestSetters(t *testing.T) {
	t.Parallel()

	cfg, err := NewConfig(t.TempDir(), BaseDefaults)
	require.NoError(t, err)

	cfg.SetWidget(WidgetClock)
	cfg.SetDeviceAddress("10.0.0.9")
	cfg.SetPingHost("1.1.1.1")
	cfg.SetPingEncoding("line")
	cfg.SetWeatherMode("text")

	assert.Equal(t, WidgetClock, cfg.Widget())
	assert.Equal(t, "10.0.0.9", cfg.Device().Address)
	assert.Equal(t, "1.1.1.1", cfg.Ping().Host)
	assert.Equal(t, "line", cfg.Ping().Encoding)
	assert.Equal(t, "text", cfg.Weather().Mode)

	w := cfg.Weather()
	w.Cities[0].Name = "changed"
	assert.NotEqual(t, "changed", cfg.Weather().Cities[0].Name)
}

func TestSetDebugLogging(t *testing.T) {
	// changes the global log level
	cfg := &Instance{}
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	cfg.SetDebugLogging(true)
	assert.True(t, cfg.DebugLogging())
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	cfg.SetDebugLogging(false)
	assert.False(t, cfg.DebugLogging())
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestSaveWithoutPath(t *testing.T) {
	t.Parallel()

	require.Error(t, (&Instance{}).Save())
	require.Error(t, (&Instance{}).Load())
}

func TestPingRenderConfig(t *testing.T) {
	t.Parallel()

	p := BaseDefaults.Ping
	cfg, err := p.RenderConfig()
	require.NoError(t, err)
	assert.Equal(t, render.EncodingBar, cfg.Encoding)
	assert.InDelta(t, render.DefaultBarMaxScale, cfg.MaxScale, 0)

	p.Encoding = "line"
	p.MaxScale = 150
	p.Accent = "#FF0000"
	cfg, err = p.RenderConfig()
	require.NoError(t, err)
	assert.Equal(t, render.EncodingLine, cfg.Encoding)
	assert.InDelta(t, 150.0, cfg.MaxScale, 0)
	assert.Equal(t, color.RGBA{R: 0xff, A: 0xff}, cfg.Accent)

	p.Encoding = "pie"
	_, err = p.RenderConfig()
	require.Error(t, err)

	p.Encoding = "bar"
	p.LowMax, p.MidMax = 60, 50
	_, err = p.RenderConfig()
	require.ErrorIs(t, err, render.ErrInvalidBands)
}

func TestDurations(t *testing.T) {
	t.Parallel()

	assert.Equal(t, time.Second, BaseDefaults.Ping.IntervalDuration())
	assert.Equal(t, 900*time.Millisecond, BaseDefaults.Ping.TimeoutDuration())
	assert.Equal(t, time.Second, BaseDefaults.Clock.IntervalDuration())
	assert.Equal(t, 3*time.Second, BaseDefaults.Weather.IntervalDuration())
	assert.Equal(t, 5*time.Second, BaseDefaults.Device.TimeoutDuration())

	assert.Equal(t, time.Minute, ParseDuration("", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("-1s", time.Minute))
	assert.Equal(t, 250*time.Millisecond, ParseDuration("250ms", time.Minute))
}

func TestClockLocation(t *testing.T) {
	t.Parallel()

	loc, err := Clock{}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	loc, err = Clock{Timezone: "UTC"}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	_, err = Clock{Timezone: "Mars/Olympus"}.Location()
	require.Error(t, err)
}

func TestColor(t *testing.T) {
	t.Parallel()

	fallback := color.RGBA{G: 0xff, A: 0xff}
	c, err := Color("", fallback)
	require.NoError(t, err)
	assert.Equal(t, fallback, c)

	c, err = Color("#AAFF00FF", fallback)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0xaa, G: 0xff, A: 0xff}, c)

	_, err = Color("lime", fallback)
	require.Error(t, err)
}
