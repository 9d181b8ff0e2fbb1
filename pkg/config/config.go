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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ledwidgets/ledwidgets/pkg/helpers/syncutil"
	"github.com/ledwidgets/ledwidgets/pkg/validation"
	"github.com/ledwidgets/ledwidgets/pkg/weather"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	SchemaVersion = 1
	CfgEnv        = "LEDWIDGETS_CFG"

	WidgetPing    = "ping"
	WidgetClock   = "clock"
	WidgetWeather = "weather"

	DefaultDeviceAddress = "10.0.4.20"
)

// ErrSchemaMismatch is returned when the file was written for another schema.
var ErrSchemaMismatch = errors.New("schema version mismatch")

type Values struct {
	Device       Device  `toml:"device"`
	Ping         Ping    `toml:"ping"`
	Clock        Clock   `toml:"clock"`
	MQTT         MQTT    `toml:"mqtt,omitempty"`
	Widget       string  `toml:"widget" validate:"required,oneof=ping clock weather"`
	Weather      Weather `toml:"weather"`
	ConfigSchema int     `toml:"config_schema"`
	DebugLogging bool    `toml:"debug_logging"`
}

type Device struct {
	Address           string  `toml:"address" validate:"required"`
	Timeout           string  `toml:"timeout,omitempty" validate:"duration"`
	RequestsPerSecond float64 `toml:"requests_per_second,omitempty" validate:"gte=0"`
}

type Ping struct {
	Host      string  `toml:"host,omitempty"`
	Interval  string  `toml:"interval" validate:"duration"`
	Timeout   string  `toml:"timeout" validate:"duration"`
	Encoding  string  `toml:"encoding" validate:"encoding"`
	Accent    string  `toml:"accent,omitempty" validate:"rgbacolor"`
	TextColor string  `toml:"text_color,omitempty" validate:"rgbacolor"`
	MaxScale  float64 `toml:"max_scale,omitempty" validate:"gte=0"`
	LowMax    float64 `toml:"low_max" validate:"gte=0,ltefield=MidMax"`
	MidMax    float64 `toml:"mid_max" validate:"gte=0"`
}

type Clock struct {
	Interval  string `toml:"interval" validate:"duration"`
	Timezone  string `toml:"timezone,omitempty"`
	DateColor string `toml:"date_color,omitempty" validate:"rgbacolor"`
	TimeColor string `toml:"time_color,omitempty" validate:"rgbacolor"`
	OffsetX   int    `toml:"offset_x"`
}

type Weather struct {
	Mode     string         `toml:"mode" validate:"oneof=icon text"`
	IconDir  string         `toml:"icon_dir,omitempty"`
	APIURL   string         `toml:"api_url,omitempty" validate:"omitempty,url"`
	Timezone string         `toml:"timezone,omitempty"`
	Interval string         `toml:"interval" validate:"duration"`
	Cities   []weather.City `toml:"cities" validate:"min=1,dive"`
}

type MQTT struct {
	Broker    string `toml:"broker,omitempty"`
	Topic     string `toml:"topic,omitempty"`
	QueueSize int    `toml:"queue_size,omitempty" validate:"gte=0"`
}

var BaseDefaults = Values{
	ConfigSchema: SchemaVersion,
	Widget:       WidgetPing,
	Device: Device{
		Address: DefaultDeviceAddress,
		Timeout: "5s",
	},
	Ping: Ping{
		Interval: "1s",
		Timeout:  "900ms",
		Encoding: "bar",
		LowMax:   20,
		MidMax:   50,
	},
	Clock: Clock{
		Interval: "1s",
		OffsetX:  3,
	},
	Weather: Weather{
		Mode:     "icon",
		Interval: "3s",
		Cities:   weather.DefaultCities(),
	},
}

type Instance struct {
	cfgPath  string
	authPath string
	auth     map[string]CredentialEntry
	vals     Values
	defaults Values
	mu       syncutil.RWMutex
}

// NewConfig loads config.toml from configDir, or from the path in
// LEDWIDGETS_CFG. A default file is written when none exists.
//
//nolint:gocritic // config struct copied for immutability
func NewConfig(configDir string, defaults Values) (*Instance, error) {
	cfgPath := os.Getenv(CfgEnv)
	log.Debug().Msgf("env config path: %s", cfgPath)

	if cfgPath == "" {
		cfgPath = filepath.Join(configDir, CfgFile)
	}

	cfg := Instance{
		cfgPath:  cfgPath,
		authPath: filepath.Join(filepath.Dir(cfgPath), AuthFile),
		vals:     defaults,
		defaults: defaults,
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		log.Info().Msg("saving new default config to disk")

		err := os.MkdirAll(filepath.Dir(cfgPath), 0o750)
		if err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}

		err = cfg.Save()
		if err != nil {
			return nil, err
		}
	}

	err := cfg.Load()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Load reads the file over the defaults, so keys missing from the file keep
// their default values, then validates the result.
func (c *Instance) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	data, err := os.ReadFile(c.cfgPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	newVals := c.defaults
	// slices are replaced, not merged, by the decoder
	newVals.Weather.Cities = nil
	err = toml.Unmarshal(data, &newVals)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if newVals.Weather.Cities == nil {
		newVals.Weather.Cities = c.defaults.Weather.Cities
	}

	if newVals.ConfigSchema != SchemaVersion {
		log.Error().Msgf(
			"schema version mismatch: got %d, expecting %d",
			newVals.ConfigSchema,
			SchemaVersion,
		)
		return ErrSchemaMismatch
	}

	if err := validation.DefaultValidator.Validate(&newVals); err != nil {
		return fmt.Errorf("invalid config %s: %w", c.cfgPath, err)
	}

	c.vals = newVals

	if authData, err := os.ReadFile(c.authPath); err == nil {
		c.auth = LoadAuthFromData(authData)
		log.Info().Msgf("loaded %d auth entries", len(c.auth))
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read auth file: %w", err)
	}

	return nil
}

func (c *Instance) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	c.vals.ConfigSchema = SchemaVersion

	data, err := toml.Marshal(&c.vals)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.cfgPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Path returns the config file location.
func (c *Instance) Path() string {
	return c.cfgPath
}

func (c *Instance) Widget() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Widget
}

func (c *Instance) SetWidget(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Widget = name
}

func (c *Instance) Device() Device {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Device
}

func (c *Instance) SetDeviceAddress(addr string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Device.Address = addr
}

func (c *Instance) Ping() Ping {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Ping
}

func (c *Instance) SetPingHost(host string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Ping.Host = host
}

func (c *Instance) SetPingEncoding(encoding string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Ping.Encoding = encoding
}

func (c *Instance) Clock() Clock {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Clock
}

// Weather returns a copy of the weather section; the city list is not shared.
func (c *Instance) Weather() Weather {
	c.mu.RLock()
	defer c.mu.RUnlock()
	w := c.vals.Weather
	w.Cities = append([]weather.City(nil), c.vals.Weather.Cities...)
	return w
}

func (c *Instance) SetWeatherMode(mode string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Weather.Mode = mode
}

func (c *Instance) MQTT() MQTT {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.MQTT
}

// Auth returns the credentials configured for url, if any.
func (c *Instance) Auth(url string) *CredentialEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return LookupAuth(c.auth, url)
}

func (c *Instance) DebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DebugLogging
}

func (c *Instance) SetDebugLogging(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.DebugLogging = enabled
	if enabled {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// ParseDuration parses a configured duration, returning fallback for empty
// or non-positive values.
func ParseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		log.Warn().Msgf("invalid duration %q, using %s", s, fallback)
		return fallback
	}
	return d
}
