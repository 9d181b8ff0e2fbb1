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

package helpers

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"

	"github.com/ledwidgets/ledwidgets/pkg/render"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

// FSHelper provides utilities for filesystem setup in tests
type FSHelper struct {
	Fs afero.Fs
}

// NewMemoryFS creates a new in-memory filesystem for testing
func NewMemoryFS() *FSHelper {
	return &FSHelper{
		Fs: afero.NewMemMapFs(),
	}
}

// NewOSFS creates a helper writing to the real filesystem, for code that
// reads config with the os package.
func NewOSFS() *FSHelper {
	return &FSHelper{
		Fs: afero.NewOsFs(),
	}
}

// WriteFile writes content to path, creating parent directories.
func (h *FSHelper) WriteFile(path string, content []byte) error {
	if err := h.Fs.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := afero.WriteFile(h.Fs, path, content, 0o600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// CreateConfigFile writes cfg as TOML to path.
func (h *FSHelper) CreateConfigFile(path string, cfg map[string]any) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config to TOML: %w", err)
	}
	return h.WriteFile(path, data)
}

// CreateAuthFile writes a bearer token entry for url to path.
func (h *FSHelper) CreateAuthFile(path, url, bearer string) error {
	data, err := toml.Marshal(map[string]any{
		"creds": map[string]any{
			url: map[string]string{"bearer": bearer},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal auth to TOML: %w", err)
	}
	return h.WriteFile(path, data)
}

// CreateIconDir writes a solid size x size PNG named <name>.png into dir for
// each name.
func (h *FSHelper) CreateIconDir(dir string, size int, c color.RGBA, names ...string) error {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	data, err := render.EncodePNG(img)
	if err != nil {
		return fmt.Errorf("failed to encode icon: %w", err)
	}
	for _, name := range names {
		if err := h.WriteFile(filepath.Join(dir, name+".png"), data); err != nil {
			return err
		}
	}
	return nil
}

// FileExists checks if a file exists in the filesystem
func (h *FSHelper) FileExists(path string) bool {
	_, err := h.Fs.Stat(path)
	return err == nil
}
