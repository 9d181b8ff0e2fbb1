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
	"fmt"
	"image/color"
	"path"
	"sort"

	"github.com/ledwidgets/ledwidgets/pkg/render"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// IconSize is the edge length of the square icon slot left of the text.
const IconSize = 16

// Icon names.
const (
	IconSun    = "sun"
	IconPartly = "partly"
	IconCloud  = "cloud"
	IconFog    = "fog"
	IconRain   = "rain"
	IconSnow   = "snow"
)

// IconColor is the colour of built-in icons.
var IconColor = color.RGBA{R: 0xff, G: 0xff, A: 0xff}

// WMO weather interpretation codes grouped by icon.
var iconCodes = map[string][]int{
	IconSun:    {0, 1},
	IconPartly: {2, 3},
	IconCloud:  {45, 48},
	IconFog:    {51, 53, 55},
	IconRain:   {61, 63, 65, 80, 81, 82},
	IconSnow:   {71, 73, 75, 77, 85, 86},
}

var codeIcons = func() map[int]string {
	m := make(map[int]string)
	for icon, codes := range iconCodes {
		for _, c := range codes {
			m[c] = icon
		}
	}
	return m
}()

// IconForCode returns the icon name for a weather code. Unknown codes show
// the sun.
func IconForCode(code int) string {
	if icon, ok := codeIcons[code]; ok {
		return icon
	}
	return IconSun
}

// IconFile returns the asset file name of an icon.
func IconFile(icon string) string {
	return icon + ".png"
}

var builtinIcons = map[string][]string{
	IconSun: {
		"................",
		".......#........",
		"..#....#....#...",
		"...#.......#....",
		"......###.......",
		".....#####......",
		"....#######.....",
		"###.#######.###.",
		"....#######.....",
		".....#####......",
		"......###.......",
		"...#.......#....",
		"..#....#....#...",
		".......#........",
		"................",
		"................",
	},
	IconPartly: {
		"................",
		"..#..#..........",
		"...###..........",
		"..#####.........",
		".######.........",
		"..####.####.....",
		"...#.#######....",
		"....#########...",
		"..############..",
		".##############.",
		".##############.",
		"..############..",
		"................",
		"................",
		"................",
		"................",
	},
	IconCloud: {
		"................",
		"................",
		"................",
		"......####......",
		".....######.....",
		"...##########...",
		"..############..",
		".##############.",
		".##############.",
		"..############..",
		"................",
		"................",
		"................",
		"................",
		"................",
		"................",
	},
	IconFog: {
		"................",
		"................",
		"................",
		".############...",
		"................",
		"...############.",
		"................",
		".############...",
		"................",
		"...############.",
		"................",
		".############...",
		"................",
		"................",
		"................",
		"................",
	},
	IconRain: {
		"................",
		"......####......",
		".....######.....",
		"...##########...",
		"..############..",
		".##############.",
		"..############..",
		"................",
		"..#...#...#...#.",
		".#...#...#...#..",
		"................",
		"...#...#...#....",
		"..#...#...#.....",
		"................",
		"................",
		"................",
	},
	IconSnow: {
		"................",
		"......####......",
		".....######.....",
		"...##########...",
		"..############..",
		".##############.",
		"..############..",
		"................",
		"..#...#...#...#.",
		"................",
		"....#...#...#...",
		"................",
		"..#...#...#...#.",
		"................",
		"................",
		"................",
	},
}

// Icons maps asset file names to PNG data.
type Icons map[string][]byte

// Names returns the file names in a stable order.
func (i Icons) Names() []string {
	names := make([]string, 0, len(i))
	for name := range i {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuiltinIcons renders the built-in bitmaps.
func BuiltinIcons() (Icons, error) {
	icons := make(Icons, len(builtinIcons))
	for name, rows := range builtinIcons {
		data, err := render.EncodePNG(render.Bitmap(rows, IconColor))
		if err != nil {
			return nil, fmt.Errorf("icon %s: %w", name, err)
		}
		icons[IconFile(name)] = data
	}
	return icons, nil
}

// LoadIcons reads one PNG per known icon from dir and fits each to the icon
// slot. Missing or unreadable files are skipped with a warning so a partial
// set still works; the device then shows nothing for those codes.
func LoadIcons(fs afero.Fs, dir string) (Icons, error) {
	icons := make(Icons, len(iconCodes))
	for name := range iconCodes {
		file := IconFile(name)
		data, err := afero.ReadFile(fs, path.Join(dir, file))
		if err != nil {
			log.Warn().Err(err).Msgf("skipping icon %s", file)
			continue
		}
		img, err := render.DecodeImage(data)
		if err != nil {
			log.Warn().Err(err).Msgf("skipping icon %s", file)
			continue
		}
		if b := img.Bounds(); b.Dx() != IconSize || b.Dy() != IconSize {
			data, err = render.EncodePNG(render.Fit(img, IconSize, IconSize))
			if err != nil {
				return nil, fmt.Errorf("icon %s: %w", file, err)
			}
		}
		icons[file] = data
	}
	if len(icons) == 0 {
		return nil, fmt.Errorf("no icons found in %s", dir)
	}
	return icons, nil
}
