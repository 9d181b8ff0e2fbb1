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
	"fmt"
	"image/color"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/ledwidgets/ledwidgets/pkg/device"
	"github.com/ledwidgets/ledwidgets/pkg/history"
	"github.com/ledwidgets/ledwidgets/pkg/ping"
	"github.com/ledwidgets/ledwidgets/pkg/render"
	"github.com/rs/zerolog/log"
)

// Ping widget defaults.
const (
	PingAppID     = "ping_app"
	PingGraphFile = "graph.png"
	PingGraphY    = 5
	pingTextID    = "ping_text"
	pingGraphID   = "graph_img"
)

// SamplePublisher receives every measured sample.
type SamplePublisher interface {
	Publish(host string, s history.Sample, at time.Time)
}

// PingOptions configures a PingWidget.
type PingOptions struct {
	Host       string
	AppID      string
	GraphFile  string
	Interval   time.Duration
	TextColor  color.RGBA
	TextFont   device.Font
	GraphY     int
	Timeout    int
	ScrollRate int
}

// DefaultPingOptions returns the stock layout for host.
func DefaultPingOptions(host string) PingOptions {
	return PingOptions{
		Host:       host,
		AppID:      PingAppID,
		GraphFile:  PingGraphFile,
		Interval:   time.Second,
		TextColor:  color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		TextFont:   device.FontSmall,
		GraphY:     PingGraphY,
		Timeout:    2,
		ScrollRate: 60,
	}
}

// PingWidget pings a host and draws the latency text above a history graph.
type PingWidget struct {
	display   device.Display
	pinger    ping.Pinger
	raster    *render.Rasterizer
	history   *history.Buffer
	publisher SamplePublisher
	clock     clockwork.Clock
	opts      PingOptions
}

// NewPingWidget creates a ping widget. The history starts full of missing
// samples so new ones enter at the right edge of the graph. publisher and
// clock may be nil.
func NewPingWidget(
	display device.Display,
	pinger ping.Pinger,
	raster *render.Rasterizer,
	publisher SamplePublisher,
	clock clockwork.Clock,
	opts PingOptions,
) *PingWidget {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	buf := history.New(raster.Config().Width)
	buf.Fill(history.Missing())
	return &PingWidget{
		display:   display,
		pinger:    pinger,
		raster:    raster,
		history:   buf,
		publisher: publisher,
		clock:     clock,
		opts:      opts,
	}
}

func (*PingWidget) Name() string {
	return "ping"
}

func (w *PingWidget) Interval() time.Duration {
	return w.opts.Interval
}

// History returns the buffered samples, oldest first.
func (w *PingWidget) History() []history.Sample {
	return w.history.Samples()
}

// Tick measures one sample and redraws the graph. A failed graph upload is
// logged and the text is still drawn.
func (w *PingWidget) Tick(ctx context.Context) error {
	sample := w.pinger.Ping(ctx, w.opts.Host)
	w.history.Push(sample)

	if w.publisher != nil {
		w.publisher.Publish(w.opts.Host, sample, w.clock.Now())
	}

	data, err := render.EncodePNG(w.raster.Render(w.history.Samples()))
	if err != nil {
		return fmt.Errorf("failed to render graph: %w", err)
	}
	if err := w.display.UploadAsset(ctx, w.opts.AppID, w.opts.GraphFile, data); err != nil {
		log.Warn().Err(err).Msg("failed to upload ping graph")
	}

	if err := w.display.Draw(ctx, w.Payload(sample)); err != nil {
		return err
	}

	log.Info().Msgf("%s | ping=%s", w.opts.Host, sample)
	return nil
}

// Payload builds the draw request for the latest sample.
func (w *PingWidget) Payload(latest history.Sample) device.Payload {
	return device.Payload{
		AppID: w.opts.AppID,
		Elements: []device.Element{
			device.Text(device.TextOptions{
				ID:         pingTextID,
				Text:       latest.String(),
				Font:       w.opts.TextFont,
				Color:      w.opts.TextColor,
				Timeout:    w.opts.Timeout,
				Width:      device.Width,
				ScrollRate: w.opts.ScrollRate,
			}),
			device.Image(pingGraphID, w.opts.GraphFile, 0, w.opts.GraphY, w.opts.Timeout),
		},
	}
}
