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

package device

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ledwidgets/ledwidgets/pkg/shared/httpclient"
)

const (
	DrawPath   = "/api/display/draw"
	UploadPath = "/api/assets/upload"
)

// Display is the subset of the device API used by widgets.
type Display interface {
	Draw(ctx context.Context, p Payload) error
	UploadAsset(ctx context.Context, appID, file string, data []byte) error
}

// Client sends draw and upload requests to one display.
type Client struct {
	http    *httpclient.Client
	baseURL string
}

// ClientOptions configures a Client.
type ClientOptions struct {
	// Timeout bounds every request. Zero uses httpclient.DefaultTimeout.
	Timeout time.Duration
	// RequestsPerSecond throttles requests to the device. Zero disables it.
	RequestsPerSecond float64
	// HTTPOptions are passed through to the underlying HTTP client.
	HTTPOptions []httpclient.Option
}

// NewClient creates a client for the display at address, which may be a bare
// host[:port] or a full http(s) URL.
func NewClient(address string, opts ClientOptions) *Client {
	httpOpts := append(
		[]httpclient.Option{httpclient.WithRateLimit(opts.RequestsPerSecond, 1)},
		opts.HTTPOptions...,
	)
	return &Client{
		http:    httpclient.NewClient(opts.Timeout, httpOpts...),
		baseURL: BaseURL(address),
	}
}

// BaseURL normalises a device address into a URL without a trailing slash.
func BaseURL(address string) string {
	address = strings.TrimRight(strings.TrimSpace(address), "/")
	if !strings.Contains(address, "://") {
		address = "http://" + address
	}
	return address
}

// Draw replaces what the app currently shows with the payload's elements.
func (c *Client) Draw(ctx context.Context, p Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal draw payload: %w", err)
	}

	resp, err := c.http.Post(ctx, c.baseURL+DrawPath, "application/json; charset=utf-8", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("draw: %w", err)
	}
	defer httpclient.Close(resp)

	if err := httpclient.CheckStatus(resp); err != nil {
		return fmt.Errorf("draw: %w", err)
	}
	return nil
}

// UploadAsset stores data on the device under file for the given app.
func (c *Client) UploadAsset(ctx context.Context, appID, file string, data []byte) error {
	q := url.Values{}
	q.Set("app_id", appID)
	q.Set("file", file)

	resp, err := c.http.Post(
		ctx,
		c.baseURL+UploadPath+"?"+q.Encode(),
		"application/octet-stream",
		bytes.NewReader(data),
	)
	if err != nil {
		return fmt.Errorf("upload %s: %w", file, err)
	}
	defer httpclient.Close(resp)

	if err := httpclient.CheckStatus(resp); err != nil {
		return fmt.Errorf("upload %s: %w", file, err)
	}
	return nil
}
