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

// Package httpclient wraps net/http with the timeouts, status handling and
// rate limiting shared by the device and weather clients.
package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the default timeout for a whole request.
	DefaultTimeout = 5 * time.Second
	// maxErrorBody caps how much of a failed response is kept for the error.
	maxErrorBody = 512
)

// DefaultTransport keeps connections to the display alive between polls.
var DefaultTransport = &http.Transport{
	DialContext: (&net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	ResponseHeaderTimeout: 10 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	MaxIdleConns:          10,
	MaxIdleConnsPerHost:   4,
	IdleConnTimeout:       90 * time.Second,
}

// StatusError is returned when a server answers with a non-2xx status.
type StatusError struct {
	Body   string
	Code   int
	Method string
	URL    string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.Code)
	}
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.URL, e.Code, e.Body)
}

// Client is an HTTP client with a request timeout and an optional rate limit
// shared by every request it sends.
type Client struct {
	*http.Client
	limiter *rate.Limiter
	auth    func(*http.Request)
}

// Option configures a Client.
type Option func(*Client)

// WithRateLimit limits the client to perSecond requests with the given burst.
// A non-positive rate disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))
	}
}

// WithTransport replaces the round tripper, mainly for tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.Transport = rt
	}
}

// WithCredentials authenticates every request with a bearer token, or with
// basic auth when the token is empty.
func WithCredentials(username, password, bearer string) Option {
	return func(c *Client) {
		c.auth = func(req *http.Request) {
			if bearer != "" {
				req.Header.Set("Authorization", "Bearer "+bearer)
				return
			}
			req.SetBasicAuth(username, password)
		}
	}
}

// NewClient creates a client with the given timeout. A zero timeout uses
// DefaultTimeout.
func NewClient(timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		Client: &http.Client{
			Transport: DefaultTransport,
			Timeout:   timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}
	if c.auth != nil {
		c.auth(req)
	}
	resp, err := c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error performing %s request: %w", req.Method, err)
	}
	if resp == nil {
		return nil, errors.New("received nil response")
	}
	return resp, nil
}

// Get performs a GET request and returns the response.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	return c.do(req)
}

// Post performs a POST request with the given body and returns the response.
func (c *Client) Post(ctx context.Context, url, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.do(req)
}

// Close drains and closes a response body, logging any failure.
func Close(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	if err := resp.Body.Close(); err != nil {
		log.Error().Err(err).Msg("error closing response body")
	}
}

// CheckStatus returns a *StatusError for non-2xx responses.
func CheckStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		Method: resp.Request.Method,
		URL:    resp.Request.URL.String(),
		Code:   resp.StatusCode,
		Body:   strings.TrimSpace(string(body)),
	}
}

// GetJSON performs a GET request and decodes a 2xx JSON body into dest.
func (c *Client) GetJSON(ctx context.Context, url string, dest any) error {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	defer Close(resp)

	if err := CheckStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}
	return nil
}
