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

// Package simulator emulates the LED matrix HTTP API so widgets can be
// developed and tested without the hardware. Draw payloads are validated,
// kept per app and pushed to websocket watchers; uploaded assets are stored
// in an afero filesystem.
package simulator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ledwidgets/ledwidgets/pkg/device"
	"github.com/ledwidgets/ledwidgets/pkg/helpers/syncutil"
	"github.com/ledwidgets/ledwidgets/pkg/validation"
	"github.com/olahol/melody"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	// AssetRoot is where uploads are stored inside the filesystem.
	AssetRoot = "/assets"

	maxDrawBody  = 64 << 10
	maxAssetBody = 1 << 20
)

// Server is an in-memory display.
type Server struct {
	fs     afero.Fs
	ws     *melody.Melody
	frames map[string]device.Payload
	draws  int
	mu     syncutil.RWMutex
}

// New creates a simulator storing assets in fs. A nil fs uses memory.
func New(fs afero.Fs) *Server {
	if fs == nil {
		fs = afero.NewMemMapFs()
	}
	ws := melody.New()
	ws.Upgrader.CheckOrigin = func(*http.Request) bool { return true }
	return &Server{
		fs:     fs,
		ws:     ws,
		frames: make(map[string]device.Payload),
	}
}

// Handler returns the HTTP routes of the device API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Post(device.DrawPath, s.handleDraw)
	r.Post(device.UploadPath, s.handleUpload)
	r.Get("/api/display", s.handleDisplay)
	r.Get("/api/assets/{app}/{file}", s.handleAsset)
	r.Get("/api/ws", func(w http.ResponseWriter, r *http.Request) {
		if err := s.ws.HandleRequest(w, r); err != nil {
			log.Error().Err(err).Msg("handling websocket request")
		}
	})

	return r
}

// Frame returns the last payload drawn by an app.
func (s *Server) Frame(appID string) (device.Payload, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.frames[appID]
	return p, ok
}

// Draws returns how many draw requests were accepted.
func (s *Server) Draws() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draws
}

// Asset returns a stored upload.
func (s *Server) Asset(appID, file string) ([]byte, error) {
	p, err := assetPath(appID, file)
	if err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(s.fs, p)
	if err != nil {
		return nil, fmt.Errorf("failed to read asset: %w", err)
	}
	return data, nil
}

// Close disconnects all websocket watchers.
func (s *Server) Close() error {
	if err := s.ws.Close(); err != nil {
		return fmt.Errorf("failed to close websocket hub: %w", err)
	}
	return nil
}

var ErrBadAssetName = errors.New("invalid asset name")

func assetPath(appID, file string) (string, error) {
	for _, part := range []string{appID, file} {
		if part == "" || part == "." || part == ".." || path.Base(part) != part {
			return "", fmt.Errorf("%w: %q", ErrBadAssetName, part)
		}
	}
	return path.Join(AssetRoot, appID, file), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("error writing response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleDraw(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxDrawBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var p device.Payload
	if err := validation.ValidateAndUnmarshal(data, &p); err != nil {
		log.Warn().Err(err).Msg("rejected draw payload")
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	s.frames[p.AppID] = p
	s.draws++
	s.mu.Unlock()

	log.Debug().Msgf("draw %s: %d elements", p.AppID, len(p.Elements))

	if err := s.ws.Broadcast(data); err != nil {
		log.Warn().Err(err).Msg("error broadcasting draw")
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	appID := r.URL.Query().Get("app_id")
	file := r.URL.Query().Get("file")
	p, err := assetPath(appID, file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxAssetBody+1))
	switch {
	case err != nil:
		writeError(w, http.StatusBadRequest, err)
		return
	case len(data) == 0:
		writeError(w, http.StatusBadRequest, errors.New("empty asset"))
		return
	case len(data) > maxAssetBody:
		writeError(w, http.StatusRequestEntityTooLarge, errors.New("asset too large"))
		return
	}

	if err := s.fs.MkdirAll(path.Dir(p), 0o750); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if err := afero.WriteFile(s.fs, p, data, 0o600); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	log.Debug().Msgf("stored asset %s (%d bytes)", p, len(data))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDisplay(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	apps := make([]string, 0, len(s.frames))
	for app := range s.frames {
		apps = append(apps, app)
	}
	sort.Strings(apps)
	frames := make([]device.Payload, 0, len(apps))
	for _, app := range apps {
		frames = append(frames, s.frames[app])
	}
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, frames)
}

func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	data, err := s.Asset(chi.URLParam(r, "app"), chi.URLParam(r, "file"))
	switch {
	case errors.Is(err, ErrBadAssetName):
		writeError(w, http.StatusBadRequest, err)
		return
	case errors.Is(err, os.ErrNotExist):
		writeError(w, http.StatusNotFound, err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	_, _ = w.Write(data)
}

// ListenAndServe serves the simulator on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("simulator listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("simulator server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("simulator shutdown: %w", err)
	}
	return s.Close()
}
