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

package simulator

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ledwidgets/ledwidgets/pkg/device"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	sim := New(afero.NewMemMapFs())
	srv := httptest.NewServer(sim.Handler())
	t.Cleanup(func() {
		srv.Close()
		_ = sim.Close()
	})
	return sim, srv
}

func post(t *testing.T, url, contentType, body string) *http.Response {
	t.Helper()
	//nolint:noctx // test request
	resp, err := http.Post(url, contentType, strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestHandleDraw(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name: "valid text and image",
			body: `{"app_id":"ping_app","elements":[` +
				`{"id":"t","type":"text","text":"12 ms","x":0,"y":0,"font":"small","color":"#FFFFFFFF","width":72,"timeout":2},` +
				`{"id":"g","type":"image","path":"graph.png","x":0,"y":5,"timeout":2}]}`,
			wantStatus: http.StatusOK,
		},
		{name: "empty body", body: ``, wantStatus: http.StatusBadRequest},
		{name: "bad json", body: `{`, wantStatus: http.StatusBadRequest},
		{name: "missing app id", body: `{"elements":[{"id":"t","type":"text"}]}`, wantStatus: http.StatusBadRequest},
		{name: "no elements", body: `{"app_id":"a","elements":[]}`, wantStatus: http.StatusBadRequest},
		{
			name:       "unknown type",
			body:       `{"app_id":"a","elements":[{"id":"t","type":"video"}]}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "image without path",
			body:       `{"app_id":"a","elements":[{"id":"i","type":"image"}]}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bad colour",
			body:       `{"app_id":"a","elements":[{"id":"t","type":"text","color":"white"}]}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sim, srv := newTestServer(t)
			resp := post(t, srv.URL+device.DrawPath, "application/json", tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantStatus == http.StatusOK {
				frame, ok := sim.Frame("ping_app")
				require.True(t, ok)
				require.Len(t, frame.Elements, 2)
				assert.Equal(t, "12 ms", frame.Elements[0].Text)
				assert.Equal(t, 1, sim.Draws())
			} else {
				assert.Equal(t, 0, sim.Draws())
			}
		})
	}
}

func TestHandleUploadAndFetchAsset(t *testing.T) {
	t.Parallel()

	sim, srv := newTestServer(t)

	resp := post(t, srv.URL+device.UploadPath+"?app_id=ping_app&file=graph.png", "application/octet-stream", "PNGDATA")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data, err := sim.Asset("ping_app", "graph.png")
	require.NoError(t, err)
	assert.Equal(t, "PNGDATA", string(data))

	//nolint:noctx // test request
	get, err := http.Get(srv.URL + "/api/assets/ping_app/graph.png")
	require.NoError(t, err)
	defer func() { _ = get.Body.Close() }()
	assert.Equal(t, http.StatusOK, get.StatusCode)

	//nolint:noctx // test request
	missing, err := http.Get(srv.URL + "/api/assets/ping_app/other.png")
	require.NoError(t, err)
	defer func() { _ = missing.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestHandleUploadRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
		body  string
	}{
		{name: "missing app", query: "?file=a.png", body: "x"},
		{name: "missing file", query: "?app_id=a", body: "x"},
		{name: "path traversal", query: "?app_id=a&file=../b.png", body: "x"},
		{name: "empty body", query: "?app_id=a&file=b.png", body: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, srv := newTestServer(t)
			resp := post(t, srv.URL+device.UploadPath+tt.query, "application/octet-stream", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestHandleDisplayListsFramesByApp(t *testing.T) {
	t.Parallel()

	_, srv := newTestServer(t)
	for _, app := range []string{"weather_app", "clock_app"} {
		resp := post(t, srv.URL+device.DrawPath, "application/json",
			`{"app_id":"`+app+`","elements":[{"id":"0","type":"text","text":"hi"}]}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	//nolint:noctx // test request
	resp, err := http.Get(srv.URL + "/api/display")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var frames []device.Payload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&frames))
	require.Len(t, frames, 2)
	assert.Equal(t, "clock_app", frames[0].AppID)
	assert.Equal(t, "weather_app", frames[1].AppID)
}

func TestAssetPath(t *testing.T) {
	t.Parallel()

	p, err := assetPath("app", "icon.png")
	require.NoError(t, err)
	assert.Equal(t, "/assets/app/icon.png", p)

	for _, bad := range [][2]string{{"", "a"}, {"a", ""}, {"a", ".."}, {"a/b", "c"}, {"a", "b/c"}} {
		_, err := assetPath(bad[0], bad[1])
		require.ErrorIs(t, err, ErrBadAssetName)
	}
}

func TestWebsocketBroadcastsDraws(t *testing.T) {
	t.Parallel()

	_, srv := newTestServer(t)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	defer func() { _ = conn.Close() }()

	body := `{"app_id":"my_app","elements":[{"id":"0","type":"text","text":"12:00:00","x":0,"y":0}]}`

	// the hub registers the session asynchronously, so early draws may be missed
	var msg []byte
	for i := 0; i < 20; i++ {
		post(t, srv.URL+device.DrawPath, "application/json", body)
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
		if _, msg, err = conn.ReadMessage(); err == nil {
			break
		}
		var netErr net.Error
		require.ErrorAs(t, err, &netErr)
		// a timed out gorilla conn cannot be read again
		_ = conn.Close()
		conn, resp, err = websocket.DefaultDialer.Dial(wsURL, nil)
		require.NoError(t, err)
		_ = resp.Body.Close()
	}
	require.NotEmpty(t, msg)

	var p device.Payload
	require.NoError(t, json.Unmarshal(msg, &p))
	assert.Equal(t, "my_app", p.AppID)
}
