package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wsFrame struct {
	Type string `json:"type"`
	Data struct {
		Settings struct {
			SlidesPerView int `json:"slidesPerView"`
		} `json:"settings"`
		Slides []json.RawMessage `json:"slides"`
		Code   string            `json:"code"`
	} `json:"data"`
}

func dialCarousel(t *testing.T, ts *testServer, query string) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(ts)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/continue-watching/ws" + query
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) wsFrame {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg wsFrame
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestCarouselSocket_WidthQueryStartsImmediately(t *testing.T) {
	ts := setupTestServer(t)
	ts.seed(t)
	conn := dialCarousel(t, ts, "?width=1300")

	msg := readFrame(t, conn)
	assert.Equal(t, msgFrame, msg.Type)
	assert.Equal(t, 5, msg.Data.Settings.SlidesPerView)
	assert.Len(t, msg.Data.Slides, 2)
}

func TestCarouselSocket_FirstResizeStarts(t *testing.T) {
	ts := setupTestServer(t)
	ts.seed(t)
	conn := dialCarousel(t, ts, "")

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "resize", "width": 600}))

	msg := readFrame(t, conn)
	assert.Equal(t, msgFrame, msg.Type)
	assert.Equal(t, 2, msg.Data.Settings.SlidesPerView)

	// A burst collapses into one frame for the last width.
	for _, w := range []float64{800, 1050, 1250} {
		require.NoError(t, conn.WriteJSON(map[string]any{"type": "resize", "width": w}))
	}
	msg = readFrame(t, conn)
	assert.Equal(t, 5, msg.Data.Settings.SlidesPerView)
}

func TestCarouselSocket_Refresh(t *testing.T) {
	ts := setupTestServer(t)
	conn := dialCarousel(t, ts, "?width=800")

	msg := readFrame(t, conn)
	assert.Empty(t, msg.Data.Slides)

	ts.seed(t)
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "refresh"}))

	msg = readFrame(t, conn)
	assert.Equal(t, msgFrame, msg.Type)
	assert.Len(t, msg.Data.Slides, 2)
}

func TestCarouselSocket_InvalidMessages(t *testing.T) {
	ts := setupTestServer(t)
	conn := dialCarousel(t, ts, "")

	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `{"type":`},
		{"unknown type", `{"type":"zoom"}`},
		{"resize without width", `{"type":"resize"}`},
		{"negative width", `{"type":"resize","width":-1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(tt.payload)))

			msg := readFrame(t, conn)
			assert.Equal(t, msgError, msg.Type)
			assert.Equal(t, "VALIDATION", msg.Data.Code)
		})
	}
}

func TestCarouselSocket_RejectsBadWidthQuery(t *testing.T) {
	ts := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/continue-watching/ws?width=wide", nil)
	w := httptest.NewRecorder()
	ts.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCarouselSocket_RegistryTracksConnection(t *testing.T) {
	ts := setupTestServer(t)
	conn := dialCarousel(t, ts, "?width=800")
	_ = readFrame(t, conn)

	assert.Equal(t, 1, ts.Registry().Len())

	resp := ts.api.Post("/api/v1/continue-watching/refresh")
	require.Equal(t, http.StatusOK, resp.Code)
	var body RefreshResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, RefreshResponse{Refreshed: 1, Open: 1}, body)

	msg := readFrame(t, conn)
	assert.Equal(t, msgFrame, msg.Type)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))

	assert.Eventually(t, func() bool { return ts.Registry().Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}
