package render

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/golammostafa13/chartstudio/chart"
)

func startHub(t *testing.T, opts ...HubOption) (*Hub, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(ctx, opts...)
	go hub.Run()
	srv := httptest.NewServer(hub)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func waitClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Clients() == n }, 5*time.Second, 10*time.Millisecond)
}

func TestViewBroadcastsOption(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv)
	waitClients(t, hub, 1)

	view := hub.View(chart.Line)
	opt := build(t, chart.Line, sales(), chart.StyleConfig{})
	require.NoError(t, view.Render(opt))

	msg := readMessage(t, conn)
	assert.Equal(t, MessageOption, msg.Type)
	assert.Equal(t, chart.Line, msg.ChartType)
	require.NotNil(t, msg.Option)
	require.Len(t, msg.Option.Series, 2)
	assert.Equal(t, "sales", msg.Option.Series[0].Name)

	require.NoError(t, view.Resize(800, 600))
	msg = readMessage(t, conn)
	assert.Equal(t, MessageResize, msg.Type)
	assert.Equal(t, 800, msg.Width)

	require.NoError(t, view.Dispose())
	assert.Equal(t, MessageDispose, readMessage(t, conn).Type)
}

func TestLateClientReceivesLastOption(t *testing.T) {
	hub, srv := startHub(t)
	require.NoError(t, hub.View(chart.Pie).Render(build(t, chart.Pie, sales(), chart.StyleConfig{})))

	conn := dial(t, srv)
	msg := readMessage(t, conn)
	assert.Equal(t, MessageOption, msg.Type)
	assert.Equal(t, chart.Pie, msg.ChartType)
}

func TestInboundStyleMessage(t *testing.T) {
	type edit struct {
		bucket string
		patch  string
	}
	got := make(chan edit, 1)
	hub, srv := startHub(t, WithStyleHandler(func(bucket string, patch []byte) error {
		got <- edit{bucket, string(patch)}
		return nil
	}))
	conn := dial(t, srv)
	waitClients(t, hub, 1)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":   "style",
		"bucket": "line",
		"patch":  map[string]any{"smooth": true},
	}))

	select {
	case e := <-got:
		assert.Equal(t, "line", e.bucket)
		assert.JSONEq(t, `{"smooth":true}`, e.patch)
	case <-time.After(5 * time.Second):
		t.Fatal("style edit not delivered")
	}
}

func TestClientDisconnectUnregisters(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv)
	waitClients(t, hub, 1)

	conn.Close()
	waitClients(t, hub, 0)
}

func TestCheckOrigin(t *testing.T) {
	req := func(origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}

	h := NewHub(context.Background())
	assert.True(t, h.checkOrigin(req("")))
	assert.True(t, h.checkOrigin(req("http://localhost:3000")))
	assert.True(t, h.checkOrigin(req("http://localhost")))
	assert.False(t, h.checkOrigin(req("https://evil.example")))
	assert.False(t, h.checkOrigin(req("http://localhost.evil.example")))

	h = NewHub(context.Background(), WithAllowedOrigins([]string{"https://app.example", "https://*.app.example"}))
	assert.True(t, h.checkOrigin(req("https://app.example")))
	assert.True(t, h.checkOrigin(req("https://eu.app.example")))
	assert.False(t, h.checkOrigin(req("https://app.example.evil.example")))
	assert.False(t, h.checkOrigin(req("http://localhost:3000")))

	h = NewHub(context.Background(), WithAllowedOrigins([]string{"*"}))
	assert.True(t, h.checkOrigin(req("https://anything.example")))
}
