package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstittsworth/lineup-editor/internal/pitch"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(testLogger(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub
}

func dialSession(t *testing.T, hub *Hub, sessionID string, initial pitch.State) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.ServeSession(w, r, sessionID, initial)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readState(t *testing.T, conn *websocket.Conn) StateMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg StateMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	assert.Eventually(t, func() bool {
		return hub.GetConnectionCount(context.Background()) == n
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHub_StreamsSessionStates(t *testing.T) {
	hub := startHub(t)
	conn := dialSession(t, hub, "s1", pitch.State{CurrentTime: 3})
	other := dialSession(t, hub, "s2", pitch.State{CurrentTime: 70})

	first := readState(t, conn)
	assert.Equal(t, "state", first.Type)
	assert.Equal(t, "s1", first.SessionID)
	assert.Equal(t, 3, first.Data.CurrentTime)
	assert.Equal(t, 70, readState(t, other).Data.CurrentTime)

	waitForClients(t, hub, 2)

	hub.Publish("s1", pitch.State{CurrentTime: 4, IsPlaying: true})
	next := readState(t, conn)
	assert.Equal(t, 4, next.Data.CurrentTime)
	assert.True(t, next.Data.IsPlaying)

	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := other.ReadMessage()
	assert.Error(t, err, "other sessions see nothing")
}

func TestHub_CloseSessionDisconnectsClients(t *testing.T) {
	hub := startHub(t)
	conn := dialSession(t, hub, "s1", pitch.State{})
	readState(t, conn)
	waitForClients(t, hub, 1)

	hub.CloseSession("s1")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	waitForClients(t, hub, 0)
}

func TestHub_ClientDisconnectUnregisters(t *testing.T) {
	hub := startHub(t)
	conn := dialSession(t, hub, "s1", pitch.State{})
	readState(t, conn)
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)
}

func TestHub_RejectsForeignOrigin(t *testing.T) {
	hub := NewHub(testLogger(), []string{"http://localhost:5173"})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.ServeSession(w, r, "s1", pitch.State{})
	}))
	defer srv.Close()

	header := http.Header{"Origin": {"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
