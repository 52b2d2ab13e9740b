package websocket

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cropdetector/internal/logger"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// startHub serves a websocket endpoint that registers each viewer under the
// "session" query parameter.
func startHub(t *testing.T) (*HubService, *httptest.Server) {
	t.Helper()

	hub := NewHubService(logger.New(io.Discard))
	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(conn, r.URL.Query().Get("session"))
	}))
	t.Cleanup(func() {
		server.Close()
		hub.Stop()
	})
	return hub, server
}

func dial(t *testing.T, server *httptest.Server, session string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/?session=" + session
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_PublishReachesOnlyItsSession(t *testing.T) {
	hub, server := startHub(t)

	a := dial(t, server, "a")
	b := dial(t, server, "b")
	require.Eventually(t, func() bool { return hub.GetClientCount() == 2 }, time.Second, 5*time.Millisecond)

	hub.Publish("a", map[string]bool{"loading": true})

	a.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := a.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"loading":true}`, string(data))

	b.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err = b.ReadMessage()
	assert.Error(t, err)
}

func TestHub_PublishUnencodable(t *testing.T) {
	hub, _ := startHub(t)

	assert.NotPanics(t, func() { hub.Publish("a", make(chan int)) })
}

func TestHub_RegisterAfterStop(t *testing.T) {
	hub := NewHubService(logger.New(io.Discard))
	go hub.Run()
	hub.Stop()

	done := make(chan struct{})
	go func() {
		hub.Unregister(nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Unregister blocked after Stop")
	}
}

func TestHub_PublishKeepsOnlyLatestPerSession(t *testing.T) {
	hub := NewHubService(logger.New(io.Discard))

	for i := 0; i < 100; i++ {
		hub.Publish("a", map[string]int{"n": i})
	}
	hub.Publish("b", map[string]int{"n": 0})

	assert.Equal(t, 2, hub.Pending())
	assert.JSONEq(t, `{"n":99}`, string(hub.pending["a"]))
}

func TestHub_LastUpdateAlwaysDelivered(t *testing.T) {
	hub, server := startHub(t)

	conn := dial(t, server, "a")
	require.Eventually(t, func() bool { return hub.GetClientCount() == 1 }, time.Second, 5*time.Millisecond)

	for i := 0; i < 500; i++ {
		hub.Publish("a", map[string]interface{}{"n": i, "loading": i < 499})
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var view struct {
			N       int  `json:"n"`
			Loading bool `json:"loading"`
		}
		require.NoError(t, conn.ReadJSON(&view))
		if view.N == 499 {
			assert.False(t, view.Loading)
			return
		}
	}
}
