package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSocketServer(t *testing.T) (*httptest.Server, *PresenceRegistry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry := NewPresenceRegistry(nil)
	handler := NewWebSocketHandler(registry, HandlerConfig{PingPeriod: time.Second})

	router := gin.New()
	router.GET("/socket", handler.ServeWS)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, registry
}

func dial(t *testing.T, server *httptest.Server, userID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/socket?userId=" + userID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env map[string]any
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func TestServeWS_RequiresUserID(t *testing.T) {
	server, _ := newSocketServer(t)

	res, err := http.Get(server.URL + "/socket")
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestServeWS_RegistersAndBroadcasts(t *testing.T) {
	server, registry := newSocketServer(t)

	alice := dial(t, server, "alice")
	env := readEnvelope(t, alice)
	assert.Equal(t, EventOnlineUsers, env["event"])
	assert.Equal(t, []any{"alice"}, env["data"])

	bob := dial(t, server, "bob")
	env = readEnvelope(t, alice)
	assert.Equal(t, []any{"alice", "bob"}, env["data"])

	conn, ok := registry.Lookup("bob")
	require.True(t, ok)
	require.NoError(t, conn.Emit(EventNewMessage, map[string]string{"message": "hi"}))

	// bob first sees his own online broadcast, then the message
	readEnvelope(t, bob)
	env = readEnvelope(t, bob)
	assert.Equal(t, EventNewMessage, env["event"])

	require.NoError(t, bob.Close())
	assert.Eventually(t, func() bool { return !registry.IsOnline("bob") }, 2*time.Second, 10*time.Millisecond)

	env = readEnvelope(t, alice)
	assert.Equal(t, []any{"alice"}, env["data"])
}
