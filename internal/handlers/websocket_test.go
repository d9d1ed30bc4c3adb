package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"campus-portal-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialWS(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) services.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg services.Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func newWSServer(t *testing.T) (*httptest.Server, *services.WSHub, *services.AuthService) {
	t.Helper()
	auth := services.NewAuthService("test-secret")
	hub := services.NewWSHub(nil, services.TopicEvents)
	srv := httptest.NewServer(NewRouter(Deps{Auth: auth, Hub: hub}))
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return srv, hub, auth
}

func TestWebSocketTopics(t *testing.T) {
	srv, hub, auth := newWSServer(t)
	token, err := auth.GenerateJWT(alice)
	require.NoError(t, err)

	conn := dialWS(t, srv, "?token="+token)

	require.NoError(t, conn.WriteJSON(services.Message{Type: "ping"}))
	assert.Equal(t, "pong", readMessage(t, conn).Type)

	require.NoError(t, conn.WriteJSON(services.Message{Type: "subscribe", Topic: "user_bob"}))
	reply := readMessage(t, conn)
	assert.Equal(t, "error", reply.Type)
	assert.Equal(t, services.ErrPrivateTopic.Error(), reply.Message)

	require.NoError(t, conn.WriteJSON(services.Message{Type: "dance"}))
	assert.Equal(t, "error", readMessage(t, conn).Type)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	assert.Equal(t, "Invalid message format", readMessage(t, conn).Message)

	require.NoError(t, hub.Publish(t.Context(), services.UserTopic("alice"), services.Message{Event: services.EventNotification, Type: "lost_found"}))
	got := readMessage(t, conn)
	assert.Equal(t, services.EventNotification, got.Event)
	assert.Equal(t, services.UserTopic("alice"), got.Topic)
}

func TestWebSocketAnonymous(t *testing.T) {
	srv, hub, _ := newWSServer(t)
	conn := dialWS(t, srv, "")

	require.NoError(t, conn.WriteJSON(services.Message{Type: "unsubscribe", Topic: services.TopicEvents}))
	assert.Equal(t, "unsubscribed", readMessage(t, conn).Type)

	require.NoError(t, conn.WriteJSON(services.Message{Type: "subscribe", Topic: services.TopicEvents}))
	assert.Equal(t, "subscribed", readMessage(t, conn).Type)

	require.NoError(t, hub.Publish(t.Context(), services.TopicEvents, services.Message{Event: services.EventUpdate, Type: "created"}))
	got := readMessage(t, conn)
	assert.Equal(t, services.EventUpdate, got.Event)
	assert.Equal(t, "created", got.Type)
}

func TestWebSocketRejectsBadToken(t *testing.T) {
	srv, _, _ := newWSServer(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=garbage"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebSocketBearerHeader(t *testing.T) {
	srv, hub, auth := newWSServer(t)
	token, err := auth.GenerateJWT(bob)
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Authorization": {"Bearer " + token}})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, conn.WriteJSON(services.Message{Type: "ping"}))
	assert.Equal(t, "pong", readMessage(t, conn).Type)

	require.NoError(t, hub.Publish(t.Context(), services.UserTopic("bob"), services.Message{Event: services.EventNotification, Type: "lost_found"}))
	got := readMessage(t, conn)
	assert.Equal(t, services.EventNotification, got.Event)
	assert.Equal(t, services.UserTopic("bob"), got.Topic)
}
