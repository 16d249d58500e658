package handlers_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyunwoo/beluga-backend/internal/testutil"
)

func TestSocketEndpoint(t *testing.T) {
	ts := testutil.NewTestServer(t)

	account := testutil.NewAccountBuilder().Build(t, ts.DB.DB)
	rawToken, err := ts.Services.Session.MarkSigned(context.Background(), nil, account)
	require.NoError(t, err)

	t.Run("rejects a missing token", func(t *testing.T) {
		_, resp, err := ws.DefaultDialer.Dial(ts.WebSocketURL(""), nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("greets an authenticated client", func(t *testing.T) {
		conn, resp, err := ws.DefaultDialer.Dial(ts.WebSocketURL(rawToken), nil)
		require.NoError(t, err)
		if resp != nil {
			resp.Body.Close()
		}
		defer conn.Close()

		require.NoError(t, conn.WriteMessage(ws.TextMessage, []byte("ping")))

		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, message, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, "Hello world!", string(message))
	})
}
