package console

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleDispatch(t *testing.T) {
	s := NewServer("", func(_ context.Context, text string) []string {
		return []string{"heard: " + text, "done"}
	})

	ts := httptest.NewServer(s.httpSrv.Handler)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("what time is it")))

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, first, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "heard: what time is it", string(first))

	_, second, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "done", string(second))
}
