package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fxconvert/internal/config"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func dialTestServer(t *testing.T, srv *Server, header http.Header) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	return websocket.DefaultDialer.Dial(url, header)
}

func TestServer_GreetingThenSequentialReplies(t *testing.T) {
	r, svc, _ := newTestRouter()
	svc.On("Countries", mock.Anything).Return([]string{"Vietnam"}, nil)

	srv := NewServer(r, config.WebSocket{RequestTimeoutSeconds: 2, WriteTimeoutSeconds: 2})
	conn, _, err := dialTestServer(t, srv, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var hello Outbound
	require.NoError(t, conn.ReadJSON(&hello))
	require.Equal(t, TypeConnectionEstablished, hello.Type)
	require.Equal(t, "Connected to Currency Exchange", hello.Message)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type": "nope"}`)))
	var out Outbound
	require.NoError(t, conn.ReadJSON(&out))
	require.Equal(t, "Unknown type: nope", out.Message)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	out = Outbound{}
	require.NoError(t, conn.ReadJSON(&out))
	require.Equal(t, "Invalid JSON", out.Message)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type": "get_countries"}`)))
	out = Outbound{}
	require.NoError(t, conn.ReadJSON(&out))
	require.Equal(t, TypeCountriesList, out.Type)
}

func TestServer_RejectsDisallowedOrigin(t *testing.T) {
	r, _, _ := newTestRouter()
	srv := NewServer(r, config.WebSocket{AllowedOrigins: []string{"https://fx.example.com"}})

	_, resp, err := dialTestServer(t, srv, http.Header{"Origin": {"https://evil.example.com"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestServer_CloseAll(t *testing.T) {
	r, _, _ := newTestRouter()
	srv := NewServer(r, config.WebSocket{})

	conn, _, err := dialTestServer(t, srv, nil)
	require.NoError(t, err)
	defer conn.Close()

	var hello Outbound
	require.NoError(t, conn.ReadJSON(&hello))

	srv.CloseAll()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err = conn.ReadMessage()
	require.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}
