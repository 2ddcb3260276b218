package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walterschell/chessboard/chessboard"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(NewApplication(chessboard.NewBoard()))
	t.Cleanup(server.Close)
	return server
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestBoardEndpoint(t *testing.T) {
	server := newTestServer(t)

	status, body := get(t, server.URL+"/board")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, chessboard.NewRenderer(chessboard.WithColors(false)).Render(chessboard.NewBoard()), body)
	assert.NotContains(t, body, "\x1b[")

	status, body = get(t, server.URL+"/board?color=1")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "\x1b[")
}

func TestFENEndpoint(t *testing.T) {
	server := newTestServer(t)
	status, body := get(t, server.URL+"/board/fen")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR\n", body)
}

func TestSquareEndpoint(t *testing.T) {
	server := newTestServer(t)

	t.Run("Known square", func(t *testing.T) {
		status, body := get(t, server.URL+"/squares/a1")
		require.Equal(t, http.StatusOK, status)
		var info SquareInfo
		require.NoError(t, json.Unmarshal([]byte(body), &info))
		assert.Equal(t, SquareInfo{Square: "a1", Row: 0, Col: 0, Piece: "Black Rook"}, info)
	})

	t.Run("Empty square", func(t *testing.T) {
		status, body := get(t, server.URL+"/squares/e4")
		require.Equal(t, http.StatusOK, status)
		var info SquareInfo
		require.NoError(t, json.Unmarshal([]byte(body), &info))
		assert.Equal(t, SquareInfo{Square: "e4", Row: 4, Col: 3}, info)
	})

	t.Run("Unknown square", func(t *testing.T) {
		status, body := get(t, server.URL+"/squares/z9")
		assert.Equal(t, http.StatusNotFound, status)
		assert.Contains(t, body, "no such square")
	})
}

func TestIndexAndStatic(t *testing.T) {
	server := newTestServer(t)

	status, body := get(t, server.URL+"/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR")
	assert.Contains(t, body, "8 | r n b q k b n r")

	status, _ = get(t, server.URL+"/static/board.css")
	assert.Equal(t, http.StatusOK, status)

	status, _ = get(t, server.URL+"/missing")
	assert.Equal(t, http.StatusNotFound, status)
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func readResponse(t *testing.T, conn *websocket.Conn) Response {
	t.Helper()
	var response Response
	require.NoError(t, conn.ReadJSON(&response))
	return response
}

func TestWebsocket(t *testing.T) {
	server := newTestServer(t)
	conn := dial(t, server)

	welcome := readResponse(t, conn)
	assert.Equal(t, "board", welcome.Type)
	assert.True(t, strings.HasPrefix(welcome.Board, "8 | r n b q k b n r\n"))

	require.NoError(t, conn.WriteJSON(Request{Type: "lookup", Square: "h1"}))
	response := readResponse(t, conn)
	require.Equal(t, "square", response.Type)
	require.NotNil(t, response.Square)
	assert.Equal(t, 7, response.Square.Row)
	assert.Equal(t, 0, response.Square.Col)
	assert.Equal(t, "White Rook", response.Square.Piece)

	require.NoError(t, conn.WriteJSON(Request{Type: "lookup", Square: "E4"}))
	response = readResponse(t, conn)
	assert.Equal(t, "error", response.Type)

	require.NoError(t, conn.WriteJSON(Request{Type: "render"}))
	response = readResponse(t, conn)
	assert.Equal(t, welcome, response)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	response = readResponse(t, conn)
	assert.Equal(t, "error", response.Type)
}

func TestWebsocketBroadcast(t *testing.T) {
	server := newTestServer(t)
	first := dial(t, server)
	second := dial(t, server)
	readResponse(t, first)
	readResponse(t, second)

	require.NoError(t, first.WriteJSON(Request{Type: "broadcast", Message: "hello"}))
	for _, conn := range []*websocket.Conn{first, second} {
		response := readResponse(t, conn)
		assert.Equal(t, "broadcast", response.Type)
		assert.Equal(t, "hello", response.Message)
	}
}
