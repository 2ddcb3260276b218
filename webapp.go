package main

import (
	"embed"
	"encoding/json"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"text/template"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/walterschell/chessboard/chessboard"
)

const DefaultPort = 8080

//go:embed assets
var assets embed.FS
var static fs.FS
var templates fs.FS

var log = slog.Default().With("package", "main")

func init() {
	static, _ = fs.Sub(assets, "assets/static")
	templates, _ = fs.Sub(assets, "assets/templates")
}

func stdoutLogger(next http.Handler) http.Handler {
	return handlers.LoggingHandler(os.Stdout, next)
}

type Client struct {
	conn        *websocket.Conn
	writeLock   sync.Mutex
	application *Application
}

func (c *Client) send(v interface{}) error {
	c.writeLock.Lock()
	defer c.writeLock.Unlock()
	return c.conn.WriteJSON(v)
}

type Application struct {
	router      *mux.Router
	templates   *template.Template
	board       *chessboard.Board
	plain       *chessboard.Renderer
	colored     *chessboard.Renderer
	clients     map[*Client]interface{}
	clientsLock sync.RWMutex
	upgrader    websocket.Upgrader
}

func NewApplication(board *chessboard.Board) *Application {
	templateParser := template.New("")
	templateParser.Delims("[[", "]]")
	result := Application{
		router:    mux.NewRouter(),
		templates: template.Must(templateParser.ParseFS(templates, "*.html.gotmpl")),
		board:     board,
		plain:     chessboard.NewRenderer(chessboard.WithColors(false)),
		colored:   chessboard.NewRenderer(),
		clients:   make(map[*Client]interface{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	result.router.NotFoundHandler = stdoutLogger(http.HandlerFunc(notFoundHandler))
	result.router.Use(stdoutLogger)

	result.router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	result.router.HandleFunc("/", result.indexHandler).Methods(http.MethodGet)
	result.router.HandleFunc("/board", result.boardHandler).Methods(http.MethodGet)
	result.router.HandleFunc("/board/fen", result.fenHandler).Methods(http.MethodGet)
	result.router.HandleFunc("/squares/{coord}", result.squareHandler).Methods(http.MethodGet)
	result.router.HandleFunc("/ws", result.wsHandler)
	return &result
}

func (app *Application) indexHandler(w http.ResponseWriter, r *http.Request) {
	templateVars := struct {
		Title       string
		Board       string
		FEN         string
		Coordinates string
	}{
		Title:       "Chess Board",
		Board:       app.plain.Render(app.board),
		FEN:         app.board.FEN(),
		Coordinates: app.board.Coordinates().String(),
	}

	err := app.templates.ExecuteTemplate(w, "index.html.gotmpl", templateVars)
	if err != nil {
		log.Error("Error rendering template", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (app *Application) boardHandler(w http.ResponseWriter, r *http.Request) {
	renderer := app.plain
	if r.URL.Query().Get("color") == "1" {
		renderer = app.colored
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := renderer.RenderTo(w, app.board); err != nil {
		log.Error("Error writing board", "error", err)
	}
}

func (app *Application) fenHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, app.board.FEN())
}

// SquareInfo describes one square resolved from an algebraic label.
type SquareInfo struct {
	Square string `json:"square"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Piece  string `json:"piece,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (app *Application) lookup(coord string) (*SquareInfo, bool) {
	pos, ok := app.board.Lookup(coord)
	if !ok {
		return nil, false
	}
	info := &SquareInfo{Square: coord, Row: pos.Row, Col: pos.Col}
	if p, occupied := app.board.At(pos).Piece(); occupied {
		info.Piece = p.String()
	}
	return info, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Error encoding response", "error", err)
	}
}

func (app *Application) squareHandler(w http.ResponseWriter, r *http.Request) {
	coord := mux.Vars(r)["coord"]
	info, ok := app.lookup(coord)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("no such square: %q", coord)})
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// Request is a message sent by a websocket client.
type Request struct {
	Type    string `json:"type"`
	Square  string `json:"square,omitempty"`
	Message string `json:"message,omitempty"`
}

// Response is a message sent to websocket clients.
type Response struct {
	Type    string      `json:"type"`
	Board   string      `json:"board,omitempty"`
	FEN     string      `json:"fen,omitempty"`
	Square  *SquareInfo `json:"square,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func (app *Application) boardResponse() Response {
	return Response{Type: "board", Board: app.plain.Render(app.board), FEN: app.board.FEN()}
}

func (app *Application) handleRequest(client *Client, request Request) {
	switch request.Type {
	case "render":
		client.send(app.boardResponse())
	case "lookup":
		info, ok := app.lookup(request.Square)
		if !ok {
			client.send(Response{Type: "error", Error: fmt.Sprintf("no such square: %q", request.Square)})
			return
		}
		client.send(Response{Type: "square", Square: info})
	case "broadcast":
		app.broadcast(request.Message)
	default:
		client.send(Response{Type: "error", Error: fmt.Sprintf("unknown request type: %q", request.Type)})
	}
}

func (app *Application) removeClient(client *Client) {
	app.clientsLock.Lock()
	delete(app.clients, client)
	app.clientsLock.Unlock()
	client.conn.Close()
}

func (app *Application) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := app.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("Error upgrading connection", "error", err)
		return
	}
	log.Info("New websocket connection", "remote", conn.RemoteAddr().String())
	client := &Client{
		conn:        conn,
		application: app,
	}
	app.clientsLock.Lock()
	app.clients[client] = nil
	app.clientsLock.Unlock()
	if err := client.send(app.boardResponse()); err != nil {
		log.Error("Error sending board", "error", err)
		app.removeClient(client)
		return
	}
	go func() {
		defer app.removeClient(client)
		for {
			_, messageJson, err := client.conn.ReadMessage()
			if err != nil {
				log.Info("Websocket closed", "remote", conn.RemoteAddr().String(), "error", err)
				return
			}
			var request Request
			if err := json.Unmarshal(messageJson, &request); err != nil {
				log.Warn("Error parsing message", "error", err)
				client.send(Response{Type: "error", Error: "malformed request"})
				continue
			}
			app.handleRequest(client, request)
		}
	}()
}

func (app *Application) broadcast(message string) {
	log.Info("Broadcasting message", "message", message)
	app.clientsLock.RLock()
	defer app.clientsLock.RUnlock()
	for client := range app.clients {
		if err := client.send(Response{Type: "broadcast", Message: message}); err != nil {
			log.Warn("Error broadcasting", "remote", client.conn.RemoteAddr().String(), "error", err)
		}
	}
}

func (app *Application) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	app.router.ServeHTTP(w, r)
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "File Not Found", http.StatusNotFound)
}

func main() {
	var port uint
	var printOnly, noColor bool
	var coords string
	flag.UintVar(&port, "port", DefaultPort, "Port to listen on")
	flag.BoolVar(&printOnly, "print", false, "Print the board to stdout and exit")
	flag.BoolVar(&noColor, "no-color", false, "Disable ANSI colors when printing")
	flag.StringVar(&coords, "coords", chessboard.LegacyCoordinates.String(), "Coordinate convention: legacy or standard")
	flag.Parse()

	convention, err := chessboard.ParseCoordinateConvention(coords)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	board := chessboard.NewBoard(chessboard.WithCoordinates(convention))

	if printOnly {
		renderer := chessboard.NewRenderer(chessboard.WithColors(!noColor))
		if _, err := renderer.RenderTo(os.Stdout, board); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if port == 0 || port > 65535 {
		fmt.Println("Invalid port number")
		os.Exit(1)
	}
	fmt.Printf("Starting server on :%d\n", port)
	app := NewApplication(board)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", port), app); err != nil {
		log.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}
