package events

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Server upgrades incoming HTTP connections to websockets and mirrors every
// Hub event to them as JSON.
type Server struct {
	hub      *Hub
	upgrader websocket.Upgrader
	httpSrv  *http.Server
	log      *log.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]chan Event
}

// NewServer builds a Server that broadcasts hub's events on addr under
// path. Origin checks are disabled. A nil logOut discards diagnostics.
func NewServer(hub *Hub, addr, path string, logOut io.Writer) *Server {
	if logOut == nil {
		logOut = io.Discard
	}
	s := &Server{
		hub:      hub,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		clients:  make(map[*websocket.Conn]chan Event),
		log:      log.New(logOut, "events: ", log.LstdFlags),
	}
	mux := http.NewServeMux()
	mux.HandleFunc(path, s.handle)
	s.httpSrv = &http.Server{Addr: addr, Handler: mux}
	return s
}

// Start begins listening in the background and returns immediately. It
// also launches the loop that fans hub events out to every connected
// client. Start must be called at most once per Server.
func (s *Server) Start() {
	sub, unsubscribe := s.hub.Subscribe()
	go func() {
		for ev := range sub {
			s.broadcast(ev)
		}
	}()
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Printf("server on %s stopped: %v", s.httpSrv.Addr, err)
		}
		unsubscribe()
	}()
}

// Stop closes the underlying HTTP server and every client connection.
func (s *Server) Stop() error {
	s.mu.Lock()
	for conn, ch := range s.clients {
		close(ch)
		conn.Close()
	}
	s.clients = make(map[*websocket.Conn]chan Event)
	s.mu.Unlock()
	return s.httpSrv.Close()
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	ch := make(chan Event, 64)
	s.mu.Lock()
	s.clients[conn] = ch
	s.mu.Unlock()

	go s.writeLoop(conn, ch)
	go s.readLoop(conn)
}

// writeLoop drains ch into conn until the channel is closed (client
// removed) or a write fails (client gone).
func (s *Server) writeLoop(conn *websocket.Conn, ch chan Event) {
	for ev := range ch {
		data, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			s.removeClient(conn)
			return
		}
	}
}

// readLoop discards client traffic; this protocol is publish-only, but a
// client connection must still be read from to observe close frames.
func (s *Server) readLoop(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.removeClient(conn)
			return
		}
	}
}

func (s *Server) removeClient(conn *websocket.Conn) {
	s.mu.Lock()
	if ch, ok := s.clients[conn]; ok {
		delete(s.clients, conn)
		close(ch)
	}
	s.mu.Unlock()
	conn.Close()
}

func (s *Server) broadcast(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.clients {
		select {
		case ch <- ev:
		default:
		}
	}
}
