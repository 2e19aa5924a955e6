// Package remote lets a websocket client steer the viewer's orbit camera.
// Connections only enqueue commands; the frame loop drains and applies them on
// its own thread, so nothing here touches the camera or GPU state.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"volumeslices/internal/logging"
	"volumeslices/pkg/camera"
)

// Command types understood by the orbit endpoint.
const (
	CommandRotate = "rotate"
	CommandZoom   = "zoom"
	CommandSet    = "set"
	CommandReset  = "reset"
)

// QueueSize is the number of commands buffered between frames.
const QueueSize = 64

// Command is one orbit instruction. Angles are in radians.
type Command struct {
	Type     string  `json:"type"`
	Azimuth  float64 `json:"azimuth,omitempty"`
	Altitude float64 `json:"altitude,omitempty"`
	Distance float64 `json:"distance,omitempty"`
}

// Validate reports unknown command types.
func (c Command) Validate() error {
	switch c.Type {
	case CommandRotate, CommandZoom, CommandSet, CommandReset:
		return nil
	}
	return fmt.Errorf("unknown command type %q", c.Type)
}

// Apply updates orbit; home is the state restored by a reset.
func (c Command) Apply(orbit *camera.OrbitState, home camera.OrbitState) {
	switch c.Type {
	case CommandRotate:
		orbit.Rotate(c.Azimuth, c.Altitude)
	case CommandZoom:
		orbit.Zoom(c.Distance)
	case CommandSet:
		target := orbit.Target
		*orbit = camera.NewOrbitState(c.Azimuth, c.Altitude, c.Distance)
		orbit.Target = target
	case CommandReset:
		*orbit = home
	}
}

// reply is sent back for every received message.
type reply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Server accepts orbit commands on /orbit.
type Server struct {
	addr     string
	upgrader websocket.Upgrader
	commands chan Command

	mu       sync.Mutex
	http     *http.Server
	listener net.Listener
	conns    map[*websocket.Conn]struct{}
}

// NewServer creates a server that will listen on addr once started.
func NewServer(addr string) *Server {
	return &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		commands: make(chan Command, QueueSize),
		conns:    make(map[*websocket.Conn]struct{}),
	}
}

// Handler returns the HTTP handler serving the orbit endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/orbit", s.handleOrbit)
	return mux
}

// Start listens and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	s.mu.Lock()
	s.http = srv
	s.listener = ln
	s.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Logger().Error("remote control server stopped", "err", err)
		}
	}()

	logging.Logger().Info("remote control listening", "addr", ln.Addr().String())
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Close stops the listener and drops every open connection.
func (s *Server) Close() error {
	s.mu.Lock()
	srv := s.http
	s.http = nil
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// Drain passes every queued command to apply without blocking.
func (s *Server) Drain(apply func(Command)) int {
	n := 0
	for {
		select {
		case cmd := <-s.commands:
			apply(cmd)
			n++
		default:
			return n
		}
	}
}

func (s *Server) handleOrbit(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Logger().Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
	}()

	log := logging.Logger().With("remote", conn.RemoteAddr().String())
	log.Debug("remote control connected")

	for {
		var cmd Command
		if err := conn.ReadJSON(&cmd); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("remote control read failed", "err", err)
			}
			return
		}

		resp := reply{OK: true}
		if err := cmd.Validate(); err != nil {
			resp = reply{Error: err.Error()}
		} else {
			select {
			case s.commands <- cmd:
			default:
				resp = reply{Error: "command queue full"}
				log.Warn("dropping remote command, queue full", "type", cmd.Type)
			}
		}

		if err := conn.WriteJSON(resp); err != nil {
			log.Debug("remote control write failed", "err", err)
			return
		}
	}
}
