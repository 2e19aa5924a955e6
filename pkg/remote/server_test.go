package remote

import (
	"math"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"volumeslices/pkg/camera"
)

func dialOrbit(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/orbit"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, cmd Command) reply {
	t.Helper()
	if err := conn.WriteJSON(cmd); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	var r reply
	if err := conn.ReadJSON(&r); err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	return r
}

func TestOrbitCommandsAreQueued(t *testing.T) {
	s := NewServer("")
	conn := dialOrbit(t, s)

	if r := send(t, conn, Command{Type: CommandRotate, Azimuth: 0.5}); !r.OK {
		t.Fatalf("Expected rotate to be accepted, got %+v", r)
	}
	if r := send(t, conn, Command{Type: CommandZoom, Distance: -2}); !r.OK {
		t.Fatalf("Expected zoom to be accepted, got %+v", r)
	}

	// Replies are written after enqueueing, so both commands are ready.
	var got []Command
	if n := s.Drain(func(c Command) { got = append(got, c) }); n != 2 {
		t.Fatalf("Expected 2 drained commands, got %d", n)
	}
	if got[0].Type != CommandRotate || got[1].Type != CommandZoom {
		t.Errorf("Commands out of order: %+v", got)
	}
	if n := s.Drain(func(Command) {}); n != 0 {
		t.Errorf("Expected an empty queue, got %d", n)
	}
}

func TestUnknownCommandRejected(t *testing.T) {
	s := NewServer("")
	conn := dialOrbit(t, s)

	r := send(t, conn, Command{Type: "spin"})
	if r.OK || r.Error == "" {
		t.Errorf("Expected an error reply, got %+v", r)
	}
	if n := s.Drain(func(Command) {}); n != 0 {
		t.Errorf("Expected nothing queued, got %d", n)
	}
}

func TestQueueOverflowIsReported(t *testing.T) {
	s := NewServer("")
	conn := dialOrbit(t, s)

	for i := 0; i < QueueSize; i++ {
		if r := send(t, conn, Command{Type: CommandReset}); !r.OK {
			t.Fatalf("command %d rejected: %+v", i, r)
		}
	}
	if r := send(t, conn, Command{Type: CommandReset}); r.OK {
		t.Error("Expected the overflowing command to be rejected")
	}
}

func TestCommandApply(t *testing.T) {
	home := camera.NewOrbitState(0, math.Pi/2, 10)
	orbit := home

	Command{Type: CommandRotate, Azimuth: 0.25, Altitude: -0.5}.Apply(&orbit, home)
	if math.Abs(orbit.Azimuth-0.25) > 1e-9 || math.Abs(orbit.Altitude-(math.Pi/2-0.5)) > 1e-9 {
		t.Errorf("unexpected orbit after rotate: %+v", orbit)
	}

	Command{Type: CommandZoom, Distance: 5}.Apply(&orbit, home)
	if orbit.Distance != 15 {
		t.Errorf("Expected distance 15, got %f", orbit.Distance)
	}

	Command{Type: CommandSet, Azimuth: 1, Altitude: 1, Distance: 1000}.Apply(&orbit, home)
	if orbit.Distance != camera.MaxDistance || orbit.Azimuth != 1 {
		t.Errorf("Expected a clamped absolute orbit, got %+v", orbit)
	}

	Command{Type: CommandReset}.Apply(&orbit, home)
	if orbit != home {
		t.Errorf("Expected reset to restore %+v, got %+v", home, orbit)
	}
}

func TestStartAndClose(t *testing.T) {
	s := NewServer("127.0.0.1:0")
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	url := "ws://" + s.Addr() + "/orbit"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial %s: %v", url, err)
	}
	defer conn.Close()

	if r := send(t, conn, Command{Type: CommandReset}); !r.OK {
		t.Errorf("Expected reset accepted, got %+v", r)
	}

	if err := s.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}
