package main

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"flocksim/internal/core"
)

func newTestServer(t *testing.T) *server {
	t.Helper()
	factory, ok := core.Sims()["flock"]
	if !ok {
		t.Fatal("flock sim not registered")
	}
	sim, err := factory(map[string]string{"count": "32"})
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	return &server{sim: sim, pacer: core.NewFixedStep(1000)}
}

// Control messages arrive on websocket handler goroutines while the step
// loop runs; every path that touches the sim or the pacer must hold the
// server lock. Run with -race.
func TestControlsConcurrentWithStepLoop(t *testing.T) {
	s := newTestServer(t)
	h := newHub()
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.stepLoop(h, done)
	}()

	for i := 0; i < 200; i++ {
		s.apply(controlMsg{Type: "tps", Value: float64(30 + i%60)})
		s.apply(controlMsg{Type: "set", Key: "w_sep", Value: 1000})
		s.apply(controlMsg{Type: "target", X: 1, Y: 2})
		time.Sleep(100 * time.Microsecond)
	}
	s.apply(controlMsg{Type: "pause"})
	s.apply(controlMsg{Type: "resume"})
	s.apply(controlMsg{Type: "reset", Seed: 7})

	close(done)
	wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sim.Agents()) != 32 {
		t.Fatalf("expected 32 agents after control storm, got %d", len(s.sim.Agents()))
	}
}

func TestHandlerSendsInitialFrame(t *testing.T) {
	s := newTestServer(t)
	h := newHub()
	srv := httptest.NewServer(s.handler(h))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var f frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("reading initial frame: %v", err)
	}
	if len(f.Agents) != 32 {
		t.Fatalf("initial frame has %d agents, want 32", len(f.Agents))
	}
}

func TestBroadcastDropsDeadClients(t *testing.T) {
	s := newTestServer(t)
	h := newHub()
	srv := httptest.NewServer(s.handler(h))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	var f frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("reading initial frame: %v", err)
	}
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for {
		h.broadcast([]byte(`{"tick":0,"agents":[]}`))
		h.mu.Lock()
		n := len(h.clients)
		h.mu.Unlock()
		if n == 0 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("closed client was never dropped from the hub")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
