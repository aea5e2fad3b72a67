// Command flock-server runs one headless simulation and serves it over a
// websocket at /ws: every tick's agent snapshot is broadcast to all connected
// clients as a JSON frame, and clients can send control messages to pause the
// run, change the tick rate, move the chase target, or tune steering weights
// live. The simulation itself stays local; the socket only observes and tunes.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"gonum.org/v1/gonum/spatial/r2"

	"flocksim/internal/core"
	_ "flocksim/internal/sims/flock"
)

type agentFrame struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
	H  float64 `json:"h"`
}

type frame struct {
	Tick   uint64       `json:"tick"`
	Agents []agentFrame `json:"agents"`
}

// controlMsg is the client-to-server message envelope.
type controlMsg struct {
	Type  string  `json:"type"` // pause, resume, tps, set, target, clear_target, reset
	Key   string  `json:"key,omitempty"`
	Value float64 `json:"value,omitempty"`
	X     float64 `json:"x,omitempty"`
	Y     float64 `json:"y,omitempty"`
	Seed  int64   `json:"seed,omitempty"`
}

// writeWait bounds how long one frame write may take; a client that cannot
// keep up errors out and is dropped instead of stalling the broadcast for
// everyone else.
const writeWait = 10 * time.Second

type hub struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]struct{}
	upgrader websocket.Upgrader
}

func newHub() *hub {
	return &hub{
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (h *hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = struct{}{}
}

func (h *hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
	conn.Close()
}

func (h *hub) broadcast(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("failed to write to client: %v", err)
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// server serializes all simulation access: the step loop and every control
// handler take mu before touching the sim, so control messages apply between
// ticks, never during one.
type server struct {
	mu     sync.Mutex
	sim    core.Sim
	pacer  *core.FixedStep
	paused bool
	tick   uint64
}

func (s *server) stepLoop(h *hub, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		default:
		}
		payload, ok := s.advance()
		if !ok {
			time.Sleep(time.Millisecond)
			continue
		}
		h.broadcast(payload)
	}
}

// advance runs at most one tick and returns the encoded frame when one
// happened. The pacer is consulted under mu as well: control handlers retune
// it concurrently.
func (s *server) advance() ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.pacer.ShouldStep() || s.paused {
		return nil, false
	}
	if err := s.sim.Step(s.pacer.Dt()); err != nil {
		log.Fatalf("simulation step failed: %v", err)
	}
	s.tick++
	payload, err := s.encodeFrame()
	if err != nil {
		log.Printf("failed to marshal frame: %v", err)
		return nil, false
	}
	return payload, true
}

func (s *server) encodeFrame() ([]byte, error) {
	agents := s.sim.Agents()
	f := frame{Tick: s.tick, Agents: make([]agentFrame, len(agents))}
	for i, a := range agents {
		f.Agents[i] = agentFrame{X: a.Pos.X, Y: a.Pos.Y, VX: a.Vel.X, VY: a.Vel.Y, H: a.Heading}
	}
	return json.Marshal(f)
}

func (s *server) apply(msg controlMsg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch msg.Type {
	case "pause":
		s.paused = true
	case "resume":
		s.paused = false
	case "tps":
		s.pacer.SetTPS(int(msg.Value))
	case "set":
		setter, ok := s.sim.(core.FloatParameterSetter)
		if !ok || !setter.SetFloatParameter(msg.Key, msg.Value) {
			log.Printf("rejected parameter update %s=%g", msg.Key, msg.Value)
		}
	case "target":
		if ct, ok := s.sim.(interface{ SetTarget(r2.Vec) }); ok {
			ct.SetTarget(r2.Vec{X: msg.X, Y: msg.Y})
		}
	case "clear_target":
		if ct, ok := s.sim.(interface{ ClearTarget() }); ok {
			ct.ClearTarget()
		}
	case "reset":
		s.sim.Reset(msg.Seed)
		s.tick = 0
	default:
		log.Printf("unknown control message type %q", msg.Type)
	}
}

func (s *server) handler(h *hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("websocket upgrade failed: %v", err)
			return
		}
		h.add(conn)
		defer h.remove(conn)

		// Send the current state immediately so late joiners see the flock
		// before the next tick lands.
		s.mu.Lock()
		payload, err := s.encodeFrame()
		s.mu.Unlock()
		if err == nil {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var msg controlMsg
			if err := json.Unmarshal(data, &msg); err != nil {
				log.Printf("unable to decode control message: %v", err)
				continue
			}
			s.apply(msg)
		}
	}
}

func main() {
	addr := flag.String("addr", ":8080", "server listen address")
	simName := flag.String("sim", "flock", "simulation to run")
	tps := flag.Int("tps", 60, "ticks per second")
	seed := flag.Int64("seed", 0, "spawn seed (0 uses the config seed)")
	count := flag.Int("count", 0, "agent population override (0 uses the config value)")
	configPath := flag.String("config", "", "path to a TOML config file")
	flag.Parse()

	factory, ok := core.Sims()[*simName]
	if !ok {
		log.Fatalf("unknown sim %q", *simName)
	}

	opts := map[string]string{}
	if *configPath != "" {
		opts["config"] = *configPath
	}
	if *count > 0 {
		opts["count"] = strconv.Itoa(*count)
	}
	sim, err := factory(opts)
	if err != nil {
		log.Fatal(err)
	}
	if *seed != 0 {
		sim.Reset(*seed)
	}

	s := &server{sim: sim, pacer: core.NewFixedStep(*tps)}
	h := newHub()
	go s.stepLoop(h, nil)

	http.HandleFunc("/ws", s.handler(h))
	log.Printf("flock-server listening on %s (sim %q, %d agents)", *addr, sim.Name(), len(sim.Agents()))
	log.Fatal(http.ListenAndServe(*addr, nil))
}
