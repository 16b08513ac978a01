// Package monitor exposes the controller's live state over a small
// websocket/HTTP surface for debugging on a workbench.
package monitor

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Status is one published controller sample.
type Status struct {
	T      int64  `json:"t"`
	Frame  uint64 `json:"frame"`
	State  string `json:"state"`
	Mode   string `json:"mode"`
	Effect string `json:"effect"`
	Vector uint8  `json:"vector"`
	Dimmer uint8  `json:"dimmer"`
}

// heartbeatFrames throttles unchanged-status broadcasts.
const heartbeatFrames = 25

// Hub fans Status samples out to connected websocket clients. Safe for a
// single publisher and any number of handler goroutines.
type Hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]bool
	last    Status
	started time.Time
}

func NewHub() *Hub {
	return &Hub{
		clients: map[*websocket.Conn]bool{},
		started: time.Now(),
	}
}

// Publish records the sample and broadcasts it when something changed, or on
// the heartbeat cadence.
func (h *Hub) Publish(st Status) {
	h.mu.Lock()
	changed := st.State != h.last.State ||
		st.Mode != h.last.Mode ||
		st.Effect != h.last.Effect ||
		st.Vector != h.last.Vector ||
		st.Dimmer != h.last.Dimmer
	h.last = st
	if !changed && st.Frame%heartbeatFrames != 0 {
		h.mu.Unlock()
		return
	}
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	if len(conns) == 0 {
		return
	}
	b, _ := json.Marshal(st)
	for _, c := range conns {
		c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Debug().Err(err).Msg("monitor write")
		}
	}
}

// Last returns the most recently published sample.
func (h *Hub) Last() Status {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last
}

func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.clients, conn)
			h.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	resp := map[string]any{
		"uptime_s": time.Since(h.started).Seconds(),
		"frame":    h.last.Frame,
		"state":    h.last.State,
		"mode":     h.last.Mode,
		"effect":   h.last.Effect,
		"dimmer":   h.last.Dimmer,
	}
	h.mu.RUnlock()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// Handler returns the monitor's HTTP mux: /ws for the status stream and
// /health for a one-shot snapshot.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleWS)
	mux.HandleFunc("/health", h.handleHealth)
	return mux
}

// ListenAndServe runs the monitor server; it logs and returns on failure so
// a bad addr never takes the controller down.
func (h *Hub) ListenAndServe(addr string) {
	srv := &http.Server{Addr: addr, Handler: h.Handler()}
	log.Info().Str("addr", addr).Msg("monitor listening")
	if err := srv.ListenAndServe(); err != nil {
		log.Warn().Err(err).Msg("monitor server stopped")
	}
}
