// Package hub pushes match events to browsers over websockets.
package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/mauv0809/training-match/internal/notifier"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 32
)

var _ notifier.Notifier = (*Hub)(nil)

// viewer is one websocket connection watching a match. memberID is empty
// for anonymous viewers and guests.
type viewer struct {
	conn     *websocket.Conn
	code     string
	memberID string
	send     chan []byte
}

// Hub keeps the open connections per match code and fans events out to them.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	viewers map[string]map[*viewer]struct{}
}

// New creates an empty Hub.
func New() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		viewers: make(map[string]map[*viewer]struct{}),
	}
}

// Serve upgrades the request and streams the events of the match with the
// given code until the client disconnects.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, code, memberID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}
	v := &viewer{
		conn:     conn,
		code:     normalize(code),
		memberID: memberID,
		send:     make(chan []byte, sendBuffer),
	}
	h.register(v)
	log.Debug("Viewer connected", "code", v.code, "memberID", memberID)

	go h.writePump(v)
	h.readPump(v)
	return nil
}

// Notify sends the event to every viewer of its match. Targeted events only
// reach the connections of the target member. Slow viewers whose buffer is
// full miss the event.
func (h *Hub) Notify(_ context.Context, event notifier.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for v := range h.viewers[normalize(event.MatchCode)] {
		if event.Targeted() && v.memberID != event.TargetMemberID {
			continue
		}
		select {
		case v.send <- data:
		default:
			log.Warn("Viewer too slow, skipping event", "code", v.code, "kind", event.Kind)
		}
	}
	return nil
}

// ViewerCount returns the number of open connections for a match code.
func (h *Hub) ViewerCount(code string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.viewers[normalize(code)])
}

// Close disconnects every viewer.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for code, set := range h.viewers {
		for v := range set {
			close(v.send)
		}
		delete(h.viewers, code)
	}
}

func (h *Hub) register(v *viewer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.viewers[v.code]
	if !ok {
		set = make(map[*viewer]struct{})
		h.viewers[v.code] = set
	}
	set[v] = struct{}{}
}

func (h *Hub) unregister(v *viewer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.viewers[v.code]
	if !ok {
		return
	}
	if _, ok := set[v]; !ok {
		return
	}
	delete(set, v)
	close(v.send)
	if len(set) == 0 {
		delete(h.viewers, v.code)
	}
}

// readPump discards client messages and detects disconnects.
func (h *Hub) readPump(v *viewer) {
	defer func() {
		h.unregister(v)
		v.conn.Close()
		log.Debug("Viewer disconnected", "code", v.code)
	}()
	v.conn.SetReadLimit(512)
	v.conn.SetReadDeadline(time.Now().Add(pongWait))
	v.conn.SetPongHandler(func(string) error {
		return v.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := v.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("Websocket read error", "error", err, "code", v.code)
			}
			return
		}
	}
}

func (h *Hub) writePump(v *viewer) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		v.conn.Close()
	}()
	for {
		select {
		case data, ok := <-v.send:
			v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				v.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := v.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := v.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
