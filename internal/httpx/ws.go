package httpx

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeWait = 5 * time.Second

// client is one websocket viewer. Writes to its connection are serialised
// by the hub lock.
type client struct {
	conn *websocket.Conn
}

// hub keeps the connected viewers and pushes state to them.
type hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
}

func newHub() *hub {
	return &hub{clients: make(map[*client]struct{})}
}

func (h *hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.conn.Close()
	}
}

func (h *hub) len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// broadcast sends v as JSON to every client, dropping those that fail.
func (h *hub) broadcast(v interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if err := h.send(c, v); err != nil {
			log.Debug().Err(err).Str("remote", c.conn.RemoteAddr().String()).Msg("dropping websocket client")
			delete(h.clients, c)
			c.conn.Close()
		}
	}
}

// send writes v to c. The caller holds h.mu.
func (h *hub) send(c *client, v interface{}) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(v)
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.conn.WriteControl(websocket.CloseMessage, //nolint:errcheck // best effort on shutdown
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		c.conn.Close()
		delete(h.clients, c)
	}
}

// wsHandler upgrades the connection, sends the current state and then
// keeps the viewer updated after every change. Messages from the viewer
// are ignored; reading only notices when it goes away.
func (s *Server) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already answered the request.
		log.Debug().Err(err).Msg("websocket upgrade")
		return
	}
	log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("websocket connected")
	c := &client{conn: conn}

	s.mu.Lock()
	st := s.stateLocked()
	s.mu.Unlock()

	s.hub.mu.Lock()
	err = s.hub.send(c, st)
	if err == nil {
		s.hub.clients[c] = struct{}{}
	}
	s.hub.mu.Unlock()
	if err != nil {
		conn.Close()
		return
	}

	go func() {
		defer s.hub.remove(c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
