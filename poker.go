// Pokerbox planning poker
//
// One shared room. Participants join with an email address, the room keeps a
// queue of stories, and the selected story is estimated in rounds:
// start, vote, reveal, reset.
//
// Features:
// - Single websocket endpoint: /ws
// - Connections are identified by a random id for their lifetime only
// - Display names derived from the email local part ("jane.doe" -> "Jane Doe")
// - Optional email domain restriction
// - Duplicate display names rejected, with the error sent only to the offender
// - Votes hidden until revealed, including from late joiners
// - Numeric votes aggregated (average, min, max) on reveal
// - Slow clients are dropped instead of stalling the room
// - In-browser QR button to share the room, backed by go-qrcode

package main

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"
)

const writeWait = 10 * time.Second

// Messages coming from clients
type ClientMessage struct {
	Type        string `json:"type"`
	Email       string `json:"email,omitempty"`       // join-room
	Title       string `json:"title,omitempty"`       // add-story
	Description string `json:"description,omitempty"` // add-story
	StoryID     string `json:"storyId,omitempty"`     // set-current-story / delete-story
	Vote        string `json:"vote,omitempty"`        // vote
}

type Client struct {
	id   ConnID
	conn *websocket.Conn
	send chan any
}

// Hub owns the live connections and is the room's Transport.
type Hub struct {
	cfg  *Config
	room *Room

	mu      sync.Mutex
	clients map[ConnID]*Client
}

func newHub(cfg *Config) *Hub {
	h := &Hub{
		cfg:     cfg,
		clients: make(map[ConnID]*Client),
	}

	h.room = NewRoom(h, IdentityValidator{AllowedDomain: cfg.allowedDomain}, RoomOptions{
		StrictVotes: cfg.strictVotes,
	})

	return h
}

// Send queues msg for the connection. A client whose queue is full is dropped;
// its read pump then runs the normal disconnect path.
func (h *Hub) Send(to ConnID, msg any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[to]
	if !ok {
		return
	}

	select {
	case c.send <- msg:
	default:
		log.Warn().Str("module", "hub").Str("conn", string(to)).Msg("send buffer full, dropping client")
		h.dropLocked(c)
	}
}

func (h *Hub) dropLocked(c *Client) {
	if _, ok := h.clients[c.id]; !ok {
		return
	}
	delete(h.clients, c.id)
	close(c.send)
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c.id] = c

	log.Debug().Str("module", "hub").Str("conn", string(c.id)).Int("clients", len(h.clients)).Msg("client connected")
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.dropLocked(c)

	log.Debug().Str("module", "hub").Str("conn", string(c.id)).Int("clients", len(h.clients)).Msg("client disconnected")
}

// closeAll asks every client to disconnect; used on shutdown.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range h.clients {
		h.dropLocked(c)
	}
}

func (h *Hub) connected() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.clients)
}

func (h *Hub) dispatch(c *Client, msg ClientMessage) {
	switch msg.Type {
	case "join-room", "join":
		_ = h.room.Join(c.id, msg.Email)
	case "leave-room", "leave":
		h.room.Leave(c.id)
	case "add-story":
		h.room.AddStory(c.id, msg.Title, msg.Description)
	case "delete-story":
		h.room.DeleteStory(c.id, msg.StoryID)
	case "set-current-story", "select-story":
		h.room.SelectStory(c.id, msg.StoryID)
	case "start-estimation":
		h.room.StartEstimation(c.id)
	case "vote":
		h.room.Vote(c.id, msg.Vote)
	case "reveal-votes":
		h.room.Reveal(c.id)
	case "reset-votes":
		h.room.ResetVotes(c.id)
	case "restart-voting":
		h.room.RestartVoting(c.id)
	default:
		log.Debug().Str("module", "hub").Str("conn", string(c.id)).Str("type", msg.Type).Msg("unknown message type")
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func serveWS(h *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error().Err(err).Str("module", "hub").Str("remote", realIP(r)).Msg("upgrade error")
			return
		}

		client := &Client{
			id:   ConnID(uuid.NewString()),
			conn: conn,
			send: make(chan any, h.cfg.sendBuffer),
		}

		h.register(client)

		go client.writePump(h.cfg)
		client.readPump(h)
	}
}

// readPump is the only reader of the connection. Every exit path removes the
// client from the hub and the room.
func (c *Client) readPump(h *Hub) {
	defer func() {
		h.unregister(c)
		h.room.Leave(c.id)
		_ = c.conn.Close()
	}()

	pongWait := h.cfg.pingPeriod * 10 / 9

	c.conn.SetReadLimit(h.cfg.readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("module", "hub").Str("conn", string(c.id)).Msg("read error")
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Warn().Err(err).Str("module", "hub").Str("conn", string(c.id)).Msg("discarding malformed message")
			continue
		}

		h.dispatch(c, msg)
	}
}

func (c *Client) writePump(cfg *Config) {
	ticker := time.NewTicker(cfg.pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := c.conn.WriteJSON(msg); err != nil {
				log.Debug().Err(err).Str("module", "hub").Str("conn", string(c.id)).Msg("write error")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
