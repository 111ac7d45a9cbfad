package delivery

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/sekolahdigital/notify-service/internal/entity"
	"github.com/sekolahdigital/notify-service/internal/voice"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Origin checks are handled by the auth middleware in front of
		// the upgrade.
		return true
	},
}

// WSMessage is the frame exchanged with browser clients.
type WSMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// clientFrame is an incoming frame from a browser client.
type clientFrame struct {
	Type           string `json:"type"`
	NotificationID string `json:"notification_id,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Hub fans push frames out to connected browsers and drives their speech
// synthesis. It implements both the DisplayBackend and voice.Synthesizer
// contracts: visual frames go to clients matching a notification's
// targeting, speech frames go to everyone, and clients report playback
// completion and clicks back over the same socket.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	frames     chan targetedFrame

	mu      sync.RWMutex
	clients map[*Client]bool

	speechMu     sync.Mutex
	speechActive bool

	clickFn func(notificationID string)
	endFn   func()
	errFn   func(err error)
}

type targetedFrame struct {
	message WSMessage
	match   func(*Client) bool
}

// Client is one connected browser session.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	user entity.User
}

func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		frames:     make(chan targetedFrame, 64),
		clients:    make(map[*Client]bool),
		clickFn:    func(string) {},
		endFn:      func() {},
		errFn:      func(error) {},
	}
}

// Run processes registrations and outgoing frames. Call in its own
// goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			logrus.Infof("browser client connected: user=%s role=%s", client.user.ID, client.user.Role)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			logrus.Infof("browser client disconnected: user=%s", client.user.ID)

		case frame := <-h.frames:
			data, err := json.Marshal(frame.message)
			if err != nil {
				logrus.Errorf("failed to marshal ws frame: %s", err.Error())
				continue
			}

			h.mu.Lock()
			for client := range h.clients {
				if frame.match != nil && !frame.match(client) {
					continue
				}
				select {
				case client.send <- data:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// HandleWebSocket upgrades an authenticated request to a client session.
func (h *Hub) HandleWebSocket(c *gin.Context, user entity.User) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.Errorf("websocket upgrade failed: %s", err.Error())
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 32),
		user: user,
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

// RequestPermission is granted when at least one browser is connected to
// receive the frame.
func (h *Hub) RequestPermission() (bool, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients) > 0, nil
}

// Show fans a visual push frame out to clients matching the payload
// targeting.
func (h *Hub) Show(p Payload) error {
	h.frames <- targetedFrame{
		message: WSMessage{Type: "show_notification", Data: p},
		match:   matcherFor(p),
	}
	return nil
}

// OnClick registers the click callback invoked when a browser reports a
// notification click.
func (h *Hub) OnClick(fn func(notificationID string)) {
	h.clickFn = fn
}

// matcherFor builds the client predicate from payload targeting: user ids
// first, then roles, then extra roles; no targeting means everyone.
func matcherFor(p Payload) func(*Client) bool {
	if len(p.TargetUsers) > 0 {
		return func(c *Client) bool { return contains(p.TargetUsers, c.user.ID) }
	}
	if len(p.TargetRoles) > 0 {
		return func(c *Client) bool { return contains(p.TargetRoles, c.user.Role) }
	}
	if len(p.TargetExtraRoles) > 0 {
		return func(c *Client) bool { return contains(p.TargetExtraRoles, c.user.ExtraRole) }
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// Speak sends a speech frame to all connected clients. Completion is
// reported by the first client frame of type speech_ended or speech_error.
func (h *Hub) Speak(req voice.SpeechRequest) {
	h.speechMu.Lock()
	h.speechActive = true
	h.speechMu.Unlock()

	h.frames <- targetedFrame{message: WSMessage{Type: "speak", Data: req}}
}

// Stop halts the current playback; any late completion frames for it are
// dropped.
func (h *Hub) Stop() {
	h.speechMu.Lock()
	h.speechActive = false
	h.speechMu.Unlock()

	h.frames <- targetedFrame{message: WSMessage{Type: "speech_stop"}}
}

func (h *Hub) OnEnd(fn func()) {
	h.endFn = fn
}

func (h *Hub) OnError(fn func(err error)) {
	h.errFn = fn
}

// consumeSpeech claims the active playback; only the first completion frame
// wins.
func (h *Hub) consumeSpeech() bool {
	h.speechMu.Lock()
	defer h.speechMu.Unlock()
	if !h.speechActive {
		return false
	}
	h.speechActive = false
	return true
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.Errorf("websocket read error: %s", err.Error())
			}
			return
		}

		var frame clientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			logrus.Errorf("invalid client frame: %s", err.Error())
			continue
		}

		switch frame.Type {
		case "notification_clicked":
			c.hub.clickFn(frame.NotificationID)
		case "speech_ended":
			if c.hub.consumeSpeech() {
				c.hub.endFn()
			}
		case "speech_error":
			if c.hub.consumeSpeech() {
				c.hub.errFn(errors.New(frame.Error))
			}
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
