package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Manager owns all live WebSocket connections and routes story events to
// the clients subscribed to them.
type Manager struct {
	clients    map[uuid.UUID]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan Message
	logger     *zap.Logger
	mu         sync.RWMutex
}

// Client is one connected browser session.
type Client struct {
	ID      uuid.UUID
	UserID  string
	Conn    *websocket.Conn
	Manager *Manager
	Send    chan []byte
	Topics  map[string]bool
	mu      sync.RWMutex
}

// Message is one event pushed to clients. Target narrows delivery to a
// single user; empty or "broadcast" reaches every subscriber of the topic.
type Message struct {
	Type    string      `json:"type"`
	Topic   string      `json:"topic"`
	Payload interface{} `json:"payload"`
	Target  string      `json:"target,omitempty"`
}

// StoryTopic is the subscription topic for one story's events.
func StoryTopic(storyID uuid.UUID) string {
	return "story:" + storyID.String()
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict to the app origins once the frontend domain is fixed.
		return true
	},
}

func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		clients:    make(map[uuid.UUID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Message),
		logger:     logger.Named("WSManager"),
	}
}

// Start runs the manager loop in its own goroutine.
func (m *Manager) Start() {
	go m.run()
}

func (m *Manager) run() {
	for {
		select {
		case client := <-m.register:
			m.mu.Lock()
			m.clients[client.ID] = client
			m.mu.Unlock()
			m.logger.Info("Client connected",
				zap.String("clientID", client.ID.String()), zap.String("userID", client.UserID))

		case client := <-m.unregister:
			m.mu.Lock()
			if _, ok := m.clients[client.ID]; ok {
				close(client.Send)
				delete(m.clients, client.ID)
				m.logger.Info("Client disconnected", zap.String("clientID", client.ID.String()))
			}
			m.mu.Unlock()

		case message := <-m.broadcast:
			data, err := json.Marshal(message)
			if err != nil {
				m.logger.Error("Failed to marshal message", zap.Error(err))
				continue
			}

			m.mu.Lock()
			for _, client := range m.clients {
				if message.Target != "" && message.Target != "broadcast" && client.UserID != message.Target {
					continue
				}
				if !client.IsSubscribed(message.Topic) {
					continue
				}
				select {
				case client.Send <- data:
				default:
					close(client.Send)
					delete(m.clients, client.ID)
				}
			}
			m.mu.Unlock()
		}
	}
}

// Handler upgrades HTTP requests to WebSocket connections. Clients identify
// themselves with a user_id query parameter and then subscribe to story
// topics over the socket.
func (m *Manager) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			http.Error(w, "missing user_id", http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			m.logger.Error("Failed to upgrade connection", zap.Error(err))
			return
		}

		client := &Client{
			ID:      uuid.New(),
			UserID:  userID,
			Conn:    conn,
			Manager: m,
			Send:    make(chan []byte, 256),
			Topics:  make(map[string]bool),
		}

		m.register <- client

		go client.readPump()
		go client.writePump()
	})
}

// SendToUser pushes a message to one user's subscribed connections.
func (m *Manager) SendToUser(userID, messageType, topic string, payload interface{}) {
	m.broadcast <- Message{
		Type:    messageType,
		Topic:   topic,
		Payload: payload,
		Target:  userID,
	}
}

// Broadcast pushes a message to every connection subscribed to the topic.
func (m *Manager) Broadcast(messageType, topic string, payload interface{}) {
	m.broadcast <- Message{
		Type:    messageType,
		Topic:   topic,
		Payload: payload,
		Target:  "broadcast",
	}
}

func (c *Client) readPump() {
	defer func() {
		c.Manager.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(512)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Manager.logger.Warn("Read error", zap.Error(err))
			}
			break
		}

		var cmd struct {
			Action string `json:"action"`
			Topic  string `json:"topic"`
		}
		if err := json.Unmarshal(message, &cmd); err != nil {
			c.Manager.logger.Warn("Failed to parse client command", zap.Error(err))
			continue
		}

		switch cmd.Action {
		case "subscribe":
			c.Subscribe(cmd.Topic)
		case "unsubscribe":
			c.Unsubscribe(cmd.Topic)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Drain queued messages into the same frame batch.
			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) Subscribe(topic string) {
	c.mu.Lock()
	c.Topics[topic] = true
	c.mu.Unlock()
}

func (c *Client) Unsubscribe(topic string) {
	c.mu.Lock()
	delete(c.Topics, topic)
	c.mu.Unlock()
}

func (c *Client) IsSubscribed(topic string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Topics[topic]
}
