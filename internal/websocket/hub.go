package receiptws

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	websocket "github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"

	"github.com/Kalyaneluri-21/Payout-Automation/internal/models"
)

const EventReceiptGenerated = "receipt_generated"

var ErrHubStopped = errors.New("receipt hub stopped")

// Hub fans receipt events out to connected dashboards: the receipt's mentor
// and every connected admin.
type Hub struct {
	clients    map[string]map[*Client]struct{}
	admins     map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Event
	done       chan struct{}
	logger     *zap.Logger
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	role   string
	send   chan []byte
	// closed by the hub when the client is dropped; send is never closed
	// because ReadPump may still be writing replies into it.
	done chan struct{}
}

type Event struct {
	Type       string  `json:"type"`
	ReceiptID  string  `json:"receipt_id,omitempty"`
	MentorID   string  `json:"mentor_id,omitempty"`
	NetPayable float64 `json:"net_payable,omitempty"`
	Overridden bool    `json:"overridden,omitempty"`
	Content    string  `json:"content,omitempty"`
	Timestamp  string  `json:"timestamp"`
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		admins:     make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Event, 64),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

func NewClient(hub *Hub, conn *websocket.Conn, userID string, role string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		role:   role,
		send:   make(chan []byte, 32),
		done:   make(chan struct{}),
	}
}

// Run owns the client maps until ctx is done. Call it once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			set, ok := h.clients[client.userID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.userID] = set
			}
			set[client] = struct{}{}
			if client.role == models.RoleAdmin {
				h.admins[client] = struct{}{}
			}
		case client := <-h.unregister:
			h.remove(client)
		case event := <-h.broadcast:
			h.deliver(event)
		}
	}
}

// Register and Unregister return without effect once Run has exited.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// OnReceiptGenerated queues a push for the receipt. It never blocks past ctx
// or past the end of Run.
func (h *Hub) OnReceiptGenerated(ctx context.Context, receipt *models.Receipt) error {
	event := &Event{
		Type:       EventReceiptGenerated,
		ReceiptID:  receipt.ID,
		MentorID:   strconv.FormatInt(receipt.MentorID, 10),
		NetPayable: receipt.NetPayable,
		Overridden: receipt.Overridden,
		Timestamp:  receipt.CreatedAt.UTC().Format(time.RFC3339),
	}
	select {
	case h.broadcast <- event:
		return nil
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) deliver(event *Event) {
	encoded, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("encode receipt event", zap.Error(err))
		return
	}

	delivered := make(map[*Client]struct{})
	for client := range h.clients[event.MentorID] {
		delivered[client] = struct{}{}
		h.send(client, encoded)
	}
	for client := range h.admins {
		if _, done := delivered[client]; done {
			continue
		}
		h.send(client, encoded)
	}
}

// send drops a client whose buffer is full.
func (h *Hub) send(client *Client, payload []byte) {
	select {
	case client.send <- payload:
	default:
		h.remove(client)
	}
}

func (h *Hub) remove(client *Client) {
	set, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, exists := set[client]; exists {
		delete(set, client)
		delete(h.admins, client)
		close(client.done)
	}
	if len(set) == 0 {
		delete(h.clients, client.userID)
	}
}

// ReadPump keeps the connection open until the peer goes away. Dashboards do
// not send anything the server acts on.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var incoming struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(payload, &incoming); err != nil || incoming.Type != "ping" {
			if !writeError(c, "unsupported message type") {
				return
			}
			continue
		}
		if !writeEvent(c, &Event{Type: "pong", Timestamp: time.Now().UTC().Format(time.RFC3339)}) {
			return
		}
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func writeError(client *Client, message string) bool {
	return writeEvent(client, &Event{
		Type:      "error",
		Content:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// writeEvent reports false once the client has been dropped; the caller must
// stop reading.
func writeEvent(client *Client, event *Event) bool {
	payload, err := json.Marshal(event)
	if err != nil {
		return true
	}
	select {
	case <-client.done:
		return false
	default:
	}
	select {
	case client.send <- payload:
		return true
	default:
		client.hub.Unregister(client)
		return false
	}
}
