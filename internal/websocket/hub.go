package websocket

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"task-manager/internal/access"
	"task-manager/internal/models"
	"task-manager/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

const (
	broadcastBuffer = 256
	// sendBuffer adalah jumlah event yang boleh antre per klien sebelum
	// klien dianggap lambat dan dilepas.
	sendBuffer = 16
	writeWait  = 10 * time.Second
)

// Conn adalah bagian dari *websocket.Conn yang dipakai Client.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Client merepresentasikan klien WebSocket beserta identitas yang
// terverifikasi saat koneksi dibuka. Hub hanya mengirim ke channel send;
// koneksi hanya disentuh oleh WritePump di goroutine milik handler.
type Client struct {
	conn     Conn
	identity *models.User
	send     chan []byte
}

func NewClient(conn Conn, identity *models.User) *Client {
	return &Client{conn: conn, identity: identity, send: make(chan []byte, sendBuffer)}
}

// WritePump menulis event sampai channel send ditutup oleh Hub atau
// penulisan gagal, lalu menutup koneksi. Handler harus menunggu WritePump
// selesai sebelum return.
func (c *Client) WritePump() {
	defer c.conn.Close()
	for message := range c.send {
		if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

// Event adalah pesan yang dikirim ke klien.
type Event struct {
	Type string      `json:"type"`
	Task models.Task `json:"task"`
}

// Hub mengelola klien WebSocket dan menyebarkan event task hanya ke klien
// yang boleh membaca task tersebut.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	connected  atomic.Int64
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Event, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Register mendaftarkan klien. Bila hub sudah berhenti, channel send
// langsung ditutup sehingga WritePump selesai.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		close(c.send)
	}
}

// Unregister melepas klien; channel send ditutup oleh loop Hub.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Publish tidak pernah memblokir request; event dibuang bila buffer penuh.
func (h *Hub) Publish(eventType string, task models.Task) {
	select {
	case h.broadcast <- Event{Type: eventType, Task: task}:
	default:
		logger.SystemLogger.Warn("Task event dropped, broadcast buffer full",
			zap.String("type", eventType), zap.Int("task_id", task.ID))
	}
}

// Run menjalankan loop Hub sampai ctx selesai, lalu melepas semua klien.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.remove(client)
			}
			return
		case client := <-h.register:
			h.clients[client] = true
			h.connected.Store(int64(len(h.clients)))
		case client := <-h.unregister:
			h.remove(client)
		case event := <-h.broadcast:
			h.deliver(event)
		}
	}
}

func (h *Hub) deliver(event Event) {
	message, err := json.Marshal(event)
	if err != nil {
		logger.ErrorLogger.Error("Error encoding task event", zap.Error(err))
		return
	}
	for client := range h.clients {
		if !access.CanRead(client.identity, &event.Task) {
			continue
		}
		select {
		case client.send <- message:
		default:
			logger.SystemLogger.Warn("Slow websocket client dropped", zap.Int("user_id", client.identity.ID))
			h.remove(client)
		}
	}
}

func (h *Hub) remove(client *Client) {
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		h.connected.Store(int64(len(h.clients)))
		close(client.send)
	}
}

// Connected mengembalikan jumlah klien yang sedang terdaftar.
func (h *Hub) Connected() int {
	return int(h.connected.Load())
}
