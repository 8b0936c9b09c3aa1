package ws

import (
	"encoding/json"
	"sync"
	"time"

	"BotDesk/pkg/zlog"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Hub 按租户分组的订阅者集合；WebSocket 与 SSE 订阅者共用同一套投递逻辑
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(c *Client) {
	if c == nil || c.tenant == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.clients[c.tenant]
	if set == nil {
		set = make(map[*Client]struct{})
		h.clients[c.tenant] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) Unregister(c *Client) {
	if c == nil || c.tenant == "" {
		return
	}
	h.mu.Lock()
	set := h.clients[c.tenant]
	if set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.tenant)
		}
	}
	h.mu.Unlock()
	c.Close()
}

// Count 返回租户当前订阅数
func (h *Hub) Count(tenant string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[tenant])
}

// Send 向租户下所有订阅者投递；发送队列满的订阅者会被踢掉
func (h *Hub) Send(tenant string, payload []byte) bool {
	if tenant == "" || len(payload) == 0 {
		return false
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients[tenant]))
	for c := range h.clients[tenant] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()
	if len(targets) == 0 {
		return false
	}

	ok := false
	for _, c := range targets {
		if c.offer(payload) {
			ok = true
			continue
		}
		zlog.Warn("live client queue full, dropping", zap.String("tenant", tenant))
		h.Unregister(c)
	}
	return ok
}

func (h *Hub) SendJSON(tenant string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.Send(tenant, b)
	return nil
}

type Client struct {
	tenant string
	conn   *websocket.Conn
	send   chan []byte

	mu     sync.Mutex
	closed bool
}

// NewClient conn 为 nil 时表示 SSE 订阅者，由调用方自行消费 Messages()
func NewClient(tenant string, conn *websocket.Conn) *Client {
	return &Client{
		tenant: tenant,
		conn:   conn,
		send:   make(chan []byte, 64),
	}
}

func (c *Client) Messages() <-chan []byte {
	return c.send
}

func (c *Client) offer(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

func (c *Client) WritePump() {
	if c.conn == nil {
		return
	}
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			zlog.Warn("live ws write failed", zap.String("tenant", c.tenant), zap.Error(err))
			return
		}
	}
}

// ReadPump 丢弃客户端消息，只用于感知断开
func (c *Client) ReadPump(onClose func()) {
	defer onClose()
	if c.conn == nil {
		return
	}
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
