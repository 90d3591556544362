package main

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dep2p/go-nethealth/pkg/types"
)

// ============================================================================
//                              事件推送
// ============================================================================

const (
	// clientBuffer 单个连接的待发送事件数，满时丢弃新事件
	clientBuffer = 32

	writeTimeout = 5 * time.Second
	pingInterval = 30 * time.Second
)

// eventMessage 推送给 websocket 客户端的事件
type eventMessage struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Target    string    `json:"target,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func newEventMessage(evt types.StatusEvent) eventMessage {
	return eventMessage{
		ID:        evt.ID,
		Status:    evt.Status.String(),
		Target:    evt.Target(),
		Timestamp: evt.Timestamp,
	}
}

// hub 把状态事件广播给所有 websocket 连接
type hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool

	upgrader websocket.Upgrader
}

// client 单个 websocket 连接
//
// send 只由 hub 在持锁并移出 clients 后关闭，done 由 readLoop 关闭。
type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

func newHub() *hub {
	return &hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// publish 作为事件总线回调，不阻塞分发者
func (h *hub) publish(evt types.StatusEvent) {
	data, err := json.Marshal(newEventMessage(evt))
	if err != nil {
		cliLogger.Warn("事件序列化失败", "err", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			cliLogger.Debug("客户端发送缓冲已满，丢弃事件",
				"remote", c.conn.RemoteAddr().String(),
				"status", evt.Status.String())
		}
	}
}

// ServeHTTP 升级连接并持续推送事件，直到客户端断开或 hub 关闭
func (h *hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		cliLogger.Debug("websocket 升级失败", "err", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, clientBuffer),
		done: make(chan struct{}),
	}
	if !h.add(c) {
		_ = conn.Close()
		return
	}
	defer h.remove(c)

	go c.readLoop()
	c.writeLoop()
}

func (h *hub) add(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()

	_ = c.conn.Close()
}

// count 当前连接数
func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// close 断开所有连接并拒绝新连接
func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

// readLoop 丢弃客户端消息；读失败时通知 writeLoop 退出
func (c *client) readLoop() {
	defer close(c.done)
	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			return
		}
	}
}

func (c *client) writeLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
