// Package ws は language.changed などのダッシュボードイベントをブラウザへ配信する
// WebSocketハブを提供します。
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
)

// Message はクライアントへ送るイベントです。
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewMessage はpayloadをJSONにしてMessageを作ります。
func NewMessage(typ string, payload any) (Message, error) {
	if payload == nil {
		return Message{Type: typ}, nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: typ, Payload: b}, nil
}

// Hub は接続中のクライアントを管理し、メッセージを全員へ配信します。
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan Message

	mu      sync.RWMutex
	clients map[*Client]struct{}

	upgrader websocket.Upgrader
	done     chan struct{}
}

// NewHub はハブを作成します。Run を呼ぶまで配信は始まりません。
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Message, 16),
		clients:    make(map[*Client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		done: make(chan struct{}),
	}
}

// Run は ctx がキャンセルされるまでハブのループを回します。
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		h.mu.Lock()
		for c := range h.clients {
			delete(h.clients, c)
			close(c.send)
		}
		h.mu.Unlock()
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()
			slog.Info("ws client connected", "client_id", c.id)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// 遅いクライアントは切断してハブを止めない
					slog.Warn("ws client too slow, dropping", "client_id", c.id)
					delete(h.clients, c)
					close(c.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast はメッセージを配信キューへ積みます。ハブ停止後は捨てます。
func (h *Hub) Broadcast(msg Message) {
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

// Publish は typ と payload から Message を作って配信します。
func (h *Hub) Publish(typ string, payload any) {
	msg, err := NewMessage(typ, payload)
	if err != nil {
		slog.Error("failed to encode ws message", "type", typ, "error", err)
		return
	}
	h.Broadcast(msg)
}

// ClientCount は接続中のクライアント数を返します。
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Handle は GET /ws をWebSocketへアップグレードします。
func (h *Hub) Handle(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "error", err)
		return
	}
	client := &Client{
		id:   ulid.Make().String(),
		hub:  h,
		conn: conn,
		send: make(chan Message, 8),
	}

	select {
	case h.register <- client:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
