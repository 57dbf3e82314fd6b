package live

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/polystage/polystage/internal/typeid"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 64 * 1024
	sendBuffer = 256
)

// Client is one websocket connection driving one editor session.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	log       *slog.Logger
	SessionID string
	ClientID  string
}

func NewClient(hub *Hub, conn *websocket.Conn, sessionID, clientID string) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		log:       slog.With("session", sessionID, "client", clientID),
		SessionID: sessionID,
		ClientID:  clientID,
	}
}

// ReadPump decodes inbound events and hands them to the hub until the
// connection closes.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()
	c.conn.SetReadLimit(maxMsgSize)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				if !errors.Is(err, context.Canceled) {
					c.log.Debug("websocket read", "error", err)
				}
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.log.Warn("undecodable event", "error", err)
			continue
		}
		// The connection, not the payload, decides who is speaking.
		msg.SessionID, msg.ClientID = c.SessionID, c.ClientID
		c.hub.handleMessage(c, &msg)
	}
}

// WritePump flushes queued frames and keeps the connection alive with
// pings. It returns once the session closes the send queue.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer c.conn.Close(websocket.StatusNormalClosure, "")

	write := func(fn func(context.Context) error) bool {
		wctx, cancel := context.WithTimeout(ctx, writeWait)
		defer cancel()
		if err := fn(wctx); err != nil {
			c.log.Debug("websocket write", "error", err)
			return false
		}
		return true
	}

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if !write(func(ctx context.Context) error { return c.conn.Write(ctx, websocket.MessageText, data) }) {
				return
			}
		case <-ticker.C:
			if !write(c.conn.Ping) {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// Send queues msg for the write pump. A client that falls sendBuffer
// messages behind loses frames; the next frame supersedes them anyway.
func (c *Client) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.log.Error("marshal message", "type", msg.Type, "error", err)
		return
	}
	select {
	case c.send <- data:
	default:
		c.log.Warn("send queue full, dropping message", "type", msg.Type)
	}
}

// ServeWS upgrades the request and runs a fresh editor session over the
// connection until either side closes it.
func (h *Hub) ServeWS(originPatterns []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			slog.Error("websocket accept", "error", err)
			return
		}

		client := NewClient(h, conn, typeid.NewSessionID(), uuid.NewString())
		if !h.Register(client) {
			conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		}

		ctx := r.Context()
		go client.WritePump(ctx)
		client.ReadPump(ctx)
	}
}
