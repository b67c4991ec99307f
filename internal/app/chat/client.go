/*
Package chat implements the WebSocket side of the server.

A Client is one live connection. Its read loop decodes event envelopes and
dispatches them to the presence registry (login, disconnect) or the relay
(messages, typing, call signaling). Its write loop drains a bounded send queue
and keeps the connection alive with pings. The Hub tracks every connected client
and implements presence broadcasts.
*/
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"callchat/internal/app/presence"
	"callchat/internal/pkg/errs"
	"callchat/internal/pkg/logx"
	"callchat/internal/pkg/randx"
)

const (
	// timeout for writing one frame to the connection.
	writeWait = 10 * time.Second

	// maximum time to wait for the next pong from the client.
	pongWait = 60 * time.Second

	// ping interval; must be shorter than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maximum size of an inbound frame. Call signals carry full SDP blobs.
	maxMessageSize = 64 * 1024

	// number of outbound frames buffered per client.
	sendQueueSize = 256
)

var (
	// ErrClientClosed is returned by Emit after the client has been closed.
	ErrClientClosed = errors.New("chat: client closed")

	// ErrSendQueueFull is returned by Emit when the client is not draining its queue.
	ErrSendQueueFull = errors.New("chat: client send queue full")
)

// Presence is the registry surface a client drives.
type Presence interface {
	Announce(ctx context.Context, userID string, h presence.Handle) error
	Remove(ctx context.Context, h presence.Handle)
}

// Relayer forwards events to other users.
type Relayer interface {
	RelayMessage(senderID, receiverID string, payload json.RawMessage) bool
	RelayTyping(fromID, toID string) bool
	RelayStopTyping(fromID, toID string) bool
	RelayCallOffer(callerID, calleeID string, signal json.RawMessage, isVideo bool) bool
	RelayCallAnswer(calleeID, callerID string, signal json.RawMessage) bool
}

// Client is one WebSocket connection and implements presence.Handle.
type Client struct {
	id   string
	conn *websocket.Conn

	hub      *Hub
	presence Presence
	relay    Relayer

	// ctx is the server context presence persistence derives from; it is not
	// tied to the upgrade request.
	ctx context.Context

	// authUserID is the user proven by the upgrade token; empty for anonymous sockets.
	authUserID string

	// userID is the announced identity. Only the read loop touches it.
	userID string

	mu     sync.Mutex
	closed bool
	send   chan []byte

	logger zerolog.Logger
}

// NewClient wraps conn. authUserID may be empty when the socket was opened without a token.
func NewClient(ctx context.Context, conn *websocket.Conn, hub *Hub, p Presence, r Relayer, authUserID string) *Client {
	id := randx.ConnID()

	return &Client{
		id:         id,
		conn:       conn,
		hub:        hub,
		presence:   p,
		relay:      r,
		ctx:        ctx,
		authUserID: authUserID,
		send:       make(chan []byte, sendQueueSize),
		logger: logx.Logger().With().
			Str("component", "client").
			Str("conn_id", id).
			Str("auth_user_id", authUserID).
			Logger(),
	}
}

// ID returns the connection identifier.
func (c *Client) ID() string {
	return c.id
}

// Emit encodes event and queues it without blocking.
func (c *Client) Emit(event string, data any) error {
	message, err := encodeEnvelope(event, data)
	if err != nil {
		return err
	}

	return c.enqueue(message)
}

func (c *Client) enqueue(message []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}

	select {
	case c.send <- message:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// Close stops the write loop, which sends a close frame and tears the connection down.
// It is safe to call more than once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	close(c.send)
}

// ReadPump reads frames until the connection fails, then runs disconnect cleanup.
// It must run on exactly one goroutine per client.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Connection closed unexpectedly")
			}
			break
		}

		if messageType != websocket.TextMessage {
			c.logger.Warn().Int("message_type", messageType).Msg("Ignoring non-text frame")
			continue
		}

		c.handleMessage(message)
	}
}

// cleanupOnDisconnect releases the presence binding and all connection resources.
func (c *Client) cleanupOnDisconnect() {
	c.presence.Remove(c.ctx, c)
	c.hub.Unregister(c)
	c.Close()

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Connection close error")
	}

	c.logger.Info().Str("user_id", c.userID).Msg("Client disconnected.")
}

// WritePump drains the send queue to the connection and sends periodic pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close error in WritePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !c.writeQueuedMessage(message, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePing() {
				return
			}
		}
	}
}

// writeQueuedMessage writes one queued frame, or a close frame once the queue is closed.
// It returns false when the write loop should stop.
func (c *Client) writeQueuedMessage(message []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		c.logger.Warn().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

func (c *Client) writePing() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Debug().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}

// sendError tells the client its last event was rejected.
func (c *Client) sendError(customErr *errs.CustomError) {
	payload := ErrorPayload{Code: customErr.Code, Message: customErr.Message}

	if err := c.Emit(EventError, payload); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to queue error event")
	}
}
