// Package network is a client for the overlay feed of a running instance.
package network

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"keyoverlay/internal/config"
	"keyoverlay/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	reconnectDelay = 2 * time.Second
)

// WSClient follows /ws on a running server and reconnects when the
// connection drops.
type WSClient struct {
	addr string
	log  zerolog.Logger
	send chan []byte

	// Callbacks, run on the read goroutine
	OnKeys    func(keys []string)
	OnConfig  func(overlay config.OverlayConfig)
	OnConnect func()

	mu          sync.Mutex
	isConnected bool
}

// NewWSClient creates a client for the server at addr ("host:port").
func NewWSClient(addr string, log zerolog.Logger) *WSClient {
	return &WSClient{
		addr: addr,
		log:  log,
		send: make(chan []byte, 16),
	}
}

// URL returns the feed endpoint.
func (c *WSClient) URL() string {
	u := url.URL{Scheme: "ws", Host: c.addr, Path: "/ws"}
	return u.String()
}

// Run connects and processes messages until ctx is done. With reconnect
// false it returns the first connection error or read failure.
func (c *WSClient) Run(ctx context.Context, reconnect bool) error {
	for {
		err := c.connect(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if !reconnect {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(reconnectDelay):
			c.log.Debug().Msg("Attempting reconnection...")
		}
	}
}

func (c *WSClient) connect(ctx context.Context) error {
	c.log.Debug().Str("url", c.URL()).Msg("Connecting")
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.URL(), nil)
	if err != nil {
		c.log.Debug().Err(err).Msg("Connection failed")
		return err
	}
	defer conn.Close()

	c.setConnected(true)
	defer c.setConnected(false)
	c.log.Info().Str("url", c.URL()).Msg("Connected")
	if c.OnConnect != nil {
		c.OnConnect()
	}

	connDone := make(chan struct{})
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writePump(ctx, conn, connDone)
	}()

	err = c.readPump(conn)
	close(connDone)
	<-writerDone
	return err
}

func (c *WSClient) setConnected(v bool) {
	c.mu.Lock()
	c.isConnected = v
	c.mu.Unlock()
}

func (c *WSClient) readPump(conn *websocket.Conn) error {
	conn.SetReadLimit(64 * 1024)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error { conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn().Err(err).Msg("Read error")
			}
			return err
		}
		c.handleMessage(data)
	}
}

func (c *WSClient) writePump(ctx context.Context, conn *websocket.Conn, connDone <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.log.Warn().Err(err).Msg("Write error")
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			// Bound the wait for the server's close reply.
			conn.SetReadDeadline(time.Now().Add(time.Second))
			return

		case <-connDone:
			return
		}
	}
}

func (c *WSClient) handleMessage(data []byte) {
	var env protocol.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.log.Warn().Err(err).Msg("Invalid message")
		return
	}

	switch env.Type {
	case protocol.TypeKeys:
		var msg protocol.KeysMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.log.Warn().Err(err).Msg("Invalid keys message")
			return
		}
		if c.OnKeys != nil {
			c.OnKeys(msg.Keys)
		}

	case protocol.TypeConfig:
		var msg protocol.ConfigMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.log.Warn().Err(err).Msg("Invalid config message")
			return
		}
		if c.OnConfig != nil {
			c.OnConfig(msg.Overlay)
		}

	default:
		c.log.Debug().Str("type", string(env.Type)).Msg("Ignoring message")
	}
}

// SendReset asks the server to clear every held key. It does not block;
// the request is dropped if the send buffer is full.
func (c *WSClient) SendReset() bool {
	data, _ := json.Marshal(protocol.Envelope{Type: protocol.TypeReset})
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// ErrResetTimeout is returned by Reset when no empty key list confirms the
// request before ctx is done.
var ErrResetTimeout = errors.New("network: reset not confirmed")

// Reset connects once, asks the server to clear every held key and waits
// for the empty key list that confirms it. It replaces OnKeys while it
// runs.
func (c *WSClient) Reset(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	prev := c.OnKeys
	defer func() { c.OnKeys = prev }()

	sent, confirmed := false, false
	c.OnKeys = func(keys []string) {
		if !sent {
			// The first message is the snapshot sent on connect.
			sent = c.SendReset()
			return
		}
		if len(keys) == 0 {
			confirmed = true
			cancel()
		}
	}

	err := c.Run(ctx, false)
	switch {
	case confirmed:
		return nil
	case err != nil:
		return err
	}
	return ErrResetTimeout
}

// IsConnected returns true while a connection is open
func (c *WSClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isConnected
}
