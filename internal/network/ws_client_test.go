package network

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"keyoverlay/internal/api"
	"keyoverlay/internal/app"
	"keyoverlay/internal/config"
	"keyoverlay/internal/window"
)

func startServer(t *testing.T) (*app.State, string) {
	t.Helper()
	cfg := config.NewManagerAt(filepath.Join(t.TempDir(), "config.toml"))
	state := app.New(cfg, window.NewStatic(window.Info{}, false), zerolog.Nop())
	srv := api.NewServer(state, zerolog.Nop())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		srv.Serve(ctx, ln)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return state, ln.Addr().String()
}

func waitKeys(t *testing.T, ch <-chan []string, want string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case keys := <-ch:
			if strings.Join(keys, "+") == want {
				return
			}
		case <-deadline:
			t.Fatalf("Expected keys %q", want)
		}
	}
}

// TestWSClientFollowsKeys tests the initial snapshot and later updates
func TestWSClientFollowsKeys(t *testing.T) {
	state, addr := startServer(t)
	state.Tracker.Press(1, "CTRL")

	keysCh := make(chan []string, 16)
	connected := make(chan struct{}, 1)
	c := NewWSClient(addr, zerolog.Nop())
	c.OnKeys = func(keys []string) { keysCh <- keys }
	c.OnConnect = func() { connected <- struct{}{} }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, false) }()

	select {
	case <-connected:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected client to connect")
	}
	waitKeys(t, keysCh, "CTRL")

	state.Tracker.Press(2, "C")
	waitKeys(t, keysCh, "CTRL+C")

	if !c.SendReset() {
		t.Fatal("Expected reset to be queued")
	}
	waitKeys(t, keysCh, "")
	if n := state.Tracker.Len(); n != 0 {
		t.Errorf("Expected tracker to be empty, got %d keys", n)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected nil error after cancel, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected Run to return after cancel")
	}
	if c.IsConnected() {
		t.Error("Expected client to be disconnected")
	}
}

// TestWSClientConfig tests that overlay changes reach the client
func TestWSClientConfig(t *testing.T) {
	state, addr := startServer(t)

	cfgCh := make(chan config.OverlayConfig, 4)
	keysCh := make(chan []string, 4)
	c := NewWSClient(addr, zerolog.Nop())
	c.OnConfig = func(o config.OverlayConfig) { cfgCh <- o }
	c.OnKeys = func(keys []string) { keysCh <- keys }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx, false)

	// The snapshot is sent once the hub has registered the client.
	waitKeys(t, keysCh, "")
	if err := state.Config.Update(func(cfg *config.Config) { cfg.Overlay.Cols = 3 }); err != nil {
		t.Fatal(err)
	}

	select {
	case o := <-cfgCh:
		if o.Cols != 3 {
			t.Errorf("Expected cols 3, got %d", o.Cols)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected a config message")
	}
}

// TestWSClientDialError tests that a single attempt reports the failure
func TestWSClientDialError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	c := NewWSClient(addr, zerolog.Nop())
	if err := c.Run(context.Background(), false); err == nil {
		t.Error("Expected dial error")
	}
	if got := c.URL(); got != "ws://"+addr+"/ws" {
		t.Errorf("Expected ws URL, got %s", got)
	}
}

// TestResetConfirmed tests that Reset waits for the empty key list
func TestResetConfirmed(t *testing.T) {
	state, addr := startServer(t)
	state.Tracker.Press(1, "CTRL")
	state.Tracker.Press(2, "C")

	c := NewWSClient(addr, zerolog.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if n := state.Tracker.Len(); n != 0 {
		t.Errorf("Expected tracker to be empty, got %d keys", n)
	}
}

// TestResetIgnoresKeyPress tests that a non-empty update does not count as
// the reset and that a missing confirmation times out
func TestResetIgnoresKeyPress(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"keys","keys":["A"]}`))
		// Read the reset request, then answer with a key press instead.
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"keys","keys":["A","B"]}`))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	c := NewWSClient(strings.TrimPrefix(srv.URL, "http://"), zerolog.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	if err := c.Reset(ctx); !errors.Is(err, ErrResetTimeout) {
		t.Errorf("Expected ErrResetTimeout, got %v", err)
	}
}

// TestResetUnreachable tests that a dial failure is reported as such
func TestResetUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	c := NewWSClient(addr, zerolog.Nop())
	err = c.Reset(context.Background())
	if err == nil || errors.Is(err, ErrResetTimeout) {
		t.Errorf("Expected a dial error, got %v", err)
	}
}
