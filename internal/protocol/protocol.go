// Package protocol defines the JSON messages exchanged with the overlay
// and control pages.
package protocol

import (
	"keyoverlay/internal/config"
	"keyoverlay/internal/window"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// TypeKeys is sent by the server with the full held-key list
	TypeKeys MessageType = "keys"

	// TypeConfig is sent by the server when the overlay appearance changes
	TypeConfig MessageType = "config"

	// TypeReset is sent by a client to clear every held key
	TypeReset MessageType = "reset"

	// TypePing can be used for application-level heartbeats
	TypePing MessageType = "ping"
)

// Envelope is decoded first from every client message to find its type
type Envelope struct {
	Type MessageType `json:"type"`
}

// KeysMessage carries the ordered held-key labels. Keys is never null.
type KeysMessage struct {
	Type MessageType `json:"type"`
	Keys []string    `json:"keys"`
}

// NewKeysMessage builds a keys message, normalizing nil to an empty list
func NewKeysMessage(keys []string) KeysMessage {
	if keys == nil {
		keys = []string{}
	}
	return KeysMessage{Type: TypeKeys, Keys: keys}
}

// ConfigMessage pushes overlay settings to connected overlays
type ConfigMessage struct {
	Type    MessageType          `json:"type"`
	Overlay config.OverlayConfig `json:"overlay"`
}

// NewConfigMessage builds an overlay settings message
func NewConfigMessage(o config.OverlayConfig) ConfigMessage {
	return ConfigMessage{Type: TypeConfig, Overlay: o}
}

// Result is the generic reply to a mutating HTTP request
type Result struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
	Port    int    `json:"port,omitempty"`
}

// PortRequest is the body of POST /api/config
type PortRequest struct {
	Port *int `json:"port"`
}

// FocusRequest is the body of POST /api/focus
type FocusRequest struct {
	HWND string `json:"hwnd"`
}

// Foreground is the reply to GET /api/foreground. Every field is null when
// no window has focus.
type Foreground struct {
	HWND        *string `json:"hwnd"`
	Title       *string `json:"title"`
	ProcessName *string `json:"process_name"`
	Class       *string `json:"class"`
}

// NewForeground converts a window lookup result
func NewForeground(info window.Info, ok bool) Foreground {
	if !ok {
		return Foreground{}
	}
	return Foreground{
		HWND:        &info.ID,
		Title:       &info.Title,
		ProcessName: &info.Process,
		Class:       &info.Class,
	}
}

// LanguageResponse is the reply to GET /api/launcher-language
type LanguageResponse struct {
	Language string `json:"language"`
}
