package websocket

import (
	"time"

	"github.com/fortuna/gridiron/internal/store"
)

// Message types exchanged with clients.
const (
	MessageTypeSubscribe    = "subscribe"
	MessageTypeUnsubscribe  = "unsubscribe"
	MessageTypeHeartbeat    = "heartbeat"
	MessageTypeSlateUpdated = "slate_updated"
	MessageTypeError        = "error"
)

// ClientMessage is what a client sends.
type ClientMessage struct {
	Type   string `json:"type"`
	Season int    `json:"season,omitempty"`
	Week   int    `json:"week,omitempty"`
}

// ServerMessage is what the hub sends.
type ServerMessage struct {
	Type      string    `json:"type"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorMessage is the payload of an error message.
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Filter narrows which slates a client hears about. Zero fields match all.
type Filter struct {
	Season int `json:"season"`
	Week   int `json:"week"`
}

// Matches reports whether e passes the filter.
func (f Filter) Matches(e store.SlateEvent) bool {
	if f.Season != 0 && f.Season != e.Season {
		return false
	}
	if f.Week != 0 && f.Week != e.Week {
		return false
	}
	return true
}
