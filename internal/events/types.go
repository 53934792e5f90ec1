package events

import (
	"time"

	"github.com/thenoetrevino/tablero/internal/sync"
)

// ProtocolVersion is bumped whenever the wire format changes incompatibly.
const ProtocolVersion = 1

// EventType indicates what kind of change occurred
type EventType string

const (
	EventBoardChanged EventType = "board_changed"
	EventPing         EventType = "ping"
	EventPong         EventType = "pong"
)

// Event represents a board change notification
type Event struct {
	Type       EventType
	UserID     string    // For filtering - whose board was modified
	TxnID      string    // Transaction that caused the change, if any
	Timestamp  time.Time // When the event occurred
	SequenceID int64     // Monotonically increasing sequence number for ordering
}

// SubscribeMessage is sent by clients to subscribe to board updates
type SubscribeMessage struct {
	UserID string // "" = all users, otherwise a specific user
}

// CommitResult is the store's verdict on a submitted transaction.
type CommitResult struct {
	TxnID  string
	Reason string `json:",omitempty"` // populated on reject
}

// Message wraps events, commits, and control messages for wire protocol
type Message struct {
	Version   int
	Type      string            // "event", "subscribe", "commit", "ack", "reject", "ping", "pong"
	Event     *Event            `json:",omitempty"`
	Subscribe *SubscribeMessage `json:",omitempty"`
	Commit    *sync.Transaction `json:",omitempty"`
	Result    *CommitResult     `json:",omitempty"`
}

// NotificationMsg carries a user-visible connection status notification.
type NotificationMsg struct {
	Level   string // "info", "warning", "error"
	Message string
}

// NotifyFunc receives connection status notifications for display.
type NotifyFunc func(level, message string)
