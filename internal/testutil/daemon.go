package testutil

import (
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/thenoetrevino/tablero/internal/daemon"
	"github.com/thenoetrevino/tablero/internal/events"
)

// GetTestSocketPath generates a unique temporary socket path for testing.
// The socket is guaranteed to not exist and will be cleaned up by test cleanup.
func GetTestSocketPath(t *testing.T) string {
	t.Helper()

	// Create a unique temporary directory for this test
	tmpDir := t.TempDir() // Go 1.15+ automatically cleans this up
	socketPath := filepath.Join(tmpDir, "test-tablero.sock")

	// Register cleanup to remove socket if it exists (belt and suspenders)
	t.Cleanup(func() {
		if _, err := os.Stat(socketPath); err == nil {
			_ = os.Remove(socketPath)
		}
	})

	return socketPath
}

// SetupTestDaemon creates a test daemon server on a temporary socket backed
// by a throwaway store. It starts the server in a goroutine and waits for it
// to be ready. Returns the server and socket path. Cleanup is automatic via
// t.Cleanup().
func SetupTestDaemon(t *testing.T) (*daemon.Server, string) {
	t.Helper()

	socketPath := GetTestSocketPath(t)
	db := SetupTestDB(t)

	server, err := daemon.NewServer(socketPath, db)
	if err != nil {
		t.Fatalf("Failed to create test daemon: %v", err)
	}

	// Register cleanup FIRST, before starting server
	t.Cleanup(func() {
		if err := server.Shutdown(); err != nil {
			t.Logf("Warning: daemon shutdown error during cleanup: %v", err)
		}
		// Double-check socket removal
		if _, err := os.Stat(socketPath); err == nil {
			if err := os.Remove(socketPath); err != nil {
				t.Logf("Warning: failed to remove socket during cleanup: %v", err)
			}
		}
	})

	// Start server in background
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	go func() {
		if err := server.Start(ctx); err != nil {
			t.Logf("Server error: %v", err)
		}
	}()

	// Wait for socket to be created (max 2 seconds)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(socketPath); err == nil {
			// Socket exists, give server a moment to be ready
			time.Sleep(10 * time.Millisecond)
			return server, socketPath
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatal("Timeout waiting for daemon socket to be created")
	return nil, ""
}

// SetupTestClient creates a test event client connected to the given socket path.
// Cleanup is automatic via t.Cleanup().
func SetupTestClient(t *testing.T, socketPath string) *events.Client {
	t.Helper()

	client, err := events.NewClient(socketPath)
	if err != nil {
		t.Fatalf("Failed to create test client: %v", err)
	}

	// Register cleanup
	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Logf("Warning: client close error during cleanup: %v", err)
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Failed to connect test client: %v", err)
	}

	return client
}

// ConnectRawClient creates a raw net.Conn to the daemon socket for low-level testing.
// Returns the connection, encoder, and decoder. Cleanup is automatic via t.Cleanup().
func ConnectRawClient(t *testing.T, socketPath string) (net.Conn, *json.Encoder, *json.Decoder) {
	t.Helper()

	conn, err := (&net.Dialer{}).DialContext(context.Background(), "unix", socketPath)
	if err != nil {
		t.Fatalf("Failed to dial daemon socket: %v", err)
	}

	// Register cleanup
	t.Cleanup(func() {
		if err := conn.Close(); err != nil {
			t.Logf("Warning: connection close error during cleanup: %v", err)
		}
	})

	encoder := json.NewEncoder(conn)
	decoder := json.NewDecoder(conn)

	return conn, encoder, decoder
}

// WaitForEvent waits for an event on a channel with timeout.
// Returns the event if received, or fails the test on timeout.
func WaitForEvent(t *testing.T, ch <-chan events.Event, timeout time.Duration) events.Event {
	t.Helper()

	select {
	case event, ok := <-ch:
		if !ok {
			t.Fatal("Event channel closed unexpectedly")
		}
		return event
	case <-time.After(timeout):
		t.Fatalf("Timeout waiting for event after %v", timeout)
		return events.Event{}
	}
}

// WaitForNoEvent verifies that NO event is received within the timeout.
// This is useful for testing that events are NOT sent when they shouldn't be.
func WaitForNoEvent(t *testing.T, ch <-chan events.Event, timeout time.Duration) {
	t.Helper()

	select {
	case event := <-ch:
		t.Fatalf("Unexpected event received: %+v", event)
	case <-time.After(timeout):
		// Success - no event received
	}
}

// DrainEvents drains all pending events from a channel (non-blocking).
// Returns the slice of events that were pending.
func DrainEvents(ch <-chan events.Event) []events.Event {
	var drained []events.Event
	for {
		select {
		case event, ok := <-ch:
			if !ok {
				return drained
			}
			drained = append(drained, event)
		default:
			return drained
		}
	}
}

// SendSubscribeMessage sends a subscribe message from a raw connection.
func SendSubscribeMessage(t *testing.T, encoder *json.Encoder, userID string) {
	t.Helper()

	msg := events.Message{
		Version: events.ProtocolVersion,
		Type:    "subscribe",
		Subscribe: &events.SubscribeMessage{
			UserID: userID,
		},
	}

	if err := encoder.Encode(msg); err != nil {
		t.Fatalf("Failed to send subscribe message: %v", err)
	}
}

// SendEventMessage sends an event message from a raw connection.
func SendEventMessage(t *testing.T, encoder *json.Encoder, event events.Event) {
	t.Helper()

	msg := events.Message{
		Version: events.ProtocolVersion,
		Type:    "event",
		Event:   &event,
	}

	if err := encoder.Encode(msg); err != nil {
		t.Fatalf("Failed to send event message: %v", err)
	}
}

// SendPongMessage sends a pong message from a raw connection.
func SendPongMessage(t *testing.T, encoder *json.Encoder) {
	t.Helper()

	msg := events.Message{
		Version: events.ProtocolVersion,
		Type:    "pong",
	}

	if err := encoder.Encode(msg); err != nil {
		t.Fatalf("Failed to send pong message: %v", err)
	}
}

// ReadMessage reads a message from a raw connection with timeout.
func ReadMessage(t *testing.T, decoder *json.Decoder, conn net.Conn, timeout time.Duration) events.Message {
	t.Helper()

	// Set read deadline
	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		t.Fatalf("Failed to set read deadline: %v", err)
	}

	var msg events.Message
	if err := decoder.Decode(&msg); err != nil {
		t.Fatalf("Failed to read message: %v", err)
	}

	return msg
}

// AssertEventReceived verifies that an event for the given user was received.
func AssertEventReceived(t *testing.T, ch <-chan events.Event, expectedUserID string, timeout time.Duration) {
	t.Helper()

	event := WaitForEvent(t, ch, timeout)
	if event.UserID != expectedUserID {
		t.Errorf("Expected event for user %q, got %q", expectedUserID, event.UserID)
	}
}

// WaitForCondition waits for a condition to become true within the timeout.
// The condition function is called repeatedly until it returns true or timeout.
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration, description string) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Logf("Timeout waiting for condition: %s", description)
	return false
}
