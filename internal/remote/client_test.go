package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/thenoetrevino/tablero/internal/events"
	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/sync"
)

// setupMockStore runs a unix-socket server that answers every commit with
// the configured verdict and records received transactions.
func setupMockStore(t *testing.T, verdict string, reason string) (string, chan *sync.Transaction) {
	t.Helper()

	socketPath := filepath.Join(t.TempDir(), "store.sock")
	listener, err := (&net.ListenConfig{}).Listen(context.Background(), "unix", socketPath)
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	t.Cleanup(func() { _ = listener.Close() })

	received := make(chan *sync.Transaction, 10)

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer func() { _ = c.Close() }()
				var msg events.Message
				if err := json.NewDecoder(c).Decode(&msg); err != nil {
					return
				}
				if msg.Type == "commit" && msg.Commit != nil {
					received <- msg.Commit
					reply := events.Message{
						Version: events.ProtocolVersion,
						Type:    verdict,
						Result:  &events.CommitResult{TxnID: msg.Commit.ID, Reason: reason},
					}
					_ = json.NewEncoder(c).Encode(reply)
				}
			}(conn)
		}
	}()

	return socketPath, received
}

func testTxn() *sync.Transaction {
	return &sync.Transaction{
		ID:     "txn-1",
		UserID: "u1",
		Ops: []sync.Operation{
			{Kind: models.KindTask, Op: sync.OpDelete, ID: "t1"},
		},
	}
}

func TestCommit_Ack(t *testing.T) {
	socketPath, received := setupMockStore(t, "ack", "")
	client := NewClient(socketPath)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Commit(ctx, testTxn()); err != nil {
		t.Fatalf("Expected ack, got error: %v", err)
	}

	select {
	case txn := <-received:
		if txn.ID != "txn-1" || len(txn.Ops) != 1 {
			t.Errorf("Store received mangled transaction: %+v", txn)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("Store never received the transaction")
	}
}

func TestCommit_Reject(t *testing.T) {
	socketPath, _ := setupMockStore(t, "reject", "record owned by another user")
	client := NewClient(socketPath)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := client.Commit(ctx, testTxn())
	if err == nil {
		t.Fatal("Expected rejection error")
	}
	if !IsRejected(err) {
		t.Fatalf("Expected rejected classification, got: %v", err)
	}
	if IsUnavailable(err) {
		t.Error("Rejection must not classify as unavailable")
	}

	var ce *CommitError
	if !errors.As(err, &ce) {
		t.Fatalf("Expected *CommitError, got %T", err)
	}
	if ce.Reason != "record owned by another user" {
		t.Errorf("Expected store reason, got %q", ce.Reason)
	}
}

func TestCommit_NoDaemon(t *testing.T) {
	client := NewClient(filepath.Join(t.TempDir(), "nonexistent.sock"))

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	err := client.Commit(ctx, testTxn())
	if err == nil {
		t.Fatal("Expected error when daemon is absent")
	}
	if !IsUnavailable(err) {
		t.Fatalf("Expected unavailable classification, got: %v", err)
	}
	if IsRejected(err) {
		t.Error("Network failure must not classify as rejected")
	}
}

func TestCommit_ConnectionDropBeforeVerdict(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "drop.sock")
	listener, err := (&net.ListenConfig{}).Listen(context.Background(), "unix", socketPath)
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	t.Cleanup(func() { _ = listener.Close() })

	// Accept and slam the connection shut without answering.
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			_ = conn.Close()
		}
	}()

	client := NewClient(socketPath)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err = client.Commit(ctx, testTxn())
	if err == nil {
		t.Fatal("Expected error when the verdict never arrives")
	}
	if !IsUnavailable(err) {
		t.Fatalf("A missing verdict must classify as unavailable, got: %v", err)
	}
}

func TestCommit_SkipsInterleavedMessagesBeforeVerdict(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "busy.sock")
	listener, err := (&net.ListenConfig{}).Listen(context.Background(), "unix", socketPath)
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	t.Cleanup(func() { _ = listener.Close() })

	// A busy daemon pushes a change event and a ping down the connection
	// before answering the commit. Neither is the verdict.
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()

		var msg events.Message
		if err := json.NewDecoder(conn).Decode(&msg); err != nil {
			return
		}
		enc := json.NewEncoder(conn)
		_ = enc.Encode(events.Message{
			Version: events.ProtocolVersion,
			Type:    "event",
			Event:   &events.Event{Type: events.EventBoardChanged, UserID: "u1", Timestamp: time.Now()},
		})
		_ = enc.Encode(events.Message{
			Version: events.ProtocolVersion,
			Type:    "ping",
			Event:   &events.Event{Type: events.EventPing},
		})
		_ = enc.Encode(events.Message{
			Version: events.ProtocolVersion,
			Type:    "ack",
			Result:  &events.CommitResult{TxnID: msg.Commit.ID},
		})
	}()

	client := NewClient(socketPath)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Commit(ctx, testTxn()); err != nil {
		t.Fatalf("Expected ack despite interleaved traffic, got: %v", err)
	}

	t.Logf("✓ Commit waits through interleaved events for its verdict")
}

func TestCommit_IgnoresVerdictForAnotherTransaction(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "crossed.sock")
	listener, err := (&net.ListenConfig{}).Listen(context.Background(), "unix", socketPath)
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	t.Cleanup(func() { _ = listener.Close() })

	// A rejection addressed to a different transaction must not be taken
	// as ours; the real ack follows.
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()

		var msg events.Message
		if err := json.NewDecoder(conn).Decode(&msg); err != nil {
			return
		}
		enc := json.NewEncoder(conn)
		_ = enc.Encode(events.Message{
			Version: events.ProtocolVersion,
			Type:    "reject",
			Result:  &events.CommitResult{TxnID: "txn-other", Reason: "not yours"},
		})
		_ = enc.Encode(events.Message{
			Version: events.ProtocolVersion,
			Type:    "ack",
			Result:  &events.CommitResult{TxnID: msg.Commit.ID},
		})
	}()

	client := NewClient(socketPath)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Commit(ctx, testTxn()); err != nil {
		t.Fatalf("Expected our own ack, got: %v", err)
	}

	t.Logf("✓ Verdicts are matched by transaction id")
}

func TestCommit_EmptyTransactionSkipsNetwork(t *testing.T) {
	// No server exists; an empty transaction must still succeed.
	client := NewClient(filepath.Join(t.TempDir(), "nonexistent.sock"))

	txn := &sync.Transaction{ID: "txn-empty", UserID: "u1"}
	if err := client.Commit(context.Background(), txn); err != nil {
		t.Fatalf("Empty transaction should not touch the network: %v", err)
	}
}
