// Package remote submits transactions to the authoritative store over the
// daemon's unix socket. Each commit uses a short-lived connection: dial,
// send, await verdict, close. The caller applies optimistically before
// calling Commit and rolls back when it returns an error.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/thenoetrevino/tablero/internal/events"
	"github.com/thenoetrevino/tablero/internal/sync"
)

// FailureKind classifies why a commit did not land.
type FailureKind int

const (
	// FailureRejected means the store received the transaction and said
	// no. Retrying the same transaction will not help.
	FailureRejected FailureKind = iota
	// FailureUnavailable means the store never rendered a verdict:
	// dial, write, or read failed. The same transaction may be
	// resubmitted later.
	FailureUnavailable
)

// CommitError is the error returned by Commit. Both kinds require the
// caller to roll back the optimistic apply; only Unavailable is worth
// retrying with the same transaction.
type CommitError struct {
	Kind   FailureKind
	TxnID  string
	Reason string // store's reason, for rejections
	Err    error  // underlying network error, for unavailability
}

func (e *CommitError) Error() string {
	switch e.Kind {
	case FailureRejected:
		return fmt.Sprintf("commit %s rejected: %s", e.TxnID, e.Reason)
	default:
		return fmt.Sprintf("commit %s failed: store unreachable: %v", e.TxnID, e.Err)
	}
}

func (e *CommitError) Unwrap() error { return e.Err }

// IsRejected reports whether the store explicitly refused the transaction.
func IsRejected(err error) bool {
	var ce *CommitError
	return errors.As(err, &ce) && ce.Kind == FailureRejected
}

// IsUnavailable reports whether the store could not be reached.
func IsUnavailable(err error) bool {
	var ce *CommitError
	return errors.As(err, &ce) && ce.Kind == FailureUnavailable
}

// Client commits transactions to the daemon.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient returns a commit client for the given daemon socket.
func NewClient(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// Commit submits one transaction and blocks until the store renders a
// verdict or the connection fails. A nil return means the store applied
// (or had already applied) every operation.
func (c *Client) Commit(ctx context.Context, txn *sync.Transaction) error {
	if txn.Empty() {
		return nil
	}

	dialer := net.Dialer{Timeout: c.timeout}
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return &CommitError{Kind: FailureUnavailable, TxnID: txn.ID, Err: err}
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			slog.Debug("failed to close commit connection", "error", closeErr)
		}
	}()

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return &CommitError{Kind: FailureUnavailable, TxnID: txn.ID, Err: err}
	}

	msg := events.Message{
		Version: events.ProtocolVersion,
		Type:    "commit",
		Commit:  txn,
	}
	if err := json.NewEncoder(conn).Encode(msg); err != nil {
		return &CommitError{Kind: FailureUnavailable, TxnID: txn.ID, Err: err}
	}

	// The daemon may interleave pings or change events on the connection
	// before the verdict lands. Skip everything that is not our verdict;
	// the connection deadline bounds the wait.
	decoder := json.NewDecoder(conn)
	for {
		var reply events.Message
		if err := decoder.Decode(&reply); err != nil {
			// The verdict never arrived. The store may or may not have
			// applied the transaction; its idempotency ledger makes a
			// blind resubmit of the same transaction safe.
			return &CommitError{Kind: FailureUnavailable, TxnID: txn.ID, Err: err}
		}

		if reply.Result != nil && reply.Result.TxnID != txn.ID {
			continue
		}

		switch reply.Type {
		case "ack":
			return nil
		case "reject":
			reason := "no reason given"
			if reply.Result != nil && reply.Result.Reason != "" {
				reason = reply.Result.Reason
			}
			return &CommitError{Kind: FailureRejected, TxnID: txn.ID, Reason: reason}
		}
	}
}
