// Package cli wires one command invocation to the store, the user's
// working copy, and the daemon. Commands build a gesture on the working
// copy, seal it into a transaction, and hand it to Commit, which applies
// optimistically and rolls back if the store refuses.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/thenoetrevino/tablero/internal/board"
	"github.com/thenoetrevino/tablero/internal/config"
	"github.com/thenoetrevino/tablero/internal/database"
	"github.com/thenoetrevino/tablero/internal/remote"
	syncpkg "github.com/thenoetrevino/tablero/internal/sync"
	"github.com/thenoetrevino/tablero/internal/user"
)

// CLI represents one command invocation's session: the open store, the
// loaded working copy, and an optional commit path through the daemon.
type CLI struct {
	DB     *sql.DB
	Board  *board.Board
	Config *config.Config
	UserID string

	engine *syncpkg.Engine
	remote *remote.Client // nil when the daemon socket is not reachable
}

// NewCLI opens the store, provisions the user on first run, and loads the
// working copy. If the daemon socket answers, commits go through it;
// otherwise commands fall back to writing the store directly.
func NewCLI(ctx context.Context) (*CLI, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	dbPath, err := cfg.ResolveDatabasePath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}
	db, err := database.InitDBAt(ctx, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	userID := user.CurrentUserID()
	if _, err := database.EnsureUser(ctx, db, userID, userID); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to provision user: %w", err)
	}

	b, err := database.LoadBoard(ctx, db, userID)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to load board: %w", err)
	}

	c := &CLI{
		DB:     db,
		Board:  b,
		Config: cfg,
		UserID: userID,
		engine: syncpkg.NewEngine(b),
	}

	// Probe the daemon socket. A dead socket means direct store writes;
	// commands work identically either way.
	if socketPath, err := cfg.ResolveSocketPath(); err == nil {
		if conn, dialErr := net.DialTimeout("unix", socketPath, 250*time.Millisecond); dialErr == nil {
			_ = conn.Close()
			c.remote = remote.NewClient(socketPath)
		} else {
			slog.Debug("daemon not reachable, using direct store writes", "socket", socketPath)
		}
	}

	return c, nil
}

// Builder starts a new gesture on the working copy.
func (c *CLI) Builder() *syncpkg.Builder {
	return syncpkg.NewBuilder(c.Board)
}

// Commit applies the transaction to the working copy, then submits it to
// the store. The local apply is optimistic: if the store rejects the
// transaction or the direct write fails, the backup restores the working
// copy exactly. An empty transaction is a no-op.
func (c *CLI) Commit(ctx context.Context, txn *syncpkg.Transaction) error {
	if txn.Empty() {
		return nil
	}
	if err := c.engine.Apply(txn); err != nil {
		return fmt.Errorf("failed to apply transaction: %w", err)
	}

	if c.remote != nil {
		err := c.remote.Commit(ctx, txn)
		if err == nil {
			return nil
		}
		if !remote.IsUnavailable(err) {
			c.engine.Rollback(txn.Backup)
			return err
		}
		// The daemon vanished between the probe and the commit. The
		// idempotency ledger makes the direct write safe even if the
		// daemon half-processed the submission.
		slog.Debug("daemon unreachable during commit, writing store directly", "txn", txn.ID)
	}

	if _, err := database.ApplyTransaction(ctx, c.DB, txn); err != nil {
		c.engine.Rollback(txn.Backup)
		return err
	}
	return nil
}

// Close releases the store handle.
func (c *CLI) Close() error {
	return c.DB.Close()
}
