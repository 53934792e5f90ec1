// Package launcher wires up the live board viewer: store, daemon
// subscription, and the bubbletea program.
package launcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/thenoetrevino/tablero/internal/config"
	"github.com/thenoetrevino/tablero/internal/database"
	"github.com/thenoetrevino/tablero/internal/events"
	"github.com/thenoetrevino/tablero/internal/logging"
	"github.com/thenoetrevino/tablero/internal/tui"
	"github.com/thenoetrevino/tablero/internal/user"
)

// Launch starts the live board viewer. The daemon is optional: without it
// the viewer still works, refreshing only on demand.
func Launch() error {
	// Initialize logging to file before anything else
	if err := logging.Init(); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	// Create root context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbPath, err := cfg.ResolveDatabasePath()
	if err != nil {
		return fmt.Errorf("failed to resolve database path: %w", err)
	}
	db, err := database.InitDBAt(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("error closing database", "error", err)
		}
	}()

	userID := user.CurrentUserID()
	if _, err := database.EnsureUser(ctx, db, userID, userID); err != nil {
		return fmt.Errorf("failed to provision user: %w", err)
	}

	// Subscribe to daemon broadcasts for live updates (optional - daemon
	// may not be running)
	eventCh, eventClient := subscribeToDaemon(ctx, cfg, userID)
	defer func() {
		if eventClient != nil {
			if err := eventClient.Close(); err != nil {
				slog.Error("error closing event client", "error", err)
			}
		}
	}()

	model := tui.New(db, cfg, userID, eventCh)
	p := tea.NewProgram(model, tea.WithContext(ctx))

	// goroutine to monitor cancellation
	errChan := make(chan error, 1)
	go func() {
		_, err := p.Run()
		errChan <- err
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("error running program: %w", err)
		}
	case <-ctx.Done():
		slog.Info("shutdown signal received, cleaning up")
		// Give the program a moment to unwind terminal state
		time.Sleep(100 * time.Millisecond)
	}

	return nil
}

// subscribeToDaemon connects, subscribes to the user's events, and returns
// the listen channel. Any failure degrades to a nil channel.
func subscribeToDaemon(ctx context.Context, cfg *config.Config, userID string) (<-chan events.Event, *events.Client) {
	socketPath, err := cfg.ResolveSocketPath()
	if err != nil {
		slog.Warn("failed to resolve daemon socket path", "error", err)
		return nil, nil
	}

	client, err := events.NewClient(socketPath)
	if err != nil {
		slog.Warn("failed to create daemon client", "error", err)
		slog.Info("continuing without live updates")
		return nil, nil
	}
	if err := client.Connect(ctx); err != nil {
		slog.Warn("failed to connect to daemon", "error", err)
		slog.Info("continuing without live updates")
		return nil, nil
	}
	if err := client.Subscribe(userID); err != nil {
		slog.Warn("failed to subscribe to events", "error", err)
		_ = client.Close()
		return nil, nil
	}
	eventCh, err := client.Listen(ctx)
	if err != nil {
		slog.Warn("failed to start event listener", "error", err)
		_ = client.Close()
		return nil, nil
	}
	return eventCh, client
}
