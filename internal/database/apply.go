package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/sync"
)

// Rejection reasons. The daemon forwards these verbatim to the client.
var (
	ErrWrongOwner     = errors.New("record owned by another user")
	ErrMissingPayload = errors.New("add or update op carries no record")
	ErrMissingRecord  = errors.New("update targets a record that does not exist")
	ErrUnknownKind    = errors.New("unknown record kind")
)

// ApplyTransaction applies a whole transaction atomically: every operation
// lands or none do. Returns (false, nil) when the transaction ID is already
// in the committed ledger, which makes blind resubmits after a lost verdict
// safe.
func ApplyTransaction(ctx context.Context, db *sql.DB, txn *sync.Transaction) (bool, error) {
	applied := false
	err := withTx(ctx, db, func(tx *sql.Tx) error {
		var existing string
		err := tx.QueryRowContext(ctx,
			"SELECT id FROM committed_txns WHERE id = ?", txn.ID,
		).Scan(&existing)
		if err == nil {
			return nil // replay of an already-committed transaction
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		for i, op := range txn.Ops {
			if err := applyOp(ctx, tx, txn.UserID, op); err != nil {
				return fmt.Errorf("op %d (%s %s %s): %w", i, op.Op, op.Kind, op.ID, err)
			}
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO committed_txns (id, user_id) VALUES (?, ?)",
			txn.ID, txn.UserID,
		); err != nil {
			return err
		}
		applied = true
		return nil
	})
	return applied, err
}

func applyOp(ctx context.Context, tx *sql.Tx, userID string, op sync.Operation) error {
	switch op.Kind {
	case models.KindTask:
		if op.Op == sync.OpDelete {
			return deleteOwned(ctx, tx, "tasks", op.ID, userID)
		}
		if op.Task == nil {
			return ErrMissingPayload
		}
		if op.Task.UserID != userID {
			return ErrWrongOwner
		}
		if op.Op == sync.OpUpdate {
			if err := requireOwned(ctx, tx, "tasks", op.ID, userID); err != nil {
				return err
			}
		}
		return UpsertTask(ctx, tx, op.Task)

	case models.KindStatus:
		if op.Op == sync.OpDelete {
			return deleteOwned(ctx, tx, "statuses", op.ID, userID)
		}
		if op.Status == nil {
			return ErrMissingPayload
		}
		if op.Status.UserID != userID {
			return ErrWrongOwner
		}
		if op.Op == sync.OpUpdate {
			if err := requireOwned(ctx, tx, "statuses", op.ID, userID); err != nil {
				return err
			}
		}
		return UpsertStatus(ctx, tx, op.Status)

	case models.KindProject:
		if op.Op == sync.OpDelete {
			return deleteOwned(ctx, tx, "projects", op.ID, userID)
		}
		if op.Project == nil {
			return ErrMissingPayload
		}
		if op.Project.UserID != userID {
			return ErrWrongOwner
		}
		if op.Op == sync.OpUpdate {
			if err := requireOwned(ctx, tx, "projects", op.ID, userID); err != nil {
				return err
			}
		}
		return UpsertProject(ctx, tx, op.Project)

	case models.KindProfile:
		if op.Profile == nil {
			return ErrMissingPayload
		}
		if op.Profile.ID != userID {
			return ErrWrongOwner
		}
		return UpsertProfile(ctx, tx, op.Profile)

	default:
		return ErrUnknownKind
	}
}

// requireOwned rejects an update whose target row is absent or belongs to
// someone else. An update must never create a record the store has never
// seen.
func requireOwned(ctx context.Context, tx *sql.Tx, table, id, userID string) error {
	var owner string
	err := tx.QueryRowContext(ctx,
		"SELECT user_id FROM "+table+" WHERE id = ?", id,
	).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrMissingRecord
	}
	if err != nil {
		return err
	}
	if owner != userID {
		return ErrWrongOwner
	}
	return nil
}

// deleteOwned removes a row only when it belongs to the submitting user.
// Deleting an absent row is fine: the op's intent already holds.
func deleteOwned(ctx context.Context, tx *sql.Tx, table, id, userID string) error {
	var owner string
	err := tx.QueryRowContext(ctx,
		"SELECT user_id FROM "+table+" WHERE id = ?", id,
	).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}
	if owner != userID {
		return ErrWrongOwner
	}
	_, err = tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	return err
}
