package database

import (
	"context"
	"database/sql"

	"github.com/thenoetrevino/tablero/internal/board"
)

// LoadBoard reads one user's full snapshot into a working copy. The
// snapshot is taken as-is; callers wanting a defensive integrity check run
// Board.Validate on the result.
func LoadBoard(ctx context.Context, db *sql.DB, userID string) (*board.Board, error) {
	tasks, err := GetTasksByUser(ctx, db, userID)
	if err != nil {
		return nil, err
	}
	projects, err := GetProjectsByUser(ctx, db, userID)
	if err != nil {
		return nil, err
	}
	statuses, err := GetStatusesByUser(ctx, db, userID)
	if err != nil {
		return nil, err
	}
	profile, err := GetProfile(ctx, db, userID)
	if err != nil {
		return nil, err
	}

	b := board.New(userID)
	b.Load(tasks, projects, statuses, profile)
	return b, nil
}
