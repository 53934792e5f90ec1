package database

import (
	"context"
	"database/sql"

	"github.com/thenoetrevino/tablero/internal/models"
)

// ============================================================================
// Status Operations
// ============================================================================

// UpsertStatus writes the full after-image of a status column.
func UpsertStatus(ctx context.Context, q dbtx, s *models.Status) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO statuses (id, title, description, color, project_id,
		                       prev_id, next_id, user_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title = excluded.title,
		   description = excluded.description,
		   color = excluded.color,
		   project_id = excluded.project_id,
		   prev_id = excluded.prev_id,
		   next_id = excluded.next_id,
		   user_id = excluded.user_id`,
		s.ID, s.Title, strToNullStr(s.Description), strToNullStr(s.Color),
		s.ProjectID, ptrToNullStr(s.PrevID), ptrToNullStr(s.NextID), s.UserID,
	)
	return err
}

// DeleteStatus removes a status row.
func DeleteStatus(ctx context.Context, q dbtx, id string) error {
	_, err := q.ExecContext(ctx, "DELETE FROM statuses WHERE id = ?", id)
	return err
}

// GetStatusesByUser retrieves every status owned by a user.
func GetStatusesByUser(ctx context.Context, q dbtx, userID string) ([]*models.Status, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, title, description, color, project_id, prev_id, next_id, user_id
		 FROM statuses WHERE user_id = ?`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var statuses []*models.Status
	for rows.Next() {
		status, err := scanStatus(rows)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, status)
	}
	return statuses, rows.Err()
}

func scanStatus(rows *sql.Rows) (*models.Status, error) {
	status := &models.Status{}
	var description, color, prevID, nextID sql.NullString
	if err := rows.Scan(
		&status.ID, &status.Title, &description, &color, &status.ProjectID,
		&prevID, &nextID, &status.UserID,
	); err != nil {
		return nil, err
	}
	status.Description = nullStrToString(description)
	status.Color = nullStrToString(color)
	status.PrevID = nullStrToPtr(prevID)
	status.NextID = nullStrToPtr(nextID)
	return status, nil
}
