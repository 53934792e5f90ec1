package database

import (
	"context"
	"database/sql"

	"github.com/thenoetrevino/tablero/internal/models"
)

// ============================================================================
// Project Operations
// ============================================================================

// UpsertProject writes the full after-image of a project.
func UpsertProject(ctx context.Context, q dbtx, p *models.Project) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO projects (id, title, description, prev_id, next_id, user_id)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title = excluded.title,
		   description = excluded.description,
		   prev_id = excluded.prev_id,
		   next_id = excluded.next_id,
		   user_id = excluded.user_id`,
		p.ID, p.Title, strToNullStr(p.Description),
		ptrToNullStr(p.PrevID), ptrToNullStr(p.NextID), p.UserID,
	)
	return err
}

// DeleteProject removes a project row.
func DeleteProject(ctx context.Context, q dbtx, id string) error {
	_, err := q.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	return err
}

// GetProjectsByUser retrieves every project owned by a user.
func GetProjectsByUser(ctx context.Context, q dbtx, userID string) ([]*models.Project, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, title, description, prev_id, next_id, user_id
		 FROM projects WHERE user_id = ?`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

func scanProject(rows *sql.Rows) (*models.Project, error) {
	project := &models.Project{}
	var description, prevID, nextID sql.NullString
	if err := rows.Scan(
		&project.ID, &project.Title, &description, &prevID, &nextID, &project.UserID,
	); err != nil {
		return nil, err
	}
	project.Description = nullStrToString(description)
	project.PrevID = nullStrToPtr(prevID)
	project.NextID = nullStrToPtr(nextID)
	return project, nil
}
