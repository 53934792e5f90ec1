package database

import (
	"context"
	"database/sql"

	"github.com/thenoetrevino/tablero/internal/models"
)

// ============================================================================
// Task Operations
// ============================================================================

// UpsertTask writes the full after-image of a task, inserting or replacing.
func UpsertTask(ctx context.Context, q dbtx, t *models.Task) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO tasks (id, title, description, due_date, status, prev_status,
		                    prev_id, next_id, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title = excluded.title,
		   description = excluded.description,
		   due_date = excluded.due_date,
		   status = excluded.status,
		   prev_status = excluded.prev_status,
		   prev_id = excluded.prev_id,
		   next_id = excluded.next_id,
		   user_id = excluded.user_id,
		   created_at = excluded.created_at,
		   updated_at = excluded.updated_at`,
		t.ID, t.Title, strToNullStr(t.Description), ptrToNullTime(t.DueDate),
		t.Status, strToNullStr(t.PrevStatus),
		ptrToNullStr(t.PrevID), ptrToNullStr(t.NextID),
		t.UserID, t.CreatedAt, t.UpdatedAt,
	)
	return err
}

// DeleteTask removes a task row.
func DeleteTask(ctx context.Context, q dbtx, id string) error {
	_, err := q.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	return err
}

// GetTasksByUser retrieves every task owned by a user.
func GetTasksByUser(ctx context.Context, q dbtx, userID string) ([]*models.Task, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, title, description, due_date, status, prev_status,
		        prev_id, next_id, user_id, created_at, updated_at
		 FROM tasks WHERE user_id = ?`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// GetTaskByID retrieves one task, or nil when absent.
func GetTaskByID(ctx context.Context, q dbtx, id string) (*models.Task, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, title, description, due_date, status, prev_status,
		        prev_id, next_id, user_id, created_at, updated_at
		 FROM tasks WHERE id = ?`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanTask(rows)
}

func scanTask(rows *sql.Rows) (*models.Task, error) {
	task := &models.Task{}
	var description, prevStatus, prevID, nextID sql.NullString
	var dueDate sql.NullTime
	if err := rows.Scan(
		&task.ID, &task.Title, &description, &dueDate, &task.Status, &prevStatus,
		&prevID, &nextID, &task.UserID, &task.CreatedAt, &task.UpdatedAt,
	); err != nil {
		return nil, err
	}
	task.Description = nullStrToString(description)
	task.PrevStatus = nullStrToString(prevStatus)
	task.DueDate = nullTimeToPtr(dueDate)
	task.PrevID = nullStrToPtr(prevID)
	task.NextID = nullStrToPtr(nextID)
	return task, nil
}
