package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/thenoetrevino/tablero/internal/database"
	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/types"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const TestAppKey ContextKey = "testApp"

// SetupTestDB creates a throwaway store with the full schema, opened
// through the same init path production uses (pragmas, migrations).
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "tablero-test.db")
	db, err := database.InitDBAt(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

// ProvisionTestUser provisions a user with the default project and columns,
// returning the profile. Boards seeded this way always pass Validate.
func ProvisionTestUser(t *testing.T, db *sql.DB, userID string) *models.UserProfile {
	t.Helper()

	profile, err := database.EnsureUser(context.Background(), db, userID, userID)
	if err != nil {
		t.Fatalf("Failed to provision test user: %v", err)
	}
	return profile
}

// FirstStatusID returns the ID of the head column of the user's default
// project, which is where new tasks land.
func FirstStatusID(t *testing.T, db *sql.DB, userID string) string {
	t.Helper()

	b, err := database.LoadBoard(context.Background(), db, userID)
	if err != nil {
		t.Fatalf("Failed to load board: %v", err)
	}
	if b.Profile == nil {
		t.Fatal("User has no profile; call ProvisionTestUser first")
	}
	statuses, err := b.StatusesInProject(b.Profile.LastProjectID)
	if err != nil {
		t.Fatalf("Failed to linearize statuses: %v", err)
	}
	if len(statuses) == 0 {
		t.Fatal("Default project has no columns")
	}
	return statuses[0].ID
}

// CreateTestTask inserts a task at the head of the given column and rewires
// the previous head, returning the new task's ID.
func CreateTestTask(t *testing.T, db *sql.DB, userID, statusID, title string) string {
	t.Helper()
	ctx := context.Background()

	b, err := database.LoadBoard(ctx, db, userID)
	if err != nil {
		t.Fatalf("Failed to load board: %v", err)
	}
	ordered, err := b.TasksInStatus(statusID)
	if err != nil {
		t.Fatalf("Failed to linearize column: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	task := &models.Task{
		ID:        types.NewID(),
		Title:     title,
		Status:    statusID,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if len(ordered) > 0 {
		head := ordered[0]
		task.NextID = &head.ID
		head.PrevID = &task.ID
		if err := database.UpsertTask(ctx, db, head); err != nil {
			t.Fatalf("Failed to rewire old head: %v", err)
		}
	}
	if err := database.UpsertTask(ctx, db, task); err != nil {
		t.Fatalf("Failed to create test task: %v", err)
	}
	return task.ID
}
