package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/types"
)

// setupTestDB creates an in-memory database with the full schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	// An in-memory database vanishes when its last connection closes, so
	// the pool must never open a second one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}
	if err := runMigrations(ctx, db); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return db
}

func strPtr(s string) *string { return &s }

func testTask(userID, status string) *models.Task {
	now := time.Now().UTC().Truncate(time.Second)
	return &models.Task{
		ID:        types.NewID(),
		Title:     "Write the release notes",
		Status:    status,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func testStatus(userID, projectID, title string) *models.Status {
	return &models.Status{
		ID:        types.NewID(),
		Title:     title,
		Color:     "#7aa2f7",
		ProjectID: projectID,
		UserID:    userID,
	}
}

func testProject(userID, title string) *models.Project {
	return &models.Project{
		ID:     types.NewID(),
		Title:  title,
		UserID: userID,
	}
}

func TestUpsertTask_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	due := time.Now().UTC().Truncate(time.Second).Add(48 * time.Hour)
	task := testTask("u1", "s1")
	task.Description = "Cover the breaking changes"
	task.DueDate = &due
	task.PrevStatus = "s0"
	task.PrevID = strPtr("neighbor-a")
	task.NextID = strPtr("neighbor-b")

	if err := UpsertTask(ctx, db, task); err != nil {
		t.Fatalf("UpsertTask failed: %v", err)
	}

	got, err := GetTaskByID(ctx, db, task.ID)
	if err != nil {
		t.Fatalf("GetTaskByID failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected task, got nil")
	}

	if got.Title != task.Title {
		t.Errorf("Title = %q, want %q", got.Title, task.Title)
	}
	if got.Description != task.Description {
		t.Errorf("Description = %q, want %q", got.Description, task.Description)
	}
	if got.Status != task.Status || got.PrevStatus != task.PrevStatus {
		t.Errorf("Status = %q/%q, want %q/%q", got.Status, got.PrevStatus, task.Status, task.PrevStatus)
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Errorf("DueDate = %v, want %v", got.DueDate, due)
	}
	if got.PrevID == nil || *got.PrevID != "neighbor-a" {
		t.Errorf("PrevID = %v, want neighbor-a", got.PrevID)
	}
	if got.NextID == nil || *got.NextID != "neighbor-b" {
		t.Errorf("NextID = %v, want neighbor-b", got.NextID)
	}
	if !got.CreatedAt.Equal(task.CreatedAt) || !got.UpdatedAt.Equal(task.UpdatedAt) {
		t.Errorf("Timestamps = %v/%v, want %v/%v", got.CreatedAt, got.UpdatedAt, task.CreatedAt, task.UpdatedAt)
	}

	t.Logf("✓ Task round-trips through the store intact")
}

func TestUpsertTask_ReplacesExistingRow(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	task := testTask("u1", "s1")
	if err := UpsertTask(ctx, db, task); err != nil {
		t.Fatalf("First upsert failed: %v", err)
	}

	task.Title = "Renamed"
	task.NextID = strPtr("n1")
	if err := UpsertTask(ctx, db, task); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks").Scan(&count); err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 row after re-upsert, got %d", count)
	}

	got, err := GetTaskByID(ctx, db, task.ID)
	if err != nil {
		t.Fatalf("GetTaskByID failed: %v", err)
	}
	if got.Title != "Renamed" {
		t.Errorf("Title = %q, want Renamed", got.Title)
	}
	if got.NextID == nil || *got.NextID != "n1" {
		t.Errorf("NextID = %v, want n1", got.NextID)
	}

	t.Logf("✓ Upsert replaces the row instead of duplicating it")
}

func TestGetTaskByID_AbsentReturnsNil(t *testing.T) {
	db := setupTestDB(t)

	got, err := GetTaskByID(context.Background(), db, "no-such-task")
	if err != nil {
		t.Fatalf("GetTaskByID failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for absent task, got %+v", got)
	}
}

func TestGetTasksByUser_FiltersByOwner(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	mine := testTask("u1", "s1")
	theirs := testTask("u2", "s1")
	for _, task := range []*models.Task{mine, theirs} {
		if err := UpsertTask(ctx, db, task); err != nil {
			t.Fatalf("UpsertTask failed: %v", err)
		}
	}

	tasks, err := GetTasksByUser(ctx, db, "u1")
	if err != nil {
		t.Fatalf("GetTasksByUser failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("Expected 1 task for u1, got %d", len(tasks))
	}
	if tasks[0].ID != mine.ID {
		t.Errorf("Got task %s, want %s", tasks[0].ID, mine.ID)
	}
}

func TestDeleteTask_AbsentRowIsNoOp(t *testing.T) {
	db := setupTestDB(t)

	if err := DeleteTask(context.Background(), db, "no-such-task"); err != nil {
		t.Errorf("DeleteTask of absent row should succeed, got: %v", err)
	}
}

func TestUpsertStatus_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	status := testStatus("u1", "p1", "In Review")
	status.Description = "Waiting on a second pair of eyes"
	status.PrevID = strPtr("col-a")

	if err := UpsertStatus(ctx, db, status); err != nil {
		t.Fatalf("UpsertStatus failed: %v", err)
	}

	statuses, err := GetStatusesByUser(ctx, db, "u1")
	if err != nil {
		t.Fatalf("GetStatusesByUser failed: %v", err)
	}
	if len(statuses) != 1 {
		t.Fatalf("Expected 1 status, got %d", len(statuses))
	}

	got := statuses[0]
	if got.Title != "In Review" || got.Color != "#7aa2f7" || got.ProjectID != "p1" {
		t.Errorf("Status fields = %q/%q/%q, want In Review/#7aa2f7/p1", got.Title, got.Color, got.ProjectID)
	}
	if got.Description != status.Description {
		t.Errorf("Description = %q, want %q", got.Description, status.Description)
	}
	if got.PrevID == nil || *got.PrevID != "col-a" {
		t.Errorf("PrevID = %v, want col-a", got.PrevID)
	}
	if got.NextID != nil {
		t.Errorf("NextID = %v, want nil", got.NextID)
	}
}

func TestUpsertProject_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	project := testProject("u1", "Household")
	project.Description = "Chores and errands"

	if err := UpsertProject(ctx, db, project); err != nil {
		t.Fatalf("UpsertProject failed: %v", err)
	}

	projects, err := GetProjectsByUser(ctx, db, "u1")
	if err != nil {
		t.Fatalf("GetProjectsByUser failed: %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("Expected 1 project, got %d", len(projects))
	}
	if projects[0].Title != "Household" || projects[0].Description != "Chores and errands" {
		t.Errorf("Project fields = %q/%q", projects[0].Title, projects[0].Description)
	}
}

func TestProfile_RoundTripAndAbsent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	got, err := GetProfile(ctx, db, "u1")
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if got != nil {
		t.Fatalf("Expected nil profile before provisioning, got %+v", got)
	}

	profile := &models.UserProfile{
		ID:            "u1",
		Nickname:      "noe",
		LastProjectID: "p1",
		Language:      "en",
	}
	if err := UpsertProfile(ctx, db, profile); err != nil {
		t.Fatalf("UpsertProfile failed: %v", err)
	}

	got, err = GetProfile(ctx, db, "u1")
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected profile, got nil")
	}
	if got.Nickname != "noe" || got.LastProjectID != "p1" || got.Language != "en" {
		t.Errorf("Profile fields = %q/%q/%q", got.Nickname, got.LastProjectID, got.Language)
	}
	if got.Avatar != "" {
		t.Errorf("Avatar = %q, want empty", got.Avatar)
	}
}
