package database

import (
	"context"
	"errors"
	"testing"

	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/sync"
	"github.com/thenoetrevino/tablero/internal/types"
)

func addTaskOp(task *models.Task) sync.Operation {
	return sync.Operation{Kind: models.KindTask, Op: sync.OpAdd, ID: task.ID, Task: task}
}

func txnWith(userID string, ops ...sync.Operation) *sync.Transaction {
	return &sync.Transaction{
		ID:     types.NewID(),
		UserID: userID,
		Ops:    ops,
	}
}

func tableCount(t *testing.T, ctx context.Context, q dbtx, table string) int {
	t.Helper()
	var count int
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return count
}

func TestApplyTransaction_AppliesAllOps(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	project := testProject("u1", "Personal")
	status := testStatus("u1", project.ID, "To Do")
	task := testTask("u1", status.ID)

	txn := txnWith("u1",
		sync.Operation{Kind: models.KindProject, Op: sync.OpAdd, ID: project.ID, Project: project},
		sync.Operation{Kind: models.KindStatus, Op: sync.OpAdd, ID: status.ID, Status: status},
		addTaskOp(task),
	)

	applied, err := ApplyTransaction(ctx, db, txn)
	if err != nil {
		t.Fatalf("ApplyTransaction failed: %v", err)
	}
	if !applied {
		t.Error("Expected applied=true for a fresh transaction")
	}

	if got := tableCount(t, ctx, db, "projects"); got != 1 {
		t.Errorf("projects = %d, want 1", got)
	}
	if got := tableCount(t, ctx, db, "statuses"); got != 1 {
		t.Errorf("statuses = %d, want 1", got)
	}
	if got := tableCount(t, ctx, db, "tasks"); got != 1 {
		t.Errorf("tasks = %d, want 1", got)
	}
	if got := tableCount(t, ctx, db, "committed_txns"); got != 1 {
		t.Errorf("committed_txns = %d, want 1", got)
	}

	t.Logf("✓ Transaction applied: all ops landed and the ledger recorded it")
}

func TestApplyTransaction_ReplayIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	task := testTask("u1", "s1")
	txn := txnWith("u1", addTaskOp(task))

	applied, err := ApplyTransaction(ctx, db, txn)
	if err != nil || !applied {
		t.Fatalf("First apply: applied=%v err=%v", applied, err)
	}

	// A resubmit after a lost verdict carries the same transaction ID. It
	// must succeed without re-applying anything.
	task.Title = "Tampered replay"
	applied, err = ApplyTransaction(ctx, db, txn)
	if err != nil {
		t.Fatalf("Replay failed: %v", err)
	}
	if applied {
		t.Error("Expected applied=false on replay")
	}

	got, err := GetTaskByID(ctx, db, task.ID)
	if err != nil {
		t.Fatalf("GetTaskByID failed: %v", err)
	}
	if got.Title == "Tampered replay" {
		t.Error("Replay re-applied the ops; the ledger should have skipped them")
	}

	t.Logf("✓ Replayed transaction acked without re-applying")
}

func TestApplyTransaction_MidFailureLeavesStoreUnchanged(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	good := testTask("u1", "s1")
	txn := txnWith("u1",
		addTaskOp(good),
		sync.Operation{Kind: models.KindTask, Op: sync.OpAdd, ID: "broken"}, // no payload
	)

	applied, err := ApplyTransaction(ctx, db, txn)
	if err == nil {
		t.Fatal("Expected error from payloadless op")
	}
	if applied {
		t.Error("Expected applied=false on failure")
	}
	if !errors.Is(err, ErrMissingPayload) {
		t.Errorf("Expected ErrMissingPayload, got: %v", err)
	}

	// The first op must have been rolled back with the rest.
	if got := tableCount(t, ctx, db, "tasks"); got != 0 {
		t.Errorf("tasks = %d after failed transaction, want 0", got)
	}
	if got := tableCount(t, ctx, db, "committed_txns"); got != 0 {
		t.Errorf("committed_txns = %d after failed transaction, want 0", got)
	}

	// The ID is not burned: a corrected resubmit goes through.
	txn.Ops = txn.Ops[:1]
	applied, err = ApplyTransaction(ctx, db, txn)
	if err != nil || !applied {
		t.Fatalf("Corrected resubmit: applied=%v err=%v", applied, err)
	}

	t.Logf("✓ Mid-transaction failure left no partial writes behind")
}

func TestApplyTransaction_RejectsWrongOwner(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	task := testTask("u2", "s1") // payload owned by someone else
	txn := txnWith("u1", addTaskOp(task))

	_, err := ApplyTransaction(ctx, db, txn)
	if !errors.Is(err, ErrWrongOwner) {
		t.Errorf("Expected ErrWrongOwner, got: %v", err)
	}
	if got := tableCount(t, ctx, db, "tasks"); got != 0 {
		t.Errorf("tasks = %d, want 0", got)
	}
}

func TestApplyTransaction_DeleteOfAbsentRowSucceeds(t *testing.T) {
	db := setupTestDB(t)

	txn := txnWith("u1", sync.Operation{Kind: models.KindTask, Op: sync.OpDelete, ID: "never-existed"})

	applied, err := ApplyTransaction(context.Background(), db, txn)
	if err != nil {
		t.Fatalf("Delete of absent row should succeed, got: %v", err)
	}
	if !applied {
		t.Error("Expected applied=true")
	}
}

func TestApplyTransaction_DeleteOfForeignRowRejected(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	theirs := testTask("u2", "s1")
	if err := UpsertTask(ctx, db, theirs); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	txn := txnWith("u1", sync.Operation{Kind: models.KindTask, Op: sync.OpDelete, ID: theirs.ID})

	_, err := ApplyTransaction(ctx, db, txn)
	if !errors.Is(err, ErrWrongOwner) {
		t.Errorf("Expected ErrWrongOwner, got: %v", err)
	}

	got, err := GetTaskByID(ctx, db, theirs.ID)
	if err != nil {
		t.Fatalf("GetTaskByID failed: %v", err)
	}
	if got == nil {
		t.Error("Foreign row was deleted despite the rejection")
	}
}

func TestApplyTransaction_UpdateOfAbsentRowRejected(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	ghost := testTask("u1", "s1")
	txn := txnWith("u1", sync.Operation{Kind: models.KindTask, Op: sync.OpUpdate, ID: ghost.ID, Task: ghost})

	applied, err := ApplyTransaction(ctx, db, txn)
	if !errors.Is(err, ErrMissingRecord) {
		t.Errorf("Expected ErrMissingRecord, got: %v", err)
	}
	if applied {
		t.Error("Expected applied=false")
	}

	// The rejected update must not have materialized the record.
	if got := tableCount(t, ctx, db, "tasks"); got != 0 {
		t.Errorf("tasks = %d after rejected update, want 0", got)
	}

	t.Logf("✓ Update of a never-seen record rejected without creating it")
}

func TestApplyTransaction_UpdateOfExistingRowSucceeds(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	task := testTask("u1", "s1")
	if err := UpsertTask(ctx, db, task); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	task.Title = "Renamed"
	txn := txnWith("u1", sync.Operation{Kind: models.KindTask, Op: sync.OpUpdate, ID: task.ID, Task: task})

	applied, err := ApplyTransaction(ctx, db, txn)
	if err != nil || !applied {
		t.Fatalf("Update apply: applied=%v err=%v", applied, err)
	}

	got, err := GetTaskByID(ctx, db, task.ID)
	if err != nil {
		t.Fatalf("GetTaskByID failed: %v", err)
	}
	if got.Title != "Renamed" {
		t.Errorf("Title = %q, want %q", got.Title, "Renamed")
	}
}

func TestApplyTransaction_RejectsForeignProfile(t *testing.T) {
	db := setupTestDB(t)

	txn := txnWith("u1", sync.Operation{
		Kind:    models.KindProfile,
		Op:      sync.OpUpdate,
		ID:      "u2",
		Profile: &models.UserProfile{ID: "u2", Nickname: "intruder"},
	})

	_, err := ApplyTransaction(context.Background(), db, txn)
	if !errors.Is(err, ErrWrongOwner) {
		t.Errorf("Expected ErrWrongOwner, got: %v", err)
	}
}

func TestApplyTransaction_RejectsUnknownKind(t *testing.T) {
	db := setupTestDB(t)

	txn := txnWith("u1", sync.Operation{Kind: models.Kind("widget"), Op: sync.OpAdd, ID: "w1"})

	_, err := ApplyTransaction(context.Background(), db, txn)
	if !errors.Is(err, ErrUnknownKind) {
		t.Errorf("Expected ErrUnknownKind, got: %v", err)
	}
}

func TestApplyTransaction_DeleteRemovesOwnRow(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	task := testTask("u1", "s1")
	if err := UpsertTask(ctx, db, task); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	txn := txnWith("u1", sync.Operation{Kind: models.KindTask, Op: sync.OpDelete, ID: task.ID})

	applied, err := ApplyTransaction(ctx, db, txn)
	if err != nil || !applied {
		t.Fatalf("Delete apply: applied=%v err=%v", applied, err)
	}

	got, err := GetTaskByID(ctx, db, task.ID)
	if err != nil {
		t.Fatalf("GetTaskByID failed: %v", err)
	}
	if got != nil {
		t.Error("Row still present after delete")
	}
}
