package sync

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/thenoetrevino/tablero/internal/models"
)

// ============================================================================
// APPLY
// ============================================================================

func TestApply_IsIdempotentOnImages(t *testing.T) {
	b := seedBoard(t)
	bl := NewBuilder(b)

	if err := bl.MoveTask("t3", "colB", strPtr("b1")); err != nil {
		t.Fatalf("Failed to move task: %v", err)
	}
	txn := bl.Transaction()
	eng := NewEngine(b)

	// Ops carry full after-images, so replaying the same transaction
	// must converge to the same state.
	for i := 0; i < 2; i++ {
		if err := eng.Apply(txn); err != nil {
			t.Fatalf("Apply %d failed: %v", i, err)
		}
	}
	assertIDs(t, taskOrder(t, b, "colA"), "t1", "t2")
	assertIDs(t, taskOrder(t, b, "colB"), "b1", "t3")
	assertHealthy(t, b)
}

func TestApply_MidFailureRestoresBackup(t *testing.T) {
	b := seedBoard(t)

	pre := b.Tasks["t1"].Clone()
	good := b.Tasks["t1"].Clone()
	good.Title = "changed"

	bk := NewBackup()
	bk.Tasks["t1"] = pre.Clone()
	txn := &Transaction{
		ID:     "txn-bad",
		UserID: "u1",
		Ops: []Operation{
			{Kind: models.KindTask, Op: OpUpdate, ID: "t1", Task: good},
			{Kind: models.KindTask, Op: OpAdd, ID: "broken"}, // no payload
		},
		Backup: bk,
	}

	if err := NewEngine(b).Apply(txn); err == nil {
		t.Fatal("Expected apply to fail on the malformed op")
	}
	if b.Tasks["t1"].Title != "t1" {
		t.Errorf("Expected t1 restored, got title %s", b.Tasks["t1"].Title)
	}
}

// ============================================================================
// ROLLBACK
// ============================================================================

// A refused delete must come back with its exact links: after rolling
// back the deletion of t2, the column reads t1 -> t2 -> t3 again and
// every pointer matches the original.
func TestRollback_RestoresExactLinks(t *testing.T) {
	b := seedBoard(t)
	bl := NewBuilder(b)

	if err := bl.DeleteTask("t2"); err != nil {
		t.Fatalf("Failed to delete task: %v", err)
	}
	txn := commit(t, b, bl)
	assertIDs(t, taskOrder(t, b, "colA"), "t1", "t3")

	NewEngine(b).Rollback(txn.Backup)

	assertIDs(t, taskOrder(t, b, "colA"), "t1", "t2", "t3")
	assertHealthy(t, b)
	if got := b.Tasks["t1"].NextID; got == nil || *got != "t2" {
		t.Errorf("Expected t1.next = t2, got %v", got)
	}
	if got := b.Tasks["t3"].PrevID; got == nil || *got != "t2" {
		t.Errorf("Expected t3.prev = t2, got %v", got)
	}
}

func TestRollback_RemovesAddedRecords(t *testing.T) {
	b := seedBoard(t)
	bl := NewBuilder(b)

	task, err := bl.AddTask(AddTaskRequest{Title: "new", Status: "colA"})
	if err != nil {
		t.Fatalf("Failed to add task: %v", err)
	}
	txn := commit(t, b, bl)

	NewEngine(b).Rollback(txn.Backup)

	if _, ok := b.Tasks[task.ID]; ok {
		t.Error("Expected the added task to be removed on rollback")
	}
	assertIDs(t, taskOrder(t, b, "colA"), "t1", "t2", "t3")
	assertHealthy(t, b)
}

func TestRollback_LeavesUntouchedRecordsAlone(t *testing.T) {
	b := seedBoard(t)
	bl := NewBuilder(b)

	if err := bl.DeleteTask("b1"); err != nil {
		t.Fatalf("Failed to delete task: %v", err)
	}
	txn := commit(t, b, bl)

	// An unrelated edit lands after the commit attempt.
	b.Tasks["t1"].Title = "edited elsewhere"

	NewEngine(b).Rollback(txn.Backup)

	if b.Tasks["t1"].Title != "edited elsewhere" {
		t.Error("Rollback clobbered a record outside its backup scope")
	}
	assertIDs(t, taskOrder(t, b, "colB"), "b1")
}

func TestRollback_RestoresProfile(t *testing.T) {
	b := seedBoard(t)
	b.Projects["p2"] = &models.Project{ID: "p2", Title: "Other", UserID: "u1"}

	bl := NewBuilder(b)
	if err := bl.SwitchFocus("p2"); err != nil {
		t.Fatalf("Failed to switch focus: %v", err)
	}
	txn := commit(t, b, bl)
	if b.Profile.LastProjectID != "p2" {
		t.Fatalf("Expected focus p2 after apply, got %s", b.Profile.LastProjectID)
	}

	NewEngine(b).Rollback(txn.Backup)

	if b.Profile.LastProjectID != "p1" {
		t.Errorf("Expected focus restored to p1, got %s", b.Profile.LastProjectID)
	}
}

// ============================================================================
// RANDOMIZED GESTURES
// ============================================================================

// Churn the board with a few hundred random gestures and check the chain
// invariants after every one. Every third gesture is rolled back after
// applying, which must restore the exact prior column orders.
func TestRandomGestures_InvariantsHold(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	b := seedBoard(t)
	eng := NewEngine(b)
	columns := []string{"colA", "colB", models.PartitionCompleted}

	snapshot := func() map[string][]string {
		s := make(map[string][]string, len(columns))
		for _, col := range columns {
			s[col] = taskOrder(t, b, col)
		}
		return s
	}

	randomTask := func() string {
		ids := make([]string, 0, len(b.Tasks))
		for id := range b.Tasks {
			ids = append(ids, id)
		}
		if len(ids) == 0 {
			return ""
		}
		sort.Strings(ids)
		return ids[rng.Intn(len(ids))]
	}

	for i := 0; i < 300; i++ {
		bl := NewBuilder(b)
		var err error
		switch rng.Intn(4) {
		case 0:
			_, err = bl.AddTask(AddTaskRequest{
				Title:  "task",
				Status: columns[rng.Intn(2)],
			})
		case 1, 2:
			id := randomTask()
			if id == "" {
				continue
			}
			target := columns[rng.Intn(len(columns))]
			var afterID *string
			if order := taskOrder(t, b, target); len(order) > 0 && rng.Intn(2) == 0 {
				if pick := order[rng.Intn(len(order))]; pick != id {
					afterID = &pick
				}
			}
			err = bl.MoveTask(id, target, afterID)
		case 3:
			id := randomTask()
			if id == "" {
				continue
			}
			err = bl.DeleteTask(id)
		}
		if err != nil {
			t.Fatalf("Gesture %d failed: %v", i, err)
		}

		before := snapshot()
		txn := bl.Transaction()
		if err := eng.Apply(txn); err != nil {
			t.Fatalf("Apply %d failed: %v", i, err)
		}
		assertHealthy(t, b)

		if i%3 == 0 {
			eng.Rollback(txn.Backup)
			assertHealthy(t, b)
			after := snapshot()
			for _, col := range columns {
				assertIDs(t, after[col], before[col]...)
			}
		}
	}
}
