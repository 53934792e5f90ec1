package task

import (
	"strings"
	"testing"

	"github.com/thenoetrevino/tablero/internal/testutil"
)

// createQuiet runs task create --quiet and returns the new task's ID.
func createQuiet(t *testing.T, args ...string) string {
	t.Helper()

	cmd := CreateCmd()
	testutil.SetupCobraCommand(cmd, append(args, "--quiet"))
	out, err := testutil.ExecuteCommand(t, cmd)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return strings.TrimSpace(out)
}

func TestUpdateTask_Rename(t *testing.T) {
	testutil.IsolateCLIEnv(t, "itest-user")
	id := createQuiet(t, "--title=old name")

	cmd := UpdateCmd()
	testutil.SetupCobraCommand(cmd, []string{id, "--title=new name"})
	output, err := testutil.ExecuteCommand(t, cmd)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if !strings.Contains(output, "updated successfully") {
		t.Errorf("Expected confirmation, got:\n%s", output)
	}
	if !strings.Contains(output, "Title: new name") {
		t.Errorf("Expected new title in output, got:\n%s", output)
	}

	t.Logf("✓ Task renamed via update")
}

func TestUpdateTask_SetAndClearDueDate(t *testing.T) {
	testutil.IsolateCLIEnv(t, "itest-user")
	id := createQuiet(t, "--title=dated task")

	set := UpdateCmd()
	testutil.SetupCobraCommand(set, []string{id, "--due=2026-09-01"})
	output, err := testutil.ExecuteCommand(t, set)
	if err != nil {
		t.Fatalf("Setting due date failed: %v", err)
	}
	if !strings.Contains(output, "Due: 2026-09-01") {
		t.Errorf("Expected due date in output, got:\n%s", output)
	}

	clear := UpdateCmd()
	testutil.SetupCobraCommand(clear, []string{id, "--clear-due"})
	output, err = testutil.ExecuteCommand(t, clear)
	if err != nil {
		t.Fatalf("Clearing due date failed: %v", err)
	}
	if strings.Contains(output, "Due:") {
		t.Errorf("Expected due date gone after --clear-due, got:\n%s", output)
	}

	t.Logf("✓ Due date set and cleared")
}

func TestUpdateTask_AllowsEmptyDescription(t *testing.T) {
	testutil.IsolateCLIEnv(t, "itest-user")
	id := createQuiet(t, "--title=with notes", "--description=scratch notes")

	cmd := UpdateCmd()
	testutil.SetupCobraCommand(cmd, []string{id, "--description=", "--quiet"})
	if _, err := testutil.ExecuteCommand(t, cmd); err != nil {
		t.Fatalf("Clearing description failed: %v", err)
	}

	t.Logf("✓ Explicit empty --description is a valid update")
}

func TestMoveTask_ToColumnHead(t *testing.T) {
	testutil.IsolateCLIEnv(t, "itest-user")
	id := createQuiet(t, "--title=mover")

	cmd := MoveCmd()
	testutil.SetupCobraCommand(cmd, []string{id, "--column=In Progress"})
	output, err := testutil.ExecuteCommand(t, cmd)
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}

	if !strings.Contains(output, "moved to 'In Progress'") {
		t.Errorf("Expected move confirmation, got:\n%s", output)
	}

	list := ListCmd()
	testutil.SetupCobraCommand(list, []string{"--column=In Progress", "--quiet"})
	listOut, err := testutil.ExecuteCommand(t, list)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if !strings.Contains(listOut, id) {
		t.Errorf("Expected task in target column, got:\n%s", listOut)
	}

	t.Logf("✓ Task moved across columns")
}

func TestMoveTask_AfterNeighbor(t *testing.T) {
	testutil.IsolateCLIEnv(t, "itest-user")
	anchor := createQuiet(t, "--title=anchor")
	mover := createQuiet(t, "--title=mover")

	// Both at head of To Do; mover is currently first.
	cmd := MoveCmd()
	testutil.SetupCobraCommand(cmd, []string{mover, "--after=" + anchor, "--quiet"})
	if _, err := testutil.ExecuteCommand(t, cmd); err != nil {
		t.Fatalf("Move failed: %v", err)
	}

	list := ListCmd()
	testutil.SetupCobraCommand(list, []string{"--column=To Do", "--quiet"})
	out, err := testutil.ExecuteCommand(t, list)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	ids := strings.Fields(strings.TrimSpace(out))
	if len(ids) != 2 || ids[0] != anchor || ids[1] != mover {
		t.Errorf("Expected order [%s %s], got %v", anchor, mover, ids)
	}

	t.Logf("✓ Task repositioned after its neighbor")
}

func TestMoveTask_ToIndex(t *testing.T) {
	testutil.IsolateCLIEnv(t, "itest-user")
	first := createQuiet(t, "--title=one")
	second := createQuiet(t, "--title=two")
	third := createQuiet(t, "--title=three")

	// Column order is [third second first]. Index placement anchors on the
	// id sitting at position k-1 before the move, so --index=2 drops third
	// behind second.
	cmd := MoveCmd()
	testutil.SetupCobraCommand(cmd, []string{third, "--index=2", "--quiet"})
	if _, err := testutil.ExecuteCommand(t, cmd); err != nil {
		t.Fatalf("Move failed: %v", err)
	}

	list := ListCmd()
	testutil.SetupCobraCommand(list, []string{"--column=To Do", "--quiet"})
	out, err := testutil.ExecuteCommand(t, list)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	ids := strings.Fields(strings.TrimSpace(out))
	want := []string{second, third, first}
	for i := range want {
		if i >= len(ids) || ids[i] != want[i] {
			t.Fatalf("Expected order %v, got %v", want, ids)
		}
	}

	t.Logf("✓ Task placed at index 2")
}

func TestDoneAndReopen_RestoresColumn(t *testing.T) {
	testutil.IsolateCLIEnv(t, "itest-user")
	id := createQuiet(t, "--title=cycled", "--column=In Progress")

	done := DoneCmd()
	testutil.SetupCobraCommand(done, []string{id})
	output, err := testutil.ExecuteCommand(t, done)
	if err != nil {
		t.Fatalf("Done failed: %v", err)
	}
	if !strings.Contains(output, "✓ Task 'cycled' completed") {
		t.Errorf("Expected completion confirmation, got:\n%s", output)
	}

	completedList := ListCmd()
	testutil.SetupCobraCommand(completedList, []string{"--completed", "--quiet"})
	out, err := testutil.ExecuteCommand(t, completedList)
	if err != nil {
		t.Fatalf("List --completed failed: %v", err)
	}
	if !strings.Contains(out, id) {
		t.Errorf("Expected task in completed view, got:\n%s", out)
	}

	reopen := ReopenCmd()
	testutil.SetupCobraCommand(reopen, []string{id})
	output, err = testutil.ExecuteCommand(t, reopen)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	if !strings.Contains(output, "reopened in 'In Progress'") {
		t.Errorf("Expected reopen into the original column, got:\n%s", output)
	}

	t.Logf("✓ Done then reopen round-trips back to 'In Progress'")
}

func TestShowTask_JSONCarriesFullRecord(t *testing.T) {
	testutil.IsolateCLIEnv(t, "itest-user")
	id := createQuiet(t, "--title=detailed", "--description=## Notes", "--due=2026-09-01")

	show := ShowCmd()
	testutil.SetupCobraCommand(show, []string{id[:8], "--json"})
	output, err := testutil.ExecuteCommand(t, show)
	if err != nil {
		t.Fatalf("Show failed: %v", err)
	}

	result := testutil.ParseJSON(t, output)
	if result["success"] != true {
		t.Errorf("Expected success=true, got %v", result["success"])
	}
	record := result["task"].(map[string]interface{})
	if record["id"] != id {
		t.Errorf("Expected task %s resolved by prefix, got %v", id, record["id"])
	}
	if record["description"] != "## Notes" {
		t.Errorf("Expected raw description in JSON, got %v", record["description"])
	}
	if !strings.HasPrefix(record["dueDate"].(string), "2026-09-01") {
		t.Errorf("Expected due date preserved, got %v", record["dueDate"])
	}

	t.Logf("✓ Show resolves a prefix and returns the full record")
}

func TestDeleteTask_Forced(t *testing.T) {
	testutil.IsolateCLIEnv(t, "itest-user")
	id := createQuiet(t, "--title=doomed")

	del := DeleteCmd()
	testutil.SetupCobraCommand(del, []string{id, "--force"})
	output, err := testutil.ExecuteCommand(t, del)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !strings.Contains(output, "deleted") {
		t.Errorf("Expected deletion confirmation, got:\n%s", output)
	}

	list := ListCmd()
	testutil.SetupCobraCommand(list, []string{"--quiet"})
	out, err := testutil.ExecuteCommand(t, list)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if strings.Contains(out, id) {
		t.Errorf("Deleted task still listed:\n%s", out)
	}

	t.Logf("✓ Forced delete removed the task")
}
