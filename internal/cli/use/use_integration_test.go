package use

import (
	"strings"
	"testing"

	"github.com/thenoetrevino/tablero/internal/cli/project"
	"github.com/thenoetrevino/tablero/internal/testutil"
)

func TestUse_SwitchesFocusByTitle(t *testing.T) {
	testutil.IsolateCLIEnv(t, "itest-user")

	create := project.CreateCmd()
	testutil.SetupCobraCommand(create, []string{"--title=Side Quest", "--quiet"})
	out, err := testutil.ExecuteCommand(t, create)
	if err != nil {
		t.Fatalf("Project create failed: %v", err)
	}
	id := strings.TrimSpace(out)

	use := UseCmd()
	testutil.SetupCobraCommand(use, []string{"Side Quest"})
	output, err := testutil.ExecuteCommand(t, use)
	if err != nil {
		t.Fatalf("Use failed: %v", err)
	}
	if !strings.Contains(output, "✓ Now using project 'Side Quest'") {
		t.Errorf("Expected focus confirmation, got:\n%s", output)
	}

	list := project.ListCmd()
	testutil.SetupCobraCommand(list, []string{"--json"})
	listOut, err := testutil.ExecuteCommand(t, list)
	if err != nil {
		t.Fatalf("Project list failed: %v", err)
	}
	result := testutil.ParseJSON(t, listOut)
	var focusedID string
	for _, entry := range result["projects"].([]interface{}) {
		p := entry.(map[string]interface{})
		if p["focused"] == true {
			focusedID = p["id"].(string)
		}
	}
	if focusedID != id {
		t.Errorf("Expected focus on %s, got %s", id, focusedID)
	}

	t.Logf("✓ Focus switched to 'Side Quest'")
}

func TestUse_SwitchesFocusByIDPrefix(t *testing.T) {
	testutil.IsolateCLIEnv(t, "itest-user")

	create := project.CreateCmd()
	testutil.SetupCobraCommand(create, []string{"--title=Prefixed", "--quiet"})
	out, err := testutil.ExecuteCommand(t, create)
	if err != nil {
		t.Fatalf("Project create failed: %v", err)
	}
	id := strings.TrimSpace(out)

	use := UseCmd()
	testutil.SetupCobraCommand(use, []string{id[:8], "--json"})
	output, err := testutil.ExecuteCommand(t, use)
	if err != nil {
		t.Fatalf("Use failed: %v", err)
	}

	result := testutil.ParseJSON(t, output)
	if result["success"] != true {
		t.Errorf("Expected success=true, got %v", result["success"])
	}
	proj := result["project"].(map[string]interface{})
	if proj["id"] != id {
		t.Errorf("Expected project %s resolved by prefix, got %v", id, proj["id"])
	}

	t.Logf("✓ Focus switched by 8-char ID prefix")
}
