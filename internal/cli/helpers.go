package cli

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/thenoetrevino/tablero/internal/models"
)

// ValidateColorHex validates that a color string is in valid hex format #RRGGBB
func ValidateColorHex(color string) error {
	matched, err := regexp.MatchString(`^#[0-9A-Fa-f]{6}$`, color)
	if err != nil {
		return fmt.Errorf("error validating color: %w", err)
	}
	if !matched {
		return fmt.Errorf("color must be in hex format #RRGGBB (e.g., #FF0000), got: %s", color)
	}
	return nil
}

// ParseDueDate accepts a date (2006-01-02) or a full RFC 3339 timestamp.
// Bare dates resolve to midnight UTC.
func ParseDueDate(value string) (*time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		t = t.UTC()
		return &t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		t = t.UTC()
		return &t, nil
	}
	return nil, fmt.Errorf("invalid due date %q (expected YYYY-MM-DD or RFC 3339)", value)
}

// ============================================================================
// Record resolution
// ============================================================================

// Record IDs are UUIDs, which nobody types in full. Resolvers accept a
// unique ID prefix (4+ characters), and where titles make sense, an exact
// title match is tried first.

const minIDPrefix = 4

// ResolveTask resolves a task by unique ID prefix.
func (c *CLI) ResolveTask(ref string) (*models.Task, error) {
	if len(ref) < minIDPrefix {
		return nil, fmt.Errorf("task reference %q is too short (need at least %d characters)", ref, minIDPrefix)
	}
	var match *models.Task
	for id, t := range c.Board.Tasks {
		if strings.HasPrefix(id, ref) {
			if match != nil {
				return nil, fmt.Errorf("task reference %q is ambiguous", ref)
			}
			match = t
		}
	}
	if match == nil {
		return nil, fmt.Errorf("task %q not found", ref)
	}
	return match, nil
}

// ResolveStatus resolves a column within one project by exact title
// (case-insensitive), falling back to a unique ID prefix across the board.
func (c *CLI) ResolveStatus(ref, projectID string) (*models.Status, error) {
	var byTitle *models.Status
	for _, s := range c.Board.Statuses {
		if s.ProjectID == projectID && strings.EqualFold(s.Title, ref) {
			if byTitle != nil {
				return nil, fmt.Errorf("column title %q is ambiguous in this project", ref)
			}
			byTitle = s
		}
	}
	if byTitle != nil {
		return byTitle, nil
	}

	if len(ref) < minIDPrefix {
		return nil, fmt.Errorf("column %q not found", ref)
	}
	var byID *models.Status
	for id, s := range c.Board.Statuses {
		if strings.HasPrefix(id, ref) {
			if byID != nil {
				return nil, fmt.Errorf("column reference %q is ambiguous", ref)
			}
			byID = s
		}
	}
	if byID == nil {
		return nil, fmt.Errorf("column %q not found", ref)
	}
	return byID, nil
}

// ResolveProject resolves a project by exact title (case-insensitive) or
// unique ID prefix.
func (c *CLI) ResolveProject(ref string) (*models.Project, error) {
	var byTitle *models.Project
	for _, p := range c.Board.Projects {
		if strings.EqualFold(p.Title, ref) {
			if byTitle != nil {
				return nil, fmt.Errorf("project title %q is ambiguous", ref)
			}
			byTitle = p
		}
	}
	if byTitle != nil {
		return byTitle, nil
	}

	if len(ref) < minIDPrefix {
		return nil, fmt.Errorf("project %q not found", ref)
	}
	var byID *models.Project
	for id, p := range c.Board.Projects {
		if strings.HasPrefix(id, ref) {
			if byID != nil {
				return nil, fmt.Errorf("project reference %q is ambiguous", ref)
			}
			byID = p
		}
	}
	if byID == nil {
		return nil, fmt.Errorf("project %q not found", ref)
	}
	return byID, nil
}

// FocusedProject returns the project the profile currently points at.
func (c *CLI) FocusedProject() (*models.Project, error) {
	if c.Board.Profile == nil || c.Board.Profile.LastProjectID == "" {
		return nil, fmt.Errorf("no focused project (run: tablero use <project>)")
	}
	p, ok := c.Board.Projects[c.Board.Profile.LastProjectID]
	if !ok {
		return nil, fmt.Errorf("focused project no longer exists (run: tablero use <project>)")
	}
	return p, nil
}

// ShortID returns the display prefix of a record ID.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
