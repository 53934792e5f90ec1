package database

import (
	"context"
	"database/sql"

	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/types"
)

// EnsureUser provisions a first-run account: a profile, one project, and
// the three standard columns, all in one transaction. Existing users get
// their profile back untouched.
func EnsureUser(ctx context.Context, db *sql.DB, userID, nickname string) (*models.UserProfile, error) {
	profile, err := GetProfile(ctx, db, userID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		return profile, nil
	}

	project := &models.Project{
		ID:     types.NewID(),
		Title:  "Personal",
		UserID: userID,
	}
	profile = &models.UserProfile{
		ID:            userID,
		Nickname:      nickname,
		LastProjectID: project.ID,
	}
	statuses := defaultStatuses(project.ID, userID)

	err = withTx(ctx, db, func(tx *sql.Tx) error {
		if err := UpsertProject(ctx, tx, project); err != nil {
			return err
		}
		for _, s := range statuses {
			if err := UpsertStatus(ctx, tx, s); err != nil {
				return err
			}
		}
		return UpsertProfile(ctx, tx, profile)
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// defaultStatuses builds the To Do / In Progress / Done chain for a new
// project.
func defaultStatuses(projectID, userID string) []*models.Status {
	titles := []struct {
		title string
		color string
	}{
		{"To Do", "#7aa2f7"},
		{"In Progress", "#e0af68"},
		{"Done", "#9ece6a"},
	}

	statuses := make([]*models.Status, len(titles))
	for i, t := range titles {
		statuses[i] = &models.Status{
			ID:        types.NewID(),
			Title:     t.title,
			Color:     t.color,
			ProjectID: projectID,
			UserID:    userID,
		}
	}
	for i := range statuses {
		if i > 0 {
			statuses[i].PrevID = &statuses[i-1].ID
		}
		if i < len(statuses)-1 {
			statuses[i].NextID = &statuses[i+1].ID
		}
	}
	return statuses
}
