package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/thenoetrevino/tablero/internal/models"
)

// ============================================================================
// Profile Operations
// ============================================================================

// UpsertProfile writes the full after-image of a user profile.
func UpsertProfile(ctx context.Context, q dbtx, p *models.UserProfile) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO profiles (id, nickname, last_project_id, avatar, language)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   nickname = excluded.nickname,
		   last_project_id = excluded.last_project_id,
		   avatar = excluded.avatar,
		   language = excluded.language`,
		p.ID, p.Nickname, strToNullStr(p.LastProjectID),
		strToNullStr(p.Avatar), strToNullStr(p.Language),
	)
	return err
}

// GetProfile retrieves one user's profile, or nil when the user has none.
func GetProfile(ctx context.Context, q dbtx, userID string) (*models.UserProfile, error) {
	profile := &models.UserProfile{}
	var lastProjectID, avatar, language sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT id, nickname, last_project_id, avatar, language
		 FROM profiles WHERE id = ?`,
		userID,
	).Scan(&profile.ID, &profile.Nickname, &lastProjectID, &avatar, &language)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	profile.LastProjectID = nullStrToString(lastProjectID)
	profile.Avatar = nullStrToString(avatar)
	profile.Language = nullStrToString(language)
	return profile, nil
}
