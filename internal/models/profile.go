package models

// UserProfile is the singleton per-user record. It is created at account
// provisioning and only ever field-updated; it never participates in an
// ordering chain.
type UserProfile struct {
	ID            string `json:"id"`
	Nickname      string `json:"nickname"`
	LastProjectID string `json:"lastProjectId"` // currently focused project, not an ordering link
	Avatar        string `json:"avatar,omitempty"`
	Language      string `json:"language,omitempty"`
}

// Clone returns a copy for transaction backups.
func (u *UserProfile) Clone() *UserProfile {
	c := *u
	return &c
}
