package models

// Status represents a board column (e.g., "Todo", "In Progress", "Done").
// Statuses are organized as a doubly-linked list per project using the
// PrevID and NextID pointers.
type Status struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Color       string  `json:"color"` // Hex color for display
	ProjectID   string  `json:"projectId"`
	PrevID      *string `json:"prevId"`
	NextID      *string `json:"nextId"`
	UserID      string  `json:"userId"`
}

func (s *Status) RecordID() string     { return s.ID }
func (s *Status) PartitionKey() string { return s.ProjectID }
func (s *Status) Prev() *string        { return s.PrevID }
func (s *Status) Next() *string        { return s.NextID }
func (s *Status) SetPrev(id *string)   { s.PrevID = id }
func (s *Status) SetNext(id *string)   { s.NextID = id }

// Clone returns a deep copy for transaction backups.
func (s *Status) Clone() *Status {
	c := *s
	c.PrevID = cloneStringPtr(s.PrevID)
	c.NextID = cloneStringPtr(s.NextID)
	return &c
}
