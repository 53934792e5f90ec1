package models

import "time"

// Task represents a single card on the board.
// Tasks are organized as a doubly-linked list per status using the PrevID
// and NextID pointers; Status is the partition key of that list.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Status      string     `json:"status"` // current column (Status ID or a pseudo-partition)
	PrevStatus  string     `json:"prevStatus,omitempty"` // column occupied before the last cross-column move
	PrevID      *string    `json:"prevId"`
	NextID      *string    `json:"nextId"`
	UserID      string     `json:"userId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (t *Task) RecordID() string     { return t.ID }
func (t *Task) PartitionKey() string { return t.Status }
func (t *Task) Prev() *string        { return t.PrevID }
func (t *Task) Next() *string        { return t.NextID }
func (t *Task) SetPrev(id *string)   { t.PrevID = id }
func (t *Task) SetNext(id *string)   { t.NextID = id }

// Clone returns a deep copy. Backups must be field-for-field exact,
// including the ordering pointers, so rollback never aliases live state.
func (t *Task) Clone() *Task {
	c := *t
	c.DueDate = cloneTimePtr(t.DueDate)
	c.PrevID = cloneStringPtr(t.PrevID)
	c.NextID = cloneStringPtr(t.NextID)
	return &c
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTimePtr(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
