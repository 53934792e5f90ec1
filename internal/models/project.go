package models

// Project represents a board. Each user has a single ordered list of
// projects, linked through PrevID and NextID.
type Project struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	PrevID      *string `json:"prevId"`
	NextID      *string `json:"nextId"`
	UserID      string  `json:"userId"`
}

func (p *Project) RecordID() string { return p.ID }

// PartitionKey is the owning user: all of a user's projects share one chain.
func (p *Project) PartitionKey() string { return p.UserID }

func (p *Project) Prev() *string      { return p.PrevID }
func (p *Project) Next() *string      { return p.NextID }
func (p *Project) SetPrev(id *string) { p.PrevID = id }
func (p *Project) SetNext(id *string) { p.NextID = id }

// Clone returns a deep copy for transaction backups.
func (p *Project) Clone() *Project {
	c := *p
	c.PrevID = cloneStringPtr(p.PrevID)
	c.NextID = cloneStringPtr(p.NextID)
	return &c
}
