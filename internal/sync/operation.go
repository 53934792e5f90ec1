// Package sync turns user gestures into bulk transactions, applies them
// optimistically to the working copy, and rolls them back when the
// authoritative store refuses the commit.
package sync

import (
	"github.com/thenoetrevino/tablero/internal/models"
)

// OpKind is the primitive operation applied to one record.
type OpKind string

const (
	OpAdd    OpKind = "add"
	OpUpdate OpKind = "update"
	OpDelete OpKind = "delete"
)

// Operation is one primitive mutation in a transaction. Add and update
// carry the full after-image of the record; delete only needs the ID.
// The store treats add/update uniformly as an upsert of the image.
type Operation struct {
	Kind models.Kind `json:"kind"`
	Op   OpKind      `json:"op"`
	ID   string      `json:"id"`

	Task    *models.Task        `json:"task,omitempty"`
	Status  *models.Status      `json:"status,omitempty"`
	Project *models.Project     `json:"project,omitempty"`
	Profile *models.UserProfile `json:"profile,omitempty"`
}

// Transaction is one atomic batch of operations corresponding to a single
// user gesture. Ops replay in append order; the store applies all of them
// or none. The ID makes replayed submissions idempotent store-side.
type Transaction struct {
	ID     string      `json:"id"`
	UserID string      `json:"userId"`
	Ops    []Operation `json:"ops"`

	// Backup travels with the transaction locally but never over the
	// wire; it is what Rollback restores when the commit fails.
	Backup *Backup `json:"-"`
}

// Empty reports whether the gesture produced no effective operations
// (e.g. a self-move). Empty transactions are not worth committing.
func (t *Transaction) Empty() bool {
	return len(t.Ops) == 0
}

// Backup holds the exact pre-transaction images of every record the
// transaction touches, keyed by kind, plus the IDs of records the
// transaction created (which a rollback must remove again).
//
// Backups are scoped narrowly to touched records rather than snapshotting
// the whole store: several transactions may be in flight at once and a
// rollback must not clobber fields a later transaction legitimately
// changed. Out-of-order rollbacks of overlapping transactions remain an
// accepted risk.
type Backup struct {
	Tasks    map[string]*models.Task
	Statuses map[string]*models.Status
	Projects map[string]*models.Project
	Profile  *models.UserProfile

	Added map[string]models.Kind // records with no pre-image
}

// NewBackup returns an empty backup.
func NewBackup() *Backup {
	return &Backup{
		Tasks:    make(map[string]*models.Task),
		Statuses: make(map[string]*models.Status),
		Projects: make(map[string]*models.Project),
		Added:    make(map[string]models.Kind),
	}
}

// Has reports whether the backup already holds a pre-image (or an added
// marker) for the given record, so first-touch snapshots are not
// overwritten by later intents in the same gesture.
func (b *Backup) Has(id string) bool {
	if _, ok := b.Added[id]; ok {
		return true
	}
	if _, ok := b.Tasks[id]; ok {
		return true
	}
	if _, ok := b.Statuses[id]; ok {
		return true
	}
	if _, ok := b.Projects[id]; ok {
		return true
	}
	return b.Profile != nil && b.Profile.ID == id
}
