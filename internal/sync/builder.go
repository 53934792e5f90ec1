package sync

import (
	"fmt"

	"github.com/thenoetrevino/tablero/internal/board"
	"github.com/thenoetrevino/tablero/internal/chain"
	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/types"
)

// Builder accumulates the intents of one user gesture into a single
// transaction: a flat op list plus a backup of every record it touches.
//
// The builder never mutates the working copy. It stages after-images on
// private clones, computes chain splices against those clones, and emits
// full-record operations in append order. Applying the result is the
// engine's job, so an entire gesture commits or rolls back atomically.
type Builder struct {
	board   *board.Board
	txn     *Transaction
	staged  map[string]models.Chained
	removed map[string]bool // staged deletions, hidden from partitions

	stagedProfile *models.UserProfile
	sealed        bool
}

// NewBuilder starts a transaction for one gesture on the given working copy.
func NewBuilder(b *board.Board) *Builder {
	return &Builder{
		board: b,
		txn: &Transaction{
			ID:     types.NewID(),
			UserID: b.UserID,
			Backup: NewBackup(),
		},
		staged:  make(map[string]models.Chained),
		removed: make(map[string]bool),
	}
}

// Transaction seals the builder and returns the accumulated transaction.
// Further intents on a sealed builder fail.
func (bl *Builder) Transaction() *Transaction {
	bl.sealed = true
	return bl.txn
}

// ============================================================================
// Staging
// ============================================================================

// stage returns the mutable after-image for an existing record, cloning it
// and capturing its backup pre-image on first touch. Later intents in the
// same gesture see earlier intents' staged state.
func (bl *Builder) stage(id string) (models.Chained, error) {
	if bl.removed[id] {
		return nil, fmt.Errorf("stage %s: %w", id, models.ErrUnknownRecord)
	}
	if rec, ok := bl.staged[id]; ok {
		return rec, nil
	}
	rec, ok := bl.board.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("stage %s: %w", id, models.ErrUnknownRecord)
	}
	bl.backupPreImage(rec)
	clone := cloneChained(rec)
	bl.staged[id] = clone
	return clone, nil
}

// stageNew registers a freshly created record. It has no pre-image, so the
// backup marks it as added: rollback removes it.
func (bl *Builder) stageNew(rec models.Chained) {
	id := rec.RecordID()
	if !bl.txn.Backup.Has(id) {
		bl.txn.Backup.Added[id] = kindOf(rec)
	}
	bl.staged[id] = rec
}

// stageRemoval marks a staged record as deleted for the rest of the
// gesture; its pre-image is already in the backup via stage.
func (bl *Builder) stageRemoval(id string) {
	delete(bl.staged, id)
	bl.removed[id] = true
}

func (bl *Builder) backupPreImage(rec models.Chained) {
	bk := bl.txn.Backup
	if bk.Has(rec.RecordID()) {
		return
	}
	switch r := rec.(type) {
	case *models.Task:
		bk.Tasks[r.ID] = r.Clone()
	case *models.Status:
		bk.Statuses[r.ID] = r.Clone()
	case *models.Project:
		bk.Projects[r.ID] = r.Clone()
	}
}

func cloneChained(rec models.Chained) models.Chained {
	switch r := rec.(type) {
	case *models.Task:
		return r.Clone()
	case *models.Status:
		return r.Clone()
	case *models.Project:
		return r.Clone()
	}
	panic(fmt.Sprintf("unknown chained record type %T", rec))
}

func kindOf(rec models.Chained) models.Kind {
	switch rec.(type) {
	case *models.Task:
		return models.KindTask
	case *models.Status:
		return models.KindStatus
	case *models.Project:
		return models.KindProject
	}
	panic(fmt.Sprintf("unknown chained record type %T", rec))
}

// ============================================================================
// Partition views (working copy overlaid with staged state)
// ============================================================================

func (bl *Builder) taskPartition(statusKey string) chain.Partition {
	p := bl.board.TaskPartition(statusKey)
	bl.overlay(p, func(rec models.Chained) bool {
		t, ok := rec.(*models.Task)
		return ok && t.Status == statusKey
	})
	return p
}

func (bl *Builder) statusPartition(projectID string) chain.Partition {
	p := bl.board.StatusPartition(projectID)
	bl.overlay(p, func(rec models.Chained) bool {
		s, ok := rec.(*models.Status)
		return ok && s.ProjectID == projectID
	})
	return p
}

func (bl *Builder) projectPartition() chain.Partition {
	p := bl.board.ProjectPartition()
	bl.overlay(p, func(rec models.Chained) bool {
		_, ok := rec.(*models.Project)
		return ok
	})
	return p
}

// overlay replaces board records with their staged after-images, injects
// staged records that moved into the partition, and drops staged removals.
func (bl *Builder) overlay(p chain.Partition, member func(models.Chained) bool) {
	for id := range bl.removed {
		delete(p, id)
	}
	for id, rec := range bl.staged {
		if member(rec) {
			p[id] = rec
		} else {
			delete(p, id)
		}
	}
}

// applyPlan stages every record a chain plan touches and rewrites the
// staged clones' links. The working copy itself stays untouched.
func (bl *Builder) applyPlan(plan chain.Plan) error {
	for _, id := range plan.TouchedIDs() {
		if _, ok := bl.staged[id]; ok {
			continue
		}
		if _, err := bl.stage(id); err != nil {
			return err
		}
	}
	return plan.Apply(func(id string) (models.Chained, bool) {
		rec, ok := bl.staged[id]
		return rec, ok
	})
}

// ============================================================================
// Op emission
// ============================================================================

// emit appends one operation carrying the current after-image of a staged
// record. Ops are never deduplicated; replaying them in append order
// reproduces the staged end state.
func (bl *Builder) emit(op OpKind, rec models.Chained) {
	o := Operation{Op: op, ID: rec.RecordID()}
	switch r := rec.(type) {
	case *models.Task:
		o.Kind = models.KindTask
		if op != OpDelete {
			o.Task = r.Clone()
		}
	case *models.Status:
		o.Kind = models.KindStatus
		if op != OpDelete {
			o.Status = r.Clone()
		}
	case *models.Project:
		o.Kind = models.KindProject
		if op != OpDelete {
			o.Project = r.Clone()
		}
	}
	bl.txn.Ops = append(bl.txn.Ops, o)
}

// emitNeighbors appends update ops for every record a plan touched other
// than the subject of the gesture.
func (bl *Builder) emitNeighbors(plan chain.Plan, subjectID string) {
	for _, id := range plan.TouchedIDs() {
		if id == subjectID {
			continue
		}
		if rec, ok := bl.staged[id]; ok {
			bl.emit(OpUpdate, rec)
		}
	}
}

func (bl *Builder) emitProfile(op OpKind, profile *models.UserProfile) {
	bl.txn.Ops = append(bl.txn.Ops, Operation{
		Kind:    models.KindProfile,
		Op:      op,
		ID:      profile.ID,
		Profile: profile.Clone(),
	})
}
