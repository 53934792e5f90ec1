package sync

import (
	"fmt"

	"github.com/thenoetrevino/tablero/internal/board"
	"github.com/thenoetrevino/tablero/internal/models"
)

// Engine replays transactions onto a working copy. Apply is optimistic:
// the caller updates the board first, submits the transaction to the
// store, and calls Rollback if the store refuses it.
type Engine struct {
	board *board.Board
}

// NewEngine returns an engine bound to one working copy.
func NewEngine(b *board.Board) *Engine {
	return &Engine{board: b}
}

// Apply replays a transaction's operations in append order. Add and
// update upsert the carried after-image; delete removes the record. If
// any operation fails mid-way the backup is restored, so the board never
// holds a half-applied gesture.
func (e *Engine) Apply(txn *Transaction) error {
	for i, op := range txn.Ops {
		if err := e.applyOp(op); err != nil {
			if txn.Backup != nil {
				e.Rollback(txn.Backup)
			}
			return fmt.Errorf("op %d (%s %s %s): %w", i, op.Op, op.Kind, op.ID, err)
		}
	}
	return nil
}

func (e *Engine) applyOp(op Operation) error {
	switch op.Kind {
	case models.KindTask:
		if op.Op == OpDelete {
			delete(e.board.Tasks, op.ID)
			return nil
		}
		if op.Task == nil {
			return fmt.Errorf("missing task payload")
		}
		e.board.Tasks[op.ID] = op.Task.Clone()
	case models.KindStatus:
		if op.Op == OpDelete {
			delete(e.board.Statuses, op.ID)
			return nil
		}
		if op.Status == nil {
			return fmt.Errorf("missing status payload")
		}
		e.board.Statuses[op.ID] = op.Status.Clone()
	case models.KindProject:
		if op.Op == OpDelete {
			delete(e.board.Projects, op.ID)
			return nil
		}
		if op.Project == nil {
			return fmt.Errorf("missing project payload")
		}
		e.board.Projects[op.ID] = op.Project.Clone()
	case models.KindProfile:
		if op.Profile == nil {
			return fmt.Errorf("missing profile payload")
		}
		e.board.Profile = op.Profile.Clone()
	default:
		return fmt.Errorf("unknown record kind %q", op.Kind)
	}
	return nil
}

// Rollback restores the exact pre-transaction images from a backup and
// removes every record the transaction created. Only records the backup
// names are touched; concurrent transactions over disjoint records stay
// intact.
func (e *Engine) Rollback(bk *Backup) {
	for id, kind := range bk.Added {
		switch kind {
		case models.KindTask:
			delete(e.board.Tasks, id)
		case models.KindStatus:
			delete(e.board.Statuses, id)
		case models.KindProject:
			delete(e.board.Projects, id)
		}
	}
	for id, task := range bk.Tasks {
		e.board.Tasks[id] = task.Clone()
	}
	for id, status := range bk.Statuses {
		e.board.Statuses[id] = status.Clone()
	}
	for id, project := range bk.Projects {
		e.board.Projects[id] = project.Clone()
	}
	if bk.Profile != nil {
		e.board.Profile = bk.Profile.Clone()
	}
}
