// Package board holds the in-memory working copy of one user's records.
//
// A Board is created at session start from the authoritative store's
// snapshot and mutated only through the sync engine. It is the state the
// interface renders from, so every mutation is visible here before any
// network round-trip completes.
package board

import (
	"github.com/thenoetrevino/tablero/internal/chain"
	"github.com/thenoetrevino/tablero/internal/models"
)

// Board is the session working copy. It assumes a single writer: the sync
// engine applies operations sequentially, so no locking is needed here.
type Board struct {
	UserID   string
	Tasks    map[string]*models.Task
	Projects map[string]*models.Project
	Statuses map[string]*models.Status
	Profile  *models.UserProfile
}

// New creates an empty working copy for the given user.
func New(userID string) *Board {
	return &Board{
		UserID:   userID,
		Tasks:    make(map[string]*models.Task),
		Projects: make(map[string]*models.Project),
		Statuses: make(map[string]*models.Status),
	}
}

// Load replaces the working copy with the store's snapshot. The snapshot
// is trusted as delivered; run Validate separately to check the chains.
func (b *Board) Load(tasks []*models.Task, projects []*models.Project, statuses []*models.Status, profile *models.UserProfile) {
	b.Tasks = make(map[string]*models.Task, len(tasks))
	for _, t := range tasks {
		b.Tasks[t.ID] = t
	}
	b.Projects = make(map[string]*models.Project, len(projects))
	for _, p := range projects {
		b.Projects[p.ID] = p
	}
	b.Statuses = make(map[string]*models.Status, len(statuses))
	for _, s := range statuses {
		b.Statuses[s.ID] = s
	}
	b.Profile = profile
}

// Lookup resolves any chained record by ID, across all kinds. IDs are
// UUIDs, so collisions between kinds do not occur in practice.
func (b *Board) Lookup(id string) (models.Chained, bool) {
	if t, ok := b.Tasks[id]; ok {
		return t, true
	}
	if s, ok := b.Statuses[id]; ok {
		return s, true
	}
	if p, ok := b.Projects[id]; ok {
		return p, true
	}
	return nil, false
}

// TaskPartition returns the membership of one status column's task chain.
func (b *Board) TaskPartition(statusKey string) chain.Partition {
	p := make(chain.Partition)
	for id, t := range b.Tasks {
		if t.Status == statusKey {
			p[id] = t
		}
	}
	return p
}

// StatusPartition returns the membership of one project's status chain.
func (b *Board) StatusPartition(projectID string) chain.Partition {
	p := make(chain.Partition)
	for id, s := range b.Statuses {
		if s.ProjectID == projectID {
			p[id] = s
		}
	}
	return p
}

// ProjectPartition returns the user's single project chain.
func (b *Board) ProjectPartition() chain.Partition {
	p := make(chain.Partition)
	for id, pr := range b.Projects {
		p[id] = pr
	}
	return p
}

// TasksInStatus linearizes a column's tasks into display order.
func (b *Board) TasksInStatus(statusKey string) ([]*models.Task, error) {
	ordered, err := chain.Linearize(b.TaskPartition(statusKey))
	if err != nil {
		return nil, err
	}
	tasks := make([]*models.Task, len(ordered))
	for i, rec := range ordered {
		tasks[i] = rec.(*models.Task)
	}
	return tasks, nil
}

// StatusesInProject linearizes a project's columns into display order.
func (b *Board) StatusesInProject(projectID string) ([]*models.Status, error) {
	ordered, err := chain.Linearize(b.StatusPartition(projectID))
	if err != nil {
		return nil, err
	}
	statuses := make([]*models.Status, len(ordered))
	for i, rec := range ordered {
		statuses[i] = rec.(*models.Status)
	}
	return statuses, nil
}

// ProjectsInOrder linearizes the user's projects into display order.
func (b *Board) ProjectsInOrder() ([]*models.Project, error) {
	ordered, err := chain.Linearize(b.ProjectPartition())
	if err != nil {
		return nil, err
	}
	projects := make([]*models.Project, len(ordered))
	for i, rec := range ordered {
		projects[i] = rec.(*models.Project)
	}
	return projects, nil
}

// Validate runs the chain integrity validator over the whole working copy
// and reports every violation across all kinds and partitions.
func (b *Board) Validate() []chain.Violation {
	var violations []chain.Violation

	tasks := make([]models.Chained, 0, len(b.Tasks))
	for _, t := range b.Tasks {
		tasks = append(tasks, t)
	}
	violations = append(violations, chain.Validate(models.KindTask, tasks, func(key string) bool {
		if models.IsPseudoPartition(key) {
			return true
		}
		_, ok := b.Statuses[key]
		return ok
	})...)

	statuses := make([]models.Chained, 0, len(b.Statuses))
	for _, s := range b.Statuses {
		statuses = append(statuses, s)
	}
	violations = append(violations, chain.Validate(models.KindStatus, statuses, func(key string) bool {
		_, ok := b.Projects[key]
		return ok
	})...)

	projects := make([]models.Chained, 0, len(b.Projects))
	for _, p := range b.Projects {
		projects = append(projects, p)
	}
	violations = append(violations, chain.Validate(models.KindProject, projects, func(key string) bool {
		return key == b.UserID
	})...)

	return violations
}
