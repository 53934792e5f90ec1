package sync

import (
	"fmt"
	"time"

	"github.com/thenoetrevino/tablero/internal/chain"
	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/types"
)

// Each method on this file is one user-facing intent. A gesture appends
// its primitive ops to the builder; a single drag or edit maps to one
// builder so the whole gesture commits or rolls back together.

// AddTaskRequest encapsulates all data needed to create a task
type AddTaskRequest struct {
	Title       string
	Description string
	DueDate     *time.Time
	Status      string  // target column
	AfterID     *string // nil = insert at head
}

// AddTask creates a task at the head of its column (or after AfterID).
func (bl *Builder) AddTask(req AddTaskRequest) (*models.Task, error) {
	if bl.sealed {
		return nil, ErrSealed
	}
	if err := validateTitle(req.Title); err != nil {
		return nil, err
	}
	if err := bl.requireStatusKey(req.Status); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	task := &models.Task{
		ID:          types.NewID(),
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Status:      req.Status,
		UserID:      bl.board.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	bl.stageNew(task)

	plan, err := chain.Insert(bl.taskPartition(req.Status), task.ID, req.AfterID)
	if err != nil {
		return nil, fmt.Errorf("failed to link task: %w", err)
	}
	if err := bl.applyPlan(plan); err != nil {
		return nil, err
	}

	bl.emit(OpAdd, task)
	bl.emitNeighbors(plan, task.ID)
	return task, nil
}

// TaskChanges carries optional field updates; nil means leave unchanged.
type TaskChanges struct {
	Title        *string
	Description  *string
	DueDate      *time.Time
	ClearDueDate bool
}

// UpdateTask edits a task's payload fields without touching its links.
func (bl *Builder) UpdateTask(id string, changes TaskChanges) error {
	if bl.sealed {
		return ErrSealed
	}
	if changes.Title != nil {
		if err := validateTitle(*changes.Title); err != nil {
			return err
		}
	}

	rec, err := bl.stage(id)
	if err != nil {
		return ErrUnknownTask
	}
	task := rec.(*models.Task)

	if changes.Title != nil {
		task.Title = *changes.Title
	}
	if changes.Description != nil {
		task.Description = *changes.Description
	}
	if changes.ClearDueDate {
		task.DueDate = nil
	} else if changes.DueDate != nil {
		task.DueDate = changes.DueDate
	}
	task.UpdatedAt = time.Now().UTC()

	bl.emit(OpUpdate, task)
	return nil
}

// DeleteTask excises a task from its chain and removes the record.
func (bl *Builder) DeleteTask(id string) error {
	if bl.sealed {
		return ErrSealed
	}
	rec, err := bl.stage(id)
	if err != nil {
		return ErrUnknownTask
	}
	task := rec.(*models.Task)

	plan, err := chain.Unlink(bl.taskPartition(task.Status), id)
	if err != nil {
		return fmt.Errorf("failed to unlink task: %w", err)
	}
	if err := bl.applyPlan(plan); err != nil {
		return err
	}

	bl.emitNeighbors(plan, id)
	bl.emit(OpDelete, task)
	bl.stageRemoval(id)
	return nil
}

// MoveTask relocates a task to targetStatus, directly after AfterID
// (nil = head). Same-column drops at the current position are a no-op
// and emit nothing.
func (bl *Builder) MoveTask(id, targetStatus string, afterID *string) error {
	if bl.sealed {
		return ErrSealed
	}
	rec, err := bl.stage(id)
	if err != nil {
		return ErrUnknownTask
	}
	task := rec.(*models.Task)
	if err := bl.requireStatusKey(targetStatus); err != nil {
		return err
	}

	src := bl.taskPartition(task.Status)
	dst := src
	if targetStatus != task.Status {
		dst = bl.taskPartition(targetStatus)
	}

	plan, err := chain.Move(src, dst, id, afterID)
	if err != nil {
		return fmt.Errorf("failed to move task: %w", err)
	}
	if len(plan) == 0 && targetStatus == task.Status {
		return nil // dropped onto its own position
	}

	if targetStatus != task.Status {
		task.PrevStatus = task.Status
		task.Status = targetStatus
	}
	task.UpdatedAt = time.Now().UTC()

	if err := bl.applyPlan(plan); err != nil {
		return err
	}

	bl.emit(OpUpdate, task)
	bl.emitNeighbors(plan, id)
	return nil
}

// MoveTaskToIndex implements the drop policy: the neighbor is whatever
// record sits at position k-1 of the target column's pre-move order
// (nil for k = 0). Dropping a record onto its own slot is a no-op.
func (bl *Builder) MoveTaskToIndex(id, targetStatus string, k int) error {
	if bl.sealed {
		return ErrSealed
	}
	if err := bl.requireStatusKey(targetStatus); err != nil {
		return err
	}

	ordered, err := chain.Linearize(bl.taskPartition(targetStatus))
	if err != nil {
		return fmt.Errorf("failed to read target column: %w", err)
	}

	var afterID *string
	if k > 0 {
		i := k - 1
		if i >= len(ordered) {
			i = len(ordered) - 1
		}
		neighbor := ordered[i].RecordID()
		if neighbor == id && i+1 < len(ordered) {
			// The slot before the drop point is the moving record
			// itself; splice after the record that follows it.
			neighbor = ordered[i+1].RecordID()
		}
		if neighbor != id {
			afterID = &neighbor
		}
	}
	return bl.MoveTask(id, targetStatus, afterID)
}

// CompleteTask moves a task into the completed view, remembering the
// column it came from in PrevStatus.
func (bl *Builder) CompleteTask(id string) error {
	return bl.MoveTask(id, models.PartitionCompleted, nil)
}

// ReopenTask returns a completed or deleted task to the column it
// occupied before, at the head.
func (bl *Builder) ReopenTask(id string) error {
	if bl.sealed {
		return ErrSealed
	}
	rec, err := bl.stage(id)
	if err != nil {
		return ErrUnknownTask
	}
	task := rec.(*models.Task)
	if !models.IsPseudoPartition(task.Status) {
		return fmt.Errorf("task %s is not completed or deleted", id)
	}
	if task.PrevStatus == "" {
		return ErrUnknownStatus
	}
	return bl.MoveTask(id, task.PrevStatus, nil)
}

// ============================================================================
// Status gestures
// ============================================================================

// AddStatusRequest encapsulates data for creating a column
type AddStatusRequest struct {
	Title       string
	Description string
	Color       string
	ProjectID   string
	AfterID     *string
}

// AddStatus creates a column in a project's status chain.
func (bl *Builder) AddStatus(req AddStatusRequest) (*models.Status, error) {
	if bl.sealed {
		return nil, ErrSealed
	}
	if err := validateTitle(req.Title); err != nil {
		return nil, err
	}
	if _, ok := bl.board.Projects[req.ProjectID]; !ok {
		return nil, ErrUnknownProject
	}

	status := &models.Status{
		ID:          types.NewID(),
		Title:       req.Title,
		Description: req.Description,
		Color:       req.Color,
		ProjectID:   req.ProjectID,
		UserID:      bl.board.UserID,
	}
	bl.stageNew(status)

	plan, err := chain.Insert(bl.statusPartition(req.ProjectID), status.ID, req.AfterID)
	if err != nil {
		return nil, fmt.Errorf("failed to link status: %w", err)
	}
	if err := bl.applyPlan(plan); err != nil {
		return nil, err
	}

	bl.emit(OpAdd, status)
	bl.emitNeighbors(plan, status.ID)
	return status, nil
}

// StatusChanges carries optional column field updates.
type StatusChanges struct {
	Title       *string
	Description *string
	Color       *string
}

// UpdateStatus edits a column's payload fields.
func (bl *Builder) UpdateStatus(id string, changes StatusChanges) error {
	if bl.sealed {
		return ErrSealed
	}
	if changes.Title != nil {
		if err := validateTitle(*changes.Title); err != nil {
			return err
		}
	}

	rec, err := bl.stage(id)
	if err != nil {
		return ErrUnknownStatus
	}
	status := rec.(*models.Status)

	if changes.Title != nil {
		status.Title = *changes.Title
	}
	if changes.Description != nil {
		status.Description = *changes.Description
	}
	if changes.Color != nil {
		status.Color = *changes.Color
	}

	bl.emit(OpUpdate, status)
	return nil
}

// DeleteStatus removes an empty column. Business rule: a column still
// holding tasks cannot be deleted.
func (bl *Builder) DeleteStatus(id string) error {
	if bl.sealed {
		return ErrSealed
	}
	rec, err := bl.stage(id)
	if err != nil {
		return ErrUnknownStatus
	}
	status := rec.(*models.Status)

	if len(bl.taskPartition(id)) > 0 {
		return ErrStatusHasTasks
	}

	plan, err := chain.Unlink(bl.statusPartition(status.ProjectID), id)
	if err != nil {
		return fmt.Errorf("failed to unlink status: %w", err)
	}
	if err := bl.applyPlan(plan); err != nil {
		return err
	}

	bl.emitNeighbors(plan, id)
	bl.emit(OpDelete, status)
	bl.stageRemoval(id)
	return nil
}

// MoveStatus reorders a column within its project.
func (bl *Builder) MoveStatus(id string, afterID *string) error {
	if bl.sealed {
		return ErrSealed
	}
	rec, err := bl.stage(id)
	if err != nil {
		return ErrUnknownStatus
	}
	status := rec.(*models.Status)

	p := bl.statusPartition(status.ProjectID)
	plan, err := chain.Move(p, p, id, afterID)
	if err != nil {
		return fmt.Errorf("failed to move status: %w", err)
	}
	if len(plan) == 0 {
		return nil
	}
	if err := bl.applyPlan(plan); err != nil {
		return err
	}

	bl.emit(OpUpdate, status)
	bl.emitNeighbors(plan, id)
	return nil
}

// ============================================================================
// Project gestures
// ============================================================================

// AddProjectRequest encapsulates data for creating a project
type AddProjectRequest struct {
	Title       string
	Description string
	AfterID     *string
}

// AddProject creates a project at the head of the user's project list.
func (bl *Builder) AddProject(req AddProjectRequest) (*models.Project, error) {
	if bl.sealed {
		return nil, ErrSealed
	}
	if err := validateTitle(req.Title); err != nil {
		return nil, err
	}

	project := &models.Project{
		ID:          types.NewID(),
		Title:       req.Title,
		Description: req.Description,
		UserID:      bl.board.UserID,
	}
	bl.stageNew(project)

	plan, err := chain.Insert(bl.projectPartition(), project.ID, req.AfterID)
	if err != nil {
		return nil, fmt.Errorf("failed to link project: %w", err)
	}
	if err := bl.applyPlan(plan); err != nil {
		return nil, err
	}

	bl.emit(OpAdd, project)
	bl.emitNeighbors(plan, project.ID)
	return project, nil
}

// ProjectChanges carries optional project field updates.
type ProjectChanges struct {
	Title       *string
	Description *string
}

// UpdateProject edits a project's payload fields.
func (bl *Builder) UpdateProject(id string, changes ProjectChanges) error {
	if bl.sealed {
		return ErrSealed
	}
	if changes.Title != nil {
		if err := validateTitle(*changes.Title); err != nil {
			return err
		}
	}

	rec, err := bl.stage(id)
	if err != nil {
		return ErrUnknownProject
	}
	project := rec.(*models.Project)

	if changes.Title != nil {
		project.Title = *changes.Title
	}
	if changes.Description != nil {
		project.Description = *changes.Description
	}

	bl.emit(OpUpdate, project)
	return nil
}

// DeleteProject removes a project with no remaining columns.
func (bl *Builder) DeleteProject(id string) error {
	if bl.sealed {
		return ErrSealed
	}
	rec, err := bl.stage(id)
	if err != nil {
		return ErrUnknownProject
	}
	project := rec.(*models.Project)

	if len(bl.statusPartition(id)) > 0 {
		return ErrProjectHasStatuses
	}

	plan, err := chain.Unlink(bl.projectPartition(), id)
	if err != nil {
		return fmt.Errorf("failed to unlink project: %w", err)
	}
	if err := bl.applyPlan(plan); err != nil {
		return err
	}

	bl.emitNeighbors(plan, id)
	bl.emit(OpDelete, project)
	bl.stageRemoval(id)
	return nil
}

// MoveProject reorders a project within the user's list.
func (bl *Builder) MoveProject(id string, afterID *string) error {
	if bl.sealed {
		return ErrSealed
	}
	rec, err := bl.stage(id)
	if err != nil {
		return ErrUnknownProject
	}
	project := rec.(*models.Project)

	p := bl.projectPartition()
	plan, err := chain.Move(p, p, id, afterID)
	if err != nil {
		return fmt.Errorf("failed to move project: %w", err)
	}
	if len(plan) == 0 {
		return nil
	}
	if err := bl.applyPlan(plan); err != nil {
		return err
	}

	bl.emit(OpUpdate, project)
	bl.emitNeighbors(plan, id)
	return nil
}

// ============================================================================
// Profile gestures
// ============================================================================

// SwitchFocus points the profile's LastProjectID at a different project.
// Switching to the already-focused project is a no-op.
func (bl *Builder) SwitchFocus(projectID string) error {
	if bl.sealed {
		return ErrSealed
	}
	if _, ok := bl.board.Projects[projectID]; !ok {
		return ErrUnknownProject
	}
	profile, err := bl.stageProfile()
	if err != nil {
		return err
	}
	if profile.LastProjectID == projectID {
		return nil
	}
	profile.LastProjectID = projectID
	bl.emitProfile(OpUpdate, profile)
	return nil
}

// ProfileChanges carries optional profile field updates.
type ProfileChanges struct {
	Nickname *string
	Avatar   *string
	Language *string
}

// UpdateProfile edits the singleton profile record.
func (bl *Builder) UpdateProfile(changes ProfileChanges) error {
	if bl.sealed {
		return ErrSealed
	}
	if changes.Nickname != nil {
		if err := validateTitle(*changes.Nickname); err != nil {
			return err
		}
	}
	profile, err := bl.stageProfile()
	if err != nil {
		return err
	}

	if changes.Nickname != nil {
		profile.Nickname = *changes.Nickname
	}
	if changes.Avatar != nil {
		profile.Avatar = *changes.Avatar
	}
	if changes.Language != nil {
		profile.Language = *changes.Language
	}

	bl.emitProfile(OpUpdate, profile)
	return nil
}

// stageProfile clones the profile on first touch, capturing its backup
// pre-image. UserProfile is a singleton and never chained, so it bypasses
// the generic staging path.
func (bl *Builder) stageProfile() (*models.UserProfile, error) {
	if bl.stagedProfile != nil {
		return bl.stagedProfile, nil
	}
	if bl.board.Profile == nil {
		return nil, ErrNoProfile
	}
	if bl.txn.Backup.Profile == nil {
		bl.txn.Backup.Profile = bl.board.Profile.Clone()
	}
	bl.stagedProfile = bl.board.Profile.Clone()
	return bl.stagedProfile, nil
}

// requireStatusKey accepts a live status ID or one of the pseudo-partition
// views a task may occupy.
func (bl *Builder) requireStatusKey(key string) error {
	if models.IsPseudoPartition(key) {
		return nil
	}
	if bl.removed[key] {
		return ErrUnknownStatus
	}
	if _, ok := bl.staged[key]; ok {
		return nil
	}
	if _, ok := bl.board.Statuses[key]; !ok {
		return ErrUnknownStatus
	}
	return nil
}
