package sync

import "errors"

// Validation errors. A gesture that fails validation never starts a
// transaction: nothing is staged, nothing is applied.
var (
	ErrEmptyTitle         = errors.New("title cannot be empty")
	ErrTitleTooLong       = errors.New("title cannot exceed 255 characters")
	ErrUnknownTask        = errors.New("task not found")
	ErrUnknownStatus      = errors.New("status not found")
	ErrUnknownProject     = errors.New("project not found")
	ErrStatusHasTasks     = errors.New("status still holds tasks")
	ErrProjectHasStatuses = errors.New("project still holds statuses")
	ErrNoProfile          = errors.New("no user profile loaded")
	ErrSealed             = errors.New("transaction already sealed")
)

const maxTitleLen = 255

func validateTitle(title string) error {
	if title == "" {
		return ErrEmptyTitle
	}
	if len(title) > maxTitleLen {
		return ErrTitleTooLong
	}
	return nil
}
