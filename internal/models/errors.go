package models

import "errors"

// Domain-specific errors shared across the sync and chain layers
var (
	// ErrUnknownRecord indicates an operation referenced an ID that is not
	// present in the working copy
	ErrUnknownRecord = errors.New("record not found")

	// ErrUnknownPartition indicates a partition key that references no
	// existing record (and is not a pseudo-partition)
	ErrUnknownPartition = errors.New("partition does not exist")

	// ErrWrongOwner indicates the record belongs to a different user
	ErrWrongOwner = errors.New("record owned by another user")
)
