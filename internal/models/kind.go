package models

// Kind identifies an entity collection
type Kind string

const (
	KindTask    Kind = "task"
	KindProject Kind = "project"
	KindStatus  Kind = "status"
	KindProfile Kind = "profile"
)

// Pseudo-partitions a task may occupy without a backing Status record.
// Completed and deleted tasks leave their column but keep their ordering
// chain inside these views.
const (
	PartitionCompleted = "completed"
	PartitionDeleted   = "deleted"
)

// IsPseudoPartition reports whether key is one of the synthetic task
// partitions that have no Status record behind them.
func IsPseudoPartition(key string) bool {
	return key == PartitionCompleted || key == PartitionDeleted
}

// Chained is implemented by every record kind that participates in a
// doubly-linked ordering chain. UserProfile is a singleton and does not
// implement it.
type Chained interface {
	RecordID() string

	// PartitionKey scopes the chain this record belongs to: a status ID
	// for tasks, a project ID for statuses, the owning user for projects.
	PartitionKey() string

	Prev() *string
	Next() *string
	SetPrev(id *string)
	SetNext(id *string)
}
