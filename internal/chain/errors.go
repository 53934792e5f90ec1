package chain

import "fmt"

// BrokenChainError signals that a partition's linked list is corrupt:
// traversal cycled, ended early, or no unambiguous head exists. It is a
// local corruption signal, not a crash; callers typically respond by
// running Validate to pinpoint the offending records.
type BrokenChainError struct {
	PartitionKey string
	RecordID     string
	Reason       string
}

func (e *BrokenChainError) Error() string {
	if e.PartitionKey != "" {
		return fmt.Sprintf("broken chain in partition %s: %s", e.PartitionKey, e.Reason)
	}
	return "broken chain: " + e.Reason
}
