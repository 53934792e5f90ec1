package chain

import (
	"sort"

	"github.com/thenoetrevino/tablero/internal/models"
)

// ViolationType names one of the chain invariants a partition can break.
type ViolationType string

const (
	ViolationNoHead            ViolationType = "no_head"
	ViolationMultipleHeads     ViolationType = "multiple_heads"
	ViolationNoTail            ViolationType = "no_tail"
	ViolationMultipleTails     ViolationType = "multiple_tails"
	ViolationBadBacklink       ViolationType = "bad_backlink"
	ViolationCycle             ViolationType = "cycle"
	ViolationUnreached         ViolationType = "unreached"
	ViolationDanglingPartition ViolationType = "dangling_partition"
)

// Violation pinpoints one invariant failure in one partition. OffendingIDs
// lists the records involved so diagnostics and tests can name them.
type Violation struct {
	Kind         models.Kind
	PartitionKey string
	Type         ViolationType
	OffendingIDs []string
}

// Validate checks every partition of one record kind against the chain
// invariants and reports every violation found, not just the first.
//
// keyExists reports whether a partition key references a live record of
// the parent kind; pass nil to skip referential-integrity checking.
// Pseudo-partitions are the caller's business: bake their acceptance into
// keyExists.
func Validate(kind models.Kind, records []models.Chained, keyExists func(key string) bool) []Violation {
	partitions := make(map[string]Partition)
	for _, rec := range records {
		key := rec.PartitionKey()
		if partitions[key] == nil {
			partitions[key] = make(Partition)
		}
		partitions[key][rec.RecordID()] = rec
	}

	keys := make([]string, 0, len(partitions))
	for key := range partitions {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var violations []Violation
	for _, key := range keys {
		p := partitions[key]

		if keyExists != nil && !keyExists(key) {
			violations = append(violations, Violation{
				Kind: kind, PartitionKey: key,
				Type:         ViolationDanglingPartition,
				OffendingIDs: sortedIDs(p),
			})
		}

		violations = append(violations, validatePartition(kind, key, p)...)
	}
	return violations
}

func validatePartition(kind models.Kind, key string, p Partition) []Violation {
	var violations []Violation
	report := func(t ViolationType, ids ...string) {
		violations = append(violations, Violation{
			Kind: kind, PartitionKey: key, Type: t, OffendingIDs: ids,
		})
	}

	// Exactly one head and one tail.
	var heads, tails []string
	for id, rec := range p {
		if rec.Prev() == nil {
			heads = append(heads, id)
		}
		if rec.Next() == nil {
			tails = append(tails, id)
		}
	}
	sort.Strings(heads)
	sort.Strings(tails)

	switch {
	case len(heads) == 0:
		report(ViolationNoHead, sortedIDs(p)...)
	case len(heads) > 1:
		report(ViolationMultipleHeads, heads...)
	}
	switch {
	case len(tails) == 0:
		report(ViolationNoTail, sortedIDs(p)...)
	case len(tails) > 1:
		report(ViolationMultipleTails, tails...)
	}

	// Bidirectional consistency: A.next = B implies B.prev = A.
	var badLinks []string
	for id, rec := range p {
		if nextID := rec.Next(); nextID != nil {
			next, ok := p[*nextID]
			if !ok || next.Prev() == nil || *next.Prev() != id {
				badLinks = append(badLinks, id)
			}
		}
		if prevID := rec.Prev(); prevID != nil {
			prev, ok := p[*prevID]
			if !ok || prev.Next() == nil || *prev.Next() != id {
				badLinks = append(badLinks, id)
			}
		}
	}
	if len(badLinks) > 0 {
		sort.Strings(badLinks)
		badLinks = dedup(badLinks)
		report(ViolationBadBacklink, badLinks...)
	}

	// Reachability: walking next from each head must visit every member
	// exactly once, without looping.
	if len(heads) >= 1 {
		visited := make(map[string]bool, len(p))
		for _, headID := range heads {
			if visited[headID] {
				// Reached by an earlier walk; already covered.
				continue
			}
			cur := p[headID]
			for steps := 0; cur != nil; steps++ {
				id := cur.RecordID()
				if visited[id] || steps > len(p) {
					report(ViolationCycle, id)
					break
				}
				visited[id] = true
				nextID := cur.Next()
				if nextID == nil {
					break
				}
				next, ok := p[*nextID]
				if !ok {
					break // already reported as a bad link
				}
				cur = next
			}
		}

		var unreached []string
		for id := range p {
			if !visited[id] {
				unreached = append(unreached, id)
			}
		}
		if len(unreached) > 0 {
			sort.Strings(unreached)
			report(ViolationUnreached, unreached...)
		}
	}

	return violations
}

func sortedIDs(p Partition) []string {
	ids := make([]string, 0, len(p))
	for id := range p {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func dedup(sorted []string) []string {
	out := sorted[:0]
	for i, s := range sorted {
		if i == 0 || sorted[i-1] != s {
			out = append(out, s)
		}
	}
	return out
}
