// Package chain owns every prev/next pointer mutation in the system.
//
// Records encode their ordering as identifiers of their neighbors rather
// than array indices, so a reorder is a splice: two or three records get
// their pointers rewritten. All of that rewriting is computed here as an
// explicit Plan and applied in one place, which keeps the list invariants
// (single head, single tail, bidirectional links, no cycles) inside a
// single package instead of scattered across repositories.
package chain

import (
	"fmt"

	"github.com/thenoetrevino/tablero/internal/models"
)

// Partition is the membership of one ordering chain, keyed by record ID.
// All records in a partition share the same partition key.
type Partition map[string]models.Chained

// LinkChange is a single pointer rewrite on one record. SetPrev/SetNext
// distinguish "set to nil" from "leave untouched".
type LinkChange struct {
	ID      string
	Prev    *string
	Next    *string
	SetPrev bool
	SetNext bool
}

// Plan is the ordered list of pointer rewrites produced by a chain edit.
// An empty plan means the edit was a no-op.
type Plan []LinkChange

// TouchedIDs returns the IDs whose links the plan rewrites, deduplicated
// in first-appearance order. Used to scope transaction backups.
func (p Plan) TouchedIDs() []string {
	seen := make(map[string]bool, len(p))
	var ids []string
	for _, ch := range p {
		if !seen[ch.ID] {
			seen[ch.ID] = true
			ids = append(ids, ch.ID)
		}
	}
	return ids
}

// Apply executes the plan against live records. The lookup must resolve
// every ID the plan touches; records are mutated in place.
func (p Plan) Apply(lookup func(id string) (models.Chained, bool)) error {
	for _, ch := range p {
		rec, ok := lookup(ch.ID)
		if !ok {
			return fmt.Errorf("applying link change: %w: %s", models.ErrUnknownRecord, ch.ID)
		}
		if ch.SetPrev {
			rec.SetPrev(ch.Prev)
		}
		if ch.SetNext {
			rec.SetNext(ch.Next)
		}
	}
	return nil
}

// Head returns the partition's head record (prev == nil), or nil for an
// empty partition. A partition with no head or several heads is corrupt;
// Head returns a BrokenChainError so callers can surface it.
func Head(p Partition) (models.Chained, error) {
	var head models.Chained
	for _, rec := range p {
		if rec.Prev() == nil {
			if head != nil {
				return nil, &BrokenChainError{Reason: "multiple heads"}
			}
			head = rec
		}
	}
	if head == nil && len(p) > 0 {
		return nil, &BrokenChainError{Reason: "no head"}
	}
	return head, nil
}

// Insert computes the splice that links the record with the given ID
// directly after afterID. A nil afterID makes it the new head. The new
// record must already be present in the partition map (with whatever
// stale pointers it carries); its links are rewritten by the plan.
func Insert(p Partition, id string, afterID *string) (Plan, error) {
	if _, ok := p[id]; !ok {
		return nil, fmt.Errorf("insert %s: %w", id, models.ErrUnknownRecord)
	}

	if afterID == nil {
		head, err := Head(delete1(p, id))
		if err != nil {
			return nil, err
		}
		if head == nil {
			// Sole member: both ends nil.
			return Plan{{ID: id, Prev: nil, Next: nil, SetPrev: true, SetNext: true}}, nil
		}
		headID := head.RecordID()
		return Plan{
			{ID: id, Prev: nil, Next: &headID, SetPrev: true, SetNext: true},
			{ID: headID, Prev: &id, SetPrev: true},
		}, nil
	}

	pred, ok := p[*afterID]
	if !ok {
		return nil, fmt.Errorf("insert after %s: %w", *afterID, models.ErrUnknownRecord)
	}
	predID := pred.RecordID()
	succ := pred.Next()

	plan := Plan{
		{ID: id, Prev: &predID, Next: succ, SetPrev: true, SetNext: true},
		{ID: predID, Next: &id, SetNext: true},
	}
	if succ != nil {
		plan = append(plan, LinkChange{ID: *succ, Prev: &id, SetPrev: true})
	}
	return plan, nil
}

// Unlink computes the splice that removes the record from its chain,
// pointing its former neighbors at each other.
func Unlink(p Partition, id string) (Plan, error) {
	rec, ok := p[id]
	if !ok {
		return nil, fmt.Errorf("unlink %s: %w", id, models.ErrUnknownRecord)
	}

	prev, next := rec.Prev(), rec.Next()
	var plan Plan
	if prev != nil {
		plan = append(plan, LinkChange{ID: *prev, Next: next, SetNext: true})
	}
	if next != nil {
		plan = append(plan, LinkChange{ID: *next, Prev: prev, SetPrev: true})
	}
	// Clear the removed record's own pointers so a stale backup or a
	// later re-insert never sees dangling neighbor IDs.
	plan = append(plan, LinkChange{ID: id, Prev: nil, Next: nil, SetPrev: true, SetNext: true})
	return plan, nil
}

// Move computes the combined splice for relocating a record from src to a
// position in dst (directly after afterID, nil = head). src and dst may be
// the same partition. A move that would leave the record exactly where it
// already is returns an empty plan.
//
// The caller owns the record's partition-key field; Move only rewrites
// links. For a cross-partition move the record must be present in src and
// will be linked into dst's chain by the returned plan.
func Move(src, dst Partition, id string, afterID *string) (Plan, error) {
	rec, ok := src[id]
	if !ok {
		return nil, fmt.Errorf("move %s: %w", id, models.ErrUnknownRecord)
	}

	samePartition := isSamePartition(src, dst)
	if samePartition && isNoopMove(rec, afterID) {
		return nil, nil
	}
	if afterID != nil && *afterID == id {
		return nil, fmt.Errorf("move %s: cannot insert a record after itself", id)
	}

	unlinkPlan, err := Unlink(src, id)
	if err != nil {
		return nil, err
	}

	// Compute the insert against the destination as it will look after
	// the unlink: same membership (minus the moving record for the
	// same-partition case), with the unlink's pointer rewrites in force.
	shadow := shadowPartition(dst, id, unlinkPlan)
	insertPlan, err := insertShadow(shadow, rec, afterID)
	if err != nil {
		return nil, err
	}

	return append(unlinkPlan, insertPlan...), nil
}

// isNoopMove reports whether the record already sits directly after
// afterID (or at the head, when afterID is nil).
func isNoopMove(rec models.Chained, afterID *string) bool {
	prev := rec.Prev()
	if afterID == nil {
		return prev == nil
	}
	return prev != nil && *prev == *afterID
}

func isSamePartition(src, dst Partition) bool {
	if len(src) != len(dst) {
		return false
	}
	for id := range src {
		if _, ok := dst[id]; !ok {
			return false
		}
	}
	return len(src) > 0
}

// shadowRecord is a throwaway link holder used to evaluate an insert
// against a partition state that has pending, not-yet-applied changes.
type shadowRecord struct {
	id   string
	key  string
	prev *string
	next *string
}

func (s *shadowRecord) RecordID() string     { return s.id }
func (s *shadowRecord) PartitionKey() string { return s.key }
func (s *shadowRecord) Prev() *string        { return s.prev }
func (s *shadowRecord) Next() *string        { return s.next }
func (s *shadowRecord) SetPrev(id *string)   { s.prev = id }
func (s *shadowRecord) SetNext(id *string)   { s.next = id }

// shadowPartition copies dst's link state (minus movingID) and overlays the
// pending plan so Insert sees the post-unlink chain.
func shadowPartition(dst Partition, movingID string, pending Plan) Partition {
	shadow := make(Partition, len(dst))
	for id, rec := range dst {
		if id == movingID {
			continue
		}
		shadow[id] = &shadowRecord{
			id:   id,
			key:  rec.PartitionKey(),
			prev: rec.Prev(),
			next: rec.Next(),
		}
	}
	for _, ch := range pending {
		rec, ok := shadow[ch.ID]
		if !ok {
			continue
		}
		if ch.SetPrev {
			rec.SetPrev(ch.Prev)
		}
		if ch.SetNext {
			rec.SetNext(ch.Next)
		}
	}
	return shadow
}

// insertShadow runs Insert for a record that is not a member of the shadow
// partition yet.
func insertShadow(shadow Partition, rec models.Chained, afterID *string) (Plan, error) {
	id := rec.RecordID()
	shadow[id] = &shadowRecord{id: id, key: rec.PartitionKey()}
	return Insert(shadow, id, afterID)
}

// Linearize walks the partition from its head via next pointers and
// returns the visitation order. It fails with BrokenChainError when the
// walk cycles (guarded at count+1 steps), ends before visiting every
// member, or the head cannot be determined.
func Linearize(p Partition) ([]models.Chained, error) {
	if len(p) == 0 {
		return nil, nil
	}

	head, err := Head(p)
	if err != nil {
		return nil, err
	}

	ordered := make([]models.Chained, 0, len(p))
	visited := make(map[string]bool, len(p))
	cur := head

	for steps := 0; cur != nil; steps++ {
		if steps > len(p) {
			return nil, &BrokenChainError{Reason: "cycle detected", RecordID: cur.RecordID()}
		}
		id := cur.RecordID()
		if visited[id] {
			return nil, &BrokenChainError{Reason: "cycle detected", RecordID: id}
		}
		visited[id] = true
		ordered = append(ordered, cur)

		nextID := cur.Next()
		if nextID == nil {
			break
		}
		next, ok := p[*nextID]
		if !ok {
			return nil, &BrokenChainError{Reason: "next points outside partition", RecordID: id}
		}
		cur = next
	}

	if len(ordered) != len(p) {
		return nil, &BrokenChainError{
			Reason: fmt.Sprintf("traversal visited %d of %d members", len(ordered), len(p)),
		}
	}
	return ordered, nil
}

// delete1 returns p without the given ID, copying only when needed.
func delete1(p Partition, id string) Partition {
	if _, ok := p[id]; !ok {
		return p
	}
	out := make(Partition, len(p)-1)
	for k, v := range p {
		if k != id {
			out[k] = v
		}
	}
	return out
}
