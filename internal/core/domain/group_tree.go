package domain

import (
	"fmt"
	"sort"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/shopspring/decimal"
)

// GroupTree is an in-memory view of a business's account groups. Nodes are
// keyed by id and hold only a parent reference; children are looked up
// through an index built once at construction.
type GroupTree struct {
	groups   map[int64]AccountGroup
	children map[int64][]int64
	roots    []int64
	byKey    map[string]int64
}

// NewGroupTree indexes groups and rejects dangling parents and cycles.
func NewGroupTree(groups []AccountGroup) (*GroupTree, error) {
	t := &GroupTree{
		groups:   make(map[int64]AccountGroup, len(groups)),
		children: make(map[int64][]int64),
		byKey:    make(map[string]int64),
	}
	for _, g := range groups {
		t.groups[g.ID] = g
		if g.SystemKey != "" {
			t.byKey[g.SystemKey] = g.ID
		}
	}
	for _, g := range groups {
		if g.ParentID == nil {
			t.roots = append(t.roots, g.ID)
			continue
		}
		if _, ok := t.groups[*g.ParentID]; !ok {
			return nil, fmt.Errorf("%w: group %d references missing parent %d", apperrors.ErrInvalidHierarchy, g.ID, *g.ParentID)
		}
		t.children[*g.ParentID] = append(t.children[*g.ParentID], g.ID)
	}
	t.sortIDs(t.roots)
	for _, ids := range t.children {
		t.sortIDs(ids)
	}
	for id := range t.groups {
		if t.hasCycle(id) {
			return nil, fmt.Errorf("%w: group %d is part of a cycle", apperrors.ErrInvalidHierarchy, id)
		}
	}
	return t, nil
}

func (t *GroupTree) sortIDs(ids []int64) {
	sort.Slice(ids, func(i, j int) bool {
		a, b := t.groups[ids[i]], t.groups[ids[j]]
		if a.Sequence != b.Sequence {
			return a.Sequence < b.Sequence
		}
		return a.ID < b.ID
	})
}

func (t *GroupTree) hasCycle(id int64) bool {
	steps := 0
	for cur := t.groups[id].ParentID; cur != nil; cur = t.groups[*cur].ParentID {
		if *cur == id || steps > len(t.groups) {
			return true
		}
		steps++
	}
	return false
}

// Get returns the group with the given id.
func (t *GroupTree) Get(id int64) (AccountGroup, bool) {
	g, ok := t.groups[id]
	return g, ok
}

// BySystemKey returns the seeded group carrying key.
func (t *GroupTree) BySystemKey(key string) (AccountGroup, bool) {
	id, ok := t.byKey[key]
	if !ok {
		return AccountGroup{}, false
	}
	return t.groups[id], true
}

// Roots returns the top-level groups ordered by sequence.
func (t *GroupTree) Roots() []AccountGroup {
	return t.collect(t.roots)
}

// Children returns the direct children of id ordered by sequence.
func (t *GroupTree) Children(id int64) []AccountGroup {
	return t.collect(t.children[id])
}

func (t *GroupTree) collect(ids []int64) []AccountGroup {
	out := make([]AccountGroup, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.groups[id])
	}
	return out
}

// IsAncestor reports whether ancestor lies on the path from id to its root.
func (t *GroupTree) IsAncestor(ancestor, id int64) bool {
	for cur := t.groups[id].ParentID; cur != nil; cur = t.groups[*cur].ParentID {
		if *cur == ancestor {
			return true
		}
	}
	return false
}

// ValidateParent checks that id may hang under parentID without creating a
// cycle. A nil parentID makes id a root.
func (t *GroupTree) ValidateParent(id int64, parentID *int64) error {
	if parentID == nil {
		return nil
	}
	if _, ok := t.groups[*parentID]; !ok {
		return fmt.Errorf("%w: parent group %d", apperrors.ErrNotFound, *parentID)
	}
	if *parentID == id || t.IsAncestor(id, *parentID) {
		return fmt.Errorf("%w: moving group %d under %d would create a cycle", apperrors.ErrInvalidHierarchy, id, *parentID)
	}
	return nil
}

// Subtree returns id and all of its descendants in depth-first order.
func (t *GroupTree) Subtree(id int64) []int64 {
	out := []int64{id}
	for _, child := range t.children[id] {
		out = append(out, t.Subtree(child)...)
	}
	return out
}

// Walk visits every group depth-first, parents before children.
func (t *GroupTree) Walk(fn func(g AccountGroup, depth int)) {
	var visit func(id int64, depth int)
	visit = func(id int64, depth int) {
		fn(t.groups[id], depth)
		for _, child := range t.children[id] {
			visit(child, depth+1)
		}
	}
	for _, id := range t.roots {
		visit(id, 0)
	}
}

// Rollup sums balances up the tree. direct holds, per group, the total of
// the ledger accounts placed directly in it, signed in that group's nature.
// The result holds every group's total including descendants, each signed
// in its own group's nature.
func (t *GroupTree) Rollup(direct map[int64]decimal.Decimal) map[int64]decimal.Decimal {
	totals := make(map[int64]decimal.Decimal, len(t.groups))
	var sum func(id int64) decimal.Decimal
	sum = func(id int64) decimal.Decimal {
		g := t.groups[id]
		total := direct[id]
		for _, child := range t.children[id] {
			total = total.Add(ConvertSign(sum(child), t.groups[child].Nature, g.Nature))
		}
		totals[id] = total
		return total
	}
	for _, id := range t.roots {
		sum(id)
	}
	return totals
}

// NatureTotal sums the totals of the root groups of the given nature. It
// returns nil when the business has no root group of that nature.
func (t *GroupTree) NatureTotal(totals map[int64]decimal.Decimal, nature Nature, filter func(AccountGroup) bool) *decimal.Decimal {
	var out *decimal.Decimal
	for _, id := range t.roots {
		g := t.groups[id]
		if g.Nature != nature || (filter != nil && !filter(g)) {
			continue
		}
		if out == nil {
			zero := decimal.Zero
			out = &zero
		}
		v := out.Add(totals[id])
		out = &v
	}
	return out
}
