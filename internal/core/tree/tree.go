// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package tree implements the self-referential hierarchy primitive shared by
categories, pages, menu items and comment threads.

Nodes live in an arena indexed by id and point to their parent by id, never by
owning pointer. Every traversal carries an explicit visited-id set, so a
corrupted dataset that contains a parent cycle terminates with a
CYCLE_DETECTED error instead of looping.

# Core Responsibility

  - Ordering: Direct children sorted by sort order, ties by insertion order.
  - Traversal: Descendants (pre-order DFS) and ancestor chains.
  - Navigation: Breadcrumbs (root → leaf) and nested branches.
  - Mutation: Cycle-safe reparenting and cascading removal.

A [Forest] is a snapshot. It tracks structure only; callers persist changes
(new parent, removed ids) through their own repositories.
*/
package tree

import (
	"cmp"
	"slices"

	"github.com/taibuivan/yomira-cms/internal/platform/apperr"
)

// # Node Contract

// Item is implemented by every entity stored in a [Forest].
type Item interface {
	// TreeKey returns the node id.
	TreeKey() string
	// TreeParent returns the parent id, or nil for a root.
	TreeParent() *string
	// TreeOrder returns the sibling sort order.
	TreeOrder() int
	// TreeLabel returns the display name and slug used in breadcrumbs.
	TreeLabel() (name, slug string)
}

// Crumb is one breadcrumb segment.
type Crumb struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Branch is a node together with its nested children.
type Branch[T Item] struct {
	Value    T           `json:"item"`
	Children []Branch[T] `json:"children"`
}

// entry holds the structural view of a node, kept apart from the value so
// reparenting never mutates caller-owned data.
type entry[T Item] struct {
	value  T
	parent *string
	seq    int
}

// # Forest

// Forest is an arena of nodes indexed by id.
//
// # Concurrency
//
// Forest is not safe for concurrent mutation. Build one per operation.
type Forest[T Item] struct {
	entries  map[string]*entry[T]
	children map[string][]string
	nextSeq  int
}

// rootKey indexes nodes without a parent in the children map.
const rootKey = ""

// New builds a forest from a persisted snapshot.
//
// The input order defines the insertion order used to break sort-order ties.
// Corrupted parent links are accepted here and reported by the traversals.
func New[T Item](items []T) *Forest[T] {
	forest := &Forest[T]{
		entries:  make(map[string]*entry[T], len(items)),
		children: make(map[string][]string),
	}
	for _, item := range items {
		forest.Add(item)
	}
	return forest
}

// Add inserts or replaces a node. A replaced node keeps its insertion rank.
func (f *Forest[T]) Add(item T) {
	id := item.TreeKey()
	parent := cloneID(item.TreeParent())

	if existing, ok := f.entries[id]; ok {
		f.unlink(id, existing.parent)
		existing.value = item
		existing.parent = parent
		f.link(id, parent)
		return
	}

	f.entries[id] = &entry[T]{value: item, parent: parent, seq: f.nextSeq}
	f.nextSeq++
	f.link(id, parent)
}

// Len returns the number of nodes.
func (f *Forest[T]) Len() int { return len(f.entries) }

// Get returns the node with the given id.
func (f *Forest[T]) Get(id string) (T, bool) {
	e, ok := f.entries[id]
	if !ok {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Parent returns the structural parent id of a node (nil for roots).
func (f *Forest[T]) Parent(id string) (*string, bool) {
	e, ok := f.entries[id]
	if !ok {
		return nil, false
	}
	return cloneID(e.parent), true
}

// # Ordering

// Roots returns the nodes without a parent, ordered like siblings.
func (f *Forest[T]) Roots() []T {
	return f.values(f.sortedChildren(rootKey))
}

// Children returns the direct children of a node ordered by sort order
// ascending, ties broken by insertion order.
func (f *Forest[T]) Children(id string) ([]T, error) {
	if _, ok := f.entries[id]; !ok {
		return nil, apperr.NotFound("Node")
	}
	return f.values(f.sortedChildren(id)), nil
}

// # Traversal

// Descendants returns every node below id in depth-first pre-order.
//
// A node reached twice means the parent links contain a cycle; the traversal
// stops with CYCLE_DETECTED rather than looping.
func (f *Forest[T]) Descendants(id string) ([]T, error) {
	ids, err := f.descendantIDs(id)
	if err != nil {
		return nil, err
	}
	return f.values(ids), nil
}

// Ancestors returns the parent chain of id, nearest parent first.
//
// The chain ends at a root or at a parent id that is absent from the
// snapshot. A revisited id fails with CYCLE_DETECTED.
func (f *Forest[T]) Ancestors(id string) ([]T, error) {
	current, ok := f.entries[id]
	if !ok {
		return nil, apperr.NotFound("Node")
	}

	visited := map[string]struct{}{id: {}}
	var chain []T

	for parent := current.parent; parent != nil; {
		if _, seen := visited[*parent]; seen {
			return nil, apperr.CycleDetected(*parent)
		}
		visited[*parent] = struct{}{}

		next, ok := f.entries[*parent]
		if !ok {
			break
		}
		chain = append(chain, next.value)
		parent = next.parent
	}

	return chain, nil
}

// Breadcrumb returns the ordered root → leaf trail ending at id.
func (f *Forest[T]) Breadcrumb(id string) ([]Crumb, error) {
	ancestors, err := f.Ancestors(id)
	if err != nil {
		return nil, err
	}

	crumbs := make([]Crumb, 0, len(ancestors)+1)
	for i := len(ancestors) - 1; i >= 0; i-- {
		crumbs = append(crumbs, crumbOf(ancestors[i]))
	}

	self := f.entries[id].value
	return append(crumbs, crumbOf(self)), nil
}

// IsAncestorOf reports whether b appears in a's descendant set.
//
// It walks b's parent chain, which visits the same relation in O(depth). A
// node is not its own ancestor.
func (f *Forest[T]) IsAncestorOf(a, b string) (bool, error) {
	if _, ok := f.entries[a]; !ok {
		return false, apperr.NotFound("Node")
	}

	ancestors, err := f.Ancestors(b)
	if err != nil {
		return false, err
	}

	for _, ancestor := range ancestors {
		if ancestor.TreeKey() == a {
			return true, nil
		}
	}
	return false, nil
}

// Depth returns the number of ancestors of id (0 for a root).
func (f *Forest[T]) Depth(id string) (int, error) {
	ancestors, err := f.Ancestors(id)
	if err != nil {
		return 0, err
	}
	return len(ancestors), nil
}

// Branches nests the subtree below parent (nil for the whole forest).
func (f *Forest[T]) Branches(parent *string) ([]Branch[T], error) {
	key := rootKey
	visited := make(map[string]struct{})

	if parent != nil {
		if _, ok := f.entries[*parent]; !ok {
			return nil, apperr.NotFound("Node")
		}
		key = *parent
		visited[key] = struct{}{}
	}

	return f.nest(key, visited)
}

// # Mutation

// Reparent moves id under parent (nil moves it to the root level).
//
// The move is rejected with INVALID_PARENT when parent is id itself or one of
// its descendants. Nothing is modified when an error is returned.
func (f *Forest[T]) Reparent(id string, parent *string) error {
	current, ok := f.entries[id]
	if !ok {
		return apperr.NotFound("Node")
	}

	if parent != nil {
		if *parent == id {
			return apperr.InvalidParent("A node cannot be its own parent")
		}
		if _, ok := f.entries[*parent]; !ok {
			return apperr.NotFound("Parent")
		}

		isCycle, err := f.IsAncestorOf(id, *parent)
		if err != nil {
			return err
		}
		if isCycle {
			return apperr.InvalidParent("A node cannot be moved under one of its descendants")
		}
	}

	f.unlink(id, current.parent)
	current.parent = cloneID(parent)
	f.link(id, current.parent)
	return nil
}

// Remove deletes id and its whole subtree, returning the removed ids in
// pre-order (id first).
func (f *Forest[T]) Remove(id string) ([]string, error) {
	descendants, err := f.descendantIDs(id)
	if err != nil {
		return nil, err
	}

	removed := append([]string{id}, descendants...)
	for _, key := range removed {
		f.unlink(key, f.entries[key].parent)
		delete(f.entries, key)
		delete(f.children, key)
	}
	return removed, nil
}

// # Internals

func (f *Forest[T]) descendantIDs(id string) ([]string, error) {
	if _, ok := f.entries[id]; !ok {
		return nil, apperr.NotFound("Node")
	}

	visited := map[string]struct{}{id: {}}
	var ordered []string

	// Explicit stack; children pushed in reverse so output stays pre-order.
	stack := reversed(f.sortedChildren(id))
	for len(stack) > 0 {
		next := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, seen := visited[next]; seen {
			return nil, apperr.CycleDetected(next)
		}
		visited[next] = struct{}{}
		ordered = append(ordered, next)

		stack = append(stack, reversed(f.sortedChildren(next))...)
	}

	return ordered, nil
}

func (f *Forest[T]) nest(key string, visited map[string]struct{}) ([]Branch[T], error) {
	ids := f.sortedChildren(key)
	branches := make([]Branch[T], 0, len(ids))

	for _, id := range ids {
		if _, seen := visited[id]; seen {
			return nil, apperr.CycleDetected(id)
		}
		visited[id] = struct{}{}

		children, err := f.nest(id, visited)
		if err != nil {
			return nil, err
		}
		branches = append(branches, Branch[T]{Value: f.entries[id].value, Children: children})
	}

	return branches, nil
}

func (f *Forest[T]) sortedChildren(key string) []string {
	ids := slices.Clone(f.children[key])
	slices.SortStableFunc(ids, func(a, b string) int {
		ea, eb := f.entries[a], f.entries[b]
		if c := cmp.Compare(ea.value.TreeOrder(), eb.value.TreeOrder()); c != 0 {
			return c
		}
		return cmp.Compare(ea.seq, eb.seq)
	})
	return ids
}

func (f *Forest[T]) link(id string, parent *string) {
	key := keyOf(parent)
	f.children[key] = append(f.children[key], id)
}

func (f *Forest[T]) unlink(id string, parent *string) {
	key := keyOf(parent)
	f.children[key] = slices.DeleteFunc(f.children[key], func(child string) bool {
		return child == id
	})
}

func (f *Forest[T]) values(ids []string) []T {
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, f.entries[id].value)
	}
	return out
}

func crumbOf[T Item](item T) Crumb {
	name, slug := item.TreeLabel()
	return Crumb{ID: item.TreeKey(), Name: name, Slug: slug}
}

func keyOf(parent *string) string {
	if parent == nil {
		return rootKey
	}
	return *parent
}

func cloneID(id *string) *string {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func reversed(ids []string) []string {
	slices.Reverse(ids)
	return ids
}
