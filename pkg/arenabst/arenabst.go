// Package arenabst implements an unbalanced binary search tree set whose nodes
// live in an arena and are only ever touched through scoped guards.
//
// Insert walks down with write guards, Contains with read guards handed over
// from parent to child, and Remove detaches the path it edits as owned guards
// so that a subtree is, at any instant, held either by a slot or by exactly one
// guard.
package arenabst

import (
	"cmp"
	"fmt"
	"iter"
	"strings"

	"github.com/Sumatoshi-tech/bstset/pkg/arena"
)

const (
	left  = 0
	right = 1
)

// Set is an ordered set backed by an arena BST.
type Set[T any] struct {
	tree    *arena.Tree[T]
	compare func(a, b T) int
}

// New creates an empty set ordered by cmp.Compare, with its own allocator.
func New[T cmp.Ordered]() *Set[T] {
	return NewFunc[T](cmp.Compare[T])
}

// NewFunc creates an empty set ordered by compare, with its own allocator.
func NewFunc[T any](compare func(a, b T) int) *Set[T] {
	return NewWithAllocator(arena.NewAllocator[T](), compare)
}

// NewWithAllocator creates an empty set that allocates its nodes into alloc,
// which may be shared with other sets.
func NewWithAllocator[T any](alloc *arena.Allocator[T], compare func(a, b T) int) *Set[T] {
	return &Set[T]{tree: arena.NewTree(alloc), compare: compare}
}

// Allocator returns the node allocator backing the set.
func (set *Set[T]) Allocator() *arena.Allocator[T] {
	return set.tree.Allocator()
}

// Len returns the number of elements in the set.
func (set *Set[T]) Len() int {
	return set.tree.Len()
}

// Clear frees every node of the set.
func (set *Set[T]) Clear() {
	set.tree.Clear()
}

// Hibernate compresses the backing allocator; see arena.Allocator.Hibernate.
func (set *Set[T]) Hibernate() error {
	return set.tree.Allocator().Hibernate() //nolint:wrapcheck // thin delegation.
}

// Boot restores the backing allocator after Hibernate.
func (set *Set[T]) Boot() error {
	return set.tree.Allocator().Boot() //nolint:wrapcheck // thin delegation.
}

func (set *Set[T]) branch(nodeElem, elem T) int {
	switch c := set.compare(elem, nodeElem); {
	case c < 0:
		return left
	case c > 0:
		return right
	default:
		return -1
	}
}

// must turns a failed reattachment into a panic: given the tree invariants it
// can only happen through a bug in this package.
func must(err error) {
	if err != nil {
		panic(fmt.Errorf("arenabst: restructure: %w", err))
	}
}

// Insert adds elem and reports whether it was absent.
func (set *Set[T]) Insert(elem T) bool {
	op := set.tree.Begin()
	defer op.End()

	curr, ok := op.WriteRoot()
	if !ok {
		must(op.PutRootElem(elem))

		return true
	}

	for {
		dir := set.branch(curr.Elem(), elem)
		if dir < 0 {
			return false
		}

		child, ok := curr.BorrowChildWrite(dir)
		if !ok {
			must(curr.PutChildElem(dir, elem))

			return true
		}

		curr = child
	}
}

// Contains reports whether elem is in the set.
func (set *Set[T]) Contains(elem T) bool {
	curr, ok := set.tree.ReadRoot()
	if !ok {
		return false
	}

	for {
		dir := set.branch(curr.Elem(), elem)
		if dir < 0 {
			curr.Release()

			return true
		}

		child, ok := curr.Child(dir)
		curr.Release()

		if !ok {
			return false
		}

		curr = child
	}
}

// Remove deletes elem and reports whether it was present.
func (set *Set[T]) Remove(elem T) bool {
	op := set.tree.Begin()
	defer op.End()

	root, ok := op.TakeRoot()
	if !ok {
		return false
	}

	replacement, removed := set.removeNode(op, root, elem)
	if replacement != nil {
		must(op.PutRootTree(replacement))
	}

	return removed
}

// removeNode consumes the detached nd and returns the detached subtree that
// takes its place, or nil if the position becomes empty.
func (set *Set[T]) removeNode(op *arena.Op[T], nd *arena.OwnedGuard[T], elem T) (*arena.OwnedGuard[T], bool) {
	dir := set.branch(nd.Elem(), elem)
	if dir >= 0 {
		child, ok := nd.TakeChild(dir)
		if !ok {
			return nd, false
		}

		replacement, removed := set.removeNode(op, child, elem)
		if replacement != nil {
			must(nd.PutChildTree(dir, replacement))
		}

		return nd, removed
	}

	lhs, hasLeft := nd.TakeChild(left)
	rhs, hasRight := nd.TakeChild(right)
	nd.Free()

	switch {
	case !hasLeft && !hasRight:
		return nil, true
	case !hasRight:
		return lhs, true
	case !hasLeft:
		return rhs, true
	}

	newRight, successor := detachLeftmost(rhs)

	replacement := op.NewDetached(successor)
	must(replacement.PutChildTree(left, lhs))

	if newRight != nil {
		must(replacement.PutChildTree(right, newRight))
	}

	return replacement, true
}

// detachLeftmost consumes nd, frees its minimum node and returns what remains
// of the subtree together with the minimum element.
func detachLeftmost[T any](nd *arena.OwnedGuard[T]) (*arena.OwnedGuard[T], T) {
	lhs, ok := nd.TakeChild(left)
	if ok {
		rest, elem := detachLeftmost(lhs)
		if rest != nil {
			must(nd.PutChildTree(left, rest))
		}

		return nd, elem
	}

	rest, _ := nd.TakeChild(right)

	return rest, nd.IntoElem()
}

// All returns an ascending single-pass sequence over the set. The read guards
// it holds are released when the sequence ends or the consumer stops early.
func (set *Set[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		it := set.Iter()
		defer it.Close()

		for {
			elem, ok := it.Next()
			if !ok || !yield(elem) {
				return
			}
		}
	}
}

// Dump renders the tree shape as an S-expression, e.g. "(7 (3 1 4) (8 _ 9))".
func (set *Set[T]) Dump() string {
	var sb strings.Builder

	root, ok := set.tree.ReadRoot()
	if !ok {
		sb.WriteString("()")

		return sb.String()
	}

	dumpNode(&sb, root)

	return sb.String()
}

func dumpNode[T any](sb *strings.Builder, guard *arena.ReadGuard[T]) {
	defer guard.Release()

	lhs, hasLeft := guard.Child(left)
	rhs, hasRight := guard.Child(right)

	if !hasLeft && !hasRight {
		fmt.Fprint(sb, guard.Elem())

		return
	}

	sb.WriteString("(")
	fmt.Fprint(sb, guard.Elem())

	for _, child := range []*arena.ReadGuard[T]{lhs, rhs} {
		sb.WriteString(" ")

		if child == nil {
			sb.WriteString("_")

			continue
		}

		dumpNode(sb, child)
	}

	sb.WriteString(")")
}
