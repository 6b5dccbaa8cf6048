// Package ownedbst implements an unbalanced binary search tree set in which
// every node exclusively owns its two subtrees.
//
// Structural edits never share a subtree between two parents: removal detaches
// a child from its slot, recurses into it and reattaches whatever replacement
// the recursion produced, so a subtree is always held either by the caller or
// by exactly one slot.
package ownedbst

import (
	"cmp"
	"fmt"
	"iter"
	"strings"
)

const (
	left  = 0
	right = 1
)

type node[T any] struct {
	elem     T
	children [2]*node[T]
}

func newNode[T any](elem T) *node[T] {
	return &node[T]{elem: elem}
}

// Set is an ordered set backed by an owned-node BST. The zero value is not
// usable; construct with New or NewFunc.
type Set[T any] struct {
	root    *node[T]
	compare func(a, b T) int
	count   int
}

// New creates an empty set ordered by cmp.Compare.
func New[T cmp.Ordered]() *Set[T] {
	return NewFunc[T](cmp.Compare[T])
}

// NewFunc creates an empty set ordered by compare, which must define a total order.
func NewFunc[T any](compare func(a, b T) int) *Set[T] {
	return &Set[T]{compare: compare}
}

// Len returns the number of elements in the set.
func (set *Set[T]) Len() int {
	return set.count
}

// branch returns the child slot elem belongs in relative to nd, or -1 on a match.
func (set *Set[T]) branch(nd *node[T], elem T) int {
	switch c := set.compare(elem, nd.elem); {
	case c < 0:
		return left
	case c > 0:
		return right
	default:
		return -1
	}
}

// Insert adds elem and reports whether it was absent.
func (set *Set[T]) Insert(elem T) bool {
	if set.root == nil {
		set.root = newNode(elem)
		set.count++

		return true
	}

	cursor := set.root

	for {
		dir := set.branch(cursor, elem)
		if dir < 0 {
			return false
		}

		child := cursor.children[dir]
		if child == nil {
			cursor.children[dir] = newNode(elem)
			set.count++

			return true
		}

		cursor = child
	}
}

// Contains reports whether elem is in the set.
func (set *Set[T]) Contains(elem T) bool {
	for cursor := set.root; cursor != nil; {
		dir := set.branch(cursor, elem)
		if dir < 0 {
			return true
		}

		cursor = cursor.children[dir]
	}

	return false
}

// Remove deletes elem and reports whether it was present.
func (set *Set[T]) Remove(elem T) bool {
	if set.root == nil {
		return false
	}

	root := set.root
	set.root = nil

	replacement, removed := set.remove(root, elem)
	set.root = replacement

	if removed {
		set.count--
	}

	return removed
}

// remove consumes nd and returns the subtree that takes its place.
func (set *Set[T]) remove(nd *node[T], elem T) (*node[T], bool) {
	dir := set.branch(nd, elem)
	if dir >= 0 {
		child := nd.children[dir]
		if child == nil {
			return nd, false
		}

		nd.children[dir] = nil
		replacement, removed := set.remove(child, elem)
		nd.children[dir] = replacement

		return nd, removed
	}

	lhs, rhs := nd.children[left], nd.children[right]
	nd.children = [2]*node[T]{}

	switch {
	case lhs == nil && rhs == nil:
		return nil, true
	case rhs == nil:
		return lhs, true
	case lhs == nil:
		return rhs, true
	}

	newRight, successor := detachLeftmost(rhs)
	replacement := newNode(successor)
	replacement.children[left] = lhs
	replacement.children[right] = newRight

	return replacement, true
}

// detachLeftmost consumes nd, unlinks its minimum node and returns what
// remains of the subtree together with the minimum element.
func detachLeftmost[T any](nd *node[T]) (*node[T], T) {
	lhs := nd.children[left]
	if lhs == nil {
		rest := nd.children[right]
		nd.children[right] = nil

		return rest, nd.elem
	}

	nd.children[left] = nil
	rest, elem := detachLeftmost(lhs)
	nd.children[left] = rest

	return nd, elem
}

// Clear removes every element.
func (set *Set[T]) Clear() {
	set.root = nil
	set.count = 0
}

// All returns an ascending single-pass sequence over the set.
func (set *Set[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		it := set.Iter()

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

	if set.root == nil {
		sb.WriteString("()")

		return sb.String()
	}

	dumpNode(&sb, set.root)

	return sb.String()
}

func dumpNode[T any](sb *strings.Builder, nd *node[T]) {
	if nd == nil {
		sb.WriteString("_")

		return
	}

	if nd.children[left] == nil && nd.children[right] == nil {
		fmt.Fprint(sb, nd.elem)

		return
	}

	sb.WriteString("(")
	fmt.Fprint(sb, nd.elem)
	sb.WriteString(" ")
	dumpNode(sb, nd.children[left])
	sb.WriteString(" ")
	dumpNode(sb, nd.children[right])
	sb.WriteString(")")
}
