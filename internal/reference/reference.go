// Package reference wraps production B-tree libraries as trusted ordered sets.
// The cross-check harness compares the BST engines against them, and the bench
// harness uses them as baselines.
package reference

import (
	"cmp"
	"iter"

	googlebtree "github.com/google/btree"
	tidwallbtree "github.com/tidwall/btree"
)

// btreeDegree is the node degree used for the google/btree reference.
const btreeDegree = 32

// tidwallDegree matches the degree anacrolix uses for its request ordering.
const tidwallDegree = 64

// BTree is an ordered set backed by github.com/google/btree.
type BTree[T cmp.Ordered] struct {
	tree *googlebtree.BTreeG[T]
}

// NewBTree creates an empty google/btree reference set.
func NewBTree[T cmp.Ordered]() *BTree[T] {
	return &BTree[T]{tree: googlebtree.NewG[T](btreeDegree, cmp.Less[T])}
}

// Insert adds elem and reports whether it was absent.
func (b *BTree[T]) Insert(elem T) bool {
	_, replaced := b.tree.ReplaceOrInsert(elem)

	return !replaced
}

// Remove deletes elem and reports whether it was present.
func (b *BTree[T]) Remove(elem T) bool {
	_, removed := b.tree.Delete(elem)

	return removed
}

// Contains reports whether elem is in the set.
func (b *BTree[T]) Contains(elem T) bool {
	return b.tree.Has(elem)
}

// All returns an ascending sequence over the set.
func (b *BTree[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		b.tree.Ascend(func(item T) bool { return yield(item) })
	}
}

// Len returns the number of elements.
func (b *BTree[T]) Len() int {
	return b.tree.Len()
}

// Tidwall is an ordered set backed by github.com/tidwall/btree.
type Tidwall[T cmp.Ordered] struct {
	tree *tidwallbtree.BTreeG[T]
	hint tidwallbtree.PathHint
}

// NewTidwall creates an empty tidwall/btree reference set.
func NewTidwall[T cmp.Ordered]() *Tidwall[T] {
	return &Tidwall[T]{
		tree: tidwallbtree.NewBTreeGOptions(cmp.Less[T], tidwallbtree.Options{NoLocks: true, Degree: tidwallDegree}),
	}
}

// Insert adds elem and reports whether it was absent.
func (tw *Tidwall[T]) Insert(elem T) bool {
	_, replaced := tw.tree.SetHint(elem, &tw.hint)

	return !replaced
}

// Remove deletes elem and reports whether it was present.
func (tw *Tidwall[T]) Remove(elem T) bool {
	_, deleted := tw.tree.DeleteHint(elem, &tw.hint)

	return deleted
}

// Contains reports whether elem is in the set.
func (tw *Tidwall[T]) Contains(elem T) bool {
	_, ok := tw.tree.GetHint(elem, &tw.hint)

	return ok
}

// All returns an ascending sequence over the set.
func (tw *Tidwall[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		tw.tree.Scan(yield)
	}
}

// Len returns the number of elements.
func (tw *Tidwall[T]) Len() int {
	return tw.tree.Len()
}
