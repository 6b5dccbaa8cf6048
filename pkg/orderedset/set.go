// Package orderedset defines the capability contract shared by every ordered-set
// backend in bstset: the owned-node BST, the arena BST and the reference sets
// used to cross-validate them.
package orderedset

import "iter"

// Set is an ordered collection of unique elements.
//
// Implementations are not safe for concurrent use. A sequence returned by All
// reflects the set at the moment each element is produced; mutating the set
// while a sequence is being consumed is undefined.
type Set[T any] interface {
	// Insert adds elem. It returns true if elem was absent, false if an equal
	// element was already present, in which case the set is unchanged.
	Insert(elem T) bool

	// Remove deletes elem. It returns true if elem was present.
	Remove(elem T) bool

	// Contains reports whether an element equal to elem is present.
	Contains(elem T) bool

	// All returns a fresh single-pass sequence of the elements in ascending order.
	All() iter.Seq[T]
}

// Factory constructs an empty Set.
type Factory[T any] func() Set[T]

// Sizer is implemented by sets that track their element count.
type Sizer interface {
	Len() int
}

// Dumper is implemented by sets that can render their internal shape for diagnostics.
type Dumper interface {
	Dump() string
}

// Collect drains one All sequence of set into a slice.
func Collect[T any](set Set[T]) []T {
	var elems []T

	for elem := range set.All() {
		elems = append(elems, elem)
	}

	return elems
}
