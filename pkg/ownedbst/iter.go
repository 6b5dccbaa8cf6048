package ownedbst

// Iterator walks a Set in ascending order without recursion.
//
// The stack holds the nodes whose left subtree is being visited and whose own
// element has not been produced yet; its top is always the next element.
type Iterator[T any] struct {
	frames []*node[T]
}

// Iter returns an iterator positioned before the smallest element.
func (set *Set[T]) Iter() *Iterator[T] {
	it := &Iterator[T]{}
	it.seekLeftmost(set.root)

	return it
}

func (it *Iterator[T]) seekLeftmost(nd *node[T]) {
	for ; nd != nil; nd = nd.children[left] {
		it.frames = append(it.frames, nd)
	}
}

// Next returns the next element, or false once the iterator is exhausted.
func (it *Iterator[T]) Next() (T, bool) {
	if len(it.frames) == 0 {
		var zero T

		return zero, false
	}

	top := len(it.frames) - 1
	curr := it.frames[top]
	it.frames[top] = nil
	it.frames = it.frames[:top]

	it.seekLeftmost(curr.children[right])

	return curr.elem, true
}

// Close drops the iterator's remaining position.
func (it *Iterator[T]) Close() {
	clear(it.frames)
	it.frames = nil
}
