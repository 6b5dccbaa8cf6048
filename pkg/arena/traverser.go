package arena

// Traverser is a movable read position inside a tree. It keeps a read guard
// on every node from the root down to its current node, so the path back up
// is known without parent links and cannot be restructured underneath it.
type Traverser[T any] struct {
	path   []traverseFrame[T]
	closed bool
}

type traverseFrame[T any] struct {
	guard  *ReadGuard[T]
	branch int // branch taken from the parent; -1 for the root
}

// Traverse starts a traverser at the root, or returns false if the tree is empty.
func (tree *Tree[T]) Traverse() (*Traverser[T], bool) {
	root, ok := tree.ReadRoot()
	if !ok {
		return nil, false
	}

	return &Traverser[T]{path: []traverseFrame[T]{{guard: root, branch: -1}}}, true
}

func (trav *Traverser[T]) top() traverseFrame[T] {
	if trav.closed {
		fault(ErrGuardReleased, "traverser is closed")
	}

	return trav.path[len(trav.path)-1]
}

// Elem returns the element at the current position.
func (trav *Traverser[T]) Elem() T {
	return trav.top().guard.Elem()
}

// HasChild reports whether the current node has a child in branch.
func (trav *Traverser[T]) HasChild(branch int) bool {
	curr := trav.top().guard
	curr.check()
	checkBranch(branch)

	return curr.tree.alloc.node(curr.id).children[branch] != nilNode
}

// SeekChild moves to the child in branch. It returns false, without moving,
// if that slot is empty.
func (trav *Traverser[T]) SeekChild(branch int) bool {
	child, ok := trav.top().guard.Child(branch)
	if !ok {
		return false
	}

	trav.path = append(trav.path, traverseFrame[T]{guard: child, branch: branch})

	return true
}

// SeekParent moves one level up. It returns false, without moving, at the root.
func (trav *Traverser[T]) SeekParent() bool {
	curr := trav.top()
	if len(trav.path) == 1 {
		return false
	}

	curr.guard.Release()
	trav.path[len(trav.path)-1] = traverseFrame[T]{}
	trav.path = trav.path[:len(trav.path)-1]

	return true
}

// BranchIndex returns the branch through which the current node hangs from
// its parent, or false at the root.
func (trav *Traverser[T]) BranchIndex() (int, bool) {
	curr := trav.top()
	if curr.branch < 0 {
		return 0, false
	}

	return curr.branch, true
}

// Depth returns the number of edges between the root and the current node.
func (trav *Traverser[T]) Depth() int {
	return len(trav.path) - 1
}

// Close releases every read guard held by the traverser. Closing twice is a no-op.
func (trav *Traverser[T]) Close() {
	if trav.closed {
		return
	}

	for idx := len(trav.path) - 1; idx >= 0; idx-- {
		trav.path[idx].guard.Release()
	}

	trav.path = nil
	trav.closed = true
}
