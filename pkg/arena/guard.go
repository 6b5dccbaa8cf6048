package arena

// ReadGuard is shared read access to one node. Any number of read guards may
// coexist on a node; none may coexist with a write or owned guard.
type ReadGuard[T any] struct {
	tree     *Tree[T]
	id       NodeID
	released bool
}

func acquireRead[T any](tree *Tree[T], id NodeID) *ReadGuard[T] {
	nd := tree.alloc.node(id)
	if nd.borrow < borrowIdle {
		fault(ErrBorrowConflict, "read on node #%d (borrow %d)", id, nd.borrow)
	}

	nd.borrow++

	return &ReadGuard[T]{tree: tree, id: id}
}

func (guard *ReadGuard[T]) check() {
	if guard.released {
		fault(ErrGuardReleased, "read guard on node #%d", guard.id)
	}
}

// Elem returns the node's element.
func (guard *ReadGuard[T]) Elem() T {
	guard.check()

	return guard.tree.alloc.node(guard.id).elem
}

// Child acquires a read guard on the child in branch, or returns false if the slot is empty.
func (guard *ReadGuard[T]) Child(branch int) (*ReadGuard[T], bool) {
	guard.check()
	checkBranch(branch)

	child := guard.tree.alloc.node(guard.id).children[branch]
	if child == nilNode {
		return nil, false
	}

	return acquireRead(guard.tree, child), true
}

// Release gives the read access back. Releasing twice is a no-op.
func (guard *ReadGuard[T]) Release() {
	if guard.released {
		return
	}

	guard.tree.alloc.node(guard.id).borrow--
	guard.released = true
}

// WriteGuard is exclusive access to one attached node. It lives until the
// owning Op ends or it is released.
type WriteGuard[T any] struct {
	op       *Op[T]
	id       NodeID
	released bool
}

func (guard *WriteGuard[T]) check() {
	if guard.released {
		fault(ErrGuardReleased, "write guard on node #%d", guard.id)
	}
}

// Elem returns the node's element.
func (guard *WriteGuard[T]) Elem() T {
	guard.check()

	return guard.op.tree.alloc.node(guard.id).elem
}

// BorrowChildWrite acquires a write guard on the child in branch, or returns
// false if the slot is empty.
func (guard *WriteGuard[T]) BorrowChildWrite(branch int) (*WriteGuard[T], bool) {
	guard.check()
	checkBranch(branch)

	child := guard.op.tree.alloc.node(guard.id).children[branch]
	if child == nilNode {
		return nil, false
	}

	return guard.op.acquireWrite(child), true
}

// PutChildElem allocates elem as a new leaf in the empty slot branch.
func (guard *WriteGuard[T]) PutChildElem(branch int, elem T) error {
	guard.check()
	checkBranch(branch)

	alloc := guard.op.tree.alloc
	if alloc.node(guard.id).children[branch] != nilNode {
		return ErrSlotOccupied
	}

	// malloc may move the storage; look the parent up again afterwards.
	child := alloc.malloc(elem)
	alloc.node(guard.id).children[branch] = child
	guard.op.tree.count++

	return nil
}

// Release gives the write access back before the operation ends.
func (guard *WriteGuard[T]) Release() {
	if guard.released {
		return
	}

	guard.op.tree.alloc.node(guard.id).borrow = borrowIdle
	guard.released = true
}

// OwnedGuard holds a node that has been detached from its slot, together with
// its subtree. The node exists only through the guard until it is attached to
// a slot again or freed.
type OwnedGuard[T any] struct {
	op       *Op[T]
	id       NodeID
	released bool
}

func (guard *OwnedGuard[T]) check() {
	if guard.released {
		fault(ErrGuardReleased, "owned guard on node #%d", guard.id)
	}
}

// ID returns the detached node's identifier.
func (guard *OwnedGuard[T]) ID() NodeID {
	return guard.id
}

// Elem returns the node's element.
func (guard *OwnedGuard[T]) Elem() T {
	guard.check()

	return guard.op.tree.alloc.node(guard.id).elem
}

// HasChild reports whether the slot branch is occupied.
func (guard *OwnedGuard[T]) HasChild(branch int) bool {
	guard.check()
	checkBranch(branch)

	return guard.op.tree.alloc.node(guard.id).children[branch] != nilNode
}

// TakeChild detaches the child in branch, or returns false if the slot is empty.
func (guard *OwnedGuard[T]) TakeChild(branch int) (*OwnedGuard[T], bool) {
	guard.check()
	checkBranch(branch)

	nd := guard.op.tree.alloc.node(guard.id)

	child := nd.children[branch]
	if child == nilNode {
		return nil, false
	}

	taken := guard.op.acquireOwned(child)
	nd.children[branch] = nilNode

	return taken, true
}

// PutChildTree attaches a detached subtree into the empty slot branch. On
// success the subtree's guard is consumed.
func (guard *OwnedGuard[T]) PutChildTree(branch int, subtree *OwnedGuard[T]) error {
	guard.check()
	subtree.check()
	checkBranch(branch)

	if subtree.id == guard.id {
		fault(ErrBorrowConflict, "node #%d cannot be its own child", guard.id)
	}

	nd := guard.op.tree.alloc.node(guard.id)
	if nd.children[branch] != nilNode {
		return ErrSlotOccupied
	}

	nd.children[branch] = subtree.id
	subtree.attach()

	return nil
}

// IntoElem frees the node and returns its element. Subtrees still attached to
// it are freed as well.
func (guard *OwnedGuard[T]) IntoElem() T {
	guard.check()

	elem := guard.Elem()
	guard.Free()

	return elem
}

// Free releases the node and its whole subtree back to the allocator.
func (guard *OwnedGuard[T]) Free() {
	guard.check()

	op := guard.op
	op.tree.count -= op.tree.alloc.freeSubtree(guard.id)
	op.owned--
	guard.released = true
}

// attach marks the guarded node as held by a slot again.
func (guard *OwnedGuard[T]) attach() {
	guard.op.tree.alloc.node(guard.id).borrow = borrowIdle
	guard.op.owned--
	guard.released = true
}
