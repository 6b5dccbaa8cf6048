package arena

// Tree is a binary tree whose nodes live in an Allocator. It holds only the
// root slot; every node is reached through guards.
type Tree[T any] struct {
	alloc *Allocator[T]
	root  NodeID
	count int
	op    *Op[T]
}

// NewTree creates an empty tree allocating into alloc.
func NewTree[T any](alloc *Allocator[T]) *Tree[T] {
	return &Tree[T]{alloc: alloc}
}

// Allocator returns the bound node allocator.
func (tree *Tree[T]) Allocator() *Allocator[T] {
	return tree.alloc
}

// Len returns the number of nodes owned by the tree, detached ones included.
func (tree *Tree[T]) Len() int {
	return tree.count
}

// Empty reports whether the root slot is empty.
func (tree *Tree[T]) Empty() bool {
	return tree.root == nilNode
}

// Clear frees every node reachable from the root.
func (tree *Tree[T]) Clear() {
	if tree.op != nil {
		fault(ErrOpActive, "clear during an operation")
	}

	tree.count -= tree.alloc.freeSubtree(tree.root)
	tree.root = nilNode
}

// Begin opens the tree's mutation scope. Write and owned guards can only be
// obtained through an Op, and End must be called before the next Begin.
func (tree *Tree[T]) Begin() *Op[T] {
	if tree.op != nil {
		fault(ErrOpActive, "tree already has an open operation")
	}

	tree.alloc.assertAwake()
	tree.op = &Op[T]{tree: tree}

	return tree.op
}

// ReadRoot acquires a read guard on the root, or returns false if the tree is empty.
func (tree *Tree[T]) ReadRoot() (*ReadGuard[T], bool) {
	if tree.root == nilNode {
		return nil, false
	}

	return acquireRead(tree, tree.root), true
}

// Op is a single structural operation on a Tree.
type Op[T any] struct {
	tree   *Tree[T]
	writes []*WriteGuard[T]
	owned  int
	ended  bool
}

func (op *Op[T]) check() {
	if op.ended {
		fault(ErrGuardReleased, "operation already ended")
	}
}

// End releases every write guard taken during the operation. Ending with a
// detached node still outstanding is a fault.
func (op *Op[T]) End() {
	op.check()

	for _, guard := range op.writes {
		guard.Release()
	}

	op.writes = nil
	op.ended = true
	op.tree.op = nil

	if op.owned != 0 {
		fault(ErrUnresolvedOwned, "%d detached node(s)", op.owned)
	}
}

// WriteRoot acquires a write guard on the root, or returns false if the tree is empty.
func (op *Op[T]) WriteRoot() (*WriteGuard[T], bool) {
	op.check()

	if op.tree.root == nilNode {
		return nil, false
	}

	return op.acquireWrite(op.tree.root), true
}

// PutRootElem allocates elem as the root of an empty tree.
func (op *Op[T]) PutRootElem(elem T) error {
	op.check()

	if op.tree.root != nilNode {
		return ErrSlotOccupied
	}

	op.tree.root = op.tree.alloc.malloc(elem)
	op.tree.count++

	return nil
}

// TakeRoot detaches the root, leaving the tree empty until a subtree is put back.
func (op *Op[T]) TakeRoot() (*OwnedGuard[T], bool) {
	op.check()

	if op.tree.root == nilNode {
		return nil, false
	}

	guard := op.acquireOwned(op.tree.root)
	op.tree.root = nilNode

	return guard, true
}

// PutRootTree attaches a detached subtree as the root of an empty tree.
func (op *Op[T]) PutRootTree(subtree *OwnedGuard[T]) error {
	op.check()
	subtree.check()

	if op.tree.root != nilNode {
		return ErrSlotOccupied
	}

	op.tree.root = subtree.id
	subtree.attach()

	return nil
}

// NewDetached allocates a node that belongs to no slot yet.
func (op *Op[T]) NewDetached(elem T) *OwnedGuard[T] {
	op.check()

	id := op.tree.alloc.malloc(elem)
	op.tree.count++

	return op.acquireOwned(id)
}

func (op *Op[T]) acquireWrite(id NodeID) *WriteGuard[T] {
	nd := op.tree.alloc.node(id)
	if nd.borrow != borrowIdle {
		fault(ErrBorrowConflict, "write on node #%d (borrow %d)", id, nd.borrow)
	}

	nd.borrow = borrowWrite
	guard := &WriteGuard[T]{op: op, id: id}
	op.writes = append(op.writes, guard)

	return guard
}

func (op *Op[T]) acquireOwned(id NodeID) *OwnedGuard[T] {
	nd := op.tree.alloc.node(id)
	if nd.borrow != borrowIdle {
		fault(ErrBorrowConflict, "take of node #%d (borrow %d)", id, nd.borrow)
	}

	nd.borrow = borrowOwned
	op.owned++

	return &OwnedGuard[T]{op: op, id: id}
}
