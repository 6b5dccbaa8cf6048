// Package arena stores binary tree nodes in a dense, index-addressed pool and
// mediates every access to them through scoped guards.
//
// A node is addressed by a NodeID; ID 0 is reserved and stands for an empty
// slot. Guards enforce, per node and at run time, either any number of
// readers, exactly one writer, or one owner of a node that has been detached
// from its slot. Structural edits move detached subtrees between slots instead
// of copying elements, so no slot ever points at a freed or doubly-owned node.
package arena

import (
	"fmt"
	"math"
)

// NodeID identifies a node inside an Allocator.
type NodeID uint32

// Branches is the number of child slots of every node.
const Branches = 2

const (
	nilNode NodeID = 0

	// maxNodes keeps [math.MaxUint32] out of the ID space.
	maxNodes = math.MaxUint32 - 1

	// borrow states; positive values count readers.
	borrowIdle  = 0
	borrowWrite = -1
	borrowOwned = -2

	// growCapacityNumerator and growCapacityDenominator define the 3/2 growth factor used on Boot.
	growCapacityNumerator   = 3
	growCapacityDenominator = 2
)

type node[T any] struct {
	elem     T
	children [Branches]NodeID
	borrow   int32
	live     bool
}

// Allocator owns the storage of every node allocated into it. It may back
// several trees at once.
type Allocator[T any] struct {
	storage []node[T]
	gaps    []NodeID

	// HibernationThreshold is the minimal storage size for Hibernate to take effect.
	HibernationThreshold int

	hibernatedElems      []T
	hibernatedData       [hibernatedColumns][]byte
	hibernatedStorageLen int
	hibernatedGapsLen    int
}

// NewAllocator creates an empty node allocator.
func NewAllocator[T any]() *Allocator[T] {
	return &Allocator[T]{storage: []node[T]{}}
}

// Size returns the number of allocated slots, including the reserved one and free ones.
func (alloc *Allocator[T]) Size() int {
	return len(alloc.storage)
}

// Used returns the number of live nodes.
func (alloc *Allocator[T]) Used() int {
	alloc.assertAwake()

	if len(alloc.storage) == 0 {
		return 0
	}

	return len(alloc.storage) - len(alloc.gaps) - 1
}

// Hibernated reports whether the node table is currently compressed.
func (alloc *Allocator[T]) Hibernated() bool {
	return alloc.storage == nil
}

func (alloc *Allocator[T]) assertAwake() {
	if alloc.storage == nil {
		fault(ErrHibernated, "allocator is hibernated")
	}
}

// node returns the live node id. The pointer is valid until the next malloc.
func (alloc *Allocator[T]) node(id NodeID) *node[T] {
	alloc.assertAwake()

	if id == nilNode || int(id) >= len(alloc.storage) {
		fault(ErrDanglingNode, "node #%d is out of range", id)
	}

	nd := &alloc.storage[id]
	if !nd.live {
		fault(ErrDanglingNode, "node #%d was freed", id)
	}

	return nd
}

func (alloc *Allocator[T]) malloc(elem T) NodeID {
	alloc.assertAwake()

	if n := len(alloc.gaps); n > 0 {
		id := alloc.gaps[n-1]
		alloc.gaps = alloc.gaps[:n-1]
		alloc.storage[id] = node[T]{elem: elem, live: true}

		return id
	}

	if len(alloc.storage) == 0 {
		// Zero is reserved.
		alloc.storage = append(alloc.storage, node[T]{})
	}

	if len(alloc.storage) >= maxNodes {
		panic("arena: the allocator has reached the maximum number of uint32 node IDs")
	}

	id := mustIntToNodeID(len(alloc.storage))
	alloc.storage = append(alloc.storage, node[T]{elem: elem, live: true})

	return id
}

func (alloc *Allocator[T]) free(id NodeID) T {
	nd := alloc.node(id)
	if nd.borrow != borrowIdle && nd.borrow != borrowOwned {
		fault(ErrBorrowConflict, "freeing borrowed node #%d", id)
	}

	elem := nd.elem
	alloc.storage[id] = node[T]{}
	alloc.gaps = append(alloc.gaps, id)

	return elem
}

// freeSubtree frees id and everything reachable from it, returning the number of freed nodes.
func (alloc *Allocator[T]) freeSubtree(id NodeID) int {
	if id == nilNode {
		return 0
	}

	freed := 0
	stack := []NodeID{id}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, child := range alloc.node(top).children {
			if child != nilNode {
				stack = append(stack, child)
			}
		}

		alloc.free(top)
		freed++
	}

	return freed
}

// Hibernate compresses the node link table and releases it. Elements are kept
// as they are. Nothing can be read or written until Boot is called.
func (alloc *Allocator[T]) Hibernate() error {
	if alloc.storage == nil {
		fault(ErrHibernated, "allocator is already hibernated")
	}

	if len(alloc.storage) < alloc.HibernationThreshold {
		return nil
	}

	for idx := range alloc.storage {
		if alloc.storage[idx].borrow != borrowIdle {
			fault(ErrBorrowConflict, "cannot hibernate while node #%d is borrowed", idx)
		}
	}

	alloc.hibernatedStorageLen = len(alloc.storage)
	if alloc.hibernatedStorageLen == 0 {
		alloc.storage = nil

		return nil
	}

	columns := [hibernatedColumns][]uint32{}
	for idx := range nodeColumns {
		columns[idx] = make([]uint32, len(alloc.storage))
	}

	elems := make([]T, len(alloc.storage))

	// Deinterleave for a better compression ratio.
	for idx, nd := range alloc.storage {
		elems[idx] = nd.elem
		columns[columnLeft][idx] = uint32(nd.children[0])
		columns[columnRight][idx] = uint32(nd.children[1])

		if nd.live {
			columns[columnLive][idx] = 1
		}
	}

	columns[columnGaps] = make([]uint32, len(alloc.gaps))
	for idx, gap := range alloc.gaps {
		columns[columnGaps][idx] = uint32(gap)
	}

	packed, err := compressColumns(columns)
	if err != nil {
		alloc.hibernatedStorageLen = 0

		return fmt.Errorf("hibernate: %w", err)
	}

	alloc.hibernatedData = packed
	alloc.hibernatedElems = elems
	alloc.hibernatedGapsLen = len(alloc.gaps)
	alloc.storage = nil
	alloc.gaps = nil

	return nil
}

// Boot performs the opposite of Hibernate and restores the node table.
func (alloc *Allocator[T]) Boot() error {
	if alloc.storage == nil && alloc.hibernatedStorageLen == 0 {
		alloc.storage = []node[T]{}
		alloc.gaps = nil

		return nil
	}

	if alloc.hibernatedStorageLen == 0 {
		// Not hibernated.
		return nil
	}

	columns := [hibernatedColumns][]uint32{}
	for idx := range nodeColumns {
		columns[idx] = make([]uint32, alloc.hibernatedStorageLen)
	}

	columns[columnGaps] = make([]uint32, alloc.hibernatedGapsLen)

	err := decompressColumns(alloc.hibernatedData, columns)
	if err != nil {
		return fmt.Errorf("boot: %w", err)
	}

	capSize := (alloc.hibernatedStorageLen * growCapacityNumerator) / growCapacityDenominator
	storage := make([]node[T], alloc.hibernatedStorageLen, capSize)

	for idx := range storage {
		nd := &storage[idx]
		nd.elem = alloc.hibernatedElems[idx]
		nd.children[0] = NodeID(columns[columnLeft][idx])
		nd.children[1] = NodeID(columns[columnRight][idx])
		nd.live = columns[columnLive][idx] > 0
	}

	gaps := make([]NodeID, len(columns[columnGaps]))
	for idx, gap := range columns[columnGaps] {
		gaps[idx] = NodeID(gap)
	}

	alloc.storage = storage
	alloc.gaps = gaps
	alloc.hibernatedElems = nil
	alloc.hibernatedData = [hibernatedColumns][]byte{}
	alloc.hibernatedStorageLen = 0
	alloc.hibernatedGapsLen = 0

	return nil
}

// HibernatedBytes returns the size of the compressed link table, or 0 when awake.
func (alloc *Allocator[T]) HibernatedBytes() int {
	total := 0
	for _, column := range alloc.hibernatedData {
		total += len(column)
	}

	return total
}

func mustIntToNodeID(v int) NodeID {
	if v < 0 || v > math.MaxUint32 {
		panic("arena: int to node ID out of bounds")
	}

	return NodeID(v)
}
