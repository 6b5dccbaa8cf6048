package arena

import (
	"errors"
	"fmt"
)

// Guard discipline violations. Except for ErrSlotOccupied, which is returned,
// they can only stem from a bug in the code driving the guards and are raised
// as panics wrapping the sentinel.
var (
	// ErrSlotOccupied is returned when attaching into a slot that already holds a node.
	ErrSlotOccupied = errors.New("arena: slot is already occupied")
	// ErrBorrowConflict means a guard was requested on a node whose current borrow excludes it.
	ErrBorrowConflict = errors.New("arena: conflicting borrow")
	// ErrGuardReleased means a guard was used after it was released, moved or freed.
	ErrGuardReleased = errors.New("arena: guard used after release")
	// ErrUnresolvedOwned means an operation ended while a detached node was neither reattached nor freed.
	ErrUnresolvedOwned = errors.New("arena: detached node left unresolved")
	// ErrOpActive means a second operation was opened on a tree that already has one.
	ErrOpActive = errors.New("arena: an operation is already in progress")
	// ErrHibernated means the allocator was accessed while hibernated.
	ErrHibernated = errors.New("arena: allocator is hibernated")
	// ErrDanglingNode means a node ID did not refer to a live node.
	ErrDanglingNode = errors.New("arena: dangling node reference")
	// ErrBadBranch means a child slot index was outside [0, Branches).
	ErrBadBranch = errors.New("arena: branch index out of range")
)

func fault(sentinel error, format string, args ...any) {
	panic(fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...))
}

func checkBranch(branch int) {
	if branch < 0 || branch >= Branches {
		fault(ErrBadBranch, "%d", branch)
	}
}
