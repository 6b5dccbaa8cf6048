// Package workload generates and stores deterministic sequences of set
// operations used by the bench and cross-check harnesses.
package workload

import "fmt"

// Kind identifies an operation.
type Kind string

// Operation kinds.
const (
	KindInsert     Kind = "insert"
	KindRemove     Kind = "remove"
	KindContains   Kind = "contains"
	KindCheckpoint Kind = "checkpoint"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindInsert, KindRemove, KindContains, KindCheckpoint:
		return true
	default:
		return false
	}
}

// Op is one operation of a workload. Elem is unused for checkpoints.
type Op struct {
	Kind Kind  `json:"kind"           yaml:"kind"`
	Elem int32 `json:"elem,omitempty" yaml:"elem,omitempty"`
}

// Insert returns an insert op.
func Insert(elem int32) Op { return Op{Kind: KindInsert, Elem: elem} }

// Remove returns a remove op.
func Remove(elem int32) Op { return Op{Kind: KindRemove, Elem: elem} }

// Contains returns a contains op.
func Contains(elem int32) Op { return Op{Kind: KindContains, Elem: elem} }

// Checkpoint returns a consistency-check op.
func Checkpoint() Op { return Op{Kind: KindCheckpoint} }

func (op Op) String() string {
	if op.Kind == KindCheckpoint {
		return string(op.Kind)
	}

	return fmt.Sprintf("%s(%d)", op.Kind, op.Elem)
}

// Counts tallies ops per kind.
func Counts(ops []Op) map[Kind]int {
	counts := make(map[Kind]int, 4)
	for _, op := range ops {
		counts[op.Kind]++
	}

	return counts
}
