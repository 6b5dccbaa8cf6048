// Package engines names the ordered-set backends the CLI can drive.
package engines

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Sumatoshi-tech/bstset/internal/reference"
	"github.com/Sumatoshi-tech/bstset/pkg/arenabst"
	"github.com/Sumatoshi-tech/bstset/pkg/orderedset"
	"github.com/Sumatoshi-tech/bstset/pkg/ownedbst"
)

// Backend names.
const (
	Owned   = "owned"
	Arena   = "arena"
	BTree   = "btree"
	Tidwall = "tidwall"
)

// ErrUnknownBackend is returned when a backend name is not registered.
var ErrUnknownBackend = errors.New("unknown backend")

// Backend is a named set factory.
type Backend struct {
	Name string
	New  orderedset.Factory[int32]
}

var registry = map[string]orderedset.Factory[int32]{
	Owned:   func() orderedset.Set[int32] { return ownedbst.New[int32]() },
	Arena:   func() orderedset.Set[int32] { return arenabst.New[int32]() },
	BTree:   func() orderedset.Set[int32] { return reference.NewBTree[int32]() },
	Tidwall: func() orderedset.Set[int32] { return reference.NewTidwall[int32]() },
}

// Names returns every registered backend name, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// Known reports whether name is registered.
func Known(name string) bool {
	_, ok := registry[name]

	return ok
}

// Lookup returns the backend registered under name.
func Lookup(name string) (Backend, error) {
	factory, ok := registry[name]
	if !ok {
		return Backend{}, fmt.Errorf("%w: %q (known: %v)", ErrUnknownBackend, name, Names())
	}

	return Backend{Name: name, New: factory}, nil
}

// Resolve looks up every name, keeping the order given.
func Resolve(names []string) ([]Backend, error) {
	backends := make([]Backend, 0, len(names))

	for _, name := range names {
		backend, err := Lookup(name)
		if err != nil {
			return nil, err
		}

		backends = append(backends, backend)
	}

	return backends, nil
}
