// Package corner assigns shared integer ids to equal corner values, such as
// mesh points or texture coordinates, so a serializer can index them.
//
// A Manager is used in two phases. Add and Set only record values and mark
// the table dirty; Finalize rebuilds the ids from the distinct values
// present at that moment. Asking for an id while the table is dirty panics.
package corner

import (
	"fmt"
	"sort"
	"strings"
)

// Value is a corner value with a total order and a text form.
type Value[T any] interface {
	comparable
	Less(T) bool
	String() string
}

// Handle refers to one added value.
type Handle int

// Manager deduplicates corner values.
type Manager[T Value[T]] struct {
	values []T
	ids    map[T]int
	table  []T
	dirty  bool
}

// NewManager returns an empty manager.
func NewManager[T Value[T]]() *Manager[T] {
	return &Manager[T]{dirty: true}
}

// Add stores v and returns its handle.
func (m *Manager[T]) Add(v T) Handle {
	m.values = append(m.values, v)
	m.dirty = true
	return Handle(len(m.values) - 1)
}

// Set replaces the value behind h.
func (m *Manager[T]) Set(h Handle, v T) {
	m.values[h] = v
	m.dirty = true
}

// Value returns the value behind h.
func (m *Manager[T]) Value(h Handle) T { return m.values[h] }

// Len returns the number of handles.
func (m *Manager[T]) Len() int { return len(m.values) }

// Dirty reports whether ids must be rebuilt.
func (m *Manager[T]) Dirty() bool { return m.dirty }

// Finalize assigns ids 0..n-1 to the distinct values in ascending order.
func (m *Manager[T]) Finalize() {
	m.ids = make(map[T]int, len(m.values))
	m.table = m.table[:0]
	for _, v := range m.values {
		if _, ok := m.ids[v]; !ok {
			m.ids[v] = 0
			m.table = append(m.table, v)
		}
	}
	sort.Slice(m.table, func(i, j int) bool { return m.table[i].Less(m.table[j]) })
	for i, v := range m.table {
		m.ids[v] = i
	}
	m.dirty = false
}

func (m *Manager[T]) mustBeFinal() {
	if m.dirty {
		panic("corner: ids queried before Finalize")
	}
}

// ID returns the shared id of the value behind h.
func (m *Manager[T]) ID(h Handle) int {
	m.mustBeFinal()
	return m.ids[m.values[h]]
}

// Count returns the number of distinct values.
func (m *Manager[T]) Count() int {
	m.mustBeFinal()
	return len(m.table)
}

// Table returns the distinct values indexed by id.
func (m *Manager[T]) Table() []T {
	m.mustBeFinal()
	return append([]T(nil), m.table...)
}

// Joined returns the distinct values in id order separated by single
// spaces, ready to embed in a text format.
func (m *Manager[T]) Joined() string {
	m.mustBeFinal()
	parts := make([]string, len(m.table))
	for i, v := range m.table {
		parts[i] = v.String()
	}
	return strings.Join(parts, " ")
}

// Point is a mesh corner in voxel space.
type Point struct{ X, Y, Z int }

func (p Point) Less(o Point) bool {
	if p.X != o.X {
		return p.X < o.X
	}
	if p.Y != o.Y {
		return p.Y < o.Y
	}
	return p.Z < o.Z
}

func (p Point) String() string { return fmt.Sprintf("%d %d %d", p.X, p.Y, p.Z) }

// UV is a texture coordinate.
type UV struct{ U, V float64 }

func (p UV) Less(o UV) bool {
	if p.U != o.U {
		return p.U < o.U
	}
	return p.V < o.V
}

func (p UV) String() string { return fmt.Sprintf("%g %g", p.U, p.V) }
