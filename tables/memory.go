// Package tables provides TableProvider implementations: an in-memory
// provider for embedding and tests, and a file-backed provider reading
// parquet and JSON files.
package tables

import (
	"fmt"
	"sync"

	"github.com/rowq/rowq/record"
)

// Memory serves tables registered directly as row slices. Safe for
// concurrent use.
type Memory struct {
	mu     sync.RWMutex
	tables map[string][]*record.Row
	names  []string
}

// NewMemory returns an empty in-memory provider.
func NewMemory() *Memory {
	return &Memory{tables: make(map[string][]*record.Row)}
}

// Add registers (or replaces) a table under name.
func (m *Memory) Add(name string, rows []*record.Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tables[name]; !ok {
		m.names = append(m.names, name)
	}
	m.tables[name] = rows
}

// HasTable reports whether name is registered.
func (m *Memory) HasTable(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.tables[name]
	return ok
}

// TableNames returns the registered table names in registration order.
func (m *Memory) TableNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.names...)
}

// Rows returns a fresh slice over the table's rows, so callers may reorder
// and slice it without affecting the stored table.
func (m *Memory) Rows(name string) ([]*record.Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows, ok := m.tables[name]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", name)
	}
	return append([]*record.Row(nil), rows...), nil
}
