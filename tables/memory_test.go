package tables

import (
	"testing"

	"github.com/rowq/rowq/record"
)

func TestMemory(t *testing.T) {
	m := NewMemory()
	m.Add("objects", []*record.Row{
		record.NewRow().Set("name", record.StringValue("Cube")),
		record.NewRow().Set("name", record.StringValue("Sphere")),
	})

	if !m.HasTable("objects") {
		t.Error("HasTable(objects) = false")
	}
	if m.HasTable("ghosts") {
		t.Error("HasTable(ghosts) = true")
	}
	if names := m.TableNames(); len(names) != 1 || names[0] != "objects" {
		t.Errorf("TableNames() = %v", names)
	}

	rows, err := m.Rows("objects")
	if err != nil {
		t.Fatalf("Rows() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Rows() returned %d rows, want 2", len(rows))
	}

	// The returned slice is a snapshot: reordering it must not affect the
	// stored table.
	rows[0], rows[1] = rows[1], rows[0]
	again, _ := m.Rows("objects")
	if v, _ := again[0].Get("name"); v.Str() != "Cube" {
		t.Errorf("stored table order changed: first row is %v", v)
	}

	if _, err := m.Rows("ghosts"); err == nil {
		t.Error("Rows(ghosts) succeeded, want error")
	}
}

func TestMemory_AddReplaces(t *testing.T) {
	m := NewMemory()
	m.Add("t", []*record.Row{record.NewRow()})
	m.Add("t", nil)

	if names := m.TableNames(); len(names) != 1 {
		t.Errorf("TableNames() = %v, want a single entry", names)
	}
	rows, err := m.Rows("t")
	if err != nil {
		t.Fatalf("Rows() error = %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("replaced table still has %d rows", len(rows))
	}
}
