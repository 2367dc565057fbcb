package tables

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/rowq/rowq/record"
)

// metaTable is the synthetic table listing the registered files.
const metaTable = "tables"

type fileTable struct {
	path   string
	format string // "parquet" or "json"
	schema *gojsonschema.Schema
}

// FileSet serves tables backed by parquet and JSON files. Each file becomes
// a table named after its basename (lowercased, extension stripped), read
// afresh on every Rows call so edits on disk show up in the next query. A
// synthetic "tables" table lists the registered files.
type FileSet struct {
	mu     sync.RWMutex
	tables map[string]*fileTable
	names  []string
}

// NewFileSet returns an empty file-backed provider.
func NewFileSet() *FileSet {
	return &FileSet{tables: make(map[string]*fileTable)}
}

// AddFile registers a data file and returns the table name it is served
// under. The format comes from the extension: .parquet or .json.
func (fs *FileSet) AddFile(path string) (string, error) {
	var format string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		format = "parquet"
	case ".json":
		format = "json"
	default:
		return "", fmt.Errorf("unsupported table file %q (expected .parquet or .json)", path)
	}

	base := filepath.Base(path)
	name := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
	if name == "" || name == metaTable {
		return "", fmt.Errorf("invalid table name %q from file %q", name, path)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, ok := fs.tables[name]; !ok {
		fs.names = append(fs.names, name)
	}
	fs.tables[name] = &fileTable{path: path, format: format}
	return name, nil
}

// SetRowSchema attaches a JSON Schema to a table. Every row loaded from the
// file is then validated against it and Rows fails on the first violation.
func (fs *FileSet) SetRowSchema(table string, schemaJSON string) error {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return fmt.Errorf("compile schema for table %q: %w", table, err)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	t, ok := fs.tables[table]
	if !ok {
		return fmt.Errorf("unknown table %q", table)
	}
	t.schema = schema
	return nil
}

// HasTable reports whether name is a registered table or the meta table.
func (fs *FileSet) HasTable(name string) bool {
	if name == metaTable {
		return true
	}
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	_, ok := fs.tables[name]
	return ok
}

// TableNames returns the registered table names in registration order,
// followed by the meta table.
func (fs *FileSet) TableNames() []string {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	names := append([]string(nil), fs.names...)
	return append(names, metaTable)
}

// Rows loads the named table from its backing file, validating rows when a
// schema is attached.
func (fs *FileSet) Rows(name string) ([]*record.Row, error) {
	if name == metaTable {
		return fs.metaRows(), nil
	}

	fs.mu.RLock()
	t, ok := fs.tables[name]
	fs.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown table %q", name)
	}

	var rows []*record.Row
	var err error
	switch t.format {
	case "parquet":
		rows, err = readParquetRows(t.path)
	case "json":
		rows, err = readJSONRows(t.path)
	default:
		err = fmt.Errorf("unsupported format %q", t.format)
	}
	if err != nil {
		return nil, err
	}

	if t.schema != nil {
		if err := validateRows(t.schema, rows); err != nil {
			return nil, fmt.Errorf("table %q: %w", name, err)
		}
	}
	return rows, nil
}

func (fs *FileSet) metaRows() []*record.Row {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	rows := make([]*record.Row, 0, len(fs.names)+1)
	for _, name := range fs.names {
		t := fs.tables[name]
		rows = append(rows, record.NewRow().
			Set("name", record.StringValue(name)).
			Set("source", record.StringValue(t.path)).
			Set("format", record.StringValue(t.format)))
	}
	rows = append(rows, record.NewRow().
		Set("name", record.StringValue(metaTable)).
		Set("source", record.StringValue("")).
		Set("format", record.StringValue("builtin")))
	return rows
}

func validateRows(schema *gojsonschema.Schema, rows []*record.Row) error {
	for i, row := range rows {
		doc, err := row.MarshalJSON()
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		result, err := schema.Validate(gojsonschema.NewStringLoader(string(doc)))
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		if !result.Valid() {
			return fmt.Errorf("row %d fails schema: %s", i, result.Errors()[0].String())
		}
	}
	return nil
}
