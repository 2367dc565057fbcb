package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rowq/rowq/record"
)

// FieldSchema describes one top-level field as observed in sampled rows.
type FieldSchema struct {
	Name     string         `json:"name"`
	Kind     string         `json:"kind"`
	Nullable bool           `json:"nullable"`
	Samples  []record.Value `json:"samples"`
}

// TableSchema is the sampled shape of a table.
type TableSchema struct {
	Table    string        `json:"table"`
	RowCount int           `json:"row_count"`
	Fields   []FieldSchema `json:"fields"`
}

// Schema inspects a table by sampling its first rows: field kinds come from
// the first occurrence of each field, nullability from any observed null,
// and up to three non-null sample values are kept per field.
func Schema(provider TableProvider, table string) (*TableSchema, error) {
	table = strings.ToLower(table)
	if !provider.HasTable(table) {
		names := append([]string(nil), provider.TableNames()...)
		sort.Strings(names)
		return nil, fmt.Errorf("unknown table '%s', available tables: %s",
			table, strings.Join(names, ", "))
	}

	rows, err := provider.Rows(table)
	if err != nil {
		return nil, fmt.Errorf("error loading data from table '%s': %v", table, err)
	}

	schema := &TableSchema{Table: table, RowCount: len(rows)}

	probe := rows
	if len(probe) > 10 {
		probe = probe[:10]
	}

	index := make(map[string]int)
	for _, row := range probe {
		for _, key := range row.Keys() {
			v, _ := row.Get(key)
			pos, ok := index[key]
			if !ok {
				pos = len(schema.Fields)
				index[key] = pos
				schema.Fields = append(schema.Fields, FieldSchema{
					Name: key,
					Kind: v.Kind().String(),
				})
			}
			field := &schema.Fields[pos]
			if v.IsNull() {
				field.Nullable = true
				continue
			}
			if field.Kind == record.KindNull.String() {
				field.Kind = v.Kind().String()
			}
			if len(field.Samples) < 3 {
				field.Samples = append(field.Samples, v)
			}
		}
	}

	return schema, nil
}
