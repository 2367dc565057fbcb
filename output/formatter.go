// Package output renders query result rows into the supported wire
// formats: json (structured rows), csv and table (strings).
package output

import (
	"fmt"
	"strings"

	"github.com/rowq/rowq/record"
)

// Formatter renders result rows into a format-specific payload.
type Formatter interface {
	Format(rows []*record.Row) (interface{}, error)
}

// Formats lists the supported format names.
func Formats() []string {
	return []string{"json", "csv", "table"}
}

// New returns the formatter for the named format (case insensitive).
func New(format string) (Formatter, error) {
	switch strings.ToLower(format) {
	case "json":
		return &JSONFormatter{}, nil
	case "csv":
		return &CSVFormatter{}, nil
	case "table":
		return &TableFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown format '%s', available formats: %s",
			format, strings.Join(Formats(), ", "))
	}
}
