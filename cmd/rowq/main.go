// Command rowq runs SQL-subset queries against parquet and JSON files.
//
// Each file passed on the command line becomes a table named after its
// basename, plus a built-in "tables" table listing them.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"

	"github.com/rowq/rowq/output"
	"github.com/rowq/rowq/query"
	"github.com/rowq/rowq/record"
	"github.com/rowq/rowq/tables"
)

var (
	queryFlag   = flag.String("q", "", "SQL query (e.g., \"SELECT name, size FROM data WHERE size > 10\")")
	formatFlag  = flag.String("f", "table", "Output format: json, csv, table")
	limitFlag   = flag.Int("limit", 0, "Limit number of rows when the query has no LIMIT clause (0 = unlimited)")
	tablesFlag  = flag.Bool("tables", false, "List the available tables instead of running a query")
	schemaFlag  = flag.String("schema", "", "Show the sampled schema of the named table instead of data")
	verboseFlag = flag.Bool("v", false, "Enable debug logging on stderr")
)

var log = logrus.New()

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <file.parquet|file.json> ...\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "A tool to query parquet and JSON files with a SQL subset.\n\n")
		fmt.Fprintf(os.Stderr, "IMPORTANT: All flags must come BEFORE file arguments.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -q \"SELECT * FROM data LIMIT 10\" data.parquet\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -f csv -q \"SELECT name, COUNT(*) AS n FROM events GROUP BY name\" events.json\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -tables data.parquet events.json\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -schema data data.parquet\n", os.Args[0])
	}

	flag.Parse()

	log.SetOutput(os.Stderr)
	if *verboseFlag {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}

	if *limitFlag < 0 {
		fmt.Fprintf(os.Stderr, "Error: -limit must be non-negative, got %d\n", *limitFlag)
		os.Exit(1)
	}

	modes := 0
	for _, set := range []bool{*queryFlag != "", *tablesFlag, *schemaFlag != ""} {
		if set {
			modes++
		}
	}
	if modes != 1 {
		fmt.Fprintf(os.Stderr, "Error: exactly one of -q, -tables or -schema is required\n\n")
		flag.Usage()
		os.Exit(1)
	}

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Error: missing data file arguments\n\n")
		flag.Usage()
		os.Exit(1)
	}

	provider := tables.NewFileSet()
	for _, path := range flag.Args() {
		name, err := provider.AddFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		log.WithFields(logrus.Fields{"file": path, "table": name}).Debug("registered table")
	}

	switch {
	case *tablesFlag:
		handleTablesMode(provider)
	case *schemaFlag != "":
		handleSchemaMode(provider, *schemaFlag)
	default:
		handleQueryMode(provider, *queryFlag)
	}
}

func handleQueryMode(provider query.TableProvider, queryStr string) {
	queryID := uuid.New().String()[:8]
	start := time.Now()

	resp := query.Execute(queryStr, *limitFlag, *formatFlag, provider)

	log.WithFields(logrus.Fields{
		"query_id": queryID,
		"status":   resp.Status,
		"rows":     resp.Count,
		"duration": time.Since(start),
	}).Debug("query finished")

	if resp.Status != query.StatusSuccess {
		fmt.Fprintf(os.Stderr, "Error: %s\n", resp.Error)
		os.Exit(1)
	}

	switch data := resp.Data.(type) {
	case string:
		fmt.Println(data)
	default:
		text, err := marshalRows(resp.Data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(text)
	}
}

func handleTablesMode(provider query.TableProvider) {
	// The built-in meta table already knows every registered file, so the
	// listing is just a query against it.
	resp := query.Execute("SELECT name, source, format FROM tables ORDER BY name", 0, "json", provider)
	if resp.Status != query.StatusSuccess {
		fmt.Fprintf(os.Stderr, "Error: %s\n", resp.Error)
		os.Exit(1)
	}
	rows, ok := resp.Data.([]*record.Row)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unexpected table listing payload\n")
		os.Exit(1)
	}

	w := tablewriter.NewWriter(os.Stdout)
	w.SetHeader([]string{"Table", "Source", "Format"})
	for _, row := range rows {
		name, _ := row.Get("name")
		source, _ := row.Get("source")
		format, _ := row.Get("format")
		w.Append([]string{name.String(), source.String(), format.String()})
	}
	w.Render()
}

func handleSchemaMode(provider query.TableProvider, table string) {
	schema, err := query.Schema(provider, table)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Table: %s (%d rows)\n", schema.Table, schema.RowCount)

	w := tablewriter.NewWriter(os.Stdout)
	w.SetHeader([]string{"Field", "Kind", "Nullable", "Samples"})
	for _, field := range schema.Fields {
		samples := make([]string, len(field.Samples))
		for i, sample := range field.Samples {
			samples[i] = sample.String()
		}
		nullable := "no"
		if field.Nullable {
			nullable = "yes"
		}
		w.Append([]string{field.Name, field.Kind, nullable, joinSamples(samples)})
	}
	w.Render()
}

func joinSamples(samples []string) string {
	const maxWidth = 60
	joined := ""
	for i, sample := range samples {
		if i > 0 {
			joined += ", "
		}
		joined += sample
	}
	if len(joined) > maxWidth {
		joined = joined[:maxWidth-3] + "..."
	}
	return joined
}

// marshalRows renders the json-format payload for stdout.
func marshalRows(data interface{}) (string, error) {
	rows, ok := data.([]*record.Row)
	if !ok {
		return "", fmt.Errorf("unexpected json payload type %T", data)
	}
	text, err := output.MarshalIndentRows(rows)
	if err != nil {
		return "", err
	}
	return text, nil
}
