// Package file implements the spreadsheet-backed connector. The source is
// loaded into memory once per path; the backend has exactly one implicit
// table, named "data", and does not interpret a query language.
package file

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/vizquery/vizquery-engine/pkg/adapters/connector"
	"github.com/vizquery/vizquery-engine/pkg/apperrors"
	"github.com/vizquery/vizquery-engine/pkg/models"
	"github.com/vizquery/vizquery-engine/pkg/schema"
)

// TableName is the pseudo-table the single loaded sheet is exposed as.
const TableName = "data"

// Connector loads a spreadsheet file into an in-memory table.
type Connector struct {
	profile *models.ConnectionProfile
	logger  *zap.Logger

	// loadedPath marks which file the in-memory table came from.
	// Reconnecting to the same path reuses the table; Disconnect clears
	// the marker so the next Connect reloads.
	loadedPath string
	columns    []string
	types      []string
	rows       []connector.Row
}

// New creates a file connector for the profile.
func New(profile *models.ConnectionProfile, logger *zap.Logger) *Connector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Connector{profile: profile, logger: logger.Named("file")}
}

// Connect loads the file unless the same path is already loaded.
func (c *Connector) Connect(ctx context.Context) error {
	path := c.profile.FilePath
	if path == "" {
		return apperrors.New(apperrors.KindMissingParameters, "file path is required")
	}
	if _, err := os.Stat(path); err != nil {
		return apperrors.Newf(apperrors.KindNotFound, "file not found at path: %s", path)
	}

	if c.loadedPath == path {
		return nil
	}

	header, records, err := c.readTable(path)
	if err != nil {
		return err
	}
	if len(header) == 0 || len(records) == 0 {
		return apperrors.New(apperrors.KindEmptySource, "file is empty or contains no data")
	}

	columns := normalizeHeader(header)
	rows := make([]connector.Row, len(records))
	for i, record := range records {
		row := make(connector.Row, len(columns))
		for j, col := range columns {
			if j < len(record) {
				row[col] = parseCell(record[j])
			} else {
				row[col] = nil
			}
		}
		rows[i] = row
	}

	c.columns = columns
	c.types = inferTypes(columns, rows)
	c.rows = rows
	c.loadedPath = path

	c.logger.Debug("loaded file source",
		zap.String("path", path),
		zap.Int("columns", len(columns)),
		zap.Int("rows", len(rows)))
	return nil
}

// ExecuteQuery returns all rows of the loaded table. The query text is not
// interpreted; it only has to be non-empty.
func (c *Connector) ExecuteQuery(ctx context.Context, query string) (*connector.QueryResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperrors.New(apperrors.KindMalformedQuery, "query cannot be empty")
	}
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}
	return &connector.QueryResult{
		Rows:    c.rows,
		Message: "query executed successfully",
	}, nil
}

// DescribeSchema exposes the loaded table under the single pseudo-table.
func (c *Connector) DescribeSchema(ctx context.Context) (schema.Schema, error) {
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}
	cols := make([]schema.Column, len(c.columns))
	for i, name := range c.columns {
		cols[i] = schema.Column{Name: name, Type: c.types[i]}
	}
	return schema.Schema{TableName: cols}, nil
}

// DumpAllData returns the loaded rows, capped at limit when limit > 0.
func (c *Connector) DumpAllData(ctx context.Context, limit int) (map[string][]connector.Row, error) {
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}
	rows := c.rows
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return map[string][]connector.Row{TableName: rows}, nil
}

// Disconnect clears the cached-path marker so a later Connect reloads.
func (c *Connector) Disconnect() {
	c.loadedPath = ""
}

// readTable reads the raw header and data records from the file,
// dispatching on extension: CSV directly, anything else through the
// spreadsheet reader's first sheet.
func (c *Connector) readTable(path string) ([]string, [][]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return readCSV(path)
	}
	return readSpreadsheet(path)
}

func readCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.KindBackendError, "cannot open file", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.KindBackendError, "cannot parse csv file", err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}
	return records[0], records[1:], nil
}

func readSpreadsheet(path string) ([]string, [][]string, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.KindBackendError, "cannot open spreadsheet", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, nil
	}
	records, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.KindBackendError, "cannot read sheet rows", err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}
	return records[0], records[1:], nil
}

// normalizeHeader rewrites raw column labels: trimmed, spaces to
// underscores, lower-cased, and anonymous/placeholder labels renamed to
// col_<n>. Duplicate labels gain a positional suffix so row maps do not
// silently drop fields.
func normalizeHeader(header []string) []string {
	columns := make([]string, len(header))
	seen := make(map[string]struct{}, len(header))
	for i, raw := range header {
		label := strings.TrimSpace(raw)
		if label == "" || strings.HasPrefix(label, "Unnamed:") {
			label = fmt.Sprintf("col_%d", i)
		}
		name := schema.NormalizeColumnName(label)
		if _, dup := seen[name]; dup {
			name = fmt.Sprintf("%s_%d", name, i)
		}
		seen[name] = struct{}{}
		columns[i] = name
	}
	return columns
}

// dateLayouts are the textual date forms recognized during type inference.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
}

// parseCell converts a raw cell string into a typed value: integer,
// float, boolean, or the string itself. Empty cells become nil.
func parseCell(raw string) any {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}

// inferTypes derives a canonical type per column from the first non-nil
// value in each, falling back to TEXT.
func inferTypes(columns []string, rows []connector.Row) []string {
	types := make([]string, len(columns))
	for i, col := range columns {
		types[i] = schema.TypeText
		for _, row := range rows {
			v := row[col]
			if v == nil {
				continue
			}
			types[i] = inferType(v)
			break
		}
	}
	return types
}

func inferType(v any) string {
	switch val := v.(type) {
	case int64:
		return schema.TypeInteger
	case float64:
		return schema.TypeFloat
	case bool:
		return schema.TypeBoolean
	case string:
		for _, layout := range dateLayouts {
			if _, err := time.Parse(layout, val); err == nil {
				return schema.TypeDate
			}
		}
		return schema.TypeText
	default:
		return schema.TypeText
	}
}

var _ connector.SourceConnector = (*Connector)(nil)
