package core

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/tealeg/xlsx/v2"

	"github.com/JonMunkholm/buyside/internal/logging"
)

// Source errors.
var (
	ErrSourceNotFound        = errors.New("source not found")
	ErrUnsupportedSource     = errors.New("unsupported source")
	ErrDatabaseNotConfigured = errors.New("database not configured")
	ErrSheetNotFound         = errors.New("sheet not found")
)

// PostgresPrefix marks a source string naming a Postgres table.
const PostgresPrefix = "pg:"

// Source is one readable table: a CSV file, a workbook sheet or a database table.
type Source interface {
	// Name returns the label used in logs and on Record.Source.
	Name() string
	// Read returns the full table with a normalized header.
	Read(ctx context.Context) (*RawTable, error)
}

// Querier is the subset of pgxpool.Pool used by PostgresSource.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// ParseSource builds a Source from its configured string:
//
//	data/Factbook_CAM.csv     CSV file
//	data/Brands.xlsx#Peru     sheet "Peru" of a workbook (first sheet without #)
//	pg:public.pipeline        Postgres table (schema optional, default public)
//
// db may be nil when no pg: source is configured.
func ParseSource(def string, db Querier) (Source, error) {
	def = strings.TrimSpace(def)
	if def == "" {
		return nil, fmt.Errorf("%w: empty source", ErrUnsupportedSource)
	}

	if rest, ok := strings.CutPrefix(def, PostgresPrefix); ok {
		if db == nil {
			return nil, fmt.Errorf("%w: %s", ErrDatabaseNotConfigured, def)
		}
		schema, table, found := strings.Cut(rest, ".")
		if !found {
			schema, table = "public", rest
		}
		if schema == "" || table == "" {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, def)
		}
		return &PostgresSource{DB: db, Schema: schema, Table: table}, nil
	}

	path, sheet, _ := strings.Cut(def, "#")
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return &CSVSource{Path: path}, nil
	case ".xlsx":
		return &XLSXSource{Path: path, Sheet: sheet}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, def)
	}
}

// ParseSources parses a list of source strings in order.
func ParseSources(defs []string, db Querier) ([]Source, error) {
	sources := make([]Source, 0, len(defs))
	for _, def := range defs {
		src, err := ParseSource(def, db)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}

// UsesPostgres reports whether any source string names a Postgres table.
func UsesPostgres(defs ...string) bool {
	for _, s := range defs {
		if strings.HasPrefix(strings.TrimSpace(s), PostgresPrefix) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// CSV
// ---------------------------------------------------------------------------

// CSVSource reads a comma-separated file.
type CSVSource struct {
	Path string
}

func (s *CSVSource) Name() string { return s.Path }

func (s *CSVSource) Read(ctx context.Context) (*RawTable, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, s.Path)
		}
		return nil, fmt.Errorf("open %s: %w", s.Path, err)
	}
	defer f.Close()

	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	reader, counter := countedText(f, size)
	table, err := ReadCSV(ctx, s.Path, reader)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Debug("csv parsed", "source", s.Path, "bytes", counter.N, "percent", counter.Percent())
	return table, nil
}

// ReadCSV parses CSV content. Rows may vary in width and quotes are lenient,
// matching what spreadsheet exports produce in practice.
func ReadCSV(ctx context.Context, name string, r io.Reader) (*RawTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	table := &RawTable{Source: name}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	header, err := cr.Read()
	if err == io.EOF {
		return table, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", name, err)
	}
	table.Header = NormalizeHeader(header)

	for line := 2; ; line++ {
		if line%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s line %d: %w", name, line, err)
		}
		table.Rows = append(table.Rows, record)
	}

	return table, nil
}

// ---------------------------------------------------------------------------
// XLSX
// ---------------------------------------------------------------------------

// XLSXSource reads one sheet of a workbook. Sheet is a sheet name or a
// zero-based index; empty means the first sheet.
type XLSXSource struct {
	Path  string
	Sheet string
}

func (s *XLSXSource) Name() string {
	if s.Sheet == "" {
		return s.Path
	}
	return s.Path + "#" + s.Sheet
}

func (s *XLSXSource) Read(ctx context.Context) (*RawTable, error) {
	if _, err := os.Stat(s.Path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, s.Path)
	}

	f, err := xlsx.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", s.Path, err)
	}

	sheet, err := s.sheet(f)
	if err != nil {
		return nil, err
	}

	table := &RawTable{Source: s.Name()}
	for i, row := range sheet.Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if row == nil {
			continue
		}

		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}

		if i == 0 {
			table.Header = NormalizeHeader(cells)
			continue
		}
		if isBlankRow(cells) {
			continue
		}
		table.Rows = append(table.Rows, cells)
	}

	return table, nil
}

func (s *XLSXSource) sheet(f *xlsx.File) (*xlsx.Sheet, error) {
	if s.Sheet == "" {
		if len(f.Sheets) == 0 {
			return nil, fmt.Errorf("%w: %s has no sheets", ErrSheetNotFound, s.Path)
		}
		return f.Sheets[0], nil
	}

	if sheet, ok := f.Sheet[s.Sheet]; ok {
		return sheet, nil
	}
	if i, err := strconv.Atoi(s.Sheet); err == nil && i >= 0 && i < len(f.Sheets) {
		return f.Sheets[i], nil
	}

	return nil, fmt.Errorf("%w: %q in %s", ErrSheetNotFound, s.Sheet, s.Path)
}

func isBlankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------------
// Postgres
// ---------------------------------------------------------------------------

// PostgresSource reads every row of a table, e.g. one populated by a CSV importer.
type PostgresSource struct {
	DB     Querier
	Schema string
	Table  string
}

func (s *PostgresSource) Name() string {
	return PostgresPrefix + s.Schema + "." + s.Table
}

// Query returns the statement used to read the table.
func (s *PostgresSource) Query() string {
	return "SELECT * FROM " + pgx.Identifier{s.Schema, s.Table}.Sanitize()
}

func (s *PostgresSource) Read(ctx context.Context) (*RawTable, error) {
	rows, err := s.DB.Query(ctx, s.Query())
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.Name(), err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	header := make([]string, len(fields))
	for i, fd := range fields {
		header[i] = fd.Name
	}

	table := &RawTable{Source: s.Name(), Header: NormalizeHeader(header)}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.Name(), err)
		}

		cells := make([]string, len(values))
		for i, v := range values {
			cells[i] = FormatValue(v)
		}
		table.Rows = append(table.Rows, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Name(), err)
	}

	return table, nil
}
