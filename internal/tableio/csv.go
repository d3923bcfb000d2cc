package tableio

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/JonMunkholm/featureprep/internal/table"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	// ErrEmptyFile is returned for input with no header row.
	ErrEmptyFile = errors.New("empty file")

	// ErrInvalidCSV wraps every parse failure that is not a schema problem.
	ErrInvalidCSV = errors.New("invalid csv")
)

// ColumnSpec fixes the kind of one input column.
type ColumnSpec struct {
	Name string
	Kind table.Kind
}

// ReadCSV parses CSV with a header row into a Table.
//
// Columns named in specs get the given kind and must be present. All other
// columns are inferred: numeric when every non-missing cell parses as a
// number and at least one does, categorical otherwise.
//
// A UTF-8 BOM is skipped and invalid UTF-8 is replaced with U+FFFD.
func ReadCSV(r io.Reader, specs []ColumnSpec) (*table.Table, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCSV, err)
	}
	for i := range header {
		header[i] = CleanCell(header[i])
	}

	raw := make([][]string, len(header))
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCSV, err)
		}
		if len(rec) != len(header) {
			return nil, &table.SchemaError{
				Column: header[min(len(rec), len(header)-1)],
				Reason: table.ReasonLengthMismatch,
				Detail: fmt.Sprintf("row %d has %d fields, header has %d", row, len(rec), len(header)),
			}
		}
		for i, cell := range rec {
			raw[i] = append(raw[i], cell)
		}
	}

	kinds, err := resolveKinds(header, specs)
	if err != nil {
		return nil, err
	}

	b := table.NewBuilder()
	for i, name := range header {
		kind, fixed := kinds[name]
		if !fixed {
			kind = inferKind(raw[i])
		}

		switch kind {
		case table.Numeric:
			cells, err := parseNumbers(name, raw[i])
			if err != nil {
				return nil, err
			}
			b.AddNumeric(name, cells)
		default:
			cells := make([]pgtype.Text, len(raw[i]))
			for j, s := range raw[i] {
				cells[j] = ParseText(s)
			}
			b.AddCategorical(name, cells)
		}
	}
	return b.Build()
}

func resolveKinds(header []string, specs []ColumnSpec) (map[string]table.Kind, error) {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}

	kinds := make(map[string]table.Kind, len(specs))
	for _, s := range specs {
		if !present[s.Name] {
			return nil, table.MissingColumn(s.Name)
		}
		kinds[s.Name] = s.Kind
	}
	return kinds, nil
}

func inferKind(cells []string) table.Kind {
	seen := false
	for _, s := range cells {
		v, ok := ParseNumber(s)
		if !ok {
			return table.Categorical
		}
		if v.Valid {
			seen = true
		}
	}
	if !seen {
		return table.Categorical
	}
	return table.Numeric
}

func parseNumbers(name string, raw []string) ([]pgtype.Float8, error) {
	cells := make([]pgtype.Float8, len(raw))
	for j, s := range raw {
		v, ok := ParseNumber(s)
		if !ok {
			return nil, fmt.Errorf("%w: row %d column %q: %q is not a number", ErrInvalidCSV, j+1, name, s)
		}
		cells[j] = v
	}
	return cells, nil
}

// WriteCSV writes t with a header row. Missing cells are written empty.
func WriteCSV(w io.Writer, t *table.Table) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(t.Names()); err != nil {
		return err
	}

	cols := t.Columns()
	rec := make([]string, len(cols))
	for i := 0; i < t.Rows(); i++ {
		for j, c := range cols {
			if c.Kind() == table.Numeric {
				rec[j] = FormatNumber(c.Float(i))
			} else {
				rec[j] = FormatText(c.Text(i))
			}
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// CSVSource loads a table from CSV. Open is called once per Load, so a
// file-backed source can be reused across runs.
type CSVSource struct {
	Open  func() (io.ReadCloser, error)
	Specs []ColumnSpec
}

// NewCSVFileSource reads the file at path on every Load.
func NewCSVFileSource(path string, specs []ColumnSpec) *CSVSource {
	return &CSVSource{
		Open:  func() (io.ReadCloser, error) { return os.Open(path) },
		Specs: specs,
	}
}

// NewCSVBytesSource reads an in-memory CSV document.
func NewCSVBytesSource(data []byte, specs []ColumnSpec) *CSVSource {
	return &CSVSource{
		Open:  func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
		Specs: specs,
	}
}

// Load implements core.DataSource.
func (s *CSVSource) Load(ctx context.Context) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rc, err := s.Open()
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer rc.Close()

	return ReadCSV(rc, s.Specs)
}
