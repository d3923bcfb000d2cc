package tableio

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/JonMunkholm/featureprep/internal/table"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// DBTX is the subset of *pgxpool.Pool and pgx.Tx used here.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// numericOIDs are result types loaded as numeric columns.
var numericOIDs = map[uint32]bool{
	pgtype.Int2OID:    true,
	pgtype.Int4OID:    true,
	pgtype.Int8OID:    true,
	pgtype.Float4OID:  true,
	pgtype.Float8OID:  true,
	pgtype.NumericOID: true,
}

// PostgresSource loads a table from a query. Numeric result columns become
// numeric table columns; everything else is categorical. NULL is missing.
type PostgresSource struct {
	DB    DBTX
	Query string
	Args  []any
}

// Load implements core.DataSource.
func (s *PostgresSource) Load(ctx context.Context) (*table.Table, error) {
	rows, err := s.DB.Query(ctx, s.Query, s.Args...)
	if err != nil {
		return nil, fmt.Errorf("query source: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	nums := make([][]pgtype.Float8, len(fields))
	texts := make([][]pgtype.Text, len(fields))

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read source row: %w", err)
		}
		for i, v := range values {
			if numericOIDs[fields[i].DataTypeOID] {
				f, err := floatCell(v)
				if err != nil {
					return nil, fmt.Errorf("column %q: %w", fields[i].Name, err)
				}
				if f.Valid && (math.IsInf(f.Float64, 0) || math.IsNaN(f.Float64)) {
					return nil, &table.DataError{Column: fields[i].Name, Reason: table.ReasonNonFinite}
				}
				nums[i] = append(nums[i], f)
			} else {
				texts[i] = append(texts[i], textCell(v))
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read source rows: %w", err)
	}

	b := table.NewBuilder()
	for i, fd := range fields {
		if numericOIDs[fd.DataTypeOID] {
			b.AddNumeric(fd.Name, nonNil(nums[i]))
		} else {
			b.AddCategorical(fd.Name, nonNil(texts[i]))
		}
	}
	return b.Build()
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// floatCell converts a decoded numeric value to a table cell.
func floatCell(v any) (pgtype.Float8, error) {
	switch n := v.(type) {
	case nil:
		return table.NullFloat(), nil
	case float64:
		return table.Num(n), nil
	case float32:
		return table.Num(float64(n)), nil
	case int16:
		return table.Num(float64(n)), nil
	case int32:
		return table.Num(float64(n)), nil
	case int64:
		return table.Num(float64(n)), nil
	case pgtype.Numeric:
		if !n.Valid {
			return table.NullFloat(), nil
		}
		f, err := n.Float64Value()
		if err != nil {
			return pgtype.Float8{}, err
		}
		if !f.Valid {
			return table.NullFloat(), nil
		}
		return f, nil
	default:
		return pgtype.Float8{}, fmt.Errorf("unsupported numeric value %T", v)
	}
}

// textCell converts a decoded value to a categorical cell.
func textCell(v any) pgtype.Text {
	switch s := v.(type) {
	case nil:
		return table.NullText()
	case string:
		return table.Str(s)
	case [16]byte:
		return table.Str(uuid.UUID(s).String())
	default:
		return table.Str(fmt.Sprint(v))
	}
}

// PostgresSink writes every run's final table into one PostgreSQL table
// using COPY. The target table is created on first use with a run_id and
// row_index column followed by the table's own columns.
type PostgresSink struct {
	DB    DBTX
	Table string
}

// Write implements core.ResultSink.
func (s *PostgresSink) Write(ctx context.Context, runID string, t *table.Table) error {
	id, err := uuid.Parse(runID)
	if err != nil {
		return fmt.Errorf("run id: %w", err)
	}

	if _, err := s.DB.Exec(ctx, createTableSQL(s.Table, t)); err != nil {
		return fmt.Errorf("create export table: %w", err)
	}

	columns := append([]string{"run_id", "row_index"}, t.Names()...)
	cols := t.Columns()
	runUUID := pgtype.UUID{Bytes: id, Valid: true}

	n, err := s.DB.CopyFrom(ctx, pgx.Identifier{s.Table}, columns,
		pgx.CopyFromSlice(t.Rows(), func(i int) ([]any, error) {
			row := make([]any, 0, len(columns))
			row = append(row, runUUID, int32(i))
			for _, c := range cols {
				if c.Kind() == table.Numeric {
					row = append(row, c.Float(i))
				} else {
					row = append(row, c.Text(i))
				}
			}
			return row, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy to %s: %w", s.Table, err)
	}
	if int(n) != t.Rows() {
		return fmt.Errorf("copy to %s: wrote %d of %d rows", s.Table, n, t.Rows())
	}
	return nil
}

func createTableSQL(name string, t *table.Table) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(pgx.Identifier{name}.Sanitize())
	b.WriteString(" (run_id uuid NOT NULL, row_index integer NOT NULL")
	for _, c := range t.Columns() {
		b.WriteString(", ")
		b.WriteString(pgx.Identifier{c.Name()}.Sanitize())
		if c.Kind() == table.Numeric {
			b.WriteString(" double precision")
		} else {
			b.WriteString(" text")
		}
	}
	b.WriteString(", PRIMARY KEY (run_id, row_index))")
	return b.String()
}
