package table

import (
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
)

// columnJSON is the interchange shape of one column: a (name, kind, values)
// triple with null for missing cells.
type columnJSON struct {
	Name   string          `json:"name"`
	Kind   string          `json:"kind"`
	Values json.RawMessage `json:"values"`
}

type tableJSON struct {
	Rows    int          `json:"rows"`
	Columns []columnJSON `json:"columns"`
}

// MarshalJSON encodes the table in its interchange shape.
func (t *Table) MarshalJSON() ([]byte, error) {
	out := tableJSON{Rows: t.rows, Columns: make([]columnJSON, len(t.columns))}
	for i, c := range t.columns {
		values := make([]any, c.Len())
		for r := range values {
			values[r] = c.Value(r)
		}
		raw, err := json.Marshal(values)
		if err != nil {
			return nil, fmt.Errorf("encode column %q: %w", c.name, err)
		}
		out.Columns[i] = columnJSON{Name: c.name, Kind: c.kind.String(), Values: raw}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the interchange shape, enforcing the same schema
// rules as Builder.
func (t *Table) UnmarshalJSON(data []byte) error {
	built, err := FromJSON(data)
	if err != nil {
		return err
	}
	*t = *built
	return nil
}

// FromJSON decodes a table from its interchange shape.
func FromJSON(data []byte) (*Table, error) {
	var in tableJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("decode table: %w", err)
	}

	b := NewBuilder()
	for _, col := range in.Columns {
		kind, err := ParseKind(col.Kind)
		if err != nil {
			return nil, &SchemaError{Column: col.Name, Reason: ReasonKindMismatch, Detail: err.Error()}
		}

		switch kind {
		case Numeric:
			var vals []*float64
			if err := json.Unmarshal(col.Values, &vals); err != nil {
				return nil, fmt.Errorf("decode column %q: %w", col.Name, err)
			}
			cells := make([]pgtype.Float8, len(vals))
			for i, v := range vals {
				if v != nil {
					cells[i] = Num(*v)
				}
			}
			b.AddNumeric(col.Name, cells)
		case Categorical:
			var vals []*string
			if err := json.Unmarshal(col.Values, &vals); err != nil {
				return nil, fmt.Errorf("decode column %q: %w", col.Name, err)
			}
			cells := make([]pgtype.Text, len(vals))
			for i, v := range vals {
				if v != nil {
					cells[i] = Str(*v)
				}
			}
			b.AddCategorical(col.Name, cells)
		}
	}

	t, err := b.Build()
	if err != nil {
		return nil, err
	}
	if len(in.Columns) > 0 && in.Rows != t.rows {
		return nil, &SchemaError{
			Column: in.Columns[0].Name,
			Reason: ReasonLengthMismatch,
			Detail: lengthDetail(in.Rows, t.rows),
		}
	}
	return t, nil
}
