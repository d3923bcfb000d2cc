package core

import (
	"context"
	"testing"

	"github.com/JonMunkholm/featureprep/internal/table"
	"github.com/jackc/pgx/v5/pgtype"
)

// ============================================================================
// Stage Benchmarks
// ============================================================================

// wideTable builds rows x 3 input columns with every tenth cell missing.
func wideTable(b *testing.B, rows int) *table.Table {
	b.Helper()
	a := make([]pgtype.Float8, rows)
	bb := make([]pgtype.Float8, rows)
	c := make([]pgtype.Text, rows)
	for i := 0; i < rows; i++ {
		a[i] = table.Num(float64(i % 97))
		bb[i] = table.Num(float64(i%13) - 3)
		if i%2 == 0 {
			c[i] = table.Str("x")
		} else {
			c[i] = table.Str("y")
		}
		if i%10 == 0 {
			a[i] = table.NullFloat()
			bb[i] = table.NullFloat()
			c[i] = table.NullText()
		}
	}

	t, err := table.NewBuilder().
		AddNumeric("A", a).
		AddNumeric("B", bb).
		AddCategorical("C", c).
		Build()
	if err != nil {
		b.Fatal(err)
	}
	return t
}

// BenchmarkSanitizer benchmarks imputation and clamping on 100k rows.
func BenchmarkSanitizer(b *testing.B) {
	in := wideTable(b, 100_000)
	s := NewSanitizer(DefaultOptions())

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Apply(in); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkPipeline benchmarks the full run on 100k rows.
func BenchmarkPipeline(b *testing.B) {
	p := NewPipeline(staticSource(wideTable(b, 100_000)), DefaultOptions())
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.Run(ctx); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkPipeline_Reference benchmarks the five-row table, where the
// per-run overhead dominates.
func BenchmarkPipeline_Reference(b *testing.B) {
	p := NewPipeline(staticSource(scenario(b)), DefaultOptions())
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.Run(ctx); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkForEachColumnParallel measures fan-out overhead.
func BenchmarkForEachColumnParallel(b *testing.B) {
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = forEachColumn(8, func(int) error { return nil })
		}
	})
}
