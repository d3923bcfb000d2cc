package sources

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/JonMunkholm/featureprep/internal/config"
	"github.com/JonMunkholm/featureprep/internal/core"
	"github.com/JonMunkholm/featureprep/internal/table"
	"github.com/JonMunkholm/featureprep/internal/tableio"
)

// ColumnSpecs converts the column entries of a rules file into CSV column
// specs. Nil rules yield nil specs, so every column is inferred.
func ColumnSpecs(rules *config.Rules) ([]tableio.ColumnSpec, error) {
	if rules == nil || len(rules.Column) == 0 {
		return nil, nil
	}

	specs := make([]tableio.ColumnSpec, 0, len(rules.Column))
	seen := make(map[string]bool, len(rules.Column))
	for _, c := range rules.Column {
		if c.Name == "" {
			return nil, fmt.Errorf("column rule: name is required")
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("column rule %q: declared twice", c.Name)
		}
		seen[c.Name] = true

		kind, err := table.ParseKind(c.Kind)
		if err != nil {
			return nil, fmt.Errorf("column rule %q: %w", c.Name, err)
		}
		specs = append(specs, tableio.ColumnSpec{Name: c.Name, Kind: kind})
	}
	return specs, nil
}

// RegisterDir registers every *.csv file in dir as "csv_<name>" in the
// "files" group, read with specs. Returns the number of sources registered.
func RegisterDir(dir string, specs []tableio.ColumnSpec) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read source dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name)
		base := strings.TrimSuffix(name, filepath.Ext(name))
		core.RegisterSource(core.SourceDefinition{
			Info: core.SourceInfo{
				Key:         "csv_" + base,
				Group:       "files",
				Label:       base,
				Description: path,
			},
			New: func() core.DataSource { return tableio.NewCSVFileSource(path, specs) },
		})
	}
	return len(names), nil
}

// RegisterPostgres registers query as the "postgres" source.
func RegisterPostgres(db tableio.DBTX, query string) {
	core.RegisterSource(core.SourceDefinition{
		Info: core.SourceInfo{
			Key:         "postgres",
			Group:       "postgres",
			Label:       "PostgreSQL query",
			Description: query,
		},
		New: func() core.DataSource { return &tableio.PostgresSource{DB: db, Query: query} },
	})
}
