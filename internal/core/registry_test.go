package core

import (
	"testing"
)

func registerTestSource(key, group string) {
	RegisterSource(SourceDefinition{
		Info: SourceInfo{Key: key, Group: group, Label: key},
		New:  func() DataSource { return nil },
	})
}

func TestRegistry(t *testing.T) {
	ClearSources()
	defer ClearSources()

	registerTestSource("zeta", "files")
	registerTestSource("alpha", "files")
	registerTestSource("reference", "builtin")

	if got := SourceCount(); got != 3 {
		t.Fatalf("SourceCount() = %d, want 3", got)
	}

	all := AllSources()
	wantOrder := []string{"reference", "alpha", "zeta"}
	for i, key := range wantOrder {
		if all[i].Info.Key != key {
			t.Errorf("AllSources()[%d] = %q, want %q", i, all[i].Info.Key, key)
		}
	}

	groups := SourceGroups()
	if len(groups) != 2 || groups[0] != "builtin" || groups[1] != "files" {
		t.Errorf("SourceGroups() = %v, want [builtin files]", groups)
	}

	if _, ok := GetSource("alpha"); !ok {
		t.Error("GetSource(alpha) not found")
	}
	if _, ok := GetSource("missing"); ok {
		t.Error("GetSource(missing) found")
	}
}

func TestRegisterSource_Panics(t *testing.T) {
	ClearSources()
	defer ClearSources()

	registerTestSource("dup", "builtin")

	tests := []struct {
		name string
		def  SourceDefinition
	}{
		{"duplicate key", SourceDefinition{Info: SourceInfo{Key: "dup"}, New: func() DataSource { return nil }}},
		{"nil factory", SourceDefinition{Info: SourceInfo{Key: "nofactory"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("RegisterSource() did not panic")
				}
			}()
			RegisterSource(tt.def)
		})
	}
}
