package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseSeed(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []string
		wantErr bool
	}{
		{"yaml list", "- battery life\n- price\n", []string{"battery life", "price"}, false},
		{"yaml mapping", "attributes:\n  - durability\n  - ' size '\n  - ''\n", []string{"durability", "size"}, false},
		{"json list", `["a", "b"]`, []string{"a", "b"}, false},
		{"json object", `{"attributes": ["c"]}`, []string{"c"}, false},
		{"empty", "", nil, false},
		{"scalar", "just a string", nil, true},
		{"broken", "- [unclosed", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSeed([]byte(tt.in))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" && !(len(tt.want) == 0 && len(got) == 0) {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadSeed(t *testing.T) {
	names, err := LoadSeed("")
	if err != nil || names != nil {
		t.Errorf("empty path = %v, %v", names, err)
	}

	path := filepath.Join(t.TempDir(), "vocab.yaml")
	if err := os.WriteFile(path, []byte("attributes: [brightness, water resistance]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	names, err = LoadSeed(path)
	if err != nil {
		t.Fatalf("LoadSeed: %v", err)
	}
	if diff := cmp.Diff([]string{"brightness", "water resistance"}, names); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	if _, err := LoadSeed(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
