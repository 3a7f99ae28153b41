package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/pkg/errors"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "knucleotide.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	want := []int{1, 2, 3, 4, 6, 12, 18}
	if got := cfg.KValues(); !slices.Equal(got, want) {
		t.Errorf("KValues = %v, want %v", got, want)
	}
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `
workers = 4
id = "THREE"
frequencies = [1, 2, 3]
literals = ["acgt", "GG"]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Workers != 4 || cfg.ID != "THREE" || cfg.Record != 3 {
		t.Errorf("cfg = %+v", cfg)
	}
	if got := cfg.KValues(); !slices.Equal(got, []int{1, 2, 3, 4}) {
		t.Errorf("KValues = %v", got)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		invalid bool
	}{
		{"syntax", "workers = [", false},
		{"negative workers", "workers = -1", true},
		{"k too large", "frequencies = [33]", true},
		{"bad literal", `literals = ["GGN"]`, true},
		{"zero record", "record = 0", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tc.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if tc.invalid && errors.Cause(err) != ErrInvalid {
				t.Errorf("err = %v, want ErrInvalid", err)
			}
		})
	}
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("missing file accepted")
	}
}
