package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"srcfix/internal/normalize"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    Config
		wantErr bool
	}{
		{
			name: "empty document uses defaults",
			yaml: "",
			want: Default(),
		},
		{
			name: "overrides",
			yaml: "encodings: [utf-8, shift_jis]\natomic: true\neol: crlf\ncolor: never\n",
			want: Config{Encodings: []string{"utf-8", "shift_jis"}, Atomic: true, EOL: "crlf", Color: "never"},
		},
		{
			name: "partial keeps other defaults",
			yaml: "atomic: true\n",
			want: Config{Encodings: normalize.DefaultNames, Atomic: true, EOL: "auto", Color: "auto"},
		},
		{name: "unknown key", yaml: "encoding: [utf-8]\n", wantErr: true},
		{name: "unknown encoding", yaml: "encodings: [utf-9]\n", wantErr: true},
		{name: "empty encodings", yaml: "encodings: []\n", wantErr: true},
		{name: "bad eol", yaml: "eol: cr\n", wantErr: true},
		{name: "bad color", yaml: "color: sometimes\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.yaml))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(EnvVar, "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load without a file: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}

	if err := os.WriteFile(DefaultFile, []byte("eol: lf\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load(default file): %v", err)
	}
	if cfg.EOL != "lf" {
		t.Errorf("EOL = %q, want lf", cfg.EOL)
	}

	other := filepath.Join(dir, "other.yaml")
	if err := os.WriteFile(other, []byte("color: always\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvVar, other)
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load($%s): %v", EnvVar, err)
	}
	if cfg.Color != "always" || cfg.EOL != "auto" {
		t.Errorf("Load($%s) = %+v", EnvVar, cfg)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected an error for a missing explicit config")
	}
}

func TestTerminator(t *testing.T) {
	tests := []struct {
		eol  string
		want string
	}{
		{"auto", "\r\n"},
		{"lf", "\n"},
		{"crlf", "\r\n"},
	}
	for _, tt := range tests {
		cfg := Default()
		cfg.EOL = tt.eol
		if got := cfg.Terminator("\r\n"); got != tt.want {
			t.Errorf("Terminator with eol=%s = %q, want %q", tt.eol, got, tt.want)
		}
	}
}
