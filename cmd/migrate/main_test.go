package main

import (
	"strings"
	"testing"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		cmd     string
		arg     int
		wantErr bool
	}{
		{"up", []string{"up"}, "up", 0, false},
		{"down", []string{"down"}, "down", 0, false},
		{"version", []string{"version"}, "version", 0, false},
		{"steps back", []string{"steps", "-1"}, "steps", -1, false},
		{"force", []string{"force", "1"}, "force", 1, false},
		{"missing", nil, "", 0, true},
		{"unknown", []string{"sideways"}, "", 0, true},
		{"extra operand", []string{"up", "2"}, "", 0, true},
		{"steps zero", []string{"steps", "0"}, "", 0, true},
		{"steps not integer", []string{"steps", "two"}, "", 0, true},
		{"force missing operand", []string{"force"}, "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, arg, err := parseCommand(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if cmd != tt.cmd || arg != tt.arg {
				t.Errorf("got (%q, %d), want (%q, %d)", cmd, arg, tt.cmd, tt.arg)
			}
		})
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	src, err := newSource()
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	defer src.Close()

	first, err := src.First()
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if first != 1 {
		t.Errorf("first migration = %d, want 1", first)
	}

	up, _, err := src.ReadUp(first)
	if err != nil {
		t.Fatalf("read up: %v", err)
	}
	up.Close()

	down, _, err := src.ReadDown(first)
	if err != nil {
		t.Fatalf("read down: %v", err)
	}
	down.Close()
}

func TestResolveDSNPrefersFlagThenEnv(t *testing.T) {
	t.Setenv(envDSN, "postgres://env@db/docsort")

	if got, _ := resolveDSN("postgres://flag@db/docsort"); got != "postgres://flag@db/docsort" {
		t.Errorf("flag dsn = %s", got)
	}
	if got, _ := resolveDSN(""); got != "postgres://env@db/docsort" {
		t.Errorf("env dsn = %s", got)
	}
}

func TestResolveDSNFromConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(envDSN, "")
	t.Setenv("DOCSORT_DB_HOST", "pg.internal")

	got, err := resolveDSN("")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !strings.Contains(got, "@pg.internal:5432/docsort") {
		t.Errorf("dsn = %s", got)
	}
}
