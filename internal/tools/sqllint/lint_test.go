package main

import (
	"strings"
	"testing"
)

func TestLintSource(t *testing.T) {
	src := `package q

const cols = "id, name"

const QGood = ` + "`" + `--sql 0f4a3c1e-2b7d-4e8a-9c6f-1d2e3f4a5b6c
select ` + "` + cols + `" + `
from users;
` + "`" + `

const QNoMarker = "select 1"

const QBadMarker = "--sql not-a-uuid\nselect 1"

const QNotSQL = "--sql 11111111-2222-4333-8444-555555555555\nhello"

const QCopy = "--sql 0f4a3c1e-2b7d-4e8a-9c6f-1d2e3f4a5b6c\ndelete from users"

const helper = "select 2"
`
	l := newLinter()
	if err := l.lintSource("q.go", src); err != nil {
		t.Fatalf("lintSource: %v", err)
	}
	got := map[string]string{}
	for _, v := range l.violations() {
		got[v.name] = v.message
	}

	want := map[string]string{
		"QNoMarker":  "missing",
		"QBadMarker": "missing",
		"QNotSQL":    "no SQL",
		"QCopy":      "duplicate marker also used by QGood",
	}
	if len(got) != len(want) {
		t.Fatalf("violations = %v, want keys %v", got, want)
	}
	for name, fragment := range want {
		if !strings.Contains(got[name], fragment) {
			t.Errorf("%s: message %q does not contain %q", name, got[name], fragment)
		}
	}
}

func TestIsQueryName(t *testing.T) {
	tests := map[string]bool{
		"QInsertTask": true,
		"Q":           false,
		"Query":       false,
		"qInsert":     false,
		"taskColumns": false,
	}
	for name, want := range tests {
		if got := isQueryName(name); got != want {
			t.Errorf("isQueryName(%q) = %v, want %v", name, got, want)
		}
	}
}
