package cli

import (
	"io"
	"testing"
	"time"
)

func TestRootCommandTree(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	want := map[string]bool{
		"layout":    false,
		"conflicts": false,
		"optimize":  false,
		"serve":     false,
		"preview":   false,
		"cache":     false,
	}
	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestParseMonth(t *testing.T) {
	w, err := parseMonth("2026-03")
	if err != nil {
		t.Fatal(err)
	}
	if w.Start.Month() != time.March || w.Start.Day() != 1 {
		t.Errorf("window start = %s", w.Start)
	}
	if w.End.Month() != time.April {
		t.Errorf("window end = %s", w.End)
	}

	if _, err := parseMonth("march"); err == nil {
		t.Error("bad month accepted")
	}

	now, err := parseMonth("")
	if err != nil {
		t.Fatal(err)
	}
	if now.IsZero() {
		t.Error("empty month did not default to current")
	}
}
