package cli

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/daygrid/daygrid/pkg/conflict"
	"github.com/daygrid/daygrid/pkg/event"
)

func previewEvents() []event.Event {
	day1 := time.Date(2026, time.March, 9, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, time.March, 10, 14, 0, 0, 0, time.UTC)
	return []event.Event{
		{ID: "a", Summary: "standup", Start: day1, End: day1.Add(time.Hour)},
		{ID: "b", Summary: "review", Start: day1.Add(30 * time.Minute), End: day1.Add(90 * time.Minute)},
		{ID: "c", Summary: "planning", Start: day2, End: day2.Add(time.Hour)},
	}
}

func TestPreviewModelGroupsByDay(t *testing.T) {
	m := newPreviewModel(previewEvents(), nil)
	if len(m.days) != 2 {
		t.Fatalf("got %d days, want 2", len(m.days))
	}
	if m.days[0] != "2026-03-09" || m.days[1] != "2026-03-10" {
		t.Errorf("days = %v", m.days)
	}
	if len(m.byDay["2026-03-09"]) != 2 {
		t.Errorf("day 1 has %d events, want 2", len(m.byDay["2026-03-09"]))
	}
}

func TestPreviewModelNavigation(t *testing.T) {
	m := newPreviewModel(previewEvents(), nil)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = next.(previewModel)
	if m.cursor != 1 {
		t.Errorf("cursor after right = %d, want 1", m.cursor)
	}

	// Right at the last day stays put.
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = next.(previewModel)
	if m.cursor != 1 {
		t.Errorf("cursor past end = %d, want 1", m.cursor)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m = next.(previewModel)
	if m.cursor != 0 {
		t.Errorf("cursor after left = %d, want 0", m.cursor)
	}
}

func TestPreviewModelView(t *testing.T) {
	reports := []conflict.Report{
		{EventID: "a", ConflictingEvents: []string{"b"}, Severity: conflict.SeverityLow},
		{EventID: "b", ConflictingEvents: []string{"a"}, Severity: conflict.SeverityLow},
	}
	m := newPreviewModel(previewEvents(), reports)

	view := m.View()
	for _, want := range []string{"2026-03-09", "standup", "review", "[1/2]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if strings.Contains(view, "planning") {
		t.Error("view shows events from another day")
	}
}
