package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/similigh/fb2gh/internal/migrate"
)

func TestModelCountsEvents(t *testing.T) {
	m := NewModel("FogBugz -> acme/widgets", 3, nil, nil)

	events := []migrate.Event{
		{Kind: migrate.EventRunStarted, RunID: "r1"},
		{Kind: migrate.EventCaseMigrated, Record: migrate.Record{CaseID: 1, Title: "one", IssueNumber: 10}},
		{Kind: migrate.EventCaseSkipped, Record: migrate.Record{CaseID: 2, Title: "two"}},
		{Kind: migrate.EventCaseFailed, Record: migrate.Record{CaseID: 3, Title: "three"}, Err: errors.New("boom")},
	}
	var model tea.Model = m
	for _, ev := range events {
		model, _ = model.Update(EventMsg{Event: ev})
	}
	got := model.(Model)

	if got.done != 3 || got.migrated != 1 || got.skipped != 1 || got.failed != 1 {
		t.Errorf("unexpected counts: done=%d migrated=%d skipped=%d failed=%d", got.done, got.migrated, got.skipped, got.failed)
	}

	view := got.View()
	for _, want := range []string{"3/3", "migrated 1", "skipped 1", "failed 1", "case 1 -> #10", "case 3 failed: boom"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestModelQuitCancelsOnce(t *testing.T) {
	cancels := 0
	m := NewModel("run", 1, nil, func() { cancels++ })

	var model tea.Model = m
	for i := 0; i < 2; i++ {
		var cmd tea.Cmd
		model, cmd = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
		if cmd != nil {
			t.Error("stopping must not quit before the run finishes")
		}
	}
	if cancels != 1 {
		t.Errorf("cancel called %d times, want 1", cancels)
	}
	if !strings.Contains(model.View(), "Stopping") {
		t.Error("expected stopping notice")
	}
}

func TestModelFinish(t *testing.T) {
	ch := make(chan migrate.Event, 1)
	report := &migrate.Report{RunID: "r1", State: migrate.StateCompleted}
	ch <- migrate.Event{Kind: migrate.EventRunFinished, Report: report}
	close(ch)

	m := NewModel("run", 0, ch, nil)

	msg := m.waitForActivity()()
	model, _ := m.Update(msg)
	if model.(Model).Report() != report {
		t.Error("expected report from finish event")
	}

	msg = model.(Model).waitForActivity()()
	if _, ok := msg.(DoneMsg); !ok {
		t.Fatalf("expected DoneMsg on closed channel, got %T", msg)
	}
	model, cmd := model.Update(msg)
	if cmd == nil || model.View() != "" {
		t.Error("expected quit with empty view")
	}
}
