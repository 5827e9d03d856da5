package cli

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/beamforge/pkg/zgoubi"
)

func progressInputs() []zgoubi.Input {
	return []zgoubi.Input{
		{Name: "cell-000", Deck: "'OBJET'"},
		{Name: "cell-001", Deck: "'OBJET'"},
	}
}

// update drives one message through the model and returns the typed result.
func update(t *testing.T, m RunProgressModel, msg tea.Msg) (RunProgressModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	got, ok := next.(RunProgressModel)
	if !ok {
		t.Fatalf("Update returned %T, want RunProgressModel", next)
	}
	return got, cmd
}

func TestRunProgressModelLifecycle(t *testing.T) {
	m := NewRunProgressModel(progressInputs())
	for i, r := range m.rows {
		if r.state != runPending {
			t.Errorf("rows[%d] initial state = %d, want pending", i, r.state)
		}
	}

	m, _ = update(t, m, runStartedMsg{name: "cell-000"})
	if m.rows[0].state != runActive {
		t.Errorf("state after start = %d, want active", m.rows[0].state)
	}

	m, _ = update(t, m, runFinishedMsg{name: "cell-000", cpu: 1.5, elapsed: 2 * time.Second})
	if m.rows[0].state != runDone {
		t.Errorf("state after finish = %d, want done", m.rows[0].state)
	}
	if m.rows[0].cpu != 1.5 || m.rows[0].elapsed != 2*time.Second {
		t.Errorf("stored cpu/elapsed = %v/%v", m.rows[0].cpu, m.rows[0].elapsed)
	}

	m, _ = update(t, m, runFinishedMsg{name: "cell-001", err: fmt.Errorf("boom")})
	if m.rows[1].state != runFailed {
		t.Errorf("state after error = %d, want failed", m.rows[1].state)
	}

	m, cmd := update(t, m, runsDoneMsg{})
	if !m.done {
		t.Error("model not done after runsDoneMsg")
	}
	if cmd == nil {
		t.Error("runsDoneMsg returned no quit command")
	}
}

func TestRunProgressModelUnknownRun(t *testing.T) {
	m := NewRunProgressModel(progressInputs())
	m, _ = update(t, m, runStartedMsg{name: "stranger"})
	for i, r := range m.rows {
		if r.state != runPending {
			t.Errorf("rows[%d] state = %d after unknown run, want pending", i, r.state)
		}
	}
}

func TestRunProgressModelAbort(t *testing.T) {
	m := NewRunProgressModel(progressInputs())
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if !m.aborted {
		t.Error("model not aborted after q")
	}
	if cmd == nil {
		t.Error("abort returned no quit command")
	}
}

func TestRunProgressModelTick(t *testing.T) {
	m := NewRunProgressModel(progressInputs())

	m, cmd := update(t, m, tickMsg(time.Now()))
	if m.frame != 1 {
		t.Errorf("frame = %d after tick, want 1", m.frame)
	}
	if cmd == nil {
		t.Error("tick did not reschedule")
	}

	// Once the batch is done the ticker stops.
	m, _ = update(t, m, runsDoneMsg{})
	_, cmd = update(t, m, tickMsg(time.Now()))
	if cmd != nil {
		t.Error("tick rescheduled after done")
	}
}

func TestRunProgressModelView(t *testing.T) {
	m := NewRunProgressModel(progressInputs())
	m, _ = update(t, m, runFinishedMsg{name: "cell-000", cpu: 0.25, elapsed: time.Second})

	view := m.View()
	for _, want := range []string{"Tracker runs", "cell-000", "cell-001", "0.25", "[1/2 done]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
