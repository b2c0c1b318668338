package catalogview

import (
	"bytes"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	zone "github.com/lrstanley/bubblezone"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/catalog/internal/templates"
)

// harness hosts the modal the way the application does: it records the
// applied template and quits when the modal closes.
type harness struct {
	view    Model
	applied []templates.ElementTemplate
	closed  bool
}

func (h harness) Init() tea.Cmd { return h.view.Init() }

func (h harness) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ApplyMsg:
		h.applied = append(h.applied, msg.Template)
		return h, nil
	case CloseMsg:
		h.closed = true
		return h, tea.Quit
	}
	var cmd tea.Cmd
	h.view, cmd = h.view.Update(msg)
	return h, cmd
}

func (h harness) View() string { return zone.Scan(h.view.View()) }

func startProgram(t *testing.T) *teatest.TestModel {
	t.Helper()
	tm := teatest.NewTestModel(t, harness{view: newView(t)}, teatest.WithInitialTermSize(100, 60))
	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte(Header))
	}, teatest.WithDuration(2*time.Second))
	return tm
}

func finalHarness(t *testing.T, tm *teatest.TestModel) harness {
	t.Helper()
	fm := tm.FinalModel(t, teatest.WithFinalTimeout(2*time.Second))
	h, ok := fm.(harness)
	require.True(t, ok)
	return h
}

func TestProgram_SearchSelectApply(t *testing.T) {
	tm := startProgram(t)

	tm.Send(runes("/"))
	tm.Type("charge")
	tm.Send(enter)
	tm.Send(space)
	tm.Send(runes("a"))

	h := finalHarness(t, tm)
	require.True(t, h.closed)
	require.Len(t, h.applied, 1, "apply is emitted once, before close")
	require.Equal(t, "charge", h.applied[0].ID)
}

func TestProgram_CancelDoesNotApply(t *testing.T) {
	tm := startProgram(t)

	tm.Send(runes("j"))
	tm.Send(space)
	tm.Send(esc)

	h := finalHarness(t, tm)
	require.True(t, h.closed)
	require.Empty(t, h.applied)
}

func TestProgram_SelectingMissingEntryKeepsSelection(t *testing.T) {
	tm := startProgram(t)

	// select "rest", then filter it out and try to select in an empty list
	tm.Send(space)
	tm.Send(runes("/"))
	tm.Type("zzz")
	tm.Send(enter)
	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte(EmptyText))
	}, teatest.WithDuration(2*time.Second))
	tm.Send(space)
	tm.Send(runes("a"))

	h := finalHarness(t, tm)
	require.Len(t, h.applied, 1)
	require.Equal(t, "rest", h.applied[0].ID)
}
