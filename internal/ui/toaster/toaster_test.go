package toaster

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestNew_Hidden(t *testing.T) {
	m := New()

	assert.False(t, m.Visible())
	assert.Empty(t, m.View())
	assert.Equal(t, "bg", m.Overlay("bg", 10, 3))
}

func TestShow(t *testing.T) {
	m, cmd := New().Show("Applied REST Connector", StyleSuccess, time.Millisecond)
	require.NotNil(t, cmd)

	assert.True(t, m.Visible())
	assert.Equal(t, "Applied REST Connector", m.Message())
	view := m.View()
	assert.Contains(t, view, "✓ Applied REST Connector")
	assert.Contains(t, view, "╭")
}

func TestView_Styles(t *testing.T) {
	m, _ := New().Show("boom", StyleError, time.Millisecond)
	assert.Contains(t, m.View(), "✗ boom")

	m, _ = m.Show("careful", StyleWarn, time.Millisecond)
	assert.Contains(t, m.View(), "! careful")
	assert.Equal(t, StyleWarn, m.Style())
}

func TestDismiss(t *testing.T) {
	m, cmd := New().Show("Hello", StyleSuccess, time.Millisecond)

	m = m.Update(cmd())
	assert.False(t, m.Visible())
	assert.Empty(t, m.View())
}

func TestDismiss_StaleTickKeepsNewerToast(t *testing.T) {
	m, first := New().Show("First", StyleSuccess, time.Millisecond)
	m, _ = m.Show("Second", StyleError, time.Millisecond)

	m = m.Update(first())
	require.True(t, m.Visible(), "dismissal of the first toast must not hide the second")
	assert.Equal(t, "Second", m.Message())
}

func TestOverlay_BottomAnchored(t *testing.T) {
	bg := strings.Repeat(strings.Repeat(".", 30)+"\n", 9) + strings.Repeat(".", 30)
	m, _ := New().Show("Saved", StyleSuccess, time.Millisecond)

	lines := strings.Split(m.Overlay(bg, 30, 10), "\n")
	require.Len(t, lines, 10)
	// three-row box ending two rows above the bottom edge
	assert.Contains(t, lines[6], "Saved")
	assert.Equal(t, strings.Repeat(".", 30), lines[9])
	assert.Equal(t, strings.Repeat(".", 30), lines[4])
}
