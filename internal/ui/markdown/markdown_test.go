package markdown

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"
)

func TestRender_Ascii(t *testing.T) {
	r, err := New(60, "ascii")
	require.NoError(t, err)
	require.Equal(t, 60, r.Width())

	out, err := r.Render("# Charge Card\n\nCharges the customer's card.")
	require.NoError(t, err)

	plain := ansi.Strip(out)
	require.Contains(t, plain, "Charge Card")
	require.Contains(t, plain, "Charges the customer's card.")
}

func TestNew_UnknownStyle(t *testing.T) {
	_, err := New(60, "neon")
	require.ErrorContains(t, err, `unknown markdown style "neon"`)
}

func TestNew_KnownStyles(t *testing.T) {
	for _, s := range Styles {
		_, err := New(40, s)
		require.NoError(t, err, s)
	}
}
