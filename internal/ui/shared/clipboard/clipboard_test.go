package clipboard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	var c Clipboard = &Recorder{}
	require.NoError(t, c.Copy("io.catalog.payments.charge"))
	require.NoError(t, c.Copy("io.catalog.payments.refund"))

	r := c.(*Recorder)
	require.Equal(t, []string{"io.catalog.payments.charge", "io.catalog.payments.refund"}, r.Copied)
	require.Equal(t, "io.catalog.payments.refund", r.Last())
}

func TestRecorder_Error(t *testing.T) {
	r := &Recorder{Err: errors.New("no clipboard")}
	require.EqualError(t, r.Copy("x"), "no clipboard")
	require.Empty(t, r.Last())
}

func TestSystemImplementsClipboard(t *testing.T) {
	var _ Clipboard = System{}
}
