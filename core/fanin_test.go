package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRuntimeRequestString(t *testing.T) {
	require.Equal(t, "shutdown", Shutdown.String())
	require.Equal(t, "flush", Flush.String())
	require.Equal(t, "unknown", RuntimeRequest(99).String())
}

func TestInputVariants(t *testing.T) {
	app := WrapMessage(note("hello"))
	ctrl := WrapRequest[note](Shutdown)

	require.Equal(t, "hello", app.String())
	require.Equal(t, "shutdown", ctrl.String())

	switch v := app.(type) {
	case AppMsg[note]:
		require.Equal(t, note("hello"), v.Msg)
	default:
		t.Fatalf("expected AppMsg variant, got %T", app)
	}

	switch v := ctrl.(type) {
	case Ctrl[note]:
		require.Equal(t, Shutdown, v.Req)
	default:
		t.Fatalf("expected Ctrl variant, got %T", ctrl)
	}
}
