package core

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRuntime() *Runtime {
	return NewRuntime(RuntimeOptions{
		Logger:         quietLogger(),
		SampleInterval: -1,
	})
}

// relayBody forwards application messages to the output and returns on
// Shutdown or end-of-stream.
func relayBody(ctx context.Context, mb *Mailbox[Input[note]], out Recipient[note]) error {
	for {
		m, err := mb.Receive(ctx)
		if err != nil {
			return nil
		}
		switch v := m.(type) {
		case AppMsg[note]:
			if err := out.Send(ctx, v.Msg); err != nil {
				return nil
			}
		case Ctrl[note]:
			if v.Req == Shutdown {
				return nil
			}
		}
	}
}

func TestBuilderConnectPeer(t *testing.T) {
	ctx := context.Background()
	sink, collect := NewMailbox[note]("sink", 16)

	b := NewBuilder("relay", WrapRequest[note], relayBody, Options{Logger: quietLogger()})

	in, err := b.ConnectPeer(collect)
	require.NoError(t, err)

	rt := testRuntime()
	require.NoError(t, rt.Spawn(b))

	done := make(chan error, 1)
	go func() { done <- rt.Run(ctx) }()

	require.NoError(t, in.Send(ctx, WrapMessage(note("payload"))))

	m, err := sink.Receive(ctx)
	require.NoError(t, err)
	require.Equal(t, note("payload"), m)

	rt.RequestShutdown()
	require.NoError(t, <-done)
}

func TestBuilderLinkAfterSpawnRejected(t *testing.T) {
	b := NewBuilder("late", WrapRequest[note], relayBody, Options{Logger: quietLogger()})

	rt := testRuntime()
	require.NoError(t, rt.Spawn(b))

	_, err := b.InputRecipient()
	require.ErrorIs(t, err, ErrLinkAlreadySpawned)

	err = b.ConnectOutput(Discard[note]())
	require.ErrorIs(t, err, ErrLinkAlreadySpawned)

	_, err = b.ConnectPeer(Discard[note]())
	require.ErrorIs(t, err, ErrLinkAlreadySpawned)

	err = b.Spawn(rt.Handle())
	require.ErrorIs(t, err, ErrLinkAlreadySpawned)
}

func TestBuilderDoubleLinkRejected(t *testing.T) {
	b := NewBuilder("double", WrapRequest[note], relayBody, Options{Logger: quietLogger()})

	require.NoError(t, b.ConnectOutput(Discard[note]()))
	require.ErrorIs(t, b.ConnectOutput(Discard[note]()), ErrLinkAlreadyLinked)
}

func TestBuilderDefaultOutputIsDiscard(t *testing.T) {
	ctx := context.Background()

	// No output ever connected: sends inside the body must not block or
	// fail once the builder has been spawned.
	b := NewBuilder("unlinked", WrapRequest[note], relayBody, Options{Logger: quietLogger()})
	in, err := b.InputRecipient()
	require.NoError(t, err)

	rt := testRuntime()
	require.NoError(t, rt.Spawn(b))

	done := make(chan error, 1)
	go func() { done <- rt.Run(ctx) }()

	for i := 0; i < 100; i++ {
		require.NoError(t, in.Send(ctx, WrapMessage(note("dropped"))))
	}

	rt.RequestShutdown()
	require.NoError(t, <-done)
}

// passBody forwards application messages unchanged, keeping the fan-in
// type, so stages built on it can be chained with Wire.
func passBody(ctx context.Context, mb *Mailbox[Input[note]], out Recipient[Input[note]]) error {
	for {
		m, err := mb.Receive(ctx)
		if err != nil {
			return nil
		}
		switch v := m.(type) {
		case AppMsg[note]:
			if err := out.Send(ctx, v); err != nil {
				return nil
			}
		case Ctrl[note]:
			if v.Req == Shutdown {
				return nil
			}
		}
	}
}

func TestWireChainsStages(t *testing.T) {
	ctx := context.Background()
	sink, collect := NewMailbox[Input[note]]("sink", 16)

	first := NewBuilder("first", WrapRequest[note], passBody, Options{Logger: quietLogger()})
	second := NewBuilder("second", WrapRequest[note], passBody, Options{Logger: quietLogger()})

	require.NoError(t, Wire(first, second))
	require.NoError(t, second.ConnectOutput(collect))

	in, err := first.InputRecipient()
	require.NoError(t, err)

	rt := testRuntime()
	require.NoError(t, rt.Spawn(first, second))

	done := make(chan error, 1)
	go func() { done <- rt.Run(ctx) }()

	require.NoError(t, in.Send(ctx, WrapMessage(note("through"))))

	m, err := sink.Receive(ctx)
	require.NoError(t, err)
	require.Equal(t, WrapMessage(note("through")), m)

	rt.RequestShutdown()
	require.NoError(t, <-done)
}
