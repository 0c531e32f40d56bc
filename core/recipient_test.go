package core

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// tick is a second message kind for adapter tests.
type tick int

func (t tick) String() string { return "tick " + strconv.Itoa(int(t)) }

func TestMapRecipientConverts(t *testing.T) {
	ctx := context.Background()
	mb, r := NewMailbox[note]("mapped", 4)
	defer r.Close()

	ticks := MapRecipient[tick](r.Clone(), func(tk tick) note {
		return note(tk.String())
	})
	defer ticks.Close()

	require.NoError(t, ticks.Send(ctx, tick(7)))
	m, err := mb.Receive(ctx)
	require.NoError(t, err)
	require.Equal(t, note("tick 7"), m)

	require.NoError(t, ticks.TrySend(tick(8)))
	m, err = mb.Receive(ctx)
	require.NoError(t, err)
	require.Equal(t, note("tick 8"), m)
}

func TestMapRecipientCloseReleasesMailbox(t *testing.T) {
	mb, r := NewMailbox[note]("mapped-close", 4)

	ticks := MapRecipient[tick](r, func(tk tick) note { return note(tk.String()) })
	require.NoError(t, ticks.Close())

	_, err := mb.Receive(context.Background())
	require.ErrorIs(t, err, ErrChannelClosed)
}

func TestMapRecipientPropagatesChannelErrors(t *testing.T) {
	mb, r := NewMailbox[note]("mapped-err", 1)
	defer r.Close()

	ticks := MapRecipient[tick](r.Clone(), func(tk tick) note { return note(tk.String()) })
	defer ticks.Close()

	require.NoError(t, ticks.TrySend(tick(1)))
	require.ErrorIs(t, ticks.TrySend(tick(2)), ErrChannelFull)

	mb.Close()
	require.ErrorIs(t, ticks.TrySend(tick(3)), ErrChannelClosed)
}

func TestDiscardNeverBlocks(t *testing.T) {
	ctx := context.Background()
	sink := Discard[note]()

	for i := 0; i < 10_000; i++ {
		require.NoError(t, sink.Send(ctx, "dropped"))
	}
	require.NoError(t, sink.TrySend("dropped"))
	require.NoError(t, sink.Close())
	require.Equal(t, "discard", sink.Name())
}

func TestRecipientOf(t *testing.T) {
	_, r := NewMailbox[note]("dynamic", 4)
	defer r.Close()

	var carried any = r

	typed, err := RecipientOf[note](carried)
	require.NoError(t, err)
	require.Equal(t, "dynamic", typed.Name())

	_, err = RecipientOf[tick](carried)
	require.ErrorIs(t, err, ErrLinkTypeMismatch)
}

func TestRecipientDoubleClose(t *testing.T) {
	_, r := NewMailbox[note]("double", 4)

	require.NoError(t, r.Close())
	require.ErrorIs(t, r.Close(), ErrChannelClosed)
	require.ErrorIs(t, r.Send(context.Background(), "late"), ErrChannelClosed)
}
