package core

import (
	"context"
	"sync"
	"sync/atomic"
)

// channel is the shared state between a Mailbox and its Recipients.
// The buffered data channel is never closed; closing is signaled through
// the done channel so that racing producers fail with ErrChannelClosed
// instead of panicking on a closed channel send.
type channel[M Message] struct {
	name string
	ch   chan M

	done      chan struct{}
	closeOnce sync.Once

	// senders counts live Recipient handles. The mailbox closes when the
	// count drops to zero or the owning actor closes it explicitly.
	senders atomic.Int32
}

func (c *channel[M]) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *channel[M]) closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// release drops one sender reference, closing the channel when the last
// reference is gone.
func (c *channel[M]) release() {
	if c.senders.Add(-1) == 0 {
		c.close()
	}
}

// Mailbox is the bounded, ordered receive endpoint of an actor's inbound
// channel. It is exclusively owned by one actor: a mailbox must never be
// read concurrently from two places. Messages sent through a single
// Recipient are received in send order; the interleave across distinct
// producers is unspecified, but every accepted message is delivered
// exactly once.
type Mailbox[M Message] struct {
	c *channel[M]
}

// NewMailbox creates a bounded mailbox and its first Recipient.
// Further send handles are obtained by cloning the recipient. The name
// identifies the owning actor in logs and errors.
func NewMailbox[M Message](name string, capacity int) (*Mailbox[M], Recipient[M]) {
	if capacity <= 0 {
		capacity = DefaultMailboxSize
	}
	c := &channel[M]{
		name: name,
		ch:   make(chan M, capacity),
		done: make(chan struct{}),
	}
	c.senders.Store(1)
	return &Mailbox[M]{c: c}, &sender[M]{c: c}
}

// Receive blocks until a message is available and returns it. It returns
// ErrChannelClosed once the mailbox is closed and fully drained, and
// ctx.Err() if the context is canceled while waiting. Buffered messages
// are always delivered before end-of-stream is reported.
func (mb *Mailbox[M]) Receive(ctx context.Context) (M, error) {
	var zero M

	// Drain buffered messages first so a closed mailbox still delivers
	// everything that was accepted before the close.
	select {
	case m := <-mb.c.ch:
		return m, nil
	default:
	}

	select {
	case m := <-mb.c.ch:
		return m, nil
	case <-mb.c.done:
		// A producer may have won its send race just before close.
		select {
		case m := <-mb.c.ch:
			return m, nil
		default:
			return zero, ErrChannelClosed
		}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// TryReceive returns the next buffered message without blocking.
// The second return value reports whether a message was available.
func (mb *Mailbox[M]) TryReceive() (M, bool) {
	select {
	case m := <-mb.c.ch:
		return m, true
	default:
		var zero M
		return zero, false
	}
}

// Close closes the mailbox on behalf of the owning actor. Pending and
// subsequent sends fail with ErrChannelClosed; Receive keeps returning
// buffered messages until the mailbox is drained. Close is idempotent.
func (mb *Mailbox[M]) Close() {
	mb.c.close()
}

// Len returns the number of buffered messages.
func (mb *Mailbox[M]) Len() int {
	return len(mb.c.ch)
}

// Cap returns the mailbox capacity.
func (mb *Mailbox[M]) Cap() int {
	return cap(mb.c.ch)
}

// Name returns the name of the owning actor.
func (mb *Mailbox[M]) Name() string {
	return mb.c.name
}
