package core

import (
	"context"
	"sync/atomic"
)

// Recipient is a cloneable send handle bound to exactly one actor's
// mailbox. It is the only way to enqueue a message into a running actor.
// Send rights are shared and uncoordinated: any number of goroutines may
// send through their own handles concurrently.
type Recipient[M Message] interface {
	// Send enqueues m, blocking while the mailbox buffer is full. It
	// returns ErrChannelClosed if the mailbox is closed and ctx.Err() if
	// the context is canceled while waiting for buffer space.
	Send(ctx context.Context, m M) error

	// TrySend enqueues m without blocking. It returns ErrChannelFull if
	// the buffer is full and ErrChannelClosed if the mailbox is closed.
	TrySend(m M) error

	// Clone returns an independent handle to the same mailbox.
	Clone() Recipient[M]

	// Close releases this handle. The mailbox closes once every handle
	// has been released. Close is idempotent per handle.
	Close() error

	// Name returns the name of the target actor.
	Name() string
}

// sender is the canonical Recipient implementation over a mailbox channel.
type sender[M Message] struct {
	c        *channel[M]
	released atomic.Bool
}

func (s *sender[M]) Send(ctx context.Context, m M) error {
	if s.released.Load() || s.c.closed() {
		return ErrChannelClosed
	}
	select {
	case s.c.ch <- m:
		return nil
	case <-s.c.done:
		return ErrChannelClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *sender[M]) TrySend(m M) error {
	if s.released.Load() || s.c.closed() {
		return ErrChannelClosed
	}
	select {
	case s.c.ch <- m:
		return nil
	case <-s.c.done:
		return ErrChannelClosed
	default:
		return ErrChannelFull
	}
}

func (s *sender[M]) Clone() Recipient[M] {
	s.c.senders.Add(1)
	return &sender[M]{c: s.c}
}

func (s *sender[M]) Close() error {
	if !s.released.CompareAndSwap(false, true) {
		return ErrChannelClosed
	}
	s.c.release()
	return nil
}

func (s *sender[M]) Name() string {
	return s.c.name
}

// mapped adapts a Recipient of one message type into a Recipient of
// another through a pure conversion, without touching the underlying
// mailbox.
type mapped[B, A Message] struct {
	inner   Recipient[A]
	convert func(B) A
}

// MapRecipient adapts a Recipient[A] into a Recipient[B] given a pure
// conversion B -> A. This lets a producer of one message kind feed a
// consumer whose mailbox accepts a differently-typed but convertible
// fan-in. The adapter shares the send rights of the handle it wraps.
func MapRecipient[B, A Message](r Recipient[A], convert func(B) A) Recipient[B] {
	return &mapped[B, A]{inner: r, convert: convert}
}

func (m *mapped[B, A]) Send(ctx context.Context, msg B) error {
	return m.inner.Send(ctx, m.convert(msg))
}

func (m *mapped[B, A]) TrySend(msg B) error {
	return m.inner.TrySend(m.convert(msg))
}

func (m *mapped[B, A]) Clone() Recipient[B] {
	return &mapped[B, A]{inner: m.inner.Clone(), convert: m.convert}
}

func (m *mapped[B, A]) Close() error {
	return m.inner.Close()
}

func (m *mapped[B, A]) Name() string {
	return m.inner.Name()
}

// discard is a no-op sink used as the deterministic default for outputs
// that were never linked.
type discard[M Message] struct{}

// Discard returns a Recipient that accepts and drops every message.
// Sends on it never block and never fail.
func Discard[M Message]() Recipient[M] {
	return discard[M]{}
}

func (discard[M]) Send(context.Context, M) error { return nil }
func (discard[M]) TrySend(M) error               { return nil }
func (d discard[M]) Clone() Recipient[M]         { return d }
func (discard[M]) Close() error                  { return nil }
func (discard[M]) Name() string                  { return "discard" }

// RecipientOf recovers a typed Recipient from a value carried as any.
// It is the dynamic counterpart of compile-time wiring, used when
// builders are held in heterogeneous registries. It returns
// ErrLinkTypeMismatch if v is not a Recipient[M].
func RecipientOf[M Message](v any) (Recipient[M], error) {
	r, ok := v.(Recipient[M])
	if !ok {
		return nil, ErrLinkTypeMismatch
	}
	return r, nil
}
