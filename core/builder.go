package core

import (
	"context"
	"log/slog"
	"sync"
)

// DefaultMailboxSize is the mailbox capacity used when Options does not
// set one.
const DefaultMailboxSize = 256

// Options contains configuration for building an actor.
type Options struct {
	// MailboxSize sets the capacity of the actor's mailbox.
	// DefaultMailboxSize is used when zero.
	MailboxSize int

	// Logger is the logger handed to the actor body's context. Defaults
	// to slog.Default().
	Logger *slog.Logger
}

// Body is an actor's behavior: it consumes messages from its mailbox and
// sends results to its output until the mailbox reports end-of-stream, a
// Shutdown request arrives, or the context is canceled. Returning a
// non-nil error escalates the failure to the runtime.
type Body[In, Out Message] func(ctx context.Context, mailbox *Mailbox[In], output Recipient[Out]) error

// PeerLinker is the build-phase capability used to exchange recipients
// between two actors under construction. All linking happens strictly
// before spawn; every method fails with ErrLinkAlreadySpawned afterwards.
type PeerLinker[In, Out Message] interface {
	// ConnectPeer supplies where this actor sends its outputs and returns
	// the recipient other actors use to feed this actor's input.
	ConnectPeer(out Recipient[Out]) (Recipient[In], error)

	// InputRecipient returns a new send handle to this actor's mailbox.
	InputRecipient() (Recipient[In], error)

	// ConnectOutput supplies where this actor sends its outputs. Fails
	// with ErrLinkAlreadyLinked if an output was already connected.
	ConnectOutput(out Recipient[Out]) error
}

// Builder assembles one actor in two phases: while building it acts as a
// PeerLinker, exchanging recipients with peer builders; Spawn then
// consumes it, finalizes the links, and registers exactly one task with
// the runtime. A spawned builder is hollow — further linking or spawning
// fails.
type Builder[In, Out Message] struct {
	mu      sync.Mutex
	name    string
	wrap    func(RuntimeRequest) In
	body    Body[In, Out]
	opts    Options
	mailbox *Mailbox[In]
	input   Recipient[In]
	output  Recipient[Out]
	linked  bool
	spawned bool
}

// NewBuilder creates a builder for an actor named name. The wrap function
// injects runtime requests into the actor's input type; requiring it here
// guarantees every actor's fan-in carries the control variant, so the
// runtime can always reach the mailbox with Shutdown. Single-kind actors
// pass WrapRequest.
func NewBuilder[In, Out Message](name string, wrap func(RuntimeRequest) In, body Body[In, Out], opts Options) *Builder[In, Out] {
	mailbox, input := NewMailbox[In](name, opts.MailboxSize)
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Builder[In, Out]{
		name:    name,
		wrap:    wrap,
		body:    body,
		opts:    opts,
		mailbox: mailbox,
		input:   input,
	}
}

// Name returns the actor name.
func (b *Builder[In, Out]) Name() string {
	return b.name
}

// ConnectPeer implements PeerLinker.
func (b *Builder[In, Out]) ConnectPeer(out Recipient[Out]) (Recipient[In], error) {
	if err := b.ConnectOutput(out); err != nil {
		return nil, err
	}
	return b.InputRecipient()
}

// InputRecipient implements PeerLinker.
func (b *Builder[In, Out]) InputRecipient() (Recipient[In], error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.spawned {
		return nil, ErrLinkAlreadySpawned
	}
	return b.input.Clone(), nil
}

// ConnectOutput implements PeerLinker.
func (b *Builder[In, Out]) ConnectOutput(out Recipient[Out]) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.spawned {
		return ErrLinkAlreadySpawned
	}
	if b.linked {
		return ErrLinkAlreadyLinked
	}
	b.output = out
	b.linked = true
	return nil
}

// Spawn consumes the builder and registers the actor's task with the
// runtime through h. An output that was never connected defaults to a
// Discard sink. After Spawn returns, the builder rejects all further
// linking and a second Spawn fails with ErrLinkAlreadySpawned.
func (b *Builder[In, Out]) Spawn(h *RuntimeHandle) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.spawned {
		return ErrLinkAlreadySpawned
	}

	output := b.output
	if output == nil {
		output = Discard[Out]()
	}

	// The runtime's control path is an adapted clone of the input handle;
	// the builder's own handle is released so peer and control handles
	// alone decide when the mailbox auto-closes.
	control := MapRecipient[RuntimeRequest, In](b.input.Clone(), b.wrap)
	b.input.Close()

	mailbox := b.mailbox
	body := b.body
	logger := b.opts.Logger.With("actor", b.name)
	run := func(ctx context.Context) error {
		defer output.Close()
		defer mailbox.Close()
		return body(WithLogger(ctx, logger), mailbox, output)
	}

	err := h.register(Task{
		Name:     b.name,
		Run:      run,
		Control:  control,
		QueueLen: mailbox.Len,
	})
	if err != nil {
		control.Close()
		return err
	}

	b.spawned = true
	b.mailbox = nil
	b.input = nil
	b.output = nil
	b.body = nil
	return nil
}

// Wire connects src's output to dst's input. Both builders must still be
// building: wiring a spawned actor fails with ErrLinkAlreadySpawned.
func Wire[A, M, B Message](src *Builder[A, M], dst *Builder[M, B]) error {
	in, err := dst.InputRecipient()
	if err != nil {
		return err
	}
	if err := src.ConnectOutput(in); err != nil {
		in.Close()
		return err
	}
	return nil
}
