package core

import (
	"errors"
	"fmt"
)

// Channel errors. Producers treat these as "stop sending, wind down",
// not as a crash: a closed mailbox is expected during shutdown.
var (
	ErrChannelClosed = errors.New("mailbox closed")
	ErrChannelFull   = errors.New("mailbox full")
)

// Link errors. These signal a mistake in how the actor graph was
// assembled and are meant to abort startup, never to be ignored.
var (
	ErrLinkAlreadySpawned = errors.New("actor already spawned")
	ErrLinkAlreadyLinked  = errors.New("output already linked")
	ErrLinkTypeMismatch   = errors.New("recipient type mismatch")
)

// Runtime errors.
var (
	ErrRuntimeStarted = errors.New("runtime already started")
	ErrNoActors       = errors.New("no actors registered")
)

// ActorError wraps a failure escalated by a single actor to the runtime.
// It records which actor failed so the supervision log stays attributable.
type ActorError struct {
	// Actor is the name of the actor that failed.
	Actor string

	// Err is the underlying failure.
	Err error
}

func (e *ActorError) Error() string {
	return fmt.Sprintf("actor %s: %v", e.Actor, e.Err)
}

func (e *ActorError) Unwrap() error {
	return e.Err
}
