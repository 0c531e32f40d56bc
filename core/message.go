package core

// Message is the capability every value exchanged between actors must
// satisfy. A message must be safe to hand to another goroutine (send it,
// don't share it: the sender gives up the value, or sends a copy) and
// printable for diagnostics. Any type can opt in by implementing String.
type Message interface {
	// String returns a human-readable form of the message used in logs
	// and error reports.
	String() string
}

// RuntimeRequest is the reserved control message the runtime uses to reach
// every actor. Each actor's input type must be able to carry it; builders
// enforce this by requiring a wrap function at construction time.
type RuntimeRequest uint8

const (
	// Shutdown asks the actor to stop accepting new work, flush anything
	// required, and return from its body.
	Shutdown RuntimeRequest = iota

	// Flush asks the actor to complete in-flight work without stopping.
	// Runtime.Flush broadcasts it as a best-effort drain hint.
	Flush
)

// String returns the string representation of RuntimeRequest.
func (r RuntimeRequest) String() string {
	switch r {
	case Shutdown:
		return "shutdown"
	case Flush:
		return "flush"
	default:
		return "unknown"
	}
}
