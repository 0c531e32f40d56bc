package core

// Input is the fan-in type for actors that accept a single application
// message kind. It is a closed two-variant sum: AppMsg carrying the
// application message, and Ctrl carrying a runtime request. The control
// variant is always present, so the runtime can reach every such actor
// with Shutdown.
//
// Actors that accept several message kinds define their own input
// interface with one variant per kind plus a control variant; see the
// examples directory.
type Input[M Message] interface {
	Message

	// input marks the closed variant set. Only AppMsg and Ctrl satisfy it.
	input()
}

// AppMsg is the application-message variant of Input.
type AppMsg[M Message] struct {
	Msg M
}

func (AppMsg[M]) input() {}

// String returns the wrapped message's representation.
func (a AppMsg[M]) String() string { return a.Msg.String() }

// Ctrl is the runtime-request variant of Input.
type Ctrl[M Message] struct {
	Req RuntimeRequest
}

func (Ctrl[M]) input() {}

// String returns the wrapped request's representation.
func (c Ctrl[M]) String() string { return c.Req.String() }

// WrapMessage lifts an application message into Input[M].
func WrapMessage[M Message](m M) Input[M] {
	return AppMsg[M]{Msg: m}
}

// WrapRequest lifts a runtime request into Input[M]. It is the wrap
// function to pass to NewBuilder for single-kind actors.
func WrapRequest[M Message](r RuntimeRequest) Input[M] {
	return Ctrl[M]{Req: r}
}
