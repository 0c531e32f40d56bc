package core

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/edgekit/edgekit/metrics"
)

// Task is one runnable actor as registered with the runtime: its body,
// the control recipient the runtime uses to reach its mailbox, and a
// depth probe for instrumentation.
type Task struct {
	// Name identifies the actor in logs, errors, and metrics.
	Name string

	// Run is the actor body. It must return once its mailbox reports
	// end-of-stream, a Shutdown request arrives, or ctx is canceled.
	Run func(ctx context.Context) error

	// Control delivers runtime requests into the actor's mailbox.
	Control Recipient[RuntimeRequest]

	// QueueLen reports the current mailbox depth. Optional.
	QueueLen func() int
}

// Spawnable is anything that can register its task with the runtime,
// typically a *Builder.
type Spawnable interface {
	// Name returns the actor name.
	Name() string

	// Spawn consumes the pending actor and registers it through h.
	Spawn(h *RuntimeHandle) error
}

// RuntimeHandle is the capability threaded into every Spawn call. It
// exposes only task registration: wiring decisions are made exclusively
// through PeerLinker before spawn, never by poking the runtime mid-flight.
type RuntimeHandle struct {
	rt *Runtime
}

func (h *RuntimeHandle) register(t Task) error {
	return h.rt.register(t)
}

// RuntimeOptions contains configuration for creating a Runtime.
type RuntimeOptions struct {
	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Metrics defaults to metrics.NopRuntime().
	Metrics metrics.RuntimeMetrics

	// ShutdownGrace bounds how long the runtime waits for actors to
	// drain after a shutdown broadcast before canceling their context.
	// Defaults to DefaultShutdownGrace.
	ShutdownGrace time.Duration

	// SampleInterval is how often mailbox depths are sampled into
	// metrics. Defaults to DefaultSampleInterval; negative disables
	// sampling.
	SampleInterval time.Duration
}

// Default runtime timings.
const (
	DefaultShutdownGrace  = 10 * time.Second
	DefaultSampleInterval = 5 * time.Second
)

// Runtime owns the full set of spawned actor tasks, drives them to
// completion, aggregates failures, and coordinates shutdown. It is the
// single owner of the task collection; no component may spawn actor
// tasks outside its RuntimeHandle.
type Runtime struct {
	id      string
	log     *slog.Logger
	metrics metrics.RuntimeMetrics
	grace   time.Duration
	sample  time.Duration

	mu      sync.Mutex
	started bool
	tasks   []Task

	shutdownCh   chan struct{}
	shutdownOnce sync.Once
}

// NewRuntime creates a Runtime. Each runtime carries a short random
// instance ID so logs from restarted agents stay distinguishable.
func NewRuntime(opts RuntimeOptions) *Runtime {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NopRuntime()
	}
	if opts.ShutdownGrace <= 0 {
		opts.ShutdownGrace = DefaultShutdownGrace
	}
	if opts.SampleInterval == 0 {
		opts.SampleInterval = DefaultSampleInterval
	}

	id := gonanoid.Must(8)

	return &Runtime{
		id:         id,
		log:        opts.Logger.With(slog.String("runtime", id)),
		metrics:    opts.Metrics,
		grace:      opts.ShutdownGrace,
		sample:     opts.SampleInterval,
		shutdownCh: make(chan struct{}),
	}
}

// ID returns the runtime instance ID.
func (rt *Runtime) ID() string {
	return rt.id
}

// Handle returns the registration capability passed to builders.
func (rt *Runtime) Handle() *RuntimeHandle {
	return &RuntimeHandle{rt: rt}
}

// Spawn registers a batch of pending actors, consuming their builders.
// It stops at the first failure so a wiring mistake aborts startup.
func (rt *Runtime) Spawn(actors ...Spawnable) error {
	h := rt.Handle()
	for _, a := range actors {
		if err := a.Spawn(h); err != nil {
			return fmt.Errorf("spawn %s: %w", a.Name(), err)
		}
	}
	return nil
}

// RequestShutdown asks the runtime to broadcast Shutdown to all actors.
// Safe to call from any goroutine, repeatedly; only the first call has
// an effect. Run then returns once every actor has terminated.
func (rt *Runtime) RequestShutdown() {
	rt.shutdownOnce.Do(func() { close(rt.shutdownCh) })
}

// Flush broadcasts a Flush request to every actor without blocking. It is
// a best-effort drain hint: actors with a full mailbox are skipped, and
// actors that already terminated ignore it.
func (rt *Runtime) Flush() {
	rt.mu.Lock()
	tasks := rt.tasks
	rt.mu.Unlock()

	for _, t := range tasks {
		if err := t.Control.TrySend(Flush); err != nil {
			rt.log.Debug("flush request not delivered",
				slog.String("actor", t.Name),
				slog.Any("error", err))
		}
	}
}

func (rt *Runtime) register(t Task) error {
	if t.Run == nil {
		return fmt.Errorf("task %s: nil run function", t.Name)
	}
	if t.Control == nil {
		return fmt.Errorf("task %s: nil control recipient", t.Name)
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.started {
		return ErrRuntimeStarted
	}
	rt.tasks = append(rt.tasks, t)
	return nil
}

type taskResult struct {
	task Task
	err  error
}

// Run drives all registered tasks concurrently to completion. It returns
// nil once every task has completed successfully. When a task escalates
// an error, the supervision policy broadcasts Shutdown to all remaining
// actors, awaits their orderly termination, and returns the first error;
// later errors are logged. Canceling ctx requests the same cooperative
// shutdown — actors are never forcibly terminated before the shutdown
// grace period has passed.
func (rt *Runtime) Run(ctx context.Context) error {
	rt.mu.Lock()
	if rt.started {
		rt.mu.Unlock()
		return ErrRuntimeStarted
	}
	if len(rt.tasks) == 0 {
		rt.mu.Unlock()
		return ErrNoActors
	}
	rt.started = true
	tasks := rt.tasks
	rt.mu.Unlock()

	timer := rt.metrics.RunDuration()
	defer timer.ObserveDuration()

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()

	rt.log.Info("runtime starting", slog.Int("actors", len(tasks)))

	results := make(chan taskResult, len(tasks))
	for _, t := range tasks {
		rt.metrics.ActorStarted(t.Name)
		go func(t Task) {
			results <- taskResult{task: t, err: rt.runTask(runCtx, t)}
		}(t)
	}

	if rt.sample > 0 {
		go rt.sampleDepths(runCtx, tasks)
	}

	var (
		firstErr    error
		broadcasted bool
		graceExpiry <-chan time.Time
	)
	shutdownCh := rt.shutdownCh
	ctxDone := ctx.Done()

	broadcast := func() {
		if broadcasted {
			return
		}
		broadcasted = true
		rt.metrics.ControlBroadcast()
		rt.log.Info("broadcasting shutdown request")
		graceExpiry = time.After(rt.grace)

		sendCtx, sendCancel := context.WithTimeout(context.Background(), rt.grace)
		for _, t := range tasks {
			go func(t Task) {
				if err := t.Control.Send(sendCtx, Shutdown); err != nil {
					// Expected for actors that already terminated.
					rt.log.Debug("shutdown request not delivered",
						slog.String("actor", t.Name),
						slog.Any("error", err))
				}
			}(t)
		}
		go func() {
			<-sendCtx.Done()
			sendCancel()
		}()
	}

	remaining := len(tasks)
	for remaining > 0 {
		select {
		case res := <-results:
			remaining--
			rt.metrics.ActorStopped(res.task.Name, res.err == nil)
			res.task.Control.Close()

			if res.err != nil {
				wrapped := &ActorError{Actor: res.task.Name, Err: res.err}
				if firstErr == nil {
					firstErr = wrapped
					rt.log.Error("actor failed, shutting down remaining actors",
						slog.String("actor", res.task.Name),
						slog.Any("error", res.err))
					broadcast()
				} else {
					rt.log.Error("additional actor failure",
						slog.String("actor", res.task.Name),
						slog.Any("error", res.err))
				}
			} else {
				rt.log.Debug("actor terminated", slog.String("actor", res.task.Name))
			}

		case <-shutdownCh:
			shutdownCh = nil
			broadcast()

		case <-ctxDone:
			ctxDone = nil
			broadcast()

		case <-graceExpiry:
			graceExpiry = nil
			rt.log.Warn("shutdown grace period expired, canceling actor contexts",
				slog.Int("remaining", remaining))
			cancel()
		}
	}

	if firstErr != nil {
		rt.log.Error("runtime stopped", slog.Any("error", firstErr))
	} else {
		rt.log.Info("runtime stopped")
	}
	return firstErr
}

// runTask executes one actor body with crash containment: a panic is
// converted into an error and escalated like any other actor failure.
func (rt *Runtime) runTask(ctx context.Context, t Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return t.Run(ctx)
}

// sampleDepths periodically reports mailbox depths until ctx is canceled.
func (rt *Runtime) sampleDepths(ctx context.Context, tasks []Task) {
	ticker := time.NewTicker(rt.sample)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, t := range tasks {
				if t.QueueLen != nil {
					rt.metrics.MailboxDepth(t.Name, t.QueueLen())
				}
			}
		}
	}
}
