package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edgekit/edgekit/config"
	"github.com/edgekit/edgekit/core"
)

type reading string

func (r reading) String() string { return string(r) }

func wrapReading(req core.RuntimeRequest) core.Input[reading] {
	return core.Ctrl[reading]{Req: req}
}

func TestNewAgentDefaults(t *testing.T) {
	agent, err := New(nil)
	require.NoError(t, err)
	require.Equal(t, config.DefaultConfig().Agent.Name, agent.Config().Agent.Name)
	require.Nil(t, agent.Registry(), "metrics disabled by default")
	require.NotNil(t, agent.Logger())
	require.NotNil(t, agent.Runtime())
}

func TestNewAgentRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Runtime.MailboxSize = -1

	_, err := New(cfg)
	require.ErrorIs(t, err, config.ErrInvalidMailboxSize)
}

func TestNewAgentMetricsRegistry(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Metrics.Enabled = true

	agent, err := New(cfg)
	require.NoError(t, err)
	require.NotNil(t, agent.Registry())
}

func TestAgentRunsActor(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Runtime.SampleInterval = -1

	agent, err := New(cfg)
	require.NoError(t, err)

	seen := make(chan reading, 8)
	b := core.NewBuilder("collector", wrapReading,
		func(ctx context.Context, mailbox *core.Mailbox[core.Input[reading]], _ core.Recipient[core.Input[reading]]) error {
			for {
				in, err := mailbox.Receive(ctx)
				if err != nil {
					return nil
				}
				switch v := in.(type) {
				case core.AppMsg[reading]:
					seen <- v.Msg
				case core.Ctrl[reading]:
					if v.Req == core.Shutdown {
						return nil
					}
				}
			}
		}, core.Options{})
	input, err := b.InputRecipient()
	require.NoError(t, err)
	require.NoError(t, agent.Spawn(b))

	done := make(chan error, 1)
	go func() { done <- agent.Run(context.Background()) }()

	require.NoError(t, input.Send(context.Background(), core.AppMsg[reading]{Msg: "21.5C"}))

	select {
	case got := <-seen:
		require.Equal(t, reading("21.5C"), got)
	case <-time.After(2 * time.Second):
		t.Fatal("actor never received the reading")
	}

	agent.RequestShutdown()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("agent did not stop")
	}
	input.Close()
}
