package cmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/dukex/cognipipe/pkg/channels/kafka"
	"github.com/dukex/cognipipe/pkg/events"
	"github.com/dukex/cognipipe/pkg/models"
	"github.com/dukex/cognipipe/pkg/nodes/loader"
	"github.com/dukex/cognipipe/pkg/pipeline"
)

func TestNewEventBus(t *testing.T) {
	bus, err := NewEventBus(EventBusNone, "test", "", slog.Default())
	require.NoError(t, err)
	assert.Nil(t, bus)

	bus, err = NewEventBus(EventBusGoChannel, "test", "", slog.Default())
	require.NoError(t, err)
	require.NotNil(t, bus)
	assert.NoError(t, bus.Close())

	_, err = NewEventBus(EventBusKafka, "test", " , ", slog.Default())
	assert.ErrorIs(t, err, kafka.ErrNoBrokers)

	_, err = NewEventBus("carrier-pigeon", "test", "", slog.Default())
	assert.ErrorContains(t, err, "unsupported event bus provider")
}

func TestNewRegistry_DefaultNodes(t *testing.T) {
	reg, err := NewRegistry(slog.Default(), filepath.Join(t.TempDir(), "plugins"), loader.Options{}, nil, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"LoadTitanic", "Filter", "Describe", "LogisticModel"}, reg.Names())
}

func TestNewTableSource_Disabled(t *testing.T) {
	source, err := NewTableSource(t.Context(), slog.Default(), "")
	require.NoError(t, err)
	assert.Nil(t, source)
}

func TestNewRuntime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,x\n2,y\n"), 0o600))

	rt, err := NewRuntime(t.Context(), slog.Default(), Config{
		ServiceName: "cognipipe-test",
		DatasetPath: path,
		PreviewRows: 1,
		EventBus:    EventBusGoChannel,
	})
	require.NoError(t, err)

	t.Cleanup(func() { assert.NoError(t, rt.Close(context.Background())) })

	assert.Nil(t, rt.Tables)
	assert.Equal(t, 4, rt.Registry.Len())

	completed := make(chan *events.PipelineCompleted, 1)
	require.NoError(t, rt.EventBus.Handle(events.PipelineCompletedEvent, func(_ context.Context, event any) error {
		completed <- event.(*events.PipelineCompleted)

		return nil
	}))
	require.NoError(t, rt.EventBus.Subscribe(t.Context()))

	outcome, err := rt.Executor.Run(t.Context(), pipeline.Metadata{Source: events.SourceCLI}, models.PipelineRequest{
		Steps: []models.NodeDescriptor{{Name: "LoadTitanic"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, outcome.Output.Columns)
	assert.Len(t, outcome.Output.Preview, 1)

	select {
	case event := <-completed:
		assert.Equal(t, outcome.RunID, event.RunID)
	case <-time.After(5 * time.Second):
		t.Fatal("no completion event received")
	}
}

func TestNewRuntime_UnsupportedEventBus(t *testing.T) {
	_, err := NewRuntime(t.Context(), slog.Default(), Config{EventBus: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestConfigFromCommand(t *testing.T) {
	var cfg Config

	command := &cli.Command{
		Name:  "test",
		Flags: append(LogFlags(), RuntimeFlags()...),
		Action: func(_ context.Context, command *cli.Command) error {
			cfg = ConfigFromCommand("svc", command)

			return nil
		},
	}

	require.NoError(t, command.Run(t.Context(), []string{"test", "--dataset", "x.csv", "--preview-rows", "7", "--event-bus", "gochannel"}))

	assert.Equal(t, Config{
		ServiceName:  "svc",
		DatasetPath:  "x.csv",
		MaxReadBytes: 64 << 20,
		PreviewRows:  7,
		MaxTableRows: 100_000,
		PluginsPath:  "./plugins",
		EventBus:     EventBusGoChannel,
	}, cfg)
}
