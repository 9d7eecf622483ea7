package registry

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/cognipipe/pkg/models"
	"github.com/dukex/cognipipe/pkg/protocol"
)

type stubFactory struct {
	id      string
	version string
}

func (f *stubFactory) ID() string             { return f.id }
func (f *stubFactory) Name() string           { return f.id }
func (f *stubFactory) Description() string    { return f.version }
func (f *stubFactory) Schema() map[string]any { return nil }

func (f *stubFactory) Create(context.Context, map[string]any) (protocol.Node, error) {
	return stubNode{}, nil
}

type stubNode struct{}

func (stubNode) Run(context.Context, *models.Frame) (models.Result, error) {
	return models.ScalarResult(1), nil
}

func TestBuilder_Register(t *testing.T) {
	b := NewBuilder(slog.Default())
	require.NoError(t, b.Register(&stubFactory{id: "A"}))
	require.NoError(t, b.Register(&stubFactory{id: "B"}))

	r := b.Build()

	f, ok := r.Get("A")
	require.True(t, ok)
	assert.Equal(t, "A", f.ID())

	_, ok = r.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"A", "B"}, r.Names())
	assert.Equal(t, 2, r.Len())
}

func TestBuilder_RegisterDuplicateFails(t *testing.T) {
	b := NewBuilder(slog.Default())
	require.NoError(t, b.Register(&stubFactory{id: "A", version: "first"}))

	err := b.Register(&stubFactory{id: "A", version: "second"})
	require.ErrorIs(t, err, ErrNodeAlreadyRegistered)

	f, _ := b.Build().Get("A")
	assert.Equal(t, "first", f.Description())

	assert.Panics(t, func() { b.MustRegister(&stubFactory{id: "A"}) })
}

func TestBuilder_OverrideLastWriteWins(t *testing.T) {
	b := NewBuilder(slog.Default())
	b.Override(&stubFactory{id: "A", version: "first"})
	b.Override(&stubFactory{id: "B"})
	b.Override(&stubFactory{id: "A", version: "second"})

	r := b.Build()

	f, ok := r.Get("A")
	require.True(t, ok)
	assert.Equal(t, "second", f.Description())
	assert.Equal(t, []string{"A", "B"}, r.Names())
}

func TestRegistry_IsSnapshot(t *testing.T) {
	b := NewBuilder(slog.Default())
	require.NoError(t, b.Register(&stubFactory{id: "A"}))

	r := b.Build()
	require.NoError(t, b.Register(&stubFactory{id: "B"}))

	_, ok := r.Get("B")
	assert.False(t, ok)

	names := r.Names()
	names[0] = "changed"
	assert.Equal(t, []string{"A"}, r.Names())
}

func TestRegistry_GetDoesNotCreate(t *testing.T) {
	created := 0

	b := NewBuilder(slog.Default())
	require.NoError(t, b.Register(&countingFactory{stubFactory: stubFactory{id: "A"}, created: &created}))

	r := b.Build()
	_, _ = r.Get("A")
	_ = r.Factories()

	assert.Zero(t, created)
}

func TestRegistry_HealthCheck(t *testing.T) {
	assert.Error(t, NewBuilder(slog.Default()).Build().HealthCheck())

	b := NewBuilder(slog.Default())
	b.MustRegister(&stubFactory{id: "A"})
	assert.NoError(t, b.Build().HealthCheck())
}

func TestBuilder_LoadPluginsEmpty(t *testing.T) {
	b := NewBuilder(slog.Default())

	require.NoError(t, b.LoadPlugins(""))
	require.NoError(t, b.LoadPlugins(t.TempDir()))
	require.NoError(t, b.LoadPlugins("./does-not-exist"))

	assert.Zero(t, b.Build().Len())
}

type countingFactory struct {
	stubFactory
	created *int
}

func (f *countingFactory) Create(ctx context.Context, params map[string]any) (protocol.Node, error) {
	*f.created++

	return f.stubFactory.Create(ctx, params)
}
