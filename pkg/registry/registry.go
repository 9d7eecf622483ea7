// Package registry maps node names to the factories that build them.
//
// A Builder collects factories during process start. Build freezes it into a
// Registry, which is read-only and safe for concurrent use without locks.
package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"plugin"
	"slices"

	"github.com/dukex/cognipipe/pkg/protocol"
)

// ErrNodeAlreadyRegistered is returned by Register for a name already taken.
var ErrNodeAlreadyRegistered = errors.New("node already registered")

// PluginSymbol is the exported symbol a node plugin must provide.
const PluginSymbol = "Node"

// Builder accumulates node factories. It is not safe for concurrent use.
type Builder struct {
	logger    *slog.Logger
	factories map[string]protocol.NodeFactory
	order     []string
}

func NewBuilder(logger *slog.Logger) *Builder {
	return &Builder{
		logger:    logger.With("module", "registry"),
		factories: make(map[string]protocol.NodeFactory),
	}
}

// Register adds factory under its ID and fails if the ID is taken.
func (b *Builder) Register(factory protocol.NodeFactory) error {
	name := factory.ID()
	if _, exists := b.factories[name]; exists {
		return fmt.Errorf("%w: %s", ErrNodeAlreadyRegistered, name)
	}

	b.factories[name] = factory
	b.order = append(b.order, name)

	return nil
}

// MustRegister is Register for programming-time registration; it panics on a collision.
func (b *Builder) MustRegister(factory protocol.NodeFactory) {
	if err := b.Register(factory); err != nil {
		panic(err)
	}
}

// Override registers factory, replacing any factory with the same ID. The
// name keeps its original position in Names.
func (b *Builder) Override(factory protocol.NodeFactory) {
	name := factory.ID()
	if _, exists := b.factories[name]; exists {
		b.logger.Warn("Overriding node factory", "node", name)
	} else {
		b.order = append(b.order, name)
	}

	b.factories[name] = factory
}

// LoadPlugins registers the factory exported by every .so file directly
// under path. A missing directory loads nothing.
func (b *Builder) LoadPlugins(path string) error {
	if path == "" {
		return nil
	}

	matches, err := fs.Glob(os.DirFS(path), "*.so")
	if err != nil {
		return err
	}

	l := b.logger.With(slog.String("path", path))
	l.Info("Loading plugins", "count", len(matches))

	for _, match := range matches {
		factory, err := openPlugin(filepath.Join(path, match))
		if err != nil {
			return err
		}

		if err := b.Register(factory); err != nil {
			return fmt.Errorf("plugin %s: %w", match, err)
		}

		l.Info("Loaded node plugin", slog.String("plugin", match), slog.String("node", factory.ID()))
	}

	return nil
}

func openPlugin(path string) (protocol.NodeFactory, error) {
	plg, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open plugin %s: %w", path, err)
	}

	symbol, err := plg.Lookup(PluginSymbol)
	if err != nil {
		return nil, fmt.Errorf("plugin %s: %w", path, err)
	}

	switch v := symbol.(type) {
	case protocol.NodeFactory:
		return v, nil
	case *protocol.NodeFactory:
		return *v, nil
	}

	return nil, fmt.Errorf("plugin %s: symbol %s is %T, not a node factory", path, PluginSymbol, symbol)
}

// Build returns an immutable snapshot of the registered factories. The
// Builder may keep being used without affecting the snapshot.
func (b *Builder) Build() *Registry {
	factories := make(map[string]protocol.NodeFactory, len(b.factories))
	for name, f := range b.factories {
		factories[name] = f
	}

	return &Registry{
		factories: factories,
		order:     slices.Clone(b.order),
	}
}

// Registry resolves node names to factories. It never constructs nodes.
type Registry struct {
	factories map[string]protocol.NodeFactory
	order     []string
}

// Get returns the factory registered under name.
func (r *Registry) Get(name string) (protocol.NodeFactory, bool) {
	f, ok := r.factories[name]

	return f, ok
}

// Names returns every registered name in registration order.
func (r *Registry) Names() []string {
	return append(make([]string, 0, len(r.order)), r.order...)
}

// Factories returns every registered factory in registration order.
func (r *Registry) Factories() []protocol.NodeFactory {
	out := make([]protocol.NodeFactory, len(r.order))
	for i, name := range r.order {
		out[i] = r.factories[name]
	}

	return out
}

// Len returns the number of registered nodes.
func (r *Registry) Len() int {
	return len(r.order)
}

// HealthCheck fails when no node is registered.
func (r *Registry) HealthCheck() error {
	if len(r.order) == 0 {
		return errors.New("no nodes registered")
	}

	return nil
}
