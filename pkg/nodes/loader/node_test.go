package loader

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/cognipipe/pkg/dataset"
	"github.com/dukex/cognipipe/pkg/models"
	"github.com/dukex/cognipipe/pkg/protocol"
)

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoaderNode_Run(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "people.csv", "name,age\nann,30\nbob,\n")

	node, err := NewLoaderNodeFactory(Options{}).Create(t.Context(), map[string]any{"path": path})
	require.NoError(t, err)

	res, err := node.Run(t.Context(), nil)
	require.NoError(t, err)
	require.True(t, res.IsTable())

	assert.Equal(t, []string{"name", "age"}, res.Table.ColumnNames())
	assert.Equal(t, 2, res.Table.Len())
}

func TestLoaderNode_IgnoresInput(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "one.csv", "x\n1\n")

	input, err := models.NewFrame([]models.Column{{Name: "y", Kind: models.KindInt}}, nil)
	require.NoError(t, err)

	node, err := NewLoaderNodeFactory(Options{}).Create(t.Context(), map[string]any{"path": path})
	require.NoError(t, err)

	res, err := node.Run(t.Context(), input)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, res.Table.ColumnNames())
}

func TestLoaderNodeFactory_DefaultPath(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "default.csv", "x\n1\n2\n")

	node, err := NewLoaderNodeFactory(Options{DefaultPath: path}).Create(t.Context(), nil)
	require.NoError(t, err)

	res, err := node.Run(t.Context(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Table.Len())
}

func TestLoaderNodeFactory_InvalidParams(t *testing.T) {
	factory := NewLoaderNodeFactory(Options{})

	tests := []struct {
		name   string
		params map[string]any
		param  string
	}{
		{"wrong type", map[string]any{"path": 12}, "path"},
		{"empty path", map[string]any{"path": ""}, "path"},
		{"unknown parameter", map[string]any{"file": "x.csv"}, "file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := factory.Create(t.Context(), tt.params)
			require.ErrorIs(t, err, protocol.ErrInvalidParameter)

			var nodeErr *protocol.NodeError
			require.ErrorAs(t, err, &nodeErr)
			assert.Equal(t, NodeID, nodeErr.Node)
			assert.Equal(t, tt.param, nodeErr.Param)
		})
	}
}

func TestLoaderNode_Failures(t *testing.T) {
	dir := t.TempDir()
	big := writeCSV(t, dir, "big.csv", "x\n1\n2\n3\n4\n5\n6\n7\n8\n")

	tests := []struct {
		name string
		opts Options
		path string
	}{
		{"missing file", Options{}, filepath.Join(dir, "absent.csv")},
		{"read limit", Options{MaxBytes: 4}, big},
		{"escapes root", Options{Root: dir}, "../outside.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := NewLoaderNodeFactory(tt.opts).Create(t.Context(), map[string]any{"path": tt.path})
			require.NoError(t, err)

			_, err = node.Run(t.Context(), nil)
			assert.ErrorIs(t, err, protocol.ErrNodeExecution)
		})
	}
}

func TestLoaderNode_Root(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "inside.csv", "x\n1\n")

	node, err := NewLoaderNodeFactory(Options{Root: dir}).Create(t.Context(), map[string]any{"path": "inside.csv"})
	require.NoError(t, err)

	res, err := node.Run(t.Context(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Table.Len())
}

func TestLoaderNode_UsesCache(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "cached.csv", "x\n1\n")

	cache := dataset.NewCache(path, 0, slog.Default())
	_, err := cache.Frame(t.Context())
	require.NoError(t, err)

	// The file is gone, so only the cache can satisfy the read.
	require.NoError(t, os.Remove(path))

	node, err := NewLoaderNodeFactory(Options{Cache: cache}).Create(t.Context(), map[string]any{"path": path})
	require.NoError(t, err)

	res, err := node.Run(t.Context(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Table.Len())
}

func TestLoaderNode_BundledDataset(t *testing.T) {
	node, err := NewLoaderNodeFactory(Options{}).Create(t.Context(), map[string]any{"path": "../../../data/titanic.csv"})
	require.NoError(t, err)

	res, err := node.Run(t.Context(), nil)
	require.NoError(t, err)
	assert.Contains(t, res.Table.ColumnNames(), "Survived")
}
