package logistic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/cognipipe/pkg/dataset"
	"github.com/dukex/cognipipe/pkg/models"
	"github.com/dukex/cognipipe/pkg/protocol"
)

func titanic(t *testing.T) *models.Frame {
	t.Helper()

	frame, err := dataset.ReadCSVFile("../../../data/titanic.csv", 0)
	require.NoError(t, err)

	return frame
}

func TestLogisticNode_Run(t *testing.T) {
	node, err := NewLogisticNodeFactory().Create(t.Context(), nil)
	require.NoError(t, err)

	res, err := node.Run(t.Context(), titanic(t))
	require.NoError(t, err)

	assert.Equal(t, models.ResultKindStructured, res.Kind)
	assert.False(t, res.IsTable())

	metrics, ok := res.Value.(map[string]any)
	require.True(t, ok)

	accuracy, ok := metrics["accuracy"].(float64)
	require.True(t, ok)
	assert.GreaterOrEqual(t, accuracy, 0.0)
	assert.LessOrEqual(t, accuracy, 1.0)
}

func TestLogisticNode_Deterministic(t *testing.T) {
	factory := NewLogisticNodeFactory()
	frame := titanic(t)

	run := func() any {
		node, err := factory.Create(t.Context(), map[string]any{"features": []any{"Pclass", "Sex", "Fare"}})
		require.NoError(t, err)

		res, err := node.Run(t.Context(), frame)
		require.NoError(t, err)

		return res.Value
	}

	assert.Equal(t, run(), run())
}

func TestLogisticNode_MissingInput(t *testing.T) {
	node, err := NewLogisticNodeFactory().Create(t.Context(), nil)
	require.NoError(t, err)

	_, err = node.Run(t.Context(), nil)
	assert.ErrorIs(t, err, protocol.ErrMissingInput)
}

func TestLogisticNode_UnknownColumns(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]any
		param  string
	}{
		{"target", map[string]any{"target": "Alive"}, "target"},
		{"feature", map[string]any{"features": []any{"Pclass", "Deck"}}, "features"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := NewLogisticNodeFactory().Create(t.Context(), tt.params)
			require.NoError(t, err)

			_, err = node.Run(t.Context(), titanic(t))
			require.ErrorIs(t, err, protocol.ErrInvalidParameter)

			var nodeErr *protocol.NodeError
			require.ErrorAs(t, err, &nodeErr)
			assert.Equal(t, tt.param, nodeErr.Param)
		})
	}
}

func TestLogisticNodeFactory_InvalidParams(t *testing.T) {
	tests := map[string]map[string]any{
		"empty features":     {"features": []any{}},
		"duplicate features": {"features": []any{"Age", "Age"}},
		"feature not string": {"features": []any{1}},
		"target as feature":  {"target": "Age", "features": []any{"Age"}},
		"unknown parameter":  {"max_iter": 10},
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewLogisticNodeFactory().Create(t.Context(), raw)
			assert.ErrorIs(t, err, protocol.ErrInvalidParameter)
		})
	}
}

func TestLogisticNode_NonBinaryTarget(t *testing.T) {
	node, err := NewLogisticNodeFactory().Create(t.Context(), map[string]any{"target": "Pclass", "features": []any{"Sex"}})
	require.NoError(t, err)

	_, err = node.Run(t.Context(), titanic(t))
	assert.ErrorIs(t, err, protocol.ErrNodeExecution)
}
