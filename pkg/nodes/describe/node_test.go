package describe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/cognipipe/pkg/models"
	"github.com/dukex/cognipipe/pkg/protocol"
)

func TestDescribeNode_Run(t *testing.T) {
	frame, err := models.NewFrame(
		[]models.Column{
			{Name: "Age", Kind: models.KindInt},
			{Name: "Embarked", Kind: models.KindString},
		},
		[][]any{
			{int64(22), "S"},
			{int64(38), "C"},
			{int64(26), "S"},
			{nil, "Q"},
			{int64(35), nil},
		},
	)
	require.NoError(t, err)

	node, err := NewDescribeNodeFactory().Create(t.Context(), nil)
	require.NoError(t, err)

	res, err := node.Run(t.Context(), frame)
	require.NoError(t, err)
	require.True(t, res.IsTable())

	summary := res.Table
	assert.Equal(t, []string{StatisticColumn, "Age", "Embarked"}, summary.ColumnNames())

	labels, _ := summary.Values(StatisticColumn)
	assert.Equal(t, []any{"count", "unique", "top", "freq", "mean", "std", "min", "25%", "50%", "75%", "max"}, labels)

	age := column(t, summary, "Age")
	assert.Equal(t, 4.0, age["count"])
	assert.Nil(t, age["unique"])
	assert.Nil(t, age["top"])
	assert.InDelta(t, 30.25, age["mean"], 1e-9)
	assert.InDelta(t, 7.5, age["std"], 1e-9)
	assert.Equal(t, 22.0, age["min"])
	assert.Equal(t, 25.0, age["25%"])
	assert.Equal(t, 30.5, age["50%"])
	assert.Equal(t, 35.75, age["75%"])
	assert.Equal(t, 38.0, age["max"])

	embarked := column(t, summary, "Embarked")
	assert.Equal(t, int64(4), embarked["count"])
	assert.Equal(t, int64(3), embarked["unique"])
	assert.Equal(t, "S", embarked["top"])
	assert.Equal(t, int64(2), embarked["freq"])
	assert.Nil(t, embarked["mean"])
	assert.Nil(t, embarked["max"])
}

func TestSummarize_NumericOnly(t *testing.T) {
	frame, err := models.NewFrame(
		[]models.Column{{Name: "Fare", Kind: models.KindFloat}},
		[][]any{{7.25}},
	)
	require.NoError(t, err)

	summary, err := Summarize(frame)
	require.NoError(t, err)

	labels, _ := summary.Values(StatisticColumn)
	assert.Equal(t, []any{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}, labels)

	fare := column(t, summary, "Fare")
	assert.Equal(t, 7.25, fare["mean"])
	assert.Nil(t, fare["std"], "a single value has no sample deviation")
}

func TestSummarize_EmptyColumns(t *testing.T) {
	frame, err := models.NewFrame([]models.Column{
		{Name: "Age", Kind: models.KindFloat},
		{Name: "Name", Kind: models.KindString},
	}, [][]any{{nil, nil}})
	require.NoError(t, err)

	summary, err := Summarize(frame)
	require.NoError(t, err)

	age := column(t, summary, "Age")
	assert.Equal(t, 0.0, age["count"])
	assert.Nil(t, age["mean"])

	name := column(t, summary, "Name")
	assert.Equal(t, int64(0), name["count"])
	assert.Nil(t, name["top"])
	assert.Nil(t, name["freq"])
}

func TestSummarize_NoColumns(t *testing.T) {
	frame, err := models.NewFrame(nil, nil)
	require.NoError(t, err)

	node, err := NewDescribeNodeFactory().Create(t.Context(), nil)
	require.NoError(t, err)

	_, err = node.Run(t.Context(), frame)
	assert.ErrorIs(t, err, protocol.ErrNodeExecution)
}

func TestDescribeNode_MissingInput(t *testing.T) {
	node, err := NewDescribeNodeFactory().Create(t.Context(), map[string]any{})
	require.NoError(t, err)

	_, err = node.Run(t.Context(), nil)
	assert.ErrorIs(t, err, protocol.ErrMissingInput)
}

func TestDescribeNodeFactory_RejectsParams(t *testing.T) {
	_, err := NewDescribeNodeFactory().Create(t.Context(), map[string]any{"include": "all"})
	assert.ErrorIs(t, err, protocol.ErrInvalidParameter)
}

// column maps statistic labels to the cells of one summary column.
func column(t *testing.T, summary *models.Frame, name string) map[string]any {
	t.Helper()

	out := map[string]any{}

	for _, rec := range summary.Records() {
		out[rec[StatisticColumn].(string)] = rec[name]
	}

	return out
}
