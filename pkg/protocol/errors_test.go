package protocol

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNodeError_Is(t *testing.T) {
	cause := errors.New("query is empty")
	err := NewInvalidParameterError("Filter", "query", cause)

	assert.ErrorIs(t, err, ErrInvalidParameter)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrMissingInput)
	assert.Equal(t, `node Filter: invalid parameter "query": query is empty`, err.Error())
}

func TestNodeError_MissingInputMessage(t *testing.T) {
	err := NewMissingInputError("Describe")

	assert.ErrorIs(t, err, ErrMissingInput)
	assert.Contains(t, err.Error(), "Describe")
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "unknown node", err: NewUnknownNodeError("Nope"), expected: KindUnknownNode},
		{name: "missing input", err: NewMissingInputError("Filter"), expected: KindMissingInput},
		{name: "invalid parameter", err: NewInvalidParameterError("Filter", "query", nil), expected: KindInvalidParameter},
		{name: "wrapped", err: fmt.Errorf("step 2: %w", NewMissingInputError("Filter")), expected: KindMissingInput},
		{name: "plain error", err: errors.New("disk on fire"), expected: KindNodeExecution},
		{name: "execution", err: NewExecutionError("LoadTitanic", errors.New("eof")), expected: KindNodeExecution},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ErrorKind(tt.err))
		})
	}
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(NewUnknownNodeError("x")))
	assert.True(t, IsClientError(NewInvalidParameterError("x", "p", nil)))
	assert.False(t, IsClientError(NewExecutionError("x", errors.New("boom"))))
}
