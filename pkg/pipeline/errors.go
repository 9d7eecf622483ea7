package pipeline

import (
	"errors"
	"fmt"

	"github.com/dukex/cognipipe/pkg/protocol"
)

// StepError reports which step of a run failed. Err always matches one of
// the protocol sentinels through errors.Is.
type StepError struct {
	Index int    // zero-based position of the step in the request
	Node  string // node name the step asked for
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index, e.Node, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Kind returns the protocol kind label of the failure.
func (e *StepError) Kind() string {
	return protocol.ErrorKind(e.Err)
}

// IsStepError reports whether err came from a pipeline step.
func IsStepError(err error) bool {
	var stepErr *StepError

	return errors.As(err, &stepErr)
}

func newStepError(index int, node string, err error) *StepError {
	if !classified(err) {
		err = protocol.NewExecutionError(node, err)
	}

	return &StepError{Index: index, Node: node, Err: err}
}

func classified(err error) bool {
	return errors.Is(err, protocol.ErrUnknownNode) ||
		errors.Is(err, protocol.ErrMissingInput) ||
		errors.Is(err, protocol.ErrInvalidParameter) ||
		errors.Is(err, protocol.ErrNodeExecution)
}
