package protocol

import (
	"errors"
	"fmt"
)

// Failure kinds shared by every node and by the pipeline executor.
var (
	// ErrUnknownNode indicates a step referenced a node name that is not registered.
	ErrUnknownNode = errors.New("unknown node")

	// ErrMissingInput indicates a node required tabular input and none was available.
	ErrMissingInput = errors.New("missing input")

	// ErrInvalidParameter indicates a node rejected one of its parameters.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrNodeExecution classifies any other failure raised while a node runs.
	ErrNodeExecution = errors.New("node execution failed")
)

// Kind labels used in logs, events and API problem details.
const (
	KindUnknownNode      = "unknown_node"
	KindMissingInput     = "missing_input"
	KindInvalidParameter = "invalid_parameter"
	KindNodeExecution    = "node_execution"
)

// NodeError wraps a node failure with the node name and, when relevant, the parameter.
type NodeError struct {
	Node  string // Node name
	Param string // Offending parameter, if any
	Kind  error  // One of the Err* sentinels above
	Err   error  // Underlying error, may be nil
}

func (e *NodeError) Error() string {
	msg := fmt.Sprintf("node %s: %v", e.Node, e.Kind)

	if e.Param != "" {
		msg += fmt.Sprintf(" %q", e.Param)
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *NodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}

// NewUnknownNodeError reports an unregistered node name.
func NewUnknownNodeError(node string) *NodeError {
	return &NodeError{Node: node, Kind: ErrUnknownNode}
}

// NewMissingInputError reports that node needs tabular input.
func NewMissingInputError(node string) *NodeError {
	return &NodeError{
		Node: node,
		Kind: ErrMissingInput,
		Err:  errors.New("requires tabular input data"),
	}
}

// NewInvalidParameterError reports a rejected parameter.
func NewInvalidParameterError(node, param string, err error) *NodeError {
	return &NodeError{Node: node, Param: param, Kind: ErrInvalidParameter, Err: err}
}

// NewExecutionError reports a failure inside a node's own computation.
func NewExecutionError(node string, err error) *NodeError {
	return &NodeError{Node: node, Kind: ErrNodeExecution, Err: err}
}

// ErrorKind classifies err into one of the Kind* labels. Errors that match no
// sentinel are node execution failures.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrUnknownNode):
		return KindUnknownNode
	case errors.Is(err, ErrMissingInput):
		return KindMissingInput
	case errors.Is(err, ErrInvalidParameter):
		return KindInvalidParameter
	default:
		return KindNodeExecution
	}
}

// IsClientError reports whether err was caused by the request rather than by a node's computation.
func IsClientError(err error) bool {
	return errors.Is(err, ErrUnknownNode) ||
		errors.Is(err, ErrMissingInput) ||
		errors.Is(err, ErrInvalidParameter)
}
