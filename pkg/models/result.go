package models

// ResultKind tags the variant held by a Result.
type ResultKind string

const (
	ResultKindNone       ResultKind = ""
	ResultKindTable      ResultKind = "table"
	ResultKindScalar     ResultKind = "scalar"
	ResultKindStructured ResultKind = "structured"
)

// Result is what a node produces: either a table, which becomes the next
// step's input, or an opaque scalar/structured value, which does not.
type Result struct {
	Kind  ResultKind
	Table *Frame
	Value any
}

// TableResult wraps a Frame.
func TableResult(frame *Frame) Result {
	return Result{Kind: ResultKindTable, Table: frame}
}

// ScalarResult wraps a single value such as a number or a string.
func ScalarResult(value any) Result {
	return Result{Kind: ResultKindScalar, Value: value}
}

// StructuredResult wraps a map, slice or struct value.
func StructuredResult(value any) Result {
	return Result{Kind: ResultKindStructured, Value: value}
}

// IsTable reports whether the result carries a Frame.
func (r Result) IsTable() bool {
	return r.Kind == ResultKindTable && r.Table != nil
}

// IsEmpty reports whether no node has produced the result yet.
func (r Result) IsEmpty() bool {
	return r.Kind == ResultKindNone
}
