package query

// Expr is a node of a parsed query.
type Expr interface {
	exprNode()
}

// ColumnExpr references a column by name.
type ColumnExpr struct {
	Name string
}

// LiteralExpr is a constant: nil, int64, float64, bool or string.
type LiteralExpr struct {
	Value any
}

// CompareExpr compares two operands with one of == != < <= > >=.
type CompareExpr struct {
	Op    string
	Left  Expr
	Right Expr
}

// InExpr tests membership of an operand in a literal list.
type InExpr struct {
	Operand Expr
	Values  []any
	Negated bool
}

// LogicalExpr combines two boolean expressions with "and" or "or".
type LogicalExpr struct {
	Op    string
	Left  Expr
	Right Expr
}

// NotExpr negates a boolean expression.
type NotExpr struct {
	Operand Expr
}

func (*ColumnExpr) exprNode()  {}
func (*LiteralExpr) exprNode() {}
func (*CompareExpr) exprNode() {}
func (*InExpr) exprNode()      {}
func (*LogicalExpr) exprNode() {}
func (*NotExpr) exprNode()     {}
