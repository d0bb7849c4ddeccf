package ir

// Node is implemented by every expression and statement.
type Node interface {
	aNode()
}

// Expr is an expression node. Expressions are compared by identity, so
// each node must be a distinct pointer.
type Expr interface {
	Node
	aExpr()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	aStmt()
}

type expr struct{}

func (*expr) aNode() {}
func (*expr) aExpr() {}

type stmt struct{}

func (*stmt) aNode() {}
func (*stmt) aStmt() {}

// BinaryOp is an arithmetic operator.
type BinaryOp uint8

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
)

func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	default:
		return "?"
	}
}

type (
	// Var reads a parameter or local.
	Var struct {
		expr
		Name string
	}

	IntConst struct {
		expr
		Value int64
	}

	FloatConst struct {
		expr
		Value float64
	}

	Binary struct {
		expr
		X, Y Expr
		Op   BinaryOp
	}

	// Len is the record count of an array.
	Len struct {
		expr
		X Expr
	}

	// Index is X[Index] on an array; it yields a view of the element.
	Index struct {
		expr
		X     Expr
		Index Expr
	}

	// Field is X.Name on a record view.
	Field struct {
		expr
		X    Expr
		Name string
	}

	// ColumnIndex is X.Name[Index] on an array, without a view.
	ColumnIndex struct {
		expr
		X     Expr
		Index Expr
		Name  string
	}
)

type (
	// Assign binds a local.
	Assign struct {
		stmt
		Value Expr
		Name  string
	}

	// SetField writes X.Name = Value on a record view.
	SetField struct {
		stmt
		X     Expr
		Value Expr
		Name  string
	}

	// SetColumn writes X.Name[Index] = Value on an array.
	SetColumn struct {
		stmt
		X     Expr
		Index Expr
		Value Expr
		Name  string
	}

	// For runs Body for Var in range(Stop). Stop is evaluated once. Var
	// keeps its last value after the loop and stays unbound if the loop
	// never ran.
	For struct {
		stmt
		Stop Expr
		Var  string
		Body []Stmt
	}

	// Print writes its arguments separated by spaces and ends the line.
	Print struct {
		stmt
		Args []Expr
	}

	// Return ends the function, with a value if Value is not nil.
	Return struct {
		stmt
		Value Expr
	}
)

// Function is a checked-on-demand function body.
type Function struct {
	Name   string
	Params []string
	Body   []Stmt
}
