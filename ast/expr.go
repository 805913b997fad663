package ast

// Expr is the tagged-union interface implemented by every expression node.
// Every expression carries an optional inferred type, written exactly once
// by the type checker and read by the code generator; it is stored as an
// untyped interface here (types.Type, assigned via SetType/Type) to avoid
// an import cycle between ast and the closed type set it is annotated with.
type Expr interface {
	Span() Span
	Type() interface{}
	SetType(interface{})
}

type exprBase struct {
	span     Span
	inferred interface{}
}

func (e *exprBase) Span() Span            { return e.span }
func (e *exprBase) Type() interface{}     { return e.inferred }
func (e *exprBase) SetType(t interface{}) { e.inferred = t }

// IntLit is a raw-digit-string integer literal; numeric parsing is deferred
// to the code generator.
type IntLit struct {
	exprBase
	Raw string
}

func NewIntLit(raw string, span Span) *IntLit {
	return &IntLit{exprBase: exprBase{span: span}, Raw: raw}
}

// FloatLit is a raw-text floating literal.
type FloatLit struct {
	exprBase
	Raw string
}

func NewFloatLit(raw string, span Span) *FloatLit {
	return &FloatLit{exprBase: exprBase{span: span}, Raw: raw}
}

// StringLit holds an already-decoded string value.
type StringLit struct {
	exprBase
	Value string
}

func NewStringLit(value string, span Span) *StringLit {
	return &StringLit{exprBase: exprBase{span: span}, Value: value}
}

// BoolLit is a boolean literal.
type BoolLit struct {
	exprBase
	Value bool
}

func NewBoolLit(value bool, span Span) *BoolLit {
	return &BoolLit{exprBase: exprBase{span: span}, Value: value}
}

// Ident is an identifier reference.
type Ident struct {
	exprBase
	Name string
}

func NewIdent(name string, span Span) *Ident {
	return &Ident{exprBase: exprBase{span: span}, Name: name}
}

// Binary is a resolved infix application: operator symbol, left/right
// children, and the span of the operator token itself.
type Binary struct {
	exprBase
	Op    string
	Left  Expr
	Right Expr
}

func NewBinary(op string, left, right Expr, span Span) *Binary {
	return &Binary{exprBase: exprBase{span: span}, Op: op, Left: left, Right: right}
}

// Unary is a resolved prefix or postfix application.
type Unary struct {
	exprBase
	Op       string
	Operand  Expr
	Position Position // Prefix or Postfix
}

func NewUnary(op string, operand Expr, pos Position, span Span) *Unary {
	return &Unary{exprBase: exprBase{span: span}, Op: op, Operand: operand, Position: pos}
}

// SeqItem is one element of an OperatorSeq: either an operand or a bare
// operator symbol with its own span.
type SeqItem struct {
	Operand Expr   // nil if this item is an operator
	Op      string // empty if this item is an operand
	OpSpan  Span
}

func (it SeqItem) IsOperator() bool { return it.Operand == nil }

// OperatorSeq is the parser's flat, unresolved representation of an
// expression: an ordered alternation of operand and operator items.  It is
// eliminated by the resolver; no OperatorSeq node should ever reach the
// type checker.
type OperatorSeq struct {
	exprBase
	Items []SeqItem
}

func NewOperatorSeq(items []SeqItem, span Span) *OperatorSeq {
	return &OperatorSeq{exprBase: exprBase{span: span}, Items: items}
}

// Call is a function call: a callee expression (required to be an Ident by
// the type checker and generator, though the parser accepts any expr) and
// an ordered argument list.
type Call struct {
	exprBase
	Callee Expr
	Args   []Expr
}

func NewCall(callee Expr, args []Expr, span Span) *Call {
	return &Call{exprBase: exprBase{span: span}, Callee: callee, Args: args}
}
