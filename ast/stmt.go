package ast

// Stmt is the tagged-union interface implemented by every statement node.
type Stmt interface {
	Span() Span
}

type stmtBase struct {
	span Span
}

func (s *stmtBase) Span() Span { return s.span }

// Let is a variable binding: name, optional declared type, initializer.
type Let struct {
	stmtBase
	Name     string
	TypeName string // empty if no declared type
	Init     Expr
}

func NewLet(name, typeName string, init Expr, span Span) *Let {
	return &Let{stmtBase: stmtBase{span: span}, Name: name, TypeName: typeName, Init: init}
}

// FuncDecl is a function declaration; Body is nil for a declaration-only
// (bodyless) form, as used by the prelude.
type FuncDecl struct {
	stmtBase
	Name       string
	Params     []Param
	ReturnType string // empty means void
	Body       *Block
}

func NewFuncDecl(name string, params []Param, returnType string, body *Block, span Span) *FuncDecl {
	return &FuncDecl{stmtBase: stmtBase{span: span}, Name: name, Params: params, ReturnType: returnType, Body: body}
}

// OperatorDecl is an operator declaration.  Precedence is meaningful only
// for Position == Infix; Assoc defaults to AssocLeft when Position == Infix
// and no associativity keyword was given.
type OperatorDecl struct {
	stmtBase
	Symbol     string
	Position   Position
	Params     []Param
	ReturnType string
	Precedence int
	Assoc      Assoc
	Body       *Block
}

func NewOperatorDecl(symbol string, pos Position, params []Param, returnType string, prec int, assoc Assoc, body *Block, span Span) *OperatorDecl {
	return &OperatorDecl{
		stmtBase: stmtBase{span: span}, Symbol: symbol, Position: pos, Params: params,
		ReturnType: returnType, Precedence: prec, Assoc: assoc, Body: body,
	}
}

// If is a conditional.  Else is nil, a *Block, or another *If (the
// else-if chain), modeled as an Stmt to allow both.
type If struct {
	stmtBase
	Cond Expr
	Then *Block
	Else Stmt // nil, *Block, or *If
}

func NewIf(cond Expr, then *Block, els Stmt, span Span) *If {
	return &If{stmtBase: stmtBase{span: span}, Cond: cond, Then: then, Else: els}
}

// Return is a return statement; Value is nil for a bare `return;`.
type Return struct {
	stmtBase
	Value Expr
}

func NewReturn(value Expr, span Span) *Return {
	return &Return{stmtBase: stmtBase{span: span}, Value: value}
}

// While is a while loop.
type While struct {
	stmtBase
	Cond Expr
	Body *Block
}

func NewWhile(cond Expr, body *Block, span Span) *While {
	return &While{stmtBase: stmtBase{span: span}, Cond: cond, Body: body}
}

// ExprStmt is an expression evaluated for its side effect.
type ExprStmt struct {
	stmtBase
	X Expr
}

func NewExprStmt(x Expr, span Span) *ExprStmt {
	return &ExprStmt{stmtBase: stmtBase{span: span}, X: x}
}
