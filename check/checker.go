// Package check implements the bottom-up type checker: an independent
// scope stack (distinct from the symbol table's scope tree) mirroring
// traversal order, annotating every expression's inferred type exactly
// once.
package check

import (
	"fmt"

	"pecco/ast"
	"pecco/report"
	"pecco/sym"
	"pecco/types"
)

// Checker type-checks a resolved AST against a SymbolTable.
type Checker struct {
	table      *sym.SymbolTable
	path       string
	scopeStack []map[string]types.Type
}

func New(table *sym.SymbolTable, path string) *Checker {
	return &Checker{table: table, path: path}
}

// CheckAll type-checks every statement, returning true if no new errors
// were accumulated.
func (c *Checker) CheckAll(stmts []ast.Stmt, rep *report.Reporter) bool {
	before := rep.ErrorCount()
	c.pushScope()
	for _, stmt := range stmts {
		c.checkStmtRecovering(stmt, rep)
	}
	c.popScope()
	return rep.ErrorCount() == before
}

func (c *Checker) pushScope() {
	c.scopeStack = append(c.scopeStack, map[string]types.Type{})
}

func (c *Checker) popScope() {
	if len(c.scopeStack) > 0 {
		c.scopeStack = c.scopeStack[:len(c.scopeStack)-1]
	}
}

func (c *Checker) addVariableType(name string, t types.Type) {
	if len(c.scopeStack) > 0 {
		c.scopeStack[len(c.scopeStack)-1][name] = t
	}
}

func (c *Checker) lookupVariableType(name string) types.Type {
	for i := len(c.scopeStack) - 1; i >= 0; i-- {
		if t, ok := c.scopeStack[i][name]; ok {
			return t
		}
	}
	return types.Unknown
}

func (c *Checker) checkStmtRecovering(stmt ast.Stmt, rep *report.Reporter) {
	defer func() {
		if rec := recover(); rec != nil {
			if lce, ok := rec.(*report.LocalCompileError); ok {
				lce.Diag.Path = c.path
				rep.Record(lce.Diag)
				return
			}
			panic(rec)
		}
	}()
	c.checkStmt(stmt, rep)
}

func (c *Checker) checkStmt(stmt ast.Stmt, rep *report.Reporter) {
	switch s := stmt.(type) {
	case *ast.Let:
		c.checkLet(s)

	case *ast.FuncDecl:
		c.checkFuncLike(s.Params, s.ReturnType, s.Body, s.Span(), rep)

	case *ast.OperatorDecl:
		// Deviates from a looser reference implementation that skips
		// operator bodies entirely: codegen expects typed expressions
		// inside operator bodies exactly as it does for functions.
		c.checkFuncLike(s.Params, s.ReturnType, s.Body, s.Span(), rep)

	case *ast.Return:
		if s.Value != nil {
			c.checkExpr(s.Value)
		}

	case *ast.ExprStmt:
		c.checkExpr(s.X)

	case *ast.Block:
		c.pushScope()
		for _, inner := range s.Stmts {
			c.checkStmtRecovering(inner, rep)
		}
		c.popScope()

	case *ast.If:
		condType := c.checkExpr(s.Cond)
		if condType != types.Unknown && condType != types.Bool {
			report.Raise("check", fmt.Sprintf("if condition must be 'bool', got '%s'", condType),
				s.Cond.Span().Line, s.Cond.Span().StartCol)
		}
		c.checkStmtRecovering(s.Then, rep)
		if s.Else != nil {
			c.checkStmtRecovering(s.Else, rep)
		}

	case *ast.While:
		condType := c.checkExpr(s.Cond)
		if condType != types.Unknown && condType != types.Bool {
			report.Raise("check", fmt.Sprintf("while condition must be 'bool', got '%s'", condType),
				s.Cond.Span().Line, s.Cond.Span().StartCol)
		}
		c.checkStmtRecovering(s.Body, rep)
	}
}

func (c *Checker) checkLet(let *ast.Let) {
	var initType types.Type
	if let.Init != nil {
		initType = c.checkExpr(let.Init)
	}

	if let.TypeName != "" {
		declared := types.Type(let.TypeName)
		if initType != types.Unknown && initType != declared {
			report.Raise("check",
				fmt.Sprintf("type mismatch: variable '%s' declared as '%s' but initialized with '%s'", let.Name, declared, initType),
				let.Init.Span().Line, let.Init.Span().StartCol)
		}
		c.addVariableType(let.Name, declared)
	} else if initType != types.Unknown {
		c.addVariableType(let.Name, initType)
	}
}

// checkFuncLike type-checks a function or operator body: push a scope,
// bind parameters, check the body, and require that a non-void body
// cannot fall off the end without returning a value.
func (c *Checker) checkFuncLike(params []ast.Param, returnTypeName string, body *ast.Block, declSpan ast.Span, rep *report.Reporter) {
	if body == nil {
		return
	}

	c.pushScope()
	for _, p := range params {
		if p.TypeName != "" {
			c.addVariableType(p.Name, types.Type(p.TypeName))
		}
	}
	for _, inner := range body.Stmts {
		c.checkStmtRecovering(inner, rep)
	}
	c.popScope()

	returnType := types.Void
	if returnTypeName != "" {
		returnType = types.Type(returnTypeName)
	}
	if returnType != types.Void && !blockAlwaysReturns(body) {
		report.Raise("check", "function may fall off the end without returning a value",
			body.Span().Line, body.Span().EndCol)
	}
}

// blockAlwaysReturns is a conservative, structural "definitely returns"
// analysis: a block returns if its last statement does; an if returns only
// if it has an else and both branches return; a while loop is never
// considered to definitely return, since its body may run zero times.
func blockAlwaysReturns(b *ast.Block) bool {
	if len(b.Stmts) == 0 {
		return false
	}
	return stmtAlwaysReturns(b.Stmts[len(b.Stmts)-1])
}

func stmtAlwaysReturns(s ast.Stmt) bool {
	switch v := s.(type) {
	case *ast.Return:
		return true
	case *ast.Block:
		return blockAlwaysReturns(v)
	case *ast.If:
		if v.Else == nil {
			return false
		}
		return stmtAlwaysReturns(v.Then) && stmtAlwaysReturns(v.Else)
	default:
		return false
	}
}

// checkExpr infers and memoizes the type of e, recursing into its children
// first.  Already-memoized expressions (SetType having been called once
// already) are returned without re-walking, which also makes re-running the
// checker over an already-checked tree a no-op.
func (c *Checker) checkExpr(e ast.Expr) types.Type {
	if e == nil {
		return types.Unknown
	}
	if t, ok := e.Type().(types.Type); ok && t != types.Unknown {
		return t
	}

	var result types.Type
	switch n := e.(type) {
	case *ast.IntLit:
		result = types.I32
	case *ast.FloatLit:
		result = types.F64
	case *ast.StringLit:
		result = types.String
	case *ast.BoolLit:
		result = types.Bool
	case *ast.Ident:
		// An unknown binding here is tolerated: it yields types.Unknown rather
		// than an error, and flows through as such to any enclosing
		// expression. "undefined variable" is a code-generation-stage error,
		// raised once the identifier is actually used to emit a load.
		result = c.lookupVariableType(n.Name)
	case *ast.Binary:
		result = c.checkBinary(n)
	case *ast.Unary:
		result = c.checkUnary(n)
	case *ast.Call:
		result = c.checkCall(n)
	case *ast.OperatorSeq:
		report.Fatal("unresolved operator sequence reached the type checker")
	default:
		result = types.Unknown
	}

	e.SetType(result)
	return result
}

func (c *Checker) checkBinary(n *ast.Binary) types.Type {
	leftType := c.checkExpr(n.Left)
	rightType := c.checkExpr(n.Right)

	if info, ok := c.table.FindOperatorExact(n.Op, ast.Infix, []types.Type{leftType, rightType}); ok {
		return info.ReturnType
	}

	overloads := c.table.OperatorOverloads(n.Op, ast.Infix)
	// Deviates from a looser reference implementation that silently falls
	// back to the first overload whenever no exact match is found: once
	// both operand types are known, an unmatched call is a type error, not
	// a best guess.
	if leftType != types.Unknown && rightType != types.Unknown {
		report.Raise("check",
			fmt.Sprintf("no overload of operator '%s' accepts ('%s', '%s')", n.Op, leftType, rightType),
			n.Span().Line, n.Span().StartCol)
	}
	if len(overloads) > 0 {
		return overloads[0].ReturnType
	}
	return types.Unknown
}

func (c *Checker) checkUnary(n *ast.Unary) types.Type {
	operandType := c.checkExpr(n.Operand)

	if info, ok := c.table.FindOperatorExact(n.Op, n.Position, []types.Type{operandType}); ok {
		return info.ReturnType
	}

	overloads := c.table.OperatorOverloads(n.Op, n.Position)
	if operandType != types.Unknown {
		report.Raise("check",
			fmt.Sprintf("no overload of %s operator '%s' accepts ('%s')", n.Position, n.Op, operandType),
			n.Span().Line, n.Span().StartCol)
	}
	if len(overloads) > 0 {
		return overloads[0].ReturnType
	}
	return types.Unknown
}

func (c *Checker) checkCall(n *ast.Call) types.Type {
	ident, ok := n.Callee.(*ast.Ident)
	if !ok {
		report.Raise("check", "call target must be a plain function name", n.Span().Line, n.Span().StartCol)
	}

	argTypes := make([]types.Type, len(n.Args))
	allKnown := true
	for i, arg := range n.Args {
		argTypes[i] = c.checkExpr(arg)
		if argTypes[i] == types.Unknown {
			allKnown = false
		}
	}

	if sig, ok := c.table.FindFunctionExact(ident.Name, argTypes); ok {
		return sig.ReturnType
	}

	funcs := c.table.Functions[ident.Name]
	if len(funcs) == 0 {
		report.Raise("check", fmt.Sprintf("undefined function '%s'", ident.Name), n.Span().Line, n.Span().StartCol)
	}
	if allKnown {
		report.Raise("check", fmt.Sprintf("no overload of function '%s' accepts the given argument types", ident.Name),
			n.Span().Line, n.Span().StartCol)
	}
	return funcs[0].ReturnType
}
