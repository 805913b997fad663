package sym

import (
	"strconv"

	"pecco/ast"
	"pecco/report"
	"pecco/types"
)

// Builder walks an AST and populates a SymbolTable.  Collect runs twice
// against one table: once over the prelude (with collectingPrelude set) and
// once over the user's program.
type Builder struct {
	rep               *report.Reporter
	path              string
	collectingPrelude bool
	nextBlockNum      int
	current           *Scope
}

// NewBuilder creates a Builder reporting to rep, attributing diagnostics to
// path.
func NewBuilder(rep *report.Reporter, path string) *Builder {
	return &Builder{rep: rep, path: path}
}

// Collect walks stmts against table, inserting declarations.  It returns
// true if no new errors were accumulated during the walk.
func (b *Builder) Collect(stmts []ast.Stmt, table *SymbolTable, prelude bool) bool {
	before := b.rep.ErrorCount()
	b.collectingPrelude = prelude
	b.nextBlockNum = 0
	b.current = table.Root

	for _, stmt := range stmts {
		b.processStmtRecovering(stmt, table)
	}

	return b.rep.ErrorCount() == before
}

func (b *Builder) processStmtRecovering(stmt ast.Stmt, table *SymbolTable) {
	defer func() {
		if rec := recover(); rec != nil {
			if lce, ok := rec.(*report.LocalCompileError); ok {
				lce.Diag.Path = b.path
				b.rep.Record(lce.Diag)
				return
			}
			panic(rec)
		}
	}()
	b.processStmt(stmt, table)
}

func (b *Builder) origin() Origin {
	if b.collectingPrelude {
		return Prelude
	}
	return User
}

func (b *Builder) processStmt(stmt ast.Stmt, table *SymbolTable) {
	switch s := stmt.(type) {
	case *ast.FuncDecl:
		b.processFuncDecl(s, table)
	case *ast.OperatorDecl:
		b.processOperatorDecl(s, table)
	case *ast.Let:
		b.processLet(s)
	case *ast.Block:
		blockNum := b.nextBlockNum
		b.nextBlockNum++
		b.processBlock(s, table, blockNum)
	case *ast.If:
		b.processStmt(s.Then, table)
		if s.Else != nil {
			b.processStmt(s.Else, table)
		}
	case *ast.While:
		b.processStmt(s.Body, table)
	default:
		// Return, ExprStmt: no declarations to collect.
	}
}

func typeNameToType(name string) types.Type {
	return types.Type(name)
}

func (b *Builder) processFuncDecl(fn *ast.FuncDecl, table *SymbolTable) {
	if b.current.Kind != Global {
		report.Raise("symtab", "nested function definitions are not supported (closures unimplemented)",
			fn.Span().Line, fn.Span().StartCol)
	}

	paramTypes := make([]types.Type, 0, len(fn.Params))
	for _, param := range fn.Params {
		if param.TypeName == "" {
			report.Raise("symtab",
				"function parameter '"+param.Name+"' requires explicit type (generics unimplemented)",
				param.Span.Line, param.Span.StartCol)
		}
		paramTypes = append(paramTypes, typeNameToType(param.TypeName))
	}

	returnType := types.Void
	if fn.ReturnType != "" {
		returnType = typeNameToType(fn.ReturnType)
	}

	sig := &FunctionSignature{
		Name: fn.Name, ParamTypes: paramTypes, ReturnType: returnType,
		DeclOnly: fn.Body == nil, Origin: b.origin(),
	}
	table.AddFunction(sig)

	if fn.Body != nil {
		b.current = newScope(Function, b.current, "function "+fn.Name)
		for _, param := range fn.Params {
			b.current.Vars[param.Name] = &VariableBinding{
				Name: param.Name, Type: typeNameToType(param.TypeName),
				Line: param.Span.Line, Col: param.Span.StartCol, Origin: b.origin(),
			}
		}
		for _, inner := range fn.Body.Stmts {
			b.processStmtRecovering(inner, table)
		}
		b.current = b.current.Parent
	}
}

func (b *Builder) processOperatorDecl(op *ast.OperatorDecl, table *SymbolTable) {
	if b.current.Kind != Global {
		report.Raise("symtab", "operator declarations are not allowed outside global scope",
			op.Span().Line, op.Span().StartCol)
	}

	paramTypes := make([]types.Type, 0, len(op.Params))
	for _, param := range op.Params {
		if param.TypeName == "" {
			report.Raise("symtab", "operator parameter requires explicit type (generics unimplemented)",
				param.Span.Line, param.Span.StartCol)
		}
		paramTypes = append(paramTypes, typeNameToType(param.TypeName))
	}

	if op.ReturnType == "" {
		report.Raise("symtab", "operator must have explicit return type", op.Span().Line, op.Span().StartCol)
	}
	returnType := typeNameToType(op.ReturnType)

	if _, ok := table.FindOperatorExact(op.Symbol, op.Position, paramTypes); ok {
		report.Raise("symtab",
			"operator '"+op.Symbol+"' already declared with this parameter signature",
			op.Span().Line, op.Span().StartCol)
	}

	info := &OperatorInfo{
		Symbol: op.Symbol, Position: op.Position, Precedence: op.Precedence, Assoc: op.Assoc,
		ParamTypes: paramTypes, ReturnType: returnType, Origin: b.origin(),
		MangledName: Mangle(op.Symbol, paramTypes), DeclOnly: op.Body == nil,
	}
	table.AddOperator(info)

	if op.Body != nil {
		b.current = newScope(Function, b.current, "operator "+op.Symbol)
		for i, param := range op.Params {
			b.current.Vars[param.Name] = &VariableBinding{
				Name: param.Name, Type: paramTypes[i],
				Line: param.Span.Line, Col: param.Span.StartCol, Origin: b.origin(),
			}
		}
		for _, inner := range op.Body.Stmts {
			b.processStmtRecovering(inner, table)
		}
		b.current = b.current.Parent
	}
}

func (b *Builder) processLet(let *ast.Let) {
	if b.current.HasVariableLocal(let.Name) {
		report.Raise("symtab", "variable '"+let.Name+"' already defined in current scope",
			let.Span().Line, let.Span().StartCol)
	}

	typeName := types.Unknown
	if let.TypeName != "" {
		typeName = typeNameToType(let.TypeName)
	}

	b.current.Vars[let.Name] = &VariableBinding{
		Name: let.Name, Type: typeName, Line: let.Span().Line, Col: let.Span().StartCol, Origin: b.origin(),
	}
}

func (b *Builder) processBlock(block *ast.Block, table *SymbolTable, blockNum int) {
	desc := blockDesc(blockNum, block.Span().Line)
	b.current = newScope(BlockScope, b.current, desc)

	for _, stmt := range block.Stmts {
		b.processStmtRecovering(stmt, table)
	}

	b.current = b.current.Parent
}

func blockDesc(num, line int) string {
	return "block #" + strconv.Itoa(num) + " at line " + strconv.Itoa(line)
}
