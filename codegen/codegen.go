// Package codegen lowers a resolved, type-checked AST to an LLVM IR module
// using llir/llvm's pure-Go IR builder.
package codegen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	llvmtypes "github.com/llir/llvm/ir/types"

	"pecco/ast"
	"pecco/report"
	"pecco/sym"
	"pecco/types"
)

// EntryFuncName is the synthetic function that collects every top-level
// statement that is not itself a function or operator declaration. A
// driver wraps it with a conventional `main`.
const EntryFuncName = "__pecco_entry"

// Generator lowers a checked AST into an *ir.Module.
type Generator struct {
	table *sym.SymbolTable
	path  string

	mod *ir.Module

	// funcs maps a plain function name, or an operator's mangled name, to
	// its declared *ir.Func.
	funcs map[string]*ir.Func

	curFunc    *ir.Func
	curBlock   *ir.Block
	scopeStack []map[string]*ir.InstAlloca
}

func New(table *sym.SymbolTable, moduleName, path string) *Generator {
	mod := ir.NewModule()
	mod.SourceFilename = moduleName
	return &Generator{
		table: table,
		path:  path,
		mod:   mod,
		funcs: map[string]*ir.Func{},
	}
}

// llvmType maps a domain type to its LLVM representation. The empty/Unknown
// type (which the checker tolerates rather than rejects) has no mapping and
// yields ok=false; callers turn that into a codegen diagnostic.
func llvmType(t types.Type) (llvmtypes.Type, bool) {
	switch t {
	case types.I32:
		return llvmtypes.I32, true
	case types.F64:
		return llvmtypes.Double, true
	case types.Bool:
		return llvmtypes.I1, true
	case types.String:
		return llvmtypes.I8Ptr, true
	case types.Void:
		return llvmtypes.Void, true
	default:
		return nil, false
	}
}

func (g *Generator) pushScope() {
	g.scopeStack = append(g.scopeStack, map[string]*ir.InstAlloca{})
}

func (g *Generator) popScope() {
	if len(g.scopeStack) > 0 {
		g.scopeStack = g.scopeStack[:len(g.scopeStack)-1]
	}
}

func (g *Generator) addVariable(name string, alloca *ir.InstAlloca) {
	if len(g.scopeStack) > 0 {
		g.scopeStack[len(g.scopeStack)-1][name] = alloca
	}
}

func (g *Generator) lookupVariable(name string) (*ir.InstAlloca, bool) {
	for i := len(g.scopeStack) - 1; i >= 0; i-- {
		if v, ok := g.scopeStack[i][name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Generate lowers every top-level statement, returning the completed module
// and whether generation succeeded without error.
func (g *Generator) Generate(stmts []ast.Stmt, rep *report.Reporter) (*ir.Module, bool) {
	before := rep.ErrorCount()

	if !g.declareFunctions(rep) {
		return g.mod, false
	}
	if !g.declareOperators(rep) {
		return g.mod, false
	}

	entryFunc := g.mod.NewFunc(EntryFuncName, llvmtypes.I32)
	entryFunc.Linkage = enum.LinkageExternal
	g.funcs[EntryFuncName] = entryFunc
	g.curFunc = entryFunc
	g.curBlock = entryFunc.NewBlock("entry")

	g.pushScope()
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.FuncDecl:
			if s.Body != nil {
				g.genFuncLikeRecovering(g.funcs[s.Name], s.Params, s.Body, rep)
			}
		case *ast.OperatorDecl:
			if s.Body != nil {
				mangled := sym.Mangle(s.Symbol, paramTypes(s.Params))
				g.genFuncLikeRecovering(g.funcs[mangled], s.Params, s.Body, rep)
			}
		default:
			g.genStmtRecovering(stmt, rep)
		}
	}

	if g.curBlock.Term == nil {
		g.curBlock.NewRet(constant.NewInt(llvmtypes.I32, 0))
	}
	g.popScope()

	if !g.verify(rep) {
		return g.mod, false
	}

	return g.mod, rep.ErrorCount() == before
}

func paramTypes(params []ast.Param) []types.Type {
	out := make([]types.Type, len(params))
	for i, p := range params {
		out[i] = types.Type(p.TypeName)
	}
	return out
}

// declareFunctions creates every function's *ir.Func ahead of generating any
// body, so forward/mutually-recursive calls resolve.
func (g *Generator) declareFunctions(rep *report.Reporter) bool {
	for name, sigs := range g.table.Functions {
		for _, sig := range sigs {
			llParams := make([]*ir.Param, len(sig.ParamTypes))
			for i, pt := range sig.ParamTypes {
				llTy, ok := llvmType(pt)
				if !ok {
					rep.Record(report.Diagnostic{Stage: "codegen", Path: g.path, Message: fmt.Sprintf("unknown parameter type in function '%s'", name)})
					return false
				}
				llParams[i] = ir.NewParam("", llTy)
			}
			retTy, ok := llvmType(sig.ReturnType)
			if !ok {
				rep.Record(report.Diagnostic{Stage: "codegen", Path: g.path, Message: fmt.Sprintf("unknown return type in function '%s'", name)})
				return false
			}
			fn := g.mod.NewFunc(name, retTy, llParams...)
			fn.Linkage = enum.LinkageExternal
			g.funcs[name] = fn
		}
	}
	return true
}

// declareOperators creates a declaration, under its mangled name, for every
// operator overload in the table (including bodyless prelude operators,
// which still need an external declaration to be callable).
func (g *Generator) declareOperators(rep *report.Reporter) bool {
	for _, overloads := range g.table.Operators {
		for _, info := range overloads {
			llParams := make([]*ir.Param, len(info.ParamTypes))
			for i, pt := range info.ParamTypes {
				llTy, ok := llvmType(pt)
				if !ok {
					rep.Record(report.Diagnostic{Stage: "codegen", Path: g.path, Message: fmt.Sprintf("unknown parameter type in operator '%s'", info.Symbol)})
					return false
				}
				llParams[i] = ir.NewParam("", llTy)
			}
			retTy, ok := llvmType(info.ReturnType)
			if !ok {
				rep.Record(report.Diagnostic{Stage: "codegen", Path: g.path, Message: fmt.Sprintf("unknown return type in operator '%s'", info.Symbol)})
				return false
			}
			mangled := sym.Mangle(info.Symbol, info.ParamTypes)
			fn := g.mod.NewFunc(mangled, retTy, llParams...)
			fn.Linkage = enum.LinkageExternal
			g.funcs[mangled] = fn
		}
	}
	return true
}

// genFuncLikeRecovering generates the body of a declared function or
// operator, recovering a LocalCompileError so one malformed body doesn't
// abort the rest of the module.
func (g *Generator) genFuncLikeRecovering(llFunc *ir.Func, params []ast.Param, body *ast.Block, rep *report.Reporter) {
	defer func() {
		if rec := recover(); rec != nil {
			if lce, ok := rec.(*report.LocalCompileError); ok {
				lce.Diag.Path = g.path
				rep.Record(lce.Diag)
				return
			}
			panic(rec)
		}
	}()
	g.genFuncLike(llFunc, params, body)
}

func (g *Generator) genFuncLike(llFunc *ir.Func, params []ast.Param, body *ast.Block) {
	savedFunc, savedBlock := g.curFunc, g.curBlock
	g.curFunc = llFunc
	g.curBlock = llFunc.NewBlock("entry")

	g.pushScope()
	for i, param := range llFunc.Params {
		alloca := g.curBlock.NewAlloca(param.Typ)
		g.curBlock.NewStore(param, alloca)
		g.addVariable(params[i].Name, alloca)
	}

	g.genStmt(body)

	if g.curBlock.Term == nil {
		// The checker rejects a non-void body that can fall off the end, so
		// a fall-through left here is either a void function's end (closed
		// with ret void) or a path already proven unreachable (closed with
		// an unreachable terminator); either keeps the block well-formed.
		if llFunc.Sig.RetType == llvmtypes.Void {
			g.curBlock.NewRet(nil)
		} else {
			g.curBlock.NewUnreachable()
		}
	}

	g.popScope()
	g.curFunc, g.curBlock = savedFunc, savedBlock
}

// verify performs a structural well-formedness pass: every basic block in
// every generated function must end in a terminator. llir/llvm, being a
// pure text-emission library, carries no LLVM verifier to call into, unlike
// a native-binding backend; this is the narrow substitute that catches the
// one invariant this generator itself is responsible for upholding.
func (g *Generator) verify(rep *report.Reporter) bool {
	ok := true
	for _, fn := range g.mod.Funcs {
		for _, block := range fn.Blocks {
			if block.Term == nil {
				rep.Record(report.Diagnostic{Stage: "codegen", Path: g.path,
					Message: fmt.Sprintf("internal error: block '%s' in function '%s' has no terminator", block.LocalIdent.Name(), fn.GlobalIdent.Name())})
				ok = false
			}
		}
	}
	return ok
}
