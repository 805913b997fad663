package codegen

import (
	"pecco/ast"
	"pecco/report"
)

func (g *Generator) genStmtRecovering(stmt ast.Stmt, rep *report.Reporter) {
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
	g.genStmt(stmt)
}

func (g *Generator) genStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.Let:
		g.genLet(s)
	case *ast.Return:
		g.genReturn(s)
	case *ast.ExprStmt:
		g.genExpr(s.X)
	case *ast.Block:
		g.genBlockStmt(s)
	case *ast.If:
		g.genIf(s)
	case *ast.While:
		g.genWhile(s)
	case *ast.FuncDecl, *ast.OperatorDecl:
		// Nested declarations are rejected by the symbol-table builder
		// before codegen ever runs.
	}
}

func (g *Generator) genLet(let *ast.Let) {
	var val llvmValue
	if let.Init != nil {
		val = g.genExpr(let.Init)
	}

	llTy, ok := llvmType(exprType(let.Init))
	if !ok {
		report.Raise("codegen", "cannot determine type for variable '"+let.Name+"'", let.Span().Line, let.Span().StartCol)
	}

	alloca := g.curBlock.NewAlloca(llTy)
	if val != nil {
		g.curBlock.NewStore(val, alloca)
	}
	g.addVariable(let.Name, alloca)
}

func (g *Generator) genReturn(ret *ast.Return) {
	if ret.Value != nil {
		g.curBlock.NewRet(g.genExpr(ret.Value))
	} else {
		g.curBlock.NewRet(nil)
	}
}

func (g *Generator) genBlockStmt(block *ast.Block) {
	g.pushScope()
	for _, inner := range block.Stmts {
		g.genStmt(inner)
		if g.curBlock.Term != nil {
			break
		}
	}
	g.popScope()
}

func (g *Generator) genIf(ifStmt *ast.If) {
	cond := g.genExpr(ifStmt.Cond)

	thenBlock := g.curFunc.NewBlock("then")
	mergeBlock := g.curFunc.NewBlock("ifcont")

	if ifStmt.Else != nil {
		elseBlock := g.curFunc.NewBlock("else")
		g.curBlock.NewCondBr(cond, thenBlock, elseBlock)

		g.curBlock = thenBlock
		g.genStmt(ifStmt.Then)
		if g.curBlock.Term == nil {
			g.curBlock.NewBr(mergeBlock)
		}

		g.curBlock = elseBlock
		g.genStmt(ifStmt.Else)
		if g.curBlock.Term == nil {
			g.curBlock.NewBr(mergeBlock)
		}
	} else {
		g.curBlock.NewCondBr(cond, thenBlock, mergeBlock)

		g.curBlock = thenBlock
		g.genStmt(ifStmt.Then)
		if g.curBlock.Term == nil {
			g.curBlock.NewBr(mergeBlock)
		}
	}

	g.curBlock = mergeBlock
}

func (g *Generator) genWhile(whileStmt *ast.While) {
	condBlock := g.curFunc.NewBlock("loop.cond")
	bodyBlock := g.curFunc.NewBlock("loop.body")
	endBlock := g.curFunc.NewBlock("loop.end")

	g.curBlock.NewBr(condBlock)

	g.curBlock = condBlock
	cond := g.genExpr(whileStmt.Cond)
	g.curBlock.NewCondBr(cond, bodyBlock, endBlock)

	g.curBlock = bodyBlock
	g.genStmt(whileStmt.Body)
	if g.curBlock.Term == nil {
		g.curBlock.NewBr(condBlock)
	}

	g.curBlock = endBlock
}
