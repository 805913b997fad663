package codegen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	llvmtypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"pecco/ast"
	"pecco/report"
	"pecco/sym"
	"pecco/types"
)

// llvmValue is a local alias so call sites here don't need to spell out the
// full import path for every signature.
type llvmValue = value.Value

// exprType reads the domain type the checker annotated e with; it is only
// ever called on an already-checked tree, so it is always present.
func exprType(e ast.Expr) types.Type {
	if e == nil {
		return types.Unknown
	}
	t, _ := e.Type().(types.Type)
	return t
}

var assignmentOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
}

func (g *Generator) genExpr(e ast.Expr) llvmValue {
	switch n := e.(type) {
	case *ast.IntLit:
		return g.genIntLit(n)
	case *ast.FloatLit:
		return g.genFloatLit(n)
	case *ast.StringLit:
		return g.genStringLit(n)
	case *ast.BoolLit:
		return constant.NewBool(n.Value)
	case *ast.Ident:
		return g.genIdent(n)
	case *ast.Binary:
		return g.genBinary(n)
	case *ast.Unary:
		return g.genUnary(n)
	case *ast.Call:
		return g.genCall(n)
	case *ast.OperatorSeq:
		report.Fatal("unresolved operator sequence reached codegen")
	}
	return nil
}

func (g *Generator) genIntLit(lit *ast.IntLit) llvmValue {
	var v int64
	for _, c := range lit.Raw {
		v = v*10 + int64(c-'0')
	}
	return constant.NewInt(llvmtypes.I32, v)
}

func (g *Generator) genFloatLit(lit *ast.FloatLit) llvmValue {
	var v float64
	fmt.Sscanf(lit.Raw, "%g", &v)
	return constant.NewFloat(llvmtypes.Double, v)
}

func (g *Generator) genStringLit(lit *ast.StringLit) llvmValue {
	global := g.mod.NewGlobalDef(fmt.Sprintf("__strlit.%d", len(g.mod.Globals)), constant.NewCharArrayFromString(lit.Value+"\x00"))
	zero := constant.NewInt(llvmtypes.I32, 0)
	return constant.NewGetElementPtr(global.ContentType, global, zero, zero)
}

func (g *Generator) genIdent(ident *ast.Ident) llvmValue {
	alloca, ok := g.lookupVariable(ident.Name)
	if !ok {
		report.Raise("codegen", "undefined variable '"+ident.Name+"'", ident.Span().Line, ident.Span().StartCol)
	}
	return g.curBlock.NewLoad(alloca.ElemType, alloca)
}

func (g *Generator) genBinary(bin *ast.Binary) llvmValue {
	if assignmentOps[bin.Op] {
		return g.genAssignment(bin)
	}
	if bin.Op == "&&" || bin.Op == "||" {
		return g.genShortCircuit(bin)
	}

	left := g.genExpr(bin.Left)
	right := g.genExpr(bin.Right)
	leftType := exprType(bin.Left)
	rightType := exprType(bin.Right)

	if v := g.genBuiltinBinary(bin.Op, left, right, leftType); v != nil {
		return v
	}

	return g.genUserOperatorCall(bin.Op, ast.Infix, []llvmValue{left, right}, []types.Type{leftType, rightType}, bin.Span())
}

// genBuiltinBinary implements the fixed arithmetic/comparison/bitwise
// operator set directly as LLVM instructions, dispatching on the operand's
// checker-assigned domain type rather than re-deriving it from the LLVM
// value (which the original C++ generator must do, having no typed AST to
// consult at this stage). Returns nil for any operator this repository does
// not build in, leaving the caller to try a user-defined overload.
func (g *Generator) genBuiltinBinary(op string, left, right llvmValue, leftType types.Type) llvmValue {
	b := g.curBlock
	isInt := leftType == types.I32
	isFloat := leftType == types.F64

	switch op {
	case "+":
		if isInt {
			return b.NewAdd(left, right)
		} else if isFloat {
			return b.NewFAdd(left, right)
		}
	case "-":
		if isInt {
			return b.NewSub(left, right)
		} else if isFloat {
			return b.NewFSub(left, right)
		}
	case "*":
		if isInt {
			return b.NewMul(left, right)
		} else if isFloat {
			return b.NewFMul(left, right)
		}
	case "**":
		if isFloat {
			return b.NewCall(g.powIntrinsic(), left, right)
		}
	case "/":
		if isInt {
			return b.NewSDiv(left, right)
		} else if isFloat {
			return b.NewFDiv(left, right)
		}
	case "%":
		if isInt {
			return b.NewSRem(left, right)
		}
	case "&":
		if isInt {
			return b.NewAnd(left, right)
		}
	case "|":
		if isInt {
			return b.NewOr(left, right)
		}
	case "^":
		if isInt {
			return b.NewXor(left, right)
		}
	case "<<":
		if isInt {
			return b.NewShl(left, right)
		}
	case ">>":
		if isInt {
			return b.NewAShr(left, right)
		}
	case "==":
		if isInt || leftType == types.Bool {
			return b.NewICmp(enum.IPredEQ, left, right)
		} else if isFloat {
			return b.NewFCmp(enum.FPredOEQ, left, right)
		}
	case "!=":
		if isInt || leftType == types.Bool {
			return b.NewICmp(enum.IPredNE, left, right)
		} else if isFloat {
			return b.NewFCmp(enum.FPredONE, left, right)
		}
	case "<":
		if isInt {
			return b.NewICmp(enum.IPredSLT, left, right)
		} else if isFloat {
			return b.NewFCmp(enum.FPredOLT, left, right)
		}
	case "<=":
		if isInt {
			return b.NewICmp(enum.IPredSLE, left, right)
		} else if isFloat {
			return b.NewFCmp(enum.FPredOLE, left, right)
		}
	case ">":
		if isInt {
			return b.NewICmp(enum.IPredSGT, left, right)
		} else if isFloat {
			return b.NewFCmp(enum.FPredOGT, left, right)
		}
	case ">=":
		if isInt {
			return b.NewICmp(enum.IPredSGE, left, right)
		} else if isFloat {
			return b.NewFCmp(enum.FPredOGE, left, right)
		}
	}
	return nil
}

// powIntrinsic returns the module's declaration of LLVM's llvm.pow.f64
// intrinsic, declaring it on first use. `**` is the only builtin operator
// without a direct instruction equivalent, so it is lowered to a call
// instead of an arithmetic op like its siblings in genBuiltinBinary.
func (g *Generator) powIntrinsic() *ir.Func {
	const name = "llvm.pow.f64"
	if fn, ok := g.funcs[name]; ok {
		return fn
	}
	fn := g.mod.NewFunc(name, llvmtypes.Double,
		ir.NewParam("", llvmtypes.Double), ir.NewParam("", llvmtypes.Double))
	fn.Linkage = enum.LinkageExternal
	g.funcs[name] = fn
	return fn
}

// genShortCircuit lowers `&&`/`||` as a genuine short-circuiting branch,
// rather than the unconditional bitwise instructions the original generator
// uses: evaluate the left operand, branch on it to decide whether the right
// operand is even evaluated, and merge the two paths with a phi node.
func (g *Generator) genShortCircuit(bin *ast.Binary) llvmValue {
	left := g.genExpr(bin.Left)
	startBlock := g.curBlock

	rhsBlock := g.curFunc.NewBlock("shortcircuit.rhs")
	mergeBlock := g.curFunc.NewBlock("shortcircuit.merge")

	if bin.Op == "&&" {
		g.curBlock.NewCondBr(left, rhsBlock, mergeBlock)
	} else {
		g.curBlock.NewCondBr(left, mergeBlock, rhsBlock)
	}

	g.curBlock = rhsBlock
	right := g.genExpr(bin.Right)
	rhsEndBlock := g.curBlock
	rhsEndBlock.NewBr(mergeBlock)

	g.curBlock = mergeBlock
	phi := mergeBlock.NewPhi(
		ir.NewIncoming(left, startBlock),
		ir.NewIncoming(right, rhsEndBlock),
	)
	return phi
}

func (g *Generator) genUnary(un *ast.Unary) llvmValue {
	operand := g.genExpr(un.Operand)
	operandType := exprType(un.Operand)

	if un.Position == ast.Prefix {
		switch un.Op {
		case "-":
			if operandType == types.I32 {
				return g.curBlock.NewSub(constant.NewInt(llvmtypes.I32, 0), operand)
			} else if operandType == types.F64 {
				return g.curBlock.NewFNeg(operand)
			}
		case "!":
			if operandType == types.Bool {
				return g.curBlock.NewXor(operand, constant.NewBool(true))
			}
		}
	}

	return g.genUserOperatorCall(un.Op, un.Position, []llvmValue{operand}, []types.Type{operandType}, un.Span())
}

func (g *Generator) genUserOperatorCall(op string, pos ast.Position, args []llvmValue, argTypes []types.Type, span ast.Span) llvmValue {
	if _, ok := g.table.FindOperatorExact(op, pos, argTypes); !ok {
		report.Raise("codegen", fmt.Sprintf("unknown %s operator '%s'", pos, op), span.Line, span.StartCol)
	}
	mangled := sym.Mangle(op, argTypes)
	fn, ok := g.funcs[mangled]
	if !ok {
		report.Raise("codegen", "operator function not found: "+mangled, span.Line, span.StartCol)
	}
	return g.curBlock.NewCall(fn, args...)
}

// genAssignment handles `=` and the compound forms; the left operand must be
// an identifier naming an already-declared variable.
func (g *Generator) genAssignment(bin *ast.Binary) llvmValue {
	ident, ok := bin.Left.(*ast.Ident)
	if !ok {
		report.Raise("codegen", "left side of assignment must be a variable", bin.Span().Line, bin.Span().StartCol)
	}
	alloca, ok := g.lookupVariable(ident.Name)
	if !ok {
		report.Raise("codegen", "undefined variable '"+ident.Name+"'", bin.Span().Line, bin.Span().StartCol)
	}

	rightVal := g.genExpr(bin.Right)
	if bin.Op != "=" {
		leftVal := g.curBlock.NewLoad(alloca.ElemType, alloca)
		leftType := exprType(bin.Left)
		arithOp := bin.Op[:len(bin.Op)-1] // "+=" -> "+"
		if v := g.genBuiltinBinary(arithOp, leftVal, rightVal, leftType); v != nil {
			rightVal = v
		} else {
			rightVal = g.genUserOperatorCall(arithOp, ast.Infix, []llvmValue{leftVal, rightVal}, []types.Type{leftType, exprType(bin.Right)}, bin.Span())
		}
	}

	g.curBlock.NewStore(rightVal, alloca)
	return rightVal
}

func (g *Generator) genCall(call *ast.Call) llvmValue {
	ident, ok := call.Callee.(*ast.Ident)
	if !ok {
		report.Raise("codegen", "call target must be a plain function name", call.Span().Line, call.Span().StartCol)
	}

	argTypes := make([]types.Type, len(call.Args))
	args := make([]llvmValue, len(call.Args))
	for i, arg := range call.Args {
		args[i] = g.genExpr(arg)
		argTypes[i] = exprType(arg)
	}

	if _, ok := g.table.FindFunctionExact(ident.Name, argTypes); !ok {
		report.Raise("codegen", "unknown function: "+ident.Name, call.Span().Line, call.Span().StartCol)
	}
	fn, ok := g.funcs[ident.Name]
	if !ok {
		report.Raise("codegen", "unknown function: "+ident.Name, call.Span().Line, call.Span().StartCol)
	}
	if len(fn.Params) != len(args) {
		report.Raise("codegen", "incorrect number of arguments for function "+ident.Name, call.Span().Line, call.Span().StartCol)
	}

	return g.curBlock.NewCall(fn, args...)
}
