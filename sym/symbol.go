// Package sym implements the hierarchical scoped symbol table: scopes,
// variable bindings, function/operator signatures, and the AST-walking
// builder that populates them.
package sym

import (
	"pecco/ast"
	"pecco/types"
)

// Origin distinguishes prelude-seeded symbols from user-declared ones.
type Origin int

const (
	User Origin = iota
	Prelude
)

// ScopeKind classifies a Scope.
type ScopeKind int

const (
	Global ScopeKind = iota
	Function
	BlockScope
)

// VariableBinding is one `let`-bound or parameter-bound name.
type VariableBinding struct {
	Name   string
	Type   types.Type
	Line   int
	Col    int
	Origin Origin
}

// FunctionSignature is one overload of a declared function.
type FunctionSignature struct {
	Name       string
	ParamTypes []types.Type
	ReturnType types.Type
	DeclOnly   bool
	Origin     Origin
}

// OperatorInfo is one overload of a declared operator.
type OperatorInfo struct {
	Symbol     string
	Position   ast.Position
	Precedence int
	Assoc      ast.Assoc
	ParamTypes []types.Type
	ReturnType types.Type
	Origin     Origin
	// MangledName is OP$T1$T2..., computed once at insertion time.
	MangledName string
	DeclOnly    bool
}

// OperatorKey is the (symbol, position) lookup key; overloads sharing a key
// are kept in declaration order.
type OperatorKey struct {
	Symbol   string
	Position ast.Position
}

// Scope is one node of the hierarchical scope tree.
type Scope struct {
	Kind     ScopeKind
	Parent   *Scope
	Desc     string
	Children []*Scope
	Vars     map[string]*VariableBinding
}

func newScope(kind ScopeKind, parent *Scope, desc string) *Scope {
	s := &Scope{Kind: kind, Parent: parent, Desc: desc, Vars: map[string]*VariableBinding{}}
	if parent != nil {
		parent.Children = append(parent.Children, s)
	}
	return s
}

// HasVariableLocal reports whether name is bound directly in this scope
// (not an ancestor).
func (s *Scope) HasVariableLocal(name string) bool {
	_, ok := s.Vars[name]
	return ok
}

// Lookup finds the innermost binding of name, searching this scope and its
// ancestors.
func (s *Scope) Lookup(name string) (*VariableBinding, bool) {
	for cur := s; cur != nil; cur = cur.Parent {
		if b, ok := cur.Vars[name]; ok {
			return b, true
		}
	}
	return nil, false
}

// SymbolTable is the global component of the hierarchical table: function
// and operator overload tables, plus the root of the scope tree.
type SymbolTable struct {
	Functions map[string][]*FunctionSignature
	Operators map[OperatorKey][]*OperatorInfo
	Root      *Scope
}

// NewSymbolTable creates an empty table with a fresh global scope.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		Functions: map[string][]*FunctionSignature{},
		Operators: map[OperatorKey][]*OperatorInfo{},
		Root:      newScope(Global, nil, "global"),
	}
}

// AddFunction appends a new overload; the symbol-table builder is
// responsible for rejecting (or permitting) duplicate-signature overloads
// before calling this.
func (t *SymbolTable) AddFunction(sig *FunctionSignature) {
	t.Functions[sig.Name] = append(t.Functions[sig.Name], sig)
}

// FindFunctionExact returns the overload whose parameter types exactly
// match, if any.
func (t *SymbolTable) FindFunctionExact(name string, paramTypes []types.Type) (*FunctionSignature, bool) {
	for _, sig := range t.Functions[name] {
		if types.SameTuple(sig.ParamTypes, paramTypes) {
			return sig, true
		}
	}
	return nil, false
}

// AddOperator appends a new overload under (symbol, position).
func (t *SymbolTable) AddOperator(info *OperatorInfo) {
	key := OperatorKey{Symbol: info.Symbol, Position: info.Position}
	t.Operators[key] = append(t.Operators[key], info)
}

// FindOperatorExact returns the overload at (symbol, position) whose
// parameter types exactly match, if any.
func (t *SymbolTable) FindOperatorExact(symbol string, pos ast.Position, paramTypes []types.Type) (*OperatorInfo, bool) {
	for _, info := range t.Operators[OperatorKey{Symbol: symbol, Position: pos}] {
		if types.SameTuple(info.ParamTypes, paramTypes) {
			return info, true
		}
	}
	return nil, false
}

// OperatorOverloads returns every overload declared at (symbol, position).
func (t *SymbolTable) OperatorOverloads(symbol string, pos ast.Position) []*OperatorInfo {
	return t.Operators[OperatorKey{Symbol: symbol, Position: pos}]
}

// HasAnyOperator reports whether any overload exists at (symbol, position),
// used by the resolver to classify an operator token as prefix/infix/
// postfix without needing type information yet.
func (t *SymbolTable) HasAnyOperator(symbol string, pos ast.Position) bool {
	return len(t.Operators[OperatorKey{Symbol: symbol, Position: pos}]) > 0
}

// OperatorPrecAssoc returns the precedence and associativity declared for
// (symbol, infix), taken from its first overload.  Precedence and
// associativity are structural properties of the declaration the resolver
// needs before any type information is available; every overload of a
// given (symbol, position) is expected to agree on them.
func (t *SymbolTable) OperatorPrecAssoc(symbol string, pos ast.Position) (int, ast.Assoc, bool) {
	overloads := t.Operators[OperatorKey{Symbol: symbol, Position: pos}]
	if len(overloads) == 0 {
		return 0, ast.AssocNone, false
	}
	return overloads[0].Precedence, overloads[0].Assoc, true
}

// Mangle computes the deterministic name-mangling scheme for an overloaded
// operator: SYMBOL$PARAMTYPE1$PARAMTYPE2...  There is no return-type
// component.
func Mangle(symbol string, paramTypes []types.Type) string {
	out := symbol
	for _, t := range paramTypes {
		out += "$" + string(t)
	}
	return out
}
