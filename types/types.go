// Package types defines the closed type set the checker and code generator
// operate over.  Types are compared by name equality; there is no
// subtyping or coercion.
package types

// Type is a named type tag drawn from the closed set.
type Type string

const (
	I32    Type = "i32"
	F64    Type = "f64"
	Bool   Type = "bool"
	String Type = "string"
	Void   Type = "void"
	// Unknown marks an expression whose type could not be determined (e.g.
	// an identifier with no binding); it is not a real language type and
	// never appears in generated code.
	Unknown Type = ""
)

// Valid reports whether name names one of the five closed types (or the
// empty string, meaning void/unannotated).
func Valid(name string) bool {
	switch Type(name) {
	case I32, F64, Bool, String, Void, Unknown:
		return true
	default:
		return false
	}
}

// SameTuple reports whether two parameter-type tuples are identical,
// element-for-element.
func SameTuple(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
