package sym

import (
	"fmt"
	"sort"
	"strings"

	"pecco/types"
)

// DumpFlat renders the flat, alphabetized function/operator listing half of
// `--dump-symbols`.
func DumpFlat(table *SymbolTable, hidePrelude bool) string {
	var b strings.Builder

	var names []string
	for name := range table.Functions {
		names = append(names, name)
	}
	sort.Strings(names)

	b.WriteString("functions:\n")
	for _, name := range names {
		for _, sig := range table.Functions[name] {
			if hidePrelude && sig.Origin == Prelude {
				continue
			}
			fmt.Fprintf(&b, "  %s(%s): %s%s\n", sig.Name, joinTypes(sig.ParamTypes), sig.ReturnType, originTag(sig.Origin))
		}
	}

	var keys []OperatorKey
	for key := range table.Operators {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Symbol != keys[j].Symbol {
			return keys[i].Symbol < keys[j].Symbol
		}
		return keys[i].Position < keys[j].Position
	})

	b.WriteString("operators:\n")
	for _, key := range keys {
		for _, info := range table.Operators[key] {
			if hidePrelude && info.Origin == Prelude {
				continue
			}
			fmt.Fprintf(&b, "  %s %s(%s): %s [%s]%s\n",
				key.Position, key.Symbol, joinTypes(info.ParamTypes), info.ReturnType, info.MangledName, originTag(info.Origin))
		}
	}

	return b.String()
}

// DumpHierarchy renders the indented scope-tree half of `--dump-symbols`.
func DumpHierarchy(table *SymbolTable, hidePrelude bool) string {
	var b strings.Builder
	dumpScope(&b, table.Root, 0, hidePrelude)
	return b.String()
}

func dumpScope(b *strings.Builder, s *Scope, depth int, hidePrelude bool) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(b, "%s%s\n", indent, s.Desc)

	var names []string
	for name := range s.Vars {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v := s.Vars[name]
		if hidePrelude && v.Origin == Prelude {
			continue
		}
		fmt.Fprintf(b, "%s  %s: %s%s\n", indent, v.Name, v.Type, originTag(v.Origin))
	}

	for _, child := range s.Children {
		dumpScope(b, child, depth+1, hidePrelude)
	}
}

func originTag(o Origin) string {
	if o == Prelude {
		return " (prelude)"
	}
	return ""
}

func joinTypes(ts []types.Type) string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
