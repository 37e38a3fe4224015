// Package fixup normalizes a parsed TDL declaration tree before generation.
//
// The generator core assumes a well formed tree: enum members carry concrete
// values, typedef chains terminate, constant references resolve, and field
// ids are unique. FixProgram establishes those invariants in place, wrapped
// up in one high-level func so the driver runs it between parse and
// generation.
package fixup

import (
	"fmt"

	"github.com/tdlgen/tdlgen/tdl"
)

// FixProgram normalizes prog in place:
//
//   - enum members without explicit values get the previous value plus one,
//     starting at zero
//   - typedef chains are checked for cycles and dangling references
//   - named types in declarations are checked against the declared names
//   - constant identifier references are resolved against declared constants
//     and enum members
//   - field ids are checked for uniqueness per struct and per function
func FixProgram(prog *tdl.Program) error {
	fixEnums(prog)
	if err := checkTypedefs(prog); err != nil {
		return err
	}
	if err := checkTypes(prog); err != nil {
		return err
	}
	if err := checkConsts(prog); err != nil {
		return err
	}
	return checkFields(prog)
}

// fixEnums assigns implicit enum member values.
func fixEnums(prog *tdl.Program) {
	for _, en := range prog.Enums {
		next := 0
		for _, v := range en.Values {
			if v.HasValue {
				next = v.Value
			} else {
				v.Value = next
			}
			next++
		}
	}
}

// checkTypedefs verifies every typedef chain reaches a terminal type.
func checkTypedefs(prog *tdl.Program) error {
	for _, td := range prog.Typedefs {
		seen := map[string]bool{td.Name: true}
		t := td.Type
		for t.Kind == tdl.KindNamed {
			next := prog.Typedef(t.Name)
			if next == nil {
				break
			}
			if seen[t.Name] {
				return fmt.Errorf("typedef %s: cycle through %q", td.Name, t.Name)
			}
			seen[t.Name] = true
			t = next.Type
		}
	}
	return nil
}

// checkTypes verifies every named type reference in the tree resolves to a
// declaration.
func checkTypes(prog *tdl.Program) error {
	check := func(where string, t *tdl.Type) error {
		for _, n := range namedRefs(t, nil) {
			if !declared(prog, n) {
				return fmt.Errorf("%s: undeclared type %q", where, n)
			}
		}
		return nil
	}
	for _, td := range prog.Typedefs {
		if err := check("typedef "+td.Name, td.Type); err != nil {
			return err
		}
	}
	for _, c := range prog.Consts {
		if err := check("const "+c.Name, c.Type); err != nil {
			return err
		}
	}
	for _, st := range append(append([]*tdl.Struct{}, prog.Structs...), prog.Exceptions...) {
		for _, f := range st.Fields {
			if err := check(st.Name+"."+f.Name, f.Type); err != nil {
				return err
			}
		}
	}
	for _, svc := range prog.Services {
		for _, fn := range svc.Functions {
			where := svc.Name + "." + fn.Name
			if fn.Returns != nil {
				if err := check(where, fn.Returns); err != nil {
					return err
				}
			}
			for _, f := range append(append([]*tdl.Field{}, fn.Params...), fn.Throws...) {
				if err := check(where, f.Type); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// namedRefs collects the named type references inside t.
func namedRefs(t *tdl.Type, refs []string) []string {
	if t == nil {
		return refs
	}
	if t.Kind == tdl.KindNamed {
		refs = append(refs, t.Name)
	}
	refs = namedRefs(t.Elem, refs)
	refs = namedRefs(t.Key, refs)
	return namedRefs(t.Value, refs)
}

// declared reports whether name is declared in any category of prog.
func declared(prog *tdl.Program, name string) bool {
	if prog.Typedef(name) != nil || prog.Enum(name) != nil {
		return true
	}
	for _, st := range prog.Structs {
		if st.Name == name {
			return true
		}
	}
	for _, ex := range prog.Exceptions {
		if ex.Name == name {
			return true
		}
	}
	return false
}

// checkConsts verifies identifier references inside constant values resolve
// to a previously declared constant or an enum member.
func checkConsts(prog *tdl.Program) error {
	for i, c := range prog.Consts {
		if err := checkValue(prog, prog.Consts[:i], c.Name, c.Value); err != nil {
			return err
		}
	}
	return nil
}

// checkValue walks a constant value checking identifier references. Only
// constants declared before the referencing one are in scope.
func checkValue(prog *tdl.Program, scope []*tdl.Const, name string, v *tdl.ConstValue) error {
	switch v.Kind {
	case tdl.ConstIdent:
		if en, member, ok := splitEnumRef(v.Ident); ok {
			e := prog.Enum(en)
			if e == nil {
				return fmt.Errorf("const %s: undeclared enum %q", name, en)
			}
			for _, ev := range e.Values {
				if ev.Name == member {
					return nil
				}
			}
			return fmt.Errorf("const %s: enum %s has no member %q", name, en, member)
		}
		for _, c := range scope {
			if c.Name == v.Ident {
				return nil
			}
		}
		return fmt.Errorf("const %s: undeclared reference %q", name, v.Ident)
	case tdl.ConstList:
		for _, e := range v.List {
			if err := checkValue(prog, scope, name, e); err != nil {
				return err
			}
		}
	case tdl.ConstMap:
		for _, e := range v.Map {
			if err := checkValue(prog, scope, name, e.Key); err != nil {
				return err
			}
			if err := checkValue(prog, scope, name, e.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

// splitEnumRef splits a dotted "Enum.MEMBER" reference.
func splitEnumRef(ident string) (string, string, bool) {
	for i := 0; i < len(ident); i++ {
		if ident[i] == '.' {
			return ident[:i], ident[i+1:], true
		}
	}
	return "", "", false
}

// checkFields verifies field id uniqueness per struct and per function.
func checkFields(prog *tdl.Program) error {
	for _, st := range append(append([]*tdl.Struct{}, prog.Structs...), prog.Exceptions...) {
		if err := uniqueIDs(st.Name, st.Fields); err != nil {
			return err
		}
	}
	for _, svc := range prog.Services {
		for _, fn := range svc.Functions {
			if err := uniqueIDs(svc.Name+"."+fn.Name, fn.Params); err != nil {
				return err
			}
			if err := uniqueIDs(svc.Name+"."+fn.Name+" throws", fn.Throws); err != nil {
				return err
			}
		}
	}
	return nil
}

// uniqueIDs checks one field list for duplicate ids.
func uniqueIDs(where string, fields []*tdl.Field) error {
	seen := make(map[int]string, len(fields))
	for _, f := range fields {
		if prev, ok := seen[f.ID]; ok {
			return fmt.Errorf("%s: field id %d reused by %q (first used by %q)", where, f.ID, f.Name, prev)
		}
		seen[f.ID] = f.Name
	}
	return nil
}
