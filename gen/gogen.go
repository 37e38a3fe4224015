package gen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kenshaw/snaker"
	"golang.org/x/tools/imports"

	"github.com/tdlgen/tdlgen/gen/genutil"
	"github.com/tdlgen/tdlgen/tdl"
)

func init() {
	Register("go", func() Backend {
		return &GoBackend{}
	})
}

// goFile is the single artifact emitted by the Go backend.
const goFile = "types.go"

// goKeywords are the Go keywords that cannot be used as parameter names.
var goKeywords = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true,
	"for": true, "func": true, "go": true, "goto": true, "if": true,
	"import": true, "interface": true, "map": true, "package": true,
	"range": true, "return": true, "select": true, "struct": true,
	"switch": true, "type": true, "var": true,
}

// GoBackend generates Go source code for a TDL program: typedefs as named
// types, enums as typed constants, constants as one shared block, structs and
// exceptions as Go structs (exceptions additionally satisfy error), and
// services as interfaces.
type GoBackend struct{}

// OutDirBase satisfies Backend.
func (*GoBackend) OutDirBase() string {
	return "gen-go"
}

// ProgramName lower cases the program name for use as the Go package name.
func (*GoBackend) ProgramName(prog *tdl.Program) string {
	return genutil.Lowercase(prog.Name)
}

// ServiceName exports the service name as a Go identifier.
func (*GoBackend) ServiceName(svc *tdl.Service) string {
	return snaker.ForceCamelIdentifier(svc.Name)
}

// Init writes the file header.
func (b *GoBackend) Init(g *Generator) error {
	w := g.File(goFile)
	fmt.Fprintf(w, "// Code generated by tdlgen. DO NOT EDIT.\n\n")
	if g.Program().Doc != "" {
		fmt.Fprintf(w, "%s\n", genutil.FormatComment(g.Program().Doc, "Package "+g.ProgramName()+" "))
	}
	fmt.Fprintf(w, "package %s\n\n", g.ProgramName())
	return nil
}

// Close formats the emitted source, resolving imports.
func (b *GoBackend) Close(g *Generator) error {
	w := g.File(goFile)
	buf, err := imports.Process(goFile, w.Bytes(), nil)
	if err != nil {
		return fmt.Errorf("formatting %s: %w", goFile, err)
	}
	w.Reset()
	w.Write(buf)
	return nil
}

// Typedef satisfies Backend.
func (b *GoBackend) Typedef(g *Generator, td *tdl.Typedef) error {
	w := g.File(goFile)
	name := snaker.ForceCamelIdentifier(td.Name)
	typ, err := b.goType(g, td.Type)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s\n", genutil.FormatComment(td.Doc, name+" "))
	fmt.Fprintf(w, "type %s %s\n\n", name, typ)
	return nil
}

// Enum satisfies Backend.
func (b *GoBackend) Enum(g *Generator, en *tdl.Enum) error {
	w := g.File(goFile)
	name := snaker.ForceCamelIdentifier(en.Name)
	fmt.Fprintf(w, "%s\n", genutil.FormatComment(en.Doc, name+" "))
	fmt.Fprintf(w, "type %s int32\n\n", name)

	fmt.Fprintf(w, "// %s values.\n", name)
	fmt.Fprintf(w, "const (\n")
	g.IndentUp()
	for _, v := range en.Values {
		g.Windent(w)
		fmt.Fprintf(w, "%s %s = %d\n", goEnumValueName(name, v.Name), name, v.Value)
	}
	g.IndentDown()
	fmt.Fprintf(w, ")\n\n")

	// String satisfies fmt.Stringer for the emitted type.
	fmt.Fprintf(w, "// String satisfies fmt.Stringer.\n")
	fmt.Fprintf(w, "func (v %s) String() string {\n", name)
	g.IndentUp()
	g.Windent(w)
	fmt.Fprintf(w, "switch v {\n")
	for _, v := range en.Values {
		g.Windent(w)
		fmt.Fprintf(w, "case %s:\n", goEnumValueName(name, v.Name))
		g.IndentUp()
		g.Windent(w)
		fmt.Fprintf(w, "return %q\n", v.Name)
		g.IndentDown()
	}
	g.Windent(w)
	fmt.Fprintf(w, "}\n")
	g.Windent(w)
	fmt.Fprintf(w, "return fmt.Sprintf(\"%s(%%d)\", int32(v))\n", name)
	g.IndentDown()
	fmt.Fprintf(w, "}\n\n")
	return nil
}

// Consts overrides the constant batch policy, emitting all program constants
// into one shared block.
func (b *GoBackend) Consts(g *Generator, consts []*tdl.Const) error {
	if len(consts) == 0 {
		return nil
	}
	w := g.File(goFile)
	fmt.Fprintf(w, "// Program constants.\n")
	fmt.Fprintf(w, "var (\n")
	g.IndentUp()
	for _, c := range consts {
		typ, err := b.goType(g, c.Type)
		if err != nil {
			return err
		}
		val, err := b.goValue(g, c.Type, c.Value)
		if err != nil {
			return err
		}
		g.Windent(w)
		fmt.Fprintf(w, "%s %s = %s\n", snaker.ForceCamelIdentifier(genutil.Lowercase(c.Name)), typ, val)
	}
	g.IndentDown()
	fmt.Fprintf(w, ")\n\n")
	return nil
}

// Struct satisfies Backend.
func (b *GoBackend) Struct(g *Generator, st *tdl.Struct) error {
	w := g.File(goFile)
	name := snaker.ForceCamelIdentifier(st.Name)
	fmt.Fprintf(w, "%s\n", genutil.FormatComment(st.Doc, name+" "))
	fmt.Fprintf(w, "type %s struct {\n", name)
	g.IndentUp()
	for _, f := range st.Fields {
		typ, err := b.goType(g, f.Type)
		if err != nil {
			return err
		}
		tag := f.Name
		if f.Optional {
			typ = "*" + typ
			tag += ",omitempty"
		}
		g.Windent(w)
		fmt.Fprintf(w, "%s %s `json:%q`\n", snaker.ForceCamelIdentifier(f.Name), typ, tag)
	}
	g.IndentDown()
	fmt.Fprintf(w, "}\n\n")
	return nil
}

// Exception emits the exception as a struct that additionally satisfies
// error.
func (b *GoBackend) Exception(g *Generator, ex *tdl.Struct) error {
	if err := b.Struct(g, ex); err != nil {
		return err
	}
	w := g.File(goFile)
	name := snaker.ForceCamelIdentifier(ex.Name)
	fmt.Fprintf(w, "// Error satisfies error.\n")
	fmt.Fprintf(w, "func (e *%s) Error() string {\n", name)
	g.IndentUp()
	g.Windent(w)
	fmt.Fprintf(w, "return fmt.Sprintf(\"%s(%%+v)\", *e)\n", name)
	g.IndentDown()
	fmt.Fprintf(w, "}\n\n")
	return nil
}

// Service satisfies Backend, emitting the service as an interface.
func (b *GoBackend) Service(g *Generator, svc *tdl.Service) error {
	w := g.File(goFile)
	name := g.ServiceName()
	fmt.Fprintf(w, "%s\n", genutil.FormatComment(svc.Doc, name+" "))
	fmt.Fprintf(w, "type %s interface {\n", name)
	g.IndentUp()
	if svc.Extends != "" {
		g.Windent(w)
		fmt.Fprintf(w, "%s\n\n", snaker.ForceCamelIdentifier(svc.Extends))
	}
	for _, fn := range svc.Functions {
		sig, err := b.goSignature(g, fn)
		if err != nil {
			return err
		}
		g.Windent(w)
		fmt.Fprintf(w, "%s\n", sig)
	}
	g.IndentDown()
	fmt.Fprintf(w, "}\n\n")
	return nil
}

// goSignature builds the Go method signature for a service function.
func (b *GoBackend) goSignature(g *Generator, fn *tdl.Function) (string, error) {
	params := []string{"ctx context.Context"}
	for _, p := range fn.Params {
		typ, err := b.goType(g, p.Type)
		if err != nil {
			return "", err
		}
		n := genutil.Decapitalize(genutil.Camelcase(p.Name))
		if goKeywords[n] {
			// collides with a Go keyword, allocate a fresh name
			n = g.Tmp("p")
		}
		params = append(params, n+" "+typ)
	}
	ret := "error"
	if fn.Returns != nil {
		typ, err := b.goType(g, fn.Returns)
		if err != nil {
			return "", err
		}
		tt, err := g.TrueType(fn.Returns)
		if err != nil {
			return "", err
		}
		if tt.Kind == tdl.KindNamed && g.Program().Enum(tt.Name) == nil {
			// struct return, emit as pointer
			typ = "*" + typ
		}
		ret = "(" + typ + ", error)"
	}
	name := snaker.ForceCamelIdentifier(fn.Name)
	return name + "(" + strings.Join(params, ", ") + ") " + ret, nil
}

// goType maps a TDL type to its Go representation.
func (b *GoBackend) goType(g *Generator, t *tdl.Type) (string, error) {
	switch t.Kind {
	case tdl.KindBool:
		return "bool", nil
	case tdl.KindByte:
		return "int8", nil
	case tdl.KindI16:
		return "int16", nil
	case tdl.KindI32:
		return "int32", nil
	case tdl.KindI64:
		return "int64", nil
	case tdl.KindDouble:
		return "float64", nil
	case tdl.KindString:
		return "string", nil
	case tdl.KindBinary:
		return "[]byte", nil
	case tdl.KindList:
		elem, err := b.goType(g, t.Elem)
		if err != nil {
			return "", err
		}
		return "[]" + elem, nil
	case tdl.KindSet:
		elem, err := b.goType(g, t.Elem)
		if err != nil {
			return "", err
		}
		return "map[" + elem + "]struct{}", nil
	case tdl.KindMap:
		key, err := b.goType(g, t.Key)
		if err != nil {
			return "", err
		}
		value, err := b.goType(g, t.Value)
		if err != nil {
			return "", err
		}
		return "map[" + key + "]" + value, nil
	case tdl.KindNamed:
		return snaker.ForceCamelIdentifier(t.Name), nil
	}
	return "", fmt.Errorf("unsupported type %s", t)
}

// goValue renders a constant value literal as Go source.
func (b *GoBackend) goValue(g *Generator, typ *tdl.Type, v *tdl.ConstValue) (string, error) {
	switch v.Kind {
	case tdl.ConstInt:
		return strconv.FormatInt(v.Int, 10), nil
	case tdl.ConstDouble:
		return strconv.FormatFloat(v.Double, 'g', -1, 64), nil
	case tdl.ConstBool:
		return strconv.FormatBool(v.Bool), nil
	case tdl.ConstString:
		return `"` + Escape(v.Str) + `"`, nil
	case tdl.ConstIdent:
		return goIdentValue(v.Ident), nil
	case tdl.ConstList:
		tt, err := g.TrueType(typ)
		if err != nil {
			return "", err
		}
		if tt.Kind != tdl.KindList {
			return "", fmt.Errorf("list value for non-list type %s", typ)
		}
		elem, err := b.goType(g, tt.Elem)
		if err != nil {
			return "", err
		}
		var elems []string
		for _, e := range v.List {
			s, err := b.goValue(g, tt.Elem, e)
			if err != nil {
				return "", err
			}
			elems = append(elems, s)
		}
		return "[]" + elem + "{" + strings.Join(elems, ", ") + "}", nil
	case tdl.ConstMap:
		tt, err := g.TrueType(typ)
		if err != nil {
			return "", err
		}
		if tt.Kind != tdl.KindMap {
			return "", fmt.Errorf("map value for non-map type %s", typ)
		}
		key, err := b.goType(g, tt.Key)
		if err != nil {
			return "", err
		}
		value, err := b.goType(g, tt.Value)
		if err != nil {
			return "", err
		}
		var entries []string
		for _, e := range v.Map {
			ks, err := b.goValue(g, tt.Key, e.Key)
			if err != nil {
				return "", err
			}
			vs, err := b.goValue(g, tt.Value, e.Value)
			if err != nil {
				return "", err
			}
			entries = append(entries, ks+": "+vs)
		}
		return "map[" + key + "]" + value + "{" + strings.Join(entries, ", ") + "}", nil
	}
	return "", fmt.Errorf("unsupported value kind %s", v.Kind)
}

// goIdentValue renders an identifier constant reference (either another const
// or a dotted enum member) as the emitted Go name.
func goIdentValue(ident string) string {
	if i := strings.IndexByte(ident, '.'); i != -1 {
		enum := snaker.ForceCamelIdentifier(ident[:i])
		return goEnumValueName(enum, ident[i+1:])
	}
	return snaker.ForceCamelIdentifier(genutil.Lowercase(ident))
}

// goEnumValueName builds the emitted name for an enum member.
func goEnumValueName(enum, member string) string {
	return enum + genutil.Capitalize(genutil.Camelcase(genutil.Lowercase(member)))
}
