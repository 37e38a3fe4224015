package gen

import (
	"fmt"
	"io"
	"strings"

	"github.com/tdlgen/tdlgen/tdl"
)

func init() {
	Register("md", func() Backend {
		return &DocBackend{}
	})
}

// DocBackend generates a Markdown reference for a TDL program. It relies on
// the default dispatch behavior where possible: constants are visited one at
// a time and exceptions are documented through the Struct hook.
type DocBackend struct{}

// OutDirBase satisfies Backend.
func (*DocBackend) OutDirBase() string {
	return "gen-md"
}

// Init writes the document header.
func (b *DocBackend) Init(g *Generator) error {
	w := g.File(g.ProgramName() + ".md")
	fmt.Fprintf(w, "# %s\n\n", g.ProgramName())
	if v := g.Program().Version; v != nil {
		fmt.Fprintf(w, "Protocol version %d.%d.\n\n", v.Major, v.Minor)
	}
	Docstring(w, "", "> ", g.Program().Doc, "")
	fmt.Fprintf(w, "\n")
	return nil
}

// Typedef satisfies Backend.
func (b *DocBackend) Typedef(g *Generator, td *tdl.Typedef) error {
	w := g.File(g.ProgramName() + ".md")
	fmt.Fprintf(w, "## typedef %s\n\n", td.Name)
	blockquote(w, td.Doc)
	tt, err := g.TrueType(td.Type)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Alias for `%s`", td.Type)
	if tt.String() != td.Type.String() {
		fmt.Fprintf(w, " (resolves to `%s`)", tt)
	}
	fmt.Fprintf(w, ".\n\n")
	return nil
}

// Enum satisfies Backend.
func (b *DocBackend) Enum(g *Generator, en *tdl.Enum) error {
	w := g.File(g.ProgramName() + ".md")
	fmt.Fprintf(w, "## enum %s\n\n", en.Name)
	blockquote(w, en.Doc)
	fmt.Fprintf(w, "| name | value |\n|---|---|\n")
	for _, v := range en.Values {
		fmt.Fprintf(w, "| `%s` | %d |\n", v.Name, v.Value)
	}
	fmt.Fprintf(w, "\n")
	return nil
}

// Const documents a single constant; the generator's default batch loop
// invokes this once per declared constant.
func (b *DocBackend) Const(g *Generator, c *tdl.Const) error {
	w := g.File(g.ProgramName() + ".md")
	fmt.Fprintf(w, "## const %s\n\n", c.Name)
	blockquote(w, c.Doc)
	fmt.Fprintf(w, "`%s`, value `%s`.\n\n", c.Type, docValue(c.Value))
	return nil
}

// Struct satisfies Backend, documenting both structs and exceptions (the
// generator forwards exceptions here).
func (b *DocBackend) Struct(g *Generator, st *tdl.Struct) error {
	w := g.File(g.ProgramName() + ".md")
	kind := "struct"
	if st.IsException {
		kind = "exception"
	}
	fmt.Fprintf(w, "## %s %s\n\n", kind, st.Name)
	blockquote(w, st.Doc)
	fmt.Fprintf(w, "| id | field | type | |\n|---|---|---|---|\n")
	for _, f := range st.Fields {
		flag := ""
		if f.Optional {
			flag = "optional"
		}
		fmt.Fprintf(w, "| %d | `%s` | `%s` | %s |\n", f.ID, f.Name, f.Type, flag)
	}
	fmt.Fprintf(w, "\n")
	return nil
}

// Service satisfies Backend.
func (b *DocBackend) Service(g *Generator, svc *tdl.Service) error {
	w := g.File(g.ProgramName() + ".md")
	fmt.Fprintf(w, "## service %s\n\n", g.ServiceName())
	if svc.Extends != "" {
		fmt.Fprintf(w, "Extends `%s`.\n\n", svc.Extends)
	}
	blockquote(w, svc.Doc)
	for _, fn := range svc.Functions {
		fmt.Fprintf(w, "- `%s`\n", docSignature(fn))
	}
	fmt.Fprintf(w, "\n")
	return nil
}

// blockquote writes a declaration comment as a Markdown blockquote.
func blockquote(w io.Writer, s string) {
	if s == "" {
		return
	}
	Docstring(w, "", "> ", s, "\n")
}

// docSignature renders a service function in TDL notation.
func docSignature(fn *tdl.Function) string {
	var b strings.Builder
	if fn.Oneway {
		b.WriteString("oneway ")
	}
	if fn.Returns != nil {
		b.WriteString(fn.Returns.String())
	} else {
		b.WriteString("void")
	}
	b.WriteString(" " + fn.Name + "(")
	for i, p := range fn.Params {
		if i != 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%d: %s %s", p.ID, p.Type, p.Name)
	}
	b.WriteString(")")
	if len(fn.Throws) != 0 {
		b.WriteString(" throws (")
		for i, t := range fn.Throws {
			if i != 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%d: %s %s", t.ID, t.Type, t.Name)
		}
		b.WriteString(")")
	}
	return b.String()
}

// docValue renders a constant value literal in TDL notation.
func docValue(v *tdl.ConstValue) string {
	switch v.Kind {
	case tdl.ConstInt:
		return fmt.Sprintf("%d", v.Int)
	case tdl.ConstDouble:
		return fmt.Sprintf("%g", v.Double)
	case tdl.ConstBool:
		return fmt.Sprintf("%t", v.Bool)
	case tdl.ConstString:
		return `"` + Escape(v.Str) + `"`
	case tdl.ConstIdent:
		return v.Ident
	case tdl.ConstList:
		var elems []string
		for _, e := range v.List {
			elems = append(elems, docValue(e))
		}
		return "[" + strings.Join(elems, ", ") + "]"
	case tdl.ConstMap:
		var entries []string
		for _, e := range v.Map {
			entries = append(entries, docValue(e.Key)+": "+docValue(e.Value))
		}
		return "{" + strings.Join(entries, ", ") + "}"
	}
	return ""
}
