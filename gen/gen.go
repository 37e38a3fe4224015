// Package gen defines the generation contract implemented by tdlgen target
// language backends, and the generator that drives one full pass over a
// parsed declaration tree.
package gen

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/tdlgen/tdlgen/tdl"
)

// Backend is the mandatory part of the generation contract. Every target
// language backend implements these hooks; the optional hooks below are
// discovered by type assertion and default to the documented behavior when
// absent.
type Backend interface {
	// OutDirBase returns the output directory discriminator for the target
	// (eg, "gen-go").
	OutDirBase() string

	// Typedef emits a typedef declaration.
	Typedef(g *Generator, td *tdl.Typedef) error

	// Enum emits an enum declaration.
	Enum(g *Generator, en *tdl.Enum) error

	// Struct emits a struct declaration.
	Struct(g *Generator, st *tdl.Struct) error

	// Service emits a service declaration.
	Service(g *Generator, svc *tdl.Service) error
}

// Initializer is implemented by backends needing setup before the first
// declaration is visited.
type Initializer interface {
	Init(g *Generator) error
}

// Closer is implemented by backends needing teardown after the last
// declaration is visited.
type Closer interface {
	Close(g *Generator) error
}

// ConstBackend is implemented by backends emitting constants one at a time.
// Without a ConstsBackend override, the generator iterates the constant
// collection invoking this hook per item.
type ConstBackend interface {
	Const(g *Generator, c *tdl.Const) error
}

// ConstsBackend is implemented by backends overriding the constant batch
// policy (eg, emitting all constants into one shared initialization block).
// When present it replaces the per-item iteration entirely.
type ConstsBackend interface {
	Consts(g *Generator, consts []*tdl.Const) error
}

// ExceptionBackend is implemented by backends emitting exceptions differently
// from plain structs. Without it, exceptions are forwarded to the Struct hook.
type ExceptionBackend interface {
	Exception(g *Generator, ex *tdl.Struct) error
}

// ProgramNamer is implemented by backends overriding the program name used in
// emitted code.
type ProgramNamer interface {
	ProgramName(prog *tdl.Program) string
}

// ServiceNamer is implemented by backends overriding the service name used in
// emitted code.
type ServiceNamer interface {
	ServiceName(svc *tdl.Service) string
}

// OutDirer is implemented by backends needing a different output directory
// layout than the default out path + base convention.
type OutDirer interface {
	OutDir() string
}

// Generator drives one full generation pass for one (program, backend) pair.
// It owns the per-pass mutable state (indent level, temporary name counter,
// artifact buffers) and is not safe for concurrent use; run concurrent target
// generations with one Generator per target.
type Generator struct {
	prog    *tdl.Program
	backend Backend

	programName string
	serviceName string

	indent int
	tmp    int

	files map[string]*bytes.Buffer
}

// New creates a generator bound to the declaration tree prog and backend b.
// All pass state starts zeroed; generators are single use.
func New(prog *tdl.Program, b Backend) *Generator {
	g := &Generator{
		prog:        prog,
		backend:     b,
		programName: prog.Name,
		files:       make(map[string]*bytes.Buffer),
	}
	if pn, ok := b.(ProgramNamer); ok {
		g.programName = pn.ProgramName(prog)
	}
	return g
}

// Run performs the generation pass, visiting declaration categories in fixed
// order: typedefs, enums, constants (as one batch), structs, exceptions, then
// services. Typedefs and enums come first so targets requiring aliases before
// derived types compile; exceptions follow structs since an exception is a
// struct with exception semantics. Source order within a category is
// preserved. The first hook error aborts the pass; partial output is left in
// place.
func (g *Generator) Run() error {
	if in, ok := g.backend.(Initializer); ok {
		if err := in.Init(g); err != nil {
			return err
		}
	}
	for _, td := range g.prog.Typedefs {
		if err := g.backend.Typedef(g, td); err != nil {
			return err
		}
	}
	for _, en := range g.prog.Enums {
		if err := g.backend.Enum(g, en); err != nil {
			return err
		}
	}
	// constants are a single batch call, even when empty
	if err := g.consts(g.prog.Consts); err != nil {
		return err
	}
	for _, st := range g.prog.Structs {
		if err := g.backend.Struct(g, st); err != nil {
			return err
		}
	}
	for _, ex := range g.prog.Exceptions {
		if err := g.exception(ex); err != nil {
			return err
		}
	}
	for _, svc := range g.prog.Services {
		g.serviceName = svc.Name
		if sn, ok := g.backend.(ServiceNamer); ok {
			g.serviceName = sn.ServiceName(svc)
		}
		if err := g.backend.Service(g, svc); err != nil {
			return err
		}
	}
	if cl, ok := g.backend.(Closer); ok {
		if err := cl.Close(g); err != nil {
			return err
		}
	}
	return nil
}

// consts dispatches the constant batch, preferring a backend's batch override
// and otherwise iterating with the per-item hook.
func (g *Generator) consts(consts []*tdl.Const) error {
	if cb, ok := g.backend.(ConstsBackend); ok {
		return cb.Consts(g, consts)
	}
	cb, ok := g.backend.(ConstBackend)
	if !ok {
		return nil
	}
	for _, c := range consts {
		if err := cb.Const(g, c); err != nil {
			return err
		}
	}
	return nil
}

// exception dispatches one exception, forwarding to the Struct hook when the
// backend has no distinct exception emission.
func (g *Generator) exception(ex *tdl.Struct) error {
	if eb, ok := g.backend.(ExceptionBackend); ok {
		return eb.Exception(g, ex)
	}
	return g.backend.Struct(g, ex)
}

// Program returns the declaration tree bound to the generator.
func (g *Generator) Program() *tdl.Program {
	return g.prog
}

// ProgramName returns the program name, as overridden by the backend's naming
// policy.
func (g *Generator) ProgramName() string {
	return g.programName
}

// ServiceName returns the name of the service currently being visited, as
// overridden by the backend's naming policy.
func (g *Generator) ServiceName() string {
	return g.serviceName
}

// OutDir returns the output directory for generated artifacts: the program's
// declared output root joined with the backend's base discriminator, unless
// the backend overrides the layout.
func (g *Generator) OutDir() string {
	if od, ok := g.backend.(OutDirer); ok {
		return od.OutDir()
	}
	return g.prog.OutPath + "/" + g.backend.OutDirBase() + "/"
}

// Tmp returns a unique temporary name built from prefix (eg, "tmp0"). The
// counter is instance wide, not per prefix, so names never repeat within a
// pass regardless of prefix.
func (g *Generator) Tmp(prefix string) string {
	n := fmt.Sprintf("%s%d", prefix, g.tmp)
	g.tmp++
	return n
}

// IndentUp increases the indent level.
func (g *Generator) IndentUp() {
	g.indent++
}

// IndentDown decreases the indent level. Calls must balance IndentUp;
// underflow is a contract violation and panics.
func (g *Generator) IndentDown() {
	g.indent--
	if g.indent < 0 {
		panic("gen: unbalanced indent")
	}
}

// Indent returns the current indentation prefix, two spaces per level.
func (g *Generator) Indent() string {
	return strings.Repeat("  ", g.indent)
}

// Windent writes the current indentation prefix to w.
func (g *Generator) Windent(w io.Writer) {
	io.WriteString(w, g.Indent())
}

// TrueType follows typedef links until a non-typedef type is reached and
// returns that terminal type. Cyclic chains are reported as an error rather
// than looping.
func (g *Generator) TrueType(t *tdl.Type) (*tdl.Type, error) {
	var seen map[string]bool
	for t.Kind == tdl.KindNamed {
		td := g.prog.Typedef(t.Name)
		if td == nil {
			// named struct, enum, or exception: terminal
			break
		}
		if seen[t.Name] {
			return nil, fmt.Errorf("typedef cycle through %q", t.Name)
		}
		if seen == nil {
			seen = make(map[string]bool)
		}
		seen[t.Name] = true
		t = td.Type
	}
	return t, nil
}

// File returns the output buffer for the named artifact, creating it when
// first requested.
func (g *Generator) File(name string) *bytes.Buffer {
	if b, ok := g.files[name]; ok {
		return b
	}
	b := new(bytes.Buffer)
	g.files[name] = b
	return b
}

// Files returns the emitted artifact buffers keyed by name.
func (g *Generator) Files() map[string]*bytes.Buffer {
	return g.files
}

// escapes maps the characters that break generated string literals to their
// escaped forms. The table is fixed for the life of the process.
var escapes = [256]string{
	'\n': `\n`,
	'\r': `\r`,
	'\t': `\t`,
	'"':  `\"`,
	'\\': `\\`,
}

// Escape escapes s for use inside a generated string literal, replacing each
// reserved character in a single left to right pass.
func Escape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if e := escapes[s[i]]; e != "" {
			b.WriteString(e)
		} else {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// Docstring writes a documentation comment block to w: the start delimiter,
// each line of contents prefixed with linePrefix, then the end delimiter.
// Empty contents still produces the delimiters.
func Docstring(w io.Writer, start, linePrefix, contents, end string) {
	io.WriteString(w, start)
	if contents != "" {
		for _, line := range strings.Split(contents, "\n") {
			fmt.Fprintf(w, "%s%s\n", linePrefix, line)
		}
	}
	io.WriteString(w, end)
}
