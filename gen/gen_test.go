package gen

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdlgen/tdlgen/tdl"
)

// callBackend records the hook invocations made by the generator.
type callBackend struct {
	calls  []string
	failOn string
}

func (b *callBackend) record(s string) error {
	b.calls = append(b.calls, s)
	if s == b.failOn {
		return fmt.Errorf("forced failure at %s", s)
	}
	return nil
}

func (b *callBackend) OutDirBase() string                          { return "gen-test" }
func (b *callBackend) Typedef(g *Generator, td *tdl.Typedef) error { return b.record("typedef " + td.Name) }
func (b *callBackend) Enum(g *Generator, en *tdl.Enum) error       { return b.record("enum " + en.Name) }
func (b *callBackend) Const(g *Generator, c *tdl.Const) error      { return b.record("const " + c.Name) }
func (b *callBackend) Struct(g *Generator, st *tdl.Struct) error   { return b.record("struct " + st.Name) }
func (b *callBackend) Service(g *Generator, svc *tdl.Service) error {
	return b.record("service " + g.ServiceName())
}

// lifecycleBackend adds Init/Close and a consts batch override.
type lifecycleBackend struct {
	callBackend
}

func (b *lifecycleBackend) Init(g *Generator) error  { return b.record("init") }
func (b *lifecycleBackend) Close(g *Generator) error { return b.record("close") }
func (b *lifecycleBackend) Consts(g *Generator, consts []*tdl.Const) error {
	return b.record(fmt.Sprintf("consts(%d)", len(consts)))
}

// exceptionBackend adds a distinct exception hook.
type exceptionBackend struct {
	callBackend
}

func (b *exceptionBackend) Exception(g *Generator, ex *tdl.Struct) error {
	return b.record("exception " + ex.Name)
}

// testProgram builds a tree with one declaration per category plus a second
// constant.
func testProgram() *tdl.Program {
	return &tdl.Program{
		Name:    "demo",
		OutPath: "out",
		Typedefs: []*tdl.Typedef{
			{Name: "UserID", Type: &tdl.Type{Kind: tdl.KindI32}},
		},
		Enums: []*tdl.Enum{
			{Name: "Status"},
		},
		Consts: []*tdl.Const{
			{Name: "A", Type: &tdl.Type{Kind: tdl.KindI32}, Value: &tdl.ConstValue{Kind: tdl.ConstInt, Int: 1}},
			{Name: "B", Type: &tdl.Type{Kind: tdl.KindI32}, Value: &tdl.ConstValue{Kind: tdl.ConstInt, Int: 2}},
		},
		Structs: []*tdl.Struct{
			{Name: "User"},
		},
		Exceptions: []*tdl.Struct{
			{Name: "NotFound", IsException: true},
		},
		Services: []*tdl.Service{
			{Name: "UserStore"},
		},
	}
}

func TestRunOrder(t *testing.T) {
	b := new(callBackend)
	require.NoError(t, New(testProgram(), b).Run())
	assert.Equal(t, []string{
		"typedef UserID",
		"enum Status",
		"const A",
		"const B",
		"struct User",
		"struct NotFound",
		"service UserStore",
	}, b.calls)
}

func TestRunLifecycleAndBatch(t *testing.T) {
	b := new(lifecycleBackend)
	require.NoError(t, New(testProgram(), b).Run())
	assert.Equal(t, []string{
		"init",
		"typedef UserID",
		"enum Status",
		"consts(2)",
		"struct User",
		"struct NotFound",
		"service UserStore",
	}, b.calls[:7])
	assert.Equal(t, "close", b.calls[len(b.calls)-1])
}

func TestRunEmptyProgram(t *testing.T) {
	// init, the consts batch, and close are unconditional bracket calls
	b := new(lifecycleBackend)
	require.NoError(t, New(&tdl.Program{Name: "empty"}, b).Run())
	assert.Equal(t, []string{"init", "consts(0)", "close"}, b.calls)
}

func TestRunExceptionHook(t *testing.T) {
	b := new(exceptionBackend)
	require.NoError(t, New(testProgram(), b).Run())
	assert.Contains(t, b.calls, "exception NotFound")
	assert.NotContains(t, b.calls, "struct NotFound")
}

func TestRunAbortsOnError(t *testing.T) {
	b := &callBackend{failOn: "struct User"}
	err := New(testProgram(), b).Run()
	require.Error(t, err)
	// nothing after the failing hook runs
	assert.Equal(t, "struct User", b.calls[len(b.calls)-1])
}

func TestOutDir(t *testing.T) {
	g := New(testProgram(), new(callBackend))
	assert.Equal(t, "out/gen-test/", g.OutDir())
}

func TestTmp(t *testing.T) {
	g := New(testProgram(), new(callBackend))
	assert.Equal(t, "x0", g.Tmp("x"))
	assert.Equal(t, "x1", g.Tmp("x"))
	// the counter is shared across prefixes
	assert.Equal(t, "y2", g.Tmp("y"))
}

func TestIndent(t *testing.T) {
	g := New(testProgram(), new(callBackend))
	assert.Equal(t, "", g.Indent())
	g.IndentUp()
	g.IndentUp()
	g.IndentDown()
	assert.Equal(t, "  ", g.Indent())
	var buf bytes.Buffer
	g.Windent(&buf)
	assert.Equal(t, "  ", buf.String())
	g.IndentDown()
	assert.Panics(t, func() { g.IndentDown() })
}

func TestEscape(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"a\nb\"c", `a\nb\"c`},
		{"tab\there", `tab\there`},
		{"back\\slash\r", `back\\slash\r`},
		{"", ""},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, Escape(test.in), "escape %q", test.in)
	}
}

func TestDocstring(t *testing.T) {
	var buf bytes.Buffer
	Docstring(&buf, "/**\n", " * ", "line one\nline two", " */\n")
	assert.Equal(t, "/**\n * line one\n * line two\n */\n", buf.String())

	// empty contents still produces the delimiters
	buf.Reset()
	Docstring(&buf, "<!--\n", "  ", "", "-->\n")
	assert.Equal(t, "<!--\n-->\n", buf.String())
}

func TestTrueType(t *testing.T) {
	prog := &tdl.Program{
		Name: "demo",
		Typedefs: []*tdl.Typedef{
			{Name: "A", Type: &tdl.Type{Kind: tdl.KindNamed, Name: "B"}},
			{Name: "B", Type: &tdl.Type{Kind: tdl.KindNamed, Name: "C"}},
			{Name: "C", Type: &tdl.Type{Kind: tdl.KindI64}},
		},
		Structs: []*tdl.Struct{{Name: "S"}},
	}
	g := New(prog, new(callBackend))

	tt, err := g.TrueType(&tdl.Type{Kind: tdl.KindNamed, Name: "A"})
	require.NoError(t, err)
	assert.Equal(t, tdl.KindI64, tt.Kind)

	// a named struct is terminal
	tt, err = g.TrueType(&tdl.Type{Kind: tdl.KindNamed, Name: "S"})
	require.NoError(t, err)
	assert.Equal(t, "S", tt.Name)

	// a non-typedef base type passes through
	tt, err = g.TrueType(&tdl.Type{Kind: tdl.KindString})
	require.NoError(t, err)
	assert.Equal(t, tdl.KindString, tt.Kind)
}

func TestTrueTypeCycle(t *testing.T) {
	prog := &tdl.Program{
		Name: "demo",
		Typedefs: []*tdl.Typedef{
			{Name: "A", Type: &tdl.Type{Kind: tdl.KindNamed, Name: "B"}},
			{Name: "B", Type: &tdl.Type{Kind: tdl.KindNamed, Name: "A"}},
		},
	}
	g := New(prog, new(callBackend))
	_, err := g.TrueType(&tdl.Type{Kind: tdl.KindNamed, Name: "A"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestProgramNameOverride(t *testing.T) {
	g := New(testProgram(), new(namerBackend))
	assert.Equal(t, "DEMO", g.ProgramName())
}

// namerBackend overrides both naming hooks.
type namerBackend struct {
	callBackend
}

func (b *namerBackend) ProgramName(prog *tdl.Program) string { return "DEMO" }
func (b *namerBackend) ServiceName(svc *tdl.Service) string  { return svc.Name + "Svc" }

func TestServiceNameOverride(t *testing.T) {
	b := new(namerBackend)
	require.NoError(t, New(testProgram(), b).Run())
	assert.Contains(t, b.calls, "service UserStoreSvc")
}

func TestFileBuffers(t *testing.T) {
	g := New(testProgram(), new(callBackend))
	fmt.Fprint(g.File("a.txt"), "hello")
	fmt.Fprint(g.File("a.txt"), " world")
	assert.Equal(t, "hello world", g.Files()["a.txt"].String())
	assert.Len(t, g.Files(), 1)
}

func TestRegister(t *testing.T) {
	assert.Panics(t, func() { Register("go", nil) })
	assert.NotNil(t, Generators()["go"])
	assert.NotNil(t, Generators()["md"])
	assert.Nil(t, Generators()["unknown"])
	assert.Panics(t, func() {
		Register("go", func() Backend { return new(callBackend) })
	})
}
