package fixup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdlgen/tdlgen/tdl"
)

func TestFixEnumValues(t *testing.T) {
	prog := &tdl.Program{
		Enums: []*tdl.Enum{{
			Name: "Status",
			Values: []*tdl.EnumValue{
				{Name: "A"},
				{Name: "B"},
				{Name: "C", Value: 10, HasValue: true},
				{Name: "D"},
			},
		}},
	}
	require.NoError(t, FixProgram(prog))
	vals := prog.Enums[0].Values
	assert.Equal(t, 0, vals[0].Value)
	assert.Equal(t, 1, vals[1].Value)
	assert.Equal(t, 10, vals[2].Value)
	assert.Equal(t, 11, vals[3].Value)
}

func TestTypedefCycle(t *testing.T) {
	prog := &tdl.Program{
		Typedefs: []*tdl.Typedef{
			{Name: "A", Type: &tdl.Type{Kind: tdl.KindNamed, Name: "B"}},
			{Name: "B", Type: &tdl.Type{Kind: tdl.KindNamed, Name: "A"}},
		},
	}
	err := FixProgram(prog)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestTypedefChainOK(t *testing.T) {
	prog := &tdl.Program{
		Typedefs: []*tdl.Typedef{
			{Name: "A", Type: &tdl.Type{Kind: tdl.KindNamed, Name: "B"}},
			{Name: "B", Type: &tdl.Type{Kind: tdl.KindI32}},
		},
	}
	assert.NoError(t, FixProgram(prog))
}

func TestUndeclaredType(t *testing.T) {
	prog := &tdl.Program{
		Structs: []*tdl.Struct{{
			Name: "S",
			Fields: []*tdl.Field{
				{ID: 1, Name: "x", Type: &tdl.Type{Kind: tdl.KindNamed, Name: "Missing"}},
			},
		}},
	}
	err := FixProgram(prog)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `undeclared type "Missing"`)
}

func TestUndeclaredTypeInContainer(t *testing.T) {
	prog := &tdl.Program{
		Typedefs: []*tdl.Typedef{{
			Name: "T",
			Type: &tdl.Type{
				Kind: tdl.KindList,
				Elem: &tdl.Type{Kind: tdl.KindNamed, Name: "Nope"},
			},
		}},
	}
	assert.Error(t, FixProgram(prog))
}

func TestConstReferences(t *testing.T) {
	intType := &tdl.Type{Kind: tdl.KindI32}

	// forward reference is out of scope
	prog := &tdl.Program{
		Consts: []*tdl.Const{
			{Name: "A", Type: intType, Value: &tdl.ConstValue{Kind: tdl.ConstIdent, Ident: "B"}},
			{Name: "B", Type: intType, Value: &tdl.ConstValue{Kind: tdl.ConstInt, Int: 1}},
		},
	}
	err := FixProgram(prog)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `undeclared reference "B"`)

	// backward reference resolves
	prog = &tdl.Program{
		Consts: []*tdl.Const{
			{Name: "B", Type: intType, Value: &tdl.ConstValue{Kind: tdl.ConstInt, Int: 1}},
			{Name: "A", Type: intType, Value: &tdl.ConstValue{Kind: tdl.ConstIdent, Ident: "B"}},
		},
	}
	assert.NoError(t, FixProgram(prog))
}

func TestConstEnumReference(t *testing.T) {
	status := &tdl.Type{Kind: tdl.KindNamed, Name: "Status"}
	prog := &tdl.Program{
		Enums: []*tdl.Enum{{
			Name:   "Status",
			Values: []*tdl.EnumValue{{Name: "ACTIVE"}},
		}},
		Consts: []*tdl.Const{
			{Name: "OK", Type: status, Value: &tdl.ConstValue{Kind: tdl.ConstIdent, Ident: "Status.ACTIVE"}},
		},
	}
	assert.NoError(t, FixProgram(prog))

	prog.Consts[0].Value.Ident = "Status.GONE"
	err := FixProgram(prog)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no member "GONE"`)
}

func TestDuplicateFieldIDs(t *testing.T) {
	prog := &tdl.Program{
		Structs: []*tdl.Struct{{
			Name: "S",
			Fields: []*tdl.Field{
				{ID: 1, Name: "a", Type: &tdl.Type{Kind: tdl.KindI32}},
				{ID: 1, Name: "b", Type: &tdl.Type{Kind: tdl.KindI32}},
			},
		}},
	}
	err := FixProgram(prog)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field id 1 reused")
}
