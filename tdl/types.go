package tdl

// Version contains TDL file version information.
type Version struct {
	// Major is the major version.
	Major int

	// Minor is the minor version.
	Minor int
}

// Program is the declaration tree for one parsed TDL file.
//
// Declaration order within each category is source order and is preserved by
// generation.
type Program struct {
	// Name is the program name, derived from the file name.
	Name string

	// Doc is the leading file comment.
	Doc string

	// Version is the declared protocol version, if any.
	Version *Version

	// OutPath is the declared output root for generated artifacts.
	OutPath string

	// Typedefs are the type alias declarations.
	Typedefs []*Typedef

	// Enums are the enumeration declarations.
	Enums []*Enum

	// Consts are the named constant declarations.
	Consts []*Const

	// Structs are the structure declarations.
	Structs []*Struct

	// Exceptions are the exception declarations.
	Exceptions []*Struct

	// Services are the service declarations.
	Services []*Service
}

// Typedef returns the typedef declared with the specified name, or nil.
func (p *Program) Typedef(name string) *Typedef {
	for _, td := range p.Typedefs {
		if td.Name == name {
			return td
		}
	}
	return nil
}

// Enum returns the enum declared with the specified name, or nil.
func (p *Program) Enum(name string) *Enum {
	for _, en := range p.Enums {
		if en.Name == name {
			return en
		}
	}
	return nil
}

// Const returns the const declared with the specified name, or nil.
func (p *Program) Const(name string) *Const {
	for _, c := range p.Consts {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// TypeKind is the kind of a TDL type.
type TypeKind string

// TypeKind values.
const (
	KindBool   TypeKind = "bool"
	KindByte   TypeKind = "byte"
	KindI16    TypeKind = "i16"
	KindI32    TypeKind = "i32"
	KindI64    TypeKind = "i64"
	KindDouble TypeKind = "double"
	KindString TypeKind = "string"
	KindBinary TypeKind = "binary"
	KindList   TypeKind = "list"
	KindSet    TypeKind = "set"
	KindMap    TypeKind = "map"
	KindNamed  TypeKind = "named"
)

// String satisfies fmt.Stringer.
func (tk TypeKind) String() string {
	return string(tk)
}

// Type represents a TDL type reference.
type Type struct {
	// Kind is the kind of the type.
	Kind TypeKind

	// Name is the referenced declaration name for named types.
	Name string

	// Elem is the element type for lists and sets.
	Elem *Type

	// Key is the key type for maps.
	Key *Type

	// Value is the value type for maps.
	Value *Type
}

// String satisfies fmt.Stringer, returning the TDL notation for the type.
func (t *Type) String() string {
	switch t.Kind {
	case KindList, KindSet:
		return t.Kind.String() + "<" + t.Elem.String() + ">"
	case KindMap:
		return "map<" + t.Key.String() + "," + t.Value.String() + ">"
	case KindNamed:
		return t.Name
	}
	return t.Kind.String()
}

// Typedef is a type alias declaration.
type Typedef struct {
	// Name is the alias name.
	Name string

	// Type is the aliased type. Aliases may chain through named types.
	Type *Type

	// Doc is the declaration comment.
	Doc string
}

// Enum is an enumeration declaration.
type Enum struct {
	// Name is the enum name.
	Name string

	// Values are the enum members, in source order.
	Values []*EnumValue

	// Doc is the declaration comment.
	Doc string
}

// EnumValue is a single enum member.
type EnumValue struct {
	// Name is the member name.
	Name string

	// Value is the member value. Implicit values are assigned by fixup.
	Value int

	// HasValue indicates whether the value was explicit in the source.
	HasValue bool

	// Doc is the member comment.
	Doc string
}

// ConstKind is the kind of a constant value literal.
type ConstKind string

// ConstKind values.
const (
	ConstInt    ConstKind = "int"
	ConstDouble ConstKind = "double"
	ConstString ConstKind = "string"
	ConstBool   ConstKind = "bool"
	ConstIdent  ConstKind = "ident"
	ConstList   ConstKind = "list"
	ConstMap    ConstKind = "map"
)

// ConstValue is a constant value literal.
type ConstValue struct {
	// Kind is the literal kind.
	Kind ConstKind

	// Int is the value for int literals.
	Int int64

	// Double is the value for double literals.
	Double float64

	// Str is the value for string literals.
	Str string

	// Bool is the value for bool literals.
	Bool bool

	// Ident is the referenced name for identifier literals.
	Ident string

	// List are the element values for list literals.
	List []*ConstValue

	// Map are the entries for map literals, in source order.
	Map []*ConstEntry
}

// ConstEntry is a single map literal entry.
type ConstEntry struct {
	// Key is the entry key.
	Key *ConstValue

	// Value is the entry value.
	Value *ConstValue
}

// Const is a named constant declaration.
type Const struct {
	// Name is the constant name.
	Name string

	// Type is the declared type.
	Type *Type

	// Value is the constant value.
	Value *ConstValue

	// Doc is the declaration comment.
	Doc string
}

// Struct is a structure or exception declaration.
type Struct struct {
	// Name is the struct name.
	Name string

	// Fields are the member fields, in source order.
	Fields []*Field

	// IsException indicates the declaration was an exception.
	IsException bool

	// Doc is the declaration comment.
	Doc string
}

// Field is a single struct, parameter, or throws field.
type Field struct {
	// ID is the numeric field id.
	ID int

	// Name is the field name.
	Name string

	// Type is the field type.
	Type *Type

	// Optional indicates the field was marked optional.
	Optional bool

	// Default is the default value, if any.
	Default *ConstValue

	// Doc is the field comment.
	Doc string
}

// Service is a service declaration.
type Service struct {
	// Name is the service name.
	Name string

	// Extends is the name of the extended service, if any.
	Extends string

	// Functions are the service functions, in source order.
	Functions []*Function

	// Doc is the declaration comment.
	Doc string
}

// Function is a single service function.
type Function struct {
	// Name is the function name.
	Name string

	// Returns is the return type, or nil for void.
	Returns *Type

	// Oneway indicates a fire-and-forget function.
	Oneway bool

	// Params are the function parameters, in source order.
	Params []*Field

	// Throws are the declared exceptions, in source order.
	Throws []*Field

	// Doc is the function comment.
	Doc string
}
