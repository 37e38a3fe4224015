// Package tdl contains types and funcs for working with TDL (type definition
// language) files.
package tdl

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// ParseFile parses the TDL file at path, naming the program after the file.
func ParseFile(path string) (*Program, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	prog, err := Parse(buf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	prog.Name = strings.TrimSuffix(filepath.Base(path), ".tdl")
	return prog, nil
}

// Parse parses a TDL file contained in buf.
//
// TDL is line oriented: top-level declarations start in column one, members
// are indented two spaces, and '#' lines carry documentation that attaches to
// the next declaration.
func Parse(buf []byte) (*Program, error) {
	var (
		versionRE = regexp.MustCompile(`^version$`)
		majorRE   = regexp.MustCompile(`^  major (\d+)$`)
		minorRE   = regexp.MustCompile(`^  minor (\d+)$`)
		typedefRE = regexp.MustCompile(`^typedef ([^\s]+) ([A-Za-z_][A-Za-z0-9_]*)$`)
		enumRE    = regexp.MustCompile(`^enum ([A-Za-z_][A-Za-z0-9_]*)$`)
		enumValRE = regexp.MustCompile(`^  ([A-Za-z_][A-Za-z0-9_]*)( = (-?\d+))?$`)
		constRE   = regexp.MustCompile(`^const ([^\s]+) ([A-Za-z_][A-Za-z0-9_]*) = (.+)$`)
		structRE  = regexp.MustCompile(`^(struct|exception) ([A-Za-z_][A-Za-z0-9_]*)$`)
		fieldRE   = regexp.MustCompile(`^  (\d+): (optional )?([^\s]+) ([A-Za-z_][A-Za-z0-9_]*)( = (.+))?$`)
		serviceRE = regexp.MustCompile(`^service ([A-Za-z_][A-Za-z0-9_]*)( extends ([A-Za-z_][A-Za-z0-9_]*))?$`)
		funcRE    = regexp.MustCompile(`^  (oneway )?([^\s]+) ([A-Za-z_][A-Za-z0-9_]*)\(([^)]*)\)( throws \(([^)]*)\))?$`)
	)

	prog := new(Program)

	// state objects
	var enum *Enum
	var strct *Struct
	var svc *Service
	var version bool
	var desc string
	var progDoc, clearDesc bool

	for i, line := range strings.Split(string(buf), "\n") {
		// clear the description if toggled
		if clearDesc {
			desc, clearDesc = "", false
		}

		trimmed := strings.TrimSpace(line)

		// add to desc
		if strings.HasPrefix(trimmed, "#") {
			if len(desc) != 0 {
				desc += "\n"
			}
			desc += strings.TrimSpace(strings.TrimPrefix(trimmed, "#"))
			continue
		} else {
			if !progDoc {
				progDoc, prog.Doc = true, desc
			}
			clearDesc = true
		}

		// skip empty line
		if len(trimmed) == 0 {
			continue
		}

		// version block
		if versionRE.MatchString(line) {
			prog.Version = new(Version)
			version, enum, strct, svc = true, nil, nil, nil
			continue
		}
		if version {
			if m := majorRE.FindStringSubmatch(line); m != nil {
				prog.Version.Major, _ = strconv.Atoi(m[1])
				continue
			}
			if m := minorRE.FindStringSubmatch(line); m != nil {
				prog.Version.Minor, _ = strconv.Atoi(m[1])
				continue
			}
			version = false
		}

		// typedef
		if m := typedefRE.FindStringSubmatch(line); m != nil {
			typ, err := ParseType(m[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", i+1, err)
			}
			prog.Typedefs = append(prog.Typedefs, &Typedef{
				Name: m[2],
				Type: typ,
				Doc:  desc,
			})
			enum, strct, svc = nil, nil, nil
			continue
		}

		// enum
		if m := enumRE.FindStringSubmatch(line); m != nil {
			enum = &Enum{
				Name: m[1],
				Doc:  desc,
			}
			prog.Enums = append(prog.Enums, enum)
			strct, svc = nil, nil
			continue
		}

		// const
		if m := constRE.FindStringSubmatch(line); m != nil {
			typ, err := ParseType(m[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", i+1, err)
			}
			val, err := ParseValue(m[3])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", i+1, err)
			}
			prog.Consts = append(prog.Consts, &Const{
				Name:  m[2],
				Type:  typ,
				Value: val,
				Doc:   desc,
			})
			enum, strct, svc = nil, nil, nil
			continue
		}

		// struct / exception
		if m := structRE.FindStringSubmatch(line); m != nil {
			strct = &Struct{
				Name:        m[2],
				IsException: m[1] == "exception",
				Doc:         desc,
			}
			if strct.IsException {
				prog.Exceptions = append(prog.Exceptions, strct)
			} else {
				prog.Structs = append(prog.Structs, strct)
			}
			enum, svc = nil, nil
			continue
		}

		// service
		if m := serviceRE.FindStringSubmatch(line); m != nil {
			svc = &Service{
				Name:    m[1],
				Extends: m[3],
				Doc:     desc,
			}
			prog.Services = append(prog.Services, svc)
			enum, strct = nil, nil
			continue
		}

		// enum member
		if enum != nil {
			if m := enumValRE.FindStringSubmatch(line); m != nil {
				ev := &EnumValue{
					Name: m[1],
					Doc:  desc,
				}
				if m[3] != "" {
					ev.Value, _ = strconv.Atoi(m[3])
					ev.HasValue = true
				}
				enum.Values = append(enum.Values, ev)
				continue
			}
			return nil, fmt.Errorf("line %d: invalid enum member %q", i+1, trimmed)
		}

		// struct field
		if strct != nil {
			if m := fieldRE.FindStringSubmatch(line); m != nil {
				field, err := buildField(m[1], m[2] != "", m[3], m[4], m[6])
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", i+1, err)
				}
				field.Doc = desc
				strct.Fields = append(strct.Fields, field)
				continue
			}
			return nil, fmt.Errorf("line %d: invalid field %q", i+1, trimmed)
		}

		// service function
		if svc != nil {
			if m := funcRE.FindStringSubmatch(line); m != nil {
				fn := &Function{
					Name:   m[3],
					Oneway: m[1] != "",
					Doc:    desc,
				}
				if m[2] != "void" {
					typ, err := ParseType(m[2])
					if err != nil {
						return nil, fmt.Errorf("line %d: %w", i+1, err)
					}
					fn.Returns = typ
				}
				var err error
				if fn.Params, err = parseFields(m[4]); err != nil {
					return nil, fmt.Errorf("line %d: %w", i+1, err)
				}
				if fn.Throws, err = parseFields(m[6]); err != nil {
					return nil, fmt.Errorf("line %d: %w", i+1, err)
				}
				svc.Functions = append(svc.Functions, fn)
				continue
			}
			return nil, fmt.Errorf("line %d: invalid function %q", i+1, trimmed)
		}

		return nil, fmt.Errorf("line %d: unexpected %q", i+1, trimmed)
	}

	return prog, nil
}

// baseKinds are the TDL base type names.
var baseKinds = map[string]TypeKind{
	"bool":   KindBool,
	"byte":   KindByte,
	"i16":    KindI16,
	"i32":    KindI32,
	"i64":    KindI64,
	"double": KindDouble,
	"string": KindString,
	"binary": KindBinary,
}

// identRE matches a TDL identifier.
var identRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ParseType parses the TDL notation for a type (eg, "i32", "list<string>",
// "map<string,UserID>").
func ParseType(s string) (*Type, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "list<") && strings.HasSuffix(s, ">"):
		elem, err := ParseType(s[len("list<") : len(s)-1])
		if err != nil {
			return nil, err
		}
		return &Type{Kind: KindList, Elem: elem}, nil

	case strings.HasPrefix(s, "set<") && strings.HasSuffix(s, ">"):
		elem, err := ParseType(s[len("set<") : len(s)-1])
		if err != nil {
			return nil, err
		}
		return &Type{Kind: KindSet, Elem: elem}, nil

	case strings.HasPrefix(s, "map<") && strings.HasSuffix(s, ">"):
		args := splitTop(s[len("map<"):len(s)-1], ',')
		if len(args) != 2 {
			return nil, fmt.Errorf("invalid map type %q", s)
		}
		key, err := ParseType(args[0])
		if err != nil {
			return nil, err
		}
		value, err := ParseType(args[1])
		if err != nil {
			return nil, err
		}
		return &Type{Kind: KindMap, Key: key, Value: value}, nil
	}
	if kind, ok := baseKinds[s]; ok {
		return &Type{Kind: kind}, nil
	}
	if !identRE.MatchString(s) {
		return nil, fmt.Errorf("invalid type %q", s)
	}
	return &Type{Kind: KindNamed, Name: s}, nil
}

// ParseValue parses the TDL notation for a constant value literal.
func ParseValue(s string) (*ConstValue, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return nil, fmt.Errorf("empty value")

	case s == "true", s == "false":
		return &ConstValue{Kind: ConstBool, Bool: s == "true"}, nil

	case strings.HasPrefix(s, `"`):
		if len(s) < 2 || !strings.HasSuffix(s, `"`) {
			return nil, fmt.Errorf("unterminated string %s", s)
		}
		str, err := strconv.Unquote(s)
		if err != nil {
			return nil, fmt.Errorf("invalid string %s: %w", s, err)
		}
		return &ConstValue{Kind: ConstString, Str: str}, nil

	case strings.HasPrefix(s, "["):
		if !strings.HasSuffix(s, "]") {
			return nil, fmt.Errorf("unterminated list %s", s)
		}
		v := &ConstValue{Kind: ConstList}
		for _, e := range splitTop(s[1:len(s)-1], ',') {
			if strings.TrimSpace(e) == "" {
				continue
			}
			ev, err := ParseValue(e)
			if err != nil {
				return nil, err
			}
			v.List = append(v.List, ev)
		}
		return v, nil

	case strings.HasPrefix(s, "{"):
		if !strings.HasSuffix(s, "}") {
			return nil, fmt.Errorf("unterminated map %s", s)
		}
		v := &ConstValue{Kind: ConstMap}
		for _, e := range splitTop(s[1:len(s)-1], ',') {
			if strings.TrimSpace(e) == "" {
				continue
			}
			kv := splitTop(e, ':')
			if len(kv) != 2 {
				return nil, fmt.Errorf("invalid map entry %q", e)
			}
			key, err := ParseValue(kv[0])
			if err != nil {
				return nil, err
			}
			value, err := ParseValue(kv[1])
			if err != nil {
				return nil, err
			}
			v.Map = append(v.Map, &ConstEntry{Key: key, Value: value})
		}
		return v, nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &ConstValue{Kind: ConstInt, Int: i}, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return &ConstValue{Kind: ConstDouble, Double: f}, nil
	}
	if identRE.MatchString(s) || identRE.MatchString(strings.ReplaceAll(s, ".", "_")) {
		return &ConstValue{Kind: ConstIdent, Ident: s}, nil
	}
	return nil, fmt.Errorf("invalid value %q", s)
}

// paramRE matches a single field inside a parameter or throws list.
var paramRE = regexp.MustCompile(`^(\d+): (optional )?([^\s]+) ([A-Za-z_][A-Za-z0-9_]*)( = (.+))?$`)

// parseFields parses a comma separated parameter or throws list.
func parseFields(s string) ([]*Field, error) {
	var fields []*Field
	for _, p := range splitTop(s, ',') {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		m := paramRE.FindStringSubmatch(p)
		if m == nil {
			return nil, fmt.Errorf("invalid parameter %q", p)
		}
		field, err := buildField(m[1], m[2] != "", m[3], m[4], m[6])
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	return fields, nil
}

// buildField assembles a field from its matched parts.
func buildField(id string, optional bool, typstr, name, defstr string) (*Field, error) {
	typ, err := ParseType(typstr)
	if err != nil {
		return nil, err
	}
	field := &Field{
		Name:     name,
		Type:     typ,
		Optional: optional,
	}
	if field.ID, err = strconv.Atoi(id); err != nil {
		return nil, fmt.Errorf("invalid field id %q", id)
	}
	if defstr != "" {
		if field.Default, err = ParseValue(defstr); err != nil {
			return nil, err
		}
	}
	return field, nil
}

// splitTop splits s on sep at nesting depth zero, respecting <>, [], {}, and
// double quoted strings.
func splitTop(s string, sep byte) []string {
	var parts []string
	var depth int
	var quoted bool
	last := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quoted:
			if c == '\\' {
				i++
			} else if c == '"' {
				quoted = false
			}
		case c == '"':
			quoted = true
		case c == '<' || c == '[' || c == '{':
			depth++
		case c == '>' || c == ']' || c == '}':
			depth--
		case c == sep && depth == 0:
			parts = append(parts, s[last:i])
			last = i + 1
		}
	}
	return append(parts, s[last:])
}
