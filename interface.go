package dune

// Type enumerates the scalar field types supported by the archive.
type Type uint8

const (
	UnknownType Type = iota
	Int
	Str
)

// Encoded widths are fixed so that every record of a given type
// occupies the same number of bytes on disk.
const (
	IntWidth = 4
	StrWidth = 20
)

func (t Type) Width() int {
	switch t {
	case Int:
		return IntWidth
	case Str:
		return StrWidth
	default:
		return 0
	}
}

func (t Type) String() string {
	switch t {
	case Int:
		return "int"
	case Str:
		return "str"
	default:
		return "unknown"
	}
}

// ParseType maps the textual type names used in type specs to their
// Type values.
func ParseType(s string) (Type, bool) {
	switch s {
	case "int":
		return Int, true
	case "str":
		return Str, true
	default:
		return UnknownType, false
	}
}

type Field struct {
	Name string
	Type Type
}

// TypeDef describes the record layout for one registered type.  A
// TypeDef is immutable once registered; there is no alter or drop.
type TypeDef struct {
	Name string
	// Invariant: 1 <= len(Fields) <= catalog.MaxFields
	Fields  []*Field
	PKIndex int
}

// RecordWidth is the fixed on-disk size of one record: a validity
// byte followed by each field at its encoded width.
func (td *TypeDef) RecordWidth() int {
	n := 1
	for _, f := range td.Fields {
		n += f.Type.Width()
	}
	return n
}

func (td *TypeDef) PKType() Type {
	return td.Fields[td.PKIndex].Type
}

// Record holds the runtime values for one row of a type, in field
// order.  Valid is false for tombstones: slots whose record was
// deleted but whose bytes may still be present on disk.
type Record struct {
	Values []interface{}
	Valid  bool
}

func (r *Record) Equals(other *Record) bool {
	if r.Valid != other.Valid || len(r.Values) != len(other.Values) {
		return false
	}
	for i := range r.Values {
		if r.Values[i] != other.Values[i] {
			return false
		}
	}
	return true
}
