package dune

import (
	"bytes"
	"encoding/binary"
	"strconv"
	"strings"
)

var ByteOrder = binary.BigEndian

const (
	validFlag     = 0x01
	tombstoneFlag = 0x00
)

// EncodeValue returns the fixed-width encoding of a single field
// value.  Int values occupy exactly IntWidth bytes, big-endian,
// two's-complement.  Str values occupy exactly StrWidth bytes:
// UTF-8, truncated if longer, null-padded on the right.
func EncodeValue(t Type, value interface{}) ([]byte, error) {
	switch t {
	case Int:
		v, ok := value.(int32)
		if !ok {
			return nil, ErrEncoding
		}
		b := make([]byte, IntWidth)
		ByteOrder.PutUint32(b, uint32(v))
		return b, nil
	case Str:
		s, ok := value.(string)
		if !ok {
			return nil, ErrEncoding
		}
		// Truncation may split a multi-byte code point; the stored
		// bytes are taken as-is.
		b := make([]byte, StrWidth)
		copy(b, s)
		return b, nil
	default:
		return nil, ErrEncoding
	}
}

// DecodeValue reads one fixed-width field value.  Str values have
// trailing null padding stripped; invalid UTF-8 left over from
// truncation is dropped rather than rejected.
func DecodeValue(b []byte, t Type) (interface{}, error) {
	if len(b) < t.Width() {
		return nil, ErrTruncatedData
	}
	switch t {
	case Int:
		return int32(ByteOrder.Uint32(b[:IntWidth])), nil
	case Str:
		s := string(bytes.TrimRight(b[:StrWidth], "\x00"))
		return strings.ToValidUTF8(s, ""), nil
	default:
		return nil, ErrEncoding
	}
}

// CoerceValue converts a textual field value to its runtime
// representation: int32 for Int fields, the string itself for Str
// fields.  A value outside the signed 32-bit range (or not a number
// at all) does not fit the field.
func CoerceValue(t Type, s string) (interface{}, error) {
	switch t {
	case Int:
		v, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return nil, ErrEncoding
		}
		return int32(v), nil
	case Str:
		return s, nil
	default:
		return nil, ErrEncoding
	}
}

// FormatValue renders a runtime field value back to text, matching
// the textual form accepted by CoerceValue.
func FormatValue(value interface{}) string {
	switch v := value.(type) {
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case string:
		return v
	default:
		return ""
	}
}

// SerializeRecord writes a record as a validity byte followed by
// each field at its fixed width, in field order.
func (td *TypeDef) SerializeRecord(r *Record) ([]byte, error) {
	if len(r.Values) != len(td.Fields) {
		return nil, ErrValidation
	}
	buf := make([]byte, 0, td.RecordWidth())
	if r.Valid {
		buf = append(buf, validFlag)
	} else {
		buf = append(buf, tombstoneFlag)
	}
	for i, f := range td.Fields {
		b, err := EncodeValue(f.Type, r.Values[i])
		if err != nil {
			return nil, err
		}
		buf = append(buf, b...)
	}
	return buf, nil
}

// DeserializeRecord reads a record previously written by
// SerializeRecord.  Input shorter than the validity byte or any
// field is rejected.
func (td *TypeDef) DeserializeRecord(b []byte) (*Record, error) {
	if len(b) < 1 {
		return nil, ErrTruncatedData
	}
	r := &Record{
		Values: make([]interface{}, 0, len(td.Fields)),
		Valid:  b[0] == validFlag,
	}
	offset := 1
	for _, f := range td.Fields {
		if offset+f.Type.Width() > len(b) {
			return nil, ErrTruncatedData
		}
		v, err := DecodeValue(b[offset:offset+f.Type.Width()], f.Type)
		if err != nil {
			return nil, err
		}
		r.Values = append(r.Values, v)
		offset += f.Type.Width()
	}
	return r, nil
}

// MatchPK coerces candidate to the runtime type of the record's
// primary-key field and compares for equality.  Coercion failure is
// a non-match, never an error.
func (td *TypeDef) MatchPK(r *Record, candidate string) bool {
	v, err := CoerceValue(td.PKType(), candidate)
	if err != nil {
		return false
	}
	return r.Values[td.PKIndex] == v
}
