package catalog

import (
	"unicode"

	dune "github.com/volkanBora123/DuneArchive"
)

func validateTypeDef(td *dune.TypeDef) error {
	if !validName(td.Name, MaxTypeNameLen) {
		return dune.ErrValidation
	}
	if len(td.Fields) < 1 || len(td.Fields) > MaxFields {
		return dune.ErrValidation
	}
	if td.PKIndex < 0 || td.PKIndex >= len(td.Fields) {
		return dune.ErrValidation
	}
	seen := make(map[string]struct{}, len(td.Fields))
	for _, f := range td.Fields {
		if !validName(f.Name, MaxFieldNameLen) {
			return dune.ErrValidation
		}
		// Field names are unique case-sensitively.
		if _, ok := seen[f.Name]; ok {
			return dune.ErrValidation
		}
		seen[f.Name] = struct{}{}
		if f.Type != dune.Int && f.Type != dune.Str {
			return dune.ErrValidation
		}
	}
	return nil
}

// validName accepts names of 1..max alphanumeric characters with at
// least one letter; separators and symbols are rejected.
func validName(name string, max int) bool {
	runes := []rune(name)
	if len(runes) < 1 || len(runes) > max {
		return false
	}
	hasLetter := false
	for _, r := range runes {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
		default:
			return false
		}
	}
	return hasLetter
}
