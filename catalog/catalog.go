// Package catalog persists the registry of type definitions.  The
// catalog file is the single source of schema truth: it is loaded
// fresh before every definition or lookup and rewritten wholesale on
// every successful definition, so no stale in-memory schema can
// survive across engine invocations.
package catalog

import (
	"encoding/json"
	"os"
	"strings"

	dune "github.com/volkanBora123/DuneArchive"
)

const (
	DefaultPath = "system_catalog.json"

	MaxFields       = 6
	MaxTypeNameLen  = 12
	MaxFieldNameLen = 20
)

type Catalog struct {
	Path string
}

func New(path string) *Catalog {
	if path == "" {
		path = DefaultPath
	}
	return &Catalog{Path: path}
}

// On-disk document layout.
type document struct {
	Types []typeEntry `json:"types"`
}

type typeEntry struct {
	TypeName        string       `json:"type_name"`
	Fields          []fieldEntry `json:"fields"`
	PrimaryKeyIndex int          `json:"primary_key_index"`
}

type fieldEntry struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// DefineType validates td and appends it to the persisted catalog.
// Validation runs in full before the catalog is rewritten, so a
// failed definition leaves no partial state behind.
func (c *Catalog) DefineType(td *dune.TypeDef) error {
	if err := validateTypeDef(td); err != nil {
		return err
	}
	doc, err := c.load()
	if err != nil {
		return err
	}
	// Duplicate checking is case-insensitive even though lookups are
	// exact-case; see Lookup.
	for _, entry := range doc.Types {
		if strings.EqualFold(entry.TypeName, td.Name) {
			return dune.ErrValidation
		}
	}
	entry := typeEntry{
		TypeName:        td.Name,
		PrimaryKeyIndex: td.PKIndex,
	}
	for _, f := range td.Fields {
		entry.Fields = append(entry.Fields, fieldEntry{
			Name: f.Name,
			Type: f.Type.String(),
		})
	}
	doc.Types = append(doc.Types, entry)
	return c.save(doc)
}

// Lookup resolves a type name to its definition.  Lookups are
// exact-case, an asymmetry with the case-insensitive duplicate check
// in DefineType that is preserved as inherited behavior.
func (c *Catalog) Lookup(name string) (*dune.TypeDef, error) {
	doc, err := c.load()
	if err != nil {
		return nil, err
	}
	for _, entry := range doc.Types {
		if entry.TypeName == name {
			return entry.typeDef()
		}
	}
	return nil, dune.ErrNotFound
}

func (e *typeEntry) typeDef() (*dune.TypeDef, error) {
	td := &dune.TypeDef{
		Name:    e.TypeName,
		PKIndex: e.PrimaryKeyIndex,
	}
	for _, f := range e.Fields {
		t, ok := dune.ParseType(f.Type)
		if !ok {
			return nil, dune.ErrValidation
		}
		td.Fields = append(td.Fields, &dune.Field{Name: f.Name, Type: t})
	}
	if td.PKIndex < 0 || td.PKIndex >= len(td.Fields) {
		return nil, dune.ErrValidation
	}
	return td, nil
}

func (c *Catalog) load() (*document, error) {
	b, err := os.ReadFile(c.Path)
	if os.IsNotExist(err) {
		return &document{}, nil
	} else if err != nil {
		return nil, err
	}
	var doc document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Catalog) save(doc *document) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.Path, b, 0644)
}
