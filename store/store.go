// Package store orchestrates record operations across a type's data
// file: one file per type, scanned page by page in pageID order.
package store

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	dune "github.com/volkanBora123/DuneArchive"
	"github.com/volkanBora123/DuneArchive/catalog"
	"github.com/volkanBora123/DuneArchive/page"
	"github.com/volkanBora123/DuneArchive/pagefile"
)

const (
	// DefaultMaxPages matches the original archive's limit; deploys
	// that need more raise it through Config.
	DefaultMaxPages = 5

	DefaultExt = ".db"
)

type Config struct {
	// DataDir holds one data file per type, named <type><Ext>.
	DataDir string

	// MaxPages caps how many pages a single type's data file may
	// grow to.
	MaxPages int

	Ext string
}

func (cfg Config) withDefaults() Config {
	if cfg.DataDir == "" {
		cfg.DataDir = "."
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultMaxPages
	}
	if cfg.Ext == "" {
		cfg.Ext = DefaultExt
	}
	return cfg
}

type Store struct {
	catalog *catalog.Catalog
	cfg     Config
	logger  *zap.Logger
}

func New(cat *catalog.Catalog, cfg Config, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		catalog: cat,
		cfg:     cfg.withDefaults(),
		logger:  logger,
	}
}

func (s *Store) dataPath(typeName string) string {
	return filepath.Join(s.cfg.DataDir, typeName+s.cfg.Ext)
}

// CreateRecord inserts a new record for the named type.  The primary
// key must be unique across every slot ever written to the type's
// data file, tombstones included.  The data file is created lazily
// here on first insertion.
func (s *Store) CreateRecord(typeName string, values []string) error {
	td, err := s.catalog.Lookup(typeName)
	if err != nil {
		s.logger.Debug("create: unknown type", zap.String("type", typeName))
		return err
	}
	if len(values) != len(td.Fields) {
		s.logger.Debug("create: arity mismatch",
			zap.String("type", typeName),
			zap.Int("want", len(td.Fields)),
			zap.Int("got", len(values)))
		return dune.ErrValidation
	}
	record := &dune.Record{Valid: true}
	for i, f := range td.Fields {
		v, err := dune.CoerceValue(f.Type, values[i])
		if err != nil {
			return err
		}
		record.Values = append(record.Values, v)
	}
	pkValue := values[td.PKIndex]

	pf, err := pagefile.Open(s.dataPath(typeName), page.Size(td))
	if err != nil {
		return err
	}
	defer pf.Close()

	// First pass: the key must not match any slot ever written, live
	// or tombstoned.
	iter := newPageIter(pf, td)
	for {
		p, err := iter.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return err
		}
		if p.HasKey(pkValue) {
			s.logger.Debug("create: duplicate key",
				zap.String("type", typeName),
				zap.String("pk", pkValue),
				zap.Uint32("page", p.ID))
			return dune.ErrDuplicateKey
		}
	}

	// Second pass: insert into the first page with a free slot.
	iter = newPageIter(pf, td)
	for {
		p, err := iter.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return err
		}
		if p.Insert(record) {
			return s.writePage(pf, p)
		}
	}

	// All pages full: append a new one if the file may still grow.
	if int(pf.NumPages) >= s.cfg.MaxPages {
		s.logger.Debug("create: page limit reached",
			zap.String("type", typeName),
			zap.Int("maxPages", s.cfg.MaxPages))
		return dune.ErrCapacity
	}
	p := page.New(uint32(pf.NumPages), td)
	p.Insert(record)
	b, err := p.Serialize()
	if err != nil {
		return err
	}
	_, err = pf.AppendPage(b)
	return err
}

// SearchRecord returns the first live record whose primary key
// matches pkValue, with its field values joined by single spaces in
// field order.  An unknown type, missing data file, or absent key is
// ErrNotFound.
func (s *Store) SearchRecord(typeName, pkValue string) (string, error) {
	td, err := s.catalog.Lookup(typeName)
	if err != nil {
		return "", err
	}
	// Stat rather than open so that a search never creates the file.
	path := s.dataPath(typeName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", dune.ErrNotFound
	} else if err != nil {
		return "", err
	}
	pf, err := pagefile.Open(path, page.Size(td))
	if err != nil {
		return "", err
	}
	defer pf.Close()

	iter := newPageIter(pf, td)
	for {
		p, err := iter.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return "", err
		}
		if r := p.Find(pkValue); r != nil {
			return joinValues(r), nil
		}
	}
	s.logger.Debug("search: no match",
		zap.String("type", typeName),
		zap.String("pk", pkValue))
	return "", dune.ErrNotFound
}

// DeleteRecord tombstones the first live record whose primary key
// matches pkValue and persists only the mutated page.
func (s *Store) DeleteRecord(typeName, pkValue string) error {
	td, err := s.catalog.Lookup(typeName)
	if err != nil {
		return err
	}
	path := s.dataPath(typeName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return dune.ErrNotFound
	} else if err != nil {
		return err
	}
	pf, err := pagefile.Open(path, page.Size(td))
	if err != nil {
		return err
	}
	defer pf.Close()

	iter := newPageIter(pf, td)
	for {
		p, err := iter.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return err
		}
		if p.Delete(pkValue) {
			return s.writePage(pf, p)
		}
	}
	s.logger.Debug("delete: no live match",
		zap.String("type", typeName),
		zap.String("pk", pkValue))
	return dune.ErrNotFound
}

func (s *Store) writePage(pf *pagefile.PageFile, p *page.Page) error {
	b, err := p.Serialize()
	if err != nil {
		return err
	}
	return pf.WritePage(b, int32(p.ID))
}

func joinValues(r *dune.Record) string {
	parts := make([]string, 0, len(r.Values))
	for _, v := range r.Values {
		parts = append(parts, dune.FormatValue(v))
	}
	return strings.Join(parts, " ")
}
