package store

import (
	"io"
	"os"

	dune "github.com/volkanBora123/DuneArchive"
	"github.com/volkanBora123/DuneArchive/page"
	"github.com/volkanBora123/DuneArchive/pagefile"
)

// pageIter walks a data file's pages in pageID order, returning
// io.EOF when exhausted.
type pageIter struct {
	pf   *pagefile.PageFile
	td   *dune.TypeDef
	next int32
}

func newPageIter(pf *pagefile.PageFile, td *dune.TypeDef) *pageIter {
	return &pageIter{pf: pf, td: td}
}

func (it *pageIter) Next() (*page.Page, error) {
	if it.next >= it.pf.NumPages {
		return nil, io.EOF
	}
	b := make([]byte, it.pf.PageSize)
	if err := it.pf.ReadPage(b, it.next); err != nil {
		return nil, err
	}
	p, err := page.Deserialize(b, it.td)
	if err != nil {
		return nil, err
	}
	it.next++
	return p, nil
}

// Scan iterates over a type's live records in page order, slot order
// within a page.  Next returns io.EOF once the file is exhausted.
type Scan struct {
	pf     *pagefile.PageFile
	iter   *pageIter
	buf    []*dune.Record
	closed bool
}

func (s *Store) Scan(typeName string) (*Scan, error) {
	td, err := s.catalog.Lookup(typeName)
	if err != nil {
		return nil, err
	}
	path := s.dataPath(typeName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, dune.ErrNotFound
	} else if err != nil {
		return nil, err
	}
	pf, err := pagefile.Open(path, page.Size(td))
	if err != nil {
		return nil, err
	}
	return &Scan{
		pf:   pf,
		iter: newPageIter(pf, td),
	}, nil
}

func (sc *Scan) Next() (*dune.Record, error) {
	for len(sc.buf) == 0 {
		p, err := sc.iter.Next()
		if err != nil {
			return nil, err
		}
		sc.buf = p.LiveRecords()
	}
	r := sc.buf[0]
	sc.buf = sc.buf[1:]
	return r, nil
}

func (sc *Scan) Close() error {
	if sc.closed {
		return nil
	}
	defer func() {
		sc.closed = true
	}()
	return sc.pf.Close()
}
