// Package pagefile provides whole-page I/O over a single data file.
// A data file is a flat sequence of fixed-size pages addressed by
// pageID * pageSize, with no file-level header.
package pagefile

import (
	"os"

	"github.com/dropbox/godropbox/errors"
)

const InvalidPageID = -1

type PageFile struct {
	File     *os.File
	PageSize int
	NumPages int32
}

// Open opens the data file at path, creating it empty if absent, and
// derives the page count from the file size.
func Open(path string, pageSize int) (*PageFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}
	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &PageFile{
		File:     f,
		PageSize: pageSize,
		NumPages: int32(stat.Size() / int64(pageSize)),
	}, nil
}

func (pf *PageFile) ReadPage(b []byte, pageID int32) error {
	if pageID < 0 || pageID >= pf.NumPages {
		return errors.Newf("pageID must be in [0, %d); got %d", pf.NumPages, pageID)
	}
	if len(b) != pf.PageSize {
		return errors.Newf("len(b) must be %d; got %d", pf.PageSize, len(b))
	}
	_, err := pf.File.ReadAt(b, int64(pageID)*int64(pf.PageSize))
	return err
}

func (pf *PageFile) WritePage(b []byte, pageID int32) error {
	if pageID < 0 || pageID >= pf.NumPages {
		return errors.Newf("pageID must be in [0, %d); got %d", pf.NumPages, pageID)
	}
	if len(b) != pf.PageSize {
		return errors.Newf("len(b) must be %d; got %d", pf.PageSize, len(b))
	}
	_, err := pf.File.WriteAt(b, int64(pageID)*int64(pf.PageSize))
	return err
}

// AppendPage writes b as a new page at the end of the file and
// returns its pageID.  The file grows one page at a time; the new
// pageID is always the previous NumPages.
func (pf *PageFile) AppendPage(b []byte) (int32, error) {
	if len(b) != pf.PageSize {
		return InvalidPageID, errors.Newf("len(b) must be %d; got %d", pf.PageSize, len(b))
	}
	pageID := pf.NumPages
	_, err := pf.File.WriteAt(b, int64(pageID)*int64(pf.PageSize))
	if err != nil {
		return InvalidPageID, err
	}
	pf.NumPages++
	return pageID, nil
}

func (pf *PageFile) Close() error {
	return pf.File.Close()
}
