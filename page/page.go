// Package page implements the fixed-capacity slotted page: a small
// header plus ten fixed-width record slots, with a bitmap tracking
// which slots hold a live record.
package page

import (
	"bytes"
	"math/bits"

	dune "github.com/volkanBora123/DuneArchive"
)

const (
	// NumSlots is the fixed record capacity of every page.
	NumSlots = 10

	// Header layout: 4-byte big-endian page id, 1-byte record count,
	// 2-byte bitmap.  Bit 9-i of the bitmap represents slot i; the
	// top 6 bits are padding.
	HeaderWidth = 4 + 1 + 2
)

type Page struct {
	ID uint32

	td     *dune.TypeDef
	bitmap uint16

	// records[i] is nil only if slot i has never held a record.  A
	// non-nil record with its bitmap bit clear is a tombstone: the
	// slot is free for reuse but its bytes remain on disk until
	// overwritten.
	records [NumSlots]*dune.Record
}

func New(id uint32, td *dune.TypeDef) *Page {
	return &Page{ID: id, td: td}
}

// Size is the fixed on-disk size of a page for the given type.
func Size(td *dune.TypeDef) int {
	return HeaderWidth + NumSlots*td.RecordWidth()
}

func (p *Page) slotUsed(i int) bool {
	return p.bitmap&(1<<(NumSlots-1-i)) != 0
}

func (p *Page) setSlot(i int) {
	p.bitmap |= 1 << (NumSlots - 1 - i)
}

func (p *Page) clearSlot(i int) {
	p.bitmap &^= 1 << (NumSlots - 1 - i)
}

// RecordCount is the number of live records, always the popcount of
// the bitmap.
func (p *Page) RecordCount() int {
	return bits.OnesCount16(p.bitmap)
}

// Insert places the record in the lowest-indexed free slot and
// reports whether there was room.  Tombstoned slots count as free and
// are overwritten.
func (p *Page) Insert(r *dune.Record) bool {
	for i := 0; i < NumSlots; i++ {
		if p.slotUsed(i) {
			continue
		}
		p.records[i] = r
		p.setSlot(i)
		return true
	}
	return false
}

// Delete tombstones the first live record whose primary key matches
// pkValue and reports whether one was found.  The record's bytes are
// not wiped; only the validity flag and bitmap bit change.
func (p *Page) Delete(pkValue string) bool {
	for i := 0; i < NumSlots; i++ {
		if !p.slotUsed(i) || p.records[i] == nil {
			continue
		}
		if p.records[i].Valid && p.td.MatchPK(p.records[i], pkValue) {
			p.records[i].Valid = false
			p.clearSlot(i)
			return true
		}
	}
	return false
}

// Find returns the first live record whose primary key matches
// pkValue, or nil.
func (p *Page) Find(pkValue string) *dune.Record {
	for i := 0; i < NumSlots; i++ {
		if !p.slotUsed(i) || p.records[i] == nil {
			continue
		}
		if p.records[i].Valid && p.td.MatchPK(p.records[i], pkValue) {
			return p.records[i]
		}
	}
	return nil
}

// HasKey reports whether any slot ever written, live or tombstoned,
// matches pkValue.  Duplicate-key checks use this so that a key
// remains taken even after its record is deleted.
func (p *Page) HasKey(pkValue string) bool {
	for i := 0; i < NumSlots; i++ {
		if p.records[i] == nil {
			continue
		}
		if p.td.MatchPK(p.records[i], pkValue) {
			return true
		}
	}
	return false
}

// LiveRecords returns the live records in slot order.
func (p *Page) LiveRecords() []*dune.Record {
	var live []*dune.Record
	for i := 0; i < NumSlots; i++ {
		if p.slotUsed(i) && p.records[i] != nil {
			live = append(live, p.records[i])
		}
	}
	return live
}

// Serialize writes the page at its fixed size.  Slots that have never
// held a record are zero-filled; tombstoned slots keep their record
// bytes with the validity flag cleared.
func (p *Page) Serialize() ([]byte, error) {
	recordWidth := p.td.RecordWidth()
	buf := make([]byte, Size(p.td))
	dune.ByteOrder.PutUint32(buf[0:4], p.ID)
	buf[4] = byte(p.RecordCount())
	dune.ByteOrder.PutUint16(buf[5:7], p.bitmap)
	offset := HeaderWidth
	for i := 0; i < NumSlots; i++ {
		if p.records[i] != nil {
			b, err := p.td.SerializeRecord(p.records[i])
			if err != nil {
				return nil, err
			}
			copy(buf[offset:offset+recordWidth], b)
		}
		offset += recordWidth
	}
	return buf, nil
}

// Deserialize reconstructs a page from its fixed layout.  Buffers
// shorter than the header are rejected.  Bitmap-clear slots whose
// bytes are all zero decode as empty; bitmap-clear slots with
// residual bytes decode as tombstones.
func Deserialize(b []byte, td *dune.TypeDef) (*Page, error) {
	if len(b) < HeaderWidth {
		return nil, dune.ErrTruncatedData
	}
	p := &Page{
		ID:     dune.ByteOrder.Uint32(b[0:4]),
		td:     td,
		bitmap: dune.ByteOrder.Uint16(b[5:7]),
	}
	recordWidth := td.RecordWidth()
	offset := HeaderWidth
	for i := 0; i < NumSlots; i++ {
		start, end := offset, offset+recordWidth
		if start > len(b) {
			start = len(b)
		}
		if end > len(b) {
			end = len(b)
		}
		slot := b[start:end]
		switch {
		case p.slotUsed(i):
			r, err := td.DeserializeRecord(slot)
			if err != nil {
				return nil, err
			}
			p.records[i] = r
		case !isZero(slot):
			r, err := td.DeserializeRecord(slot)
			if err != nil {
				return nil, err
			}
			// The bitmap is authoritative for liveness.
			r.Valid = false
			p.records[i] = r
		}
		offset += recordWidth
	}
	return p, nil
}

func isZero(b []byte) bool {
	return len(bytes.Trim(b, "\x00")) == 0
}
