package store

import (
	"io"
	"os"
	"strconv"
	"testing"

	. "gopkg.in/check.v1"

	. "github.com/dropbox/godropbox/gocheck2"

	dune "github.com/volkanBora123/DuneArchive"
	"github.com/volkanBora123/DuneArchive/catalog"
	"github.com/volkanBora123/DuneArchive/page"
)

func Test(t *testing.T) {
	TestingT(t)
}

type StoreSuite struct {
	dir   string
	cat   *catalog.Catalog
	store *Store
}

var _ = Suite(&StoreSuite{})

const testMaxPages = 2

func (s *StoreSuite) SetUpTest(c *C) {
	s.dir = c.MkDir()
	s.cat = catalog.New(s.dir + "/system_catalog.json")
	s.store = New(s.cat, Config{
		DataDir:  s.dir,
		MaxPages: testMaxPages,
	}, nil)

	c.Assert(s.cat.DefineType(&dune.TypeDef{
		Name: "planet",
		Fields: []*dune.Field{
			{Name: "id", Type: dune.Int},
			{Name: "name", Type: dune.Str},
			{Name: "spice", Type: dune.Int},
		},
		PKIndex: 0,
	}), IsNil)
}

func (s *StoreSuite) create(c *C, id int) error {
	return s.store.CreateRecord("planet", []string{
		strconv.Itoa(id),
		"planet" + strconv.Itoa(id),
		strconv.Itoa(id * 10),
	})
}

func (s *StoreSuite) TestCreateAndSearch(c *C) {
	c.Assert(s.create(c, 7), IsNil)
	out, err := s.store.SearchRecord("planet", "7")
	c.Assert(err, IsNil)
	c.Assert(out, Equals, "7 planet7 70")
}

func (s *StoreSuite) TestCreateUnknownType(c *C) {
	err := s.store.CreateRecord("ghola", []string{"1"})
	c.Assert(err, Equals, dune.ErrNotFound)
}

func (s *StoreSuite) TestSearchUnknownTypeOrMissingFile(c *C) {
	_, err := s.store.SearchRecord("ghola", "1")
	c.Assert(err, Equals, dune.ErrNotFound)

	// Known type but no record ever created: the data file does not
	// exist, and searching must not create it.
	_, err = s.store.SearchRecord("planet", "1")
	c.Assert(err, Equals, dune.ErrNotFound)
	_, statErr := os.Stat(s.dir + "/planet.db")
	c.Assert(os.IsNotExist(statErr), IsTrue)
}

func (s *StoreSuite) TestArityMismatch(c *C) {
	err := s.store.CreateRecord("planet", []string{"1", "arrakis"})
	c.Assert(err, Equals, dune.ErrValidation)
	err = s.store.CreateRecord("planet", []string{"1", "arrakis", "10", "extra"})
	c.Assert(err, Equals, dune.ErrValidation)
}

func (s *StoreSuite) TestBadIntValue(c *C) {
	err := s.store.CreateRecord("planet", []string{"spice", "arrakis", "10"})
	c.Assert(err, Equals, dune.ErrEncoding)
	err = s.store.CreateRecord("planet", []string{"2147483648", "arrakis", "10"})
	c.Assert(err, Equals, dune.ErrEncoding)
}

func (s *StoreSuite) TestDuplicateKey(c *C) {
	c.Assert(s.create(c, 7), IsNil)
	err := s.store.CreateRecord("planet", []string{"7", "other", "0"})
	c.Assert(err, Equals, dune.ErrDuplicateKey)
}

func (s *StoreSuite) TestDeleteThenSearch(c *C) {
	c.Assert(s.create(c, 7), IsNil)
	c.Assert(s.store.DeleteRecord("planet", "7"), IsNil)
	// The tombstone remains on disk, but search sees nothing.
	_, err := s.store.SearchRecord("planet", "7")
	c.Assert(err, Equals, dune.ErrNotFound)
	// Deleting again fails: no live match.
	c.Assert(s.store.DeleteRecord("planet", "7"), Equals, dune.ErrNotFound)
}

func (s *StoreSuite) TestDeletedKeyStaysTaken(c *C) {
	// Uniqueness covers every key ever written, tombstones included.
	c.Assert(s.create(c, 7), IsNil)
	c.Assert(s.store.DeleteRecord("planet", "7"), IsNil)
	err := s.store.CreateRecord("planet", []string{"7", "again", "0"})
	c.Assert(err, Equals, dune.ErrDuplicateKey)
}

func (s *StoreSuite) TestPageAllocation(c *C) {
	// Fill the first page; the next insert must allocate page 1.
	for i := 0; i < page.NumSlots; i++ {
		c.Assert(s.create(c, i), IsNil)
	}
	c.Assert(s.create(c, 100), IsNil)

	td, err := s.cat.Lookup("planet")
	c.Assert(err, IsNil)
	stat, err := os.Stat(s.dir + "/planet.db")
	c.Assert(err, IsNil)
	c.Assert(stat.Size(), Equals, int64(2*page.Size(td)))

	// Records on the second page are found by the linear scan.
	out, err := s.store.SearchRecord("planet", "100")
	c.Assert(err, IsNil)
	c.Assert(out, Equals, "100 planet100 1000")
}

func (s *StoreSuite) TestCapacityLimit(c *C) {
	total := testMaxPages * page.NumSlots
	for i := 0; i < total; i++ {
		c.Assert(s.create(c, i), IsNil)
	}
	err := s.create(c, total)
	c.Assert(err, Equals, dune.ErrCapacity)
}

func (s *StoreSuite) TestTombstoneReuseInFullFile(c *C) {
	total := testMaxPages * page.NumSlots
	for i := 0; i < total; i++ {
		c.Assert(s.create(c, i), IsNil)
	}
	// Free one slot in the middle of a full file; a different key
	// can then take it even though the file cannot grow.
	c.Assert(s.store.DeleteRecord("planet", "13"), IsNil)
	c.Assert(s.create(c, 500), IsNil)
	out, err := s.store.SearchRecord("planet", "500")
	c.Assert(err, IsNil)
	c.Assert(out, Equals, "500 planet500 5000")
	// The file did not grow past the limit.
	td, err := s.cat.Lookup("planet")
	c.Assert(err, IsNil)
	stat, err := os.Stat(s.dir + "/planet.db")
	c.Assert(err, IsNil)
	c.Assert(stat.Size(), Equals, int64(testMaxPages*page.Size(td)))
}

func (s *StoreSuite) TestStrPrimaryKey(c *C) {
	c.Assert(s.cat.DefineType(&dune.TypeDef{
		Name: "house",
		Fields: []*dune.Field{
			{Name: "name", Type: dune.Str},
			{Name: "leader", Type: dune.Str},
		},
		PKIndex: 0,
	}), IsNil)

	c.Assert(s.store.CreateRecord("house", []string{"Atreides", "Leto"}), IsNil)
	out, err := s.store.SearchRecord("house", "Atreides")
	c.Assert(err, IsNil)
	c.Assert(out, Equals, "Atreides Leto")
	// Exact string equality on Str keys.
	_, err = s.store.SearchRecord("house", "atreides")
	c.Assert(err, Equals, dune.ErrNotFound)
}

func (s *StoreSuite) TestScan(c *C) {
	for i := 0; i < 12; i++ {
		c.Assert(s.create(c, i), IsNil)
	}
	c.Assert(s.store.DeleteRecord("planet", "5"), IsNil)

	sc, err := s.store.Scan("planet")
	c.Assert(err, IsNil)
	var ids []int32
	for {
		r, err := sc.Next()
		if err == io.EOF {
			break
		}
		c.Assert(err, IsNil)
		ids = append(ids, r.Values[0].(int32))
	}
	c.Assert(len(ids), Equals, 11)
	// Page order, slot order within a page; the deleted id is gone.
	c.Assert(ids[0], Equals, int32(0))
	c.Assert(ids[4], Equals, int32(4))
	c.Assert(ids[5], Equals, int32(6))
	c.Assert(ids[10], Equals, int32(11))

	// Repeated Close is fine.
	c.Assert(sc.Close(), IsNil)
	c.Assert(sc.Close(), IsNil)
}

func (s *StoreSuite) TestScanMissing(c *C) {
	_, err := s.store.Scan("planet")
	c.Assert(err, Equals, dune.ErrNotFound)
	_, err = s.store.Scan("ghola")
	c.Assert(err, Equals, dune.ErrNotFound)
}
