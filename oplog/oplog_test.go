package oplog

import (
	"os"
	"strings"
	"testing"
	"time"

	. "gopkg.in/check.v1"
)

func Test(t *testing.T) {
	TestingT(t)
}

type OplogSuite struct{}

var _ = Suite(&OplogSuite{})

func (s *OplogSuite) TestLogFormat(c *C) {
	path := c.MkDir() + "/log.csv"
	w, err := Open(path)
	c.Assert(err, IsNil)
	w.now = func() time.Time { return time.Unix(1700000000, 0) }

	c.Assert(w.Log("create type house 2 1 name str name2 str", "SUCCESS"), IsNil)
	c.Assert(w.Log("  search record house Atreides\n", "FAILURE"), IsNil)
	c.Assert(w.Close(), IsNil)

	b, err := os.ReadFile(path)
	c.Assert(err, IsNil)
	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	c.Assert(lines, DeepEquals, []string{
		"1700000000, create type house 2 1 name str name2 str, SUCCESS",
		"1700000000, search record house Atreides, FAILURE",
	})
}

func (s *OplogSuite) TestAppendsAcrossOpens(c *C) {
	path := c.MkDir() + "/log.csv"
	for i := 0; i < 2; i++ {
		w, err := Open(path)
		c.Assert(err, IsNil)
		w.now = func() time.Time { return time.Unix(1, 0) }
		c.Assert(w.Log("cmd", "SUCCESS"), IsNil)
		c.Assert(w.Close(), IsNil)
	}
	b, err := os.ReadFile(path)
	c.Assert(err, IsNil)
	c.Assert(string(b), Equals, "1, cmd, SUCCESS\n1, cmd, SUCCESS\n")
}
