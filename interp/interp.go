// Package interp implements the line-oriented command interpreter:
// it tokenizes textual commands, dispatches them to the catalog and
// store, logs every outcome to the operation log, and reduces all
// failures to a single FAILURE sentinel.
package interp

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	dune "github.com/volkanBora123/DuneArchive"
	"github.com/volkanBora123/DuneArchive/catalog"
	"github.com/volkanBora123/DuneArchive/oplog"
	"github.com/volkanBora123/DuneArchive/store"
)

type Status string

const (
	Success Status = "SUCCESS"
	Failure Status = "FAILURE"
)

// Result is the outcome of one command.  Output is non-empty only
// for a successful search.
type Result struct {
	Output string
	Status Status
}

type Interp struct {
	catalog *catalog.Catalog
	store   *store.Store
	oplog   *oplog.Writer
	logger  *zap.Logger
}

// New builds an interpreter.  log may be nil when no operation log
// is wanted (e.g. in tests).
func New(cat *catalog.Catalog, st *store.Store, log *oplog.Writer, logger *zap.Logger) *Interp {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interp{
		catalog: cat,
		store:   st,
		oplog:   log,
		logger:  logger,
	}
}

// Process executes one non-blank command line.  Command keywords are
// matched case-insensitively; type names and values keep their case.
func (in *Interp) Process(line string) Result {
	res := in.dispatch(line)
	if in.oplog != nil {
		if err := in.oplog.Log(line, string(res.Status)); err != nil {
			in.logger.Warn("oplog write failed", zap.Error(err))
		}
	}
	return res
}

func (in *Interp) dispatch(line string) Result {
	tokens := strings.Fields(line)
	if len(tokens) < 2 {
		return Result{Status: Failure}
	}
	verb := strings.ToLower(tokens[0])
	noun := strings.ToLower(tokens[1])
	switch {
	case verb == "create" && noun == "type":
		return in.createType(tokens)
	case verb == "create" && noun == "record":
		return in.createRecord(tokens)
	case verb == "search" && noun == "record":
		return in.searchRecord(tokens)
	case verb == "delete" && noun == "record":
		return in.deleteRecord(tokens)
	default:
		in.logger.Debug("unknown command", zap.String("line", line))
		return Result{Status: Failure}
	}
}

// createType handles:
//
//	create type <name> <fieldCount> <pkIndex> <f1> <t1> ... <fN> <tN>
//
// pkIndex is 1-based on the wire and 0-based internally.
func (in *Interp) createType(tokens []string) Result {
	if len(tokens) < 6 {
		return Result{Status: Failure}
	}
	fieldCount, err := strconv.Atoi(tokens[3])
	if err != nil {
		return Result{Status: Failure}
	}
	pkIndex, err := strconv.Atoi(tokens[4])
	if err != nil {
		return Result{Status: Failure}
	}
	if fieldCount < 1 || len(tokens) != 5+2*fieldCount {
		return Result{Status: Failure}
	}
	td := &dune.TypeDef{
		Name:    tokens[2],
		PKIndex: pkIndex - 1,
	}
	for i := 0; i < fieldCount; i++ {
		t, ok := dune.ParseType(tokens[6+2*i])
		if !ok {
			return Result{Status: Failure}
		}
		td.Fields = append(td.Fields, &dune.Field{
			Name: tokens[5+2*i],
			Type: t,
		})
	}
	if err := in.catalog.DefineType(td); err != nil {
		in.logger.Debug("create type failed",
			zap.String("type", td.Name), zap.Error(err))
		return Result{Status: Failure}
	}
	return Result{Status: Success}
}

func (in *Interp) createRecord(tokens []string) Result {
	if len(tokens) < 4 {
		return Result{Status: Failure}
	}
	if err := in.store.CreateRecord(tokens[2], tokens[3:]); err != nil {
		in.logger.Debug("create record failed",
			zap.String("type", tokens[2]), zap.Error(err))
		return Result{Status: Failure}
	}
	return Result{Status: Success}
}

func (in *Interp) searchRecord(tokens []string) Result {
	if len(tokens) < 4 {
		return Result{Status: Failure}
	}
	out, err := in.store.SearchRecord(tokens[2], tokens[3])
	if err != nil {
		in.logger.Debug("search record failed",
			zap.String("type", tokens[2]),
			zap.String("pk", tokens[3]),
			zap.Error(err))
		return Result{Status: Failure}
	}
	return Result{Output: out, Status: Success}
}

func (in *Interp) deleteRecord(tokens []string) Result {
	if len(tokens) < 4 {
		return Result{Status: Failure}
	}
	if err := in.store.DeleteRecord(tokens[2], tokens[3]); err != nil {
		in.logger.Debug("delete record failed",
			zap.String("type", tokens[2]),
			zap.String("pk", tokens[3]),
			zap.Error(err))
		return Result{Status: Failure}
	}
	return Result{Status: Success}
}

// Run processes each non-blank line from r in order and returns the
// successful search outputs, one entry per hit.
func (in *Interp) Run(r io.Reader) ([]string, error) {
	var outputs []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		res := in.Process(line)
		if res.Status == Success && res.Output != "" {
			outputs = append(outputs, res.Output)
		}
	}
	return outputs, scanner.Err()
}
