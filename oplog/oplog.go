// Package oplog appends one line per processed command to the
// operation log: "<unix timestamp>, <command>, <status>".
package oplog

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const DefaultPath = "log.csv"

type Writer struct {
	f *os.File

	// now is swappable in tests.
	now func() time.Time
}

func Open(path string) (*Writer, error) {
	if path == "" {
		path = DefaultPath
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	return &Writer{f: f, now: time.Now}, nil
}

// Log appends one entry.  Writes go straight to the file descriptor,
// so each line is visible as soon as Log returns.
func (w *Writer) Log(command, status string) error {
	line := fmt.Sprintf(
		"%d, %s, %s\n",
		w.now().Unix(),
		strings.TrimSpace(command),
		strings.TrimSpace(status))
	_, err := w.f.WriteString(line)
	return err
}

func (w *Writer) Close() error {
	return w.f.Close()
}
