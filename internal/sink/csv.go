package sink

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/worklog/worklog/internal/sampler"
)

// LogFileName returns the data file name for the given day.
func LogFileName(day time.Time) string {
	return day.Format("2006-01-02") + ".worklog"
}

// CSV appends one minimally quoted row per sample:
// title, program, idle seconds, timestamp.
type CSV struct {
	path   string
	closer io.Closer
	w      *csv.Writer
}

// OpenCSV opens dir/<day>.worklog for appending, creating dir if needed.
// The file is chosen once; a run that crosses midnight keeps writing to the
// file of the day it started.
func OpenCSV(dir string, day time.Time) (*CSV, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "create log directory")
	}
	path := filepath.Join(dir, LogFileName(day))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.Wrap(err, "open log file")
	}
	c := NewCSV(f)
	c.path = path
	c.closer = f
	return c, nil
}

// NewCSV writes to w. Close flushes but does not close w.
func NewCSV(w io.Writer) *CSV {
	return &CSV{w: csv.NewWriter(w)}
}

// Path returns the file being written, or "" for a plain writer.
func (c *CSV) Path() string {
	return c.path
}

// Write appends and flushes one row.
func (c *CSV) Write(s sampler.Sample) error {
	record := []string{
		s.Title(),
		s.ProgramName,
		formatDecimal(s.IdleSeconds),
		formatDecimal(s.Timestamp),
	}
	if err := c.w.Write(record); err != nil {
		return errors.Wrap(err, "write record")
	}
	c.w.Flush()
	return errors.Wrap(c.w.Error(), "flush record")
}

func (c *CSV) Close() error {
	c.w.Flush()
	err := c.w.Error()
	if c.closer != nil {
		if cerr := c.closer.Close(); err == nil {
			err = cerr
		}
	}
	return errors.Wrap(err, "close log file")
}

// formatDecimal prints the shortest exact representation and always keeps a
// decimal point, so 0 is written as "0.0".
func formatDecimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}
