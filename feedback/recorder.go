// Package feedback appends user reactions to predictions to a flat CSV log.
package feedback

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TimestampLayout is the timestamp format of the first column.
const TimestampLayout = "2006-01-02 15:04:05"

// Fixed leading columns of every row.
var leadingColumns = []string{"timestamp", "predicted_genre", "feedback"}

var ErrUnknownChoice = errors.New("unknown feedback choice")

// Field is one raw input value copied into the log.
type Field struct {
	Name  string
	Value string
}

// Entry is one appended row.
type Entry struct {
	Timestamp time.Time
	Label     string
	Choice    Choice
	Fields    []Field
}

// Recorder appends feedback entries to a store.
type Recorder interface {
	Record(entry Entry) error
}

// CSVLog is an append-only CSV file. Appends are serialized so concurrent
// submissions never interleave rows or write the header twice.
type CSVLog struct {
	path   string
	fields []string
	logger *zap.Logger

	mu      sync.Mutex
	checked bool
}

// NewCSVLog returns a log at path whose rows carry the given input fields after the
// leading columns. The file is created lazily on the first Record.
func NewCSVLog(path string, fields []string, logger *zap.Logger) *CSVLog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVLog{
		path:   path,
		fields: append([]string(nil), fields...),
		logger: logger,
	}
}

// Path returns the file location.
func (l *CSVLog) Path() string {
	return l.path
}

// Header returns the header row written on creation.
func (l *CSVLog) Header() []string {
	return append(append([]string(nil), leadingColumns...), l.fields...)
}

// Record appends entry, writing the header first if the file does not exist yet.
func (l *CSVLog) Record(entry Entry) error {
	if !entry.Choice.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownChoice, entry.Choice)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	_, err := os.Stat(l.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if dir := filepath.Dir(l.path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create feedback dir: %w", err)
			}
		}
		return l.write(entry, true)
	case err != nil:
		return fmt.Errorf("stat feedback log: %w", err)
	}

	if !l.checked {
		l.checkHeader()
		l.checked = true
	}
	return l.write(entry, false)
}

func (l *CSVLog) write(entry Entry, header bool) error {
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open feedback log: %w", err)
	}

	w := csv.NewWriter(file)
	if header {
		if err := w.Write(l.Header()); err != nil {
			file.Close()
			return fmt.Errorf("write feedback header: %w", err)
		}
	}
	if err := w.Write(l.row(entry)); err != nil {
		file.Close()
		return fmt.Errorf("write feedback row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		file.Close()
		return fmt.Errorf("flush feedback log: %w", err)
	}
	return file.Close()
}

// row lays values out in header order. Fields absent from the entry are left empty.
func (l *CSVLog) row(entry Entry) []string {
	values := make(map[string]string, len(entry.Fields))
	for _, f := range entry.Fields {
		values[f.Name] = f.Value
	}
	row := make([]string, 0, len(leadingColumns)+len(l.fields))
	row = append(row, entry.Timestamp.Format(TimestampLayout), entry.Label, entry.Choice.Text())
	for _, name := range l.fields {
		row = append(row, values[name])
	}
	return row
}

// checkHeader warns when an existing file was started with different columns.
func (l *CSVLog) checkHeader() {
	file, err := os.Open(l.path)
	if err != nil {
		return
	}
	defer file.Close()

	existing, err := csv.NewReader(file).Read()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			l.logger.Warn("cannot read feedback log header", zap.String("path", l.path), zap.Error(err))
		}
		return
	}
	if !slices.Equal(existing, l.Header()) {
		l.logger.Warn("feedback log header differs from current schema",
			zap.String("path", l.path),
			zap.Strings("existing", existing),
			zap.Strings("current", l.Header()),
		)
	}
}
