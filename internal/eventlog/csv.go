// SPDX-FileCopyrightText: 2025 Wagomu project.
// SPDX-License-Identifier: EPL-2.0

package eventlog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/wagomu-sim/elastisim-scheduler/pkg/logging"
)

// DefaultPath is the default CSV output location: "data/output/event.csv".
const DefaultPath = "data/output/event.csv"

var csvHeader = []string{"Time", "Event", "Jobs", "Nodes"}

// CSVSink appends one row per event to a CSV file, writing the header once on file
// creation. It is safe for concurrent use, though the driver only ever calls it from one
// goroutine per session.
type CSVSink struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
	logger logging.Logger
}

// NewCSVSink opens (creating if necessary) the CSV file at path and writes the header row
// if the file is new.
func NewCSVSink(path string, logger logging.Logger) (*CSVSink, error) {
	if logger == nil {
		logger = logging.NewLogger(nil)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("eventlog: create output dir: %w", err)
		}
	}

	_, statErr := os.Stat(path)
	isNew := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("eventlog: open %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if isNew {
		if err := w.Write(csvHeader); err != nil {
			f.Close()
			return nil, fmt.Errorf("eventlog: write header: %w", err)
		}
		w.Flush()
	}

	return &CSVSink{file: f, writer: w, logger: logger.With("component", "eventlog")}, nil
}

// Record writes one row. A failure is logged and swallowed — best-effort, never
// aborting the tick that produced the event.
func (s *CSVSink) Record(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := []string{
		formatTime(event.Time),
		string(event.Kind),
		event.Jobs,
		formatNodes(event.Nodes),
	}
	if err := s.writer.Write(row); err != nil {
		s.logger.Error("failed to write event row", "error", err, "event", event.Kind)
		return
	}
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.logger.Error("failed to flush event log", "error", err)
	}
}

// Close flushes and closes the underlying file.
func (s *CSVSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writer.Flush()
	return s.file.Close()
}

func formatTime(t float64) string {
	return strconv.FormatFloat(t, 'f', -1, 64)
}

func formatNodes(ids []int) string {
	if len(ids) == 0 {
		return "[]"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("N%d", id)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
