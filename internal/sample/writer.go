// Package sample writes one CSV row per sampled frame.
package sample

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/frudas24/touchsampler/internal/sampler"
)

// NewSessionID returns a fresh session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// Writer emits rows `[timestamp,] imagePath, actionId, ...`.
type Writer struct {
	mu        sync.Mutex
	csv       *csv.Writer
	closer    io.Closer
	path      string
	timestamp bool
	rows      int
	log       logrus.FieldLogger
}

// NewWriter writes rows to w.
func NewWriter(w io.Writer, timestamp bool, log logrus.FieldLogger) *Writer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Writer{
		csv:       csv.NewWriter(w),
		timestamp: timestamp,
		log:       log.WithField("component", "sample"),
	}
}

// Create opens <dir>/<sessionID>.csv for appending.
func Create(dir, sessionID string, timestamp bool, log logrus.FieldLogger) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("sample: %w", err)
	}
	path := filepath.Join(dir, sessionID+".csv")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("sample: %w", err)
	}
	w := NewWriter(f, timestamp, log)
	w.closer = f
	w.path = path
	return w, nil
}

// Path returns the file path, or "" for writers over a plain io.Writer.
func (w *Writer) Path() string {
	return w.path
}

// Write appends one row and flushes it.
func (w *Writer) Write(at time.Time, imagePath string, actions []int) error {
	row := make([]string, 0, len(actions)+2)
	if w.timestamp {
		row = append(row, FormatTimestamp(at))
	}
	row = append(row, imagePath)
	for _, id := range actions {
		row = append(row, strconv.Itoa(id))
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.csv.Write(row); err != nil {
		return fmt.Errorf("sample: %w", err)
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return fmt.Errorf("sample: %w", err)
	}
	w.rows++
	return nil
}

// HandleTick writes a sampler tick; it is subscribed to sampler.TopicTick.
func (w *Writer) HandleTick(t sampler.Tick) {
	if err := w.Write(t.Time, t.ImagePath, t.Actions); err != nil {
		w.log.WithError(err).WithField("seq", t.Seq).Error("sample: write failed")
	}
}

// Rows returns the number of rows written.
func (w *Writer) Rows() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rows
}

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.csv.Flush()
	if w.closer == nil {
		return w.csv.Error()
	}
	return w.closer.Close()
}

// FormatTimestamp renders t as Unix seconds with microseconds.
func FormatTimestamp(t time.Time) string {
	return strconv.FormatFloat(float64(t.UnixMicro())/1e6, 'f', 6, 64)
}
