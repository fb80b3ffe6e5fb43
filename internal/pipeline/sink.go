package pipeline

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/maltedev/amazon-search-scraper/internal/models"
)

// RecordSink is the append-only emission target for accepted records.
// One record per call; batching is a sink-internal concern.
type RecordSink interface {
	Write(ctx context.Context, rec *models.ProductRecord) error
	Close() error
}

// JSONLSink appends one JSON object per line to a file.
type JSONLSink struct {
	file   *os.File
	writer *bufio.Writer
	mu     sync.Mutex
}

func NewJSONLSink(filename string) (*JSONLSink, error) {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output file: %w", err)
	}

	return &JSONLSink{
		file:   f,
		writer: bufio.NewWriter(f),
	}, nil
}

func (s *JSONLSink) Write(_ context.Context, rec *models.ProductRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if _, err := s.writer.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

func (s *JSONLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return s.file.Close()
}

// MultiSink fans each record out to every configured sink. A failing
// sink does not stop the others; errors are joined.
type MultiSink struct {
	sinks []RecordSink
}

func NewMultiSink(sinks ...RecordSink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) Write(ctx context.Context, rec *models.ProductRecord) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Write(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
