package pipeline

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/amazon-search-scraper/internal/models"
)

func TestJSONLSinkWritesOneRecordPerLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "records.jsonl")

	sink, err := NewJSONLSink(path)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, sink.Write(ctx, record(nil)))
	require.NoError(t, sink.Write(ctx, record(func(r *models.ProductRecord) { r.ASIN = "B0SECOND001" })))
	require.NoError(t, sink.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var asins []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec models.ProductRecord
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		asins = append(asins, rec.ASIN)
	}
	assert.Equal(t, []string{"B0FILTER001", "B0SECOND001"}, asins)
}

type captureSink struct {
	records []*models.ProductRecord
	err     error
	closed  bool
}

func (c *captureSink) Write(_ context.Context, rec *models.ProductRecord) error {
	if c.err != nil {
		return c.err
	}
	c.records = append(c.records, rec)
	return nil
}

func (c *captureSink) Close() error {
	c.closed = true
	return nil
}

func TestMultiSinkFansOut(t *testing.T) {
	first := &captureSink{}
	second := &captureSink{}
	multi := NewMultiSink(first, second)

	require.NoError(t, multi.Write(context.Background(), record(nil)))
	assert.Len(t, first.records, 1)
	assert.Len(t, second.records, 1)

	require.NoError(t, multi.Close())
	assert.True(t, first.closed)
	assert.True(t, second.closed)
}

func TestMultiSinkKeepsWritingPastFailures(t *testing.T) {
	failing := &captureSink{err: errors.New("sink down")}
	healthy := &captureSink{}
	multi := NewMultiSink(failing, healthy)

	err := multi.Write(context.Background(), record(nil))
	assert.Error(t, err)
	assert.Len(t, healthy.records, 1)
}
