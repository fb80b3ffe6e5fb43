package jobs

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/amazon-search-scraper/internal/config"
	"github.com/maltedev/amazon-search-scraper/internal/crawler"
	"github.com/maltedev/amazon-search-scraper/internal/models"
)

// stubFetcher serves one small result page per keyword, then reports the
// end of results. Each task gets its own instance via Deps.NewFetcher.
type stubFetcher struct {
	calls  int
	closed bool
}

func (s *stubFetcher) FetchPage(_ context.Context, task *models.SearchTask, pageIndex int) *models.PageFetchResult {
	s.calls++
	if s.calls > 1 {
		return &models.PageFetchResult{PageIndex: pageIndex, Status: models.PageEmpty}
	}
	asin := fmt.Sprintf("B0%08X", hash(task.Keyword))
	html := fmt.Sprintf(`<html><body><div class="s-main-slot">
		<div data-component-type="s-search-result" data-asin="%s">
			<h2><a class="a-link-normal s-link-style a-text-normal" href="/dp/%s"><span>%s</span></a></h2>
		</div>
	</div></body></html>`, asin, asin, task.Keyword)
	return &models.PageFetchResult{PageIndex: pageIndex, Status: models.PageOK, RawContent: html}
}

func (s *stubFetcher) FetchDetail(context.Context, *models.SearchTask, string) (string, error) {
	return "<html></html>", nil
}

func (s *stubFetcher) Close() {
	s.closed = true
}

func hash(s string) uint32 {
	var h uint32
	for _, c := range s {
		h = h*31 + uint32(c)
	}
	return h
}

type syncSink struct {
	mu      sync.Mutex
	records []*models.ProductRecord
}

func (s *syncSink) Write(_ context.Context, rec *models.ProductRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *syncSink) Close() error { return nil }

func (s *syncSink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func waitForJob(t *testing.T, m *Manager, id string) *Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, ok := m.Get(id)
		require.True(t, ok)
		if job.Status == JobCompleted || job.Status == JobFailed {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job did not finish in time")
	return nil
}

func TestManagerRunsEveryKeyword(t *testing.T) {
	sink := &syncSink{}
	var mu sync.Mutex
	var fetchers []*stubFetcher

	m := NewManager(Deps{
		NewFetcher: func() Fetcher {
			f := &stubFetcher{}
			mu.Lock()
			fetchers = append(fetchers, f)
			mu.Unlock()
			return f
		},
		Sink:        sink,
		Concurrency: 2,
	})

	in := &config.Input{Keywords: []string{"usb hub", "hdmi cable", "webcam"}}
	in.ApplyDefaults()

	job := m.Submit(context.Background(), in)
	assert.NotEmpty(t, job.ID)

	finished := waitForJob(t, m, job.ID)
	assert.Equal(t, JobCompleted, finished.Status)
	require.Len(t, finished.Summaries, 3)

	keywords := make(map[string]crawler.Status)
	for _, s := range finished.Summaries {
		keywords[s.Keyword] = s.Status
	}
	for _, kw := range in.Keywords {
		assert.Equal(t, crawler.StatusDone, keywords[kw])
	}
	assert.Equal(t, 3, sink.len())

	// Every fetcher was released back to the pool.
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, fetchers, 3)
	for _, f := range fetchers {
		assert.True(t, f.closed)
	}
}

func TestManagerGetReturnsSnapshot(t *testing.T) {
	m := NewManager(Deps{
		NewFetcher: func() Fetcher { return &stubFetcher{} },
		Sink:       &syncSink{},
	})

	_, ok := m.Get("no-such-job")
	assert.False(t, ok)

	in := &config.Input{Keywords: []string{"usb hub"}}
	in.ApplyDefaults()
	job := m.Submit(context.Background(), in)

	snapshot, ok := m.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, job.ID, snapshot.ID)
	assert.Equal(t, []string{"usb hub"}, snapshot.Keywords)

	// Mutating the snapshot must not leak into the stored job.
	snapshot.Keywords = nil
	again, _ := m.Get(job.ID)
	assert.Equal(t, []string{"usb hub"}, again.Keywords)

	waitForJob(t, m, job.ID)
}

func TestManagerKeywordFailureDoesNotFailJob(t *testing.T) {
	m := NewManager(Deps{
		NewFetcher: func() Fetcher { return &stubFetcher{} },
		Sink:       &syncSink{},
	})

	// Force an invalid task past the input layer's clamping.
	in := &config.Input{Keywords: []string{"usb hub"}}
	in.ApplyDefaults()
	in.MaxPages = 99 // invalid at the task level

	job := m.Submit(context.Background(), in)
	finished := waitForJob(t, m, job.ID)

	assert.Equal(t, JobCompleted, finished.Status)
	require.Len(t, finished.Summaries, 1)
	assert.Equal(t, crawler.StatusAborted, finished.Summaries[0].Status)
}
