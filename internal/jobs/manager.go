// Package jobs tracks submitted crawl jobs and runs them in the
// background over the crawl orchestrator. Keywords within a job run
// concurrently, bounded by the browser-context pool size; each keyword
// owns its own state and failures never cross keyword boundaries.
package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/maltedev/amazon-search-scraper/internal/config"
	"github.com/maltedev/amazon-search-scraper/internal/crawler"
	"github.com/maltedev/amazon-search-scraper/internal/enricher"
	"github.com/maltedev/amazon-search-scraper/internal/metrics"
	"github.com/maltedev/amazon-search-scraper/internal/models"
	"github.com/maltedev/amazon-search-scraper/internal/pipeline"
)

type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Job is one submitted crawl request and its progress.
type Job struct {
	ID          string             `json:"id"`
	Status      JobStatus          `json:"status"`
	Keywords    []string           `json:"keywords"`
	Country     string             `json:"country"`
	Summaries   []*crawler.Summary `json:"summaries,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	StartedAt   *time.Time         `json:"started_at,omitempty"`
	CompletedAt *time.Time         `json:"completed_at,omitempty"`
	Error       string             `json:"error,omitempty"`
}

// Fetcher is a per-task navigation capability with a releasable slot.
type Fetcher interface {
	crawler.Fetcher
	Close()
}

// Deps wires the manager to the crawl engine. NewFetcher must return a
// fresh fetcher per keyword task; the manager closes it when the task
// finishes so the browser-context slot returns to the pool.
type Deps struct {
	NewFetcher  func() Fetcher
	Sink        pipeline.RecordSink
	Metrics     *metrics.Metrics
	Concurrency int
	Crawl       crawler.Options
}

type Manager struct {
	deps   Deps
	logger *slog.Logger

	mu   sync.RWMutex
	jobs map[string]*Job
}

func NewManager(deps Deps) *Manager {
	if deps.Concurrency < 1 {
		deps.Concurrency = 1
	}
	return &Manager{
		deps:   deps,
		jobs:   make(map[string]*Job),
		logger: slog.Default().With("component", "job_manager"),
	}
}

// Submit registers a crawl job and starts it in the background. The
// supplied context bounds the whole job; cancelling it aborts remaining
// keywords while already-collected records are still emitted.
func (m *Manager) Submit(ctx context.Context, in *config.Input) *Job {
	job := &Job{
		ID:        uuid.New().String(),
		Status:    JobPending,
		Keywords:  in.Keywords,
		Country:   in.Country,
		CreatedAt: time.Now(),
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	go m.run(ctx, job, in.Tasks())

	m.logger.Info("job submitted", "id", job.ID, "keywords", len(in.Keywords))
	return job
}

// Get returns a snapshot of a job by ID.
func (m *Manager) Get(id string) (*Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, ok := m.jobs[id]
	if !ok {
		return nil, false
	}
	snapshot := *job
	snapshot.Summaries = append([]*crawler.Summary(nil), job.Summaries...)
	return &snapshot, true
}

func (m *Manager) run(ctx context.Context, job *Job, tasks []*models.SearchTask) {
	now := time.Now()
	m.update(job, func(j *Job) {
		j.Status = JobRunning
		j.StartedAt = &now
	})

	sem := make(chan struct{}, m.deps.Concurrency)
	var wg sync.WaitGroup

	for _, task := range tasks {
		wg.Add(1)
		go func(task *models.SearchTask) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			m.runTask(ctx, job, task)
		}(task)
	}

	wg.Wait()

	done := time.Now()
	m.update(job, func(j *Job) {
		j.Status = JobCompleted
		j.CompletedAt = &done
		if ctx.Err() != nil {
			j.Error = ctx.Err().Error()
		}
	})
	m.logger.Info("job finished", "id", job.ID)
}

func (m *Manager) runTask(ctx context.Context, job *Job, task *models.SearchTask) {
	fetcher := m.deps.NewFetcher()
	defer fetcher.Close()

	enr := enricher.New(fetcher, m.deps.Metrics)
	orch := crawler.New(fetcher, enr, m.deps.Metrics, m.deps.Crawl)

	summary, err := orch.Run(ctx, task, m.deps.Sink)
	if err != nil {
		// A failed keyword never fails the job; the absence of records
		// is the signal.
		m.logger.Error("keyword crawl failed", "job", job.ID, "keyword", task.Keyword, "error", err)
		summary = &crawler.Summary{Keyword: task.Keyword, Status: crawler.StatusAborted}
	}

	m.update(job, func(j *Job) {
		j.Summaries = append(j.Summaries, summary)
	})
}

func (m *Manager) update(job *Job, fn func(*Job)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(job)
}
