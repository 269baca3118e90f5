// Package app holds the services behind the HTTP boundary: job submission and
// execution, archive reconciliation, and authentication.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/arkive-app/arkive/internal/capture"
	"github.com/arkive-app/arkive/internal/constants"
	"github.com/arkive-app/arkive/internal/domain"
	"github.com/arkive-app/arkive/internal/filesystem"
	"github.com/arkive-app/arkive/internal/httpclient"
	"github.com/arkive-app/arkive/internal/jobs"
	"github.com/arkive-app/arkive/internal/logger"
	"github.com/arkive-app/arkive/internal/queue"
	"github.com/arkive-app/arkive/internal/store"
)

var (
	ErrInvalidURL     = errors.New("invalid url")
	ErrUnknownJobMode = errors.New("unknown job mode")
	ErrJobNotFound    = errors.New("job not found")
)

// SubmitParams is one capture request from the user. Options are form field
// keys; they are translated to CLI flags through the allow-list tables and
// anything unknown is dropped.
type SubmitParams struct {
	Mode    domain.JobMode
	URL     string
	Title   string
	Options []string
	Tags    []string
	MaxRes  string
}

// JobService accepts capture jobs, runs them through the queue, and records
// finished artifacts in the store.
type JobService struct {
	db         *store.DB
	registry   *jobs.Registry
	queue      *queue.Queue
	titles     *httpclient.Client
	capturers  map[domain.JobMode]capture.Capturer
	archiveDir string
	log        *logger.Logger
}

func NewJobService(
	db *store.DB,
	registry *jobs.Registry,
	q *queue.Queue,
	titles *httpclient.Client,
	capturers map[domain.JobMode]capture.Capturer,
	archiveDir string,
	log *logger.Logger,
) *JobService {
	return &JobService{
		db:         db,
		registry:   registry,
		queue:      q,
		titles:     titles,
		capturers:  capturers,
		archiveDir: archiveDir,
		log:        log.WithComponent("jobs.service"),
	}
}

// Submit validates the request, registers a pending job, and hands it to the
// queue. It returns the job id immediately; execution is asynchronous.
func (s *JobService) Submit(params SubmitParams) (string, error) {
	if _, ok := s.capturers[params.Mode]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownJobMode, params.Mode)
	}

	url := normalizeURL(params.URL)
	if !httpclient.IsValidHTTPURL(url) {
		return "", fmt.Errorf("%w: %s", ErrInvalidURL, params.URL)
	}

	var flags []string
	switch params.Mode {
	case domain.JobModeWebpage:
		flags = constants.FilterOptions(params.Options, constants.MonolithOptions)
	case domain.JobModeVideo:
		flags = constants.FilterOptions(params.Options, constants.YtdlpOptions)
	}

	job := domain.Job{
		ID:     uuid.NewString(),
		Mode:   params.Mode,
		URL:    url,
		Title:  params.Title,
		Flags:  flags,
		Tags:   params.Tags,
		MaxRes: params.MaxRes,
	}
	if err := s.registry.Create(job); err != nil {
		return "", err
	}

	s.queue.Enqueue(func() {
		s.run(job)
	})
	return job.ID, nil
}

// Retry resubmits a failed job's parameters as a fresh job. The failed entry
// is consumed; a second retry of the same id misses.
func (s *JobService) Retry(id string) (string, error) {
	failed, ok := s.registry.TakeFailed(id)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}

	failed.ID = uuid.NewString()
	if err := s.registry.Create(failed); err != nil {
		return "", err
	}

	s.queue.Enqueue(func() {
		s.run(failed)
	})
	s.log.Info("Job retried", "old_job_id", id, "job_id", failed.ID)
	return failed.ID, nil
}

// Clear drops a failed job without retrying it.
func (s *JobService) Clear(id string) {
	s.registry.ClearFailed(id)
}

// BulkImport submits one webpage job per URL, sharing a tag set. Invalid URLs
// are skipped and reported; valid ones are queued regardless.
func (s *JobService) BulkImport(urls []string, tags []string) (submitted []string, skipped []string) {
	for _, url := range urls {
		id, err := s.Submit(SubmitParams{
			Mode: domain.JobModeWebpage,
			URL:  url,
			Tags: tags,
		})
		if err != nil {
			s.log.Warn("Bulk import skipped url", "url", url, "error", err)
			skipped = append(skipped, url)
			continue
		}
		submitted = append(submitted, id)
	}
	return submitted, skipped
}

// run executes one job end to end. Every failure path lands the job in the
// failed state; the queue releases the slot when run returns.
func (s *JobService) run(job domain.Job) {
	log := s.log.WithJob(job.ID, string(job.Mode))

	if err := s.registry.SetStatus(job.ID, domain.JobStatusProcessing); err != nil {
		log.Error("Failed to mark job processing", "error", err)
		return
	}

	ctx := context.Background()

	title := job.Title
	if title == "" {
		resolved, err := s.titles.DocumentTitle(ctx, job.URL)
		if err != nil {
			// The URL stands in for the title; the job still runs.
			log.Warn("Title resolution failed", "error", err)
		}
		title = resolved
	}

	filename := filesystem.TimestampedFilename(time.Now().UnixMilli(), title)

	artifact, err := s.capturers[job.Mode].Capture(ctx, capture.Request{
		URL:      job.URL,
		Flags:    job.Flags,
		Dir:      s.archiveDir,
		Filename: filename,
		MaxRes:   job.MaxRes,
	})
	if err != nil {
		log.Error("Capture failed", "error", err)
		s.fail(job.ID, log)
		return
	}

	size, err := filesystem.PathSize(filepath.Join(s.archiveDir, artifact))
	if err != nil {
		log.Error("Failed to size artifact", "artifact", artifact, "error", err)
		s.fail(job.ID, log)
		return
	}

	pageID, err := s.db.AddPage(domain.PartialPage{
		Title:    title,
		URL:      job.URL,
		Filename: artifact,
		Size:     size,
		IsMedia:  filesystem.IsMediaFile(artifact),
	})
	if err != nil {
		log.Error("Failed to record page", "artifact", artifact, "error", err)
		s.fail(job.ID, log)
		return
	}

	if len(job.Tags) > 0 {
		if err := s.db.SetTags(pageID, job.Tags); err != nil {
			log.Error("Failed to set tags", "page_id", pageID, "error", err)
			s.fail(job.ID, log)
			return
		}
	}

	if err := s.registry.SetStatus(job.ID, domain.JobStatusCompleted); err != nil {
		log.Error("Failed to mark job completed", "error", err)
		return
	}
	log.Info("Job completed", "artifact", artifact, "size", size)
}

func (s *JobService) fail(id string, log *logger.Logger) {
	if err := s.registry.SetStatus(id, domain.JobStatusFailed); err != nil {
		log.Error("Failed to mark job failed", "error", err)
	}
}

// normalizeURL defaults bare hostnames to https.
func normalizeURL(url string) string {
	if httpclient.IsValidHTTPURL(url) {
		return url
	}
	return "https://" + url
}
