package services

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/address-normalizer/app/models"
	"github.com/address-normalizer/app/requests"
	"github.com/address-normalizer/helpers/utils"
	"github.com/address-normalizer/internal/parser"
)

var (
	// ErrUnsupportedImportType rejects batches other than customer or vendor
	// imports.
	ErrUnsupportedImportType = errors.New("address parsing only supported for 'customer' and 'vendor' import types")
	ErrTooManyAddresses      = errors.New("too many addresses in batch")
	ErrJobNotFound           = errors.New("job not found")
	ErrJobNotDone            = errors.New("job has not finished")
)

// Job states.
const (
	JobQueued  = "queued"
	JobRunning = "running"
	JobDone    = "done"
	JobFailed  = "failed"
)

var supportedImportTypes = map[string]bool{
	"customer": true,
	"vendor":   true,
}

// JobStatus tracks an asynchronous batch.
type JobStatus struct {
	JobID      string    `json:"job_id"`
	ImportType string    `json:"import_type"`
	Status     string    `json:"status"`
	Progress   float64   `json:"progress"`
	Processed  int       `json:"processed"`
	Total      int       `json:"total"`
	Message    string    `json:"message,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// AddressServiceConfig sizes the batch pool. JobTTL is how long finished
// jobs stay retrievable; zero keeps them until the process exits.
type AddressServiceConfig struct {
	Workers      int
	MaxAddresses int
	JobTTL       time.Duration
}

// AddressService runs the address pipeline for single requests, batches and
// background jobs.
type AddressService struct {
	parser       *parser.AddressParser
	cache        ICacheService
	logger       *zap.Logger
	workers      int
	maxAddresses int
	jobTTL       time.Duration
	startTime    time.Time
	now          func() time.Time

	parsed  atomic.Int64
	failed  atomic.Int64
	batches atomic.Int64

	mu         sync.RWMutex
	jobs       map[string]*JobStatus
	jobResults map[string]*models.BatchOutcome
}

// NewAddressService wires the service. cache may be nil.
func NewAddressService(p *parser.AddressParser, cache ICacheService, cfg AddressServiceConfig, logger *zap.Logger) *AddressService {
	if cfg.Workers < 1 {
		cfg.Workers = runtime.NumCPU()
	}
	return &AddressService{
		parser:       p,
		cache:        cache,
		logger:       logger,
		workers:      cfg.Workers,
		maxAddresses: cfg.MaxAddresses,
		jobTTL:       cfg.JobTTL,
		startTime:    time.Now(),
		now:          time.Now,
		jobs:         make(map[string]*JobStatus),
		jobResults:   make(map[string]*models.BatchOutcome),
	}
}

// ParseAddress normalizes one address, reading through the cache.
func (as *AddressService) ParseAddress(ctx context.Context, raw string, opts requests.ParseOptions) (*models.ParseOutcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return as.parse(ctx, raw, !opts.SkipCache), nil
}

func (as *AddressService) parse(ctx context.Context, raw string, useCache bool) *models.ParseOutcome {
	useCache = useCache && as.cache != nil
	key := CacheKey(raw)

	if useCache {
		outcome, found, err := as.cache.Get(ctx, key)
		if err != nil {
			as.logger.Warn("cache read failed", zap.Error(err))
		} else if found {
			as.parsed.Add(1)
			return outcome
		}
	}

	outcome := as.parser.ParseAddress(raw)
	as.parsed.Add(1)
	if parser.Failed(outcome) {
		as.failed.Add(1)
	}

	if useCache {
		if err := as.cache.Set(ctx, key, outcome); err != nil {
			as.logger.Warn("cache write failed", zap.Error(err))
		}
	}
	return outcome
}

// ValidateImportType accepts customer and vendor, case-insensitively.
func ValidateImportType(importType string) error {
	if !supportedImportTypes[strings.ToLower(strings.TrimSpace(importType))] {
		return fmt.Errorf("%w: %q", ErrUnsupportedImportType, importType)
	}
	return nil
}

func (as *AddressService) validateBatch(importType string, items []models.AddressItem) error {
	if err := ValidateImportType(importType); err != nil {
		return err
	}
	if as.maxAddresses > 0 && len(items) > as.maxAddresses {
		return fmt.Errorf("%w: %d > %d", ErrTooManyAddresses, len(items), as.maxAddresses)
	}
	return nil
}

// ParseBatch parses every row on a bounded worker pool. A failing row never
// affects its siblings. Results come back ordered by row id.
func (as *AddressService) ParseBatch(ctx context.Context, importType string, items []models.AddressItem) (*models.BatchOutcome, error) {
	if err := as.validateBatch(importType, items); err != nil {
		return nil, err
	}

	start := time.Now()
	out, err := as.processBatch(ctx, items, nil)
	if err != nil {
		return nil, err
	}

	as.logger.Info("batch parsed",
		zap.String("import_type", importType),
		zap.Int("total", len(items)),
		zap.Int("processed", out.ProcessedCount),
		zap.Int("errors", out.ErrorCount),
		zap.Duration("elapsed", time.Since(start)))
	return out, nil
}

func (as *AddressService) processBatch(ctx context.Context, items []models.AddressItem, onRow func()) (*models.BatchOutcome, error) {
	results := make([]models.AddressResult, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(as.workers)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			results[i] = as.parseRow(gctx, item)
			if onRow != nil {
				onRow()
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RowID < results[j].RowID
	})

	out := &models.BatchOutcome{Success: true, Results: results}
	for _, r := range results {
		if r.Success {
			out.ProcessedCount++
		} else {
			out.ErrorCount++
		}
	}
	as.batches.Add(1)
	return out, nil
}

// parseRow turns any fault while parsing into that row's failure.
func (as *AddressService) parseRow(ctx context.Context, item models.AddressItem) (res models.AddressResult) {
	defer func() {
		if r := recover(); r != nil {
			as.failed.Add(1)
			as.logger.Error("address row panicked",
				zap.Int("row_id", item.RowID),
				zap.Any("panic", r))
			res = models.NewFailureResult(item, fmt.Sprintf("Parsing error: %v", r))
		}
	}()

	outcome := as.parse(ctx, item.Address, true)
	if parser.Failed(outcome) {
		return models.NewFailureResult(item, parser.FailureMessage)
	}
	return models.NewSuccessResult(item, outcome)
}

// SubmitJob validates a batch and processes it in the background.
func (as *AddressService) SubmitJob(importType string, items []models.AddressItem) (*JobStatus, error) {
	if err := as.validateBatch(importType, items); err != nil {
		return nil, err
	}

	now := as.now()
	job := &JobStatus{
		JobID:      utils.GenerateUUID(),
		ImportType: strings.ToLower(importType),
		Status:     JobQueued,
		Total:      len(items),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	as.mu.Lock()
	as.jobs[job.JobID] = job
	snapshot := *job
	as.mu.Unlock()

	go as.runJob(job.JobID, items)
	return &snapshot, nil
}

func (as *AddressService) runJob(jobID string, items []models.AddressItem) {
	as.updateJob(jobID, func(j *JobStatus) { j.Status = JobRunning })

	var done atomic.Int64
	total := len(items)
	out, err := as.processBatch(context.Background(), items, func() {
		n := int(done.Add(1))
		as.updateJob(jobID, func(j *JobStatus) {
			if n > j.Processed {
				j.Processed = n
				j.Progress = float64(n) / float64(total)
			}
		})
	})
	if err != nil {
		as.updateJob(jobID, func(j *JobStatus) {
			j.Status = JobFailed
			j.Message = err.Error()
		})
		as.logger.Error("batch job failed", zap.String("job_id", jobID), zap.Error(err))
		return
	}

	as.mu.Lock()
	as.jobResults[jobID] = out
	if j, ok := as.jobs[jobID]; ok {
		j.Status = JobDone
		j.Processed = total
		j.Progress = 1
		j.Message = fmt.Sprintf("%d parsed, %d failed", out.ProcessedCount, out.ErrorCount)
		j.UpdatedAt = as.now()
	}
	as.mu.Unlock()

	as.logger.Info("batch job completed",
		zap.String("job_id", jobID),
		zap.Int("total_addresses", total),
		zap.Int("errors", out.ErrorCount))
}

func (as *AddressService) updateJob(jobID string, fn func(*JobStatus)) {
	as.mu.Lock()
	defer as.mu.Unlock()

	if j, ok := as.jobs[jobID]; ok {
		fn(j)
		j.UpdatedAt = as.now()
	}
}

// GetJobStatus returns a snapshot of a job.
func (as *AddressService) GetJobStatus(jobID string) (*JobStatus, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()

	job, ok := as.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	snapshot := *job
	return &snapshot, nil
}

// GetJobResults returns the outcome of a finished job.
func (as *AddressService) GetJobResults(jobID string) (*models.BatchOutcome, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()

	if _, ok := as.jobs[jobID]; !ok {
		return nil, ErrJobNotFound
	}
	out, ok := as.jobResults[jobID]
	if !ok {
		return nil, ErrJobNotDone
	}
	return out, nil
}

// GetJobResultsStream yields a finished job's rows one by one until ctx ends.
func (as *AddressService) GetJobResultsStream(ctx context.Context, jobID string) (<-chan models.AddressResult, error) {
	out, err := as.GetJobResults(jobID)
	if err != nil {
		return nil, err
	}

	ch := make(chan models.AddressResult, 100)
	go func() {
		defer close(ch)
		for _, r := range out.Results {
			select {
			case ch <- r:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

// CleanupExpiredJobs drops finished jobs, with their results, whose last
// update is older than the job TTL. Queued and running jobs are kept.
func (as *AddressService) CleanupExpiredJobs() int {
	if as.jobTTL <= 0 {
		return 0
	}
	cutoff := as.now().Add(-as.jobTTL)

	as.mu.Lock()
	defer as.mu.Unlock()

	removed := 0
	for id, j := range as.jobs {
		if (j.Status == JobDone || j.Status == JobFailed) && j.UpdatedAt.Before(cutoff) {
			delete(as.jobs, id)
			delete(as.jobResults, id)
			removed++
		}
	}
	if removed > 0 {
		as.logger.Debug("expired batch jobs removed", zap.Int("count", removed))
	}
	return removed
}

// StartJobCleanupWorker sweeps expired jobs every interval until ctx ends.
func (as *AddressService) StartJobCleanupWorker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				as.CleanupExpiredJobs()
			}
		}
	}()
}

// GetStartTime returns when the service was built.
func (as *AddressService) GetStartTime() time.Time {
	return as.startTime
}

// GetStats reports service counters.
func (as *AddressService) GetStats() map[string]interface{} {
	as.mu.RLock()
	jobs := len(as.jobs)
	as.mu.RUnlock()

	return map[string]interface{}{
		"uptime_seconds":   int64(time.Since(as.startTime).Seconds()),
		"start_time":       as.startTime.Format(time.RFC3339),
		"addresses_parsed": as.parsed.Load(),
		"addresses_failed": as.failed.Load(),
		"batches":          as.batches.Load(),
		"jobs":             jobs,
		"workers":          as.workers,
	}
}
