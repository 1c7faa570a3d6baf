package core

import (
	"context"
	"sync"
	"time"

	"github.com/pkgguard/pkgguard/internal/contract"
	"github.com/pkgguard/pkgguard/schema"
)

// DefaultPerPackageTimeout bounds a single package's context-build step
// (including retries and backoff sleeps) when the caller does not override it.
const DefaultPerPackageTimeout = 30 * time.Second

// Batch runs a Coordinator across many package names with bounded
// concurrency, mirroring the worker-pool shape used elsewhere in this
// codebase for parallel per-item work.
type Batch struct {
	coordinator *Coordinator
	concurrency int
	timeout     time.Duration
}

// NewBatch builds a Batch. concurrency below 1 is treated as 1; timeout of
// zero falls back to DefaultPerPackageTimeout.
func NewBatch(coordinator *Coordinator, concurrency int, timeout time.Duration) *Batch {
	if concurrency < 1 {
		concurrency = 1
	}
	if timeout <= 0 {
		timeout = DefaultPerPackageTimeout
	}
	return &Batch{coordinator: coordinator, concurrency: concurrency, timeout: timeout}
}

type indexedJob struct {
	index int
	name  string
}

// ScanMany scans every name in names and returns results in the same order
// as the input, regardless of which worker finishes first. progress may be
// nil; when non-nil it receives one notification per completed scan.
func (b *Batch) ScanMany(ctx context.Context, names []string, progress contract.ProgressSink) []schema.ScanResult {
	results := make([]schema.ScanResult, len(names))
	if len(names) == 0 {
		return results
	}

	jobCh := make(chan indexedJob, len(names))
	var wg sync.WaitGroup
	var done int
	var mu sync.Mutex

	workers := b.concurrency
	if workers > len(names) {
		workers = len(names)
	}

	for range workers {
		wg.Go(func() {
			for job := range jobCh {
				results[job.index] = b.coordinator.ScanWithTimeout(ctx, job.name, b.timeout)

				if progress != nil {
					mu.Lock()
					done++
					progress.Progress(done, len(names))
					mu.Unlock()
				}
			}
		})
	}

	for i, name := range names {
		jobCh <- indexedJob{index: i, name: name}
	}
	close(jobCh)

	wg.Wait()
	return results
}
