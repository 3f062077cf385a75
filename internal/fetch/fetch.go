// Package fetch downloads files over HTTP with atomic visibility: a
// download lands in a temp file next to its destination and is renamed
// into place only once complete, so partial payloads never appear
// under the final path.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
)

// Job represents one download.
type Job struct {
	URL      string
	DestPath string
}

// Result pairs a job with its outcome.
type Result struct {
	Job Job
	Err error
}

// Fetcher downloads files, optionally many in parallel.
type Fetcher struct {
	workers int
	client  *http.Client
}

// New creates a fetcher with the given number of parallel workers.
func New(workers int) *Fetcher {
	if workers < 1 {
		workers = 1
	}
	return &Fetcher{
		workers: workers,
		client:  &http.Client{},
	}
}

// Fetch downloads a single file. Exits early if the destination
// already exists.
func (f *Fetcher) Fetch(ctx context.Context, url, destPath string) error {
	// Check if already present
	if _, err := os.Stat(destPath); err == nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("downloading %s: HTTP %d", url, resp.StatusCode)
	}

	// Write to temp file first, then rename
	tmpPath := destPath + ".tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}

	_, err = io.Copy(out, resp.Body)
	out.Close()
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming file: %w", err)
	}

	return nil
}

// FetchAll downloads multiple files in parallel across the configured
// number of workers. The slice of results is in completion order.
func (f *Fetcher) FetchAll(ctx context.Context, jobs []Job) []Result {
	jobChan := make(chan Job, len(jobs))
	resultChan := make(chan Result, len(jobs))

	var wg sync.WaitGroup
	for i := 0; i < f.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobChan {
				err := f.Fetch(ctx, job.URL, job.DestPath)
				resultChan <- Result{Job: job, Err: err}
			}
		}()
	}

	for _, job := range jobs {
		jobChan <- job
	}
	close(jobChan)

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]Result, 0, len(jobs))
	for result := range resultChan {
		results = append(results, result)
	}

	return results
}
