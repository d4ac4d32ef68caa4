package batch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/dtnitsch/llm-web-pruner/internal/common"
	"github.com/dtnitsch/llm-web-pruner/models"
	"github.com/dtnitsch/llm-web-pruner/pkg/manifest"
	"github.com/dtnitsch/llm-web-pruner/pkg/pipeline"
)

// Job is one file to prune.
type Job struct {
	Path   string
	Schema string
}

// run fans the files out to a fixed pool of workers sharing one pipeline.
func run(logger *slog.Logger, p *pipeline.Pipeline, paths []string, schema string, workerCount int) []manifest.Entry {
	if workerCount < 1 {
		workerCount = 1
	}
	logger.Info("Starting batch", "file_count", len(paths), "workers", workerCount)

	var wg sync.WaitGroup
	jobs := make(chan Job, len(paths))
	results := make(chan manifest.Entry, len(paths))

	for w := 1; w <= workerCount; w++ {
		wg.Add(1)
		go worker(w, logger, p, &wg, jobs, results)
	}

	for _, path := range paths {
		jobs <- Job{Path: path, Schema: schema}
	}
	close(jobs)

	wg.Wait()
	close(results)
	logger.Info("All batch workers finished")

	entries := make([]manifest.Entry, 0, len(paths))
	for entry := range results {
		entries = append(entries, entry)
	}
	return entries
}

func worker(id int, logger *slog.Logger, p *pipeline.Pipeline, wg *sync.WaitGroup, jobs <-chan Job, results chan<- manifest.Entry) {
	defer wg.Done()
	for job := range jobs {
		logger.Debug("Worker started job", "worker_id", id, "file", job.Path)

		data, err := os.ReadFile(job.Path)
		if err != nil {
			logger.Error("Error reading page", "worker_id", id, "file", job.Path, "error", err)
			results <- manifest.Entry{File: job.Path, Err: fmt.Errorf("failed to read input: %w", err)}
			continue
		}

		out := p.Process(models.PageRequest{
			HTML:   string(data),
			SiteID: filepath.Base(filepath.Dir(job.Path)),
			PageID: common.ContentHash(data)[:16],
			Schema: job.Schema,
		})
		if out.Pruning.Degraded() {
			logger.Warn("Page pruned with errors", "worker_id", id, "file", job.Path, "error", out.Pruning.Errors[0].Error())
		}
		results <- manifest.Entry{File: job.Path, Result: &out}
		logger.Debug("Worker finished job", "worker_id", id, "file", job.Path)
	}
}
