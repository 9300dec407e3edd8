package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/oii-seeing-migration/mignar/internal/model"
	"github.com/oii-seeing-migration/mignar/internal/pipeline"
)

// Processor runs the highlighting flow for one document.
type Processor interface {
	Process(ctx context.Context, doc *model.Document, selectedMeso string) (*pipeline.Result, error)
}

// DocumentJob highlights one document.
type DocumentJob struct {
	Document     *model.Document
	SelectedMeso string
	Processor    Processor
}

// Execute runs the job.
func (j *DocumentJob) Execute(ctx context.Context) Result {
	result, err := j.Processor.Process(ctx, j.Document, j.SelectedMeso)
	if err != nil {
		return &DocumentResult{
			Title: j.Document.Title,
			Error: err,
		}
	}
	return &DocumentResult{
		Title:  j.Document.Title,
		Result: result,
	}
}

// DocumentResult is the outcome of highlighting one document.
type DocumentResult struct {
	Title  string
	Result *pipeline.Result
	Error  error
}

// GetError returns the job's error.
func (r *DocumentResult) GetError() error {
	return r.Error
}

// BatchProcessor highlights multiple documents concurrently.
type BatchProcessor struct {
	processor   Processor
	concurrency int
}

// NewBatchProcessor creates a batch processor.
func NewBatchProcessor(processor Processor, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		processor:   processor,
		concurrency: concurrency,
	}
}

// ProcessDocuments runs the flow over all documents concurrently. Per-document
// failures land in the corresponding DocumentResult instead of aborting the
// batch.
func (b *BatchProcessor) ProcessDocuments(ctx context.Context, docs []*model.Document, selectedMeso string) []*DocumentResult {
	if len(docs) == 0 {
		return []*DocumentResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, doc := range docs {
		pool.Submit(&DocumentJob{
			Document:     doc,
			SelectedMeso: selectedMeso,
			Processor:    b.processor,
		})
	}

	results := pool.Wait()

	docResults := make([]*DocumentResult, len(results))
	for i, result := range results {
		docResults[i] = result.(*DocumentResult)
	}

	return docResults
}

// ReadTitlesFromFile reads document titles from a file, one per line. Empty
// lines and #-comments are skipped, duplicates dropped.
func ReadTitlesFromFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var titles []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			titles = append(titles, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return titles, nil
}
