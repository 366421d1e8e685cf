package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/BrainDriveAI/document-processing-service/internal/chunking"
	"github.com/BrainDriveAI/document-processing-service/internal/indexstore"
	"github.com/BrainDriveAI/document-processing-service/internal/parser"
)

// Worker processes a single document job: parse, chunk, index.
type Worker struct {
	store *indexstore.Client
	deps  chunking.Deps
	stats *ProcStats
	log   *slog.Logger

	pdfFallback        bool
	maxConcurrentIndex int
	indexBatchSize     int
}

func NewWorker(store *indexstore.Client, deps chunking.Deps, stats *ProcStats, log *slog.Logger, pdfFallback bool, maxIndex, batchSize int) *Worker {
	if maxIndex <= 0 {
		maxIndex = 1
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	return &Worker{
		store:              store,
		deps:               deps,
		stats:              stats,
		log:                log,
		pdfFallback:        pdfFallback,
		maxConcurrentIndex: maxIndex,
		indexBatchSize:     batchSize,
	}
}

// Process runs the full pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job, cfg chunking.Config) {
	log := w.log.With("job_id", job.ID, "document_id", job.DocID, "collection_id", job.CollectionID)
	started := time.Now()

	fail := func(phase string) {
		job.SetStatus(StatusFailed, phase)
		w.stats.RecordRun(time.Since(started), 0, 0, true)
	}

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		fail("parsing")
		return
	}
	if pdfParser, ok := p.(*parser.PDFParser); ok {
		pdfParser.FallbackPdftotext = w.pdfFallback
	}

	content, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		fail("parsing")
		return
	}
	contentHash := ContentHashHex([]byte(content.Text()))
	title := job.SetParsed(content.Title, contentHash)
	job.SetFileData(nil) // raw bytes no longer needed

	// Phase 2: Chunk
	job.SetStatus(StatusChunking, "chunking")
	strategy, err := chunking.NewStrategy(job.Strategy, cfg, w.deps)
	if err != nil {
		log.Error("strategy construction failed", "strategy", job.Strategy, "error", err)
		job.AddError(err.Error())
		fail("chunking")
		return
	}

	doc := chunking.Document{
		ID:           job.DocID,
		CollectionID: job.CollectionID,
		Type:         strings.TrimPrefix(filepath.Ext(job.Filename), "."),
		Metadata: map[string]any{
			"title":        title,
			"content_hash": contentHash,
		},
	}
	res, err := strategy.Chunk(ctx, doc, content.Input())
	if err != nil {
		if errors.Is(err, chunking.ErrEmptyInput) || errors.Is(err, chunking.ErrBadInput) {
			log.Warn("no chunkable content", "error", err)
		} else {
			log.Error("chunking failed", "error", err)
		}
		job.AddError(err.Error())
		fail("chunking")
		return
	}

	job.SetChunkResult(res, chunking.ComputeStatistics(res.Chunks, cfg))
	job.AddWarnings(res.Warnings)
	log.Info("chunked document",
		"strategy", strategy.Name(),
		"chunks", len(res.Chunks),
		"dropped_elements", res.DroppedElements,
	)

	// Phase 3: Index chunk batches with bounded concurrency.
	if !w.store.Enabled() {
		job.SetStatus(StatusCompleted, "done")
		w.stats.RecordRun(time.Since(started), len(res.Chunks), 0, false)
		return
	}

	job.SetStatus(StatusIndexing, "indexing")
	failedBatches := w.indexChunks(ctx, job, res.Chunks, log)
	indexed := job.Snapshot().Progress.ChunksIndexed
	switch {
	case failedBatches == 0:
		job.SetStatus(StatusCompleted, "done")
		w.stats.RecordRun(time.Since(started), len(res.Chunks), indexed, false)
	case indexed > 0:
		job.SetStatus(StatusPartial, "done")
		w.stats.RecordRun(time.Since(started), len(res.Chunks), indexed, false)
	default:
		fail("indexing")
	}
}

// indexChunks ships chunks in batches, retrying transient failures. It
// returns the number of batches that never made it.
func (w *Worker) indexChunks(ctx context.Context, job *Job, chunks []chunking.Chunk, log *slog.Logger) int {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.maxConcurrentIndex)

	failed := make(chan struct{}, len(chunks)/w.indexBatchSize+1)
	for start := 0; start < len(chunks); start += w.indexBatchSize {
		end := start + w.indexBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		g.Go(func() error {
			var lastErr error
			for attempt := range MaxRetries {
				lastErr = w.store.IndexChunks(gctx, job.DocID, job.CollectionID, batch)
				if lastErr == nil || !IsRetryable(lastErr) {
					break
				}
				log.Warn("transient index error", "attempt", attempt, "error", lastErr)
				select {
				case <-time.After(Backoff(attempt)):
				case <-gctx.Done():
					lastErr = gctx.Err()
				}
				if gctx.Err() != nil {
					break
				}
			}
			if lastErr != nil {
				log.Error("index batch failed", "batch_size", len(batch), "error", lastErr)
				job.AddError(fmt.Sprintf("index batch: %s", lastErr))
				failed <- struct{}{}
				return nil // keep shipping the remaining batches
			}
			job.AddChunksIndexed(len(batch))
			return nil
		})
	}
	g.Wait()
	close(failed)
	return len(failed)
}
