package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/BrainDriveAI/document-processing-service/internal/chunking"
	"github.com/BrainDriveAI/document-processing-service/internal/config"
	"github.com/BrainDriveAI/document-processing-service/internal/indexstore"
)

// Orchestrator manages the document processing pipeline: a bounded queue
// feeding a fixed worker pool, plus the job registry and run statistics.
type Orchestrator struct {
	jobs  *JobStore
	queue chan *Job
	store *indexstore.Client
	deps  chunking.Deps
	stats *ProcStats
	log   *slog.Logger
	cfg   config.Config

	mu      sync.Mutex
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to launch workers.
func NewOrchestrator(cfg config.Config, store *indexstore.Client, deps chunking.Deps, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:  NewJobStore(cfg.JobTTL),
		queue: make(chan *Job, cfg.MaxQueueSize),
		store: store,
		deps:  deps,
		stats: NewProcStats(time.Hour),
		log:   log,
		cfg:   cfg,
	}
}

// StrategyConfig builds the sizing config for a strategy name from service
// defaults. Caller overrides are applied on top by the API layer.
func (o *Orchestrator) StrategyConfig(name string) chunking.Config {
	switch name {
	case chunking.StrategyOptimized:
		return chunking.Config{
			SmallTarget:  o.cfg.SmallChunkTokens,
			LargeTarget:  o.cfg.LargeChunkTokens,
			Overlap:      o.cfg.ChunkOverlapTokens,
			MinChunkSize: o.cfg.MinChunkSize,
			MaxEmbedding: o.cfg.MaxEmbeddingTokens,
		}
	case chunking.StrategyFixedSize, chunking.StrategyRecursive:
		return chunking.Config{
			FixedSize:    o.cfg.FixedChunkSize,
			Overlap:      o.cfg.FixedChunkOverlap,
			MinChunkSize: o.cfg.MinChunkSize,
		}
	default:
		return chunking.Config{
			SmallTarget:  o.cfg.SmallChunkChars,
			LargeTarget:  o.cfg.LargeChunkChars,
			Overlap:      o.cfg.ChunkOverlapChars,
			MinChunkSize: o.cfg.MinChunkSize,
		}
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.store, o.deps, o.stats, o.log,
				o.cfg.PDFFallbackPdftotext, o.cfg.MaxConcurrentIndex, o.cfg.IndexBatchSize)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					cfg := o.StrategyConfig(job.Strategy)
					if override, ok := job.Config(); ok {
						cfg = override
					}
					w.Process(workerCtx, job, cfg)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline. Submissions arriving after Stop
// are rejected rather than sent to the closed queue.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	close(o.queue)
	o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
}

// NewJob allocates a job for an upload. DocID defaults to the ULID when the
// caller supplied none.
func (o *Orchestrator) NewJob(filename, title, docID, collectionID, strategy string, data []byte) *Job {
	id := generateULID()
	if docID == "" {
		docID = id
	}
	if strategy == "" {
		strategy = o.cfg.DefaultStrategy
	}
	now := time.Now().UTC()
	job := &Job{
		ID:           id,
		DocID:        docID,
		CollectionID: collectionID,
		Status:       StatusQueued,
		Phase:        "queued",
		Filename:     filename,
		Title:        title,
		Strategy:     strategy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	job.SetFileData(data)
	return job
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stopped {
		job.SetStatus(StatusFailed, "shutting_down")
		return fmt.Errorf("pipeline is shutting down")
	}
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Stats returns the run statistics collector.
func (o *Orchestrator) Stats() *ProcStats {
	return o.stats
}

// IndexStore returns the chunk index client for direct use by API handlers.
func (o *Orchestrator) IndexStore() *indexstore.Client {
	return o.store
}

// ChunkingDeps returns the shared strategy collaborators.
func (o *Orchestrator) ChunkingDeps() chunking.Deps {
	return o.deps
}
