package pipeline

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/BrainDriveAI/document-processing-service/internal/chunking"
	"github.com/BrainDriveAI/document-processing-service/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPipelineConfig() config.Config {
	return config.Config{
		WorkerCount:        1,
		MaxQueueSize:       2,
		MaxConcurrentIndex: 1,
		IndexBatchSize:     10,
		DefaultStrategy:    chunking.StrategyHierarchical,
		SmallChunkChars:    600,
		LargeChunkChars:    2000,
		ChunkOverlapChars:  75,
		MinChunkSize:       10,
		JobTTL:             time.Hour,
	}
}

func TestOrchestrator_SubmitAfterStop(t *testing.T) {
	orch := NewOrchestrator(testPipelineConfig(), nil, chunking.Deps{}, discardLogger())
	orch.Start(context.Background())
	orch.Stop()

	job := orch.NewJob("doc.txt", "", "", "", "", []byte("text"))
	err := orch.Submit(job)
	if err == nil {
		t.Fatal("expected submit after stop to fail")
	}
	if job.Status != StatusFailed {
		t.Errorf("expected failed status, got %q", job.Status)
	}
	if !strings.Contains(err.Error(), "shutting down") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestOrchestrator_StopIdempotent(t *testing.T) {
	orch := NewOrchestrator(testPipelineConfig(), nil, chunking.Deps{}, discardLogger())
	orch.Start(context.Background())
	orch.Stop()
	// A second Stop must not panic on the closed queue.
	orch.Stop()
}

func TestOrchestrator_QueueFull(t *testing.T) {
	orch := NewOrchestrator(testPipelineConfig(), nil, chunking.Deps{}, discardLogger())
	// Workers never started, so the queue only drains on overflow.

	for i := 0; i < 2; i++ {
		job := orch.NewJob("doc.txt", "", "", "", "", []byte("text"))
		if err := orch.Submit(job); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	job := orch.NewJob("doc.txt", "", "", "", "", []byte("text"))
	if err := orch.Submit(job); err == nil {
		t.Fatal("expected queue-full error")
	}
	if job.Status != StatusFailed {
		t.Errorf("expected failed status, got %q", job.Status)
	}
}

func TestOrchestrator_NewJobDefaults(t *testing.T) {
	orch := NewOrchestrator(testPipelineConfig(), nil, chunking.Deps{}, discardLogger())
	job := orch.NewJob("notes.txt", "", "", "col-1", "", []byte("text"))

	if job.ID == "" {
		t.Fatal("expected a job id")
	}
	if job.DocID != job.ID {
		t.Errorf("expected doc id to default to job id, got %q", job.DocID)
	}
	if job.Strategy != chunking.StrategyHierarchical {
		t.Errorf("expected default strategy, got %q", job.Strategy)
	}
	if job.CollectionID != "col-1" {
		t.Errorf("expected collection id to carry, got %q", job.CollectionID)
	}
}
