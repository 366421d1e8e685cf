package chunking

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/BrainDriveAI/document-processing-service/internal/token"
)

// Strategy names accepted by NewStrategy.
const (
	StrategyFixedSize    = "fixed_size"
	StrategyHierarchical = "hierarchical"
	StrategyOptimized    = "optimized_hierarchical"
	StrategyRecursive    = "recursive"
	StrategySemantic     = "semantic"
)

// Result is the output of one chunking run.
type Result struct {
	Chunks          []Chunk  `json:"chunks"`
	DroppedElements int      `json:"dropped_elements,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
}

// Strategy turns structured input into chunks for one document.
type Strategy interface {
	Name() string
	Chunk(ctx context.Context, doc Document, in Input) (*Result, error)
}

// Config carries the per-strategy sizing knobs. Zero fields fall back to
// the strategy's defaults from DefaultConfig.
type Config struct {
	SmallTarget  int `json:"small_chunk_size,omitempty"`
	LargeTarget  int `json:"large_chunk_size,omitempty"`
	Overlap      int `json:"chunk_overlap,omitempty"`
	FixedSize    int `json:"chunk_size,omitempty"`
	MinChunkSize int `json:"min_chunk_size"`

	// MaxEmbedding bounds the parent size for token strategies. Exceeding
	// it produces a warning, not an error.
	MaxEmbedding int `json:"max_embedding_tokens,omitempty"`
}

// DefaultConfig returns the built-in sizing for a strategy name. Unknown
// names get the hierarchical defaults; NewStrategy rejects them anyway.
func DefaultConfig(name string) Config {
	switch name {
	case StrategyOptimized:
		return Config{
			SmallTarget:  160,
			LargeTarget:  448,
			Overlap:      40,
			MinChunkSize: 32,
			MaxEmbedding: 480,
		}
	case StrategyFixedSize:
		return Config{
			FixedSize:    512,
			Overlap:      50,
			MinChunkSize: 32,
		}
	case StrategyRecursive:
		return Config{
			FixedSize:    600,
			Overlap:      75,
			MinChunkSize: 32,
		}
	default:
		return Config{
			SmallTarget:  600,
			LargeTarget:  2000,
			Overlap:      75,
			MinChunkSize: 32,
		}
	}
}

// mergeDefaults fills zero-valued size fields from the strategy defaults.
// Overlap zero and MinChunkSize zero are honored as stated; only a negative
// overlap falls back.
func (c Config) mergeDefaults(name string) Config {
	def := DefaultConfig(name)
	if c.SmallTarget == 0 {
		c.SmallTarget = def.SmallTarget
	}
	if c.LargeTarget == 0 {
		c.LargeTarget = def.LargeTarget
	}
	if c.Overlap < 0 {
		c.Overlap = def.Overlap
	}
	if c.FixedSize == 0 {
		c.FixedSize = def.FixedSize
	}
	if c.MaxEmbedding == 0 {
		c.MaxEmbedding = def.MaxEmbedding
	}
	return c
}

// Deps holds the shared collaborators a strategy may need.
type Deps struct {
	Tokenizer token.Tokenizer
	Log       *slog.Logger
}

func (d Deps) logger() *slog.Logger {
	if d.Log != nil {
		return d.Log
	}
	return slog.Default()
}

// NewStrategy builds a strategy by name. Configuration is validated at
// construction time so a bad request fails before any chunking work.
func NewStrategy(name string, cfg Config, deps Deps) (Strategy, error) {
	cfg = cfg.mergeDefaults(name)
	switch name {
	case StrategyHierarchical:
		return newHierarchical(cfg, deps)
	case StrategyOptimized:
		return newOptimized(cfg, deps)
	case StrategyFixedSize:
		return newFixedSize(cfg, deps)
	case StrategyRecursive:
		return newRecursive(cfg, deps)
	case StrategySemantic:
		return newSemantic(cfg, deps)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// Names lists the registered strategy names.
func Names() []string {
	return []string{
		StrategyFixedSize,
		StrategyHierarchical,
		StrategyOptimized,
		StrategyRecursive,
		StrategySemantic,
	}
}
