package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Downstream chunk index (vector store ingestion API). Optional: when
	// the URL is empty the service runs chunking-only.
	IndexStoreURL    string
	IndexStoreAPIKey string

	// Auth for this service's own API.
	APIKey      string
	DisableAuth bool

	// Tokenizer
	TokenEncoding string

	// Worker pool
	WorkerCount        int
	MaxQueueSize       int
	MaxConcurrentIndex int
	IndexBatchSize     int

	// Upload limits
	MaxUploadBytes int64

	// Chunking defaults
	DefaultStrategy    string
	SmallChunkTokens   int
	LargeChunkTokens   int
	ChunkOverlapTokens int
	SmallChunkChars    int
	LargeChunkChars    int
	ChunkOverlapChars  int
	FixedChunkSize     int
	FixedChunkOverlap  int
	MinChunkSize       int
	MaxEmbeddingTokens int

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		IndexStoreURL:    os.Getenv("INDEX_STORE_URL"),
		IndexStoreAPIKey: os.Getenv("INDEX_STORE_API_KEY"),

		APIKey:      os.Getenv("DOCPROC_API_KEY"),
		DisableAuth: envBool("DISABLE_AUTH", false),

		TokenEncoding: envOr("TOKEN_ENCODING", "cl100k_base"),

		WorkerCount:        envInt("WORKER_COUNT", 4),
		MaxQueueSize:       envInt("MAX_QUEUE_SIZE", 100),
		MaxConcurrentIndex: envInt("MAX_CONCURRENT_INDEX", 10),
		IndexBatchSize:     envInt("INDEX_BATCH_SIZE", 50),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 104857600), // 100MB

		DefaultStrategy:    envOr("CHUNKING_STRATEGY", "optimized_hierarchical"),
		SmallChunkTokens:   envInt("SMALL_CHUNK_TOKENS", 160),
		LargeChunkTokens:   envInt("LARGE_CHUNK_TOKENS", 448),
		ChunkOverlapTokens: envInt("CHUNK_OVERLAP_TOKENS", 40),
		SmallChunkChars:    envInt("SMALL_CHUNK_CHARS", 600),
		LargeChunkChars:    envInt("LARGE_CHUNK_CHARS", 2000),
		ChunkOverlapChars:  envInt("CHUNK_OVERLAP_CHARS", 75),
		FixedChunkSize:     envInt("FIXED_CHUNK_SIZE", 512),
		FixedChunkOverlap:  envInt("FIXED_CHUNK_OVERLAP", 50),
		MinChunkSize:       envInt("MIN_CHUNK_SIZE", 32),
		MaxEmbeddingTokens: envInt("MAX_EMBEDDING_TOKENS", 480),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentIndex <= 0 {
		cfg.MaxConcurrentIndex = 10
	}
	if cfg.IndexBatchSize <= 0 {
		cfg.IndexBatchSize = 50
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 104857600
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if !c.DisableAuth && c.APIKey == "" {
		return fmt.Errorf("DOCPROC_API_KEY is required unless DISABLE_AUTH=true")
	}
	if c.IndexStoreURL != "" && c.IndexStoreAPIKey == "" {
		return fmt.Errorf("INDEX_STORE_API_KEY is required when INDEX_STORE_URL is set")
	}
	if c.SmallChunkTokens >= c.LargeChunkTokens {
		return fmt.Errorf("SMALL_CHUNK_TOKENS (%d) must be below LARGE_CHUNK_TOKENS (%d)",
			c.SmallChunkTokens, c.LargeChunkTokens)
	}
	if c.ChunkOverlapTokens >= c.SmallChunkTokens {
		return fmt.Errorf("CHUNK_OVERLAP_TOKENS (%d) must be below SMALL_CHUNK_TOKENS (%d)",
			c.ChunkOverlapTokens, c.SmallChunkTokens)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
