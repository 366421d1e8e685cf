package chunking

import "sort"

// Distribution summarizes chunk sizes in the unit the strategy measured
// with.
type Distribution struct {
	Count  int     `json:"count"`
	Min    int     `json:"min"`
	Max    int     `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

// Statistics describes one chunking run for reporting endpoints.
type Statistics struct {
	Strategy    string                     `json:"strategy"`
	SizeUnit    string                     `json:"size_unit"`
	TotalChunks int                        `json:"total_chunks"`
	ByType      map[ChunkType]int          `json:"by_type"`
	Sizes       Distribution               `json:"sizes"`
	SizesByType map[ChunkType]Distribution `json:"sizes_by_type"`
	Kinds       map[ElementKind]int        `json:"element_kinds,omitempty"`

	// Threshold counts, relative to the run's config.
	OverEmbeddingLimit int `json:"over_embedding_limit"`
	BelowMinimum       int `json:"below_minimum"`
}

// ComputeStatistics folds a chunk list into summary statistics using the
// sizes recorded in chunk metadata. The config supplies the embedding-limit
// and minimum-size thresholds; zero thresholds disable the respective count.
// Empty input yields a zero value.
func ComputeStatistics(chunks []Chunk, cfg Config) Statistics {
	st := Statistics{ByType: make(map[ChunkType]int), Kinds: make(map[ElementKind]int)}
	if len(chunks) == 0 {
		return st
	}
	st.Strategy = chunks[0].Metadata.Strategy
	st.SizeUnit = chunks[0].Metadata.SizeUnit
	st.TotalChunks = len(chunks)

	var all []int
	byType := make(map[ChunkType][]int)
	for _, c := range chunks {
		st.ByType[c.Type]++
		all = append(all, c.Metadata.SizeCount)
		byType[c.Type] = append(byType[c.Type], c.Metadata.SizeCount)
		for _, k := range c.Metadata.ElementTypes {
			st.Kinds[k]++
		}
		if cfg.MaxEmbedding > 0 && c.Metadata.SizeCount > cfg.MaxEmbedding {
			st.OverEmbeddingLimit++
		}
		if cfg.MinChunkSize > 0 && c.Metadata.SizeCount < cfg.MinChunkSize {
			st.BelowMinimum++
		}
	}
	st.Sizes = distribution(all)
	st.SizesByType = make(map[ChunkType]Distribution, len(byType))
	for t, sizes := range byType {
		st.SizesByType[t] = distribution(sizes)
	}
	return st
}

func distribution(sizes []int) Distribution {
	if len(sizes) == 0 {
		return Distribution{}
	}
	sorted := append([]int(nil), sizes...)
	sort.Ints(sorted)

	sum := 0
	for _, s := range sorted {
		sum += s
	}
	d := Distribution{
		Count: len(sorted),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
		Mean:  float64(sum) / float64(len(sorted)),
	}
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		d.Median = float64(sorted[mid-1]+sorted[mid]) / 2
	} else {
		d.Median = float64(sorted[mid])
	}
	return d
}
