package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// GenerationRecord summarizes one controller generation.
type GenerationRecord struct {
	VersionedRecord
	Generation   int     `json:"generation"`
	BestScore    float64 `json:"best_score"`
	MeanScore    float64 `json:"mean_score"`
	WorstScore   float64 `json:"worst_score"`
	MutationRate float64 `json:"mutation_rate"`
	BatchSize    int     `json:"batch_size"`
}

// ResetReason identifies why a population was reinitialized.
type ResetReason string

const (
	ResetReasonDrift       ResetReason = "drift"
	ResetReasonDegradation ResetReason = "degradation"
	ResetReasonScheduled   ResetReason = "scheduled"
)

// ResetEvent records a population reinitialization.
type ResetEvent struct {
	VersionedRecord
	Generation   int         `json:"generation"`
	Reason       ResetReason `json:"reason"`
	FeatureIndex int         `json:"feature_index,omitempty"`
	DropFraction float64     `json:"drop_fraction,omitempty"`
}

// BaselineRecord persists the degradation reference point for a run.
type BaselineRecord struct {
	VersionedRecord
	RunID      string  `json:"run_id"`
	Score      float64 `json:"score"`
	Generation int     `json:"generation"`
}

// ResourceSample is one blocking measurement of the controller's own process.
type ResourceSample struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	Throttled     bool    `json:"throttled"`
}

// RunSummary describes a completed or in-progress controller run.
type RunSummary struct {
	VersionedRecord
	RunID        string  `json:"run_id"`
	CreatedAtUTC string  `json:"created_at_utc"`
	Seed         int64   `json:"seed"`
	Population   int     `json:"population"`
	Generations  int     `json:"generations"`
	Selection    string  `json:"selection"`
	FinalBest    float64 `json:"final_best"`
	ResetCount   int     `json:"reset_count"`
}
