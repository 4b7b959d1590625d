// Package pipeline assembles per-trial device recordings into aligned,
// segmented, per-repetition feature rows. It runs in two phases: Sync
// conditions and time-aligns the raw streams, Run segments and extracts.
package pipeline

// SyncOptions configures the stream-alignment phase.
type SyncOptions struct {
	DataDir    string
	OutDir     string
	ConfigPath string
	Charts     bool
}

// SyncResult summarizes one alignment run.
type SyncResult struct {
	Trials  []TrialSync `json:"trials"`
	Skipped int         `json:"skipped"`
}

// TrialSync records the estimated offset for one trial.
type TrialSync struct {
	Subject string  `json:"subject"`
	SetID   int     `json:"set_id"`
	ShiftS  float64 `json:"shift_s"`
	OutDir  string  `json:"out_dir"`
}

// Options configures the feature-extraction phase.
type Options struct {
	DataDir    string
	OutPath    string
	ConfigPath string
	Format     string // parquet|csv
	Charts     bool
}

// Result summarizes one extraction run.
type Result struct {
	OutputPath string `json:"output_path"`
	Rows       int    `json:"rows"`
	Columns    int    `json:"columns"`
	Trials     int    `json:"trials"`
	Skipped    int    `json:"skipped"`
}

// FeatureRow is one (subject, set, repetition) output row.
type FeatureRow struct {
	Subject string
	SetID   int
	RepID   int
	RPE     float64
	Values  []float64
}

// FeatureSet is the final flat table: shared metadata columns plus one
// feature vector per repetition across all trials.
type FeatureSet struct {
	Columns []string
	Rows    []FeatureRow
}
