package pipeline

import (
	"fmt"

	"github.com/BurntSushi/toml"

	repanalyzer "github.com/lucasjlepore/rep-analyzer"
	"github.com/lucasjlepore/rep-analyzer/processing"
)

// RunConfig is the TOML run configuration shared by both phases. Zero values
// are replaced by defaults in withDefaults, so a partial file is fine.
type RunConfig struct {
	Filter       FilterConfig       `toml:"filter"`
	Segmentation SegmentationConfig `toml:"segmentation"`
	Sync         SyncConfig         `toml:"sync"`
	Flywheel     FlywheelConfig     `toml:"flywheel"`
	Files        FilesConfig        `toml:"files"`
}

// FilterConfig parameterizes the inertial low-pass applied before alignment.
type FilterConfig struct {
	CutoffHz float64 `toml:"cutoff_hz"`
	Order    int     `toml:"order"`
}

// SegmentationConfig parameterizes repetition detection.
type SegmentationConfig struct {
	// RefilterCutoffHz is the much lower cutoff applied only to the
	// segmentation signal; repetitions live well below movement noise.
	RefilterCutoffHz float64 `toml:"refilter_cutoff_hz"`
	Prominence       float64 `toml:"prominence"`
	MinPeakSpacingS  float64 `toml:"min_peak_spacing_s"`
	MinDurationS     float64 `toml:"min_duration_s"`
	StdDevFraction   float64 `toml:"std_dev_fraction"`
	// SignalChannel is the inertial channel driving peak detection.
	SignalChannel string `toml:"signal_channel"`
	// Negate flips the signal so repetition turnarounds become maxima.
	Negate bool `toml:"negate"`
	// GapFill selects the interpolation method for dropped samples.
	GapFill string `toml:"gap_fill"`
}

// SyncConfig parameterizes cross-device shift estimation.
type SyncConfig struct {
	CommonRateHz float64 `toml:"common_rate_hz"`
	SGWindow     int     `toml:"sg_window"`
	// SkeletonChannel and IMUChannel are the sync axes correlated against
	// each other after taking second derivatives.
	SkeletonChannel string `toml:"skeleton_channel"`
	IMUChannel      string `toml:"imu_channel"`
}

// FlywheelConfig parameterizes reference-count filtering.
type FlywheelConfig struct {
	MinDurationS float64 `toml:"min_duration_s"`
}

// FilesConfig names the per-trial input files and the conditioned outputs.
type FilesConfig struct {
	Skeleton    string `toml:"skeleton"`
	IMU         string `toml:"imu"`
	HRV         string `toml:"hrv"`
	Flywheel    string `toml:"flywheel"`
	Ratings     string `toml:"ratings"`
	Conditioned string `toml:"conditioned_suffix"`
}

// LoadConfig reads a TOML run configuration. An empty path yields defaults.
func LoadConfig(path string) (RunConfig, error) {
	var cfg RunConfig
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("decode config %s: %w", path, err)
		}
	}
	cfg = cfg.withDefaults()
	return cfg, cfg.validate()
}

func (c RunConfig) withDefaults() RunConfig {
	if c.Filter.CutoffHz == 0 {
		c.Filter.CutoffHz = 20
	}
	if c.Filter.Order == 0 {
		c.Filter.Order = 4
	}
	if c.Segmentation.RefilterCutoffHz == 0 {
		c.Segmentation.RefilterCutoffHz = 4
	}
	if c.Segmentation.Prominence == 0 {
		c.Segmentation.Prominence = 0.2
	}
	if c.Segmentation.MinDurationS == 0 {
		c.Segmentation.MinDurationS = 1.5
	}
	if c.Segmentation.StdDevFraction == 0 {
		c.Segmentation.StdDevFraction = 0.7
	}
	if c.Segmentation.SignalChannel == "" {
		c.Segmentation.SignalChannel = "chest_acceleration_z"
		c.Segmentation.Negate = true
	}
	if c.Segmentation.GapFill == "" {
		c.Segmentation.GapFill = string(processing.GapFillLinear)
	}
	if c.Sync.CommonRateHz == 0 {
		c.Sync.CommonRateHz = 128
	}
	if c.Sync.SGWindow == 0 {
		c.Sync.SGWindow = 15
	}
	if c.Sync.SkeletonChannel == "" {
		c.Sync.SkeletonChannel = "spine_chest_y"
	}
	if c.Sync.IMUChannel == "" {
		c.Sync.IMUChannel = "chest_acceleration_y"
	}
	if c.Flywheel.MinDurationS == 0 {
		c.Flywheel.MinDurationS = 1.5
	}
	if c.Files.Skeleton == "" {
		c.Files.Skeleton = "positions_3d.csv"
	}
	if c.Files.IMU == "" {
		c.Files.IMU = "imu.csv"
	}
	if c.Files.HRV == "" {
		c.Files.HRV = "hrv.csv"
	}
	if c.Files.Flywheel == "" {
		c.Files.Flywheel = "flywheel.csv"
	}
	if c.Files.Ratings == "" {
		c.Files.Ratings = "rpe_ratings.json"
	}
	if c.Files.Conditioned == "" {
		c.Files.Conditioned = "_conditioned.csv"
	}
	return c
}

func (c RunConfig) validate() error {
	if c.Filter.CutoffHz <= 0 {
		return &repanalyzer.InvalidParameterError{Param: "filter.cutoff_hz", Reason: "must be positive"}
	}
	if c.Filter.Order < 1 {
		return &repanalyzer.InvalidParameterError{Param: "filter.order", Reason: "must be at least 1"}
	}
	if c.Segmentation.Prominence <= 0 {
		return &repanalyzer.InvalidParameterError{Param: "segmentation.prominence", Reason: "must be positive"}
	}
	if c.Segmentation.StdDevFraction < 0 {
		return &repanalyzer.InvalidParameterError{Param: "segmentation.std_dev_fraction", Reason: "must not be negative"}
	}
	switch processing.GapFillMethod(c.Segmentation.GapFill) {
	case processing.GapFillLinear, processing.GapFillPolynomial:
	default:
		return &repanalyzer.InvalidParameterError{Param: "segmentation.gap_fill", Reason: fmt.Sprintf("unknown method %q", c.Segmentation.GapFill)}
	}
	return nil
}
