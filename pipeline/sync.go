package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lucasjlepore/rep-analyzer/align"
	"github.com/lucasjlepore/rep-analyzer/devices"
	"github.com/lucasjlepore/rep-analyzer/processing"
	"github.com/lucasjlepore/rep-analyzer/report"
	"github.com/lucasjlepore/rep-analyzer/timeseries"
)

// Sync runs the alignment phase: per trial, condition the raw streams,
// estimate the skeleton-to-IMU clock offset, shift the skeleton stream and
// write the conditioned tables for the extraction phase. Trial failures are
// logged and skipped; the run always completes.
func Sync(opts SyncOptions) (*SyncResult, error) {
	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	trials, err := devices.DiscoverTrials(opts.DataDir)
	if err != nil {
		return nil, err
	}
	if len(trials) == 0 {
		return nil, fmt.Errorf("no trials under %s", opts.DataDir)
	}

	result := &SyncResult{}
	for _, trial := range trials {
		sync, err := syncTrial(trial, cfg, opts)
		if err != nil {
			slog.Error("trial alignment failed",
				"subject", trial.Subject, "set_id", trial.SetID, "err", err)
			result.Skipped++
			continue
		}
		result.Trials = append(result.Trials, *sync)
	}
	return result, nil
}

func syncTrial(trial devices.Trial, cfg RunConfig, opts SyncOptions) (*TrialSync, error) {
	skeleton, err := devices.LoadSkeleton(
		filepath.Join(trial.Dir, cfg.Files.Skeleton),
		devices.SkeletonOptions{GapFill: processing.GapFillMethod(cfg.Segmentation.GapFill)})
	if err != nil {
		return nil, fmt.Errorf("load skeleton: %w", err)
	}
	imu, err := devices.LoadIMU(filepath.Join(trial.Dir, cfg.Files.IMU))
	if err != nil {
		return nil, fmt.Errorf("load imu: %w", err)
	}
	imu, err = processing.Lowpass(imu, cfg.Filter.CutoffHz, cfg.Filter.Order, devices.IMURate)
	if err != nil {
		return nil, fmt.Errorf("filter imu: %w", err)
	}

	schema := timeseries.Schema{
		"skeleton_sync": cfg.Sync.SkeletonChannel,
		"imu_sync":      cfg.Sync.IMUChannel,
	}
	skeletonSync, err := schema.Resolve(skeleton, "skeleton_sync")
	if err != nil {
		return nil, err
	}
	imuSync, err := schema.Resolve(imu, "imu_sync")
	if err != nil {
		return nil, err
	}

	// The IMU measures acceleration directly; the skeleton stream is
	// position, so both sides are second-differentiated inside the
	// estimator to correlate like against like.
	shift, err := align.EstimateShift(
		align.Signal{Timestamps: imu.Timestamps, Values: imuSync},
		align.Signal{Timestamps: skeleton.Timestamps, Values: skeletonSync},
		align.Options{
			CommonRate:       cfg.Sync.CommonRateHz,
			SecondDerivative: true,
			SGWindow:         cfg.Sync.SGWindow,
		})
	if err != nil {
		return nil, fmt.Errorf("estimate shift: %w", err)
	}
	skeleton.ShiftTime(shift)
	slog.Info("trial aligned",
		"subject", trial.Subject, "set_id", trial.SetID, "shift_s", shift)

	outDir := trial.Dir
	if opts.OutDir != "" {
		outDir = filepath.Join(opts.OutDir, trial.Subject, fmt.Sprintf("%02d", trial.SetID))
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return nil, fmt.Errorf("create out dir: %w", err)
		}
	}
	conditioned := map[string]*timeseries.Table{
		"skeleton": skeleton,
		"imu":      imu,
	}
	if hrv, err := loadHRV(trial.Dir, cfg); err != nil {
		// Cardiac data is optional for alignment; most trials have it.
		slog.Warn("no hrv stream",
			"subject", trial.Subject, "set_id", trial.SetID, "err", err)
	} else {
		conditioned["hrv"] = hrv
	}
	for name, table := range conditioned {
		path := filepath.Join(outDir, name+cfg.Files.Conditioned)
		if err := table.WriteCSV(path, ','); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
	}

	if opts.Charts {
		chart := &report.TrialChart{
			Subject: trial.Subject,
			SetID:   trial.SetID,
			ShiftS:  shift,
			Times:   imu.Timestamps,
			Signal:  imuSync,
		}
		if err := chart.Render(filepath.Join(outDir, "sync.html")); err != nil {
			slog.Warn("chart render failed",
				"subject", trial.Subject, "set_id", trial.SetID, "err", err)
		}
	}

	return &TrialSync{
		Subject: trial.Subject,
		SetID:   trial.SetID,
		ShiftS:  shift,
		OutDir:  outDir,
	}, nil
}

// loadHRV tries the CSV export first and falls back to a FIT file with the
// same stem.
func loadHRV(dir string, cfg RunConfig) (*timeseries.Table, error) {
	csvPath := filepath.Join(dir, cfg.Files.HRV)
	if _, err := os.Stat(csvPath); err == nil {
		return devices.LoadHRV(csvPath)
	}
	fitPath := csvPath[:len(csvPath)-len(filepath.Ext(csvPath))] + ".fit"
	if _, err := os.Stat(fitPath); err == nil {
		return devices.LoadHRVFit(fitPath)
	}
	return nil, fmt.Errorf("neither %s nor %s present", cfg.Files.HRV, filepath.Base(fitPath))
}
