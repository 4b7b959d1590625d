package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"sort"
	"strings"

	repanalyzer "github.com/lucasjlepore/rep-analyzer"
	"github.com/lucasjlepore/rep-analyzer/devices"
	"github.com/lucasjlepore/rep-analyzer/features"
	"github.com/lucasjlepore/rep-analyzer/match"
	"github.com/lucasjlepore/rep-analyzer/processing"
	"github.com/lucasjlepore/rep-analyzer/report"
	"github.com/lucasjlepore/rep-analyzer/segment"
	"github.com/lucasjlepore/rep-analyzer/timeseries"
)

// Run executes the extraction phase over conditioned trials and writes the
// final feature table. Per-trial failures are contained and logged; a
// missing ratings file skips the whole subject; only invalid configuration
// aborts the run.
func Run(opts Options) (*Result, error) {
	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "parquet"
	}
	if format != "parquet" && format != "csv" {
		return nil, fmt.Errorf("unsupported format %q (expected parquet|csv)", format)
	}
	trials, err := devices.DiscoverTrials(opts.DataDir)
	if err != nil {
		return nil, err
	}
	if len(trials) == 0 {
		return nil, fmt.Errorf("no trials under %s", opts.DataDir)
	}

	catalog := features.DefaultCatalog()
	set := &FeatureSet{}
	skipped := 0
	ratings := devices.Ratings{}
	badSubjects := map[string]bool{}

	for _, trial := range trials {
		if badSubjects[trial.Subject] {
			skipped++
			continue
		}
		if _, ok := ratings[trial.Subject]; !ok {
			path := filepath.Join(opts.DataDir, trial.Subject, cfg.Files.Ratings)
			subjectRatings, err := devices.LoadSubjectRatings(path, trial.Subject)
			if err != nil {
				var missing *repanalyzer.MissingReferenceError
				if errors.As(err, &missing) {
					slog.Error("subject skipped", "subject", trial.Subject, "err", err)
					badSubjects[trial.Subject] = true
					skipped++
					continue
				}
				return nil, err
			}
			ratings[trial.Subject] = subjectRatings
		}
		rpe, err := ratings.For(trial.Subject, trial.SetID)
		if err != nil {
			slog.Error("trial skipped: no rating",
				"subject", trial.Subject, "set_id", trial.SetID, "err", err)
			skipped++
			continue
		}

		rows, columns, err := extractTrial(trial, cfg, catalog, opts.Charts)
		if err != nil {
			var invalid *repanalyzer.InvalidParameterError
			if errors.As(err, &invalid) {
				return nil, err
			}
			slog.Error("trial skipped",
				"subject", trial.Subject, "set_id", trial.SetID, "err", err)
			skipped++
			continue
		}
		if rows == nil {
			skipped++
			continue
		}
		if set.Columns == nil {
			set.Columns = columns
		} else if !equalColumns(set.Columns, columns) {
			slog.Error("trial skipped: feature columns differ from first trial",
				"subject", trial.Subject, "set_id", trial.SetID)
			skipped++
			continue
		}
		for rep, vals := range rows {
			set.Rows = append(set.Rows, FeatureRow{
				Subject: trial.Subject,
				SetID:   trial.SetID,
				RepID:   rep,
				RPE:     rpe,
				Values:  vals,
			})
		}
	}

	sort.Slice(set.Rows, func(i, j int) bool {
		a, b := set.Rows[i], set.Rows[j]
		if a.Subject != b.Subject {
			return a.Subject < b.Subject
		}
		if a.SetID != b.SetID {
			return a.SetID < b.SetID
		}
		return a.RepID < b.RepID
	})

	if err := writeFeatureSet(opts.OutPath, format, set); err != nil {
		return nil, err
	}
	return &Result{
		OutputPath: opts.OutPath,
		Rows:       len(set.Rows),
		Columns:    len(set.Columns) + 4,
		Trials:     len(trials) - skipped,
		Skipped:    skipped,
	}, nil
}

// extractTrial produces one trial's per-repetition feature vectors. A nil
// row slice with nil error means the trial had no usable repetitions.
func extractTrial(trial devices.Trial, cfg RunConfig, catalog features.Catalog, charts bool) ([][]float64, []string, error) {
	imu, err := timeseries.ReadCSV(filepath.Join(trial.Dir, "imu"+cfg.Files.Conditioned), ',', devices.IMURate)
	if err != nil {
		return nil, nil, fmt.Errorf("load conditioned imu: %w", err)
	}
	skeleton, err := timeseries.ReadCSV(filepath.Join(trial.Dir, "skeleton"+cfg.Files.Conditioned), ',', devices.SkeletonRate)
	if err != nil {
		return nil, nil, fmt.Errorf("load conditioned skeleton: %w", err)
	}
	hrv, err := timeseries.ReadCSV(filepath.Join(trial.Dir, "hrv"+cfg.Files.Conditioned), ',', devices.HRVRate)
	if err != nil {
		hrv = nil // optional stream
	}

	flywheel, err := devices.LoadFlywheel(filepath.Join(trial.Dir, cfg.Files.Flywheel))
	if err != nil {
		return nil, nil, fmt.Errorf("load flywheel: %w", err)
	}
	flywheel = flywheel.FilterMinDuration(cfg.Flywheel.MinDurationS)
	if flywheel.Count() == 0 {
		slog.Warn("no flywheel repetitions above minimum duration",
			"subject", trial.Subject, "set_id", trial.SetID)
		return nil, nil, nil
	}

	intervals, sig, err := segmentIMU(imu, cfg)
	if err != nil {
		return nil, nil, err
	}
	if len(intervals) == 0 {
		slog.Warn("no repetitions segmented",
			"subject", trial.Subject, "set_id", trial.SetID)
		return nil, nil, nil
	}
	if charts {
		chart := &report.TrialChart{
			Subject:   trial.Subject,
			SetID:     trial.SetID,
			Times:     imu.Timestamps,
			Signal:    sig,
			Intervals: intervals,
		}
		if err := chart.Render(filepath.Join(trial.Dir, "segmentation.html")); err != nil {
			slog.Warn("chart render failed",
				"subject", trial.Subject, "set_id", trial.SetID, "err", err)
		}
	}

	if err := segment.Annotate(imu, intervals); err != nil {
		return nil, nil, err
	}
	starts, ends := segment.IntervalTimes(imu, intervals)
	if err := skeleton.AnnotateByTime(starts, ends); err != nil {
		return nil, nil, err
	}
	if hrv != nil {
		if err := hrv.AnnotateByTime(starts, ends); err != nil {
			return nil, nil, err
		}
	}

	mask, err := match.Reconcile(
		segment.Durations(intervals, devices.IMURate), flywheel.Durations())
	if err != nil {
		return nil, nil, err
	}
	flywheel, err = flywheel.SelectRows(mask.Reference)
	if err != nil {
		return nil, nil, err
	}

	tables := []*features.Table{}
	for _, dev := range []struct {
		name  string
		table *timeseries.Table
	}{{"imu", imu}, {"skel", skeleton}, {"hrv", hrv}} {
		if dev.table == nil {
			continue
		}
		ft, err := features.Extract(dev.table, catalog)
		if err != nil {
			return nil, nil, fmt.Errorf("extract %s: %w", dev.name, err)
		}
		expandGroups(ft, len(intervals))
		features.Impute(ft)
		ft, err = ft.SelectRows(mask.Segmented)
		if err != nil {
			return nil, nil, err
		}
		ft.Prefix(dev.name + "__")
		tables = append(tables, ft)
	}
	tables = append(tables, flywheelFeatures(flywheel))

	joined, err := features.ConcatColumns(tables...)
	if err != nil {
		return nil, nil, err
	}
	return joined.Rows, joined.Columns, nil
}

// segmentIMU re-filters the conditioned inertial stream at the much lower
// segmentation cutoff and detects repetition intervals on the configured
// channel. The filtered (and possibly negated) signal is returned alongside
// for diagnostics.
func segmentIMU(imu *timeseries.Table, cfg RunConfig) ([]segment.Interval, []float64, error) {
	sig, err := imu.Channel(cfg.Segmentation.SignalChannel)
	if err != nil {
		return nil, nil, err
	}
	filtered, err := processing.LowpassValues(sig, cfg.Segmentation.RefilterCutoffHz, cfg.Filter.Order, devices.IMURate)
	if err != nil {
		return nil, nil, fmt.Errorf("refilter segmentation signal: %w", err)
	}
	if cfg.Segmentation.Negate {
		for i := range filtered {
			filtered[i] = -filtered[i]
		}
	}
	intervals, err := segment.PeakDetection(filtered, devices.IMURate, segment.Options{
		Prominence:      cfg.Segmentation.Prominence,
		MinPeakSpacingS: cfg.Segmentation.MinPeakSpacingS,
		MinDurationS:    cfg.Segmentation.MinDurationS,
		StdDevFraction:  cfg.Segmentation.StdDevFraction,
	})
	if err != nil {
		return nil, nil, err
	}
	return intervals, filtered, nil
}

// expandGroups pads a feature table out to the full repetition domain
// 0..k-1, inserting NaN rows for repetitions that captured no samples on
// this device. Impute turns those into column extremes afterwards.
func expandGroups(t *features.Table, k int) {
	present := map[int]int{}
	for i, g := range t.Groups {
		present[g] = i
	}
	groups := make([]int, k)
	rows := make([][]float64, k)
	for g := 0; g < k; g++ {
		groups[g] = g
		if i, ok := present[g]; ok {
			rows[g] = t.Rows[i]
			continue
		}
		row := make([]float64, len(t.Columns))
		for j := range row {
			row[j] = math.NaN()
		}
		rows[g] = row
	}
	t.Groups = groups
	t.Rows = rows
}

// flywheelFeatures reshapes the per-repetition flywheel rows into a feature
// table; the device reports one row per rep, so no statistics are computed.
func flywheelFeatures(s *devices.FlywheelSet) *features.Table {
	t := &features.Table{
		Groups:  make([]int, s.Count()),
		Columns: append([]string(nil), s.Columns...),
	}
	for i, row := range s.Rows {
		t.Groups[i] = i
		t.Rows = append(t.Rows, append([]float64(nil), row...))
	}
	t.Prefix("fw__")
	return t
}

func equalColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
