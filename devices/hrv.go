package devices

import (
	"fmt"
	"os"
	"sort"

	"github.com/tormoder/fit"

	repanalyzer "github.com/lucasjlepore/rep-analyzer"
	"github.com/lucasjlepore/rep-analyzer/timeseries"
)

// HRVRate is the cardiac monitor's nominal sampling rate in Hz.
const HRVRate = 1.0

// LoadHRV reads a comma-delimited cardiac export, e.g. a per-second
// heart_rate or intensity trace.
func LoadHRV(path string) (*timeseries.Table, error) {
	return loadNumericCSV(path, "load hrv", HRVRate)
}

// LoadHRVFit decodes a FIT activity file into a one-channel heart_rate table
// at one sample per second. Records with the invalid sentinel (0xFF) are
// dropped.
func LoadHRVFit(path string) (*timeseries.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	decoded, err := fit.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode fit %s: %w", path, err)
	}
	activity, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("fit %s is not an activity: %w", path, err)
	}

	type sample struct {
		ts float64
		hr float64
	}
	samples := make([]sample, 0, len(activity.Records))
	for _, rec := range activity.Records {
		if rec == nil || rec.Timestamp.IsZero() || rec.HeartRate == ^uint8(0) {
			continue
		}
		samples = append(samples, sample{
			ts: float64(rec.Timestamp.UnixNano()) / 1e9,
			hr: float64(rec.HeartRate),
		})
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i].ts < samples[j].ts })
	// Duplicate timestamps appear when a record is split across messages;
	// keep the last one.
	dedup := samples[:0]
	for i, s := range samples {
		if i > 0 && s.ts == dedup[len(dedup)-1].ts {
			dedup[len(dedup)-1] = s
			continue
		}
		dedup = append(dedup, s)
	}
	if len(dedup) < 2 {
		return nil, &repanalyzer.InsufficientDataError{Op: "load hrv fit", Samples: len(dedup), Needed: 2}
	}

	timestamps := make([]float64, len(dedup))
	hr := make([]float64, len(dedup))
	for i, s := range dedup {
		timestamps[i] = s.ts
		hr[i] = s.hr
	}
	table, err := timeseries.New(timestamps, HRVRate)
	if err != nil {
		return nil, fmt.Errorf("fit %s: %w", path, err)
	}
	if err := table.AddChannel("heart_rate", hr); err != nil {
		return nil, err
	}
	return table, nil
}
