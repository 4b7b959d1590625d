// Package devices loads the per-device recordings of one trial into
// canonical timeseries tables and discovers trials on disk. Each loader
// owns the quirks of its device's file format so the pipeline only ever
// sees clean, schema-validated tables.
package devices

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Trial locates one subject/set recording directory.
type Trial struct {
	Subject string
	SetID   int
	Dir     string
}

// DiscoverTrials walks base/<subject>/<set> in sorted order. Set directories
// are expected to start with their numeric set id ("03_squat" -> 3); entries
// that do not parse are skipped.
func DiscoverTrials(base string) ([]Trial, error) {
	subjects, err := os.ReadDir(base)
	if err != nil {
		return nil, fmt.Errorf("read base directory: %w", err)
	}
	var trials []Trial
	for _, subject := range subjects {
		if !subject.IsDir() {
			continue
		}
		subjectDir := filepath.Join(base, subject.Name())
		sets, err := os.ReadDir(subjectDir)
		if err != nil {
			return nil, fmt.Errorf("read subject %s: %w", subject.Name(), err)
		}
		for _, set := range sets {
			if !set.IsDir() {
				continue
			}
			idPart := set.Name()
			if i := strings.IndexByte(idPart, '_'); i >= 0 {
				idPart = idPart[:i]
			}
			setID, err := strconv.Atoi(idPart)
			if err != nil {
				continue
			}
			trials = append(trials, Trial{
				Subject: subject.Name(),
				SetID:   setID,
				Dir:     filepath.Join(subjectDir, set.Name()),
			})
		}
	}
	sort.Slice(trials, func(i, j int) bool {
		if trials[i].Subject != trials[j].Subject {
			return trials[i].Subject < trials[j].Subject
		}
		return trials[i].SetID < trials[j].SetID
	})
	return trials, nil
}

// parseTimestamp accepts float seconds or an RFC3339 datetime, returning
// epoch seconds either way. Device vendors disagree on time columns.
func parseTimestamp(field string) (float64, error) {
	if v, err := strconv.ParseFloat(field, 64); err == nil {
		return v, nil
	}
	ts, err := time.Parse(time.RFC3339, field)
	if err != nil {
		return 0, fmt.Errorf("unparseable timestamp %q", field)
	}
	return float64(ts.UnixNano()) / 1e9, nil
}

func readAll(path string, delimiter rune) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.Comma = delimiter
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

// canonicalName rewrites a vendor column like "PELVIS (y)" or
// "CHEST_ACCELERATION_Z" into snake case: "pelvis_y", "chest_acceleration_z".
func canonicalName(col string) string {
	s := strings.ToLower(strings.TrimSpace(col))
	s = strings.ReplaceAll(s, " (", "_")
	s = strings.ReplaceAll(s, "(", "_")
	s = strings.ReplaceAll(s, ")", "")
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "/", "_per_")
	return s
}
