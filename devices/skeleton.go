package devices

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	repanalyzer "github.com/lucasjlepore/rep-analyzer"
	"github.com/lucasjlepore/rep-analyzer/processing"
	"github.com/lucasjlepore/rep-analyzer/timeseries"
)

// SkeletonRate is the tracker's nominal frame rate in Hz.
const SkeletonRate = 30.0

// minJointConfidence is the lowest per-joint confidence level still trusted.
// Below it the sample is treated as missing and interpolated.
const minJointConfidence = 2

// SkeletonOptions controls skeleton CSV loading.
type SkeletonOptions struct {
	// ExcludeJoints drops the named joints (canonical prefix, e.g. "ear_left")
	// from the output table.
	ExcludeJoints []string
	// GapFill is the interpolation method for dropped-frame gaps.
	// Defaults to linear.
	GapFill processing.GapFillMethod
}

// LoadSkeleton reads a semicolon-delimited body tracking export. Each row
// carries a microsecond timestamp, a body index and per-joint position plus
// confidence columns. Only the most frequently tracked body is kept,
// low-confidence joint samples are interpolated over, and dropped frames are
// filled so the result sits on the nominal 30 Hz grid.
func LoadSkeleton(path string, opts SkeletonOptions) (*timeseries.Table, error) {
	rows, err := readAll(path, ';')
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, &repanalyzer.InsufficientDataError{Op: "load skeleton", Samples: len(rows) - 1, Needed: 1}
	}
	header := rows[0]
	tsCol, bodyCol := -1, -1
	for i, col := range header {
		switch canonicalName(col) {
		case "timestamp":
			tsCol = i
		case "body_idx":
			bodyCol = i
		}
	}
	if tsCol < 0 || bodyCol < 0 {
		return nil, fmt.Errorf("skeleton %s: missing timestamp or body_idx column", path)
	}

	// Keep only the body index that appears most often; the tracker
	// occasionally picks up bystanders.
	counts := map[string]int{}
	for _, row := range rows[1:] {
		counts[row[bodyCol]]++
	}
	mainBody, best := "", -1
	for body, n := range counts {
		if n > best {
			mainBody, best = body, n
		}
	}

	excluded := map[string]bool{}
	for _, j := range opts.ExcludeJoints {
		excluded[canonicalName(j)] = true
	}

	type jointCol struct {
		name       string
		idx        int
		confidence int // index of the matching confidence column, -1 if none
	}
	var cols []jointCol
	confFor := map[string]int{}
	for i, col := range header {
		name := canonicalName(col)
		if strings.HasSuffix(name, "_c") {
			confFor[strings.TrimSuffix(name, "_c")] = i
		}
	}
	for i, col := range header {
		if i == tsCol || i == bodyCol {
			continue
		}
		name := canonicalName(col)
		if strings.HasSuffix(name, "_c") {
			continue
		}
		joint := name
		if j := strings.LastIndexByte(name, '_'); j >= 0 {
			joint = name[:j]
		}
		if excluded[joint] {
			continue
		}
		conf := -1
		if c, ok := confFor[joint]; ok {
			conf = c
		}
		cols = append(cols, jointCol{name: name, idx: i, confidence: conf})
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("skeleton %s: no joint columns", path)
	}

	var timestamps []float64
	values := make([][]float64, len(cols))
	for _, row := range rows[1:] {
		if row[bodyCol] != mainBody {
			continue
		}
		us, err := strconv.ParseFloat(row[tsCol], 64)
		if err != nil {
			return nil, fmt.Errorf("skeleton %s: bad timestamp %q", path, row[tsCol])
		}
		timestamps = append(timestamps, us/1e6)
		for c, col := range cols {
			v, err := strconv.ParseFloat(row[col.idx], 64)
			if err != nil {
				v = math.NaN()
			}
			if col.confidence >= 0 {
				conf, err := strconv.Atoi(row[col.confidence])
				if err != nil || conf < minJointConfidence {
					v = math.NaN()
				}
			}
			values[c] = append(values[c], v)
		}
	}
	if len(timestamps) < 2 {
		return nil, &repanalyzer.InsufficientDataError{Op: "load skeleton", Samples: len(timestamps), Needed: 2}
	}

	for c := range values {
		interpolateNaN(timestamps, values[c])
	}

	table, err := timeseries.New(timestamps, SkeletonRate)
	if err != nil {
		return nil, fmt.Errorf("skeleton %s: %w", path, err)
	}
	for c, col := range cols {
		if err := table.AddChannel(col.name, values[c]); err != nil {
			return nil, err
		}
	}
	method := opts.GapFill
	if method == "" {
		method = processing.GapFillLinear
	}
	return processing.FillGaps(table, SkeletonRate, method)
}

// interpolateNaN fills runs of NaN in place by linear interpolation against
// the timestamps; leading and trailing runs take the nearest finite value.
func interpolateNaN(timestamps, values []float64) {
	n := len(values)
	prev := -1
	for i := 0; i < n; i++ {
		if math.IsNaN(values[i]) {
			continue
		}
		if prev < 0 {
			for j := 0; j < i; j++ {
				values[j] = values[i]
			}
		} else if i-prev > 1 {
			t0, t1 := timestamps[prev], timestamps[i]
			v0, v1 := values[prev], values[i]
			for j := prev + 1; j < i; j++ {
				frac := (timestamps[j] - t0) / (t1 - t0)
				values[j] = v0 + frac*(v1-v0)
			}
		}
		prev = i
	}
	if prev < 0 {
		for j := range values {
			values[j] = 0
		}
		return
	}
	for j := prev + 1; j < n; j++ {
		values[j] = values[prev]
	}
}
