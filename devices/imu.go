package devices

import (
	"fmt"
	"strconv"

	repanalyzer "github.com/lucasjlepore/rep-analyzer"
	"github.com/lucasjlepore/rep-analyzer/timeseries"
)

// IMURate is the inertial unit's nominal sampling rate in Hz.
const IMURate = 128.0

// LoadIMU reads a comma-delimited inertial export with a time column and one
// column per sensor axis, e.g. chest_acceleration_{x,y,z}.
func LoadIMU(path string) (*timeseries.Table, error) {
	return loadNumericCSV(path, "load imu", IMURate)
}

// loadNumericCSV parses a comma-delimited file whose first recognised time
// column ("time", "time_s" or "timestamp") becomes the table axis and whose
// remaining columns become channels under canonical names.
func loadNumericCSV(path, op string, rate float64) (*timeseries.Table, error) {
	rows, err := readAll(path, ',')
	if err != nil {
		return nil, err
	}
	if len(rows) < 3 {
		return nil, &repanalyzer.InsufficientDataError{Op: op, Samples: len(rows) - 1, Needed: 2}
	}
	header := rows[0]
	tsCol := -1
	for i, col := range header {
		switch canonicalName(col) {
		case "time", "time_s", "timestamp":
			tsCol = i
		}
		if tsCol >= 0 {
			break
		}
	}
	if tsCol < 0 {
		return nil, fmt.Errorf("%s %s: no time column", op, path)
	}

	timestamps := make([]float64, 0, len(rows)-1)
	values := make([][]float64, len(header))
	for _, row := range rows[1:] {
		ts, err := parseTimestamp(row[tsCol])
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", op, path, err)
		}
		timestamps = append(timestamps, ts)
		for i, field := range row {
			if i == tsCol {
				continue
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s %s: bad value %q in column %s", op, path, field, header[i])
			}
			values[i] = append(values[i], v)
		}
	}

	table, err := timeseries.New(timestamps, rate)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", op, path, err)
	}
	for i, col := range header {
		if i == tsCol {
			continue
		}
		if err := table.AddChannel(canonicalName(col), values[i]); err != nil {
			return nil, err
		}
	}
	return table, nil
}
