package timeseries

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

const timeColumn = "time_s"

// WriteCSV persists the table with a leading time column. The annotation
// column, when present, is written last as "reps".
func (t *Table) WriteCSV(path string, delimiter rune) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = delimiter

	header := append([]string{timeColumn}, t.channels...)
	if t.Reps != nil {
		header = append(header, "reps")
	}
	if err := w.Write(header); err != nil {
		return err
	}

	row := make([]string, 0, len(header))
	for i := 0; i < t.Len(); i++ {
		row = row[:0]
		row = append(row, strconv.FormatFloat(t.Timestamps[i], 'f', 6, 64))
		for _, name := range t.channels {
			row = append(row, strconv.FormatFloat(t.values[name][i], 'f', 6, 64))
		}
		if t.Reps != nil {
			row = append(row, strconv.Itoa(t.Reps[i]))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ReadCSV loads a table previously written by WriteCSV, or any delimited file
// whose first column is a float seconds timestamp.
func ReadCSV(path string, delimiter rune, nominalRate float64) (*Table, error) {
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
	if len(rows) < 2 {
		return nil, fmt.Errorf("read %s: no data rows", path)
	}

	header := rows[0]
	hasReps := header[len(header)-1] == "reps"
	nChannels := len(header) - 1
	if hasReps {
		nChannels--
	}

	n := len(rows) - 1
	timestamps := make([]float64, n)
	cols := make([][]float64, nChannels)
	for c := range cols {
		cols[c] = make([]float64, n)
	}
	var reps []int
	if hasReps {
		reps = make([]int, n)
	}

	for i, row := range rows[1:] {
		if len(row) != len(header) {
			return nil, fmt.Errorf("read %s: row %d has %d fields, header has %d", path, i+1, len(row), len(header))
		}
		if timestamps[i], err = strconv.ParseFloat(row[0], 64); err != nil {
			return nil, fmt.Errorf("read %s: row %d time: %w", path, i+1, err)
		}
		for c := 0; c < nChannels; c++ {
			if cols[c][i], err = strconv.ParseFloat(row[c+1], 64); err != nil {
				return nil, fmt.Errorf("read %s: row %d column %s: %w", path, i+1, header[c+1], err)
			}
		}
		if hasReps {
			if reps[i], err = strconv.Atoi(row[len(header)-1]); err != nil {
				return nil, fmt.Errorf("read %s: row %d reps: %w", path, i+1, err)
			}
		}
	}

	t, err := New(timestamps, nominalRate)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	for c := 0; c < nChannels; c++ {
		if err := t.AddChannel(header[c+1], cols[c]); err != nil {
			return nil, err
		}
	}
	t.Reps = reps
	return t, nil
}
