package timeseries

import (
	"fmt"

	repanalyzer "github.com/lucasjlepore/rep-analyzer"
)

// Schema maps logical channel names (e.g. "pelvis_y", "chest_accel_z") to the
// physical columns a device writes. Every loader validates its schema at
// construction time so a missing channel fails the trial immediately instead
// of surfacing as an empty selection later.
type Schema map[string]string

// Validate checks that every physical column exists in the table.
func (s Schema) Validate(t *Table) error {
	for logical, physical := range s {
		if _, err := t.Channel(physical); err != nil {
			return &repanalyzer.MissingReferenceError{
				What: fmt.Sprintf("channel %q (logical %q)", physical, logical),
			}
		}
	}
	return nil
}

// Resolve returns the values of a logical channel.
func (s Schema) Resolve(t *Table, logical string) ([]float64, error) {
	physical, ok := s[logical]
	if !ok {
		return nil, &repanalyzer.MissingReferenceError{What: fmt.Sprintf("logical channel %q", logical)}
	}
	return t.Channel(physical)
}
