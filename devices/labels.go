package devices

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	repanalyzer "github.com/lucasjlepore/rep-analyzer"
)

// Ratings maps subject -> set id -> perceived exertion rating.
type Ratings map[string]map[int]float64

// LoadSubjectRatings reads one subject's rpe_ratings.json. The recording
// software writes {"rpe_ratings": [v0, v1, ...]} with the array index as the
// set id; the flat {"3": 7.5, ...} map form is accepted too.
func LoadSubjectRatings(path, subject string) (map[int]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &repanalyzer.MissingReferenceError{Subject: subject, What: "exertion ratings"}
		}
		return nil, fmt.Errorf("read ratings: %w", err)
	}

	var wrapped struct {
		RpeRatings []float64 `json:"rpe_ratings"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.RpeRatings != nil {
		ratings := make(map[int]float64, len(wrapped.RpeRatings))
		for setID, rating := range wrapped.RpeRatings {
			ratings[setID] = rating
		}
		return ratings, nil
	}

	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ratings %s: %w", path, err)
	}
	ratings := make(map[int]float64, len(raw))
	for id, rating := range raw {
		setID, err := strconv.Atoi(id)
		if err != nil {
			return nil, fmt.Errorf("ratings %s: bad set id %q", path, id)
		}
		ratings[setID] = rating
	}
	return ratings, nil
}

// For looks up the rating for one trial. A missing subject is fatal for that
// subject's trials.
func (r Ratings) For(subject string, setID int) (float64, error) {
	sets, ok := r[subject]
	if !ok {
		return 0, &repanalyzer.MissingReferenceError{Subject: subject, What: "exertion ratings"}
	}
	rating, ok := sets[setID]
	if !ok {
		return 0, &repanalyzer.MissingReferenceError{Subject: subject, What: fmt.Sprintf("exertion rating for set %d", setID)}
	}
	return rating, nil
}
