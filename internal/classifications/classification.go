// Package classifications scores feature signals into document classes,
// keeps the resulting records, and routes user feedback into the learning
// system. Records are immutable once created.
package classifications

import (
	"net/url"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/docsort/internal/scoring"
)

// Record is a stored classification together with the exact inputs and
// configuration versions that produced it.
type Record struct {
	ID                uuid.UUID      `json:"id"`
	Signal            scoring.Signal `json:"signal"`
	Scores            scoring.Scores `json:"scores"`
	Predicted         scoring.Class  `json:"predicted"`
	Confidence        float64        `json:"confidence"`
	Rule              scoring.Rule   `json:"rule"`
	WeightsVersion    int            `json:"weights_version"`
	ThresholdsVersion int            `json:"thresholds_version"`
	CreatedAt         time.Time      `json:"created_at"`
}

// Result is the classification outcome returned to callers.
type Result struct {
	ID                uuid.UUID      `json:"id"`
	Predicted         scoring.Class  `json:"predicted"`
	Confidence        float64        `json:"confidence"`
	Scores            scoring.Scores `json:"scores"`
	Rule              scoring.Rule   `json:"rule"`
	WeightsVersion    int            `json:"weights_version"`
	ThresholdsVersion int            `json:"thresholds_version"`
}

func (r Record) Result() Result {
	return Result{
		ID:                r.ID,
		Predicted:         r.Predicted,
		Confidence:        r.Confidence,
		Scores:            r.Scores,
		Rule:              r.Rule,
		WeightsVersion:    r.WeightsVersion,
		ThresholdsVersion: r.ThresholdsVersion,
	}
}

// FeedbackCommand carries a user correction for a classification.
// UserConfidence defaults to medium.
type FeedbackCommand struct {
	CorrectedClass string `json:"corrected_class"`
	UserConfidence string `json:"user_confidence,omitempty"`
	Reason         string `json:"reason,omitempty"`
}

// FeedbackResult reports the effect of accepted feedback. Rejected
// feedback answers with accepted false and the reason only.
type FeedbackResult struct {
	Accepted              bool    `json:"accepted"`
	Reason                string  `json:"reason"`
	WeightsVersion        int     `json:"weights_version"`
	ThresholdsVersion     int     `json:"thresholds_version"`
	OptimizationScheduled bool    `json:"optimization_scheduled"`
	Accuracy              float64 `json:"accuracy"`
	FeedbackCount         int     `json:"feedback_count"`
}

// Neighbor is a record similar to a queried record.
type Neighbor struct {
	ID         uuid.UUID     `json:"id"`
	Similarity float64       `json:"similarity"`
	Predicted  scoring.Class `json:"predicted"`
	CreatedAt  time.Time     `json:"created_at"`
}

// Reproduction compares a record with a rescoring of its signal against
// the configuration versions it was scored with.
type Reproduction struct {
	Original   Result `json:"original"`
	Reproduced Result `json:"reproduced"`
	Match      bool   `json:"match"`
}

// Filters contains optional filtering criteria for record queries.
// Nil fields are ignored.
type Filters struct {
	Predicted *scoring.Class `json:"predicted,omitempty"`
	Rule      *scoring.Rule  `json:"rule,omitempty"`
	Since     *time.Time     `json:"since,omitempty"`
}

func (f Filters) Match(r *Record) bool {
	if f.Predicted != nil && r.Predicted != *f.Predicted {
		return false
	}
	if f.Rule != nil && r.Rule != *f.Rule {
		return false
	}
	if f.Since != nil && r.CreatedAt.Before(*f.Since) {
		return false
	}
	return true
}

// FiltersFromQuery extracts filter values from URL query parameters.
// Unparseable values are ignored.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if p := values.Get("predicted"); p != "" {
		if c, err := scoring.ParseClass(p); err == nil {
			f.Predicted = &c
		}
	}

	if r := values.Get("rule"); r != "" {
		rule := scoring.Rule(r)
		if slices.Contains(scoring.Rules, rule) {
			f.Rule = &rule
		}
	}

	if s := values.Get("since"); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			f.Since = &t
		}
	}

	return f
}
