package feedback

import "github.com/JaimeStill/docsort/internal/scoring"

// DefaultRecent is the number of recent entries included in Stats.
const DefaultRecent = 10

// Distribution counts entries per predicted and per corrected class.
type Distribution struct {
	Predicted map[scoring.Class]int `json:"predicted"`
	Corrected map[scoring.Class]int `json:"corrected"`
}

// Stats summarizes ledger accuracy.
type Stats struct {
	Total        int                                     `json:"total_feedback"`
	Correct      int                                     `json:"correct"`
	Accuracy     float64                                 `json:"accuracy"`
	Confusion    map[scoring.Class]map[scoring.Class]int `json:"confusion_matrix"`
	Distribution Distribution                            `json:"class_distribution"`
	Recent       []Entry                                 `json:"recent_feedback"`
}

// ComputeStats derives accuracy, the predicted to corrected confusion
// matrix, class distributions and the last recent entries.
func ComputeStats(entries []Entry, recent int) Stats {
	s := Stats{
		Total:     len(entries),
		Confusion: make(map[scoring.Class]map[scoring.Class]int),
		Distribution: Distribution{
			Predicted: make(map[scoring.Class]int),
			Corrected: make(map[scoring.Class]int),
		},
		Recent: []Entry{},
	}

	for _, e := range entries {
		if e.Correct() {
			s.Correct++
		}
		row := s.Confusion[e.Predicted]
		if row == nil {
			row = make(map[scoring.Class]int)
			s.Confusion[e.Predicted] = row
		}
		row[e.CorrectedClass]++
		s.Distribution.Predicted[e.Predicted]++
		s.Distribution.Corrected[e.CorrectedClass]++
	}

	if s.Total > 0 {
		s.Accuracy = float64(s.Correct) / float64(s.Total)
	}

	if recent > 0 {
		start := max(len(entries)-recent, 0)
		s.Recent = append(s.Recent, entries[start:]...)
	}
	return s
}
