package scoring

// Rule names the decision rule that selected a class.
type Rule string

const (
	RuleArbeitsbericht Rule = "arbeitsbericht_threshold"
	RuleTypeplate      Rule = "typeplate_dominance"
	RuleDocument       Rule = "document_dominance"
	RulePhoto          Rule = "photo_fallback"
)

// Rules lists every rule in evaluation order.
var Rules = []Rule{RuleArbeitsbericht, RuleTypeplate, RuleDocument, RulePhoto}

// Decision is the outcome of Decide.
type Decision struct {
	Class      Class   `json:"class"`
	Confidence float64 `json:"confidence"`
	Rule       Rule    `json:"rule"`
}

// Decide applies the prioritized decision rules. The first matching rule
// wins and the photo fallback always matches. Dominance checks are strict,
// threshold checks are inclusive.
func Decide(s Scores, t *ThresholdConfig) Decision {
	var (
		class Class
		rule  Rule
	)

	switch {
	case s.AR >= t.Get(Arbeitsbericht):
		class, rule = Arbeitsbericht, RuleArbeitsbericht
	case s.TP > max(s.DOC, s.PHOTO) && s.TP >= t.Get(Typeplate):
		class, rule = Typeplate, RuleTypeplate
	case s.DOC > s.PHOTO && s.DOC >= t.Get(Document):
		class, rule = Document, RuleDocument
	default:
		class, rule = Photo, RulePhoto
	}

	return Decision{Class: class, Confidence: confidence(s, class), Rule: rule}
}

// confidence is the winner's margin over the best other class relative to
// the winner, clamped to [0,1].
func confidence(s Scores, winner Class) float64 {
	top := s.Get(winner)
	if top <= 0 {
		return 0
	}

	var runnerUp float64
	for _, c := range Classes {
		if c != winner {
			runnerUp = max(runnerUp, s.Get(c))
		}
	}

	return min(max((top-runnerUp)/top, 0), 1)
}
