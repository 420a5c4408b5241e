package domain

// Severity grades an extreme-event probability.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
	SeverityExtreme  Severity = "extreme"
)

// Severities lists the grades from least to most severe. Policy.SeverityCuts
// holds the boundaries between consecutive grades.
var Severities = []Severity{SeverityLow, SeverityModerate, SeverityHigh, SeverityExtreme}

// RiskScore is the probability of one extreme event type on the target date.
type RiskScore struct {
	Event       string   `json:"event"`
	Variable    Variable `json:"variable"`
	Threshold   float64  `json:"threshold"`
	Probability float64  `json:"probability"`
	Severity    Severity `json:"severity"`
}

// ScoreRisks evaluates p.RiskRules in order against the summaries. Rules
// whose variable or threshold is not present are skipped.
func ScoreRisks(summaries []DistributionSummary, p Policy) []RiskScore {
	byVar := make(map[Variable]DistributionSummary, len(summaries))
	for _, s := range summaries {
		byVar[s.Variable] = s
	}

	out := []RiskScore{}
	for _, r := range p.RiskRules {
		s, ok := byVar[r.Variable]
		if !ok {
			continue
		}
		e, ok := s.Exceedance(r.Threshold)
		if !ok {
			continue
		}
		out = append(out, RiskScore{
			Event:       r.Event,
			Variable:    r.Variable,
			Threshold:   e.Threshold,
			Probability: e.Probability,
			Severity:    severityFor(e.Probability, p.SeverityCuts),
		})
	}
	return out
}

func severityFor(prob float64, cuts []float64) Severity {
	for i, c := range cuts {
		if prob < c && i < len(Severities) {
			return Severities[i]
		}
	}
	return Severities[len(Severities)-1]
}
