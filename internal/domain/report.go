package domain

import (
	"math"
	"sort"
)

// Report is the complete analysis of one location and target date.
type Report struct {
	Location        Location              `json:"location"`
	Target          TargetDate            `json:"target"`
	ToleranceDays   int                   `json:"tolerance_days"`
	YearsAnalyzed   int                   `json:"years_analyzed"`
	FirstYear       int                   `json:"first_year"`
	LastYear        int                   `json:"last_year"`
	Summaries       []DistributionSummary `json:"summaries"`
	Trends          []TrendEstimate       `json:"trends"`
	Risks           []RiskScore           `json:"risks"`
	Recommendations RecommendationBundle  `json:"recommendations"`
	Outlook         Outlook               `json:"outlook"`
	DataQuality     DataQuality           `json:"data_quality"`
}

// Summary returns the distribution summary for v if it was analysed.
func (r Report) Summary(v Variable) (DistributionSummary, bool) {
	for _, s := range r.Summaries {
		if s.Variable == v {
			return s, true
		}
	}
	return DistributionSummary{}, false
}

// Trend returns the trend estimate for v if it was analysed.
func (r Report) Trend(v Variable) (TrendEstimate, bool) {
	for _, t := range r.Trends {
		if t.Variable == v {
			return t, true
		}
	}
	return TrendEstimate{}, false
}

// Outlook is the plain-language headline of a report. Sections are nil when
// the series lacks the variable.
type Outlook struct {
	Temperature   *TemperatureOutlook   `json:"temperature,omitempty"`
	Precipitation *PrecipitationOutlook `json:"precipitation,omitempty"`
	Wind          *WindOutlook          `json:"wind,omitempty"`
}

// TemperatureOutlook gives the expected daily mean with its interquartile
// range and the record extremes.
type TemperatureOutlook struct {
	Expected   float64 `json:"expected"`
	LikelyLow  float64 `json:"likely_low"`
	LikelyHigh float64 `json:"likely_high"`
	RecordLow  float64 `json:"record_low"`
	RecordHigh float64 `json:"record_high"`
}

// PrecipitationOutlook gives the chance of a wet day and the typical amount
// when it rains.
type PrecipitationOutlook struct {
	Probability    float64 `json:"probability"`
	ExpectedAmount float64 `json:"expected_amount"`
	Confidence     string  `json:"confidence"`
}

// WindOutlook gives the expected speed with a one-sigma range.
type WindOutlook struct {
	Expected   float64 `json:"expected"`
	LikelyLow  float64 `json:"likely_low"`
	LikelyHigh float64 `json:"likely_high"`
	Max        float64 `json:"max"`
	Category   string  `json:"category"`
}

// Wind categories.
const (
	WindCalm       = "calm"
	WindModerate   = "moderate"
	WindStrong     = "strong"
	WindVeryStrong = "very strong"
)

// DataQuality scores how much history backs the report.
type DataQuality struct {
	YearsAnalyzed int     `json:"years_analyzed"`
	DepthScore    float64 `json:"depth_score"`
	Completeness  float64 `json:"completeness"`
	Overall       float64 `json:"overall"`
	Grade         string  `json:"grade"`
}

// referenceYears is the record length that earns a full depth score.
const referenceYears = 30

func buildOutlook(w WindowedSample, summaries []DistributionSummary, years int) Outlook {
	var o Outlook
	for _, s := range summaries {
		if s.Count == 0 {
			continue
		}
		switch s.Variable {
		case Temperature:
			smp, _ := w.Sample(Temperature)
			sorted := sortedCopy(smp.Values)
			o.Temperature = &TemperatureOutlook{
				Expected:   s.Mean,
				LikelyLow:  percentile(sorted, 25),
				LikelyHigh: percentile(sorted, 75),
				RecordLow:  s.Min,
				RecordHigh: s.Max,
			}
		case Precipitation:
			e, ok := s.Exceedance(ThresholdWetDay)
			if !ok {
				continue
			}
			po := &PrecipitationOutlook{Probability: e.Probability, Confidence: "Medium"}
			if e.MeanBeyond != nil {
				po.ExpectedAmount = *e.MeanBeyond
			}
			if years > 20 {
				po.Confidence = "High"
			}
			o.Precipitation = po
		case WindSpeed:
			o.Wind = &WindOutlook{
				Expected:   s.Mean,
				LikelyLow:  math.Max(0, s.Mean-s.StdDev),
				LikelyHigh: s.Mean + s.StdDev,
				Max:        s.Max,
				Category:   windCategory(s.Mean),
			}
		}
	}
	return o
}

func windCategory(speed float64) string {
	switch {
	case speed <= 3:
		return WindCalm
	case speed <= 7:
		return WindModerate
	case speed <= 12:
		return WindStrong
	default:
		return WindVeryStrong
	}
}

func assessQuality(w WindowedSample, years int) DataQuality {
	var present, total int
	for _, s := range w.Samples {
		present += len(s.Values)
		total += len(s.Values) + s.Missing
	}
	q := DataQuality{
		YearsAnalyzed: years,
		DepthScore:    math.Min(100, float64(years)/referenceYears*100),
	}
	if total > 0 {
		q.Completeness = float64(present) / float64(total) * 100
	}
	q.Overall = (q.DepthScore + q.Completeness) / 2
	q.Grade = grade(q.Overall)
	return q
}

func grade(score float64) string {
	switch {
	case score > 95:
		return "A+"
	case score > 90:
		return "A"
	case score > 80:
		return "B+"
	case score > 70:
		return "B"
	default:
		return "C"
	}
}

// seasonYears returns the sorted distinct season years across all samples.
func seasonYears(w WindowedSample) []int {
	set := make(map[int]bool)
	for _, s := range w.Samples {
		for _, y := range s.Years {
			set[y] = true
		}
	}
	out := make([]int, 0, len(set))
	for y := range set {
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}

func sortedCopy(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	sort.Float64s(out)
	return out
}
