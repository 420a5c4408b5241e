package domain

import (
	"fmt"
	"strings"
)

// RecommendationBundle holds planning advice and a packing checklist, both
// in rule order without duplicates.
type RecommendationBundle struct {
	Advice  []string `json:"advice"`
	Packing []string `json:"packing"`
}

// conditions are the facts the rule table is evaluated against. A nil field
// means the underlying variable or threshold was not analysed, and rules
// reading it never fire.
type conditions struct {
	temp     *float64 // expected mean temperature, °C
	rainPct  *float64 // wet-day probability, percent
	wind     *float64 // expected wind speed, m/s
	heatDays *float64 // hot-day probability, percent
}

type synthRule struct {
	when    func(c conditions) bool
	advice  string
	packing []string
}

func gt(v *float64, x float64) bool { return v != nil && *v > x }
func lt(v *float64, x float64) bool { return v != nil && *v < x }
func between(v *float64, lo, hi float64) bool {
	return v != nil && *v > lo && *v <= hi
}

// adviceRules are evaluated top to bottom. Tiers of the same fact are
// mutually exclusive.
var adviceRules = []synthRule{
	{when: func(c conditions) bool { return gt(c.rainPct, 70) },
		advice: "Very high rain chance: book an indoor backup venue now"},
	{when: func(c conditions) bool { return between(c.rainPct, 50, 70) },
		advice: "High rain probability: plan substantial rain protection such as tents and umbrellas"},
	{when: func(c conditions) bool { return between(c.rainPct, 30, 50) },
		advice: "Moderate rain chance: prepare a rain contingency plan"},
	{when: func(c conditions) bool { return c.rainPct != nil && *c.rainPct <= 30 },
		advice: "Low rain probability: weather looks favorable"},

	{when: func(c conditions) bool { return gt(c.temp, 32) },
		advice: "Very hot weather expected: provide shade structures, cooling stations and extra water"},
	{when: func(c conditions) bool { return between(c.temp, 28, 32) },
		advice: "Hot weather expected: provide shade, ice and hydration stations"},
	{when: func(c conditions) bool { return lt(c.temp, 5) },
		advice: "Cold weather expected: arrange heating, warm drinks and shelter"},
	{when: func(c conditions) bool { return c.temp != nil && *c.temp >= 5 && *c.temp < 15 },
		advice: "Cool weather: guests should bring layers"},

	{when: func(c conditions) bool { return gt(c.heatDays, 15) },
		advice: "Notable heat risk: monitor forecasts closely as the date approaches"},

	{when: func(c conditions) bool { return gt(c.wind, 12) },
		advice: "Strong winds expected: secure decorations, tents and lightweight items"},
	{when: func(c conditions) bool { return between(c.wind, 8, 12) },
		advice: "Breezy conditions possible: use weighted decorations"},
}

var packingRules = []synthRule{
	{when: func(c conditions) bool { return gt(c.rainPct, 70) },
		packing: []string{"Umbrella", "Rain jacket or poncho"}},
	{when: func(c conditions) bool { return between(c.rainPct, 50, 70) },
		packing: []string{"Umbrella"}},
	{when: func(c conditions) bool { return between(c.rainPct, 30, 50) },
		packing: []string{"Compact umbrella"}},

	{when: func(c conditions) bool { return gt(c.temp, 32) },
		packing: []string{"Large cooler with extra ice", "Extra water (2 L per person)", "Sunscreen SPF 50+", "Sunglasses and hat"}},
	{when: func(c conditions) bool { return between(c.temp, 28, 32) },
		packing: []string{"Cooler with ice", "Water bottles", "Sunscreen"}},
	{when: func(c conditions) bool { return lt(c.temp, 5) },
		packing: []string{"Heavy winter coat", "Gloves and warm hat", "Thermos with hot drinks"}},
	{when: func(c conditions) bool { return c.temp != nil && *c.temp >= 5 && *c.temp < 15 },
		packing: []string{"Jacket or sweater", "Hot beverages"}},

	{when: func(c conditions) bool { return gt(c.wind, 15) },
		packing: []string{"Tent stakes and weights", "Indoor backup option"}},
	{when: func(c conditions) bool { return between(c.wind, 10, 15) },
		packing: []string{"Weights for decorations", "Tablecloth clips"}},

	{when: func(c conditions) bool { return gt(c.rainPct, 40) && gt(c.temp, 25) },
		packing: []string{"Insect repellent"}},
	{when: func(c conditions) bool { return lt(c.rainPct, 20) && gt(c.temp, 25) },
		packing: []string{"Shade structure or canopy"}},
}

// Synthesize turns summaries, trends and risk scores into advice and a
// packing list. Rules fire in table order: rain, temperature, heat, wind,
// then one warning per high or extreme risk, then one per confident trend.
func Synthesize(summaries []DistributionSummary, trends []TrendEstimate, risks []RiskScore) RecommendationBundle {
	c := conditionsFrom(summaries)

	var advice, packing dedup
	for _, r := range adviceRules {
		if r.when(c) {
			advice.add(r.advice)
		}
	}
	for _, r := range risks {
		if r.Severity == SeverityHigh || r.Severity == SeverityExtreme {
			advice.add(fmt.Sprintf("%s risk is %s: %.0f%% of historical days on this date exceeded the limit",
				eventLabel(r.Event), r.Severity, r.Probability*100))
		}
	}
	for _, t := range trends {
		if t.Direction == TrendStable || t.ConfidenceLevel == ConfidenceLow {
			continue
		}
		advice.add(fmt.Sprintf("%s shows a %s trend of %+.2f %s over %d years (%s confidence)",
			variableLabel(t.Variable), t.Signal, t.PeriodChange, t.Variable.Unit(),
			t.LastYear-t.FirstYear, t.ConfidenceLevel))
	}
	for _, r := range packingRules {
		if r.when(c) {
			for _, item := range r.packing {
				packing.add(item)
			}
		}
	}
	return RecommendationBundle{Advice: advice.list(), Packing: packing.list()}
}

func conditionsFrom(summaries []DistributionSummary) conditions {
	var c conditions
	for _, s := range summaries {
		if s.Count == 0 {
			continue
		}
		switch s.Variable {
		case Temperature:
			c.temp = ptr(s.Mean)
			if e, ok := s.Exceedance(ThresholdHotDay); ok {
				c.heatDays = ptr(e.Probability * 100)
			}
		case Precipitation:
			if e, ok := s.Exceedance(ThresholdWetDay); ok {
				c.rainPct = ptr(e.Probability * 100)
			}
		case WindSpeed:
			c.wind = ptr(s.Mean)
		}
	}
	return c
}

type dedup struct {
	items []string
	seen  map[string]bool
}

func (d *dedup) add(s string) {
	if d.seen == nil {
		d.seen = make(map[string]bool)
	}
	if d.seen[s] {
		return
	}
	d.seen[s] = true
	d.items = append(d.items, s)
}

func (d *dedup) list() []string {
	if d.items == nil {
		return []string{}
	}
	return d.items
}

func eventLabel(event string) string {
	words := strings.Split(event, "_")
	if len(words) > 0 && words[0] != "" {
		words[0] = strings.ToUpper(words[0][:1]) + words[0][1:]
	}
	return strings.Join(words, " ")
}

func variableLabel(v Variable) string {
	switch v {
	case Temperature:
		return "Mean temperature"
	case TemperatureMax:
		return "Daily maximum temperature"
	case TemperatureMin:
		return "Daily minimum temperature"
	case Precipitation:
		return "Precipitation"
	case WindSpeed:
		return "Wind speed"
	default:
		return string(v)
	}
}

func ptr(f float64) *float64 { return &f }
