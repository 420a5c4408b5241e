package domain

// Analyze runs the full engine on a provider series: normalization, window
// selection, per-variable summaries and trends, risk scoring, recommendations,
// outlook and data quality. The first failing stage aborts with its typed
// error. The result depends only on the arguments.
func Analyze(raw RawSeries, t TargetDate, p Policy) (Report, error) {
	if err := p.Validate(); err != nil {
		return Report{}, err
	}
	series, err := Normalize(raw, p)
	if err != nil {
		return Report{}, err
	}
	window, err := SelectWindow(series, t, p.ToleranceDays, p)
	if err != nil {
		return Report{}, err
	}

	summaries := make([]DistributionSummary, 0, len(window.Samples))
	trends := make([]TrendEstimate, 0, len(window.Samples))
	for _, smp := range window.Samples {
		s := Summarize(smp, p.Thresholds, p.Percentiles)
		tr, err := EstimateTrend(smp, s.StdDev, p)
		if err != nil {
			return Report{}, err
		}
		summaries = append(summaries, s)
		trends = append(trends, tr)
	}

	risks := ScoreRisks(summaries, p)
	years := seasonYears(window)

	r := Report{
		Location:        series.Location,
		Target:          t,
		ToleranceDays:   p.ToleranceDays,
		YearsAnalyzed:   len(years),
		Summaries:       summaries,
		Trends:          trends,
		Risks:           risks,
		Recommendations: Synthesize(summaries, trends, risks),
		Outlook:         buildOutlook(window, summaries, len(years)),
		DataQuality:     assessQuality(window, len(years)),
	}
	if len(years) > 0 {
		r.FirstYear = years[0]
		r.LastYear = years[len(years)-1]
	}
	return r, nil
}
