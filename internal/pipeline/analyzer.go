package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/climatology-service/internal/domain"
	"github.com/couchcryptid/climatology-service/internal/observability"
)

// Analyzer runs a single analysis request end to end: location resolution,
// history retrieval and the climatology engine. It is shared by the Kafka
// pipeline, the HTTP API and the CLI.
type Analyzer struct {
	resolver     domain.LocationResolver
	provider     domain.SeriesProvider
	policy       domain.Policy
	historyYears int
	logger       *slog.Logger
	metrics      *observability.Metrics
}

// NewAnalyzer creates an Analyzer. A nil resolver disables free-text queries.
func NewAnalyzer(resolver domain.LocationResolver, provider domain.SeriesProvider, policy domain.Policy, historyYears int, logger *slog.Logger, metrics *observability.Metrics) *Analyzer {
	return &Analyzer{
		resolver:     resolver,
		provider:     provider,
		policy:       policy,
		historyYears: historyYears,
		logger:       logger,
		metrics:      metrics,
	}
}

// Policy returns the engine policy the analyzer applies.
func (a *Analyzer) Policy() domain.Policy {
	return a.policy
}

// Analyze normalizes req and produces its report. The returned request is the
// normalized one, so callers can echo its assigned ID even on failure.
func (a *Analyzer) Analyze(ctx context.Context, req domain.AnalysisRequest) (domain.AnalysisRequest, domain.Report, error) {
	start := time.Now()
	req, report, err := a.analyze(ctx, req)

	outcome := domain.StatusOK
	if err != nil {
		outcome = domain.ErrorKind(err)
		a.logger.Info("analysis failed",
			"request_id", req.ID,
			"kind", outcome,
			"error", err,
		)
	}
	a.metrics.Analyses.WithLabelValues(outcome).Inc()
	a.metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	return req, report, err
}

// Envelope analyzes req and wraps the outcome for publication.
func (a *Analyzer) Envelope(ctx context.Context, req domain.AnalysisRequest) domain.ReportEnvelope {
	req, report, err := a.Analyze(ctx, req)
	if err != nil {
		return domain.NewErrorEnvelope(req, err)
	}
	return domain.NewReportEnvelope(req, report)
}

func (a *Analyzer) analyze(ctx context.Context, req domain.AnalysisRequest) (domain.AnalysisRequest, domain.Report, error) {
	req, err := req.Normalize()
	if err != nil {
		return req, domain.Report{}, err
	}
	target, err := req.Target()
	if err != nil {
		return req, domain.Report{}, err
	}
	policy := a.policy
	policy.ToleranceDays = req.Tolerance(a.policy)
	if err := policy.Validate(); err != nil {
		return req, domain.Report{}, err
	}

	loc, err := domain.ResolveLocation(ctx, req, a.resolver, a.logger)
	if err != nil {
		return req, domain.Report{}, err
	}

	startYear, endYear := domain.HistoricalRange(a.historyYears)
	series, err := a.provider.FetchSeries(ctx, loc, startYear, endYear)
	if err != nil {
		return req, domain.Report{}, err
	}

	report, err := domain.Analyze(series, target, policy)
	if err != nil {
		return req, domain.Report{}, err
	}
	a.logger.Debug("analysis complete",
		"request_id", req.ID,
		"location", loc.Name,
		"years", report.YearsAnalyzed,
	)
	return req, report, nil
}
