package pipeline

import (
	"context"

	"github.com/couchcryptid/climatology-service/internal/domain"
)

// RequestTransformer implements Transformer by decoding the analysis request
// carried by a message and running it through an Analyzer.
type RequestTransformer struct {
	analyzer *Analyzer
}

// NewTransformer creates a RequestTransformer.
func NewTransformer(analyzer *Analyzer) *RequestTransformer {
	return &RequestTransformer{analyzer: analyzer}
}

// Transform returns an error only when the message is not a request at all.
// Analysis failures become error envelopes.
func (t *RequestTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.ReportEnvelope, error) {
	req, err := domain.ParseRawEvent(raw)
	if err != nil {
		return domain.ReportEnvelope{}, err
	}
	return t.analyzer.Envelope(ctx, req), nil
}
