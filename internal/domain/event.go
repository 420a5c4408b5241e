package domain

import (
	"context"
	"time"
)

// RawEvent represents an unprocessed message from the request topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// AnalysisRequest asks for the climatology of one place and calendar day.
// Either Query or both Lat and Lon must be set; coordinates win when both
// are given. A nil ToleranceDays uses the policy default.
type AnalysisRequest struct {
	ID            string   `json:"id,omitempty" validate:"max=128"`
	Query         string   `json:"query,omitempty" validate:"max=256"`
	Lat           *float64 `json:"lat,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Lon           *float64 `json:"lon,omitempty" validate:"omitempty,gte=-180,lte=180"`
	Month         int      `json:"month" validate:"gte=1,lte=12"`
	Day           int      `json:"day" validate:"gte=1,lte=31"`
	ToleranceDays *int     `json:"tolerance_days,omitempty" validate:"omitempty,gte=0"`
}

// Envelope statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ReportEnvelope is the message published for every accepted request.
type ReportEnvelope struct {
	RequestID   string          `json:"request_id"`
	Status      string          `json:"status"`
	GeneratedAt time.Time       `json:"generated_at"`
	Request     AnalysisRequest `json:"request"`
	Report      *Report         `json:"report,omitempty"`
	Error       *EnvelopeError  `json:"error,omitempty"`
}

// EnvelopeError carries the classified failure of a request.
type EnvelopeError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}
