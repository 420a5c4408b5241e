package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report JSON field names in errors.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ParseRawEvent decodes the analysis request carried by a message. A request
// without an ID takes the message key.
func ParseRawEvent(raw RawEvent) (AnalysisRequest, error) {
	var req AnalysisRequest
	if err := json.Unmarshal(raw.Value, &req); err != nil {
		return AnalysisRequest{}, fmt.Errorf("parse analysis request: %w", err)
	}
	if req.ID == "" {
		req.ID = string(raw.Key)
	}
	return req, nil
}

// Normalize fills in defaults and checks field constraints. It returns an
// InvalidInputError naming the first offending field.
func (r AnalysisRequest) Normalize() (AnalysisRequest, error) {
	r.Query = strings.TrimSpace(r.Query)
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return r, &InvalidInputError{Field: verrs[0].Field(), Reason: describeFieldError(verrs[0])}
		}
		return r, &InvalidInputError{Field: "request", Reason: err.Error()}
	}
	if (r.Lat == nil) != (r.Lon == nil) {
		return r, invalidInputf("location", "lat and lon must be given together")
	}
	if r.Lat == nil && r.Query == "" {
		return r, invalidInputf("location", "either query or lat/lon is required")
	}
	return r, nil
}

// Target returns the validated target date of the request.
func (r AnalysisRequest) Target() (TargetDate, error) {
	return NewTargetDate(r.Month, r.Day)
}

// Tolerance returns the requested window half-width or the policy default.
func (r AnalysisRequest) Tolerance(p Policy) int {
	if r.ToleranceDays == nil {
		return p.ToleranceDays
	}
	return *r.ToleranceDays
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// ResolveLocation determines the analysis point of a request. Coordinates are
// used as given, labelled with the query when present. A query alone is
// resolved through resolver; a nil resolver makes coordinates mandatory.
func ResolveLocation(ctx context.Context, req AnalysisRequest, resolver LocationResolver, logger *slog.Logger) (Location, error) {
	if req.Lat != nil && req.Lon != nil {
		return NewLocation(*req.Lat, *req.Lon, req.Query)
	}
	if resolver == nil {
		return Location{}, invalidInputf("location", "place search is disabled, lat/lon are required")
	}

	result, err := resolver.Resolve(ctx, req.Query)
	if err != nil {
		logger.Warn("location lookup failed",
			"request_id", req.ID,
			"query", req.Query,
			"error", err,
		)
		return Location{}, fmt.Errorf("resolve %q: %w", req.Query, err)
	}
	name := result.DisplayName
	if name == "" {
		name = req.Query
	}
	return NewLocation(result.Lat, result.Lon, name)
}

// NewReportEnvelope wraps a successful report.
func NewReportEnvelope(req AnalysisRequest, report Report) ReportEnvelope {
	return ReportEnvelope{
		RequestID:   req.ID,
		Status:      StatusOK,
		GeneratedAt: clock.Now().UTC(),
		Request:     req,
		Report:      &report,
	}
}

// NewErrorEnvelope wraps a failed request with its classified error.
func NewErrorEnvelope(req AnalysisRequest, err error) ReportEnvelope {
	return ReportEnvelope{
		RequestID:   req.ID,
		Status:      StatusError,
		GeneratedAt: clock.Now().UTC(),
		Request:     req,
		Error:       &EnvelopeError{Kind: ErrorKind(err), Message: err.Error()},
	}
}
