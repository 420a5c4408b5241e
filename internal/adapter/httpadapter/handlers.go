package httpadapter

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/couchcryptid/climatology-service/internal/domain"
	"github.com/couchcryptid/climatology-service/internal/export"
	"github.com/go-chi/render"
)

// handleQuery serves GET /v1/climatology?lat=&lon=&query=&month=&day=.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format, err := export.ParseFormat(q.Get("format"))
	if err != nil {
		s.writeError(w, r, domain.AnalysisRequest{}, &domain.InvalidInputError{Field: "format", Reason: err.Error()})
		return
	}
	req, err := requestFromQuery(q)
	if err != nil {
		s.writeError(w, r, req, err)
		return
	}
	s.analyze(w, r, req, format)
}

// handleSubmit serves POST /v1/climatology with a JSON analysis request.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, r, domain.AnalysisRequest{}, &domain.InvalidInputError{Field: "format", Reason: err.Error()})
		return
	}
	var req domain.AnalysisRequest
	if err := render.DecodeJSON(http.MaxBytesReader(w, r.Body, 1<<16), &req); err != nil {
		s.writeError(w, r, req, &domain.InvalidInputError{Field: "body", Reason: err.Error()})
		return
	}
	s.analyze(w, r, req, format)
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request, req domain.AnalysisRequest, format export.Format) {
	req, report, err := s.analyzer.Analyze(r.Context(), req)
	if err != nil {
		s.writeError(w, r, req, err)
		return
	}
	env := domain.NewReportEnvelope(req, report)

	if format == export.FormatJSON {
		render.Status(r, http.StatusOK)
		render.JSON(w, r, env)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, env); err != nil {
		s.logger.Error("export report failed", "request_id", req.ID, "format", format, "error", err)
		s.writeError(w, r, req, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.FileName(req.ID)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// writeError responds with an error envelope and the status matching its kind.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, req domain.AnalysisRequest, err error) {
	env := domain.NewErrorEnvelope(req, err)
	status := statusForKind(env.Error.Kind)
	if status >= http.StatusInternalServerError {
		s.logger.Error("analysis request failed", "request_id", req.ID, "error", err)
	}
	render.Status(r, status)
	render.JSON(w, r, env)
}

func statusForKind(kind string) int {
	switch kind {
	case domain.KindInvalidInput:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindInsufficientData, domain.KindDataQuality:
		return http.StatusUnprocessableEntity
	case domain.KindProvider:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func requestFromQuery(q url.Values) (domain.AnalysisRequest, error) {
	req := domain.AnalysisRequest{
		ID:    q.Get("id"),
		Query: q.Get("query"),
	}
	var err error
	if req.Lat, err = optionalFloat(q, "lat"); err != nil {
		return req, err
	}
	if req.Lon, err = optionalFloat(q, "lon"); err != nil {
		return req, err
	}
	if req.Month, err = requiredInt(q, "month"); err != nil {
		return req, err
	}
	if req.Day, err = requiredInt(q, "day"); err != nil {
		return req, err
	}
	if s := q.Get("tolerance_days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return req, &domain.InvalidInputError{Field: "tolerance_days", Reason: "must be an integer"}
		}
		req.ToleranceDays = &n
	}
	return req, nil
}

func optionalFloat(q url.Values, key string) (*float64, error) {
	s := q.Get(key)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, &domain.InvalidInputError{Field: key, Reason: "must be a number"}
	}
	return &v, nil
}

func requiredInt(q url.Values, key string) (int, error) {
	s := q.Get(key)
	if s == "" {
		return 0, &domain.InvalidInputError{Field: key, Reason: "is required"}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &domain.InvalidInputError{Field: key, Reason: "must be an integer"}
	}
	return n, nil
}
