package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/runnerr0/recall/internal/cache"
	"github.com/runnerr0/recall/internal/config"
	"github.com/runnerr0/recall/internal/history"
	"github.com/runnerr0/recall/internal/storage"
	"github.com/runnerr0/recall/internal/wire"
)

// computeFunc turns a raw request body into a response value. now reads
// the server clock in epoch milliseconds and is only called when the body
// has no current_time.
type computeFunc func(ctx context.Context, body []byte, now func() float64) (any, error)

// handlePost reads the body, serves a cached response when one exists and
// otherwise computes, caches and sends it. Only successful responses that
// did not read the server clock are cached, since the body alone does not
// determine them.
func (s *Server) handlePost(fn computeFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		body, err := io.ReadAll(r.Body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				s.sendError(w, "request body too large", http.StatusRequestEntityTooLarge)
				return
			}
			s.sendError(w, "failed to read request body", http.StatusBadRequest)
			return
		}

		key := cache.Key([]byte(r.URL.Path), body)
		if s.cache != nil {
			cached, err := s.cache.Get(ctx, key)
			if err != nil {
				s.logger.Warn("cache get failed", "error", err)
			} else if cached != nil {
				s.sendRaw(w, cached, "HIT")
				return
			}
		}

		readClock := false
		now := func() float64 {
			readClock = true
			return s.nowMillis()
		}

		resp, err := fn(ctx, body, now)
		if err != nil {
			status := statusFor(err)
			if status == http.StatusInternalServerError {
				s.logger.Error("request failed", "path", r.URL.Path, "error", err)
				s.sendError(w, "internal error", status)
				return
			}
			s.logger.Debug("invalid request", "path", r.URL.Path, "error", err)
			s.sendError(w, err.Error(), status)
			return
		}

		data, err := encodeJSON(resp)
		if err != nil {
			s.logger.Error("failed to encode response", "error", err)
			s.sendError(w, "internal error", http.StatusInternalServerError)
			return
		}

		if s.cache != nil && !readClock {
			if err := s.cache.Set(ctx, key, data); err != nil {
				s.logger.Warn("cache set failed", "error", err)
			}
		}
		s.sendRaw(w, data, "MISS")
	}
}

func (s *Server) search(_ context.Context, body []byte, now func() float64) (any, error) {
	req, err := wire.DecodeSearchRequest(body)
	if err != nil {
		return nil, err
	}

	res, err := history.Search(req.Records, req.Query, req.MaxResults, orNow(req.CurrentTime, now))
	if err != nil {
		return nil, err
	}
	s.logStats(res.Stats)

	return wire.SearchResponse{Records: res.Records, Stats: res.Stats}, nil
}

func (s *Server) filter(_ context.Context, body []byte, _ func() float64) (any, error) {
	req, err := wire.DecodeFilterRequest(body)
	if err != nil {
		return nil, err
	}

	records := req.Records
	if req.StartTime != nil {
		records = history.FilterByDateRange(records, *req.StartTime, *req.EndTime)
	}
	if req.Keywords != nil {
		records = history.FilterByKeywords(records, req.Keywords)
	}
	return wire.NewRecordsResponse(records), nil
}

func (s *Server) sort(_ context.Context, body []byte, now func() float64) (any, error) {
	req, err := wire.DecodeSortRequest(body)
	if err != nil {
		return nil, err
	}

	var records []history.Record
	if len(req.Keywords) > 0 {
		records = history.SortByScore(req.Records, req.Keywords, orNow(req.CurrentTime, now))
	} else {
		records = history.SortByPopularity(req.Records)
	}
	if req.Limit != nil {
		records = history.Limit(records, *req.Limit)
	}
	return wire.NewRecordsResponse(records), nil
}

func (s *Server) domains(_ context.Context, body []byte, _ func() float64) (any, error) {
	req, err := wire.DecodeDomainsRequest(body)
	if err != nil {
		return nil, err
	}
	return wire.DomainsResponse{Domains: history.AnalyzeDomains(req.Records)}, nil
}

func (s *Server) format(_ context.Context, body []byte, now func() float64) (any, error) {
	req, err := wire.DecodeFormatRequest(body)
	if err != nil {
		return nil, err
	}

	text := history.FormatForLLM(req.Records, req.MaxChars, orNow(req.CurrentTime, now))
	return wire.FormatResponse{Text: text, Chars: utf8.RuneCountInString(text)}, nil
}

func (s *Server) keywords(_ context.Context, body []byte, _ func() float64) (any, error) {
	req, err := wire.DecodeKeywordsRequest(body)
	if err != nil {
		return nil, err
	}

	return wire.KeywordsResponse{Keywords: history.ExtractKeywords(req.Text)}, nil
}

// handleRecall handles GET /v1/recall?q=&limit=&since=&format=json|text,
// ranking stored visits.
func (s *Server) handleRecall(w http.ResponseWriter, r *http.Request) {
	if s.source == nil {
		s.sendError(w, "no history store configured", http.StatusServiceUnavailable)
		return
	}

	params := r.URL.Query()
	query := params.Get("q")

	limit := s.config.DefaultMaxResults
	if v := params.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.sendError(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	now := s.config.Now()
	list := storage.ListQuery{Limit: s.config.LoadLimit}
	if v := params.Get("since"); v != "" {
		d, err := config.ParseDuration(v)
		if err != nil {
			s.sendError(w, "invalid since: "+err.Error(), http.StatusBadRequest)
			return
		}
		list.Since = now.Add(-d)
	}

	format := params.Get("format")
	if format != "" && format != "json" && format != "text" {
		s.sendError(w, "format must be json or text", http.StatusBadRequest)
		return
	}

	records, err := s.source.Records(r.Context(), list)
	if err != nil {
		s.logger.Error("failed to load history", "error", err)
		s.sendError(w, "failed to load history", http.StatusInternalServerError)
		return
	}

	nowMillis := float64(now.UnixMilli())
	res, err := history.Search(records, query, limit, nowMillis)
	if err != nil {
		s.sendError(w, err.Error(), statusFor(err))
		return
	}
	s.logStats(res.Stats)

	if format == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, history.FormatForLLM(res.Records, s.config.MaxContextChars, nowMillis))
		return
	}
	s.sendJSON(w, wire.SearchResponse{Records: res.Records, Stats: res.Stats}, http.StatusOK)
}

// handleHealth handles GET /health requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]string{
		"status": "ok",
		"time":   s.config.Now().UTC().Format(time.RFC3339),
	}
	s.sendJSON(w, health, http.StatusOK)
}

func (s *Server) logStats(st history.Stats) {
	s.logger.Info("search completed",
		"mode", st.Mode,
		"received", st.Received,
		"valid", st.Valid,
		"candidates", st.Candidates,
		"matched", st.Matched,
		"returned", st.Returned,
	)
}

func (s *Server) nowMillis() float64 {
	return float64(s.config.Now().UnixMilli())
}

func orNow(t *float64, now func() float64) float64 {
	if t != nil {
		return *t
	}
	return now()
}

// statusFor maps an operation error to an HTTP status.
func statusFor(err error) int {
	if wire.IsBadInput(err) || errors.Is(err, history.ErrQueryTooLong) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func encodeJSON(data any) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Server) sendRaw(w http.ResponseWriter, data []byte, cacheState string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", cacheState)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) sendJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(data); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	s.sendJSON(w, wire.ErrorResponse{Error: message, StatusCode: statusCode}, statusCode)
}
