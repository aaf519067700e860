// Package chi is the HTTP transport: routing, request decoding, domain
// error mapping and response shaping.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mnesler/vector-mtg-sub000/internal/domain"
	"github.com/mnesler/vector-mtg-sub000/internal/domain/search/result"
	"github.com/mnesler/vector-mtg-sub000/internal/metrics"
	extractuc "github.com/mnesler/vector-mtg-sub000/internal/usecase/extract"
	searchuc "github.com/mnesler/vector-mtg-sub000/internal/usecase/search"
)

// Error codes returned in the error response body.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeNotFound         = "not_found"
	codeEmbeddingError   = "embedding_provider_error"
	codeStoreUnavailable = "store_unavailable"
	codeInternalError    = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Pinger checks store connectivity for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP API server.
type Server struct {
	search        *searchuc.Service
	extract       *extractuc.Service
	store         Pinger
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search *searchuc.Service, extract *extractuc.Service, store Pinger, logger *zap.Logger) *Server {
	s := &Server{
		search:  search,
		extract: extract,
		store:   store,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrCardNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingError),
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusServiceUnavailable, codeStoreUnavailable),
	}
	return s
}

// Register mounts the API routes on the given router.
func (s *Server) Register(r chi.Router) {
	r.Get("/api/v1/search", s.Search)
	r.Post("/api/v1/extract", s.Extract)
	r.Get("/healthz", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Search handles GET /api/v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	req := searchuc.Request{Query: r.URL.Query().Get("q")}

	var err error
	if req.Limit, err = intParam(r, "limit"); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	if req.Offset, err = intParam(r, "offset"); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	if req.Threshold, err = floatParam(r, "threshold"); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	start := time.Now()
	resp, err := s.search.Search(r.Context(), &req)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("unknown", "error").Inc()
		s.handleDomainError(w, err)
		return
	}

	m := string(resp.Method)
	metrics.SearchRequestsTotal.WithLabelValues(m, "success").Inc()
	metrics.SearchDuration.WithLabelValues(m).Observe(time.Since(start).Seconds())

	writeJSON(w, http.StatusOK, searchResponseDTO(resp))
}

// Extract handles POST /api/v1/extract. The run is synchronous; the
// response carries the run's statistics.
func (s *Server) Extract(w http.ResponseWriter, r *http.Request) {
	stats, err := s.extract.Run(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	metrics.ExtractionCardsTotal.Add(float64(stats.TotalCards))
	metrics.ExtractionMatchesTotal.WithLabelValues("pattern").Add(float64(stats.PatternMatches))
	metrics.ExtractionMatchesTotal.WithLabelValues("similarity").Add(float64(stats.VectorMatches))

	writeJSON(w, http.StatusOK, extractResponse{
		TotalCards:       stats.TotalCards,
		CardsWithMatches: stats.CardsWithMatches,
		TotalMatches:     stats.TotalMatches,
		PatternMatches:   stats.PatternMatches,
		VectorMatches:    stats.VectorMatches,
	})
}

// HealthCheck handles GET /healthz.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// --- DTOs ---

type searchResponse struct {
	Query   string       `json:"query"`
	Method  string       `json:"method"`
	Count   int          `json:"count"`
	HasMore bool         `json:"has_more"`
	Results []searchItem `json:"results"`
}

type searchItem struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	ManaCost    string   `json:"mana_cost,omitempty"`
	CMC         float64  `json:"cmc"`
	TypeLine    string   `json:"type_line,omitempty"`
	Types       []string `json:"types,omitempty"`
	RulesText   string   `json:"rules_text,omitempty"`
	Colors      []string `json:"colors,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	Rarity      string   `json:"rarity,omitempty"`
	Power       *float64 `json:"power,omitempty"`
	Toughness   *float64 `json:"toughness,omitempty"`
	ReleasedAt  string   `json:"released_at,omitempty"`
	Score       float64  `json:"score"`
	BoostReason string   `json:"boost_reason,omitempty"`
}

type extractResponse struct {
	TotalCards       int `json:"total_cards"`
	CardsWithMatches int `json:"cards_with_matches"`
	TotalMatches     int `json:"total_matches"`
	PatternMatches   int `json:"pattern_matches"`
	VectorMatches    int `json:"vector_matches"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func searchResponseDTO(resp *searchuc.Response) searchResponse {
	items := make([]searchItem, len(resp.Results))
	for i := range resp.Results {
		items[i] = candidateDTO(&resp.Results[i])
	}
	return searchResponse{
		Query:   resp.Query,
		Method:  string(resp.Method),
		Count:   resp.Count,
		HasMore: resp.HasMore,
		Results: items,
	}
}

func candidateDTO(cand *result.Candidate) searchItem {
	c := cand.Card()
	item := searchItem{
		ID:          c.ID,
		Name:        c.Name,
		ManaCost:    c.ManaCost,
		CMC:         c.CMC,
		TypeLine:    c.TypeLine,
		Types:       c.Types,
		RulesText:   c.RulesText,
		Colors:      c.Colors,
		Keywords:    c.Keywords,
		Rarity:      c.Rarity,
		Power:       c.Power,
		Toughness:   c.Toughness,
		Score:       cand.Score(),
		BoostReason: cand.BoostReason(),
	}
	if !c.ReleasedAt.IsZero() {
		item.ReleasedAt = c.ReleasedAt.Format(releaseDateLayout)
	}
	return item
}

const releaseDateLayout = "2006-01-02"

// --- Helpers ---

func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(name + " must be an integer")
	}
	return v, nil
}

func floatParam(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New(name + " must be a number")
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns the error text when the error wraps a known
// domain sentinel; raw internal errors never leak to clients.
func safeDomainMessage(err error) string {
	for _, sentinel := range []error{
		domain.ErrInvalidRequest,
		domain.ErrCardNotFound,
		domain.ErrNotFound,
		domain.ErrVectorDimMismatch,
		domain.ErrEmbeddingProviderError,
		domain.ErrStoreUnavailable,
	} {
		if errors.Is(err, sentinel) {
			return err.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	msg := safeDomainMessage(err)
	for _, handle := range s.errorHandlers {
		if handle(w, err, msg) {
			return
		}
	}
	s.logger.Error("unhandled domain error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
