// internal/api/handlers.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	apperrors "forgelink/internal/common/errors"
	"forgelink/internal/matching/engine"
	"forgelink/internal/models"
	"forgelink/internal/stores"
)

const maxRequestBody = 1 << 20 // 1 MiB

type findRequest struct {
	OrderID            string          `json:"orderId,omitempty"`
	Order              json.RawMessage `json:"order,omitempty"`
	ManufacturerIDs    []string        `json:"manufacturerIds,omitempty"`
	MaxResults         int             `json:"maxResults,omitempty"`
	DisableFallback    bool            `json:"disableFallback,omitempty"`
	FuzzyThreshold     float64         `json:"fuzzyThreshold,omitempty"`
	MinViableScore     float64         `json:"minViableScore,omitempty"`
	CapacityCeilingPct float64         `json:"capacityCeilingPct,omitempty"`
	MaxRiskFactors     int             `json:"maxRiskFactors,omitempty"`
}

type findResponse struct {
	OrderID string               `json:"orderId"`
	Matches []models.MatchResult `json:"matches"`
	Count   int                  `json:"count"`
}

func (s *Server) handleFindMatches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req findRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(ctx, w, err)
		return
	}

	order, err := s.resolveOrder(ctx, req.OrderID, req.Order)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}

	pool, err := s.resolvePool(ctx, order, req.ManufacturerIDs)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}

	matches, err := s.engine.FindMatches(ctx, order, pool, engine.FindOptions{
		MaxResults:         req.MaxResults,
		DisableFallback:    req.DisableFallback,
		FuzzyThreshold:     req.FuzzyThreshold,
		MinViableScore:     req.MinViableScore,
		CapacityCeilingPct: req.CapacityCeilingPct,
		MaxRiskFactors:     req.MaxRiskFactors,
	})
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, findResponse{
		OrderID: order.ID,
		Matches: matches,
		Count:   len(matches),
	})
}

type analyzeRequest struct {
	OrderID        string          `json:"orderId,omitempty"`
	Order          json.RawMessage `json:"order,omitempty"`
	ManufacturerID string          `json:"manufacturerId"`
}

type analyzeResponse struct {
	OrderID string             `json:"orderId"`
	Match   models.MatchResult `json:"match"`
}

func (s *Server) handleAnalyzeMatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req analyzeRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(ctx, w, err)
		return
	}
	if req.ManufacturerID == "" {
		s.writeError(ctx, w, apperrors.NewValidationFailedError("manufacturerId is required"))
		return
	}

	order, err := s.resolveOrder(ctx, req.OrderID, req.Order)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}

	profile, err := s.manufacturers.GetManufacturer(ctx, req.ManufacturerID)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}

	match, err := s.engine.AnalyzeMatch(ctx, order, profile)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, analyzeResponse{OrderID: order.ID, Match: *match})
}

type broadcastRequest struct {
	OrderID         string          `json:"orderId,omitempty"`
	Order           json.RawMessage `json:"order,omitempty"`
	ManufacturerIDs []string        `json:"manufacturerIds,omitempty"`
}

type broadcastResponse struct {
	OrderID string                        `json:"orderId"`
	Results map[string]models.MatchResult `json:"results"`
	Count   int                           `json:"count"`
}

func (s *Server) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req broadcastRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(ctx, w, err)
		return
	}

	order, err := s.resolveOrder(ctx, req.OrderID, req.Order)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}

	pool, err := s.resolvePool(ctx, order, req.ManufacturerIDs)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}

	results, err := s.engine.Broadcast(ctx, order, pool)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, broadcastResponse{
		OrderID: order.ID,
		Results: results,
		Count:   len(results),
	})
}

// resolveOrder accepts either an inline order document or an order id.
// Inline orders are schema-validated before they reach the engine.
func (s *Server) resolveOrder(ctx context.Context, orderID string, raw json.RawMessage) (*models.Order, error) {
	if len(raw) > 0 {
		if err := s.validator.ValidateOrder(raw); err != nil {
			return nil, apperrors.NewValidationFailedError(err.Error())
		}
		var order models.Order
		if err := json.Unmarshal(raw, &order); err != nil {
			return nil, apperrors.NewValidationFailedError(err.Error())
		}
		return &order, nil
	}
	if orderID == "" {
		return nil, apperrors.NewValidationFailedError("either orderId or order is required")
	}
	return s.orders.GetOrder(ctx, orderID)
}

// resolvePool builds the candidate pool. Explicit manufacturer ids win;
// otherwise the search index narrows the pool when available, with the
// database listing as the fallback.
func (s *Server) resolvePool(ctx context.Context, order *models.Order, ids []string) ([]*models.ManufacturerProfile, error) {
	if len(ids) > 0 {
		return s.manufacturers.GetManufacturers(ctx, ids)
	}

	if s.search != nil {
		query := stores.PoolQuery{Keywords: strings.Join(order.Processes, " ")}
		if order.GeoPreference != nil && !order.GeoPreference.InternationalOK {
			query.Country = order.GeoPreference.Country
		}
		pool, err := s.search.SearchPool(ctx, query)
		if err == nil {
			return pool, nil
		}
		s.logger.WithError(err).Warn("search pool lookup failed, falling back to database listing", map[string]interface{}{
			"orderId": order.ID,
		})
	}

	return s.manufacturers.ListEligible(ctx)
}

func (s *Server) handleInvalidateCache(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if s.resultCache == nil {
		s.writeError(ctx, w, apperrors.NewCacheUnavailableError(errors.New("result cache is not enabled")))
		return
	}
	if err := s.resultCache.Invalidate(ctx); err != nil {
		s.writeError(ctx, w, apperrors.NewCacheUnavailableError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": s.serviceName,
		"version": s.version,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string, len(s.readyChecks))
	status := http.StatusOK

	for _, check := range s.readyChecks {
		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		err := check.Check(ctx)
		cancel()

		if err != nil {
			checks[check.Name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[check.Name] = "ok"
	}

	body := map[string]interface{}{"checks": checks}
	if status == http.StatusOK {
		body["status"] = "ready"
	} else {
		body["status"] = "not_ready"
	}
	writeJSON(w, status, body)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer func() { _, _ = io.Copy(io.Discard, body) }()

	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return apperrors.NewValidationFailedError("malformed request body: " + err.Error())
	}
	return nil
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func (s *Server) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := errorBody{
		Code:      "INTERNAL_ERROR",
		Message:   "Internal server error",
		RequestID: requestIDFrom(ctx),
	}

	var se *apperrors.StandardError
	if errors.As(err, &se) {
		body.Code = string(se.Code)
		body.Message = se.Message
		body.Details = se.Details
		status = statusForCode(se)
	}

	if status >= http.StatusInternalServerError {
		s.logger.WithError(err).Error("request failed", map[string]interface{}{
			"requestId": body.RequestID,
			"code":      body.Code,
		})
	}

	writeJSON(w, status, errorResponse{Error: body})
}

func statusForCode(se *apperrors.StandardError) int {
	switch se.Code {
	case apperrors.ErrCodeValidationFailed, apperrors.ErrCodeInvalidWeights:
		return http.StatusBadRequest
	case apperrors.ErrCodeOrderNotFound, apperrors.ErrCodeManufacturerNotFound:
		return http.StatusNotFound
	default:
		if se.Retryable {
			return http.StatusServiceUnavailable
		}
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
