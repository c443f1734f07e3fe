// internal/matching/engine/predictor.go
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"forgelink/internal/common/config"
	apperrors "forgelink/internal/common/errors"
	"forgelink/internal/models"
)

// DefaultPredictorTimeout bounds a single prediction call. The predictor is
// an adjunct: when it does not answer in time the engine keeps the
// deterministic historical-success score.
const DefaultPredictorTimeout = 500 * time.Millisecond

// Prediction is the adjunct model's estimate for one order/manufacturer pair.
type Prediction struct {
	SuccessProbability float64 `json:"successProbability"`
	Confidence         float64 `json:"confidence"`
}

// Predictor estimates order-success probability for a candidate. The contract
// is advisory: any error or timeout falls back to deterministic scoring.
type Predictor interface {
	Predict(ctx context.Context, order *models.Order, p *models.ManufacturerProfile) (*Prediction, error)
}

// HTTPPredictor calls an external prediction service over HTTP.
type HTTPPredictor struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
}

func NewHTTPPredictor(cfg config.PredictorConfig) *HTTPPredictor {
	timeout := time.Duration(cfg.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = DefaultPredictorTimeout
	}
	return &HTTPPredictor{
		baseURL: cfg.URL,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
}

type predictRequest struct {
	Order        *models.Order               `json:"order"`
	Manufacturer *models.ManufacturerProfile `json:"manufacturer"`
}

func (h *HTTPPredictor) Predict(ctx context.Context, order *models.Order, p *models.ManufacturerProfile) (*Prediction, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	body, err := json.Marshal(predictRequest{Order: order, Manufacturer: p})
	if err != nil {
		return nil, fmt.Errorf("marshaling prediction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/v1/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building prediction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, apperrors.NewPredictionTimeoutError(p.ID)
		}
		return nil, fmt.Errorf("calling predictor: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("predictor returned status %d", resp.StatusCode)
	}

	var pred Prediction
	if err := json.NewDecoder(resp.Body).Decode(&pred); err != nil {
		return nil, fmt.Errorf("decoding prediction response: %w", err)
	}
	if pred.SuccessProbability < 0 || pred.SuccessProbability > 1 {
		return nil, fmt.Errorf("predictor returned probability %f outside [0,1]", pred.SuccessProbability)
	}
	return &pred, nil
}
