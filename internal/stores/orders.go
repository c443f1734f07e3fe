// internal/stores/orders.go
package stores

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	apperrors "forgelink/internal/common/errors"
	"forgelink/internal/common/logger"
	"forgelink/internal/models"
)

// OrderStore is the read-only order-lookup collaborator. The matching engine
// never writes orders.
type OrderStore interface {
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
}

// PostgresOrderStore reads orders from PostgreSQL. Requirement, budget and
// geo-preference details live in JSONB columns since their shape varies per
// order.
type PostgresOrderStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresOrderStore(db *sql.DB, log logger.Logger) *PostgresOrderStore {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &PostgresOrderStore{db: db, logger: log}
}

// orderRequirements mirrors the requirements JSONB column.
type orderRequirements struct {
	Processes           []string `json:"processes"`
	Materials           []string `json:"materials"`
	Certifications      []string `json:"certifications,omitempty"`
	SpecialRequirements []string `json:"specialRequirements,omitempty"`
	Industry            string   `json:"industry,omitempty"`
}

func (s *PostgresOrderStore) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	start := time.Now()

	var (
		id              string
		requirementsRaw []byte
		quantity        int
		budgetRaw       []byte
		deadline        sql.NullTime
		flexibilityDays int
		geoRaw          []byte
		rush            bool
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, requirements, quantity, budget, deadline,
		       flexibility_days, geo_preference, rush
		FROM orders
		WHERE id = $1`, orderID).Scan(
		&id, &requirementsRaw, &quantity, &budgetRaw,
		&deadline, &flexibilityDays, &geoRaw, &rush,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewOrderNotFoundError(orderID)
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("get order", err)
	}

	var reqs orderRequirements
	if err := json.Unmarshal(requirementsRaw, &reqs); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("decode order requirements", err)
	}

	order := &models.Order{
		ID:                  id,
		Processes:           reqs.Processes,
		Materials:           reqs.Materials,
		Certifications:      reqs.Certifications,
		SpecialRequirements: reqs.SpecialRequirements,
		Industry:            reqs.Industry,
		Quantity:            quantity,
		FlexibilityDays:     flexibilityDays,
		Rush:                rush,
	}
	if deadline.Valid {
		order.Deadline = deadline.Time
	}
	if len(budgetRaw) > 0 {
		var budget models.Budget
		if err := json.Unmarshal(budgetRaw, &budget); err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("decode order budget", err)
		}
		order.Budget = &budget
	}
	if len(geoRaw) > 0 {
		var pref models.GeoPreference
		if err := json.Unmarshal(geoRaw, &pref); err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("decode order geo preference", err)
		}
		order.GeoPreference = &pref
	}

	s.logger.Debug("loaded order", map[string]interface{}{
		"orderId":    id,
		"durationMs": time.Since(start).Milliseconds(),
	})
	return order, nil
}
