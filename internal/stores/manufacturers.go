// internal/stores/manufacturers.go
package stores

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/lib/pq"

	apperrors "forgelink/internal/common/errors"
	"forgelink/internal/common/logger"
	"forgelink/internal/models"
)

// ManufacturerStore is the read-only manufacturer-pool collaborator.
type ManufacturerStore interface {
	GetManufacturer(ctx context.Context, manufacturerID string) (*models.ManufacturerProfile, error)
	GetManufacturers(ctx context.Context, manufacturerIDs []string) ([]*models.ManufacturerProfile, error)
	ListEligible(ctx context.Context) ([]*models.ManufacturerProfile, error)
}

// PostgresManufacturerStore reads manufacturer profiles from PostgreSQL.
// Capability, capacity and performance blobs are JSONB columns.
type PostgresManufacturerStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresManufacturerStore(db *sql.DB, log logger.Logger) *PostgresManufacturerStore {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &PostgresManufacturerStore{db: db, logger: log}
}

const manufacturerColumns = `
	id, name, capabilities, location, capacity, lead_time, performance,
	is_active, is_verified, onboarding_complete, last_active_at`

func (s *PostgresManufacturerStore) GetManufacturer(ctx context.Context, manufacturerID string) (*models.ManufacturerProfile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT`+manufacturerColumns+`
		FROM manufacturers
		WHERE id = $1`, manufacturerID)

	p, err := scanManufacturer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewManufacturerNotFoundError(manufacturerID)
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("get manufacturer", err)
	}
	return p, nil
}

func (s *PostgresManufacturerStore) GetManufacturers(ctx context.Context, manufacturerIDs []string) ([]*models.ManufacturerProfile, error) {
	if len(manufacturerIDs) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT`+manufacturerColumns+`
		FROM manufacturers
		WHERE id = ANY($1)
		ORDER BY id`, pq.Array(manufacturerIDs))
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("get manufacturers", err)
	}
	defer rows.Close()

	return collectManufacturers(rows)
}

// ListEligible returns the candidate pool pre-filtered by the baseline
// eligibility flags. Finer filtering (capacity, MOQ, onboarding) stays in the
// engine's pre-filter where exclusion reasons are recorded.
func (s *PostgresManufacturerStore) ListEligible(ctx context.Context) ([]*models.ManufacturerProfile, error) {
	start := time.Now()

	rows, err := s.db.QueryContext(ctx, `
		SELECT`+manufacturerColumns+`
		FROM manufacturers
		WHERE is_active = TRUE AND is_verified = TRUE
		ORDER BY id`)
	if err != nil {
		return nil, apperrors.NewPoolLookupFailedError(err)
	}
	defer rows.Close()

	pool, err := collectManufacturers(rows)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("loaded manufacturer pool", map[string]interface{}{
		"count":      len(pool),
		"durationMs": time.Since(start).Milliseconds(),
	})
	return pool, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanManufacturer(row rowScanner) (*models.ManufacturerProfile, error) {
	var (
		id, name        string
		capabilitiesRaw []byte
		locationRaw     []byte
		capacityRaw     []byte
		leadTimeRaw     []byte
		performanceRaw  []byte
		isActive        bool
		isVerified      bool
		onboarded       bool
		lastActiveAt    sql.NullTime
	)
	if err := row.Scan(
		&id, &name, &capabilitiesRaw, &locationRaw, &capacityRaw,
		&leadTimeRaw, &performanceRaw, &isActive, &isVerified,
		&onboarded, &lastActiveAt,
	); err != nil {
		return nil, err
	}

	p := &models.ManufacturerProfile{
		ID:                 id,
		Name:               name,
		IsActive:           isActive,
		IsVerified:         isVerified,
		OnboardingComplete: onboarded,
	}
	if lastActiveAt.Valid {
		p.LastActiveAt = lastActiveAt.Time
	}

	for _, blob := range []struct {
		raw []byte
		dst interface{}
	}{
		{capabilitiesRaw, &p.Capabilities},
		{locationRaw, &p.Location},
		{capacityRaw, &p.Capacity},
		{leadTimeRaw, &p.LeadTime},
		{performanceRaw, &p.Performance},
	} {
		if len(blob.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(blob.raw, blob.dst); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func collectManufacturers(rows *sql.Rows) ([]*models.ManufacturerProfile, error) {
	var out []*models.ManufacturerProfile
	for rows.Next() {
		p, err := scanManufacturer(rows)
		if err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("scan manufacturer", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("iterate manufacturers", err)
	}
	return out, nil
}
