// internal/models/match.go
package models

// Dimension names one weighted scoring axis.
type Dimension string

const (
	DimensionCapability        Dimension = "capability"
	DimensionGeographic        Dimension = "geographic"
	DimensionPerformance       Dimension = "performance"
	DimensionQuality           Dimension = "quality"
	DimensionCost              Dimension = "cost"
	DimensionAvailability      Dimension = "availability"
	DimensionSpecialization    Dimension = "specialization"
	DimensionHistoricalSuccess Dimension = "historical_success"
)

// AvailabilityStatus summarizes how much headroom a manufacturer has.
type AvailabilityStatus string

const (
	AvailabilityAvailable    AvailabilityStatus = "available"
	AvailabilityNearCapacity AvailabilityStatus = "near_capacity"
	AvailabilityUnavailable  AvailabilityStatus = "unavailable"
)

// FallbackStage identifies which constraint-relaxation stage produced a result.
type FallbackStage string

const (
	StageDirectMatch       FallbackStage = "DIRECT_MATCH"
	StageRelaxedCapability FallbackStage = "RELAXED_CAPABILITY"
	StageExpandedGeography FallbackStage = "EXPANDED_GEOGRAPHY"
	StageBroadcastAll      FallbackStage = "BROADCAST_ALL"
)

// MatchResult is the scored, explained outcome of comparing one manufacturer
// against one order. It is built per request and never persisted.
type MatchResult struct {
	ManufacturerID string                `json:"manufacturerId"`
	TotalScore     float64               `json:"totalScore"`
	SubScores      map[Dimension]float64 `json:"subScores"`
	Reasons        []string              `json:"reasons"`
	RiskFactors    []string              `json:"riskFactors,omitempty"`
	DistanceKM     *float64              `json:"distanceKm,omitempty"`
	Availability   AvailabilityStatus    `json:"availability"`
	Stage          FallbackStage         `json:"stage"`
}
