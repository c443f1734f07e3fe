// Package validation checks externally supplied order and profile payloads
// before they enter the matching core.
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const orderSchema = `{
	"type": "object",
	"required": ["id", "processes", "quantity", "deadline"],
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"processes": {"type": "array", "items": {"type": "string"}, "minItems": 1},
		"materials": {"type": "array", "items": {"type": "string"}},
		"certifications": {"type": "array", "items": {"type": "string"}},
		"specialRequirements": {"type": "array", "items": {"type": "string"}},
		"industry": {"type": "string"},
		"quantity": {"type": "integer", "minimum": 1},
		"budget": {
			"type": "object",
			"properties": {
				"min": {"type": "number", "minimum": 0},
				"max": {"type": "number", "minimum": 0},
				"currency": {"type": "string"},
				"fixedPrice": {"type": "number", "minimum": 0}
			}
		},
		"deadline": {"type": "string", "format": "date-time"},
		"flexibilityDays": {"type": "integer", "minimum": 0},
		"geoPreference": {
			"type": "object",
			"required": ["country"],
			"properties": {
				"country": {"type": "string", "minLength": 2},
				"region": {"type": "string"},
				"city": {"type": "string"},
				"maxDistanceKm": {"type": "number", "minimum": 0},
				"internationalOk": {"type": "boolean"}
			}
		},
		"rush": {"type": "boolean"}
	}
}`

const profileSchema = `{
	"type": "object",
	"required": ["id", "capabilities"],
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"name": {"type": "string"},
		"capabilities": {
			"type": "object",
			"properties": {
				"processes": {"type": "array", "items": {"type": "string"}},
				"materials": {"type": "array", "items": {"type": "string"}},
				"certifications": {"type": "array", "items": {"type": "string"}},
				"industries": {"type": "array", "items": {"type": "string"}}
			}
		},
		"location": {
			"type": "object",
			"properties": {
				"latitude": {"type": "number", "minimum": -90, "maximum": 90},
				"longitude": {"type": "number", "minimum": -180, "maximum": 180},
				"country": {"type": "string"}
			}
		},
		"capacity": {
			"type": "object",
			"properties": {
				"utilizationPct": {"type": "number", "minimum": 0, "maximum": 100}
			}
		},
		"performance": {
			"type": "object",
			"properties": {
				"overallRating": {"type": "number", "minimum": 0, "maximum": 5},
				"qualityRating": {"type": "number", "minimum": 0, "maximum": 5},
				"deliveryRating": {"type": "number", "minimum": 0, "maximum": 5},
				"communicationRating": {"type": "number", "minimum": 0, "maximum": 5},
				"completedOrders": {"type": "integer", "minimum": 0},
				"onTimeRate": {"type": "number", "minimum": 0, "maximum": 100}
			}
		}
	}
}`

// Validator validates order and manufacturer JSON at the service boundary.
type Validator struct {
	order   *gojsonschema.Schema
	profile *gojsonschema.Schema
}

func New() (*Validator, error) {
	order, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(orderSchema))
	if err != nil {
		return nil, fmt.Errorf("compile order schema: %w", err)
	}
	profile, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(profileSchema))
	if err != nil {
		return nil, fmt.Errorf("compile profile schema: %w", err)
	}
	return &Validator{order: order, profile: profile}, nil
}

// ValidateOrder checks an order JSON document against the order schema.
func (v *Validator) ValidateOrder(doc []byte) error {
	return validate(v.order, doc)
}

// ValidateProfile checks a manufacturer profile JSON document.
func (v *Validator) ValidateProfile(doc []byte) error {
	return validate(v.profile, doc)
}

func validate(schema *gojsonschema.Schema, doc []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}
	return fmt.Errorf("invalid document: %s", strings.Join(msgs, "; "))
}
