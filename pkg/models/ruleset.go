package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// FieldRole classifies how a column participates in duplicate detection
type FieldRole string

const (
	FieldRoleExact   FieldRole = "exact"   // must match verbatim within a block
	FieldRoleFuzzy   FieldRole = "fuzzy"   // contributes to text similarity
	FieldRoleNumeric FieldRole = "numeric" // contributes to distance-based similarity
	FieldRoleIgnored FieldRole = "ignored" // not compared
)

// TermPair is a pair of mutually exclusive terms; a record pair whose text
// contains opposing terms is never a duplicate.
type TermPair struct {
	A string `json:"a"`
	B string `json:"b"`
}

// RulesetDefinition declares the static field-role map and the business rules
// the engine applies. It is validated once at load time; the engine never
// branches on column names beyond role dispatch.
type RulesetDefinition struct {
	ExactFields   []string `json:"exact_fields"`
	FuzzyFields   []string `json:"fuzzy_fields"`
	NumericFields []string `json:"numeric_fields"`

	// PrimaryTextField gets the stricter per-field minimum score.
	PrimaryTextField string `json:"primary_text_field"`

	// Gate targets
	CompanyField  string `json:"company_field"`
	LocationField string `json:"location_field"`
	SalaryField   string `json:"salary_field"`

	CompanyStopWords     []string `json:"company_stop_words"`
	CompanyMinCoreLength int      `json:"company_min_core_length"`

	ContradictionPairs []TermPair         `json:"contradiction_pairs"`
	NumericTolerances  map[string]float64 `json:"numeric_tolerances"`

	AcceptThreshold int `json:"accept_threshold"`
	NeighborCount   int `json:"neighbor_count"`
}

// Role returns the configured role for a field.
func (d *RulesetDefinition) Role(field string) FieldRole {
	for _, f := range d.ExactFields {
		if f == field {
			return FieldRoleExact
		}
	}
	for _, f := range d.FuzzyFields {
		if f == field {
			return FieldRoleFuzzy
		}
	}
	for _, f := range d.NumericFields {
		if f == field {
			return FieldRoleNumeric
		}
	}
	return FieldRoleIgnored
}

// Validate checks the definition for overlapping role assignments and
// out-of-range thresholds.
func (d *RulesetDefinition) Validate() error {
	seen := map[string]FieldRole{}
	assign := func(fields []string, role FieldRole) error {
		for _, f := range fields {
			if f == "" {
				return fmt.Errorf("empty field name in %s fields", role)
			}
			if prev, ok := seen[f]; ok {
				return fmt.Errorf("field %q assigned to both %s and %s roles", f, prev, role)
			}
			seen[f] = role
		}
		return nil
	}
	if err := assign(d.ExactFields, FieldRoleExact); err != nil {
		return err
	}
	if err := assign(d.FuzzyFields, FieldRoleFuzzy); err != nil {
		return err
	}
	if err := assign(d.NumericFields, FieldRoleNumeric); err != nil {
		return err
	}

	if d.PrimaryTextField != "" && seen[d.PrimaryTextField] != FieldRoleFuzzy {
		return fmt.Errorf("primary text field %q must be a fuzzy field", d.PrimaryTextField)
	}
	if d.AcceptThreshold < 0 || d.AcceptThreshold > 100 {
		return fmt.Errorf("accept threshold %d out of range [0,100]", d.AcceptThreshold)
	}
	if d.NeighborCount < 0 {
		return fmt.Errorf("neighbor count %d must not be negative", d.NeighborCount)
	}
	return nil
}

// ApplyDefaults fills zero-valued tunables with the engine defaults.
func (d *RulesetDefinition) ApplyDefaults() {
	if d.AcceptThreshold == 0 {
		d.AcceptThreshold = 95
	}
	if d.NeighborCount == 0 {
		d.NeighborCount = 5
	}
	if d.CompanyMinCoreLength == 0 {
		d.CompanyMinCoreLength = 4
	}
}

// DefaultDefinition is the German job-posting ruleset the original dataset
// ships with. The term table and stop-word list are business rules; tenants
// override them per ruleset rather than the engine deriving new ones.
func DefaultDefinition() RulesetDefinition {
	return RulesetDefinition{
		ExactFields:      []string{"jobtype"},
		FuzzyFields:      []string{"jobdescription", "company", "location"},
		NumericFields:    []string{"geo_lat", "geo_lon"},
		PrimaryTextField: "jobdescription",
		CompanyField:     "company",
		LocationField:    "location",
		SalaryField:      "salary",
		CompanyStopWords: []string{
			"gmbh", "ggmbh", "mbh", "ag", "kg", "ohg", "e.v.", "ev", "llp",
			"stiftung", "bibliothek", "stadtbibliothek", "universitätsbibliothek",
			"universität", "hochschule", "fachhochschule", "institut", "zentrum",
			"stadt", "gemeinde",
		},
		CompanyMinCoreLength: 4,
		ContradictionPairs: []TermPair{
			{A: "vollzeit", B: "teilzeit"},
			{A: "befristet", B: "unbefristet"},
		},
		NumericTolerances: map[string]float64{
			// ~0.01 decimal degrees is roughly 1km
			"geo_lat": 0.01,
			"geo_lon": 0.01,
		},
		AcceptThreshold: 95,
		NeighborCount:   5,
	}
}

// Ruleset is the persisted, tenant-scoped configuration row.
type Ruleset struct {
	ID          string          `json:"id" db:"id"`
	TenantID    string          `json:"tenant_id" db:"tenant_id"`
	Name        string          `json:"name" db:"name"`
	Description *string         `json:"description,omitempty" db:"description"`
	IsActive    bool            `json:"is_active" db:"is_active"`
	Definition  json.RawMessage `json:"definition" db:"definition"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time      `json:"deleted_at,omitempty" db:"deleted_at"`
}

// ParseDefinition unmarshals, defaults, and validates the stored definition.
func (r *Ruleset) ParseDefinition() (*RulesetDefinition, error) {
	var def RulesetDefinition
	if err := json.Unmarshal(r.Definition, &def); err != nil {
		return nil, fmt.Errorf("failed to parse ruleset definition: %w", err)
	}
	def.ApplyDefaults()
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// CreateRulesetRequest is the request to create a ruleset
type CreateRulesetRequest struct {
	Name        string          `json:"name" validate:"required"`
	Description *string         `json:"description,omitempty"`
	IsActive    bool            `json:"is_active"`
	Definition  json.RawMessage `json:"definition" validate:"required"`
}

// UpdateRulesetRequest is the request to update a ruleset
type UpdateRulesetRequest struct {
	Name        *string         `json:"name,omitempty"`
	Description *string         `json:"description,omitempty"`
	IsActive    *bool           `json:"is_active,omitempty"`
	Definition  json.RawMessage `json:"definition,omitempty"`
}
