// Package config defines the engine configuration model: runtime settings
// (logging, retrieval backend) and the immutable domain tables that drive
// query understanding and decision synthesis. Configuration is loaded once at
// startup and never mutated afterwards; every tunable constant used by the
// intelligence packages lives here rather than in code.
package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/clearclaim/clearclaim/internal/infrastructure/monitoring/logging"
	"github.com/clearclaim/clearclaim/pkg/errors"
	"github.com/clearclaim/clearclaim/pkg/types/common"
)

// Config is the root configuration object.
type Config struct {
	Log    logging.LogConfig `mapstructure:"log" yaml:"log"`
	Engine EngineConfig      `mapstructure:"engine" yaml:"engine"`
	Search SearchConfig      `mapstructure:"search" yaml:"search"`
	Domain DomainConfig      `mapstructure:"domain" yaml:"domain"`
}

// EngineConfig holds pipeline-level settings.
type EngineConfig struct {
	// MaxQueryLength is the maximum accepted raw query length in runes.
	MaxQueryLength int `mapstructure:"max_query_length" yaml:"max_query_length"`

	// ChainConcurrency caps the number of reasoning chains executed in
	// parallel. Zero or negative means run all chains concurrently.
	ChainConcurrency int `mapstructure:"chain_concurrency" yaml:"chain_concurrency"`

	Policy ConfidencePolicy `mapstructure:"policy" yaml:"policy"`
}

// ConfidencePolicy collects every confidence constant used by the pipeline.
// Keeping them in one struct makes the scoring behaviour auditable and
// tunable per deployment without code changes.
type ConfidencePolicy struct {
	// FindingPenalty is subtracted from the synthesized confidence once per
	// disambiguation finding.
	FindingPenalty float64 `mapstructure:"finding_penalty" yaml:"finding_penalty"`

	// ConfidenceFloor is the minimum confidence after penalties.
	ConfidenceFloor float64 `mapstructure:"confidence_floor" yaml:"confidence_floor"`

	// MissingInfoCap is the maximum final confidence when any finding of kind
	// "missing" is present.
	MissingInfoCap float64 `mapstructure:"missing_info_cap" yaml:"missing_info_cap"`

	// StepConfident is the confidence assigned to a reasoning step that
	// reached a definite pass or fail verdict from known attributes.
	StepConfident float64 `mapstructure:"step_confident" yaml:"step_confident"`

	// StepIndeterminate is the confidence assigned to a step that could not
	// decide because its inputs were unknown.
	StepIndeterminate float64 `mapstructure:"step_indeterminate" yaml:"step_indeterminate"`

	// ChainWeights maps chain identifiers to their weight in the final
	// confidence. Weights must sum to 1.
	ChainWeights map[string]float64 `mapstructure:"chain_weights" yaml:"chain_weights"`

	// RelevanceKeywordWeight and RelevanceLengthWeight combine keyword
	// density and clause length into the clause relevance score.
	RelevanceKeywordWeight float64 `mapstructure:"relevance_keyword_weight" yaml:"relevance_keyword_weight"`
	RelevanceLengthWeight  float64 `mapstructure:"relevance_length_weight" yaml:"relevance_length_weight"`
}

// SearchConfig configures the OpenSearch passage retriever. The engine core
// never reads this; only the infrastructure adapter does.
type SearchConfig struct {
	// Enabled selects the OpenSearch retriever over the in-memory one.
	Enabled   bool     `mapstructure:"enabled" yaml:"enabled"`
	Addresses []string `mapstructure:"addresses" yaml:"addresses"`
	Username  string   `mapstructure:"username" yaml:"username"`
	Password  string   `mapstructure:"password" yaml:"password"`
	Index     string   `mapstructure:"index" yaml:"index"`
	// TopK is the number of passages fetched per query.
	TopK int `mapstructure:"top_k" yaml:"top_k"`
}

// AgeBand is a named half-open age range [MinYears, MaxYears]. Bands must not
// overlap and should cover 0..130.
type AgeBand struct {
	Name     string `mapstructure:"name" yaml:"name"`
	MinYears int    `mapstructure:"min_years" yaml:"min_years"`
	MaxYears int    `mapstructure:"max_years" yaml:"max_years"`
}

// Contains reports whether age falls inside the band.
func (b AgeBand) Contains(age int) bool {
	return age >= b.MinYears && age <= b.MaxYears
}

// DomainConfig holds the insurance domain tables. Deployments override them
// via YAML; Defaults() ships a complete built-in set so the engine runs with
// no config file at all.
type DomainConfig struct {
	// Currency is the ISO 4217 code for all monetary amounts.
	Currency string `mapstructure:"currency" yaml:"currency"`

	// ProcedureSynonyms and ConditionSynonyms map a canonical term to the
	// alternate phrasings added during semantic expansion. Matching is
	// case-insensitive; keys must be lower case.
	ProcedureSynonyms map[string][]string `mapstructure:"procedure_synonyms" yaml:"procedure_synonyms"`
	ConditionSynonyms map[string][]string `mapstructure:"condition_synonyms" yaml:"condition_synonyms"`

	// PolicyTermAliases maps policy vocabulary (tiers, document jargon) to
	// alternate phrasings.
	PolicyTermAliases map[string][]string `mapstructure:"policy_term_aliases" yaml:"policy_term_aliases"`

	// AgeBands partition ages into named bands used by demographic checks.
	AgeBands []AgeBand `mapstructure:"age_bands" yaml:"age_bands"`

	// DefaultWaitingMonths applies to any procedure without an override in
	// WaitingMonthsByProcedure.
	DefaultWaitingMonths     int            `mapstructure:"default_waiting_months" yaml:"default_waiting_months"`
	WaitingMonthsByProcedure map[string]int `mapstructure:"waiting_months_by_procedure" yaml:"waiting_months_by_procedure"`

	// PreAuthProcedures lists procedures that require pre-authorization.
	// A decision that passes every check but names one of these becomes
	// conditional rather than approved.
	PreAuthProcedures []string `mapstructure:"pre_auth_procedures" yaml:"pre_auth_procedures"`

	// ExcludedProcedures are never covered regardless of other checks.
	ExcludedProcedures []string `mapstructure:"excluded_procedures" yaml:"excluded_procedures"`

	// CoverageLimitsMinor maps a policy tier to its coverage limit in minor
	// currency units (paise for INR). The "default" key applies when the
	// query names no recognised tier.
	CoverageLimitsMinor map[string]int64 `mapstructure:"coverage_limits_minor" yaml:"coverage_limits_minor"`

	// ProcedureGenderRestrictions maps a procedure to the only gender it
	// applies to ("male"/"female"). Absent means unrestricted.
	ProcedureGenderRestrictions map[string]string `mapstructure:"procedure_gender_restrictions" yaml:"procedure_gender_restrictions"`

	// ProcedureAgeBands maps a procedure to the band names it is compatible
	// with. Absent means all bands.
	ProcedureAgeBands map[string][]string `mapstructure:"procedure_age_bands" yaml:"procedure_age_bands"`

	// Clause classification lexicons. A clause containing a rejection keyword
	// classifies as rejection even if approval keywords also appear.
	ApprovalKeywords    []string `mapstructure:"approval_keywords" yaml:"approval_keywords"`
	RejectionKeywords   []string `mapstructure:"rejection_keywords" yaml:"rejection_keywords"`
	ConditionalKeywords []string `mapstructure:"conditional_keywords" yaml:"conditional_keywords"`

	// VagueProcedureTerms are procedure mentions too generic to decide on
	// ("surgery", "treatment"); they raise a vague-reference finding.
	VagueProcedureTerms []string `mapstructure:"vague_procedure_terms" yaml:"vague_procedure_terms"`

	// EmergencyContextTerms are added as expansion terms when the query
	// signals high urgency, steering retrieval toward emergency clauses.
	EmergencyContextTerms []string `mapstructure:"emergency_context_terms" yaml:"emergency_context_terms"`

	// KnownLocations are the network cities recognised during extraction.
	KnownLocations []string `mapstructure:"known_locations" yaml:"known_locations"`

	// HighRiskConditions weigh into the medical-necessity risk evaluation.
	HighRiskConditions []string `mapstructure:"high_risk_conditions" yaml:"high_risk_conditions"`
}

// CoverageLimit returns the limit for tier, falling back to the "default"
// entry. The boolean is false when neither exists.
func (d DomainConfig) CoverageLimit(tier string) (common.Money, bool) {
	key := strings.ToLower(strings.TrimSpace(tier))
	amount, ok := d.CoverageLimitsMinor[key]
	if !ok {
		amount, ok = d.CoverageLimitsMinor["default"]
	}
	if !ok {
		return common.Money{}, false
	}
	return common.Money{Amount: amount, Currency: d.Currency}, true
}

// WaitingMonths returns the waiting period for a procedure, falling back to
// the domain default.
func (d DomainConfig) WaitingMonths(procedure string) int {
	if m, ok := d.WaitingMonthsByProcedure[strings.ToLower(procedure)]; ok {
		return m
	}
	return d.DefaultWaitingMonths
}

// BandForAge returns the age band containing age, or false if none does.
func (d DomainConfig) BandForAge(age int) (AgeBand, bool) {
	for _, b := range d.AgeBands {
		if b.Contains(age) {
			return b, true
		}
	}
	return AgeBand{}, false
}

// Validate checks structural invariants. It is called once after loading;
// any failure is fatal at process start.
func (c *Config) Validate() error {
	if c.Engine.MaxQueryLength <= 0 {
		return errors.New(errors.ErrCodeConfigInvalid, "engine.max_query_length must be positive")
	}
	if err := c.Engine.Policy.validate(); err != nil {
		return err
	}
	if err := c.Domain.validate(); err != nil {
		return err
	}
	if c.Search.Enabled {
		if len(c.Search.Addresses) == 0 {
			return errors.New(errors.ErrCodeConfigInvalid, "search.addresses required when search is enabled")
		}
		if c.Search.Index == "" {
			return errors.New(errors.ErrCodeConfigInvalid, "search.index required when search is enabled")
		}
	}
	return nil
}

func (p ConfidencePolicy) validate() error {
	inUnit := func(name string, v float64) error {
		if v < 0 || v > 1 {
			return errors.New(errors.ErrCodeConfigInvalid,
				fmt.Sprintf("engine.policy.%s must be in [0,1], got %v", name, v))
		}
		return nil
	}
	checks := []struct {
		name string
		v    float64
	}{
		{"finding_penalty", p.FindingPenalty},
		{"confidence_floor", p.ConfidenceFloor},
		{"missing_info_cap", p.MissingInfoCap},
		{"step_confident", p.StepConfident},
		{"step_indeterminate", p.StepIndeterminate},
		{"relevance_keyword_weight", p.RelevanceKeywordWeight},
		{"relevance_length_weight", p.RelevanceLengthWeight},
	}
	for _, c := range checks {
		if err := inUnit(c.name, c.v); err != nil {
			return err
		}
	}
	if len(p.ChainWeights) == 0 {
		return errors.New(errors.ErrCodeConfigInvalid, "engine.policy.chain_weights is empty")
	}
	sum := 0.0
	for id, w := range p.ChainWeights {
		if w < 0 {
			return errors.New(errors.ErrCodeConfigInvalid,
				fmt.Sprintf("engine.policy.chain_weights[%s] is negative", id))
		}
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-6 {
		return errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("engine.policy.chain_weights must sum to 1, got %v", sum))
	}
	return nil
}

func (d DomainConfig) validate() error {
	if d.Currency == "" {
		return errors.New(errors.ErrCodeConfigInvalid, "domain.currency is empty")
	}
	if len(d.ProcedureSynonyms) == 0 {
		return errors.New(errors.ErrCodeDomainTableEmpty, "domain.procedure_synonyms is empty")
	}
	if len(d.ConditionSynonyms) == 0 {
		return errors.New(errors.ErrCodeDomainTableEmpty, "domain.condition_synonyms is empty")
	}
	if len(d.AgeBands) == 0 {
		return errors.New(errors.ErrCodeDomainTableEmpty, "domain.age_bands is empty")
	}
	for i, b := range d.AgeBands {
		if b.Name == "" {
			return errors.New(errors.ErrCodeConfigInvalid, fmt.Sprintf("domain.age_bands[%d] has no name", i))
		}
		if b.MinYears > b.MaxYears {
			return errors.New(errors.ErrCodeConfigInvalid,
				fmt.Sprintf("domain.age_bands[%d] (%s) has min > max", i, b.Name))
		}
	}
	if len(d.CoverageLimitsMinor) == 0 {
		return errors.New(errors.ErrCodeDomainTableEmpty, "domain.coverage_limits_minor is empty")
	}
	if _, ok := d.CoverageLimitsMinor["default"]; !ok {
		return errors.New(errors.ErrCodeConfigInvalid, "domain.coverage_limits_minor requires a default entry")
	}
	for tier, amount := range d.CoverageLimitsMinor {
		if amount < 0 {
			return errors.New(errors.ErrCodeConfigInvalid,
				fmt.Sprintf("domain.coverage_limits_minor[%s] is negative", tier))
		}
	}
	if len(d.ApprovalKeywords) == 0 || len(d.RejectionKeywords) == 0 || len(d.ConditionalKeywords) == 0 {
		return errors.New(errors.ErrCodeDomainTableEmpty, "domain clause lexicons must be non-empty")
	}
	if d.DefaultWaitingMonths < 0 {
		return errors.New(errors.ErrCodeConfigInvalid, "domain.default_waiting_months is negative")
	}
	return nil
}
