package economics

import (
	"sort"
	"strings"
	"time"

	"github.com/andresuchdata/shiftops/internal/config"
)

// Defaults for the business rules when nothing is configured.
const (
	DefaultLegacyTaxRate       = 0.06
	DefaultTaxRate             = 0.07
	DefaultSalaryBaseRate      = 200
	DefaultSalaryTierRate      = 300
	DefaultSalaryTierThreshold = 10
	DefaultExemptOrganization  = "Офис КМС"
	DefaultAdjustmentPromoter  = "Корректировка"
)

var (
	DefaultTaxRateSince    = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	DefaultSalaryTierSince = time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	DefaultLiveSince       = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// TaxRate is the cashless tax rate in force from EffectiveFrom onwards.
type TaxRate struct {
	EffectiveFrom time.Time `json:"effective_from"`
	Rate          float64   `json:"rate"`
}

// SalaryRule is the promoter pay scheme in force from EffectiveFrom onwards.
// Shifts with at least TierThreshold contacts are paid TierRate per contact,
// the rest BaseRate. A zero threshold means a flat BaseRate.
type SalaryRule struct {
	EffectiveFrom time.Time `json:"effective_from"`
	BaseRate      float64   `json:"base_rate"`
	TierRate      float64   `json:"tier_rate"`
	TierThreshold int       `json:"tier_threshold"`
}

// PerContact returns the rate paid for a shift with the given contacts.
func (r SalaryRule) PerContact(contacts int) float64 {
	if r.TierThreshold > 0 && contacts >= r.TierThreshold {
		return r.TierRate
	}
	return r.BaseRate
}

// Policy is the date-versioned table of business rules.
type Policy struct {
	TaxRates           []TaxRate    `json:"tax_rates"`
	SalaryRules        []SalaryRule `json:"salary_rules"`
	ExemptOrganization string       `json:"exempt_organization"`
	AdjustmentPromoter string       `json:"adjustment_promoter"`
	LiveSince          time.Time    `json:"live_since"`
}

// DefaultPolicy returns the rules used in production before any overrides.
func DefaultPolicy() Policy {
	return NewPolicy(Policy{
		TaxRates: []TaxRate{
			{Rate: DefaultLegacyTaxRate},
			{EffectiveFrom: DefaultTaxRateSince, Rate: DefaultTaxRate},
		},
		SalaryRules: []SalaryRule{
			{BaseRate: DefaultSalaryBaseRate, TierRate: DefaultSalaryBaseRate},
			{
				EffectiveFrom: DefaultSalaryTierSince,
				BaseRate:      DefaultSalaryBaseRate,
				TierRate:      DefaultSalaryTierRate,
				TierThreshold: DefaultSalaryTierThreshold,
			},
		},
		ExemptOrganization: DefaultExemptOrganization,
		AdjustmentPromoter: DefaultAdjustmentPromoter,
		LiveSince:          DefaultLiveSince,
	})
}

// PolicyFromConfig builds the policy table from configuration.
func PolicyFromConfig(cfg config.EconomicsConfig) Policy {
	return NewPolicy(Policy{
		TaxRates: []TaxRate{
			{Rate: cfg.LegacyTaxRate},
			{EffectiveFrom: cfg.TaxRateSince, Rate: cfg.TaxRate},
		},
		SalaryRules: []SalaryRule{
			{BaseRate: cfg.SalaryBaseRate, TierRate: cfg.SalaryBaseRate},
			{
				EffectiveFrom: cfg.SalaryTierSince,
				BaseRate:      cfg.SalaryBaseRate,
				TierRate:      cfg.SalaryTierRate,
				TierThreshold: cfg.SalaryTierThreshold,
			},
		},
		ExemptOrganization: cfg.ExemptOrganization,
		AdjustmentPromoter: cfg.AdjustmentPromoter,
		LiveSince:          cfg.LiveSince,
	})
}

// NewPolicy returns a copy of p with its tables sorted by effective date.
func NewPolicy(p Policy) Policy {
	out := p
	out.TaxRates = append([]TaxRate(nil), p.TaxRates...)
	out.SalaryRules = append([]SalaryRule(nil), p.SalaryRules...)
	sort.SliceStable(out.TaxRates, func(i, j int) bool {
		return out.TaxRates[i].EffectiveFrom.Before(out.TaxRates[j].EffectiveFrom)
	})
	sort.SliceStable(out.SalaryRules, func(i, j int) bool {
		return out.SalaryRules[i].EffectiveFrom.Before(out.SalaryRules[j].EffectiveFrom)
	})
	return out
}

// TaxRateOn returns the rate in force on date. Dates before the first entry
// use the first entry.
func (p Policy) TaxRateOn(date time.Time) float64 {
	if len(p.TaxRates) == 0 {
		return 0
	}
	rate := p.TaxRates[0].Rate
	for _, r := range p.TaxRates[1:] {
		if date.Before(r.EffectiveFrom) {
			break
		}
		rate = r.Rate
	}
	return rate
}

// SalaryRuleOn returns the pay scheme in force on date.
func (p Policy) SalaryRuleOn(date time.Time) SalaryRule {
	if len(p.SalaryRules) == 0 {
		return SalaryRule{}
	}
	rule := p.SalaryRules[0]
	for _, r := range p.SalaryRules[1:] {
		if date.Before(r.EffectiveFrom) {
			break
		}
		rule = r
	}
	return rule
}

// IsExempt reports whether promoters are unpaid for work at organization.
func (p Policy) IsExempt(organization string) bool {
	return p.ExemptOrganization != "" && strings.TrimSpace(organization) == p.ExemptOrganization
}

// IsAdjustment reports whether promoter is the balance-adjustment sentinel.
func (p Policy) IsAdjustment(promoter string) bool {
	return p.AdjustmentPromoter != "" && strings.TrimSpace(promoter) == p.AdjustmentPromoter
}
