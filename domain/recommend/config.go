package recommend

// Config carries the engine's policy thresholds. Every value here is a
// tunable deployment policy, not a proven business rule; the defaults
// mirror the thresholds the analysis was calibrated with.
type Config struct {
	// MinAbsDelta gates metric records into scoring: a record is
	// considered when abs(delta) meets this floor OR its 95% interval
	// excludes zero.
	MinAbsDelta float64 `json:"min_abs_delta"`

	// DirectionalConfidenceWeight is applied to records that are
	// directional but not statistically significant. Significant records
	// carry weight 1.0.
	DirectionalConfidenceWeight float64 `json:"directional_confidence_weight"`

	// HighImpactThreshold and MediumImpactThreshold cut impact scores
	// into priority tiers; anything below medium is low.
	HighImpactThreshold   float64 `json:"high_impact_threshold"`
	MediumImpactThreshold float64 `json:"medium_impact_threshold"`

	// RemoveSentimentPrevalence is the minimum prevalence of a negative
	// top theme required to escalate a "change" into a "remove".
	RemoveSentimentPrevalence float64 `json:"remove_sentiment_prevalence"`

	// TopThemesForMatching bounds how many of a segment's most prevalent
	// themes contribute keywords to creative element matching.
	TopThemesForMatching int `json:"top_themes_for_matching"`

	// MaxQualitativeQuotes caps the supporting quotes per recommendation.
	MaxQualitativeQuotes int `json:"max_qualitative_quotes"`
}

// DefaultConfig returns the calibrated default thresholds.
func DefaultConfig() Config {
	return Config{
		MinAbsDelta:                 0.05,
		DirectionalConfidenceWeight: 0.5,
		HighImpactThreshold:         0.08,
		MediumImpactThreshold:       0.03,
		RemoveSentimentPrevalence:   0.4,
		TopThemesForMatching:        3,
		MaxQualitativeQuotes:        3,
	}
}

// withDefaults fills unset values so a partially-populated config from
// the environment cannot silently gate everything out.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MinAbsDelta <= 0 {
		c.MinAbsDelta = d.MinAbsDelta
	}
	if c.DirectionalConfidenceWeight <= 0 {
		c.DirectionalConfidenceWeight = d.DirectionalConfidenceWeight
	}
	if c.HighImpactThreshold <= 0 {
		c.HighImpactThreshold = d.HighImpactThreshold
	}
	if c.MediumImpactThreshold <= 0 {
		c.MediumImpactThreshold = d.MediumImpactThreshold
	}
	if c.RemoveSentimentPrevalence <= 0 {
		c.RemoveSentimentPrevalence = d.RemoveSentimentPrevalence
	}
	if c.TopThemesForMatching <= 0 {
		c.TopThemesForMatching = d.TopThemesForMatching
	}
	if c.MaxQualitativeQuotes <= 0 {
		c.MaxQualitativeQuotes = d.MaxQualitativeQuotes
	}
	return c
}
