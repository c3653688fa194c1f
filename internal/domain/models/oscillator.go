package models

// NormalizationMeta records how a score series was produced.
type NormalizationMeta struct {
	Window     int    `json:"window"`
	MinPeriods int    `json:"min_periods"`
	Method     string `json:"method"` // "ols_residual"
}

// NormalizedSeries is a z-score series plus the parameters that produced it.
// Points are null wherever the fit was underdetermined.
type NormalizedSeries struct {
	Points Series            `json:"data"`
	Meta   NormalizationMeta `json:"meta"`
}

// ComponentWeight configures one composite input. Weights are used exactly as
// supplied; Invert flips the component's sign before weighting.
type ComponentWeight struct {
	Weight float64 `json:"weight"`
	Invert bool    `json:"invert"`
}

// CompositeConfig maps component name to its weight configuration. Weights
// need not sum to 1: the aggregator divides by the count of contributing
// components, not a fixed total.
type CompositeConfig map[string]ComponentWeight

// EqualWeights builds the default 1.0-per-component config.
func EqualWeights(names []string) CompositeConfig {
	cfg := make(CompositeConfig, len(names))
	for _, n := range names {
		cfg[n] = ComponentWeight{Weight: 1.0}
	}
	return cfg
}

// DatasetPayload pairs a series with its display metadata for API responses.
type DatasetPayload struct {
	Data     Series   `json:"data"`
	Metadata Metadata `json:"metadata"`
}

// IndividualResult is the individual-mode response body: each requested
// dataset normalized against the asset price, keyed by dataset name.
type IndividualResult struct {
	Mode       string                    `json:"mode"`
	Asset      string                    `json:"asset"`
	Normalizer string                    `json:"normalizer"`
	Datasets   map[string]DatasetPayload `json:"datasets"`
}

// CompositeResult is the composite-mode response body: the weighted composite
// score, the regime overlay, and the per-component breakdown.
type CompositeResult struct {
	Mode       string                    `json:"mode"`
	Asset      string                    `json:"asset"`
	NoiseLevel int                       `json:"noise_level"`
	Composite  DatasetPayload            `json:"composite"`
	Regime     *RegimeResult             `json:"regime,omitempty"`
	Breakdown  map[string]DatasetPayload `json:"breakdown"`
}
