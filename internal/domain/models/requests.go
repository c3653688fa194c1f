package models

// Requests for analytics HTTP endpoints. Defined in domain for consistency and reuse.

type DataRequest struct {
	Dataset string `query:"dataset" json:"dataset" validate:"required"`
	Days    int    `query:"days" json:"days" default:"365" validate:"gte=1,lte=3650"`
}

type OscillatorRequest struct {
	Asset      string `query:"asset" json:"asset" validate:"required,oneof=btc eth gold"`
	Datasets   string `query:"datasets" json:"datasets" validate:"required"`
	Days       int    `query:"days" json:"days" default:"30" validate:"gte=1,lte=3650"`
	Normalizer string `query:"normalizer" json:"normalizer" default:"zscore" validate:"oneof=zscore pct_change_zscore"`
	Mode       string `query:"mode" json:"mode" default:"individual" validate:"oneof=individual composite"`
	NoiseLevel int    `query:"noise_level" json:"noise_level" default:"50" validate:"oneof=14 30 50 100 200"`
}

type RegimeRequest struct {
	Asset string `query:"asset" json:"asset" validate:"required,oneof=btc eth gold"`
	Days  int    `query:"days" json:"days" default:"365" validate:"gte=1,lte=3650"`
}

type TensionRequest struct {
	Asset     string `query:"asset" json:"asset" validate:"required,oneof=btc eth gold"`
	Sentiment string `query:"sentiment" json:"sentiment" validate:"required"`
	Mechanics string `query:"mechanics" json:"mechanics" validate:"required"`
	Days      int    `query:"days" json:"days" default:"365" validate:"gte=1,lte=3650"`
	Window    int    `query:"window" json:"window" default:"30" validate:"oneof=14 30 50 100 200"`
}

type CandlesRequest struct {
	Asset string `query:"asset" json:"asset" validate:"required,oneof=btc eth gold"`
	Days  int    `query:"days" json:"days" default:"365" validate:"gte=1,lte=3650"`
	Limit int    `query:"limit" json:"limit" default:"10000" validate:"gte=1,lte=50000"`
}
