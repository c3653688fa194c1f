package models

// TensionResult is the pair-tension response body: raw divergence between the
// sentiment and mechanics legs, and that divergence re-normalized against its
// own rolling history.
type TensionResult struct {
	Name     string `json:"name"`
	Tension1 Series `json:"tension1"`
	Tension2 Series `json:"tension2"`
}

// TensionSignals carries the >2-sigma abnormal-divergence flags derived from
// a TensionResult. A pure presentation-layer projection; never stored.
type TensionSignals struct {
	SellSignals Series `json:"sell_signals"`
	BuySignals  Series `json:"buy_signals"`
}
