package models

import "encoding/json"

// RegimeLabel assigns a discrete volatility state to one timestamp.
// State 0 is always the lower-volatility state.
type RegimeLabel struct {
	TS    int64
	State int
}

// MarshalJSON renders the [timestamp_ms, state] pair form for charting.
func (r RegimeLabel) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int64{r.TS, int64(r.State)})
}

// RegimeState is the display metadata contract for one state. Names and
// colors are stable across requests: state 0 is always the blue low-vol
// state, state 1 the red high-vol state.
type RegimeState struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

// RegimeMetadata wraps the per-state display block.
type RegimeMetadata struct {
	Label  string              `json:"label"`
	States map[int]RegimeState `json:"states"`
}

// RegimeResult is the regime response body.
type RegimeResult struct {
	Data     []RegimeLabel  `json:"data"`
	Metadata RegimeMetadata `json:"metadata"`
}
