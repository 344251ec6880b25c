package models

// RunRequest runs a scenario, either a stored one by ID or an inline YAML document.
type RunRequest struct {
	ScenarioID string     `json:"scenario_id,omitempty"`
	Scenario   string     `json:"scenario,omitempty"` // inline scenario YAML
	Options    RunOptions `json:"options,omitempty"`
}

// RunOptions overrides solver settings of the scenario.
type RunOptions struct {
	MaxIterations int     `json:"max_iterations,omitempty"` // 0 = scenario/default
	Tolerance     float64 `json:"tolerance,omitempty"`      // 0 = scenario/default
	IncludeLedger bool    `json:"include_ledger,omitempty"` // default: false
}

// CompareRequest runs one scenario under several variations.
type CompareRequest struct {
	ScenarioID string      `json:"scenario_id,omitempty"`
	Scenario   string      `json:"scenario,omitempty"`
	Variations []Variation `json:"variations" binding:"required,min=1,dive"`
}

// Variation is a named set of overrides applied to the base scenario.
type Variation struct {
	Name              string               `json:"name" binding:"required"`
	CalibrationActive *bool                `json:"calibration_active,omitempty"`
	DemandScale       float64              `json:"demand_scale,omitempty"` // 0 = unchanged
	Prices            map[string][]float64 `json:"prices,omitempty"`
	// ShareWeightScale multiplies the share weight of the named groups in every period.
	ShareWeightScale  map[string]float64   `json:"share_weight_scale,omitempty"`
}

// TransformQuery evaluates the capacity-limit transform.
type TransformQuery struct {
	Share    *float64 `form:"share" binding:"required"`
	CapLimit *float64 `form:"cap_limit" binding:"required"`
}
