package models

import (
	"time"

	"marketshare/internal/simulation"
)

// RunResponse describes a finished run.
type RunResponse struct {
	ID          string                     `json:"id"`
	Status      string                     `json:"status"`
	Scenario    string                     `json:"scenario,omitempty"`
	Digest      string                     `json:"digest"`
	CreatedAt   time.Time                  `json:"created_at"`
	Summary     RunSummary                 `json:"summary"`
	Periods     []simulation.PeriodSummary `json:"periods"`
	Diagnostics []Diagnostic               `json:"diagnostics,omitempty"`
	Ledger      []simulation.LedgerRow     `json:"ledger,omitempty"`
}

// RunSummary contains aggregated run results
type RunSummary struct {
	Sector    string `json:"sector"`
	Region    string `json:"region"`
	StartYear int    `json:"start_year"`
	EndYear   int    `json:"end_year"`
	Periods   int    `json:"periods"`
	// TotalOutput sums sector output over all periods.
	TotalOutput float64 `json:"total_output"`
	// MaxCalibrationMiss is the worst relative calibration miss of any period.
	MaxCalibrationMiss float64 `json:"max_calibration_miss"`
	Warnings           int     `json:"warnings"`
	Errors             int     `json:"errors"`
}

// Diagnostic is a recorded anomaly with its fields rendered as text.
type Diagnostic struct {
	Level   string            `json:"level"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// CompareResponse represents the response from a comparison
type CompareResponse struct {
	Comparison []ComparisonResult `json:"comparison"`
}

// ComparisonResult contains results for one variation
type ComparisonResult struct {
	Name    string                     `json:"name"`
	Summary RunSummary                 `json:"summary"`
	Periods []simulation.PeriodSummary `json:"periods,omitempty"`
	Error   string                     `json:"error,omitempty"`
}

// ScenarioInfo describes a stored scenario file.
type ScenarioInfo struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	File      string   `json:"file"`
	Sector    string   `json:"sector"`
	Region    string   `json:"region"`
	StartYear int      `json:"start_year"`
	Periods   int      `json:"periods"`
	Groups    []string `json:"groups"`
}

// KindInfo describes an option kind and its scenario parameters.
type KindInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ParameterInfo `json:"parameters"`
}

// ParameterInfo describes an option parameter
type ParameterInfo struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"` // "float", "string", "map"
	Description string      `json:"description"`
	Default     interface{} `json:"default,omitempty"`
}

// TransformResponse is the capacity-limit transform of one share.
type TransformResponse struct {
	Share    float64 `json:"share"`
	CapLimit float64 `json:"cap_limit"`
	Limited  float64 `json:"limited"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
