package simulation

// LedgerRow is one row of per-period output: a group when Option is empty, an
// option of that group otherwise.
// This is the primary artifact for "what happened" in a run.
type LedgerRow struct {
	Period int `json:"period"`
	Year   int `json:"year"`

	Group  string `json:"group"`
	Option string `json:"option,omitempty"`
	Good   string `json:"good,omitempty"`

	// Share is normalized among siblings: groups within the sector, options within
	// the group. SectorShare is the share of sector demand.
	Share       float64 `json:"share"`
	SectorShare float64 `json:"sector_share"`
	ShareWeight float64 `json:"share_weight"`

	Price     float64 `json:"price"`
	FuelPrice float64 `json:"fuel_price"`

	Output float64 `json:"output"`
	Input  float64 `json:"input"`

	Fixed      bool `json:"fixed"`
	Calibrated bool `json:"calibrated"`
	CapLimited bool `json:"cap_limited"`
}

type PeriodSummary struct {
	Period          int     `json:"period"`
	Year            int     `json:"year"`
	Demand          float64 `json:"demand"`
	Output          float64 `json:"output"`
	Price           float64 `json:"price"`
	FuelPrice       float64 `json:"fuel_price"`
	Iterations      int     `json:"iterations"`
	CalibrationMiss float64 `json:"calibration_miss"`

	// CalibratedInputs is the input of calibrated and fixed options, by good.
	CalibratedInputs map[string]float64 `json:"calibrated_inputs,omitempty"`
}

type Result struct {
	Sector  string          `json:"sector"`
	Region  string          `json:"region"`
	Periods []PeriodSummary `json:"periods"`
	Ledger  []LedgerRow     `json:"ledger"`
}
