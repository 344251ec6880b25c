package model

import (
	"errors"
	"fmt"
)

// Kind selects the production function behind an option.
type Kind string

const (
	// KindStandard options are cost based: cost = fuel price / efficiency + non-energy cost.
	KindStandard Kind = "standard"
	// KindProfit options are profit based land production. Their output is set by the
	// land allocator, not by their share.
	KindProfit Kind = "profit"
)

// OptionState is the per-period state of an option.
// Units follow the sector: outputs in the sector's output unit, costs in price units
// per unit of output.
type OptionState struct {
	Cost     float64
	FuelCost float64

	// Share is unnormalized after CalcShare and normalized within the group afterwards.
	Share       float64
	ShareWeight float64

	Efficiency    float64
	NonEnergyCost float64

	// Fixed output does not respond to price. FixedOutputBase is the read-in value;
	// FixedOutput may be scaled down to fit demand and is reset every period.
	Fixed           bool
	FixedOutput     float64
	FixedOutputBase float64

	Calibrated bool
	CalOutput  float64

	// Profit based options only. CalYield is the observed calibrated yield; 0 means
	// none was supplied.
	VariableCost float64
	CalYield     float64

	Output float64
	Input  float64
}

// Available reports whether the option competes in this period.
func (s OptionState) Available() bool {
	return s.ShareWeight > 0
}

// Option is a production/consumption technology competing inside a Group.
type Option struct {
	Name  string
	Input Category
	Kind  Kind

	// Profit based options only.
	LandType string

	Periods []OptionState
}

// NewOption creates an option with its per-period state preallocated to defaults.
func NewOption(name string, input Category, kind Kind, periods int) Option {
	if kind == "" {
		kind = KindStandard
	}
	o := Option{
		Name:    name,
		Input:   input,
		Kind:    kind,
		Periods: make([]OptionState, periods),
	}
	for i := range o.Periods {
		o.Periods[i].ShareWeight = 1
		o.Periods[i].Efficiency = 1
	}
	return o
}

func (o *Option) Validate() error {
	if o.Name == "" {
		return errors.New("option name is required")
	}
	switch o.Kind {
	case KindStandard, KindProfit:
	default:
		return fmt.Errorf("option %q: unsupported kind %q", o.Name, o.Kind)
	}
	if o.Kind == KindProfit && o.LandType == "" {
		return fmt.Errorf("option %q: profit based options need a land type", o.Name)
	}
	for p, st := range o.Periods {
		if st.Efficiency <= 0 {
			return fmt.Errorf("option %q period %d: Efficiency must be > 0", o.Name, p)
		}
		if st.ShareWeight < 0 {
			return fmt.Errorf("option %q period %d: ShareWeight must be >= 0", o.Name, p)
		}
		if st.FixedOutputBase < 0 {
			return fmt.Errorf("option %q period %d: fixed output must be >= 0", o.Name, p)
		}
	}
	return nil
}

// SetFixedOutput marks the option's output as exogenously fixed for a period.
func (o *Option) SetFixedOutput(period int, quantity float64) {
	st := &o.Periods[period]
	st.Fixed = quantity > 0
	st.FixedOutputBase = quantity
	st.FixedOutput = quantity
}

// SetCalibration records a calibrated (historical) output for a period.
func (o *Option) SetCalibration(period int, quantity float64) {
	st := &o.Periods[period]
	st.Calibrated = true
	st.CalOutput = quantity
}

// CalInput is the input implied by the calibrated output.
func (s OptionState) CalInput() float64 {
	return s.CalOutput / s.Efficiency
}

// FixedInput is the input implied by the fixed output.
func (s OptionState) FixedInput() float64 {
	return s.FixedOutput / s.Efficiency
}
