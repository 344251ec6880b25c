// Package sector drives the share calculation across the competing groups of one
// sector: normalization between groups, fixed output, capacity limits and
// sector-wide calibration totals.
package sector

import (
	"math"

	"marketshare/internal/diag"
	"marketshare/internal/model"
	"marketshare/internal/share"
)

// Driver runs the per-period share steps for a sector.
type Driver struct {
	Sector *model.Sector
	Calc   *share.Calculator
}

func New(s *model.Sector, calc *share.Calculator) *Driver {
	return &Driver{Sector: s, Calc: calc}
}

func (d *Driver) rec() diag.Recorder {
	return diag.OrNop(d.Calc.Env.Rec)
}

// InitCalc prepares every group for the period.
func (d *Driver) InitCalc(period int) {
	for i := range d.Sector.Groups {
		d.Calc.InitCalc(&d.Sector.Groups[i], period)
	}
}

// TotalFixedOutput sums fixed output over all groups.
func (d *Driver) TotalFixedOutput(period int) float64 {
	total := 0.0
	for i := range d.Sector.Groups {
		total += d.Calc.FixedOutput(&d.Sector.Groups[i], period)
	}
	return total
}

// CalcShares computes normalized group and option shares for the period.
// Recomputing with unchanged prices gives the same shares.
func (d *Driver) CalcShares(period int) {
	s := d.Sector
	demand := s.Demand[period]
	for i := range s.Groups {
		s.Groups[i].Periods[period].CapLimited = false
	}

	totalFixed := d.TotalFixedOutput(period)
	if demand > 0 && totalFixed > demand {
		d.rec().Record(diag.Notice, "fixed output exceeds demand, scaling down",
			"sector", s.Name, "region", s.Region, "period", period, "fixed", totalFixed, "demand", demand)
		ratio := demand / totalFixed
		for i := range s.Groups {
			d.Calc.ScaleFixedOutput(&s.Groups[i], ratio, period)
		}
		totalFixed = demand
	}

	fixedShares := 0.0
	for i := range s.Groups {
		g := &s.Groups[i]
		fixed := d.Calc.FixedOutput(g, period)
		switch {
		case fixed > 0 && demand > 0:
			d.Calc.SetFixedShare(g, fixed/demand, period)
			fixedShares += fixed / demand
		case fixed > 0:
			d.Calc.SetFixedShare(g, 0, period)
		}
	}

	sum := 0.0
	for i := range s.Groups {
		g := &s.Groups[i]
		d.Calc.CalcShare(g, period, s.GDPScale[period], len(s.Groups))
		sum += g.Periods[period].Share
	}
	for i := range s.Groups {
		d.Calc.NormShare(&s.Groups[i], sum, period)
	}

	ratio := 1.0
	if totalFixed > 0 {
		varShares := 0.0
		for i := range s.Groups {
			g := &s.Groups[i]
			if d.Calc.FixedOutput(g, period) == 0 {
				varShares += g.Periods[period].Share
			}
		}
		ratio = 0
		if varShares > 0 {
			ratio = math.Max(1-fixedShares, 0) / varShares
		}
	}
	for i := range s.Groups {
		d.Calc.AdjustShares(&s.Groups[i], demand, ratio, totalFixed, period)
	}

	d.limitShares(period)
}

// limitShares applies capacity limits and hands the share they remove to groups
// that are neither limited nor fixed. It repeats until no further group is limited.
func (d *Driver) limitShares(period int) {
	groups := d.Sector.Groups
	for {
		newlyLimited := false
		for i := range groups {
			g := &groups[i]
			gs := g.Periods[period]
			if share.Limits(gs.CapLimit) && !gs.CapLimited {
				d.Calc.LimitShares(g, 1, period)
				newlyLimited = true
			}
		}
		if !newlyLimited {
			return
		}

		var limited, fixed, free float64
		for i := range groups {
			gs := groups[i].Periods[period]
			switch {
			case gs.CapLimited:
				limited += gs.Share
			case gs.FixedShare > 0:
				fixed += gs.Share
			default:
				free += gs.Share
			}
		}
		if free == 0 {
			d.rec().Record(diag.Warning, "capacity limits leave no group to take up demand",
				"sector", d.Sector.Name, "region", d.Sector.Region, "period", period)
			return
		}
		multiplier := math.Max(1-limited-fixed, 0) / free
		for i := range groups {
			if !groups[i].Periods[period].CapLimited {
				d.Calc.LimitShares(&groups[i], multiplier, period)
			}
		}
	}
}

// Calibrate adjusts share weights of calibrated groups toward their targets and
// returns the largest relative miss measured before the adjustment.
func (d *Driver) Calibrate(period int) float64 {
	if !d.Calc.CalibrationActive {
		return 0
	}
	s := d.Sector
	demand := s.Demand[period]

	totalFixed := d.TotalFixedOutput(period)
	totalCal := 0.0
	allFixed := true
	for i := range s.Groups {
		g := &s.Groups[i]
		if g.Periods[period].Calibrated {
			totalCal += d.Calc.TotalCalOutputs(g, period)
		}
		if !d.Calc.AllOutputFixed(g, period) {
			allFixed = false
		}
	}

	worst := 0.0
	for i := range s.Groups {
		g := &s.Groups[i]
		before := g.Periods[period].Share * demand
		target := d.Calc.AdjustForCalibration(g, demand, totalFixed, totalCal, allFixed, period)
		if !g.Periods[period].Calibrated || target == 0 {
			continue
		}
		if miss := math.Abs(before-target) / math.Abs(target); miss > worst {
			worst = miss
		}
	}
	return worst
}

// SetImpliedInputs records, for every input good whose consumption in a group
// is fully calibrated or fixed, the input that output implies.
func (d *Driver) SetImpliedInputs(period int) {
	cat := d.Sector.Catalog
	for _, name := range cat.Names() {
		good, _ := cat.Lookup(name)
		for i := range d.Sector.Groups {
			g := &d.Sector.Groups[i]
			if !d.Calc.InputsAllFixed(g, period, good) {
				continue
			}
			if required := d.Calc.CalAndFixedOutputs(g, period, good, true); required > 0 {
				d.Calc.SetImpliedFixedInput(g, period, good, required)
			}
		}
	}
}

// SetOutput routes sector demand to groups and options and returns total output.
func (d *Driver) SetOutput(period int) float64 {
	total := 0.0
	for i := range d.Sector.Groups {
		g := &d.Sector.Groups[i]
		d.Calc.SetOutput(g, d.Sector.Demand[period], period)
		total += g.Periods[period].Output
	}
	return total
}

// Price is the share-weighted group price.
func (d *Driver) Price(period int) float64 {
	price := 0.0
	for i := range d.Sector.Groups {
		gs := d.Sector.Groups[i].Periods[period]
		price += gs.Share * gs.Price
	}
	return price
}

// FuelPrice is the sector's fuel price, each group weighted by its previous-period
// share.
func (d *Driver) FuelPrice(period int) float64 {
	price := 0.0
	for i := range d.Sector.Groups {
		price += d.Calc.WeightedFuelPrice(&d.Sector.Groups[i], period)
	}
	return price
}

// CalibratedInputs totals, per input good, the input consumed by calibrated and
// fixed options. Goods with no such input are left out.
func (d *Driver) CalibratedInputs(period int) map[string]float64 {
	cat := d.Sector.Catalog
	out := map[string]float64{}
	for _, name := range cat.Names() {
		good, _ := cat.Lookup(name)
		total := 0.0
		for i := range d.Sector.Groups {
			total += d.Calc.CalAndFixedInputs(&d.Sector.Groups[i], period, good, true)
		}
		if total > 0 {
			out[name] = total
		}
	}
	return out
}

// ScaleShareWeight multiplies the named group's share weight in every period.
// It reports whether the group exists.
func (d *Driver) ScaleShareWeight(group string, scale float64) bool {
	g, ok := d.Sector.Group(group)
	if !ok {
		return false
	}
	for p := range g.Periods {
		d.Calc.ScaleShareWeight(g, scale, p)
	}
	return true
}

// CalAndFixedOutputs sums calibrated and, when both is set, fixed output of good
// over all groups.
func (d *Driver) CalAndFixedOutputs(period int, good model.Category, both bool) float64 {
	total := 0.0
	for i := range d.Sector.Groups {
		total += d.Calc.CalAndFixedOutputs(&d.Sector.Groups[i], period, good, both)
	}
	return total
}

// InputsAllFixed reports whether consumption of good is fully calibrated or fixed
// in every group.
func (d *Driver) InputsAllFixed(period int, good model.Category) bool {
	for i := range d.Sector.Groups {
		if !d.Calc.InputsAllFixed(&d.Sector.Groups[i], period, good) {
			return false
		}
	}
	return true
}
