// Package share computes nested logit shares for the groups of a sector and keeps
// them consistent with fixed output and calibration targets.
//
// All operations act on one group and one period. They are idempotent within a
// period: recomputing with unchanged inputs gives identical results. They never read
// ahead of the period they are given and only write period-1 state through the
// share-weight interpolator, which writes forward from period-1 and leaves period-1
// itself untouched.
package share

import (
	"math"

	"marketshare/internal/choice"
	"marketshare/internal/diag"
	"marketshare/internal/model"

	"gonum.org/v1/gonum/floats"
)

const (
	// shareTolerance bounds how far above 1 a share may be set before it is reported.
	shareTolerance = 1e-10
	// hugeShareWeight is reported as suspicious.
	hugeShareWeight = 1e4
)

// Calculator holds the collaborators shared by all group operations.
type Calculator struct {
	Env choice.Env

	// CalibrationActive enables calibration and post-calibration interpolation.
	CalibrationActive bool
	// InterpolateAfterYear: share weights are interpolated only in periods after
	// the period containing this year.
	InterpolateAfterYear int
	// InterpolateOptionWeights also interpolates option share weights after
	// calibration. Off by default.
	InterpolateOptionWeights bool
}

func (c *Calculator) rec() diag.Recorder {
	return diag.OrNop(c.Env.Rec)
}

func (c *Calculator) tech(o *model.Option) choice.Technology {
	t, err := choice.For(o.Kind)
	if err != nil {
		c.rec().Record(diag.Error, "unknown option kind, using standard", "option", o.Name, "kind", o.Kind)
		return choice.Standard{}
	}
	return t
}

// InitCalc prepares a group for a new period. It runs once per period, before the
// solver iterates.
func (c *Calculator) InitCalc(g *model.Group, period int) {
	for i := range g.Options {
		o := &g.Options[i]
		c.tech(o).InitCalc(c.Env, o, period)
	}
	c.ResetFixedOutput(g, period)
	c.SetCalibrationStatus(g, period)
	c.InterpolateShareWeights(g, period)

	st := &g.Periods[period]
	st.FixedShare = 0
	// A group with fixed output must not start from a zero share; the sector
	// replaces this placeholder once demand is known.
	if c.FixedOutput(g, period) > 0 && st.FixedShare == 0 {
		st.FixedShare = 0.1
	}

	// A capacity limit cannot coexist with a calibration value.
	if c.TotalCalOutputs(g, period) > 0 && st.CapLimit < 1 {
		c.rec().Record(diag.Warning, "capacity limit ignored for calibrated group",
			"group", g.Name, "period", period, "capLimit", st.CapLimit)
		st.CapLimit = 1
	}
}

// CalcOptionShares prices every option and sets normalized option shares.
// When all unnormalized shares are zero every option share is zero.
func (c *Calculator) CalcOptionShares(g *model.Group, period int) {
	gs := g.Periods[period]
	if len(g.Options) > 1 && gs.OptionLogitExp == 0 {
		c.rec().Record(diag.Warning, "option logit exponent is 0, options tie",
			"group", g.Name, "period", period)
	}

	raw := make([]float64, len(g.Options))
	for i := range g.Options {
		o := &g.Options[i]
		cost := choice.CalcCost(c.Env, o, period)
		st := &o.Periods[period]
		if st.Available() {
			raw[i] = c.tech(o).Share(cost, st.ShareWeight, gs.OptionLogitExp)
		}
	}

	sum := floats.Sum(raw)
	if sum == 0 {
		for i := range raw {
			raw[i] = 0
		}
	} else {
		floats.Scale(1/sum, raw)
	}
	for i := range g.Options {
		g.Options[i].Periods[period].Share = raw[i]
	}
}

// CalcPrice sets the group price, fuel price and CO2 factor as option-share
// weighted averages. Option shares must be normalized.
func (c *Calculator) CalcPrice(g *model.Group, period int) {
	var price, fuel, co2 float64
	for i := range g.Options {
		o := &g.Options[i]
		st := o.Periods[period]
		price += st.Share * st.Cost
		fuel += st.Share * st.FuelCost
		if c.Env.Market != nil {
			co2 += st.Share * c.Env.Market.CO2Coefficient(c.Env.Region, c.Env.Catalog.Name(o.Input))
		}
	}
	gs := &g.Periods[period]
	gs.Price = price
	gs.FuelPrice = fuel
	gs.CO2EmFactor = co2
}

// CalcShare computes option shares, the group price and the group's unnormalized
// share. competing is the number of groups in the sector; gdpScale is the variable
// the fuel-preference elasticity applies to.
func (c *Calculator) CalcShare(g *model.Group, period int, gdpScale float64, competing int) {
	c.CalcOptionShares(g, period)
	c.CalcPrice(g, period)

	gs := &g.Periods[period]
	if competing > 1 && gs.LogitExp == 0 {
		c.rec().Record(diag.Error, "group logit exponent is 0", "group", g.Name, "period", period)
	}

	if gs.Price == 0 {
		gs.Share = 0
	} else {
		gs.Share = gs.ShareWeight * math.Pow(gs.Price, gs.LogitExp) * math.Pow(gdpScale, gs.FuelPrefElasticity)
	}

	if gs.ShareWeight > hugeShareWeight {
		c.rec().Record(diag.Warning, "huge share weight", "group", g.Name, "region", c.Env.Region,
			"period", period, "shareWeight", gs.ShareWeight)
	}
	if gs.Share < 0 {
		c.rec().Record(diag.Warning, "group share below 0", "group", g.Name, "region", c.Env.Region,
			"price", gs.Price, "shareWeight", gs.ShareWeight)
	}
}

// NormShare divides the group's share by the sum over all groups.
func (c *Calculator) NormShare(g *model.Group, sum float64, period int) {
	if sum == 0 {
		g.Periods[period].Share = 0
		return
	}
	c.SetShare(g, g.Periods[period].Share/sum, period)
}

// LimitShares renormalizes a normalized share subject to the capacity limit.
// Groups with a binding limit are transformed once and flagged; other groups are
// scaled by multiplier unless their share is fixed.
func (c *Calculator) LimitShares(g *model.Group, multiplier float64, period int) {
	gs := &g.Periods[period]
	if multiplier == 0 {
		gs.Share = 0
		return
	}
	if Limits(gs.CapLimit) {
		if !gs.CapLimited {
			c.SetShare(g, CapLimitTransform(gs.Share, gs.CapLimit), period)
			gs.CapLimited = true
		}
		return
	}
	if gs.FixedShare == 0 {
		c.SetShare(g, gs.Share*multiplier, period)
	}
}

// SetShare sets a share that is supposed to be normalized. Values above 1 are
// reported but kept so the anomaly stays visible.
func (c *Calculator) SetShare(g *model.Group, share float64, period int) {
	g.Periods[period].Share = share
	if share > 1+shareTolerance {
		c.rec().Record(diag.Error, "share set above 1", "group", g.Name, "period", period, "share", share)
	}
}

// ScaleShareWeight multiplies the group share weight; a zero scale is ignored.
func (c *Calculator) ScaleShareWeight(g *model.Group, scale float64, period int) {
	if scale != 0 {
		g.Periods[period].ShareWeight *= scale
	}
}

// WeightedFuelPrice is the fuel price weighted by the previous period's share (the
// current share in period 0).
func (c *Calculator) WeightedFuelPrice(g *model.Group, period int) float64 {
	share := g.Periods[period].Share
	if period > 0 {
		share = g.Periods[period-1].Share
	}
	return share * g.Periods[period].FuelPrice
}

// NumberAvailableOptions counts options with a positive share weight.
func (c *Calculator) NumberAvailableOptions(g *model.Group, period int) int {
	n := 0
	for i := range g.Options {
		if g.Options[i].Periods[period].Available() {
			n++
		}
	}
	return n
}

// SetOutput routes the group's part of sector demand to its options and totals
// their output and input.
func (c *Calculator) SetOutput(g *model.Group, demand float64, period int) {
	gs := &g.Periods[period]
	groupDemand := gs.Share * demand
	gs.Output, gs.Input = 0, 0
	for i := range g.Options {
		o := &g.Options[i]
		out, in := c.tech(o).Production(c.Env, o, groupDemand, period)
		st := &o.Periods[period]
		st.Output, st.Input = out, in
		gs.Output += out
		gs.Input += in
	}
}
