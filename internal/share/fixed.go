package share

import (
	"marketshare/internal/diag"
	"marketshare/internal/market"
	"marketshare/internal/model"
)

// FixedOutput sums the output of options whose output is exogenously fixed.
func (c *Calculator) FixedOutput(g *model.Group, period int) float64 {
	total := 0.0
	for i := range g.Options {
		st := g.Options[i].Periods[period]
		if st.Fixed {
			total += st.FixedOutput
		}
	}
	return total
}

// AllOutputFixed reports whether the group's output is entirely determined outside
// the logit: calibrated at group level, a zero group share weight, or every option
// fixed or calibrated.
func (c *Calculator) AllOutputFixed(g *model.Group, period int) bool {
	gs := g.Periods[period]
	if gs.DoCalibration || gs.ShareWeight == 0 {
		return true
	}
	for i := range g.Options {
		st := g.Options[i].Periods[period]
		if !st.Fixed && !st.Calibrated {
			return false
		}
	}
	return true
}

// FixedShare returns the sector share that is fixed supply.
func (c *Calculator) FixedShare(g *model.Group, period int) float64 {
	return g.Periods[period].FixedShare
}

// SetFixedShare records the sector share taken by fixed supply.
func (c *Calculator) SetFixedShare(g *model.Group, share float64, period int) {
	g.Periods[period].FixedShare = share
	if share > 1 {
		c.rec().Record(diag.Error, "fixed share set above 1", "group", g.Name, "period", period, "share", share)
	}
}

// SetShareToFixedValue replaces the share by the saved fixed share, so price and
// calibration see a share consistent with fixed supply.
func (c *Calculator) SetShareToFixedValue(g *model.Group, period int) {
	c.SetShare(g, g.Periods[period].FixedShare, period)
}

// ResetFixedOutput undoes any down-scaling of fixed output.
func (c *Calculator) ResetFixedOutput(g *model.Group, period int) {
	for i := range g.Options {
		st := &g.Options[i].Periods[period]
		st.FixedOutput = st.FixedOutputBase
	}
}

// ScaleFixedOutput scales fixed supply down when total fixed production exceeds demand.
func (c *Calculator) ScaleFixedOutput(g *model.Group, ratio float64, period int) {
	for i := range g.Options {
		st := &g.Options[i].Periods[period]
		if st.Fixed {
			st.FixedOutput *= ratio
		}
	}
	c.SetFixedShare(g, g.Periods[period].FixedShare*ratio, period)
}

// AdjustShares makes the group's share consistent with fixed production.
//
// A group with fixed output gets the share fixedOutput/demand; a group without is
// scaled by shareRatio, which the caller computes to redistribute what fixed supply
// leaves over. Option shares are then made consistent inside the group.
//
// A group is assumed to be either wholly fixed or wholly variable. Mixed groups are
// not handled correctly.
func (c *Calculator) AdjustShares(g *model.Group, demand, shareRatio, totalFixed float64, period int) {
	var groupFixed, varShares float64
	for i := range g.Options {
		st := g.Options[i].Periods[period]
		if st.Fixed {
			groupFixed += st.FixedOutput
		} else {
			varShares += st.Share
		}
	}

	gs := &g.Periods[period]
	if totalFixed > 0 {
		switch {
		case demand <= 0:
			gs.Share = 0
		case groupFixed > 0:
			c.SetShare(g, groupFixed/demand, period)
		default:
			c.SetShare(g, gs.Share*shareRatio, period)
		}
	}

	groupDemand := gs.Share * demand
	for i := range g.Options {
		st := &g.Options[i].Periods[period]
		switch {
		case st.Fixed:
			if groupDemand > 0 {
				st.Share = st.FixedOutput / groupDemand
			} else {
				st.Share = 0
			}
		case varShares > 0 && groupDemand > 0:
			remaining := groupDemand - groupFixed
			if remaining < 0 {
				remaining = 0
			}
			st.Share = st.Share / varShares * remaining / groupDemand
		}
	}
}

// CalAndFixedOutputs sums calibrated outputs, and fixed outputs when both is true,
// over options consuming good.
func (c *Calculator) CalAndFixedOutputs(g *model.Group, period int, good model.Category, both bool) float64 {
	total := 0.0
	for i := range g.Options {
		o := &g.Options[i]
		if !o.Input.Matches(good) {
			continue
		}
		st := o.Periods[period]
		if st.Calibrated {
			total += st.CalOutput
		} else if st.Fixed && both {
			total += st.FixedOutput
		}
	}
	return total
}

// CalAndFixedInputs is CalAndFixedOutputs expressed in inputs.
func (c *Calculator) CalAndFixedInputs(g *model.Group, period int, good model.Category, both bool) float64 {
	total := 0.0
	for i := range g.Options {
		o := &g.Options[i]
		if !o.Input.Matches(good) {
			continue
		}
		st := o.Periods[period]
		if st.Calibrated {
			total += st.CalInput()
		} else if st.Fixed && both {
			total += st.FixedInput()
		}
	}
	return total
}

// InputsAllFixed reports whether every option consuming good is calibrated, fixed,
// or sits in a group with a zero share weight.
func (c *Calculator) InputsAllFixed(g *model.Group, period int, good model.Category) bool {
	for i := range g.Options {
		o := &g.Options[i]
		if !o.Input.Matches(good) {
			continue
		}
		st := o.Periods[period]
		if !st.Calibrated && !st.Fixed && g.Periods[period].ShareWeight != 0 {
			return false
		}
	}
	return true
}

// SetImpliedFixedInput adds the input needed to produce requiredOutput to the
// calibrated demand of good. Only the first matching option is used.
func (c *Calculator) SetImpliedFixedInput(g *model.Group, period int, good model.Category, requiredOutput float64) bool {
	changed := false
	name := c.Env.Catalog.Name(good)
	for i := range g.Options {
		o := &g.Options[i]
		if o.Input != good {
			continue
		}
		if changed {
			c.rec().Record(diag.Warning, "more than one option input would have been changed",
				"group", g.Name, "sector", c.Env.Product, "region", c.Env.Region)
			continue
		}
		changed = true
		if c.Env.Info == nil {
			continue
		}
		input := requiredOutput / o.Periods[period].Efficiency
		existing, _ := c.Env.Info.Info(name, c.Env.Region, period, market.InfoCalDemand)
		if existing < 0 {
			existing = 0
		}
		c.Env.Info.SetInfo(name, c.Env.Region, period, market.InfoCalDemand, existing+input)
	}
	return changed
}

// ScaleCalibratedValues scales the calibrated values of options consuming good.
func (c *Calculator) ScaleCalibratedValues(g *model.Group, period int, good model.Category, scale float64) {
	for i := range g.Options {
		o := &g.Options[i]
		if o.Input == good && o.Periods[period].Calibrated {
			o.Periods[period].CalOutput *= scale
		}
	}
}

// ScaleCalibrationInput scales every option's calibration value.
func (c *Calculator) ScaleCalibrationInput(g *model.Group, period int, scale float64) {
	for i := range g.Options {
		g.Options[i].Periods[period].CalOutput *= scale
	}
}
