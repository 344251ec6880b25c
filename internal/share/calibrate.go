package share

import (
	"math"

	"marketshare/internal/diag"
	"marketshare/internal/model"
)

// SetCalibrationStatus marks the group calibrated when it carries a group-level
// calibration value or any of its options does.
func (c *Calculator) SetCalibrationStatus(g *model.Group, period int) {
	gs := &g.Periods[period]
	gs.Calibrated = gs.DoCalibration
	for i := range g.Options {
		if g.Options[i].Periods[period].Calibrated {
			gs.Calibrated = true
		}
	}
}

// TotalCalOutputs returns the group's calibration target: the group-level value
// when set, otherwise the sum over calibrated options.
func (c *Calculator) TotalCalOutputs(g *model.Group, period int) float64 {
	gs := g.Periods[period]
	if gs.DoCalibration {
		return gs.CalOutput
	}
	total := 0.0
	for i := range g.Options {
		st := g.Options[i].Periods[period]
		if !st.Calibrated {
			continue
		}
		if st.CalOutput < 0 {
			c.rec().Record(diag.Warning, "negative calibration value", "group", g.Name,
				"option", g.Options[i].Name, "period", period, "calOutput", st.CalOutput)
		}
		total += st.CalOutput
	}
	return total
}

// AdjustForCalibration rescales share weights so the group, and its calibrated
// options, reproduce their calibration values. sectorDemand, totalFixed and
// totalCal are sector-wide; allFixed reports whether every group is fixed or
// calibrated. It returns the target the group was calibrated to after rescaling.
//
// A single pass does not reproduce the target exactly since every group's share
// depends on the others; callers repeat share and calibration until converged.
func (c *Calculator) AdjustForCalibration(g *model.Group, sectorDemand, totalFixed, totalCal float64, allFixed bool, period int) float64 {
	gs := &g.Periods[period]
	if !c.CalibrationActive || !gs.Calibrated {
		return 0
	}

	target := c.TotalCalOutputs(g, period)
	if target != 0 && gs.ShareWeight == 0 {
		c.rec().Record(diag.Notice, "resetting zero share weight of calibrated group",
			"group", g.Name, "region", c.Env.Region, "period", period)
		gs.ShareWeight = 1
	}

	available := math.Max(sectorDemand-totalFixed, 0)
	scale := 1.0
	if totalCal >= available || allFixed {
		switch {
		case totalCal > 0:
			scale = available / totalCal
		case target != 0:
			c.rec().Record(diag.Error, "calibration total is zero", "group", g.Name,
				"region", c.Env.Region, "period", period, "target", target)
		}
	}
	target *= scale

	groupDemand := gs.Share * sectorDemand
	if groupDemand > 0 {
		gs.ShareWeight *= target / groupDemand
	}
	if gs.ShareWeight < 0 || math.IsNaN(gs.ShareWeight) || math.IsInf(gs.ShareWeight, 0) {
		c.rec().Record(diag.Error, "invalid share weight after calibration, resetting to 1",
			"group", g.Name, "region", c.Env.Region, "period", period, "shareWeight", gs.ShareWeight)
		gs.ShareWeight = 1
	}

	if c.NumberAvailableOptions(g, period) > 1 {
		c.adjustOptionsForCalibration(g, target, scale, period)
	}
	return target
}

// adjustOptionsForCalibration applies the group-level weight adjustment to each
// calibrated option, measuring option demand against the group target.
func (c *Calculator) adjustOptionsForCalibration(g *model.Group, groupTarget, scale float64, period int) {
	for i := range g.Options {
		o := &g.Options[i]
		st := &o.Periods[period]
		// Profit based options are calibrated by the land allocator.
		if !st.Calibrated || o.Kind == model.KindProfit {
			continue
		}
		target := st.CalOutput * scale
		if target != 0 && st.ShareWeight == 0 {
			st.ShareWeight = 1
			continue
		}
		optDemand := st.Share * groupTarget
		if optDemand > 0 {
			st.ShareWeight *= target / optDemand
		}
		if st.ShareWeight < 0 || math.IsNaN(st.ShareWeight) || math.IsInf(st.ShareWeight, 0) {
			c.rec().Record(diag.Error, "invalid option share weight after calibration, resetting to 1",
				"group", g.Name, "option", o.Name, "period", period, "shareWeight", st.ShareWeight)
			st.ShareWeight = 1
		}
	}
}
