package share

import (
	"marketshare/internal/diag"
	"marketshare/internal/model"
)

// InterpolateShareWeights runs in the first period after a calibrated one. It
// replaces the share weights of the following periods by a linear path from the
// calibrated weight toward the weight of the group's scale year.
func (c *Calculator) InterpolateShareWeights(g *model.Group, period int) {
	if period == 0 || !c.CalibrationActive {
		return
	}
	mt := c.Env.Time
	if period <= mt.YearToPeriod(c.InterpolateAfterYear) || !g.Periods[period-1].Calibrated {
		return
	}

	end := 0
	if g.ScaleYear >= mt.StartYear {
		end = mt.YearToPeriod(g.ScaleYear)
	}

	// A zero calibrated weight is interpolated too, so a group calibrated to zero
	// output phases back in toward its scale-year weight.
	if end >= period-1 && g.Periods[period-1].ShareWeight >= 0 {
		c.rec().Record(diag.Debug, "interpolating share weights", "group", g.Name,
			"region", c.Env.Region, "from", period-1, "to", end)
		c.ShareWeightLinearInterp(g, period-1, end)
	}

	if c.InterpolateOptionWeights && len(g.Options) > 1 {
		c.OptionShareWeightLinearInterp(g, period-1, len(g.Periods)-1)
	}
}

// ShareWeightLinearInterp sets the group share weights of the periods strictly
// between begin and end on the line joining their values at begin and end.
// end == begin holds the begin value through the last period.
func (c *Calculator) ShareWeightLinearInterp(g *model.Group, begin, end int) {
	if end < begin {
		c.rec().Record(diag.Warning, "share weight interpolation ends before it begins",
			"group", g.Name, "begin", begin, "end", end)
		return
	}
	if end == begin {
		for p := begin + 1; p < len(g.Periods); p++ {
			g.Periods[p].ShareWeight = g.Periods[begin].ShareWeight
		}
		return
	}
	from, to := g.Periods[begin].ShareWeight, g.Periods[end].ShareWeight
	slope := (to - from) / float64(end-begin)
	for p := begin + 1; p < end; p++ {
		g.Periods[p].ShareWeight = from + slope*float64(p-begin)
	}
}

// OptionShareWeightLinearInterp interpolates option share weights between begin
// and end the way ShareWeightLinearInterp does for the group. Starting weights
// are taken normalized, so that available options average 1; begin itself is
// left untouched. Options unavailable at begin keep their weights.
func (c *Calculator) OptionShareWeightLinearInterp(g *model.Group, begin, end int) {
	if end < begin {
		return
	}
	norm := c.optionWeightNorm(g, begin)
	for i := range g.Options {
		ps := g.Options[i].Periods
		if ps[begin].ShareWeight <= 0 {
			continue
		}
		from := ps[begin].ShareWeight * norm
		if end == begin {
			for p := begin + 1; p < len(ps); p++ {
				ps[p].ShareWeight = from
			}
			continue
		}
		slope := (ps[end].ShareWeight - from) / float64(end-begin)
		for p := begin + 1; p < end; p++ {
			ps[p].ShareWeight = from + slope*float64(p-begin)
		}
	}
}

// NormalizeOptionShareWeights scales the option share weights of period so that
// available options average 1.
func (c *Calculator) NormalizeOptionShareWeights(g *model.Group, period int) {
	norm := c.optionWeightNorm(g, period)
	for i := range g.Options {
		g.Options[i].Periods[period].ShareWeight *= norm
	}
}

func (c *Calculator) optionWeightNorm(g *model.Group, period int) float64 {
	var total float64
	var n int
	for i := range g.Options {
		if sw := g.Options[i].Periods[period].ShareWeight; sw > 0 {
			total += sw
			n++
		}
	}
	if total == 0 {
		c.rec().Record(diag.Error, "option share weights sum to zero", "group", g.Name,
			"region", c.Env.Region, "period", period)
		return 1
	}
	return float64(n) / total
}
