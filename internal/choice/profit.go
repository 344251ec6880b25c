package choice

import (
	"math"

	"marketshare/internal/diag"
	"marketshare/internal/market"
	"marketshare/internal/model"
)

// LandAllocator is the narrow view of the land-allocation subsystem used by profit
// based options. Yield and carbon bookkeeping stay behind it.
type LandAllocator interface {
	SetIntrinsicRate(region, landType, product string, profitRate float64, period int)
	CalcYield(landType, product, region string, profitRate float64, period int)
	Supply(landType, product string, period int) float64
	LandAllocation(landType, product string, period int) float64
	UnmanagedCalAveObservedRate(period int, landType string) float64
}

// calVarCostQuantity names the calibrated variable cost passed between periods.
const calVarCostQuantity = "calVarCost"

const smallNumber = 1e-6

// Profit is a profit based land production technology. Its output is decided by the
// land allocator from its profit rate, so its cost and share are constants that only
// keep the surrounding logit well defined.
type Profit struct{}

// InitCalc derives the period's calibrated variable cost in calibration periods and
// passes it forward one period through market info; in other periods it picks up the
// value passed from the previous period, if any.
func (Profit) InitCalc(env Env, o *model.Option, period int) {
	rec := env.recorder()
	if env.Info == nil {
		return
	}
	key := market.InfoKey(calVarCostQuantity, o.Name, env.Region)

	var calVarCost float64
	var found bool
	st := &o.Periods[period]
	if st.Calibrated && st.CalYield > 0 && env.Land != nil {
		calPrice, _ := env.Info.Info(env.Product, env.Region, period, market.InfoCalPrice)
		calVarCost = calPrice - env.Land.UnmanagedCalAveObservedRate(period, o.LandType)/st.CalYield
		found = true
		if calVarCost > smallNumber {
			st.VariableCost = calVarCost
		} else {
			rec.Record(diag.Debug, "calibrated price too low for variable cost",
				"option", o.Name, "region", env.Region, "shortfall", math.Abs(calVarCost))
		}
		// A variable cost close to the price makes the profit rate small and volatile.
		if calVarCost > calPrice*0.99 {
			rec.Record(diag.Debug, "calibrated variable cost close to calibrated price",
				"option", o.Name, "sector", env.Product, "variableCost", calVarCost, "calPrice", calPrice)
		}
	} else {
		calVarCost, found = env.Info.Info(env.Product, env.Region, period, key)
		if found && calVarCost > smallNumber {
			st.VariableCost = calVarCost
		}
	}

	if found && period+1 < env.Time.Periods {
		env.Info.SetInfo(env.Product, env.Region, period+1, key, calVarCost)
	}
}

func (p Profit) Cost(env Env, o *model.Option, period int) (float64, float64) {
	rate := p.profitRate(env, o, period)
	if env.Land != nil {
		env.Land.SetIntrinsicRate(env.Region, o.LandType, o.Name, rate, period)
	} else {
		env.recorder().Record(diag.Error, "profit based option without land allocator", "option", o.Name)
	}
	return 1, o.Periods[period].VariableCost
}

// Share is constant: output does not depend on the share.
func (Profit) Share(float64, float64, float64) float64 {
	return 1
}

func (p Profit) Production(env Env, o *model.Option, _ float64, period int) (float64, float64) {
	if env.Land == nil {
		env.recorder().Record(diag.Error, "profit based option without land allocator", "option", o.Name)
		return 0, 0
	}
	rate := p.profitRate(env, o, period)
	env.Land.CalcYield(o.LandType, o.Name, env.Region, rate, period)
	return env.Land.Supply(o.LandType, o.Name, period), env.Land.LandAllocation(o.LandType, o.Name, period)
}

func (Profit) profitRate(env Env, o *model.Option, period int) float64 {
	price := 0.0
	if env.Market != nil {
		price = env.Market.Price(env.Product, env.Region, period)
	}
	return price - o.Periods[period].VariableCost
}
