// Package choice computes a single option's cost and its unnormalized logit share.
package choice

import (
	"fmt"
	"math"

	"marketshare/internal/diag"
	"marketshare/internal/market"
	"marketshare/internal/model"
)

// Env carries the collaborators an option needs to price and produce itself.
type Env struct {
	Region string
	// Product is the good the sector produces.
	Product string

	Time    model.Modeltime
	Catalog *model.Catalog
	Market  market.Oracle
	Info    market.InfoStore
	Land    LandAllocator
	Rec     diag.Recorder
}

func (e Env) recorder() diag.Recorder { return diag.OrNop(e.Rec) }

// Technology is the production-function contract every option kind satisfies.
type Technology interface {
	// InitCalc runs once per period, before any solver iteration of that period.
	InitCalc(env Env, o *model.Option, period int)
	// Cost returns the option's total cost and the fuel part of it.
	Cost(env Env, o *model.Option, period int) (cost, fuelCost float64)
	// Share returns the unnormalized share for a cost.
	Share(cost, shareWeight, logitExp float64) float64
	// Production returns the output and input for the demand routed to the option.
	Production(env Env, o *model.Option, demand float64, period int) (output, input float64)
}

// For returns the technology implementing kind.
func For(kind model.Kind) (Technology, error) {
	switch kind {
	case model.KindStandard, "":
		return Standard{}, nil
	case model.KindProfit:
		return Profit{}, nil
	default:
		return nil, fmt.Errorf("unsupported option kind: %q", kind)
	}
}

// CalcShare is the power-law logit form shareWeight * cost^logitExp.
//
// A share weight of 0 makes the option unavailable. A cost of 0 or below signals
// no desirability and yields 0; so does a non-finite result.
func CalcShare(cost, shareWeight, logitExp float64) float64 {
	if shareWeight <= 0 || cost <= 0 {
		return 0
	}
	s := shareWeight * math.Pow(cost, logitExp)
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return 0
	}
	return s
}

// CalcCost prices an option for a period and stores the result in its state.
// A non-finite cost is reported and replaced by 0, which makes the option undesirable.
func CalcCost(env Env, o *model.Option, period int) float64 {
	tech, err := For(o.Kind)
	if err != nil {
		env.recorder().Record(diag.Error, "cannot price option", "option", o.Name, "error", err)
		o.Periods[period].Cost = 0
		return 0
	}
	cost, fuel := tech.Cost(env, o, period)
	if !finite(cost) {
		env.recorder().Record(diag.Warning, "non-finite option cost", "option", o.Name, "period", period, "cost", cost)
		cost = 0
	}
	if !finite(fuel) {
		fuel = 0
	}
	st := &o.Periods[period]
	st.Cost = cost
	st.FuelCost = fuel
	return cost
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Standard is a cost based technology: cost = input price / efficiency + non-energy cost.
type Standard struct{}

func (Standard) InitCalc(Env, *model.Option, int) {}

func (Standard) Cost(env Env, o *model.Option, period int) (float64, float64) {
	st := o.Periods[period]
	price := 0.0
	if env.Market != nil {
		price = env.Market.Price(env.Catalog.Name(o.Input), env.Region, period)
	}
	fuel := price / st.Efficiency
	return fuel + st.NonEnergyCost, fuel
}

func (Standard) Share(cost, shareWeight, logitExp float64) float64 {
	return CalcShare(cost, shareWeight, logitExp)
}

func (Standard) Production(_ Env, o *model.Option, demand float64, period int) (float64, float64) {
	st := o.Periods[period]
	output := st.Share * demand
	return output, output / st.Efficiency
}
