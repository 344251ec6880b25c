package choice

import (
	"math"
	"testing"

	"marketshare/internal/diag"
	"marketshare/internal/market"
	"marketshare/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func TestCalcShare_PowerLaw(t *testing.T) {
	nearlyEqual(t, "cost 10", CalcShare(10, 1, -3), 1e-3)
	nearlyEqual(t, "weighted", CalcShare(2, 3, -1), 1.5)
	assert.Greater(t, CalcShare(10, 1, -3), CalcShare(20, 1, -3), "lower cost wins")
}

func TestCalcShare_Degenerate(t *testing.T) {
	tests := []struct {
		name           string
		cost, sw, lexp float64
	}{
		{"zero share weight", 10, 0, -3},
		{"zero cost", 0, 1, -3},
		{"negative cost", -5, 1, -3},
		{"overflow", 1e-200, 1, -3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, 0.0, CalcShare(tt.cost, tt.sw, tt.lexp))
		})
	}
	assert.Equal(t, 1.0, CalcShare(7, 1, 0), "zero exponent ties every option")
}

func TestFor(t *testing.T) {
	tech, err := For(model.KindStandard)
	require.NoError(t, err)
	assert.IsType(t, Standard{}, tech)

	tech, err = For(model.KindProfit)
	require.NoError(t, err)
	assert.IsType(t, Profit{}, tech)

	_, err = For("nuclear-fusion")
	assert.Error(t, err)
}

func standardEnv(m *market.Marketplace, cat *model.Catalog) Env {
	return Env{
		Region:  "usa",
		Product: "electricity",
		Time:    model.Modeltime{StartYear: 1990, TimeStep: 15, Periods: 3},
		Catalog: cat,
		Market:  m,
		Info:    m,
	}
}

func TestCalcCost_Standard(t *testing.T) {
	cat := model.NewCatalog()
	m := market.NewMarketplace()
	m.SetPrice("gas", "usa", 0, 4)
	env := standardEnv(m, cat)

	o := model.NewOption("ngcc", cat.Intern("gas"), model.KindStandard, 3)
	o.Periods[0].Efficiency = 0.5
	o.Periods[0].NonEnergyCost = 2

	cost := CalcCost(env, &o, 0)
	nearlyEqual(t, "cost", cost, 10)
	nearlyEqual(t, "fuel cost", o.Periods[0].FuelCost, 8)

	out, in := Standard{}.Production(env, &o, 50, 0)
	assert.Equal(t, 0.0, out, "share not yet set")
	assert.Equal(t, 0.0, in)

	o.Periods[0].Share = 0.4
	out, in = Standard{}.Production(env, &o, 50, 0)
	nearlyEqual(t, "output", out, 20)
	nearlyEqual(t, "input", in, 40)
}

func TestCalcCost_NonFiniteIsReported(t *testing.T) {
	cat := model.NewCatalog()
	m := market.NewMarketplace()
	m.SetPrice("gas", "usa", 0, math.Inf(1))
	rec := &diag.Memory{}
	env := standardEnv(m, cat)
	env.Rec = rec

	o := model.NewOption("ngcc", cat.Intern("gas"), model.KindStandard, 3)
	assert.Equal(t, 0.0, CalcCost(env, &o, 0))
	assert.Equal(t, 1, rec.Count(diag.Warning))
}

func TestProfit_CostShareProduction(t *testing.T) {
	cat := model.NewCatalog()
	m := market.NewMarketplace()
	m.SetPrice("food", "usa", 0, 10)
	land := NewStaticLand()
	land.Set("cropland", "wheat", 100, 2)

	env := standardEnv(m, cat)
	env.Product = "food"
	env.Land = land

	o := model.NewOption("wheat", cat.Intern("land"), model.KindProfit, 3)
	o.LandType = "cropland"
	o.Periods[0].VariableCost = 4

	cost := CalcCost(env, &o, 0)
	assert.Equal(t, 1.0, cost)
	assert.Equal(t, 6.0, land.IntrinsicRate("cropland", "wheat"))
	assert.Equal(t, 1.0, Profit{}.Share(cost, 5, -3))

	out, in := Profit{}.Production(env, &o, 1e6, 0)
	assert.Equal(t, 200.0, out, "output comes from land, not demand")
	assert.Equal(t, 100.0, in)

	o.Periods[0].VariableCost = 12
	out, _ = Profit{}.Production(env, &o, 1e6, 0)
	assert.Equal(t, 0.0, out, "unprofitable land produces nothing")
}

func TestProfit_VariableCostIsPerPeriod(t *testing.T) {
	cat := model.NewCatalog()
	m := market.NewMarketplace()
	m.SetPrice("food", "usa", 0, 10)
	m.SetPrice("food", "usa", 1, 10)
	land := NewStaticLand()
	land.Set("cropland", "wheat", 100, 2)

	env := standardEnv(m, cat)
	env.Product = "food"
	env.Land = land

	o := model.NewOption("wheat", cat.Intern("land"), model.KindProfit, 3)
	o.LandType = "cropland"
	o.Periods[0].VariableCost = 4
	o.Periods[1].VariableCost = 9

	for period, want := range []float64{6, 1} {
		Profit{}.InitCalc(env, &o, period)
		CalcCost(env, &o, period)
		assert.Equal(t, want, land.IntrinsicRate("cropland", "wheat"), "period %d", period)
	}
	assert.Equal(t, 4.0, o.Periods[0].VariableCost)
}

func TestProfit_CalibratedVariableCostPassesForward(t *testing.T) {
	cat := model.NewCatalog()
	m := market.NewMarketplace()
	m.SetInfo("food", "usa", 0, market.InfoCalPrice, 10)
	land := NewStaticLand()
	land.UnmanagedRates["cropland"] = 8

	env := standardEnv(m, cat)
	env.Product = "food"
	env.Land = land

	o := model.NewOption("wheat", cat.Intern("land"), model.KindProfit, 3)
	o.LandType = "cropland"
	o.Periods[0].CalYield = 2
	o.Periods[2].VariableCost = 3
	o.SetCalibration(0, 50)

	Profit{}.InitCalc(env, &o, 0)
	nearlyEqual(t, "variable cost", o.Periods[0].VariableCost, 6)
	assert.Equal(t, 0.0, o.Periods[1].VariableCost, "later periods keep their own value until picked up")

	key := market.InfoKey("calVarCost", "wheat", "usa")
	v, ok := m.Info("food", "usa", 1, key)
	require.True(t, ok)
	nearlyEqual(t, "passed forward", v, 6)

	Profit{}.InitCalc(env, &o, 1)
	nearlyEqual(t, "picked up next period", o.Periods[1].VariableCost, 6)
	assert.Equal(t, 3.0, o.Periods[2].VariableCost)
	_, ok = m.Info("food", "usa", 2, key)
	assert.True(t, ok)

	// Last period: nothing to pass to.
	Profit{}.InitCalc(env, &o, 2)
	_, ok = m.Info("food", "usa", 3, key)
	assert.False(t, ok)
}

func TestProfit_LowCalibratedPriceKeepsVariableCost(t *testing.T) {
	cat := model.NewCatalog()
	m := market.NewMarketplace()
	m.SetInfo("food", "usa", 0, market.InfoCalPrice, 1)
	land := NewStaticLand()
	land.UnmanagedRates["cropland"] = 8
	rec := &diag.Memory{}

	env := standardEnv(m, cat)
	env.Product = "food"
	env.Land = land
	env.Rec = rec

	o := model.NewOption("wheat", cat.Intern("land"), model.KindProfit, 3)
	o.LandType = "cropland"
	o.Periods[0].CalYield = 2
	o.Periods[0].VariableCost = 0.5
	o.SetCalibration(0, 50)

	Profit{}.InitCalc(env, &o, 0)
	assert.Equal(t, 0.5, o.Periods[0].VariableCost)
	assert.Equal(t, 1, rec.Count(diag.Debug))
}
