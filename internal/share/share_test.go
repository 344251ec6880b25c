package share

import (
	"math/rand"
	"testing"

	"marketshare/internal/choice"
	"marketshare/internal/diag"
	"marketshare/internal/market"
	"marketshare/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	cat  *model.Catalog
	m    *market.Marketplace
	rec  *diag.Memory
	calc *Calculator
	mt   model.Modeltime
}

func newFixture() *fixture {
	cat := model.NewCatalog()
	m := market.NewMarketplace()
	rec := &diag.Memory{}
	mt := model.Modeltime{StartYear: 2000, TimeStep: 5, Periods: 5}
	return &fixture{
		cat: cat,
		m:   m,
		rec: rec,
		mt:  mt,
		calc: &Calculator{
			Env: choice.Env{
				Region:  "usa",
				Product: "electricity",
				Time:    mt,
				Catalog: cat,
				Market:  m,
				Info:    m,
				Rec:     rec,
			},
		},
	}
}

// group builds a group whose options each burn their own fuel, priced at the
// given cost in every period.
func (f *fixture) group(name string, names []string, costs []float64) *model.Group {
	g := model.NewGroup(name, f.mt.Periods, f.mt.EndYear())
	for i, n := range names {
		for p := 0; p < f.mt.Periods; p++ {
			f.m.SetPrice(n, "usa", p, costs[i])
		}
		g.AddOption(model.NewOption(n, f.cat.Intern(n), model.KindStandard, f.mt.Periods))
	}
	return &g
}

func optionShareSum(g *model.Group, period int) float64 {
	sum := 0.0
	for i := range g.Options {
		sum += g.Options[i].Periods[period].Share
	}
	return sum
}

func TestCapLimitTransform_Properties(t *testing.T) {
	for _, c := range []float64{0.3, 0.5, 0.8, 0.95} {
		prev := 0.0
		for i := 0; i <= 100; i++ {
			r := float64(i) / 100
			got := CapLimitTransform(r, c)
			assert.Less(t, got, c, "capLimit %v rawShare %v", c, r)
			assert.GreaterOrEqual(t, got+1e-15, prev, "monotonic: capLimit %v rawShare %v", c, r)
			prev = got
		}
	}
}

func TestCapLimitTransform_AtTheLimit(t *testing.T) {
	got := CapLimitTransform(0.5, 0.5)
	assert.Less(t, got, 0.5)
	assert.Greater(t, got, 0.4)
}

func TestCapLimitTransform_Limits(t *testing.T) {
	assert.Equal(t, 0.7, CapLimitTransform(0.7, 1))
	assert.Equal(t, 0.7, CapLimitTransform(0.7, 1-1e-7), "within epsilon of 1 is unlimited")
	assert.Equal(t, 0.0, CapLimitTransform(0, 0.5))
	assert.InEpsilon(t, 0.01, CapLimitTransform(0.01, 0.5), 0.05, "small shares barely move")

	got := CapLimitTransform(1, 0.5)
	assert.Less(t, got, 0.5)
	assert.InDelta(t, 0.5, got, 1e-3)

	prev := 0.0
	for raw := 0.05; raw <= 1; raw += 0.05 {
		got := CapLimitTransform(raw, 0.5)
		assert.Less(t, got, 0.5, "raw %g", raw)
		assert.Greater(t, got, prev, "raw %g", raw)
		prev = got
	}

	// Far past the limit the result rounds to it and never exceeds it.
	assert.LessOrEqual(t, CapLimitTransform(1, 0.05), 0.05)
}

func TestCalcOptionShares_CheaperOptionWins(t *testing.T) {
	f := newFixture()
	g := f.group("fossil", []string{"coal", "gas"}, []float64{10, 20})

	f.calc.CalcOptionShares(g, 0)

	require.Len(t, g.Options, 2)
	s1, s2 := g.Options[0].Periods[0].Share, g.Options[1].Periods[0].Share
	assert.Greater(t, s1, s2)
	assert.InDelta(t, 1, s1+s2, 1e-12)
	assert.InDelta(t, 8.0/9.0, s1, 1e-12)
	assert.Equal(t, 10.0, g.Options[0].Periods[0].Cost)
}

func TestCalcOptionShares_Normalized(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		f := newFixture()
		n := 1 + rng.Intn(6)
		names := make([]string, n)
		costs := make([]float64, n)
		for i := range names {
			names[i] = string(rune('a' + i))
			costs[i] = 0.5 + rng.Float64()*50
		}
		g := f.group("g", names, costs)
		for i := range g.Options {
			g.Options[i].Periods[0].ShareWeight = rng.Float64() * 3
		}
		g.Periods[0].OptionLogitExp = -1 - rng.Float64()*5

		f.calc.CalcOptionShares(g, 0)
		assert.InDelta(t, 1, optionShareSum(g, 0), 1e-12)
	}
}

func TestCalcOptionShares_AllUnavailable(t *testing.T) {
	f := newFixture()
	g := f.group("fossil", []string{"coal", "gas"}, []float64{10, 20})
	for i := range g.Options {
		g.Options[i].Periods[0].ShareWeight = 0
	}

	f.calc.CalcOptionShares(g, 0)
	f.calc.CalcPrice(g, 0)

	for i := range g.Options {
		assert.Equal(t, 0.0, g.Options[i].Periods[0].Share)
	}
	assert.Equal(t, 0.0, g.Periods[0].Price)
}

func TestCalcOptionShares_ZeroExponentWarns(t *testing.T) {
	f := newFixture()
	g := f.group("fossil", []string{"coal", "gas"}, []float64{10, 20})
	g.Periods[0].OptionLogitExp = 0

	f.calc.CalcOptionShares(g, 0)

	assert.Equal(t, 1, f.rec.Count(diag.Warning))
	assert.InDelta(t, 0.5, g.Options[0].Periods[0].Share, 1e-12)
}

func TestCalcShare_Idempotent(t *testing.T) {
	f := newFixture()
	g := f.group("fossil", []string{"coal", "gas"}, []float64{10, 20})
	g.Periods[0].FuelPrefElasticity = 0.5

	f.calc.CalcShare(g, 0, 1.3, 2)
	first := g.Periods[0]
	firstOptions := []model.OptionState{g.Options[0].Periods[0], g.Options[1].Periods[0]}

	f.calc.CalcShare(g, 0, 1.3, 2)
	assert.Equal(t, first, g.Periods[0])
	assert.Equal(t, firstOptions, []model.OptionState{g.Options[0].Periods[0], g.Options[1].Periods[0]})
}

func TestCalcShare_PriceAndGroupShare(t *testing.T) {
	f := newFixture()
	f.m.SetCO2Coefficient("coal", 25)
	g := f.group("fossil", []string{"coal", "gas"}, []float64{10, 20})
	g.Periods[0].ShareWeight = 2

	f.calc.CalcShare(g, 0, 1, 1)

	gs := g.Periods[0]
	wantPrice := 10*8.0/9.0 + 20*1.0/9.0
	assert.InDelta(t, wantPrice, gs.Price, 1e-12)
	assert.InDelta(t, wantPrice, gs.FuelPrice, 1e-12, "no non-energy cost")
	assert.InDelta(t, 25*8.0/9.0, gs.CO2EmFactor, 1e-12)
	assert.InDelta(t, 2/(wantPrice*wantPrice*wantPrice), gs.Share, 1e-15)
}

func TestCalcShare_ZeroPrice(t *testing.T) {
	f := newFixture()
	g := f.group("hydro", []string{"water"}, []float64{0})

	f.calc.CalcShare(g, 0, 1, 2)

	assert.Equal(t, 0.0, g.Periods[0].Share)
	assert.Zero(t, f.rec.Count(diag.Warning))
}

func TestCalcShare_Diagnostics(t *testing.T) {
	f := newFixture()
	g := f.group("fossil", []string{"coal"}, []float64{10})
	g.Periods[0].LogitExp = 0
	g.Periods[0].ShareWeight = 2e4

	f.calc.CalcShare(g, 0, 1, 3)

	assert.Equal(t, 1, f.rec.Count(diag.Error), "zero exponent with competing groups")
	assert.Equal(t, 2, f.rec.Count(diag.Warning), "huge share weight on top of the error")
	assert.Equal(t, 2e4, g.Periods[0].Share, "calculation proceeds")
}

func TestNormShare(t *testing.T) {
	f := newFixture()
	g := f.group("g", []string{"coal"}, []float64{10})
	g.Periods[0].Share = 3

	f.calc.NormShare(g, 4, 0)
	assert.Equal(t, 0.75, g.Periods[0].Share)

	f.calc.NormShare(g, 0, 0)
	assert.Equal(t, 0.0, g.Periods[0].Share)
}

func TestSetShare_AboveOneIsKept(t *testing.T) {
	f := newFixture()
	g := f.group("g", []string{"coal"}, []float64{10})

	f.calc.SetShare(g, 1+1e-12, 0)
	assert.Zero(t, f.rec.Count(diag.Error))

	f.calc.SetShare(g, 1.2, 0)
	assert.Equal(t, 1, f.rec.Count(diag.Error))
	assert.Equal(t, 1.2, g.Periods[0].Share)
}

func TestLimitShares_TransformsOncePerPeriod(t *testing.T) {
	f := newFixture()
	g := f.group("wind", []string{"wind"}, []float64{10})
	g.Periods[0].CapLimit = 0.5
	g.Periods[0].Share = 0.5

	f.calc.LimitShares(g, 1, 0)
	once := g.Periods[0].Share
	assert.True(t, g.Periods[0].CapLimited)
	assert.Equal(t, CapLimitTransform(0.5, 0.5), once)

	f.calc.LimitShares(g, 1.5, 0)
	assert.Equal(t, once, g.Periods[0].Share, "limited group is not transformed or scaled again")
}

func TestLimitShares_ScalesFreeGroups(t *testing.T) {
	f := newFixture()
	free := f.group("free", []string{"coal"}, []float64{10})
	free.Periods[0].Share = 0.4
	fixed := f.group("fixed", []string{"nuke"}, []float64{10})
	fixed.Periods[0].Share = 0.3
	fixed.Periods[0].FixedShare = 0.3

	f.calc.LimitShares(free, 1.5, 0)
	f.calc.LimitShares(fixed, 1.5, 0)
	assert.InDelta(t, 0.6, free.Periods[0].Share, 1e-12)
	assert.Equal(t, 0.3, fixed.Periods[0].Share)
	assert.False(t, free.Periods[0].CapLimited)

	f.calc.LimitShares(free, 0, 0)
	assert.Equal(t, 0.0, free.Periods[0].Share)
}

func TestScaleShareWeight(t *testing.T) {
	f := newFixture()
	g := f.group("g", []string{"coal"}, []float64{10})
	f.calc.ScaleShareWeight(g, 3, 0)
	f.calc.ScaleShareWeight(g, 0, 0)
	assert.Equal(t, 3.0, g.Periods[0].ShareWeight)
}

func TestWeightedFuelPrice(t *testing.T) {
	f := newFixture()
	g := f.group("g", []string{"coal"}, []float64{10})
	g.Periods[0].Share = 0.5
	g.Periods[0].FuelPrice = 4
	g.Periods[1].Share = 0.25
	g.Periods[1].FuelPrice = 8

	assert.Equal(t, 2.0, f.calc.WeightedFuelPrice(g, 0))
	assert.Equal(t, 4.0, f.calc.WeightedFuelPrice(g, 1), "lagged share")
}

func TestSetOutput(t *testing.T) {
	f := newFixture()
	g := f.group("fossil", []string{"coal", "gas"}, []float64{10, 20})
	g.Options[1].Periods[0].Efficiency = 0.5
	g.Options[0].Periods[0].Share = 0.75
	g.Options[1].Periods[0].Share = 0.25
	g.Periods[0].Share = 0.4

	f.calc.SetOutput(g, 100, 0)

	assert.InDelta(t, 30, g.Options[0].Periods[0].Output, 1e-12)
	assert.InDelta(t, 10, g.Options[1].Periods[0].Output, 1e-12)
	assert.InDelta(t, 20, g.Options[1].Periods[0].Input, 1e-12)
	assert.InDelta(t, 40, g.Periods[0].Output, 1e-12)
	assert.InDelta(t, 50, g.Periods[0].Input, 1e-12)
}

func TestInitCalc(t *testing.T) {
	f := newFixture()
	g := f.group("fossil", []string{"coal", "gas"}, []float64{10, 20})
	g.Options[0].SetFixedOutput(0, 40)
	g.Options[0].Periods[0].FixedOutput = 12
	g.Periods[0].FixedShare = 0.7

	f.calc.InitCalc(g, 0)

	assert.Equal(t, 40.0, g.Options[0].Periods[0].FixedOutput, "reset to read-in value")
	assert.Equal(t, 0.1, g.Periods[0].FixedShare)
	assert.False(t, g.Periods[0].Calibrated)

	g.Options[1].SetCalibration(1, 20)
	g.Periods[1].CapLimit = 0.3
	f.calc.InitCalc(g, 1)

	assert.True(t, g.Periods[1].Calibrated)
	assert.Equal(t, 1.0, g.Periods[1].CapLimit)
	assert.Equal(t, 0.0, g.Periods[1].FixedShare)
	assert.Equal(t, 1, f.rec.Count(diag.Warning))
}
