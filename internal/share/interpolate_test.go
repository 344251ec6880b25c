package share

import (
	"testing"

	"marketshare/internal/diag"

	"github.com/stretchr/testify/assert"
)

func TestShareWeightLinearInterp(t *testing.T) {
	f := newFixture()
	g := f.group("coal", []string{"coal"}, []float64{10})
	g.Periods[0].ShareWeight = 1
	g.Periods[4].ShareWeight = 5

	f.calc.ShareWeightLinearInterp(g, 0, 4)

	for p, want := range []float64{1, 2, 3, 4, 5} {
		assert.InDelta(t, want, g.Periods[p].ShareWeight, 1e-12, "period %d", p)
	}
}

func TestShareWeightLinearInterp_HoldConstant(t *testing.T) {
	f := newFixture()
	g := f.group("coal", []string{"coal"}, []float64{10})
	g.Periods[0].ShareWeight = 9
	g.Periods[1].ShareWeight = 2.5

	f.calc.ShareWeightLinearInterp(g, 1, 1)

	assert.Equal(t, 9.0, g.Periods[0].ShareWeight)
	for p := 1; p < len(g.Periods); p++ {
		assert.Equal(t, 2.5, g.Periods[p].ShareWeight, "period %d", p)
	}
}

func TestShareWeightLinearInterp_Backwards(t *testing.T) {
	f := newFixture()
	g := f.group("coal", []string{"coal"}, []float64{10})
	g.Periods[3].ShareWeight = 7

	f.calc.ShareWeightLinearInterp(g, 3, 1)

	assert.Equal(t, 1, f.rec.Count(diag.Warning))
	assert.Equal(t, 1.0, g.Periods[2].ShareWeight)
}

func TestInterpolateShareWeights(t *testing.T) {
	tests := []struct {
		name      string
		active    bool
		prevCal   bool
		prevSW    float64
		scaleYear int
		want      []float64 // periods 2..4
	}{
		{"toward scale year", true, true, 3, 2020, []float64{3 - 2.0/3.0, 3 - 4.0/3.0, 1}},
		{"zero starting weight", true, true, 0, 2020, []float64{1.0 / 3.0, 2.0 / 3.0, 1}},
		{"scale year is the calibration year", true, true, 3, 2005, []float64{3, 3, 3}},
		{"scale year before the horizon", true, true, 3, 1990, []float64{1, 1, 1}},
		{"previous period not calibrated", true, false, 3, 2020, []float64{1, 1, 1}},
		{"calibration inactive", false, true, 3, 2020, []float64{1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.calc.CalibrationActive = tt.active
			f.calc.InterpolateAfterYear = 2000
			g := f.group("coal", []string{"coal"}, []float64{10})
			g.ScaleYear = tt.scaleYear
			g.Periods[1].Calibrated = tt.prevCal
			g.Periods[1].ShareWeight = tt.prevSW

			f.calc.InterpolateShareWeights(g, 2)

			assert.Equal(t, tt.prevSW, g.Periods[1].ShareWeight, "previous period untouched")
			for i, want := range tt.want {
				assert.InDelta(t, want, g.Periods[2+i].ShareWeight, 1e-12, "period %d", 2+i)
			}
		})
	}
}

func TestInterpolateShareWeights_BeforeInterpolationYear(t *testing.T) {
	f := newFixture()
	f.calc.CalibrationActive = true
	f.calc.InterpolateAfterYear = 2010
	g := f.group("coal", []string{"coal"}, []float64{10})
	g.Periods[1].Calibrated = true
	g.Periods[1].ShareWeight = 3

	f.calc.InterpolateShareWeights(g, 2)

	assert.Equal(t, 1.0, g.Periods[2].ShareWeight)
}

func TestOptionShareWeightLinearInterp(t *testing.T) {
	f := newFixture()
	f.calc.CalibrationActive = true
	f.calc.InterpolateOptionWeights = true
	g := f.group("fossil", []string{"coal", "gas"}, []float64{10, 20})
	g.Periods[1].Calibrated = true
	g.Options[0].Periods[1].ShareWeight = 2
	g.Options[1].Periods[1].ShareWeight = 6

	f.calc.InterpolateShareWeights(g, 2)

	coal, gas := g.Options[0].Periods, g.Options[1].Periods
	assert.Equal(t, 2.0, coal[1].ShareWeight, "begin untouched")
	assert.InDelta(t, 0.5+0.5/3, coal[2].ShareWeight, 1e-12)
	assert.InDelta(t, 1.5-0.5/3, gas[2].ShareWeight, 1e-12)
	assert.InDelta(t, 1.5-1.0/3, gas[3].ShareWeight, 1e-12)
	assert.Equal(t, 1.0, gas[4].ShareWeight)
}

func TestNormalizeOptionShareWeights(t *testing.T) {
	f := newFixture()
	g := f.group("fossil", []string{"coal", "gas", "oil"}, []float64{10, 20, 30})
	g.Options[0].Periods[0].ShareWeight = 2
	g.Options[1].Periods[0].ShareWeight = 6
	g.Options[2].Periods[0].ShareWeight = 0

	f.calc.NormalizeOptionShareWeights(g, 0)

	assert.Equal(t, 0.5, g.Options[0].Periods[0].ShareWeight)
	assert.Equal(t, 1.5, g.Options[1].Periods[0].ShareWeight)
	assert.Equal(t, 0.0, g.Options[2].Periods[0].ShareWeight)

	for i := range g.Options {
		g.Options[i].Periods[1].ShareWeight = 0
	}
	f.calc.NormalizeOptionShareWeights(g, 1)
	assert.Equal(t, 1, f.rec.Count(diag.Error))
}
