package simulation

import (
	"context"
	"errors"
	"fmt"

	"marketshare/internal/diag"
	"marketshare/internal/sector"
)

const (
	DefaultMaxIterations = 50
	DefaultTolerance     = 1e-6
)

// Engine runs a sector through every period of its horizon.
type Engine struct {
	// MaxIterations bounds the share/calibration passes per period.
	MaxIterations int
	// Tolerance is the relative calibration miss at which a period is accepted.
	Tolerance float64
}

func New(maxIterations int, tolerance float64) *Engine {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Engine{MaxIterations: maxIterations, Tolerance: tolerance}
}

// Run executes the period loop and returns one ledger row per group and option
// for every period.
func (e *Engine) Run(ctx context.Context, d *sector.Driver) (*Result, error) {
	if d == nil || d.Sector == nil || d.Calc == nil {
		return nil, errors.New("sector driver is incomplete")
	}
	if err := d.Sector.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sector: %w", err)
	}
	rec := diag.OrNop(d.Calc.Env.Rec)
	s := d.Sector

	res := &Result{
		Sector: s.Name,
		Region: s.Region,
	}
	for period := 0; period < s.Time.Periods; period++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("period %d: %w", period, err)
		}

		d.InitCalc(period)
		d.CalcShares(period)

		iterations, miss := 0, 0.0
		if d.Calc.CalibrationActive && calibrated(d, period) {
			for iterations < e.MaxIterations {
				miss = d.Calibrate(period)
				d.CalcShares(period)
				iterations++
				if miss <= e.Tolerance {
					break
				}
			}
			if miss > e.Tolerance {
				rec.Record(diag.Warning, "calibration did not converge", "sector", s.Name,
					"region", s.Region, "period", period, "iterations", iterations, "miss", miss)
			}
			d.SetImpliedInputs(period)
		}

		output := d.SetOutput(period)
		res.Periods = append(res.Periods, PeriodSummary{
			Period:           period,
			Year:             s.Time.PeriodToYear(period),
			Demand:           s.Demand[period],
			Output:           output,
			Price:            d.Price(period),
			FuelPrice:        d.FuelPrice(period),
			Iterations:       iterations,
			CalibrationMiss:  miss,
			CalibratedInputs: d.CalibratedInputs(period),
		})
		res.Ledger = append(res.Ledger, ledgerRows(d, period)...)
	}
	return res, nil
}

func calibrated(d *sector.Driver, period int) bool {
	for i := range d.Sector.Groups {
		if d.Sector.Groups[i].Periods[period].Calibrated {
			return true
		}
	}
	return false
}

func ledgerRows(d *sector.Driver, period int) []LedgerRow {
	s := d.Sector
	year := s.Time.PeriodToYear(period)
	var rows []LedgerRow
	for i := range s.Groups {
		g := &s.Groups[i]
		gs := g.Periods[period]
		rows = append(rows, LedgerRow{
			Period:      period,
			Year:        year,
			Group:       g.Name,
			Share:       gs.Share,
			SectorShare: gs.Share,
			ShareWeight: gs.ShareWeight,
			Price:       gs.Price,
			FuelPrice:   gs.FuelPrice,
			Output:      gs.Output,
			Input:       gs.Input,
			Fixed:       d.Calc.FixedOutput(g, period) > 0,
			Calibrated:  gs.Calibrated,
			CapLimited:  gs.CapLimited,
		})
		for j := range g.Options {
			o := &g.Options[j]
			st := o.Periods[period]
			rows = append(rows, LedgerRow{
				Period:      period,
				Year:        year,
				Group:       g.Name,
				Option:      o.Name,
				Good:        s.Catalog.Name(o.Input),
				Share:       st.Share,
				SectorShare: st.Share * gs.Share,
				ShareWeight: st.ShareWeight,
				Price:       st.Cost,
				FuelPrice:   st.FuelCost,
				Output:      st.Output,
				Input:       st.Input,
				Fixed:       st.Fixed,
				Calibrated:  st.Calibrated,
			})
		}
	}
	return rows
}
