package model

import "errors"

// Modeltime describes the simulation horizon.
// Period p covers the year StartYear + p*TimeStep.
type Modeltime struct {
	StartYear int
	TimeStep  int
	Periods   int
}

func (m Modeltime) Validate() error {
	if m.Periods <= 0 {
		return errors.New("Periods must be > 0")
	}
	if m.TimeStep <= 0 {
		return errors.New("TimeStep must be > 0")
	}
	return nil
}

func (m Modeltime) PeriodToYear(period int) int {
	return m.StartYear + period*m.TimeStep
}

// EndYear is the year of the last period.
func (m Modeltime) EndYear() int {
	return m.PeriodToYear(m.Periods - 1)
}

// YearToPeriod maps a year onto the period containing it, clamped to the horizon.
func (m Modeltime) YearToPeriod(year int) int {
	if year <= m.StartYear || m.TimeStep <= 0 {
		return 0
	}
	p := (year - m.StartYear) / m.TimeStep
	if p > m.Periods-1 {
		p = m.Periods - 1
	}
	return p
}
