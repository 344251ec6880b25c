package model

import (
	"errors"
	"fmt"
)

// Sector is the set of groups competing to supply one product in one region.
type Sector struct {
	Name   string
	Region string

	Time    Modeltime
	Catalog *Catalog
	Groups  []Group

	// Demand is the sector demand per period, supplied by the caller.
	Demand []float64
	// GDPScale is the scaling variable the fuel-preference elasticity applies to
	// (a scaled per-capita economic indicator). Defaults to 1.
	GDPScale []float64
}

// NewSector creates an empty sector sized to the model horizon.
func NewSector(name, region string, mt Modeltime) *Sector {
	s := &Sector{
		Name:     name,
		Region:   region,
		Time:     mt,
		Catalog:  NewCatalog(),
		Demand:   make([]float64, mt.Periods),
		GDPScale: make([]float64, mt.Periods),
	}
	for i := range s.GDPScale {
		s.GDPScale[i] = 1
	}
	return s
}

func (s *Sector) Validate() error {
	if s == nil {
		return errors.New("sector is nil")
	}
	if s.Name == "" {
		return errors.New("sector name is required")
	}
	if err := s.Time.Validate(); err != nil {
		return fmt.Errorf("modeltime: %w", err)
	}
	if len(s.Groups) == 0 {
		return fmt.Errorf("sector %q has no groups", s.Name)
	}
	if len(s.Demand) != s.Time.Periods || len(s.GDPScale) != s.Time.Periods {
		return fmt.Errorf("sector %q: demand/gdp series must have %d periods", s.Name, s.Time.Periods)
	}
	for p, d := range s.Demand {
		if d < 0 {
			return fmt.Errorf("sector %q period %d: demand must be >= 0", s.Name, p)
		}
	}
	seen := map[string]bool{}
	for i := range s.Groups {
		g := &s.Groups[i]
		if seen[g.Name] {
			return fmt.Errorf("sector %q: duplicate group %q", s.Name, g.Name)
		}
		seen[g.Name] = true
		if len(g.Periods) != s.Time.Periods {
			return fmt.Errorf("group %q: %d periods, want %d", g.Name, len(g.Periods), s.Time.Periods)
		}
		if err := g.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// NewGroup creates a group sized to this sector's horizon, with the scale year
// defaulting to the model end year.
func (s *Sector) NewGroup(name string) Group {
	return NewGroup(name, s.Time.Periods, s.Time.EndYear())
}

// NewOption creates an option sized to this sector's horizon.
func (s *Sector) NewOption(name, input string, kind Kind) Option {
	return NewOption(name, s.Catalog.Intern(input), kind, s.Time.Periods)
}

// Group returns the group with the given name.
func (s *Sector) Group(name string) (*Group, bool) {
	for i := range s.Groups {
		if s.Groups[i].Name == name {
			return &s.Groups[i], true
		}
	}
	return nil, false
}
