package model

import (
	"errors"
	"fmt"
)

// DefaultLogitExp is the logit exponent used when none is configured.
// Negative: a lower price yields a higher share.
const DefaultLogitExp = -3

// GroupState is the per-period state of a group (subsector).
type GroupState struct {
	Share       float64
	ShareWeight float64

	LogitExp       float64 // competition between groups
	OptionLogitExp float64 // competition between the group's options

	FuelPrefElasticity float64

	// CapLimit is a ceiling on the group's sector share, in (0, 1].
	CapLimit float64
	// CapLimited is set once the capacity-limit transform has been applied in this
	// period. The transform must not be applied twice.
	CapLimited bool

	DoCalibration bool
	CalOutput     float64
	// Calibrated is true when the group or any of its options carries a calibration value.
	Calibrated bool

	FixedShare float64

	Price       float64
	FuelPrice   float64
	CO2EmFactor float64

	Output float64
	Input  float64
}

// Group is an ordered set of competing options. Options keep their definition order
// for the whole simulation.
type Group struct {
	Name    string
	Options []Option

	// ScaleYear is the year toward which share weights are interpolated after a
	// calibration period. Equal to the calibration year means "hold constant".
	ScaleYear int

	Periods []GroupState
}

// NewGroup creates a group with its per-period state preallocated to defaults.
func NewGroup(name string, periods int, scaleYear int) Group {
	g := Group{
		Name:      name,
		ScaleYear: scaleYear,
		Periods:   make([]GroupState, periods),
	}
	for i := range g.Periods {
		g.Periods[i].ShareWeight = 1
		g.Periods[i].LogitExp = DefaultLogitExp
		g.Periods[i].OptionLogitExp = DefaultLogitExp
		g.Periods[i].CapLimit = 1
	}
	return g
}

func (g *Group) Validate() error {
	if g.Name == "" {
		return errors.New("group name is required")
	}
	if len(g.Options) == 0 {
		return fmt.Errorf("group %q has no options", g.Name)
	}
	seen := map[string]bool{}
	for i := range g.Options {
		o := &g.Options[i]
		if seen[o.Name] {
			return fmt.Errorf("group %q: duplicate option %q", g.Name, o.Name)
		}
		seen[o.Name] = true
		if len(o.Periods) != len(g.Periods) {
			return fmt.Errorf("group %q option %q: %d periods, want %d", g.Name, o.Name, len(o.Periods), len(g.Periods))
		}
		if err := o.Validate(); err != nil {
			return fmt.Errorf("group %q: %w", g.Name, err)
		}
	}
	for p, st := range g.Periods {
		if st.CapLimit <= 0 || st.CapLimit > 1 {
			return fmt.Errorf("group %q period %d: CapLimit must be in (0, 1]", g.Name, p)
		}
		if st.ShareWeight < 0 {
			return fmt.Errorf("group %q period %d: ShareWeight must be >= 0", g.Name, p)
		}
	}
	return nil
}

// AddOption appends an option, keeping definition order.
func (g *Group) AddOption(o Option) {
	g.Options = append(g.Options, o)
}

// ReplaceOption replaces the option with the same name, discarding its whole time
// series but keeping its position. It reports whether a replacement happened; when
// nothing matched the option is appended.
func (g *Group) ReplaceOption(o Option) bool {
	for i := range g.Options {
		if g.Options[i].Name == o.Name {
			g.Options[i] = o
			return true
		}
	}
	g.Options = append(g.Options, o)
	return false
}

// Option returns the option with the given name.
func (g *Group) Option(name string) (*Option, bool) {
	for i := range g.Options {
		if g.Options[i].Name == name {
			return &g.Options[i], true
		}
	}
	return nil, false
}
