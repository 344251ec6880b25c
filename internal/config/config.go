package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"marketshare/internal/choice"
	"marketshare/internal/data"
	"marketshare/internal/diag"
	"marketshare/internal/market"
	"marketshare/internal/model"
	"marketshare/internal/sector"
	"marketshare/internal/share"

	"gopkg.in/yaml.v3"
)

// Scenario is the on-disk scenario shape (YAML).
//
// Per-period values are keyed by year. A scalar field sets every period; the
// matching *_by_year map overrides single periods.
type Scenario struct {
	Name   string `yaml:"name"`
	Sector string `yaml:"sector"`
	Region string `yaml:"region"`

	Modeltime ModeltimeConfig `yaml:"modeltime"`

	// Optional: load prices from a JSON price table. Inline Prices override it.
	PricesFile string               `yaml:"prices_file"`
	Prices     map[string][]float64 `yaml:"prices"`
	CO2        map[string]float64   `yaml:"co2"`
	// CalPrices are calibrated prices of the sector's product, by year.
	CalPrices map[int]float64 `yaml:"cal_prices"`

	Demand   []float64 `yaml:"demand"`
	GDPScale []float64 `yaml:"gdp_scale"`

	Calibration CalibrationConfig `yaml:"calibration"`
	Land        []LandConfig      `yaml:"land"`
	Groups      []GroupConfig     `yaml:"groups"`
}

type ModeltimeConfig struct {
	StartYear int `yaml:"start_year"`
	TimeStep  int `yaml:"time_step"`
	Periods   int `yaml:"periods"`
}

type CalibrationConfig struct {
	Active                   bool    `yaml:"active"`
	InterpolateAfterYear     int     `yaml:"interpolate_after_year"`
	InterpolateOptionWeights bool    `yaml:"interpolate_option_weights"`
	MaxIterations            int     `yaml:"max_iterations"`
	Tolerance                float64 `yaml:"tolerance"`
}

type LandConfig struct {
	Type          string  `yaml:"type"`
	Product       string  `yaml:"product"`
	Allocation    float64 `yaml:"allocation"`
	Yield         float64 `yaml:"yield"`
	UnmanagedRate float64 `yaml:"unmanaged_rate"`
}

type GroupConfig struct {
	Name      string `yaml:"name"`
	ScaleYear int    `yaml:"scale_year"`

	ShareWeight        *float64        `yaml:"share_weight"`
	ShareWeightByYear  map[int]float64 `yaml:"share_weight_by_year"`
	LogitExp           *float64        `yaml:"logit_exp"`
	OptionLogitExp     *float64        `yaml:"option_logit_exp"`
	FuelPrefElasticity float64         `yaml:"fuel_pref_elasticity"`
	CapLimitByYear     map[int]float64 `yaml:"cap_limit_by_year"`
	CalibrationByYear  map[int]float64 `yaml:"calibration_by_year"`

	Options []OptionConfig `yaml:"options"`
}

type OptionConfig struct {
	Name  string `yaml:"name"`
	Input string `yaml:"input"`
	Kind  string `yaml:"kind"`
	// Replace discards an earlier definition with the same name, keeping its position.
	Replace bool `yaml:"replace"`

	ShareWeight       *float64        `yaml:"share_weight"`
	ShareWeightByYear map[int]float64 `yaml:"share_weight_by_year"`
	Efficiency        *float64        `yaml:"efficiency"`
	EfficiencyByYear  map[int]float64 `yaml:"efficiency_by_year"`
	NonEnergyCost     float64         `yaml:"non_energy_cost"`
	FixedOutputByYear map[int]float64 `yaml:"fixed_output_by_year"`
	CalibrationByYear map[int]float64 `yaml:"calibration_by_year"`

	// Profit based options.
	LandType           string          `yaml:"land_type"`
	VariableCost       float64         `yaml:"variable_cost"`
	VariableCostByYear map[int]float64 `yaml:"variable_cost_by_year"`
	CalYield           float64         `yaml:"cal_yield"`
	CalYieldByYear     map[int]float64 `yaml:"cal_yield_by_year"`
}

func Load(path string) (*Scenario, error) {
	s, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadUnchecked loads a scenario and its price table, but does not validate it.
// Useful for debugging/printing partial scenarios.
func LoadUnchecked(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(raw, filepath.Dir(path))
}

// ErrPricesFileOutside is returned by ParseIn for a prices_file that is not a
// local path inside the scenario directory.
var ErrPricesFileOutside = errors.New("prices_file must be a relative path inside the scenario directory")

// Parse decodes a scenario. A relative prices_file is looked up in baseDir first,
// then in the working directory.
func Parse(raw []byte, baseDir string) (*Scenario, error) {
	return parse(raw, func(name string) (*data.PriceTable, error) {
		pricesPath := name
		if !filepath.IsAbs(pricesPath) && baseDir != "" {
			cand := filepath.Join(baseDir, pricesPath)
			if _, err := os.Stat(cand); err == nil {
				pricesPath = cand
			}
		}
		return data.LoadPriceTable(pricesPath)
	})
}

// ParseIn decodes an untrusted scenario. Its prices_file may only name a file
// under dir; absolute paths, parent references and symlinks leaving dir fail.
func ParseIn(raw []byte, dir string) (*Scenario, error) {
	return parse(raw, func(name string) (*data.PriceTable, error) {
		if !filepath.IsLocal(name) {
			return nil, ErrPricesFileOutside
		}
		root, err := os.OpenRoot(dir)
		if err != nil {
			return nil, err
		}
		defer root.Close()
		f, err := root.Open(name)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%s not found", name)
			}
			return nil, ErrPricesFileOutside
		}
		defer f.Close()
		return data.DecodePriceTable(f, name)
	})
}

func parse(raw []byte, load func(name string) (*data.PriceTable, error)) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	if s.PricesFile == "" {
		return &s, nil
	}
	table, err := load(s.PricesFile)
	if err != nil {
		return nil, fmt.Errorf("prices_file: %w", err)
	}
	s.mergePrices(table)
	return &s, nil
}

// mergePrices fills prices and CO2 coefficients the scenario does not set itself.
// A series for the scenario's region beats a region-less one.
func (s *Scenario) mergePrices(t *data.PriceTable) {
	if s.Prices == nil {
		s.Prices = map[string][]float64{}
	}
	if s.CO2 == nil {
		s.CO2 = map[string]float64{}
	}
	for good, series := range t.GroupByGood() {
		if _, inline := s.Prices[good]; inline {
			continue
		}
		for _, ps := range series {
			switch ps.Region {
			case s.Region:
				s.Prices[good] = ps.Prices
			case "":
				if _, ok := s.Prices[good]; !ok {
					s.Prices[good] = ps.Prices
				}
			}
		}
	}
	for good, coef := range t.CO2 {
		if _, ok := s.CO2[good]; !ok {
			s.CO2[good] = coef
		}
	}
}

func (s *Scenario) Validate() error {
	if s == nil {
		return errors.New("scenario is nil")
	}
	if s.Sector == "" {
		return errors.New("sector is required")
	}
	mt := s.Modeltime.model()
	if err := mt.Validate(); err != nil {
		return fmt.Errorf("modeltime: %w", err)
	}
	if len(s.Demand) != mt.Periods {
		return fmt.Errorf("demand: %d values, want %d", len(s.Demand), mt.Periods)
	}
	if len(s.GDPScale) != 0 && len(s.GDPScale) != mt.Periods {
		return fmt.Errorf("gdp_scale: %d values, want %d", len(s.GDPScale), mt.Periods)
	}
	for good, prices := range s.Prices {
		if len(prices) != mt.Periods {
			return fmt.Errorf("prices.%s: %d values, want %d", good, len(prices), mt.Periods)
		}
	}
	if err := checkYears("cal_prices", s.CalPrices, mt); err != nil {
		return err
	}
	for i, l := range s.Land {
		if l.Type == "" || l.Product == "" {
			return fmt.Errorf("land[%d]: type and product are required", i)
		}
	}
	if s.Calibration.Tolerance < 0 || s.Calibration.MaxIterations < 0 {
		return errors.New("calibration: tolerance and max_iterations must be >= 0")
	}
	if len(s.Groups) == 0 {
		return errors.New("at least one group is required")
	}
	for _, g := range s.Groups {
		if err := g.validate(mt); err != nil {
			return err
		}
	}
	// Structural checks on the assembled sector catch duplicates and bad ranges.
	a, err := s.assemble()
	if err != nil {
		return err
	}
	return a.Sector.Validate()
}

func (g GroupConfig) validate(mt model.Modeltime) error {
	if g.Name == "" {
		return errors.New("group name is required")
	}
	for name, m := range map[string]map[int]float64{
		"share_weight_by_year": g.ShareWeightByYear,
		"cap_limit_by_year":    g.CapLimitByYear,
		"calibration_by_year":  g.CalibrationByYear,
	} {
		if err := checkYears(name, m, mt); err != nil {
			return fmt.Errorf("group %q: %w", g.Name, err)
		}
	}
	if len(g.Options) == 0 {
		return fmt.Errorf("group %q has no options", g.Name)
	}
	for _, o := range g.Options {
		if o.Input == "" && o.Kind != string(model.KindProfit) {
			return fmt.Errorf("group %q option %q: input is required", g.Name, o.Name)
		}
		for name, m := range map[string]map[int]float64{
			"share_weight_by_year":  o.ShareWeightByYear,
			"efficiency_by_year":    o.EfficiencyByYear,
			"fixed_output_by_year":  o.FixedOutputByYear,
			"calibration_by_year":   o.CalibrationByYear,
			"variable_cost_by_year": o.VariableCostByYear,
			"cal_yield_by_year":     o.CalYieldByYear,
		} {
			if err := checkYears(name, m, mt); err != nil {
				return fmt.Errorf("group %q option %q: %w", g.Name, o.Name, err)
			}
		}
	}
	return nil
}

// checkYears rejects years that are not period years of the horizon.
func checkYears(field string, byYear map[int]float64, mt model.Modeltime) error {
	for year := range byYear {
		if year < mt.StartYear || year > mt.EndYear() || mt.PeriodToYear(mt.YearToPeriod(year)) != year {
			return fmt.Errorf("%s: %d is not a model period year", field, year)
		}
	}
	return nil
}

func (m ModeltimeConfig) model() model.Modeltime {
	return model.Modeltime{StartYear: m.StartYear, TimeStep: m.TimeStep, Periods: m.Periods}
}

// Assembly is a scenario turned into live objects.
type Assembly struct {
	Sector *model.Sector
	Market *market.Marketplace
	Land   *choice.StaticLand
}

// Build validates the scenario and constructs its sector, market and land.
func (s *Scenario) Build() (*Assembly, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s.assemble()
}

func (s *Scenario) assemble() (*Assembly, error) {
	mt := s.Modeltime.model()
	sec := model.NewSector(s.Sector, s.Region, mt)
	copy(sec.Demand, s.Demand)
	if len(s.GDPScale) == mt.Periods {
		copy(sec.GDPScale, s.GDPScale)
	}

	m := market.NewMarketplace()
	for good, prices := range s.Prices {
		m.SetPriceSeries(good, s.Region, prices)
	}
	for good, coef := range s.CO2 {
		m.SetCO2Coefficient(good, coef)
	}
	for year, price := range s.CalPrices {
		m.SetInfo(s.Sector, s.Region, mt.YearToPeriod(year), market.InfoCalPrice, price)
	}

	land := choice.NewStaticLand()
	for _, l := range s.Land {
		land.Set(l.Type, l.Product, l.Allocation, l.Yield)
		if l.UnmanagedRate != 0 {
			land.UnmanagedRates[l.Type] = l.UnmanagedRate
		}
	}

	for _, gc := range s.Groups {
		g := sec.NewGroup(gc.Name)
		if gc.ScaleYear != 0 {
			g.ScaleYear = gc.ScaleYear
		}
		for p := range g.Periods {
			st := &g.Periods[p]
			if gc.ShareWeight != nil {
				st.ShareWeight = *gc.ShareWeight
			}
			if gc.LogitExp != nil {
				st.LogitExp = *gc.LogitExp
			}
			if gc.OptionLogitExp != nil {
				st.OptionLogitExp = *gc.OptionLogitExp
			}
			st.FuelPrefElasticity = gc.FuelPrefElasticity
		}
		for year, v := range gc.ShareWeightByYear {
			g.Periods[mt.YearToPeriod(year)].ShareWeight = v
		}
		for year, v := range gc.CapLimitByYear {
			g.Periods[mt.YearToPeriod(year)].CapLimit = v
		}
		for year, v := range gc.CalibrationByYear {
			st := &g.Periods[mt.YearToPeriod(year)]
			st.DoCalibration = true
			st.CalOutput = v
		}

		for _, oc := range gc.Options {
			input := oc.Input
			if input == "" {
				// Land products consume the land they grow on.
				input = oc.LandType
			}
			o := sec.NewOption(oc.Name, input, model.Kind(oc.Kind))
			o.LandType = oc.LandType
			for p := range o.Periods {
				st := &o.Periods[p]
				if oc.ShareWeight != nil {
					st.ShareWeight = *oc.ShareWeight
				}
				if oc.Efficiency != nil {
					st.Efficiency = *oc.Efficiency
				}
				st.NonEnergyCost = oc.NonEnergyCost
				st.VariableCost = oc.VariableCost
				st.CalYield = oc.CalYield
			}
			for year, v := range oc.ShareWeightByYear {
				o.Periods[mt.YearToPeriod(year)].ShareWeight = v
			}
			for year, v := range oc.EfficiencyByYear {
				o.Periods[mt.YearToPeriod(year)].Efficiency = v
			}
			for year, v := range oc.VariableCostByYear {
				o.Periods[mt.YearToPeriod(year)].VariableCost = v
			}
			for year, v := range oc.CalYieldByYear {
				o.Periods[mt.YearToPeriod(year)].CalYield = v
			}
			for year, v := range oc.FixedOutputByYear {
				o.SetFixedOutput(mt.YearToPeriod(year), v)
			}
			for year, v := range oc.CalibrationByYear {
				o.SetCalibration(mt.YearToPeriod(year), v)
			}

			if oc.Replace {
				if !g.ReplaceOption(o) {
					return nil, fmt.Errorf("group %q: option %q replaces nothing", gc.Name, oc.Name)
				}
				continue
			}
			g.AddOption(o)
		}
		sec.Groups = append(sec.Groups, g)
	}

	return &Assembly{Sector: sec, Market: m, Land: land}, nil
}

// Driver wires the assembly to a share calculator configured by the scenario.
func (s *Scenario) Driver(a *Assembly, rec diag.Recorder) *sector.Driver {
	calc := &share.Calculator{
		Env: choice.Env{
			Region:  a.Sector.Region,
			Product: a.Sector.Name,
			Time:    a.Sector.Time,
			Catalog: a.Sector.Catalog,
			Market:  a.Market,
			Info:    a.Market,
			Land:    a.Land,
			Rec:     rec,
		},
		CalibrationActive:        s.Calibration.Active,
		InterpolateAfterYear:     s.Calibration.InterpolateAfterYear,
		InterpolateOptionWeights: s.Calibration.InterpolateOptionWeights,
	}
	return sector.New(a.Sector, calc)
}
