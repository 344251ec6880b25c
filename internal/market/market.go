// Package market is the price side of the share calculation: the prices the outer
// solver has settled on for a trial iteration, plus scalar market information that
// is passed between periods.
package market

import "fmt"

// Oracle supplies prices. Market clearing happens elsewhere; the share core only reads.
type Oracle interface {
	Price(good, region string, period int) float64
	// CO2Coefficient is the primary fuel emissions coefficient of a good, used only
	// for share-weighted reporting averages.
	CO2Coefficient(region, good string) float64
}

// InfoStore holds named scalars per market and period.
type InfoStore interface {
	Info(good, region string, period int, name string) (float64, bool)
	SetInfo(good, region string, period int, name string, value float64)
}

// Names of market info values used by the share core.
const (
	InfoCalPrice  = "calPrice"
	InfoCalDemand = "calDemand"
)

// InfoKey synthesizes the key under which a per-option quantity is stored, for
// example the calibrated variable cost handed from one period to the next:
// InfoKey("calVarCost", "wheat", "usa") == "calVarCost-wheat-usa".
func InfoKey(quantity, option, region string) string {
	return fmt.Sprintf("%s-%s-%s", quantity, option, region)
}

type priceKey struct {
	good   string
	region string
	period int
}

type infoKey struct {
	priceKey
	name string
}

// Marketplace is an in-memory Oracle and InfoStore.
// Access is single threaded, like the share core it serves.
type Marketplace struct {
	prices map[priceKey]float64
	info   map[infoKey]float64
	co2    map[string]float64
}

func NewMarketplace() *Marketplace {
	return &Marketplace{
		prices: map[priceKey]float64{},
		info:   map[infoKey]float64{},
		co2:    map[string]float64{},
	}
}

// SetPrice records the price of good in region for a period.
func (m *Marketplace) SetPrice(good, region string, period int, price float64) {
	m.prices[priceKey{good, region, period}] = price
}

// SetPriceSeries records one price per period starting at period 0.
func (m *Marketplace) SetPriceSeries(good, region string, prices []float64) {
	for p, v := range prices {
		m.SetPrice(good, region, p, v)
	}
}

// Price returns the recorded price, or 0 for an unknown market.
func (m *Marketplace) Price(good, region string, period int) float64 {
	return m.prices[priceKey{good, region, period}]
}

func (m *Marketplace) SetCO2Coefficient(good string, coef float64) {
	m.co2[good] = coef
}

func (m *Marketplace) CO2Coefficient(_ string, good string) float64 {
	return m.co2[good]
}

func (m *Marketplace) Info(good, region string, period int, name string) (float64, bool) {
	v, ok := m.info[infoKey{priceKey{good, region, period}, name}]
	return v, ok
}

func (m *Marketplace) SetInfo(good, region string, period int, name string, value float64) {
	m.info[infoKey{priceKey{good, region, period}, name}] = value
}
