package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfoKey(t *testing.T) {
	assert.Equal(t, "calVarCost-wheat-usa", InfoKey("calVarCost", "wheat", "usa"))
}

func TestMarketplace_PricesAndInfo(t *testing.T) {
	m := NewMarketplace()
	m.SetPriceSeries("coal", "usa", []float64{1.5, 2.5})
	m.SetCO2Coefficient("coal", 25)

	assert.Equal(t, 1.5, m.Price("coal", "usa", 0))
	assert.Equal(t, 2.5, m.Price("coal", "usa", 1))
	assert.Equal(t, 0.0, m.Price("coal", "eu", 0))
	assert.Equal(t, 25.0, m.CO2Coefficient("usa", "coal"))

	_, ok := m.Info("food", "usa", 1, InfoCalDemand)
	assert.False(t, ok)

	m.SetInfo("food", "usa", 1, InfoCalDemand, 4)
	v, ok := m.Info("food", "usa", 1, InfoCalDemand)
	assert.True(t, ok)
	assert.Equal(t, 4.0, v)

	_, ok = m.Info("food", "usa", 2, InfoCalDemand)
	assert.False(t, ok, "info is period scoped")
}
