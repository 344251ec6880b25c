package choice

// StaticLand is a LandAllocator with exogenous land allocations and yields. It
// records the intrinsic rates it is handed but does not reallocate land in response.
type StaticLand struct {
	Allocations map[string]float64 // keyed by landType/product
	Yields      map[string]float64 // keyed by landType/product
	// UnmanagedRates is the average observed rate of unmanaged land, keyed by land type.
	UnmanagedRates map[string]float64

	rates map[string]float64
}

func NewStaticLand() *StaticLand {
	return &StaticLand{
		Allocations:    map[string]float64{},
		Yields:         map[string]float64{},
		UnmanagedRates: map[string]float64{},
		rates:          map[string]float64{},
	}
}

func landKey(landType, product string) string { return landType + "/" + product }

// Set configures the land used by product and its yield per unit of land.
func (l *StaticLand) Set(landType, product string, allocation, yield float64) {
	l.Allocations[landKey(landType, product)] = allocation
	l.Yields[landKey(landType, product)] = yield
}

func (l *StaticLand) SetIntrinsicRate(_ string, landType, product string, profitRate float64, _ int) {
	l.rates[landKey(landType, product)] = profitRate
}

// IntrinsicRate returns the last profit rate handed in for product.
func (l *StaticLand) IntrinsicRate(landType, product string) float64 {
	return l.rates[landKey(landType, product)]
}

func (l *StaticLand) CalcYield(landType, product, _ string, profitRate float64, _ int) {
	l.rates[landKey(landType, product)] = profitRate
}

// Supply is zero while the profit rate is not positive.
func (l *StaticLand) Supply(landType, product string, _ int) float64 {
	k := landKey(landType, product)
	if r, ok := l.rates[k]; ok && r <= 0 {
		return 0
	}
	return l.Allocations[k] * l.Yields[k]
}

func (l *StaticLand) LandAllocation(landType, product string, _ int) float64 {
	return l.Allocations[landKey(landType, product)]
}

func (l *StaticLand) UnmanagedCalAveObservedRate(_ int, landType string) float64 {
	return l.UnmanagedRates[landType]
}
