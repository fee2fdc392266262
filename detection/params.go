// Package detection implements the fleet anomaly detectors: pure, synchronous
// rule evaluators over an immutable telemetry snapshot. Nothing in this
// package touches the database, the clock or the network; the caller supplies
// the snapshot, the thresholds and the reference time.
package detection

// Params carries every operator-tunable threshold, passed by reference into
// each detector call.
type Params struct {
	// Deviation over nominal consumption (percent) before surconsommation fires
	OverconsumptionPct float64

	// GPS-vs-odometer gap (percent). The detector exists but is opt-in.
	OdometerGapPct      float64
	EnableOdometerCheck bool

	// Liters unaccounted for before carburant_disparu fires
	MissingFuelLiters float64

	// EXIF cross-check thresholds
	PhotoTimeWindowHours float64
	PhotoDistanceKm      float64

	// Hours stationary before temps_immobilisation fires
	ImmobilizationHours float64

	// Trailing window for consumption averaging
	RollingWindowDays int

	// Coordinate reported when a vehicle has no GPS point at all. Detectors
	// treat a fallback position as unknown.
	FallbackLat float64
	FallbackLng float64
}

// DefaultParams returns the documented defaults.
func DefaultParams() Params {
	return Params{
		OverconsumptionPct:   25,
		OdometerGapPct:       10,
		EnableOdometerCheck:  false,
		MissingFuelLiters:    5,
		PhotoTimeWindowHours: 2,
		PhotoDistanceKm:      5,
		ImmobilizationHours:  10,
		RollingWindowDays:    14,
	}
}

// clampScore clips a severity value into [0,100].
func clampScore(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v)
}
