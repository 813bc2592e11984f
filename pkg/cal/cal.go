// Package cal holds the linear calibration coefficients for the temperature and
// relative humidity channels of the sensor board.
//
// A calibrated value is computed as
//
//	calibrated = raw*slope + intercept
//
// with the temperature pair applied to temperature readings only and the
// humidity pair applied to humidity readings only. The coefficients do no
// validation; rejecting NaN or out-of-range readings is up to the caller.
package cal

// Temperature linear parameters.
const (
	TempSlope     float32 = 0.9424
	TempIntercept float32 = -2.9283
)

// Relative humidity linear parameters.
const (
	RhumSlope     float32 = 0.7661
	RhumIntercept float32 = 18.8279
)

// Pair is a slope/intercept pair for a single measurement channel.
type Pair struct {
	Slope     float32 `yaml:"slope" json:"slope"`
	Intercept float32 `yaml:"intercept" json:"intercept"`
}

// Apply converts a raw reading into a calibrated value.
func (p Pair) Apply(raw float32) float32 {
	// The conversion forces float32 rounding of the product so the result does
	// not depend on whether the platform fuses multiply-add.
	return float32(raw*p.Slope) + p.Intercept
}

// Coefficients is the full calibration set for both channels.
type Coefficients struct {
	Temperature Pair `yaml:"temperature" json:"temperature"`
	Humidity    Pair `yaml:"humidity" json:"humidity"`
}

// Default returns the built-in coefficients.
func Default() Coefficients {
	return Coefficients{
		Temperature: TemperaturePair(),
		Humidity:    HumidityPair(),
	}
}

// TemperaturePair returns the built-in temperature coefficients.
func TemperaturePair() Pair {
	return Pair{Slope: TempSlope, Intercept: TempIntercept}
}

// HumidityPair returns the built-in relative humidity coefficients.
func HumidityPair() Pair {
	return Pair{Slope: RhumSlope, Intercept: RhumIntercept}
}
