package sample

import (
	"errors"
	"fmt"
	"time"

	"github.com/chewxy/math32"
	"github.com/sirupsen/logrus"

	"github.com/itohio/thmeter/pkg/cal"
	"github.com/itohio/thmeter/pkg/config"
	"github.com/itohio/thmeter/pkg/thm"
)

var (
	ErrNotANumber = errors.New("reading is not a finite number")
	ErrOutOfRange = errors.New("reading out of sensor range")
)

// Sample represents a calibrated measurement.
type Sample struct {
	Timestamp   time.Time `json:"timestamp"`
	Temperature float32   `json:"temperature"` // °C
	Humidity    float32   `json:"humidity"`    // %RH
	DewPoint    float32   `json:"dew_point"`   // °C
}

// Converter is a function type that converts RawSample channel to Sample channel.
type Converter func(in <-chan thm.RawSample) <-chan Sample

// NewConverter creates a converter function that validates and calibrates
// raw samples. Invalid samples are logged and dropped.
func NewConverter(cfg *config.Config, bufSize int) Converter {
	if bufSize <= 0 {
		bufSize = 100
	}

	coeffs := cfg.Calibration.Coefficients()
	limits := cfg.Limits
	clampRH := cfg.Measurement.ClampHumidity

	return func(in <-chan thm.RawSample) <-chan Sample {
		out := make(chan Sample, bufSize)

		go func() {
			defer close(out)

			for raw := range in {
				if err := Validate(raw, limits); err != nil {
					logrus.WithFields(logrus.Fields{
						"temperature": raw.Temperature,
						"humidity":    raw.Humidity,
					}).Warnf("dropping sample: %v", err)
					continue
				}

				select {
				case out <- Calibrate(raw, coeffs, clampRH):
				case <-time.After(time.Second):
					logrus.Warn("converter output channel full, dropping sample")
				}
			}
		}()

		return out
	}
}

// Validate rejects raw readings that must not be calibrated.
func Validate(raw thm.RawSample, limits config.LimitsConfig) error {
	if !finite(raw.Temperature) {
		return fmt.Errorf("temperature: %w", ErrNotANumber)
	}
	if !finite(raw.Humidity) {
		return fmt.Errorf("humidity: %w", ErrNotANumber)
	}
	if raw.Temperature < limits.TemperatureMin || raw.Temperature > limits.TemperatureMax {
		return fmt.Errorf("temperature %.1f not in %.1f..%.1f: %w",
			raw.Temperature, limits.TemperatureMin, limits.TemperatureMax, ErrOutOfRange)
	}
	if raw.Humidity < limits.HumidityMin || raw.Humidity > limits.HumidityMax {
		return fmt.Errorf("humidity %.1f not in %.1f..%.1f: %w",
			raw.Humidity, limits.HumidityMin, limits.HumidityMax, ErrOutOfRange)
	}
	return nil
}

// Calibrate applies the temperature coefficients to the temperature reading
// and the humidity coefficients to the humidity reading.
func Calibrate(raw thm.RawSample, coeffs cal.Coefficients, clampHumidity bool) Sample {
	temperature := coeffs.Temperature.Apply(raw.Temperature)
	humidity := coeffs.Humidity.Apply(raw.Humidity)
	if clampHumidity {
		humidity = clamp(humidity, 0, 100)
	}

	return Sample{
		Timestamp:   raw.Timestamp,
		Temperature: temperature,
		Humidity:    humidity,
		DewPoint:    DewPoint(temperature, humidity),
	}
}

// Magnus coefficients (Alduchov and Eskridge), valid for -45..60 °C.
const (
	magnusA float32 = 17.625
	magnusB float32 = 243.04 // °C

	minDewPointHumidity float32 = 1 // %RH
)

// DewPoint returns the dew point in °C for the given temperature (°C) and
// relative humidity (%RH). Humidity below 1 %RH is treated as 1 %RH.
func DewPoint(temperature, humidity float32) float32 {
	if humidity < minDewPointHumidity {
		humidity = minDewPointHumidity
	}
	gamma := math32.Log(humidity/100) + (magnusA*temperature)/(magnusB+temperature)
	return (magnusB * gamma) / (magnusA - gamma)
}

func finite(v float32) bool {
	return !math32.IsNaN(v) && !math32.IsInf(v, 0)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
