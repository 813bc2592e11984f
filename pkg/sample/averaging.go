package sample

import (
	"time"

	"github.com/sirupsen/logrus"
)

// NewAveragingConverter creates a converter that emits the moving average of
// the last windowSize calibrated samples. This reduces the 0.1 unit
// quantization steps of the sensor.
func NewAveragingConverter(windowSize int, bufSize int) func(in <-chan Sample) <-chan Sample {
	if windowSize <= 0 {
		windowSize = 1
	}
	if bufSize <= 0 {
		bufSize = 100
	}

	return func(in <-chan Sample) <-chan Sample {
		out := make(chan Sample, bufSize)

		go func() {
			defer close(out)

			buffer := make([]Sample, 0, windowSize+1)
			for s := range in {
				buffer = append(buffer, s)
				if len(buffer) > windowSize {
					buffer = buffer[1:] // Remove oldest
				}

				select {
				case out <- averageSamples(buffer):
				case <-time.After(time.Second):
					logrus.Warn("averaging converter output channel full, dropping sample")
				}
			}
		}()

		return out
	}
}

// averageSamples averages a slice of calibrated samples.
// Uses the most recent sample's timestamp; dew point is recomputed from the
// averaged temperature and humidity.
func averageSamples(samples []Sample) Sample {
	if len(samples) == 0 {
		return Sample{}
	}

	var sumTemperature, sumHumidity float32
	for _, s := range samples {
		sumTemperature += s.Temperature
		sumHumidity += s.Humidity
	}

	n := float32(len(samples))
	temperature := sumTemperature / n
	humidity := sumHumidity / n

	return Sample{
		Timestamp:   samples[len(samples)-1].Timestamp,
		Temperature: temperature,
		Humidity:    humidity,
		DewPoint:    DewPoint(temperature, humidity),
	}
}
