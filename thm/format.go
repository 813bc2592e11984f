package main

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/itohio/thmeter/pkg/meter"
	"github.com/itohio/thmeter/pkg/sample"
)

var (
	temperatureStyle = color.New(color.Bold, color.FgYellow)
	humidityStyle    = color.New(color.Bold, color.FgCyan)
	dewPointStyle    = color.New(color.FgBlue)
)

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}

// formatSample renders one calibrated sample on a single line.
func formatSample(s sample.Sample) string {
	return fmt.Sprintf("%s  %s  %s  dew point %s",
		s.Timestamp.Format("15:04:05.000"),
		temperatureStyle.Sprintf("%6.2f °C", s.Temperature),
		humidityStyle.Sprintf("%6.2f %%RH", s.Humidity),
		dewPointStyle.Sprintf("%6.2f °C", s.DewPoint),
	)
}

// formatTrend renders a signed rate, green when rising and red when falling.
func formatTrend(rate float32, unit string) string {
	switch {
	case rate > 0:
		return color.GreenString("%+.2f %s/min", rate, unit)
	case rate < 0:
		return color.RedString("%+.2f %s/min", rate, unit)
	default:
		return fmt.Sprintf("%+.2f %s/min", rate, unit)
	}
}

// formatStats renders the window summary below a streamed sample.
func formatStats(stats meter.Stats) string {
	return fmt.Sprintf("  window %d samples  T %.2f..%.2f (%s)  RH %.2f..%.2f (%s)",
		stats.Count,
		stats.Temperature.Min, stats.Temperature.Max, formatTrend(stats.TemperatureRate, "°C"),
		stats.Humidity.Min, stats.Humidity.Max, formatTrend(stats.HumidityRate, "%RH"),
	)
}
