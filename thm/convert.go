package main

import (
	"fmt"
	"strconv"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/itohio/thmeter/pkg/sample"
	"github.com/itohio/thmeter/pkg/thm"
)

func NewConvertCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "convert <raw-temperature> <raw-humidity>",
		GroupID: gTools,
		Short:   "Calibrate a raw temperature and humidity reading",
		Example: "  thm convert 25.3 41.0",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := parseRaw(args[0], args[1])
			if err != nil {
				return err
			}

			if err := sample.Validate(raw, cfg.Limits); err != nil {
				return pkgerrors.Wrapf(err, "invalid reading")
			}

			s := sample.Calibrate(raw, cfg.Calibration.Coefficients(), cfg.Measurement.ClampHumidity)
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", bold("Temperature:"), temperatureStyle.Sprintf("%.4f °C", s.Temperature))
			fmt.Fprintf(cmd.OutOrStdout(), "%s     %s\n", bold("Humidity:"), humidityStyle.Sprintf("%.4f %%RH", s.Humidity))
			fmt.Fprintf(cmd.OutOrStdout(), "%s    %s\n", bold("Dew point:"), dewPointStyle.Sprintf("%.2f °C", s.DewPoint))
			return nil
		},
	}
}

// parseRaw parses the raw temperature and humidity arguments.
func parseRaw(temperature, humidity string) (thm.RawSample, error) {
	t, err := strconv.ParseFloat(temperature, 32)
	if err != nil {
		return thm.RawSample{}, pkgerrors.Wrapf(err, "failed to parse raw temperature %q", temperature)
	}
	rh, err := strconv.ParseFloat(humidity, 32)
	if err != nil {
		return thm.RawSample{}, pkgerrors.Wrapf(err, "failed to parse raw humidity %q", humidity)
	}

	return thm.RawSample{
		Timestamp:   time.Now(),
		Temperature: float32(t),
		Humidity:    float32(rh),
	}, nil
}
