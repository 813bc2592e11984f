package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/itohio/thmeter/pkg/cal"
)

const (
	channelTemperature = "temperature"
	channelHumidity    = "humidity"
)

func NewFitCommand() *cobra.Command {
	var (
		channel string
		save    bool
	)

	cmd := &cobra.Command{
		Use:     "fit <file.csv>",
		GroupID: gTools,
		Short:   "Fit a calibration pair from raw and reference readings",
		Long: `Fit a slope and intercept from a CSV file of "raw,reference" lines by
least squares. Lines starting with # and a non-numeric header line are skipped.`,
		Example: "  thm fit --channel humidity --save rh-points.csv",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if channel != channelTemperature && channel != channelHumidity {
				return fmt.Errorf("unknown channel %q, want %s or %s", channel, channelTemperature, channelHumidity)
			}

			f, err := os.Open(args[0])
			if err != nil {
				return pkgerrors.Wrapf(err, "failed to open %s", args[0])
			}
			defer f.Close()

			points, err := readPoints(f)
			if err != nil {
				return pkgerrors.Wrapf(err, "failed to read %s", args[0])
			}

			pair, err := cal.Fit(points)
			if err != nil {
				return pkgerrors.Wrapf(err, "failed to fit %d points", len(points))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d points)\n", bold("Channel:"), channel, len(points))
			fmt.Fprintf(cmd.OutOrStdout(), "%s   %.4f\n", bold("Slope:"), pair.Slope)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %.4f\n", bold("Intercept:"), pair.Intercept)

			if !save {
				return nil
			}

			if channel == channelTemperature {
				cfg.Calibration.Temperature = pair
			} else {
				cfg.Calibration.Humidity = pair
			}
			if err := cfg.Save(configPath); err != nil {
				return pkgerrors.Wrapf(err, "failed to save config")
			}
			logrus.WithField("config", configPath).Infof("saved %s calibration", channel)
			return nil
		},
	}

	cmd.Flags().StringVar(&channel, "channel", channelTemperature, "channel to fit: temperature or humidity")
	cmd.Flags().BoolVar(&save, "save", false, "store the fitted pair in the configuration file")

	return cmd
}

// readPoints parses "raw,reference" records.
func readPoints(r io.Reader) ([]cal.Point, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = 2
	reader.TrimLeadingSpace = true

	var points []cal.Point
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		raw, errRaw := strconv.ParseFloat(strings.TrimSpace(record[0]), 32)
		ref, errRef := strconv.ParseFloat(strings.TrimSpace(record[1]), 32)
		if errRaw != nil || errRef != nil {
			// Header
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("record %d: invalid number in %q", line, strings.Join(record, ","))
		}

		points = append(points, cal.Point{Raw: float32(raw), Reference: float32(ref)})
	}

	return points, nil
}
