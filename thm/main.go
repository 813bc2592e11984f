package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/itohio/thmeter/pkg/config"
)

var (
	configPath     = "config.yaml"
	logLevel       = ""
	portOverride   = ""
	useMock        = false
	averageSamples = -1

	// cfg is the effective configuration after flag overrides.
	cfg *config.Config
)

var (
	gMeasure  = "Measure:"
	gTools    = "Tools:"
	cmdGroups = []string{gMeasure, gTools}
)

func setupLogger(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	}

	return nil
}

// loadConfig loads the configuration file and applies command line overrides.
func loadConfig() error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if portOverride != "" {
		c.Serial.Port = portOverride
	}
	if averageSamples >= 0 {
		c.Measurement.AverageSamples = averageSamples
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}

	cfg = c
	return nil
}

func main() {
	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "thm",
		Short: "thm reads a temperature and humidity sensor board",
		Long: `thm reads raw AHT20 readings from a serial sensor board, applies the
linear calibration of each channel and shows, streams or serves the
calibrated values.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := loadConfig(); err != nil {
				return err
			}
			return setupLogger(cfg.Log.Level)
		},
	}

	for _, g := range cmdGroups {
		cmd.AddGroup(&cobra.Group{ID: g, Title: g})
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", configPath, "configuration file path")
	flags.StringVar(&logLevel, "log-level", logLevel, "log level (trace, debug, info, warn, error), overrides config")
	flags.StringVarP(&portOverride, "port", "p", portOverride, "serial port override (e.g., COM3 or /dev/ttyACM0)")
	flags.BoolVar(&useMock, "mock", useMock, "use mocked device instead of serial port")
	flags.IntVar(&averageSamples, "average-samples", averageSamples, "number of samples to average (0 = disabled, overrides config)")

	cmd.AddCommand(
		NewGUICommand(),
		NewStreamCommand(),
		NewServeCommand(),
		NewConvertCommand(),
		NewFitCommand(),
		NewPortsCommand(),
		NewConfigCommand(),
	)

	return cmd
}
