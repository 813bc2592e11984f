package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/itohio/thmeter/pkg/api"
	"github.com/itohio/thmeter/pkg/meter"
)

func NewServeCommand() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:     "serve",
		GroupID: gMeasure,
		Short:   "Serve calibrated readings over HTTP",
		Long: `Run the measurement chain and serve the calibrated readings over HTTP.

Endpoints:
  GET  /calibration  active calibration coefficients
  GET  /reading      latest calibrated sample
  GET  /stats        window statistics
  GET  /samples      samples in the window
  POST /convert      calibrate {"temperature": raw, "humidity": raw}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if listen != "" {
				cfg.Server.Listen = listen
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address, overrides config")

	return cmd
}

func runServe(ctx context.Context) error {
	device, err := openDevice(cfg)
	if err != nil {
		return err
	}

	m := meter.New(cfg)
	chain := startChain(cfg, device, m)
	defer chain.Close()

	err = api.New(cfg, m).Run(ctx)
	logrus.Info("closing measurement chain")
	return err
}
