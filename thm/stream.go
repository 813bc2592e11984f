package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/itohio/thmeter/pkg/meter"
	"github.com/itohio/thmeter/pkg/sample"
)

func NewStreamCommand() *cobra.Command {
	var showStats bool

	cmd := &cobra.Command{
		Use:     "stream",
		GroupID: gMeasure,
		Short:   "Print calibrated readings until interrupted",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runStream(ctx, showStats)
		},
	}

	cmd.Flags().BoolVar(&showStats, "stats", false, "print window statistics after every sample")

	return cmd
}

func runStream(ctx context.Context, showStats bool) error {
	device, err := openDevice(cfg)
	if err != nil {
		return err
	}

	m := meter.New(cfg)
	m.OnUpdate(func(samples []sample.Sample, stats meter.Stats) {
		if len(samples) == 0 {
			return
		}
		fmt.Fprintln(os.Stdout, formatSample(samples[len(samples)-1]))
		if showStats {
			fmt.Fprintln(os.Stdout, formatStats(stats))
		}
	})

	chain := startChain(cfg, device, m)
	<-ctx.Done()

	logrus.Info("stopping stream")
	chain.Close()
	return nil
}
