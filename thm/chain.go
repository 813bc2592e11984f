package main

import (
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/itohio/thmeter/pkg/config"
	"github.com/itohio/thmeter/pkg/meter"
	"github.com/itohio/thmeter/pkg/sample"
	"github.com/itohio/thmeter/pkg/thm"
)

const chainBufferSize = 500

// measurementChain tracks the components of the measurement chain for graceful shutdown.
type measurementChain struct {
	device    thm.Device
	meterDone chan struct{} // Closed when the meter goroutine exits
}

// openDevice connects to the serial board, or to the mocked one with --mock.
func openDevice(c *config.Config) (thm.Device, error) {
	if useMock {
		device := thm.NewMock(&c.Mock)
		if err := device.Connect(); err != nil {
			return nil, pkgerrors.Wrapf(err, "failed to connect to mocked device")
		}
		logrus.Info("connected to mocked device")
		return device, nil
	}

	device := thm.New(c.Serial.Port, c.Serial.BaudRate, thm.DefaultBufferSize)
	if err := device.Connect(); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to connect to %s", c.Serial.Port)
	}
	logrus.WithField("port", c.Serial.Port).Info("connected to serial port")
	return device, nil
}

// startChain feeds the device samples through the converters into m.
func startChain(c *config.Config, device thm.Device, m *meter.Meter) *measurementChain {
	m.ResetShutdown()

	samples := sample.NewConverter(c, chainBufferSize)(device.Samples())
	if c.Measurement.AverageSamples > 0 {
		samples = sample.NewAveragingConverter(c.Measurement.AverageSamples, chainBufferSize)(samples)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.ProcessSamples(samples)
	}()

	return &measurementChain{
		device:    device,
		meterDone: done,
	}
}

// Close closes the device and waits for the converters and the meter to drain.
func (c *measurementChain) Close() {
	if c == nil {
		return
	}

	if err := c.device.Close(); err != nil {
		logrus.Warnf("failed to close device: %v", err)
	}
	<-c.meterDone
}
