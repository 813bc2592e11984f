package thm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chewxy/math32"

	"github.com/itohio/thmeter/pkg/config"
)

// Mock simulates a sensor board for testing and development.
type Mock struct {
	cfg *config.MockConfig

	samples   chan RawSample
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
	closed    bool

	startTime time.Time
}

// NewMock creates a new mocked device instance.
func NewMock(cfg *config.MockConfig) *Mock {
	if cfg == nil {
		cfg = &config.MockConfig{
			Temperature: 24.0,
			Humidity:    45.0,
			Amplitude:   2.0,
			NoiseLevel:  0.2,
			Period:      5 * time.Minute,
			SampleRate:  100 * time.Millisecond,
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Mock{
		cfg:       cfg,
		samples:   make(chan RawSample, DefaultBufferSize),
		ctx:       ctx,
		cancel:    cancel,
		connected: false,
	}
}

// Connect simulates connecting to the device.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}
	if m.closed {
		return fmt.Errorf("device closed, create a new one to reconnect")
	}

	m.connected = true
	m.startTime = time.Now()

	go m.generateSamples()

	return nil
}

// Close stops the mocked device.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}

	m.cancel()
	m.connected = false
	m.closed = true
	close(m.samples)

	return nil
}

// Samples returns the channel for reading samples.
func (m *Mock) Samples() <-chan RawSample {
	return m.samples
}

// IsConnected returns whether the device is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// generateSamples generates simulated samples.
func (m *Mock) generateSamples() {
	ticker := time.NewTicker(m.cfg.SampleRate)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case now := <-ticker.C:
			m.mu.RLock()
			if !m.connected {
				m.mu.RUnlock()
				return
			}
			sample := m.generateSample(now)
			select {
			case m.samples <- sample:
			default:
				// Channel full, skip
			}
			m.mu.RUnlock()
		}
	}
}

// generateSample generates a single simulated sample at the given time.
func (m *Mock) generateSample(now time.Time) RawSample {
	elapsed := float32(now.Sub(m.startTime).Seconds())

	// Temperature and humidity drift in opposite directions, like a room
	// warming up during the day.
	phase := float32(0)
	if m.cfg.Period > 0 {
		phase = 2 * math32.Pi * elapsed / float32(m.cfg.Period.Seconds())
	}
	drift := m.cfg.Amplitude * math32.Sin(phase)

	noise := (math32.Sin(elapsed*7.3) + math32.Cos(elapsed*11.1)) * m.cfg.NoiseLevel * 0.5

	temperature := clamp(m.cfg.Temperature+drift+noise, minDeciCelsius/10, maxDeciCelsius/10)
	humidity := clamp(m.cfg.Humidity-drift-noise, minDeciRH/10, maxDeciRH/10)

	return RawSample{
		Timestamp:   now,
		Temperature: quantize(temperature),
		Humidity:    quantize(humidity),
	}
}

// quantize rounds to the 0.1 resolution reported by the firmware.
func quantize(v float32) float32 {
	return math32.Round(v*10) / 10
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
