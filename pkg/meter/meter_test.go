package meter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/thmeter/pkg/config"
	"github.com/itohio/thmeter/pkg/sample"
)

func TestNew(t *testing.T) {
	cfg := config.Default()
	m := New(cfg)

	assert.NotNil(t, m)
	assert.Equal(t, 0, len(m.Samples()))
	assert.Equal(t, Stats{}, m.Stats())
	assert.Equal(t, 10*time.Minute, m.windowDuration)

	_, ok := m.Latest()
	assert.False(t, ok)
}

func TestProcessSample_Basic(t *testing.T) {
	cfg := config.Default()
	m := New(cfg)

	now := time.Now()
	s := sample.Sample{
		Timestamp:   now,
		Temperature: 21.5,
		Humidity:    45.0,
		DewPoint:    9.2,
	}

	m.processSample(s)

	samples := m.Samples()
	assert.Len(t, samples, 1)
	assert.Equal(t, s, samples[0])

	latest, ok := m.Latest()
	require.True(t, ok)
	assert.Equal(t, s, latest)

	stats := m.Stats()
	assert.Equal(t, 1, stats.Count)
	assert.Equal(t, Summary{Min: 21.5, Max: 21.5, Mean: 21.5, Last: 21.5}, stats.Temperature)
	assert.Equal(t, Summary{Min: 45, Max: 45, Mean: 45, Last: 45}, stats.Humidity)
	assert.Equal(t, float32(9.2), stats.DewPoint)
	assert.Equal(t, float32(0), stats.TemperatureRate)
}

func TestProcessSample_Stats(t *testing.T) {
	cfg := config.Default()
	m := New(cfg)

	now := time.Now()
	samples := []sample.Sample{
		{Timestamp: now, Temperature: 20, Humidity: 50},
		{Timestamp: now.Add(30 * time.Second), Temperature: 23, Humidity: 44},
		{Timestamp: now.Add(60 * time.Second), Temperature: 22, Humidity: 47, DewPoint: 10},
	}
	for _, s := range samples {
		m.processSample(s)
	}

	stats := m.Stats()
	assert.Equal(t, 3, stats.Count)
	assert.Equal(t, time.Minute, stats.Span)
	assert.Equal(t, float32(20), stats.Temperature.Min)
	assert.Equal(t, float32(23), stats.Temperature.Max)
	assert.InDelta(t, 21.6667, stats.Temperature.Mean, 1e-3)
	assert.Equal(t, float32(22), stats.Temperature.Last)
	assert.Equal(t, float32(44), stats.Humidity.Min)
	assert.Equal(t, float32(50), stats.Humidity.Max)
	assert.InDelta(t, 47, stats.Humidity.Mean, 1e-4)
	assert.Equal(t, float32(10), stats.DewPoint)
	// 2 °C up and 3 %RH down over one minute
	assert.InDelta(t, 2, stats.TemperatureRate, 1e-4)
	assert.InDelta(t, -3, stats.HumidityRate, 1e-4)
}

func TestProcessSample_WindowRemoval(t *testing.T) {
	cfg := config.Default()
	cfg.Measurement.WindowSeconds = 1.0 // 1 second window
	m := New(cfg)

	now := time.Now()
	m.processSample(sample.Sample{Timestamp: now, Temperature: 30})
	m.processSample(sample.Sample{Timestamp: now.Add(500 * time.Millisecond), Temperature: 20})
	m.processSample(sample.Sample{Timestamp: now.Add(1500 * time.Millisecond), Temperature: 21})

	samples := m.Samples()
	require.Len(t, samples, 2)
	assert.Equal(t, float32(20), samples[0].Temperature)
	assert.Equal(t, float32(21), samples[1].Temperature)

	// The expired 30 °C sample no longer counts towards the maximum.
	assert.Equal(t, float32(21), m.Stats().Temperature.Max)
	assert.Equal(t, 2, m.Stats().Count)
}

func TestOnUpdate(t *testing.T) {
	cfg := config.Default()
	m := New(cfg)

	callbackCalled := false
	var receivedSamples []sample.Sample
	var receivedStats Stats

	m.OnUpdate(func(samples []sample.Sample, stats Stats) {
		callbackCalled = true
		receivedSamples = samples
		receivedStats = stats
	})

	s := sample.Sample{
		Timestamp:   time.Now(),
		Temperature: 19.0,
		Humidity:    60.0,
	}

	m.processSample(s)

	assert.True(t, callbackCalled, "Callback should be called when sample is processed")
	assert.Equal(t, []sample.Sample{s}, receivedSamples)
	assert.Equal(t, 1, receivedStats.Count)

	// Callback data is a copy
	receivedSamples[0].Temperature = 99
	assert.Equal(t, float32(19), m.Samples()[0].Temperature)
}

func TestSamples_ThreadSafe(t *testing.T) {
	cfg := config.Default()
	m := New(cfg)

	done := make(chan bool)
	go func() {
		now := time.Now()
		for i := 0; i < 100; i++ {
			m.processSample(sample.Sample{
				Timestamp:   now.Add(time.Duration(i) * time.Millisecond),
				Temperature: 20 + float32(i)*0.01,
				Humidity:    50,
			})
		}
		done <- true
	}()

	for {
		select {
		case <-done:
			assert.Equal(t, 100, m.Stats().Count)
			return
		default:
			_ = m.Samples()
			_ = m.Stats()
			_, _ = m.Latest()
		}
	}
}

func TestProcessSamples_Channel(t *testing.T) {
	cfg := config.Default()
	m := New(cfg)

	input := make(chan sample.Sample, 10)
	done := make(chan struct{})
	go func() {
		defer close(done)
		m.ProcessSamples(input)
	}()

	now := time.Now()
	for i := 0; i < 5; i++ {
		input <- sample.Sample{
			Timestamp:   now.Add(time.Duration(i) * time.Second),
			Temperature: 20 + float32(i),
			Humidity:    50,
		}
	}
	close(input)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ProcessSamples did not finish within timeout")
	}

	assert.Equal(t, 5, len(m.Samples()), "Should process all samples from channel")
	assert.Equal(t, float32(24), m.Stats().Temperature.Last)
}

func TestComputeStats_Empty(t *testing.T) {
	assert.Equal(t, Stats{}, computeStats(nil))
}
