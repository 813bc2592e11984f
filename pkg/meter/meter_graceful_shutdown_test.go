package meter

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/itohio/thmeter/pkg/config"
	"github.com/itohio/thmeter/pkg/sample"
)

func runChain(t *testing.T, m *Meter, samples ...sample.Sample) {
	t.Helper()

	input := make(chan sample.Sample, len(samples))
	done := make(chan struct{})
	go func() {
		defer close(done)
		m.ProcessSamples(input)
	}()

	for _, s := range samples {
		input <- s
	}
	close(input)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ProcessSamples did not finish within timeout")
	}
}

// TestMeter_GracefulShutdown_NoCallbacksAfterClose tests that meter stops sending
// callbacks after the input channel is closed.
func TestMeter_GracefulShutdown_NoCallbacksAfterClose(t *testing.T) {
	cfg := &config.Config{
		Measurement: config.MeasurementConfig{
			WindowSeconds: 10.0,
		},
	}

	m := New(cfg)

	var mu sync.Mutex
	callbackCount := 0
	m.OnUpdate(func(samples []sample.Sample, stats Stats) {
		mu.Lock()
		callbackCount++
		mu.Unlock()
	})

	now := time.Now()
	runChain(t, m,
		sample.Sample{Timestamp: now, Temperature: 20},
		sample.Sample{Timestamp: now.Add(time.Second), Temperature: 21},
		sample.Sample{Timestamp: now.Add(2 * time.Second), Temperature: 22},
	)

	mu.Lock()
	initialCount := callbackCount
	mu.Unlock()
	assert.Equal(t, 3, initialCount)

	// Shutdown flag is set, so late samples update data but do not notify.
	m.processSample(sample.Sample{Timestamp: now.Add(3 * time.Second), Temperature: 23})

	mu.Lock()
	assert.Equal(t, initialCount, callbackCount, "No callbacks should be sent after channel closes")
	mu.Unlock()
	assert.Equal(t, 4, m.Stats().Count)
}

// TestMeter_ResetShutdown tests that ResetShutdown allows callbacks again.
func TestMeter_ResetShutdown(t *testing.T) {
	cfg := &config.Config{
		Measurement: config.MeasurementConfig{
			WindowSeconds: 10.0,
		},
	}

	m := New(cfg)

	var mu sync.Mutex
	callbackCount := 0
	m.OnUpdate(func(samples []sample.Sample, stats Stats) {
		mu.Lock()
		callbackCount++
		mu.Unlock()
	})

	now := time.Now()
	runChain(t, m, sample.Sample{Timestamp: now, Temperature: 20})

	mu.Lock()
	count1 := callbackCount
	mu.Unlock()

	m.ResetShutdown()

	runChain(t, m, sample.Sample{Timestamp: now.Add(time.Second), Temperature: 21})

	mu.Lock()
	count2 := callbackCount
	mu.Unlock()

	assert.Greater(t, count2, count1, "Callbacks should resume after ResetShutdown")
}
