package meter

import (
	"sync"
	"time"

	"github.com/itohio/thmeter/pkg/config"
	"github.com/itohio/thmeter/pkg/sample"
)

var _ EnvMeter = (*Meter)(nil)

// Summary describes one channel over the window.
type Summary struct {
	Min  float32 `json:"min"`
	Max  float32 `json:"max"`
	Mean float32 `json:"mean"`
	Last float32 `json:"last"`
}

// Stats summarizes the samples currently inside the window.
type Stats struct {
	Count           int           `json:"count"`
	Span            time.Duration `json:"span"`
	Temperature     Summary       `json:"temperature"`
	Humidity        Summary       `json:"humidity"`
	DewPoint        float32       `json:"dew_point"`
	TemperatureRate float32       `json:"temperature_rate"` // °C per minute
	HumidityRate    float32       `json:"humidity_rate"`    // %RH per minute
}

// UpdateFunc receives copies of the window samples and the matching stats.
type UpdateFunc func(samples []sample.Sample, stats Stats)

// EnvMeter windows calibrated samples and keeps running statistics.
type EnvMeter interface {
	ProcessSamples(input <-chan sample.Sample)
	Samples() []sample.Sample      // Current window, ordered oldest to newest
	Stats() Stats                  // Statistics of the current window
	Latest() (sample.Sample, bool) // Most recent sample, false if none yet
	OnUpdate(UpdateFunc)           // Register callback for updates
}

// Meter implements EnvMeter.
// Samples are kept in a FIFO ordered by arrival; removal is based on the
// timestamp of the newest sample, not on the number of samples.
type Meter struct {
	samples []sample.Sample
	stats   Stats

	mu sync.RWMutex

	callbacks []UpdateFunc
	cbMu      sync.RWMutex

	windowDuration time.Duration

	// Set when the input channel closes, prevents further callbacks
	shutdown bool
}

// New creates a new Meter instance.
func New(cfg *config.Config) *Meter {
	return &Meter{
		samples:        make([]sample.Sample, 0),
		callbacks:      make([]UpdateFunc, 0),
		windowDuration: cfg.Measurement.Window(),
	}
}

// ProcessSamples consumes samples until the input channel closes.
// When the input channel closes, it sets shutdown flag to prevent further callbacks.
func (m *Meter) ProcessSamples(input <-chan sample.Sample) {
	for s := range input {
		m.processSample(s)
	}
	m.mu.Lock()
	m.shutdown = true
	m.mu.Unlock()
}

// processSample adds a sample to the window, drops expired samples and
// recomputes the statistics.
func (m *Meter) processSample(s sample.Sample) {
	m.mu.Lock()

	m.samples = append(m.samples, s)

	cutoffTime := s.Timestamp.Add(-m.windowDuration)
	cutoffIndex := 0
	for i, old := range m.samples {
		if old.Timestamp.After(cutoffTime) {
			cutoffIndex = i
			break
		}
	}
	if cutoffIndex > 0 {
		m.samples = append(m.samples[:0], m.samples[cutoffIndex:]...)
	}

	m.stats = computeStats(m.samples)
	shouldNotify := !m.shutdown

	m.mu.Unlock()

	if shouldNotify {
		m.notifyCallbacks()
	}
}

// computeStats summarizes samples, which must be ordered oldest first.
func computeStats(samples []sample.Sample) Stats {
	if len(samples) == 0 {
		return Stats{}
	}

	first := samples[0]
	last := samples[len(samples)-1]

	stats := Stats{
		Count:       len(samples),
		Span:        last.Timestamp.Sub(first.Timestamp),
		Temperature: Summary{Min: first.Temperature, Max: first.Temperature, Last: last.Temperature},
		Humidity:    Summary{Min: first.Humidity, Max: first.Humidity, Last: last.Humidity},
		DewPoint:    last.DewPoint,
	}

	var sumT, sumH float64
	for _, s := range samples {
		sumT += float64(s.Temperature)
		sumH += float64(s.Humidity)
		stats.Temperature.Min = min(stats.Temperature.Min, s.Temperature)
		stats.Temperature.Max = max(stats.Temperature.Max, s.Temperature)
		stats.Humidity.Min = min(stats.Humidity.Min, s.Humidity)
		stats.Humidity.Max = max(stats.Humidity.Max, s.Humidity)
	}
	n := float64(len(samples))
	stats.Temperature.Mean = float32(sumT / n)
	stats.Humidity.Mean = float32(sumH / n)

	if minutes := float32(stats.Span.Minutes()); minutes > 0 {
		stats.TemperatureRate = (last.Temperature - first.Temperature) / minutes
		stats.HumidityRate = (last.Humidity - first.Humidity) / minutes
	}

	return stats
}

// Samples returns a copy of the current samples buffer.
func (m *Meter) Samples() []sample.Sample {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]sample.Sample, len(m.samples))
	copy(result, m.samples)
	return result
}

// Stats returns the statistics of the current window.
func (m *Meter) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats
}

// Latest returns the most recent sample.
func (m *Meter) Latest() (sample.Sample, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.samples) == 0 {
		return sample.Sample{}, false
	}
	return m.samples[len(m.samples)-1], true
}

// OnUpdate registers a callback function that will be called when samples are updated.
// The callback should copy data quickly and return as fast as possible.
func (m *Meter) OnUpdate(callback UpdateFunc) {
	m.cbMu.Lock()
	defer m.cbMu.Unlock()
	m.callbacks = append(m.callbacks, callback)
}

// ResetShutdown resets the shutdown flag, allowing callbacks to be sent again.
// This should be called before starting a new measurement chain.
func (m *Meter) ResetShutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shutdown = false
}

// notifyCallbacks invokes all registered callbacks with current data.
// Makes copies of data while holding read lock, then calls callbacks without lock.
func (m *Meter) notifyCallbacks() {
	m.mu.RLock()
	samplesCopy := make([]sample.Sample, len(m.samples))
	copy(samplesCopy, m.samples)
	stats := m.stats
	m.mu.RUnlock()

	m.cbMu.RLock()
	callbacks := make([]UpdateFunc, len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(samplesCopy, stats)
		}
	}
}
