// Package scope draws the calibrated temperature and humidity traces.
package scope

import (
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/thmeter/pkg/config"
	"github.com/itohio/thmeter/pkg/meter"
	"github.com/itohio/thmeter/pkg/sample"
)

var (
	temperatureColor = color.RGBA{R: 255, G: 165, B: 0, A: 255}   // Orange
	humidityColor    = color.RGBA{R: 100, G: 200, B: 255, A: 255} // Light blue
)

// axis is a value range of one trace.
type axis struct {
	min, max float32
}

// span never returns zero.
func (a axis) span() float32 {
	if a.max == a.min {
		return 1
	}
	return a.max - a.min
}

// ScopeWidget is a custom Fyne widget that plots temperature and humidity over the window.
type ScopeWidget struct {
	widget.BaseWidget

	cfg *config.Config

	// Data (protected by mu)
	mu    sync.RWMutex
	stats meter.Stats

	// Display buffer (reused for downsampling)
	displaySamples []sample.Sample

	// Auto-scaling, temperature on the left axis and humidity on the right one
	temperatureAxis axis
	humidityAxis    axis
	xMin, xMax      time.Time

	maxDisplayPoints int
}

// New creates a new ScopeWidget instance.
func New(cfg *config.Config) *ScopeWidget {
	s := &ScopeWidget{
		cfg:              cfg,
		displaySamples:   make([]sample.Sample, 0, 1000),
		maxDisplayPoints: 1000,
	}
	s.updateAutoScale()
	s.ExtendBaseWidget(s)
	s.Refresh()
	return s
}

// UpdateData updates the widget with new measurement data.
// This should be called from the meter callback using fyne.Do().
func (s *ScopeWidget) UpdateData(samples []sample.Sample, stats meter.Stats) {
	s.mu.Lock()
	s.displaySamples = sample.Downsample(s.displaySamples, samples, s.maxDisplayPoints)
	s.stats = stats
	s.updateAutoScale()
	s.mu.Unlock()

	// Refresh outside the lock, the renderer takes a read lock
	s.Refresh()
}

// updateAutoScale calculates both Y-axis ranges and the time range.
func (s *ScopeWidget) updateAutoScale() {
	window := s.cfg.Measurement.Window()

	if len(s.displaySamples) == 0 {
		s.temperatureAxis = axis{min: 15, max: 30}
		s.humidityAxis = axis{min: 0, max: 100}
		s.xMin = time.Now()
		s.xMax = s.xMin.Add(window)
		return
	}

	s.temperatureAxis = autoScale(s.displaySamples, func(v sample.Sample) float32 { return v.Temperature })
	s.humidityAxis = autoScale(s.displaySamples, func(v sample.Sample) float32 { return v.Humidity })

	s.xMin = s.displaySamples[0].Timestamp
	s.xMax = s.displaySamples[len(s.displaySamples)-1].Timestamp
	if s.xMax.Sub(s.xMin) < window {
		s.xMax = s.xMin.Add(window)
	}
}

// autoScale returns the range of value over samples with a 10% margin.
func autoScale(samples []sample.Sample, value func(sample.Sample) float32) axis {
	a := axis{min: value(samples[0]), max: value(samples[0])}
	for _, v := range samples[1:] {
		a.min = min(a.min, value(v))
		a.max = max(a.max, value(v))
	}

	margin := a.span() * 0.1
	a.min -= margin
	a.max += margin
	return a
}

// CreateRenderer creates the widget renderer.
func (s *ScopeWidget) CreateRenderer() fyne.WidgetRenderer {
	grid := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255}) // Dark background
	return &scopeRenderer{
		scope:   s,
		grid:    grid,
		objects: []fyne.CanvasObject{grid},
	}
}
