package scope

import (
	"fmt"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"

	"github.com/itohio/thmeter/pkg/meter"
	"github.com/itohio/thmeter/pkg/sample"
)

var (
	gridColor  = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	labelColor = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	textColor  = color.RGBA{R: 200, G: 200, B: 200, A: 255}
)

const (
	marginLeft   float32 = 60
	marginRight  float32 = 60
	marginTop    float32 = 30
	marginBottom float32 = 40
)

// plot is the drawing area in widget coordinates.
type plot struct {
	x, y, width, height float32
	xMin, xMax          time.Time
}

func (p plot) timeX(t time.Time) float32 {
	return p.x + float32(t.Sub(p.xMin).Seconds()/p.xMax.Sub(p.xMin).Seconds())*p.width
}

func (p plot) valueY(v float32, a axis) float32 {
	return p.y + p.height - (v-a.min)/a.span()*p.height
}

// scopeRenderer renders the scope widget.
type scopeRenderer struct {
	scope *ScopeWidget

	grid    *canvas.Rectangle
	objects []fyne.CanvasObject

	lastSize fyne.Size
}

// MinSize returns the minimum size of the widget.
func (r *scopeRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 300)
}

// Layout arranges the widget components.
func (r *scopeRenderer) Layout(size fyne.Size) {
	r.grid.Resize(size)

	if r.lastSize != size {
		r.lastSize = size
		r.scope.BaseWidget.Refresh()
	}
}

// Refresh rebuilds the canvas objects from the current data.
func (r *scopeRenderer) Refresh() {
	r.scope.mu.RLock()
	samples := r.scope.displaySamples
	stats := r.scope.stats
	tAxis := r.scope.temperatureAxis
	hAxis := r.scope.humidityAxis
	p := plot{xMin: r.scope.xMin, xMax: r.scope.xMax}
	r.scope.mu.RUnlock()

	size := r.scope.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	r.objects = []fyne.CanvasObject{r.grid}

	p.x = marginLeft
	p.y = marginTop
	p.width = size.Width - marginLeft - marginRight
	p.height = size.Height - marginTop - marginBottom

	r.drawGrid(p, tAxis, hAxis)
	r.drawTrace(p, samples, tAxis, temperatureColor, func(v sample.Sample) float32 { return v.Temperature })
	r.drawTrace(p, samples, hAxis, humidityColor, func(v sample.Sample) float32 { return v.Humidity })
	r.drawHeader(p, stats)
}

// drawGrid draws the grid with temperature labels on the left and humidity
// labels on the right.
func (r *scopeRenderer) drawGrid(p plot, tAxis, hAxis axis) {
	numHLines := 8
	for i := 0; i < numHLines+1; i++ {
		y := p.y + float32(i)*p.height/float32(numHLines)
		r.addLine(gridColor, 1, fyne.NewPos(p.x, y), fyne.NewPos(p.x+p.width, y))

		frac := float32(i) / float32(numHLines)
		r.addText(formatTemperature(tAxis.max-frac*tAxis.span()), temperatureColor, 10,
			fyne.TextAlignTrailing, fyne.NewPos(p.x-5, y-6))
		r.addText(formatHumidity(hAxis.max-frac*hAxis.span()), humidityColor, 10,
			fyne.TextAlignLeading, fyne.NewPos(p.x+p.width+5, y-6))
	}

	numVLines := 10
	for i := 0; i < numVLines+1; i++ {
		x := p.x + float32(i)*p.width/float32(numVLines)
		r.addLine(gridColor, 1, fyne.NewPos(x, p.y), fyne.NewPos(x, p.y+p.height))

		offset := time.Duration(float64(i) * float64(p.xMax.Sub(p.xMin)) / float64(numVLines))
		r.addText(formatTime(offset), labelColor, 10, fyne.TextAlignCenter, fyne.NewPos(x-20, p.y+p.height+5))
	}
}

func (r *scopeRenderer) drawTrace(p plot, samples []sample.Sample, a axis, c color.Color, value func(sample.Sample) float32) {
	if len(samples) < 2 {
		return
	}

	prev := fyne.NewPos(p.timeX(samples[0].Timestamp), p.valueY(value(samples[0]), a))
	for _, s := range samples[1:] {
		next := fyne.NewPos(p.timeX(s.Timestamp), p.valueY(value(s), a))
		r.addLine(c, 1.5, prev, next)
		prev = next
	}
}

func (r *scopeRenderer) drawHeader(p plot, stats meter.Stats) {
	if stats.Count == 0 {
		r.addText("waiting for samples", textColor, 12, fyne.TextAlignLeading, fyne.NewPos(p.x, 6))
		return
	}

	r.addText(formatTemperature(stats.Temperature.Last), temperatureColor, 14, fyne.TextAlignLeading, fyne.NewPos(p.x, 4))
	r.addText(formatHumidity(stats.Humidity.Last), humidityColor, 14, fyne.TextAlignLeading, fyne.NewPos(p.x+90, 4))
	r.addText(headerText(stats), textColor, 12, fyne.TextAlignLeading, fyne.NewPos(p.x+180, 6))
}

func (r *scopeRenderer) addLine(c color.Color, width float32, from, to fyne.Position) {
	line := canvas.NewLine(c)
	line.Position1 = from
	line.Position2 = to
	line.StrokeWidth = width
	r.objects = append(r.objects, line)
}

func (r *scopeRenderer) addText(s string, c color.Color, size float32, align fyne.TextAlign, pos fyne.Position) {
	text := canvas.NewText(s, c)
	text.TextSize = size
	text.Alignment = align
	text.Move(pos)
	r.objects = append(r.objects, text)
}

// Objects returns all canvas objects for rendering.
func (r *scopeRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *scopeRenderer) Destroy() {}

func headerText(stats meter.Stats) string {
	return fmt.Sprintf("dew point %s  trend %+.2f °C/min %+.2f %%RH/min",
		formatTemperature(stats.DewPoint), stats.TemperatureRate, stats.HumidityRate)
}

func formatTemperature(v float32) string {
	return fmt.Sprintf("%.1f °C", v)
}

func formatHumidity(v float32) string {
	return fmt.Sprintf("%.1f %%RH", v)
}

func formatTime(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	return fmt.Sprintf("%.1fm", d.Minutes())
}
