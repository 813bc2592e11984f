package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/thmeter/pkg/meter"
	"github.com/itohio/thmeter/pkg/thm"
)

// showSettingsDialog displays a settings dialog with tabs for all configuration options.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createCalibrationTab(state),
		createMeasurementTab(state),
		createMockTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(600, 500))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(600, 500))
	d.Show()
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	ports, err := thm.Ports()
	portOptions := []string{}
	portMap := make(map[string]string) // display name -> port name

	if err == nil {
		for _, port := range ports {
			displayName := port.Name
			if port.Description != "" && port.Description != port.Name {
				displayName = fmt.Sprintf("%s (%s)", port.Name, port.Description)
			}
			portOptions = append(portOptions, displayName)
			portMap[displayName] = port.Name
		}
	}

	currentPort := state.cfg.Serial.Port
	currentDisplay := currentPort
	found := false
	for _, opt := range portOptions {
		if portMap[opt] == currentPort {
			currentDisplay = opt
			found = true
			break
		}
	}
	if !found && currentPort != "" {
		portOptions = append(portOptions, currentPort)
		portMap[currentPort] = currentPort
	}

	portSelect := widget.NewSelect(portOptions, nil)
	if currentDisplay != "" {
		portSelect.SetSelected(currentDisplay)
	}

	baudEntry := widget.NewEntry()
	baudEntry.SetText(strconv.Itoa(state.cfg.Serial.BaudRate))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
			{Text: "Baud Rate", Widget: baudEntry},
		},
		OnSubmit: func() {
			if portSelect.Selected == "" {
				return
			}
			selectedPort := portMap[portSelect.Selected]
			if selectedPort == "" {
				selectedPort = portSelect.Selected
			}

			changed := state.cfg.Serial.Port != selectedPort
			state.cfg.Serial.Port = selectedPort
			if baud, err := strconv.Atoi(baudEntry.Text); err == nil && baud > 0 {
				changed = changed || baud != state.cfg.Serial.BaudRate
				state.cfg.Serial.BaudRate = baud
			}

			if state.saveConfig() && changed {
				state.reconnect()
			}
		},
	}

	return container.NewTabItem("Serial", form)
}

// createCalibrationTab creates the Calibration configuration tab.
func createCalibrationTab(state *appState) *container.TabItem {
	tSlopeEntry := floatEntry(state.cfg.Calibration.Temperature.Slope)
	tInterceptEntry := floatEntry(state.cfg.Calibration.Temperature.Intercept)
	rhSlopeEntry := floatEntry(state.cfg.Calibration.Humidity.Slope)
	rhInterceptEntry := floatEntry(state.cfg.Calibration.Humidity.Intercept)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Temperature Slope", Widget: tSlopeEntry},
			{Text: "Temperature Intercept (°C)", Widget: tInterceptEntry},
			{Text: "Humidity Slope", Widget: rhSlopeEntry},
			{Text: "Humidity Intercept (%RH)", Widget: rhInterceptEntry},
		},
		OnSubmit: func() {
			// A zero slope is rejected the same way Load rejects it.
			if v, err := parseFloat32(tSlopeEntry.Text); err == nil && v != 0 {
				state.cfg.Calibration.Temperature.Slope = v
			}
			if v, err := parseFloat32(tInterceptEntry.Text); err == nil {
				state.cfg.Calibration.Temperature.Intercept = v
			}
			if v, err := parseFloat32(rhSlopeEntry.Text); err == nil && v != 0 {
				state.cfg.Calibration.Humidity.Slope = v
			}
			if v, err := parseFloat32(rhInterceptEntry.Text); err == nil {
				state.cfg.Calibration.Humidity.Intercept = v
			}
			if state.saveConfig() {
				// Converters capture the coefficients when the chain starts
				state.reconnect()
			}
		},
	}

	return container.NewTabItem("Calibration", form)
}

// createMeasurementTab creates the Measurement configuration tab.
func createMeasurementTab(state *appState) *container.TabItem {
	windowSecondsEntry := widget.NewEntry()
	windowSecondsEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Measurement.WindowSeconds))

	averageSamplesEntry := widget.NewEntry()
	averageSamplesEntry.SetText(strconv.Itoa(state.cfg.Measurement.AverageSamples))

	clampCheck := widget.NewCheck("", nil)
	clampCheck.SetChecked(state.cfg.Measurement.ClampHumidity)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Window (seconds)", Widget: windowSecondsEntry},
			{Text: "Average Samples (0=disabled)", Widget: averageSamplesEntry},
			{Text: "Clamp Humidity to 0..100 %RH", Widget: clampCheck},
		},
		OnSubmit: func() {
			if ws, err := strconv.ParseFloat(windowSecondsEntry.Text, 64); err == nil && ws > 0 {
				state.cfg.Measurement.WindowSeconds = ws
			}
			if avg, err := strconv.Atoi(averageSamplesEntry.Text); err == nil && avg >= 0 {
				state.cfg.Measurement.AverageSamples = avg
			}
			state.cfg.Measurement.ClampHumidity = clampCheck.Checked
			if !state.saveConfig() {
				return
			}

			wasConnected := state.connected()
			state.disconnect()
			state.setMeter(meter.New(state.cfg))
			if wasConnected {
				handleConnect(state)
			}
		},
	}

	return container.NewTabItem("Measurement", form)
}

// createMockTab creates the Mock device configuration tab.
func createMockTab(state *appState) *container.TabItem {
	temperatureEntry := floatEntry(state.cfg.Mock.Temperature)
	humidityEntry := floatEntry(state.cfg.Mock.Humidity)
	amplitudeEntry := floatEntry(state.cfg.Mock.Amplitude)
	noiseLevelEntry := floatEntry(state.cfg.Mock.NoiseLevel)

	periodEntry := widget.NewEntry()
	periodEntry.SetText(state.cfg.Mock.Period.String())

	sampleRateEntry := widget.NewEntry()
	sampleRateEntry.SetText(state.cfg.Mock.SampleRate.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Temperature (°C)", Widget: temperatureEntry},
			{Text: "Humidity (%RH)", Widget: humidityEntry},
			{Text: "Drift Amplitude", Widget: amplitudeEntry},
			{Text: "Noise Level", Widget: noiseLevelEntry},
			{Text: "Drift Period", Widget: periodEntry},
			{Text: "Sample Rate", Widget: sampleRateEntry},
		},
		OnSubmit: func() {
			if v, err := parseFloat32(temperatureEntry.Text); err == nil {
				state.cfg.Mock.Temperature = v
			}
			if v, err := parseFloat32(humidityEntry.Text); err == nil {
				state.cfg.Mock.Humidity = v
			}
			if v, err := parseFloat32(amplitudeEntry.Text); err == nil {
				state.cfg.Mock.Amplitude = v
			}
			if v, err := parseFloat32(noiseLevelEntry.Text); err == nil {
				state.cfg.Mock.NoiseLevel = v
			}
			if d, err := time.ParseDuration(periodEntry.Text); err == nil && d > 0 {
				state.cfg.Mock.Period = d
			}
			if d, err := time.ParseDuration(sampleRateEntry.Text); err == nil && d > 0 {
				state.cfg.Mock.SampleRate = d
			}
			state.saveConfig()
		},
	}

	return container.NewTabItem("Mock", form)
}

func floatEntry(v float32) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(strconv.FormatFloat(float64(v), 'g', -1, 32))
	return e
}

func parseFloat32(s string) (float32, error) {
	v, err := strconv.ParseFloat(s, 32)
	return float32(v), err
}
