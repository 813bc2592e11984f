package main

import (
	"fmt"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/itohio/thmeter/pkg/config"
	"github.com/itohio/thmeter/pkg/meter"
	"github.com/itohio/thmeter/pkg/sample"
	"github.com/itohio/thmeter/pkg/scope"
)

// Scope updates are throttled to about 60 FPS.
const updateInterval = 16 * time.Millisecond

func NewGUICommand() *cobra.Command {
	return &cobra.Command{
		Use:     "gui",
		GroupID: gMeasure,
		Short:   "Show the calibrated readings in a window",
		Args:    cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			runGUI(cfg)
		},
	}
}

// appState holds the application state.
type appState struct {
	cfg         *config.Config
	envMeter    *meter.Meter
	scopeWidget *scope.ScopeWidget
	window      fyne.Window
	connectBtn  *widget.Button
	chain       *measurementChain // Current measurement chain (nil if not connected)

	// Throttling for scope updates
	lastUpdateTime time.Time
	updateMu       sync.Mutex
}

func runGUI(c *config.Config) {
	application := app.NewWithID("com.itohio.thmeter")

	window := application.NewWindow("Temperature & Humidity Meter")
	window.Resize(fyne.NewSize(1200, 800))
	window.CenterOnScreen()

	state := &appState{
		cfg:    c,
		window: window,
	}
	state.scopeWidget = scope.New(c)
	state.setMeter(meter.New(c))

	toolbar := createToolbar(state)

	window.SetContent(container.NewBorder(toolbar, nil, nil, nil, state.scopeWidget))
	window.SetOnClosed(func() {
		state.disconnect()
	})
	window.ShowAndRun()
}

// setMeter replaces the meter and routes its updates to the scope widget.
func (state *appState) setMeter(m *meter.Meter) {
	m.OnUpdate(func(samples []sample.Sample, stats meter.Stats) {
		state.updateMu.Lock()
		now := time.Now()
		if now.Sub(state.lastUpdateTime) < updateInterval {
			state.updateMu.Unlock()
			return
		}
		state.lastUpdateTime = now
		state.updateMu.Unlock()

		fyne.Do(func() {
			state.scopeWidget.UpdateData(samples, stats)
		})
	})
	state.envMeter = m
}

// createToolbar creates the application toolbar with Connect and Settings buttons.
func createToolbar(state *appState) fyne.CanvasObject {
	connectBtn := widget.NewButtonWithIcon("", theme.LoginIcon(), func() {
		handleConnect(state)
	})
	state.connectBtn = connectBtn

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	return container.NewHBox(connectBtn, settingsBtn)
}

func (state *appState) connected() bool {
	return state.chain != nil && state.chain.device.IsConnected()
}

func (state *appState) disconnect() {
	if state.chain == nil {
		return
	}
	state.chain.Close()
	state.chain = nil
	state.connectBtn.SetIcon(theme.LoginIcon())
	logrus.Info("disconnected")
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState) {
	if state.connected() {
		state.disconnect()
		return
	}

	device, err := openDevice(state.cfg)
	if err != nil {
		dialog.ShowError(err, state.window)
		return
	}

	state.chain = startChain(state.cfg, device, state.envMeter)
	state.connectBtn.SetIcon(theme.LogoutIcon())
}

// reconnect restarts a running chain so that new settings take effect.
func (state *appState) reconnect() {
	if !state.connected() {
		return
	}
	state.disconnect()
	handleConnect(state)
}

func (state *appState) saveConfig() bool {
	if err := state.cfg.Save(configPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
		return false
	}
	return true
}
