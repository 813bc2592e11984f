package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/itohio/thmeter/pkg/cal"
)

// Config represents the application configuration.
type Config struct {
	Serial      SerialConfig      `yaml:"serial"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Limits      LimitsConfig      `yaml:"limits"`
	Measurement MeasurementConfig `yaml:"measurement"`
	Mock        MockConfig        `yaml:"mock"`
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// CalibrationConfig contains the active calibration coefficients.
type CalibrationConfig struct {
	Temperature cal.Pair `yaml:"temperature"`
	Humidity    cal.Pair `yaml:"humidity"`
}

// Coefficients returns the calibration set in the form used by the converters.
func (c CalibrationConfig) Coefficients() cal.Coefficients {
	return cal.Coefficients{
		Temperature: c.Temperature,
		Humidity:    c.Humidity,
	}
}

// LimitsConfig bounds the raw readings accepted from the sensor.
type LimitsConfig struct {
	TemperatureMin float32 `yaml:"temperature_min"` // °C
	TemperatureMax float32 `yaml:"temperature_max"` // °C
	HumidityMin    float32 `yaml:"humidity_min"`    // %RH
	HumidityMax    float32 `yaml:"humidity_max"`    // %RH
}

// MeasurementConfig contains measurement parameters.
type MeasurementConfig struct {
	WindowSeconds  float64 `yaml:"window_seconds"`
	AverageSamples int     `yaml:"average_samples"` // Number of samples to average (0 = disabled, default)
	ClampHumidity  bool    `yaml:"clamp_humidity"`  // Clamp calibrated humidity to 0..100 %RH
}

// MockConfig contains mock device configuration.
type MockConfig struct {
	Temperature float32       `yaml:"temperature"` // Mean raw temperature (°C)
	Humidity    float32       `yaml:"humidity"`    // Mean raw humidity (%RH)
	Amplitude   float32       `yaml:"amplitude"`   // Drift amplitude, applied to both channels
	NoiseLevel  float32       `yaml:"noise_level"` // Noise amplitude
	Period      time.Duration `yaml:"period"`      // Drift period
	SampleRate  time.Duration `yaml:"sample_rate"` // Sample rate
}

// ServerConfig contains HTTP API configuration.
type ServerConfig struct {
	Listen string `yaml:"listen"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "COM3", // Default for Windows, should be "/dev/ttyACM0" on Linux/Mac
			BaudRate: 115200,
		},
		Calibration: CalibrationConfig{
			Temperature: cal.TemperaturePair(),
			Humidity:    cal.HumidityPair(),
		},
		Limits: LimitsConfig{
			TemperatureMin: -40,
			TemperatureMax: 85,
			HumidityMin:    0,
			HumidityMax:    100,
		},
		Measurement: MeasurementConfig{
			WindowSeconds:  600,
			AverageSamples: 0, // No averaging by default
			ClampHumidity:  true,
		},
		Mock: MockConfig{
			Temperature: 24.0,
			Humidity:    45.0,
			Amplitude:   2.0,
			NoiseLevel:  0.2,
			Period:      5 * time.Minute,
			SampleRate:  time.Second,
		},
		Server: ServerConfig{
			Listen: "127.0.0.1:8086",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	// A zero slope never calibrates anything, treat the pair as missing.
	if c.Calibration.Temperature.Slope == 0 {
		c.Calibration.Temperature = def.Calibration.Temperature
	}
	if c.Calibration.Humidity.Slope == 0 {
		c.Calibration.Humidity = def.Calibration.Humidity
	}

	if c.Limits.TemperatureMin == 0 && c.Limits.TemperatureMax == 0 {
		c.Limits.TemperatureMin = def.Limits.TemperatureMin
		c.Limits.TemperatureMax = def.Limits.TemperatureMax
	}
	if c.Limits.HumidityMin == 0 && c.Limits.HumidityMax == 0 {
		c.Limits.HumidityMin = def.Limits.HumidityMin
		c.Limits.HumidityMax = def.Limits.HumidityMax
	}

	if c.Measurement.WindowSeconds == 0 {
		c.Measurement.WindowSeconds = def.Measurement.WindowSeconds
	}

	if c.Mock.Temperature == 0 {
		c.Mock.Temperature = def.Mock.Temperature
	}
	if c.Mock.Humidity == 0 {
		c.Mock.Humidity = def.Mock.Humidity
	}
	if c.Mock.Period == 0 {
		c.Mock.Period = def.Mock.Period
	}
	if c.Mock.SampleRate == 0 {
		c.Mock.SampleRate = def.Mock.SampleRate
	}

	if c.Server.Listen == "" {
		c.Server.Listen = def.Server.Listen
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
}

// Window returns the measurement window as a duration.
func (m MeasurementConfig) Window() time.Duration {
	return time.Duration(m.WindowSeconds * float64(time.Second))
}
