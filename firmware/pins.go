//go:build tinygo

package main

import "machine"

const (
	// Sampling configuration
	SAMPLE_INTERVAL_MS = 1000 // Sensor read interval in milliseconds
	RETRY_INTERVAL_MS  = 100  // Delay before retrying a failed read
	MAX_READ_FAILURES  = 5    // Consecutive failures before the sensor is reset

	// I2C configuration, AHT20 supports up to 400 kHz
	I2C_FREQUENCY = 400 * machine.KHz

	// Sensor pins
	PIN_SDA = machine.SDA_PIN
	PIN_SCL = machine.SCL_PIN

	// Status LED, toggled on every sample
	PIN_LED = machine.LED

	// Serial configuration
	// Format "unix_micros,deci_celsius,deci_rh\n"
	// Example: "1234567890123456,-123,1000\n" = ~28 bytes max per line, once a second.
	// Any standard rate works; 115200 matches the host default.
	UART_BAUD_RATE = 115200
)
