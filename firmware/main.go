//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"machine"
	"time"

	"tinygo.org/x/drivers/aht20"
)

var (
	i2c    = machine.I2C0
	uart   = machine.Serial
	sensor aht20.Device

	failures int
	ledOn    bool
)

func main() {
	PIN_LED.Configure(machine.PinConfig{Mode: machine.PinOutput})

	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	err := i2c.Configure(machine.I2CConfig{
		Frequency: I2C_FREQUENCY,
		SDA:       PIN_SDA,
		SCL:       PIN_SCL,
	})
	if err != nil {
		// Nothing to measure without the bus, blink fast forever
		for {
			toggleLED()
			time.Sleep(100 * time.Millisecond)
		}
	}

	sensor = aht20.New(i2c)
	sensor.Configure()

	for {
		if err := sensor.Read(); err != nil {
			handleReadFailure()
			time.Sleep(RETRY_INTERVAL_MS * time.Millisecond)
			continue
		}
		failures = 0

		outputSample(sensor.DeciCelsius(), sensor.DeciRelHumidity())
		toggleLED()

		time.Sleep(SAMPLE_INTERVAL_MS * time.Millisecond)
	}
}

// handleReadFailure resets the sensor after too many consecutive failed reads.
func handleReadFailure() {
	failures++
	if failures < MAX_READ_FAILURES {
		return
	}

	sensor.Reset()
	time.Sleep(20 * time.Millisecond)
	sensor.Configure()
	failures = 0
}

func outputSample(deciCelsius, deciRH int32) {
	// Get timestamp in unix microseconds
	timestampMicros := time.Now().UnixNano() / 1000

	// Output format: "unix_micros,deci_celsius,deci_rh\n"
	// Example: "1234567890123,234,412\n" is 23.4 °C and 41.2 %RH
	print(timestampMicros)
	print(",")
	print(deciCelsius)
	print(",")
	print(deciRH)
	print("\n")
}

func toggleLED() {
	ledOn = !ledOn
	PIN_LED.Set(ledOn)
}
