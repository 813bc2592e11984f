package thm

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the standard baud rate for XIAO SAMD21.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default size for the samples channel buffer.
	DefaultBufferSize = 100
)

// Wire limits of the AHT20 readings, in tenths of a unit.
const (
	minDeciCelsius = -500
	maxDeciCelsius = 1500
	minDeciRH      = 0
	maxDeciRH      = 1000
)

// RawSample represents an uncalibrated measurement from the sensor board.
type RawSample struct {
	Timestamp   time.Time
	Temperature float32 // Raw temperature reading (°C)
	Humidity    float32 // Raw relative humidity reading (%RH)
}

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial represents a connection to the sensor board.
type Serial struct {
	port     string
	baudRate int
	bufSize  int

	conn      serial.Port
	samples   chan RawSample
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
	closed    bool // samples channel is closed
}

// New creates a new Serial instance with the specified port, baud rate, and buffer size.
func New(port string, baudRate int, bufSize int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:      port,
		baudRate:  baudRate,
		bufSize:   bufSize,
		samples:   make(chan RawSample, bufSize),
		ctx:       ctx,
		cancel:    cancel,
		connected: false,
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{
			Name:        name,
			Description: name,
		})
	}

	return result, nil
}

// Connect connects to the serial port and starts reading samples.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return fmt.Errorf("already connected")
	}
	if d.closed {
		return fmt.Errorf("device closed, create a new one to reconnect")
	}

	mode := &serial.Mode{
		BaudRate: d.baudRate,
	}

	port, err := serial.Open(d.port, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	d.conn = port
	d.connected = true

	go d.readSamples()

	return nil
}

// Close closes the connection and stops reading samples.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	d.cancel()

	if d.conn != nil {
		if err := d.conn.Close(); err != nil {
			logrus.WithField("port", d.port).Errorf("failed to close serial port: %v", err)
		}
		d.conn = nil
	}

	d.connected = false
	d.closed = true

	close(d.samples)

	return nil
}

// Samples returns the channel for reading samples.
func (d *Serial) Samples() <-chan RawSample {
	return d.samples
}

// IsConnected returns whether the device is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// readSamples reads from the serial port until the connection is closed.
func (d *Serial) readSamples() {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("panic in readSamples: %v", r)
		}
	}()

	d.mu.RLock()
	conn := d.conn
	d.mu.RUnlock()

	d.scan(conn)
}

// scan parses lines from r into RawSample values and forwards them to the
// samples channel.
func (d *Serial) scan(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for {
		select {
		case <-d.ctx.Done():
			return
		default:
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil && err != io.EOF {
					logrus.WithField("port", d.port).Errorf("failed to read from serial port: %v", err)
				}
				return
			}

			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			sample, err := parseLine(line)
			if err != nil {
				logrus.WithField("line", line).Warnf("failed to parse line: %v", err)
				continue
			}

			if !d.send(sample) {
				return
			}
		}
	}
}

// send forwards a sample without blocking. It reports false once the
// samples channel has been closed.
func (d *Serial) send(sample RawSample) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return false
	}

	select {
	case d.samples <- sample:
	default:
		logrus.Warn("samples channel full, dropping sample")
	}
	return true
}

// parseLine parses a line from the sensor board into a RawSample.
// Format: unix_micros,deci_celsius,deci_rh
// Example: 1234567890123,234,412
func parseLine(line string) (RawSample, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 3 {
		return RawSample{}, fmt.Errorf("invalid line format: expected 3 comma-separated values, got %d", len(parts))
	}

	timestampMicros, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return RawSample{}, fmt.Errorf("invalid timestamp: %w", err)
	}
	timestamp := time.UnixMicro(timestampMicros)

	deciC, err := strconv.ParseInt(parts[1], 10, 32)
	if err != nil {
		return RawSample{}, fmt.Errorf("invalid temperature: %w", err)
	}
	if deciC < minDeciCelsius || deciC > maxDeciCelsius {
		return RawSample{}, fmt.Errorf("temperature out of range: %d (%d..%d)", deciC, minDeciCelsius, maxDeciCelsius)
	}

	deciRH, err := strconv.ParseInt(parts[2], 10, 32)
	if err != nil {
		return RawSample{}, fmt.Errorf("invalid humidity: %w", err)
	}
	if deciRH < minDeciRH || deciRH > maxDeciRH {
		return RawSample{}, fmt.Errorf("humidity out of range: %d (%d..%d)", deciRH, minDeciRH, maxDeciRH)
	}

	return RawSample{
		Timestamp:   timestamp,
		Temperature: float32(deciC) / 10,
		Humidity:    float32(deciRH) / 10,
	}, nil
}

// FormatLine renders a RawSample in the wire format produced by the firmware.
func FormatLine(s RawSample) string {
	return fmt.Sprintf("%d,%d,%d",
		s.Timestamp.UnixMicro(),
		roundDeci(s.Temperature),
		roundDeci(s.Humidity),
	)
}

func roundDeci(v float32) int32 {
	if v < 0 {
		return int32(v*10 - 0.5)
	}
	return int32(v*10 + 0.5)
}
