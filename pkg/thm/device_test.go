package thm

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    RawSample
		wantErr bool
	}{
		{
			name: "valid line - room conditions",
			line: "1234567890123,234,412",
			want: RawSample{
				Timestamp:   time.UnixMicro(1234567890123),
				Temperature: 23.4,
				Humidity:    41.2,
			},
		},
		{
			name: "valid line - below freezing",
			line: "1234567890123,-125,880",
			want: RawSample{
				Timestamp:   time.UnixMicro(1234567890123),
				Temperature: -12.5,
				Humidity:    88.0,
			},
		},
		{
			name: "valid line - sensor limits",
			line: "1234567890123,1500,1000",
			want: RawSample{
				Timestamp:   time.UnixMicro(1234567890123),
				Temperature: 150,
				Humidity:    100,
			},
		},
		{
			name: "valid line - zero",
			line: "1234567890123,0,0",
			want: RawSample{
				Timestamp: time.UnixMicro(1234567890123),
			},
		},
		{
			name:    "invalid - wrong number of fields",
			line:    "1234567890123,234",
			wantErr: true,
		},
		{
			name:    "invalid - too many fields",
			line:    "1234567890123,234,412,extra",
			wantErr: true,
		},
		{
			name:    "invalid - non-numeric timestamp",
			line:    "abc,234,412",
			wantErr: true,
		},
		{
			name:    "invalid - non-numeric temperature",
			line:    "1234567890123,abc,412",
			wantErr: true,
		},
		{
			name:    "invalid - float temperature",
			line:    "1234567890123,23.4,412",
			wantErr: true,
		},
		{
			name:    "invalid - temperature too low",
			line:    "1234567890123,-501,412",
			wantErr: true,
		},
		{
			name:    "invalid - temperature too high",
			line:    "1234567890123,1501,412",
			wantErr: true,
		},
		{
			name:    "invalid - negative humidity",
			line:    "1234567890123,234,-1",
			wantErr: true,
		},
		{
			name:    "invalid - humidity too high",
			line:    "1234567890123,234,1001",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseLine(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want.Timestamp.UnixNano(), got.Timestamp.UnixNano())
				assert.InDelta(t, tt.want.Temperature, got.Temperature, 1e-5)
				assert.InDelta(t, tt.want.Humidity, got.Humidity, 1e-5)
			}
		})
	}
}

func TestFormatLine(t *testing.T) {
	s := RawSample{
		Timestamp:   time.UnixMicro(1234567890123),
		Temperature: -12.5,
		Humidity:    41.2,
	}

	line := FormatLine(s)
	assert.Equal(t, "1234567890123,-125,412", line)

	parsed, err := parseLine(line)
	require.NoError(t, err)
	assert.InDelta(t, s.Temperature, parsed.Temperature, 1e-5)
	assert.InDelta(t, s.Humidity, parsed.Humidity, 1e-5)
}

func TestNew(t *testing.T) {
	dev := New("COM3", 115200, 100)
	assert.NotNil(t, dev)
	assert.Equal(t, "COM3", dev.port)
	assert.Equal(t, 115200, dev.baudRate)
	assert.Equal(t, 100, dev.bufSize)
	assert.NotNil(t, dev.samples)
	assert.False(t, dev.IsConnected())
}

func TestNew_Defaults(t *testing.T) {
	dev := New("COM3", 0, 0)
	assert.NotNil(t, dev)
	assert.Equal(t, DefaultBaudRate, dev.baudRate)
	assert.Equal(t, DefaultBufferSize, dev.bufSize)
}

func TestSerial_Close_NotConnected(t *testing.T) {
	dev := New("COM3", 115200, 100)
	assert.NoError(t, dev.Close())
	assert.False(t, dev.IsConnected())
}

func TestSerial_Scan(t *testing.T) {
	dev := New("COM3", 115200, 10)

	input := strings.Join([]string{
		"1000000,234,412",
		"",
		"garbage",
		"2000000,-5,999",
		"3000000,2000,500", // out of range, skipped
		"  4000000,250,450  ",
	}, "\n")

	dev.scan(strings.NewReader(input))

	require.Len(t, dev.samples, 3)

	first := <-dev.samples
	assert.Equal(t, time.UnixMicro(1000000), first.Timestamp)
	assert.InDelta(t, 23.4, first.Temperature, 1e-5)
	assert.InDelta(t, 41.2, first.Humidity, 1e-5)

	second := <-dev.samples
	assert.InDelta(t, -0.5, second.Temperature, 1e-5)
	assert.InDelta(t, 99.9, second.Humidity, 1e-5)

	third := <-dev.samples
	assert.Equal(t, time.UnixMicro(4000000), third.Timestamp)
}

func TestSerial_Scan_DropsWhenFull(t *testing.T) {
	dev := New("COM3", 115200, 2)

	input := "1,100,100\n2,100,100\n3,100,100\n4,100,100\n"
	dev.scan(strings.NewReader(input))

	assert.Len(t, dev.samples, 2)
}

func TestSerial_Scan_StopsWhenCancelled(t *testing.T) {
	dev := New("COM3", 115200, 10)
	dev.cancel()

	dev.scan(strings.NewReader("1,100,100\n"))

	assert.Len(t, dev.samples, 0)
}

func TestSerial_Scan_StopsAfterClose(t *testing.T) {
	dev := New("COM3", 115200, 10)
	dev.mu.Lock()
	dev.connected = true
	dev.mu.Unlock()
	require.NoError(t, dev.Close())

	assert.NotPanics(t, func() {
		dev.scan(strings.NewReader("1,100,100\n2,100,100\n"))
	})
	assert.Error(t, dev.Connect(), "Closed device must not reconnect")
}
