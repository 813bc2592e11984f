package sample

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownsample_NoDownsampling(t *testing.T) {
	now := time.Now()
	samples := []Sample{
		{Timestamp: now, Temperature: 20.0, Humidity: 40},
		{Timestamp: now.Add(time.Second), Temperature: 20.1, Humidity: 40},
		{Timestamp: now.Add(2 * time.Second), Temperature: 20.2, Humidity: 40},
	}

	// Test with nil dst
	result := Downsample(nil, samples, 10)
	require.Equal(t, 3, len(result))
	assert.Equal(t, samples, result)

	// Test with sufficient capacity dst
	dst := make([]Sample, 0, 10)
	result = Downsample(dst, samples, 10)
	require.Equal(t, 3, len(result))
	assert.Equal(t, samples, result)
	// Should reuse dst
	assert.Equal(t, cap(dst), cap(result))
}

func TestDownsample_WithDownsampling(t *testing.T) {
	now := time.Now()
	samples := make([]Sample, 100)
	for i := range samples {
		samples[i] = Sample{
			Timestamp:   now.Add(time.Duration(i) * time.Second),
			Temperature: float32(i) * 0.1,
			Humidity:    50,
		}
	}

	dst := make([]Sample, 0, 20)
	result := Downsample(dst, samples, 10)
	require.Equal(t, 10, len(result))

	// Should always include first sample
	assert.Equal(t, samples[0], result[0])

	// Decimation covers the whole range
	assert.Equal(t, samples[90], result[9])
	assert.Equal(t, cap(dst), cap(result))
}

func TestDownsample_DestinationTooSmall(t *testing.T) {
	now := time.Now()
	samples := make([]Sample, 50)
	for i := range samples {
		samples[i] = Sample{Timestamp: now.Add(time.Duration(i) * time.Second)}
	}

	dst := make([]Sample, 0, 2)
	result := Downsample(dst, samples, 5)
	require.Len(t, result, 5)
	assert.GreaterOrEqual(t, cap(result), 5)

	result = Downsample(dst, samples[:3], 5)
	require.Len(t, result, 3)
}

func TestDownsample_ZeroPoints(t *testing.T) {
	samples := []Sample{{Temperature: 1}}
	assert.Empty(t, Downsample(nil, samples, 0))
}
