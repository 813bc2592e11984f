package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/thmeter/pkg/cal"
	"github.com/itohio/thmeter/pkg/config"
	"github.com/itohio/thmeter/pkg/meter"
	"github.com/itohio/thmeter/pkg/sample"
)

func newTestServer(t *testing.T, samples ...sample.Sample) *Server {
	t.Helper()

	cfg := config.Default()
	m := meter.New(cfg)

	input := make(chan sample.Sample, len(samples))
	for _, s := range samples {
		input <- s
	}
	close(input)
	m.ProcessSamples(input)

	return New(cfg, m)
}

func do(s *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestGetCalibration(t *testing.T) {
	s := newTestServer(t)

	w := do(s, http.MethodGet, "/calibration", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got cal.Coefficients
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, cal.Default(), got)
}

func TestGetReading(t *testing.T) {
	t.Run("no samples", func(t *testing.T) {
		s := newTestServer(t)
		w := do(s, http.MethodGet, "/reading", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("latest sample", func(t *testing.T) {
		now := time.Now()
		s := newTestServer(t,
			sample.Sample{Timestamp: now, Temperature: 20, Humidity: 40},
			sample.Sample{Timestamp: now.Add(time.Second), Temperature: 21.5, Humidity: 42, DewPoint: 8},
		)

		w := do(s, http.MethodGet, "/reading", "")
		require.Equal(t, http.StatusOK, w.Code)

		var got sample.Sample
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, float32(21.5), got.Temperature)
		assert.Equal(t, float32(42), got.Humidity)
		assert.Equal(t, float32(8), got.DewPoint)
	})
}

func TestGetStats(t *testing.T) {
	now := time.Now()
	s := newTestServer(t,
		sample.Sample{Timestamp: now, Temperature: 20, Humidity: 40},
		sample.Sample{Timestamp: now.Add(time.Minute), Temperature: 22, Humidity: 44},
	)

	w := do(s, http.MethodGet, "/stats", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got meter.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 2, got.Count)
	assert.Equal(t, float32(20), got.Temperature.Min)
	assert.Equal(t, float32(22), got.Temperature.Max)
	assert.InDelta(t, 2, got.TemperatureRate, 1e-4)
}

func TestGetSamples(t *testing.T) {
	now := time.Now()
	s := newTestServer(t,
		sample.Sample{Timestamp: now, Temperature: 20},
		sample.Sample{Timestamp: now.Add(time.Second), Temperature: 21},
		sample.Sample{Timestamp: now.Add(2 * time.Second), Temperature: 22},
	)

	w := do(s, http.MethodGet, "/samples", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got []sample.Sample
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 3)
	assert.Equal(t, float32(20), got[0].Temperature)
	assert.Equal(t, float32(22), got[2].Temperature)
}

func TestConvert(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantT    float32
		wantRH   float32
	}{
		{
			name:     "zero raw gives intercepts",
			body:     `{"temperature": 0, "humidity": 0}`,
			wantCode: http.StatusOK,
			wantT:    cal.TempIntercept,
			wantRH:   cal.RhumIntercept,
		},
		{
			name:     "unit raw",
			body:     `{"temperature": 1, "humidity": 1}`,
			wantCode: http.StatusOK,
			wantT:    -1.9859,
			wantRH:   19.5940,
		},
		{
			name:     "invalid json",
			body:     `{"temperature": `,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "missing humidity",
			body:     `{"temperature": 20}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "temperature out of range",
			body:     `{"temperature": 200, "humidity": 50}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "humidity out of range",
			body:     `{"temperature": 20, "humidity": -5}`,
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(s, http.MethodPost, "/convert", tt.body)
			require.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode != http.StatusOK {
				return
			}

			var got sample.Sample
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.InDelta(t, tt.wantT, got.Temperature, 1e-4)
			assert.InDelta(t, tt.wantRH, got.Humidity, 1e-4)
		})
	}
}

func TestServe_GracefulShutdown(t *testing.T) {
	s := newTestServer(t)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Serve(ctx, l)
	}()

	resp, err := http.Get("http://" + l.Addr().String() + "/calibration")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Server did not shut down within timeout")
	}
}
