package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/itohio/thmeter/pkg/sample"
	"github.com/itohio/thmeter/pkg/thm"
)

var errNoReading = errors.New("no reading available yet")

// ConvertRequest carries raw sensor values to calibrate.
type ConvertRequest struct {
	Temperature *float32 `json:"temperature" binding:"required"` // raw °C
	Humidity    *float32 `json:"humidity" binding:"required"`    // raw %RH
}

func (s *Server) getCalibration(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, s.cfg.Calibration.Coefficients())
}

func (s *Server) getReading(c *gin.Context) {
	latest, ok := s.meter.Latest()
	if !ok {
		_ = c.AbortWithError(http.StatusNotFound, errNoReading)
		return
	}
	c.IndentedJSON(http.StatusOK, latest)
}

func (s *Server) getStats(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, s.meter.Stats())
}

func (s *Server) getSamples(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, s.meter.Samples())
}

func (s *Server) convert(c *gin.Context) {
	var req ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	raw := thm.RawSample{
		Timestamp:   time.Now(),
		Temperature: *req.Temperature,
		Humidity:    *req.Humidity,
	}
	if err := sample.Validate(raw, s.cfg.Limits); err != nil {
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	c.IndentedJSON(http.StatusOK, sample.Calibrate(raw, s.cfg.Calibration.Coefficients(), s.cfg.Measurement.ClampHumidity))
}
