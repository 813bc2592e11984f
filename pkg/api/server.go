// Package api exposes calibrated readings over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/itohio/thmeter/pkg/config"
	"github.com/itohio/thmeter/pkg/meter"
)

const shutdownTimeout = 5 * time.Second

// Server serves the read API for one meter.
type Server struct {
	cfg    *config.Config
	meter  meter.EnvMeter
	router *gin.Engine
}

// New creates a Server reading from m. Calibration and limits are taken from cfg.
func New(cfg *config.Config, m meter.EnvMeter) *Server {
	s := &Server{
		cfg:   cfg,
		meter: m,
	}
	s.router = s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	router.GET("/calibration", s.getCalibration)
	router.GET("/reading", s.getReading)
	router.GET("/stats", s.getStats)
	router.GET("/samples", s.getSamples)
	router.POST("/convert", s.convert)

	return router
}

// Handler returns the HTTP handler of the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	l, err := net.Listen("tcp", s.cfg.Server.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Server.Listen, err)
	}
	return s.Serve(ctx, l)
}

// Serve serves on l until ctx is done, then shuts the server down.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		errc <- srv.Serve(l)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	logrus.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown http server: %w", err)
	}
	return nil
}
