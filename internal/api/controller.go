// Package api serves the solar and shading engine over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/chrissnell/roofsolar/internal/log"
	"github.com/chrissnell/roofsolar/pkg/config"
	"github.com/chrissnell/roofsolar/pkg/responseformat"
)

// Controller owns the HTTP server and the configuration it serves from
type Controller struct {
	ctx            context.Context
	wg             *sync.WaitGroup
	configProvider config.ConfigProvider
	serverConfig   config.ServerData
	analysis       config.AnalysisData
	sites          []config.SiteData
	Server         http.Server
	logger         *zap.SugaredLogger
	handlers       *Handlers

	// now is replaced in tests to pin report times
	now func() time.Time
}

// NewController loads the configuration and builds the router
func NewController(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, logger *zap.SugaredLogger) (*Controller, error) {
	cfgData, err := configProvider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}

	ctrl := &Controller{
		ctx:            ctx,
		wg:             wg,
		configProvider: configProvider,
		serverConfig:   cfgData.Server,
		analysis:       cfgData.Analysis,
		sites:          cfgData.Sites,
		logger:         logger,
		now:            time.Now,
	}

	if cfgData.Server.ListenAddr == "" {
		logger.Infof("server.listen-addr not provided; defaulting to %s (all interfaces)", config.DefaultListenAddr)
	}
	if cfgData.Server.Port == 0 {
		logger.Infof("server.port not provided; defaulting to %d", config.DefaultPort)
	}
	if len(ctrl.sites) == 0 {
		logger.Info("no sites configured; only the stateless endpoints will return data")
	}

	ctrl.handlers = NewHandlers(ctrl, responseformat.NewFormatter(cfgData.Server.EnableCORS))

	ctrl.Server.Addr = cfgData.Server.Address()
	ctrl.Server.Handler = ctrl.setupRouter()
	ctrl.Server.ReadHeaderTimeout = 10 * time.Second
	ctrl.Server.ErrorLog = zap.NewStdLog(log.GetZapLogger())

	return ctrl, nil
}

// StartController starts the HTTP server and stops it when the context is cancelled
func (c *Controller) StartController() error {
	c.logger.Infof("starting HTTP API on %s", c.Server.Addr)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		var err error
		if c.serverConfig.TLSEnabled() {
			err = c.Server.ListenAndServeTLS(c.serverConfig.TLSCertPath, c.serverConfig.TLSKeyPath)
		} else {
			err = c.Server.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			c.logger.Errorf("HTTP API error: %v", err)
		}
	}()

	go func() {
		<-c.ctx.Done()
		c.logger.Info("shutting down the HTTP API...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.Server.Shutdown(shutdownCtx); err != nil {
			c.logger.Errorf("HTTP API shutdown: %v", err)
		}
	}()

	return nil
}

// Handler exposes the router, e.g. for httptest
func (c *Controller) Handler() http.Handler {
	return c.Server.Handler
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()

	router.Use(requestIDMiddleware)
	router.Use(requestLogMiddleware)

	if c.serverConfig.EnableCORS {
		router.Use(mux.CORSMethodMiddleware(router))
		router.Use(preflightMiddleware)
	}

	v1 := router.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/position", c.handlers.GetPosition).Methods(c.methods(http.MethodGet)...)
	v1.HandleFunc("/tilt", c.handlers.GetTilt).Methods(c.methods(http.MethodGet)...)
	v1.HandleFunc("/hourly", c.handlers.PostHourly).Methods(c.methods(http.MethodPost)...)
	v1.HandleFunc("/shading", c.handlers.PostShading).Methods(c.methods(http.MethodPost)...)
	v1.HandleFunc("/obstacles/estimate", c.handlers.PostEstimateObstacles).Methods(c.methods(http.MethodPost)...)
	v1.HandleFunc("/sites", c.handlers.GetSites).Methods(c.methods(http.MethodGet)...)
	v1.HandleFunc("/sites/{name}/report", c.handlers.GetSiteReport).Methods(c.methods(http.MethodGet)...)
	v1.HandleFunc("/logs/http", c.handlers.GetHTTPLogs).Methods(c.methods(http.MethodGet)...)
	router.HandleFunc("/health", c.handlers.GetHealth).Methods(http.MethodGet)

	return router
}

// methods adds OPTIONS to a route's method when browsers may send preflights
func (c *Controller) methods(method string) []string {
	if c.serverConfig.EnableCORS {
		return []string{method, http.MethodOptions}
	}
	return []string{method}
}

// findSite looks a configured site up by name
func (c *Controller) findSite(name string) (config.SiteData, bool) {
	return config.FindSite(c.sites, name)
}
