// Package restserver exposes the discharge engine over HTTP.
package restserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/chrissnell/streamflow/internal/log"
	"github.com/chrissnell/streamflow/internal/session"
	"github.com/chrissnell/streamflow/pkg/config"
	"github.com/chrissnell/streamflow/pkg/discharge"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Controller represents the REST server controller
type Controller struct {
	ctx           context.Context
	wg            *sync.WaitGroup
	serverConfig  config.ServerData
	defaultMethod discharge.Method
	Server        http.Server
	Registry      *session.Registry
	logger        *zap.SugaredLogger
	handlers      *Handlers
}

// NewController creates a new REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, logger *zap.SugaredLogger) (*Controller, error) {
	cfgData, err := configProvider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}

	method, err := discharge.ParseMethod(cfgData.Survey.DefaultMethod)
	if err != nil {
		return nil, fmt.Errorf("survey.default-method: %w", err)
	}
	if err := discharge.ValidateSurface(cfgData.Survey.DefaultConversionFactor, 0); err != nil {
		return nil, fmt.Errorf("survey.default-conversion-factor: %w", err)
	}

	ctrl := &Controller{
		ctx:           ctx,
		wg:            wg,
		serverConfig:  cfgData.Server,
		defaultMethod: method,
		Registry:      session.NewRegistry(logger, cfgData.Survey.DefaultConversionFactor),
		logger:        logger,
	}
	ctrl.handlers = NewHandlers(ctrl)

	ctrl.Server.Addr = cfgData.Server.Addr()
	ctrl.Server.Handler = ctrl.setupRouter()
	ctrl.Server.ReadHeaderTimeout = 10 * time.Second

	return ctrl, nil
}

// StartController starts the REST server and shuts it down when the context ends
func (c *Controller) StartController() error {
	log.Infof("Starting REST server on %s", c.Server.Addr)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		var err error
		if c.serverConfig.TLSEnabled() {
			err = c.Server.ListenAndServeTLS(c.serverConfig.Cert, c.serverConfig.Key)
		} else {
			err = c.Server.ListenAndServe()
		}
		if err != http.ErrServerClosed {
			log.Errorf("REST server error: %v", err)
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the REST server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c.Server.Shutdown(shutdownCtx)
	}()

	return nil
}

// Handler returns the router, for tests and embedding
func (c *Controller) Handler() http.Handler {
	return c.Server.Handler
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(c.loggingMiddleware)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", c.handlers.GetHealth).Methods(http.MethodGet)
	api.HandleFunc("/methods", c.handlers.GetMethods).Methods(http.MethodGet)
	api.HandleFunc("/discharge/{method}", c.handlers.ComputeDischarge).Methods(http.MethodPost)

	api.HandleFunc("/runs", c.handlers.ListRuns).Methods(http.MethodGet)
	api.HandleFunc("/runs", c.handlers.CreateRun).Methods(http.MethodPost)
	api.HandleFunc("/runs/{id}", c.handlers.GetRun).Methods(http.MethodGet)
	api.HandleFunc("/runs/{id}", c.handlers.ReselectRun).Methods(http.MethodPut)
	api.HandleFunc("/runs/{id}", c.handlers.DeleteRun).Methods(http.MethodDelete)
	api.HandleFunc("/runs/{id}/sections", c.handlers.AppendSection).Methods(http.MethodPost)
	api.HandleFunc("/runs/{id}/profile", c.handlers.GetProfile).Methods(http.MethodGet)

	return router
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}

// loggingMiddleware logs every request with its status and duration
func (c *Controller) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		fields := []interface{}{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"size", rec.size,
			"remote_addr", r.RemoteAddr,
		}
		if rec.status >= http.StatusInternalServerError {
			c.logger.Errorw("http request", fields...)
		} else {
			c.logger.Debugw("http request", fields...)
		}
	})
}
