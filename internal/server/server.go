// Package server exposes the pricing engine over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/schema"

	"github.com/contactkeval/option-pricer/internal/config"
	"github.com/contactkeval/option-pricer/internal/data"
	"github.com/contactkeval/option-pricer/internal/engine"
	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/pricing"
)

// MaxPaths caps the per-request path count so one request cannot pin a CPU
// for minutes.
const MaxPaths = 5_000_000

// PriceRequest is the query string of GET /price. Zero values fall back to
// the server's base configuration. With a ticker, spot and volatility not
// given in the request come from market data.
type PriceRequest struct {
	Spot       float64  `schema:"spot"`
	Strike     float64  `schema:"strike"`
	Rate       *float64 `schema:"rate"`
	Volatility float64  `schema:"volatility"`
	Maturity   float64  `schema:"maturity"`
	Kind       string   `schema:"kind"`
	Paths      []int    `schema:"paths"`
	Seed       uint64   `schema:"seed"`
	Ticker     string   `schema:"ticker"`
}

// Server answers pricing requests over HTTP.
type Server struct {
	base    *config.Config
	prov    data.Provider
	decoder *schema.Decoder
}

// New returns a server pricing requests on top of base.
func New(base *config.Config, prov data.Provider) *Server {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	return &Server{base: base, prov: prov, decoder: decoder}
}

// Router returns the HTTP routes.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/price", s.handlePrice).Methods(http.MethodGet)
	return router
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("starting REST server on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Infof("shutting down REST server")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	logger.Debugf("received /price request: %s", r.URL.RawQuery)

	var req PriceRequest
	if err := s.decoder.Decode(&req, r.URL.Query()); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode query: %w", err))
		return
	}

	cfg, err := s.configFor(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := engine.NewEngine(cfg, s.prov).Run(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		logger.Errorf("encode response: %v", err)
	}
}

// configFor overlays the request onto a copy of the base configuration.
func (s *Server) configFor(req PriceRequest) (*config.Config, error) {
	cfg := *s.base
	cfg.Simulation.Paths = append([]int(nil), s.base.Simulation.Paths...)

	if req.Spot != 0 {
		cfg.Option.SetSpot(req.Spot)
	}
	if req.Strike != 0 {
		cfg.Option.Strike = req.Strike
	}
	if req.Rate != nil {
		cfg.Option.Rate = *req.Rate
	}
	if req.Volatility != 0 {
		cfg.Option.SetVolatility(req.Volatility)
	}
	if req.Maturity != 0 {
		cfg.Option.Maturity = req.Maturity
	}
	if req.Kind != "" {
		kind, err := pricing.ParseKind(req.Kind)
		if err != nil {
			return nil, err
		}
		cfg.Option.Kind = &kind
	}
	if cfg.Option.Kind == nil {
		return nil, fmt.Errorf("%w: kind query parameter required", pricing.ErrInvalidKind)
	}
	if len(req.Paths) > 0 {
		cfg.Simulation.Paths = req.Paths
	}
	for _, n := range cfg.Simulation.Paths {
		if n > MaxPaths {
			return nil, fmt.Errorf("%w: paths must be <= %d, got %d", pricing.ErrInvalidArgument, MaxPaths, n)
		}
	}
	if req.Seed != 0 {
		cfg.Simulation.Seed = req.Seed
	}
	if req.Ticker != "" {
		cfg.Market.Ticker = req.Ticker
	}
	// convergence studies are a CLI feature
	cfg.Simulation.Trials = 0
	return &cfg, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, pricing.ErrInvalidContract),
		errors.Is(err, pricing.ErrInvalidArgument),
		errors.Is(err, pricing.ErrInvalidKind):
		return http.StatusBadRequest
	case errors.Is(err, data.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.Errorf("request failed: %v", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
