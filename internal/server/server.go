// Package server exposes the backtest pipeline as a small JSON HTTP API.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rxtech-lab/ma-crossover/internal/backtest"
	"github.com/rxtech-lab/ma-crossover/internal/indicator"
	"github.com/rxtech-lab/ma-crossover/internal/logger"
	"github.com/rxtech-lab/ma-crossover/internal/types"
	"github.com/rxtech-lab/ma-crossover/pkg/errors"
	"go.uber.org/zap"
)

// dateLayouts are the accepted formats for the start and end query params.
var dateLayouts = []string{"2006-01-02", time.RFC3339}

// Server routes HTTP requests to the backtest engine.
type Server struct {
	engine *backtest.Engine
	log    *logger.Logger
	symbol string
	router *mux.Router
}

// New creates a Server running backtests for the given default symbol.
func New(engine *backtest.Engine, log *logger.Logger, symbol string) *Server {
	s := &Server{
		engine: engine,
		log:    log,
		symbol: symbol,
		router: mux.NewRouter(),
	}

	s.router.Use(s.corsMiddleware, s.loggingMiddleware)
	s.router.HandleFunc("/backtest/ma-crossover", s.handleBacktest).Methods(http.MethodGet, http.MethodOptions)

	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves the API on the given address until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	s.log.Info("serving backtest API", zap.String("addr", addr))

	server := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return server.ListenAndServe()
}

// handleBacktest runs the pipeline for the query parameters and writes the
// structured result. Errors are surfaced as an error envelope in a 200
// response, matching the error-in-body convention of the API consumers.
func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	request, err := s.parseRequest(r)
	if err != nil {
		s.writeError(w, err)

		return
	}

	result, err := s.engine.Run(r.Context(), request)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, result)
}

// parseRequest builds a backtest request from the query string, starting
// from the default configuration.
func (s *Server) parseRequest(r *http.Request) (backtest.Request, error) {
	query := r.URL.Query()
	config := backtest.DefaultConfig()

	start, err := parseDate(query.Get("start"))
	if err != nil {
		return backtest.Request{}, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid start date", err)
	}

	end, err := parseDate(query.Get("end"))
	if err != nil {
		return backtest.Request{}, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid end date", err)
	}

	if value := query.Get("fast_window"); value != "" {
		if config.FastWindow, err = strconv.Atoi(value); err != nil {
			return backtest.Request{}, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid fast_window", err)
		}
	}

	if value := query.Get("slow_window"); value != "" {
		if config.SlowWindow, err = strconv.Atoi(value); err != nil {
			return backtest.Request{}, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid slow_window", err)
		}
	}

	if value := query.Get("ma_kind"); value != "" {
		config.MAKind = indicator.Kind(value)
	}

	if value := query.Get("interval"); value != "" {
		config.Interval = types.Interval(value)
	}

	if value := query.Get("inverse"); value != "" {
		if config.Inverse, err = strconv.ParseBool(value); err != nil {
			return backtest.Request{}, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid inverse flag", err)
		}
	}

	floatParams := []struct {
		name   string
		target *float64
	}{
		{"stop_loss_points", &config.StopLossPoints},
		{"take_profit_points", &config.TakeProfitPoints},
		{"starting_balance", &config.StartingBalance},
		{"contract_multiplier", &config.ContractMultiplier},
	}

	for _, param := range floatParams {
		if value := query.Get(param.name); value != "" {
			if *param.target, err = strconv.ParseFloat(value, 64); err != nil {
				return backtest.Request{}, errors.Wrapf(errors.ErrCodeInvalidParameter, err, "invalid %s", param.name)
			}
		}
	}

	symbol := query.Get("symbol")
	if symbol == "" {
		symbol = s.symbol
	}

	return backtest.Request{
		Symbol: symbol,
		Start:  start,
		End:    end,
		Config: config,
	}, nil
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New(errors.ErrCodeInvalidParameter, "date is required")
	}

	var lastErr error

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}

		lastErr = err
	}

	return time.Time{}, lastErr
}

func (s *Server) writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.writeJSON(w, types.ErrorResult{Error: err.Error()})
}

// corsMiddleware allows any origin so a locally served frontend can call
// the API directly.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)

			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startedAt := time.Now()
		next.ServeHTTP(w, r)

		s.log.Info("handled request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(startedAt)),
		)
	})
}
