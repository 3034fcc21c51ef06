// Package server exposes CMR searches over HTTP as a small JSON proxy.
//
// Routes:
//
//	GET /collections   projected collection records
//	GET /granules      projected granule records
//	GET /healthz       liveness
//	GET /metrics       Prometheus metrics
//
// Search routes take the same filters as the command line as query
// parameters (bbox, start, end, level, concept_id, short_name, topic,
// term, variable, page_size). raw=true returns the CMR response
// unchanged, flat=true returns fully flattened records and refresh=true
// bypasses the response cache.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/simplecmr/internal/config"
	"github.com/matzehuels/simplecmr/pkg/errors"
	"github.com/matzehuels/simplecmr/pkg/integrations/cmr"
)

// WarningHeader carries query-building warnings to the caller.
const WarningHeader = "X-Cmr-Warning"

// Searcher runs a CMR search. *cmr.Client implements it.
type Searcher interface {
	Search(ctx context.Context, r cmr.Resource, q *cmr.Query, refresh bool) (*cmr.Response, error)
}

// Server is the HTTP proxy.
type Server struct {
	cfg    config.ServerConfig
	search Searcher
	logger *log.Logger
	router chi.Router
}

// New builds a server. Metrics are served from gatherer; nil uses the
// default Prometheus registry.
func New(search Searcher, cfg config.ServerConfig, logger *log.Logger, gatherer prometheus.Gatherer) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	s := &Server{cfg: cfg, search: search, logger: logger}

	r := chi.NewRouter()
	r.Use(Recover(logger))
	r.Use(RequestID())
	r.Use(Logging(logger))
	r.Use(CORS(cfg.AllowedOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/collections", s.handleSearch(cmr.ResourceCollections))
	r.Get("/granules", s.handleSearch(cmr.ResourceGranules))

	s.router = r
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on the configured address until ctx is done, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http listen", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleSearch(res cmr.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qs := r.URL.Query()
		f, err := ParseFilter(qs)
		if err != nil {
			s.writeError(w, err)
			return
		}
		q, err := f.Build()
		if err != nil {
			s.writeError(w, err)
			return
		}
		for _, warn := range q.Warnings {
			s.logger.Warn(warn)
			w.Header().Add(WarningHeader, warn)
		}

		resp, err := s.search.Search(r.Context(), res, q, qs.Get("refresh") == "true")
		if err != nil {
			s.writeError(w, err)
			return
		}

		var out any
		switch {
		case qs.Get("raw") == "true":
			out = resp
		case qs.Get("flat") == "true":
			out, err = resp.Flatten()
		default:
			out, err = cmr.Project(resp, res.Fields())
		}
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// ParseFilter reads search filters from query parameters. page_size
// defaults to cmr.DefaultMaxResults. level may be repeated or
// comma-separated.
func ParseFilter(qs map[string][]string) (cmr.Filter, error) {
	get := func(k string) string {
		if v := qs[k]; len(v) > 0 {
			return v[0]
		}
		return ""
	}

	f := cmr.Filter{
		BoundingBox: cmr.SplitBoundingBox(get("bbox")),
		StartTime:   get("start"),
		EndTime:     get("end"),
		ConceptID:   get("concept_id"),
		ShortName:   get("short_name"),
		Topic:       get("topic"),
		Term:        get("term"),
		Variable:    get("variable"),
		MaxResults:  cmr.DefaultMaxResults,
	}
	for _, v := range qs["level"] {
		for _, lvl := range strings.Split(v, ",") {
			if lvl = strings.TrimSpace(lvl); lvl != "" {
				f.ProcessingLevels = append(f.ProcessingLevels, lvl)
			}
		}
	}
	if v := get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, errors.Wrap(errors.ErrCodeInvalidInput, err, "page_size %q is not an integer", v)
		}
		f.MaxResults = n
	}
	return f, nil
}

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch code := errors.GetCode(err); {
	case errors.IsValidation(err):
		status = http.StatusBadRequest
	case code == errors.ErrCodeEmptyResult:
		status = http.StatusNotFound
	case code == errors.ErrCodeHTTPRequest:
		status = http.StatusBadGateway
	default:
		s.logger.Error("search failed", "err", err)
	}
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, status, errorBody{Code: code, Message: errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
