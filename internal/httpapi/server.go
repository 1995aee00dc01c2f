package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/pingmore/internal/domain"
	apimw "github.com/hamed0406/pingmore/internal/httpapi/middleware"
	"github.com/hamed0406/pingmore/internal/probe"
	"github.com/hamed0406/pingmore/internal/repo"
)

// maxProbeTimeout caps what a caller may ask for so one request cannot pin a
// handler for long.
const maxProbeTimeout = time.Minute

type Server struct {
	Logger         *zap.Logger
	Results        repo.ResultStore
	Checker        probe.Checker
	DefaultTimeout time.Duration // applied when the request has none; 0 = none
}

func NewServer(l *zap.Logger, rs repo.ResultStore, c probe.Checker, defaultTimeout time.Duration) *Server {
	return &Server{Logger: l, Results: rs, Checker: c, DefaultTimeout: defaultTimeout}
}

// Limits configures the per-client rate limits for read and admin routes.
type Limits struct {
	PublicRPM, PublicBurst int
	AdminRPM, AdminBurst   int
}

func (s *Server) Router(keys apimw.Keys, allowedOrigins []string, limits Limits) http.Handler {
	r := chi.NewRouter()
	if len(allowedOrigins) == 0 {
		r.Use(cors.AllowAll().Handler)
	} else {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type", "X-API-Key"},
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api/probes", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(apimw.RequireAny(keys))
			r.Use(apimw.RateLimit(limits.PublicRPM, limits.PublicBurst))
			r.Get("/", s.handleListProbes)
			r.Post("/", s.handleProbe)
		})
		r.Group(func(r chi.Router) {
			r.Use(apimw.RequireAdmin(keys))
			r.Use(apimw.RateLimit(limits.AdminRPM, limits.AdminBurst))
			r.Delete("/", s.handleClearProbes)
		})
	})

	return r
}

type probePayload struct {
	Kind      string `json:"kind"`
	Target    string `json:"target"`
	Port      *int   `json:"port,omitempty"`
	Payload   string `json:"payload,omitempty"` // hex
	TimeoutMS *int64 `json:"timeout_ms,omitempty"`
}

func (p probePayload) args() domain.Args {
	a := domain.Args{Kind: p.Kind, Target: p.Target, Payload: p.Payload}
	if p.Port != nil {
		a.Port = strconv.Itoa(*p.Port)
	}
	if p.TimeoutMS != nil {
		ms := *p.TimeoutMS
		if ms > maxProbeTimeout.Milliseconds() {
			ms = maxProbeTimeout.Milliseconds()
		}
		a.Timeout = strconv.FormatFloat(float64(ms)/1000, 'f', -1, 64)
	}
	return a
}

func (s *Server) handleProbe(w http.ResponseWriter, r *http.Request) {
	var p probePayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "bad payload")
		return
	}

	req, err := domain.Validate(p.args())
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Msg)
			return
		}
		writeError(w, http.StatusBadRequest, "bad payload")
		return
	}
	if req.Timeout == nil && s.DefaultTimeout > 0 {
		d := s.DefaultTimeout
		req.Timeout = &d
	}
	if req.Timeout == nil || *req.Timeout > maxProbeTimeout {
		d := maxProbeTimeout
		req.Timeout = &d
	}

	out := s.Checker.Check(r.Context(), req)

	res := &domain.Result{
		Kind:      req.Kind,
		Target:    req.Target.String(),
		Port:      req.Port,
		Outcome:   out.Outcome.String(),
		LatencyMS: out.LatencyMS(),
		Message:   out.Message(),
		CheckedAt: time.Now().UTC(),
	}
	if err := s.Results.Append(r.Context(), res); err != nil {
		s.Logger.Warn("probe_store_error", zap.Error(err))
	}

	s.Logger.Info("probe",
		zap.String("kind", string(req.Kind)),
		zap.String("target", res.Target),
		zap.Uint16("port", req.Port),
		zap.String("outcome", res.Outcome),
		zap.Float64("latency_ms", res.LatencyMS),
		zap.String("message", res.Message),
	)

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListProbes(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "bad limit")
			return
		}
		limit = n
	}
	rs, err := s.Results.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list error")
		return
	}
	writeJSON(w, http.StatusOK, rs)
}

func (s *Server) handleClearProbes(w http.ResponseWriter, r *http.Request) {
	if err := s.Results.Clear(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "clear error")
		return
	}
	s.Logger.Info("probes_cleared")
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
