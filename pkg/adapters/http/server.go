// Package http exposes the mission pipeline over REST: validate and compile
// missions, resolve mandate approvals, run preflight checks and inspect
// evidence bundles.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	brain "github.com/intent-solutions-io/iam-bobs-brain-sub000"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/internal/compiler"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/internal/logging"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/domain"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/gate"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/observability"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/ports"
	"github.com/intent-solutions-io/iam-bobs-brain-sub000/pkg/schema"
)

// Server wires the compiler, gate ledger and evidence store behind HTTP
// handlers. Compiled mandates are held in memory, keyed by mandate ID, so
// approval endpoints can resolve them later.
type Server struct {
	compiler  *compiler.Compiler
	ledger    *gate.Ledger
	approvals *gate.ApprovalManager
	store     ports.ManifestStore
	metrics   *observability.Metrics
	logger    *slog.Logger

	mu       sync.RWMutex
	mandates map[string]*domain.Mandate
}

// ServerOption configures the Server.
type ServerOption func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics attaches pipeline metrics.
func WithMetrics(m *observability.Metrics) ServerOption {
	return func(s *Server) {
		s.metrics = m
	}
}

// NewServer creates the HTTP server facade.
func NewServer(c *compiler.Compiler, ledger *gate.Ledger, approvals *gate.ApprovalManager, store ports.ManifestStore, opts ...ServerOption) *Server {
	s := &Server{
		compiler:  c,
		ledger:    ledger,
		approvals: approvals,
		store:     store,
		logger:    logging.NewNop(),
		mandates:  make(map[string]*domain.Mandate),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the chi router. When a Prometheus registry is supplied,
// /metrics is mounted on it.
func (s *Server) Handler(reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.getHealth)
	r.Get("/info", s.getInfo)
	if reg != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/missions/validate", s.postValidate)
		r.Post("/missions/compile", s.postCompile)
		r.Post("/preflight", s.postPreflight)
		r.Post("/mandates/{mandateID}/approve", s.postApprove)
		r.Post("/mandates/{mandateID}/deny", s.postDeny)
		r.Get("/bundles", s.listBundles)
		r.Get("/bundles/{bundleID}", s.getBundle)
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "brain-http",
		"version": brain.Version,
	})
}

// postValidate accepts a raw mission document (YAML or JSON) and reports
// every finding. Exit semantics mirror the CLI: parse failures and rule
// violations both land in errors.
func (s *Server) postValidate(w http.ResponseWriter, r *http.Request) {
	mission, err := s.decodeMission(r)
	if err != nil {
		s.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"valid":  false,
			"errors": []string{err.Error()},
		})
		return
	}

	res := s.compiler.Compile(mission)
	if !res.Success {
		s.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"valid":  false,
			"errors": res.Errors,
		})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"valid":    true,
		"warnings": res.Warnings,
	})
}

func (s *Server) postCompile(w http.ResponseWriter, r *http.Request) {
	mission, err := s.decodeMission(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res := s.compiler.Compile(mission)
	if s.metrics != nil {
		tasks := 0
		if res.Plan != nil {
			tasks = len(res.Plan.Tasks)
		}
		s.metrics.ObserveCompile(res.Success, tasks)
	}
	if !res.Success {
		s.writeJSON(w, http.StatusUnprocessableEntity, res)
		return
	}

	s.registerMandate(res.Mandate)
	s.logger.Info("mission compiled",
		"mission_id", mission.MissionID,
		"plan_id", res.Plan.PlanID,
		"tasks", len(res.Plan.Tasks),
	)
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) decodeMission(r *http.Request) (*domain.MissionSpec, error) {
	defer r.Body.Close()
	data, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("request body is empty")
	}
	return schema.ParseMission(data)
}

func (s *Server) registerMandate(m *domain.Mandate) {
	if m == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mandates[m.MandateID] = m
}

func (s *Server) mandate(id string) (*domain.Mandate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.mandates[id]
	return m, ok
}

type preflightRequest struct {
	Specialist string   `json:"specialist"`
	RiskTier   string   `json:"risk_tier"`
	MandateID  string   `json:"mandate_id,omitempty"`
	Tools      []string `json:"tools,omitempty"`
}

func (s *Server) postPreflight(w http.ResponseWriter, r *http.Request) {
	var req preflightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tier, err := domain.ParseRiskTier(req.RiskTier)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var mandate *domain.Mandate
	if req.MandateID != "" {
		m, ok := s.mandate(req.MandateID)
		if !ok {
			s.writeError(w, http.StatusNotFound, fmt.Sprintf("mandate %q not found", req.MandateID))
			return
		}
		mandate = m
	}

	results, err := s.ledger.Preflight(r.Context(), gate.CheckRequest{
		Specialist: req.Specialist,
		RiskTier:   tier,
		Mandate:    mandate,
		Tools:      req.Tools,
	})
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if s.metrics != nil {
		for _, res := range results {
			s.metrics.ObserveGate(res.GateName, res.Allowed, res.BlockingRequirement)
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"allowed": gate.Allowed(results),
		"results": results,
	})
}

type approvalRequest struct {
	ApproverID string `json:"approver_id"`
}

func (s *Server) postApprove(w http.ResponseWriter, r *http.Request) {
	s.resolveApproval(w, r, s.approvals.Approve)
}

func (s *Server) postDeny(w http.ResponseWriter, r *http.Request) {
	s.resolveApproval(w, r, s.approvals.Deny)
}

func (s *Server) resolveApproval(w http.ResponseWriter, r *http.Request, resolve func(context.Context, *domain.Mandate, string) error) {
	mandateID := chi.URLParam(r, "mandateID")
	m, ok := s.mandate(mandateID)
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("mandate %q not found", mandateID))
		return
	}

	var req approvalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ApproverID == "" {
		s.writeError(w, http.StatusBadRequest, "approver_id is required")
		return
	}

	if err := resolve(r.Context(), m, req.ApproverID); err != nil {
		s.writeError(w, http.StatusConflict, err.Error())
		return
	}
	if s.metrics != nil {
		s.metrics.ApprovalsTotal.WithLabelValues(string(m.ApprovalState)).Inc()
	}
	s.writeJSON(w, http.StatusOK, m.Snapshot())
}

func (s *Server) listBundles(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"bundles": ids})
}

func (s *Server) getBundle(w http.ResponseWriter, r *http.Request) {
	bundleID := chi.URLParam(r, "bundleID")
	manifest, err := s.store.Load(r.Context(), bundleID)
	if err != nil {
		if errors.Is(err, domain.ErrManifestNotFound) {
			s.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, manifest)
}
