// Package httpapi is the orchestrator's HTTP surface: POST /api/v1/bridge
// (best-of-N) and POST /api/v1/bridge/multi (the full pipeline).
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/agentwrangler/awcore/internal/config"
	"github.com/agentwrangler/awcore/internal/orchestrator"
	"github.com/agentwrangler/awcore/pkg/models"
)

const (
	minAgents = 0
	maxAgents = 8
)

// Server wires an Orchestrator and the configured agent pools onto the
// orchestrator's HTTP contract.
type Server struct {
	orch   *orchestrator.Orchestrator
	agents config.AgentConfig
	logger *log.Logger
}

// NewServer creates a Server. logger defaults to log.Default() if nil.
func NewServer(orch *orchestrator.Orchestrator, agents config.AgentConfig, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{orch: orch, agents: agents, logger: logger}
}

// Handler builds the mux for the orchestrator's HTTP surface.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/v1/bridge", errHandlerFunc(s.logger, s.handleBridge))
	mux.Handle("/api/v1/bridge/multi", errHandlerFunc(s.logger, s.handleBridgeMulti))
	return mux
}

// errHandlerFunc adapts a handler that can fail into a plain
// http.Handler, writing the error as a JSON body with a status code
// chosen by statusFor.
func errHandlerFunc(logger *log.Logger, h func(w http.ResponseWriter, r *http.Request) error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			logger.Printf("httpapi: serving error: %v", err)
			writeError(w, statusFor(err), err.Error())
		}
	})
}

func statusFor(err error) int {
	var pipeErr *orchestrator.PipelineError
	if errors.As(err, &pipeErr) {
		return http.StatusBadGateway
	}
	var inputErr *inputError
	if errors.As(err, &inputErr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

type inputError struct{ reason string }

func (e *inputError) Error() string { return e.reason }

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}

func clampCount(urls []string, n int) []string {
	if n > len(urls) {
		n = len(urls)
	}
	if n < 0 {
		n = 0
	}
	return urls[:n]
}

type bridgeRequest struct {
	Task     string `json:"task"`
	Builders int    `json:"builders"`
}

type bestOfNResponse struct {
	CandidateDiffs []string               `json:"candidate_diffs"`
	CandidateTests []models.TestRunResult `json:"candidate_tests"`
	WinnerIndex    int                    `json:"winner_index"`
}

func toBestOfNResponse(r models.BestOfNResult) bestOfNResponse {
	return bestOfNResponse{
		CandidateDiffs: r.CandidateDiffs(),
		CandidateTests: r.CandidateTests(),
		WinnerIndex:    r.WinnerIndex,
	}
}

func (s *Server) handleBridge(w http.ResponseWriter, r *http.Request) error {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return nil
	}

	var req bridgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return nil
	}
	if req.Builders < 1 || req.Builders > maxAgents {
		writeError(w, http.StatusBadRequest, "builders must be in [1,8]")
		return nil
	}

	builderURLs := clampCount(s.agents.BuilderURLs, req.Builders)
	if len(builderURLs) < req.Builders {
		writeError(w, http.StatusBadRequest, "not enough builder agents configured")
		return nil
	}

	result, err := s.orch.BestOfN(r.Context(), req.Task, builderURLs)
	if err != nil {
		if isCancelled(r.Context(), err) {
			return nil
		}
		return err
	}
	return writeJSON(w, toBestOfNResponse(result))
}

type bridgeMultiRequest struct {
	Task        string `json:"task"`
	Builders    int    `json:"builders"`
	Reviewers   int    `json:"reviewers"`
	Specialists int    `json:"specialists"`
}

type reviewResponse struct {
	Score     float64 `json:"score"`
	Rationale string  `json:"rationale"`
}

type multiBridgeResponse struct {
	Plan          models.Plan          `json:"plan"`
	Base          bestOfNResponse      `json:"base"`
	AcceptedDiffs []string             `json:"accepted_diffs"`
	FinalTests    models.TestRunResult `json:"final_tests"`
	Review        reviewResponse       `json:"review"`
}

func toMultiBridgeResponse(r models.MultiBridgeResult) multiBridgeResponse {
	return multiBridgeResponse{
		Plan:          r.Plan,
		Base:          toBestOfNResponse(r.Base),
		AcceptedDiffs: r.AcceptedDiffs,
		FinalTests:    r.FinalTests,
		Review:        reviewResponse{Score: r.Review.Score, Rationale: r.Review.Rationale},
	}
}

func (s *Server) handleBridgeMulti(w http.ResponseWriter, r *http.Request) error {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return nil
	}

	var req bridgeMultiRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return nil
	}
	if req.Builders < 1 || req.Builders > maxAgents {
		writeError(w, http.StatusBadRequest, "builders must be in [1,8]")
		return nil
	}
	if req.Reviewers < minAgents || req.Reviewers > maxAgents {
		writeError(w, http.StatusBadRequest, "reviewers must be in [0,8]")
		return nil
	}
	if req.Specialists < minAgents || req.Specialists > maxAgents {
		writeError(w, http.StatusBadRequest, "specialists must be in [0,8]")
		return nil
	}

	builderURLs := clampCount(s.agents.BuilderURLs, req.Builders)
	if len(builderURLs) < req.Builders {
		writeError(w, http.StatusBadRequest, "not enough builder agents configured")
		return nil
	}
	reviewURLs := clampCount(s.agents.ReviewURLs, req.Reviewers)
	planURLs := clampCount(s.agents.PlanURLs, 1)
	if len(planURLs) == 0 {
		writeError(w, http.StatusBadRequest, "no plan agent configured")
		return nil
	}

	result, err := s.orch.Multi(r.Context(), orchestrator.MultiOpts{
		Task:                    req.Task,
		PlanURLs:                planURLs,
		BuilderURLs:             builderURLs,
		ReviewURLs:              reviewURLs,
		SpecialistsPerComponent: req.Specialists,
	})
	if err != nil {
		if isCancelled(r.Context(), err) {
			return nil
		}
		return err
	}
	return writeJSON(w, toMultiBridgeResponse(result))
}

func isCancelled(ctx context.Context, err error) bool {
	return ctx.Err() == context.Canceled && errors.Is(err, context.Canceled)
}
