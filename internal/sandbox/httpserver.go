package sandbox

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/agentwrangler/awcore/pkg/models"
)

// testRunRequest mirrors the STR's wire contract: a caller may submit a
// single diff via "diff" or an ordered list via "diffs". When both are
// present, "diffs" takes precedence.
type testRunRequest struct {
	Diff  string   `json:"diff"`
	Diffs []string `json:"diffs"`
}

func (req testRunRequest) resolveDiffs() []string {
	if len(req.Diffs) > 0 {
		return req.Diffs
	}
	if req.Diff != "" {
		return []string{req.Diff}
	}
	return nil
}

type testRunResponse struct {
	Total      int    `json:"total"`
	Passed     int    `json:"passed"`
	Failed     int    `json:"failed"`
	ReturnCode int    `json:"return_code"`
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
}

func toResponse(r models.TestRunResult) testRunResponse {
	return testRunResponse{
		Total:      r.Total,
		Passed:     r.Passed,
		Failed:     r.Failed,
		ReturnCode: r.ReturnCode,
		Stdout:     r.Stdout,
		Stderr:     r.Stderr,
	}
}

// errHandlerFunc adapts a handler that can fail into a plain http.Handler,
// writing a returned error as a JSON response with the status chosen by
// statusFor (422 for sandbox failures, 500 otherwise).
func errHandlerFunc(h func(w http.ResponseWriter, r *http.Request) error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			log.Printf("str: serving error: %v", err)
			writeError(w, statusFor(err), err.Error())
		}
	})
}

func statusFor(err error) int {
	switch err.(type) {
	case *CopyError, *PatchApplyError, *TestTimeoutError, *SubprocessSpawnError:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// Handler builds the STR's HTTP surface: POST /testrun.
func Handler(runner *Runner) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/testrun", errHandlerFunc(func(w http.ResponseWriter, r *http.Request) error {
		return handleTestRun(runner, w, r)
	}))
	return mux
}

func handleTestRun(runner *Runner, w http.ResponseWriter, r *http.Request) error {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return nil
	}

	var req testRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return nil
	}

	diffs := req.resolveDiffs()
	if len(diffs) == 0 {
		writeError(w, http.StatusBadRequest, "request must include diff or diffs")
		return nil
	}

	ctx := r.Context()
	result, err := runner.Run(ctx, diffs)
	if err != nil {
		if ctx.Err() == context.Canceled {
			return nil
		}
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(toResponse(result))
}
