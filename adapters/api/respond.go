package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/kompox/flowops/domain/model"
	"github.com/kompox/flowops/internal/logging"
)

type errorBody struct {
	Error string `json:"error"`
}

var errBadRequest = errors.New("bad request")

var (
	notFound = []error{
		model.ErrWorkspaceNotFound, model.ErrFlowNotFound, model.ErrDeploymentNotFound,
		model.ErrWorkPoolNotFound, model.ErrFlowRunNotFound, model.ErrEventNotFound,
		model.ErrAutomationNotFound, model.ErrIncidentNotFound, model.ErrArtifactNotFound,
	}
	invalid = []error{
		errBadRequest,
		model.ErrWorkspaceInvalid, model.ErrFlowInvalid, model.ErrDeploymentInvalid,
		model.ErrScheduleInvalid, model.ErrWorkPoolInvalid, model.ErrFlowRunInvalid,
		model.ErrEventInvalid, model.ErrAutomationInvalid, model.ErrAutomationCycle,
		model.ErrIncidentInvalid, model.ErrArtifactInvalid,
	}
	conflict = []error{
		model.ErrWorkspaceConflict, model.ErrFlowConflict, model.ErrDeploymentConflict,
		model.ErrWorkPoolConflict, model.ErrInvalidStateTransition,
	}
)

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case isAny(err, notFound):
		return http.StatusNotFound
	case isAny(err, invalid):
		return http.StatusBadRequest
	case isAny(err, conflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		logging.FromContext(r.Context()).Error(r.Context(), "API request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

// reply writes out with status, or the error.
func reply(w http.ResponseWriter, r *http.Request, status int, out any, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, out)
}

// decode reads a JSON body into v. An empty body leaves v unchanged.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// pathVar returns the unescaped route variable, so "flow%2Fdeployment" reads
// as "flow/deployment".
func pathVar(r *http.Request, name string) string {
	v := mux.Vars(r)[name]
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

func queryInt(r *http.Request, name string) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", errBadRequest, name)
	}
	return n, nil
}
