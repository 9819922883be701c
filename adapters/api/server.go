// Package api serves the flowops REST API over the use cases of a process.
package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kompox/flowops/internal/logging"
	"github.com/kompox/flowops/internal/services"
	"github.com/kompox/flowops/internal/version"
	"github.com/kompox/flowops/usecase/workspace"
)

// Request headers.
const (
	HeaderWorkspace  = "X-Flowops-Workspace"
	HeaderAPIVersion = "X-Flowops-Api-Version"
)

// Server routes API requests to the use cases.
type Server struct {
	svc    *services.Services
	router *mux.Router
}

// New builds the router.
func New(svc *services.Services) *Server {
	s := &Server{svc: svc, router: mux.NewRouter().UseEncodedPath()}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	if s.svc.Metrics != nil {
		s.router.Handle("/metrics", s.svc.Metrics.Handler()).Methods(http.MethodGet)
	}
	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(s.logRequests, checkAPIVersion)
	api.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	api.HandleFunc("/version", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"version":     version.Version,
			"api_version": version.APIVersion,
			"commit":      version.Commit,
		})
	}).Methods(http.MethodGet)

	s.workspaceRoutes(api.PathPrefix("/workspaces").Subrouter())

	scoped := api.NewRoute().Subrouter()
	scoped.Use(s.resolveWorkspace)
	s.flowRoutes(scoped.PathPrefix("/flows").Subrouter())
	s.deploymentRoutes(scoped.PathPrefix("/deployments").Subrouter())
	s.workPoolRoutes(scoped.PathPrefix("/work_pools").Subrouter())
	s.flowRunRoutes(scoped.PathPrefix("/flow_runs").Subrouter())
	s.eventRoutes(scoped.PathPrefix("/events").Subrouter())
	s.automationRoutes(scoped.PathPrefix("/automations").Subrouter())
	s.incidentRoutes(scoped.PathPrefix("/incidents").Subrouter())
	s.artifactRoutes(scoped.PathPrefix("/artifacts").Subrouter())
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logging.FromContext(r.Context()).Debug(r.Context(), "API request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func checkAPIVersion(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if v := r.Header.Get(HeaderAPIVersion); v != "" {
			if err := version.CheckAPI(v); err != nil {
				writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

type workspaceKey struct{}

// resolveWorkspace scopes a request to the workspace named by the header.
// Without the header the default workspace is used and created on demand.
func (s *Server) resolveWorkspace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ref := r.Header.Get(HeaderWorkspace)
		out, err := s.svc.Workspaces.Resolve(r.Context(), &workspace.ResolveInput{Ref: ref, Create: ref == "" || ref == workspace.DefaultName})
		if err != nil {
			writeError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), workspaceKey{}, out.Workspace.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func workspaceID(r *http.Request) string {
	id, _ := r.Context().Value(workspaceKey{}).(string)
	return id
}
