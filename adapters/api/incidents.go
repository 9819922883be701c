package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kompox/flowops/usecase/artifact"
	"github.com/kompox/flowops/usecase/incident"
)

func (s *Server) incidentRoutes(r *mux.Router) {
	r.HandleFunc("", s.listIncidents).Methods(http.MethodGet)
	r.HandleFunc("", s.declareIncident).Methods(http.MethodPost)
	r.HandleFunc("/{id}", s.getIncident).Methods(http.MethodGet)
	r.HandleFunc("/{id}/resolve", s.resolveIncident).Methods(http.MethodPost)
}

func (s *Server) listIncidents(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.Incidents.List(r.Context(), &incident.ListInput{WorkspaceID: workspaceID(r), Status: r.URL.Query().Get("status")})
	reply(w, r, http.StatusOK, out, err)
}

func (s *Server) declareIncident(w http.ResponseWriter, r *http.Request) {
	var in incident.DeclareInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.WorkspaceID = workspaceID(r)
	out, err := s.svc.Incidents.Declare(r.Context(), &in)
	reply(w, r, http.StatusCreated, out, err)
}

func (s *Server) getIncident(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.Incidents.Get(r.Context(), &incident.GetInput{WorkspaceID: workspaceID(r), ID: pathVar(r, "id")})
	reply(w, r, http.StatusOK, out, err)
}

func (s *Server) resolveIncident(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.Incidents.Resolve(r.Context(), &incident.ResolveInput{WorkspaceID: workspaceID(r), ID: pathVar(r, "id")})
	reply(w, r, http.StatusOK, out, err)
}

func (s *Server) artifactRoutes(r *mux.Router) {
	r.HandleFunc("", s.listArtifacts).Methods(http.MethodGet)
	r.HandleFunc("", s.createArtifact).Methods(http.MethodPost)
	r.HandleFunc("/latest/{key}", s.latestArtifact).Methods(http.MethodGet)
	r.HandleFunc("/{id}", s.getArtifact).Methods(http.MethodGet)
}

func (s *Server) listArtifacts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, err := s.svc.Artifacts.List(r.Context(), &artifact.ListInput{
		WorkspaceID: workspaceID(r),
		Key:         q.Get("key"),
		FlowRunID:   q.Get("flow_run_id"),
	})
	reply(w, r, http.StatusOK, out, err)
}

func (s *Server) createArtifact(w http.ResponseWriter, r *http.Request) {
	var in artifact.CreateInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.WorkspaceID = workspaceID(r)
	out, err := s.svc.Artifacts.Create(r.Context(), &in)
	reply(w, r, http.StatusCreated, out, err)
}

func (s *Server) latestArtifact(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.Artifacts.Latest(r.Context(), &artifact.LatestInput{WorkspaceID: workspaceID(r), Key: pathVar(r, "key")})
	reply(w, r, http.StatusOK, out, err)
}

func (s *Server) getArtifact(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.Artifacts.Get(r.Context(), &artifact.GetInput{WorkspaceID: workspaceID(r), ID: pathVar(r, "id")})
	reply(w, r, http.StatusOK, out, err)
}
