package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kompox/flowops/usecase/workspace"
)

func (s *Server) workspaceRoutes(r *mux.Router) {
	r.HandleFunc("", s.listWorkspaces).Methods(http.MethodGet)
	r.HandleFunc("", s.createWorkspace).Methods(http.MethodPost)
	r.HandleFunc("/{ref}", s.getWorkspace).Methods(http.MethodGet)
	r.HandleFunc("/{ref}", s.updateWorkspace).Methods(http.MethodPatch)
	r.HandleFunc("/{ref}", s.deleteWorkspace).Methods(http.MethodDelete)
}

func (s *Server) listWorkspaces(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.Workspaces.List(r.Context(), &workspace.ListInput{})
	reply(w, r, http.StatusOK, out, err)
}

func (s *Server) createWorkspace(w http.ResponseWriter, r *http.Request) {
	var in workspace.CreateInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := s.svc.Workspaces.Create(r.Context(), &in)
	reply(w, r, http.StatusCreated, out, err)
}

func (s *Server) workspaceRef(r *http.Request) (string, error) {
	out, err := s.svc.Workspaces.Resolve(r.Context(), &workspace.ResolveInput{Ref: pathVar(r, "ref")})
	if err != nil {
		return "", err
	}
	return out.Workspace.ID, nil
}

func (s *Server) getWorkspace(w http.ResponseWriter, r *http.Request) {
	id, err := s.workspaceRef(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := s.svc.Workspaces.Get(r.Context(), &workspace.GetInput{WorkspaceID: id})
	reply(w, r, http.StatusOK, out, err)
}

func (s *Server) updateWorkspace(w http.ResponseWriter, r *http.Request) {
	id, err := s.workspaceRef(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in workspace.UpdateInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.WorkspaceID = id
	out, err := s.svc.Workspaces.Update(r.Context(), &in)
	reply(w, r, http.StatusOK, out, err)
}

func (s *Server) deleteWorkspace(w http.ResponseWriter, r *http.Request) {
	id, err := s.workspaceRef(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := s.svc.Workspaces.Delete(r.Context(), &workspace.DeleteInput{WorkspaceID: id})
	reply(w, r, http.StatusOK, out, err)
}
