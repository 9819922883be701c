package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kompox/flowops/domain/model"
	"github.com/kompox/flowops/usecase/flowrun"
)

func (s *Server) flowRunRoutes(r *mux.Router) {
	r.HandleFunc("", s.listFlowRuns).Methods(http.MethodGet)
	r.HandleFunc("", s.createFlowRun).Methods(http.MethodPost)
	r.HandleFunc("/{id}", s.getFlowRun).Methods(http.MethodGet)
	r.HandleFunc("/{id}", s.deleteFlowRun).Methods(http.MethodDelete)
	r.HandleFunc("/{id}/set_state", s.setFlowRunState).Methods(http.MethodPost)
	r.HandleFunc("/{id}/cancel", s.cancelFlowRun).Methods(http.MethodPost)
}

// listFlowRuns accepts repeated "state" query parameters.
func (s *Server) listFlowRuns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}
	in := &flowrun.ListInput{
		WorkspaceID:   workspaceID(r),
		DeploymentID:  q.Get("deployment_id"),
		FlowID:        q.Get("flow_id"),
		WorkPoolName:  q.Get("work_pool_name"),
		WorkQueueName: q.Get("work_queue_name"),
		Limit:         limit,
	}
	for _, st := range q["state"] {
		in.States = append(in.States, model.StateType(st))
	}
	out, err := s.svc.FlowRuns.List(r.Context(), in)
	reply(w, r, http.StatusOK, out, err)
}

func (s *Server) createFlowRun(w http.ResponseWriter, r *http.Request) {
	var in flowrun.CreateInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.WorkspaceID = workspaceID(r)
	out, err := s.svc.FlowRuns.Create(r.Context(), &in)
	status := http.StatusOK
	if out != nil && out.Created {
		status = http.StatusCreated
	}
	reply(w, r, status, out, err)
}

func (s *Server) getFlowRun(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.FlowRuns.Get(r.Context(), &flowrun.GetInput{WorkspaceID: workspaceID(r), FlowRunID: pathVar(r, "id")})
	reply(w, r, http.StatusOK, out, err)
}

func (s *Server) deleteFlowRun(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.FlowRuns.Delete(r.Context(), &flowrun.DeleteInput{WorkspaceID: workspaceID(r), FlowRunID: pathVar(r, "id")})
	reply(w, r, http.StatusOK, out, err)
}

func (s *Server) setFlowRunState(w http.ResponseWriter, r *http.Request) {
	var in flowrun.SetStateInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.WorkspaceID, in.FlowRunID = workspaceID(r), pathVar(r, "id")
	out, err := s.svc.FlowRuns.SetState(r.Context(), &in)
	reply(w, r, http.StatusOK, out, err)
}

func (s *Server) cancelFlowRun(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.FlowRuns.Cancel(r.Context(), &flowrun.CancelInput{WorkspaceID: workspaceID(r), FlowRunID: pathVar(r, "id")})
	reply(w, r, http.StatusOK, out, err)
}
