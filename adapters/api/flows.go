package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kompox/flowops/usecase/deployment"
	"github.com/kompox/flowops/usecase/flow"
)

func (s *Server) flowRoutes(r *mux.Router) {
	r.HandleFunc("", s.listFlows).Methods(http.MethodGet)
	r.HandleFunc("", s.registerFlow).Methods(http.MethodPost)
	r.HandleFunc("/{ref}", s.getFlow).Methods(http.MethodGet)
	r.HandleFunc("/{ref}", s.deleteFlow).Methods(http.MethodDelete)
}

func (s *Server) listFlows(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.Flows.List(r.Context(), &flow.ListInput{WorkspaceID: workspaceID(r), Tag: r.URL.Query().Get("tag")})
	reply(w, r, http.StatusOK, out, err)
}

func (s *Server) registerFlow(w http.ResponseWriter, r *http.Request) {
	var in flow.RegisterInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.WorkspaceID = workspaceID(r)
	out, err := s.svc.Flows.Register(r.Context(), &in)
	status := http.StatusOK
	if out != nil && out.Created {
		status = http.StatusCreated
	}
	reply(w, r, status, out, err)
}

func (s *Server) getFlow(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.Flows.Get(r.Context(), &flow.GetInput{WorkspaceID: workspaceID(r), Ref: pathVar(r, "ref")})
	reply(w, r, http.StatusOK, out, err)
}

func (s *Server) deleteFlow(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.Flows.Delete(r.Context(), &flow.DeleteInput{WorkspaceID: workspaceID(r), Ref: pathVar(r, "ref")})
	reply(w, r, http.StatusOK, out, err)
}

func (s *Server) deploymentRoutes(r *mux.Router) {
	r.HandleFunc("", s.listDeployments).Methods(http.MethodGet)
	r.HandleFunc("", s.createDeployment).Methods(http.MethodPost)
	r.HandleFunc("/{ref}", s.getDeployment).Methods(http.MethodGet)
	r.HandleFunc("/{ref}", s.updateDeployment).Methods(http.MethodPatch)
	r.HandleFunc("/{ref}", s.deleteDeployment).Methods(http.MethodDelete)
	r.HandleFunc("/{ref}/pause", s.pauseDeployment(true)).Methods(http.MethodPost)
	r.HandleFunc("/{ref}/resume", s.pauseDeployment(false)).Methods(http.MethodPost)
	r.HandleFunc("/{ref}/create_flow_run", s.runDeployment).Methods(http.MethodPost)
}

func (s *Server) listDeployments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, err := s.svc.Deployments.List(r.Context(), &deployment.ListInput{
		WorkspaceID:   workspaceID(r),
		FlowID:        q.Get("flow_id"),
		Tag:           q.Get("tag"),
		ScheduledOnly: q.Get("scheduled_only") == "true",
	})
	reply(w, r, http.StatusOK, out, err)
}

func (s *Server) createDeployment(w http.ResponseWriter, r *http.Request) {
	var in deployment.CreateInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.WorkspaceID = workspaceID(r)
	out, err := s.svc.Deployments.Create(r.Context(), &in)
	reply(w, r, http.StatusCreated, out, err)
}

func (s *Server) getDeployment(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.Deployments.Get(r.Context(), &deployment.GetInput{WorkspaceID: workspaceID(r), Ref: pathVar(r, "ref")})
	reply(w, r, http.StatusOK, out, err)
}

func (s *Server) updateDeployment(w http.ResponseWriter, r *http.Request) {
	var in deployment.UpdateInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.WorkspaceID, in.Ref = workspaceID(r), pathVar(r, "ref")
	out, err := s.svc.Deployments.Update(r.Context(), &in)
	reply(w, r, http.StatusOK, out, err)
}

func (s *Server) deleteDeployment(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.Deployments.Delete(r.Context(), &deployment.DeleteInput{WorkspaceID: workspaceID(r), Ref: pathVar(r, "ref")})
	reply(w, r, http.StatusOK, out, err)
}

func (s *Server) pauseDeployment(paused bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in := &deployment.PauseInput{WorkspaceID: workspaceID(r), Ref: pathVar(r, "ref")}
		var (
			out *deployment.PauseOutput
			err error
		)
		if paused {
			out, err = s.svc.Deployments.Pause(r.Context(), in)
		} else {
			out, err = s.svc.Deployments.Resume(r.Context(), in)
		}
		reply(w, r, http.StatusOK, out, err)
	}
}

func (s *Server) runDeployment(w http.ResponseWriter, r *http.Request) {
	var in deployment.RunInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.WorkspaceID, in.Ref = workspaceID(r), pathVar(r, "ref")
	out, err := s.svc.Deployments.Run(r.Context(), &in)
	status := http.StatusOK
	if out != nil && out.Created {
		status = http.StatusCreated
	}
	reply(w, r, status, out, err)
}
