package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kompox/flowops/usecase/workpool"
)

func (s *Server) workPoolRoutes(r *mux.Router) {
	r.HandleFunc("", s.listWorkPools).Methods(http.MethodGet)
	r.HandleFunc("", s.createWorkPool).Methods(http.MethodPost)
	r.HandleFunc("/{ref}", s.getWorkPool).Methods(http.MethodGet)
	r.HandleFunc("/{ref}", s.updateWorkPool).Methods(http.MethodPatch)
	r.HandleFunc("/{ref}", s.deleteWorkPool).Methods(http.MethodDelete)
	r.HandleFunc("/{ref}/pause", s.pauseWorkPool(true)).Methods(http.MethodPost)
	r.HandleFunc("/{ref}/resume", s.pauseWorkPool(false)).Methods(http.MethodPost)
	r.HandleFunc("/{ref}/queues", s.setQueue).Methods(http.MethodPost)
	r.HandleFunc("/{ref}/queues/{name}", s.deleteQueue).Methods(http.MethodDelete)
}

func (s *Server) listWorkPools(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.WorkPools.List(r.Context(), &workpool.ListInput{WorkspaceID: workspaceID(r), Type: r.URL.Query().Get("type")})
	reply(w, r, http.StatusOK, out, err)
}

func (s *Server) createWorkPool(w http.ResponseWriter, r *http.Request) {
	var in workpool.CreateInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.WorkspaceID = workspaceID(r)
	out, err := s.svc.WorkPools.Create(r.Context(), &in)
	reply(w, r, http.StatusCreated, out, err)
}

func (s *Server) getWorkPool(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.WorkPools.Get(r.Context(), &workpool.GetInput{WorkspaceID: workspaceID(r), Ref: pathVar(r, "ref")})
	reply(w, r, http.StatusOK, out, err)
}

func (s *Server) updateWorkPool(w http.ResponseWriter, r *http.Request) {
	var in workpool.UpdateInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.WorkspaceID, in.Ref = workspaceID(r), pathVar(r, "ref")
	out, err := s.svc.WorkPools.Update(r.Context(), &in)
	reply(w, r, http.StatusOK, out, err)
}

func (s *Server) deleteWorkPool(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.WorkPools.Delete(r.Context(), &workpool.DeleteInput{WorkspaceID: workspaceID(r), Ref: pathVar(r, "ref")})
	reply(w, r, http.StatusOK, out, err)
}

// pauseWorkPool pauses the pool, or one queue when the "queue" query is set.
func (s *Server) pauseWorkPool(paused bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in := &workpool.PauseInput{WorkspaceID: workspaceID(r), Ref: pathVar(r, "ref"), Queue: r.URL.Query().Get("queue")}
		var (
			out *workpool.PauseOutput
			err error
		)
		if paused {
			out, err = s.svc.WorkPools.Pause(r.Context(), in)
		} else {
			out, err = s.svc.WorkPools.Resume(r.Context(), in)
		}
		reply(w, r, http.StatusOK, out, err)
	}
}

func (s *Server) setQueue(w http.ResponseWriter, r *http.Request) {
	var in workpool.QueueSetInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.WorkspaceID, in.Ref = workspaceID(r), pathVar(r, "ref")
	out, err := s.svc.WorkPools.QueueSet(r.Context(), &in)
	status := http.StatusOK
	if out != nil && out.Created {
		status = http.StatusCreated
	}
	reply(w, r, status, out, err)
}

func (s *Server) deleteQueue(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.WorkPools.QueueDelete(r.Context(), &workpool.QueueDeleteInput{
		WorkspaceID: workspaceID(r),
		Ref:         pathVar(r, "ref"),
		Name:        pathVar(r, "name"),
	})
	reply(w, r, http.StatusOK, out, err)
}
