package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kompox/flowops/domain/model"
	"github.com/kompox/flowops/usecase/automation"
	"github.com/kompox/flowops/usecase/event"
)

func (s *Server) eventRoutes(r *mux.Router) {
	r.HandleFunc("", s.listEvents).Methods(http.MethodGet)
	r.HandleFunc("", s.emitEvent).Methods(http.MethodPost)
	r.HandleFunc("/{id}", s.getEvent).Methods(http.MethodGet)
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	out, err := s.svc.Events.List(r.Context(), &event.ListInput{
		WorkspaceID: workspaceID(r),
		Prefix:      q.Get("prefix"),
		ResourceID:  q.Get("resource_id"),
		Limit:       limit,
	})
	reply(w, r, http.StatusOK, out, err)
}

// emitEvent ingests the event in the body. The workspace of the request
// replaces any workspace_id it carries.
func (s *Server) emitEvent(w http.ResponseWriter, r *http.Request) {
	var ev model.Event
	if err := decode(r, &ev); err != nil {
		writeError(w, r, err)
		return
	}
	ev.WorkspaceID = workspaceID(r)
	out, err := s.svc.Events.Emit(r.Context(), &event.EmitInput{Event: &ev})
	reply(w, r, http.StatusAccepted, out, err)
}

func (s *Server) getEvent(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.Events.Get(r.Context(), &event.GetInput{WorkspaceID: workspaceID(r), ID: pathVar(r, "id")})
	reply(w, r, http.StatusOK, out, err)
}

func (s *Server) automationRoutes(r *mux.Router) {
	r.HandleFunc("", s.listAutomations).Methods(http.MethodGet)
	r.HandleFunc("", s.createAutomation).Methods(http.MethodPost)
	r.HandleFunc("/{ref}", s.getAutomation).Methods(http.MethodGet)
	r.HandleFunc("/{ref}", s.updateAutomation).Methods(http.MethodPatch)
	r.HandleFunc("/{ref}", s.deleteAutomation).Methods(http.MethodDelete)
	r.HandleFunc("/{ref}/enable", s.enableAutomation(true)).Methods(http.MethodPost)
	r.HandleFunc("/{ref}/disable", s.enableAutomation(false)).Methods(http.MethodPost)
}

func (s *Server) listAutomations(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.Automations.List(r.Context(), &automation.ListInput{
		WorkspaceID: workspaceID(r),
		EnabledOnly: r.URL.Query().Get("enabled_only") == "true",
	})
	reply(w, r, http.StatusOK, out, err)
}

func (s *Server) createAutomation(w http.ResponseWriter, r *http.Request) {
	var in automation.CreateInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.WorkspaceID = workspaceID(r)
	out, err := s.svc.Automations.Create(r.Context(), &in)
	reply(w, r, http.StatusCreated, out, err)
}

func (s *Server) getAutomation(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.Automations.Get(r.Context(), &automation.GetInput{WorkspaceID: workspaceID(r), Ref: pathVar(r, "ref")})
	reply(w, r, http.StatusOK, out, err)
}

func (s *Server) updateAutomation(w http.ResponseWriter, r *http.Request) {
	var in automation.UpdateInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.WorkspaceID, in.Ref = workspaceID(r), pathVar(r, "ref")
	out, err := s.svc.Automations.Update(r.Context(), &in)
	reply(w, r, http.StatusOK, out, err)
}

func (s *Server) deleteAutomation(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.Automations.Delete(r.Context(), &automation.DeleteInput{WorkspaceID: workspaceID(r), Ref: pathVar(r, "ref")})
	reply(w, r, http.StatusOK, out, err)
}

func (s *Server) enableAutomation(enabled bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in := &automation.EnableInput{WorkspaceID: workspaceID(r), Ref: pathVar(r, "ref")}
		var (
			out *automation.EnableOutput
			err error
		)
		if enabled {
			out, err = s.svc.Automations.Enable(r.Context(), in)
		} else {
			out, err = s.svc.Automations.Disable(r.Context(), in)
		}
		reply(w, r, http.StatusOK, out, err)
	}
}
