package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/michaelbrown/ctxlaunch/internal/extension"
	"github.com/michaelbrown/ctxlaunch/internal/launch"
)

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeResolveError(w http.ResponseWriter, err error) {
	if errors.Is(err, launch.ErrUnknownServer) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

// serverID returns the {id} route parameter decoded. chi routes on
// URL.RawPath when it is set (escapes such as %2F), so the parameter is
// still escaped in that case.
func serverID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if r.URL.RawPath == "" {
		return id, true
	}
	id, err := url.PathUnescape(id)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid server id: "+err.Error())
		return "", false
	}
	return id, true
}

// --- Server handlers ---

func (s *Server) handleListServers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.Entries())
}

func (s *Server) handleGetServer(w http.ResponseWriter, r *http.Request) {
	id, ok := serverID(w, r)
	if !ok {
		return
	}
	e, ok := s.registry.Lookup(id)
	if !ok {
		writeResolveError(w, &launch.UnknownServerError{ID: id})
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleServerCommand(w http.ResponseWriter, r *http.Request) {
	id, ok := serverID(w, r)
	if !ok {
		return
	}
	project := extension.Project{WorktreeRoot: r.URL.Query().Get("worktree")}
	cmd, err := s.ext.ContextServerCommand(extension.ContextServerID(id), project)
	if err != nil {
		writeResolveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cmd)
}
