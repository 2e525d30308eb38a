package matter

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the matter workflow API on the given router.
func RegisterRoutes(r chi.Router, mgr *Manager) {
	r.Route("/api/matters/{teamID}/{matterID}", func(r chi.Router) {
		r.Post("/advance", handleAdvance(mgr))
		r.Get("/", handleStatus(mgr))
		r.Get("/checklist", handleChecklist(mgr))
	})
}

func handleAdvance(mgr *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teamID := chi.URLParam(r, "teamID")
		matterID := chi.URLParam(r, "matterID")

		var ev Event
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if ev.Type == "" {
			http.Error(w, `{"error":"event type is required"}`, http.StatusBadRequest)
			return
		}

		resp, err := mgr.Engine(teamID, matterID).Advance(r.Context(), ev)
		if err != nil {
			var verr *ValidationError
			if errors.As(err, &verr) {
				http.Error(w, `{"error":"`+verr.Error()+`"}`, http.StatusBadRequest)
				return
			}
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func handleStatus(mgr *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teamID := chi.URLParam(r, "teamID")
		matterID := chi.URLParam(r, "matterID")

		resp, err := mgr.Engine(teamID, matterID).Status(r.Context())
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func handleChecklist(mgr *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teamID := chi.URLParam(r, "teamID")
		matterID := chi.URLParam(r, "matterID")

		view, err := mgr.Engine(teamID, matterID).Checklist(r.Context())
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, view)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
