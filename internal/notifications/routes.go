package notifications

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts notification endpoints under /api/notifications.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Route("/api/notifications", func(r chi.Router) {
		r.Get("/", handleList(store))
		r.Post("/subscriptions", handleSubscribe(store))
		r.Get("/subscriptions/{teamID}", handleSubscriptions(store))
	})
}

func handleList(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		filter := ListFilter{
			TeamID:   q.Get("team"),
			MatterID: q.Get("matter"),
		}
		if v := q.Get("severity"); v != "" {
			filter.Severity = Severity(v)
		}
		if v := q.Get("delivered"); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				filter.Delivered = &b
			}
		}
		if v := q.Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				filter.Limit = n
			}
		}

		list, err := store.List(r.Context(), filter)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if list == nil {
			list = []Notification{}
		}

		writeJSON(w, http.StatusOK, list)
	}
}

func handleSubscribe(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sub Subscription
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if sub.TeamID == "" || sub.URL == "" {
			http.Error(w, `{"error":"team_id and url are required"}`, http.StatusBadRequest)
			return
		}

		if err := store.Subscribe(r.Context(), &sub); err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, sub)
	}
}

func handleSubscriptions(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teamID := chi.URLParam(r, "teamID")

		subs, err := store.Subscriptions(r.Context(), teamID)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if subs == nil {
			subs = []Subscription{}
		}

		writeJSON(w, http.StatusOK, subs)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
