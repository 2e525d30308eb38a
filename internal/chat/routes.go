package chat

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// RegisterRoutes mounts the intake chat API.
func RegisterRoutes(r chi.Router, store *Store, proc *Processor) {
	r.Route("/api/chat", func(r chi.Router) {
		r.Post("/sessions", handleCreateSession(store))
		r.Post("/message", handleMessage(proc))
		r.Get("/sessions/{id}/messages", handleGetMessages(store))
		r.Get("/ws", handleWebSocket(proc))
	})
}

type createSessionRequest struct {
	TeamID string `json:"team_id"`
	UserID string `json:"user_id"`
}

func handleCreateSession(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		sess, err := store.CreateSession(r.Context(), req.TeamID, req.UserID)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, sess)
	}
}

type messageRequest struct {
	SessionID string `json:"session_id"`
	TeamID    string `json:"team_id"`
	UserID    string `json:"user_id"`
	Input     string `json:"input"`
}

func handleMessage(proc *Processor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req messageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.Input == "" {
			http.Error(w, `{"error":"input is required"}`, http.StatusBadRequest)
			return
		}

		result, err := proc.ProcessMessage(r.Context(), req.SessionID, req.TeamID, req.UserID, req.Input)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

func handleGetMessages(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		msgs, err := store.GetMessages(r.Context(), id)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if msgs == nil {
			msgs = []Message{}
		}

		writeJSON(w, http.StatusOK, msgs)
	}
}

// wsRequest is the incoming WebSocket message format.
type wsRequest struct {
	Type      string `json:"type"` // "message"
	SessionID string `json:"session_id"`
	TeamID    string `json:"team_id"`
	UserID    string `json:"user_id"`
	Input     string `json:"input"`
}

// wsResponse is the outgoing WebSocket message format.
type wsResponse struct {
	Type   string      `json:"type"` // "response" or "error"
	Error  string      `json:"error,omitempty"`
	Result *TurnResult `json:"result,omitempty"`
}

func handleWebSocket(proc *Processor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("chat: websocket upgrade: %v", err)
			return
		}
		defer conn.Close()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("chat: websocket read: %v", err)
				}
				return
			}

			var req wsRequest
			if err := json.Unmarshal(msg, &req); err != nil {
				writeWS(conn, wsResponse{Type: "error", Error: "invalid message format"})
				continue
			}
			if req.Type != "message" {
				writeWS(conn, wsResponse{Type: "error", Error: "unsupported message type"})
				continue
			}
			if req.Input == "" {
				writeWS(conn, wsResponse{Type: "error", Error: "input is required"})
				continue
			}

			result, err := proc.ProcessMessage(r.Context(), req.SessionID, req.TeamID, req.UserID, req.Input)
			if err != nil {
				writeWS(conn, wsResponse{Type: "error", Error: err.Error()})
				continue
			}
			writeWS(conn, wsResponse{Type: "response", Result: result})
		}
	}
}

func writeWS(conn *websocket.Conn, resp wsResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("chat: websocket write: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
