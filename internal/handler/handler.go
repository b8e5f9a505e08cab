package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/xjzfwqgf/chat-web/internal/broadcast"
	"github.com/xjzfwqgf/chat-web/internal/chat"
	"github.com/xjzfwqgf/chat-web/internal/config"
	"github.com/xjzfwqgf/chat-web/internal/user"
)

// Handler holds application dependencies
type Handler struct {
	Config config.Config
	Chat   *chat.Service
	Bus    *broadcast.Bus
	Users  *user.Service
	Log    *zap.SugaredLogger
}

// New creates a new Handler with the given dependencies
func New(cfg config.Config, chatSvc *chat.Service, bus *broadcast.Bus, users *user.Service, log *zap.SugaredLogger) *Handler {
	return &Handler{
		Config: cfg,
		Chat:   chatSvc,
		Bus:    bus,
		Users:  users,
		Log:    log,
	}
}

// SetupRouter configures and returns the HTTP router
func (h *Handler) SetupRouter() *mux.Router {
	r := mux.NewRouter()

	// REST API
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/messages/public", h.GetPublicMessages).Methods("GET")
	api.HandleFunc("/register", h.Register).Methods("POST")
	api.HandleFunc("/login", h.Login).Methods("POST")
	api.HandleFunc("/users", h.ListUsers).Methods("GET")
	api.HandleFunc("/upload", h.Upload).Methods("POST")

	// アップロード済みファイル
	r.PathPrefix("/uploads/").Handler(serveUploads(h.Config.UploadDir)).Methods("GET")

	// WebSocket
	r.HandleFunc("/ws", h.HandleWebSocket).Methods("GET")

	r.HandleFunc("/healthz", h.Healthz).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return r
}

// Healthz handles GET /healthz
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
