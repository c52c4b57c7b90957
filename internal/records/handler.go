package records

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/mathdrill/backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(protected *mux.Router) {
	protected.HandleFunc("/records/history", h.GetHistory).Methods("GET")
	protected.HandleFunc("/records/history", h.ClearHistory).Methods("DELETE")
	protected.HandleFunc("/records/stats", h.GetStats).Methods("GET")
	protected.HandleFunc("/records/leaderboard", h.GetLeaderboard).Methods("GET")
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	entries, err := h.service.History(userID)
	if err != nil {
		log.Printf("[records] failed to load history for user %d: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load history"})
		return
	}
	writeJSON(w, http.StatusOK, models.HistoryListResponse{
		Entries: entries,
		Total:   len(entries),
	})
}

func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	if err := h.service.ClearHistory(userID); err != nil {
		log.Printf("[records] failed to clear history for user %d: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to clear history"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "History cleared"})
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	stats, err := h.service.Stats(userID)
	if err != nil {
		log.Printf("[records] failed to load stats for user %d: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load stats"})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Leaderboard()
	if err != nil {
		log.Printf("[records] failed to load leaderboard: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load leaderboard"})
		return
	}
	writeJSON(w, http.StatusOK, models.LeaderboardResponse{
		Entries: entries,
		Total:   len(entries),
	})
}

func getUserID(r *http.Request) (int64, bool) {
	uid, ok := r.Context().Value("user_id").(int64)
	return uid, ok
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[records] failed to encode response: %v", err)
	}
}
