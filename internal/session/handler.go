package session

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/mathdrill/backend/internal/generator"
	"github.com/mathdrill/backend/internal/models"
	"github.com/mathdrill/backend/internal/records"
	"github.com/mathdrill/backend/internal/results"
	"github.com/mathdrill/backend/internal/timer"
)

// Registry tracks the one active session per user. Starting a new test
// replaces (and ends) any session still running.
type Registry struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[int64]*Session)}
}

func (r *Registry) Get(userID int64) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[userID]
	return s, ok
}

func (r *Registry) Replace(userID int64, s *Session) {
	r.mu.Lock()
	old := r.sessions[userID]
	r.sessions[userID] = s
	r.mu.Unlock()

	// The displaced half-run is discarded, not scored.
	if old != nil {
		old.Abandon()
	}
}

// DisplayNameFunc resolves a user id to the name shown on the
// leaderboard.
type DisplayNameFunc func(userID int64) string

type Handler struct {
	registry *Registry
	records  *records.Service
	names    DisplayNameFunc
}

func NewHandler(registry *Registry, recordsService *records.Service, names DisplayNameFunc) *Handler {
	return &Handler{registry: registry, records: recordsService, names: names}
}

// RegisterRoutes registers the session endpoints on the protected
// subrouter.
func (h *Handler) RegisterRoutes(protected *mux.Router) {
	protected.HandleFunc("/sessions", h.StartSession).Methods("POST")
	protected.HandleFunc("/sessions/current", h.GetSession).Methods("GET")
	protected.HandleFunc("/sessions/current/select", h.SelectAnswer).Methods("POST")
	protected.HandleFunc("/sessions/current/advance", h.AdvanceSession).Methods("POST")
	protected.HandleFunc("/sessions/current/skip", h.SkipQuestion).Methods("POST")
	protected.HandleFunc("/sessions/current/next", h.NextQuestion).Methods("POST")
	protected.HandleFunc("/sessions/current/previous", h.PreviousQuestion).Methods("POST")
	protected.HandleFunc("/sessions/current/goto", h.GoToQuestion).Methods("POST")
	protected.HandleFunc("/sessions/current/finish", h.FinishSession).Methods("POST")
	protected.HandleFunc("/sessions/current/export", h.ExportResult).Methods("GET")
}

func getUserID(r *http.Request) (int64, bool) {
	uid, ok := r.Context().Value("user_id").(int64)
	return uid, ok
}

func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := ValidateSettings(req.Settings); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	displayName := h.names(userID)
	s := New(Config{
		Generator: generator.New(),
		Timer:     timer.NewCountdown(),
		OnResult: func(result models.Result) {
			h.records.RecordResult(userID, displayName, result)
		},
	})
	if err := s.Start(req.Settings); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	h.registry.Replace(userID, s)
	log.Printf("[session] user %d started %s session %s (%d questions)",
		userID, req.Settings.TestMode, s.ID(), req.Settings.QuestionCount)
	writeJSON(w, http.StatusCreated, s.Snapshot())
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

func (h *Handler) SelectAnswer(w http.ResponseWriter, r *http.Request) {
	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}

	var req models.SelectAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := s.Select(req.Position); err != nil {
		writeJSON(w, statusFor(err), models.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

func (h *Handler) AdvanceSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}
	if err := s.Advance(); err != nil {
		writeJSON(w, statusFor(err), models.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

func (h *Handler) SkipQuestion(w http.ResponseWriter, r *http.Request) {
	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}
	if err := s.Skip(); err != nil {
		writeJSON(w, statusFor(err), models.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

func (h *Handler) NextQuestion(w http.ResponseWriter, r *http.Request) {
	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}
	if err := s.Next(); err != nil {
		writeJSON(w, statusFor(err), models.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

func (h *Handler) PreviousQuestion(w http.ResponseWriter, r *http.Request) {
	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}
	if err := s.Previous(); err != nil {
		writeJSON(w, statusFor(err), models.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

func (h *Handler) GoToQuestion(w http.ResponseWriter, r *http.Request) {
	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}

	var req models.NavigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := s.GoTo(req.Index); err != nil {
		writeJSON(w, statusFor(err), models.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

func (h *Handler) FinishSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}

	result := s.End()
	if result == nil {
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "Session has not been started"})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ExportResult returns the flat per-question rows of a completed
// session for downstream CSV/JSON writers.
func (h *Handler) ExportResult(w http.ResponseWriter, r *http.Request) {
	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}

	result := s.Result()
	if result == nil {
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "Session is not completed"})
		return
	}
	writeJSON(w, http.StatusOK, results.ExportRows(*result))
}

func (h *Handler) currentSession(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return nil, false
	}
	s, ok := h.registry.Get(userID)
	if !ok {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "No active session"})
		return nil, false
	}
	return s, true
}

// statusFor maps state machine errors onto HTTP statuses. Guard
// rejections are conflicts, not client mistakes.
func statusFor(err error) int {
	switch err {
	case ErrNotRunning, ErrQuestionLocked, ErrAdvanceSuperseded, ErrNoSelection:
		return http.StatusConflict
	case ErrInvalidPosition, ErrIndexOutOfRange, ErrSkipNotAllowed, ErrNavigationFixed:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[session] failed to encode response: %v", err)
	}
}
