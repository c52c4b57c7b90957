package generator

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/mathdrill/backend/internal/models"
)

const maxBatchSize = 100

// Handler exposes question generation and the import/export codec
// over HTTP. It owns a single generator so the duplicate-avoidance
// history spans requests; the mutex serializes access since the
// generator itself is not concurrency safe.
type Handler struct {
	mu  sync.Mutex
	gen *Generator
}

func NewHandler() *Handler {
	return &Handler{gen: New()}
}

func (h *Handler) RegisterRoutes(protected *mux.Router) {
	protected.HandleFunc("/questions/generate", h.GenerateQuestions).Methods("POST")
	protected.HandleFunc("/questions/validate", h.ValidateQuestionPayload).Methods("POST")
	protected.HandleFunc("/questions/export", h.ExportHistory).Methods("GET")
	protected.HandleFunc("/questions/import", h.ImportQuestions).Methods("POST")
}

func (h *Handler) GenerateQuestions(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if req.Count <= 0 {
		req.Count = 1
	}
	if req.Count > maxBatchSize {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Count exceeds the batch limit"})
		return
	}
	if req.Difficulty == "" {
		req.Difficulty = models.DifficultyMedium
	}
	if !models.ValidDifficulties[req.Difficulty] {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid difficulty"})
		return
	}

	h.mu.Lock()
	questions := h.gen.GenerateBatch(req.Count, Options{
		Difficulty:      req.Difficulty,
		AvoidDuplicates: req.AvoidDuplicates,
	})
	h.mu.Unlock()

	log.Printf("[generator] generated %d %s questions", len(questions), req.Difficulty)
	writeJSON(w, http.StatusOK, models.QuestionListResponse{
		Questions: questions,
		Total:     len(questions),
	})
}

// ValidateQuestionPayload runs the structural checks against a single
// question supplied by the caller and returns the full report.
func (h *Handler) ValidateQuestionPayload(w http.ResponseWriter, r *http.Request) {
	var q models.Question
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	writeJSON(w, http.StatusOK, ValidateQuestion(q))
}

// ExportHistory serializes every question this generator has produced
// since startup into the interchange envelope.
func (h *Handler) ExportHistory(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	data, err := ExportQuestions(h.gen.History())
	h.mu.Unlock()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to export questions"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=questions.json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Printf("[generator] failed to write export: %v", err)
	}
}

func (h *Handler) ImportQuestions(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Failed to read request body"})
		return
	}

	var env models.ExportEnvelope
	total := 0
	if err := json.Unmarshal(body, &env); err == nil {
		total = len(env.Questions)
	}

	imported := ImportQuestions(body)
	log.Printf("[generator] imported %d of %d questions", len(imported), total)
	writeJSON(w, http.StatusOK, struct {
		models.ImportResult
		Questions []models.Question `json:"questions"`
	}{
		ImportResult: models.ImportResult{
			TotalInPayload: total,
			Imported:       len(imported),
			Skipped:        total - len(imported),
		},
		Questions: imported,
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[generator] failed to encode response: %v", err)
	}
}
