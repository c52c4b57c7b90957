package generator

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/mathdrill/backend/internal/models"
)

const exportVersion = 1

// ExportQuestions serializes a question list into the JSON interchange
// envelope.
func ExportQuestions(questions []models.Question) ([]byte, error) {
	env := models.ExportEnvelope{
		Version:    exportVersion,
		ExportedAt: time.Now().UTC(),
		Questions:  make([]models.ExportQuestion, 0, len(questions)),
	}

	for _, q := range questions {
		eq := models.ExportQuestion{
			FactorA:       q.FactorA,
			FactorB:       q.FactorB,
			CorrectAnswer: q.CorrectAnswer,
			Difficulty:    q.Difficulty,
			TimeLimitSec:  q.TimeLimitSec,
			Options:       make([]models.ExportOption, 0, len(q.Options)),
		}
		for _, opt := range q.Options {
			eq.Options = append(eq.Options, models.ExportOption{
				Value:     opt.Value,
				Position:  opt.Position,
				IsCorrect: opt.IsCorrect,
			})
		}
		env.Questions = append(env.Questions, eq)
	}

	return json.MarshalIndent(env, "", "  ")
}

// ImportQuestions deserializes an export envelope. Malformed payloads
// fail soft: the error is logged and an empty list returned, so a bad
// import file can never crash a caller's UI path. Questions that fail
// structural validation are skipped.
func ImportQuestions(data []byte) []models.Question {
	var env models.ExportEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Printf("[generator] import: malformed payload: %v", err)
		return []models.Question{}
	}

	questions := make([]models.Question, 0, len(env.Questions))
	for i, eq := range env.Questions {
		q := models.Question{
			ID:            uuid.NewString(),
			FactorA:       eq.FactorA,
			FactorB:       eq.FactorB,
			CorrectAnswer: eq.CorrectAnswer,
			Difficulty:    eq.Difficulty,
			TimeLimitSec:  eq.TimeLimitSec,
			CreatedAt:     time.Now(),
			Options:       make([]models.Option, 0, len(eq.Options)),
		}
		for _, opt := range eq.Options {
			q.Options = append(q.Options, models.Option{
				Value:     opt.Value,
				Position:  opt.Position,
				IsCorrect: opt.IsCorrect,
			})
		}
		if report := ValidateQuestion(q); !report.IsValid {
			log.Printf("[generator] import: skipping question %d: %v", i, report.Errors)
			continue
		}
		questions = append(questions, q)
	}

	return questions
}
