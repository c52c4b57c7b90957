package generator

import (
	"fmt"

	"github.com/mathdrill/backend/internal/models"
)

// ValidateQuestion checks the structural invariants every generated
// question must hold. Used by tests and by the import path, which must
// not trust external payloads.
func ValidateQuestion(q models.Question) models.ValidationReport {
	var errs []string

	if q.ID == "" {
		errs = append(errs, "question id is empty")
	}
	if q.FactorA < 0 {
		errs = append(errs, fmt.Sprintf("factor_a is negative: %d", q.FactorA))
	}
	if q.FactorB < 0 {
		errs = append(errs, fmt.Sprintf("factor_b is negative: %d", q.FactorB))
	}
	if q.CorrectAnswer != q.FactorA*q.FactorB {
		errs = append(errs, fmt.Sprintf("correct_answer %d != %d*%d", q.CorrectAnswer, q.FactorA, q.FactorB))
	}

	if len(q.Options) != 4 {
		errs = append(errs, fmt.Sprintf("expected 4 options, got %d", len(q.Options)))
	} else {
		correctCount := 0
		seen := make(map[int]bool)
		for _, opt := range q.Options {
			if opt.Value < 0 {
				errs = append(errs, fmt.Sprintf("option value is negative: %d", opt.Value))
			}
			if seen[opt.Value] {
				errs = append(errs, fmt.Sprintf("duplicate option value: %d", opt.Value))
			}
			seen[opt.Value] = true
			if opt.IsCorrect {
				correctCount++
				if opt.Value != q.CorrectAnswer {
					errs = append(errs, fmt.Sprintf("correct option value %d != correct_answer %d", opt.Value, q.CorrectAnswer))
				}
			}
		}
		if correctCount != 1 {
			errs = append(errs, fmt.Sprintf("expected exactly 1 correct option, got %d", correctCount))
		}
	}

	return models.ValidationReport{IsValid: len(errs) == 0, Errors: errs}
}
