// Package qualification decides QCM pass/fail against per-category thresholds.
package qualification

import (
	"fmt"

	"github.com/okian/qualify/internal/domain/model"
)

// Score bounds for the QCM test.
const (
	MinScore = 0
	MaxScore = 100
)

// Evaluate reports whether score meets the threshold configured for category.
// An unknown category, or a category missing from thresholds, is a
// configuration error.
func Evaluate(category model.Category, score int, thresholds model.Thresholds) (bool, error) {
	if !category.Valid() {
		return false, fmt.Errorf("%w: unknown category %q", model.ErrConfiguration, category)
	}
	threshold, ok := thresholds[category]
	if !ok {
		return false, fmt.Errorf("%w: no QCM threshold for category %q", model.ErrConfiguration, category)
	}
	return score >= threshold, nil
}

// CheckScore rejects QCM scores outside [MinScore, MaxScore].
func CheckScore(score int) error {
	if score < MinScore || score > MaxScore {
		return fmt.Errorf("%w: QCM score %d outside [%d,%d]", model.ErrValidation, score, MinScore, MaxScore)
	}
	return nil
}
