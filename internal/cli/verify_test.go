package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/okian/qualify/internal/domain/model"
	"github.com/okian/qualify/internal/domain/types"
)

func TestVerifyStandings(t *testing.T) {
	row := func(rank int, score float64, d model.Decision) types.Standing {
		return types.Standing{Rank: rank, TeamID: "t", InterviewScore: score, Decision: d}
	}

	tests := []struct {
		name  string
		rows  []types.Standing
		quota int
		ok    bool
	}{
		{"empty", nil, 3, true},
		{"valid", []types.Standing{
			row(1, 9, model.DecisionSelected),
			row(2, 9, model.DecisionSelected),
			row(3, 4, model.DecisionNotSelected),
		}, 2, true},
		{"zero quota", []types.Standing{row(1, 9, model.DecisionNotSelected)}, 0, true},
		{"gap", []types.Standing{row(1, 9, model.DecisionSelected), row(3, 8, model.DecisionSelected)}, 5, false},
		{"score rises", []types.Standing{row(1, 5, model.DecisionSelected), row(2, 8, model.DecisionSelected)}, 5, false},
		{"over quota", []types.Standing{row(1, 9, model.DecisionSelected), row(2, 8, model.DecisionSelected)}, 1, false},
		{"under quota", []types.Standing{row(1, 9, model.DecisionNotSelected)}, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyStandings(tt.rows, tt.quota)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrVerification)
		})
	}
}
