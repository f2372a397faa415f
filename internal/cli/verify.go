package cli

import (
	"fmt"

	"github.com/okian/qualify/internal/domain/model"
	"github.com/okian/qualify/internal/domain/types"
)

// VerifyStandings checks that ranks run 1..n without gaps, that scores never
// increase down the table and that exactly the first quota rows are
// selected.
func VerifyStandings(rows []types.Standing, quota int) error {
	for i, row := range rows {
		if row.Rank != i+1 {
			return fmt.Errorf("%w: row %d has rank %d", ErrVerification, i, row.Rank)
		}
		if i > 0 && row.InterviewScore > rows[i-1].InterviewScore {
			return fmt.Errorf("%w: %s scores %.2f above %s at %.2f", ErrVerification,
				row.TeamID, row.InterviewScore, rows[i-1].TeamID, rows[i-1].InterviewScore)
		}
		want := model.DecisionNotSelected
		if row.Rank <= quota {
			want = model.DecisionSelected
		}
		if row.Decision != want {
			return fmt.Errorf("%w: %s at rank %d is %q, want %q", ErrVerification, row.TeamID, row.Rank, row.Decision, want)
		}
	}
	return nil
}
