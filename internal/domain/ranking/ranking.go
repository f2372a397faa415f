// Package ranking orders interviewed teams within each category and derives
// the selection decision from the category quota.
package ranking

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/okian/qualify/internal/domain/model"
)

// TieBreak selects how teams with equal interview scores are ordered.
type TieBreak string

const (
	// TieBreakInputOrder keeps the relative order of the input slice.
	TieBreakInputOrder TieBreak = "input_order"
	// TieBreakQcmThenID orders ties by QCM score descending, then id ascending.
	TieBreakQcmThenID TieBreak = "qcm_then_id"
)

// ParseTieBreak normalizes s into a TieBreak. Empty selects input order.
func ParseTieBreak(s string) (TieBreak, error) {
	switch tb := TieBreak(strings.ToLower(strings.TrimSpace(s))); tb {
	case "", TieBreakInputOrder:
		return TieBreakInputOrder, nil
	case TieBreakQcmThenID:
		return tb, nil
	default:
		return "", fmt.Errorf("%w: unknown tie break %q", model.ErrConfiguration, s)
	}
}

// Option configures a ranking run.
type Option func(*options)

type options struct {
	tieBreak TieBreak
}

// WithTieBreak sets the tie-break policy. Unknown values are ignored.
func WithTieBreak(tb TieBreak) Option {
	return func(o *options) {
		if tb == TieBreakInputOrder || tb == TieBreakQcmThenID {
			o.tieBreak = tb
		}
	}
}

func newOptions(opts []Option) options {
	o := options{tieBreak: TieBreakInputOrder}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Update is the rank and decision assigned to one interviewed team.
type Update struct {
	ID            string         `json:"id"`
	Category      model.Category `json:"category"`
	InterviewRank int            `json:"interview_rank"`
	Decision      model.Decision `json:"decision"`
}

// Rank assigns dense 1-based ranks per category to every team that has an
// interview score, best score first, and marks the first quota(category)
// teams as selected. Teams without an interview score are left out. The
// input is never mutated.
//
// Output is grouped by category in model.Categories order, then by rank.
func Rank(teams []model.Team, settings model.Settings, opts ...Option) ([]Update, error) {
	o := newOptions(opts)
	for i := range teams {
		t := &teams[i]
		if t.InterviewScore == nil {
			continue
		}
		if !t.Category.Valid() {
			return nil, fmt.Errorf("%w: team %s has unknown category %q", model.ErrConfiguration, t.ID, t.Category)
		}
		if !validInterviewScore(*t.InterviewScore) {
			return nil, fmt.Errorf("%w: team %s interview score %v outside [0,10]", model.ErrValidation, t.ID, *t.InterviewScore)
		}
	}
	return rank(teams, settings, o)
}

func rank(teams []model.Team, settings model.Settings, o options) ([]Update, error) {
	var out []Update
	for _, c := range model.Categories {
		quota, err := settings.Quota(c)
		if err != nil {
			return nil, err
		}
		pool := make([]*model.Team, 0, len(teams))
		for i := range teams {
			if teams[i].Category == c && teams[i].InterviewScore != nil {
				pool = append(pool, &teams[i])
			}
		}
		sort.SliceStable(pool, func(i, j int) bool {
			return less(pool[i], pool[j], o.tieBreak)
		})
		for i, t := range pool {
			r := i + 1
			d := model.DecisionNotSelected
			if r <= quota {
				d = model.DecisionSelected
			}
			out = append(out, Update{ID: t.ID, Category: c, InterviewRank: r, Decision: d})
		}
	}
	return out, nil
}

// less reports whether a ranks strictly ahead of b.
func less(a, b *model.Team, tb TieBreak) bool {
	if *a.InterviewScore != *b.InterviewScore {
		return *a.InterviewScore > *b.InterviewScore
	}
	if tb != TieBreakQcmThenID {
		return false
	}
	qa, qb := qcm(a), qcm(b)
	if qa != qb {
		return qa > qb
	}
	return a.ID < b.ID
}

func qcm(t *model.Team) int {
	if t.QcmScore == nil {
		return -1
	}
	return *t.QcmScore
}

// Apply returns a copy of team carrying the rank and decision of u. A nil
// update clears both.
func Apply(team *model.Team, u *Update) model.Team {
	out := team.Clone()
	if u == nil {
		out.InterviewRank = nil
		out.Decision = model.DecisionNone
		return out
	}
	out.InterviewRank = model.IntPtr(u.InterviewRank)
	out.Decision = u.Decision
	return out
}

func validInterviewScore(s float64) bool {
	return !math.IsNaN(s) && s >= 0 && s <= 10
}
