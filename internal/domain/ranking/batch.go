package ranking

import (
	"fmt"
	"strings"

	"github.com/okian/qualify/internal/domain/model"
	"github.com/okian/qualify/internal/domain/qualification"
)

// TeamUpdate fully overwrites the derived fields of one team. Nil pointers
// and an empty decision mean the field is cleared.
type TeamUpdate struct {
	ID            string         `json:"id"`
	QcmQualified  *bool          `json:"qcm_qualified,omitempty"`
	InterviewRank *int           `json:"interview_rank,omitempty"`
	Decision      model.Decision `json:"decision,omitempty"`
}

// Apply returns a copy of team with the derived fields replaced.
func (u *TeamUpdate) Apply(team *model.Team) model.Team {
	out := team.Clone()
	out.QcmQualified = nil
	if u.QcmQualified != nil {
		out.QcmQualified = model.BoolPtr(*u.QcmQualified)
	}
	out.InterviewRank = nil
	if u.InterviewRank != nil {
		out.InterviewRank = model.IntPtr(*u.InterviewRank)
	}
	out.Decision = u.Decision
	return out
}

// Failure names a team that could not be evaluated and why.
type Failure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

// BatchError reports the teams a batch skipped. It matches
// model.ErrPartialBatch under errors.Is.
type BatchError struct {
	Failures []Failure
}

func (e *BatchError) Error() string {
	ids := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		ids[i] = f.ID
	}
	return fmt.Sprintf("%s: %d team(s) not evaluated: %s", model.ErrPartialBatch, len(e.Failures), strings.Join(ids, ", "))
}

// Is makes errors.Is(err, model.ErrPartialBatch) succeed.
func (e *BatchError) Is(target error) bool { return target == model.ErrPartialBatch }

// Batch is the result of Recompute.
//
// Resets hold one update per failed team that has an id: rank and decision
// cleared, QcmQualified kept as stored. Callers persist them alongside
// Updates so no stale rank survives a recompute.
type Batch struct {
	Updates  []TeamUpdate `json:"updates"`
	Resets   []TeamUpdate `json:"resets,omitempty"`
	Rankings []Update     `json:"rankings"`
	Failures []Failure    `json:"failures,omitempty"`
}

// All returns Updates followed by Resets.
func (b *Batch) All() []TeamUpdate {
	out := make([]TeamUpdate, 0, len(b.Updates)+len(b.Resets))
	out = append(out, b.Updates...)
	return append(out, b.Resets...)
}

// Recompute re-derives every team's QCM qualification, clears all ranks and
// decisions, failed teams included, and ranks again from scratch. Prior derived values are
// overwritten, never merged. Interview scores are left alone.
//
// Invalid settings fail the whole call with model.ErrConfiguration. A team
// that cannot be evaluated is skipped and reported; the returned error is
// then a *BatchError and the Batch still holds every other team.
func Recompute(teams []model.Team, settings model.Settings, opts ...Option) (Batch, error) {
	if err := settings.Validate(); err != nil {
		return Batch{}, err
	}
	o := newOptions(opts)
	thresholds := settings.Thresholds()

	var b Batch
	eligible := make([]model.Team, 0, len(teams))
	for i := range teams {
		t := &teams[i]
		u, err := requalify(t, thresholds)
		if err != nil {
			b.Failures = append(b.Failures, Failure{ID: t.ID, Reason: err.Error(), Err: err})
			if strings.TrimSpace(t.ID) != "" {
				b.Resets = append(b.Resets, reset(t))
			}
			continue
		}
		b.Updates = append(b.Updates, u)
		eligible = append(eligible, *t)
	}

	ranks, err := rank(eligible, settings, o)
	if err != nil {
		return Batch{}, err
	}
	b.Rankings = ranks
	byID := make(map[string]*Update, len(ranks))
	for i := range ranks {
		byID[ranks[i].ID] = &ranks[i]
	}
	for i := range b.Updates {
		if r, ok := byID[b.Updates[i].ID]; ok {
			b.Updates[i].InterviewRank = model.IntPtr(r.InterviewRank)
			b.Updates[i].Decision = r.Decision
		}
	}

	if len(b.Failures) > 0 {
		return b, &BatchError{Failures: b.Failures}
	}
	return b, nil
}

// reset clears rank and decision of a team that could not be evaluated.
func reset(t *model.Team) TeamUpdate {
	u := TeamUpdate{ID: t.ID}
	if t.QcmQualified != nil {
		u.QcmQualified = model.BoolPtr(*t.QcmQualified)
	}
	return u
}

// requalify checks one team and returns its update with rank cleared.
func requalify(t *model.Team, thresholds model.Thresholds) (TeamUpdate, error) {
	u := TeamUpdate{ID: t.ID}
	if strings.TrimSpace(t.ID) == "" {
		return u, fmt.Errorf("%w: missing team id", model.ErrValidation)
	}
	if !t.Category.Valid() {
		return u, fmt.Errorf("%w: unknown category %q", model.ErrConfiguration, t.Category)
	}
	if t.InterviewScore != nil && !validInterviewScore(*t.InterviewScore) {
		return u, fmt.Errorf("%w: interview score %v outside [0,10]", model.ErrValidation, *t.InterviewScore)
	}
	if t.QcmScore == nil {
		return u, nil
	}
	if err := qualification.CheckScore(*t.QcmScore); err != nil {
		return u, err
	}
	ok, err := qualification.Evaluate(t.Category, *t.QcmScore, thresholds)
	if err != nil {
		return u, err
	}
	u.QcmQualified = model.BoolPtr(ok)
	return u, nil
}
