// Package status validates and derives team status changes along the
// qualification pipeline.
//
// Every status change goes through Machine.Apply, whether it comes from an
// explicit request or is derived from newly entered scores, so the pipeline
// invariants hold regardless of caller.
package status

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/qualify/internal/domain/model"
	"github.com/okian/qualify/internal/domain/qualification"
)

// Interview score bounds.
const (
	MinInterviewScore = 0.0
	MaxInterviewScore = 10.0
)

// transitions is the directed status graph. Self-transitions of non-terminal
// statuses are accepted separately.
var transitions = map[model.Status][]model.Status{
	model.StatusRegistered:         {model.StatusQcmSubmitted, model.StatusQcmFailed, model.StatusInterviewQualified},
	model.StatusQcmSubmitted:       {model.StatusQcmFailed, model.StatusInterviewQualified},
	model.StatusQcmFailed:          {model.StatusInterviewQualified},
	model.StatusInterviewQualified: {model.StatusQcmFailed, model.StatusInterviewCompleted},
	model.StatusInterviewCompleted: {model.StatusQcmFailed, model.StatusSelected, model.StatusNotSelected},
}

// CanTransition reports whether the graph allows moving from one status to another.
func CanTransition(from, to model.Status) bool {
	if from.Terminal() {
		return false
	}
	if from == to {
		return from.Valid()
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Changes is a partial update requested for a team. Nil fields are left
// untouched.
type Changes struct {
	QcmScore       *int
	InterviewDate  *string
	InterviewTime  *string
	InterviewScore *float64
	Status         *model.Status
	Notes          *string
}

// affectsStatus reports whether any field of c can move the team's status.
func (c *Changes) affectsStatus() bool {
	return c.QcmScore != nil || c.InterviewDate != nil || c.InterviewTime != nil ||
		c.InterviewScore != nil || c.Status != nil
}

// Outcome is the validated result of applying Changes.
type Outcome struct {
	// Team is the updated copy; the input snapshot is never mutated.
	Team     model.Team
	Previous model.Status
	Status   model.Status
	// Rerank is set when the interview score changed and category rankings
	// must be recomputed.
	Rerank bool
}

// Changed reports whether the status moved.
func (o *Outcome) Changed() bool { return o.Previous != o.Status }

// Machine applies Changes against a thresholds snapshot.
type Machine struct {
	thresholds model.Thresholds
}

// New creates a Machine bound to the given thresholds.
func New(thresholds model.Thresholds) *Machine {
	return &Machine{thresholds: thresholds}
}

// Apply validates ch against current and returns the derived outcome.
//
// A terminal team only accepts a notes edit. Errors wrap
// model.ErrIllegalTransition (terminal lock or an edge missing from the
// graph), model.ErrValidation (missing prerequisite, out-of-range
// score, unknown status) or model.ErrConfiguration (unknown category).
func (m *Machine) Apply(current *model.Team, ch Changes) (Outcome, error) {
	from := current.Status
	if from == "" {
		from = model.StatusRegistered
	}
	if from.Terminal() && (ch.affectsStatus() || ch.Notes == nil) {
		return Outcome{}, fmt.Errorf("%w: team %s is %s", model.ErrIllegalTransition, current.ID, from)
	}
	if ch.Status != nil && !ch.Status.Valid() {
		return Outcome{}, fmt.Errorf("%w: unknown status %q", model.ErrValidation, *ch.Status)
	}
	if err := checkRanges(&ch); err != nil {
		return Outcome{}, err
	}

	t := &transition{machine: m, team: current.Clone(), status: from}

	if ch.QcmScore != nil {
		if err := t.scoreQcm(*ch.QcmScore); err != nil {
			return Outcome{}, err
		}
	}
	if ch.InterviewDate != nil || ch.InterviewTime != nil {
		if err := t.schedule(ch.InterviewDate, ch.InterviewTime); err != nil {
			return Outcome{}, err
		}
	}
	rerank := false
	if ch.InterviewScore != nil {
		if err := t.scoreInterview(*ch.InterviewScore); err != nil {
			return Outcome{}, err
		}
		rerank = true
	}
	if ch.Status != nil {
		if err := t.move(*ch.Status); err != nil {
			return Outcome{}, err
		}
	}
	if ch.Notes != nil {
		t.team.Notes = *ch.Notes
	}
	if err := t.requalify(); err != nil {
		return Outcome{}, err
	}

	t.team.Status = t.status
	return Outcome{Team: t.team, Previous: from, Status: t.status, Rerank: rerank}, nil
}

func checkRanges(ch *Changes) error {
	if ch.QcmScore != nil {
		if err := qualification.CheckScore(*ch.QcmScore); err != nil {
			return err
		}
	}
	if ch.InterviewScore != nil {
		s := *ch.InterviewScore
		if math.IsNaN(s) || s < MinInterviewScore || s > MaxInterviewScore {
			return fmt.Errorf("%w: interview score %v outside [%v,%v]", model.ErrValidation, s, MinInterviewScore, MaxInterviewScore)
		}
	}
	return nil
}

// transition carries the in-progress state of a single Apply call.
type transition struct {
	machine *Machine
	team    model.Team
	status  model.Status
}

func (t *transition) evaluate() (bool, error) {
	return qualification.Evaluate(t.team.Category, *t.team.QcmScore, t.machine.thresholds)
}

func (t *transition) scoreQcm(score int) error {
	t.team.QcmScore = model.IntPtr(score)
	ok, err := t.evaluate()
	if err != nil {
		return err
	}
	t.team.QcmQualified = model.BoolPtr(ok)
	if !ok {
		return t.move(model.StatusQcmFailed)
	}
	if t.status == model.StatusInterviewCompleted {
		return nil
	}
	return t.move(model.StatusInterviewQualified)
}

func (t *transition) schedule(date, clock *string) error {
	if date != nil {
		t.team.InterviewDate = strings.TrimSpace(*date)
	}
	if clock != nil {
		t.team.InterviewTime = strings.TrimSpace(*clock)
	}
	if !t.team.HasInterviewSlot() || t.status == model.StatusInterviewCompleted {
		return nil
	}
	return t.move(model.StatusInterviewQualified)
}

func (t *transition) scoreInterview(score float64) error {
	t.team.InterviewScore = model.Float64Ptr(score)
	return t.move(model.StatusInterviewCompleted)
}

// move checks the prerequisites of to, then the graph edge.
func (t *transition) move(to model.Status) error {
	switch to {
	case model.StatusInterviewQualified:
		if t.team.QcmScore == nil {
			return fmt.Errorf("%w: QCM score required and must meet threshold", model.ErrValidation)
		}
		ok, err := t.evaluate()
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: QCM score required and must meet threshold", model.ErrValidation)
		}
	case model.StatusQcmFailed:
		if t.team.QcmScore == nil {
			return fmt.Errorf("%w: QCM score required to fail the test", model.ErrValidation)
		}
		ok, err := t.evaluate()
		if err != nil {
			return err
		}
		if ok {
			return fmt.Errorf("%w: QCM score %d meets the threshold", model.ErrValidation, *t.team.QcmScore)
		}
	case model.StatusInterviewCompleted:
		if t.team.InterviewScore == nil {
			return fmt.Errorf("%w: interview score required", model.ErrValidation)
		}
	}
	if !CanTransition(t.status, to) {
		return fmt.Errorf("%w: %s -> %s", model.ErrIllegalTransition, t.status, to)
	}
	t.status = to
	return nil
}

// requalify keeps QcmQualified in step with QcmScore.
func (t *transition) requalify() error {
	if t.team.QcmScore == nil {
		t.team.QcmQualified = nil
		return nil
	}
	ok, err := t.evaluate()
	if err != nil {
		return err
	}
	t.team.QcmQualified = model.BoolPtr(ok)
	return nil
}
