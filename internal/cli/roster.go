package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/okian/qualify/internal/domain/model"
	"github.com/okian/qualify/internal/domain/ranking"
	"github.com/okian/qualify/internal/domain/scoring"
	"github.com/okian/qualify/internal/domain/types"
)

// Roster is an offline team list with optional settings, as kept by a jury
// in a YAML file.
type Roster struct {
	Settings *model.Settings `yaml:"settings,omitempty"`
	TieBreak string          `yaml:"tie_break,omitempty"`
	Teams    []model.Team    `yaml:"teams"`
}

// LoadRoster decodes a YAML roster. Unknown keys are rejected.
func LoadRoster(r io.Reader) (*Roster, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var roster Roster
	if err := dec.Decode(&roster); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty roster", ErrRoster)
		}
		return nil, fmt.Errorf("%w: %v", ErrRoster, err)
	}
	return &roster, nil
}

// LoadRosterFile opens and decodes path.
func LoadRosterFile(path string) (*Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRoster, err)
	}
	defer f.Close()
	return LoadRoster(f)
}

// EffectiveSettings returns the roster settings or the defaults.
func (r *Roster) EffectiveSettings() model.Settings {
	if r.Settings == nil {
		return model.DefaultSettings()
	}
	return *r.Settings
}

// RankResult is the outcome of ranking a roster offline.
type RankResult struct {
	Standings map[model.Category][]types.Standing
	Teams     []model.Team
	Failures  []ranking.Failure
}

// RankRoster re-derives qualification, rank and decision for every team of
// the roster, exactly like a batch recompute of the service. tieBreak
// overrides the roster's own policy when non-empty.
func RankRoster(r *Roster, tieBreak string, calc *scoring.Calculator) (RankResult, error) {
	if tieBreak == "" {
		tieBreak = r.TieBreak
	}
	tb, err := ranking.ParseTieBreak(tieBreak)
	if err != nil {
		return RankResult{}, err
	}

	batch, err := ranking.Recompute(r.Teams, r.EffectiveSettings(), ranking.WithTieBreak(tb))
	var be *ranking.BatchError
	if err != nil && !errors.As(err, &be) {
		return RankResult{}, err
	}

	all := batch.All()
	byID := make(map[string]*ranking.TeamUpdate, len(all))
	for i := range all {
		byID[all[i].ID] = &all[i]
	}
	failed := make(map[string]bool, len(batch.Failures))
	for _, f := range batch.Failures {
		failed[f.ID] = true
	}
	res := RankResult{Standings: map[model.Category][]types.Standing{}, Failures: batch.Failures}
	for i := range r.Teams {
		t := r.Teams[i].Clone()
		if u, ok := byID[t.ID]; ok {
			t = u.Apply(&t)
		} else if failed[t.ID] {
			t = ranking.Apply(&t, nil)
		}
		res.Teams = append(res.Teams, t)
		if failed[t.ID] || t.InterviewRank == nil || t.InterviewScore == nil {
			continue
		}
		res.Standings[t.Category] = append(res.Standings[t.Category], types.Standing{
			Rank:           *t.InterviewRank,
			TeamID:         t.ID,
			Name:           t.Name,
			Category:       t.Category,
			Status:         t.Status,
			InterviewScore: *t.InterviewScore,
			QcmScore:       t.QcmScore,
			Decision:       t.Decision,
			Points:         calc.Points(&t),
		})
	}
	for c := range res.Standings {
		slices.SortStableFunc(res.Standings[c], func(a, b types.Standing) int { return a.Rank - b.Rank })
	}
	return res, nil
}
