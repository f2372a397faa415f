package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okian/qualify/internal/domain/model"
	"github.com/okian/qualify/internal/domain/scoring"
)

const sampleRoster = `
settings:
  secondary_qcm_threshold: 60
  higher_qcm_threshold: 70
  secondary_team_selection_count: 1
  higher_team_selection_count: 2
teams:
  - id: h1
    name: Volt
    category: higher
    status: interview_completed
    qcm_score: 80
    interview_score: 8
    members:
      - {name: Ada, gender: female}
      - {name: Bo, gender: male}
    skills: {arduino: true, programming: true}
  - id: h2
    name: Ohm
    category: higher
    status: interview_completed
    qcm_score: 75
    interview_score: 9
  - id: h3
    name: Watt
    category: higher
    status: qcm_failed
    qcm_score: 40
  - id: s1
    name: Spark
    category: secondary
    status: interview_completed
    qcm_score: 65
    interview_score: 7.5
  - id: s2
    name: Amp
    category: secondary
    status: interview_completed
    qcm_score: 90
    interview_score: 7.5
`

func TestLoadRoster(t *testing.T) {
	r, err := LoadRoster(strings.NewReader(sampleRoster))
	require.NoError(t, err)
	require.Len(t, r.Teams, 5)
	assert.Equal(t, 2, r.EffectiveSettings().HigherTeamSelectionCount)
	assert.Equal(t, model.GenderFemale, r.Teams[0].Members[0].Gender)
	assert.True(t, r.Teams[0].Skills.Arduino)

	_, err = LoadRoster(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrRoster)

	_, err = LoadRoster(strings.NewReader("teams:\n  - id: a\n    colour: red\n"))
	assert.ErrorIs(t, err, ErrRoster)

	r, err = LoadRoster(strings.NewReader("teams: []\n"))
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), r.EffectiveSettings())
}

func TestRankRoster(t *testing.T) {
	r, err := LoadRoster(strings.NewReader(sampleRoster))
	require.NoError(t, err)

	res, err := RankRoster(r, "", scoring.NewCalculator())
	require.NoError(t, err)
	assert.Empty(t, res.Failures)

	higher := res.Standings[model.CategoryHigher]
	require.Len(t, higher, 2)
	assert.Equal(t, "h2", higher[0].TeamID)
	assert.Equal(t, "h1", higher[1].TeamID)
	assert.Equal(t, model.DecisionSelected, higher[1].Decision)
	// 80 + 80 + 5 + 2*2
	assert.Equal(t, 169, higher[1].Points)
	require.NoError(t, VerifyStandings(higher, 2))

	// Input order keeps s1 ahead on a tie.
	secondary := res.Standings[model.CategorySecondary]
	require.Len(t, secondary, 2)
	assert.Equal(t, "s1", secondary[0].TeamID)
	assert.Equal(t, model.DecisionNotSelected, secondary[1].Decision)

	res, err = RankRoster(r, "qcm_then_id", scoring.NewCalculator())
	require.NoError(t, err)
	assert.Equal(t, "s2", res.Standings[model.CategorySecondary][0].TeamID)

	for _, team := range res.Teams {
		if team.ID == "h3" {
			require.NotNil(t, team.QcmQualified)
			assert.False(t, *team.QcmQualified)
			assert.Nil(t, team.InterviewRank)
		}
	}

	_, err = RankRoster(r, "coin_flip", scoring.NewCalculator())
	assert.ErrorIs(t, err, model.ErrConfiguration)
}

func TestRankRosterReportsSkippedTeams(t *testing.T) {
	r, err := LoadRoster(strings.NewReader(sampleRoster + `
  - id: x1
    name: Legacy
    category: college
    interview_score: 9
`))
	require.NoError(t, err)

	res, err := RankRoster(r, "", scoring.NewCalculator())
	require.NoError(t, err)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "x1", res.Failures[0].ID)
	assert.Len(t, res.Standings[model.CategoryHigher], 2)
}

func TestRankRosterClearsStaleRankOfSkippedTeam(t *testing.T) {
	r, err := LoadRoster(strings.NewReader(`
settings:
  secondary_qcm_threshold: 60
  higher_qcm_threshold: 70
  secondary_team_selection_count: 1
  higher_team_selection_count: 1
teams:
  - id: a
    name: Alpha
    category: higher
    status: interview_completed
    qcm_score: 80
    interview_score: 7
  - id: b
    name: Beta
    category: higher
    status: interview_completed
    qcm_score: 150
    interview_score: 9
    interview_rank: 1
    decision: selected
`))
	require.NoError(t, err)

	res, err := RankRoster(r, "", scoring.NewCalculator())
	require.NoError(t, err)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "b", res.Failures[0].ID)

	higher := res.Standings[model.CategoryHigher]
	require.Len(t, higher, 1)
	assert.Equal(t, "a", higher[0].TeamID)
	require.NoError(t, VerifyStandings(higher, 1))

	for _, team := range res.Teams {
		if team.ID == "b" {
			assert.Nil(t, team.InterviewRank)
			assert.Equal(t, model.DecisionNone, team.Decision)
		}
	}
}
