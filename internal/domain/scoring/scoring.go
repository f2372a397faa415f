// Package scoring computes a team's composite points from its test results
// and registration profile.
package scoring

import (
	"math"

	"github.com/okian/qualify/internal/domain/model"
)

// Default scoring configuration constants.
const (
	defaultInterviewScale = 10 // rescales an interview score in [0,10] to [0,100]
	defaultGenderBonus    = 5
	defaultSkillPoints    = 2
)

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithInterviewScale sets the multiplier applied to the interview score.
func WithInterviewScale(scale float64) Option {
	return func(c *Calculator) {
		if scale > 0 {
			c.interviewScale = scale
		}
	}
}

// WithGenderBonus sets the bonus awarded to mixed-gender teams.
func WithGenderBonus(bonus float64) Option {
	return func(c *Calculator) {
		if bonus >= 0 {
			c.genderBonus = bonus
		}
	}
}

// WithSkillPoints sets the points awarded per declared skill.
func WithSkillPoints(points float64) Option {
	return func(c *Calculator) {
		if points >= 0 {
			c.skillPoints = points
		}
	}
}

// Breakdown itemizes the contributions that make up a team's points.
type Breakdown struct {
	Qcm       float64 `json:"qcm"`
	Interview float64 `json:"interview"`
	Diversity float64 `json:"diversity"`
	Skills    float64 `json:"skills"`
	Total     int     `json:"total"`
}

// Calculator computes composite points. It holds no mutable state and is
// safe for concurrent use.
type Calculator struct {
	interviewScale float64
	genderBonus    float64
	skillPoints    float64
}

// NewCalculator creates a calculator with the reference weights, adjusted by opts.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		interviewScale: defaultInterviewScale,
		genderBonus:    defaultGenderBonus,
		skillPoints:    defaultSkillPoints,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Points returns the rounded composite score for team.
func (c *Calculator) Points(team *model.Team) int {
	return c.Breakdown(team).Total
}

// Breakdown returns each contribution and the total. Rounding happens once,
// on the sum.
func (c *Calculator) Breakdown(team *model.Team) Breakdown {
	var b Breakdown
	if team == nil {
		return b
	}
	if team.QcmScore != nil {
		b.Qcm = float64(*team.QcmScore)
	}
	if team.InterviewScore != nil {
		b.Interview = *team.InterviewScore * c.interviewScale
	}
	if mixedGender(team.Members) {
		b.Diversity = c.genderBonus
	}
	b.Skills = float64(team.Skills.Count()) * c.skillPoints

	total := math.Round(b.Qcm + b.Interview + b.Diversity + b.Skills)
	if total < 0 || math.IsNaN(total) {
		total = 0
	}
	b.Total = int(total)
	return b
}

var defaultCalculator = NewCalculator()

// ComputePoints returns the composite points of team with the reference weights.
func ComputePoints(team *model.Team) int {
	return defaultCalculator.Points(team)
}

func mixedGender(members []model.Member) bool {
	var male, female bool
	for _, m := range members {
		switch m.Gender {
		case model.GenderMale:
			male = true
		case model.GenderFemale:
			female = true
		}
		if male && female {
			return true
		}
	}
	return false
}
