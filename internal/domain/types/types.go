// Package types contains read shapes shared by the service and its adapters.
package types

import "github.com/okian/qualify/internal/domain/model"

// Standing is one row of a category's ranked view.
type Standing struct {
	Rank           int            `json:"rank"`
	TeamID         string         `json:"team_id"`
	Name           string         `json:"name"`
	Category       model.Category `json:"category"`
	Status         model.Status   `json:"status"`
	InterviewScore float64        `json:"interview_score"`
	QcmScore       *int           `json:"qcm_score,omitempty"`
	Decision       model.Decision `json:"decision"`
	Points         int            `json:"points"`
}

// Filter narrows a team listing. Zero values match everything.
type Filter struct {
	Category model.Category
	Status   model.Status
}

// Match reports whether team passes the filter.
func (f Filter) Match(team *model.Team) bool {
	if f.Category != "" && team.Category != f.Category {
		return false
	}
	if f.Status != "" && team.Status != f.Status {
		return false
	}
	return true
}

// Registration is the payload of a team sign-up.
type Registration struct {
	Name     string
	School   string
	Category model.Category
	Members  []model.Member
	Skills   model.Skills
}
