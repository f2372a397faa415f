// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Category is the competition bracket a team competes in.
type Category string

// Known categories.
const (
	CategorySecondary Category = "secondary"
	CategoryHigher    Category = "higher"
)

// Categories lists every known category in a fixed order.
var Categories = []Category{CategorySecondary, CategoryHigher}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return c == CategorySecondary || c == CategoryHigher
}

// ParseCategory normalizes s into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: unknown category %q", ErrConfiguration, s)
	}
	return c, nil
}

// Decision is the selection outcome derived from an interview rank.
type Decision string

// Known decisions. The zero value means no decision yet.
const (
	DecisionNone        Decision = ""
	DecisionSelected    Decision = "selected"
	DecisionNotSelected Decision = "not_selected"
)

// Gender of a team member. Only the two recognized values count toward the
// diversity bonus.
type Gender string

// Recognized genders.
const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Member is a person registered on a team.
type Member struct {
	Name   string `json:"name" yaml:"name"`
	Gender Gender `json:"gender" yaml:"gender"`
	Role   string `json:"role,omitempty" yaml:"role,omitempty"`
}

// Skills are the capability flags declared at registration.
type Skills struct {
	Arduino     bool   `json:"arduino" yaml:"arduino"`
	Electronics bool   `json:"electronics" yaml:"electronics"`
	Programming bool   `json:"programming" yaml:"programming"`
	Mechanics   bool   `json:"mechanics" yaml:"mechanics"`
	Design3D    bool   `json:"design_3d" yaml:"design_3d"`
	Other       bool   `json:"other" yaml:"other"`
	OtherDetail string `json:"other_detail,omitempty" yaml:"other_detail,omitempty"`
}

// Count returns the number of flags set, including Other.
func (s Skills) Count() int {
	n := 0
	for _, f := range []bool{s.Arduino, s.Electronics, s.Programming, s.Mechanics, s.Design3D, s.Other} {
		if f {
			n++
		}
	}
	return n
}

// Team is the unit of record. Optional fields are nil until set.
type Team struct {
	ID       string   `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	School   string   `json:"school,omitempty" yaml:"school,omitempty"`
	Category Category `json:"category" yaml:"category"`
	Status   Status   `json:"status" yaml:"status"`

	QcmScore     *int  `json:"qcm_score,omitempty" yaml:"qcm_score,omitempty"`
	QcmQualified *bool `json:"qcm_qualified,omitempty" yaml:"qcm_qualified,omitempty"`

	InterviewDate  string   `json:"interview_date,omitempty" yaml:"interview_date,omitempty"`
	InterviewTime  string   `json:"interview_time,omitempty" yaml:"interview_time,omitempty"`
	InterviewScore *float64 `json:"interview_score,omitempty" yaml:"interview_score,omitempty"`
	InterviewRank  *int     `json:"interview_rank,omitempty" yaml:"interview_rank,omitempty"`
	Decision       Decision `json:"decision,omitempty" yaml:"decision,omitempty"`

	Notes   string   `json:"notes,omitempty" yaml:"notes,omitempty"`
	Members []Member `json:"members,omitempty" yaml:"members,omitempty"`
	Skills  Skills   `json:"skills" yaml:"skills"`

	// Version is bumped by the store on every write.
	Version   int64     `json:"version" yaml:"-"`
	CreatedAt time.Time `json:"created_at" yaml:"-"`
	UpdatedAt time.Time `json:"updated_at" yaml:"-"`
}

// HasInterviewSlot reports whether both interview date and time are set.
func (t *Team) HasInterviewSlot() bool {
	return strings.TrimSpace(t.InterviewDate) != "" && strings.TrimSpace(t.InterviewTime) != ""
}

// Clone returns a deep copy so callers can mutate without aliasing.
func (t *Team) Clone() Team {
	c := *t
	if t.QcmScore != nil {
		c.QcmScore = IntPtr(*t.QcmScore)
	}
	if t.QcmQualified != nil {
		c.QcmQualified = BoolPtr(*t.QcmQualified)
	}
	if t.InterviewScore != nil {
		c.InterviewScore = Float64Ptr(*t.InterviewScore)
	}
	if t.InterviewRank != nil {
		c.InterviewRank = IntPtr(*t.InterviewRank)
	}
	if t.Members != nil {
		c.Members = append([]Member(nil), t.Members...)
	}
	return c
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// BoolPtr returns a pointer to v.
func BoolPtr(v bool) *bool { return &v }

// Float64Ptr returns a pointer to v.
func Float64Ptr(v float64) *float64 { return &v }
