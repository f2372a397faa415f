package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/okian/qualify/internal/domain/model"
	"github.com/okian/qualify/internal/domain/status"
	"github.com/okian/qualify/internal/domain/types"
)

const maxBodyBytes = 1 << 20

//nolint:gochecknoglobals // validator caches struct metadata and is safe for concurrent use
var validate = validator.New(validator.WithRequiredStructEnabled())

// registerRequest is the body of POST /teams.
type registerRequest struct {
	Name     string          `json:"name" validate:"required,max=200"`
	School   string          `json:"school" validate:"max=200"`
	Category string          `json:"category" validate:"required,oneof=secondary higher"`
	Members  []memberRequest `json:"members" validate:"max=10,dive"`
	Skills   model.Skills    `json:"skills"`
}

type memberRequest struct {
	Name   string `json:"name" validate:"required,max=200"`
	Gender string `json:"gender" validate:"omitempty,oneof=male female"`
	Role   string `json:"role" validate:"max=100"`
}

func (r *registerRequest) registration() types.Registration {
	members := make([]model.Member, 0, len(r.Members))
	for _, m := range r.Members {
		members = append(members, model.Member{Name: m.Name, Gender: model.Gender(m.Gender), Role: m.Role})
	}
	return types.Registration{
		Name:     r.Name,
		School:   r.School,
		Category: model.Category(r.Category),
		Members:  members,
		Skills:   r.Skills,
	}
}

// updateRequest is the body of PATCH /teams/{id}. Absent fields are left
// untouched. Version, when set, must match the stored team.
type updateRequest struct {
	QcmScore       *int     `json:"qcm_score" validate:"omitempty,gte=0,lte=100"`
	InterviewDate  *string  `json:"interview_date" validate:"omitempty,datetime=2006-01-02"`
	InterviewTime  *string  `json:"interview_time" validate:"omitempty,datetime=15:04"`
	InterviewScore *float64 `json:"interview_score" validate:"omitempty,gte=0,lte=10"`
	Status         *string  `json:"status" validate:"omitempty,oneof=registered qcm_submitted qcm_failed interview_qualified interview_completed selected not_selected"`
	Notes          *string  `json:"notes" validate:"omitempty,max=4000"`
	Version        int64    `json:"version" validate:"gte=0"`
}

func (r *updateRequest) changes() status.Changes {
	ch := status.Changes{
		QcmScore:       r.QcmScore,
		InterviewDate:  r.InterviewDate,
		InterviewTime:  r.InterviewTime,
		InterviewScore: r.InterviewScore,
		Notes:          r.Notes,
	}
	if r.Status != nil {
		s := model.Status(*r.Status)
		ch.Status = &s
	}
	return ch
}

// decode reads a JSON body into v and validates it.
func decode(r *http.Request, op string, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return wrapKind(op, ErrBadRequest, err)
	}
	if err := validate.Struct(v); err != nil {
		return wrapKind(op, ErrBadRequest, errors.New(validationMessage(err)))
	}
	return nil
}

// validationMessage flattens validator errors into one line.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
