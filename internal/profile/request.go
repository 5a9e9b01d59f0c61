package profile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spigell/talentbridge/internal/ai"
)

var validate = validator.New()

// Request is the input for creating a seeker profile. Either CVText or at
// least one manual title or skill is needed.
type Request struct {
	Name   string           `json:"name" validate:"omitempty,max=200"`
	Email  string           `json:"email" validate:"omitempty,email"`
	CVText string           `json:"cvText" validate:"required_without_all=Titles Skills"`
	Titles []string         `json:"titles" validate:"omitempty,dive,required"`
	Skills []ai.ParsedSkill `json:"skills" validate:"omitempty,dive"`
}

// Validate checks the request after trimming its fields.
func (r *Request) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.CVText = strings.TrimSpace(r.CVText)

	return ValidationError(validate.Struct(r))
}

// ManualCV converts the manual titles and skills into a parsed CV.
func (r *Request) ManualCV() *ai.ParsedCV {
	cv := &ai.ParsedCV{
		JobTitles: append([]string{}, r.Titles...),
		Education: []string{},
		RawSkills: make([]ai.ParsedSkill, 0, len(r.Skills)),
	}
	for _, skill := range r.Skills {
		if strings.TrimSpace(skill.Name) == "" {
			continue
		}
		cv.RawSkills = append(cv.RawSkills, skill)
	}
	return cv
}

// Merge adds the manual titles and skills of other to cv.
func Merge(cv, other *ai.ParsedCV) *ai.ParsedCV {
	if cv == nil {
		return other
	}
	if other == nil {
		return cv
	}
	cv.JobTitles = append(cv.JobTitles, other.JobTitles...)
	cv.Education = append(cv.Education, other.Education...)
	cv.RawSkills = append(cv.RawSkills, other.RawSkills...)
	return cv
}

// ValidationError turns validator errors into a short message naming the
// first failing field.
func ValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		ve := validationErrors[0]
		return fmt.Errorf("invalid request: %s failed %s", ve.Field(), ve.Tag())
	}

	return fmt.Errorf("invalid request: %w", err)
}

// Struct validates any request struct with the shared validator.
func Struct(v any) error {
	return ValidationError(validate.Struct(v))
}
