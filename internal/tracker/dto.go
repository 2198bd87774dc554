package tracker

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/garnizeh/candidatures/internal/models"
	"github.com/garnizeh/candidatures/pkg/apperror"
)

type CreateApplicationRequest struct {
	Company       string        `json:"company" validate:"required,max=200"`
	Position      string        `json:"position" validate:"required,max=200"`
	Status        models.Status `json:"status" validate:"omitempty,status"`
	SubmittedDate string        `json:"submitted_date" validate:"omitempty,datetime=2006-01-02"`
	PostingLink   string        `json:"posting_link" validate:"max=2048"`
	ContactEmail  string        `json:"contact_email" validate:"omitempty,email"`
	ContactPhone  string        `json:"contact_phone" validate:"max=40"`
	Skills        []string      `json:"skills" validate:"omitempty,dive,max=100"`
	Notes         string        `json:"notes" validate:"max=10000"`
}

// UpdateApplicationRequest replaces every field of an application. A nil
// FollowUps keeps the stored history.
type UpdateApplicationRequest struct {
	Company       string            `json:"company" validate:"required,max=200"`
	Position      string            `json:"position" validate:"required,max=200"`
	Status        models.Status     `json:"status" validate:"required,status"`
	SubmittedDate string            `json:"submitted_date" validate:"omitempty,datetime=2006-01-02"`
	PostingLink   string            `json:"posting_link" validate:"max=2048"`
	ContactEmail  string            `json:"contact_email" validate:"omitempty,email"`
	ContactPhone  string            `json:"contact_phone" validate:"max=40"`
	Skills        []string          `json:"skills" validate:"omitempty,dive,max=100"`
	Notes         string            `json:"notes" validate:"max=10000"`
	FollowUps     []models.FollowUp `json:"follow_ups"`
}

type FollowUpRequest struct {
	Message string `json:"message" validate:"max=2000"`
}

type CreateCertificationRequest struct {
	Name       string `json:"name" validate:"required,max=200"`
	ObtainedOn string `json:"obtained_on" validate:"omitempty,datetime=2006-01-02"`
	ExpiresOn  string `json:"expires_on" validate:"omitempty,datetime=2006-01-02"`
}

type CreateSkillRequest struct {
	Name string `json:"name" validate:"required,max=100,excludes=/"`
}

type RegisterRequest struct {
	Handle   string `json:"handle" validate:"required,min=3,max=50"`
	Contact  string `json:"contact" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Contact string `json:"contact" validate:"required,email"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=72"`
}

// NewValidator returns a validator that reports json field names and knows
// the "status" tag.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("status", func(fl validator.FieldLevel) bool {
		_, ok := models.ParseStatus(fl.Field().String())
		return ok
	})
	return v
}

func (s *Service) check(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.Validation(err.Error())
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return apperror.Validation(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "datetime":
		return fmt.Sprintf("%s must be a date formatted YYYY-MM-DD", fe.Field())
	case "excludes":
		return fmt.Sprintf("%s must not contain %q", fe.Field(), fe.Param())
	case "status":
		return fmt.Sprintf("%s must be one of submitted, followedUp, interview, rejected, accepted", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func (r *CreateApplicationRequest) normalize() {
	r.Company = strings.TrimSpace(r.Company)
	r.Position = strings.TrimSpace(r.Position)
	r.SubmittedDate = strings.TrimSpace(r.SubmittedDate)
	r.PostingLink = strings.TrimSpace(r.PostingLink)
	r.ContactEmail = strings.TrimSpace(r.ContactEmail)
	r.ContactPhone = strings.TrimSpace(r.ContactPhone)
	r.Notes = strings.TrimSpace(r.Notes)
	r.Skills = models.NormalizeSkills(r.Skills)
}

func (r *UpdateApplicationRequest) normalize() {
	r.Company = strings.TrimSpace(r.Company)
	r.Position = strings.TrimSpace(r.Position)
	r.SubmittedDate = strings.TrimSpace(r.SubmittedDate)
	r.PostingLink = strings.TrimSpace(r.PostingLink)
	r.ContactEmail = strings.TrimSpace(r.ContactEmail)
	r.ContactPhone = strings.TrimSpace(r.ContactPhone)
	r.Notes = strings.TrimSpace(r.Notes)
	r.Skills = models.NormalizeSkills(r.Skills)
}

// requestFromApplication turns a decoded import record into a create request
// so that imported rows pass the same checks as typed input.
func requestFromApplication(a *models.Application) CreateApplicationRequest {
	deref := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}
	return CreateApplicationRequest{
		Company:       a.Company,
		Position:      a.Position,
		Status:        a.Status,
		SubmittedDate: deref(a.SubmittedDate),
		PostingLink:   deref(a.PostingLink),
		ContactEmail:  deref(a.ContactEmail),
		ContactPhone:  deref(a.ContactPhone),
		Skills:        a.Skills,
		Notes:         deref(a.Notes),
	}
}
