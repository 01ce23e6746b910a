// Package forms validates user input before any request is sent.
package forms

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type SignIn struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type SignUp struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// Developer is the add and edit developer form. A profile document is mandatory when adding.
type Developer struct {
	Name   string `validate:"required"`
	File   string `validate:"required_if=Adding true"`
	Adding bool
}

type Generate struct {
	JobDescription string `validate:"required"`
	DeveloperID    string `validate:"required"`
	DocType        string `validate:"required,oneof=docx pdf"`
}

func (f *SignIn) Validate() error {
	f.Email = strings.TrimSpace(f.Email)
	return validate.Struct(f)
}

func (f *SignUp) Validate() error {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	return validate.Struct(f)
}

func (f *Developer) Validate() error {
	f.Name = strings.TrimSpace(f.Name)
	return validate.Struct(f)
}

// Validate trims the job description and validates the form. An empty DocType becomes docx.
func (f *Generate) Validate() error {
	f.JobDescription = strings.TrimSpace(f.JobDescription)
	if f.DocType == "" {
		f.DocType = "docx"
	}
	return validate.Struct(f)
}

// Describe renders a validation error as a single line.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, describeField(fe))
	}
	return strings.Join(messages, "; ")
}

func describeField(fe validator.FieldError) string {
	field := fieldLabel(fe.Field())

	switch fe.Tag() {
	case "required", "required_if":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}

func fieldLabel(field string) string {
	switch field {
	case "JobDescription":
		return "job description"
	case "DeveloperID":
		return "developer"
	case "DocType":
		return "document type"
	case "File":
		return "profile document"
	default:
		return strings.ToLower(field)
	}
}
