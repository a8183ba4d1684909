// Package contact models submissions of the public contact form.
package contact

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/contactdesk/backend/internal/domain/shared"
)

// Maximum field lengths, counted in UTF-16 code units like the browser form
const (
	MaxNameLength        = 255
	MaxEmailLength       = 255
	MaxJobTitleLength    = 255
	MaxPhoneNumberLength = 50
	MaxCompanyNameLength = 255
	MaxMessageLength     = 5000
)

var emailPattern = regexp.MustCompile(`^[^\s\v\p{Z}\x{FEFF}@]+@[^\s\v\p{Z}\x{FEFF}@]+\.[^\s\v\p{Z}\x{FEFF}@]+$`)

// ErrNullPayload is returned for a JSON null body. It is not a validation
// error, so callers report it as a server failure.
var ErrNullPayload = errors.New("contact payload is null")

// Submission is an accepted contact request
type Submission struct {
	ID          int64
	Name        string
	Email       string
	JobTitle    *string
	PhoneNumber *string
	CompanyName *string
	Message     string
	SubmittedAt time.Time
}

// Repository persists accepted submissions
type Repository interface {
	Create(ctx context.Context, s *Submission) error
}

type optionalField struct {
	key string
	max int
	set func(*Submission, *string)
}

var optionalFields = []optionalField{
	{"job_title", MaxJobTitleLength, func(s *Submission, v *string) { s.JobTitle = v }},
	{"phone_number", MaxPhoneNumberLength, func(s *Submission, v *string) { s.PhoneNumber = v }},
	{"company_name", MaxCompanyNameLength, func(s *Submission, v *string) { s.CompanyName = v }},
}

// Parse checks a decoded JSON payload and builds a submission from it.
// The first failing rule wins; its message is returned as a validation
// DomainError. A null payload is ErrNullPayload; other non-object payloads
// are treated as empty objects.
func Parse(payload any) (*Submission, error) {
	if payload == nil {
		return nil, ErrNullPayload
	}
	data, _ := payload.(map[string]any)

	name, err := requiredString(data, "name")
	if err != nil {
		return nil, err
	}
	if length(name) > MaxNameLength {
		return nil, tooLong("name")
	}

	email, err := requiredString(data, "email")
	if err != nil {
		return nil, err
	}
	if !emailPattern.MatchString(email) {
		return nil, invalid("Invalid email format")
	}
	if length(email) > MaxEmailLength {
		return nil, tooLong("email")
	}

	message, err := requiredString(data, "message")
	if err != nil {
		return nil, err
	}
	if length(message) > MaxMessageLength {
		return nil, tooLong("message")
	}

	s := &Submission{Name: name, Email: email, Message: message}
	for _, f := range optionalFields {
		raw, present := data[f.key]
		if !present || raw == nil {
			continue
		}
		v, ok := raw.(string)
		if !ok {
			return nil, invalid("Invalid type for field: " + f.key)
		}
		if length(v) > f.max {
			return nil, tooLong(f.key)
		}
		f.set(s, &v)
	}
	return s, nil
}

func requiredString(data map[string]any, key string) (string, error) {
	v, ok := data[key].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", invalid("Missing required field: " + key)
	}
	return v, nil
}

func length(s string) int {
	return len(utf16.Encode([]rune(s)))
}

func tooLong(field string) error {
	return invalid("Field exceeds maximum length: " + field)
}

func invalid(message string) error {
	return shared.NewDomainError(shared.ErrValidation.Code, message)
}
