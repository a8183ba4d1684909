package customer

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Field names one of the four customer form inputs
type Field string

const (
	FieldName    Field = "name"
	FieldEmail   Field = "email"
	FieldPhone   Field = "phone"
	FieldAddress Field = "address"
)

// Fields lists the form inputs in display order
var Fields = [...]Field{FieldName, FieldEmail, FieldPhone, FieldAddress}

// Form holds the raw text of the customer form
type Form struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Get returns the value of a field
func (f Form) Get(field Field) string {
	switch field {
	case FieldName:
		return f.Name
	case FieldEmail:
		return f.Email
	case FieldPhone:
		return f.Phone
	case FieldAddress:
		return f.Address
	}
	return ""
}

// With returns a copy of the form with one field replaced
func (f Form) With(field Field, value string) Form {
	switch field {
	case FieldName:
		f.Name = value
	case FieldEmail:
		f.Email = value
	case FieldPhone:
		f.Phone = value
	case FieldAddress:
		f.Address = value
	}
	return f
}

// IsBlank reports whether every field is empty after trimming
func (f Form) IsBlank() bool {
	for _, field := range Fields {
		if strings.TrimSpace(f.Get(field)) != "" {
			return false
		}
	}
	return true
}

// ToCustomer builds a record from trimmed form values
func (f Form) ToCustomer(id ID) Customer {
	return Customer{
		ID:      id,
		Name:    strings.TrimSpace(f.Name),
		Email:   strings.TrimSpace(f.Email),
		Phone:   strings.TrimSpace(f.Phone),
		Address: Address(strings.TrimSpace(f.Address)),
	}
}

// FormFromCustomer populates a form from an existing record
func FormFromCustomer(c Customer) Form {
	return Form{
		Name:    c.Name,
		Email:   c.Email,
		Phone:   c.Phone,
		Address: string(c.Address),
	}
}

// ValidationResult is the outcome of checking a whole form
type ValidationResult struct {
	Valid  bool
	Errors map[Field]string
}

// Error returns the message recorded for a field, or ""
func (r ValidationResult) Error(field Field) string {
	return r.Errors[field]
}

type fieldRule struct {
	tag      string
	required string
	invalid  string
}

var rules = map[Field]fieldRule{
	FieldName: {
		tag:      "required,min=2,max=50",
		required: "Name is required",
		invalid:  "Name must be between 2 and 50 characters",
	},
	FieldEmail: {
		tag:      "required,emailshape",
		required: "Email is required",
		invalid:  "Please enter a valid email address",
	},
	FieldPhone: {
		tag:      "required,phonedigits",
		required: "Phone is required",
		invalid:  "Phone must contain 10 to 15 digits",
	},
	FieldAddress: {
		tag:      "required,min=10,max=200",
		required: "Address is required",
		invalid:  "Address must be between 10 and 200 characters",
	},
}

var (
	emailPattern = regexp.MustCompile(`^[^\s\v\p{Z}\x{FEFF}@]+@[^\s\v\p{Z}\x{FEFF}@]+\.[^\s\v\p{Z}\x{FEFF}@]+$`)
	validate     = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("emailshape", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("phonedigits", func(fl validator.FieldLevel) bool {
		n := DigitCount(fl.Field().String())
		return n >= 10 && n <= 15
	})
	return v
}

// DigitCount counts the decimal digits in s, ignoring separators
func DigitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// IsEmail reports whether s looks like local@domain.tld
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidateField checks one field and returns its error message, or "" when
// the value is acceptable. Values are trimmed before checking.
func ValidateField(field Field, value string) string {
	rule, ok := rules[field]
	if !ok {
		return ""
	}
	err := validate.Var(strings.TrimSpace(value), rule.tag)
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Tag() == "required" {
		return rule.required
	}
	return rule.invalid
}

// ValidateForm checks all four fields. Every field is evaluated even after
// the first failure.
func ValidateForm(form Form) ValidationResult {
	result := ValidationResult{Valid: true, Errors: make(map[Field]string, len(Fields))}
	for _, field := range Fields {
		if msg := ValidateField(field, form.Get(field)); msg != "" {
			result.Errors[field] = msg
			result.Valid = false
		}
	}
	return result
}
