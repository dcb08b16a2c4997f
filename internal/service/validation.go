package service

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bktrade/site/internal/model"
	"github.com/go-playground/validator/v10"
)

// Per-field maximum lengths in characters.
const (
	maxNameLength         = 120
	maxOrganizationLength = 160
	maxPhoneLength        = 30
	maxEmailLength        = 160
	maxMessageLength      = 2000
	maxItemLength         = 240
	maxSourceLength       = 120
	maxNoteLength         = 400
)

var (
	phonePattern = regexp.MustCompile(`^\+?[0-9 ()\-]{6,20}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// leadInput is the sanitized form of a submission. Field order is the
// order in which validation failures are reported.
type leadInput struct {
	Name    string `validate:"min=2,max=120"`
	Phone   string `validate:"lead_phone"`
	Email   string `validate:"omitempty,lead_email"`
	Message string `validate:"max=2000"`
}

var leadFieldMessages = map[string]string{
	"Name":    "Укажите имя (от 2 до 120 символов).",
	"Phone":   "Укажите корректный номер телефона.",
	"Email":   "Некорректный email.",
	"Message": "Сообщение слишком длинное (не более 2000 символов).",
}

type statusInput struct {
	ID     int64  `validate:"gt=0"`
	Status string `validate:"oneof=new in_progress done"`
}

var statusFieldMessages = map[string]string{
	"ID":     "Некорректный идентификатор заявки.",
	"Status": "Недопустимый статус.",
}

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("lead_phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("lead_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// firstValidationError converts the first failed rule into a ValidationError.
func firstValidationError(err error, messages map[string]string) error {
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return &ValidationError{Field: "input", Message: "Некорректные данные."}
	}
	field := errs[0].Field()
	return &ValidationError{Field: strings.ToLower(field), Message: messages[field]}
}

// sanitize removes control characters, trims and clips s to max characters.
// keepNewlines preserves line breaks for multi-line text.
func sanitize(s string, max int, keepNewlines bool) string {
	if keepNewlines {
		s = strings.ReplaceAll(s, "\r\n", "\n")
	}
	s = strings.Map(func(r rune) rune {
		if r == utf8.RuneError {
			return -1
		}
		if keepNewlines && r == '\n' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > max {
		s = strings.TrimSpace(string([]rune(s)[:max]))
	}
	return s
}

// sanitizeSubmission returns the lead that would be stored for sub.
func sanitizeSubmission(sub *model.LeadSubmission) *model.Lead {
	return &model.Lead{
		Name:         sanitize(sub.Name, maxNameLength, false),
		Organization: sanitize(sub.Organization, maxOrganizationLength, false),
		Phone:        sanitize(sub.Phone, maxPhoneLength, false),
		Email:        strings.ToLower(sanitize(sub.Email, maxEmailLength, false)),
		Message:      sanitize(sub.Message, maxMessageLength, true),
		Item:         sanitize(sub.Item, maxItemLength, false),
		Source:       sanitize(sub.Source, maxSourceLength, false),
		IP:           sub.IP,
		UserAgent:    sanitize(sub.UserAgent, 300, false),
		Status:       model.LeadStatusNew,
	}
}
