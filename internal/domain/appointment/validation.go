package appointment

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/migrantcare/healthtrack/internal/platform/apperror"
)

// CreateRequest is the body of POST /appointments.
type CreateRequest struct {
	DoctorID   string `json:"doctorId" validate:"required,uuid"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	Time       string `json:"time" validate:"required,datetime=15:04"`
	Type       string `json:"type" validate:"max=100"`
	Hospital   string `json:"hospital" validate:"required,max=200"`
	Department string `json:"department" validate:"required,max=200"`
	Notes      string `json:"notes" validate:"max=2000"`
	Contact    string `json:"contact" validate:"required,max=50"`
	Address    string `json:"address" validate:"required,max=500"`
	Priority   string `json:"priority" validate:"omitempty,oneof=normal urgent emergency"`
}

// UpdateRequest is the body of PUT /appointments/:id. Absent fields are left
// unchanged; present fields follow the create rules and may not be blanked
// unless optional.
type UpdateRequest struct {
	DoctorID   *string `json:"doctorId" validate:"omitnil,uuid"`
	Date       *string `json:"date" validate:"omitnil,datetime=2006-01-02"`
	Time       *string `json:"time" validate:"omitnil,datetime=15:04"`
	Type       *string `json:"type" validate:"omitnil,max=100"`
	Hospital   *string `json:"hospital" validate:"omitnil,min=1,max=200"`
	Department *string `json:"department" validate:"omitnil,min=1,max=200"`
	Notes      *string `json:"notes" validate:"omitnil,max=2000"`
	Contact    *string `json:"contact" validate:"omitnil,min=1,max=50"`
	Address    *string `json:"address" validate:"omitnil,min=1,max=500"`
	Priority   *string `json:"priority" validate:"omitnil,oneof=normal urgent emergency"`
}

func (r *UpdateRequest) Empty() bool {
	return r.DoctorID == nil && r.Date == nil && r.Time == nil && r.Type == nil &&
		r.Hospital == nil && r.Department == nil && r.Notes == nil &&
		r.Contact == nil && r.Address == nil && r.Priority == nil
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate checks the create schema and reports every failing field.
func (r *CreateRequest) Validate() error {
	r.trim()
	return check(r)
}

// Validate checks the update schema and reports every failing field.
func (r *UpdateRequest) Validate() error {
	r.trim()
	if r.Empty() {
		return apperror.Field("body", "at least one field must be provided")
	}
	return check(r)
}

func check(req interface{}) error {
	err := validatorInstance().Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.Field("body", err.Error())
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; !seen {
			fields[fe.Field()] = fieldMessage(fe)
		}
	}
	return apperror.Validation(fields)
}

func fieldMessage(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "min":
		return name + " cannot be empty"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
	case "uuid":
		return name + " must be a valid id"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "datetime":
		if fe.Param() == TimeLayout {
			return name + " must be a 24-hour time in HH:MM format"
		}
		return name + " must be a date in YYYY-MM-DD format"
	default:
		return name + " is invalid"
	}
}

func (r *CreateRequest) trim() {
	for _, s := range []*string{&r.DoctorID, &r.Date, &r.Time, &r.Type, &r.Hospital,
		&r.Department, &r.Contact, &r.Address, &r.Priority} {
		*s = strings.TrimSpace(*s)
	}
}

func (r *UpdateRequest) trim() {
	for _, s := range []*string{r.DoctorID, r.Date, r.Time, r.Type, r.Hospital,
		r.Department, r.Contact, r.Address, r.Priority} {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
}

// normalizeDate and normalizeTime canonicalize values that already passed
// validation, e.g. "9:05" becomes "09:05".
func normalizeDate(s string) string {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return s
	}
	return t.Format(DateLayout)
}

func normalizeTime(s string) string {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return s
	}
	return t.Format(TimeLayout)
}
