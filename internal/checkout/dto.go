package checkout

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

var contactRules = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})
	return v
}()

// Contact is the body of POST /orders/create. Every field is copied onto the order.
type Contact struct {
	Email      string `json:"email" validate:"required,email,max=254"`
	FirstName  string `json:"first_name" validate:"required,max=100"`
	LastName   string `json:"last_name" validate:"required,max=100"`
	Address    string `json:"address" validate:"required,max=255"`
	City       string `json:"city" validate:"required,max=100"`
	PostalCode string `json:"postal_code" validate:"required,max=20"`
	Phone      string `json:"phone" validate:"required,max=20"`
}

func (c Contact) normalized() Contact {
	return Contact{
		Email:      strings.ToLower(strings.TrimSpace(c.Email)),
		FirstName:  strings.TrimSpace(c.FirstName),
		LastName:   strings.TrimSpace(c.LastName),
		Address:    strings.TrimSpace(c.Address),
		City:       strings.TrimSpace(c.City),
		PostalCode: strings.TrimSpace(c.PostalCode),
		Phone:      strings.TrimSpace(c.Phone),
	}
}

// validate applies the field rules after normalization. Column widths in the
// orders table match the max tags.
func (c Contact) validate() error {
	err := contactRules.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
	}
	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = contactMessage(fe)
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
}

func contactMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	}
	return "is invalid"
}
