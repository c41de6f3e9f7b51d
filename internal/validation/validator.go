package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/labstack/echo/v4"
)

type violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// PayloadError holds all violations found in request payload
type PayloadError struct {
	violations []violation
}

// NewPayloadError builds PayloadError with single violation
func NewPayloadError(field, msg string) *PayloadError {
	e := &PayloadError{violations: make([]violation, 0, 1)}
	e.Violation(field, msg)
	return e
}

func (e *PayloadError) Error() string {
	buff := bytes.NewBufferString("")

	for i, err := range e.violations {
		if i > 0 {
			buff.WriteString("\n")
		}
		buff.WriteString(err.Message)
	}

	return buff.String()
}

// Violation appends new violation
func (e *PayloadError) Violation(field, msg string) {
	e.violations = append(e.violations, violation{Field: field, Message: msg})
}

// Fields returns names of fields with violations
func (e *PayloadError) Fields() []string {
	fields := make([]string, 0, len(e.violations))
	for _, v := range e.violations {
		fields = append(fields, v.Field)
	}
	return fields
}

func (e *PayloadError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Errors []violation `json:"errors"`
	}{
		Errors: e.violations,
	})
}

// EchoValidator is struct validator with translated messages, satisfies echo.Validator
type EchoValidator struct {
	validator  *validator.Validate
	translator ut.Translator
}

// Echo builds EchoValidator from validator and translator
func Echo(validator *validator.Validate, translator ut.Translator) *EchoValidator {
	return &EchoValidator{
		validator:  validator,
		translator: translator,
	}
}

// English builds EchoValidator reporting json field names with english messages
func English() (*EchoValidator, error) {
	enLocale := en.New()
	unvTranslator := ut.New(enLocale, enLocale)
	trans, ok := unvTranslator.GetTranslator("en")
	if !ok {
		return nil, errors.New("failed to build validator because of missing en translations")
	}

	v := validator.New()
	v.RegisterTagNameFunc(jsonTagName)

	if err := enTranslations.RegisterDefaultTranslations(v, trans); err != nil {
		return nil, fmt.Errorf("failed to register en translations for validator - %w", err)
	}

	return Echo(v, trans), nil
}

// Validate validates struct and returns PayloadError in case of violations
func (v *EchoValidator) Validate(i any) error {
	err := v.validator.Struct(i)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return v.payloadError(ve)
	}

	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func (v *EchoValidator) payloadError(ve validator.ValidationErrors) error {
	pldErr := &PayloadError{violations: make([]violation, 0, len(ve))}
	for _, e := range ve {
		pldErr.Violation(e.Field(), e.Translate(v.translator))
	}
	return pldErr
}

func jsonTagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}
