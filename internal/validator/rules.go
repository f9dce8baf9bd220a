package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"agrocommunity_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

var (
	otpPattern      = regexp.MustCompile(`^[0-9]{4}$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.]+$`)
)

// customRule is a tag the request DTOs use on top of the built-in ones.
type customRule struct {
	check   validator.Func
	message string
}

var customRules = map[string]customRule{
	"is-user-role": {validateUserRole, "Must be one of: farmer, buyer, seller, admin"},
	"otp":          {validateOTP, "Must be a 4-digit code"},
	"username":     {validateUsername, "May contain only letters, digits, dots and underscores"},
}

func registerCustomRules(v *validator.Validate) error {
	for tag, rule := range customRules {
		if err := v.RegisterValidation(tag, rule.check); err != nil {
			return fmt.Errorf("register validation tag %q: %w", tag, err)
		}
	}
	return nil
}

// builtinMessages covers the stock tags that appear on request DTOs.
var builtinMessages = map[string]func(fe validator.FieldError) string{
	"required": func(validator.FieldError) string { return "This field is required" },
	"email":    func(validator.FieldError) string { return "Must be a valid email address" },
	"url":      func(validator.FieldError) string { return "Must be a valid URL" },
	"min": func(fe validator.FieldError) string {
		if isSized(fe.Kind()) {
			return fmt.Sprintf("Must be at least %s items/characters long", fe.Param())
		}
		return fmt.Sprintf("Must be at least %s", fe.Param())
	},
	"max": func(fe validator.FieldError) string {
		return fmt.Sprintf("Must be at most %s", fe.Param())
	},
	"len": func(fe validator.FieldError) string {
		return fmt.Sprintf("Must be exactly %s items/characters long", fe.Param())
	},
	"oneof": func(fe validator.FieldError) string {
		return "Must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	},
}

func messageFor(fe validator.FieldError) string {
	if rule, ok := customRules[fe.Tag()]; ok {
		return rule.message
	}
	if msg, ok := builtinMessages[fe.Tag()]; ok {
		return msg(fe)
	}
	return fmt.Sprintf("Invalid value (failed on '%s' tag)", fe.Tag())
}

func isSized(k reflect.Kind) bool {
	return k == reflect.String || k == reflect.Slice || k == reflect.Map
}

// Empty values pass; pair these tags with required where needed.

func validateUserRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.UserRole(value).IsValid()
}

func validateOTP(fl validator.FieldLevel) bool {
	return otpPattern.MatchString(fl.Field().String())
}

func validateUsername(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || usernamePattern.MatchString(value)
}
