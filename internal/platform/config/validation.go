package config

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Name fields by their koanf key so errors read like the YAML file.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		return name
	})

	must(v.RegisterValidation("rate", isRate))
	must(v.RegisterValidation("origin", isOrigin))
	v.RegisterStructValidation(retryIntervals, RetryConfig{})
	v.RegisterStructValidation(corsCredentials, CORSConfig{})

	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// isRate accepts a decimal fraction such as "0.07".
func isRate(fl validator.FieldLevel) bool {
	r, err := decimal.NewFromString(fl.Field().String())
	return err == nil && !r.IsNegative() && r.LessThanOrEqual(decimal.NewFromInt(1))
}

// isOrigin accepts "*" or a scheme://host origin, the forms gin-contrib/cors
// allows without panicking at startup.
func isOrigin(fl validator.FieldLevel) bool {
	origin := fl.Field().String()
	if origin == "*" {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}

	return (u.Scheme == "http" || u.Scheme == "https") && u.Path == ""
}

func retryIntervals(sl validator.StructLevel) {
	r, _ := sl.Current().Interface().(RetryConfig)
	if r.InitialInterval > 0 && r.MaxInterval > 0 && r.MaxInterval < r.InitialInterval {
		sl.ReportError(r.MaxInterval, "max_interval", "MaxInterval", "gtefield", "initial_interval")
	}
}

// Browsers refuse credentialed responses carrying a wildcard origin.
func corsCredentials(sl validator.StructLevel) {
	c, _ := sl.Current().Interface().(CORSConfig)
	if c.AllowCredentials && slices.Contains(c.AllowedOrigins, "*") {
		sl.ReportError(c.AllowCredentials, "allow_credentials", "AllowCredentials", "wildcard", "")
	}
}

// Validate reports every invalid setting at once. Both the service and
// quotectl refuse to start on error.
func (c *Config) Validate() error {
	err := validate.Struct(c)

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	lines := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		lines = append(lines, describe(fe))
	}

	return fmt.Errorf("config validation failed:\n  %s", strings.Join(lines, "\n  "))
}

func describe(fe validator.FieldError) string {
	key := configKey(fe.Namespace())

	switch fe.Tag() {
	case "required":
		return key + " is required"
	case "required_if":
		field, value, _ := strings.Cut(fe.Param(), " ")
		return fmt.Sprintf("%s is required when %s is %s", key, strings.ToLower(field), value)
	case "min":
		return fmt.Sprintf("%s must be at least %s", key, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", key, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", key, fe.Param())
	case "url":
		return key + " must be a valid URL"
	case "hostname_port":
		return key + " must be host:port"
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", key, fe.Param())
	case "alpha":
		return key + " must contain letters only"
	case "rate":
		return fmt.Sprintf("%s must be a fraction between 0 and 1, got %q", key, fe.Value())
	case "origin":
		return fmt.Sprintf("%s must be \"*\" or an http(s)://host origin, got %q", key, fe.Value())
	case "gtefield":
		return fmt.Sprintf("%s must not be shorter than %s", key, fe.Param())
	case "wildcard":
		return key + ` cannot be combined with the "*" origin`
	default:
		return fmt.Sprintf("%s failed validation: %s", key, fe.Tag())
	}
}

// configKey turns "Config.server.cors.allowed_origins[0]" into
// "server.cors.allowed_origins[0]".
func configKey(namespace string) string {
	_, key, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}

	return key
}
