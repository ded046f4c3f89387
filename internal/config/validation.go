package config

import (
	"fmt"
	"strings"
	"text/template"

	"dojo/pkg/logging"

	"github.com/Masterminds/sprig/v3"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if there are any validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string, value ...interface{}) {
	var val interface{}
	if len(value) > 0 {
		val = value[0]
	}
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   val,
		Message: message,
	})
}

// ValidateRequired checks if a required string field is not empty
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return ValidationError{
			Field:   field,
			Value:   value,
			Message: "is required",
		}
	}
	return nil
}

// ValidateOneOf checks if a value is in a list of allowed values
func ValidateOneOf(field, value string, allowed []string) error {
	for _, allowedValue := range allowed {
		if value == allowedValue {
			return nil
		}
	}
	return ValidationError{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")),
	}
}

func (ve *ValidationErrors) check(err error) {
	if err == nil {
		return
	}
	if v, ok := err.(ValidationError); ok {
		*ve = append(*ve, v)
		return
	}
	ve.Add("", err.Error())
}

// Validate checks the configuration for values the server cannot run with.
// The startup policy must be chosen explicitly: an empty value is rejected
// rather than silently mixing behaviors.
func (c DojoConfig) Validate() ValidationErrors {
	var errs ValidationErrors

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs.Add("server.port", "must be between 1 and 65535", c.Server.Port)
	}
	errs.check(ValidateRequired("server.allowedOrigin", c.Server.AllowedOrigin))
	if c.Server.PingInterval <= 0 || c.Server.PingInterval >= c.Server.PongWait {
		errs.Add("server.pingInterval", "must be positive and shorter than server.pongWait", c.Server.PingInterval)
	}

	errs.check(ValidateRequired("engine.binary", c.Engine.Binary))
	errs.check(ValidateRequired("engine.network", c.Engine.Network))
	errs.check(ValidateOneOf("engine.startupPolicy", string(c.Engine.StartupPolicy),
		[]string{string(StartupPolicyStrict), string(StartupPolicyLenient)}))
	if c.Engine.CommandTimeout <= 0 {
		errs.Add("engine.commandTimeout", "must be positive", c.Engine.CommandTimeout)
	}

	if c.Session.ReadinessDelay < 0 {
		errs.Add("session.readinessDelay", "must not be negative", c.Session.ReadinessDelay)
	}
	errs.check(ValidateOneOf("session.readiness", string(c.Session.Readiness),
		[]string{string(ReadinessTimer), string(ReadinessInspect)}))
	if c.Session.Readiness == ReadinessInspect && c.Session.InspectInterval <= 0 {
		errs.Add("session.inspectInterval", "must be positive when session.readiness is inspect", c.Session.InspectInterval)
	}
	if err := ValidateRequired("session.containerName", c.Session.ContainerName); err != nil {
		errs.check(err)
	} else if _, err := template.New("name").Funcs(sprig.TxtFuncMap()).Option("missingkey=error").Parse(c.Session.ContainerName); err != nil {
		errs.Add("session.containerName", fmt.Sprintf("invalid template: %v", err), c.Session.ContainerName)
	}

	errs.check(ValidateRequired("scenarios.defaultImage", c.Scenarios.DefaultImage))
	for id, image := range c.Scenarios.Images {
		if strings.TrimSpace(image) == "" {
			errs.Add("scenarios.images."+id, "image must not be empty")
		}
	}

	if _, ok := logging.ParseLevel(c.Log.Level); !ok {
		errs.Add("log.level", "must be one of: debug, info, warn, error", c.Log.Level)
	}
	errs.check(ValidateOneOf("log.format", c.Log.Format, []string{string(logging.FormatText), string(logging.FormatJSON)}))

	return errs
}
