package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"
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

// Validate checks that every path is set and the controller tick is positive.
// The returned error is a *ConfigurationError wrapping all field problems.
func (c ZapretConfig) Validate() error {
	var errs ValidationErrors

	required := map[string]string{
		"workDir":              c.WorkDir,
		"repoURL":              c.RepoURL,
		"systemDir":            c.SystemDir,
		"systemConfigPath":     c.SystemConfigPath,
		"strategyStorePath":    c.StrategyStorePath,
		"paths.installAnswers": c.Paths.InstallAnswers,
		"paths.wrapperScript":  c.Paths.WrapperScript,
		"paths.installerJob":   c.Paths.InstallerJob,
		"paths.configStaging":  c.Paths.ConfigStaging,
		"service.unit":         c.Service.Unit,
	}
	for _, field := range slices.Sorted(maps.Keys(required)) {
		if strings.TrimSpace(required[field]) == "" {
			errs.Add(field, "must not be empty")
		}
	}

	if c.PollInterval <= 0 {
		errs.Add("pollInterval", "must be positive", c.PollInterval)
	}
	if c.NetworkSettleDelay < 0 {
		errs.Add("networkSettleDelay", "must not be negative", c.NetworkSettleDelay)
	}

	if !errs.HasErrors() {
		return nil
	}
	return NewConfigurationErrorWithDetails("", configFileName, "validation",
		"invalid configuration", errs.Error(),
		[]string{"Remove the offending keys to use the defaults"})
}
