package simulation

import (
	"errors"
	"fmt"
)

// ConfigurationError reports a setup problem that makes a run impossible.
// It is fatal: callers are expected to abort before the first tick.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return "configuration error: " + e.Reason
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// Is lets errors.Is match a ConfigurationError against a sentinel with the
// same field and reason, so separately built copies of ErrNoSafeZones still match.
func (e *ConfigurationError) Is(target error) bool {
	var other *ConfigurationError
	if !errors.As(target, &other) {
		return false
	}
	return e.Field == other.Field && e.Reason == other.Reason
}

// ErrNoSafeZones is returned when force computation is requested with an
// empty safe-zone collection.
var ErrNoSafeZones = &ConfigurationError{Field: "safeZones", Reason: "at least one safe zone is required"}

func configErrorf(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
