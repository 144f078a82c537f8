package domain

import (
	"errors"
	"fmt"
)

// ConfigCode identifies the category of a universe configuration failure.
type ConfigCode string

const (
	// ConfigCodeEmptyUniverse indicates a universe with no slots, pieces, or dancers.
	ConfigCodeEmptyUniverse ConfigCode = "EMPTY_UNIVERSE"
	// ConfigCodeMissingID indicates a piece or dancer with a blank ID.
	ConfigCodeMissingID ConfigCode = "MISSING_ID"
	// ConfigCodeDuplicateID indicates two slots, pieces, or dancers sharing an ID.
	ConfigCodeDuplicateID ConfigCode = "DUPLICATE_ID"
	// ConfigCodeUnknownSlot indicates a reference to a slot outside the declared domain.
	ConfigCodeUnknownSlot ConfigCode = "UNKNOWN_SLOT"
	// ConfigCodeUnknownPiece indicates a preference tier naming a piece that does not exist.
	ConfigCodeUnknownPiece ConfigCode = "UNKNOWN_PIECE"
	// ConfigCodeEmptyRehearsalSlots indicates a piece with no rehearsal slots.
	ConfigCodeEmptyRehearsalSlots ConfigCode = "EMPTY_REHEARSAL_SLOTS"
	// ConfigCodeInvalidCapacity indicates a piece with min < 1 or max < min.
	ConfigCodeInvalidCapacity ConfigCode = "INVALID_CAPACITY"
	// ConfigCodeOverlappingTiers indicates a piece appearing in two preference tiers
	// of the same dancer.
	ConfigCodeOverlappingTiers ConfigCode = "OVERLAPPING_TIERS"
	// ConfigCodePreferenceOutsideAvailability indicates a must-have or preferred
	// piece rehearsing outside the dancer's availability.
	ConfigCodePreferenceOutsideAvailability ConfigCode = "PREFERENCE_OUTSIDE_AVAILABILITY"
)

// ConfigError reports a malformed universe. Configuration errors are fatal:
// they are raised before any search starts and are never coerced into
// defaults.
type ConfigError struct {
	Code    ConfigCode
	Subject string
	Detail  string
}

func (e *ConfigError) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("invalid universe: %s: %s", e.Code, e.Detail)
	}
	return fmt.Sprintf("invalid universe: %s: %s: %s", e.Code, e.Subject, e.Detail)
}

// ConfigCodeOf extracts the configuration code from an error chain. The
// second return is false when the chain contains no ConfigError.
func ConfigCodeOf(err error) (ConfigCode, bool) {
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return cfgErr.Code, true
	}
	return "", false
}

func configErrorf(code ConfigCode, subject, format string, args ...any) error {
	return &ConfigError{Code: code, Subject: subject, Detail: fmt.Sprintf(format, args...)}
}
