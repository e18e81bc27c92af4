package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrLogFormat           = errors.New("log format error")
	ErrCodec               = errors.New("invalid reference")
	ErrNotFound            = errors.New("not found")
	ErrValidation          = errors.New("validation error")
	ErrStateTransition     = errors.New("illegal state transition")
	ErrConcurrencyConflict = errors.New("concurrency conflict")
	ErrFingerprintConflict = errors.New("fingerprint conflict")
	ErrConfiguration       = errors.New("configuration error")
	ErrTransient           = errors.New("transient failure")
)

// Kind names the classification of an error for presentation.
type Kind string

const (
	KindLogFormat           Kind = "log_format"
	KindCodec               Kind = "codec"
	KindNotFound            Kind = "not_found"
	KindValidation          Kind = "validation"
	KindStateTransition     Kind = "state_transition"
	KindConcurrencyConflict Kind = "concurrency_conflict"
	KindFingerprintConflict Kind = "fingerprint_conflict"
	KindConfiguration       Kind = "configuration"
	KindInternal            Kind = "internal"
)

var kindMarkers = []struct {
	marker error
	kind   Kind
}{
	{ErrCodec, KindCodec},
	{ErrNotFound, KindNotFound},
	{ErrLogFormat, KindLogFormat},
	{ErrValidation, KindValidation},
	{ErrStateTransition, KindStateTransition},
	{ErrConcurrencyConflict, KindConcurrencyConflict},
	{ErrFingerprintConflict, KindFingerprintConflict},
	{ErrConfiguration, KindConfiguration},
}

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// KindOf classifies err by the first sentinel it matches. Codec errors are
// checked before not-found so an invalid reference is never reported as a
// missing entity.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	for _, km := range kindMarkers {
		if errors.Is(err, km.marker) {
			return km.kind
		}
	}
	return KindInternal
}

// Recoverable reports whether the user can fix the failure by editing and
// resubmitting, as opposed to failures that are terminal for the request.
func Recoverable(err error) bool {
	switch KindOf(err) {
	case KindLogFormat, KindValidation, KindFingerprintConflict:
		return true
	default:
		return false
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
