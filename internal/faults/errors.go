package faults

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrAssetUnavailable  = errors.New("asset unavailable")
	ErrMalformedMetadata = errors.New("malformed metadata")
	ErrInvalidWindow     = errors.New("invalid window")
	ErrPersistence       = errors.New("persistence error")
	ErrConfiguration     = errors.New("configuration error")
	ErrTransport         = errors.New("transport error")
)

var markers = []error{
	ErrAssetUnavailable,
	ErrMalformedMetadata,
	ErrInvalidWindow,
	ErrPersistence,
	ErrConfiguration,
	ErrTransport,
}

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrConfiguration
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Category returns the marker carried by err, or nil when err is unmarked.
func Category(err error) error {
	if err == nil {
		return nil
	}
	for _, marker := range markers {
		if errors.Is(err, marker) {
			return marker
		}
	}
	return nil
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	switch Category(err) {
	case nil:
		if err == nil {
			return 0
		}
		return 1
	case ErrConfiguration, ErrInvalidWindow:
		return 2
	default:
		return 1
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
		return "assembly failure"
	}
	return strings.Join(parts, ": ")
}
