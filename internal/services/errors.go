package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAttributeRead marks a failure reading a range-source attribute.
	// Recoverable via the window fallback when the caller enables it.
	ErrAttributeRead = errors.New("attribute read error")
	// ErrValidation marks input the collaborator rejected.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks unusable caller-supplied configuration.
	ErrConfiguration = errors.New("configuration error")
	// ErrExternalTool marks a bridge command failure.
	ErrExternalTool = errors.New("external tool error")
	// ErrTransient marks failures worth retrying on a later run.
	ErrTransient = errors.New("transient failure")
)

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
