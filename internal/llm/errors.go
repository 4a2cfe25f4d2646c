package llm

import (
	"errors"
	"fmt"
)

// Kind classifies why a text-generation call failed.
type Kind string

const (
	KindQuota             Kind = "quota"
	KindInvalidCredential Kind = "invalid_credential"
	KindNetwork           Kind = "network"
	KindGeneric           Kind = "generic"
)

// ErrNotConfigured is returned when no usable API key is set.
var ErrNotConfigured = errors.New("text generation API key not configured")

type UpstreamError struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("text generation failed (%s, %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("text generation failed (%s): %s", e.Kind, e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// KindOf extracts the failure kind, or KindGeneric for foreign errors.
func KindOf(err error) Kind {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream.Kind
	}
	return KindGeneric
}
