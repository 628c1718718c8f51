package faults

import (
	"errors"
	"fmt"
)

// Kinds double as Temporal application-error types, so workflow retry
// policies can exclude the non-retryable ones by name.
const (
	KindProvider          = "ProviderError"
	KindNetwork           = "NetworkError"
	KindValidation        = "ValidationError"
	KindPrecondition      = "PreconditionError"
	KindNotEntitled       = "NotEntitledError"
	KindNotFound          = "NotFoundError"
	KindMissingTranscript = "MissingTranscriptError"
)

type Fault struct {
	Kind string
	Step string
	Err  error
}

func (f *Fault) Error() string {
	if f == nil {
		return ""
	}
	if f.Step != "" {
		return fmt.Sprintf("%s (step=%s): %v", f.Kind, f.Step, f.Err)
	}
	return fmt.Sprintf("%s: %v", f.Kind, f.Err)
}

func (f *Fault) Unwrap() error { return f.Err }

func Provider(step string, err error) *Fault {
	return &Fault{Kind: KindProvider, Step: step, Err: err}
}

func Network(step string, err error) *Fault {
	return &Fault{Kind: KindNetwork, Step: step, Err: err}
}

func Validationf(step string, format string, args ...any) *Fault {
	return &Fault{Kind: KindValidation, Step: step, Err: fmt.Errorf(format, args...)}
}

func Preconditionf(step string, format string, args ...any) *Fault {
	return &Fault{Kind: KindPrecondition, Step: step, Err: fmt.Errorf(format, args...)}
}

func NotEntitledf(format string, args ...any) *Fault {
	return &Fault{Kind: KindNotEntitled, Err: fmt.Errorf(format, args...)}
}

func NotFoundf(format string, args ...any) *Fault {
	return &Fault{Kind: KindNotFound, Err: fmt.Errorf(format, args...)}
}

func MissingTranscript(projectID string) *Fault {
	return &Fault{Kind: KindMissingTranscript, Err: fmt.Errorf("no transcript persisted for project %s", projectID)}
}

// KindOf reports the fault kind of err, or "" when err carries none.
func KindOf(err error) string {
	var f *Fault
	if errors.As(err, &f) && f != nil {
		return f.Kind
	}
	return ""
}

// Retryable reports whether a fault kind represents an infrastructure-level
// failure worth re-attempting. Logic failures (bad provider output, unmet
// preconditions, entitlement, missing rows) are surfaced once and only
// re-attempted through the explicit retry path.
func Retryable(kind string) bool {
	switch kind {
	case KindProvider, KindNetwork:
		return true
	default:
		return false
	}
}

// NonRetryableKinds lists the fault kinds excluded from automatic step
// retries, in the form Temporal retry policies expect.
func NonRetryableKinds() []string {
	return []string{
		KindValidation,
		KindPrecondition,
		KindNotEntitled,
		KindNotFound,
		KindMissingTranscript,
	}
}
