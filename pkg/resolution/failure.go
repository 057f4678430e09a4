package resolution

import (
	"errors"

	"github.com/socvr/chatbot-go/pkg/eligibility"
)

// Kind classifies a business failure
type Kind int

const (
	KindRequestNotFound Kind = iota + 1
	KindAlreadyProcessed
	KindInsufficientPermission
	KindEligibilityNotMet
)

func (k Kind) String() string {
	switch k {
	case KindRequestNotFound:
		return "request-not-found"
	case KindAlreadyProcessed:
		return "already-processed"
	case KindInsufficientPermission:
		return "insufficient-permission"
	case KindEligibilityNotMet:
		return "eligibility-not-met"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. Any *Failure of the same Kind matches.
var (
	ErrRequestNotFound        = &Failure{Kind: KindRequestNotFound}
	ErrAlreadyProcessed       = &Failure{Kind: KindAlreadyProcessed}
	ErrInsufficientPermission = &Failure{Kind: KindInsufficientPermission}
	ErrEligibilityNotMet      = &Failure{Kind: KindEligibilityNotMet}
)

// Failure is a user-facing outcome of Resolve. Message is the reply text.
type Failure struct {
	Kind    Kind
	Message string
	// Reason is set when Kind is KindEligibilityNotMet
	Reason eligibility.Reason

	cause error
}

func (f *Failure) Error() string {
	if f.Message == "" {
		return f.Kind.String()
	}
	return f.Message
}

func (f *Failure) Is(target error) bool {
	t, ok := target.(*Failure)
	return ok && t.Kind == f.Kind
}

func (f *Failure) Unwrap() error {
	return f.cause
}

// auditReason is the reason recorded in audit events
func (f *Failure) auditReason() string {
	if f.Kind == KindEligibilityNotMet {
		return "eligibility:" + f.Reason.String()
	}
	return f.Kind.String()
}

// AsFailure returns the *Failure in err's chain, if any
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

func notMet(err *eligibility.NotMetError) *Failure {
	return &Failure{
		Kind:    KindEligibilityNotMet,
		Message: err.Error(),
		Reason:  err.Reason,
		cause:   err,
	}
}
