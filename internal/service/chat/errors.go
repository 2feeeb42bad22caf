package chat

// Kind classifies a chat failure for the HTTP layer. The client-facing
// Message is safe and localized; collaborator internals go to the log only.
type Kind int

const (
	// KindValidation rejects bad input. Never retried.
	KindValidation Kind = iota
	// KindRateLimited suppresses a duplicate resubmission.
	KindRateLimited
	// KindUpstreamBusy maps a collaborator 429 onto a temporary outage.
	KindUpstreamBusy
	// KindUpstreamTimeout is a search deadline spent past the retry budget.
	KindUpstreamTimeout
	// KindUpstream is any other collaborator failure.
	KindUpstream
	// KindMalformed is a collaborator reply that broke its schema.
	KindMalformed
	// KindInternal is anything unanticipated.
	KindInternal
)

// Error is the orchestrator's terminal failure type.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}
