package dispatch

import "net/http"

// Outcome is what the credential loop does with a response status
type Outcome int

const (
	// OutcomeSuccess returns the response
	OutcomeSuccess Outcome = iota

	// OutcomeRetry moves on to the next credential
	OutcomeRetry

	// OutcomeStop returns the failure without trying further credentials
	OutcomeStop
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeRetry:
		return "retry"
	default:
		return "stop"
	}
}

// ClassifyStatus maps an HTTP status to a credential loop outcome.
// Only auth and quota statuses are worth another key.
func ClassifyStatus(status int) Outcome {
	switch status {
	case http.StatusOK:
		return OutcomeSuccess
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
		return OutcomeRetry
	default:
		return OutcomeStop
	}
}
