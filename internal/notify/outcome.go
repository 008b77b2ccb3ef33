package notify

// Outcome is the result of one send attempt. Transport failures are
// reported here instead of as errors so a single failed notification
// can never abort a dispatch run.
type Outcome string

const (
	// OutcomeSent means the transport accepted the message.
	OutcomeSent Outcome = "sent"
	// OutcomeSkippedNoDestination means the user has no token or address;
	// nothing was attempted.
	OutcomeSkippedNoDestination Outcome = "skipped_no_destination"
	// OutcomeFailed means the transport rejected the message.
	OutcomeFailed Outcome = "failed"
)

// Result pairs an outcome with the transport failure reason, if any.
type Result struct {
	Outcome Outcome
	Reason  string
}

func sent() Result {
	return Result{Outcome: OutcomeSent}
}

func skipped() Result {
	return Result{Outcome: OutcomeSkippedNoDestination}
}

func failed(err error) Result {
	return Result{Outcome: OutcomeFailed, Reason: err.Error()}
}
