package checkout

// State is the per-attempt checkout phase.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
	StateAwaitingPayment
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateAwaitingPayment:
		return "awaiting_payment"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Busy reports whether a submission is in flight.
func (s State) Busy() bool { return s == StateValidating || s == StateSubmitting }
