package domain

type CheckoutStatus string

const (
	CheckoutStatusIdle       CheckoutStatus = "IDLE"
	CheckoutStatusValidating CheckoutStatus = "VALIDATING"
	CheckoutStatusSubmitting CheckoutStatus = "SUBMITTING"
	CheckoutStatusSucceeded  CheckoutStatus = "SUCCEEDED"
	CheckoutStatusFailed     CheckoutStatus = "FAILED"
)

var checkoutTransitions = map[CheckoutStatus][]CheckoutStatus{
	CheckoutStatusIdle:       {CheckoutStatusValidating},
	CheckoutStatusValidating: {CheckoutStatusSubmitting, CheckoutStatusIdle},
	CheckoutStatusSubmitting: {CheckoutStatusSucceeded, CheckoutStatusFailed},
	CheckoutStatusSucceeded:  {CheckoutStatusIdle},
	CheckoutStatusFailed:     {CheckoutStatusIdle},
}

func CanTransitionTo(from, to CheckoutStatus) bool {
	for _, next := range checkoutTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s CheckoutStatus) IsTerminal() bool {
	return s == CheckoutStatusSucceeded || s == CheckoutStatusFailed
}

// InFlight reports whether an attempt currently owns the cart.
func (s CheckoutStatus) InFlight() bool {
	return s == CheckoutStatusValidating || s == CheckoutStatusSubmitting
}

// String representation (for logging)
func (s CheckoutStatus) String() string {
	return string(s)
}
