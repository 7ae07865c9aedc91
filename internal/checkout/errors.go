package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart          = errors.New("cart is empty, nothing to checkout")
	ErrCheckoutInProgress = errors.New("checkout already in progress")
	ErrSubmissionFailed   = errors.New("sale submission failed")
	ErrUnauthenticated    = errors.New("checkout requires a signed-in user")
	ErrIllegalTransition  = errors.New("illegal transition of checkout status")
)

// RejectionError is a completed submission the backend did not confirm.
type RejectionError struct {
	Message string
	Status  string
}

func (e *RejectionError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("sale rejected with status %q and no message", e.Status)
	}
	return fmt.Sprintf("sale rejected: %s", e.Message)
}
