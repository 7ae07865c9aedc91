package auth

import (
	"errors"
	"fmt"
)

var (
	ErrDecode         = errors.New("token decode failed")
	ErrMalformedToken = fmt.Errorf("%w: malformed token", ErrDecode)
	ErrTokenExpired   = fmt.Errorf("%w: token expired", ErrDecode)
)
