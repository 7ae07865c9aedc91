package auth

import (
	"fmt"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Claim names issued by the backend, with the short JWT names as fallback.
var (
	emailClaims   = []string{"http://schemas.xmlsoap.org/ws/2005/05/identity/claims/emailaddress", "email"}
	roleClaims    = []string{"http://schemas.microsoft.com/ws/2008/06/identity/claims/role", "role"}
	subjectClaims = []string{"http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier", "sub"}
	nameClaims    = []string{"http://schemas.xmlsoap.org/ws/2005/05/identity/claims/name", "name"}
)

var parser = jwt.NewParser()

// Decode reads the claims of a bearer token without verifying its signature;
// the backend remains the authority on signatures. A token whose exp is at or
// before now fails with ErrTokenExpired. Missing identity claims decode to "".
func Decode(token string, now time.Time) (domain.IdentityClaims, error) {
	mc := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, mc); err != nil {
		return domain.IdentityClaims{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	claims := domain.IdentityClaims{
		SubjectID:   lookup(mc, subjectClaims),
		Email:       lookup(mc, emailClaims),
		Role:        domain.Role(lookup(mc, roleClaims)),
		DisplayName: lookup(mc, nameClaims),
	}

	exp, err := mc.GetExpirationTime()
	if err != nil {
		return domain.IdentityClaims{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if claims.ExpiredAt(now) {
		return claims, ErrTokenExpired
	}
	return claims, nil
}

func lookup(mc jwt.MapClaims, names []string) string {
	for _, name := range names {
		if s, ok := mc[name].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
