package session

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yair/localgeo/pkg/domain"
)

// DecodeSubject reads the "sub" claim of a JWT without verifying its signature.
// The subject only addresses profile requests and is never trusted for authorization.
func DecodeSubject(token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("empty token: %w", domain.ErrDecodeFailure)
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", errors.Join(domain.ErrDecodeFailure, err))
	}

	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("subject claim not found in token: %w", domain.ErrDecodeFailure)
	}
	return sub, nil
}
