package auth

import (
	"fmt"
	"strconv"

	"github.com/beconnected/beconnected"
	"github.com/golang-jwt/jwt/v4"
)

// IssueToken signs a session token for u, valid for the Service's token TTL.
func (s *Service) IssueToken(u beconnected.User) (string, error) {
	if u.ID == 0 {
		return "", fmt.Errorf("%w: user has no ID", ErrNotValid)
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(u.ID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("%w: signing token: %s", ErrUnexpected, err)
	}

	return tok, nil
}

// Authenticate validates a session token, returning the ID of the user it was issued to.
//
// Tokens that are malformed, expired or signed by another key return ErrNotValid.
func (s *Service) Authenticate(token string) (uint, error) {
	if token == "" {
		return 0, fmt.Errorf("%w: no token", ErrNotValid)
	}

	claims := new(jwt.RegisteredClaims)
	_, err := s.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrNotValid, err)
	}

	if !claims.VerifyExpiresAt(s.now(), true) {
		return 0, fmt.Errorf("%w: token expired", ErrNotValid)
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 0)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: subject %q", ErrNotValid, claims.Subject)
	}

	return uint(id), nil
}
