package jwtauth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Tokens carry the user id as their only claim and no expiration:
// they stay valid until the signing secret rotates.
type claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

func Sign(userID, secret string) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{UserID: userID}) //nolint:exhaustruct

	token, err := t.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token error: %w", err)
	}

	return token, nil
}

func Verify(token, secret string) (string, error) {
	var c claims

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	t, err := parser.ParseWithClaims(token, &c, func(_ *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return "", fmt.Errorf("parse token error: %w: %w", ErrInvalidToken, err)
	}

	if !t.Valid || c.UserID == "" {
		return "", ErrInvalidToken
	}

	return c.UserID, nil
}
