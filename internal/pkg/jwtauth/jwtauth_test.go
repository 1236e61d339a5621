package jwtauth_test

import (
	"strings"
	"testing"

	"github.com/acmecorp/talent_agency/internal/pkg/jwtauth"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestSignVerify(t *testing.T) {
	token, err := jwtauth.Sign("e4c1a2f0-6f9f-4f47-9a45-8a4f26a80f11", testSecret)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	id, err := jwtauth.Verify(token, testSecret)
	require.NoError(t, err)
	require.Equal(t, "e4c1a2f0-6f9f-4f47-9a45-8a4f26a80f11", id)
}

func TestVerifyTamperedSignature(t *testing.T) {
	token, err := jwtauth.Sign("some-user", testSecret)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	_, err = jwtauth.Verify(tampered, testSecret)
	require.ErrorIs(t, err, jwtauth.ErrInvalidToken)
}

func TestVerifyWrongSecret(t *testing.T) {
	token, err := jwtauth.Sign("some-user", testSecret)
	require.NoError(t, err)

	_, err = jwtauth.Verify(token, "another-secret")
	require.ErrorIs(t, err, jwtauth.ErrInvalidToken)
}

func TestVerifyGarbage(t *testing.T) {
	for _, token := range []string{"", "garbage", "a.b", "a.b.c"} {
		_, err := jwtauth.Verify(token, testSecret)
		require.ErrorIs(t, err, jwtauth.ErrInvalidToken)
	}
}
