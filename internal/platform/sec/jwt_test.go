// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-cms/internal/platform/sec"
)

const issuer = "yomira.app"

func sign(t *testing.T, key *rsa.PrivateKey, claims sec.AuthClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func claimsFor(userID, iss string, expiresIn time.Duration) sec.AuthClaims {
	now := time.Now()
	return sec.AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    iss,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		},
		UserID:   userID,
		Username: "editor",
	}
}

/*
TestTokenVerifier verifies signature, issuer and expiry checks.
*/
func TestTokenVerifier(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	verifier := sec.NewTokenVerifierFromKey(&key.PublicKey, issuer)

	t.Run("valid", func(t *testing.T) {
		claims, err := verifier.VerifyToken(sign(t, key, claimsFor("user-1", issuer, time.Hour)))
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)
		assert.Equal(t, "editor", claims.Username)
	})

	rejected := map[string]string{
		"expired":      sign(t, key, claimsFor("user-1", issuer, -time.Hour)),
		"wrong_issuer": sign(t, key, claimsFor("user-1", "elsewhere", time.Hour)),
		"wrong_key":    sign(t, other, claimsFor("user-1", issuer, time.Hour)),
		"missing_user": sign(t, key, claimsFor("", issuer, time.Hour)),
		"not_a_token":  "abc.def.ghi",
	}

	for name, token := range rejected {
		t.Run(name, func(t *testing.T) {
			_, err := verifier.VerifyToken(token)
			assert.True(t, errors.Is(err, sec.ErrInvalidToken))
		})
	}
}
