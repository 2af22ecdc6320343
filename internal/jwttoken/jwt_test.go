package jwttoken_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchport/internal/jwttoken"
	id "matchport/pkg/domain"
	dErrors "matchport/pkg/domain-errors"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := jwttoken.NewService("test-signing-key", "matchport-test", time.Hour)
	accountID := id.NewAccountID()

	token, err := svc.GenerateAccessToken(accountID, "donor")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, accountID, claims.AccountID)
	assert.Equal(t, "donor", claims.Role)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	svc := jwttoken.NewService("test-signing-key", "matchport-test", -time.Minute)
	token, err := svc.GenerateAccessToken(id.NewAccountID(), "cbo")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.Equal(t, "token has expired", dErrors.MessageOf(err))
}

func TestValidateRejectsWrongKey(t *testing.T) {
	issuer := jwttoken.NewService("key-one", "matchport-test", time.Hour)
	verifier := jwttoken.NewService("key-two", "matchport-test", time.Hour)

	token, err := issuer.GenerateAccessToken(id.NewAccountID(), "admin")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := jwttoken.NewService("test-signing-key", "matchport-test", time.Hour)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := svc.ValidateToken(token)
		assert.Error(t, err, "token %q", token)
	}
}
