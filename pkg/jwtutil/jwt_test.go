package jwtutil

import (
	"testing"
	"time"

	"github.com/AR-Project/wpt-v3/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	util := NewJWTUtil(&config.JWTConfig{SigningKey: "k", ExpirationHours: 1})

	token, err := util.GenerateToken("usr_1", "a@b.c")
	require.NoError(t, err)

	claims, err := util.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "usr_1", claims.UserID)
	assert.Equal(t, "a@b.c", claims.Email)
}

func TestValidateRejectsWrongKey(t *testing.T) {
	token, err := NewJWTUtil(&config.JWTConfig{SigningKey: "one", ExpirationHours: 1}).GenerateToken("usr_1", "a@b.c")
	require.NoError(t, err)

	_, err = NewJWTUtil(&config.JWTConfig{SigningKey: "two", ExpirationHours: 1}).ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	util := NewJWTUtil(&config.JWTConfig{SigningKey: "k", ExpirationHours: 1})
	util.now = func() time.Time { return time.Now().Add(-3 * time.Hour) }

	token, err := util.GenerateToken("usr_1", "a@b.c")
	require.NoError(t, err)

	util.now = time.Now
	_, err = util.ValidateToken(token)
	assert.Error(t, err)
}

func TestNilConfig(t *testing.T) {
	util := NewJWTUtil(nil)
	_, err := util.GenerateToken("usr_1", "a@b.c")
	assert.Error(t, err)
	_, err = util.ValidateToken("x")
	assert.Error(t, err)
}
