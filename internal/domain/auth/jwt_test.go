package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_RoundTrip(t *testing.T) {
	s := NewJWTService("secret")

	token, err := s.GenerateToken("warehouse-7", time.Minute)
	require.NoError(t, err)

	actor, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "warehouse-7", actor.UserID)
	assert.Equal(t, SourceJWT, actor.Source)
}

func TestJWTService_RejectsForeignSecret(t *testing.T) {
	token, err := NewJWTService("other").GenerateToken("u1", time.Minute)
	require.NoError(t, err)

	_, err = NewJWTService("secret").ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsExpired(t *testing.T) {
	s := NewJWTService("secret")
	token, err := s.GenerateToken("u1", -time.Minute)
	require.NoError(t, err)

	_, err = s.ValidateToken(token)
	assert.Error(t, err)
}
