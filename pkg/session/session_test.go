package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_SignAndParse(t *testing.T) {
	manager := NewManager("secret-key", time.Hour)
	userID := uuid.New().String()

	token, err := manager.Sign(userID, "owner", "Alice", "alice@example.com")
	require.NoError(t, err)

	claims, err := manager.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.Subject)
	assert.Equal(t, "owner", claims.Role)
	assert.Equal(t, "Alice", claims.Name)
	assert.Equal(t, "alice@example.com", claims.Email)
}

func TestManager_Parse_RejectsForeignSignature(t *testing.T) {
	token, err := NewManager("secret-a", time.Hour).Sign(uuid.New().String(), "admin", "X", "x@y.com")
	require.NoError(t, err)

	_, err = NewManager("secret-b", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_Parse_RejectsExpired(t *testing.T) {
	manager := NewManager("secret-key", -time.Minute)
	token, err := manager.Sign(uuid.New().String(), "owner", "A", "a@b.com")
	require.NoError(t, err)

	_, err = manager.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_Parse_RejectsGarbage(t *testing.T) {
	manager := NewManager("secret-key", time.Hour)

	for _, token := range []string{"", "not.a.jwt", "a.b"} {
		_, err := manager.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}
