package websocket

import (
	"errors"
	"testing"

	"github.com/clasifica/clasifica-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// mockOwnerLookup is a test double for OwnerLookup
type mockOwnerLookup struct {
	ownerID domain.OwnerID
	err     error
}

func (m *mockOwnerLookup) ResolveOwner(identity domain.OwnerIdentity) (domain.OwnerID, error) {
	return m.ownerID, m.err
}

func TestOwnerLookup_Interface(t *testing.T) {
	var _ OwnerLookup = (*mockOwnerLookup)(nil)
}

func TestValidatorErrors(t *testing.T) {
	assert.Equal(t, "owner not found", ErrOwnerNotFound.Error())
	assert.Equal(t, "invalid token", ErrInvalidToken.Error())
}

func TestCustomClaims_Validate(t *testing.T) {
	claims := &CustomClaims{}
	err := claims.Validate(nil)
	assert.NoError(t, err, "CustomClaims.Validate should return nil")
}

func TestNewAuth0JWTValidator_Success(t *testing.T) {
	lookup := &mockOwnerLookup{ownerID: domain.OwnerID(uuid.New())}

	validator, err := NewAuth0JWTValidator("test.auth0.com", "https://api.clasifica.io", lookup)
	assert.NoError(t, err)
	assert.NotNil(t, validator)
	assert.NotNil(t, validator.validator)
	assert.Equal(t, lookup, validator.ownerLookup)
}

func TestAuth0JWTValidator_ValidateToken_InvalidJWT(t *testing.T) {
	lookup := &mockOwnerLookup{ownerID: domain.OwnerID(uuid.New())}

	validator, err := NewAuth0JWTValidator("test.auth0.com", "https://api.clasifica.io", lookup)
	assert.NoError(t, err)

	ownerID, err := validator.ValidateToken("invalid-token")
	assert.Error(t, err)
	assert.Equal(t, domain.OwnerID(uuid.Nil), ownerID)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}
