package websocket

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/clasifica/clasifica-backend/internal/domain"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned when JWT validation fails
var ErrInvalidToken = errors.New("invalid token")

// ErrOwnerNotFound is returned when the token subject cannot be mapped to an owner
var ErrOwnerNotFound = domain.ErrOwnerNotFound

// OwnerLookup maps a token identity to an owner ID
type OwnerLookup interface {
	ResolveOwner(identity domain.OwnerIdentity) (domain.OwnerID, error)
}

// CustomClaims contains the custom claims from Auth0 JWT
type CustomClaims struct{}

// Validate implements validator.CustomClaims
func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// Auth0JWTValidator validates Auth0 JWT tokens for WebSocket connections
type Auth0JWTValidator struct {
	validator   *validator.Validator
	ownerLookup OwnerLookup
}

// NewAuth0JWTValidator creates a new Auth0JWTValidator
func NewAuth0JWTValidator(auth0Domain, audience string, ownerLookup OwnerLookup) (*Auth0JWTValidator, error) {
	issuerURL, err := url.Parse("https://" + auth0Domain + "/")
	if err != nil {
		return nil, err
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &CustomClaims{}
		}),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, err
	}

	return &Auth0JWTValidator{
		validator:   jwtValidator,
		ownerLookup: ownerLookup,
	}, nil
}

// ValidateToken validates a JWT token and returns the owner it belongs to
func (v *Auth0JWTValidator) ValidateToken(token string) (domain.OwnerID, error) {
	ctx := context.Background()

	claims, err := v.validator.ValidateToken(ctx, token)
	if err != nil {
		return domain.OwnerID(uuid.Nil), ErrInvalidToken
	}

	validatedClaims, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return domain.OwnerID(uuid.Nil), ErrInvalidToken
	}

	// profile claims are refreshed by the HTTP middleware; the feed only needs the subject
	ownerID, err := v.ownerLookup.ResolveOwner(domain.OwnerIdentity{Auth0ID: validatedClaims.RegisteredClaims.Subject})
	if err != nil {
		return domain.OwnerID(uuid.Nil), ErrOwnerNotFound
	}

	return ownerID, nil
}
