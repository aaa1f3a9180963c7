package middleware

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/clasifica/clasifica-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// CustomClaims contains the profile claims Auth0 adds to access tokens
type CustomClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Validate implements validator.CustomClaims
func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// Auth0IDKey is the context key for the Auth0 user ID (subject)
	Auth0IDKey contextKey = "auth0_id"
	// OwnerIDKey is the context key for the owner the request acts as
	OwnerIDKey contextKey = "owner_id"
)

// OwnerProvider maps a token identity to an owner
type OwnerProvider interface {
	ResolveOwner(identity domain.OwnerIdentity) (domain.OwnerID, error)
}

// tokenValidator is implemented by *validator.Validator
type tokenValidator interface {
	ValidateToken(ctx context.Context, token string) (interface{}, error)
}

// AuthMiddleware provides JWT validation middleware
type AuthMiddleware struct {
	validator     tokenValidator
	ownerProvider OwnerProvider
}

// NewAuthMiddleware creates a new AuthMiddleware with Auth0 configuration
func NewAuthMiddleware(auth0Domain, audience string, ownerProvider OwnerProvider) (*AuthMiddleware, error) {
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

	return &AuthMiddleware{
		validator:     jwtValidator,
		ownerProvider: ownerProvider,
	}, nil
}

// Authenticate returns an Echo middleware that validates JWT tokens and resolves the owner
func (m *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return unauthorizedError(c, "missing authorization header")
			}

			// Check Bearer prefix
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return unauthorizedError(c, "invalid authorization header format")
			}

			claims, err := m.validator.ValidateToken(c.Request().Context(), parts[1])
			if err != nil {
				log.Debug().Err(err).Msg("Token validation failed")
				return unauthorizedError(c, "invalid token")
			}

			validatedClaims, ok := claims.(*validator.ValidatedClaims)
			if !ok {
				return unauthorizedError(c, "invalid claims")
			}

			identity := ownerIdentity(validatedClaims)
			ownerID, err := m.ownerProvider.ResolveOwner(identity)
			if err != nil {
				log.Error().Err(err).Str("auth0_id", identity.Auth0ID).Msg("Owner lookup failed")
				return unauthorizedError(c, "owner not found")
			}

			ctx := context.WithValue(c.Request().Context(), Auth0IDKey, identity.Auth0ID)
			ctx = context.WithValue(ctx, OwnerIDKey, ownerID)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// GetAuth0ID extracts the Auth0 user ID from the context
func GetAuth0ID(c echo.Context) string {
	if id, ok := c.Request().Context().Value(Auth0IDKey).(string); ok {
		return id
	}
	return ""
}

// ownerIdentity reads the subject and the optional profile claims
func ownerIdentity(claims *validator.ValidatedClaims) domain.OwnerIdentity {
	identity := domain.OwnerIdentity{Auth0ID: claims.RegisteredClaims.Subject}
	if custom, ok := claims.CustomClaims.(*CustomClaims); ok && custom != nil {
		identity.Email = strings.TrimSpace(custom.Email)
		identity.Name = strings.TrimSpace(custom.Name)
	}
	return identity
}

// GetOwnerID extracts the owner ID from the context. The zero id means unauthenticated.
func GetOwnerID(c echo.Context) domain.OwnerID {
	if id, ok := c.Request().Context().Value(OwnerIDKey).(domain.OwnerID); ok {
		return id
	}
	return domain.OwnerID(uuid.Nil)
}
