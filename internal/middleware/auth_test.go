package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/clasifica/clasifica-backend/internal/domain"
	"github.com/clasifica/clasifica-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type fakeValidator struct {
	claims interface{}
	err    error
	tokens []string
}

func (f *fakeValidator) ValidateToken(ctx context.Context, token string) (interface{}, error) {
	f.tokens = append(f.tokens, token)
	return f.claims, f.err
}

func newTestAuthMiddleware(v *fakeValidator, owners *testutil.MockOwnerRepository) *AuthMiddleware {
	return &AuthMiddleware{
		validator:     v,
		ownerProvider: owners,
	}
}

func validClaims(subject string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{Subject: subject},
		CustomClaims:     &CustomClaims{Email: "ana@example.com", Name: "Ana"},
	}
}

func TestGetAuth0ID(t *testing.T) {
	e := echo.New()

	tests := []struct {
		name     string
		setup    func(c echo.Context)
		expected string
	}{
		{
			name: "returns auth0 id when present",
			setup: func(c echo.Context) {
				ctx := context.WithValue(c.Request().Context(), Auth0IDKey, "auth0|12345")
				c.SetRequest(c.Request().WithContext(ctx))
			},
			expected: "auth0|12345",
		},
		{
			name:     "returns empty string when not present",
			setup:    func(c echo.Context) {},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			tt.setup(c)

			result := GetAuth0ID(c)
			if result != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestOwnerIdentity(t *testing.T) {
	tests := []struct {
		name     string
		claims   *validator.ValidatedClaims
		expected domain.OwnerIdentity
	}{
		{
			name:     "profile claims present",
			claims:   validClaims("auth0|ana"),
			expected: domain.OwnerIdentity{Auth0ID: "auth0|ana", Email: "ana@example.com", Name: "Ana"},
		},
		{
			name: "profile claims padded",
			claims: &validator.ValidatedClaims{
				RegisteredClaims: validator.RegisteredClaims{Subject: "auth0|bo"},
				CustomClaims:     &CustomClaims{Email: " bo@example.com ", Name: "  "},
			},
			expected: domain.OwnerIdentity{Auth0ID: "auth0|bo", Email: "bo@example.com"},
		},
		{
			name: "no custom claims",
			claims: &validator.ValidatedClaims{
				RegisteredClaims: validator.RegisteredClaims{Subject: "auth0|cy"},
			},
			expected: domain.OwnerIdentity{Auth0ID: "auth0|cy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ownerIdentity(tt.claims); got != tt.expected {
				t.Errorf("Expected %+v, got %+v", tt.expected, got)
			}
		})
	}
}

func TestGetOwnerID(t *testing.T) {
	e := echo.New()
	ownerID := domain.OwnerID(uuid.New())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	if GetOwnerID(c) != domain.OwnerID(uuid.Nil) {
		t.Error("Expected nil owner id without authentication")
	}

	ctx := context.WithValue(req.Context(), OwnerIDKey, ownerID)
	c.SetRequest(req.WithContext(ctx))
	if GetOwnerID(c) != ownerID {
		t.Errorf("Expected %s, got %s", ownerID, GetOwnerID(c))
	}
}

func TestCustomClaims_Validate(t *testing.T) {
	claims := &CustomClaims{
		Email: "test@example.com",
		Name:  "Test",
	}

	err := claims.Validate(context.Background())
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	ownerID := domain.OwnerID(uuid.New())

	tests := []struct {
		name           string
		header         string
		validator      *fakeValidator
		ownerErr       error
		expectedStatus int
		expectedDetail string
	}{
		{
			name:           "missing authorization header",
			header:         "",
			validator:      &fakeValidator{},
			expectedStatus: http.StatusUnauthorized,
			expectedDetail: "missing authorization header",
		},
		{
			name:           "wrong scheme",
			header:         "Basic dXNlcjpwYXNz",
			validator:      &fakeValidator{},
			expectedStatus: http.StatusUnauthorized,
			expectedDetail: "invalid authorization header format",
		},
		{
			name:           "invalid token",
			header:         "Bearer broken",
			validator:      &fakeValidator{err: errors.New("signature mismatch")},
			expectedStatus: http.StatusUnauthorized,
			expectedDetail: "invalid token",
		},
		{
			name:           "unexpected claims type",
			header:         "Bearer token",
			validator:      &fakeValidator{claims: "not claims"},
			expectedStatus: http.StatusUnauthorized,
			expectedDetail: "invalid claims",
		},
		{
			name:           "owner lookup fails",
			header:         "Bearer token",
			validator:      &fakeValidator{claims: validClaims("auth0|ana")},
			ownerErr:       errors.New("connection refused"),
			expectedStatus: http.StatusUnauthorized,
			expectedDetail: "owner not found",
		},
		{
			name:           "token without subject",
			header:         "Bearer token",
			validator:      &fakeValidator{claims: validClaims("")},
			expectedStatus: http.StatusUnauthorized,
			expectedDetail: "owner not found",
		},
		{
			name:           "valid token",
			header:         "bearer token",
			validator:      &fakeValidator{claims: validClaims("auth0|ana")},
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			owners := testutil.NewMockOwnerRepository()
			owners.Owners["auth0|ana"] = ownerID
			owners.Err = tt.ownerErr
			m := newTestAuthMiddleware(tt.validator, owners)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/workspaces", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			var seenOwner domain.OwnerID
			var seenAuth0ID string
			handler := func(c echo.Context) error {
				seenOwner = GetOwnerID(c)
				seenAuth0ID = GetAuth0ID(c)
				return c.String(http.StatusOK, "OK")
			}

			if err := m.Authenticate()(handler)(c); err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if rec.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d", tt.expectedStatus, rec.Code)
			}

			if tt.expectedStatus == http.StatusOK {
				if seenOwner != ownerID {
					t.Errorf("Expected owner %s, got %s", ownerID, seenOwner)
				}
				if seenAuth0ID != "auth0|ana" {
					t.Errorf("Expected auth0 id 'auth0|ana', got %q", seenAuth0ID)
				}
				if len(tt.validator.tokens) != 1 || tt.validator.tokens[0] != "token" {
					t.Errorf("Expected validator to receive the bare token, got %v", tt.validator.tokens)
				}
				stored := owners.Identities["auth0|ana"]
				if stored.Email != "ana@example.com" || stored.Name != "Ana" {
					t.Errorf("Expected profile claims to reach the owner store, got %+v", stored)
				}
				return
			}

			var problem problemDetails
			if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
				t.Fatalf("Failed to decode problem details: %v", err)
			}
			if problem.Type != errorTypeUnauthorized {
				t.Errorf("Expected type %q, got %q", errorTypeUnauthorized, problem.Type)
			}
			if problem.Detail != tt.expectedDetail {
				t.Errorf("Expected detail %q, got %q", tt.expectedDetail, problem.Detail)
			}
			if problem.Instance != "/api/v1/workspaces" {
				t.Errorf("Expected instance '/api/v1/workspaces', got %q", problem.Instance)
			}
		})
	}
}
