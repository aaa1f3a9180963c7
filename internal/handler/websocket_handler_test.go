package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clasifica/clasifica-backend/internal/domain"
	"github.com/clasifica/clasifica-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockJWTValidator is a test double for JWT validation
type mockJWTValidator struct {
	ownerID domain.OwnerID
	err     error
}

func (m *mockJWTValidator) ValidateToken(token string) (domain.OwnerID, error) {
	return m.ownerID, m.err
}

// mockWorkspaceLookup serves workspaces keyed by owner and id
type mockWorkspaceLookup struct {
	owned map[domain.OwnerID]map[domain.WorkspaceID]bool
	err   error
}

func (m *mockWorkspaceLookup) GetWorkspace(owner domain.OwnerID, id domain.WorkspaceID) (*domain.WorkspaceSnapshot, error) {
	if m.err != nil {
		return nil, m.err
	}
	if !m.owned[owner][id] {
		return nil, domain.ErrWorkspaceNotFound
	}
	return &domain.WorkspaceSnapshot{ID: id.String()}, nil
}

var testAllowedOrigins = []string{"http://localhost:3000", "https://app.clasifica.io"}

func newTestWebSocketHandler(validator JWTValidator, lookup WorkspaceLookup) *WebSocketHandler {
	if lookup == nil {
		lookup = &mockWorkspaceLookup{}
	}
	return NewWebSocketHandler(websocket.NewHub(), validator, lookup, testAllowedOrigins)
}

func serveWS(h *WebSocketHandler, target string) error {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return h.HandleWS(e.NewContext(req, rec))
}

func TestWebSocketHandler_HandleWS_Rejections(t *testing.T) {
	owner := domain.OwnerID(uuid.New())
	owned := domain.WorkspaceID(uuid.New())
	foreign := domain.WorkspaceID(uuid.New())
	lookup := &mockWorkspaceLookup{owned: map[domain.OwnerID]map[domain.WorkspaceID]bool{
		owner:                      {owned: true},
		domain.OwnerID(uuid.New()): {foreign: true},
	}}

	tests := []struct {
		name      string
		target    string
		validator *mockJWTValidator
		lookup    WorkspaceLookup
		status    int
	}{
		{
			name:      "missing token",
			target:    "/ws",
			validator: &mockJWTValidator{ownerID: owner},
			status:    http.StatusUnauthorized,
		},
		{
			name:      "invalid token",
			target:    "/ws?token=invalid-jwt",
			validator: &mockJWTValidator{err: errors.New("bad signature")},
			status:    http.StatusUnauthorized,
		},
		{
			name:      "malformed workspace id",
			target:    "/ws?token=valid-jwt&workspace=not-a-uuid",
			validator: &mockJWTValidator{ownerID: owner},
			status:    http.StatusBadRequest,
		},
		{
			name:      "workspace of another owner",
			target:    "/ws?token=valid-jwt&workspace=" + foreign.String(),
			validator: &mockJWTValidator{ownerID: owner},
			lookup:    lookup,
			status:    http.StatusNotFound,
		},
		{
			name:      "unknown workspace",
			target:    "/ws?token=valid-jwt&workspace=" + uuid.NewString(),
			validator: &mockJWTValidator{ownerID: owner},
			lookup:    lookup,
			status:    http.StatusNotFound,
		},
		{
			name:      "lookup failure",
			target:    "/ws?token=valid-jwt&workspace=" + owned.String(),
			validator: &mockJWTValidator{ownerID: owner},
			lookup:    &mockWorkspaceLookup{err: errors.New("connection refused")},
			status:    http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestWebSocketHandler(tt.validator, tt.lookup)

			err := serveWS(h, tt.target)

			var httpErr *echo.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tt.status, httpErr.Code)
		})
	}
}

func TestWebSocketHandler_HandleWS_AcceptedReachesUpgrade(t *testing.T) {
	owner := domain.OwnerID(uuid.New())
	owned := domain.WorkspaceID(uuid.New())
	lookup := &mockWorkspaceLookup{owned: map[domain.OwnerID]map[domain.WorkspaceID]bool{owner: {owned: true}}}

	tests := []struct {
		name   string
		target string
	}{
		{"all workspaces", "/ws?token=valid-jwt"},
		{"owned workspace", "/ws?token=valid-jwt&workspace=" + owned.String()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestWebSocketHandler(&mockJWTValidator{ownerID: owner}, lookup)

			// a plain GET has no upgrade headers, so gorilla fails after the checks pass
			err := serveWS(h, tt.target)

			require.Error(t, err)
			var httpErr *echo.HTTPError
			assert.False(t, errors.As(err, &httpErr), "rejected before upgrade: %v", err)
			assert.Equal(t, 0, h.hub.TotalClientCount())
		})
	}
}

func TestWebSocketHandler_CheckOrigin(t *testing.T) {
	h := newTestWebSocketHandler(&mockJWTValidator{ownerID: domain.OwnerID(uuid.New())}, nil)

	tests := []struct {
		name     string
		origin   string
		expected bool
	}{
		{"allowed origin", "http://localhost:3000", true},
		{"allowed origin https", "https://app.clasifica.io", true},
		{"disallowed origin", "https://evil.com", false},
		{"empty origin (same-origin)", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.expected, h.checkOrigin(req))
		})
	}
}
