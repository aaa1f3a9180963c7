package handler

import (
	"errors"
	"net/http"

	"github.com/clasifica/clasifica-backend/internal/domain"
	"github.com/clasifica/clasifica-backend/internal/websocket"
	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// JWTValidator validates JWT tokens and returns the owner they belong to
type JWTValidator interface {
	ValidateToken(token string) (domain.OwnerID, error)
}

// WorkspaceLookup finds a workspace of an owner; *service.WorkspaceService implements it
type WorkspaceLookup interface {
	GetWorkspace(owner domain.OwnerID, id domain.WorkspaceID) (*domain.WorkspaceSnapshot, error)
}

// WebSocketHandler upgrades authenticated requests to a live feed of workspace events.
// The feed covers every workspace of the owner, or one workspace when the
// "workspace" query parameter names it.
type WebSocketHandler struct {
	hub            *websocket.Hub
	validator      JWTValidator
	workspaces     WorkspaceLookup
	allowedOrigins map[string]bool
	upgrader       ws.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler
func NewWebSocketHandler(hub *websocket.Hub, validator JWTValidator, workspaces WorkspaceLookup, allowedOrigins []string) *WebSocketHandler {
	originMap := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		originMap[origin] = true
	}

	h := &WebSocketHandler{
		hub:            hub,
		validator:      validator,
		workspaces:     workspaces,
		allowedOrigins: originMap,
	}
	h.upgrader = ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// checkOrigin accepts requests without an Origin header and configured origins
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigins[origin] {
		return true
	}

	log.Warn().
		Str("origin", origin).
		Msg("WebSocket connection rejected: origin not allowed")
	return false
}

// HandleWS handles GET /ws?token=<jwt>[&workspace=<id>]
func (h *WebSocketHandler) HandleWS(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		log.Debug().Msg("WebSocket connection rejected: missing token")
		return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}

	ownerID, err := h.validator.ValidateToken(token)
	if err != nil {
		log.Debug().Err(err).Msg("WebSocket connection rejected: invalid token")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	workspaceID, err := h.subscribedWorkspace(ownerID, c.QueryParam("workspace"))
	if err != nil {
		return err
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return err
	}

	client := websocket.NewClient(conn, ownerID, workspaceID, h.hub)
	h.hub.Register(client)

	log.Info().
		Str("owner_id", ownerID.String()).
		Str("client_id", client.ID()).
		Str("workspace_id", c.QueryParam("workspace")).
		Msg("WebSocket client connected")

	go client.WritePump()
	go client.ReadPump()

	return nil
}

// subscribedWorkspace resolves the optional workspace filter. The zero id means all
// workspaces; a named workspace must belong to the owner.
func (h *WebSocketHandler) subscribedWorkspace(ownerID domain.OwnerID, raw string) (domain.WorkspaceID, error) {
	none := domain.WorkspaceID(uuid.Nil)
	if raw == "" {
		return none, nil
	}

	workspaceID, err := domain.ParseWorkspaceID(raw)
	if err != nil {
		return none, echo.NewHTTPError(http.StatusBadRequest, "invalid workspace id")
	}

	if _, err := h.workspaces.GetWorkspace(ownerID, workspaceID); err != nil {
		if errors.Is(err, domain.ErrWorkspaceNotFound) {
			return none, echo.NewHTTPError(http.StatusNotFound, "workspace not found")
		}
		log.Error().
			Err(err).
			Str("owner_id", ownerID.String()).
			Str("workspace_id", raw).
			Msg("WebSocket workspace lookup failed")
		return none, echo.NewHTTPError(http.StatusInternalServerError, "workspace lookup failed")
	}
	return workspaceID, nil
}
