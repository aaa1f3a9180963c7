package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/clasifica/clasifica-backend/internal/domain"
	"github.com/clasifica/clasifica-backend/internal/middleware"
	"github.com/clasifica/clasifica-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// DefaultMaxUploadBytes caps uploaded spreadsheets when no limit is configured
const DefaultMaxUploadBytes int64 = 10 << 20

// WorkspaceHandler handles workspace-related HTTP requests
type WorkspaceHandler struct {
	workspaceService *service.WorkspaceService
	maxUploadBytes   int64
}

// NewWorkspaceHandler creates a new WorkspaceHandler
func NewWorkspaceHandler(workspaceService *service.WorkspaceService, maxUploadBytes int64) *WorkspaceHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &WorkspaceHandler{
		workspaceService: workspaceService,
		maxUploadBytes:   maxUploadBytes,
	}
}

// CreateWorkspaceRequest represents the create workspace request body
type CreateWorkspaceRequest struct {
	Name string `json:"name"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Documents int    `json:"documents"`
}

// WorkspaceResponse represents a workspace in API responses
type WorkspaceResponse struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name"`
	ModelID    *string                `json:"modelId,omitempty"`
	Documents  int                    `json:"documents"`
	Categories []CategoryResponse     `json:"categories"`
	Metrics    *domain.MetricsSummary `json:"metrics,omitempty"`
}

// WorkspaceListItem represents a workspace in list responses
type WorkspaceListItem = domain.WorkspaceSummary

// CreateWorkspace handles POST /api/v1/workspaces
func (h *WorkspaceHandler) CreateWorkspace(c echo.Context) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return NewUnauthorizedError(c, "Owner required")
	}

	var req CreateWorkspaceRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	snapshot, err := h.workspaceService.CreateWorkspace(ownerID, req.Name)
	if err != nil {
		return h.handleError(c, ownerID, err, "Failed to create workspace")
	}

	return c.JSON(http.StatusCreated, toWorkspaceResponse(snapshot))
}

// GetWorkspaces handles GET /api/v1/workspaces
func (h *WorkspaceHandler) GetWorkspaces(c echo.Context) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return NewUnauthorizedError(c, "Owner required")
	}

	snapshots, err := h.workspaceService.ListWorkspaces(ownerID)
	if err != nil {
		return h.handleError(c, ownerID, err, "Failed to list workspaces")
	}

	response := make([]WorkspaceListItem, len(snapshots))
	for i, snapshot := range snapshots {
		response[i] = snapshot.Summarize()
	}

	return c.JSON(http.StatusOK, response)
}

// GetWorkspace handles GET /api/v1/workspaces/:id
func (h *WorkspaceHandler) GetWorkspace(c echo.Context) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return NewUnauthorizedError(c, "Owner required")
	}

	id, err := domain.ParseWorkspaceID(c.Param("id"))
	if err != nil {
		return invalidIDError(c)
	}

	snapshot, err := h.workspaceService.GetWorkspace(ownerID, id)
	if err != nil {
		return h.handleError(c, ownerID, err, "Failed to get workspace")
	}

	return c.JSON(http.StatusOK, toWorkspaceResponse(snapshot))
}

// ImportFile handles POST /api/v1/workspaces/import
func (h *WorkspaceHandler) ImportFile(c echo.Context) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return NewUnauthorizedError(c, "Owner required")
	}

	filename, data, err := h.readUpload(c)
	if err != nil {
		return h.uploadError(c, err)
	}

	result, err := h.workspaceService.ImportFile(c.Request().Context(), ownerID, filename, data)
	if err != nil {
		return h.handleError(c, ownerID, err, "Failed to import file")
	}

	return c.JSON(http.StatusOK, result)
}

// CreateWorkspaceFromFile handles POST /api/v1/workspaces/from-file
func (h *WorkspaceHandler) CreateWorkspaceFromFile(c echo.Context) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return NewUnauthorizedError(c, "Owner required")
	}

	name := strings.TrimSpace(c.FormValue("name"))
	if name == "" {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name is required"},
		})
	}

	filename, data, err := h.readUpload(c)
	if err != nil {
		return h.uploadError(c, err)
	}

	snapshot, err := h.workspaceService.CreateWorkspaceFromFile(c.Request().Context(), ownerID, name, filename, data)
	if err != nil {
		return h.handleError(c, ownerID, err, "Failed to create workspace")
	}

	return c.JSON(http.StatusCreated, toWorkspaceResponse(snapshot))
}

// TrainWorkspace handles POST /api/v1/workspaces/:id/train
func (h *WorkspaceHandler) TrainWorkspace(c echo.Context) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return NewUnauthorizedError(c, "Owner required")
	}

	id, err := domain.ParseWorkspaceID(c.Param("id"))
	if err != nil {
		return invalidIDError(c)
	}

	snapshot, err := h.workspaceService.TrainWorkspace(c.Request().Context(), ownerID, id)
	if err != nil {
		return h.handleError(c, ownerID, err, "Failed to train workspace")
	}

	return c.JSON(http.StatusOK, toWorkspaceResponse(snapshot))
}

// ComputeMetrics handles POST /api/v1/workspaces/:id/metrics
func (h *WorkspaceHandler) ComputeMetrics(c echo.Context) error {
	ownerID, ok := requireOwner(c)
	if !ok {
		return NewUnauthorizedError(c, "Owner required")
	}

	id, err := domain.ParseWorkspaceID(c.Param("id"))
	if err != nil {
		return invalidIDError(c)
	}

	snapshot, err := h.workspaceService.ComputeMetrics(c.Request().Context(), ownerID, id)
	if err != nil {
		return h.handleError(c, ownerID, err, "Failed to compute metrics")
	}

	return c.JSON(http.StatusOK, toWorkspaceResponse(snapshot))
}

var (
	errFileMissing  = errors.New("file is required")
	errFileTooLarge = errors.New("file too large")
)

// readUpload reads the multipart "file" field, up to maxUploadBytes
func (h *WorkspaceHandler) readUpload(c echo.Context) (string, []byte, error) {
	file, err := c.FormFile("file")
	if err != nil {
		return "", nil, errFileMissing
	}
	if file.Size > h.maxUploadBytes {
		return "", nil, errFileTooLarge
	}

	src, err := file.Open()
	if err != nil {
		return "", nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, h.maxUploadBytes+1))
	if err != nil {
		return "", nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if int64(len(data)) > h.maxUploadBytes {
		return "", nil, errFileTooLarge
	}

	return file.Filename, data, nil
}

func (h *WorkspaceHandler) uploadError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, errFileMissing):
		return NewValidationError(c, "No file provided", []ValidationError{
			{Field: "file", Message: "File is required"},
		})
	case errors.Is(err, errFileTooLarge):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "file", Message: fmt.Sprintf("File too large. Maximum size is %d bytes", h.maxUploadBytes)},
		})
	}
	log.Error().Err(err).Msg("Failed to read upload")
	return NewInternalError(c, "Failed to process file")
}

func (h *WorkspaceHandler) handleError(c echo.Context, ownerID domain.OwnerID, err error, message string) error {
	switch {
	case errors.Is(err, domain.ErrNameRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name is required"},
		})
	case errors.Is(err, domain.ErrWorkspaceNameTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: fmt.Sprintf("Name must be %d characters or less", domain.MaxWorkspaceNameLength)},
		})
	case errors.Is(err, domain.ErrCategoryNameTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "file", Message: fmt.Sprintf("Category names must be %d characters or less", domain.MaxCategoryNameLength)},
		})
	case errors.Is(err, domain.ErrDocumentTextTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "file", Message: fmt.Sprintf("Document texts must be %d characters or less", domain.MaxDocumentTextLength)},
		})
	case errors.Is(err, domain.ErrInvalidSpreadsheet):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "file", Message: "File is not a readable spreadsheet"},
		})
	case errors.Is(err, domain.ErrInvalidID):
		return invalidIDError(c)
	case errors.Is(err, domain.ErrWorkspaceNotFound):
		return NewNotFoundError(c, "Workspace not found")
	case errors.Is(err, domain.ErrWorkspaceAlreadyExists):
		return NewConflictError(c, "A workspace with this name already exists")
	case errors.Is(err, domain.ErrSheetNotFound):
		return NewUnprocessableError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "The file has no sheet with this name"},
		})
	case errors.Is(err, domain.ErrWorkspaceDoesNotExist):
		return NewConflictError(c, "Workspace was removed while the file was imported")
	case errors.Is(err, domain.ErrDatasetShape):
		return NewUnprocessableError(c, "Workspace has no documents to train on", nil)
	case errors.Is(err, domain.ErrTrainingRequest), errors.Is(err, domain.ErrTrainingResponse):
		log.Warn().
			Err(err).
			Str("owner_id", ownerID.String()).
			Str("auth0_id", middleware.GetAuth0ID(c)).
			Msg("Training service failed")
		return NewUpstreamError(c, "Training service unavailable")
	}

	log.Error().
		Err(err).
		Str("owner_id", ownerID.String()).
		Str("auth0_id", middleware.GetAuth0ID(c)).
		Str("path", c.Request().URL.Path).
		Msg(message)
	return NewInternalError(c, message)
}

func requireOwner(c echo.Context) (domain.OwnerID, bool) {
	ownerID := middleware.GetOwnerID(c)
	return ownerID, ownerID != domain.OwnerID(uuid.Nil)
}

func invalidIDError(c echo.Context) error {
	return NewValidationError(c, "Invalid workspace ID", []ValidationError{
		{Field: "id", Message: "Must be a valid UUID"},
	})
}

func toWorkspaceResponse(snapshot *domain.WorkspaceSnapshot) WorkspaceResponse {
	categories := make([]CategoryResponse, len(snapshot.Categories))
	for i, category := range snapshot.Categories {
		categories[i] = CategoryResponse{
			ID:        category.ID,
			Name:      category.Name,
			Documents: len(category.Documents),
		}
	}

	return WorkspaceResponse{
		ID:         snapshot.ID,
		Name:       snapshot.Name,
		ModelID:    snapshot.ModelID,
		Documents:  snapshot.DocumentCount(),
		Categories: categories,
		Metrics:    domain.SummarizeMetrics(snapshot.Metrics),
	}
}
