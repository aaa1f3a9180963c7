package domain

import "errors"

// Domain errors
var (
	ErrNotFound      = errors.New("item not found")
	ErrDuplicateID   = errors.New("item with this id already exists")
	ErrInvalidID     = errors.New("invalid identifier")
	ErrOwnerNotFound = errors.New("owner not found")
)

// Validation errors
var (
	ErrWorkspaceNameTooLong = errors.New("workspace name exceeds maximum length")
	ErrCategoryNameTooLong  = errors.New("category name exceeds maximum length")
	ErrDocumentTextTooLong  = errors.New("document text exceeds maximum length")
	ErrNameRequired         = errors.New("name is required")
)

// Workspace persistence and reconciliation errors
var (
	ErrWorkspaceNotFound      = errors.New("workspace not found")
	ErrWorkspaceAlreadyExists = errors.New("workspace already exists")
	ErrWorkspaceDoesNotExist  = errors.New("workspace does not exist")
	ErrSheetNotFound          = errors.New("worksheet not found in file")
	ErrInvalidDocumentPolicy  = errors.New("invalid document policy")
)

// Dataset and training errors
var (
	ErrDatasetShape       = errors.New("invalid training dataset")
	ErrInvalidSpreadsheet = errors.New("invalid spreadsheet")
	ErrTrainingRequest    = errors.New("training request failed")
	ErrTrainingResponse   = errors.New("training service returned an error")
)

// Validation constants
const (
	MaxWorkspaceNameLength = 100
	MaxCategoryNameLength  = 100
	MaxDocumentTextLength  = 2000
)
