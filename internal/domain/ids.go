package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// WorkspaceID identifies a workspace
type WorkspaceID uuid.UUID

// CategoryID identifies a category
type CategoryID uuid.UUID

// DocumentID identifies a document
type DocumentID uuid.UUID

// OwnerID identifies the owner of a workspace
type OwnerID uuid.UUID

// ParseWorkspaceID parses the canonical string form of a workspace id
func ParseWorkspaceID(s string) (WorkspaceID, error) {
	id, err := parseUUID("workspace", s)
	return WorkspaceID(id), err
}

// ParseCategoryID parses the canonical string form of a category id
func ParseCategoryID(s string) (CategoryID, error) {
	id, err := parseUUID("category", s)
	return CategoryID(id), err
}

// ParseDocumentID parses the canonical string form of a document id
func ParseDocumentID(s string) (DocumentID, error) {
	id, err := parseUUID("document", s)
	return DocumentID(id), err
}

// ParseOwnerID parses the canonical string form of an owner id
func ParseOwnerID(s string) (OwnerID, error) {
	id, err := parseUUID("owner", s)
	return OwnerID(id), err
}

func parseUUID(kind, s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s id %q", ErrInvalidID, kind, s)
	}
	return id, nil
}

func (id WorkspaceID) String() string { return uuid.UUID(id).String() }
func (id CategoryID) String() string { return uuid.UUID(id).String() }
func (id DocumentID) String() string { return uuid.UUID(id).String() }
func (id OwnerID) String() string { return uuid.UUID(id).String() }

// IDGenerator mints identifiers for freshly built entities
type IDGenerator interface {
	GenerateID() uuid.UUID
}

// RandomIDGenerator generates random (version 4) UUIDs
type RandomIDGenerator struct{}

// GenerateID implements IDGenerator
func (RandomIDGenerator) GenerateID() uuid.UUID {
	return uuid.New()
}
