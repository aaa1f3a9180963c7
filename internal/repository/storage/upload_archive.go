package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/clasifica/clasifica-backend/internal/domain"
	"github.com/google/uuid"
)

// UploadArchive keeps a copy of every uploaded spreadsheet
type UploadArchive interface {
	// Store saves data and returns the object key it was stored under
	Store(ctx context.Context, owner domain.OwnerID, filename string, data []byte) (string, error)
}

// NoOpUploadArchive discards uploads (used when no bucket is configured)
type NoOpUploadArchive struct{}

// Store does nothing and returns an empty key
func (NoOpUploadArchive) Store(ctx context.Context, owner domain.OwnerID, filename string, data []byte) (string, error) {
	return "", nil
}

// GenerateObjectKey creates a unique object key for an uploaded file:
// uploads/<owner>/<uuid>_<filename>
func GenerateObjectKey(owner domain.OwnerID, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "upload.xlsx"
	}
	return path.Join("uploads", owner.String(), fmt.Sprintf("%s_%s", uuid.New().String(), name))
}
