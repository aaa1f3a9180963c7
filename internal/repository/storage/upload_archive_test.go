package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/clasifica/clasifica-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateObjectKey(t *testing.T) {
	owner := domain.OwnerID(uuid.New())

	tests := []struct {
		name     string
		filename string
		suffix   string
	}{
		{"plain name", "tickets.xlsx", "_tickets.xlsx"},
		{"strips directories", "../../etc/tickets.xlsx", "_tickets.xlsx"},
		{"strips windows directories", `C:\Users\me\tickets.xlsx`, "_tickets.xlsx"},
		{"empty name", "", "_upload.xlsx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := GenerateObjectKey(owner, tt.filename)

			prefix := "uploads/" + owner.String() + "/"
			require.True(t, strings.HasPrefix(key, prefix), key)
			assert.True(t, strings.HasSuffix(key, tt.suffix), key)

			id := strings.TrimSuffix(strings.TrimPrefix(key, prefix), tt.suffix)
			_, err := uuid.Parse(id)
			assert.NoError(t, err)
		})
	}
}

func TestGenerateObjectKey_Unique(t *testing.T) {
	owner := domain.OwnerID(uuid.New())
	assert.NotEqual(t, GenerateObjectKey(owner, "a.xlsx"), GenerateObjectKey(owner, "a.xlsx"))
}

func TestNoOpUploadArchive(t *testing.T) {
	var archive UploadArchive = NoOpUploadArchive{}

	key, err := archive.Store(context.Background(), domain.OwnerID(uuid.New()), "a.xlsx", []byte("data"))
	require.NoError(t, err)
	assert.Empty(t, key)
}

func TestS3UploadArchive_Implements_UploadArchive(t *testing.T) {
	var _ UploadArchive = (*S3UploadArchive)(nil)
}
