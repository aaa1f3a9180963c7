package service

import (
	"testing"

	"github.com/clasifica/clasifica-backend/internal/domain"
	"github.com/clasifica/clasifica-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildWorkspace(t *testing.T, name string, owner domain.OwnerID, categories map[string][]string, opts ...domain.WorkspaceOption) *domain.Workspace {
	t.Helper()

	wsName, err := domain.NewWorkspaceName(name)
	require.NoError(t, err)
	workspace := domain.NewWorkspace(domain.WorkspaceID(uuid.New()), wsName, owner, nil, opts...)

	for categoryName, texts := range categories {
		catName, err := domain.NewCategoryName(categoryName)
		require.NoError(t, err)
		category := domain.NewCategory(domain.CategoryID(uuid.New()), catName, workspace.ID(), nil)
		require.NoError(t, workspace.AddCategory(category))

		for _, text := range texts {
			docText, err := domain.NewDocumentText(text)
			require.NoError(t, err)
			require.NoError(t, workspace.AddDocument(domain.NewDocument(domain.DocumentID(uuid.New()), docText, category.ID())))
		}
	}
	return workspace
}

func TestWorkspaceSerializer_RoundTrip(t *testing.T) {
	serializer := NewWorkspaceSerializer()
	owner := domain.OwnerID(uuid.New())
	original := buildWorkspace(t, "Alpha", owner, map[string][]string{
		"Greetings": {"hi", "hello"},
		"Farewell":  {"bye"},
		"Empty":     nil,
	}, domain.WithModelID("model-1"), domain.WithMetrics(domain.WorkspaceMetrics{"accuracy": 0.9}))

	restored, err := serializer.Deserialize(serializer.Serialize(original))
	require.NoError(t, err)

	assert.Equal(t, original.ID(), restored.ID())
	assert.Equal(t, original.Name(), restored.Name())
	assert.Equal(t, original.Owner(), restored.Owner())
	assert.Equal(t, original.Metrics(), restored.Metrics())
	modelID, ok := restored.ModelID()
	require.True(t, ok)
	assert.Equal(t, domain.WorkspaceModelID("model-1"), modelID)

	require.Equal(t, original.Categories().Len(), restored.Categories().Len())
	for category := range original.Categories().Values() {
		got, err := restored.Categories().Get(category.ID())
		require.NoError(t, err)
		assert.Equal(t, category.Name(), got.Name())
		assert.Equal(t, category.WorkspaceID(), got.WorkspaceID())

		require.Equal(t, category.Documents().Len(), got.Documents().Len())
		for document := range category.Documents().Values() {
			gotDoc, err := got.Documents().Get(document.ID())
			require.NoError(t, err)
			assert.Equal(t, document.Text(), gotDoc.Text())
			assert.Equal(t, document.CategoryID(), gotDoc.CategoryID())
		}
	}
}

func TestWorkspaceSerializer_SerializeIsOrdered(t *testing.T) {
	serializer := NewWorkspaceSerializer()
	workspace := buildWorkspace(t, "Alpha", domain.OwnerID(uuid.New()), map[string][]string{
		"b": {"z", "y"},
		"a": {"x"},
		"c": {},
	})

	snapshot := serializer.Serialize(workspace)
	require.Len(t, snapshot.Categories, 3)
	assert.Equal(t, "a", snapshot.Categories[0].Name)
	assert.Equal(t, "b", snapshot.Categories[1].Name)
	assert.Equal(t, "y", snapshot.Categories[1].Documents[0].Text)
	assert.Equal(t, "z", snapshot.Categories[1].Documents[1].Text)
	assert.Nil(t, snapshot.ModelID)
	assert.NotNil(t, snapshot.Metrics)
	assert.Equal(t, 3, snapshot.DocumentCount())
}

func TestWorkspaceSerializer_DeserializeRejectsInvalid(t *testing.T) {
	serializer := NewWorkspaceSerializer()
	valid := serializer.Serialize(buildWorkspace(t, "Alpha", domain.OwnerID(uuid.New()), map[string][]string{
		"Greetings": {"hi"},
	}))

	tests := []struct {
		name    string
		mutate  func(s *domain.WorkspaceSnapshot)
		wantErr error
	}{
		{"bad workspace id", func(s *domain.WorkspaceSnapshot) { s.ID = "nope" }, domain.ErrInvalidID},
		{"bad owner", func(s *domain.WorkspaceSnapshot) { s.Owner = "" }, domain.ErrInvalidID},
		{"bad category id", func(s *domain.WorkspaceSnapshot) { s.Categories[0].ID = "x" }, domain.ErrInvalidID},
		{"bad document id", func(s *domain.WorkspaceSnapshot) { s.Categories[0].Documents[0].ID = "x" }, domain.ErrInvalidID},
		{"duplicate document", func(s *domain.WorkspaceSnapshot) {
			s.Categories[0].Documents = append(s.Categories[0].Documents, s.Categories[0].Documents[0])
		}, domain.ErrDuplicateID},
		{"duplicate category", func(s *domain.WorkspaceSnapshot) {
			s.Categories = append(s.Categories, s.Categories[0])
		}, domain.ErrDuplicateID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshot := testutil.CloneSnapshot(valid)
			tt.mutate(snapshot)
			_, err := serializer.Deserialize(snapshot)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
