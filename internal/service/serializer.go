package service

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/clasifica/clasifica-backend/internal/domain"
)

// WorkspaceSerializer maps Workspace aggregates to and from WorkspaceSnapshot records
type WorkspaceSerializer struct{}

// NewWorkspaceSerializer creates a new WorkspaceSerializer
func NewWorkspaceSerializer() *WorkspaceSerializer {
	return &WorkspaceSerializer{}
}

// Serialize flattens a workspace. Categories are ordered by name and documents by text
// so equal aggregates produce equal snapshots.
func (s *WorkspaceSerializer) Serialize(workspace *domain.Workspace) *domain.WorkspaceSnapshot {
	categories := make([]domain.CategorySnapshot, 0, workspace.Categories().Len())
	for category := range workspace.Categories().Values() {
		categories = append(categories, s.serializeCategory(category))
	}
	slices.SortFunc(categories, func(a, b domain.CategorySnapshot) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})

	snapshot := &domain.WorkspaceSnapshot{
		ID:         workspace.ID().String(),
		Name:       workspace.Name().String(),
		Owner:      workspace.Owner().String(),
		Categories: categories,
		Metrics:    workspace.Metrics(),
	}
	if modelID, ok := workspace.ModelID(); ok {
		value := string(modelID)
		snapshot.ModelID = &value
	}
	return snapshot
}

func (s *WorkspaceSerializer) serializeCategory(category *domain.Category) domain.CategorySnapshot {
	documents := make([]domain.DocumentSnapshot, 0, category.Documents().Len())
	for document := range category.Documents().Values() {
		documents = append(documents, domain.DocumentSnapshot{
			ID:         document.ID().String(),
			Text:       document.Text().String(),
			CategoryID: document.CategoryID().String(),
		})
	}
	slices.SortFunc(documents, func(a, b domain.DocumentSnapshot) int {
		return cmp.Or(cmp.Compare(a.Text, b.Text), cmp.Compare(a.ID, b.ID))
	})

	return domain.CategorySnapshot{
		ID:          category.ID().String(),
		Name:        category.Name().String(),
		WorkspaceID: category.WorkspaceID().String(),
		Documents:   documents,
	}
}

// Deserialize rebuilds a workspace, validating every identifier and text on the way
func (s *WorkspaceSerializer) Deserialize(snapshot *domain.WorkspaceSnapshot) (*domain.Workspace, error) {
	id, err := domain.ParseWorkspaceID(snapshot.ID)
	if err != nil {
		return nil, err
	}
	name, err := domain.NewWorkspaceName(snapshot.Name)
	if err != nil {
		return nil, err
	}
	owner, err := domain.ParseOwnerID(snapshot.Owner)
	if err != nil {
		return nil, err
	}

	categories := make([]*domain.Category, 0, len(snapshot.Categories))
	for _, c := range snapshot.Categories {
		category, err := s.deserializeCategory(c)
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", c.Name, err)
		}
		categories = append(categories, category)
	}
	collection, err := domain.NewCategoryCollection(categories...)
	if err != nil {
		return nil, err
	}

	opts := []domain.WorkspaceOption{domain.WithMetrics(snapshot.Metrics)}
	if snapshot.ModelID != nil {
		opts = append(opts, domain.WithModelID(domain.WorkspaceModelID(*snapshot.ModelID)))
	}
	return domain.NewWorkspace(id, name, owner, collection, opts...), nil
}

func (s *WorkspaceSerializer) deserializeCategory(snapshot domain.CategorySnapshot) (*domain.Category, error) {
	id, err := domain.ParseCategoryID(snapshot.ID)
	if err != nil {
		return nil, err
	}
	name, err := domain.NewCategoryName(snapshot.Name)
	if err != nil {
		return nil, err
	}
	workspaceID, err := domain.ParseWorkspaceID(snapshot.WorkspaceID)
	if err != nil {
		return nil, err
	}

	documents := make([]*domain.Document, 0, len(snapshot.Documents))
	for _, d := range snapshot.Documents {
		documentID, err := domain.ParseDocumentID(d.ID)
		if err != nil {
			return nil, err
		}
		text, err := domain.NewDocumentText(d.Text)
		if err != nil {
			return nil, err
		}
		categoryID, err := domain.ParseCategoryID(d.CategoryID)
		if err != nil {
			return nil, err
		}
		documents = append(documents, domain.NewDocument(documentID, text, categoryID))
	}
	collection, err := domain.NewDocumentCollection(documents...)
	if err != nil {
		return nil, err
	}

	return domain.NewCategory(id, name, workspaceID, collection), nil
}
