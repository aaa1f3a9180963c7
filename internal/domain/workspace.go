package domain

import "fmt"

// Workspace is the root aggregate: it owns its categories and, through them, their documents.
// The id and owner never change after construction.
type Workspace struct {
	id         WorkspaceID
	name       WorkspaceName
	owner      OwnerID
	categories *CategoryCollection
	modelID    *WorkspaceModelID
	metrics    WorkspaceMetrics
}

// WorkspaceOption sets an optional attribute at construction time
type WorkspaceOption func(*Workspace)

// WithModelID sets the trained model id
func WithModelID(modelID WorkspaceModelID) WorkspaceOption {
	return func(w *Workspace) {
		w.modelID = &modelID
	}
}

// WithMetrics sets the workspace metrics
func WithMetrics(metrics WorkspaceMetrics) WorkspaceOption {
	return func(w *Workspace) {
		w.metrics = metrics.Clone()
	}
}

// NewWorkspace creates a Workspace. A nil categories collection is treated as empty.
func NewWorkspace(id WorkspaceID, name WorkspaceName, owner OwnerID, categories *CategoryCollection, opts ...WorkspaceOption) *Workspace {
	if categories == nil {
		categories, _ = NewCategoryCollection()
	}
	w := &Workspace{
		id:         id,
		name:       name,
		owner:      owner,
		categories: categories,
		metrics:    WorkspaceMetrics{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Workspace) ID() WorkspaceID { return w.id }
func (w *Workspace) Name() WorkspaceName { return w.name }
func (w *Workspace) Owner() OwnerID { return w.owner }
func (w *Workspace) Categories() *CategoryCollection { return w.categories }
func (w *Workspace) Metrics() WorkspaceMetrics { return w.metrics.Clone() }

// ModelID returns the trained model id, or false if the workspace was never trained
func (w *Workspace) ModelID() (WorkspaceModelID, bool) {
	if w.modelID == nil {
		return "", false
	}
	return *w.modelID, true
}

// AddCategory adds a category, failing with ErrDuplicateID if its id is taken.
// The category's workspace id is not checked against this workspace.
func (w *Workspace) AddCategory(category *Category) error {
	return w.categories.Add(category)
}

// AddDocument adds a document to the category it references
func (w *Workspace) AddDocument(document *Document) error {
	category, err := w.categories.Get(document.CategoryID())
	if err != nil {
		return fmt.Errorf("category of document %s: %w", document.ID(), err)
	}
	return category.AddDocument(document)
}

// SetModelID replaces the trained model id
func (w *Workspace) SetModelID(modelID WorkspaceModelID) {
	w.modelID = &modelID
}

// SetMetrics replaces the metrics wholesale
func (w *Workspace) SetMetrics(metrics WorkspaceMetrics) {
	w.metrics = metrics.Clone()
}

// CategoryByName returns the category with the given name
func (w *Workspace) CategoryByName(name string) (*Category, bool) {
	for category := range w.categories.Values() {
		if category.Name().String() == name {
			return category, true
		}
	}
	return nil, false
}
