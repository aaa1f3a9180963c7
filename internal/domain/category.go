package domain

// Category groups the documents sharing one label inside a workspace
type Category struct {
	id          CategoryID
	name        CategoryName
	workspaceID WorkspaceID
	documents   *DocumentCollection
}

// NewCategory creates a Category. A nil documents collection is treated as empty.
func NewCategory(id CategoryID, name CategoryName, workspaceID WorkspaceID, documents *DocumentCollection) *Category {
	if documents == nil {
		documents, _ = NewDocumentCollection()
	}
	return &Category{
		id:          id,
		name:        name,
		workspaceID: workspaceID,
		documents:   documents,
	}
}

func (c *Category) ID() CategoryID { return c.id }
func (c *Category) Name() CategoryName { return c.name }
func (c *Category) WorkspaceID() WorkspaceID { return c.workspaceID }
func (c *Category) Documents() *DocumentCollection { return c.documents }

// AddDocument adds a document to this category
func (c *Category) AddDocument(document *Document) error {
	return c.documents.Add(document)
}
