package domain

// DocumentSnapshot is the flat transfer record of a Document
type DocumentSnapshot struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	CategoryID string `json:"categoryId"`
}

// CategorySnapshot is the flat transfer record of a Category
type CategorySnapshot struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	WorkspaceID string             `json:"workspaceId"`
	Documents   []DocumentSnapshot `json:"documents"`
}

// WorkspaceSnapshot is the flat transfer record of a Workspace, used across the
// persistence boundary
type WorkspaceSnapshot struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Owner      string             `json:"owner"`
	Categories []CategorySnapshot `json:"categories"`
	ModelID    *string            `json:"modelId,omitempty"`
	Metrics    map[string]any     `json:"metrics"`
}

// DocumentCount returns the number of documents across all categories
func (s *WorkspaceSnapshot) DocumentCount() int {
	n := 0
	for _, c := range s.Categories {
		n += len(c.Documents)
	}
	return n
}

// WorkspaceFinder looks up persisted workspaces scoped to an owner.
// Lookups that find nothing return ErrWorkspaceNotFound.
type WorkspaceFinder interface {
	Exists(name string, ownerID string) (bool, error)
	GetByName(name string, ownerID string) (*WorkspaceSnapshot, error)
	Get(id string, ownerID string) (*WorkspaceSnapshot, error)
	GetAll(ownerID string) ([]*WorkspaceSnapshot, error)
}

// WorkspaceRepository persists workspaces.
// Save fails with ErrWorkspaceAlreadyExists if (name, owner) is taken;
// Update fails with ErrWorkspaceDoesNotExist if (name, owner) is absent.
type WorkspaceRepository interface {
	IDGenerator
	Save(workspace *WorkspaceSnapshot) error
	Update(workspace *WorkspaceSnapshot) error
}

// WorkspaceStore is a WorkspaceFinder and WorkspaceRepository over the same storage
type WorkspaceStore interface {
	WorkspaceFinder
	WorkspaceRepository
}

// OwnerIdentity is what an access token says about its subject. Email and Name are
// empty when the token does not carry the profile claims.
type OwnerIdentity struct {
	Auth0ID string
	Email   string
	Name    string
}

// OwnerRepository maps authenticated identities to owner ids. Resolving a known
// subject refreshes its non-empty profile fields.
type OwnerRepository interface {
	ResolveOwner(identity OwnerIdentity) (OwnerID, error)
}
