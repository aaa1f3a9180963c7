package domain

// WorkspaceSummary describes a workspace without its documents
type WorkspaceSummary struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Categories int     `json:"categories"`
	Documents  int     `json:"documents"`
	ModelID    *string `json:"modelId,omitempty"`
}

// Summarize returns the summary of a snapshot
func (s *WorkspaceSnapshot) Summarize() WorkspaceSummary {
	return WorkspaceSummary{
		ID:         s.ID,
		Name:       s.Name,
		Categories: len(s.Categories),
		Documents:  s.DocumentCount(),
		ModelID:    s.ModelID,
	}
}

// ImportResult reports what an uploaded file did to an owner's workspaces
type ImportResult struct {
	Created    []WorkspaceSummary `json:"created"`
	Updated    []WorkspaceSummary `json:"updated"`
	ArchiveKey string             `json:"archiveKey,omitempty"`
}
