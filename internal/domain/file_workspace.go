package domain

// FileDocument is a document row read from an uploaded file. Two file documents are the
// same if their texts match.
type FileDocument struct {
	Text string
}

// FileCategory is a category read from an uploaded file, keyed by name
type FileCategory struct {
	Name      string
	Documents []FileDocument
}

// FileWorkspace is a workspace read from an uploaded file, keyed by name.
// Unlike persisted entities it carries no identifiers.
type FileWorkspace struct {
	Name       string
	Categories []FileCategory
}

// Key returns the name identifying the file workspace
func (w FileWorkspace) Key() string { return w.Name }

// Key returns the name identifying the file category
func (c FileCategory) Key() string { return c.Name }

// Key returns the text identifying the file document
func (d FileDocument) Key() string { return d.Text }

// MergeFileWorkspaces collapses workspaces sharing a name into one, merging their
// categories by name and their documents by text. The first occurrence fixes the
// position of each name in the result.
func MergeFileWorkspaces(workspaces []FileWorkspace) []FileWorkspace {
	order := make([]string, 0, len(workspaces))
	byName := make(map[string][]FileCategory, len(workspaces))
	for _, w := range workspaces {
		if _, seen := byName[w.Key()]; !seen {
			order = append(order, w.Key())
		}
		byName[w.Key()] = append(byName[w.Key()], w.Categories...)
	}

	merged := make([]FileWorkspace, 0, len(order))
	for _, name := range order {
		merged = append(merged, FileWorkspace{
			Name:       name,
			Categories: MergeFileCategories(byName[name]),
		})
	}
	return merged
}

// MergeFileCategories collapses categories sharing a name and deduplicates documents by text
func MergeFileCategories(categories []FileCategory) []FileCategory {
	order := make([]string, 0, len(categories))
	byName := make(map[string][]FileDocument, len(categories))
	for _, c := range categories {
		if _, seen := byName[c.Key()]; !seen {
			order = append(order, c.Key())
		}
		byName[c.Key()] = append(byName[c.Key()], c.Documents...)
	}

	merged := make([]FileCategory, 0, len(order))
	for _, name := range order {
		merged = append(merged, FileCategory{
			Name:      name,
			Documents: uniqueFileDocuments(byName[name]),
		})
	}
	return merged
}

func uniqueFileDocuments(documents []FileDocument) []FileDocument {
	seen := make(map[string]struct{}, len(documents))
	unique := make([]FileDocument, 0, len(documents))
	for _, d := range documents {
		if _, ok := seen[d.Key()]; ok {
			continue
		}
		seen[d.Key()] = struct{}{}
		unique = append(unique, d)
	}
	return unique
}

// FileReader parses an uploaded spreadsheet into file workspaces
type FileReader interface {
	Read(data []byte) ([]FileWorkspace, error)
}
