package domain

import (
	"fmt"
	"unicode/utf8"
)

// WorkspaceName is a validated workspace name
type WorkspaceName struct {
	value string
}

// NewWorkspaceName validates and wraps a workspace name
func NewWorkspaceName(s string) (WorkspaceName, error) {
	if err := checkLength(s, MaxWorkspaceNameLength, ErrWorkspaceNameTooLong); err != nil {
		return WorkspaceName{}, err
	}
	return WorkspaceName{value: s}, nil
}

func (n WorkspaceName) String() string { return n.value }

// CategoryName is a validated category name
type CategoryName struct {
	value string
}

// NewCategoryName validates and wraps a category name
func NewCategoryName(s string) (CategoryName, error) {
	if err := checkLength(s, MaxCategoryNameLength, ErrCategoryNameTooLong); err != nil {
		return CategoryName{}, err
	}
	return CategoryName{value: s}, nil
}

func (n CategoryName) String() string { return n.value }

// DocumentText is a validated document text
type DocumentText struct {
	value string
}

// NewDocumentText validates and wraps a document text
func NewDocumentText(s string) (DocumentText, error) {
	if err := checkLength(s, MaxDocumentTextLength, ErrDocumentTextTooLong); err != nil {
		return DocumentText{}, err
	}
	return DocumentText{value: s}, nil
}

func (t DocumentText) String() string { return t.value }

// checkLength counts characters, not bytes
func checkLength(s string, limit int, tooLong error) error {
	if n := utf8.RuneCountInString(s); n > limit {
		return fmt.Errorf("%w: %d characters (max %d)", tooLong, n, limit)
	}
	return nil
}

// WorkspaceModelID identifies a trained model
type WorkspaceModelID string

// WorkspaceMetrics is the classification report produced by the metrics workflow.
// Values are opaque to the domain.
type WorkspaceMetrics map[string]any

// Clone returns a deep copy of the report. Nested objects and arrays are copied too.
func (m WorkspaceMetrics) Clone() WorkspaceMetrics {
	clone := make(WorkspaceMetrics, len(m))
	for k, v := range m {
		clone[k] = cloneReportValue(v)
	}
	return clone
}

// cloneReportValue copies the JSON shapes a report can hold; scalars are returned as is
func cloneReportValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return map[string]any(WorkspaceMetrics(v).Clone())
	case WorkspaceMetrics:
		return v.Clone()
	case []any:
		clone := make([]any, len(v))
		for i, item := range v {
			clone[i] = cloneReportValue(item)
		}
		return clone
	default:
		return v
	}
}
