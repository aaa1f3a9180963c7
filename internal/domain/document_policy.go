package domain

import (
	"fmt"
	"strings"
)

// DocumentPolicy decides what happens to the persisted documents of a category that an
// uploaded file mentions again
type DocumentPolicy string

const (
	// DocumentPolicyReplace drops persisted documents and keeps only the file's documents
	DocumentPolicyReplace DocumentPolicy = "replace"
	// DocumentPolicyMerge keeps persisted documents and appends file documents with new text
	DocumentPolicyMerge DocumentPolicy = "merge"
)

// ParseDocumentPolicy parses a policy name. An empty string selects DocumentPolicyReplace.
func ParseDocumentPolicy(s string) (DocumentPolicy, error) {
	switch DocumentPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", DocumentPolicyReplace:
		return DocumentPolicyReplace, nil
	case DocumentPolicyMerge:
		return DocumentPolicyMerge, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDocumentPolicy, s)
	}
}
