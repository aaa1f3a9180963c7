package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeFileWorkspaces(t *testing.T) {
	input := []FileWorkspace{
		{Name: "Alpha", Categories: []FileCategory{
			{Name: "Greetings", Documents: []FileDocument{{Text: "hi"}, {Text: "hi"}}},
		}},
		{Name: "Beta", Categories: []FileCategory{
			{Name: "Other", Documents: []FileDocument{{Text: "x"}}},
		}},
		{Name: "Alpha", Categories: []FileCategory{
			{Name: "Greetings", Documents: []FileDocument{{Text: "yo"}, {Text: "hi"}}},
			{Name: "Farewell", Documents: []FileDocument{{Text: "bye"}}},
		}},
	}

	merged := MergeFileWorkspaces(input)
	require.Len(t, merged, 2)

	alpha := merged[0]
	assert.Equal(t, "Alpha", alpha.Name)
	require.Len(t, alpha.Categories, 2)
	assert.Equal(t, "Greetings", alpha.Categories[0].Name)
	assert.Equal(t, []FileDocument{{Text: "hi"}, {Text: "yo"}}, alpha.Categories[0].Documents)
	assert.Equal(t, "Farewell", alpha.Categories[1].Name)
	assert.Equal(t, []FileDocument{{Text: "bye"}}, alpha.Categories[1].Documents)

	assert.Equal(t, "Beta", merged[1].Name)
}

func TestMergeFileWorkspaces_Empty(t *testing.T) {
	assert.Empty(t, MergeFileWorkspaces(nil))
}

func TestFileKeysAreNames(t *testing.T) {
	a := FileCategory{Name: "Greetings", Documents: []FileDocument{{Text: "hi"}}}
	b := FileCategory{Name: "Greetings"}
	assert.Equal(t, a.Key(), b.Key())

	assert.Equal(t, FileWorkspace{Name: "Alpha"}.Key(), FileWorkspace{Name: "Alpha", Categories: []FileCategory{a}}.Key())
}
