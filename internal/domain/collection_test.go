package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDocument(t *testing.T, text string, categoryID CategoryID) *Document {
	t.Helper()
	docText, err := NewDocumentText(text)
	require.NoError(t, err)
	return NewDocument(DocumentID(uuid.New()), docText, categoryID)
}

func collectTexts(c *DocumentCollection) []string {
	texts := []string{}
	for d := range c.Values() {
		texts = append(texts, d.Text().String())
	}
	return texts
}

func TestCollection_AddRejectsDuplicate(t *testing.T) {
	categoryID := CategoryID(uuid.New())
	doc := newTestDocument(t, "hi", categoryID)

	c, err := NewDocumentCollection(doc)
	require.NoError(t, err)

	duplicate := NewDocument(doc.ID(), mustText(t, "other"), categoryID)
	err = c.Add(duplicate)
	assert.ErrorIs(t, err, ErrDuplicateID)

	// failed add leaves the collection unchanged
	assert.Equal(t, 1, c.Len())
	got, err := c.Get(doc.ID())
	require.NoError(t, err)
	assert.Equal(t, "hi", got.Text().String())
}

func TestCollection_ZeroValueIsUsable(t *testing.T) {
	var c DocumentCollection
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, collectTexts(&c))

	doc := newTestDocument(t, "hi", CategoryID(uuid.New()))
	require.NoError(t, c.Add(doc))
	assert.True(t, c.Has(doc.ID()))
	assert.Equal(t, []string{"hi"}, collectTexts(&c))
}

func TestNewCollection_DuplicateIDs(t *testing.T) {
	categoryID := CategoryID(uuid.New())
	doc := newTestDocument(t, "hi", categoryID)

	_, err := NewDocumentCollection(doc, doc)
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestCollection_UpdateRemoveGet(t *testing.T) {
	categoryID := CategoryID(uuid.New())
	doc := newTestDocument(t, "hi", categoryID)
	missing := newTestDocument(t, "missing", categoryID)

	c, err := NewDocumentCollection(doc)
	require.NoError(t, err)

	t.Run("update replaces whole item", func(t *testing.T) {
		replacement := NewDocument(doc.ID(), mustText(t, "hello"), categoryID)
		require.NoError(t, c.Update(replacement))
		got, err := c.Get(doc.ID())
		require.NoError(t, err)
		assert.Same(t, replacement, got)
	})

	t.Run("update of absent item fails", func(t *testing.T) {
		assert.ErrorIs(t, c.Update(missing), ErrNotFound)
		assert.False(t, c.Has(missing.ID()))
	})

	t.Run("get of absent item fails", func(t *testing.T) {
		got, err := c.Get(missing.ID())
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, got)
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, c.Remove(doc.ID()))
		assert.Equal(t, 0, c.Len())
		assert.ErrorIs(t, c.Remove(doc.ID()), ErrNotFound)
	})
}

func TestCollection_ValuesIsRestartable(t *testing.T) {
	categoryID := CategoryID(uuid.New())
	c, err := NewDocumentCollection(
		newTestDocument(t, "a", categoryID),
		newTestDocument(t, "b", categoryID),
		newTestDocument(t, "c", categoryID),
	)
	require.NoError(t, err)

	first := collectTexts(c)
	second := collectTexts(c)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, first)
	assert.ElementsMatch(t, first, second)
}

func TestCollection_ValuesStopsEarly(t *testing.T) {
	categoryID := CategoryID(uuid.New())
	c, err := NewDocumentCollection(
		newTestDocument(t, "a", categoryID),
		newTestDocument(t, "b", categoryID),
	)
	require.NoError(t, err)

	seen := 0
	for range c.Values() {
		seen++
		break
	}
	assert.Equal(t, 1, seen)
}

func mustText(t *testing.T, s string) DocumentText {
	t.Helper()
	text, err := NewDocumentText(s)
	require.NoError(t, err)
	return text
}
