package domain

import (
	"fmt"
	"iter"
)

// Identifiable is implemented by entities that can live in a Collection
type Identifiable[K comparable] interface {
	ID() K
}

// Collection maps a unique identifier to an entity. The zero value is an empty
// collection ready to use. Iteration order is unspecified. Not safe for concurrent mutation.
type Collection[K comparable, T Identifiable[K]] struct {
	items map[K]T
}

// NewCollection builds a collection from items, failing on a repeated id
func NewCollection[K comparable, T Identifiable[K]](items ...T) (*Collection[K, T], error) {
	c := &Collection[K, T]{items: make(map[K]T, len(items))}
	for _, item := range items {
		if err := c.Add(item); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add inserts item, failing with ErrDuplicateID if its id is already present
func (c *Collection[K, T]) Add(item T) error {
	id := item.ID()
	if _, ok := c.items[id]; ok {
		return fmt.Errorf("%w: %v", ErrDuplicateID, id)
	}
	if c.items == nil {
		c.items = make(map[K]T)
	}
	c.items[id] = item
	return nil
}

// Update replaces the item with the same id, failing with ErrNotFound if absent
func (c *Collection[K, T]) Update(item T) error {
	id := item.ID()
	if _, ok := c.items[id]; !ok {
		return fmt.Errorf("%w: %v", ErrNotFound, id)
	}
	c.items[id] = item
	return nil
}

// Remove deletes the item with the given id, failing with ErrNotFound if absent
func (c *Collection[K, T]) Remove(id K) error {
	if _, ok := c.items[id]; !ok {
		return fmt.Errorf("%w: %v", ErrNotFound, id)
	}
	delete(c.items, id)
	return nil
}

// Get returns the item with the given id, failing with ErrNotFound if absent
func (c *Collection[K, T]) Get(id K) (T, error) {
	item, ok := c.items[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %v", ErrNotFound, id)
	}
	return item, nil
}

// Has reports whether an item with the given id is present
func (c *Collection[K, T]) Has(id K) bool {
	_, ok := c.items[id]
	return ok
}

// Len returns the number of items
func (c *Collection[K, T]) Len() int {
	return len(c.items)
}

// Values yields every item. The sequence can be ranged over more than once.
func (c *Collection[K, T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, item := range c.items {
			if !yield(item) {
				return
			}
		}
	}
}

// DocumentCollection holds the documents of one category
type DocumentCollection = Collection[DocumentID, *Document]

// CategoryCollection holds the categories of one workspace
type CategoryCollection = Collection[CategoryID, *Category]

// NewDocumentCollection builds a DocumentCollection
func NewDocumentCollection(documents ...*Document) (*DocumentCollection, error) {
	return NewCollection[DocumentID, *Document](documents...)
}

// NewCategoryCollection builds a CategoryCollection
func NewCategoryCollection(categories ...*Category) (*CategoryCollection, error) {
	return NewCollection[CategoryID, *Category](categories...)
}
