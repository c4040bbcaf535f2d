package item

import (
	"fmt"
	"sort"
)

// Catalog holds every loaded Item indexed by ID. It is read-only once populated and
// may be shared by any number of inventories and equipment sets.
type Catalog struct {
	items map[int]*Item
}

// NewCatalog returns an empty Catalog.
//
// Postcondition: Len() == 0.
func NewCatalog() *Catalog {
	return &Catalog{items: make(map[int]*Item)}
}

// NewCatalogFrom builds a Catalog from items, failing on the first ID collision.
func NewCatalogFrom(items []*Item) (*Catalog, error) {
	c := NewCatalog()
	for _, it := range items {
		if err := c.Register(it); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Register adds it to the catalog.
//
// Precondition: it must not be nil.
// Postcondition: Item(it.ID) returns (it, true); returns error if it.ID is already registered.
func (c *Catalog) Register(it *Item) error {
	if it == nil {
		return fmt.Errorf("item: Catalog.Register: item must not be nil")
	}
	if _, exists := c.items[it.ID]; exists {
		return fmt.Errorf("item: Catalog.Register: item ID %d already registered", it.ID)
	}
	c.items[it.ID] = it
	return nil
}

// Item returns the Item for the given id and whether it was found.
func (c *Catalog) Item(id int) (*Item, bool) {
	it, ok := c.items[id]
	return it, ok
}

// ByName returns the first item whose Name matches, in ascending ID order.
func (c *Catalog) ByName(name string) (*Item, bool) {
	for _, it := range c.All() {
		if it.Name == name {
			return it, true
		}
	}
	return nil, false
}

// Len returns the number of registered items.
func (c *Catalog) Len() int { return len(c.items) }

// All returns every registered item sorted by ascending ID.
func (c *Catalog) All() []*Item {
	out := make([]*Item, 0, len(c.items))
	for _, it := range c.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
