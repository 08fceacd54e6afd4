// Package inventory keeps the local mirror of the sweets service inventory.
//
// The server owns every field. The cache only ever takes whole records from
// server responses: a full snapshot on refresh, a single record after a
// purchase, and a newly created record after an admin add. It never adjusts
// quantity on its own.
//
// Cache is not safe for concurrent use; the storefront event loop owns it.
package inventory

import "sweet-shop/internal/model"

type Cache struct {
	sweets    []model.Sweet
	index     map[int64]int
	loadError string
	loaded    bool
}

func NewCache() *Cache {
	return &Cache{index: map[int64]int{}}
}

// Replace installs a freshly fetched snapshot and clears the load error.
func (c *Cache) Replace(snapshot []model.Sweet) {
	c.sweets = append(make([]model.Sweet, 0, len(snapshot)), snapshot...)
	c.reindex()
	c.loadError = ""
	c.loaded = true
}

// SetLoadError records a failed refresh. The current snapshot stays.
func (c *Cache) SetLoadError(message string) {
	c.loadError = message
}

func (c *Cache) LoadError() string {
	return c.loadError
}

// Loaded reports whether a snapshot has been installed since the last Reset.
func (c *Cache) Loaded() bool {
	return c.loaded
}

// ApplyPurchaseResult overwrites the record with the same id by updated,
// field for field. It returns false when the id is not in the snapshot.
func (c *Cache) ApplyPurchaseResult(updated model.Sweet) bool {
	i, ok := c.index[updated.ID]
	if !ok {
		return false
	}
	c.sweets[i] = updated
	return true
}

// Append adds a server-confirmed record at the end of the snapshot.
func (c *Cache) Append(created model.Sweet) {
	if i, ok := c.index[created.ID]; ok {
		c.sweets[i] = created
		return
	}
	c.index[created.ID] = len(c.sweets)
	c.sweets = append(c.sweets, created)
}

func (c *Cache) Get(id int64) (model.Sweet, bool) {
	i, ok := c.index[id]
	if !ok {
		return model.Sweet{}, false
	}
	return c.sweets[i], true
}

// Snapshot returns a copy in insertion order.
func (c *Cache) Snapshot() []model.Sweet {
	return append(make([]model.Sweet, 0, len(c.sweets)), c.sweets...)
}

func (c *Cache) Len() int {
	return len(c.sweets)
}

// Reset drops the snapshot and the load error.
func (c *Cache) Reset() {
	c.sweets = nil
	c.index = map[int64]int{}
	c.loadError = ""
	c.loaded = false
}

func (c *Cache) reindex() {
	c.index = make(map[int64]int, len(c.sweets))
	for i, s := range c.sweets {
		c.index[s.ID] = i
	}
}
