package embedded

// Versioned is a cache cell stamped with the version it was computed for.
// A read with any other version misses.
type Versioned[V any] struct {
	version int
	value   V
	set     bool
}

func (c *Versioned[V]) Get(version int) (V, bool) {
	if !c.set || c.version != version {
		var zero V
		return zero, false
	}
	return c.value, true
}

func (c *Versioned[V]) Set(version int, value V) {
	c.version = version
	c.value = value
	c.set = true
}

// Load returns the cached value for version, computing and storing it on a
// miss. Errors are not cached.
func (c *Versioned[V]) Load(version int, compute func() (V, error)) (V, error) {
	if v, ok := c.Get(version); ok {
		return v, nil
	}
	v, err := compute()
	if err != nil {
		return v, err
	}
	c.Set(version, v)
	return v, nil
}

// VersionedMap keeps one Versioned cell per key.
type VersionedMap[K comparable, V any] struct {
	cells map[K]*Versioned[V]
}

func (m *VersionedMap[K, V]) Load(key K, version int, compute func() (V, error)) (V, error) {
	if m.cells == nil {
		m.cells = map[K]*Versioned[V]{}
	}
	cell, ok := m.cells[key]
	if !ok {
		cell = &Versioned[V]{}
		m.cells[key] = cell
	}
	return cell.Load(version, compute)
}

// Forget drops the cell for key.
func (m *VersionedMap[K, V]) Forget(key K) {
	delete(m.cells, key)
}
