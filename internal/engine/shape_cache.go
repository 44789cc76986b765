// Package engine implements the relational translation layer behind
// GetPage: path resolution, parameter binding, and the
// selection/restriction/order builders that assemble one backend query.
package engine

import (
	"reflect"
	"sync"
)

// EntityShape is the per-entity-type information the path resolver,
// selection builder, and order builder all need and that is expensive
// enough to compute (reflecting over struct tags, walking association
// metadata) that it is worth memoizing once per process per entity type.
type EntityShape struct {
	Metadata EntityMetadata
}

// ShapeProvider computes an EntityShape for a Go type the first time it is
// seen. Concrete backends supply one that reflects over struct tags (or
// consults a generated mapping); this package never does that reflection
// itself.
type ShapeProvider interface {
	ComputeShape(entityType reflect.Type) (EntityShape, error)
}

// shapeCache is a process-wide, concurrency-safe memoization table over
// entity type, mirroring the teacher's schemaMetadataCache: a read lock for
// the common hit path, a write lock only on first computation per key.
type shapeCache struct {
	provider ShapeProvider

	mu     sync.RWMutex
	shapes map[reflect.Type]EntityShape
}

func newShapeCache(provider ShapeProvider) *shapeCache {
	return &shapeCache{
		provider: provider,
		shapes:   make(map[reflect.Type]EntityShape),
	}
}

// get returns the cached shape for entityType, computing and storing it on
// first request. Two goroutines racing the same uncached type both end up
// calling ComputeShape once each at worst; the second write simply
// overwrites the first with an equal value, which is safe because shapes
// are pure functions of entityType.
func (c *shapeCache) get(entityType reflect.Type) (EntityShape, error) {
	c.mu.RLock()
	shape, ok := c.shapes[entityType]
	c.mu.RUnlock()
	if ok {
		return shape, nil
	}

	shape, err := c.provider.ComputeShape(entityType)
	if err != nil {
		return EntityShape{}, err
	}

	c.mu.Lock()
	c.shapes[entityType] = shape
	c.mu.Unlock()
	return shape, nil
}

// Shapes is the package-level cache instance. GetPage does not consult it;
// GetPage takes its metadata from PageEngineConfig. A process hosts one
// formapage deployment per backend configuration, so a single shared table
// (keyed by reflect.Type, not by backend) is sufficient.
var Shapes = newShapeCache(staticShapeProvider{})

// staticShapeProvider is the zero-value ShapeProvider used when a caller
// registers entity metadata directly via RegisterShape instead of
// reflecting it from struct tags.
type staticShapeProvider struct{}

func (staticShapeProvider) ComputeShape(entityType reflect.Type) (EntityShape, error) {
	return EntityShape{}, &unregisteredShapeError{entityType: entityType}
}

type unregisteredShapeError struct {
	entityType reflect.Type
}

func (e *unregisteredShapeError) Error() string {
	return "engine: no shape registered for entity type " + e.entityType.String()
}

// RegisterShape pins the metadata for one Go entity type directly into the
// shared shape cache, bypassing reflection. Callers that already know their
// entity's attribute map (generated code, a config file) use this instead
// of implementing ShapeProvider.
func RegisterShape(entityType reflect.Type, metadata EntityMetadata) {
	Shapes.mu.Lock()
	defer Shapes.mu.Unlock()
	Shapes.shapes[entityType] = EntityShape{Metadata: metadata}
}
