package core

import (
	"fmt"
	"sort"
	"sync"
)

var (
	shapes   = make(map[string]Shape)
	shapesMu sync.RWMutex
)

// RegisterShape adds a shape to the registry.
// Panics if a shape with the same key is already registered.
func RegisterShape(shape Shape) {
	shapesMu.Lock()
	defer shapesMu.Unlock()

	if _, exists := shapes[shape.Key]; exists {
		panic(fmt.Sprintf("shape already registered: %s", shape.Key))
	}
	if shape.Label == "" {
		shape.Label = shape.Key
	}

	shapes[shape.Key] = shape
}

// LookupShape returns a shape by key.
// Returns false if not found.
func LookupShape(key string) (Shape, bool) {
	shapesMu.RLock()
	defer shapesMu.RUnlock()

	shape, ok := shapes[key]
	return shape, ok
}

// Shapes returns all registered shapes sorted by key.
func Shapes() []Shape {
	shapesMu.RLock()
	defer shapesMu.RUnlock()

	result := make([]Shape, 0, len(shapes))
	for _, s := range shapes {
		result = append(result, s)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})

	return result
}

// ShapeCount returns the number of registered shapes.
func ShapeCount() int {
	shapesMu.RLock()
	defer shapesMu.RUnlock()
	return len(shapes)
}

// ClearShapes removes all registered shapes.
// Primarily useful for testing.
func ClearShapes() {
	shapesMu.Lock()
	defer shapesMu.Unlock()
	shapes = make(map[string]Shape)
}
