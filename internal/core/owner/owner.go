// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package owner resolves polymorphic entity references.

Comments attach to an owner and menu items link to a target, both expressed as
a closed {type, id} pair. A [Registry] maps each [Type] to the [Loader] of the
domain that owns it, so resolution is an explicit lookup instead of runtime
reflection.
*/
package owner

import (
	"context"
	"sort"
	"sync"

	"github.com/taibuivan/yomira-cms/internal/platform/apperr"
)

// Type is the closed set of entity kinds that can own comments or be linked.
type Type string

const (
	TypePost Type = "post"
	TypePage Type = "page"
)

// Ref points at one entity of a given type.
type Ref struct {
	Type Type   `json:"type"`
	ID   string `json:"id"`
}

// Snapshot is what other domains need to know about a referenced entity.
type Snapshot struct {
	Ref            Ref    `json:"ref"`
	Title          string `json:"title"`
	Path           string `json:"path"`
	AllowsComments bool   `json:"allows_comments"`
}

// Loader loads the snapshot of one entity type.
type Loader interface {
	LoadOwner(ctx context.Context, id string) (Snapshot, error)
}

// LoaderFunc adapts a function to [Loader].
type LoaderFunc func(ctx context.Context, id string) (Snapshot, error)

// LoadOwner implements [Loader].
func (f LoaderFunc) LoadOwner(ctx context.Context, id string) (Snapshot, error) {
	return f(ctx, id)
}

// Registry maps entity types to their loaders.
//
// # Concurrency
//
// Registration happens at startup; lookups are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	loaders map[Type]Loader
}

// NewRegistry constructs an empty [Registry].
func NewRegistry() *Registry {
	return &Registry{loaders: make(map[Type]Loader)}
}

// Register binds a loader to an entity type, replacing any previous one.
func (r *Registry) Register(kind Type, loader Loader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaders[kind] = loader
}

// Load resolves a reference.
//
// Returns:
//   - VALIDATION_ERROR when no loader handles the type
//   - whatever the loader returns otherwise (NOT_FOUND for a missing id)
func (r *Registry) Load(ctx context.Context, ref Ref) (Snapshot, error) {
	r.mu.RLock()
	loader, ok := r.loaders[ref.Type]
	r.mu.RUnlock()

	if !ok {
		return Snapshot{}, apperr.ValidationError("Unsupported entity type",
			apperr.FieldError{Field: "type", Message: "Unknown type " + string(ref.Type)})
	}
	return loader.LoadOwner(ctx, ref.ID)
}

// Types lists the registered entity types in lexical order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.loaders))
	for kind := range r.loaders {
		types = append(types, string(kind))
	}
	sort.Strings(types)
	return types
}
