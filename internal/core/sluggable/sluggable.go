// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package sluggable applies the slug assignment policy shared by every entity
that carries a display name and a URL identifier.

The normalization itself lives in [slug.From]; this package decides *when* a
slug is (re)derived:

  - On create: derive from the name unless a slug was explicitly provided.
  - On update: re-derive only when the name changed, no slug was provided in
    the same update, and the current slug was not explicitly chosen.

An explicitly chosen slug is remembered through [Fields.SlugCustom] and never
silently overwritten. Sending an empty slug in an update releases it back to
automatic derivation.
*/
package sluggable

import (
	"context"
	"fmt"

	"github.com/taibuivan/yomira-cms/pkg/slug"
)

// maxSuffix bounds the "-2", "-3", ... candidates tried by [Unique].
const maxSuffix = 100

// Fields is the sluggable part of an entity.
type Fields struct {
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	SlugCustom bool   `json:"slug_custom"`
}

// OnCreate returns the fields of a new entity.
func OnCreate(name, explicit string) Fields {
	if explicit != "" {
		return Fields{Name: name, Slug: explicit, SlugCustom: true}
	}
	return Fields{Name: name, Slug: slug.From(name)}
}

// OnUpdate applies a partial update. A nil pointer means "not part of this
// update".
func OnUpdate(current Fields, name, explicit *string) Fields {
	next := current

	if name != nil {
		next.Name = *name
	}

	// Explicit slug wins, empty string hands control back to derivation.
	if explicit != nil {
		if *explicit != "" {
			next.Slug = *explicit
			next.SlugCustom = true
			return next
		}
		next.SlugCustom = false
		next.Slug = slug.From(next.Name)
		return next
	}

	if name != nil && *name != current.Name && !current.SlugCustom {
		next.Slug = slug.From(next.Name)
	}

	return next
}

// ExistsFunc reports whether a slug is already taken in the entity collection.
type ExistsFunc func(ctx context.Context, candidate string) (bool, error)

// Unique returns base, or the first free "base-N" candidate (N ≥ 2).
//
// It narrows the window for unique-constraint violations on derived slugs;
// the storage constraint stays authoritative under concurrent inserts.
func Unique(ctx context.Context, base string, exists ExistsFunc) (string, error) {
	taken, err := exists(ctx, base)
	if err != nil || !taken {
		return base, err
	}

	for n := 2; n <= maxSuffix; n++ {
		candidate := fmt.Sprintf("%s%c%d", base, slug.Separator, n)

		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	return base, nil
}
