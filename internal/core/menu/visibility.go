// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package menu

import (
	"strings"

	"github.com/taibuivan/yomira-cms/internal/core/access"
	"github.com/taibuivan/yomira-cms/internal/core/owner"
	"github.com/taibuivan/yomira-cms/internal/core/tree"
)

// # Visibility

/*
IsVisible reports whether viewer may see item. A nil viewer is a guest.

An inactive item is never visible. Otherwise every rule must hold, checked in
order and stopping at the first failure. A rule of unknown kind holds.
*/
func IsVisible(item Item, viewer *access.User) bool {
	if !item.IsActive {
		return false
	}

	for _, rule := range item.Rules {
		if !Holds(rule, viewer) {
			return false
		}
	}
	return true
}

// Holds evaluates a single rule for viewer.
func Holds(rule Rule, viewer *access.User) bool {
	switch rule.Kind {
	case RuleAuth:
		if rule.Value == AuthLoggedIn {
			return viewer.IsAuthenticated()
		}
		return !viewer.IsAuthenticated()

	case RuleRole:
		return viewer.HasRole(rule.Value)

	case RulePermission:
		return viewer.HasPermission(rule.Value)

	default:
		return true
	}
}

// UnknownRules returns the rules the evaluator would wave through.
func UnknownRules(rules []Rule) []Rule {
	var unknown []Rule
	for _, rule := range rules {
		if !rule.Known() {
			unknown = append(unknown, rule)
		}
	}
	return unknown
}

/*
VisibleTree nests the items of one menu for viewer.

A hidden item hides its whole subtree, even when its children would be visible
on their own.

Returns:
  - error: CYCLE_DETECTED when the stored parent links loop
*/
func VisibleTree(items []Item, viewer *access.User) ([]tree.Branch[Item], error) {
	branches, err := tree.New(items).Branches(nil)
	if err != nil {
		return nil, err
	}
	return prune(branches, viewer), nil
}

func prune(branches []tree.Branch[Item], viewer *access.User) []tree.Branch[Item] {
	visible := make([]tree.Branch[Item], 0, len(branches))
	for _, branch := range branches {
		if !IsVisible(branch.Value, viewer) {
			continue
		}
		branch.Children = prune(branch.Children, viewer)
		visible = append(visible, branch)
	}
	return visible
}

// # Links

// IsExternal reports whether the item points outside the site.
func IsExternal(item Item) bool {
	if item.URL == nil {
		return false
	}
	return strings.HasPrefix(*item.URL, "http://") || strings.HasPrefix(*item.URL, "https://")
}

/*
ResolvedURL returns where the item leads.

A literal URL wins. Otherwise the path of the linked entity is used when it
could be loaded; "#" is the fallback.
*/
func ResolvedURL(item Item, linked *owner.Snapshot) string {
	if item.URL != nil && *item.URL != "" {
		return *item.URL
	}
	if linked != nil && linked.Path != "" {
		return linked.Path
	}
	return "#"
}

// Render converts visible branches into their presentation form. links holds
// the snapshots of linked entities keyed by item id.
func Render(branches []tree.Branch[Item], links map[string]owner.Snapshot) []Rendered {
	rendered := make([]Rendered, 0, len(branches))
	for _, branch := range branches {
		item := branch.Value

		var linked *owner.Snapshot
		if snapshot, ok := links[item.ID]; ok {
			linked = &snapshot
		}

		rendered = append(rendered, Rendered{
			ID:         item.ID,
			Title:      item.Title,
			URL:        ResolvedURL(item, linked),
			Target:     item.Target,
			CSSClass:   item.CSSClass,
			Icon:       item.Icon,
			IsExternal: IsExternal(item),
			Children:   Render(branch.Children, links),
		})
	}
	return rendered
}
