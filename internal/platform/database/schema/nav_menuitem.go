// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// NavMenuItemTable represents the 'nav.menuitem' table
type NavMenuItemTable struct {
	Table           string
	ID              string
	MenuID          string
	ParentID        string
	Title           string
	URL             string
	LinkType        string
	LinkID          string
	SortOrder       string
	Target          string
	CSSClass        string
	Icon            string
	IsActive        string
	VisibilityRules string
	CreatedAt       string
	UpdatedAt       string
}

// NavMenuItem is the schema definition for nav.menuitem
var NavMenuItem = NavMenuItemTable{
	Table:           "nav.menuitem",
	ID:              "id",
	MenuID:          "menuid",
	ParentID:        "parentid",
	Title:           "title",
	URL:             "url",
	LinkType:        "linktype",
	LinkID:          "linkid",
	SortOrder:       "sortorder",
	Target:          "target",
	CSSClass:        "cssclass",
	Icon:            "icon",
	IsActive:        "isactive",
	VisibilityRules: "visibilityrules",
	CreatedAt:       "createdat",
	UpdatedAt:       "updatedat",
}

func (t NavMenuItemTable) Columns() []string {
	return []string{
		t.ID, t.MenuID, t.ParentID, t.Title, t.URL, t.LinkType, t.LinkID, t.SortOrder,
		t.Target, t.CSSClass, t.Icon, t.IsActive, t.VisibilityRules, t.CreatedAt, t.UpdatedAt,
	}
}
