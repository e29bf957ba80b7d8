// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package menu

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yomira-cms/internal/core/access"
	"github.com/taibuivan/yomira-cms/internal/platform/middleware"
	requestutil "github.com/taibuivan/yomira-cms/internal/platform/request"
	"github.com/taibuivan/yomira-cms/internal/platform/respond"
)

// ViewerResolver loads the authorization snapshot of the caller.
type ViewerResolver interface {
	Viewer(ctx context.Context, userID *string) (*access.User, error)
}

// Handler serves the menu endpoints.
type Handler struct {
	service *Service
	viewers ViewerResolver
	guard   middleware.Guard
}

// NewHandler constructs a new menu [Handler].
func NewHandler(service *Service, viewers ViewerResolver, guard middleware.Guard) *Handler {
	return &Handler{service: service, viewers: viewers, guard: guard}
}

// Routes returns a [chi.Router] configured with the menu endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/location/{location}", handler.location)
	router.Get("/by-slug/{slug}", handler.render)

	router.Group(func(admin chi.Router) {
		admin.Use(handler.guard(access.PermMenusManage))

		admin.Get("/", handler.list)
		admin.Post("/", handler.create)
		admin.Get("/{id}", handler.get)
		admin.Patch("/{id}", handler.update)
		admin.Delete("/{id}", handler.delete)

		admin.Get("/{id}/items", handler.items)
		admin.Post("/{id}/items", handler.addItem)
		admin.Patch("/items/{itemID}", handler.updateItem)
		admin.Post("/items/{itemID}/move", handler.moveItem)
		admin.Delete("/items/{itemID}", handler.deleteItem)
	})

	return router
}

// # Public

/*
GET /api/v1/menus/location/{location}.

Description: Renders every active menu at a location for the caller. Items
hidden by their visibility rules are left out.

Response:
  - 200: []View
*/
func (handler *Handler) location(writer http.ResponseWriter, request *http.Request) {
	viewer, err := handler.viewers.Viewer(request.Context(), requestutil.OptionalUserID(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	views, err := handler.service.Location(request.Context(), requestutil.Param(request, "location"), viewer)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, views)
}

// GET /api/v1/menus/by-slug/{slug}.
func (handler *Handler) render(writer http.ResponseWriter, request *http.Request) {
	viewer, err := handler.viewers.Viewer(request.Context(), requestutil.OptionalUserID(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	view, err := handler.service.Render(request.Context(), requestutil.Param(request, "slug"), viewer)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, view)
}

// # Administration

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	var location *string
	if raw := request.URL.Query().Get("location"); raw != "" {
		location = &raw
	}

	menus, err := handler.service.List(request.Context(), location)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, menus)
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	menu, err := handler.service.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, menu)
}

// createRequest is the body accepted by POST /menus.
type createRequest struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
}

/*
POST /api/v1/menus.

Response:
  - 201: Menu
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var body createRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	menu := &Menu{Name: body.Name, Description: body.Description, Location: body.Location}
	if err := handler.service.Create(request.Context(), menu, body.Slug); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, menu)
}

func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body Update
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	menu, err := handler.service.Update(request.Context(), id, body)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, menu)
}

func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Delete(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// # Items

// GET /api/v1/menus/{id}/items.
func (handler *Handler) items(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	branches, err := handler.service.Items(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, branches)
}

// addItemRequest is the body accepted by POST /menus/{id}/items.
type addItemRequest struct {
	ItemInput
	ParentID *string `json:"parent_id"`
}

/*
POST /api/v1/menus/{id}/items.

Request: {"title": "About", "link": {"type": "page", "id": "..."},
"visibility_rules": [{"type": "auth", "value": "logged_in"}]}

Response:
  - 201: Item
*/
func (handler *Handler) addItem(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body addItemRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	item, err := handler.service.AddItem(request.Context(), id, body.ParentID, body.ItemInput)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, item)
}

func (handler *Handler) updateItem(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "itemID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body ItemInput
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	item, err := handler.service.UpdateItem(request.Context(), id, body)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, item)
}

// moveRequest is the body accepted by POST /menus/items/{itemID}/move.
type moveRequest struct {
	ParentID  *string `json:"parent_id"`
	SortOrder *int    `json:"sort_order"`
}

/*
POST /api/v1/menus/items/{itemID}/move.

Response:
  - 200: Item
  - 422: INVALID_PARENT when the target is the item itself or below it
*/
func (handler *Handler) moveItem(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "itemID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body moveRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	item, err := handler.service.MoveItem(request.Context(), id, body.ParentID, body.SortOrder)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, item)
}

func (handler *Handler) deleteItem(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "itemID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	removed, err := handler.service.DeleteItem(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, map[string][]string{"removed": removed})
}
