// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yomira-cms/internal/core/access"
	"github.com/taibuivan/yomira-cms/internal/platform/middleware"
	requestutil "github.com/taibuivan/yomira-cms/internal/platform/request"
	"github.com/taibuivan/yomira-cms/internal/platform/respond"
	"github.com/taibuivan/yomira-cms/pkg/convert"
)

// Handler serves the category endpoints.
type Handler struct {
	service *Service
	guard   middleware.Guard
}

// NewHandler constructs a new category [Handler].
func NewHandler(service *Service, guard middleware.Guard) *Handler {
	return &Handler{service: service, guard: guard}
}

// Routes returns a [chi.Router] configured with the category endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.tree)
	router.Get("/by-slug/{slug}", handler.getBySlug)
	router.Get("/{id}", handler.get)

	router.Group(func(admin chi.Router) {
		admin.Use(handler.guard(access.PermCategoriesManage))

		admin.Post("/", handler.create)
		admin.Patch("/{id}", handler.update)
		admin.Post("/{id}/move", handler.move)
		admin.Delete("/{id}", handler.delete)
	})

	return router
}

/*
GET /api/v1/categories?all=false.

Description: Returns the nested hierarchy. Inactive categories are hidden
unless all=true.

Response:
  - 200: []Branch[Category]
*/
func (handler *Handler) tree(writer http.ResponseWriter, request *http.Request) {
	activeOnly := !convert.ToBool(request.URL.Query().Get("all"))

	branches, err := handler.service.Tree(request.Context(), activeOnly)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, branches)
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	detail, err := handler.service.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, detail)
}

func (handler *Handler) getBySlug(writer http.ResponseWriter, request *http.Request) {
	detail, err := handler.service.GetBySlug(request.Context(), requestutil.Param(request, "slug"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, detail)
}

// createRequest is the body accepted by POST /categories.
type createRequest struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	ParentID    *string `json:"parent_id"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
	SortOrder   int     `json:"sort_order"`
}

/*
POST /api/v1/categories.

Response:
  - 201: Category
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var body createRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	category := &Category{
		Name:        body.Name,
		ParentID:    body.ParentID,
		Description: body.Description,
		Color:       body.Color,
		SortOrder:   body.SortOrder,
	}
	if err := handler.service.Create(request.Context(), category, body.Slug); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, category)
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

	category, err := handler.service.Update(request.Context(), id, body)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, category)
}

// moveRequest is the body accepted by POST /categories/{id}/move.
type moveRequest struct {
	ParentID  *string `json:"parent_id"`
	SortOrder *int    `json:"sort_order"`
}

/*
POST /api/v1/categories/{id}/move.

Response:
  - 200: Category
  - 422: INVALID_PARENT when moving below itself or a descendant
*/
func (handler *Handler) move(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body moveRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	category, err := handler.service.Move(request.Context(), id, body.ParentID, body.SortOrder)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, category)
}

// DELETE /api/v1/categories/{id} removes the category and its subtree.
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	removed, err := handler.service.Delete(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, map[string][]string{"removed": removed})
}
