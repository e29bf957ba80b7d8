// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yomira-cms/internal/core/access"
	"github.com/taibuivan/yomira-cms/internal/platform/middleware"
	requestutil "github.com/taibuivan/yomira-cms/internal/platform/request"
	"github.com/taibuivan/yomira-cms/internal/platform/respond"
	"github.com/taibuivan/yomira-cms/pkg/convert"
	"github.com/taibuivan/yomira-cms/pkg/pagination"
)

// Handler serves the tag endpoints.
type Handler struct {
	service *Service
	guard   middleware.Guard
}

// NewHandler constructs a new tag [Handler].
func NewHandler(service *Service, guard middleware.Guard) *Handler {
	return &Handler{service: service, guard: guard}
}

// Routes returns a [chi.Router] configured with the tag endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)
	router.Get("/popular", handler.popular)
	router.Get("/by-slug/{slug}", handler.getBySlug)
	router.Get("/{id}", handler.get)

	router.Group(func(admin chi.Router) {
		admin.Use(handler.guard(access.PermTagsManage))

		admin.Post("/", handler.create)
		admin.Patch("/{id}", handler.update)
		admin.Delete("/{id}", handler.delete)
		admin.Post("/{id}/recompute", handler.recompute)
		admin.Post("/reconcile", handler.reconcile)
	})

	return router
}

/*
GET /api/v1/tags?q=&active=true.

Response:
  - 200: []Tag: Paginated list ordered by name
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	query := request.URL.Query()

	filter := Filter{Query: query.Get("q")}
	if raw := query.Get("active"); raw != "" {
		active := convert.ToBool(raw)
		filter.Active = &active
	}

	tags, total, err := handler.service.List(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, tags, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

// GET /api/v1/tags/popular?limit=20.
func (handler *Handler) popular(writer http.ResponseWriter, request *http.Request) {
	limit := convert.ToIntD(request.URL.Query().Get("limit"), DefaultPopularLimit)
	if limit > pagination.MaxLimit {
		limit = pagination.MaxLimit
	}

	tags, err := handler.service.Popular(request.Context(), limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, tags)
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	tag, err := handler.service.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, tag)
}

func (handler *Handler) getBySlug(writer http.ResponseWriter, request *http.Request) {
	tag, err := handler.service.GetBySlug(request.Context(), requestutil.Param(request, "slug"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, tag)
}

// createRequest is the body accepted by POST /tags.
type createRequest struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

/*
POST /api/v1/tags.

Response:
  - 201: Tag
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var body createRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	tag := &Tag{Name: body.Name, Description: body.Description, Color: body.Color}
	if err := handler.service.Create(request.Context(), tag, body.Slug); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, tag)
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

	tag, err := handler.service.Update(request.Context(), id, body)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, tag)
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

// POST /api/v1/tags/{id}/recompute.
func (handler *Handler) recompute(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	tag, err := handler.service.Recompute(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, tag)
}

/*
POST /api/v1/tags/reconcile.

Description: Recomputes every usage count. Safe to call repeatedly.

Response:
  - 200: []Correction: The counts that were repaired
*/
func (handler *Handler) reconcile(writer http.ResponseWriter, request *http.Request) {
	corrections, err := handler.service.ReconcileAll(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if corrections == nil {
		corrections = []Correction{}
	}
	respond.OK(writer, corrections)
}
