// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package page

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yomira-cms/internal/core/access"
	"github.com/taibuivan/yomira-cms/internal/platform/middleware"
	requestutil "github.com/taibuivan/yomira-cms/internal/platform/request"
	"github.com/taibuivan/yomira-cms/internal/platform/respond"
)

// Handler serves the page endpoints.
type Handler struct {
	service *Service
	guard   middleware.Guard
}

// NewHandler constructs a new page [Handler].
func NewHandler(service *Service, guard middleware.Guard) *Handler {
	return &Handler{service: service, guard: guard}
}

// Routes returns a [chi.Router] configured with the page endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public, live content only
	router.Get("/", handler.tree)
	router.Get("/menu", handler.menu)
	router.Get("/by-slug/{slug}", handler.getBySlug)

	router.With(handler.guard(access.PermPagesCreate)).Post("/", handler.create)

	router.Group(func(editor chi.Router) {
		editor.Use(handler.guard(access.PermPagesEdit))

		editor.Get("/all", handler.all)
		editor.Get("/{id}", handler.get)
		editor.Patch("/{id}", handler.update)
		editor.Post("/{id}/move", handler.move)
	})

	router.Group(func(publisher chi.Router) {
		publisher.Use(handler.guard(access.PermPagesPublish))

		publisher.Post("/{id}/publish", handler.lifecycle(handler.service.Publish))
		publisher.Post("/{id}/unpublish", handler.lifecycle(handler.service.Unpublish))
		publisher.Post("/{id}/archive", handler.lifecycle(handler.service.Archive))
		publisher.Post("/{id}/reactivate", handler.lifecycle(handler.service.Reactivate))
		publisher.Post("/{id}/schedule", handler.schedule)
	})

	router.With(handler.guard(access.PermPagesDelete)).Delete("/{id}", handler.delete)

	return router
}

// # Public

/*
GET /api/v1/pages.

Description: Returns the nested hierarchy of live pages.

Response:
  - 200: []Branch[Page]
*/
func (handler *Handler) tree(writer http.ResponseWriter, request *http.Request) {
	branches, err := handler.service.Tree(request.Context(), true)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, branches)
}

// GET /api/v1/pages/menu returns the live pages flagged for navigation.
func (handler *Handler) menu(writer http.ResponseWriter, request *http.Request) {
	branches, err := handler.service.MenuPages(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, branches)
}

func (handler *Handler) getBySlug(writer http.ResponseWriter, request *http.Request) {
	detail, err := handler.service.GetBySlug(request.Context(), requestutil.Param(request, "slug"), true)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, detail)
}

// # Editorial

// GET /api/v1/pages/all returns every page regardless of status.
func (handler *Handler) all(writer http.ResponseWriter, request *http.Request) {
	branches, err := handler.service.Tree(request.Context(), false)
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

// createRequest is the body accepted by POST /pages.
type createRequest struct {
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	ParentID      *string    `json:"parent_id"`
	Excerpt       *string    `json:"excerpt"`
	Content       string     `json:"content"`
	SortOrder     int        `json:"sort_order"`
	PublishedAt   *time.Time `json:"published_at"`
	ShowInMenu    bool       `json:"show_in_menu"`
	MenuTitle     *string    `json:"menu_title"`
	Template      string     `json:"template"`
	AllowComments bool       `json:"allow_comments"`
}

/*
POST /api/v1/pages.

Description: Creates a page. Supplying published_at schedules or publishes it
immediately depending on the time.

Response:
  - 201: Page
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var body createRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	page := &Page{
		ParentID:      body.ParentID,
		Title:         body.Title,
		Excerpt:       body.Excerpt,
		Content:       body.Content,
		SortOrder:     body.SortOrder,
		ShowInMenu:    body.ShowInMenu,
		MenuTitle:     body.MenuTitle,
		Template:      body.Template,
		AuthorID:      requestutil.OptionalUserID(request),
		AllowComments: body.AllowComments,
	}
	page.PublishAt = body.PublishedAt

	if err := handler.service.Create(request.Context(), page, body.Slug); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, page)
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

	page, err := handler.service.Update(request.Context(), id, body)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, page)
}

// moveRequest is the body accepted by POST /pages/{id}/move.
type moveRequest struct {
	ParentID  *string `json:"parent_id"`
	SortOrder *int    `json:"sort_order"`
}

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

	page, err := handler.service.Move(request.Context(), id, body.ParentID, body.SortOrder)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, page)
}

// DELETE /api/v1/pages/{id} removes the page, its subtree and their comments.
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

// # Publication

// lifecycle adapts a single-argument transition to a handler.
func (handler *Handler) lifecycle(transition func(ctx context.Context, id string) (*Page, error)) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		id, err := requestutil.ID(request, "id")
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		page, err := transition(request.Context(), id)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		respond.OK(writer, page)
	}
}

// scheduleRequest is the body accepted by POST /pages/{id}/schedule.
type scheduleRequest struct {
	PublishedAt *time.Time `json:"published_at"`
}

/*
POST /api/v1/pages/{id}/schedule.

Description: Sets or clears the publish time. The status follows the time.

Response:
  - 200: Page
  - 409: INVALID_TRANSITION
*/
func (handler *Handler) schedule(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body scheduleRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	page, err := handler.service.Schedule(request.Context(), id, body.PublishedAt)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, page)
}
