// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package post

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yomira-cms/internal/core/access"
	"github.com/taibuivan/yomira-cms/internal/core/publication"
	"github.com/taibuivan/yomira-cms/internal/platform/middleware"
	requestutil "github.com/taibuivan/yomira-cms/internal/platform/request"
	"github.com/taibuivan/yomira-cms/internal/platform/respond"
	"github.com/taibuivan/yomira-cms/internal/platform/validate"
	"github.com/taibuivan/yomira-cms/pkg/convert"
	"github.com/taibuivan/yomira-cms/pkg/pagination"
	"github.com/taibuivan/yomira-cms/pkg/pointer"
)

// Handler serves the post endpoints.
type Handler struct {
	service *Service
	guard   middleware.Guard
}

// NewHandler constructs a new post [Handler].
func NewHandler(service *Service, guard middleware.Guard) *Handler {
	return &Handler{service: service, guard: guard}
}

// Routes returns a [chi.Router] configured with the post endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public, live content only
	router.Get("/", handler.published)
	router.Get("/by-slug/{slug}", handler.view)
	router.Get("/{id}/related", handler.related)

	router.Group(func(author chi.Router) {
		author.Use(handler.guard(access.PermPostsCreate))

		author.Post("/", handler.create)
		author.Post("/{id}/duplicate", handler.duplicate)
	})

	router.Group(func(editor chi.Router) {
		editor.Use(handler.guard(access.PermPostsEdit))

		editor.Get("/all", handler.list)
		editor.Get("/{id}", handler.get)
		editor.Patch("/{id}", handler.update)
		editor.Put("/{id}/tags", handler.syncTags)
	})

	router.Group(func(publisher chi.Router) {
		publisher.Use(handler.guard(access.PermPostsPublish))

		publisher.Post("/{id}/publish", handler.lifecycle(handler.service.Publish))
		publisher.Post("/{id}/unpublish", handler.lifecycle(handler.service.Unpublish))
		publisher.Post("/{id}/archive", handler.lifecycle(handler.service.Archive))
		publisher.Post("/{id}/reactivate", handler.lifecycle(handler.service.Reactivate))
		publisher.Post("/{id}/schedule", handler.schedule)
	})

	router.With(handler.guard(access.PermPostsDelete)).Delete("/{id}", handler.delete)

	return router
}

// # Public

/*
GET /api/v1/posts?q=&category=&tag=&author=&featured=&sticky=.

Description: Lists live posts. Sticky posts come first. A category filter
includes its subcategories.

Response:
  - 200: []Post: Paginated list
*/
func (handler *Handler) published(writer http.ResponseWriter, request *http.Request) {
	filter, err := parseFilter(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.paginate(writer, request, filter, handler.service.Published)
}

/*
GET /api/v1/posts/by-slug/{slug}.

Description: Returns a live post and counts the view.

Response:
  - 200: Post
  - 404: NOT_FOUND when missing or not live
*/
func (handler *Handler) view(writer http.ResponseWriter, request *http.Request) {
	post, err := handler.service.View(request.Context(), requestutil.Param(request, "slug"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, post)
}

// GET /api/v1/posts/{id}/related?limit=5.
func (handler *Handler) related(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	limit := convert.ToIntD(request.URL.Query().Get("limit"), DefaultRelatedLimit)
	if limit > pagination.MaxLimit {
		limit = pagination.MaxLimit
	}

	posts, err := handler.service.Related(request.Context(), id, limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, posts)
}

// # Editorial

/*
GET /api/v1/posts/all?status=draft.

Description: Lists posts in any state.

Response:
  - 200: []Post: Paginated list
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	filter, err := parseFilter(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if raw := request.URL.Query().Get("status"); raw != "" {
		validator := &validate.Validator{}
		if err := validator.OneOf(FieldStatus, raw, publication.Statuses...).Err(); err != nil {
			respond.Error(writer, request, err)
			return
		}
		filter.Status = pointer.To(publication.Status(raw))
	}

	handler.paginate(writer, request, filter, handler.service.List)
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	post, err := handler.service.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, post)
}

// createRequest is the body accepted by POST /posts.
type createRequest struct {
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Excerpt       *string    `json:"excerpt"`
	Content       string     `json:"content"`
	FeaturedImage *string    `json:"featured_image"`
	CategoryID    *string    `json:"category_id"`
	PublishedAt   *time.Time `json:"published_at"`
	AllowComments *bool      `json:"allow_comments"`
	IsFeatured    bool       `json:"is_featured"`
	IsSticky      bool       `json:"is_sticky"`
	Tags          []string   `json:"tags"`
}

/*
POST /api/v1/posts.

Description: Creates a post with its tags. Comments are allowed unless
allow_comments is false.

Response:
  - 201: Post
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var body createRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	post := &Post{
		Title:         body.Title,
		Excerpt:       body.Excerpt,
		Content:       body.Content,
		FeaturedImage: body.FeaturedImage,
		AuthorID:      requestutil.OptionalUserID(request),
		CategoryID:    body.CategoryID,
		IsFeatured:    body.IsFeatured,
		AllowComments: pointer.Fallback(body.AllowComments, true),
		IsSticky:      body.IsSticky,
	}
	post.PublishAt = body.PublishedAt

	if err := handler.service.Create(request.Context(), post, body.Slug, body.Tags); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, post)
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

	post, err := handler.service.Update(request.Context(), id, body)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, post)
}

// tagsRequest is the body accepted by PUT /posts/{id}/tags.
type tagsRequest struct {
	Tags []string `json:"tags"`
}

// PUT /api/v1/posts/{id}/tags replaces the tags of a post by name.
func (handler *Handler) syncTags(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body tagsRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	post, err := handler.service.SyncTags(request.Context(), id, body.Tags)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, post)
}

// POST /api/v1/posts/{id}/duplicate copies the post as a draft.
func (handler *Handler) duplicate(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	post, err := handler.service.Duplicate(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, post)
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

// # Publication

// lifecycle adapts a single-argument transition to a handler.
func (handler *Handler) lifecycle(transition func(ctx context.Context, id string) (*Post, error)) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		id, err := requestutil.ID(request, "id")
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		post, err := transition(request.Context(), id)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		respond.OK(writer, post)
	}
}

// scheduleRequest is the body accepted by POST /posts/{id}/schedule.
type scheduleRequest struct {
	PublishedAt *time.Time `json:"published_at"`
}

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

	post, err := handler.service.Schedule(request.Context(), id, body.PublishedAt)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, post)
}

// # Internal Helpers

type listFunc func(ctx context.Context, filter Filter, limit, offset int) ([]*Post, int, error)

func (handler *Handler) paginate(writer http.ResponseWriter, request *http.Request, filter Filter, list listFunc) {
	paginationParams := pagination.FromRequest(request)

	posts, total, err := list(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, posts, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

// parseFilter reads the listing filters shared by public and editorial routes.
func parseFilter(request *http.Request) (Filter, error) {
	query := request.URL.Query()
	filter := Filter{Query: query.Get("q")}
	validator := &validate.Validator{}

	optionalID := func(field string) *string {
		raw := query.Get(field)
		if raw == "" {
			return nil
		}
		validator.UUID(field, raw)
		return &raw
	}
	filter.CategoryID = optionalID("category")
	filter.TagID = optionalID("tag")
	filter.AuthorID = optionalID("author")

	if raw := query.Get("featured"); raw != "" {
		filter.Featured = pointer.To(convert.ToBool(raw))
	}
	if raw := query.Get("sticky"); raw != "" {
		filter.Sticky = pointer.To(convert.ToBool(raw))
	}

	return filter, validator.Err()
}
