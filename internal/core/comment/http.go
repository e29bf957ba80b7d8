// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package comment

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yomira-cms/internal/core/access"
	"github.com/taibuivan/yomira-cms/internal/core/owner"
	"github.com/taibuivan/yomira-cms/internal/platform/apperr"
	"github.com/taibuivan/yomira-cms/internal/platform/constants"
	"github.com/taibuivan/yomira-cms/internal/platform/middleware"
	requestutil "github.com/taibuivan/yomira-cms/internal/platform/request"
	"github.com/taibuivan/yomira-cms/internal/platform/respond"
	"github.com/taibuivan/yomira-cms/pkg/pagination"
	"github.com/taibuivan/yomira-cms/pkg/uuid"
)

// # Handler Implementation

// Handler exposes comment submission to visitors and the moderation queue to
// staff holding the moderation permissions.
type Handler struct {
	service *Service
	guard   middleware.Guard
}

// NewHandler constructs a new comment [Handler].
func NewHandler(service *Service, guard middleware.Guard) *Handler {
	return &Handler{service: service, guard: guard}
}

// Routes returns a [chi.Router] configured with the comment endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Public
	router.Get("/thread", handler.thread)
	router.Post("/", handler.create)
	router.Post("/{id}/like", handler.like)
	router.Delete("/{id}/like", handler.unlike)

	// ## Moderation
	router.Group(func(moderation chi.Router) {
		moderation.Use(handler.guard(access.PermCommentsModerate))

		moderation.Get("/", handler.list)
		moderation.Get("/{id}", handler.get)
		moderation.Post("/{id}/approve", handler.moderate(StatusApproved))
		moderation.Post("/{id}/reject", handler.moderate(StatusRejected))
		moderation.Post("/{id}/spam", handler.moderate(StatusSpam))
	})

	router.With(handler.guard(access.PermCommentsDelete)).Delete("/{id}", handler.delete)

	return router
}

// createRequest is the body accepted by POST /comments.
type createRequest struct {
	OwnerType    string  `json:"owner_type"`
	OwnerID      string  `json:"owner_id"`
	ParentID     *string `json:"parent_id"`
	Content      string  `json:"content"`
	GuestName    string  `json:"guest_name"`
	GuestEmail   string  `json:"guest_email"`
	GuestWebsite string  `json:"guest_website"`
}

/*
POST /api/v1/comments.

Description: Submits a comment or a reply. Signed-in users are recorded by
id, anonymous visitors must give a guest name. The comment waits for
moderation before it appears in the thread.

Response:
  - 201: Comment
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var body createRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	comment := &Comment{
		ParentID: body.ParentID,
		Owner:    owner.Ref{Type: owner.Type(body.OwnerType), ID: body.OwnerID},
		Content:  body.Content,
		Author: Author{
			UserID:       requestutil.OptionalUserID(request),
			IPAddress:    middleware.RealIP(request),
			UserAgent:    request.Header.Get(constants.HeaderUserAgent),
			GuestName:    body.GuestName,
			GuestEmail:   body.GuestEmail,
			GuestWebsite: body.GuestWebsite,
		},
	}

	if err := handler.service.Create(request.Context(), comment); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, comment)
}

/*
GET /api/v1/comments/thread?owner_type=post&owner_id={id}.

Description: Returns the approved discussion of a post or page as nested
branches.
*/
func (handler *Handler) thread(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()
	ref := owner.Ref{Type: owner.Type(query.Get("owner_type")), ID: query.Get("owner_id")}
	if !uuid.Valid(ref.ID) {
		respond.Error(writer, request, apperr.ValidationError("Invalid owner",
			apperr.FieldError{Field: FieldOwnerID, Message: "Must be a valid UUID"}))
		return
	}

	branches, err := handler.service.Thread(request.Context(), ref)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, branches)
}

func (handler *Handler) like(writer http.ResponseWriter, request *http.Request) {
	handler.toggleLike(writer, request, true)
}

func (handler *Handler) unlike(writer http.ResponseWriter, request *http.Request) {
	handler.toggleLike(writer, request, false)
}

func (handler *Handler) toggleLike(writer http.ResponseWriter, request *http.Request, liked bool) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Like(request.Context(), id, liked); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Moderation Endpoints

/*
GET /api/v1/comments?status=pending&owner_type=post&owner_id={id}.

Description: Paginated moderation queue, newest first.
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	query := request.URL.Query()

	var filter Filter
	if status := query.Get("status"); status != "" {
		s := Status(status)
		filter.Status = &s
	}
	if ownerType, ownerID := query.Get("owner_type"), query.Get("owner_id"); ownerType != "" && uuid.Valid(ownerID) {
		filter.Owner = &owner.Ref{Type: owner.Type(ownerType), ID: ownerID}
	}

	comments, total, err := handler.service.List(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, comments, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	comment, err := handler.service.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, comment)
}

// moderate builds the approve, reject and spam endpoints.
func (handler *Handler) moderate(to Status) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		id, err := requestutil.ID(request, "id")
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		moderatorID, err := requestutil.RequiredUserID(request)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		comment, err := handler.service.Moderate(request.Context(), id, to, &moderatorID)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		respond.OK(writer, comment)
	}
}

/*
DELETE /api/v1/comments/{id}.

Description: Removes the comment and every reply beneath it.

Response:
  - 200: {"removed": []string}
*/
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
