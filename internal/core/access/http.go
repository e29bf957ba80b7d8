// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package access

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yomira-cms/internal/platform/middleware"
	requestutil "github.com/taibuivan/yomira-cms/internal/platform/request"
	"github.com/taibuivan/yomira-cms/internal/platform/respond"
)

// Handler serves the role and permission endpoints.
type Handler struct {
	service *Service
	guard   middleware.Guard
}

// NewHandler constructs a new access [Handler].
func NewHandler(service *Service, guard middleware.Guard) *Handler {
	return &Handler{service: service, guard: guard}
}

// Routes returns a [chi.Router] configured with the access endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.With(middleware.RequireAuth).Get("/me", handler.me)

	router.Group(func(admin chi.Router) {
		admin.Use(handler.guard(PermAccessManage))

		admin.Get("/roles", handler.listRoles)
		admin.Post("/roles", handler.createRole)
		admin.Post("/roles/{role}/permissions", handler.giveRolePermission)
		admin.Delete("/roles/{role}/permissions/{permission}", handler.revokeRolePermission)

		admin.Get("/permissions", handler.listPermissions)
		admin.Post("/permissions", handler.createPermission)

		admin.Get("/users/{id}", handler.user)
		admin.Post("/users/{id}/permissions", handler.grantPermission)
		admin.Delete("/users/{id}/permissions/{permission}", handler.revokePermission)
		admin.Post("/users/{id}/roles", handler.assignRole)
		admin.Delete("/users/{id}/roles/{role}", handler.revokeRole)
	})

	return router
}

// permissionsResponse is the body returned by the effective permission endpoints.
type permissionsResponse struct {
	UserID      string   `json:"user_id"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

func newPermissionsResponse(userID string, user *User) permissionsResponse {
	return permissionsResponse{
		UserID:      userID,
		Roles:       user.RoleNames(),
		Permissions: user.EffectivePermissions(),
	}
}

/*
GET /api/v1/access/me.

Description: Lists the caller's roles and effective permissions.

Response:
  - 200: permissionsResponse
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.Viewer(request.Context(), &userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, newPermissionsResponse(userID, user))
}

// GET /api/v1/access/users/{id}.
func (handler *Handler) user(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.Resolve(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, newPermissionsResponse(userID, user))
}

// # Catalogue

func (handler *Handler) listRoles(writer http.ResponseWriter, request *http.Request) {
	roles, err := handler.service.ListRoles(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, roles)
}

func (handler *Handler) listPermissions(writer http.ResponseWriter, request *http.Request) {
	permissions, err := handler.service.ListPermissions(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, permissions)
}

type createRoleRequest struct {
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	Description *string `json:"description"`
}

/*
POST /api/v1/access/roles.

Response:
  - 201: Role
*/
func (handler *Handler) createRole(writer http.ResponseWriter, request *http.Request) {
	var body createRoleRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	role := &Role{Name: body.Name, DisplayName: body.DisplayName, Description: body.Description}
	if err := handler.service.CreateRole(request.Context(), role); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, role)
}

type createPermissionRequest struct {
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	Description *string `json:"description"`
	Category    string  `json:"category"`
}

func (handler *Handler) createPermission(writer http.ResponseWriter, request *http.Request) {
	var body createPermissionRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	permission := &Permission{
		Name:        body.Name,
		DisplayName: body.DisplayName,
		Description: body.Description,
		Category:    body.Category,
	}
	if err := handler.service.CreatePermission(request.Context(), permission); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, permission)
}

// # Grants

// grantRequest names the role or permission being granted.
type grantRequest struct {
	Permission string `json:"permission"`
	Role       string `json:"role"`
}

func (handler *Handler) giveRolePermission(writer http.ResponseWriter, request *http.Request) {
	var body grantRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	role := requestutil.Param(request, "role")
	if err := handler.service.GiveRolePermission(request.Context(), role, body.Permission); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) revokeRolePermission(writer http.ResponseWriter, request *http.Request) {
	role := requestutil.Param(request, "role")
	permission := requestutil.Param(request, "permission")

	if err := handler.service.RevokeRolePermission(request.Context(), role, permission); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

/*
POST /api/v1/access/users/{id}/permissions.

Request: {"permission": "posts.publish"}

Response:
  - 204: Granted (idempotent)
  - 404: Unknown permission
*/
func (handler *Handler) grantPermission(writer http.ResponseWriter, request *http.Request) {
	handler.userGrant(writer, request, func(userID string, body grantRequest) error {
		return handler.service.GrantPermission(request.Context(), userID, body.Permission)
	})
}

func (handler *Handler) assignRole(writer http.ResponseWriter, request *http.Request) {
	handler.userGrant(writer, request, func(userID string, body grantRequest) error {
		return handler.service.AssignRole(request.Context(), userID, body.Role)
	})
}

func (handler *Handler) revokePermission(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.RevokePermission(request.Context(), userID, requestutil.Param(request, "permission")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) revokeRole(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.RevokeRole(request.Context(), userID, requestutil.Param(request, "role")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) userGrant(writer http.ResponseWriter, request *http.Request, apply func(userID string, body grantRequest) error) {
	userID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body grantRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := apply(userID, body); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
