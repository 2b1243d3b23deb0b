package routes

import (
	"net/http"

	"Fluxo/internal/contracts"
	"Fluxo/internal/domain/category"
	"Fluxo/internal/domain/shared"
	"Fluxo/internal/pkg"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateCategory(c *gin.Context) {
	var body contracts.CategoryCreateRequest
	if !h.bindJSON(c, &body) {
		return
	}

	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	entity := &category.Category{
		UserId: userID,
		Name:   body.Name,
		Type:   shared.EntryType(body.Type),
	}
	if err := h.CategoryService.Create(c.Request.Context(), entity); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entity)
}

// ListCategories devolve apenas as ativas, a menos que include_inactive=true.
func (h *Handler) ListCategories(c *gin.Context) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	includeInactive := c.Query("include_inactive") == "true"
	pagination := h.parsePagination(c)
	items, total, err := h.CategoryService.List(c.Request.Context(), userID, includeInactive, pagination)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pkg.NewPaginatedResponse(items, pagination.Page, pagination.Limit, total))
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	userID, id, ok := h.userAndID(c)
	if !ok {
		return
	}

	var body contracts.CategoryUpdateRequest
	if !h.bindJSON(c, &body) {
		return
	}

	ctx := c.Request.Context()
	var (
		entity *category.Category
		err    error
	)
	if body.Name != nil {
		if entity, err = h.CategoryService.Rename(ctx, id, userID, *body.Name); err != nil {
			h.respondError(c, err)
			return
		}
	}
	if body.IsActive != nil {
		if entity, err = h.CategoryService.SetActive(ctx, id, userID, *body.IsActive); err != nil {
			h.respondError(c, err)
			return
		}
	}
	if entity == nil {
		if entity, err = h.CategoryService.GetByID(ctx, id, userID); err != nil {
			h.respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, entity)
}
