package routes

import (
	"net/http"

	"Fluxo/internal/contracts"
	"Fluxo/internal/domain/recurring"
	"Fluxo/internal/domain/shared"
	appErrors "Fluxo/internal/errors"
	"Fluxo/internal/pkg"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateRecurring(c *gin.Context) {
	var body contracts.RecurringCreateRequest
	if !h.bindJSON(c, &body) {
		return
	}

	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	categoryID, err := pkg.ParseULID(body.CategoryId)
	if err != nil {
		h.respondError(c, appErrors.NewValidationError("category_id", "formato inválido"))
		return
	}

	item, err := h.RecurringService.Create(c.Request.Context(), &recurring.CreateRequest{
		UserId:      userID,
		Description: body.Description,
		Type:        shared.EntryType(body.Type),
		Context:     shared.Context(body.Context),
		CategoryId:  categoryID,
		Amount:      body.Amount,
		DueDay:      body.DueDay,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) ListRecurrings(c *gin.Context) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	pagination := h.parsePagination(c)
	items, total, err := h.RecurringService.List(c.Request.Context(), userID, pagination)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pkg.NewPaginatedResponse(items, pagination.Page, pagination.Limit, total))
}

func (h *Handler) GetRecurring(c *gin.Context) {
	userID, id, ok := h.userAndID(c)
	if !ok {
		return
	}

	item, err := h.RecurringService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) UpdateRecurring(c *gin.Context) {
	userID, id, ok := h.userAndID(c)
	if !ok {
		return
	}

	var body contracts.RecurringUpdateRequest
	if !h.bindJSON(c, &body) {
		return
	}

	categoryID, err := parseOptionalID("category_id", body.CategoryId)
	if err != nil {
		h.respondError(c, err)
		return
	}

	req := &recurring.UpdateRequest{
		Description: body.Description,
		Context:     optionalContext(body.Context),
		CategoryId:  categoryID,
		Amount:      body.Amount,
		DueDay:      body.DueDay,
	}
	if body.Type != nil {
		t := shared.EntryType(*body.Type)
		req.Type = &t
	}

	ctx := c.Request.Context()
	item, err := h.RecurringService.Update(ctx, id, userID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if body.IsActive != nil && *body.IsActive != item.IsActive {
		if *body.IsActive {
			item, err = h.RecurringService.Resume(ctx, id, userID)
		} else {
			item, err = h.RecurringService.Pause(ctx, id, userID)
		}
		if err != nil {
			h.respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) DeleteRecurring(c *gin.Context) {
	userID, id, ok := h.userAndID(c)
	if !ok {
		return
	}

	if err := h.RecurringService.Delete(c.Request.Context(), id, userID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contracts.MessageResponse{Message: "Lançamento fixo removido com sucesso"})
}

func (h *Handler) PauseRecurring(c *gin.Context) {
	userID, id, ok := h.userAndID(c)
	if !ok {
		return
	}

	item, err := h.RecurringService.Pause(c.Request.Context(), id, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) ResumeRecurring(c *gin.Context) {
	userID, id, ok := h.userAndID(c)
	if !ok {
		return
	}

	item, err := h.RecurringService.Resume(c.Request.Context(), id, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// MaterializeRecurring gera as transacoes do mes corrente. Repetir no mesmo
// mes devolve alreadyProcessed=true sem criar nada.
func (h *Handler) MaterializeRecurring(c *gin.Context) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	result, err := h.RecurringService.MaterializeMonthly(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	status := http.StatusCreated
	if result.AlreadyProcessed {
		status = http.StatusOK
	}
	c.JSON(status, result)
}
