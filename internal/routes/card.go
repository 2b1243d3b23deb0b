package routes

import (
	"context"
	"net/http"

	"Fluxo/internal/contracts"
	"Fluxo/internal/domain/card"
	"Fluxo/internal/domain/shared"
	appErrors "Fluxo/internal/errors"
	"Fluxo/internal/pkg"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
)

func (h *Handler) CreateCard(c *gin.Context) {
	var body contracts.CardCreateRequest
	if !h.bindJSON(c, &body) {
		return
	}

	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	mode := card.ContextMode(body.ContextMode)
	if mode == "" {
		mode = card.ContextMixed
	}

	created, err := h.CardService.CreateCard(c.Request.Context(), &card.CreateCardRequest{
		UserId:      userID,
		Label:       body.Label,
		ClosingDay:  body.ClosingDay,
		DueDay:      body.DueDay,
		ContextMode: mode,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) ListCards(c *gin.Context) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	pagination := h.parsePagination(c)
	items, total, err := h.CardService.ListCards(c.Request.Context(), userID, pagination)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pkg.NewPaginatedResponse(items, pagination.Page, pagination.Limit, total))
}

func (h *Handler) GetCard(c *gin.Context) {
	userID, id, ok := h.userAndID(c)
	if !ok {
		return
	}

	entity, err := h.CardService.GetCard(c.Request.Context(), id, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity)
}

func (h *Handler) UpdateCard(c *gin.Context) {
	userID, id, ok := h.userAndID(c)
	if !ok {
		return
	}

	var body contracts.CardUpdateRequest
	if !h.bindJSON(c, &body) {
		return
	}

	req := &card.UpdateCardRequest{
		Label:      body.Label,
		ClosingDay: body.ClosingDay,
		DueDay:     body.DueDay,
	}
	if body.ContextMode != nil {
		mode := card.ContextMode(*body.ContextMode)
		req.ContextMode = &mode
	}

	updated, err := h.CardService.UpdateCard(c.Request.Context(), id, userID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteCard(c *gin.Context) {
	userID, id, ok := h.userAndID(c)
	if !ok {
		return
	}

	if err := h.CardService.DeleteCard(c.Request.Context(), id, userID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contracts.MessageResponse{Message: "Cartão removido com sucesso"})
}

func (h *Handler) ListInvoices(c *gin.Context) {
	userID, id, ok := h.userAndID(c)
	if !ok {
		return
	}

	pagination := h.parsePagination(c)
	items, total, err := h.CardService.ListInvoices(c.Request.Context(), id, userID, pagination)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pkg.NewPaginatedResponse(items, pagination.Page, pagination.Limit, total))
}

func (h *Handler) CreateInstallmentPurchase(c *gin.Context) {
	userID, cardID, ok := h.userAndID(c)
	if !ok {
		return
	}

	var body contracts.InstallmentPurchaseRequest
	if !h.bindJSON(c, &body) {
		return
	}

	date, err := parseDate("date", body.Date)
	if err != nil {
		h.respondError(c, err)
		return
	}
	categoryID, err := pkg.ParseULID(body.CategoryId)
	if err != nil {
		h.respondError(c, appErrors.NewValidationError("category_id", "formato inválido"))
		return
	}

	purchase, err := h.CardService.CreateInstallmentPurchase(c.Request.Context(), &card.InstallmentPurchaseRequest{
		UserId:       userID,
		CardId:       cardID,
		Date:         date,
		Description:  body.Description,
		Total:        body.Total,
		Installments: body.Installments,
		Context:      shared.Context(body.Context),
		CategoryId:   categoryID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, purchase)
}

func (h *Handler) GetInvoice(c *gin.Context) {
	userID, id, ok := h.userAndID(c)
	if !ok {
		return
	}

	details, err := h.CardService.GetInvoiceDetails(c.Request.Context(), id, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *Handler) CloseInvoice(c *gin.Context) {
	h.transitionInvoice(c, h.CardService.CloseInvoice)
}

func (h *Handler) ReopenInvoice(c *gin.Context) {
	h.transitionInvoice(c, h.CardService.ReopenInvoice)
}

func (h *Handler) PayInvoice(c *gin.Context) {
	h.transitionInvoice(c, h.CardService.PayInvoice)
}

type invoiceTransition func(ctx context.Context, userID, invoiceID ulid.ULID) (*card.Invoice, error)

func (h *Handler) transitionInvoice(c *gin.Context, apply invoiceTransition) {
	userID, id, ok := h.userAndID(c)
	if !ok {
		return
	}

	invoice, err := apply(c.Request.Context(), userID, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}
