package routes

import (
	"net/http"

	"Fluxo/internal/contracts"
	"Fluxo/internal/domain/shared"
	"Fluxo/internal/domain/transaction"
	appErrors "Fluxo/internal/errors"
	"Fluxo/internal/pkg"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateTransaction(c *gin.Context) {
	var body contracts.TransactionCreateRequest
	if !h.bindJSON(c, &body) {
		return
	}

	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
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

	ctx := c.Request.Context()
	entryContext, err := parseContext("context", body.Context, "")
	if err != nil {
		h.respondError(c, err)
		return
	}
	if entryContext == "" {
		owner, err := h.UserService.GetByID(ctx, userID)
		if err != nil {
			h.respondError(c, err)
			return
		}
		entryContext = owner.DefaultContext
	}

	req := &transaction.CreateRequest{
		UserId:      userID,
		Date:        date,
		Description: body.Description,
		Value:       body.Value,
		Context:     entryContext,
		CategoryId:  categoryID,
	}
	if body.Type != "" {
		t := shared.EntryType(body.Type)
		req.Type = &t
	}

	created, err := h.TransactionService.Create(ctx, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) ListTransactions(c *gin.Context) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var query contracts.TransactionListQuery
	if !h.bindQuery(c, &query) {
		return
	}

	filter, err := transactionFilter(query)
	if err != nil {
		h.respondError(c, err)
		return
	}

	pagination := h.parsePagination(c)
	items, total, err := h.TransactionService.List(c.Request.Context(), userID, filter, pagination)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pkg.NewPaginatedResponse(items, pagination.Page, pagination.Limit, total))
}

func (h *Handler) GetTransaction(c *gin.Context) {
	userID, id, ok := h.userAndID(c)
	if !ok {
		return
	}

	tx, err := h.TransactionService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

func (h *Handler) SettleTransaction(c *gin.Context) {
	userID, id, ok := h.userAndID(c)
	if !ok {
		return
	}

	tx, err := h.TransactionService.Settle(c.Request.Context(), userID, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

func (h *Handler) DeleteTransaction(c *gin.Context) {
	userID, id, ok := h.userAndID(c)
	if !ok {
		return
	}

	if err := h.TransactionService.Delete(c.Request.Context(), userID, id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contracts.MessageResponse{Message: "Transação removida com sucesso"})
}

func transactionFilter(q contracts.TransactionListQuery) (transaction.Filter, error) {
	var filter transaction.Filter

	from, err := parseOptionalDate("from", q.From)
	if err != nil {
		return filter, err
	}
	to, err := parseOptionalDate("to", q.To)
	if err != nil {
		return filter, err
	}
	filter.From = from
	filter.To = to

	categoryID, err := parseOptionalID("category_id", &q.CategoryId)
	if err != nil {
		return filter, err
	}
	filter.CategoryId = categoryID
	filter.Context = optionalContext(&q.Context)

	if q.Status != "" {
		status := transaction.Status(q.Status)
		filter.Status = &status
	}
	if q.Type != "" {
		t := shared.EntryType(q.Type)
		filter.Type = &t
	}
	return filter, nil
}
