package routes

import (
	"net/http"

	"Fluxo/internal/contracts"
	"Fluxo/internal/domain/shared"
	"Fluxo/internal/domain/staging"
	appErrors "Fluxo/internal/errors"
	"Fluxo/internal/pkg"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
)

// ImportStaging recebe as linhas do importador de extratos.
func (h *Handler) ImportStaging(c *gin.Context) {
	var body contracts.StagingImportRequest
	if !h.bindJSON(c, &body) {
		return
	}

	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	items := make([]staging.NewItem, 0, len(body.Items))
	for _, in := range body.Items {
		date, err := parseDate("date", in.Date)
		if err != nil {
			h.respondError(c, err)
			return
		}
		suggestedCategory, err := parseOptionalID("suggested_category_id", in.SuggestedCategoryId)
		if err != nil {
			h.respondError(c, err)
			return
		}
		items = append(items, staging.NewItem{
			RawPayload:          in.RawPayload,
			Date:                date,
			Description:         in.Description,
			Value:               in.Value,
			CardLabel:           in.CardLabel,
			SuggestedContext:    optionalContext(in.SuggestedContext),
			SuggestedCategoryId: suggestedCategory,
		})
	}

	created, err := h.StagingService.AddItems(c.Request.Context(), userID, items)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contracts.StagingImportResponse{Items: created, Total: len(created)})
}

func (h *Handler) ListStaging(c *gin.Context) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	pagination := h.parsePagination(c)
	items, total, err := h.StagingService.ListPending(c.Request.Context(), userID, pagination)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pkg.NewPaginatedResponse(items, pagination.Page, pagination.Limit, total))
}

func (h *Handler) GetStagingItem(c *gin.Context) {
	userID, id, ok := h.userAndID(c)
	if !ok {
		return
	}

	item, err := h.StagingService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// ApproveStaging processa o lote linha a linha. Falhas parciais voltam com
// 207 e a lista de linhas recusadas.
func (h *Handler) ApproveStaging(c *gin.Context) {
	var body contracts.StagingApproveRequest
	if !h.bindJSON(c, &body) {
		return
	}

	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	decisions := make([]staging.Decision, 0, len(body.Decisions))
	for _, d := range body.Decisions {
		itemID, err := pkg.ParseULID(d.StagingItemId)
		if err != nil {
			h.respondError(c, appErrors.NewValidationError("staging_item_id", "formato inválido"))
			return
		}
		categoryID, err := pkg.ParseULID(d.DecidedCategoryId)
		if err != nil {
			h.respondError(c, appErrors.NewValidationError("decided_category_id", "formato inválido"))
			return
		}
		decisions = append(decisions, staging.Decision{
			StagingItemId:     itemID,
			DecidedContext:    shared.Context(d.DecidedContext),
			DecidedCategoryId: categoryID,
		})
	}

	report, err := h.StagingService.Approve(c.Request.Context(), userID, decisions)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondReport(c, report)
}

func (h *Handler) IgnoreStaging(c *gin.Context) {
	var body contracts.StagingIgnoreRequest
	if !h.bindJSON(c, &body) {
		return
	}

	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	ids := make([]ulid.ULID, 0, len(body.Ids))
	for _, raw := range body.Ids {
		id, err := pkg.ParseULID(raw)
		if err != nil {
			h.respondError(c, appErrors.NewValidationError("ids", "formato inválido"))
			return
		}
		ids = append(ids, id)
	}

	ignored, err := h.StagingService.Ignore(c.Request.Context(), userID, ids)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contracts.StagingIgnoreResponse{Ignored: ignored})
}

// ReconcileStaging cria as transacoes que faltam para linhas ja aprovadas.
func (h *Handler) ReconcileStaging(c *gin.Context) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	report, err := h.StagingService.ReconcileApproved(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondReport(c, report)
}

func (h *Handler) respondReport(c *gin.Context, report *staging.ApprovalReport) {
	status := http.StatusOK
	if report.Partial() {
		status = http.StatusMultiStatus
	}
	c.JSON(status, report)
}
