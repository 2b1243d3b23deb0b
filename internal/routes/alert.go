package routes

import (
	"net/http"

	"Fluxo/internal/contracts"
	"Fluxo/internal/domain/alert"
	appErrors "Fluxo/internal/errors"
	"Fluxo/internal/pkg"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListAlerts(c *gin.Context) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var query contracts.AlertsQuery
	if !h.bindQuery(c, &query) {
		return
	}
	days := h.AlertService.LookaheadDays
	if query.Days != nil {
		days = *query.Days
	}

	items, err := h.AlertService.UpcomingDueItems(c.Request.Context(), userID, days)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contracts.AlertsResponse{Items: items, Total: len(items)})
}

func (h *Handler) MarkAlertPaid(c *gin.Context) {
	var body contracts.MarkPaidRequest
	if !h.bindJSON(c, &body) {
		return
	}

	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	sourceID, err := pkg.ParseULID(body.SourceId)
	if err != nil {
		h.respondError(c, appErrors.NewValidationError("source_id", "formato inválido"))
		return
	}

	if err := h.AlertService.MarkAsPaid(c.Request.Context(), userID, alert.SourceType(body.SourceType), sourceID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contracts.MessageResponse{Message: "Item marcado como pago"})
}
