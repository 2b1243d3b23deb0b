package routes

import (
	"net/http"
	"time"

	"Fluxo/internal/contracts"
	"Fluxo/internal/domain/dashboard"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetBalance(c *gin.Context) {
	q, ok := h.balanceQuery(c)
	if !ok {
		return
	}

	balance, err := h.DashboardService.GetMonthlyBalance(c.Request.Context(), q)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, balance)
}

func (h *Handler) GetExpensesByCategory(c *gin.Context) {
	q, ok := h.balanceQuery(c)
	if !ok {
		return
	}

	expenses, err := h.DashboardService.GetExpensesByCategory(c.Request.Context(), q)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, expenses)
}

// balanceQuery le from e to como datas inclusivas; o servico trabalha com [From, To).
func (h *Handler) balanceQuery(c *gin.Context) (dashboard.BalanceQuery, bool) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return dashboard.BalanceQuery{}, false
	}

	var query contracts.BalanceQuery
	if !h.bindQuery(c, &query) {
		return dashboard.BalanceQuery{}, false
	}

	q := dashboard.BalanceQuery{UserId: userID, Context: optionalContext(&query.Context)}
	from, err := parseOptionalDate("from", query.From)
	if err != nil {
		h.respondError(c, err)
		return dashboard.BalanceQuery{}, false
	}
	to, err := parseOptionalDate("to", query.To)
	if err != nil {
		h.respondError(c, err)
		return dashboard.BalanceQuery{}, false
	}
	if from != nil {
		q.From = *from
	}
	if to != nil {
		q.To = to.Add(24 * time.Hour)
	}
	return q, true
}
