package routes

import (
	"net/http"

	"Fluxo/internal/contracts"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetCurrentUser(c *gin.Context) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	entity, err := h.UserService.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity)
}

func (h *Handler) UpdateCurrentUser(c *gin.Context) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var body contracts.UserUpdateRequest
	if !h.bindJSON(c, &body) {
		return
	}

	entity, err := h.UserService.UpdateProfile(c.Request.Context(), userID, body.Name, optionalContext(body.DefaultContext))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity)
}

func (h *Handler) UpdateUserPassword(c *gin.Context) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var body contracts.PasswordUpdateRequest
	if !h.bindJSON(c, &body) {
		return
	}

	if err := h.UserService.UpdatePassword(c.Request.Context(), userID, body.CurrentPassword, body.NewPassword); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contracts.MessageResponse{Message: "Senha atualizada com sucesso"})
}
