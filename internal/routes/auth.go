package routes

import (
	"net/http"

	"Fluxo/internal/contracts"
	"Fluxo/internal/domain/auth"
	"Fluxo/internal/domain/shared"
	"Fluxo/internal/domain/user"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Registration(c *gin.Context) {
	var body contracts.RegisterRequest
	if !h.bindJSON(c, &body) {
		return
	}

	defaultContext, err := parseContext("default_context", body.DefaultContext, shared.Personal)
	if err != nil {
		h.respondError(c, err)
		return
	}

	entity := &user.User{
		Name:           body.Name,
		Email:          body.Email,
		Password:       body.Password,
		DefaultContext: defaultContext,
	}

	ctx := c.Request.Context()
	if err := h.AuthService.Register(ctx, entity); err != nil {
		h.respondError(c, err)
		return
	}

	h.respondWithToken(c, http.StatusCreated, entity)
}

func (h *Handler) Authenticate(c *gin.Context) {
	var body contracts.LoginRequest
	if !h.bindJSON(c, &body) {
		return
	}

	ctx := c.Request.Context()
	entity, err := h.AuthService.Login(ctx, auth.Login{Email: body.Email, Password: body.Password})
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.respondWithToken(c, http.StatusOK, entity)
}

func (h *Handler) respondWithToken(c *gin.Context, status int, entity *user.User) {
	token, expiresAt, err := h.JwtService.GenerateToken(entity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(status, contracts.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      entity,
	})
}
