package routes

import (
	"time"

	"Fluxo/internal/domain/alert"
	"Fluxo/internal/domain/auth"
	"Fluxo/internal/domain/card"
	"Fluxo/internal/domain/category"
	"Fluxo/internal/domain/dashboard"
	"Fluxo/internal/domain/recurring"
	"Fluxo/internal/domain/shared"
	"Fluxo/internal/domain/staging"
	"Fluxo/internal/domain/transaction"
	"Fluxo/internal/domain/user"
	appErrors "Fluxo/internal/errors"
	"Fluxo/internal/logger"
	"Fluxo/internal/middleware"
	"Fluxo/internal/pkg"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
)

const dateLayout = "2006-01-02"

type Handler struct {
	UserService        *user.Service
	AuthService        *auth.Service
	JwtService         *middleware.JwtService
	TransactionService *transaction.Service
	CategoryService    *category.Service
	CardService        *card.Service
	StagingService     *staging.Service
	RecurringService   *recurring.Service
	DashboardService   *dashboard.Service
	AlertService       *alert.Service
}

func (h *Handler) GetUserIDFromContext(c *gin.Context) (ulid.ULID, error) {
	userIDStr, exists := c.Get(middleware.UserIDKey)
	if !exists {
		return ulid.ULID{}, appErrors.ErrUnauthorized
	}

	raw, ok := userIDStr.(string)
	if !ok {
		return ulid.ULID{}, appErrors.ErrUnauthorized
	}
	userID, err := pkg.ParseULID(raw)
	if err != nil {
		return ulid.ULID{}, appErrors.ErrUnauthorized.WithError(err)
	}

	return userID, nil
}

func (h *Handler) parsePagination(c *gin.Context) *pkg.PaginationParams {
	page := c.DefaultQuery("page", "1")
	limit := c.DefaultQuery("limit", "10")

	var pageNum, limitNum int
	if p, err := pkg.ParseInt(page); err == nil && p > 0 {
		pageNum = p
	} else {
		pageNum = 1
	}

	if l, err := pkg.ParseInt(limit); err == nil && l > 0 {
		limitNum = l
	} else {
		limitNum = 10
	}

	return pkg.NormalizePagination(&pkg.PaginationParams{
		Page:  pageNum,
		Limit: limitNum,
	})
}

// bindJSON responde 400 com os campos invalidos e devolve false quando o corpo nao passa.
func (h *Handler) bindJSON(c *gin.Context, body interface{}) bool {
	if err := c.ShouldBindJSON(body); err != nil {
		h.respondError(c, appErrors.ParseValidationErrors(err))
		return false
	}
	return true
}

func (h *Handler) bindQuery(c *gin.Context, query interface{}) bool {
	if err := c.ShouldBindQuery(query); err != nil {
		h.respondError(c, appErrors.ParseValidationErrors(err))
		return false
	}
	return true
}

// idParam le um ULID da rota; em erro ja respondeu.
func (h *Handler) idParam(c *gin.Context, name string) (ulid.ULID, bool) {
	id, err := pkg.ParseULID(c.Param(name))
	if err != nil {
		h.respondError(c, appErrors.NewValidationError(name, "formato inválido"))
		return ulid.ULID{}, false
	}
	return id, true
}

// userAndID junta o usuario autenticado e o :id da rota.
func (h *Handler) userAndID(c *gin.Context) (ulid.ULID, ulid.ULID, bool) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return ulid.ULID{}, ulid.ULID{}, false
	}
	id, ok := h.idParam(c, "id")
	if !ok {
		return ulid.ULID{}, ulid.ULID{}, false
	}
	return userID, id, true
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, appErrors.NewValidationError(field, "data deve estar no formato AAAA-MM-DD")
	}
	return t, nil
}

func parseOptionalDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := parseDate(field, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseOptionalID(field string, value *string) (*ulid.ULID, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	id, err := pkg.ParseULID(*value)
	if err != nil {
		return nil, appErrors.NewValidationError(field, "formato inválido")
	}
	return &id, nil
}

func parseContext(field, value string, fallback shared.Context) (shared.Context, error) {
	if value == "" {
		return fallback, nil
	}
	ctx := shared.Context(value)
	if !ctx.IsValid() {
		return "", appErrors.NewValidationError(field, "contexto invalido")
	}
	return ctx, nil
}

func optionalContext(value *string) *shared.Context {
	if value == nil || *value == "" {
		return nil
	}
	ctx := shared.Context(*value)
	return &ctx
}

func (h *Handler) respondError(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	event := logger.FromContext(c.Request.Context()).Error()
	if appErr.StatusCode < 500 {
		event = logger.FromContext(c.Request.Context()).Warn()
	}
	event = event.Str("code", appErr.Code).Str("path", c.FullPath())
	if appErr.Err != nil {
		event = event.Err(appErr.Err)
	}
	event.Msg("request_error")
	payload := gin.H{
		"error":   appErr.Code,
		"message": appErr.Message,
	}
	if len(appErr.Details) > 0 {
		payload["details"] = appErr.Details
	}
	c.JSON(appErr.StatusCode, payload)
}
