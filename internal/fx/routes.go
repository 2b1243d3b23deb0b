package fx

import (
	"time"

	"Fluxo/config"
	"Fluxo/internal/domain/alert"
	"Fluxo/internal/domain/auth"
	"Fluxo/internal/domain/card"
	"Fluxo/internal/domain/category"
	"Fluxo/internal/domain/dashboard"
	"Fluxo/internal/domain/recurring"
	"Fluxo/internal/domain/staging"
	"Fluxo/internal/domain/transaction"
	"Fluxo/internal/domain/user"
	"Fluxo/internal/middleware"
	"Fluxo/internal/routes"

	"go.uber.org/fx"
)

// RoutesModule fornece handlers e rate limiters
var RoutesModule = fx.Module("routes",
	fx.Provide(
		newHandler,
		fx.Annotate(newAuthRateLimiter, fx.ResultTags(`name:"authLimiter"`)),
		fx.Annotate(newUserRateLimiter, fx.ResultTags(`name:"userLimiter"`)),
	),
)

func newHandler(
	userSvc *user.Service,
	jwtSvc *middleware.JwtService,
	authSvc *auth.Service,
	transactionSvc *transaction.Service,
	categorySvc *category.Service,
	cardSvc *card.Service,
	stagingSvc *staging.Service,
	recurringSvc *recurring.Service,
	dashboardSvc *dashboard.Service,
	alertSvc *alert.Service,
) *routes.Handler {
	return &routes.Handler{
		UserService:        userSvc,
		AuthService:        authSvc,
		JwtService:         jwtSvc,
		TransactionService: transactionSvc,
		CategoryService:    categorySvc,
		CardService:        cardSvc,
		StagingService:     stagingSvc,
		RecurringService:   recurringSvc,
		DashboardService:   dashboardSvc,
		AlertService:       alertSvc,
	}
}

// Login e cadastro tem limite mais baixo que as rotas autenticadas.
func newAuthRateLimiter() *middleware.RateLimiter {
	return middleware.NewRateLimiter(20, time.Minute)
}

func newUserRateLimiter(cfg *config.Config) *middleware.RateLimiter {
	return middleware.NewRateLimiter(cfg.Server.RequestsPerMinute, time.Minute)
}
