package fx

import (
	"Fluxo/config"
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
	"Fluxo/internal/infrastructure"

	"go.uber.org/fx"
)

// DomainModule fornece todos os services do domínio
var DomainModule = fx.Module("domain",
	fx.Provide(
		newUserService,
		newUserCheckerService,
		newCategoryService,
		newAuthService,
		newTransactionService,
		newLabelDirectory,
		newCardService,
		newStagingService,
		newRecurringService,
		newDashboardService,
		newAlertService,
	),
)

func newUserService(repo *infrastructure.UserRepository) *user.Service {
	return user.NewService(repo)
}

func newUserCheckerService(userSvc *user.Service) *shared.UserCheckerService {
	return shared.NewUserCheckerService(userSvc)
}

func newCategoryService(repo *infrastructure.CategoryRepository, checker *shared.UserCheckerService) *category.Service {
	return category.NewService(repo, checker)
}

func newAuthService(userSvc *user.Service, categorySvc *category.Service, transactor shared.Transactor) *auth.Service {
	return auth.NewService(userSvc, categorySvc, transactor)
}

func newTransactionService(
	repo *infrastructure.TransactionRepository,
	categorySvc *category.Service,
	cardRepo *infrastructure.CardRepository,
	transactor shared.Transactor,
	checker *shared.UserCheckerService,
) *transaction.Service {
	return transaction.NewService(repo, categorySvc, cardRepo, transactor, checker)
}

func newLabelDirectory(cfg *config.Config, cardRepo *infrastructure.CardRepository) *card.LabelDirectory {
	return card.NewLabelDirectory(cardRepo, cfg.Cache.CardLabelTTL)
}

func newCardService(
	repo *infrastructure.CardRepository,
	directory *card.LabelDirectory,
	transactionSvc *transaction.Service,
	categorySvc *category.Service,
	transactor shared.Transactor,
	checker *shared.UserCheckerService,
) *card.Service {
	return card.NewService(repo, directory, transactionSvc, categorySvc, transactor, checker)
}

func newStagingService(
	cfg *config.Config,
	repo *infrastructure.StagingRepository,
	categorySvc *category.Service,
	cardSvc *card.Service,
	transactionSvc *transaction.Service,
	transactor shared.Transactor,
	checker *shared.UserCheckerService,
) *staging.Service {
	return staging.NewService(repo, categorySvc, cardSvc, transactionSvc, transactor, cfg.Staging.ApprovalWorkers, checker)
}

func newRecurringService(
	cfg *config.Config,
	repo *infrastructure.RecurringRepository,
	transactionSvc *transaction.Service,
	categorySvc *category.Service,
	checker *shared.UserCheckerService,
) *recurring.Service {
	return recurring.NewService(repo, transactionSvc, categorySvc, cfg.Recurring.Workers, checker)
}

func newDashboardService(repo *infrastructure.DashboardRepository) *dashboard.Service {
	return dashboard.NewService(repo)
}

func newAlertService(cfg *config.Config, transactionSvc *transaction.Service, cardSvc *card.Service) *alert.Service {
	return alert.NewService(transactionSvc, cardSvc, cfg.Alerts.LookaheadDays)
}
