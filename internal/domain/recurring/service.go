package recurring

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"Fluxo/internal/domain/shared"
	"Fluxo/internal/domain/transaction"
	appErrors "Fluxo/internal/errors"
	"Fluxo/internal/logger"
	"Fluxo/internal/pkg"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 4

type Service struct {
	Repository   Repository
	Transactions TransactionCreator
	Categories   CategoryChecker
	Workers      int
	Now          func() time.Time
	shared.BaseService
}

func NewService(
	repo Repository,
	transactions TransactionCreator,
	categories CategoryChecker,
	workers int,
	userChecker *shared.UserCheckerService,
) *Service {
	return &Service{
		Repository:   repo,
		Transactions: transactions,
		Categories:   categories,
		Workers:      workers,
		Now:          time.Now,
		BaseService: shared.BaseService{
			UserChecker: userChecker,
		},
	}
}

type CreateRequest struct {
	UserId      ulid.ULID
	Description string
	Type        shared.EntryType
	Context     shared.Context
	CategoryId  ulid.ULID
	Amount      decimal.Decimal
	DueDay      int
}

type UpdateRequest struct {
	Description *string
	Type        *shared.EntryType
	Context     *shared.Context
	CategoryId  *ulid.ULID
	Amount      *decimal.Decimal
	DueDay      *int
}

func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Item, error) {
	if err := s.EnsureUserExists(ctx, req.UserId); err != nil {
		return nil, err
	}

	now := s.now()
	item := &Item{
		Id:          pkg.NewID(),
		UserId:      req.UserId,
		Description: strings.TrimSpace(req.Description),
		Type:        req.Type,
		Context:     req.Context,
		CategoryId:  req.CategoryId,
		Amount:      req.Amount,
		DueDay:      req.DueDay,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.validate(ctx, item); err != nil {
		return nil, err
	}

	if err := s.Repository.Create(ctx, item); err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return item, nil
}

func (s *Service) Update(ctx context.Context, itemID, userID ulid.ULID, req *UpdateRequest) (*Item, error) {
	item, err := s.GetByID(ctx, itemID, userID)
	if err != nil {
		return nil, err
	}

	if req.Description != nil {
		item.Description = strings.TrimSpace(*req.Description)
	}
	if req.Type != nil {
		item.Type = *req.Type
	}
	if req.Context != nil {
		item.Context = *req.Context
	}
	if req.CategoryId != nil {
		item.CategoryId = *req.CategoryId
	}
	if req.Amount != nil {
		item.Amount = *req.Amount
	}
	if req.DueDay != nil {
		item.DueDay = *req.DueDay
	}
	if err := s.validate(ctx, item); err != nil {
		return nil, err
	}

	item.UpdatedAt = s.now()
	if err := s.Repository.Update(ctx, item); err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return item, nil
}

// Pause tira o item da geracao mensal sem apagar o historico.
func (s *Service) Pause(ctx context.Context, itemID, userID ulid.ULID) (*Item, error) {
	return s.setActive(ctx, itemID, userID, false)
}

func (s *Service) Resume(ctx context.Context, itemID, userID ulid.ULID) (*Item, error) {
	return s.setActive(ctx, itemID, userID, true)
}

func (s *Service) Delete(ctx context.Context, itemID, userID ulid.ULID) error {
	if _, err := s.GetByID(ctx, itemID, userID); err != nil {
		return err
	}
	if err := s.Repository.Delete(ctx, itemID, userID); err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

func (s *Service) GetByID(ctx context.Context, itemID, userID ulid.ULID) (*Item, error) {
	item, err := s.Repository.GetByID(ctx, itemID, userID)
	if err != nil {
		if appErrors.HasCode(err, appErrors.ErrRecurringNotFound.Code) {
			return nil, err
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	if item.UserId != userID {
		return nil, appErrors.ErrRecurringNotFound
	}
	return item, nil
}

func (s *Service) List(ctx context.Context, userID ulid.ULID, pagination *pkg.PaginationParams) ([]*Item, int64, error) {
	if err := s.EnsureUserExists(ctx, userID); err != nil {
		return nil, 0, err
	}
	return s.Repository.ListByUser(ctx, userID, pagination)
}

// MaterializeMonthly gera, uma vez por mes, uma transacao pendente para cada
// lancamento fixo ativo do usuario. Se o mes ja foi processado devolve
// AlreadyProcessed sem erro. Qualquer falha de insercao impede a gravacao do
// marcador; uma nova execucao nao duplica o que ja foi inserido.
func (s *Service) MaterializeMonthly(ctx context.Context, userID ulid.ULID) (*MaterializationResult, error) {
	if err := s.EnsureUserExists(ctx, userID); err != nil {
		return nil, err
	}

	now := s.now()
	period := pkg.MonthKey(now)
	result := &MaterializationResult{Period: period}

	done, err := s.Repository.HasRun(ctx, userID, period)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	if done {
		result.AlreadyProcessed = true
		logger.Debug().
			Str("user_id", userID.String()).
			Str("period", period).
			Msg("Lancamentos fixos ja gerados na competencia")
		return result, nil
	}

	items, err := s.Repository.ListActive(ctx, userID)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}

	var created, skipped int64
	g := new(errgroup.Group)
	g.SetLimit(s.workers())
	for _, item := range items {
		tx := buildTransaction(item, now, period)
		g.Go(func() error {
			inserted, err := s.Transactions.CreateIfAbsent(ctx, tx)
			if err != nil {
				return err
			}
			if inserted {
				atomic.AddInt64(&created, 1)
			} else {
				atomic.AddInt64(&skipped, 1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error().
			Err(err).
			Str("user_id", userID.String()).
			Str("period", period).
			Msg("Falha ao gerar lancamentos fixos")
		return nil, appErrors.ErrInsertFailed.WithError(err).
			WithDetails(map[string]interface{}{"period": period})
	}

	result.Created = int(created)
	result.Skipped = int(skipped)

	if err := s.Repository.MarkRun(ctx, &Run{
		UserId:    userID,
		Period:    period,
		Created:   result.Created,
		CreatedAt: now,
	}); err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}

	logger.Info().
		Str("user_id", userID.String()).
		Str("period", period).
		Int("created", result.Created).
		Int("skipped", result.Skipped).
		Msg("Lancamentos fixos gerados")
	return result, nil
}

// MaterializeAll processa todos os usuarios com lancamentos fixos ativos.
// Falhas de um usuario nao interrompem os demais.
func (s *Service) MaterializeAll(ctx context.Context) (int, error) {
	users, err := s.Repository.ListUsersWithActiveItems(ctx)
	if err != nil {
		return 0, appErrors.NewDatabaseError(err)
	}

	processed := 0
	for _, userID := range users {
		if err := ctx.Err(); err != nil {
			return processed, err
		}
		if _, err := s.MaterializeMonthly(ctx, userID); err != nil {
			logger.Error().Err(err).Str("user_id", userID.String()).Msg("Falha ao processar lancamentos fixos do usuario")
			continue
		}
		processed++
	}
	return processed, nil
}

func (s *Service) setActive(ctx context.Context, itemID, userID ulid.ULID, active bool) (*Item, error) {
	item, err := s.GetByID(ctx, itemID, userID)
	if err != nil {
		return nil, err
	}
	if item.IsActive == active {
		return item, nil
	}

	item.IsActive = active
	item.UpdatedAt = s.now()
	if err := s.Repository.Update(ctx, item); err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return item, nil
}

func (s *Service) validate(ctx context.Context, item *Item) error {
	if item.Description == "" {
		return appErrors.NewValidationError("description", "é obrigatório")
	}
	if !item.Amount.IsPositive() {
		return appErrors.NewValidationError("amount", "deve ser maior que zero")
	}
	if !item.Type.IsValid() {
		return appErrors.NewValidationError("type", "tipo invalido")
	}
	if !item.Context.IsValid() {
		return appErrors.NewValidationError("context", "contexto invalido")
	}
	if item.DueDay < 1 || item.DueDay > 31 {
		return appErrors.NewValidationError("due_day", "deve estar entre 1 e 31")
	}
	if _, err := s.Categories.EnsureUsable(ctx, item.UserId, item.CategoryId); err != nil {
		return err
	}
	return nil
}

func (s *Service) workers() int {
	if s.Workers < 1 {
		return defaultWorkers
	}
	return s.Workers
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func buildTransaction(item *Item, now time.Time, period string) *transaction.Transaction {
	itemID := item.Id
	p := period
	return &transaction.Transaction{
		UserId:          item.UserId,
		Date:            pkg.DateInMonth(now.Year(), now.Month(), item.DueDay, now.Location()),
		Description:     descriptionPrefix + item.Description,
		Value:           shared.SignedValue(item.Type, item.Amount),
		Type:            item.Type,
		Context:         item.Context,
		CategoryId:      item.CategoryId,
		Status:          transaction.StatusPending,
		RecurringItemId: &itemID,
		RecurringPeriod: &p,
	}
}
