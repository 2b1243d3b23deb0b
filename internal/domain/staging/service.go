package staging

import (
	"context"
	"encoding/json"
	"time"

	"Fluxo/internal/domain/card"
	"Fluxo/internal/domain/category"
	"Fluxo/internal/domain/shared"
	"Fluxo/internal/domain/transaction"
	appErrors "Fluxo/internal/errors"
	"Fluxo/internal/logger"
	"Fluxo/internal/pkg"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 4

type CategoryChecker interface {
	EnsureUsable(ctx context.Context, userID, categoryID ulid.ULID) (*category.Category, error)
}

// CardResolver resolve apelidos de cartao e vincula transacoes as faturas.
type CardResolver interface {
	LookupByLabel(ctx context.Context, userID ulid.ULID, label string) (*card.Card, error)
	AttachTransaction(ctx context.Context, c *card.Card, tx *transaction.Transaction, installment card.Installment) (*card.Invoice, *card.InvoiceItem, error)
}

type TransactionRecorder interface {
	Record(ctx context.Context, tx *transaction.Transaction) error
}

type Service struct {
	Repository   Repository
	Categories   CategoryChecker
	Cards        CardResolver
	Transactions TransactionRecorder
	Transactor   shared.Transactor
	Workers      int
	Now          func() time.Time
	shared.BaseService
}

func NewService(
	repo Repository,
	categories CategoryChecker,
	cards CardResolver,
	transactions TransactionRecorder,
	transactor shared.Transactor,
	workers int,
	userChecker *shared.UserCheckerService,
) *Service {
	return &Service{
		Repository:   repo,
		Categories:   categories,
		Cards:        cards,
		Transactions: transactions,
		Transactor:   transactor,
		Workers:      workers,
		Now:          time.Now,
		BaseService: shared.BaseService{
			UserChecker: userChecker,
		},
	}
}

// AddItems grava linhas vindas do importador de extratos como PENDING.
func (s *Service) AddItems(ctx context.Context, userID ulid.ULID, items []NewItem) ([]*Item, error) {
	if len(items) == 0 {
		return nil, appErrors.NewValidationError("items", "lista vazia")
	}
	if err := s.EnsureUserExists(ctx, userID); err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]*Item, 0, len(items))
	for i, in := range items {
		description := pkg.SanitizeText(in.Description)
		if description == "" {
			return nil, appErrors.NewValidationError("description", "é obrigatório").
				WithDetails(map[string]interface{}{"row": i})
		}
		if in.Date.IsZero() {
			return nil, appErrors.NewValidationError("date", "é obrigatório").
				WithDetails(map[string]interface{}{"row": i})
		}
		if in.SuggestedContext != nil && !in.SuggestedContext.IsValid() {
			return nil, appErrors.NewValidationError("suggested_context", "contexto invalido").
				WithDetails(map[string]interface{}{"row": i})
		}

		raw := in.RawPayload
		if raw == "" {
			encoded, err := json.Marshal(in)
			if err != nil {
				return nil, appErrors.ErrBadRequest.WithError(err)
			}
			raw = string(encoded)
		}

		var label *string
		if in.CardLabel != nil {
			if cleaned := pkg.SanitizeText(*in.CardLabel); cleaned != "" {
				label = &cleaned
			}
		}

		out = append(out, &Item{
			Id:                  pkg.NewID(),
			UserId:              userID,
			RawPayload:          raw,
			Date:                pkg.TruncateDay(in.Date),
			Description:         description,
			Value:               in.Value,
			CardLabel:           label,
			SuggestedContext:    in.SuggestedContext,
			SuggestedCategoryId: in.SuggestedCategoryId,
			Status:              StatusPending,
			CreatedAt:           now,
			UpdatedAt:           now,
		})
	}

	if err := s.Repository.CreateBatch(ctx, out); err != nil {
		return nil, appErrors.ErrInsertFailed.WithError(err)
	}
	return out, nil
}

func (s *Service) ListPending(ctx context.Context, userID ulid.ULID, pagination *pkg.PaginationParams) ([]*Item, int64, error) {
	if err := s.EnsureUserExists(ctx, userID); err != nil {
		return nil, 0, err
	}
	return s.Repository.ListByStatus(ctx, userID, StatusPending, pagination)
}

func (s *Service) GetByID(ctx context.Context, id, userID ulid.ULID) (*Item, error) {
	item, err := s.Repository.GetByID(ctx, id, userID)
	if err != nil {
		if appErrors.HasCode(err, appErrors.ErrStagingItemNotFound.Code) {
			return nil, err
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	if item.UserId != userID {
		return nil, appErrors.ErrStagingItemNotFound
	}
	return item, nil
}

// Approve transforma as linhas decididas em transacoes. O lote inteiro e
// validado antes de qualquer escrita; depois cada linha e aprovada e
// materializada numa transacao de banco propria, em paralelo. Uma linha que
// falha continua PENDING e aparece em Failures.
func (s *Service) Approve(ctx context.Context, userID ulid.ULID, decisions []Decision) (*ApprovalReport, error) {
	if err := s.validateBatch(ctx, userID, decisions); err != nil {
		return nil, err
	}

	outcomes := make([]rowOutcome, len(decisions))
	g := new(errgroup.Group)
	g.SetLimit(s.workers())
	for i, d := range decisions {
		i, d := i, d
		g.Go(func() error {
			result, err := s.approveRow(ctx, userID, d)
			outcomes[i] = rowOutcome{id: d.StagingItemId, result: result, err: err}
			return nil
		})
	}
	_ = g.Wait()

	report := buildReport(outcomes)
	logger.Info().
		Str("user_id", userID.String()).
		Int("approved", len(report.Results)).
		Int("failed", len(report.Failures)).
		Msg("Lote de importacao aprovado")
	return report, nil
}

// Ignore descarta linhas pendentes do usuario. Linhas ja decididas sao mantidas.
func (s *Service) Ignore(ctx context.Context, userID ulid.ULID, ids []ulid.ULID) (int64, error) {
	if len(ids) == 0 {
		return 0, appErrors.NewValidationError("ids", "lista vazia")
	}
	if err := s.EnsureUserExists(ctx, userID); err != nil {
		return 0, err
	}

	count, err := s.Repository.MarkIgnored(ctx, userID, ids, s.now())
	if err != nil {
		return 0, appErrors.ErrUpdateFailed.WithError(err)
	}
	return count, nil
}

// ReconcileApproved materializa linhas APPROVED que ficaram sem transacao.
func (s *Service) ReconcileApproved(ctx context.Context, userID ulid.ULID) (*ApprovalReport, error) {
	orphans, err := s.Repository.ListApprovedWithoutTransaction(ctx, userID)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	if len(orphans) == 0 {
		return &ApprovalReport{Results: []*CreationResult{}, Failures: []*RowFailure{}}, nil
	}

	outcomes := make([]rowOutcome, len(orphans))
	g := new(errgroup.Group)
	g.SetLimit(s.workers())
	for i, item := range orphans {
		i, item := i, item
		g.Go(func() error {
			var result *CreationResult
			err := s.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
				var err error
				result, err = s.materialize(ctx, item)
				return err
			})
			outcomes[i] = rowOutcome{id: item.Id, result: result, err: err}
			return nil
		})
	}
	_ = g.Wait()

	// linhas vinculadas por outra execucao depois da listagem nao sao falhas
	kept := outcomes[:0]
	for _, o := range outcomes {
		if appErrors.HasCode(o.err, appErrors.ErrAlreadyProcessed.Code) {
			continue
		}
		kept = append(kept, o)
	}

	report := buildReport(kept)
	logger.Info().
		Str("user_id", userID.String()).
		Int("repaired", len(report.Results)).
		Int("failed", len(report.Failures)).
		Msg("Reconciliacao de importacao concluida")
	return report, nil
}

// ReconcileAll percorre todos os usuarios com linhas orfas.
func (s *Service) ReconcileAll(ctx context.Context) (int, error) {
	users, err := s.Repository.ListUsersWithOrphans(ctx)
	if err != nil {
		return 0, appErrors.NewDatabaseError(err)
	}

	repaired := 0
	for _, userID := range users {
		report, err := s.ReconcileApproved(ctx, userID)
		if err != nil {
			logger.Error().Err(err).Str("user_id", userID.String()).Msg("Falha ao reconciliar importacao")
			continue
		}
		repaired += len(report.Results)
	}
	return repaired, nil
}

func (s *Service) validateBatch(ctx context.Context, userID ulid.ULID, decisions []Decision) error {
	if len(decisions) == 0 {
		return appErrors.NewValidationError("decisions", "lista vazia")
	}

	ids := make([]ulid.ULID, 0, len(decisions))
	seen := make(map[ulid.ULID]struct{}, len(decisions))
	categories := make(map[ulid.ULID]struct{})
	for i, d := range decisions {
		if (d.StagingItemId == ulid.ULID{}) {
			return appErrors.NewValidationError("staging_item_id", "é obrigatório").
				WithDetails(map[string]interface{}{"row": i})
		}
		if !d.DecidedContext.IsValid() {
			return appErrors.NewValidationError("decided_context", "contexto invalido").
				WithDetails(map[string]interface{}{"row": i, "staging_item_id": d.StagingItemId.String()})
		}
		if (d.DecidedCategoryId == ulid.ULID{}) {
			return appErrors.NewValidationError("decided_category_id", "é obrigatório").
				WithDetails(map[string]interface{}{"row": i, "staging_item_id": d.StagingItemId.String()})
		}
		if _, dup := seen[d.StagingItemId]; dup {
			return appErrors.NewValidationError("staging_item_id", "item repetido no lote").
				WithDetails(map[string]interface{}{"staging_item_id": d.StagingItemId.String()})
		}
		seen[d.StagingItemId] = struct{}{}
		categories[d.DecidedCategoryId] = struct{}{}
		ids = append(ids, d.StagingItemId)
	}

	if err := s.EnsureUserExists(ctx, userID); err != nil {
		return err
	}

	items, err := s.Repository.GetByIDs(ctx, userID, ids)
	if err != nil {
		return appErrors.NewDatabaseError(err)
	}
	found := make(map[ulid.ULID]*Item, len(items))
	for _, item := range items {
		found[item.Id] = item
	}
	for _, id := range ids {
		item, ok := found[id]
		if !ok {
			return appErrors.ErrStagingItemNotFound.
				WithDetails(map[string]interface{}{"staging_item_id": id.String()})
		}
		if item.Status != StatusPending {
			return appErrors.ErrStagingAlreadyDecided.
				WithDetails(map[string]interface{}{"staging_item_id": id.String(), "status": string(item.Status)})
		}
	}

	if err := s.checkCardContexts(ctx, userID, decisions, found); err != nil {
		return err
	}

	for categoryID := range categories {
		if _, err := s.Categories.EnsureUsable(ctx, userID, categoryID); err != nil {
			return err
		}
	}
	return nil
}

// checkCardContexts recusa decisoes cujo contexto o cartao da linha nao aceita.
// Apelidos sem cartao passam; a linha vira transacao sem fatura.
func (s *Service) checkCardContexts(ctx context.Context, userID ulid.ULID, decisions []Decision, found map[ulid.ULID]*Item) error {
	cards := make(map[string]*card.Card)
	for _, d := range decisions {
		item := found[d.StagingItemId]
		if !item.HasCardLabel() {
			continue
		}
		key := shared.NormalizeLabel(*item.CardLabel)
		target, cached := cards[key]
		if !cached {
			c, err := s.Cards.LookupByLabel(ctx, userID, *item.CardLabel)
			if err != nil && !appErrors.HasCode(err, appErrors.ErrCardNotFound.Code) {
				return err
			}
			cards[key] = c
			target = c
		}
		if target == nil {
			continue
		}
		if err := target.CheckContext(d.DecidedContext); err != nil {
			return appErrors.FromError(err).
				WithDetails(map[string]interface{}{"staging_item_id": d.StagingItemId.String()})
		}
	}
	return nil
}

func (s *Service) approveRow(ctx context.Context, userID ulid.ULID, d Decision) (*CreationResult, error) {
	var result *CreationResult
	err := s.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		updated, err := s.Repository.MarkApproved(ctx, userID, d, s.now())
		if err != nil {
			return appErrors.ErrUpdateFailed.WithError(err)
		}
		if !updated {
			return appErrors.ErrUpdateFailed.
				WithDetails(map[string]interface{}{"staging_item_id": d.StagingItemId.String()})
		}

		item, err := s.GetByID(ctx, d.StagingItemId, userID)
		if err != nil {
			return err
		}

		result, err = s.materialize(ctx, item)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// materialize cria a transacao de uma linha aprovada e, quando a linha
// tem apelido de cartao conhecido, o item de fatura correspondente.
func (s *Service) materialize(ctx context.Context, item *Item) (*CreationResult, error) {
	decidedContext, categoryID, err := decidedFields(item)
	if err != nil {
		return nil, err
	}

	stagingID := item.Id
	tx := &transaction.Transaction{
		Id:            pkg.NewID(),
		UserId:        item.UserId,
		Date:          item.Date,
		Description:   item.Description,
		Value:         item.Value,
		Type:          shared.TypeFromValue(item.Value),
		Context:       decidedContext,
		CategoryId:    categoryID,
		Status:        transaction.StatusPending,
		StagingItemId: &stagingID,
	}
	result := &CreationResult{StagingItemId: item.Id}

	// a linha e reservada antes de qualquer escrita; quem perde a corrida sai
	// sem gravar nada
	claimed, err := s.Repository.SetTransaction(ctx, item.Id, tx.Id)
	if err != nil {
		return nil, appErrors.ErrUpdateFailed.WithError(err)
	}
	if !claimed {
		return nil, appErrors.ErrAlreadyProcessed.
			WithDetails(map[string]interface{}{"staging_item_id": item.Id.String()})
	}

	var target *card.Card
	if item.HasCardLabel() {
		target, err = s.Cards.LookupByLabel(ctx, item.UserId, *item.CardLabel)
		if err != nil {
			if !appErrors.HasCode(err, appErrors.ErrCardNotFound.Code) {
				return nil, err
			}
			logger.Warn().
				Str("staging_item_id", item.Id.String()).
				Str("card_label", *item.CardLabel).
				Msg("Apelido de cartao sem cartao correspondente, criando transacao sem fatura")
			result.CardLabelMissing = true
			target = nil
		}
	}

	if err := s.Transactions.Record(ctx, tx); err != nil {
		return nil, err
	}
	result.TransactionId = tx.Id

	if target != nil {
		invoice, invoiceItem, err := s.Cards.AttachTransaction(ctx, target, tx, card.SingleInstallment())
		if err != nil {
			return nil, err
		}
		result.InvoiceId = &invoice.Id
		result.InvoiceItemId = &invoiceItem.Id
	}
	return result, nil
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

// decidedFields usa a decisao gravada e, em linhas antigas sem decisao,
// a sugestao do importador.
func decidedFields(item *Item) (shared.Context, ulid.ULID, error) {
	ctxValue := item.DecidedContext
	if ctxValue == nil {
		ctxValue = item.SuggestedContext
	}
	categoryID := item.DecidedCategoryId
	if categoryID == nil {
		categoryID = item.SuggestedCategoryId
	}
	if ctxValue == nil || !ctxValue.IsValid() || categoryID == nil {
		return "", ulid.ULID{}, appErrors.NewValidationError("decision", "linha sem contexto ou categoria decididos").
			WithDetails(map[string]interface{}{"staging_item_id": item.Id.String()})
	}
	return *ctxValue, *categoryID, nil
}

type rowOutcome struct {
	id     ulid.ULID
	result *CreationResult
	err    error
}

func buildReport(outcomes []rowOutcome) *ApprovalReport {
	report := &ApprovalReport{
		Results:  make([]*CreationResult, 0, len(outcomes)),
		Failures: make([]*RowFailure, 0),
	}
	for _, o := range outcomes {
		if o.err == nil {
			report.Results = append(report.Results, o.result)
			continue
		}
		appErr := appErrors.FromError(o.err)
		logger.Warn().
			Err(o.err).
			Str("staging_item_id", o.id.String()).
			Str("code", appErr.Code).
			Msg("Falha ao aprovar linha importada")
		report.Failures = append(report.Failures, &RowFailure{
			StagingItemId: o.id,
			Code:          appErr.Code,
			Message:       appErr.Message,
		})
	}
	return report
}
