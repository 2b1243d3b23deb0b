package transaction

import (
	"context"
	"strings"
	"time"

	"Fluxo/internal/domain/shared"
	appErrors "Fluxo/internal/errors"
	"Fluxo/internal/pkg"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

type Service struct {
	Repository   Repository
	Categories   CategoryChecker
	InvoiceLinks InvoiceLinkRemover
	Transactor   shared.Transactor
	Now          func() time.Time
	shared.BaseService
}

func NewService(
	repo Repository,
	categories CategoryChecker,
	invoiceLinks InvoiceLinkRemover,
	transactor shared.Transactor,
	userChecker *shared.UserCheckerService,
) *Service {
	return &Service{
		Repository:   repo,
		Categories:   categories,
		InvoiceLinks: invoiceLinks,
		Transactor:   transactor,
		Now:          time.Now,
		BaseService: shared.BaseService{
			UserChecker: userChecker,
		},
	}
}

type CreateRequest struct {
	UserId      ulid.ULID
	Date        time.Time
	Description string
	Value       decimal.Decimal
	// Type e opcional; quando informado precisa concordar com o sinal de Value.
	Type       *shared.EntryType
	Context    shared.Context
	CategoryId ulid.ULID
}

// Create registra um lancamento digitado pelo usuario.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Transaction, error) {
	if err := s.EnsureUserExists(ctx, req.UserId); err != nil {
		return nil, err
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, appErrors.NewValidationError("description", "é obrigatório")
	}
	if req.Value.IsZero() {
		return nil, appErrors.NewValidationError("value", "valor deve ser diferente de zero")
	}
	if req.Date.IsZero() {
		return nil, appErrors.NewValidationError("date", "é obrigatório")
	}
	if !req.Context.IsValid() {
		return nil, appErrors.NewValidationError("context", "contexto invalido")
	}

	entryType := shared.TypeFromValue(req.Value)
	if req.Type != nil {
		if err := checkTypeMatchesValue(*req.Type, req.Value); err != nil {
			return nil, err
		}
	}

	if _, err := s.Categories.EnsureUsable(ctx, req.UserId, req.CategoryId); err != nil {
		return nil, err
	}

	tx := &Transaction{
		UserId:      req.UserId,
		Date:        req.Date,
		Description: description,
		Value:       req.Value,
		Type:        entryType,
		Context:     req.Context,
		CategoryId:  req.CategoryId,
		Status:      StatusPending,
	}

	if err := s.Record(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// Record persiste uma transacao ja montada por outro fluxo (importacao,
// parcelamento). Preenche id, tipo e datas quando ausentes.
func (s *Service) Record(ctx context.Context, tx *Transaction) error {
	if err := s.prepare(tx); err != nil {
		return err
	}
	if err := s.Repository.Create(ctx, tx); err != nil {
		return appErrors.ErrInsertFailed.WithError(err)
	}
	return nil
}

// CreateIfAbsent grava a transacao a menos que ja exista uma para o mesmo
// lancamento fixo e competencia. Retorna false quando nada foi inserido.
func (s *Service) CreateIfAbsent(ctx context.Context, tx *Transaction) (bool, error) {
	if err := s.prepare(tx); err != nil {
		return false, err
	}
	inserted, err := s.Repository.CreateIfAbsent(ctx, tx)
	if err != nil {
		return false, appErrors.ErrInsertFailed.WithError(err)
	}
	return inserted, nil
}

func (s *Service) GetByID(ctx context.Context, transactionID, userID ulid.ULID) (*Transaction, error) {
	tx, err := s.Repository.GetByID(ctx, transactionID, userID)
	if err != nil {
		if appErrors.HasCode(err, appErrors.ErrTransactionNotFound.Code) {
			return nil, err
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	if tx.UserId != userID {
		return nil, appErrors.ErrTransactionNotFound
	}
	return tx, nil
}

func (s *Service) List(ctx context.Context, userID ulid.ULID, filter Filter, pagination *pkg.PaginationParams) ([]*Transaction, int64, error) {
	if err := s.EnsureUserExists(ctx, userID); err != nil {
		return nil, 0, err
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, 0, appErrors.NewValidationError("to", "data final anterior a inicial")
	}
	return s.Repository.List(ctx, userID, filter, pagination)
}

func (s *Service) ListPendingDueUntil(ctx context.Context, userID ulid.ULID, until time.Time) ([]*Transaction, error) {
	return s.Repository.ListPendingDueUntil(ctx, userID, until)
}

// Settle quita uma transacao pendente: saidas viram PAID, entradas RECEIVED.
func (s *Service) Settle(ctx context.Context, userID, transactionID ulid.ULID) (*Transaction, error) {
	tx, err := s.GetByID(ctx, transactionID, userID)
	if err != nil {
		return nil, err
	}

	target := tx.SettledStatus()
	if tx.Status != StatusPending {
		return nil, appErrors.NewInvalidTransitionError(string(tx.Status), string(target))
	}

	now := s.now()
	updated, err := s.Repository.UpdateStatus(ctx, transactionID, userID, StatusPending, target, &now)
	if err != nil {
		return nil, appErrors.ErrUpdateFailed.WithError(err)
	}
	if !updated {
		return nil, appErrors.NewInvalidTransitionError(string(tx.Status), string(target))
	}

	tx.Status = target
	tx.SettledAt = &now
	tx.UpdatedAt = now
	return tx, nil
}

// Delete remove a transacao e seus vinculos de fatura numa unica transacao.
func (s *Service) Delete(ctx context.Context, userID, transactionID ulid.ULID) error {
	if _, err := s.GetByID(ctx, transactionID, userID); err != nil {
		return err
	}

	return s.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if s.InvoiceLinks != nil {
			if err := s.InvoiceLinks.DeleteItemsByTransaction(ctx, transactionID); err != nil {
				return appErrors.NewDatabaseError(err)
			}
		}
		if err := s.Repository.Delete(ctx, transactionID, userID); err != nil {
			return appErrors.NewDatabaseError(err)
		}
		return nil
	})
}

func (s *Service) prepare(tx *Transaction) error {
	if tx.Type == "" {
		tx.Type = shared.TypeFromValue(tx.Value)
	} else if err := checkTypeMatchesValue(tx.Type, tx.Value); err != nil {
		return err
	}
	if !tx.Context.IsValid() {
		return appErrors.NewValidationError("context", "contexto invalido")
	}
	if tx.Status == "" {
		tx.Status = StatusPending
	}
	if (tx.Id == ulid.ULID{}) {
		tx.Id = pkg.NewID()
	}
	now := s.now()
	tx.Date = pkg.TruncateDay(tx.Date)
	tx.CreatedAt = now
	tx.UpdatedAt = now
	return nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func checkTypeMatchesValue(t shared.EntryType, value decimal.Decimal) error {
	if !t.IsValid() {
		return appErrors.NewValidationError("type", "tipo invalido")
	}
	if t != shared.TypeFromValue(value) {
		return appErrors.NewValidationError("type", "tipo nao corresponde ao sinal do valor").
			WithDetails(map[string]interface{}{
				"type":  string(t),
				"value": value.String(),
			})
	}
	return nil
}
