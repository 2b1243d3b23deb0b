package card

import (
	"context"
	"strings"
	"time"

	"Fluxo/internal/domain/category"
	"Fluxo/internal/domain/shared"
	"Fluxo/internal/domain/transaction"
	appErrors "Fluxo/internal/errors"
	"Fluxo/internal/logger"
	"Fluxo/internal/pkg"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// TransactionRecorder grava transacoes montadas pelo parcelamento.
type TransactionRecorder interface {
	Record(ctx context.Context, tx *transaction.Transaction) error
}

type CategoryChecker interface {
	EnsureUsable(ctx context.Context, userID, categoryID ulid.ULID) (*category.Category, error)
}

type Service struct {
	Repository   Repository
	Directory    *LabelDirectory
	Transactions TransactionRecorder
	Categories   CategoryChecker
	Transactor   shared.Transactor
	Now          func() time.Time
	shared.BaseService
}

func NewService(
	repo Repository,
	directory *LabelDirectory,
	transactions TransactionRecorder,
	categories CategoryChecker,
	transactor shared.Transactor,
	userChecker *shared.UserCheckerService,
) *Service {
	return &Service{
		Repository:   repo,
		Directory:    directory,
		Transactions: transactions,
		Categories:   categories,
		Transactor:   transactor,
		Now:          time.Now,
		BaseService: shared.BaseService{
			UserChecker: userChecker,
		},
	}
}

type CreateCardRequest struct {
	UserId      ulid.ULID
	Label       string
	ClosingDay  int
	DueDay      int
	ContextMode ContextMode
}

type UpdateCardRequest struct {
	Label       *string
	ClosingDay  *int
	DueDay      *int
	ContextMode *ContextMode
}

func (s *Service) CreateCard(ctx context.Context, req *CreateCardRequest) (*Card, error) {
	if err := s.EnsureUserExists(ctx, req.UserId); err != nil {
		return nil, err
	}

	card := &Card{
		Id:          pkg.NewID(),
		UserId:      req.UserId,
		Label:       strings.TrimSpace(req.Label),
		ClosingDay:  req.ClosingDay,
		DueDay:      req.DueDay,
		ContextMode: req.ContextMode,
	}
	if card.ContextMode == "" {
		card.ContextMode = ContextMixed
	}
	if err := validateCard(card); err != nil {
		return nil, err
	}
	if err := s.ensureLabelAvailable(ctx, req.UserId, card.Label, nil); err != nil {
		return nil, err
	}

	now := s.now()
	card.CreatedAt = now
	card.UpdatedAt = now

	if err := s.Repository.CreateCard(ctx, card); err != nil {
		if shared.IsUniqueConstraintError(err) {
			return nil, appErrors.NewConflictError("cartao")
		}
		return nil, appErrors.NewDatabaseError(err)
	}

	s.invalidate(req.UserId)
	return card, nil
}

func (s *Service) UpdateCard(ctx context.Context, cardID, userID ulid.ULID, req *UpdateCardRequest) (*Card, error) {
	card, err := s.GetCard(ctx, cardID, userID)
	if err != nil {
		return nil, err
	}

	if req.Label != nil {
		card.Label = strings.TrimSpace(*req.Label)
	}
	if req.ClosingDay != nil {
		card.ClosingDay = *req.ClosingDay
	}
	if req.DueDay != nil {
		card.DueDay = *req.DueDay
	}
	if req.ContextMode != nil {
		card.ContextMode = *req.ContextMode
	}
	if err := validateCard(card); err != nil {
		return nil, err
	}
	if req.Label != nil {
		if err := s.ensureLabelAvailable(ctx, userID, card.Label, &card.Id); err != nil {
			return nil, err
		}
	}

	card.UpdatedAt = s.now()
	if err := s.Repository.UpdateCard(ctx, card); err != nil {
		if shared.IsUniqueConstraintError(err) {
			return nil, appErrors.NewConflictError("cartao")
		}
		return nil, appErrors.NewDatabaseError(err)
	}

	s.invalidate(userID)
	return card, nil
}

func (s *Service) DeleteCard(ctx context.Context, cardID, userID ulid.ULID) error {
	if _, err := s.GetCard(ctx, cardID, userID); err != nil {
		return err
	}

	unpaid, err := s.Repository.CountUnpaidInvoices(ctx, cardID)
	if err != nil {
		return appErrors.NewDatabaseError(err)
	}
	if unpaid > 0 {
		return appErrors.NewValidationError("card", "Cartão possui faturas não pagas, não pode remover")
	}

	if err := s.Repository.DeleteCard(ctx, cardID, userID); err != nil {
		return appErrors.NewDatabaseError(err)
	}

	s.invalidate(userID)
	return nil
}

func (s *Service) GetCard(ctx context.Context, cardID, userID ulid.ULID) (*Card, error) {
	card, err := s.Repository.GetCardByID(ctx, cardID, userID)
	if err != nil {
		if appErrors.HasCode(err, appErrors.ErrCardNotFound.Code) {
			return nil, err
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	if card.UserId != userID {
		return nil, appErrors.ErrCardNotFound
	}
	return card, nil
}

func (s *Service) ListCards(ctx context.Context, userID ulid.ULID, pagination *pkg.PaginationParams) ([]*Card, int64, error) {
	if err := s.EnsureUserExists(ctx, userID); err != nil {
		return nil, 0, err
	}
	return s.Repository.ListCards(ctx, userID, pagination)
}

// LookupByLabel resolve o apelido informado na importacao para um cartao do usuario.
func (s *Service) LookupByLabel(ctx context.Context, userID ulid.ULID, label string) (*Card, error) {
	return s.Directory.Lookup(ctx, userID, label)
}

// ResolveInvoice devolve a fatura do cartao que recebe uma compra feita em date,
// criando-a (OPEN) no primeiro uso.
func (s *Service) ResolveInvoice(ctx context.Context, userID, cardID ulid.ULID, date time.Time) (*Invoice, error) {
	card, err := s.GetCard(ctx, cardID, userID)
	if err != nil {
		return nil, err
	}
	return s.resolveForCard(ctx, card, date)
}

func (s *Service) resolveForCard(ctx context.Context, card *Card, date time.Time) (*Invoice, error) {
	bucket := BucketMonth(date, card.ClosingDay)
	month := pkg.MonthKey(bucket)

	invoice, err := s.Repository.GetInvoiceByMonth(ctx, card.Id, month)
	if err == nil {
		return invoice, nil
	}
	if !appErrors.HasCode(err, appErrors.ErrInvoiceNotFound.Code) {
		return nil, appErrors.NewDatabaseError(err)
	}

	now := s.now()
	candidate := &Invoice{
		Id:        pkg.NewID(),
		CardId:    card.Id,
		UserId:    card.UserId,
		Month:     month,
		Status:    InvoiceOpen,
		DueDate:   DueDateFor(bucket, card.ClosingDay, card.DueDay),
		CreatedAt: now,
		UpdatedAt: now,
	}

	inserted, err := s.Repository.CreateInvoiceIfAbsent(ctx, candidate)
	if err != nil {
		return nil, appErrors.ErrInsertFailed.WithError(err)
	}
	if inserted {
		logger.Info().
			Str("card_id", card.Id.String()).
			Str("month", month).
			Msg("Fatura criada")
		return candidate, nil
	}

	// outra requisicao criou a fatura entre a busca e a insercao
	invoice, err = s.Repository.GetInvoiceByMonth(ctx, card.Id, month)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return invoice, nil
}

// AttachTransaction vincula uma transacao ja gravada a fatura do seu mes.
func (s *Service) AttachTransaction(ctx context.Context, card *Card, tx *transaction.Transaction, installment Installment) (*Invoice, *InvoiceItem, error) {
	invoice, err := s.resolveForCard(ctx, card, tx.Date)
	if err != nil {
		return nil, nil, err
	}

	if invoice.Status != InvoiceOpen {
		logger.Warn().
			Str("invoice_id", invoice.Id.String()).
			Str("status", string(invoice.Status)).
			Str("transaction_id", tx.Id.String()).
			Msg("Transacao vinculada a fatura que nao esta aberta")
	}

	if installment.Total < 1 {
		installment = SingleInstallment()
	}

	item := &InvoiceItem{
		Id:                pkg.NewID(),
		InvoiceId:         invoice.Id,
		TransactionId:     tx.Id,
		InstallmentOf:     installment.Of,
		InstallmentNumber: installment.Number,
		InstallmentTotal:  installment.Total,
		CreatedAt:         s.now(),
	}
	if err := s.Repository.CreateItem(ctx, item); err != nil {
		return nil, nil, appErrors.ErrInsertFailed.WithError(err)
	}

	return invoice, item, nil
}

func (s *Service) ListInvoices(ctx context.Context, cardID, userID ulid.ULID, pagination *pkg.PaginationParams) ([]*Invoice, int64, error) {
	if _, err := s.GetCard(ctx, cardID, userID); err != nil {
		return nil, 0, err
	}
	return s.Repository.ListInvoices(ctx, cardID, userID, pagination)
}

func (s *Service) GetInvoice(ctx context.Context, invoiceID, userID ulid.ULID) (*Invoice, error) {
	invoice, err := s.Repository.GetInvoiceByID(ctx, invoiceID, userID)
	if err != nil {
		if appErrors.HasCode(err, appErrors.ErrInvoiceNotFound.Code) {
			return nil, err
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	if invoice.UserId != userID {
		return nil, appErrors.ErrInvoiceNotFound
	}
	return invoice, nil
}

func (s *Service) GetInvoiceDetails(ctx context.Context, invoiceID, userID ulid.ULID) (*InvoiceDetails, error) {
	invoice, err := s.GetInvoice(ctx, invoiceID, userID)
	if err != nil {
		return nil, err
	}

	lines, err := s.Repository.ListLines(ctx, invoice.Id)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}

	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Value)
	}

	return &InvoiceDetails{
		Invoice: invoice,
		Lines:   lines,
		Total:   OutstandingFrom(sum),
	}, nil
}

func (s *Service) CloseInvoice(ctx context.Context, userID, invoiceID ulid.ULID) (*Invoice, error) {
	return s.transition(ctx, userID, invoiceID, InvoiceClosed)
}

func (s *Service) ReopenInvoice(ctx context.Context, userID, invoiceID ulid.ULID) (*Invoice, error) {
	return s.transition(ctx, userID, invoiceID, InvoiceOpen)
}

// PayInvoice marca a fatura como paga. Apenas faturas fechadas podem ser pagas.
func (s *Service) PayInvoice(ctx context.Context, userID, invoiceID ulid.ULID) (*Invoice, error) {
	return s.transition(ctx, userID, invoiceID, InvoicePaid)
}

func (s *Service) ListUnpaidDueUntil(ctx context.Context, userID ulid.ULID, until time.Time) ([]*InvoiceSummary, error) {
	return s.Repository.ListUnpaidDueUntil(ctx, userID, until)
}

func (s *Service) transition(ctx context.Context, userID, invoiceID ulid.ULID, next InvoiceStatus) (*Invoice, error) {
	invoice, err := s.GetInvoice(ctx, invoiceID, userID)
	if err != nil {
		return nil, err
	}

	current := invoice.Status
	if !current.CanTransitionTo(next) {
		return nil, appErrors.NewInvalidTransitionError(string(current), string(next))
	}

	now := s.now()
	invoice.Status = next
	invoice.UpdatedAt = now
	switch next {
	case InvoiceClosed:
		invoice.ClosedAt = &now
	case InvoiceOpen:
		invoice.ClosedAt = nil
	case InvoicePaid:
		invoice.PaidAt = &now
	}

	updated, err := s.Repository.UpdateInvoiceStatus(ctx, invoice, current)
	if err != nil {
		return nil, appErrors.ErrUpdateFailed.WithError(err)
	}
	if !updated {
		return nil, appErrors.NewInvalidTransitionError(string(current), string(next))
	}

	logger.Info().
		Str("invoice_id", invoice.Id.String()).
		Str("from", string(current)).
		Str("to", string(next)).
		Msg("Status da fatura alterado")

	return invoice, nil
}

func (s *Service) ensureLabelAvailable(ctx context.Context, userID ulid.ULID, label string, self *ulid.ULID) error {
	existing, err := s.Directory.Lookup(ctx, userID, label)
	if err != nil {
		if appErrors.HasCode(err, appErrors.ErrCardNotFound.Code) {
			return nil
		}
		return err
	}
	if self != nil && existing.Id == *self {
		return nil
	}
	return appErrors.NewConflictError("cartao")
}

func (s *Service) invalidate(userID ulid.ULID) {
	if s.Directory != nil {
		s.Directory.Invalidate(userID)
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func validateCard(card *Card) error {
	if card.Label == "" {
		return appErrors.NewValidationError("label", "e obrigatorio")
	}
	if card.ClosingDay < 1 || card.ClosingDay > 31 {
		return appErrors.NewValidationError("closing_day", "deve estar entre 1 e 31")
	}
	if card.DueDay < 1 || card.DueDay > 31 {
		return appErrors.NewValidationError("due_day", "deve estar entre 1 e 31")
	}
	if !card.ContextMode.IsValid() {
		return appErrors.NewValidationError("context_mode", "modo de contexto invalido")
	}
	return nil
}
