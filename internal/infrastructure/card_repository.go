package infrastructure

import (
	"context"
	"errors"
	"time"

	"Fluxo/internal/domain/card"
	appErrors "Fluxo/internal/errors"
	"Fluxo/internal/pkg"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CardRepository struct {
	DB *gorm.DB
}

var _ card.Repository = (*CardRepository)(nil)

type cardDB struct {
	Id          string    `gorm:"type:varchar(26);primaryKey"`
	UserId      string    `gorm:"type:varchar(26);not null;uniqueIndex:idx_cards_user_label,priority:1"`
	Label       string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_cards_user_label,priority:2"`
	ClosingDay  int       `gorm:"not null"`
	DueDay      int       `gorm:"not null"`
	ContextMode string    `gorm:"type:varchar(10);not null;default:'MIXED'"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (cardDB) TableName() string {
	return "cards"
}

type invoiceDB struct {
	Id        string     `gorm:"type:varchar(26);primaryKey"`
	CardId    string     `gorm:"type:varchar(26);not null;uniqueIndex:idx_card_invoices_card_month,priority:1"`
	UserId    string     `gorm:"type:varchar(26);index;not null"`
	Month     string     `gorm:"type:varchar(7);not null;uniqueIndex:idx_card_invoices_card_month,priority:2"`
	Status    string     `gorm:"type:varchar(10);not null;default:'OPEN'"`
	DueDate   time.Time  `gorm:"type:date;not null"`
	ClosedAt  *time.Time `gorm:"type:timestamp"`
	PaidAt    *time.Time `gorm:"type:timestamp"`
	CreatedAt time.Time  `gorm:"not null"`
	UpdatedAt time.Time  `gorm:"not null"`
}

func (invoiceDB) TableName() string {
	return "card_invoices"
}

type invoiceItemDB struct {
	Id                string    `gorm:"type:varchar(26);primaryKey;column:id"`
	CardInvoiceId     string    `gorm:"type:varchar(26);index;not null;column:card_invoice_id"`
	TransactionId     string    `gorm:"type:varchar(26);uniqueIndex;not null;column:transaction_id"`
	InstallmentOf     *string   `gorm:"type:varchar(26);index;column:installment_of"`
	InstallmentNumber int       `gorm:"not null;default:1;column:installment_number"`
	InstallmentTotal  int       `gorm:"not null;default:1;column:installment_total"`
	CreatedAt         time.Time `gorm:"not null;column:created_at"`
}

func (invoiceItemDB) TableName() string {
	return "card_invoice_items"
}

type invoiceLineRow struct {
	Item        invoiceItemDB   `gorm:"embedded"`
	Date        time.Time       `gorm:"column:date"`
	Description string          `gorm:"column:description"`
	Value       decimal.Decimal `gorm:"column:value"`
}

type invoiceSummaryRow struct {
	Invoice    invoiceDB       `gorm:"embedded"`
	CardLabel  string          `gorm:"column:card_label"`
	ItemsTotal decimal.Decimal `gorm:"column:items_total"`
}

func toDomainCard(cdb *cardDB) (*card.Card, error) {
	id, err := pkg.ParseULID(cdb.Id)
	if err != nil {
		return nil, err
	}
	uid, err := pkg.ParseULID(cdb.UserId)
	if err != nil {
		return nil, err
	}
	return &card.Card{
		Id:          id,
		UserId:      uid,
		Label:       cdb.Label,
		ClosingDay:  cdb.ClosingDay,
		DueDay:      cdb.DueDay,
		ContextMode: card.ContextMode(cdb.ContextMode),
		CreatedAt:   cdb.CreatedAt,
		UpdatedAt:   cdb.UpdatedAt,
	}, nil
}

func toDBCard(c *card.Card) *cardDB {
	return &cardDB{
		Id:          c.Id.String(),
		UserId:      c.UserId.String(),
		Label:       c.Label,
		ClosingDay:  c.ClosingDay,
		DueDay:      c.DueDay,
		ContextMode: string(c.ContextMode),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toDomainInvoice(idb *invoiceDB) (*card.Invoice, error) {
	id, err := pkg.ParseULID(idb.Id)
	if err != nil {
		return nil, err
	}
	cardID, err := pkg.ParseULID(idb.CardId)
	if err != nil {
		return nil, err
	}
	uid, err := pkg.ParseULID(idb.UserId)
	if err != nil {
		return nil, err
	}
	return &card.Invoice{
		Id:        id,
		CardId:    cardID,
		UserId:    uid,
		Month:     idb.Month,
		Status:    card.InvoiceStatus(idb.Status),
		DueDate:   idb.DueDate,
		ClosedAt:  idb.ClosedAt,
		PaidAt:    idb.PaidAt,
		CreatedAt: idb.CreatedAt,
		UpdatedAt: idb.UpdatedAt,
	}, nil
}

func toDBInvoice(inv *card.Invoice) *invoiceDB {
	return &invoiceDB{
		Id:        inv.Id.String(),
		CardId:    inv.CardId.String(),
		UserId:    inv.UserId.String(),
		Month:     inv.Month,
		Status:    string(inv.Status),
		DueDate:   inv.DueDate,
		ClosedAt:  inv.ClosedAt,
		PaidAt:    inv.PaidAt,
		CreatedAt: inv.CreatedAt,
		UpdatedAt: inv.UpdatedAt,
	}
}

func toDomainInvoiceItem(idb *invoiceItemDB) (*card.InvoiceItem, error) {
	id, err := pkg.ParseULID(idb.Id)
	if err != nil {
		return nil, err
	}
	invoiceID, err := pkg.ParseULID(idb.CardInvoiceId)
	if err != nil {
		return nil, err
	}
	txID, err := pkg.ParseULID(idb.TransactionId)
	if err != nil {
		return nil, err
	}
	of, err := pkg.ParseULIDPtr(idb.InstallmentOf)
	if err != nil {
		return nil, err
	}
	return &card.InvoiceItem{
		Id:                id,
		InvoiceId:         invoiceID,
		TransactionId:     txID,
		InstallmentOf:     of,
		InstallmentNumber: idb.InstallmentNumber,
		InstallmentTotal:  idb.InstallmentTotal,
		CreatedAt:         idb.CreatedAt,
	}, nil
}

func toDBInvoiceItem(item *card.InvoiceItem) *invoiceItemDB {
	return &invoiceItemDB{
		Id:                item.Id.String(),
		CardInvoiceId:     item.InvoiceId.String(),
		TransactionId:     item.TransactionId.String(),
		InstallmentOf:     pkg.ULIDPtrToString(item.InstallmentOf),
		InstallmentNumber: item.InstallmentNumber,
		InstallmentTotal:  item.InstallmentTotal,
		CreatedAt:         item.CreatedAt,
	}
}

func (r *CardRepository) CreateCard(ctx context.Context, c *card.Card) error {
	return dbFrom(ctx, r.DB).Create(toDBCard(c)).Error
}

func (r *CardRepository) UpdateCard(ctx context.Context, c *card.Card) error {
	cdb := toDBCard(c)
	return dbFrom(ctx, r.DB).Model(&cardDB{}).
		Where("id = ? AND user_id = ?", cdb.Id, cdb.UserId).
		Updates(map[string]interface{}{
			"label":        cdb.Label,
			"closing_day":  cdb.ClosingDay,
			"due_day":      cdb.DueDay,
			"context_mode": cdb.ContextMode,
			"updated_at":   cdb.UpdatedAt,
		}).Error
}

// DeleteCard remove o cartao junto com o historico de faturas. As transacoes
// continuam existindo.
func (r *CardRepository) DeleteCard(ctx context.Context, cardID, userID ulid.ULID) error {
	return dbFrom(ctx, r.DB).Transaction(func(tx *gorm.DB) error {
		invoices := tx.Model(&invoiceDB{}).Select("id").Where("card_id = ? AND user_id = ?", cardID.String(), userID.String())
		if err := tx.Where("card_invoice_id IN (?)", invoices).Delete(&invoiceItemDB{}).Error; err != nil {
			return err
		}
		if err := tx.Where("card_id = ? AND user_id = ?", cardID.String(), userID.String()).Delete(&invoiceDB{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ? AND user_id = ?", cardID.String(), userID.String()).Delete(&cardDB{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return appErrors.ErrCardNotFound
		}
		return nil
	})
}

func (r *CardRepository) GetCardByID(ctx context.Context, cardID, userID ulid.ULID) (*card.Card, error) {
	var cdb cardDB
	err := dbFrom(ctx, r.DB).
		Where("id = ? AND user_id = ?", cardID.String(), userID.String()).
		First(&cdb).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrCardNotFound.WithError(err)
		}
		return nil, err
	}
	return toDomainCard(&cdb)
}

func (r *CardRepository) ListCards(ctx context.Context, userID ulid.ULID, pagination *pkg.PaginationParams) ([]*card.Card, int64, error) {
	query := dbFrom(ctx, r.DB).Model(&cardDB{}).Where("user_id = ?", userID.String())
	return pkg.Paginate(query, pagination, "label ASC", toDomainCard)
}

func (r *CardRepository) ListAllCards(ctx context.Context, userID ulid.ULID) ([]*card.Card, error) {
	var rows []cardDB
	if err := dbFrom(ctx, r.DB).Where("user_id = ?", userID.String()).Order("label ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*card.Card, 0, len(rows))
	for i := range rows {
		c, err := toDomainCard(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *CardRepository) GetInvoiceByMonth(ctx context.Context, cardID ulid.ULID, month string) (*card.Invoice, error) {
	var idb invoiceDB
	err := dbFrom(ctx, r.DB).
		Where("card_id = ? AND month = ?", cardID.String(), month).
		First(&idb).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrInvoiceNotFound.WithError(err)
		}
		return nil, err
	}
	return toDomainInvoice(&idb)
}

func (r *CardRepository) CreateInvoiceIfAbsent(ctx context.Context, invoice *card.Invoice) (bool, error) {
	result := dbFrom(ctx, r.DB).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "card_id"}, {Name: "month"}},
			DoNothing: true,
		}).
		Create(toDBInvoice(invoice))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *CardRepository) GetInvoiceByID(ctx context.Context, invoiceID, userID ulid.ULID) (*card.Invoice, error) {
	var idb invoiceDB
	err := dbFrom(ctx, r.DB).
		Where("id = ? AND user_id = ?", invoiceID.String(), userID.String()).
		First(&idb).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrInvoiceNotFound.WithError(err)
		}
		return nil, err
	}
	return toDomainInvoice(&idb)
}

func (r *CardRepository) ListInvoices(ctx context.Context, cardID, userID ulid.ULID, pagination *pkg.PaginationParams) ([]*card.Invoice, int64, error) {
	query := dbFrom(ctx, r.DB).Model(&invoiceDB{}).
		Where("card_id = ? AND user_id = ?", cardID.String(), userID.String())
	return pkg.Paginate(query, pagination, "month DESC", toDomainInvoice)
}

func (r *CardRepository) UpdateInvoiceStatus(ctx context.Context, invoice *card.Invoice, from card.InvoiceStatus) (bool, error) {
	result := dbFrom(ctx, r.DB).Model(&invoiceDB{}).
		Where("id = ? AND user_id = ? AND status = ?", invoice.Id.String(), invoice.UserId.String(), string(from)).
		Updates(map[string]interface{}{
			"status":     string(invoice.Status),
			"closed_at":  invoice.ClosedAt,
			"paid_at":    invoice.PaidAt,
			"updated_at": invoice.UpdatedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *CardRepository) CountUnpaidInvoices(ctx context.Context, cardID ulid.ULID) (int64, error) {
	var count int64
	err := dbFrom(ctx, r.DB).Model(&invoiceDB{}).
		Where("card_id = ? AND status <> ?", cardID.String(), string(card.InvoicePaid)).
		Count(&count).Error
	return count, err
}

func (r *CardRepository) ListUnpaidDueUntil(ctx context.Context, userID ulid.ULID, until time.Time) ([]*card.InvoiceSummary, error) {
	itemsTotal := dbFrom(ctx, r.DB).
		Table("card_invoice_items i").
		Select("COALESCE(SUM(t.value), 0)").
		Joins("JOIN transactions t ON t.id = i.transaction_id").
		Where("i.card_invoice_id = ci.id")

	var rows []invoiceSummaryRow
	err := dbFrom(ctx, r.DB).
		Table("card_invoices ci").
		Select("ci.*, c.label AS card_label, (?) AS items_total", itemsTotal).
		Joins("JOIN cards c ON c.id = ci.card_id").
		Where("ci.user_id = ? AND ci.status <> ? AND ci.due_date <= ?", userID.String(), string(card.InvoicePaid), until).
		Order("ci.due_date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]*card.InvoiceSummary, 0, len(rows))
	for i := range rows {
		inv, err := toDomainInvoice(&rows[i].Invoice)
		if err != nil {
			return nil, err
		}
		out = append(out, &card.InvoiceSummary{
			Invoice:   inv,
			CardLabel: rows[i].CardLabel,
			Total:     card.OutstandingFrom(rows[i].ItemsTotal),
		})
	}
	return out, nil
}

func (r *CardRepository) CreateItem(ctx context.Context, item *card.InvoiceItem) error {
	return dbFrom(ctx, r.DB).Create(toDBInvoiceItem(item)).Error
}

func (r *CardRepository) ListLines(ctx context.Context, invoiceID ulid.ULID) ([]*card.InvoiceLine, error) {
	var rows []invoiceLineRow
	err := dbFrom(ctx, r.DB).
		Table("card_invoice_items i").
		Select("i.*, t.date, t.description, t.value").
		Joins("JOIN transactions t ON t.id = i.transaction_id").
		Where("i.card_invoice_id = ?", invoiceID.String()).
		Order("t.date ASC, i.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]*card.InvoiceLine, 0, len(rows))
	for i := range rows {
		item, err := toDomainInvoiceItem(&rows[i].Item)
		if err != nil {
			return nil, err
		}
		out = append(out, &card.InvoiceLine{
			InvoiceItem: *item,
			Date:        rows[i].Date,
			Description: rows[i].Description,
			Value:       rows[i].Value,
		})
	}
	return out, nil
}

func (r *CardRepository) DeleteItemsByTransaction(ctx context.Context, transactionID ulid.ULID) error {
	return dbFrom(ctx, r.DB).
		Where("transaction_id = ?", transactionID.String()).
		Delete(&invoiceItemDB{}).Error
}
