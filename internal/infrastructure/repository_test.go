package infrastructure_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"Fluxo/internal/domain/card"
	"Fluxo/internal/domain/category"
	"Fluxo/internal/domain/dashboard"
	"Fluxo/internal/domain/recurring"
	"Fluxo/internal/domain/shared"
	"Fluxo/internal/domain/staging"
	"Fluxo/internal/domain/transaction"
	"Fluxo/internal/domain/user"
	appErrors "Fluxo/internal/errors"
	"Fluxo/internal/infrastructure"
	"Fluxo/internal/pkg"

	"github.com/glebarez/sqlite"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, infrastructure.Migrate(db))
	return db
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTx(userID, categoryID ulid.ULID, date time.Time, value int64, status transaction.Status) *transaction.Transaction {
	v := decimal.NewFromInt(value)
	now := time.Now().UTC()
	return &transaction.Transaction{
		Id:          pkg.NewID(),
		UserId:      userID,
		Date:        date,
		Description: "Compra",
		Value:       v,
		Type:        shared.TypeFromValue(v),
		Context:     shared.Personal,
		CategoryId:  categoryID,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestUserRepositoryEmailIsUnique(t *testing.T) {
	repo := &infrastructure.UserRepository{DB: newTestDB(t)}
	ctx := context.Background()

	u := &user.User{Id: pkg.NewID(), Name: "Ana", Email: "ana@fluxo.dev", Password: "hash", DefaultContext: shared.Personal}
	require.NoError(t, repo.Create(ctx, u))

	dup := &user.User{Id: pkg.NewID(), Name: "Outra", Email: "ana@fluxo.dev", Password: "hash", DefaultContext: shared.Personal}
	err := repo.Create(ctx, dup)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrEmailAlreadyExists.Code))

	found, err := repo.GetByEmail(ctx, "ana@fluxo.dev")
	require.NoError(t, err)
	assert.Equal(t, u.Id, found.Id)

	_, err = repo.GetByID(ctx, pkg.NewID())
	assert.True(t, appErrors.HasCode(err, appErrors.ErrUserNotFound.Code))
}

func TestCategoryCreateBatchIsRepeatable(t *testing.T) {
	repo := &infrastructure.CategoryRepository{DB: newTestDB(t)}
	ctx := context.Background()
	userID := pkg.NewID()

	defaults := category.DefaultCategoriesForUser(userID, time.Now().UTC())
	require.NoError(t, repo.CreateBatch(ctx, defaults))
	require.NoError(t, repo.CreateBatch(ctx, category.DefaultCategoriesForUser(userID, time.Now().UTC())))

	list, total, err := repo.List(ctx, userID, true, &pkg.PaginationParams{Page: 1, Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, int64(len(category.DefaultCategories)), total)
	assert.Len(t, list, len(category.DefaultCategories))

	found, err := repo.GetByName(ctx, "moradia", userID)
	require.NoError(t, err)
	assert.Equal(t, "Moradia", found.Name)
}

func TestTransactionCreateIfAbsentSkipsSamePeriod(t *testing.T) {
	repo := &infrastructure.TransactionRepository{DB: newTestDB(t)}
	ctx := context.Background()
	userID, categoryID, itemID := pkg.NewID(), pkg.NewID(), pkg.NewID()
	period := "2025-03"

	first := newTx(userID, categoryID, day(2025, 3, 5), -200, transaction.StatusPending)
	first.RecurringItemId, first.RecurringPeriod = &itemID, &period
	inserted, err := repo.CreateIfAbsent(ctx, first)
	require.NoError(t, err)
	assert.True(t, inserted)

	again := newTx(userID, categoryID, day(2025, 3, 5), -200, transaction.StatusPending)
	again.RecurringItemId, again.RecurringPeriod = &itemID, &period
	inserted, err = repo.CreateIfAbsent(ctx, again)
	require.NoError(t, err)
	assert.False(t, inserted)

	_, total, err := repo.List(ctx, userID, transaction.Filter{}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestTransactionStagingItemIsUnique(t *testing.T) {
	repo := &infrastructure.TransactionRepository{DB: newTestDB(t)}
	ctx := context.Background()
	userID, categoryID, stagingID := pkg.NewID(), pkg.NewID(), pkg.NewID()

	first := newTx(userID, categoryID, day(2025, 3, 5), -80, transaction.StatusPending)
	first.StagingItemId = &stagingID
	require.NoError(t, repo.Create(ctx, first))

	second := newTx(userID, categoryID, day(2025, 3, 5), -80, transaction.StatusPending)
	second.StagingItemId = &stagingID
	assert.Error(t, repo.Create(ctx, second))

	manual := newTx(userID, categoryID, day(2025, 3, 6), -15, transaction.StatusPending)
	require.NoError(t, repo.Create(ctx, manual))
	other := newTx(userID, categoryID, day(2025, 3, 6), -15, transaction.StatusPending)
	require.NoError(t, repo.Create(ctx, other))
}

func TestTransactionUpdateStatusIsGuarded(t *testing.T) {
	repo := &infrastructure.TransactionRepository{DB: newTestDB(t)}
	ctx := context.Background()
	userID := pkg.NewID()

	tx := newTx(userID, pkg.NewID(), day(2025, 3, 1), -50, transaction.StatusPending)
	require.NoError(t, repo.Create(ctx, tx))

	now := time.Now().UTC()
	ok, err := repo.UpdateStatus(ctx, tx.Id, userID, transaction.StatusPending, transaction.StatusPaid, &now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.UpdateStatus(ctx, tx.Id, userID, transaction.StatusPending, transaction.StatusPaid, &now)
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := repo.GetByID(ctx, tx.Id, userID)
	require.NoError(t, err)
	assert.Equal(t, transaction.StatusPaid, stored.Status)
	assert.NotNil(t, stored.SettledAt)

	_, err = repo.GetByID(ctx, tx.Id, pkg.NewID())
	assert.True(t, appErrors.HasCode(err, appErrors.ErrTransactionNotFound.Code))
}

func TestTransactionListPendingDueUntil(t *testing.T) {
	repo := &infrastructure.TransactionRepository{DB: newTestDB(t)}
	ctx := context.Background()
	userID, categoryID := pkg.NewID(), pkg.NewID()

	require.NoError(t, repo.Create(ctx, newTx(userID, categoryID, day(2025, 3, 2), -10, transaction.StatusPending)))
	require.NoError(t, repo.Create(ctx, newTx(userID, categoryID, day(2025, 3, 9), -10, transaction.StatusPending)))
	require.NoError(t, repo.Create(ctx, newTx(userID, categoryID, day(2025, 3, 3), -10, transaction.StatusPaid)))
	require.NoError(t, repo.Create(ctx, newTx(userID, categoryID, day(2025, 3, 20), -10, transaction.StatusPending)))

	due, err := repo.ListPendingDueUntil(ctx, userID, day(2025, 3, 10))
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.True(t, due[0].Date.Before(due[1].Date))
}

func TestCardInvoiceCreatedOncePerMonth(t *testing.T) {
	repo := &infrastructure.CardRepository{DB: newTestDB(t)}
	ctx := context.Background()
	userID := pkg.NewID()

	c := &card.Card{Id: pkg.NewID(), UserId: userID, Label: "Nubank", ClosingDay: 15, DueDay: 25, ContextMode: card.ContextMixed}
	require.NoError(t, repo.CreateCard(ctx, c))

	newInvoice := func() *card.Invoice {
		return &card.Invoice{
			Id: pkg.NewID(), CardId: c.Id, UserId: userID, Month: "2025-04",
			Status: card.InvoiceOpen, DueDate: day(2025, 4, 25),
		}
	}

	first := newInvoice()
	inserted, err := repo.CreateInvoiceIfAbsent(ctx, first)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.CreateInvoiceIfAbsent(ctx, newInvoice())
	require.NoError(t, err)
	assert.False(t, inserted)

	stored, err := repo.GetInvoiceByMonth(ctx, c.Id, "2025-04")
	require.NoError(t, err)
	assert.Equal(t, first.Id, stored.Id)

	_, err = repo.GetInvoiceByMonth(ctx, c.Id, "2025-05")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvoiceNotFound.Code))
}

func TestCardInvoiceLinesAndUnpaidTotals(t *testing.T) {
	db := newTestDB(t)
	cards := &infrastructure.CardRepository{DB: db}
	txs := &infrastructure.TransactionRepository{DB: db}
	ctx := context.Background()
	userID, categoryID := pkg.NewID(), pkg.NewID()

	c := &card.Card{Id: pkg.NewID(), UserId: userID, Label: "Inter", ClosingDay: 10, DueDay: 20, ContextMode: card.ContextPersonal}
	require.NoError(t, cards.CreateCard(ctx, c))
	invoice := &card.Invoice{Id: pkg.NewID(), CardId: c.Id, UserId: userID, Month: "2025-03", Status: card.InvoiceClosed, DueDate: day(2025, 3, 20)}
	_, err := cards.CreateInvoiceIfAbsent(ctx, invoice)
	require.NoError(t, err)

	purchase := newTx(userID, categoryID, day(2025, 3, 1), -100, transaction.StatusPending)
	refund := newTx(userID, categoryID, day(2025, 3, 4), 20, transaction.StatusPending)
	for _, tx := range []*transaction.Transaction{purchase, refund} {
		require.NoError(t, txs.Create(ctx, tx))
		require.NoError(t, cards.CreateItem(ctx, &card.InvoiceItem{
			Id: pkg.NewID(), InvoiceId: invoice.Id, TransactionId: tx.Id,
			InstallmentNumber: 1, InstallmentTotal: 1, CreatedAt: time.Now().UTC(),
		}))
	}

	lines, err := cards.ListLines(ctx, invoice.Id)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, purchase.Id, lines[0].TransactionId)
	assert.True(t, lines[0].Value.Equal(decimal.NewFromInt(-100)))

	summaries, err := cards.ListUnpaidDueUntil(ctx, userID, day(2025, 3, 31))
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "Inter", summaries[0].CardLabel)
	assert.True(t, summaries[0].Total.Equal(decimal.NewFromInt(80)), summaries[0].Total.String())

	require.NoError(t, cards.DeleteItemsByTransaction(ctx, refund.Id))
	lines, err = cards.ListLines(ctx, invoice.Id)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestUpdateInvoiceStatusRequiresExpectedStatus(t *testing.T) {
	repo := &infrastructure.CardRepository{DB: newTestDB(t)}
	ctx := context.Background()
	userID := pkg.NewID()

	invoice := &card.Invoice{Id: pkg.NewID(), CardId: pkg.NewID(), UserId: userID, Month: "2025-03", Status: card.InvoiceOpen, DueDate: day(2025, 3, 20)}
	_, err := repo.CreateInvoiceIfAbsent(ctx, invoice)
	require.NoError(t, err)

	now := time.Now().UTC()
	invoice.Status, invoice.ClosedAt = card.InvoiceClosed, &now
	ok, err := repo.UpdateInvoiceStatus(ctx, invoice, card.InvoiceOpen)
	require.NoError(t, err)
	assert.True(t, ok)

	invoice.Status = card.InvoicePaid
	ok, err = repo.UpdateInvoiceStatus(ctx, invoice, card.InvoiceOpen)
	require.NoError(t, err)
	assert.False(t, ok)

	unpaid, err := repo.CountUnpaidInvoices(ctx, invoice.CardId)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unpaid)
}

func TestStagingMarkApprovedOnlyOnce(t *testing.T) {
	repo := &infrastructure.StagingRepository{DB: newTestDB(t)}
	ctx := context.Background()
	userID, categoryID := pkg.NewID(), pkg.NewID()
	now := time.Now().UTC()

	label := "Nubank"
	items := []*staging.Item{
		{Id: pkg.NewID(), UserId: userID, Date: day(2025, 3, 1), Description: "Mercado", Value: decimal.NewFromInt(-80), CardLabel: &label, Status: staging.StatusPending, CreatedAt: now, UpdatedAt: now},
		{Id: pkg.NewID(), UserId: userID, Date: day(2025, 3, 2), Description: "Pix", Value: decimal.NewFromInt(300), Status: staging.StatusPending, CreatedAt: now, UpdatedAt: now},
	}
	require.NoError(t, repo.CreateBatch(ctx, items))

	decision := staging.Decision{StagingItemId: items[0].Id, DecidedContext: shared.Business, DecidedCategoryId: categoryID}
	ok, err := repo.MarkApproved(ctx, userID, decision, now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.MarkApproved(ctx, userID, decision, now)
	require.NoError(t, err)
	assert.False(t, ok)

	orphans, err := repo.ListApprovedWithoutTransaction(ctx, userID)
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.Equal(t, shared.Business, *orphans[0].DecidedContext)
	assert.Equal(t, "Nubank", *orphans[0].CardLabel)

	users, err := repo.ListUsersWithOrphans(ctx)
	require.NoError(t, err)
	assert.Equal(t, []ulid.ULID{userID}, users)

	linked, err := repo.SetTransaction(ctx, items[0].Id, pkg.NewID())
	require.NoError(t, err)
	assert.True(t, linked)

	linked, err = repo.SetTransaction(ctx, items[0].Id, pkg.NewID())
	require.NoError(t, err)
	assert.False(t, linked)

	orphans, err = repo.ListApprovedWithoutTransaction(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, orphans)

	count, err := repo.MarkIgnored(ctx, userID, []ulid.ULID{items[0].Id, items[1].Id}, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	found, err := repo.GetByIDs(ctx, pkg.NewID(), []ulid.ULID{items[1].Id})
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestRecurringRunMarkerIsIdempotent(t *testing.T) {
	repo := &infrastructure.RecurringRepository{DB: newTestDB(t)}
	ctx := context.Background()
	userID := pkg.NewID()

	done, err := repo.HasRun(ctx, userID, "2025-03")
	require.NoError(t, err)
	assert.False(t, done)

	run := &recurring.Run{UserId: userID, Period: "2025-03", Created: 2, CreatedAt: time.Now().UTC()}
	require.NoError(t, repo.MarkRun(ctx, run))
	require.NoError(t, repo.MarkRun(ctx, run))

	done, err = repo.HasRun(ctx, userID, "2025-03")
	require.NoError(t, err)
	assert.True(t, done)
}

func TestRecurringListUsersWithActiveItems(t *testing.T) {
	repo := &infrastructure.RecurringRepository{DB: newTestDB(t)}
	ctx := context.Background()
	active, paused := pkg.NewID(), pkg.NewID()

	for _, item := range []*recurring.Item{
		{Id: pkg.NewID(), UserId: active, Description: "Aluguel", Type: shared.Expense, Context: shared.Personal, CategoryId: pkg.NewID(), Amount: decimal.NewFromInt(1200), DueDay: 5, IsActive: true},
		{Id: pkg.NewID(), UserId: active, Description: "Internet", Type: shared.Expense, Context: shared.Personal, CategoryId: pkg.NewID(), Amount: decimal.NewFromInt(100), DueDay: 10, IsActive: true},
		{Id: pkg.NewID(), UserId: paused, Description: "Academia", Type: shared.Expense, Context: shared.Personal, CategoryId: pkg.NewID(), Amount: decimal.NewFromInt(90), DueDay: 1, IsActive: false},
	} {
		item.CreatedAt, item.UpdatedAt = time.Now().UTC(), time.Now().UTC()
		require.NoError(t, repo.Create(ctx, item))
	}

	users, err := repo.ListUsersWithActiveItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, []ulid.ULID{active}, users)

	items, err := repo.ListActive(ctx, active)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.True(t, items[0].Amount.Equal(decimal.NewFromInt(1200)))
}

func TestDashboardSumValues(t *testing.T) {
	db := newTestDB(t)
	txs := &infrastructure.TransactionRepository{DB: db}
	repo := &infrastructure.DashboardRepository{DB: db}
	ctx := context.Background()
	userID, categoryID := pkg.NewID(), pkg.NewID()

	require.NoError(t, txs.Create(ctx, newTx(userID, categoryID, day(2025, 3, 3), -40, transaction.StatusPending)))
	require.NoError(t, txs.Create(ctx, newTx(userID, categoryID, day(2025, 3, 8), -60, transaction.StatusPending)))
	require.NoError(t, txs.Create(ctx, newTx(userID, categoryID, day(2025, 4, 1), -500, transaction.StatusPending)))

	total, err := repo.SumValues(ctx, dashboard.SumQuery{
		UserId: userID, From: day(2025, 3, 1), To: day(2025, 4, 1),
		Type: shared.Expense, Status: transaction.StatusPending,
	})
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(-100)), total.String())

	empty, err := repo.SumValues(ctx, dashboard.SumQuery{
		UserId: userID, From: day(2025, 3, 1), To: day(2025, 4, 1),
		Type: shared.Income, Status: transaction.StatusReceived,
	})
	require.NoError(t, err)
	assert.True(t, empty.IsZero())
}

func TestGormTransactorRollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	transactor := infrastructure.NewGormTransactor(db)
	repo := &infrastructure.CategoryRepository{DB: db}
	ctx := context.Background()
	userID := pkg.NewID()
	boom := errors.New("boom")

	err := transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		now := time.Now().UTC()
		if err := repo.Create(ctx, &category.Category{Id: pkg.NewID(), UserId: userID, Name: "Viagem", Type: shared.Expense, IsActive: true, CreatedAt: now, UpdatedAt: now}); err != nil {
			return err
		}
		return transactor.WithinTransaction(ctx, func(ctx context.Context) error {
			return boom
		})
	})
	assert.ErrorIs(t, err, boom)

	_, total, err := repo.List(ctx, userID, false, nil)
	require.NoError(t, err)
	assert.Zero(t, total)
}
