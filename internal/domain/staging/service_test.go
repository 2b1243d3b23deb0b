package staging_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"Fluxo/internal/domain/card"
	"Fluxo/internal/domain/category"
	"Fluxo/internal/domain/shared"
	"Fluxo/internal/domain/staging"
	"Fluxo/internal/domain/transaction"
	appErrors "Fluxo/internal/errors"
	"Fluxo/internal/pkg"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStagingRepository struct {
	mu    sync.Mutex
	items map[ulid.ULID]*staging.Item
}

func newMemoryStagingRepository(items ...*staging.Item) *memoryStagingRepository {
	repo := &memoryStagingRepository{items: map[ulid.ULID]*staging.Item{}}
	for _, item := range items {
		repo.items[item.Id] = item
	}
	return repo
}

func (r *memoryStagingRepository) get(id ulid.ULID) *staging.Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *r.items[id]
	return &copied
}

func (r *memoryStagingRepository) CreateBatch(ctx context.Context, items []*staging.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range items {
		copied := *item
		r.items[item.Id] = &copied
	}
	return nil
}

func (r *memoryStagingRepository) GetByID(ctx context.Context, id, userID ulid.ULID) (*staging.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok || item.UserId != userID {
		return nil, appErrors.ErrStagingItemNotFound
	}
	copied := *item
	return &copied, nil
}

func (r *memoryStagingRepository) GetByIDs(ctx context.Context, userID ulid.ULID, ids []ulid.ULID) ([]*staging.Item, error) {
	var out []*staging.Item
	for _, id := range ids {
		if item, err := r.GetByID(ctx, id, userID); err == nil {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *memoryStagingRepository) ListByStatus(ctx context.Context, userID ulid.ULID, status staging.Status, pagination *pkg.PaginationParams) ([]*staging.Item, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*staging.Item
	for _, item := range r.items {
		if item.UserId == userID && item.Status == status {
			out = append(out, item)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memoryStagingRepository) MarkApproved(ctx context.Context, userID ulid.ULID, d staging.Decision, decidedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[d.StagingItemId]
	if !ok || item.UserId != userID || item.Status != staging.StatusPending {
		return false, nil
	}
	copied := *item
	decidedContext := d.DecidedContext
	categoryID := d.DecidedCategoryId
	copied.Status = staging.StatusApproved
	copied.DecidedContext = &decidedContext
	copied.DecidedCategoryId = &categoryID
	copied.DecidedAt = &decidedAt
	r.items[d.StagingItemId] = &copied
	return true, nil
}

func (r *memoryStagingRepository) SetTransaction(ctx context.Context, id, transactionID ulid.ULID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.items[id].TransactionId != nil {
		return false, nil
	}
	copied := *r.items[id]
	copied.TransactionId = &transactionID
	r.items[id] = &copied
	return true, nil
}

func (r *memoryStagingRepository) MarkIgnored(ctx context.Context, userID ulid.ULID, ids []ulid.ULID, decidedAt time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range ids {
		item, ok := r.items[id]
		if !ok || item.UserId != userID || item.Status != staging.StatusPending {
			continue
		}
		copied := *item
		copied.Status = staging.StatusIgnored
		copied.DecidedAt = &decidedAt
		r.items[id] = &copied
		n++
	}
	return n, nil
}

func (r *memoryStagingRepository) ListApprovedWithoutTransaction(ctx context.Context, userID ulid.ULID) ([]*staging.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*staging.Item
	for _, item := range r.items {
		if item.UserId == userID && item.Status == staging.StatusApproved && item.TransactionId == nil {
			copied := *item
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memoryStagingRepository) ListUsersWithOrphans(ctx context.Context) ([]ulid.ULID, error) {
	return nil, nil
}

// snapshotTransactor desfaz as alteracoes do repositorio quando fn falha.
type snapshotTransactor struct {
	repo *memoryStagingRepository
	mu   sync.Mutex
}

func (t *snapshotTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.repo.mu.Lock()
	saved := make(map[ulid.ULID]*staging.Item, len(t.repo.items))
	for k, v := range t.repo.items {
		saved[k] = v
	}
	t.repo.mu.Unlock()

	if err := fn(ctx); err != nil {
		t.repo.mu.Lock()
		t.repo.items = saved
		t.repo.mu.Unlock()
		return err
	}
	return nil
}

type fakeUsers struct{}

func (fakeUsers) Exists(ctx context.Context, userID ulid.ULID) error { return nil }

type fakeCategories struct {
	known map[ulid.ULID]bool
}

func (f fakeCategories) EnsureUsable(ctx context.Context, userID, categoryID ulid.ULID) (*category.Category, error) {
	if !f.known[categoryID] {
		return nil, appErrors.ErrCategoryNotFound
	}
	return &category.Category{Id: categoryID, UserId: userID, Type: shared.Expense, IsActive: true}, nil
}

type fakeCards struct {
	mu       sync.Mutex
	byLabel  map[string]*card.Card
	attached []ulid.ULID
}

func (f *fakeCards) LookupByLabel(ctx context.Context, userID ulid.ULID, label string) (*card.Card, error) {
	c, ok := f.byLabel[shared.NormalizeLabel(label)]
	if !ok {
		return nil, appErrors.ErrCardNotFound
	}
	return c, nil
}

func (f *fakeCards) AttachTransaction(ctx context.Context, c *card.Card, tx *transaction.Transaction, inst card.Installment) (*card.Invoice, *card.InvoiceItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attached = append(f.attached, tx.Id)
	invoice := &card.Invoice{Id: pkg.NewID(), CardId: c.Id, Month: card.BucketKey(tx.Date, c.ClosingDay), Status: card.InvoiceOpen}
	item := &card.InvoiceItem{
		Id:                pkg.NewID(),
		InvoiceId:         invoice.Id,
		TransactionId:     tx.Id,
		InstallmentNumber: inst.Number,
		InstallmentTotal:  inst.Total,
	}
	return invoice, item, nil
}

type fakeTransactions struct {
	mu       sync.Mutex
	recorded []*transaction.Transaction
	failFor  map[string]bool
}

func (f *fakeTransactions) Record(ctx context.Context, tx *transaction.Transaction) error {
	if f.failFor[tx.Description] {
		return appErrors.ErrInsertFailed
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if (tx.Id == ulid.ULID{}) {
		tx.Id = pkg.NewID()
	}
	f.recorded = append(f.recorded, tx)
	return nil
}

type fixture struct {
	svc        *staging.Service
	repo       *memoryStagingRepository
	cards      *fakeCards
	txs        *fakeTransactions
	userID     ulid.ULID
	categoryID ulid.ULID
	card       *card.Card
}

func newFixture(t *testing.T, items ...*staging.Item) *fixture {
	t.Helper()

	userID := pkg.NewID()
	categoryID := pkg.NewID()
	nubank := &card.Card{Id: pkg.NewID(), UserId: userID, Label: "Nubank", ClosingDay: 15, DueDay: 22}

	for _, item := range items {
		item.UserId = userID
	}
	repo := newMemoryStagingRepository(items...)
	cards := &fakeCards{byLabel: map[string]*card.Card{"nubank": nubank}}
	txs := &fakeTransactions{failFor: map[string]bool{}}

	svc := staging.NewService(
		repo,
		fakeCategories{known: map[ulid.ULID]bool{categoryID: true}},
		cards,
		txs,
		&snapshotTransactor{repo: repo},
		2,
		shared.NewUserCheckerService(fakeUsers{}),
	)
	svc.Now = func() time.Time { return time.Date(2025, time.March, 20, 9, 0, 0, 0, time.UTC) }

	return &fixture{svc: svc, repo: repo, cards: cards, txs: txs, userID: userID, categoryID: categoryID, card: nubank}
}

func pendingItem(description string, value int64, label *string) *staging.Item {
	return &staging.Item{
		Id:          pkg.NewID(),
		Date:        time.Date(2025, time.March, 16, 0, 0, 0, 0, time.UTC),
		Description: description,
		Value:       decimal.NewFromInt(value),
		CardLabel:   label,
		Status:      staging.StatusPending,
	}
}

func strPtr(s string) *string { return &s }

func TestApproveBusinessExpense(t *testing.T) {
	item := pendingItem("Hospedagem", -150, nil)
	f := newFixture(t, item)

	report, err := f.svc.Approve(context.Background(), f.userID, []staging.Decision{
		{StagingItemId: item.Id, DecidedContext: shared.Business, DecidedCategoryId: f.categoryID},
	})
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.False(t, report.Partial())

	require.Len(t, f.txs.recorded, 1)
	tx := f.txs.recorded[0]
	assert.Equal(t, shared.Expense, tx.Type)
	assert.True(t, tx.Value.Equal(decimal.RequireFromString("-150.00")))
	assert.Equal(t, transaction.StatusPending, tx.Status)
	assert.Equal(t, shared.Business, tx.Context)
	assert.Equal(t, f.categoryID, tx.CategoryId)
	require.NotNil(t, tx.StagingItemId)
	assert.Equal(t, item.Id, *tx.StagingItemId)

	stored := f.repo.get(item.Id)
	assert.Equal(t, staging.StatusApproved, stored.Status)
	require.NotNil(t, stored.TransactionId)
	assert.Equal(t, tx.Id, *stored.TransactionId)
	assert.Nil(t, report.Results[0].InvoiceId)
}

func TestApproveWithCardLabel(t *testing.T) {
	known := pendingItem("Mercado", -80, strPtr("NUBANK"))
	unknown := pendingItem("Farmacia", -20, strPtr("Banco X"))
	f := newFixture(t, known, unknown)

	report, err := f.svc.Approve(context.Background(), f.userID, []staging.Decision{
		{StagingItemId: known.Id, DecidedContext: shared.Personal, DecidedCategoryId: f.categoryID},
		{StagingItemId: unknown.Id, DecidedContext: shared.Personal, DecidedCategoryId: f.categoryID},
	})
	require.NoError(t, err)
	require.Len(t, report.Results, 2)

	linked := report.Results[0]
	assert.Equal(t, known.Id, linked.StagingItemId)
	require.NotNil(t, linked.InvoiceId)
	require.NotNil(t, linked.InvoiceItemId)

	plain := report.Results[1]
	assert.Equal(t, unknown.Id, plain.StagingItemId)
	assert.Nil(t, plain.InvoiceId)
	assert.True(t, plain.CardLabelMissing)

	assert.Equal(t, []ulid.ULID{linked.TransactionId}, f.cards.attached)
	assert.Len(t, f.txs.recorded, 2)
}

func TestApproveRowFailureLeavesRowPending(t *testing.T) {
	ok := pendingItem("Aluguel", -1000, nil)
	bad := pendingItem("Quebra", -10, nil)
	f := newFixture(t, ok, bad)
	f.txs.failFor["Quebra"] = true

	report, err := f.svc.Approve(context.Background(), f.userID, []staging.Decision{
		{StagingItemId: ok.Id, DecidedContext: shared.Personal, DecidedCategoryId: f.categoryID},
		{StagingItemId: bad.Id, DecidedContext: shared.Personal, DecidedCategoryId: f.categoryID},
	})
	require.NoError(t, err)
	assert.True(t, report.Partial())
	require.Len(t, report.Results, 1)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, bad.Id, report.Failures[0].StagingItemId)
	assert.Equal(t, "INSERT_FAILED", report.Failures[0].Code)

	assert.Equal(t, staging.StatusApproved, f.repo.get(ok.Id).Status)
	failed := f.repo.get(bad.Id)
	assert.Equal(t, staging.StatusPending, failed.Status)
	assert.Nil(t, failed.TransactionId)
}

func TestApproveValidation(t *testing.T) {
	item := pendingItem("Padaria", -12, nil)
	decided := pendingItem("Antigo", -5, nil)
	decided.Status = staging.StatusIgnored
	f := newFixture(t, item, decided)
	ctx := context.Background()

	tests := []struct {
		name      string
		decisions []staging.Decision
		code      string
	}{
		{"empty batch", nil, "VALIDATION_ERROR"},
		{"missing context", []staging.Decision{{StagingItemId: item.Id, DecidedCategoryId: f.categoryID}}, "VALIDATION_ERROR"},
		{"missing category", []staging.Decision{{StagingItemId: item.Id, DecidedContext: shared.Personal}}, "VALIDATION_ERROR"},
		{"duplicated id", []staging.Decision{
			{StagingItemId: item.Id, DecidedContext: shared.Personal, DecidedCategoryId: f.categoryID},
			{StagingItemId: item.Id, DecidedContext: shared.Business, DecidedCategoryId: f.categoryID},
		}, "VALIDATION_ERROR"},
		{"unknown item", []staging.Decision{{StagingItemId: pkg.NewID(), DecidedContext: shared.Personal, DecidedCategoryId: f.categoryID}}, "STAGING_ITEM_NOT_FOUND"},
		{"already decided", []staging.Decision{{StagingItemId: decided.Id, DecidedContext: shared.Personal, DecidedCategoryId: f.categoryID}}, "STAGING_ALREADY_DECIDED"},
		{"unknown category", []staging.Decision{{StagingItemId: item.Id, DecidedContext: shared.Personal, DecidedCategoryId: pkg.NewID()}}, "CATEGORY_NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Approve(ctx, f.userID, tt.decisions)
			require.Error(t, err)
			assert.True(t, appErrors.HasCode(err, tt.code), err.Error())
		})
	}

	assert.Empty(t, f.txs.recorded)
	assert.Equal(t, staging.StatusPending, f.repo.get(item.Id).Status)
}

func TestApproveRespectsCardContextMode(t *testing.T) {
	business := pendingItem("Almoco cliente", -60, strPtr("nubank"))
	orphanLabel := pendingItem("Posto", -200, strPtr("Banco X"))
	f := newFixture(t, business, orphanLabel)
	f.card.ContextMode = card.ContextPersonal
	ctx := context.Background()

	_, err := f.svc.Approve(ctx, f.userID, []staging.Decision{
		{StagingItemId: orphanLabel.Id, DecidedContext: shared.Business, DecidedCategoryId: f.categoryID},
		{StagingItemId: business.Id, DecidedContext: shared.Business, DecidedCategoryId: f.categoryID},
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
	assert.Equal(t, business.Id.String(), appErrors.FromError(err).Details["staging_item_id"])
	assert.Empty(t, f.txs.recorded)
	assert.Equal(t, staging.StatusPending, f.repo.get(business.Id).Status)
	assert.Equal(t, staging.StatusPending, f.repo.get(orphanLabel.Id).Status)

	report, err := f.svc.Approve(ctx, f.userID, []staging.Decision{
		{StagingItemId: orphanLabel.Id, DecidedContext: shared.Business, DecidedCategoryId: f.categoryID},
		{StagingItemId: business.Id, DecidedContext: shared.Personal, DecidedCategoryId: f.categoryID},
	})
	require.NoError(t, err)
	assert.Len(t, report.Results, 2)
	assert.Len(t, f.cards.attached, 1)
}

func TestApproveForeignItem(t *testing.T) {
	item := pendingItem("Padaria", -12, nil)
	f := newFixture(t, item)

	_, err := f.svc.Approve(context.Background(), pkg.NewID(), []staging.Decision{
		{StagingItemId: item.Id, DecidedContext: shared.Personal, DecidedCategoryId: f.categoryID},
	})
	assert.True(t, appErrors.HasCode(err, "STAGING_ITEM_NOT_FOUND"))
}

func TestIgnore(t *testing.T) {
	item := pendingItem("Transferencia", 500, strPtr("Nubank"))
	approved := pendingItem("Salario", 3000, nil)
	approved.Status = staging.StatusApproved
	f := newFixture(t, item, approved)

	count, err := f.svc.Ignore(context.Background(), f.userID, []ulid.ULID{item.Id, approved.Id})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, staging.StatusIgnored, f.repo.get(item.Id).Status)
	assert.Equal(t, staging.StatusApproved, f.repo.get(approved.Id).Status)
	assert.Empty(t, f.txs.recorded)

	_, err = f.svc.Ignore(context.Background(), f.userID, nil)
	assert.True(t, appErrors.HasCode(err, "VALIDATION_ERROR"))
}

func TestReconcileApproved(t *testing.T) {
	orphan := pendingItem("Orfa", -40, nil)
	orphan.Status = staging.StatusApproved
	f := newFixture(t, orphan)
	personal := shared.Personal
	orphan.DecidedContext = &personal
	orphan.DecidedCategoryId = &f.categoryID

	report, err := f.svc.ReconcileApproved(context.Background(), f.userID)
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	require.NotNil(t, f.repo.get(orphan.Id).TransactionId)

	again, err := f.svc.ReconcileApproved(context.Background(), f.userID)
	require.NoError(t, err)
	assert.Empty(t, again.Results)
	assert.Len(t, f.txs.recorded, 1)
}

// listBarrierRepository segura cada listagem de orfas ate que todas as
// execucoes tenham listado, forcando as duas a verem as mesmas linhas.
type listBarrierRepository struct {
	*memoryStagingRepository
	listed sync.WaitGroup
}

func (r *listBarrierRepository) ListApprovedWithoutTransaction(ctx context.Context, userID ulid.ULID) ([]*staging.Item, error) {
	items, err := r.memoryStagingRepository.ListApprovedWithoutTransaction(ctx, userID)
	r.listed.Done()
	r.listed.Wait()
	return items, err
}

func TestConcurrentReconcileCreatesOneTransactionPerRow(t *testing.T) {
	plain := pendingItem("Orfa", -40, nil)
	labelled := pendingItem("Mercado", -75, strPtr("Nubank"))
	f := newFixture(t, plain, labelled)
	personal := shared.Personal
	for _, item := range []*staging.Item{plain, labelled} {
		item.Status = staging.StatusApproved
		item.DecidedContext = &personal
		item.DecidedCategoryId = &f.categoryID
	}

	barrier := &listBarrierRepository{memoryStagingRepository: f.repo}
	barrier.listed.Add(2)
	f.svc.Repository = barrier

	reports := make([]*staging.ApprovalReport, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range reports {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reports[i], errs[i] = f.svc.ReconcileApproved(context.Background(), f.userID)
		}(i)
	}
	wg.Wait()

	repaired := 0
	for i := range reports {
		require.NoError(t, errs[i])
		assert.Empty(t, reports[i].Failures)
		repaired += len(reports[i].Results)
	}
	assert.Equal(t, 2, repaired)
	require.Len(t, f.txs.recorded, 2)
	assert.Len(t, f.cards.attached, 1)

	recorded := map[ulid.ULID]ulid.ULID{}
	for _, tx := range f.txs.recorded {
		recorded[*tx.StagingItemId] = tx.Id
	}
	for _, item := range []*staging.Item{plain, labelled} {
		stored := f.repo.get(item.Id)
		require.NotNil(t, stored.TransactionId)
		assert.Equal(t, recorded[item.Id], *stored.TransactionId)
	}
}

func TestAddItemsSanitizes(t *testing.T) {
	f := newFixture(t)
	suggested := shared.Business

	items, err := f.svc.AddItems(context.Background(), f.userID, []staging.NewItem{
		{
			Date:             time.Date(2025, time.March, 3, 14, 30, 0, 0, time.UTC),
			Description:      "<b>Uber</b>   <script>x</script>Trip",
			Value:            decimal.NewFromInt(-32),
			CardLabel:        strPtr(" Nubank "),
			SuggestedContext: &suggested,
		},
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Uber Trip", items[0].Description)
	assert.Equal(t, "Nubank", *items[0].CardLabel)
	assert.Equal(t, staging.StatusPending, items[0].Status)
	assert.NotEmpty(t, items[0].RawPayload)
	assert.Equal(t, 0, items[0].Date.Hour())

	_, err = f.svc.AddItems(context.Background(), f.userID, []staging.NewItem{{Description: "<i></i>", Date: time.Now()}})
	assert.True(t, appErrors.HasCode(err, "VALIDATION_ERROR"))
}
