package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/kpir/internal/platform/httpx"
	"github.com/odyssey-erp/kpir/internal/rbac"
	"github.com/odyssey-erp/kpir/internal/shared"
)

type recordingAudit struct {
	mu   sync.Mutex
	logs []shared.AuditLog
}

func (a *recordingAudit) Record(ctx context.Context, log shared.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logs = append(a.logs, log)
	return nil
}

type countingInvalidator struct {
	mu    sync.Mutex
	calls map[int64]int
}

func (c *countingInvalidator) Invalidate(ctx context.Context, companyID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = map[int64]int{}
	}
	c.calls[companyID]++
	return nil
}

type outcomeCounter struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (o *outcomeCounter) ObserveBooking(outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.outcomes == nil {
		o.outcomes = map[string]int{}
	}
	o.outcomes[outcome]++
}

func manager(companyID int64) rbac.Principal {
	return rbac.Principal{UserID: 10, CompanyID: &companyID, Role: rbac.RoleManager}
}

func draft(companyID int64, docType DocumentType, event string, gross string) Document {
	t, _ := ParseDate(event)
	g := decimal.RequireFromString(gross)
	return Document{CompanyID: companyID, Type: docType, IssueDate: t, EventDate: t, GrossAmount: g, NetAmount: g, Status: StatusBuffer}
}

func TestBookSequentialNumbers(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		doc := repo.seed(draft(1, TypeIncome, "2025-12-01", "100.00"))
		number, err := svc.Book(ctx, manager(1), doc.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(i), number)
	}
}

func TestBookNumbersArePerCompany(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	a := repo.seed(draft(1, TypeIncome, "2025-12-01", "1"))
	b := repo.seed(draft(2, TypeIncome, "2025-12-01", "1"))
	c := repo.seed(draft(1, TypeCost, "2025-12-02", "1"))

	n, err := svc.Book(ctx, manager(1), a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = svc.Book(ctx, manager(2), b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = svc.Book(ctx, manager(1), c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestBookConcurrentNeverDuplicates(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	const n = 50
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = repo.seed(draft(1, TypeCost, "2025-11-15", "10.00")).ID
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers = map[int64]int64{}
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			number, err := svc.Book(ctx, manager(1), id)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			numbers[number] = id
			mu.Unlock()
		}(id)
	}
	wg.Wait()

	require.Len(t, numbers, n)
	for i := int64(1); i <= n; i++ {
		assert.Contains(t, numbers, i)
	}
}

func TestBookSameDocumentConcurrently(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, nil, nil)
	doc := repo.seed(draft(1, TypeIncome, "2025-12-01", "5"))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		already   int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Book(context.Background(), manager(1), doc.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case assert.ErrorIs(t, err, ErrAlreadyBooked):
				already++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, 7, already)
}

func TestBookTwiceReturnsAlreadyBookedAndKeepsNumber(t *testing.T) {
	repo := newMemRepo()
	counter := &outcomeCounter{}
	svc := NewService(repo, nil, nil)
	svc.WithBookingObserver(counter)
	ctx := context.Background()

	doc := repo.seed(draft(1, TypeIncome, "2025-12-01", "1230.00"))
	first, err := svc.Book(ctx, manager(1), doc.ID)
	require.NoError(t, err)

	_, err = svc.Book(ctx, manager(1), doc.ID)
	require.ErrorIs(t, err, ErrAlreadyBooked)
	assert.ErrorIs(t, err, httpx.ErrValidation)

	stored, err := repo.Get(ctx, doc.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LedgerNumber)
	assert.Equal(t, first, *stored.LedgerNumber)
	assert.Equal(t, 1, counter.outcomes[OutcomeBooked])
	assert.Equal(t, 1, counter.outcomes[OutcomeAlreadyBooked])
}

func TestBookRejectsMissingAndForeignDocuments(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()
	doc := repo.seed(draft(2, TypeIncome, "2025-12-01", "1"))

	_, err := svc.Book(ctx, manager(1), 999)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
	assert.ErrorIs(t, err, httpx.ErrNotFound)

	_, err = svc.Book(ctx, manager(1), doc.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	admin := rbac.Principal{UserID: 1, Role: rbac.RoleSystemAdmin}
	_, err = svc.Book(ctx, admin, doc.ID)
	assert.ErrorIs(t, err, httpx.ErrForbidden)

	stored, _ := repo.Get(ctx, doc.ID)
	assert.Equal(t, StatusBuffer, stored.Status)
	assert.Nil(t, stored.LedgerNumber)
}

func TestBookInvalidatesCacheAndAudits(t *testing.T) {
	repo := newMemRepo()
	audit := &recordingAudit{}
	inv := &countingInvalidator{}
	svc := NewService(repo, audit, nil)
	svc.WithCacheInvalidator(inv)
	fixed := time.Date(2025, 12, 31, 12, 0, 0, 0, time.UTC)
	svc.WithNow(func() time.Time { return fixed })

	doc := repo.seed(draft(3, TypeCost, "2025-12-10", "615.00"))
	_, err := svc.Book(context.Background(), manager(3), doc.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, inv.calls[3])
	require.Len(t, audit.logs, 1)
	assert.Equal(t, "document.book", audit.logs[0].Action)
	assert.Equal(t, fixed, audit.logs[0].At)
	assert.Equal(t, int64(1), audit.logs[0].Meta["ledger_number"])
}

func TestCreateValidatesContractorAndCategoryCompany(t *testing.T) {
	repo := newMemRepo()
	repo.contractors[7] = 1
	repo.contractors[8] = 2
	repo.categories[3] = 2
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	in := CreateInput{Type: TypeIncome, NetAmount: decimal.NewFromInt(1), VATAmount: decimal.Zero, GrossAmount: decimal.NewFromInt(1)}

	foreign := int64(8)
	in.ContractorID = &foreign
	_, err := svc.Create(ctx, manager(1), in)
	assert.ErrorIs(t, err, ErrInvalidContractor)

	missing := int64(99)
	in.ContractorID = &missing
	_, err = svc.Create(ctx, manager(1), in)
	assert.ErrorIs(t, err, ErrInvalidContractor)

	own := int64(7)
	in.ContractorID = &own
	cat := int64(3)
	in.CategoryID = &cat
	_, err = svc.Create(ctx, manager(1), in)
	assert.ErrorIs(t, err, ErrInvalidCategory)

	svc.WithCategoryScope(false)
	doc, err := svc.Create(ctx, manager(1), in)
	require.NoError(t, err)
	assert.Equal(t, StatusBuffer, doc.Status)
	assert.Nil(t, doc.LedgerNumber)
	assert.Equal(t, int64(1), doc.CompanyID)
	require.NotNil(t, doc.CreatedByID)
	assert.Equal(t, int64(10), *doc.CreatedByID)
}

func TestCreateRequiresCompany(t *testing.T) {
	svc := NewService(newMemRepo(), nil, nil)
	_, err := svc.Create(context.Background(), rbac.Principal{UserID: 5, Role: rbac.RoleEmployee}, CreateInput{Type: TypeCost})
	assert.ErrorIs(t, err, rbac.ErrNoCompany)
}

func TestLedgerListsBookedOnly(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	late := repo.seed(draft(1, TypeIncome, "2025-12-20", "1"))
	early := repo.seed(draft(1, TypeCost, "2025-12-01", "1"))
	repo.seed(draft(1, TypeCost, "2025-12-05", "1"))

	_, err := svc.Book(ctx, manager(1), late.ID)
	require.NoError(t, err)
	_, err = svc.Book(ctx, manager(1), early.ID)
	require.NoError(t, err)

	docs, err := svc.Ledger(ctx, manager(1))
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, early.ID, docs[0].ID)
	assert.Equal(t, int64(2), *docs[0].LedgerNumber)
	assert.Equal(t, late.ID, docs[1].ID)

	buffered, err := svc.List(ctx, manager(1), ListFilter{Status: StatusBuffer})
	require.NoError(t, err)
	assert.Len(t, buffered, 1)
}
