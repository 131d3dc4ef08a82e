package ledger

import (
	"context"
	"sort"
	"sync"
)

// memRepo is an in-memory Repository. WithTx holds a per-company lock for
// the duration of the callback, standing in for the company row lock.
type memRepo struct {
	mu          sync.Mutex
	docs        map[int64]Document
	contractors map[int64]int64
	categories  map[int64]int64
	next        int64

	lockMu sync.Mutex
	locks  map[int64]*sync.Mutex
}

func newMemRepo() *memRepo {
	return &memRepo{
		docs:        map[int64]Document{},
		contractors: map[int64]int64{},
		categories:  map[int64]int64{},
		locks:       map[int64]*sync.Mutex{},
	}
}

func (m *memRepo) seed(doc Document) Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	doc.ID = m.next
	if doc.Status == "" {
		doc.Status = StatusBuffer
	}
	m.docs[doc.ID] = doc
	return doc
}

func (m *memRepo) List(ctx context.Context, companyID int64, filter ListFilter) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Document{}
	for _, d := range m.docs {
		if d.CompanyID != companyID {
			continue
		}
		if filter.Type != "" && d.Type != filter.Type {
			continue
		}
		if filter.Status != "" && d.Status != filter.Status {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EventDate.Equal(out[j].EventDate) {
			return out[i].EventDate.Before(out[j].EventDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memRepo) Ledger(ctx context.Context, companyID int64) ([]Document, error) {
	docs, err := m.List(ctx, companyID, ListFilter{Status: StatusBooked})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(docs, func(i, j int) bool {
		if !docs[i].EventDate.Equal(docs[j].EventDate) {
			return docs[i].EventDate.Before(docs[j].EventDate)
		}
		return *docs[i].LedgerNumber < *docs[j].LedgerNumber
	})
	return docs, nil
}

func (m *memRepo) Get(ctx context.Context, id int64) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return Document{}, ErrDocumentNotFound
	}
	return d, nil
}

func (m *memRepo) ContractorCompany(ctx context.Context, id int64) (int64, error) {
	owner, ok := m.contractors[id]
	if !ok {
		return 0, ErrInvalidContractor
	}
	return owner, nil
}

func (m *memRepo) CategoryCompany(ctx context.Context, id int64) (int64, error) {
	owner, ok := m.categories[id]
	if !ok {
		return 0, ErrInvalidCategory
	}
	return owner, nil
}

func (m *memRepo) Insert(ctx context.Context, doc Document) (Document, error) {
	return m.seed(doc), nil
}

func (m *memRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx := &memTx{repo: m}
	defer tx.release()
	return fn(ctx, tx)
}

func (m *memRepo) companyLock(companyID int64) *sync.Mutex {
	m.lockMu.Lock()
	defer m.lockMu.Unlock()
	l, ok := m.locks[companyID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[companyID] = l
	}
	return l
}

type memTx struct {
	repo   *memRepo
	locked []*sync.Mutex
}

func (t *memTx) release() {
	for _, l := range t.locked {
		l.Unlock()
	}
}

func (t *memTx) GetForUpdate(ctx context.Context, id int64) (Document, error) {
	return t.repo.Get(ctx, id)
}

func (t *memTx) LockCompany(ctx context.Context, companyID int64) error {
	l := t.repo.companyLock(companyID)
	l.Lock()
	t.locked = append(t.locked, l)
	return nil
}

func (t *memTx) NextLedgerNumber(ctx context.Context, companyID int64) (int64, error) {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	var current *int64
	for _, d := range t.repo.docs {
		if d.CompanyID == companyID && d.LedgerNumber != nil && (current == nil || *d.LedgerNumber > *current) {
			n := *d.LedgerNumber
			current = &n
		}
	}
	return NextNumber(current), nil
}

func (t *memTx) MarkBooked(ctx context.Context, id, number int64) error {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	d := t.repo.docs[id]
	if d.Status == StatusBooked {
		return ErrAlreadyBooked
	}
	for _, other := range t.repo.docs {
		if other.CompanyID == d.CompanyID && other.LedgerNumber != nil && *other.LedgerNumber == number {
			return ErrNumberConflict
		}
	}
	d.Status = StatusBooked
	d.LedgerNumber = &number
	t.repo.docs[id] = d
	return nil
}
