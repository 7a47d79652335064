package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mariobrusarosco/better-call-buffet/internal/domain"
	"github.com/mariobrusarosco/better-call-buffet/internal/usecase"
)

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc            func(ctx context.Context, account *domain.Account) error
	GetByIDFunc           func(ctx context.Context, id string) (*domain.Account, error)
	GetByNameFunc         func(ctx context.Context, ownerID, name string) (*domain.Account, error)
	GetByIDForUpdateFunc  func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error)
	GetByIDsForUpdateFunc func(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error)
	UpdateBalanceFunc     func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, lastTransactionID string, updatedAt time.Time) error
	SetActiveFunc         func(ctx context.Context, id string, active bool, updatedAt time.Time) error
	ListByOwnerFunc       func(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Account, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByName(ctx context.Context, ownerID, name string) (*domain.Account, error) {
	if m.GetByNameFunc != nil {
		return m.GetByNameFunc(ctx, ownerID, name)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, acc := range m.accounts {
		if acc.OwnerID == ownerID && acc.Name == name {
			return acc, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		// The real repository scans a fresh struct on every FOR UPDATE
		// read; return a copy so uncommitted in-memory mutations don't
		// leak back into the store.
		cp := *acc
		return &cp, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	if m.GetByIDsForUpdateFunc != nil {
		return m.GetByIDsForUpdateFunc(ctx, tx, ids)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, id := range ids {
		if acc, ok := m.accounts[id]; ok {
			cp := *acc
			accounts = append(accounts, &cp)
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, lastTransactionID string, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, lastTransactionID, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[id]; ok {
		acc.Balance = balance
		if lastTransactionID != "" {
			lid := lastTransactionID
			acc.LastTransactionID = &lid
		}
		acc.BalanceUpdatedAt = updatedAt
		acc.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockAccountRepository) SetActive(ctx context.Context, id string, active bool, updatedAt time.Time) error {
	if m.SetActiveFunc != nil {
		return m.SetActiveFunc(ctx, id, active, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[id]; ok {
		acc.Active = active
		acc.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockAccountRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Account, error) {
	if m.ListByOwnerFunc != nil {
		return m.ListByOwnerFunc(ctx, ownerID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, acc := range m.accounts {
		if acc.OwnerID == ownerID {
			accounts = append(accounts, acc)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return paginate(accounts, limit, offset), nil
}

// MockCreditCardRepository is a mock implementation of CreditCardRepository.
type MockCreditCardRepository struct {
	mu    sync.RWMutex
	cards map[string]*domain.CreditCard

	CreateFunc            func(ctx context.Context, card *domain.CreditCard) error
	GetByIDFunc           func(ctx context.Context, id string) (*domain.CreditCard, error)
	GetByNameFunc         func(ctx context.Context, ownerID, name string) (*domain.CreditCard, error)
	GetByIDForUpdateFunc  func(ctx context.Context, tx usecase.Transaction, id string) (*domain.CreditCard, error)
	UpdateOutstandingFunc func(ctx context.Context, tx usecase.Transaction, id string, outstanding decimal.Decimal, lastTransactionID string, updatedAt time.Time) error
	ListByOwnerFunc       func(ctx context.Context, ownerID string, limit, offset int) ([]*domain.CreditCard, error)
}

func NewMockCreditCardRepository() *MockCreditCardRepository {
	return &MockCreditCardRepository{
		cards: make(map[string]*domain.CreditCard),
	}
}

func (m *MockCreditCardRepository) Create(ctx context.Context, card *domain.CreditCard) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, card)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cards[card.ID] = card
	return nil
}

func (m *MockCreditCardRepository) GetByID(ctx context.Context, id string) (*domain.CreditCard, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if card, ok := m.cards[id]; ok {
		return card, nil
	}
	return nil, domain.ErrCreditCardNotFound
}

func (m *MockCreditCardRepository) GetByName(ctx context.Context, ownerID, name string) (*domain.CreditCard, error) {
	if m.GetByNameFunc != nil {
		return m.GetByNameFunc(ctx, ownerID, name)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, card := range m.cards {
		if card.OwnerID == ownerID && card.Name == name {
			return card, nil
		}
	}
	return nil, domain.ErrCreditCardNotFound
}

func (m *MockCreditCardRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.CreditCard, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if card, ok := m.cards[id]; ok {
		// Match the real repository's scan-a-fresh-struct semantics.
		cp := *card
		return &cp, nil
	}
	return nil, domain.ErrCreditCardNotFound
}

func (m *MockCreditCardRepository) UpdateOutstanding(ctx context.Context, tx usecase.Transaction, id string, outstanding decimal.Decimal, lastTransactionID string, updatedAt time.Time) error {
	if m.UpdateOutstandingFunc != nil {
		return m.UpdateOutstandingFunc(ctx, tx, id, outstanding, lastTransactionID, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if card, ok := m.cards[id]; ok {
		card.Outstanding = outstanding
		if lastTransactionID != "" {
			lid := lastTransactionID
			card.LastTransactionID = &lid
		}
		card.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockCreditCardRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.CreditCard, error) {
	if m.ListByOwnerFunc != nil {
		return m.ListByOwnerFunc(ctx, ownerID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var cards []*domain.CreditCard
	for _, card := range m.cards {
		if card.OwnerID == ownerID {
			cards = append(cards, card)
		}
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].ID < cards[j].ID })
	return paginate(cards, limit, offset), nil
}

// MockTransactionRepository is a mock implementation of TransactionRepository.
// Entries are kept in insertion order and Sequence is assigned on Create,
// mirroring the bigserial column.
type MockTransactionRepository struct {
	mu      sync.RWMutex
	entries []*domain.Transaction
	nextSeq int64

	CreateFunc                     func(ctx context.Context, tx usecase.Transaction, entry *domain.Transaction) error
	GetByIDFunc                    func(ctx context.Context, id string) (*domain.Transaction, error)
	ListByAccountFunc              func(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error)
	ListByOwnerFunc                func(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Transaction, error)
	ListByAccountBetweenFunc       func(ctx context.Context, accountID string, start, end time.Time) ([]*domain.Transaction, error)
	SumImpactsByAccountFunc        func(ctx context.Context, accountID string) (decimal.Decimal, error)
	SumImpactsByAccountThroughFunc func(ctx context.Context, accountID string, through time.Time) (decimal.Decimal, error)
	SumImpactsByCardFunc           func(ctx context.Context, cardID string) (decimal.Decimal, error)
	ExistsFunc                     func(ctx context.Context, key usecase.TransactionKey) (bool, error)
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{nextSeq: 1}
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.Sequence = m.nextSeq
	m.nextSeq++
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Transaction
	for _, e := range m.entries {
		if e.AccountID != nil && *e.AccountID == accountID {
			out = append(out, e)
		}
	}
	return paginate(out, limit, offset), nil
}

func (m *MockTransactionRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Transaction, error) {
	if m.ListByOwnerFunc != nil {
		return m.ListByOwnerFunc(ctx, ownerID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Transaction
	for _, e := range m.entries {
		if e.OwnerID == ownerID {
			out = append(out, e)
		}
	}
	return paginate(out, limit, offset), nil
}

func (m *MockTransactionRepository) ListByAccountBetween(ctx context.Context, accountID string, start, end time.Time) ([]*domain.Transaction, error) {
	if m.ListByAccountBetweenFunc != nil {
		return m.ListByAccountBetweenFunc(ctx, accountID, start, end)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Transaction
	for _, e := range m.entries {
		if e.AccountID == nil || *e.AccountID != accountID {
			continue
		}
		if e.Date.Before(start) || e.Date.After(end) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Sequence < out[j].Sequence
	})
	return out, nil
}

func (m *MockTransactionRepository) SumImpactsByAccount(ctx context.Context, accountID string) (decimal.Decimal, error) {
	if m.SumImpactsByAccountFunc != nil {
		return m.SumImpactsByAccountFunc(ctx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := decimal.Zero
	for _, e := range m.entries {
		if e.AccountID != nil && *e.AccountID == accountID {
			sum = sum.Add(e.BalanceImpact)
		}
	}
	return sum, nil
}

func (m *MockTransactionRepository) SumImpactsByAccountThrough(ctx context.Context, accountID string, through time.Time) (decimal.Decimal, error) {
	if m.SumImpactsByAccountThroughFunc != nil {
		return m.SumImpactsByAccountThroughFunc(ctx, accountID, through)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := decimal.Zero
	for _, e := range m.entries {
		if e.AccountID != nil && *e.AccountID == accountID && !e.Date.After(through) {
			sum = sum.Add(e.BalanceImpact)
		}
	}
	return sum, nil
}

func (m *MockTransactionRepository) SumImpactsByCard(ctx context.Context, cardID string) (decimal.Decimal, error) {
	if m.SumImpactsByCardFunc != nil {
		return m.SumImpactsByCardFunc(ctx, cardID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := decimal.Zero
	for _, e := range m.entries {
		if e.CreditCardID != nil && *e.CreditCardID == cardID {
			sum = sum.Add(e.BalanceImpact)
		}
	}
	return sum, nil
}

func (m *MockTransactionRepository) Exists(ctx context.Context, key usecase.TransactionKey) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.entries {
		if e.OwnerID == key.OwnerID &&
			e.Date.Equal(key.Date) &&
			e.Amount.Equal(key.Amount) &&
			e.MovementType == key.MovementType &&
			e.Description == key.Description {
			return true, nil
		}
	}
	return false, nil
}

// All returns every stored entry in insertion order, for assertions.
func (m *MockTransactionRepository) All() []*domain.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Transaction, len(m.entries))
	copy(out, m.entries)
	return out
}

// MockBalancePointRepository is a mock implementation of
// BalancePointRepository.
type MockBalancePointRepository struct {
	mu     sync.RWMutex
	points map[string]map[time.Time]domain.BalancePoint
	locked map[string]int

	UpsertRangeFunc     func(ctx context.Context, tx usecase.Transaction, points []domain.BalancePoint) error
	GetRangeFunc        func(ctx context.Context, accountID string, start, end time.Time) ([]domain.BalancePoint, error)
	GetLatestBeforeFunc func(ctx context.Context, accountID string, day time.Time) (*domain.BalancePoint, error)
	GetLatestDayFunc    func(ctx context.Context, accountID string) (time.Time, bool, error)
	MarkStatusFromFunc  func(ctx context.Context, tx usecase.Transaction, accountID string, from time.Time, status domain.PointStatus) error
	LockAccountFunc     func(ctx context.Context, tx usecase.Transaction, accountID string) error
}

func NewMockBalancePointRepository() *MockBalancePointRepository {
	return &MockBalancePointRepository{
		points: make(map[string]map[time.Time]domain.BalancePoint),
		locked: make(map[string]int),
	}
}

func (m *MockBalancePointRepository) UpsertRange(ctx context.Context, tx usecase.Transaction, points []domain.BalancePoint) error {
	if m.UpsertRangeFunc != nil {
		return m.UpsertRangeFunc(ctx, tx, points)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range points {
		byDay, ok := m.points[p.AccountID]
		if !ok {
			byDay = make(map[time.Time]domain.BalancePoint)
			m.points[p.AccountID] = byDay
		}
		byDay[p.Day] = p
	}
	return nil
}

func (m *MockBalancePointRepository) GetRange(ctx context.Context, accountID string, start, end time.Time) ([]domain.BalancePoint, error) {
	if m.GetRangeFunc != nil {
		return m.GetRangeFunc(ctx, accountID, start, end)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.BalancePoint
	for day, p := range m.points[accountID] {
		if day.Before(start) || day.After(end) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

func (m *MockBalancePointRepository) GetLatestBefore(ctx context.Context, accountID string, day time.Time) (*domain.BalancePoint, error) {
	if m.GetLatestBeforeFunc != nil {
		return m.GetLatestBeforeFunc(ctx, accountID, day)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *domain.BalancePoint
	for d, p := range m.points[accountID] {
		if !d.Before(day) || p.Status != domain.PointCurrent {
			continue
		}
		if latest == nil || d.After(latest.Day) {
			cp := p
			latest = &cp
		}
	}
	return latest, nil
}

func (m *MockBalancePointRepository) GetLatestDay(ctx context.Context, accountID string) (time.Time, bool, error) {
	if m.GetLatestDayFunc != nil {
		return m.GetLatestDayFunc(ctx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest time.Time
	found := false
	for d := range m.points[accountID] {
		if !found || d.After(latest) {
			latest = d
			found = true
		}
	}
	return latest, found, nil
}

func (m *MockBalancePointRepository) MarkStatusFrom(ctx context.Context, tx usecase.Transaction, accountID string, from time.Time, status domain.PointStatus) error {
	if m.MarkStatusFromFunc != nil {
		return m.MarkStatusFromFunc(ctx, tx, accountID, from, status)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for d, p := range m.points[accountID] {
		if d.Before(from) {
			continue
		}
		p.Status = status
		m.points[accountID][d] = p
	}
	return nil
}

func (m *MockBalancePointRepository) LockAccount(ctx context.Context, tx usecase.Transaction, accountID string) error {
	if m.LockAccountFunc != nil {
		return m.LockAccountFunc(ctx, tx, accountID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locked[accountID]++
	return nil
}

// LockCount reports how many times the account's advisory lock was taken.
func (m *MockBalancePointRepository) LockCount(accountID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.locked[accountID]
}

// Point returns the stored point for the day, for assertions.
func (m *MockBalancePointRepository) Point(accountID string, day time.Time) (domain.BalancePoint, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.points[accountID][day]
	return p, ok
}

// MockRecomputeJobRepository is a mock implementation of
// RecomputeJobRepository.
type MockRecomputeJobRepository struct {
	mu   sync.RWMutex
	jobs map[string]*domain.RecomputeJob

	UpsertFunc      func(ctx context.Context, tx usecase.Transaction, accountID string, dirtyDate time.Time) (int64, error)
	GetFunc         func(ctx context.Context, accountID string) (*domain.RecomputeJob, error)
	ListPendingFunc func(ctx context.Context, limit int) ([]*domain.RecomputeJob, error)
	CompleteFunc    func(ctx context.Context, tx usecase.Transaction, accountID string, generation int64) (bool, error)
}

func NewMockRecomputeJobRepository() *MockRecomputeJobRepository {
	return &MockRecomputeJobRepository{
		jobs: make(map[string]*domain.RecomputeJob),
	}
}

func (m *MockRecomputeJobRepository) Upsert(ctx context.Context, tx usecase.Transaction, accountID string, dirtyDate time.Time) (int64, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, tx, accountID, dirtyDate)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[accountID]
	if !ok {
		job = &domain.RecomputeJob{AccountID: accountID, EarliestDirtyDate: dirtyDate}
		m.jobs[accountID] = job
	} else if dirtyDate.Before(job.EarliestDirtyDate) {
		job.EarliestDirtyDate = dirtyDate
	}
	job.Generation++
	job.UpdatedAt = time.Now().UTC()
	return job.Generation, nil
}

func (m *MockRecomputeJobRepository) Get(ctx context.Context, accountID string) (*domain.RecomputeJob, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if job, ok := m.jobs[accountID]; ok {
		cp := *job
		return &cp, nil
	}
	return nil, nil
}

func (m *MockRecomputeJobRepository) ListPending(ctx context.Context, limit int) ([]*domain.RecomputeJob, error) {
	if m.ListPendingFunc != nil {
		return m.ListPendingFunc(ctx, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.RecomputeJob
	for _, job := range m.jobs {
		cp := *job
		out = append(out, &cp)
		if len(out) == limit {
			break
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out, nil
}

func (m *MockRecomputeJobRepository) Complete(ctx context.Context, tx usecase.Transaction, accountID string, generation int64) (bool, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, tx, accountID, generation)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[accountID]
	if !ok {
		return false, nil
	}
	if job.Generation != generation {
		return true, nil
	}
	delete(m.jobs, accountID)
	return false, nil
}

// MockTransaction is a mock database transaction.
type MockTransaction struct {
	mu         sync.Mutex
	Committed  bool
	RolledBack bool

	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.Committed {
		m.RolledBack = true
	}
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	mu           sync.Mutex
	Transactions []*MockTransaction

	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &MockTransaction{}
	m.Transactions = append(m.Transactions, tx)
	return tx, nil
}

// MockIDGenerator generates deterministic sequential IDs.
type MockIDGenerator struct {
	mu      sync.Mutex
	counter int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("id-%04d", m.counter)
}

// MockCache is an in-memory Cache.
type MockCache struct {
	mu    sync.RWMutex
	store map[string][]byte

	GetFunc    func(ctx context.Context, key string) ([]byte, error)
	SetFunc    func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteFunc func(ctx context.Context, key string) error
}

func NewMockCache() *MockCache {
	return &MockCache{store: make(map[string][]byte)}
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.store[key]; ok {
		return v, nil
	}
	return nil, nil
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, key)
	return nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
