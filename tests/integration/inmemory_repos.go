package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"teenpay-backend/internal/core/domain"
	"teenpay-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory User Repo ---

type inMemoryUserRepo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*domain.User
}

func newInMemoryUserRepo() *inMemoryUserRepo {
	return &inMemoryUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *inMemoryUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return fmt.Errorf("username already exists")
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *inMemoryUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *inMemoryUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryUserRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *inMemoryUserRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.User, error) {
	return r.GetByID(ctx, id)
}

func (r *inMemoryUserRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balanceCents int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user not found")
	}
	u.BalanceCents = balanceCents
	return nil
}

// --- In-Memory Transaction Repo ---

type inMemoryTransactionRepo struct {
	mu   sync.RWMutex
	txns []domain.Transaction
}

func newInMemoryTransactionRepo() *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{}
}

func (r *inMemoryTransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txns = append(r.txns, *t)
	return nil
}

func (r *inMemoryTransactionRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Transaction
	for _, t := range r.txns {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// all returns a snapshot of every ledger entry, for invariant checks.
func (r *inMemoryTransactionRepo) all() []domain.Transaction {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Transaction(nil), r.txns...)
}

// --- In-Memory Receipt Repo ---

type inMemoryReceiptRepo struct {
	mu       sync.RWMutex
	receipts map[uuid.UUID]*domain.Receipt
	byNo     map[string]uuid.UUID
}

func newInMemoryReceiptRepo() *inMemoryReceiptRepo {
	return &inMemoryReceiptRepo{
		receipts: make(map[uuid.UUID]*domain.Receipt),
		byNo:     make(map[string]uuid.UUID),
	}
}

func (r *inMemoryReceiptRepo) Create(ctx context.Context, tx pgx.Tx, receipt *domain.Receipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byNo[receipt.ReceiptNo]; taken {
		return apperror.ErrDuplicateReceiptNo()
	}
	cp := *receipt
	r.receipts[receipt.ID] = &cp
	r.byNo[receipt.ReceiptNo] = receipt.ID
	return nil
}

func (r *inMemoryReceiptRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Receipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.receipts[id]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (r *inMemoryReceiptRepo) GetByNo(ctx context.Context, receiptNo string) (*domain.Receipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byNo[receiptNo]
	if !ok {
		return nil, nil
	}
	cp := *r.receipts[id]
	return &cp, nil
}

func (r *inMemoryReceiptRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Receipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Receipt
	for _, rec := range r.receipts {
		if rec.PayerUserID == userID || rec.PayeeUserID == userID {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *inMemoryReceiptRepo) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.receipts)
}

// --- In-Memory TopUpRequest Repo ---

type inMemoryTopUpRepo struct {
	mu       sync.RWMutex
	requests map[uuid.UUID]*domain.TopUpRequest
}

func newInMemoryTopUpRepo() *inMemoryTopUpRepo {
	return &inMemoryTopUpRepo{requests: make(map[uuid.UUID]*domain.TopUpRequest)}
}

func (r *inMemoryTopUpRepo) Create(ctx context.Context, req *domain.TopUpRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *req
	r.requests[req.ID] = &cp
	return nil
}

func (r *inMemoryTopUpRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.TopUpRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, nil
	}
	cp := *req
	return &cp, nil
}

func (r *inMemoryTopUpRepo) MarkApproved(ctx context.Context, tx pgx.Tx, id uuid.UUID, approvedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return fmt.Errorf("request not found")
	}
	req.Status = domain.TopUpStatusApproved
	req.ApprovedAt = &approvedAt
	return nil
}

func (r *inMemoryTopUpRepo) ListPendingByParent(ctx context.Context, parentID uuid.UUID) ([]domain.TopUpRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.TopUpRequest
	for _, req := range r.requests {
		if req.ParentID == parentID && req.Status == domain.TopUpStatusPending {
			out = append(out, *req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.After(out[j].RequestedAt) })
	return out, nil
}

// --- In-Memory RefreshToken Repo ---

type inMemoryRefreshTokenRepo struct {
	mu     sync.RWMutex
	tokens map[string]*domain.RefreshToken
}

func newInMemoryRefreshTokenRepo() *inMemoryRefreshTokenRepo {
	return &inMemoryRefreshTokenRepo{tokens: make(map[string]*domain.RefreshToken)}
}

func (r *inMemoryRefreshTokenRepo) Create(ctx context.Context, token *domain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *token
	r.tokens[token.Token] = &cp
	return nil
}

func (r *inMemoryRefreshTokenRepo) CreateInTx(ctx context.Context, tx pgx.Tx, token *domain.RefreshToken) error {
	return r.Create(ctx, token)
}

func (r *inMemoryRefreshTokenRepo) GetByTokenForUpdate(ctx context.Context, tx pgx.Tx, token string) (*domain.RefreshToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tokens[token]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *inMemoryRefreshTokenRepo) Revoke(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.ID == id {
			t.Revoked = true
			return nil
		}
	}
	return fmt.Errorf("token not found")
}

func (r *inMemoryRefreshTokenRepo) RevokeByToken(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tokens[token]; ok {
		t.Revoked = true
	}
	return nil
}

// --- In-Memory School Repo ---

type inMemorySchoolRepo struct {
	mu           sync.RWMutex
	schools      map[uuid.UUID]*domain.School
	affiliations map[uuid.UUID]map[uuid.UUID]bool // userID -> schoolID set
}

func newInMemorySchoolRepo() *inMemorySchoolRepo {
	return &inMemorySchoolRepo{
		schools:      make(map[uuid.UUID]*domain.School),
		affiliations: make(map[uuid.UUID]map[uuid.UUID]bool),
	}
}

func (r *inMemorySchoolRepo) add(s *domain.School) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.schools[s.ID] = &cp
}

func (r *inMemorySchoolRepo) affiliate(userID, schoolID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.affiliations[userID] == nil {
		r.affiliations[userID] = make(map[uuid.UUID]bool)
	}
	r.affiliations[userID][schoolID] = true
}

func (r *inMemorySchoolRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.School, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schools[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *inMemorySchoolRepo) GetByCode(ctx context.Context, code string) (*domain.School, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.schools {
		if s.Code == code {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemorySchoolRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.School, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.School
	for _, id := range ids {
		if s, ok := r.schools[id]; ok {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *inMemorySchoolRepo) IsAffiliated(ctx context.Context, userID, schoolID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.affiliations[userID][schoolID], nil
}

// --- In-Memory Family Repo ---

type inMemoryFamilyRepo struct {
	mu      sync.RWMutex
	parents map[uuid.UUID]uuid.UUID // childID -> parentID
}

func newInMemoryFamilyRepo() *inMemoryFamilyRepo {
	return &inMemoryFamilyRepo{parents: make(map[uuid.UUID]uuid.UUID)}
}

func (r *inMemoryFamilyRepo) link(parentID, childID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parents[childID] = parentID
}

func (r *inMemoryFamilyRepo) ParentOf(ctx context.Context, childID uuid.UUID) (*uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.parents[childID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *inMemoryFamilyRepo) IsLinked(ctx context.Context, parentID, childID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.parents[childID]
	return ok && p == parentID, nil
}

// --- In-Memory Audit Repo ---

type inMemoryAuditRepo struct {
	mu      sync.Mutex
	entries []domain.AuditLog
}

func newInMemoryAuditRepo() *inMemoryAuditRepo {
	return &inMemoryAuditRepo{}
}

func (r *inMemoryAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

// --- In-Memory Transactor ---

// inMemoryTransactor serializes every unit of work behind one mutex,
// which stands in for the row locks the SQL layer takes.
type inMemoryTransactor struct {
	mu sync.Mutex
}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	return &lockedTx{release: func() { t.mu.Unlock() }}, nil
}

// lockedTx is a no-op pgx.Tx that releases the transactor lock on
// Commit or Rollback, whichever comes first.
type lockedTx struct {
	mu       sync.Mutex
	release  func()
	released bool
}

func (t *lockedTx) done() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.released && t.release != nil {
		t.released = true
		t.release()
	}
}

func (t *lockedTx) Begin(ctx context.Context) (pgx.Tx, error) { return &lockedTx{}, nil }
func (t *lockedTx) Commit(ctx context.Context) error          { t.done(); return nil }
func (t *lockedTx) Rollback(ctx context.Context) error        { t.done(); return nil }
func (t *lockedTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *lockedTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *lockedTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *lockedTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *lockedTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *lockedTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *lockedTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *lockedTx) Conn() *pgx.Conn { return nil }
