package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/smartcommunity/portal/internal/domain"
)

var (
	_ UserRepository    = (*MemoryUserRepository)(nil)
	_ VisitorRepository = (*MemoryVisitorRepository)(nil)
)

// MemoryUserRepository keeps accounts in process. It backs the API when no
// Postgres DSN is configured and serves as the test double for services.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	table map[string]*domain.User
	now   func() time.Time
}

// NewMemoryUserRepository creates an empty store.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{table: make(map[string]*domain.User), now: time.Now}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(user.Email)
	for _, existing := range r.table {
		if existing.Email == email {
			return ErrDuplicate
		}
	}

	now := r.now()
	user.ID = uuid.NewString()
	user.Email = email
	user.CreatedAt = now
	user.UpdatedAt = now
	stored := *user
	r.table[user.ID] = &stored
	return nil
}

func (r *MemoryUserRepository) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.table[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	user.Email = existing.Email
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = r.now()
	stored := *user
	r.table[user.ID] = &stored
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if user, ok := r.table[id]; ok {
		cp := *user
		return &cp, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = strings.ToLower(email)
	for _, user := range r.table {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *MemoryUserRepository) List(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]domain.User, 0, len(r.table))
	for _, user := range r.table {
		users = append(users, *user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (r *MemoryUserRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.table), nil
}

func (r *MemoryUserRepository) summary(id string) (domain.ResidentSummary, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.table[id]
	if !ok {
		return domain.ResidentSummary{}, false
	}
	return domain.ResidentSummary{
		ID:          user.ID,
		FullName:    user.FullName,
		Block:       user.Block,
		HouseNumber: user.HouseNumber,
		Phone:       user.Phone,
	}, true
}

// MemoryVisitorRepository keeps visitor records in process. A single mutex
// covers the pending check and the entry stamp, which makes consumption atomic.
type MemoryVisitorRepository struct {
	mu      sync.Mutex
	users   *MemoryUserRepository
	records []*domain.VisitorRecord
	byToken map[string]*domain.VisitorRecord
	byID    map[string]*domain.VisitorRecord
	now     func() time.Time
}

// NewMemoryVisitorRepository creates an empty store joined to users for roster rows.
func NewMemoryVisitorRepository(users *MemoryUserRepository) *MemoryVisitorRepository {
	return &MemoryVisitorRepository{
		users:   users,
		byToken: make(map[string]*domain.VisitorRecord),
		byID:    make(map[string]*domain.VisitorRecord),
		now:     time.Now,
	}
}

func (r *MemoryVisitorRepository) Create(_ context.Context, visitor *domain.VisitorRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byToken[visitor.Token]; exists {
		return ErrDuplicate
	}

	now := r.now()
	visitor.ID = uuid.NewString()
	visitor.CreatedAt = now
	visitor.UpdatedAt = now
	stored := *visitor
	r.records = append(r.records, &stored)
	r.byToken[stored.Token] = &stored
	r.byID[stored.ID] = &stored
	return nil
}

func (r *MemoryVisitorRepository) GetByID(_ context.Context, id string) (*domain.VisitorRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.byID[id]; ok {
		return copyVisitor(v), nil
	}
	return nil, pgx.ErrNoRows
}

func (r *MemoryVisitorRepository) ListByResident(_ context.Context, residentID string) ([]domain.VisitorRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.VisitorRecord
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].ResidentID == residentID {
			out = append(out, *copyVisitor(r.records[i]))
		}
	}
	return out, nil
}

func (r *MemoryVisitorRepository) ListPending(_ context.Context, day time.Time) ([]domain.PendingVisitor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.PendingVisitor
	for _, v := range r.records {
		if v.EntryTime != nil || !sameDay(v.ExpectedDate, day) {
			continue
		}
		row := domain.PendingVisitor{VisitorRecord: *copyVisitor(v)}
		if r.users != nil {
			row.Resident, _ = r.users.summary(v.ResidentID)
		}
		out = append(out, row)
	}
	return out, nil
}

func (r *MemoryVisitorRepository) ConsumeToken(_ context.Context, token string, checkIn domain.CheckIn) (*domain.VisitorRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.consume(r.byToken[token], checkIn)
}

func (r *MemoryVisitorRepository) ConsumeByID(_ context.Context, id string, day time.Time, checkIn domain.CheckIn) (*domain.VisitorRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.byID[id]
	if v != nil && !sameDay(v.ExpectedDate, day) {
		return nil, pgx.ErrNoRows
	}
	return r.consume(v, checkIn)
}

// consume must be called with r.mu held.
func (r *MemoryVisitorRepository) consume(v *domain.VisitorRecord, checkIn domain.CheckIn) (*domain.VisitorRecord, error) {
	if v == nil || v.EntryTime != nil {
		return nil, pgx.ErrNoRows
	}
	at := checkIn.At
	tag := checkIn.ActorTag
	actorID := checkIn.ActorID
	v.EntryTime = &at
	v.VerifiedBy = &tag
	v.VerifiedByID = &actorID
	v.UpdatedAt = r.now()
	return copyVisitor(v), nil
}

func copyVisitor(v *domain.VisitorRecord) *domain.VisitorRecord {
	cp := *v
	if v.EntryTime != nil {
		t := *v.EntryTime
		cp.EntryTime = &t
	}
	if v.ExitTime != nil {
		t := *v.ExitTime
		cp.ExitTime = &t
	}
	if v.VerifiedBy != nil {
		s := *v.VerifiedBy
		cp.VerifiedBy = &s
	}
	if v.VerifiedByID != nil {
		s := *v.VerifiedByID
		cp.VerifiedByID = &s
	}
	return &cp
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
