package store

import (
	"context"
	"sync"
	"time"

	"github.com/mlazarev/redirector/internal/dao"
	"github.com/mlazarev/redirector/internal/entity"
)

// MemoryRedirectStore is an in-memory redirect store used in tests.
// It mirrors the Postgres repository's contract, including the unique
// constraint on the path.
type MemoryRedirectStore struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*entity.RedirectURL
	byURL  map[string]int64
}

// NewMemoryRedirectStore creates an empty in-memory redirect store.
func NewMemoryRedirectStore() *MemoryRedirectStore {
	return &MemoryRedirectStore{
		byID:  make(map[int64]*entity.RedirectURL),
		byURL: make(map[string]int64),
	}
}

func (m *MemoryRedirectStore) List(_ context.Context) ([]*entity.RedirectURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]*entity.RedirectURL, 0, len(m.byID))
	for _, r := range m.byID {
		copied := *r
		items = append(items, &copied)
	}

	return items, nil
}

func (m *MemoryRedirectStore) GetByID(_ context.Context, id int64) (*entity.RedirectURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.byID[id]
	if !ok {
		return nil, dao.ErrNotFound
	}

	copied := *r

	return &copied, nil
}

func (m *MemoryRedirectStore) Create(_ context.Context, url string) (*entity.RedirectURL, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byURL[url]; exists {
		return nil, dao.ErrConflict
	}

	m.nextID++
	r := &entity.RedirectURL{ID: m.nextID, URL: url}
	m.byID[r.ID] = r
	m.byURL[url] = r.ID

	copied := *r

	return &copied, nil
}

func (m *MemoryRedirectStore) DeleteByID(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.byID[id]
	if !ok {
		return dao.ErrNotFound
	}

	delete(m.byURL, r.URL)
	delete(m.byID, id)

	return nil
}

// MemoryUserStore is an in-memory user store used in tests.
type MemoryUserStore struct {
	mu      sync.RWMutex
	nextID  int64
	byID    map[int64]*entity.User
	byEmail map[string]int64
}

// NewMemoryUserStore creates an empty in-memory user store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		byID:    make(map[int64]*entity.User),
		byEmail: make(map[string]int64),
	}
}

func (m *MemoryUserStore) CreateUser(_ context.Context, email, hashedPassword string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byEmail[email]; exists {
		return nil, dao.ErrConflict
	}

	m.nextID++
	u := &entity.User{
		ID:             m.nextID,
		Email:          email,
		HashedPassword: hashedPassword,
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
	}
	m.byID[u.ID] = u
	m.byEmail[email] = u.ID

	copied := *u

	return &copied, nil
}

func (m *MemoryUserStore) UserByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byEmail[email]
	if !ok {
		return nil, dao.ErrNotFound
	}

	copied := *m.byID[id]

	return &copied, nil
}

func (m *MemoryUserStore) UserByID(_ context.Context, id int64) (*entity.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.byID[id]
	if !ok {
		return nil, dao.ErrNotFound
	}

	copied := *u

	return &copied, nil
}

func (m *MemoryUserStore) SetVerified(_ context.Context, u *entity.User) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.byID[u.ID]
	if !ok {
		return nil, dao.ErrNotFound
	}

	stored.IsVerified = true
	copied := *stored

	return &copied, nil
}

func (m *MemoryUserStore) SetPassword(_ context.Context, u *entity.User, hashedPassword string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.byID[u.ID]
	if !ok {
		return nil, dao.ErrNotFound
	}

	stored.HashedPassword = hashedPassword
	copied := *stored

	return &copied, nil
}

// Deactivate flips the active flag off; only tests need it.
func (m *MemoryUserStore) Deactivate(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if u, ok := m.byID[id]; ok {
		u.IsActive = false
	}
}

type memoryToken struct {
	userID    int64
	expiresAt time.Time
}

// MemoryTokenStore is an in-memory token store used in tests.
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]memoryToken
}

// NewMemoryTokenStore creates an empty in-memory token store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[string]memoryToken)}
}

func (m *MemoryTokenStore) Save(_ context.Context, kind, token string, userID int64, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tokens[kind+":"+token] = memoryToken{
		userID:    userID,
		expiresAt: time.Now().Add(ttl),
	}

	return nil
}

func (m *MemoryTokenStore) Consume(_ context.Context, kind, token string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := kind + ":" + token

	t, ok := m.tokens[key]
	if !ok || time.Now().After(t.expiresAt) {
		return 0, dao.ErrNotFound
	}

	delete(m.tokens, key)

	return t.userID, nil
}
