package store

import (
	"context"
	"time"

	"github.com/mlazarev/redirector/internal/dao"
	"github.com/mlazarev/redirector/internal/entity"
)

// RedirectRepository is the Postgres-backed store for redirect
// records, built on the generic DAO.
type RedirectRepository struct {
	dao *dao.DAO[entity.RedirectURL]
}

// NewRedirectRepository creates a redirect repository over the given
// connection pool.
func NewRedirectRepository(db dao.DB) *RedirectRepository {
	return &RedirectRepository{dao: dao.New(db, entity.RedirectURLMeta)}
}

// List returns all redirect records in store order.
func (r *RedirectRepository) List(ctx context.Context) ([]*entity.RedirectURL, error) {
	return r.dao.FindAll(ctx, nil)
}

// GetByID returns the record with the given id, or dao.ErrNotFound.
func (r *RedirectRepository) GetByID(ctx context.Context, id int64) (*entity.RedirectURL, error) {
	return r.dao.FindOne(ctx, []dao.Filter{dao.Eq(entity.RedirectColID, id)})
}

// Create inserts a new redirect path. A duplicate path surfaces as
// dao.ErrConflict.
func (r *RedirectRepository) Create(ctx context.Context, url string) (*entity.RedirectURL, error) {
	return r.dao.Create(ctx, []dao.Field{dao.Set(entity.RedirectColURL, url)})
}

// DeleteByID removes the record with the given id, or returns
// dao.ErrNotFound.
func (r *RedirectRepository) DeleteByID(ctx context.Context, id int64) error {
	return r.dao.DeleteByID(ctx, id)
}

// UserRepository is the Postgres-backed store for user accounts.
type UserRepository struct {
	dao *dao.DAO[entity.User]
}

// NewUserRepository creates a user repository over the given
// connection pool.
func NewUserRepository(db dao.DB) *UserRepository {
	return &UserRepository{dao: dao.New(db, entity.UserMeta)}
}

// CreateUser inserts a new active, unverified account. A duplicate
// email surfaces as dao.ErrConflict.
func (r *UserRepository) CreateUser(ctx context.Context, email, hashedPassword string) (*entity.User, error) {
	return r.dao.Create(ctx, []dao.Field{
		dao.Set(entity.UserColEmail, email),
		dao.Set(entity.UserColHashedPassword, hashedPassword),
		dao.Set(entity.UserColIsActive, true),
		dao.Set(entity.UserColIsVerified, false),
		dao.Set(entity.UserColIsSuperuser, false),
		dao.Set(entity.UserColCreatedAt, time.Now().UTC()),
	})
}

// UserByEmail returns the account registered under email, or
// dao.ErrNotFound.
func (r *UserRepository) UserByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.dao.FindOne(ctx, []dao.Filter{dao.Eq(entity.UserColEmail, email)})
}

// UserByID returns the account with the given id, or dao.ErrNotFound.
func (r *UserRepository) UserByID(ctx context.Context, id int64) (*entity.User, error) {
	return r.dao.FindOne(ctx, []dao.Filter{dao.Eq(entity.UserColID, id)})
}

// SetVerified marks the account's email as verified.
func (r *UserRepository) SetVerified(ctx context.Context, u *entity.User) (*entity.User, error) {
	return r.dao.Update(ctx, u, []dao.Field{dao.Set(entity.UserColIsVerified, true)})
}

// SetPassword replaces the account's credential hash.
func (r *UserRepository) SetPassword(ctx context.Context, u *entity.User, hashedPassword string) (*entity.User, error) {
	return r.dao.Update(ctx, u, []dao.Field{dao.Set(entity.UserColHashedPassword, hashedPassword)})
}
