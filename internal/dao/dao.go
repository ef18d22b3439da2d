// Package dao implements a generic data-access object over pgx. A DAO
// is bound to one entity type's storage metadata at construction and
// provides filtered reads with optional relation eager-loading, plus
// create/update/delete with integrity-violation translation.
package dao

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mlazarev/redirector/internal/entity"
)

// integrityViolationClass is the SQLSTATE class covering unique,
// foreign-key, and check constraint violations.
const integrityViolationClass = "23"

// DB is the subset of pgxpool.Pool the DAO needs. It is also
// satisfied by pgx.Tx, so a DAO call can participate in a caller's
// transaction.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// DAO performs CRUD for one entity type.
type DAO[T any] struct {
	db   DB
	meta entity.Meta[T]
}

// New binds a DAO to an entity's storage metadata.
func New[T any](db DB, meta entity.Meta[T]) *DAO[T] {
	return &DAO[T]{db: db, meta: meta}
}

// QueryOption adds eager-load hints to FindOne and FindAll.
type QueryOption func(*queryOptions)

type queryOptions struct {
	oneToMany  []string
	manyToMany []string
}

// WithOneToMany requests a batched secondary query for the named
// one-to-many relations.
func WithOneToMany(names ...string) QueryOption {
	return func(o *queryOptions) {
		o.oneToMany = append(o.oneToMany, names...)
	}
}

// WithManyToMany requests a joined query through the link table for
// the named many-to-many relations.
func WithManyToMany(names ...string) QueryOption {
	return func(o *queryOptions) {
		o.manyToMany = append(o.manyToMany, names...)
	}
}

// FindOne returns the entity matching all filters, or ErrNotFound.
// When several rows match, the first one wins (LIMIT 1); callers that
// need a guarantee should filter on a unique column.
func (d *DAO[T]) FindOne(ctx context.Context, filters []Filter, opts ...QueryOption) (*T, error) {
	query, args := buildSelect(d.meta.Table, d.meta.Columns, filters, 1)

	item, err := d.meta.Scan(d.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	if err := d.loadRelations(ctx, []*T{item}, opts); err != nil {
		return nil, err
	}

	return item, nil
}

// FindAll returns every entity matching all filters. No ordering is
// applied; callers must not depend on result order.
func (d *DAO[T]) FindAll(ctx context.Context, filters []Filter, opts ...QueryOption) ([]*T, error) {
	query, args := buildSelect(d.meta.Table, d.meta.Columns, filters, 0)

	rows, err := d.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*T

	for rows.Next() {
		item, err := d.meta.Scan(rows)
		if err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := d.loadRelations(ctx, items, opts); err != nil {
		return nil, err
	}

	return items, nil
}

// Create inserts a new entity from the given field assignments inside
// its own transaction and returns the stored record with its assigned
// id. Integrity violations roll back and surface as ErrConflict.
func (d *DAO[T]) Create(ctx context.Context, fields []Field) (*T, error) {
	query, args := buildInsert(d.meta.Table, fields, d.meta.Columns)

	item, err := d.inTx(ctx, query, args)
	if err != nil {
		return nil, err
	}

	return item, nil
}

// Update assigns the given fields on an already-loaded entity and
// commits. There is no optimistic-concurrency check: the last writer
// wins.
func (d *DAO[T]) Update(ctx context.Context, e *T, fields []Field) (*T, error) {
	query, args := buildUpdate(d.meta.Table, d.meta.IDColumn, d.meta.ID(e), fields, d.meta.Columns)

	item, err := d.inTx(ctx, query, args)
	if err != nil {
		return nil, err
	}

	return item, nil
}

// Delete removes the entity. Deleting an entity that no longer exists
// returns ErrNotFound.
func (d *DAO[T]) Delete(ctx context.Context, e *T) error {
	return d.DeleteByID(ctx, d.meta.ID(e))
}

// DeleteByID removes the entity with the given identity.
func (d *DAO[T]) DeleteByID(ctx context.Context, id int64) error {
	query, args := buildDelete(d.meta.Table, d.meta.IDColumn, id)

	tag, err := d.db.Exec(ctx, query, args...)
	if err != nil {
		return translateError(err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// inTx runs a single RETURNING statement in its own transaction and
// scans the resulting row.
func (d *DAO[T]) inTx(ctx context.Context, query string, args []any) (*T, error) {
	tx, err := d.db.Begin(ctx)
	if err != nil {
		return nil, err
	}

	item, err := d.meta.Scan(tx.QueryRow(ctx, query, args...))
	if err != nil {
		_ = tx.Rollback(ctx)

		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}

		return nil, translateError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, translateError(err)
	}

	return item, nil
}

func (d *DAO[T]) loadRelations(ctx context.Context, items []*T, opts []QueryOption) error {
	var o queryOptions
	for _, opt := range opts {
		opt(&o)
	}

	if len(items) == 0 || (len(o.oneToMany) == 0 && len(o.manyToMany) == 0) {
		return nil
	}

	parents := make(map[int64]*T, len(items))
	parentIDs := make([]int64, 0, len(items))

	for _, item := range items {
		id := d.meta.ID(item)
		parents[id] = item
		parentIDs = append(parentIDs, id)
	}

	for _, name := range o.oneToMany {
		rel, err := d.relation(name)
		if err != nil {
			return err
		}

		query, args := buildOneToMany(rel, parentIDs)
		if err := d.attachRows(ctx, parents, name, query, args); err != nil {
			return err
		}
	}

	for _, name := range o.manyToMany {
		rel, err := d.relation(name)
		if err != nil {
			return err
		}

		query, args := buildManyToMany(rel, parentIDs)
		if err := d.attachRows(ctx, parents, name, query, args); err != nil {
			return err
		}
	}

	return nil
}

func (d *DAO[T]) relation(name string) (entity.Relation, error) {
	rel, ok := d.meta.Relations[name]
	if !ok {
		return entity.Relation{}, errors.New("unknown relation: " + name)
	}

	return rel, nil
}

func (d *DAO[T]) attachRows(ctx context.Context, parents map[int64]*T, relation, query string, args []any) error {
	rows, err := d.db.Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := d.meta.Attach(parents, relation, rows); err != nil {
			return err
		}
	}

	return rows.Err()
}

func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, integrityViolationClass) {
		return ErrConflict
	}

	return err
}
