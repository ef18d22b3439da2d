// Package entity holds the persisted record types and their explicit
// storage metadata. Table and column names live here, next to the
// types, instead of being derived from type names at runtime.
package entity

// RowScanner is the subset of pgx row types the metadata scan
// functions need. Both pgx.Row and pgx.Rows satisfy it.
type RowScanner interface {
	Scan(dest ...any) error
}

// Relation describes how to eager-load a related collection for an
// entity. One-to-many relations are loaded with a batched secondary
// query against Table filtered by ForeignKey. Many-to-many relations
// go through JoinTable instead.
type Relation struct {
	Name    string
	Table   string
	Columns []string

	// ForeignKey is the column on Table referencing the parent id.
	// Set for one-to-many relations.
	ForeignKey string

	// JoinTable joins parents to related rows for many-to-many
	// relations. JoinParentKey and JoinRelatedKey are its columns,
	// RelatedKey is the primary key of Table.
	JoinTable      string
	JoinParentKey  string
	JoinRelatedKey string
	RelatedKey     string
}

// ManyToMany reports whether the relation is loaded through a join
// table.
func (r Relation) ManyToMany() bool {
	return r.JoinTable != ""
}

// Meta binds an entity type to its storage schema: table name, column
// list, and typed scan/identity functions. It is the single source of
// truth consulted by the data-access layer.
type Meta[T any] struct {
	Table    string
	IDColumn string
	Columns  []string

	// Scan reads one row in Columns order into a new entity.
	Scan func(row RowScanner) (*T, error)

	// ID returns the identity of an already-loaded entity.
	ID func(e *T) int64

	// Relations available for eager loading, keyed by name.
	Relations map[string]Relation

	// Attach receives related rows for a relation and distributes
	// them onto the parents. By contract the first column of every
	// row is the parent id; the remaining columns are the relation's
	// Columns.
	Attach func(parents map[int64]*T, relation string, row RowScanner) error
}
