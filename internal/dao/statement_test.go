package dao

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mlazarev/redirector/internal/entity"
)

func TestBuildSelect(t *testing.T) {
	t.Run("no filters, no limit", func(t *testing.T) {
		sql, args := buildSelect("redirecturls", []string{"id", "url"}, nil, 0)

		assert.Equal(t, "SELECT id, url FROM redirecturls", sql)
		assert.Empty(t, args)
	})

	t.Run("single filter with limit", func(t *testing.T) {
		sql, args := buildSelect("redirecturls", []string{"id", "url"},
			[]Filter{Eq("id", int64(7))}, 1)

		assert.Equal(t, "SELECT id, url FROM redirecturls WHERE id = $1 LIMIT 1", sql)
		assert.Equal(t, []any{int64(7)}, args)
	})

	t.Run("multiple filters are ANDed in order", func(t *testing.T) {
		sql, args := buildSelect("users", []string{"id"},
			[]Filter{Eq("email", "a@b.c"), Eq("is_active", true)}, 0)

		assert.Equal(t, "SELECT id FROM users WHERE email = $1 AND is_active = $2", sql)
		assert.Equal(t, []any{"a@b.c", true}, args)
	})
}

func TestBuildOneToMany(t *testing.T) {
	rel := entity.Relation{
		Name:       "visits",
		Table:      "visits",
		Columns:    []string{"id", "seen_at"},
		ForeignKey: "url_id",
	}

	sql, args := buildOneToMany(rel, []int64{1, 2, 3})

	assert.Equal(t,
		"SELECT url_id, id, seen_at FROM visits WHERE url_id = ANY($1)", sql)
	assert.Equal(t, []any{[]int64{1, 2, 3}}, args)
}

func TestBuildManyToMany(t *testing.T) {
	rel := entity.Relation{
		Name:           "tags",
		Table:          "tags",
		Columns:        []string{"id", "label"},
		JoinTable:      "url_tags",
		JoinParentKey:  "url_id",
		JoinRelatedKey: "tag_id",
		RelatedKey:     "id",
	}

	sql, args := buildManyToMany(rel, []int64{5})

	assert.Equal(t,
		"SELECT j.url_id, r.id, r.label FROM url_tags j JOIN tags r ON r.id = j.tag_id WHERE j.url_id = ANY($1)",
		sql)
	assert.Equal(t, []any{[]int64{5}}, args)
}

func TestBuildInsert(t *testing.T) {
	sql, args := buildInsert("redirecturls",
		[]Field{Set("url", "/path")},
		[]string{"id", "url"})

	assert.Equal(t,
		"INSERT INTO redirecturls (url) VALUES ($1) RETURNING id, url", sql)
	assert.Equal(t, []any{"/path"}, args)
}

func TestBuildUpdate(t *testing.T) {
	sql, args := buildUpdate("users", "id", 9,
		[]Field{Set("is_verified", true), Set("hashed_password", "h")},
		[]string{"id", "email"})

	assert.Equal(t,
		"UPDATE users SET is_verified = $1, hashed_password = $2 WHERE id = $3 RETURNING id, email",
		sql)
	assert.Equal(t, []any{true, "h", int64(9)}, args)
}

func TestBuildDelete(t *testing.T) {
	sql, args := buildDelete("redirecturls", "id", 4)

	assert.Equal(t, "DELETE FROM redirecturls WHERE id = $1", sql)
	assert.Equal(t, []any{int64(4)}, args)
}
