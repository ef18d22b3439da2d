package entity_test

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlazarev/redirector/internal/entity"
)

// fakeRow hands out preset values in column order.
type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}

	for i, d := range dest {
		switch target := d.(type) {
		case *int64:
			*target = r.values[i].(int64)
		case *string:
			*target = r.values[i].(string)
		case *bool:
			*target = r.values[i].(bool)
		case *time.Time:
			*target = r.values[i].(time.Time)
		}
	}

	return nil
}

func TestRedirectURLMeta(t *testing.T) {
	t.Run("scans a row in column order", func(t *testing.T) {
		row := fakeRow{values: []any{int64(3), "/some/path"}}

		r, err := entity.RedirectURLMeta.Scan(row)

		require.NoError(t, err)
		assert.Equal(t, int64(3), r.ID)
		assert.Equal(t, "/some/path", r.URL)
		assert.Equal(t, int64(3), entity.RedirectURLMeta.ID(r))
	})

	t.Run("propagates scan errors", func(t *testing.T) {
		_, err := entity.RedirectURLMeta.Scan(fakeRow{err: errors.New("bad row")})

		assert.Error(t, err)
	})

	t.Run("selects one column per struct field", func(t *testing.T) {
		assert.Equal(t,
			[]string{entity.RedirectColID, entity.RedirectColURL},
			entity.RedirectURLMeta.Columns)
		assert.Equal(t, entity.RedirectColID, entity.RedirectURLMeta.IDColumn)
	})
}

func TestUserMeta(t *testing.T) {
	t.Run("scans a row in column order", func(t *testing.T) {
		created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		row := fakeRow{values: []any{
			int64(9), "user@example.com", "hash", true, false, false, created,
		}}

		u, err := entity.UserMeta.Scan(row)

		require.NoError(t, err)
		assert.Equal(t, int64(9), u.ID)
		assert.Equal(t, "user@example.com", u.Email)
		assert.Equal(t, "hash", u.HashedPassword)
		assert.True(t, u.IsActive)
		assert.False(t, u.IsVerified)
		assert.Equal(t, created, u.CreatedAt)
		assert.Equal(t, int64(9), entity.UserMeta.ID(u))
	})

	t.Run("selects one column per struct field", func(t *testing.T) {
		assert.Len(t, entity.UserMeta.Columns, 7)
		assert.Equal(t, entity.UserColID, entity.UserMeta.IDColumn)
	})
}

func TestURLPattern(t *testing.T) {
	re := regexp.MustCompile(entity.URLPattern)

	t.Run("accepts well-formed paths", func(t *testing.T) {
		for _, path := range []string{
			"/a",
			"/luchniy/magazin/123",
			"/employee?age=10&prof='super'",
			"/file.name-v2",
		} {
			assert.True(t, re.MatchString(path), path)
		}
	})

	t.Run("rejects malformed paths", func(t *testing.T) {
		for _, path := range []string{
			"",
			"/",
			"no-leading-slash",
			"/space not allowed",
			"/<script>",
			"/percent%20encoded",
		} {
			assert.False(t, re.MatchString(path), path)
		}
	})
}
