package entity

import "time"

// User is a registered account. Credentials are stored as a bcrypt
// hash, never in the clear. IsActive gates every authenticated
// operation; IsVerified gates login.
type User struct {
	ID             int64
	Email          string
	HashedPassword string
	IsActive       bool
	IsVerified     bool
	IsSuperuser    bool
	CreatedAt      time.Time
}

// Column names for users.
const (
	UserColID             = "id"
	UserColEmail          = "email"
	UserColHashedPassword = "hashed_password"
	UserColIsActive       = "is_active"
	UserColIsVerified     = "is_verified"
	UserColIsSuperuser    = "is_superuser"
	UserColCreatedAt      = "created_at"
)

// UserMeta maps User onto the users table.
var UserMeta = Meta[User]{
	Table:    "users",
	IDColumn: UserColID,
	Columns: []string{
		UserColID,
		UserColEmail,
		UserColHashedPassword,
		UserColIsActive,
		UserColIsVerified,
		UserColIsSuperuser,
		UserColCreatedAt,
	},
	Scan: func(row RowScanner) (*User, error) {
		var u User
		err := row.Scan(
			&u.ID,
			&u.Email,
			&u.HashedPassword,
			&u.IsActive,
			&u.IsVerified,
			&u.IsSuperuser,
			&u.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		return &u, nil
	},
	ID: func(u *User) int64 { return u.ID },
}
