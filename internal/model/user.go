package model

import "time"

// UserFields holds the caller-supplied attributes of a user. The store
// stamps ID and CreatedAt on insert. PasswordHash is a bcrypt digest; the
// plain password never reaches the store.
type UserFields struct {
	Username     string  `json:"username"` // users.username
	Email        string  `json:"email"`    // users.email
	PasswordHash string  `json:"-"`        // users.password_hash
	FullName     string  `json:"fullName"` // users.full_name
	Bio          *string `json:"bio"`      // users.bio (nullable)
	Avatar       *string `json:"avatar"`   // users.avatar (nullable)
	IsHost       bool    `json:"isHost"`   // users.is_host
}

// User is a marketplace account. Hosts own listings, renters book them;
// the same account can be both.
type User struct {
	ID uint64 `json:"id"` // users.id
	UserFields
	CreatedAt time.Time `json:"createdAt"` // users.created_at
}

// Clone returns a deep copy of u.
func (u User) Clone() User {
	u.Bio = clonePtr(u.Bio)
	u.Avatar = clonePtr(u.Avatar)
	return u
}

// UserPatch is a partial update. Nil fields are left untouched.
type UserPatch struct {
	Username     *string
	Email        *string
	PasswordHash *string
	FullName     *string
	Bio          *string
	Avatar       *string
	IsHost       *bool
}

// Apply merges the present fields of p onto u.
func (p UserPatch) Apply(u *User) {
	setIf(&u.Username, p.Username)
	setIf(&u.Email, p.Email)
	setIf(&u.PasswordHash, p.PasswordHash)
	setIf(&u.FullName, p.FullName)
	if p.Bio != nil {
		u.Bio = clonePtr(p.Bio)
	}
	if p.Avatar != nil {
		u.Avatar = clonePtr(p.Avatar)
	}
	setIf(&u.IsHost, p.IsHost)
}
