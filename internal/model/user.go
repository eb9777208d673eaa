package model

import "time"

// User represents an application user record as stored in the
// `users` table. Each field corresponds to a column in the
// database. The password hash and the currently valid refresh
// token are internal state and must never be serialized out of
// the service; handlers return a PublicUser instead.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique handle, stored lowercased and trimmed.
//  Email        – unique email address, stored lowercased and trimmed.
//  FullName     – display name.
//  PasswordHash – bcrypt hashed password.
//  AvatarURL    – URL of the uploaded avatar image (mandatory).
//  CoverURL     – URL of the uploaded cover image ("" when absent).
//  RefreshToken – the single currently valid refresh token, empty
//                 when the user is logged out. Overwritten on every
//                 login and renewal so at most one is valid per user.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	Email        string    // users.email
	FullName     string    // users.full_name
	PasswordHash string    // users.password_hash
	AvatarURL    string    // users.avatar_url
	CoverURL     string    // users.cover_url
	RefreshToken string    // users.refresh_token (empty when cleared)
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// PublicUser is the externally visible view of a User. It omits the
// password hash and refresh token by construction, so handlers can
// serialize it directly.
type PublicUser struct {
	ID        uint64    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	AvatarURL string    `json:"avatar_url"`
	CoverURL  string    `json:"cover_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Public returns the sanitized view of the user.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		AvatarURL: u.AvatarURL,
		CoverURL:  u.CoverURL,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
