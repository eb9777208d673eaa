package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/vidverse/user-service/internal/model"
)

const userColumns = "id,username,email,full_name,password_hash,avatar_url,cover_url,refresh_token,created_at,updated_at"

// UserRepo persists user records in the 'users' table. The refresh token
// lives as a single nullable column on the user row: overwriting it is how
// a previously issued token gets invalidated, and clearing it is a logout.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user and returns its ID. The caller passes an already
// hashed password; hashing is an explicit service step, not a side effect
// of persistence. Unique-index violations map to ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u model.User) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, full_name, password_hash, avatar_url, cover_url) VALUES (?,?,?,?,?,?)",
		u.Username, u.Email, u.FullName, u.PasswordHash, u.AvatarURL, u.CoverURL)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// GetByUsername fetches a user by normalized username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", username))
}

// GetByUsernameOrEmail fetches the first user matching either identifier.
// Both values are normalized before matching; an empty identifier never
// matches because the columns are NOT NULL and non-empty.
func (r *UserRepo) GetByUsernameOrEmail(ctx context.Context, username, email string) (model.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? OR email=? LIMIT 1",
		username, email))
}

// UpdateRefreshToken overwrites the stored refresh token for a user. Only
// the one column changes; last write wins when concurrent sessions race.
func (r *UserRepo) UpdateRefreshToken(ctx context.Context, id uint64, token string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET refresh_token=? WHERE id=?", token, id)
	return err
}

// ClearRefreshToken removes the stored refresh token. Clearing an already
// cleared token is a no-op, which makes logout idempotent.
func (r *UserRepo) ClearRefreshToken(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET refresh_token=NULL WHERE id=?", id)
	return err
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var (
		u       model.User
		refresh sql.NullString
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.PasswordHash,
		&u.AvatarURL, &u.CoverURL, &refresh, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	u.RefreshToken = refresh.String
	return u, nil
}
