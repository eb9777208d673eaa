package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vidverse/user-service/internal/model"
	"github.com/vidverse/user-service/internal/queue"
	"github.com/vidverse/user-service/internal/repository"
	"github.com/vidverse/user-service/internal/utils"
)

// fakeStore is an in-memory UserStore honoring the same contract as the
// MySQL repository: sql.ErrNoRows on a miss, repository.ErrDuplicate on a
// unique violation.
type fakeStore struct {
	users  map[uint64]model.User
	nextID uint64
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[uint64]model.User{}, nextID: 1}
}

func (f *fakeStore) Create(_ context.Context, u model.User) (uint64, error) {
	for _, e := range f.users {
		if e.Username == u.Username || e.Email == u.Email {
			return 0, repository.ErrDuplicate
		}
	}
	u.ID = f.nextID
	f.nextID++
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	f.users[u.ID] = u
	return u.ID, nil
}

func (f *fakeStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (f *fakeStore) GetByUsername(_ context.Context, username string) (model.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, sql.ErrNoRows
}

func (f *fakeStore) GetByUsernameOrEmail(_ context.Context, username, email string) (model.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range f.users {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			return u, nil
		}
	}
	return model.User{}, sql.ErrNoRows
}

func (f *fakeStore) UpdateRefreshToken(_ context.Context, id uint64, token string) error {
	u, ok := f.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.RefreshToken = token
	f.users[id] = u
	return nil
}

func (f *fakeStore) ClearRefreshToken(_ context.Context, id uint64) error {
	u, ok := f.users[id]
	if !ok {
		return nil // clearing a missing row affects zero rows, not an error
	}
	u.RefreshToken = ""
	f.users[id] = u
	return nil
}

// fakeUploader maps local paths to URLs; paths listed in fail return an
// error instead.
type fakeUploader struct {
	fail map[string]bool
}

func (f *fakeUploader) Upload(_ context.Context, localPath string) (string, error) {
	if localPath == "" {
		return "", nil
	}
	if f.fail[localPath] {
		return "", errors.New("bucket unreachable")
	}
	return "https://cdn.test/" + strings.TrimPrefix(localPath, "/"), nil
}

type fakeEvents struct {
	published []queue.UserRegisteredEvent
}

func (f *fakeEvents) PublishUserRegistered(_ context.Context, ev queue.UserRegisteredEvent) error {
	f.published = append(f.published, ev)
	return nil
}

func newTestService(t *testing.T) (*AuthService, *fakeStore, *fakeUploader, *fakeEvents) {
	t.Helper()
	store := newFakeStore()
	up := &fakeUploader{fail: map[string]bool{}}
	events := &fakeEvents{}
	signer := utils.NewTokenSigner(utils.TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	})
	return NewAuthService(store, up, signer, events, bcrypt.MinCost), store, up, events
}

func register(t *testing.T, svc *AuthService) model.PublicUser {
	t.Helper()
	u, err := svc.Register(context.Background(), RegisterInput{
		Username:   "Ada",
		Email:      "Ada@x.com",
		FullName:   "Ada L",
		Password:   "s3cret",
		AvatarPath: "/tmp/avatar.png",
	})
	require.NoError(t, err)
	return u
}

func kindOf(t *testing.T, err error) Kind {
	t.Helper()
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	return svcErr.Kind
}

func TestRegister_Success(t *testing.T) {
	svc, store, _, events := newTestService(t)

	u := register(t, svc)

	require.Equal(t, "ada", u.Username, "username is persisted lowercased")
	require.Equal(t, "ada@x.com", u.Email)
	require.Equal(t, "https://cdn.test/tmp/avatar.png", u.AvatarURL)
	require.Empty(t, u.CoverURL)

	stored := store.users[u.ID]
	require.NotEqual(t, "s3cret", stored.PasswordHash, "plaintext must never be stored")
	require.True(t, utils.VerifyPassword(stored.PasswordHash, "s3cret"))
	require.Empty(t, stored.RefreshToken, "registration does not open a session")

	require.Len(t, events.published, 1)
	require.Equal(t, "ada", events.published[0].Username)
}

func TestRegister_WithCover(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	u, err := svc.Register(context.Background(), RegisterInput{
		Username:   "ada",
		Email:      "ada@x.com",
		FullName:   "Ada L",
		Password:   "s3cret",
		AvatarPath: "/tmp/avatar.png",
		CoverPath:  "/tmp/cover.png",
	})
	require.NoError(t, err)
	require.Equal(t, "https://cdn.test/tmp/cover.png", u.CoverURL)
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	cases := []struct {
		name string
		in   RegisterInput
	}{
		{"empty username", RegisterInput{Email: "a@x.com", FullName: "A", Password: "p", AvatarPath: "/tmp/a"}},
		{"blank full name", RegisterInput{Username: "a", Email: "a@x.com", FullName: "   ", Password: "p", AvatarPath: "/tmp/a"}},
		{"missing password", RegisterInput{Username: "a", Email: "a@x.com", FullName: "A", AvatarPath: "/tmp/a"}},
		{"bad email", RegisterInput{Username: "a", Email: "not-an-email", FullName: "A", Password: "p", AvatarPath: "/tmp/a"}},
		{"missing avatar", RegisterInput{Username: "a", Email: "a@x.com", FullName: "A", Password: "p"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.in)
			require.Equal(t, KindValidation, kindOf(t, err))
		})
	}
}

func TestRegister_Conflict(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	register(t, svc)

	// Colliding username.
	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "ADA", Email: "other@x.com", FullName: "Other", Password: "p", AvatarPath: "/tmp/a.png",
	})
	require.Equal(t, KindConflict, kindOf(t, err))

	// Colliding email.
	_, err = svc.Register(context.Background(), RegisterInput{
		Username: "other", Email: "ada@x.com", FullName: "Other", Password: "p", AvatarPath: "/tmp/a.png",
	})
	require.Equal(t, KindConflict, kindOf(t, err))
}

func TestRegister_AvatarUploadFails(t *testing.T) {
	svc, store, up, _ := newTestService(t)
	up.fail["/tmp/avatar.png"] = true

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "ada", Email: "ada@x.com", FullName: "Ada L", Password: "s3cret", AvatarPath: "/tmp/avatar.png",
	})
	require.Equal(t, KindUpload, kindOf(t, err))
	require.Empty(t, store.users, "no partial record on upload failure")
}

func TestRegister_CoverUploadFailureIsNonFatal(t *testing.T) {
	svc, _, up, _ := newTestService(t)
	up.fail["/tmp/cover.png"] = true

	u, err := svc.Register(context.Background(), RegisterInput{
		Username: "ada", Email: "ada@x.com", FullName: "Ada L", Password: "s3cret",
		AvatarPath: "/tmp/avatar.png", CoverPath: "/tmp/cover.png",
	})
	require.NoError(t, err)
	require.Empty(t, u.CoverURL)
}

func TestLogin_Success(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	u := register(t, svc)

	res, err := svc.Login(context.Background(), "ada", "", "s3cret")
	require.NoError(t, err)
	require.Equal(t, u.ID, res.User.ID)
	require.NotEmpty(t, res.AccessToken)
	require.NotEmpty(t, res.RefreshToken)
	require.NotEqual(t, res.AccessToken, res.RefreshToken)

	// Both tokens verify against their own secret and the refresh token
	// is what the store now holds.
	signer := utils.NewTokenSigner(utils.TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	})
	claims, err := signer.VerifyAccess(res.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "ada", claims.Username)
	id, err := signer.VerifyRefresh(res.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, u.ID, id)
	require.Equal(t, res.RefreshToken, store.users[u.ID].RefreshToken)
}

func TestLogin_ByEmail(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	register(t, svc)

	res, err := svc.Login(context.Background(), "", "ADA@x.com", "s3cret")
	require.NoError(t, err)
	require.Equal(t, "ada", res.User.Username)
}

func TestLogin_Failures(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	register(t, svc)

	_, err := svc.Login(context.Background(), "", "", "s3cret")
	require.Equal(t, KindValidation, kindOf(t, err))

	_, err = svc.Login(context.Background(), "ada", "", "")
	require.Equal(t, KindValidation, kindOf(t, err))

	_, err = svc.Login(context.Background(), "nobody", "", "s3cret")
	require.Equal(t, KindNotFound, kindOf(t, err))

	_, err = svc.Login(context.Background(), "ada", "", "wrong")
	require.Equal(t, KindAuthentication, kindOf(t, err))
}

func TestLogin_OverwritesPriorSession(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	u := register(t, svc)

	first, err := svc.Login(context.Background(), "ada", "", "s3cret")
	require.NoError(t, err)
	second, err := svc.Login(context.Background(), "ada", "", "s3cret")
	require.NoError(t, err)

	require.Equal(t, second.RefreshToken, store.users[u.ID].RefreshToken)

	// The first session's refresh token is superseded and rejected.
	_, err = svc.RenewTokens(context.Background(), first.RefreshToken)
	require.Equal(t, KindAuthentication, kindOf(t, err))
}

func TestRenewTokens_Rotation(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	u := register(t, svc)

	res, err := svc.Login(context.Background(), "ada", "", "s3cret")
	require.NoError(t, err)

	pair, err := svc.RenewTokens(context.Background(), res.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEqual(t, res.RefreshToken, pair.RefreshToken)
	require.Equal(t, pair.RefreshToken, store.users[u.ID].RefreshToken)

	// Replaying the rotated-out token fails.
	_, err = svc.RenewTokens(context.Background(), res.RefreshToken)
	require.Equal(t, KindAuthentication, kindOf(t, err))

	// The freshly minted one still works.
	_, err = svc.RenewTokens(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
}

func TestRenewTokens_Invalid(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.RenewTokens(context.Background(), "")
	require.Equal(t, KindValidation, kindOf(t, err))

	_, err = svc.RenewTokens(context.Background(), "definitely-not-a-jwt")
	require.Equal(t, KindAuthentication, kindOf(t, err))
}

func TestRenewTokens_UnknownUser(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	u := register(t, svc)

	res, err := svc.Login(context.Background(), "ada", "", "s3cret")
	require.NoError(t, err)

	delete(store.users, u.ID)
	_, err = svc.RenewTokens(context.Background(), res.RefreshToken)
	require.Equal(t, KindAuthentication, kindOf(t, err))
}

func TestLogout_Idempotent(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	u := register(t, svc)

	res, err := svc.Login(context.Background(), "ada", "", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, store.users[u.ID].RefreshToken)

	require.NoError(t, svc.Logout(context.Background(), u.ID))
	require.Empty(t, store.users[u.ID].RefreshToken)
	require.NoError(t, svc.Logout(context.Background(), u.ID), "second logout is not an error")

	// A pre-logout refresh token no longer renews.
	_, err = svc.RenewTokens(context.Background(), res.RefreshToken)
	require.Equal(t, KindAuthentication, kindOf(t, err))
}

func TestCurrentUserAndProfile(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	u := register(t, svc)

	me, err := svc.CurrentUser(context.Background(), u.ID)
	require.NoError(t, err)
	require.Equal(t, u, me)

	prof, err := svc.Profile(context.Background(), "  ADA ")
	require.NoError(t, err)
	require.Equal(t, u, prof)

	_, err = svc.Profile(context.Background(), "ghost")
	require.Equal(t, KindNotFound, kindOf(t, err))

	_, err = svc.CurrentUser(context.Background(), 9999)
	require.Equal(t, KindNotFound, kindOf(t, err))
}
