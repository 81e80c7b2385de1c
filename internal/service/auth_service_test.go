package service

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flipyard/internal/apperr"
	"flipyard/internal/security"
)

type authFixture struct {
	svc      *AuthService
	users    *fakeUsers
	sessions *fakeSessions
	resets   *fakeResets
	notifier *fakeNotifier
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	users := newFakeUsers()
	f := &authFixture{
		users:    users,
		sessions: newFakeSessions(users),
		resets:   &fakeResets{},
		notifier: &fakeNotifier{},
	}
	f.svc = NewAuthService(f.users, f.sessions, f.resets, f.notifier, testHasher(t), testConfig(), zerolog.Nop())
	return f
}

func (f *authFixture) register(t *testing.T, email, username, password string) SessionGrant {
	t.Helper()
	grant, err := f.svc.Register(context.Background(), RegisterInput{Email: email, Username: username, Password: password})
	require.NoError(t, err)
	return grant
}

func TestRegister(t *testing.T) {
	f := newAuthFixture(t)

	grant := f.register(t, "  Alice@Example.COM ", "Alice_1", "correct horse")

	assert.Equal(t, "alice@example.com", grant.User.Email)
	assert.Equal(t, "alice_1", grant.User.Username)
	assert.NotEqual(t, []byte("correct horse"), grant.User.PasswordHash)
	assert.NotEmpty(t, grant.Token)
	assert.Equal(t, 1, f.sessions.count())

	id, err := f.svc.Authenticate(context.Background(), grant.Token)
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, grant.User.ID, id.User.ID)
}

func TestRegister_Validation(t *testing.T) {
	f := newAuthFixture(t)
	cases := []RegisterInput{
		{Email: "not-an-email", Username: "alice", Password: "longenough"},
		{Email: "a@example.com", Username: "al", Password: "longenough"},
		{Email: "a@example.com", Username: "has space", Password: "longenough"},
		{Email: "a@example.com", Username: strings.Repeat("x", 21), Password: "longenough"},
		{Email: "a@example.com", Username: "alice", Password: "short"},
		{Email: "a@example.com", Username: "alice", Password: strings.Repeat("p", 73)},
	}
	for _, in := range cases {
		_, err := f.svc.Register(context.Background(), in)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "%+v", in)
	}
	assert.Empty(t, f.users.byID)
}

func TestRegister_DuplicateEmailDifferentCase(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "bob@example.com", "bob", "password1")

	_, err := f.svc.Register(context.Background(), RegisterInput{
		Email: "BOB@Example.com", Username: "bobby", Password: "password1",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, "email or username already taken", err.Error())
}

func TestRegister_DuplicateUsername(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "bob@example.com", "bob", "password1")

	_, err := f.svc.Register(context.Background(), RegisterInput{
		Email: "other@example.com", Username: "BOB", Password: "password1",
	})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "carol@example.com", "carol", "password1")

	grant, err := f.svc.Login(context.Background(), "CAROL@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", grant.User.Email)
	assert.Equal(t, 2, f.sessions.count())
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), grant.ExpiresAt, time.Minute)

	claims, err := security.ParseSessionToken(grant.Token, testConfig().Security.SessionSecret)
	require.NoError(t, err)
	assert.NotEqual(t, grant.User.ID, claims.SessionID)
	assert.Len(t, claims.SessionID, 43)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "dave@example.com", "dave", "password1")
	banned := f.register(t, "eve@example.com", "eve", "password1")
	require.NoError(t, f.users.SetBanned(context.Background(), banned.User.ID, true))

	_, wrongPassword := f.svc.Login(context.Background(), "dave@example.com", "nope-nope")
	_, unknownEmail := f.svc.Login(context.Background(), "nobody@example.com", "password1")
	_, bannedAccount := f.svc.Login(context.Background(), "eve@example.com", "password1")

	for _, err := range []error{wrongPassword, unknownEmail, bannedAccount} {
		require.Error(t, err)
		assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
		assert.Equal(t, wrongPassword.Error(), err.Error())
		assert.Equal(t, apperr.Status(wrongPassword), apperr.Status(err))
	}
}

func TestAuthenticate_Anonymous(t *testing.T) {
	f := newAuthFixture(t)
	grant := f.register(t, "frank@example.com", "frank", "password1")

	for _, token := range []string{"", "garbage", grant.Token + "x"} {
		id, err := f.svc.Authenticate(context.Background(), token)
		require.NoError(t, err)
		assert.Nil(t, id)
	}

	forged, err := security.GenerateSessionToken(strings.Repeat("z", 32), "whatever", time.Now(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	id, err := f.svc.Authenticate(context.Background(), forged)
	require.NoError(t, err)
	assert.Nil(t, id)
}

func TestAuthenticate_ExpiredSessionIsDeleted(t *testing.T) {
	f := newAuthFixture(t)
	// Sign in eight days ago so the cookie and the row have both expired
	// against the real clock.
	f.svc.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	grant := f.register(t, "gina@example.com", "gina", "password1")
	require.Equal(t, 1, f.sessions.count())
	require.True(t, grant.ExpiresAt.Before(time.Now()))

	f.svc.now = time.Now

	id, err := f.svc.Authenticate(context.Background(), grant.Token)
	require.NoError(t, err)
	assert.Nil(t, id)
	assert.Zero(t, f.sessions.count())
}

func TestAuthenticate_ExpiredRowWithLiveToken(t *testing.T) {
	f := newAuthFixture(t)
	grant := f.register(t, "gail@example.com", "gail", "password1")
	require.Equal(t, 1, f.sessions.count())

	f.svc.now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }

	id, err := f.svc.Authenticate(context.Background(), grant.Token)
	require.NoError(t, err)
	assert.Nil(t, id)
	assert.Zero(t, f.sessions.count())
}

func TestAuthenticate_ForgedExpiredTokenKeepsRow(t *testing.T) {
	f := newAuthFixture(t)
	grant := f.register(t, "gus@example.com", "gus", "password1")

	old := time.Now().Add(-48 * time.Hour)
	forged, err := security.GenerateSessionToken("another-secret-another-secret-xx", "whatever", old, old.Add(time.Hour))
	require.NoError(t, err)

	id, err := f.svc.Authenticate(context.Background(), forged)
	require.NoError(t, err)
	assert.Nil(t, id)
	assert.Equal(t, 1, f.sessions.count())

	id, err = f.svc.Authenticate(context.Background(), grant.Token)
	require.NoError(t, err)
	assert.NotNil(t, id)
}

func TestAuthenticate_BannedKeepsSessionRow(t *testing.T) {
	f := newAuthFixture(t)
	grant := f.register(t, "hank@example.com", "hank", "password1")
	require.NoError(t, f.users.SetBanned(context.Background(), grant.User.ID, true))

	id, err := f.svc.Authenticate(context.Background(), grant.Token)
	require.NoError(t, err)
	assert.Nil(t, id)
	assert.Equal(t, 1, f.sessions.count())

	// lifting the ban restores the same session
	require.NoError(t, f.users.SetBanned(context.Background(), grant.User.ID, false))
	id, err = f.svc.Authenticate(context.Background(), grant.Token)
	require.NoError(t, err)
	assert.NotNil(t, id)
}

func TestLogout(t *testing.T) {
	f := newAuthFixture(t)
	grant := f.register(t, "ivy@example.com", "ivy", "password1")

	require.NoError(t, f.svc.Logout(context.Background(), grant.Token))
	assert.Zero(t, f.sessions.count())

	id, err := f.svc.Authenticate(context.Background(), grant.Token)
	require.NoError(t, err)
	assert.Nil(t, id)

	// repeated and undecodable logouts are harmless
	assert.NoError(t, f.svc.Logout(context.Background(), grant.Token))
	assert.NoError(t, f.svc.Logout(context.Background(), "garbage"))
	assert.NoError(t, f.svc.Logout(context.Background(), ""))
}

func TestLogout_ExpiredToken(t *testing.T) {
	f := newAuthFixture(t)
	secret := testConfig().Security.SessionSecret
	user := f.register(t, "jack@example.com", "jack", "password1").User

	past := time.Now().Add(-time.Hour)
	require.NoError(t, f.sessions.Create(context.Background(), sessionRow("old-session", user.ID, past)))
	token, err := security.GenerateSessionToken(secret, "old-session", past.Add(-time.Hour), past)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(context.Background(), token))
	_, ok := f.sessions.rows["old-session"]
	assert.False(t, ok)
}

func TestChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	grant := f.register(t, "kim@example.com", "kim", "password1")

	err := f.svc.ChangePassword(context.Background(), grant.User.ID, "wrong-password", "password2")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	err = f.svc.ChangePassword(context.Background(), grant.User.ID, "password1", "short")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	require.NoError(t, f.svc.ChangePassword(context.Background(), grant.User.ID, "password1", "password2"))

	_, err = f.svc.Login(context.Background(), "kim@example.com", "password1")
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
	_, err = f.svc.Login(context.Background(), "kim@example.com", "password2")
	assert.NoError(t, err)

	// the session used to change the password is still valid
	id, err := f.svc.Authenticate(context.Background(), grant.Token)
	require.NoError(t, err)
	assert.NotNil(t, id)
}

func resetSecretFrom(t *testing.T, resetURL string) string {
	t.Helper()
	u, err := url.Parse(resetURL)
	require.NoError(t, err)
	assert.Equal(t, "/reset-password", u.Path)
	return u.Query().Get("token")
}

func TestPasswordReset_SingleUse(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "lena@example.com", "lena", "password1")

	f.svc.RequestPasswordReset(context.Background(), "LENA@example.com")
	require.Len(t, f.notifier.resets, 1)
	msg := f.notifier.resets[0]
	assert.Equal(t, "lena@example.com", msg.Email)
	assert.True(t, strings.HasPrefix(msg.ResetURL, "http://localhost:3000/reset-password?token="))

	secret := resetSecretFrom(t, msg.ResetURL)
	require.Len(t, f.resets.rows, 1)
	assert.Equal(t, security.HashResetSecret(secret), f.resets.rows[0].TokenHash)
	assert.NotEqual(t, secret, f.resets.rows[0].TokenHash)

	require.NoError(t, f.svc.ResetPassword(context.Background(), secret, "new-password"))

	err := f.svc.ResetPassword(context.Background(), secret, "another-password")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, "invalid or expired reset token", err.Error())

	// the used row stays for audit
	require.Len(t, f.resets.rows, 1)
	assert.NotNil(t, f.resets.rows[0].UsedAt)

	_, err = f.svc.Login(context.Background(), "lena@example.com", "new-password")
	assert.NoError(t, err)
}

func TestPasswordReset_Expired(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "mia@example.com", "mia", "password1")
	f.svc.RequestPasswordReset(context.Background(), "mia@example.com")
	secret := resetSecretFrom(t, f.notifier.resets[0].ResetURL)

	f.svc.now = func() time.Time { return time.Now().Add(61 * time.Minute) }

	err := f.svc.ResetPassword(context.Background(), secret, "new-password")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestPasswordReset_UnknownEmailIsSilent(t *testing.T) {
	f := newAuthFixture(t)

	f.svc.RequestPasswordReset(context.Background(), "nobody@example.com")
	assert.Empty(t, f.notifier.resets)
	assert.Empty(t, f.resets.rows)

	err := f.svc.ResetPassword(context.Background(), "made-up-token", "new-password")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestPasswordReset_MailDisabled(t *testing.T) {
	users := newFakeUsers()
	resets := &fakeResets{}
	svc := NewAuthService(users, newFakeSessions(users), resets, nil, testHasher(t), testConfig(), zerolog.Nop())

	_, err := svc.Register(context.Background(), RegisterInput{Email: "n@example.com", Username: "nina", Password: "password1"})
	require.NoError(t, err)

	svc.RequestPasswordReset(context.Background(), "n@example.com")
	assert.Empty(t, resets.rows)
}
