package auth

import (
	"testing"
	"time"

	"github.com/example/skillbuilder/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewServiceWithCost(bcrypt.MinCost)
	require.NoError(t, err)
	return svc
}

func TestSignIn(t *testing.T) {
	svc := newService(t)

	user, err := svc.SignIn("Test@Example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "testuser", user.Username)
	assert.Equal(t, "Test User", user.DisplayName())

	_, err = svc.SignIn("test@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.SignIn("nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignUp(t *testing.T) {
	svc := newService(t)

	user, err := svc.SignUp("newbie", "new@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "user-2", user.ID)
	assert.Nil(t, user.FullName)
	assert.Equal(t, "newbie", user.DisplayName())

	signedIn, err := svc.SignIn("NEW@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "user-2", signedIn.ID)

	got, ok := svc.User("user-2")
	require.True(t, ok)
	assert.Equal(t, "newbie", got.Username)
}

func TestSignUp_RejectsDuplicates(t *testing.T) {
	svc := newService(t)

	_, err := svc.SignUp("someone", "TEST@example.com", "x")
	assert.ErrorIs(t, err, ErrAccountExists)

	_, err = svc.SignUp("TestUser", "other@example.com", "x")
	assert.ErrorIs(t, err, ErrAccountExists)

	_, err = svc.SignUp(" ", "other@example.com", "x")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSessions(t *testing.T) {
	sessions := NewSessions()
	fullName := "Test User"

	_, ok := sessions.Load(10)
	assert.False(t, ok)

	require.NoError(t, sessions.Save(10, &models.User{ID: "user-1", Username: "testuser", FullName: &fullName}))
	require.NoError(t, sessions.Save(3, &models.User{ID: "user-2", Username: "newbie"}))

	user, ok := sessions.Load(10)
	require.True(t, ok)
	assert.Equal(t, "user-1", user.ID)
	require.NotNil(t, user.FullName)
	assert.Equal(t, "Test User", *user.FullName)

	assert.Equal(t, []int64{3, 10}, sessions.ChatIDs())

	sessions.Clear(10)
	_, ok = sessions.Load(10)
	assert.False(t, ok)
	assert.Equal(t, []int64{3}, sessions.ChatIDs())
}

func TestTokenIssuer(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	user := &models.User{ID: "user-1", Username: "testuser"}

	token, err := issuer.Issue(user)
	require.NoError(t, err)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "testuser", claims.Username)

	_, err = NewTokenIssuer("other", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, err := issuer.Issue(&models.User{ID: "user-1", Username: "testuser"})
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
