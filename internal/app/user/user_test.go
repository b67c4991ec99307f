package user

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestValidators(t *testing.T) {
	assert.True(t, ValidUsername("John Doe"))
	assert.False(t, ValidUsername(" a "))
	assert.False(t, ValidUsername(string(make([]rune, MaxUsernameLength+1))))

	assert.True(t, ValidEmail("john@demo.com"))
	assert.False(t, ValidEmail("John <john@demo.com>"))
	assert.False(t, ValidEmail("not-an-email"))

	assert.True(t, ValidPassword("demo123"))
	assert.False(t, ValidPassword("short"))
	assert.False(t, ValidPassword(string(make([]byte, MaxPasswordLength+1))))

	assert.Equal(t, "john@demo.com", NormalizeEmail("  John@Demo.COM "))
}

func TestPublic_OmitsPasswordHash(t *testing.T) {
	u := &User{ID: uuid.New(), Username: "John Doe", Email: "john@demo.com", PasswordHash: "secret"}

	p := u.Public()

	assert.Equal(t, u.ID.String(), p.ID)
	assert.Equal(t, "John Doe", p.Username)
	assert.NotContains(t, []string{p.ID, p.Username, p.Email, p.ProfilePicture, p.Role, p.Status}, "secret")
}

func TestAvatarURL(t *testing.T) {
	raw := AvatarURL("John Doe", "0D8ABC")

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "ui-avatars.com", parsed.Host)
	assert.Equal(t, "John Doe", parsed.Query().Get("name"))
	assert.Equal(t, "0D8ABC", parsed.Query().Get("background"))

	parsed, err = url.Parse(AvatarURL("Jane", ""))
	require.NoError(t, err)
	assert.Equal(t, "random", parsed.Query().Get("background"))
}

type recordingUpserter struct {
	users []*User
	err   error
}

func (r *recordingUpserter) UpsertByEmail(_ context.Context, u *User) error {
	if r.err != nil {
		return r.err
	}
	u.ID = uuid.New()
	r.users = append(r.users, u)
	return nil
}

func TestSeedDemoUsers(t *testing.T) {
	store := &recordingUpserter{}

	require.NoError(t, SeedDemoUsers(context.Background(), store))

	require.Len(t, store.users, 2)
	assert.Equal(t, "john@demo.com", store.users[0].Email)
	assert.Equal(t, "sarah@demo.com", store.users[1].Email)

	for _, u := range store.users {
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(DemoPassword)))
	}
}

func TestSeedDemoUsers_StoreError(t *testing.T) {
	boom := errors.New("db down")

	err := SeedDemoUsers(context.Background(), &recordingUpserter{err: boom})

	assert.ErrorIs(t, err, boom)
}
