package user

import (
	"context"
	"fmt"
	"net/url"

	"golang.org/x/crypto/bcrypt"

	"callchat/internal/pkg/logx"
)

// DemoPassword is the shared password of the seeded demo accounts.
const DemoPassword = "demo123"

// Upserter is the store capability needed to seed demo accounts.
type Upserter interface {
	UpsertByEmail(ctx context.Context, u *User) error
}

type demoAccount struct {
	username string
	email    string
	color    string
	role     string
	status   string
}

var demoAccounts = []demoAccount{
	{username: "John Doe", email: "john@demo.com", color: "0D8ABC", role: "Senior Developer", status: "🚀 Working on new features"},
	{username: "Sarah Smith", email: "sarah@demo.com", color: "7C3AED", role: "Product Manager", status: "📊 Planning sprint"},
}

// AvatarURL returns a generated initials avatar for name.
// An empty background lets the avatar service pick a random color.
func AvatarURL(name, background string) string {
	if background == "" {
		background = "random"
	}

	q := url.Values{}
	q.Set("name", name)
	q.Set("background", background)
	q.Set("color", "fff")
	q.Set("size", "128")

	return "https://ui-avatars.com/api/?" + q.Encode()
}

// SeedDemoUsers creates or refreshes the demo accounts.
func SeedDemoUsers(ctx context.Context, store Upserter) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash demo password: %w", err)
	}

	for _, acc := range demoAccounts {
		u := &User{
			Username:       acc.username,
			Email:          acc.email,
			PasswordHash:   string(hash),
			ProfilePicture: AvatarURL(acc.username, acc.color),
			Role:           acc.role,
			Status:         acc.status,
		}

		if err := store.UpsertByEmail(ctx, u); err != nil {
			return err
		}

		logx.Info("Demo user ready", "email", u.Email, "user_id", u.ID.String())
	}

	return nil
}
