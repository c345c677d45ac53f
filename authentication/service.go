package authentication

import (
	"context"

	"github.com/Kaptaan1992/honeybees-daycare/store"

	"github.com/pkg/errors"
)

const adminUsername = "admin"

var (
	ErrBadCredentials = errors.New("invalid username or password")
)

type Service interface {
	Login(ctx context.Context, username, password string) error
	Logout(ctx context.Context) error
	IsAuthenticated(ctx context.Context) bool
}

// AuthService gates the admin surface with the single shared credential held
// in Settings. There are no per-user accounts and no sessions: login flips a
// device-local flag, logout clears it.
type AuthService struct {
	Store interface {
		GetSettings() store.Settings
		Login()
		Logout()
		IsAuthenticated() bool
	} `inject:""`
}

func (a *AuthService) Login(ctx context.Context, username, password string) error {
	settings := a.Store.GetSettings()
	expected := settings.AdminPassword
	if expected == "" {
		expected = store.DefaultAdminPassword
	}
	if username != adminUsername || password != expected {
		return ErrBadCredentials
	}
	a.Store.Login()
	return nil
}

func (a *AuthService) Logout(ctx context.Context) error {
	a.Store.Logout()
	return nil
}

func (a *AuthService) IsAuthenticated(ctx context.Context) bool {
	return a.Store.IsAuthenticated()
}
