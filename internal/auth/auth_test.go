package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcommunity/portal/internal/domain"
	"github.com/smartcommunity/portal/internal/repository"
	apperrors "github.com/smartcommunity/portal/pkg/util/errorutil"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 30)
	token, expires, err := tm.GenerateToken("user-1", domain.RoleSecurity)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), expires, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, domain.RoleSecurity, claims.Role)
}

func TestParseTokenRejects(t *testing.T) {
	tm := NewTokenManager("secret", 30)

	other, _, err := NewTokenManager("other", 30).GenerateToken("user-1", domain.RoleAdmin)
	require.NoError(t, err)
	_, err = tm.ParseToken(other)
	assert.Error(t, err, "wrong signing key")

	expired := NewTokenManager("secret", 1)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _, err := expired.GenerateToken("user-1", domain.RoleAdmin)
	require.NoError(t, err)
	_, err = tm.ParseToken(stale)
	assert.Error(t, err, "expired")

	badRole, _, err := tm.GenerateToken("user-1", domain.Role("janitor"))
	require.NoError(t, err)
	_, err = tm.ParseToken(badRole)
	assert.Error(t, err, "unknown role")
}

func TestHashPassword(t *testing.T) {
	_, err := HashPassword("12345", 4)
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	hashed, err := HashPassword("gatepass", 4)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hashed, "gatepass"))
	assert.Error(t, ComparePassword(hashed, "wrong"))
}

func newGateApp(t *testing.T) (*fiber.App, *TokenManager, *repository.MemoryUserRepository) {
	t.Helper()
	users := repository.NewMemoryUserRepository()
	tokens := NewTokenManager("secret", 30)
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
		},
	})
	mw := NewAuthMiddleware(tokens, users)
	app.Get("/gate", mw.Handle, RequireRole(domain.RoleSecurity, domain.RoleAdmin), func(c *fiber.Ctx) error {
		p, ok := PrincipalFromContext(c)
		if !ok {
			return errors.New("principal missing")
		}
		return c.SendString(p.User.FullName)
	})
	app.Get("/any", mw.Handle, RequireAnyRole(), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})
	app.Get("/open", RequireAnyRole(), func(c *fiber.Ctx) error { return nil })
	return app, tokens, users
}

func addUser(t *testing.T, users *repository.MemoryUserRepository, role domain.Role, status domain.UserStatus) *domain.User {
	t.Helper()
	u := &domain.User{FullName: string(role) + " user", Email: string(role) + string(status) + "@example.com", Role: role, Status: status}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func get(t *testing.T, app *fiber.App, path, bearer string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+bearer)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestMiddlewareAndRoles(t *testing.T) {
	app, tokens, users := newGateApp(t)

	guard := addUser(t, users, domain.RoleSecurity, domain.UserStatusApproved)
	resident := addUser(t, users, domain.RoleResident, domain.UserStatusApproved)
	pending := addUser(t, users, domain.RoleResident, domain.UserStatusPending)

	token := func(u *domain.User) string {
		s, _, err := tokens.GenerateToken(u.ID, u.Role)
		require.NoError(t, err)
		return s
	}

	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/gate", ""))
	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/gate", "garbage"))
	assert.Equal(t, http.StatusOK, get(t, app, "/gate", token(guard)))
	assert.Equal(t, http.StatusForbidden, get(t, app, "/gate", token(resident)))
	assert.Equal(t, http.StatusNoContent, get(t, app, "/any", token(resident)))
	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/any", token(pending)))
	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/open", ""))

	ghost, _, err := tokens.GenerateToken("00000000-0000-0000-0000-000000000000", domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/gate", ghost))
}
