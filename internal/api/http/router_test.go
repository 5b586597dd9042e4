package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/smartcommunity/portal/internal/api/dto"
	"github.com/smartcommunity/portal/internal/config"
	"github.com/smartcommunity/portal/internal/domain"
	"github.com/smartcommunity/portal/internal/observability"
	"github.com/smartcommunity/portal/internal/repository"
	"github.com/smartcommunity/portal/internal/service"
	apperrors "github.com/smartcommunity/portal/pkg/util/errorutil"
)

const testPassword = "secret123"

type testServer struct {
	app     *fiber.App
	auth    *service.AuthService
	metrics *observability.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := config.Config{
		App:  config.AppConfig{Name: "portal-test", Version: "test"},
		Auth: config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 30, BcryptCost: bcrypt.MinCost},
	}
	users := repository.NewMemoryUserRepository()
	visitors := repository.NewMemoryVisitorRepository(users)
	authService := service.NewAuthService(cfg, service.AuthDependencies{UserRepo: users})
	visitorService := service.NewVisitorService(service.VisitorDependencies{VisitorRepo: visitors, QRCodeSize: 64})
	metrics := observability.NewMetrics()

	app := NewApp(AppDependencies{
		App:      cfg.App,
		Logger:   zap.NewNop(),
		Metrics:  metrics,
		UserRepo: users,
		Auth:     authService,
		Visitors: visitorService,
	})
	return &testServer{app: app, auth: authService, metrics: metrics}
}

func (s *testServer) account(t *testing.T, email string, role domain.Role) *domain.User {
	t.Helper()
	user, err := s.auth.CreateAccount(context.Background(), service.AccountInput{
		RegisterInput: service.RegisterInput{
			FullName: "User " + email, Email: email, Block: "A", HouseNumber: "1", Password: testPassword,
		},
		Role: role,
	})
	require.NoError(t, err)
	return user
}

func (s *testServer) login(t *testing.T, email string) string {
	t.Helper()
	res, body := s.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: email, Password: testPassword})
	require.Equal(t, http.StatusOK, res.StatusCode, string(body))
	var env dto.Envelope[dto.LoginResponse]
	require.NoError(t, json.Unmarshal(body, &env))
	return env.Data.Token
}

func (s *testServer) do(t *testing.T, method, path, token string, payload any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if payload != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	res, err := s.app.Test(req, int((5 * time.Second).Milliseconds()))
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, body
}

func decodeError(t *testing.T, body []byte) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &resp), string(body))
	return resp
}

func TestHealthLive(t *testing.T) {
	s := newTestServer(t)
	res, body := s.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), `"alive"`)
}

func TestHealthReady_DisabledDependencies(t *testing.T) {
	s := newTestServer(t)
	res, body := s.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), `"postgres":"disabled"`)
	assert.Contains(t, string(body), `"redis":"disabled"`)
}

func TestUnknownRouteUsesErrorEnvelope(t *testing.T) {
	s := newTestServer(t)
	res, body := s.do(t, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	resp := decodeError(t, body)
	assert.Equal(t, apperrors.CodeRouteNotFound, resp.Error.Code)
	assert.Equal(t, resp.Error.Message, resp.Message)
}

func TestProtectedRoutesRequireBearer(t *testing.T) {
	s := newTestServer(t)

	res, body := s.do(t, http.MethodGet, "/api/visitors/user", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, apperrors.CodeUnauthorized, decodeError(t, body).Error.Code)

	res, _ = s.do(t, http.MethodGet, "/api/visitors/user", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestRegisterThenDeniedLogin(t *testing.T) {
	s := newTestServer(t)
	s.account(t, "admin@example.com", domain.RoleAdmin)
	adminToken := s.login(t, "admin@example.com")

	res, body := s.do(t, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{
		FullName: "Ravi", Email: "ravi@example.com", Block: "C", HouseNumber: "7", Password: testPassword,
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, string(body))
	var registered dto.Envelope[dto.UserResponse]
	require.NoError(t, json.Unmarshal(body, &registered))
	assert.Equal(t, domain.UserStatusPending, registered.Data.Status)

	res, body = s.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "ravi@example.com", Password: testPassword})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	assert.False(t, decodeError(t, body).Denied)

	res, _ = s.do(t, http.MethodPut, "/api/users/deny/"+registered.Data.ID, adminToken, dto.DenyRequest{Reason: "unknown flat"})
	require.Equal(t, http.StatusOK, res.StatusCode)

	res, body = s.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "ravi@example.com", Password: testPassword})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	resp := decodeError(t, body)
	assert.True(t, resp.Denied)
	assert.Equal(t, apperrors.CodeAccountDenied, resp.Error.Code)
	assert.Contains(t, resp.Message, "unknown flat")
}

func TestAdminRoutesRejectOtherRoles(t *testing.T) {
	s := newTestServer(t)
	s.account(t, "res@example.com", domain.RoleResident)
	token := s.login(t, "res@example.com")

	res, body := s.do(t, http.MethodGet, "/api/users", token, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	assert.Equal(t, apperrors.CodeForbidden, decodeError(t, body).Error.Code)
}

func TestAdminApprovesAndLists(t *testing.T) {
	s := newTestServer(t)
	s.account(t, "admin@example.com", domain.RoleAdmin)
	adminToken := s.login(t, "admin@example.com")

	res, body := s.do(t, http.MethodPost, "/api/users", adminToken, dto.CreateAccountRequest{
		RegisterRequest: dto.RegisterRequest{FullName: "Gate Guard", Email: "guard@example.com", Password: testPassword},
		Role:            domain.RoleSecurity,
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, string(body))

	res, body = s.do(t, http.MethodGet, "/api/users", adminToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var list dto.Envelope[[]dto.UserResponse]
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Len(t, list.Data, 2)
	assert.NotContains(t, string(body), "password")

	guardToken := s.login(t, "guard@example.com")
	res, body = s.do(t, http.MethodGet, "/api/auth/me", guardToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var me dto.Envelope[dto.UserResponse]
	require.NoError(t, json.Unmarshal(body, &me))
	assert.Equal(t, domain.RoleSecurity, me.Data.Role)
}

func TestVisitorFlowOverHTTP(t *testing.T) {
	s := newTestServer(t)
	s.account(t, "res@example.com", domain.RoleResident)
	s.account(t, "guard@example.com", domain.RoleSecurity)
	residentToken := s.login(t, "res@example.com")
	guardToken := s.login(t, "guard@example.com")

	res, body := s.do(t, http.MethodPost, "/api/visitors/generate", residentToken, dto.GenerateVisitorRequest{
		VisitorName: "Ravi", VisitorPhone: "9876543210", Purpose: "Delivery",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, string(body))
	var issued dto.Envelope[dto.IssuedVisitorResponse]
	require.NoError(t, json.Unmarshal(body, &issued))
	assert.Equal(t, domain.VisitorStatusPending, issued.Data.Status)
	assert.NotEmpty(t, issued.Data.QRCode)
	assert.Contains(t, issued.Data.QRCodeImage, "data:image/png;base64,")

	res, _ = s.do(t, http.MethodPost, "/api/visitors/generate", guardToken, dto.GenerateVisitorRequest{
		VisitorName: "x", VisitorPhone: "y", Purpose: "z",
	})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res, _ = s.do(t, http.MethodPost, "/api/visitors/verify", residentToken, dto.VerifyVisitorRequest{QRCode: issued.Data.QRCode})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res, body = s.do(t, http.MethodGet, "/api/visitors/pending", guardToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var pending dto.Envelope[[]dto.PendingVisitorResponse]
	require.NoError(t, json.Unmarshal(body, &pending))
	require.Len(t, pending.Data, 1)
	assert.Empty(t, pending.Data[0].QRCode)
	assert.Equal(t, "User res@example.com", pending.Data[0].Resident.FullName)

	res, body = s.do(t, http.MethodPost, "/api/visitors/verify", guardToken, dto.VerifyVisitorRequest{QRCode: issued.Data.QRCode})
	require.Equal(t, http.StatusOK, res.StatusCode, string(body))
	var verified dto.Envelope[dto.VisitorResponse]
	require.NoError(t, json.Unmarshal(body, &verified))
	assert.Equal(t, domain.VisitorStatusVerified, verified.Data.Status)
	require.NotNil(t, verified.Data.VerifiedBy)
	assert.NotNil(t, verified.Data.EntryTime)

	res, body = s.do(t, http.MethodPost, "/api/visitors/verify", guardToken, dto.VerifyVisitorRequest{QRCode: issued.Data.QRCode})
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, apperrors.CodeVisitorCode, decodeError(t, body).Error.Code)

	res, body = s.do(t, http.MethodPut, "/api/visitors/checkin/"+issued.Data.ID, guardToken, nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, apperrors.CodeVisitorCode, decodeError(t, body).Error.Code)

	res, body = s.do(t, http.MethodGet, "/api/visitors/user", residentToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var mine dto.Envelope[[]dto.VisitorResponse]
	require.NoError(t, json.Unmarshal(body, &mine))
	require.Len(t, mine.Data, 1)
	assert.Equal(t, domain.VisitorStatusVerified, mine.Data[0].Status)

	snap := s.metrics.Snapshot()
	assert.NotEmpty(t, snap.Errors)
}

func TestVerifyRejectsMalformedPayload(t *testing.T) {
	s := newTestServer(t)
	s.account(t, "guard@example.com", domain.RoleSecurity)
	guardToken := s.login(t, "guard@example.com")

	res, body := s.do(t, http.MethodPost, "/api/visitors/verify", guardToken, dto.VerifyVisitorRequest{QRCode: "hello"})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	resp := decodeError(t, body)
	assert.Equal(t, apperrors.CodeValidation, resp.Error.Code)
	assert.Equal(t, "qrCode", resp.Error.Details["field"])
}
