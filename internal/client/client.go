// Package client is the resident and security side of the visitor workflow.
// It talks to the portal API over REST with the bearer token of an explicit
// portal.Session, applies the local validation filters, and guards each
// submitting action against re-entrant calls.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/smartcommunity/portal/internal/api/dto"
	"github.com/smartcommunity/portal/internal/pass"
	"github.com/smartcommunity/portal/internal/portal"
	apperrors "github.com/smartcommunity/portal/pkg/util/errorutil"
)

// Client calls the portal API on behalf of one session.
type Client struct {
	http    *resty.Client
	session *portal.Session
	logger  *zap.Logger
	timeout time.Duration
	hc      *http.Client

	issueGuard   Guard
	verifyGuard  Guard
	checkInGuard Guard
}

// Option customizes a Client.
type Option func(*Client)

// WithTimeout bounds every request. A timed out request has an unknown outcome.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger routes client diagnostics to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient sets the underlying transport, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// New builds a client for the API rooted at baseURL, e.g. http://localhost:5000/api.
func New(baseURL string, session *portal.Session, opts ...Option) *Client {
	c := &Client{session: session, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}

	if c.hc != nil {
		c.http = resty.NewWithClient(c.hc)
	} else {
		c.http = resty.New()
	}
	c.http.
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetLogger(c.logger.Sugar())
	if c.timeout > 0 {
		c.http.SetTimeout(c.timeout)
	}
	return c
}

// Session returns the session the client acts for.
func (c *Client) Session() *portal.Session {
	return c.session
}

// Register submits a resident self-registration. The account stays pending until approved.
func (c *Client) Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserResponse, error) {
	if strings.TrimSpace(req.FullName) == "" {
		return nil, invalidField("fullName", "is required")
	}
	if strings.TrimSpace(req.Email) == "" {
		return nil, invalidField("email", "is required")
	}
	if req.Password == "" {
		return nil, invalidField("password", "is required")
	}
	user, err := call[dto.UserResponse](ctx, c, http.MethodPost, "/auth/register", req)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for a token and begins the session.
func (c *Client) Login(ctx context.Context, email, password string) (*dto.LoginResponse, error) {
	if strings.TrimSpace(email) == "" {
		return nil, invalidField("email", "is required")
	}
	if password == "" {
		return nil, invalidField("password", "is required")
	}

	resp, err := call[dto.LoginResponse](ctx, c, http.MethodPost, "/auth/login", dto.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	if err := c.session.Begin(resp.Token, profileOf(resp.User)); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	c.logger.Debug("signed in", zap.String("user_id", resp.User.ID), zap.String("role", string(resp.User.Role)))
	return &resp, nil
}

// Logout tears the session down. Tokens are stateless, so the server is not called.
func (c *Client) Logout() error {
	return c.session.Teardown()
}

// Me fetches the signed-in profile and refreshes the session copy of it.
func (c *Client) Me(ctx context.Context) (*dto.UserResponse, error) {
	if !c.session.Authenticated() {
		return nil, ErrSessionExpired
	}
	user, err := call[dto.UserResponse](ctx, c, http.MethodGet, "/auth/me", nil)
	if err != nil {
		return nil, err
	}
	if err := c.session.Begin(c.session.Token(), profileOf(user)); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return &user, nil
}

// VisitorForm is the resident's visitor registration.
type VisitorForm struct {
	VisitorName  string
	VisitorPhone string
	Purpose      string
	// ExpectedDate is YYYY-MM-DD; empty lets the server use today.
	ExpectedDate string
}

// Validate applies the local checks run before issuing.
func (f VisitorForm) Validate() error {
	switch {
	case strings.TrimSpace(f.VisitorName) == "":
		return invalidField("visitorName", "is required")
	case strings.TrimSpace(f.VisitorPhone) == "":
		return invalidField("visitorPhone", "is required")
	case strings.TrimSpace(f.Purpose) == "":
		return invalidField("purpose", "is required")
	}
	if d := strings.TrimSpace(f.ExpectedDate); d != "" {
		if _, err := time.Parse(dto.DateLayout, d); err != nil {
			return invalidField("expectedDate", "must be YYYY-MM-DD")
		}
	}
	return nil
}

// IssueVisitor registers a visitor and returns the record with its rendered pass.
func (c *Client) IssueVisitor(ctx context.Context, form VisitorForm) (*dto.IssuedVisitorResponse, error) {
	if err := c.permit(portal.PathVisitors); err != nil {
		return nil, err
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}

	var issued dto.IssuedVisitorResponse
	err := c.issueGuard.Do(func() error {
		var err error
		issued, err = call[dto.IssuedVisitorResponse](ctx, c, http.MethodPost, "/visitors/generate", dto.GenerateVisitorRequest{
			VisitorName:  strings.TrimSpace(form.VisitorName),
			VisitorPhone: strings.TrimSpace(form.VisitorPhone),
			Purpose:      strings.TrimSpace(form.Purpose),
			ExpectedDate: strings.TrimSpace(form.ExpectedDate),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &issued, nil
}

// PassImage returns the PNG bytes of an issued pass.
func PassImage(issued *dto.IssuedVisitorResponse) ([]byte, error) {
	return pass.DecodeDataURL(issued.QRCodeImage)
}

// MyVisitors lists the caller's own records.
func (c *Client) MyVisitors(ctx context.Context) ([]dto.VisitorResponse, error) {
	if !c.session.Authenticated() {
		return nil, ErrSessionExpired
	}
	return call[[]dto.VisitorResponse](ctx, c, http.MethodGet, "/visitors/user", nil)
}

// ValidateCode is the local filter applied to scanned or pasted text.
func ValidateCode(text string) error {
	code := pass.Normalize(text)
	if code == "" {
		return invalidToken("is required")
	}
	if err := pass.CheckPrefix(code); err != nil {
		return invalidToken(`must start with "` + pass.Prefix + `"`)
	}
	return nil
}

// VerifyToken submits a visitor code for single-use verification.
func (c *Client) VerifyToken(ctx context.Context, text string) (*dto.VisitorResponse, error) {
	if err := ValidateCode(text); err != nil {
		return nil, err
	}
	if err := c.permit(portal.PathVerifyVisitor); err != nil {
		return nil, err
	}

	var record dto.VisitorResponse
	err := c.verifyGuard.Do(func() error {
		var err error
		record, err = call[dto.VisitorResponse](ctx, c, http.MethodPost, "/visitors/verify",
			dto.VerifyVisitorRequest{QRCode: pass.Normalize(text)})
		return err
	})
	if err != nil {
		return nil, err
	}
	c.logger.Debug("visitor verified", zap.String("visitor_id", record.ID))
	return &record, nil
}

// PendingVisitors fetches today's unverified roster. It never changes state.
func (c *Client) PendingVisitors(ctx context.Context) ([]dto.PendingVisitorResponse, error) {
	if err := c.permit(portal.PathVerifyVisitor); err != nil {
		return nil, err
	}
	return call[[]dto.PendingVisitorResponse](ctx, c, http.MethodGet, "/visitors/pending", nil)
}

// CheckIn verifies a roster row by record id.
func (c *Client) CheckIn(ctx context.Context, id string) (*dto.VisitorResponse, error) {
	if strings.TrimSpace(id) == "" {
		return nil, invalidField("id", "is required")
	}
	if err := c.permit(portal.PathVerifyVisitor); err != nil {
		return nil, err
	}

	var record dto.VisitorResponse
	err := c.checkInGuard.Do(func() error {
		var err error
		record, err = call[dto.VisitorResponse](ctx, c, http.MethodPut, "/visitors/checkin/"+strings.TrimSpace(id), nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (c *Client) permit(path string) error {
	if !c.session.Authenticated() {
		return ErrSessionExpired
	}
	if !c.session.Surface().Allows(path) {
		return fmt.Errorf("%w: %s", ErrNotPermitted, path)
	}
	return nil
}

func call[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var (
		zero   T
		env    dto.Envelope[T]
		failed dto.ErrorResponse
	)

	token := c.session.Token()
	req := c.http.R().SetContext(ctx).SetResult(&env).SetError(&failed)
	if token != "" {
		req.SetAuthToken(token)
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return zero, fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}
	if resp.IsError() {
		return zero, c.classify(resp.StatusCode(), &failed, token != "")
	}
	return env.Data, nil
}

func (c *Client) classify(status int, failed *dto.ErrorResponse, authenticated bool) error {
	apiErr := &APIError{Status: status, Code: failed.Error.Code, Message: failed.Message, kind: ErrRejected}
	if apiErr.Message == "" {
		apiErr.Message = failed.Error.Message
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}

	switch {
	case status == http.StatusUnauthorized && authenticated:
		if err := c.session.Teardown(); err != nil {
			c.logger.Warn("session teardown failed", zap.Error(err))
		}
		apiErr.kind = ErrSessionExpired
	case status == http.StatusForbidden && failed.Denied:
		apiErr.kind = ErrAccountDenied
	case failed.Error.Code == apperrors.CodeVisitorCode:
		apiErr.kind = ErrVerificationFailed
	case status == http.StatusBadRequest && failed.Error.Details["field"] == "qrCode":
		apiErr.kind = ErrVerificationFailed
	}
	return apiErr
}

func profileOf(u dto.UserResponse) portal.Profile {
	return portal.Profile{
		ID:       u.ID,
		FullName: u.FullName,
		Email:    u.Email,
		Role:     portal.ParseRole(string(u.Role)),
	}
}

// Message picks the text to show an operator for err.
func Message(err error) string {
	var apiErr *APIError
	var validation *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &validation):
		return validation.Error()
	case errors.Is(err, ErrVerificationFailed) && errors.As(err, &apiErr):
		return "Verification failed: " + apiErr.Message
	case errors.Is(err, ErrSessionExpired):
		return ErrSessionExpired.Error()
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, ErrTransport):
		return "Request failed, the server could not be reached. The outcome is unknown; check before retrying."
	}
	return err.Error()
}
