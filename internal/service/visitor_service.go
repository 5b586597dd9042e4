package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/smartcommunity/portal/internal/domain"
	"github.com/smartcommunity/portal/internal/events"
	"github.com/smartcommunity/portal/internal/pass"
	"github.com/smartcommunity/portal/internal/repository"
	apperrors "github.com/smartcommunity/portal/pkg/util/errorutil"
)

const (
	dateLayout      = "2006-01-02"
	codeGenAttempts = 3

	msgCodeInvalid     = "Invalid or already used QR code"
	msgVisitorNotFound = "Visitor not found or already checked in"
)

// AttemptLimiter throttles verification attempts per key.
type AttemptLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// VisitorService coordinates visitor pass issuance and check-in.
type VisitorService struct {
	visitors   repository.VisitorRepository
	limiter    AttemptLimiter
	dispatcher events.Dispatcher
	logger     *zap.Logger
	location   *time.Location
	qrSize     int
	now        func() time.Time
}

// VisitorDependencies bundles collaborators for the visitor service.
type VisitorDependencies struct {
	VisitorRepo repository.VisitorRepository
	Limiter     AttemptLimiter
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Location    *time.Location
	QRCodeSize  int
	Now         func() time.Time
}

// IssueInput describes a resident's visitor registration.
type IssueInput struct {
	VisitorName  string
	VisitorPhone string
	Purpose      string
	// ExpectedDate is YYYY-MM-DD; empty means today.
	ExpectedDate string
}

// Issued is a freshly created record together with its rendered pass.
type Issued struct {
	Record *domain.VisitorRecord
	// QRCodeImage is a PNG data URL encoding Record.Token.
	QRCodeImage string
}

// NewVisitorService builds the service.
func NewVisitorService(deps VisitorDependencies) *VisitorService {
	svc := &VisitorService{
		visitors:   deps.VisitorRepo,
		limiter:    deps.Limiter,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		location:   deps.Location,
		qrSize:     deps.QRCodeSize,
		now:        deps.Now,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	if svc.location == nil {
		svc.location = time.UTC
	}
	if svc.qrSize <= 0 {
		svc.qrSize = pass.DefaultSize
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc
}

// Issue creates exactly one visitor record with a fresh single-use code.
func (s *VisitorService) Issue(ctx context.Context, resident *domain.User, in IssueInput) (*Issued, error) {
	if resident == nil || resident.Role != domain.RoleResident {
		return nil, apperrors.NewForbidden("only residents can register visitors")
	}

	name := strings.TrimSpace(in.VisitorName)
	phone := strings.TrimSpace(in.VisitorPhone)
	purpose := strings.TrimSpace(in.Purpose)
	switch {
	case name == "":
		return nil, apperrors.NewValidationError("visitor name is required", map[string]any{"field": "visitorName"})
	case phone == "":
		return nil, apperrors.NewValidationError("visitor phone is required", map[string]any{"field": "visitorPhone"})
	case purpose == "":
		return nil, apperrors.NewValidationError("purpose is required", map[string]any{"field": "purpose"})
	}

	today := s.today()
	expected := today
	if raw := strings.TrimSpace(in.ExpectedDate); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return nil, apperrors.NewValidationError("expected date must be YYYY-MM-DD", map[string]any{"field": "expectedDate"})
		}
		if parsed.Before(today) {
			return nil, apperrors.NewValidationError("expected date cannot be in the past", map[string]any{"field": "expectedDate"})
		}
		expected = parsed
	}

	record := &domain.VisitorRecord{
		ResidentID:   resident.ID,
		VisitorName:  name,
		VisitorPhone: phone,
		Purpose:      purpose,
		ExpectedDate: expected,
	}
	if err := s.createWithFreshCode(ctx, record); err != nil {
		return nil, err
	}

	png, err := pass.Render(record.Token, s.qrSize)
	if err != nil {
		return nil, err
	}

	s.logger.Info("visitor pass issued",
		zap.String("visitor_id", record.ID),
		zap.String("resident_id", resident.ID),
		zap.String("expected_date", expected.Format(dateLayout)))
	s.publish(ctx, events.EventVisitorIssued, record, resident, events.VisitorIssuedPayload{
		ResidentID:   resident.ID,
		VisitorName:  record.VisitorName,
		Purpose:      record.Purpose,
		ExpectedDate: expected.Format(dateLayout),
	})

	return &Issued{Record: record, QRCodeImage: pass.DataURL(png)}, nil
}

// Verify consumes a scanned or pasted code and records the entry.
// Unknown and already used codes yield the same error.
func (s *VisitorService) Verify(ctx context.Context, actor *domain.User, code string) (*domain.VisitorRecord, error) {
	if err := requireGate(actor); err != nil {
		return nil, err
	}
	code = pass.Normalize(code)
	if code == "" {
		return nil, apperrors.NewValidationError("QR code is required", map[string]any{"field": "qrCode"})
	}
	if err := pass.CheckPrefix(code); err != nil {
		return nil, apperrors.NewValidationError("Invalid QR code format", map[string]any{"field": "qrCode"})
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		if !allowed {
			s.logger.Warn("verification attempts exceeded", zap.String("verified_by", actor.ID))
			return nil, apperrors.NewTooManyAttempts("Too many verification attempts, try again shortly")
		}
	}

	record, err := s.visitors.ConsumeToken(ctx, code, s.checkIn(actor))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Info("visitor code rejected", zap.String("verified_by", actor.ID))
			return nil, apperrors.NewVisitorCodeInvalid(msgCodeInvalid)
		}
		return nil, err
	}

	s.recordCheckIn(ctx, actor, record, "scan")
	return record, nil
}

// CheckIn is the roster fallback: it consumes a pending record by id. Only
// records on today's roster can be checked in this way.
func (s *VisitorService) CheckIn(ctx context.Context, actor *domain.User, id string) (*domain.VisitorRecord, error) {
	if err := requireGate(actor); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewVisitorCodeInvalid(msgVisitorNotFound)
	}

	record, err := s.visitors.ConsumeByID(ctx, id, s.today(), s.checkIn(actor))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewVisitorCodeInvalid(msgVisitorNotFound)
		}
		return nil, err
	}

	s.recordCheckIn(ctx, actor, record, "roster")
	return record, nil
}

// ListForResident returns the caller's own records, newest first.
func (s *VisitorService) ListForResident(ctx context.Context, user *domain.User) ([]domain.VisitorRecord, error) {
	if user == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return s.visitors.ListByResident(ctx, user.ID)
}

// ListPending returns today's unverified records for the gate roster.
func (s *VisitorService) ListPending(ctx context.Context, actor *domain.User) ([]domain.PendingVisitor, error) {
	if err := requireGate(actor); err != nil {
		return nil, err
	}
	return s.visitors.ListPending(ctx, s.today())
}

// Today is the current civil date in the community time zone, as UTC midnight.
func (s *VisitorService) Today() time.Time {
	return s.today()
}

func (s *VisitorService) today() time.Time {
	y, m, d := s.now().In(s.location).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *VisitorService) checkIn(actor *domain.User) domain.CheckIn {
	return domain.CheckIn{At: s.now().UTC(), ActorID: actor.ID, ActorTag: actor.FullName}
}

func (s *VisitorService) createWithFreshCode(ctx context.Context, record *domain.VisitorRecord) error {
	for attempt := 0; attempt < codeGenAttempts; attempt++ {
		code, err := pass.NewCode(s.now())
		if err != nil {
			return err
		}
		record.Token = code
		err = s.visitors.Create(ctx, record)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return err
		}
		s.logger.Warn("visitor code collision, regenerating", zap.Int("attempt", attempt+1))
	}
	return fmt.Errorf("issue visitor pass: %w", repository.ErrDuplicate)
}

func (s *VisitorService) recordCheckIn(ctx context.Context, actor *domain.User, record *domain.VisitorRecord, method string) {
	s.logger.Info("visitor checked in",
		zap.String("visitor_id", record.ID),
		zap.String("resident_id", record.ResidentID),
		zap.String("verified_by", actor.ID),
		zap.String("method", method))
	s.publish(ctx, events.EventVisitorCheckedIn, record, actor, events.VisitorCheckedInPayload{
		ResidentID:  record.ResidentID,
		VisitorName: record.VisitorName,
		EntryTime:   *record.EntryTime,
		VerifiedBy:  *record.VerifiedBy,
		Method:      method,
	})
}

func (s *VisitorService) publish(ctx context.Context, eventType events.EventType, record *domain.VisitorRecord, actor *domain.User, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		VisitorID: record.ID,
		Actor:     events.Actor{UserID: actor.ID, Role: actor.Role},
		Timestamp: s.now().UTC(),
		Payload:   payload,
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish event failed", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}

func requireGate(actor *domain.User) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if actor.Role != domain.RoleSecurity && actor.Role != domain.RoleAdmin {
		return apperrors.NewForbidden("only security staff can verify visitors")
	}
	return nil
}
