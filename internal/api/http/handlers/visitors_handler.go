package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/smartcommunity/portal/internal/api/dto"
	"github.com/smartcommunity/portal/internal/auth"
	"github.com/smartcommunity/portal/internal/service"
	apperrors "github.com/smartcommunity/portal/pkg/util/errorutil"
)

// VisitorsHandler serves visitor pass issuance and gate check-in.
type VisitorsHandler struct {
	service *service.VisitorService
}

// NewVisitorsHandler constructs handler.
func NewVisitorsHandler(visitorService *service.VisitorService) *VisitorsHandler {
	return &VisitorsHandler{service: visitorService}
}

// Generate POST /api/visitors/generate.
func (h *VisitorsHandler) Generate(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.GenerateVisitorRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	issued, err := h.service.Issue(c.UserContext(), principal.User, service.IssueInput{
		VisitorName:  req.VisitorName,
		VisitorPhone: req.VisitorPhone,
		Purpose:      req.Purpose,
		ExpectedDate: req.ExpectedDate,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.IssuedVisitorResponse{
		VisitorResponse: dto.NewVisitorResponse(issued.Record),
		QRCodeImage:     issued.QRCodeImage,
	}})
}

// ListMine GET /api/visitors/user.
func (h *VisitorsHandler) ListMine(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	records, err := h.service.ListForResident(c.UserContext(), principal.User)
	if err != nil {
		return err
	}
	items := make([]dto.VisitorResponse, 0, len(records))
	for i := range records {
		items = append(items, dto.NewVisitorResponse(&records[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Verify POST /api/visitors/verify.
func (h *VisitorsHandler) Verify(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.VerifyVisitorRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	record, err := h.service.Verify(c.UserContext(), principal.User, req.QRCode)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":    dto.NewVisitorResponse(record),
		"message": "Visitor verified successfully",
	})
}

// ListPending GET /api/visitors/pending.
func (h *VisitorsHandler) ListPending(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	rows, err := h.service.ListPending(c.UserContext(), principal.User)
	if err != nil {
		return err
	}
	items := make([]dto.PendingVisitorResponse, 0, len(rows))
	for i := range rows {
		items = append(items, dto.NewPendingVisitorResponse(&rows[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CheckIn PUT /api/visitors/checkin/:id.
func (h *VisitorsHandler) CheckIn(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	record, err := h.service.CheckIn(c.UserContext(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":    dto.NewVisitorResponse(record),
		"message": "Visitor checked in",
	})
}
