package dto

import (
	"time"

	"github.com/smartcommunity/portal/internal/domain"
)

// DateLayout is the wire format of expectedDate.
const DateLayout = "2006-01-02"

// GenerateVisitorRequest payload for issuing a visitor pass.
type GenerateVisitorRequest struct {
	VisitorName  string `json:"visitorName"`
	VisitorPhone string `json:"visitorPhone"`
	Purpose      string `json:"purpose"`
	ExpectedDate string `json:"expectedDate,omitempty"`
}

// VerifyVisitorRequest carries the scanned or pasted code.
type VerifyVisitorRequest struct {
	QRCode string `json:"qrCode"`
}

// VisitorResponse is one visitor record.
type VisitorResponse struct {
	ID           string               `json:"id"`
	ResidentID   string               `json:"residentId"`
	VisitorName  string               `json:"visitorName"`
	VisitorPhone string               `json:"visitorPhone"`
	Purpose      string               `json:"purpose"`
	ExpectedDate string               `json:"expectedDate"`
	QRCode       string               `json:"qrCode,omitempty"`
	Status       domain.VisitorStatus `json:"status"`
	EntryTime    *time.Time           `json:"entryTime"`
	ExitTime     *time.Time           `json:"exitTime"`
	VerifiedBy   *string              `json:"verifiedBy"`
	CreatedAt    time.Time            `json:"createdAt"`
}

// IssuedVisitorResponse adds the rendered pass to a new record.
type IssuedVisitorResponse struct {
	VisitorResponse
	QRCodeImage string `json:"qrCodeImage"`
}

// ResidentResponse is the owner block of a roster row.
type ResidentResponse struct {
	ID          string `json:"id"`
	FullName    string `json:"fullName"`
	Block       string `json:"block"`
	HouseNumber string `json:"houseNumber"`
	Phone       string `json:"phone"`
}

// PendingVisitorResponse is a roster row. The code itself is withheld.
type PendingVisitorResponse struct {
	VisitorResponse
	Resident ResidentResponse `json:"resident"`
}

// NewVisitorResponse maps a domain record including its code.
func NewVisitorResponse(v *domain.VisitorRecord) VisitorResponse {
	return VisitorResponse{
		ID:           v.ID,
		ResidentID:   v.ResidentID,
		VisitorName:  v.VisitorName,
		VisitorPhone: v.VisitorPhone,
		Purpose:      v.Purpose,
		ExpectedDate: v.ExpectedDate.Format(DateLayout),
		QRCode:       v.Token,
		Status:       v.Status(),
		EntryTime:    v.EntryTime,
		ExitTime:     v.ExitTime,
		VerifiedBy:   v.VerifiedBy,
		CreatedAt:    v.CreatedAt,
	}
}

// NewPendingVisitorResponse maps a roster row.
func NewPendingVisitorResponse(p *domain.PendingVisitor) PendingVisitorResponse {
	resp := PendingVisitorResponse{
		VisitorResponse: NewVisitorResponse(&p.VisitorRecord),
		Resident: ResidentResponse{
			ID:          p.Resident.ID,
			FullName:    p.Resident.FullName,
			Block:       p.Resident.Block,
			HouseNumber: p.Resident.HouseNumber,
			Phone:       p.Resident.Phone,
		},
	}
	resp.QRCode = ""
	return resp
}
