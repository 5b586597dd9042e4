package domain

import "time"

// VisitorStatus is the check-in state of a VisitorRecord.
type VisitorStatus string

const (
	VisitorStatusPending  VisitorStatus = "PENDING"
	VisitorStatusVerified VisitorStatus = "VERIFIED"
)

// VisitorRecord is one expected visit registered by a resident.
//
// Token is single use: once EntryTime is set the record is verified and the
// token never verifies again. EntryTime, VerifiedBy and VerifiedByID are
// always written together.
type VisitorRecord struct {
	ID           string
	ResidentID   string
	VisitorName  string
	VisitorPhone string
	Purpose      string
	ExpectedDate time.Time
	Token        string
	EntryTime    *time.Time
	ExitTime     *time.Time
	VerifiedBy   *string
	VerifiedByID *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Status derives the workflow state from the entry stamp.
func (v *VisitorRecord) Status() VisitorStatus {
	if v.EntryTime != nil {
		return VisitorStatusVerified
	}
	return VisitorStatusPending
}

// CheckIn describes who consumed a visitor record and when.
type CheckIn struct {
	At       time.Time
	ActorID  string
	ActorTag string
}

// ResidentSummary is the owner information shown on the security roster.
type ResidentSummary struct {
	ID          string
	FullName    string
	Block       string
	HouseNumber string
	Phone       string
}

// PendingVisitor is a roster row: an unverified record plus its owner.
type PendingVisitor struct {
	VisitorRecord
	Resident ResidentSummary
}
