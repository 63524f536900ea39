package model

import (
	"encoding/json"
	"errors"
	"time"
)

// Approval types
const (
	ApprovalTypeNewItems        = "new_items"
	ApprovalTypeInventoryUpdate = "inventory_update"
)

// Approval statuses
const (
	ApprovalStatusPending  = "pending"
	ApprovalStatusApproved = "approved"
	ApprovalStatusRejected = "rejected"
)

// ErrApprovalClosed is returned when a decision is attempted on a non-pending approval
var ErrApprovalClosed = errors.New("approval is no longer pending")

// Approval is a staff-submitted inventory change waiting for an admin decision.
// pending -> approved | rejected; both outcomes are terminal.
type Approval struct {
	ID              int64             `json:"id"`
	Type            string            `json:"type"`
	UploadedBy      string            `json:"uploadedBy"`
	FileName        string            `json:"fileName"`
	Changes         []json.RawMessage `json:"changes"`
	Status          string            `json:"status"`
	RejectionReason string            `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

// NewApproval is the payload submitted when staff upload a spreadsheet
type NewApproval struct {
	Type       string            `json:"type"`
	UploadedBy string            `json:"uploadedBy"`
	FileName   string            `json:"fileName"`
	Changes    []json.RawMessage `json:"changes"`
}

// CanTransition checks that a decision may still be taken on the approval
func (a *Approval) CanTransition() error {
	if a.Status != ApprovalStatusPending {
		return ErrApprovalClosed
	}
	return nil
}

// ApprovalGroups splits approvals by status for the approvals page
type ApprovalGroups struct {
	Pending  []Approval `json:"pending"`
	Approved []Approval `json:"approved"`
	Rejected []Approval `json:"rejected"`
}

// GroupApprovals partitions approvals by status, dropping unknown statuses
func GroupApprovals(approvals []Approval) ApprovalGroups {
	g := ApprovalGroups{Pending: []Approval{}, Approved: []Approval{}, Rejected: []Approval{}}
	for _, a := range approvals {
		switch a.Status {
		case ApprovalStatusPending:
			g.Pending = append(g.Pending, a)
		case ApprovalStatusApproved:
			g.Approved = append(g.Approved, a)
		case ApprovalStatusRejected:
			g.Rejected = append(g.Rejected, a)
		}
	}
	return g
}
