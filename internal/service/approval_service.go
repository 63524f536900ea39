package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/spreadsheet"
	ws "github.com/Daveman-1/BookstoreFrontEnd/internal/websocket"
	"go.uber.org/zap"
)

// Upload kinds accepted by the spreadsheet manager
const (
	UploadNewItems        = model.ApprovalTypeNewItems
	UploadInventoryUpdate = model.ApprovalTypeInventoryUpdate
)

// DTOs
type RejectRequest struct {
	Reason string `json:"rejection_reason" binding:"required"`
}

// UploadResult reports what happened to a spreadsheet upload
type UploadResult struct {
	Message  string          `json:"message"`
	Applied  int             `json:"applied"`
	Pending  int             `json:"pending"`
	Approval *model.Approval `json:"approval,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
}

type ApprovalService interface {
	List(ctx context.Context, tab Tab) (model.ApprovalGroups, error)
	Approve(ctx context.Context, tab Tab, id int64) (model.Approval, error)
	Reject(ctx context.Context, tab Tab, id int64, req RejectRequest) (model.Approval, error)
	Upload(ctx context.Context, tab Tab, kind, fileName string, file io.Reader) (UploadResult, error)
}

type approvalService struct {
	hub Publisher
	log *zap.Logger
}

func NewApprovalService(hub Publisher, log *zap.Logger) ApprovalService {
	if log == nil {
		log = zap.NewNop()
	}
	return &approvalService{hub: publisherOrNop(hub), log: log}
}

func (s *approvalService) List(ctx context.Context, tab Tab) (model.ApprovalGroups, error) {
	approvals, err := tab.Backend.Approvals.List(ctx).Unwrap()
	if err != nil {
		return model.ApprovalGroups{}, err
	}
	return model.GroupApprovals(approvals), nil
}

// pending finds the approval and checks that it still awaits a decision
func (s *approvalService) pending(ctx context.Context, tab Tab, id int64) error {
	approvals, err := tab.Backend.Approvals.List(ctx).Unwrap()
	if err != nil {
		return err
	}
	for i := range approvals {
		if approvals[i].ID == id {
			return approvals[i].CanTransition()
		}
	}
	return fmt.Errorf("approval %d: %w", id, ErrNotFound)
}

func (s *approvalService) Approve(ctx context.Context, tab Tab, id int64) (model.Approval, error) {
	if err := s.pending(ctx, tab, id); err != nil {
		return model.Approval{}, err
	}
	approval, err := tab.Backend.Approvals.Approve(ctx, id).Unwrap()
	if err != nil {
		return model.Approval{}, err
	}
	s.announce(approval)
	return approval, nil
}

func (s *approvalService) Reject(ctx context.Context, tab Tab, id int64, req RejectRequest) (model.Approval, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return model.Approval{}, &ValidationError{Message: "A rejection reason is required"}
	}
	if err := s.pending(ctx, tab, id); err != nil {
		return model.Approval{}, err
	}
	approval, err := tab.Backend.Approvals.Reject(ctx, id, reason).Unwrap()
	if err != nil {
		return model.Approval{}, err
	}
	s.announce(approval)
	return approval, nil
}

func (s *approvalService) announce(a model.Approval) {
	s.hub.Publish(ws.Event{
		Type: ws.EventApprovalUpdated,
		Data: map[string]any{"id": a.ID, "status": a.Status, "uploadedBy": a.UploadedBy, "fileName": a.FileName},
	})
}

// Upload parses a spreadsheet. Any row error rejects the whole file. Admins
// apply the rows straight away; everyone else submits them for approval.
func (s *approvalService) Upload(ctx context.Context, tab Tab, kind, fileName string, file io.Reader) (UploadResult, error) {
	user := tab.Session.User(ctx)
	if user == nil {
		return UploadResult{}, ErrNotFound
	}

	switch kind {
	case UploadNewItems:
		parsed, err := spreadsheet.ImportNewInventory(file)
		if err != nil {
			return UploadResult{}, &ValidationError{Message: "Failed to process file: " + err.Error()}
		}
		if len(parsed.Errors) > 0 {
			return UploadResult{}, rowErrors(parsed.Errors)
		}
		if user.IsAdmin() {
			return s.createItems(ctx, tab, parsed)
		}
		changes := make([]any, 0, len(parsed.Items))
		for _, row := range parsed.Items {
			changes = append(changes, map[string]any{"item": row})
		}
		return s.submit(ctx, tab, user, kind, fileName, changes, spreadsheet.Messages(parsed.Warnings),
			"Upload submitted for approval. %d new items pending review.")

	case UploadInventoryUpdate:
		parsed, err := spreadsheet.ImportInventoryUpdates(file)
		if err != nil {
			return UploadResult{}, &ValidationError{Message: "Failed to process file: " + err.Error()}
		}
		if len(parsed.Errors) > 0 {
			return UploadResult{}, rowErrors(parsed.Errors)
		}
		if user.IsAdmin() {
			return s.applyUpdates(ctx, tab, parsed)
		}
		changes := make([]any, 0, len(parsed.Updates))
		for _, row := range parsed.Updates {
			changes = append(changes, map[string]any{"id": row.ID, "itemName": row.Name, "updates": row.Patch()})
		}
		return s.submit(ctx, tab, user, kind, fileName, changes, spreadsheet.Messages(parsed.Warnings),
			"Upload submitted for approval. %d items pending review.")

	default:
		return UploadResult{}, &ValidationError{Message: fmt.Sprintf("Unknown upload type %q", kind)}
	}
}

func rowErrors(issues []spreadsheet.RowIssue) error {
	return &ValidationError{
		Message: fmt.Sprintf("Found %d errors in the file", len(issues)),
		Details: spreadsheet.Messages(issues),
	}
}

func (s *approvalService) createItems(ctx context.Context, tab Tab, parsed spreadsheet.NewInventoryResult) (UploadResult, error) {
	warnings := spreadsheet.Messages(parsed.Warnings)
	added := 0
	for i, row := range parsed.Items {
		if _, err := tab.Backend.Items.Create(ctx, row.Input()).Unwrap(); err != nil {
			s.log.Warn("import item", zap.String("name", row.Name), zap.Error(err))
			warnings = append(warnings, fmt.Sprintf("Item %d (%s): %s", i+1, row.Name, err.Error()))
			continue
		}
		added++
	}
	if added > 0 {
		s.hub.Publish(ws.Event{Type: ws.EventInventoryChanged, Data: map[string]any{"action": "imported", "count": added}})
	}
	return UploadResult{
		Message:  fmt.Sprintf("Successfully added %d new items", added),
		Applied:  added,
		Warnings: warnings,
	}, nil
}

func (s *approvalService) applyUpdates(ctx context.Context, tab Tab, parsed spreadsheet.UpdateResult) (UploadResult, error) {
	patches := make([]model.ItemPatch, 0, len(parsed.Updates))
	for _, row := range parsed.Updates {
		if p := row.Patch(); !p.Empty() {
			patches = append(patches, p)
		}
	}
	if len(patches) > 0 {
		if _, err := tab.Backend.Items.BulkUpdate(ctx, patches).Unwrap(); err != nil {
			return UploadResult{}, err
		}
		s.hub.Publish(ws.Event{Type: ws.EventInventoryChanged, Data: map[string]any{"action": "updated", "count": len(patches)}})
	}
	return UploadResult{
		Message:  fmt.Sprintf("Successfully updated %d items", len(patches)),
		Applied:  len(patches),
		Warnings: spreadsheet.Messages(parsed.Warnings),
	}, nil
}

func (s *approvalService) submit(ctx context.Context, tab Tab, user *model.User, kind, fileName string, changes []any, warnings []string, format string) (UploadResult, error) {
	raw := make([]json.RawMessage, 0, len(changes))
	for _, c := range changes {
		b, err := json.Marshal(c)
		if err != nil {
			return UploadResult{}, fmt.Errorf("encode change: %w", err)
		}
		raw = append(raw, b)
	}

	approval, err := tab.Backend.Approvals.Submit(ctx, model.NewApproval{
		Type:       kind,
		UploadedBy: user.FallbackName(),
		FileName:   fileName,
		Changes:    raw,
	}).Unwrap()
	if err != nil {
		return UploadResult{}, err
	}

	s.hub.Publish(ws.Event{
		Type:       ws.EventApprovalSubmitted,
		Permission: model.PermApproveUploads,
		Data:       map[string]any{"id": approval.ID, "type": kind, "uploadedBy": approval.UploadedBy, "changes": len(raw)},
	})
	return UploadResult{
		Message:  fmt.Sprintf(format, len(raw)),
		Pending:  len(raw),
		Approval: &approval,
		Warnings: warnings,
	}, nil
}
