package client

import (
	"context"
	"net/http"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
)

// ApprovalsAPI wraps /approvals
type ApprovalsAPI struct {
	conn
}

func (a ApprovalsAPI) List(ctx context.Context) Result[[]model.Approval] {
	return call[[]model.Approval](ctx, a.conn, request{
		op: "approvals.list", method: http.MethodGet, path: "/approvals", fallback: "Failed to fetch approvals",
	}, "approvals")
}

// Submit queues a staff upload for review
func (a ApprovalsAPI) Submit(ctx context.Context, in model.NewApproval) Result[model.Approval] {
	return call[model.Approval](ctx, a.conn, request{
		op: "approvals.submit", method: http.MethodPost, path: "/approvals", body: in, fallback: "Failed to submit upload for approval",
	}, "approval")
}

func (a ApprovalsAPI) Approve(ctx context.Context, id int64) Result[model.Approval] {
	return call[model.Approval](ctx, a.conn, request{
		op: "approvals.approve", method: http.MethodPut, path: idPath("/approvals/%d/approve", id), fallback: "Failed to approve",
	}, "approval")
}

func (a ApprovalsAPI) Reject(ctx context.Context, id int64, reason string) Result[model.Approval] {
	return call[model.Approval](ctx, a.conn, request{
		op:       "approvals.reject",
		method:   http.MethodPut,
		path:     idPath("/approvals/%d/reject", id),
		body:     map[string]string{"rejection_reason": reason},
		fallback: "Failed to reject",
	}, "approval")
}
