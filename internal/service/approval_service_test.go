package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/spreadsheet"
	ws "github.com/Daveman-1/BookstoreFrontEnd/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows ...[]any) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

var newItemsHeader = []any{spreadsheet.ColName, spreadsheet.ColCategory, spreadsheet.ColDescription, spreadsheet.ColPrice, spreadsheet.ColStock, spreadsheet.ColNotes}

func twoNewBooks(t *testing.T) *bytes.Reader {
	return workbook(t,
		newItemsHeader,
		[]any{"Things Fall Apart", "Fiction", "", "12.50", "4", ""},
		[]any{"Arrow of God", "Fiction", "", "10", "2", ""},
	)
}

func TestStaffUploadIsSubmittedForApproval(t *testing.T) {
	var submitted model.NewApproval
	mux := http.NewServeMux()
	mux.HandleFunc("POST /approvals", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&submitted)
		writeJSON(w, http.StatusCreated, map[string]any{"approval": map[string]any{
			"id": 5, "type": submitted.Type, "uploadedBy": submitted.UploadedBy, "status": "pending",
		}})
	})
	mux.HandleFunc("POST /items", func(w http.ResponseWriter, r *http.Request) {
		t.Error("staff uploads must not create items directly")
	})
	hub := &recordingPublisher{}
	svc := NewApprovalService(hub, nil)

	res, err := svc.Upload(context.Background(), newTab(t, mux, staffUser), UploadNewItems, "books.xlsx", twoNewBooks(t))
	require.NoError(t, err)

	assert.Equal(t, 2, res.Pending)
	assert.Equal(t, 0, res.Applied)
	assert.Equal(t, "Upload submitted for approval. 2 new items pending review.", res.Message)
	require.NotNil(t, res.Approval)
	assert.Equal(t, int64(5), res.Approval.ID)

	assert.Equal(t, model.ApprovalTypeNewItems, submitted.Type)
	assert.Equal(t, "Sam Staff", submitted.UploadedBy)
	assert.Equal(t, "books.xlsx", submitted.FileName)
	require.Len(t, submitted.Changes, 2)
	assert.Contains(t, string(submitted.Changes[0]), `"item"`)

	require.Equal(t, []string{ws.EventApprovalSubmitted}, hub.types())
	assert.Equal(t, model.PermApproveUploads, hub.events[0].Permission)
}

func TestAdminUploadIsAppliedDirectly(t *testing.T) {
	var created atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /items", func(w http.ResponseWriter, r *http.Request) {
		created.Add(1)
		writeJSON(w, http.StatusCreated, map[string]any{"item": map[string]any{"id": created.Load()}})
	})
	hub := &recordingPublisher{}
	svc := NewApprovalService(hub, nil)

	res, err := svc.Upload(context.Background(), newTab(t, mux, adminUser), UploadNewItems, "books.xlsx", twoNewBooks(t))
	require.NoError(t, err)

	assert.Equal(t, int32(2), created.Load())
	assert.Equal(t, 2, res.Applied)
	assert.Equal(t, "Successfully added 2 new items", res.Message)
	assert.Equal(t, []string{ws.EventInventoryChanged}, hub.types())
}

func TestUploadWithRowErrorsIsRejectedWhole(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected backend call %s %s", r.Method, r.URL.Path)
	})
	svc := NewApprovalService(nil, nil)

	file := workbook(t,
		newItemsHeader,
		[]any{"Broken Spine", "Fiction", "", "-5", "3", ""},
		[]any{"Arrow of God", "Fiction", "", "10", "2", ""},
	)
	_, err := svc.Upload(context.Background(), newTab(t, mux, adminUser), UploadNewItems, "books.xlsx", file)

	var invalid *ValidationError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "Found 1 errors in the file", invalid.Message)
	assert.Equal(t, []string{`Row 2: Invalid price value for "Broken Spine"`}, invalid.Details)
}

func TestUploadInventoryUpdates(t *testing.T) {
	var body struct {
		Updates []model.ItemPatch `json:"updates"`
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /items/bulk-update", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusOK, map[string]any{"updated": len(body.Updates)})
	})
	svc := NewApprovalService(nil, nil)

	file := workbook(t,
		[]any{spreadsheet.ColID, spreadsheet.ColName, spreadsheet.ColCategory, spreadsheet.ColDescription,
			spreadsheet.ColCurrentPrice, spreadsheet.ColNewPrice, spreadsheet.ColCurrentStock, spreadsheet.ColNewStock, spreadsheet.ColNotes},
		[]any{"3", "Calculus", "Textbooks", "", "55", "60", "9", "12", ""},
	)
	res, err := svc.Upload(context.Background(), newTab(t, mux, adminUser), UploadInventoryUpdate, "update.xlsx", file)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Applied)
	require.Len(t, body.Updates, 1)
	assert.Equal(t, int64(3), body.Updates[0].ID)
	require.NotNil(t, body.Updates[0].Stock)
	assert.Equal(t, 12, *body.Updates[0].Stock)
}

func TestUploadUnknownKind(t *testing.T) {
	svc := NewApprovalService(nil, nil)
	_, err := svc.Upload(context.Background(), newTab(t, http.NewServeMux(), adminUser), "invoices", "x.xlsx", bytes.NewReader(nil))
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestApprovalDecisionsRequirePending(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /approvals", serveJSON(map[string]any{"approvals": []map[string]any{
		{"id": 1, "status": "pending"},
		{"id": 2, "status": "rejected"},
	}}))
	mux.HandleFunc("PUT /approvals/{id}/reject", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusOK, map[string]any{"approval": map[string]any{
			"id": 1, "status": "rejected", "rejection_reason": body["rejection_reason"],
		}})
	})
	hub := &recordingPublisher{}
	svc := NewApprovalService(hub, nil)
	tab := newTab(t, mux, adminUser)
	ctx := context.Background()

	_, err := svc.Reject(ctx, tab, 1, RejectRequest{Reason: "  "})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	approval, err := svc.Reject(ctx, tab, 1, RejectRequest{Reason: "Prices look wrong"})
	require.NoError(t, err)
	assert.Equal(t, "Prices look wrong", approval.RejectionReason)
	assert.Equal(t, []string{ws.EventApprovalUpdated}, hub.types())

	_, err = svc.Approve(ctx, tab, 2)
	assert.True(t, errors.Is(err, model.ErrApprovalClosed))

	_, err = svc.Approve(ctx, tab, 42)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListApprovalsGroupsByStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /approvals", serveJSON(map[string]any{"approvals": []map[string]any{
		{"id": 1, "status": "pending"},
		{"id": 2, "status": "approved"},
		{"id": 3, "status": "pending"},
	}}))
	groups, err := NewApprovalService(nil, nil).List(context.Background(), newTab(t, mux, adminUser))
	require.NoError(t, err)
	assert.Len(t, groups.Pending, 2)
	assert.Len(t, groups.Approved, 1)
	assert.Empty(t, groups.Rejected)
}
