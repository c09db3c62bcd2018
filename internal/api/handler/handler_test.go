package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"inv-timesheet/backend/internal/dto"
	"inv-timesheet/backend/internal/model"
	"inv-timesheet/backend/internal/service"
	pkgerrors "inv-timesheet/backend/pkg/errors"
	"inv-timesheet/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	testUserID     = "11111111-1111-4111-8111-111111111111"
	testEmployeeID = "22222222-2222-4222-8222-222222222222"
	testEntryID    = "33333333-3333-4333-8333-333333333333"
)

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock TimesheetService ──

type mockTimesheetService struct {
	createResult *dto.TimeEntryResponse
	createErr    error
	getResult    *dto.TimeEntryResponse
	getErr       error
	updateResult *dto.TimeEntryResponse
	updateErr    error
	deleteErr    error
	weekResult   *dto.WeekResponse
	weekErr      error
	calcResult   *dto.CalculateResponse
	calcErr      error

	lastActor      service.Actor
	lastEmployeeID string
	lastDate       time.Time
}

func (m *mockTimesheetService) Create(_ context.Context, actor service.Actor, _ *dto.CreateTimeEntryRequest) (*dto.TimeEntryResponse, error) {
	m.lastActor = actor
	return m.createResult, m.createErr
}
func (m *mockTimesheetService) GetByID(_ context.Context, _ service.Actor, _ string) (*dto.TimeEntryResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockTimesheetService) Update(_ context.Context, _ service.Actor, _ string, _ *dto.UpdateTimeEntryRequest) (*dto.TimeEntryResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockTimesheetService) Delete(_ context.Context, _ service.Actor, _ string) error {
	return m.deleteErr
}
func (m *mockTimesheetService) ListWeek(_ context.Context, _ service.Actor, employeeID string, date time.Time) (*dto.WeekResponse, error) {
	m.lastEmployeeID = employeeID
	m.lastDate = date
	return m.weekResult, m.weekErr
}
func (m *mockTimesheetService) Calculate(_ context.Context, _ service.Actor, _ *dto.CalculateRequest) (*dto.CalculateResponse, error) {
	return m.calcResult, m.calcErr
}

// ── Mock RecalcService ──

type mockRecalcService struct {
	result *dto.RecalculatedWeekResponse
	err    error
}

func (m *mockRecalcService) RecalculateWeek(_ context.Context, _ service.Actor, _ string, _ time.Time) (*dto.RecalculatedWeekResponse, error) {
	return m.result, m.err
}

// ── Mock ApprovalService ──

type mockApprovalService struct {
	submitResult  *dto.TimeEntryResponse
	submitErr     error
	approveResult *dto.TimeEntryResponse
	approveErr    error
	rejectResult  *dto.TimeEntryResponse
	rejectErr     error
	pendingResult []dto.TimeEntryResponse
	pendingErr    error

	lastReason string
}

func (m *mockApprovalService) Submit(_ context.Context, _ service.Actor, _ string) (*dto.TimeEntryResponse, error) {
	return m.submitResult, m.submitErr
}
func (m *mockApprovalService) Approve(_ context.Context, _ service.Actor, _ string) (*dto.TimeEntryResponse, error) {
	return m.approveResult, m.approveErr
}
func (m *mockApprovalService) Reject(_ context.Context, _ service.Actor, _ string, reason string) (*dto.TimeEntryResponse, error) {
	m.lastReason = reason
	if reason == "" {
		return nil, pkgerrors.ErrMissingRejectionReason
	}
	return m.rejectResult, m.rejectErr
}
func (m *mockApprovalService) ListPendingFor(_ context.Context, _ service.Actor) ([]dto.TimeEntryResponse, error) {
	return m.pendingResult, m.pendingErr
}

// ── Mock AuditService ──

type mockAuditService struct {
	listResult []dto.AuditLogResponse
	listTotal  int64
	listErr    error
}

func (m *mockAuditService) Append(_ context.Context, _ *model.AuditLog) {}

func (m *mockAuditService) List(_ context.Context, _ service.Actor, _ *dto.AuditLogListRequest) ([]dto.AuditLogResponse, int64, error) {
	return m.listResult, m.listTotal, m.listErr
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportWeek(_ context.Context, _ service.Actor, _ string, _ time.Time) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setupGin() (*gin.Engine, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	_, r := gin.CreateTestContext(w)
	return r, w
}

func setAuth(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", testUserID)
		c.Set("role", role)
		c.Next()
	}
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func serve(r *gin.Engine, w *httptest.ResponseRecorder, method, path string, body io.Reader) {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
}

func sampleEntry(status string) *dto.TimeEntryResponse {
	return &dto.TimeEntryResponse{
		ID:         testEntryID,
		EmployeeID: testUserID,
		WorkDate:   "2026-10-14",
		Status:     status,
		TotalHours: 8,
	}
}

// ═══════════════════════════════════════════════════════════
// TimesheetHandler Tests
// ═══════════════════════════════════════════════════════════

func TestTimesheetHandler_Create_Success(t *testing.T) {
	mock := &mockTimesheetService{createResult: sampleEntry("draft")}
	h := NewTimesheetHandler(mock, &mockRecalcService{})

	r, w := setupGin()
	r.POST("/time-entries", setAuth("employee"), h.CreateTimeEntry)
	in := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	out := in.Add(8 * time.Hour)
	serve(r, w, "POST", "/time-entries", jsonBody(dto.CreateTimeEntryRequest{TimeIn: &in, TimeOut: &out}))

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
	if mock.lastActor.ID != testUserID || mock.lastActor.Role != "employee" {
		t.Errorf("expected actor from context, got %+v", mock.lastActor)
	}
}

func TestTimesheetHandler_Create_Unauthenticated(t *testing.T) {
	h := NewTimesheetHandler(&mockTimesheetService{}, &mockRecalcService{})

	r, w := setupGin()
	r.POST("/time-entries", h.CreateTimeEntry)
	serve(r, w, "POST", "/time-entries", jsonBody(map[string]string{}))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestTimesheetHandler_Create_BadJSON(t *testing.T) {
	h := NewTimesheetHandler(&mockTimesheetService{}, &mockRecalcService{})

	r, w := setupGin()
	r.POST("/time-entries", setAuth("employee"), h.CreateTimeEntry)
	serve(r, w, "POST", "/time-entries", strings.NewReader("invalid json"))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 10001 {
		t.Errorf("expected error code 10001, got %d", resp.Code)
	}
}

func TestTimesheetHandler_Create_DomainErrors(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantHTTP int
		wantCode int
	}{
		{"invalid range", pkgerrors.ErrInvalidTimeRange, http.StatusBadRequest, 20001},
		{"invalid id", pkgerrors.ErrInvalidIdentifier, http.StatusBadRequest, 20002},
		{"missing override reason", pkgerrors.ErrMissingOverrideReason, http.StatusBadRequest, 20003},
		{"not quantized", pkgerrors.ErrHoursNotQuantized, http.StatusBadRequest, 20004},
		{"manual mismatch", pkgerrors.ErrManualTotalMismatch, http.StatusBadRequest, 20005},
		{"unknown employment type", pkgerrors.ErrUnknownEmploymentType, http.StatusBadRequest, 20006},
		{"duplicate date", service.ErrDuplicateWorkDate, http.StatusConflict, 20007},
		{"employee missing", service.ErrEmployeeNotFound, http.StatusNotFound, 20102},
		{"unauthorized", pkgerrors.ErrUnauthorized, http.StatusForbidden, 20301},
		{"not calculated", pkgerrors.ErrEntryNotCalculated, http.StatusConflict, 21003},
		{"lock timeout", context.DeadlineExceeded, http.StatusServiceUnavailable, 22002},
		{"unexpected", errors.New("db down"), http.StatusInternalServerError, 50000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewTimesheetHandler(&mockTimesheetService{createErr: tc.err}, &mockRecalcService{})

			r, w := setupGin()
			r.POST("/time-entries", setAuth("employee"), h.CreateTimeEntry)
			serve(r, w, "POST", "/time-entries", jsonBody(map[string]string{}))

			if w.Code != tc.wantHTTP {
				t.Errorf("expected %d, got %d", tc.wantHTTP, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tc.wantCode {
				t.Errorf("expected error code %d, got %d", tc.wantCode, resp.Code)
			}
		})
	}
}

func TestTimesheetHandler_Create_RecalculationAborted(t *testing.T) {
	err := &pkgerrors.RecalculationAbortedError{
		Date: time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC),
		Err:  pkgerrors.ErrInvalidTimeRange,
	}
	h := NewTimesheetHandler(&mockTimesheetService{createErr: err}, &mockRecalcService{})

	r, w := setupGin()
	r.POST("/time-entries", setAuth("employee"), h.CreateTimeEntry)
	serve(r, w, "POST", "/time-entries", jsonBody(map[string]string{}))

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 22001 {
		t.Errorf("expected error code 22001, got %d", resp.Code)
	}
	if !strings.Contains(resp.Details, "2026-10-15") {
		t.Errorf("expected details to name failing date, got %q", resp.Details)
	}
}

func TestTimesheetHandler_GetTimeEntry_NotFound(t *testing.T) {
	h := NewTimesheetHandler(&mockTimesheetService{getErr: service.ErrTimeEntryNotFound}, &mockRecalcService{})

	r, w := setupGin()
	r.GET("/time-entries/:id", setAuth("employee"), h.GetTimeEntry)
	serve(r, w, "GET", "/time-entries/"+testEntryID, nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 20101 {
		t.Errorf("expected error code 20101, got %d", resp.Code)
	}
}

func TestTimesheetHandler_Update_MissingVersion(t *testing.T) {
	h := NewTimesheetHandler(&mockTimesheetService{}, &mockRecalcService{})

	r, w := setupGin()
	r.PUT("/time-entries/:id", setAuth("employee"), h.UpdateTimeEntry)
	serve(r, w, "PUT", "/time-entries/"+testEntryID, jsonBody(map[string]string{"notes": "x"}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestTimesheetHandler_Update_StaleVersion(t *testing.T) {
	h := NewTimesheetHandler(&mockTimesheetService{updateErr: pkgerrors.ErrOptimisticLock}, &mockRecalcService{})

	r, w := setupGin()
	r.PUT("/time-entries/:id", setAuth("employee"), h.UpdateTimeEntry)
	serve(r, w, "PUT", "/time-entries/"+testEntryID, jsonBody(dto.UpdateTimeEntryRequest{Version: 1}))

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 20201 {
		t.Errorf("expected error code 20201, got %d", resp.Code)
	}
}

func TestTimesheetHandler_Delete_NotDraft(t *testing.T) {
	h := NewTimesheetHandler(&mockTimesheetService{deleteErr: pkgerrors.ErrInvalidStateTransition}, &mockRecalcService{})

	r, w := setupGin()
	r.DELETE("/time-entries/:id", setAuth("employee"), h.DeleteTimeEntry)
	serve(r, w, "DELETE", "/time-entries/"+testEntryID, nil)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 20202 {
		t.Errorf("expected error code 20202, got %d", resp.Code)
	}
}

func TestTimesheetHandler_GetWeek_DefaultsToSelf(t *testing.T) {
	mock := &mockTimesheetService{weekResult: &dto.WeekResponse{EmployeeID: testUserID, Week: "2026-W42"}}
	h := NewTimesheetHandler(mock, &mockRecalcService{})

	r, w := setupGin()
	r.GET("/time-entries/week", setAuth("employee"), h.GetWeek)
	serve(r, w, "GET", "/time-entries/week?date=2026-10-14", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.lastEmployeeID != testUserID {
		t.Errorf("expected employee %s, got %s", testUserID, mock.lastEmployeeID)
	}
	if !mock.lastDate.Equal(time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected date %v", mock.lastDate)
	}
}

func TestTimesheetHandler_GetWeek_BadDate(t *testing.T) {
	h := NewTimesheetHandler(&mockTimesheetService{}, &mockRecalcService{})

	r, w := setupGin()
	r.GET("/time-entries/week", setAuth("employee"), h.GetWeek)
	serve(r, w, "GET", "/time-entries/week?date=14/10/2026", nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestTimesheetHandler_RecalculateWeek_Success(t *testing.T) {
	mock := &mockRecalcService{result: &dto.RecalculatedWeekResponse{ChangedEntryIDs: []string{testEntryID}}}
	h := NewTimesheetHandler(&mockTimesheetService{}, mock)

	r, w := setupGin()
	r.POST("/time-entries/week/recalculate", setAuth("manager"), h.RecalculateWeek)
	serve(r, w, "POST", "/time-entries/week/recalculate", jsonBody(dto.RecalculateWeekRequest{
		EmployeeID: testEmployeeID,
		Date:       "2026-10-14",
	}))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestTimesheetHandler_RecalculateWeek_InvalidEmployeeID(t *testing.T) {
	h := NewTimesheetHandler(&mockTimesheetService{}, &mockRecalcService{})

	r, w := setupGin()
	r.POST("/time-entries/week/recalculate", setAuth("manager"), h.RecalculateWeek)
	serve(r, w, "POST", "/time-entries/week/recalculate", jsonBody(dto.RecalculateWeekRequest{
		EmployeeID: "not-a-uuid",
		Date:       "2026-10-14",
	}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ApprovalHandler Tests
// ═══════════════════════════════════════════════════════════

func TestApprovalHandler_Submit_Success(t *testing.T) {
	h := NewApprovalHandler(&mockApprovalService{submitResult: sampleEntry("pending")})

	r, w := setupGin()
	r.POST("/time-entries/:id/submit", setAuth("employee"), h.Submit)
	serve(r, w, "POST", "/time-entries/"+testEntryID+"/submit", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestApprovalHandler_Submit_ZeroHours(t *testing.T) {
	h := NewApprovalHandler(&mockApprovalService{submitErr: pkgerrors.ErrZeroHours})

	r, w := setupGin()
	r.POST("/time-entries/:id/submit", setAuth("employee"), h.Submit)
	serve(r, w, "POST", "/time-entries/"+testEntryID+"/submit", nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 21002 {
		t.Errorf("expected error code 21002, got %d", resp.Code)
	}
}

func TestApprovalHandler_Approve_AlreadyDecided(t *testing.T) {
	h := NewApprovalHandler(&mockApprovalService{approveErr: pkgerrors.ErrInvalidStateTransition})

	r, w := setupGin()
	r.POST("/time-entries/:id/approve", setAuth("manager"), h.Approve)
	serve(r, w, "POST", "/time-entries/"+testEntryID+"/approve", nil)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

func TestApprovalHandler_Approve_NotManager(t *testing.T) {
	h := NewApprovalHandler(&mockApprovalService{approveErr: pkgerrors.ErrUnauthorized})

	r, w := setupGin()
	r.POST("/time-entries/:id/approve", setAuth("employee"), h.Approve)
	serve(r, w, "POST", "/time-entries/"+testEntryID+"/approve", nil)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestApprovalHandler_Reject_WithReason(t *testing.T) {
	mock := &mockApprovalService{rejectResult: sampleEntry("rejected")}
	h := NewApprovalHandler(mock)

	r, w := setupGin()
	r.POST("/time-entries/:id/reject", setAuth("manager"), h.Reject)
	serve(r, w, "POST", "/time-entries/"+testEntryID+"/reject", jsonBody(dto.RejectTimeEntryRequest{Reason: "时间不符"}))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.lastReason != "时间不符" {
		t.Errorf("expected reason forwarded, got %q", mock.lastReason)
	}
}

func TestApprovalHandler_Reject_EmptyBody(t *testing.T) {
	h := NewApprovalHandler(&mockApprovalService{})

	r, w := setupGin()
	r.POST("/time-entries/:id/reject", setAuth("manager"), h.Reject)
	serve(r, w, "POST", "/time-entries/"+testEntryID+"/reject", nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 21001 {
		t.Errorf("expected error code 21001, got %d", resp.Code)
	}
}

func TestApprovalHandler_ListPending_Success(t *testing.T) {
	h := NewApprovalHandler(&mockApprovalService{pendingResult: []dto.TimeEntryResponse{*sampleEntry("pending")}})

	r, w := setupGin()
	r.GET("/approvals/pending", setAuth("manager"), h.ListPending)
	serve(r, w, "GET", "/approvals/pending", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// OvertimeHandler Tests
// ═══════════════════════════════════════════════════════════

func TestOvertimeHandler_Calculate_Success(t *testing.T) {
	mock := &mockTimesheetService{calcResult: &dto.CalculateResponse{
		RegularHours:      8,
		OvertimeHours:     2,
		TotalHours:        10,
		CalculationMethod: "daily_8",
	}}
	h := NewOvertimeHandler(mock)

	r, w := setupGin()
	r.POST("/overtime/calculate", setAuth("employee"), h.Calculate)
	in := time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)
	out := in.Add(10 * time.Hour)
	serve(r, w, "POST", "/overtime/calculate", jsonBody(dto.CalculateRequest{
		EmploymentType: "full_time",
		TimeIn:         &in,
		TimeOut:        &out,
	}))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestOvertimeHandler_Calculate_UnknownEmploymentType(t *testing.T) {
	h := NewOvertimeHandler(&mockTimesheetService{})

	r, w := setupGin()
	r.POST("/overtime/calculate", setAuth("employee"), h.Calculate)
	serve(r, w, "POST", "/overtime/calculate", jsonBody(map[string]string{"employment_type": "intern"}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 10001 {
		t.Errorf("expected error code 10001, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// AuditHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuditHandler_List_Success(t *testing.T) {
	h := NewAuditHandler(&mockAuditService{
		listResult: []dto.AuditLogResponse{{ID: 1, Action: "create"}},
		listTotal:  1,
	})

	r, w := setupGin()
	r.GET("/audit-logs", setAuth("admin"), h.ListAuditLogs)
	serve(r, w, "GET", "/audit-logs?action=create&page=1&page_size=10", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestAuditHandler_List_InvalidFilter(t *testing.T) {
	h := NewAuditHandler(&mockAuditService{listErr: service.ErrInvalidAuditFilter})

	r, w := setupGin()
	r.GET("/audit-logs", setAuth("admin"), h.ListAuditLogs)
	serve(r, w, "GET", "/audit-logs?from=yesterday", nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 23001 {
		t.Errorf("expected error code 23001, got %d", resp.Code)
	}
}

func TestAuditHandler_List_UnknownAction(t *testing.T) {
	h := NewAuditHandler(&mockAuditService{})

	r, w := setupGin()
	r.GET("/audit-logs", setAuth("admin"), h.ListAuditLogs)
	serve(r, w, "GET", "/audit-logs?action=truncate", nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_ExportWeek_Success(t *testing.T) {
	h := NewExportHandler(&mockExportService{
		buf:      bytes.NewBufferString("xlsx"),
		filename: "工时_张三_2026-W42.xlsx",
	})

	r, w := setupGin()
	r.GET("/export/week", setAuth("employee"), h.ExportWeek)
	serve(r, w, "GET", "/export/week?date=2026-10-14", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("unexpected content type %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "2026-W42.xlsx") {
		t.Errorf("unexpected content disposition %s", cd)
	}
}

func TestExportHandler_ExportWeek_GenerateFail(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrExportGenerateFail})

	r, w := setupGin()
	r.GET("/export/week", setAuth("employee"), h.ExportWeek)
	serve(r, w, "GET", "/export/week?date=2026-10-14", nil)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 24001 {
		t.Errorf("expected error code 24001, got %d", resp.Code)
	}
}

func TestExportHandler_ExportWeek_Forbidden(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: pkgerrors.ErrUnauthorized})

	r, w := setupGin()
	r.GET("/export/week", setAuth("employee"), h.ExportWeek)
	serve(r, w, "GET", "/export/week?employee_id="+testEmployeeID+"&date=2026-10-14", nil)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}
