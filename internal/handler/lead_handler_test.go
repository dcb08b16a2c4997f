package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/bktrade/site/internal/model"
	"github.com/bktrade/site/internal/service"
)

// ---------------------------------------------------------------------------
// Mock LeadService
// ---------------------------------------------------------------------------

type mockLeadService struct {
	submitFunc       func(ctx context.Context, sub *model.LeadSubmission) (*model.Lead, error)
	listFunc         func(ctx context.Context, limit int) ([]*model.Lead, error)
	updateStatusFunc func(ctx context.Context, id int64, status, note string) error
}

func (m *mockLeadService) Submit(ctx context.Context, sub *model.LeadSubmission) (*model.Lead, error) {
	if m.submitFunc != nil {
		return m.submitFunc(ctx, sub)
	}
	return &model.Lead{ID: 1}, nil
}

func (m *mockLeadService) List(ctx context.Context, limit int) ([]*model.Lead, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, limit)
	}
	return nil, nil
}

func (m *mockLeadService) UpdateStatus(ctx context.Context, id int64, status, note string) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status, note)
	}
	return nil
}

func fixedClientIP(r *http.Request) string { return "203.0.113.5" }

// ---------------------------------------------------------------------------
// POST /api/requests
// ---------------------------------------------------------------------------

func TestLeadHandler_Submit_JSON(t *testing.T) {
	var captured *model.LeadSubmission
	mock := &mockLeadService{
		submitFunc: func(ctx context.Context, sub *model.LeadSubmission) (*model.Lead, error) {
			captured = sub
			return &model.Lead{ID: 7}, nil
		},
	}
	h := NewLeadHandler(mock, fixedClientIP)

	body := `{"name":"Ivan","phone":"+7 999 123-45-67","email":"","item":"Арматура А500С","source":"catalog","website":""}`
	req := httptest.NewRequest(http.MethodPost, "/api/requests", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "test-agent")
	rec := httptest.NewRecorder()
	h.Submit(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d — body: %s", rec.Code, rec.Body.String())
	}
	if got := decodeMessage(t, rec); got != msgSubmitted {
		t.Errorf("unexpected message %q", got)
	}
	if captured == nil {
		t.Fatal("expected Submit to be called")
	}
	if captured.Name != "Ivan" || captured.Item != "Арматура А500С" || captured.Source != "catalog" {
		t.Errorf("unexpected submission %+v", captured)
	}
	if captured.IP != "203.0.113.5" || captured.UserAgent != "test-agent" {
		t.Errorf("expected transport metadata to be attached, got ip=%q ua=%q", captured.IP, captured.UserAgent)
	}
	if strings.Contains(rec.Body.String(), `"id"`) {
		t.Error("record id is not part of the response")
	}
}

func TestLeadHandler_Submit_Form(t *testing.T) {
	var captured *model.LeadSubmission
	mock := &mockLeadService{
		submitFunc: func(ctx context.Context, sub *model.LeadSubmission) (*model.Lead, error) {
			captured = sub
			return &model.Lead{ID: 1}, nil
		},
	}
	h := NewLeadHandler(mock, fixedClientIP)

	form := url.Values{"name": {"Пётр"}, "phone": {"89001234567"}, "website": {"bot"}}
	req := httptest.NewRequest(http.MethodPost, "/api/requests", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.Submit(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.Name != "Пётр" || captured.Phone != "89001234567" || captured.Website != "bot" {
		t.Errorf("unexpected submission %+v", captured)
	}
}

func TestLeadHandler_Submit_InvalidJSON(t *testing.T) {
	mock := &mockLeadService{
		submitFunc: func(ctx context.Context, sub *model.LeadSubmission) (*model.Lead, error) {
			t.Fatal("Submit must not be called")
			return nil, nil
		},
	}
	h := NewLeadHandler(mock, fixedClientIP)

	req := httptest.NewRequest(http.MethodPost, "/api/requests", strings.NewReader(`{"name":`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Submit(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestLeadHandler_Submit_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", &service.ValidationError{Field: "phone", Message: "Укажите корректный номер телефона."}, http.StatusBadRequest, "Укажите корректный номер телефона."},
		{"spam", service.ErrSpam, http.StatusBadRequest, msgSpam},
		{"throttled", service.ErrRateLimited, http.StatusTooManyRequests, msgTooFrequent},
		{"internal", errors.New("sqlite: database is locked"), http.StatusInternalServerError, msgInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockLeadService{
				submitFunc: func(ctx context.Context, sub *model.LeadSubmission) (*model.Lead, error) {
					return nil, tt.err
				},
			}
			h := NewLeadHandler(mock, fixedClientIP)
			req := httptest.NewRequest(http.MethodPost, "/api/requests", strings.NewReader(`{"name":"Ivan"}`))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			h.Submit(rec, req)

			if rec.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, rec.Code)
			}
			if got := decodeMessage(t, rec); got != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, got)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// GET /api/admin/requests
// ---------------------------------------------------------------------------

func TestLeadHandler_AdminList(t *testing.T) {
	var gotLimit int
	mock := &mockLeadService{
		listFunc: func(ctx context.Context, limit int) ([]*model.Lead, error) {
			gotLimit = limit
			return []*model.Lead{{ID: 2, Name: "B"}, {ID: 1, Name: "A"}}, nil
		},
	}
	h := NewLeadHandler(mock, fixedClientIP)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/requests?limit=50", nil)
	rec := httptest.NewRecorder()
	h.AdminList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotLimit != 50 {
		t.Errorf("expected limit 50, got %d", gotLimit)
	}
	var resp leadListResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Items) != 2 || resp.Items[0].ID != 2 {
		t.Errorf("unexpected items %+v", resp.Items)
	}
}

func TestLeadHandler_AdminList_DefaultLimitAndEmpty(t *testing.T) {
	var gotLimit int
	mock := &mockLeadService{
		listFunc: func(ctx context.Context, limit int) ([]*model.Lead, error) {
			gotLimit = limit
			return nil, nil
		},
	}
	h := NewLeadHandler(mock, fixedClientIP)

	rec := httptest.NewRecorder()
	h.AdminList(rec, httptest.NewRequest(http.MethodGet, "/api/admin/requests", nil))

	if gotLimit != defaultListLimit {
		t.Errorf("expected default limit %d, got %d", defaultListLimit, gotLimit)
	}
	if !strings.Contains(rec.Body.String(), `"items":[]`) {
		t.Errorf("expected empty array, got %s", rec.Body.String())
	}
}

func TestLeadHandler_AdminList_BadLimit(t *testing.T) {
	h := NewLeadHandler(&mockLeadService{}, fixedClientIP)
	rec := httptest.NewRecorder()
	h.AdminList(rec, httptest.NewRequest(http.MethodGet, "/api/admin/requests?limit=abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

// ---------------------------------------------------------------------------
// POST /api/admin/requests/{id}/status
// ---------------------------------------------------------------------------

func statusRequest(id, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/admin/requests/"+id+"/status", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.SetPathValue("id", id)
	return req
}

func TestLeadHandler_UpdateStatus(t *testing.T) {
	var gotID int64
	var gotStatus, gotNote string
	mock := &mockLeadService{
		updateStatusFunc: func(ctx context.Context, id int64, status, note string) error {
			gotID, gotStatus, gotNote = id, status, note
			return nil
		},
	}
	h := NewLeadHandler(mock, fixedClientIP)

	rec := httptest.NewRecorder()
	h.UpdateStatus(rec, statusRequest("12", `{"status":"done","manager_note":"Closed, shipped"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d — body: %s", rec.Code, rec.Body.String())
	}
	if gotID != 12 || gotStatus != "done" || gotNote != "Closed, shipped" {
		t.Errorf("unexpected call id=%d status=%q note=%q", gotID, gotStatus, gotNote)
	}
}

func TestLeadHandler_UpdateStatus_BadID(t *testing.T) {
	mock := &mockLeadService{
		updateStatusFunc: func(ctx context.Context, id int64, status, note string) error {
			t.Fatal("UpdateStatus must not be called")
			return nil
		},
	}
	h := NewLeadHandler(mock, fixedClientIP)

	for _, id := range []string{"0", "-3", "abc", "1.5"} {
		rec := httptest.NewRecorder()
		h.UpdateStatus(rec, statusRequest(id, `{"status":"done"}`))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("id %q: expected 400, got %d", id, rec.Code)
		}
	}
}

func TestLeadHandler_UpdateStatus_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", service.ErrLeadNotFound, http.StatusNotFound},
		{"bad status", &service.ValidationError{Field: "status", Message: "Недопустимый статус."}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockLeadService{
				updateStatusFunc: func(ctx context.Context, id int64, status, note string) error {
					return tt.err
				},
			}
			h := NewLeadHandler(mock, fixedClientIP)
			rec := httptest.NewRecorder()
			h.UpdateStatus(rec, statusRequest("5", `{"status":"x"}`))
			if rec.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, rec.Code)
			}
		})
	}
}
