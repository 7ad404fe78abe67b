package booking

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *echo.Echo, *mockDirectory) {
	svc, _, dir, _ := newTestService()
	return NewHandler(svc), echo.New(), dir
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T: %v", err, err)
	}
	return he.Code
}

func bookBody(providerID uuid.UUID) string {
	return `{
		"patient": {"first_name":"Maria","last_name":"Lopez","email":"maria@example.com"},
		"provider_id":"` + providerID.String() + `",
		"date":"2026-09-15","time":"10:30 AM","type":"video","reason":"annual checkup"
	}`
}

func TestHandler_BookAppointment(t *testing.T) {
	h, e, dir := newTestHandler()
	providerID := dir.add()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(bookBody(providerID)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.BookAppointment(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var got Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Status != StatusScheduled {
		t.Errorf("expected scheduled, got %q", got.Status)
	}
}

func TestHandler_BookAppointment_UnknownProvider(t *testing.T) {
	h, e, _ := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(bookBody(uuid.New())))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.BookAppointment(c)
	if got := httpStatus(t, err); got != http.StatusNotFound {
		t.Errorf("expected 404, got %d", got)
	}
}

func TestHandler_BookAppointment_IdempotencyHeader(t *testing.T) {
	h, e, dir := newTestHandler()
	providerID := dir.add()

	send := func() Appointment {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(bookBody(providerID)))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set("Idempotency-Key", "header-key-1")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := h.BookAppointment(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var got Appointment
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return got
	}

	first := send()
	second := send()
	if first.ID != second.ID {
		t.Errorf("resubmitted header key must return same appointment: %s vs %s", first.ID, second.ID)
	}
}

func TestHandler_UpdateAppointment_InvalidID(t *testing.T) {
	h, e, _ := newTestHandler()
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"status":"completed"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("zzz")

	err := h.UpdateAppointment(c)
	if got := httpStatus(t, err); got != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", got)
	}
}

func TestHandler_ListAppointments_BadProviderFilter(t *testing.T) {
	h, e, _ := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/?provider_id=nope", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.ListAppointments(c)
	if got := httpStatus(t, err); got != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", got)
	}
}
