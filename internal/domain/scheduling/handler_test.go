package scheduling

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newTestHandler(t *testing.T) (*Handler, *fixture, *echo.Echo) {
	t.Helper()
	f := newFixture(t)
	return NewHandler(f.svc), f, echo.New()
}

func TestHandler_Book(t *testing.T) {
	h, f, e := newTestHandler(t)

	body := fmt.Sprintf(`{"doctor_id":%q,"patient_id":%q,"date":%q,"time":"09:30"}`,
		f.doctorID, uuid.New(), FormatDate(monday))
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Book(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var appt Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &appt); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if appt.Status != StatusPending {
		t.Errorf("expected pending status, got %s", appt.Status)
	}
}

func TestHandler_Book_MissingFields(t *testing.T) {
	h, _, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Book(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHandler_Book_Conflict(t *testing.T) {
	h, f, e := newTestHandler(t)

	if _, err := f.svc.Book(context.Background(), f.bookingRequest()); err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	body := fmt.Sprintf(`{"doctor_id":%q,"patient_id":%q,"date":%q,"time":"09:30"}`,
		f.doctorID, uuid.New(), FormatDate(monday))
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Book(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %v", err)
	}
}

func TestHandler_Book_IdempotencyKeyHeader(t *testing.T) {
	h, f, e := newTestHandler(t)

	body := fmt.Sprintf(`{"doctor_id":%q,"patient_id":%q,"date":%q,"time":"10:00"}`,
		f.doctorID, uuid.New(), FormatDate(monday))

	var first, second Appointment
	for i, out := range []*Appointment{&first, &second} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set("Idempotency-Key", "attempt-42")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if err := h.Book(c); err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("decode response %d: %v", i, err)
		}
	}

	if first.ID != second.ID {
		t.Fatalf("replayed request created a new appointment: %s vs %s", first.ID, second.ID)
	}
}

func TestHandler_AvailableSlots(t *testing.T) {
	h, f, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet,
		"/?doctor_id="+f.doctorID.String()+"&date="+FormatDate(monday), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.AvailableSlots(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var slots []Slot
	if err := json.Unmarshal(rec.Body.Bytes(), &slots); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(slots) != 6 {
		t.Errorf("expected 6 slots for a 09:00-12:00 session, got %d", len(slots))
	}
}

func TestHandler_AvailableSlots_BadDate(t *testing.T) {
	h, f, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/?doctor_id="+f.doctorID.String()+"&date=07-09-2026", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.AvailableSlots(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHandler_UpdateStatus_InvalidTransition(t *testing.T) {
	h, f, e := newTestHandler(t)

	appt, err := f.svc.Book(context.Background(), f.bookingRequest())
	if err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"status":"completed"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(appt.ID.String())

	herr := h.UpdateStatus(c)
	var he *echo.HTTPError
	if !errors.As(herr, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", herr)
	}
}
