package scheduling

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Supun-Chathuranga/care-connect-pro/internal/platform/auth"
	"github.com/Supun-Chathuranga/care-connect-pro/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	manage := api.Group("", auth.RequireRole(RoleAdmin, RoleDoctor))
	manage.POST("/sessions", h.CreateSession)
	manage.PUT("/sessions/:id", h.UpdateSession)
	manage.DELETE("/sessions/:id", h.RemoveSession)

	api.GET("/sessions", h.ListSessions, auth.RequireRole(RoleAdmin, RoleDoctor, RolePatient))
	api.GET("/sessions/:id", h.GetSession, auth.RequireRole(RoleAdmin, RoleDoctor, RolePatient))

	api.GET("/booking/slots", h.AvailableSlots, auth.RequireRole(RoleAdmin, RoleDoctor, RolePatient))
	api.POST("/booking/book", h.Book, auth.RequireRole(RoleAdmin, RolePatient))

	api.GET("/appointments", h.ListAppointments, auth.RequireRole(RoleAdmin, RoleDoctor, RolePatient))
	api.GET("/appointments/:id", h.GetAppointment, auth.RequireRole(RoleAdmin, RoleDoctor, RolePatient))
	api.PATCH("/appointments/:id/status", h.UpdateStatus, auth.RequireRole(RoleAdmin, RoleDoctor, RolePatient))
	api.PATCH("/appointments/:id/notes", h.UpdateNotes, auth.RequireRole(RoleAdmin, RoleDoctor))
}

// -- Session handlers --

func (h *Handler) CreateSession(c echo.Context) error {
	var sess Session
	if err := c.Bind(&sess); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateSession(c.Request().Context(), &sess); err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, sess)
}

func (h *Handler) GetSession(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	sess, err := h.svc.GetSession(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	return c.JSON(http.StatusOK, sess)
}

func (h *Handler) ListSessions(c echo.Context) error {
	doctorID, err := uuid.Parse(c.QueryParam("doctor_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "doctor_id query parameter required")
	}
	items, err := h.svc.ListSessionsByDoctor(c.Request().Context(), doctorID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) UpdateSession(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var sess Session
	if err := c.Bind(&sess); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sess.ID = id
	if err := h.svc.UpdateSession(c.Request().Context(), &sess); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, sess)
}

func (h *Handler) RemoveSession(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.RemoveSession(c.Request().Context(), id); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Booking handlers --

func (h *Handler) AvailableSlots(c echo.Context) error {
	doctorID, err := uuid.Parse(c.QueryParam("doctor_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "doctor_id query parameter required")
	}
	date, err := ParseDate(c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date query parameter must be YYYY-MM-DD")
	}
	slots, err := h.svc.AvailableSlots(c.Request().Context(), doctorID, date)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, slots)
}

func (h *Handler) Book(c echo.Context) error {
	var req BookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.Request().Header.Get("Idempotency-Key")
	}
	if req.DoctorID == uuid.Nil || req.PatientID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "doctor_id and patient_id are required")
	}
	if _, err := ParseDate(req.Date); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	appt, err := h.svc.Book(c.Request().Context(), req)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, appt)
}

// -- Appointment handlers --

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	appt, err := h.svc.GetAppointment(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) ListAppointments(c echo.Context) error {
	pg := pagination.FromContext(c)
	if patientID := c.QueryParam("patient_id"); patientID != "" {
		pid, err := uuid.Parse(patientID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		items, total, err := h.svc.ListAppointmentsByPatient(c.Request().Context(), pid, pg.Limit, pg.Offset)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}
	if doctorID := c.QueryParam("doctor_id"); doctorID != "" {
		did, err := uuid.Parse(doctorID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor_id")
		}
		items, total, err := h.svc.ListAppointmentsByDoctor(c.Request().Context(), did, pg.Limit, pg.Offset)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}
	return echo.NewHTTPError(http.StatusBadRequest, "patient_id or doctor_id query parameter required")
}

type statusRequest struct {
	Status AppointmentStatus `json:"status"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	// The acting role travels as an explicit argument so the transition
	// rules stay enforceable (and testable) without ambient session state.
	appt, err := h.svc.UpdateStatus(c.Request().Context(), id, req.Status, auth.PrimaryRole(c.Request().Context()))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, appt)
}

type notesRequest struct {
	Notes string `json:"notes"`
}

func (h *Handler) UpdateNotes(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req notesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	appt, err := h.svc.UpdateNotes(c.Request().Context(), id, req.Notes)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, appt)
}

// mapError translates domain errors into HTTP responses. Anything not in the
// taxonomy is a collaborator failure and stays a 500.
func mapError(err error) error {
	switch {
	case errors.Is(err, ErrDoctorNotFound),
		errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrAppointmentNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrSlotUnavailable):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrPastDate), errors.Is(err, ErrInvalidTime):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
