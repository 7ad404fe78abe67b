package booking

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carefind/carefind/internal/platform/apperr"
	"github.com/carefind/carefind/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/appointments", h.ListAppointments)
	api.GET("/appointments/:id", h.GetAppointment)
	api.POST("/appointments", h.BookAppointment)
	api.PUT("/appointments/:id", h.UpdateAppointment)
}

func (h *Handler) BookAppointment(c echo.Context) error {
	var req Request
	if err := c.Bind(&req); err != nil {
		return apperr.HTTP(apperr.Validation("malformed request body"))
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.Request().Header.Get("Idempotency-Key")
	}
	appt, err := h.svc.Book(c.Request().Context(), req)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusCreated, appt)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return apperr.HTTP(err)
	}
	appt, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) UpdateAppointment(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return apperr.HTTP(err)
	}
	var upd Update
	if err := c.Bind(&upd); err != nil {
		return apperr.HTTP(apperr.Validation("malformed request body"))
	}
	appt, err := h.svc.Update(c.Request().Context(), id, upd)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) ListAppointments(c echo.Context) error {
	pg, err := pagination.FromContext(c)
	if err != nil {
		return apperr.HTTP(err)
	}
	var f Filter
	if v := c.QueryParam("provider_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return apperr.HTTP(apperr.Validation("invalid provider_id %q", v))
		}
		f.ProviderID = id
	}
	if v := c.QueryParam("patient_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return apperr.HTTP(apperr.Validation("invalid patient_id %q", v))
		}
		f.PatientID = id
	}
	f.Status = c.QueryParam("status")

	items, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset())
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid appointment id %q", c.Param("id"))
	}
	return id, nil
}
