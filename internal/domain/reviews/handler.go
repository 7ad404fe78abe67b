package reviews

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
	api.GET("/reviews", h.ListReviews)
	api.POST("/reviews", h.CreateReview)
}

func (h *Handler) CreateReview(c echo.Context) error {
	var in Input
	if err := c.Bind(&in); err != nil {
		return apperr.HTTP(apperr.Validation("malformed request body"))
	}
	rv, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusCreated, rv)
}

func (h *Handler) ListReviews(c echo.Context) error {
	var f Filter
	if v := c.QueryParam("provider_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return apperr.HTTP(apperr.Validation("provider_id must be a uuid"))
		}
		f.ProviderID = id
	}
	if v := c.QueryParam("patient_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return apperr.HTTP(apperr.Validation("patient_id must be a uuid"))
		}
		f.PatientID = id
	}
	pg, err := pagination.FromContext(c)
	if err != nil {
		return apperr.HTTP(err)
	}
	items, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset())
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}
