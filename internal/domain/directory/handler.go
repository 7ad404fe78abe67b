package directory

import (
	"net/http"
	"strconv"
	"strings"

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
	api.GET("/providers", h.SearchProviders)
	api.GET("/providers/:id", h.GetProvider)
	api.POST("/providers", h.CreateProvider)
	api.PUT("/providers/:id", h.UpdateProvider)
	api.DELETE("/providers/:id", h.DeleteProvider)
}

func (h *Handler) SearchProviders(c echo.Context) error {
	pg, err := pagination.FromContext(c)
	if err != nil {
		return apperr.HTTP(err)
	}
	sc, err := criteriaFromQuery(c)
	if err != nil {
		return apperr.HTTP(err)
	}
	items, total, err := h.svc.Search(c.Request().Context(), sc, pg)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

func (h *Handler) GetProvider(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return apperr.HTTP(err)
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) CreateProvider(c echo.Context) error {
	var in Input
	if err := c.Bind(&in); err != nil {
		return apperr.HTTP(apperr.Validation("malformed request body"))
	}
	p, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdateProvider(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return apperr.HTTP(err)
	}
	var in Input
	if err := c.Bind(&in); err != nil {
		return apperr.HTTP(apperr.Validation("malformed request body"))
	}
	p, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return apperr.HTTP(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeleteProvider(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return apperr.HTTP(err)
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return apperr.HTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid provider id %q", c.Param("id"))
	}
	return id, nil
}

// criteriaFromQuery maps query parameters onto search predicates. Absent
// parameters and dropdown sentinel values leave the predicate inactive.
func criteriaFromQuery(c echo.Context) (SearchCriteria, error) {
	sc := SearchCriteria{
		Specialty: c.QueryParam("specialty"),
		Location:  c.QueryParam("location"),
		Gender:    c.QueryParam("gender"),
		Search:    c.QueryParam("search"),
		SortBy:    SortKey(c.QueryParam("sortBy")),
	}

	if v := c.QueryParam("minPrice"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return sc, apperr.Validation("minPrice must be an integer")
		}
		sc.MinPrice = &n
	}
	if v := c.QueryParam("maxPrice"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return sc, apperr.Validation("maxPrice must be an integer")
		}
		sc.MaxPrice = &n
	}
	if v := c.QueryParam("minRating"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return sc, apperr.Validation("minRating must be a number")
		}
		sc.MinRating = &f
	}
	if v := c.QueryParam("languages"); v != "" {
		for _, lang := range strings.Split(v, ",") {
			if lang = strings.TrimSpace(lang); lang != "" {
				sc.Languages = append(sc.Languages, lang)
			}
		}
	}
	if v := c.QueryParam("availableToday"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return sc, apperr.Validation("availableToday must be a boolean")
		}
		sc.AvailableToday = b
	}
	if v := c.QueryParam("acceptsInsurance"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return sc, apperr.Validation("acceptsInsurance must be a boolean")
		}
		sc.AcceptsInsurance = b
	}
	return sc, sc.Validate()
}
