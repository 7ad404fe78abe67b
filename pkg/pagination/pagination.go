// Package pagination implements the page/limit contract shared by every list
// endpoint: 1-based page numbers, a default page size of 10, and a response
// envelope carrying total and page counts.
package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/carefind/carefind/internal/platform/apperr"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params holds validated pagination inputs.
type Params struct {
	Page  int
	Limit int
}

// FromContext extracts page and limit from the request query. A missing or
// empty parameter falls back to its default; an explicit non-positive limit
// or page is a validation error, not a silent correction.
func FromContext(c echo.Context) (Params, error) {
	p := Params{Page: 1, Limit: DefaultLimit}

	if raw := c.QueryParam("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return Params{}, apperr.Validation("page must be a positive integer, got %q", raw)
		}
		p.Page = page
	}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return Params{}, apperr.Validation("limit must be a positive integer, got %q", raw)
		}
		if limit > MaxLimit {
			limit = MaxLimit
		}
		p.Limit = limit
	}
	return p, nil
}

// Offset returns the row offset for the current page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pages returns the total page count for the given total row count.
func (p Params) Pages(total int) int {
	if total <= 0 {
		return 0
	}
	return (total + p.Limit - 1) / p.Limit
}

// Meta is the pagination block of a list response.
type Meta struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// Response wraps a page of results with its pagination metadata.
type Response struct {
	Data       interface{} `json:"data"`
	Pagination Meta        `json:"pagination"`
}

func NewResponse(data interface{}, total int, p Params) *Response {
	return &Response{
		Data: data,
		Pagination: Meta{
			Page:  p.Page,
			Limit: p.Limit,
			Total: total,
			Pages: p.Pages(total),
		},
	}
}
