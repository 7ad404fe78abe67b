// Package apperr defines the error taxonomy shared by all domain services.
// Validation, not-found and conflict errors are caller mistakes; unavailable
// errors are retryable store failures. Anything else is treated as internal
// and never leaked to clients.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
)

// Kind classifies an error for transport mapping and retry decisions.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnavailable
)

// Error carries a kind, a client-safe message and an optional cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports malformed or missing input. Not retryable.
func Validation(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing referenced entity. Not retryable.
func NotFound(resource, id string) error {
	if id == "" {
		return &Error{Kind: KindNotFound, Msg: resource + " not found"}
	}
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf("%s %s not found", resource, id)}
}

// Conflict reports a uniqueness violation. Not retryable without new input.
func Conflict(format string, args ...interface{}) error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// Unavailable wraps a store timeout or connection failure. Retryable with backoff.
func Unavailable(err error) error {
	return &Error{Kind: KindUnavailable, Msg: "record store unavailable", Err: err}
}

// Internal wraps an unexpected failure; the cause is logged, never returned to
// the client.
func Internal(err error) error {
	return &Error{Kind: KindInternal, Msg: "internal error", Err: err}
}

// KindOf extracts the Kind of err, defaulting to KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsRetryable reports whether the caller may retry the failed operation
// without changing its input.
func IsRetryable(err error) bool { return KindOf(err) == KindUnavailable }

// FromStore translates a raw pgx error into the taxonomy. Call it at the
// repository boundary so raw store errors never cross into services.
func FromStore(err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return &Error{Kind: KindNotFound, Msg: "record not found", Err: err}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return &Error{Kind: KindConflict, Msg: "record already exists", Err: err}
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.As(err, &netErr) ||
		pgconn.Timeout(err) {
		return Unavailable(err)
	}
	return Internal(err)
}

// HTTP maps err onto an echo HTTP error. Internal causes are replaced with a
// generic message.
func HTTP(err error) *echo.HTTPError {
	var e *Error
	if !errors.As(err, &e) {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
	}
	switch e.Kind {
	case KindValidation:
		return echo.NewHTTPError(http.StatusBadRequest, e.Msg)
	case KindNotFound:
		return echo.NewHTTPError(http.StatusNotFound, e.Msg)
	case KindConflict:
		return echo.NewHTTPError(http.StatusConflict, e.Msg)
	case KindUnavailable:
		return echo.NewHTTPError(http.StatusServiceUnavailable, e.Msg).SetInternal(e.Err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
	}
}
