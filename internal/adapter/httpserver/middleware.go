package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/pscheid92/founderswall/internal/platform/correlation"
	apperrors "github.com/pscheid92/founderswall/internal/platform/errors"
)

const (
	headerIdempotencyKey = "Idempotency-Key"
	maxIdempotencyKeyLen = 128
)

func correlationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := correlation.FromHeader(c.Request().Header.Get(echo.HeaderXRequestID))
		ctx := correlation.WithID(c.Request().Context(), id)
		c.SetRequest(c.Request().WithContext(ctx))
		c.Response().Header().Set(echo.HeaderXRequestID, id)
		return next(c)
	}
}

// ErrorHandlingMiddleware turns returned errors into the JSON error body and logs
// them at a level that matches their type.
func ErrorHandlingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			var httpErr *echo.HTTPError
			if errors.As(err, &httpErr) {
				wrapped, ok := wrapHTTPError(httpErr)
				if !ok {
					return err
				}
				return HandleError(c, wrapped)
			}

			return HandleError(c, err)
		}
	}
}

func logError(c echo.Context, err *apperrors.Error) {
	ctx := c.Request().Context()
	attrs := []any{
		"error_type", err.Type,
		"message", err.Message,
		"path", c.Request().URL.Path,
		"method", c.Request().Method,
		"status", err.HTTPStatus(),
	}

	for k, v := range err.Context {
		attrs = append(attrs, k, v)
	}

	if makerID, ok := c.Get(contextKeyMakerID).(uuid.UUID); ok {
		attrs = append(attrs, "maker_id", makerID.String())
	}

	switch err.Type {
	case apperrors.TypeValidation, apperrors.TypeNotFound, apperrors.TypeUnauthorized, apperrors.TypeForbidden:
		slog.InfoContext(ctx, "Request rejected", attrs...)
	case apperrors.TypeConflict, apperrors.TypeRateLimited:
		slog.WarnContext(ctx, "Request refused", attrs...)
	case apperrors.TypeUnavailable, apperrors.TypeExternal, apperrors.TypeInternal:
		if err.Cause != nil {
			attrs = append(attrs, "cause", err.Cause)
		}
		slog.ErrorContext(ctx, "Request failed", attrs...)
	default:
		slog.ErrorContext(ctx, "Unknown error type", attrs...)
	}
}

func HandleError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	structuredErr := apperrors.FromDomain(err)
	logError(c, structuredErr)
	if err := c.JSON(structuredErr.HTTPStatus(), structuredErr.ToResponse()); err != nil {
		return fmt.Errorf("failed to write error response: %w", err)
	}
	return nil
}

// wrapHTTPError converts echo's own errors (CSRF, routing, binding) into the
// structured body. Codes without a matching type are left to echo.
func wrapHTTPError(httpErr *echo.HTTPError) (*apperrors.Error, bool) {
	message := http.StatusText(httpErr.Code)
	if msg, ok := httpErr.Message.(string); ok && msg != "" {
		message = msg
	}

	var errType apperrors.ErrorType
	switch httpErr.Code {
	case http.StatusBadRequest, http.StatusUnsupportedMediaType, http.StatusRequestEntityTooLarge:
		errType = apperrors.TypeValidation
	case http.StatusUnauthorized:
		errType = apperrors.TypeUnauthorized
	case http.StatusForbidden:
		errType = apperrors.TypeForbidden
	case http.StatusNotFound:
		errType = apperrors.TypeNotFound
	case http.StatusConflict:
		errType = apperrors.TypeConflict
	case http.StatusTooManyRequests:
		errType = apperrors.TypeRateLimited
	default:
		return nil, false
	}

	err := &apperrors.Error{
		Type:    errType,
		Message: message,
		Cause:   httpErr.Internal,
		Context: make(map[string]any),
	}
	return err, true
}

// idempotent rejects a repeated Idempotency-Key from the same maker on the same
// route. Only successful requests keep their claim. Requests without the header
// are not deduplicated. When Redis is unavailable the request proceeds.
func (s *Server) idempotent(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := c.Request().Header.Get(headerIdempotencyKey)
		if key == "" || s.guard == nil {
			return next(c)
		}
		if len(key) > maxIdempotencyKeyLen {
			return apperrors.ValidationError(fmt.Sprintf("%s must be at most %d characters", headerIdempotencyKey, maxIdempotencyKeyLen))
		}

		ctx := c.Request().Context()
		makerID, _ := c.Get(contextKeyMakerID).(uuid.UUID)
		scoped := fmt.Sprintf("%s:%s:%s:%s", makerID, c.Request().Method, c.Request().URL.Path, key)

		first, err := s.guard.Claim(ctx, scoped)
		if err != nil {
			slog.WarnContext(ctx, "Idempotency guard unavailable, processing request", "error", err)
			return next(c)
		}
		if !first {
			return apperrors.ConflictError("request already processed").WithField("idempotency_key", key)
		}

		err = next(c)
		if err != nil || c.Response().Status >= http.StatusBadRequest {
			// Nothing was applied, so the client may retry with the same key.
			if relErr := s.guard.Release(context.WithoutCancel(ctx), scoped); relErr != nil {
				slog.WarnContext(ctx, "Failed to release idempotency key", "error", relErr)
			}
		}
		return err
	}
}
