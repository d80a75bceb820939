package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// ContentTypeProblemJSON is the media type of every error response.
const ContentTypeProblemJSON = "application/problem+json"

// Problem types. Each transition failure kind gets its own so clients can
// branch on type without parsing titles.
const (
	TypeValidation             = "/problems/validation-error"
	TypeNotFound               = "/problems/not-found"
	TypeConflict               = "/problems/conflict"
	TypeUnauthenticated        = "/problems/unauthenticated"
	TypeIllegalTransition      = "/problems/illegal-transition"
	TypeUnauthorizedTransition = "/problems/unauthorized-transition"
	TypeRedundantTransition    = "/problems/redundant-transition"
	TypeInvalidState           = "/problems/invalid-state"
	TypeInternal               = "/problems/internal-error"
)

// ProblemDetail is an RFC 7807 error body.
type ProblemDetail struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Code     string `json:"code"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

func (p ProblemDetail) Error() string {
	if p.Detail != "" {
		return fmt.Sprintf("%s: %s", p.Title, p.Detail)
	}
	return p.Title
}

func (p ProblemDetail) WithDetail(detail string) ProblemDetail {
	p.Detail = detail
	return p
}

var (
	problemValidation = ProblemDetail{
		Type: TypeValidation, Title: "Validation Error", Status: http.StatusBadRequest, Code: "VALIDATION",
	}
	problemNotFound = ProblemDetail{
		Type: TypeNotFound, Title: "Resource Not Found", Status: http.StatusNotFound, Code: "NOT_FOUND",
	}
	problemConflict = ProblemDetail{
		Type: TypeConflict, Title: "Conflict", Status: http.StatusConflict, Code: "CONFLICT",
	}
	problemUnauthenticated = ProblemDetail{
		Type: TypeUnauthenticated, Title: "Unauthenticated", Status: http.StatusUnauthorized, Code: "UNAUTHENTICATED",
	}
	problemIllegal = ProblemDetail{
		Type: TypeIllegalTransition, Title: "Illegal Transition", Status: http.StatusBadRequest,
		Code: "ILLEGAL_TRANSITION",
	}
	problemUnauthorized = ProblemDetail{
		Type: TypeUnauthorizedTransition, Title: "Unauthorized Transition", Status: http.StatusForbidden,
		Code: "UNAUTHORIZED_TRANSITION",
	}
	problemRedundant = ProblemDetail{
		Type: TypeRedundantTransition, Title: "Redundant Transition", Status: http.StatusBadRequest,
		Code: "REDUNDANT_TRANSITION",
	}
	problemInvalidState = ProblemDetail{
		Type: TypeInvalidState, Title: "Invalid State", Status: http.StatusBadRequest, Code: "INVALID_STATE",
	}
	problemInternal = ProblemDetail{
		Type: TypeInternal, Title: "Internal Server Error", Status: http.StatusInternalServerError, Code: "INTERNAL",
	}
)

// badRequestError marks an error as caused by the request itself, e.g. a
// command constructor rejecting its input.
type badRequestError struct {
	err error
}

func (e *badRequestError) Error() string { return e.err.Error() }
func (e *badRequestError) Unwrap() error { return e.err }

func badRequest(err error) error {
	if err == nil {
		return nil
	}
	return &badRequestError{err: err}
}

// ErrorMapper turns an error into a problem when it recognizes it.
type ErrorMapper func(err error) (ProblemDetail, bool)

func kindMapper(target error, problem ProblemDetail) ErrorMapper {
	return func(err error) (ProblemDetail, bool) {
		if errors.Is(err, target) {
			return problem.WithDetail(err.Error()), true
		}
		return ProblemDetail{}, false
	}
}

// DefaultErrorMappers covers the domain and application errors. Order
// matters: a missing order wins over anything it may wrap, and domain kinds
// win over the generic request marker.
func DefaultErrorMappers() []ErrorMapper {
	return []ErrorMapper{
		func(err error) (ProblemDetail, bool) {
			var p ProblemDetail
			if errors.As(err, &p) {
				return p, true
			}
			return ProblemDetail{}, false
		},
		kindMapper(errs.ErrObjectNotFound, problemNotFound),
		kindMapper(order.ErrTransitionConflict, problemConflict),
		kindMapper(order.ErrUnauthorizedTransition, problemUnauthorized),
		kindMapper(order.ErrIllegalTransition, problemIllegal),
		kindMapper(order.ErrRedundantTransition, problemRedundant),
		kindMapper(order.ErrInvalidState, problemInvalidState),
		kindMapper(errs.ErrValueIsInvalid, problemValidation),
		kindMapper(errs.ErrValueIsRequired, problemValidation),
		kindMapper(errs.ErrValueIsOutOfRange, problemValidation),
		func(err error) (ProblemDetail, bool) {
			var br *badRequestError
			if errors.As(err, &br) {
				return problemValidation.WithDetail(br.Error()), true
			}
			return ProblemDetail{}, false
		},
		func(err error) (ProblemDetail, bool) {
			var he *echo.HTTPError
			if !errors.As(err, &he) {
				return ProblemDetail{}, false
			}
			p := ProblemDetail{
				Type:   "about:blank",
				Title:  http.StatusText(he.Code),
				Status: he.Code,
				Code:   fmt.Sprintf("HTTP_%d", he.Code),
			}
			if msg, ok := he.Message.(string); ok {
				p.Detail = msg
			}
			return p, true
		},
	}
}

// ProblemResponder renders errors as application/problem+json.
type ProblemResponder struct {
	mappers []ErrorMapper
	logger  *slog.Logger
}

func NewProblemResponder(logger *slog.Logger, mappers ...ErrorMapper) *ProblemResponder {
	if len(mappers) == 0 {
		mappers = DefaultErrorMappers()
	}
	return &ProblemResponder{mappers: mappers, logger: logger.With("component", "http")}
}

// Problem resolves err to the problem that will be sent.
func (r *ProblemResponder) Problem(err error) ProblemDetail {
	for _, mapper := range r.mappers {
		if p, ok := mapper(err); ok {
			return p
		}
	}
	return problemInternal
}

// HandleError is installed as echo's HTTPErrorHandler.
func (r *ProblemResponder) HandleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	problem := r.Problem(err)
	problem.Instance = c.Request().URL.Path
	if problem.Status >= http.StatusInternalServerError {
		r.logger.ErrorContext(c.Request().Context(), "request failed",
			"method", c.Request().Method, "path", problem.Instance, "error", err)
	}

	c.Response().Header().Set(echo.HeaderContentType, ContentTypeProblemJSON)
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(problem.Status)
		return
	}
	if writeErr := c.JSON(problem.Status, problem); writeErr != nil {
		r.logger.Error("write problem response", "error", writeErr)
	}
}
