package httperrors

import (
	"fmt"
	"net/http"

	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"
)

// Public error types.
const (
	TypeGeneric                = "generic"
	TypeInvalidBody            = "INVALID_BODY"
	TypeInvalidPage            = "INVALID_PAGE"
	TypeAddressNotFound        = "ADDRESS_NOT_FOUND"
	TypeLoginFailed            = "LOGIN_FAILED"
	TypeNoSession              = "NO_SESSION"
	TypeInvalidNotificationSeq = "INVALID_NOTIFICATION_SEQ"
)

// HTTPError is the JSON body of every error response.
type HTTPError struct {
	Code   int     `json:"status"`
	Type   string  `json:"type"`
	Title  string  `json:"title"`
	Detail *string `json:"detail,omitempty"`

	Internal error `json:"-"`
}

func NewHTTPError(code int, errorType string, title string) *HTTPError {
	return &HTTPError{
		Code:  code,
		Type:  errorType,
		Title: title,
	}
}

func NewHTTPErrorWithDetail(code int, errorType string, title string, detail string) *HTTPError {
	return &HTTPError{
		Code:   code,
		Type:   errorType,
		Title:  title,
		Detail: swag.String(detail),
	}
}

// NewFromEcho converts an echo error, e.g. echo.ErrNotFound.
func NewFromEcho(e *echo.HTTPError) *HTTPError {
	return &HTTPError{
		Code:     e.Code,
		Type:     TypeGeneric,
		Title:    http.StatusText(e.Code),
		Internal: e.Internal,
	}
}

func (e *HTTPError) Error() string {
	var detail string
	if e.Detail != nil {
		detail = ": " + swag.StringValue(e.Detail)
	}

	if e.Internal != nil {
		return fmt.Sprintf("HTTPError %d (%s): %s%s - %s", e.Code, e.Type, e.Title, detail, e.Internal)
	}

	return fmt.Sprintf("HTTPError %d (%s): %s%s", e.Code, e.Type, e.Title, detail)
}

func (e *HTTPError) Unwrap() error {
	return e.Internal
}

// WithInternal returns a copy of e carrying err for logging.
func (e *HTTPError) WithInternal(err error) *HTTPError {
	out := *e
	out.Internal = err

	return &out
}

// WithDetail returns a copy of e with detail set.
func (e *HTTPError) WithDetail(detail string) *HTTPError {
	out := *e
	out.Detail = swag.String(detail)

	return &out
}
