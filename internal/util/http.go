package util

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-openapi/strfmt"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// Validatable is implemented by request and response payloads.
type Validatable interface {
	Validate(formats strfmt.Registry) error
}

// ErrInvalidBody wraps every bind or validation failure of BindAndValidateBody.
var ErrInvalidBody = errors.New("invalid request body")

// BindAndValidateBody decodes the JSON request body into v, rejecting unknown
// fields, and validates it.
func BindAndValidateBody(c echo.Context, v Validatable) error {
	req := c.Request()
	if ct := req.Header.Get(echo.HeaderContentType); ct != "" && !strings.HasPrefix(ct, echo.MIMEApplicationJSON) {
		return errors.Wrapf(ErrInvalidBody, "unsupported content type %q", ct)
	}

	decoder := json.NewDecoder(req.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return errors.Wrap(ErrInvalidBody, err.Error())
	}

	if err := v.Validate(strfmt.Default); err != nil {
		return errors.Wrap(ErrInvalidBody, err.Error())
	}

	return nil
}

// ValidateAndReturn validates v before writing it as JSON with code.
func ValidateAndReturn(c echo.Context, code int, v Validatable) error {
	if err := v.Validate(strfmt.Default); err != nil {
		LogFromContext(c.Request().Context()).Error().Err(err).Msg("Response payload failed validation")
		return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
	}

	return c.JSON(code, v)
}
