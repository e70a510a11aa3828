package httperrors

import (
	"net/http"

	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github/chapool/ledger-login/internal/util"
)

type HTTPErrorHandlerConfig struct {
	HideInternalServerErrorDetails bool
}

// HTTPErrorHandlerWithConfig renders any handler error as HTTPError JSON.
func HTTPErrorHandlerWithConfig(config HTTPErrorHandlerConfig) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		log := util.LogFromContext(c.Request().Context())

		var (
			httpErr *HTTPError
			echoErr *echo.HTTPError
		)

		switch {
		case errors.As(err, &httpErr):
		case errors.As(err, &echoErr):
			httpErr = NewFromEcho(echoErr)
		default:
			httpErr = NewHTTPError(http.StatusInternalServerError, TypeGeneric, http.StatusText(http.StatusInternalServerError))
			if !config.HideInternalServerErrorDetails {
				httpErr.Detail = swag.String(err.Error())
			}
		}

		if httpErr.Code >= http.StatusInternalServerError {
			log.Error().Err(err).Int("status", httpErr.Code).Msg("Request failed")
		} else {
			log.Debug().Err(err).Int("status", httpErr.Code).Msg("Request failed")
		}

		if c.Response().Committed {
			return
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(httpErr.Code)
		} else {
			err = c.JSON(httpErr.Code, httpErr)
		}

		if err != nil {
			log.Warn().Err(err).Msg("Failed to write error response")
		}
	}
}
