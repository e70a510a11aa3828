package httperrors

import (
	"net/http"
)

var (
	ErrBadRequestInvalidBody  = NewHTTPError(http.StatusBadRequest, TypeInvalidBody, "The request body is invalid.")
	ErrBadRequestInvalidPage  = NewHTTPError(http.StatusBadRequest, TypeInvalidPage, "The requested page does not exist.")
	ErrBadRequestInvalidAfter = NewHTTPError(http.StatusBadRequest, TypeInvalidNotificationSeq, "The after parameter must be a non-negative integer.")
	ErrNotFoundAddress        = NewHTTPError(http.StatusNotFound, TypeAddressNotFound, "The address is not part of the loaded page.")
	ErrNotFoundSession        = NewHTTPError(http.StatusNotFound, TypeNoSession, "There is no active session.")
	ErrBadGatewayLogin        = NewHTTPError(http.StatusBadGateway, TypeLoginFailed, "Logging in with the selected address failed.")
)
