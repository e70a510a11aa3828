package session

import (
	"net/http"

	"github.com/go-openapi/errors"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/go-openapi/validate"
	"github.com/labstack/echo/v4"
	"github/chapool/ledger-login/internal/api"
	"github/chapool/ledger-login/internal/api/httperrors"
	"github/chapool/ledger-login/internal/session"
	"github/chapool/ledger-login/internal/util"
)

type Response struct {
	// Required: true
	// Format: uuid
	ID *strfmt.UUID `json:"id"`

	// Required: true
	Address *string `json:"address"`

	DerivationPath string `json:"derivation_path,omitempty"`

	// Required: true
	WalletKind *string `json:"wallet_kind"`

	// Required: true
	// Format: date-time
	LoggedInAt *strfmt.DateTime `json:"logged_in_at"`
}

func (r *Response) Validate(formats strfmt.Registry) error {
	var res []error

	if err := r.validateID(formats); err != nil {
		res = append(res, err)
	}

	if err := validate.Required("address", "body", r.Address); err != nil {
		res = append(res, err)
	}

	if err := validate.Required("wallet_kind", "body", r.WalletKind); err != nil {
		res = append(res, err)
	}

	if err := r.validateLoggedInAt(formats); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}

	return nil
}

func (r *Response) validateID(formats strfmt.Registry) error {
	if err := validate.Required("id", "body", r.ID); err != nil {
		return err
	}

	if err := validate.FormatOf("id", "body", "uuid", r.ID.String(), formats); err != nil {
		return err
	}

	return nil
}

func (r *Response) validateLoggedInAt(formats strfmt.Registry) error {
	if err := validate.Required("logged_in_at", "body", r.LoggedInAt); err != nil {
		return err
	}

	if err := validate.FormatOf("logged_in_at", "body", "date-time", r.LoggedInAt.String(), formats); err != nil {
		return err
	}

	return nil
}

func newResponse(current session.Session) *Response {
	id := strfmt.UUID(current.ID)
	loggedInAt := strfmt.DateTime(current.LoggedInAt)

	return &Response{
		ID:             &id,
		Address:        swag.String(current.Address),
		DerivationPath: current.DerivationPath,
		WalletKind:     swag.String(current.WalletKind),
		LoggedInAt:     &loggedInAt,
	}
}

func GetSessionRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Session.GET("", getSessionHandler(s))
}

func getSessionHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		current, ok := s.Sessions.Current()
		if !ok {
			return httperrors.ErrNotFoundSession
		}

		return util.ValidateAndReturn(c, http.StatusOK, newResponse(current))
	}
}
